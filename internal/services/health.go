package services

import (
	"context"
	"fmt"

	"github.com/localnerve/plansdb/internal/config"
	"github.com/localnerve/plansdb/internal/logging"
	"github.com/localnerve/plansdb/internal/utils"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	LockBackend  string            `json:"lockBackend"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// Pinger is a backend that answers a protocol level ping
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck checks the database and, in redis lock mode, the redis endpoint.
// redis may be nil, then only TCP reachability of REDIS_URL is checked.
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB, redis Pinger) HealthCheckResult {
	log := logging.FromContext(ctx)
	result := HealthCheckResult{
		Status:      "healthy",
		LockBackend: cfg.ResolvedLockMode(),
		Details:     make(map[string]string),
	}

	fail := func(msg string) {
		result.Status = "unhealthy"
		if result.ErrorMessage == "" {
			result.ErrorMessage = msg
		} else {
			result.ErrorMessage += "; " + msg
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		fail(fmt.Sprintf("Database connection error: %v", err))
		log.WithError(err).Error("Health check failed - database connection")
	} else if err := sqlDB.PingContext(ctx); err != nil {
		result.Database = "unreachable"
		result.Details["database_ping_error"] = err.Error()
		fail(fmt.Sprintf("Database ping failed: %v", err))
		log.WithError(err).Error("Health check failed - database ping")
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
	}

	if result.LockBackend == config.LockModeRedis {
		var err error
		if redis != nil {
			err = redis.Ping(ctx)
		} else {
			err = utils.PingRedis(cfg.RedisURL)
		}
		if err != nil {
			result.Details["redis_error"] = err.Error()
			fail(fmt.Sprintf("Redis ping failed: %v", err))
			log.WithError(err).Error("Health check failed - redis ping")
		} else {
			result.Details["redis"] = "ok"
		}
	}

	if result.Status == "healthy" {
		log.Debug("Health check passed - all systems operational")
	}
	return result
}
