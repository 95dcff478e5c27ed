package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/localnerve/plansdb/internal/models"
	"github.com/localnerve/plansdb/internal/services"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/hints"
)

// Gateway implements services.Gateway over gorm
type Gateway struct {
	db       *gorm.DB
	now      func() time.Time
	rowLocks bool
}

// GatewayOption customizes a Gateway
type GatewayOption func(*Gateway)

// WithClock replaces the clock used to stamp rows
func WithClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) {
		g.now = now
	}
}

// WithRowLocks forces row locking on or off
func WithRowLocks(enabled bool) GatewayOption {
	return func(g *Gateway) {
		g.rowLocks = enabled
	}
}

// NewGateway creates a gateway. Row locks default to on for mysql and postgres.
func NewGateway(db *gorm.DB, opts ...GatewayOption) *Gateway {
	g := &Gateway{db: db, now: time.Now}
	switch db.Dialector.Name() {
	case "mysql", "postgres":
		g.rowLocks = true
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// WithinTransaction runs fn in a transaction bound to ctx. A cancelled ctx
// rolls back even when fn itself succeeded.
func (g *Gateway) WithinTransaction(ctx context.Context, fn func(tx services.Tx) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		unit := &unitOfWork{
			tx:       tx,
			now:      g.now,
			rowLocks: g.rowLocks,
			mysql:    tx.Dialector.Name() == "mysql",
		}
		if err := fn(unit); err != nil {
			return err
		}
		if unit.pending() {
			return errors.New("transaction finished with unsaved changes")
		}
		return ctx.Err()
	})
}

type unitOfWork struct {
	tx       *gorm.DB
	now      func() time.Time
	rowLocks bool
	mysql    bool

	deletes []models.AssignedUser
	inserts []models.AssignedUser
}

func (u *unitOfWork) quiet(ctx context.Context) *gorm.DB {
	return u.tx.WithContext(ctx).Session(&gorm.Session{Logger: u.tx.Logger.LogMode(logger.Silent)})
}

func (u *unitOfWork) locking(db *gorm.DB) *gorm.DB {
	if !u.rowLocks {
		return db
	}
	return db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
}

func (u *unitOfWork) pending() bool {
	return len(u.deletes) > 0 || len(u.inserts) > 0
}

// LockPlanProcedure locks the pair row. A missing pair locks nothing; the
// caller reports it after loading the plan.
func (u *unitOfWork) LockPlanProcedure(ctx context.Context, planID, procedureID int64) error {
	if !u.rowLocks {
		return nil
	}
	var rows []models.PlanProcedure
	err := u.locking(u.quiet(ctx)).
		Where("plan_id = ? AND procedure_id = ?", planID, procedureID).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return fmt.Errorf("lock plan procedure: %w", err)
	}
	return nil
}

func (u *unitOfWork) FindPlanWithAssociations(ctx context.Context, planID int64) (*models.Plan, error) {
	var plan models.Plan
	err := u.quiet(ctx).
		Preload("PlanProcedures").
		Preload("PlanProcedures.AssignedUsers").
		Where("plan_id = ?", planID).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find plan: %w", err)
	}
	return &plan, nil
}

func (u *unitOfWork) FindProcedure(ctx context.Context, procedureID int64) (*models.Procedure, error) {
	var procedure models.Procedure
	err := u.quiet(ctx).Where("procedure_id = ?", procedureID).First(&procedure).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find procedure: %w", err)
	}
	return &procedure, nil
}

func (u *unitOfWork) FindUsers(ctx context.Context, userIDs []int64) ([]models.User, error) {
	var users []models.User
	if len(userIDs) == 0 {
		return users, nil
	}
	if err := u.quiet(ctx).Where("user_id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return users, nil
}

// QueryAssignedUsers reads the current rows of the pair. Under row locks the
// read is a locking read so it sees the latest committed rows.
func (u *unitOfWork) QueryAssignedUsers(ctx context.Context, planID, procedureID int64) ([]models.AssignedUser, error) {
	query := u.locking(u.quiet(ctx))
	if u.mysql {
		query = query.Clauses(hints.UseIndex(models.AssignedUsersPairIndex))
	}

	var rows []models.AssignedUser
	err := query.
		Where("plan_id = ? AND procedure_id = ?", planID, procedureID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query assigned users: %w", err)
	}
	return rows, nil
}

func (u *unitOfWork) DeleteAssignedUsers(rows []models.AssignedUser) {
	u.deletes = append(u.deletes, rows...)
}

func (u *unitOfWork) InsertAssignedUsers(rows []models.AssignedUser) {
	u.inserts = append(u.inserts, rows...)
}

// SaveChanges flushes deletes before inserts so a recreated row never
// collides with the one it replaces
func (u *unitOfWork) SaveChanges(ctx context.Context) error {
	tx := u.tx.WithContext(ctx)

	if len(u.deletes) > 0 {
		ids := make([]int64, len(u.deletes))
		for i, row := range u.deletes {
			ids[i] = row.ID
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.AssignedUser{}).Error; err != nil {
			return fmt.Errorf("delete assigned users: %w", err)
		}
	}

	if len(u.inserts) > 0 {
		now := u.now()
		for i := range u.inserts {
			models.Stamp(now, true, &u.inserts[i])
		}
		if err := tx.Omit(clause.Associations).Create(&u.inserts).Error; err != nil {
			return fmt.Errorf("insert assigned users: %w", err)
		}
	}

	u.deletes = nil
	u.inserts = nil
	return nil
}
