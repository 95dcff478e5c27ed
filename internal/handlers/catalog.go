package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/plansdb/internal/config"
	"github.com/localnerve/plansdb/internal/services"
	"github.com/localnerve/plansdb/internal/utils"
	"gorm.io/gorm"
)

// CatalogHandler serves the procedure catalog and the user list
type CatalogHandler struct {
	Plans *services.PlanService
}

// ListProcedures handles GET /api/procedures
// @Summary List procedures
// @Tags Catalog
// @Produce json
// @Success 200 {array} models.Procedure
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /procedures [get]
func (h *CatalogHandler) ListProcedures(c *fiber.Ctx) error {
	procedures, err := h.Plans.ListProcedures(c.UserContext())
	if err != nil {
		return writeError(c, err, "listProcedures")
	}
	return utils.SuccessResponse(c, procedures, fiber.StatusOK)
}

// ListUsers handles GET /api/users
// @Summary List users
// @Tags Catalog
// @Produce json
// @Success 200 {array} models.User
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /users [get]
func (h *CatalogHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.Plans.ListUsers(c.UserContext())
	if err != nil {
		return writeError(c, err, "listUsers")
	}
	return utils.SuccessResponse(c, users, fiber.StatusOK)
}

// HealthHandler reports store and lock backend health
type HealthHandler struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  services.Pinger
}

// Health handles GET /health
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	result := services.HealthCheck(ctx, h.Config, h.DB, h.Redis)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
