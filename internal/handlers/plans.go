package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/plansdb/internal/services"
	"github.com/localnerve/plansdb/internal/types"
	"github.com/localnerve/plansdb/internal/utils"
)

// PlanHandler handles plan routes
type PlanHandler struct {
	Plans *services.PlanService
}

type createPlanRequest struct {
	Metadata map[string]interface{} `json:"metadata"`
}

type addProcedureRequest struct {
	ProcedureID types.FlexInt `json:"procedureId" validate:"required"`
}

// ListPlans handles GET /api/plans
// @Summary List plans
// @Description List every plan with its procedures
// @Tags Plans
// @Produce json
// @Success 200 {array} models.Plan
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /plans [get]
func (h *PlanHandler) ListPlans(c *fiber.Ctx) error {
	plans, err := h.Plans.ListPlans(c.UserContext())
	if err != nil {
		return writeError(c, err, "listPlans")
	}
	return utils.SuccessResponse(c, plans, fiber.StatusOK)
}

// CreatePlan handles POST /api/plans
// @Summary Create a plan
// @Description Create an empty plan, optionally carrying metadata
// @Tags Plans
// @Accept json
// @Produce json
// @Param body body createPlanRequest false "Plan metadata"
// @Success 201 {object} models.Plan
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /plans [post]
func (h *PlanHandler) CreatePlan(c *fiber.Ctx) error {
	var body createPlanRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &body); err != nil {
			return writeError(c, err, "plans.validation.input")
		}
	}

	var metadata interface{}
	if body.Metadata != nil {
		metadata = body.Metadata
	}
	plan, err := h.Plans.CreatePlan(c.UserContext(), metadata)
	if err != nil {
		return writeError(c, err, "createPlan")
	}
	return utils.SuccessResponse(c, plan, fiber.StatusCreated)
}

// GetPlan handles GET /api/plans/:planId
// @Summary Get a plan
// @Description Get a plan with its procedures and assigned users
// @Tags Plans
// @Produce json
// @Param planId path int true "Plan ID"
// @Success 200 {object} models.Plan
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /plans/{planId} [get]
func (h *PlanHandler) GetPlan(c *fiber.Ctx) error {
	planID, err := paramID(c, "planId", "PlanId")
	if err != nil {
		return writeError(c, err, "plans.validation.input")
	}

	plan, err := h.Plans.GetPlan(c.UserContext(), planID)
	if err != nil {
		return writeError(c, err, "getPlan")
	}
	return utils.SuccessResponse(c, plan, fiber.StatusOK)
}

// AddProcedure handles POST /api/plans/:planId/procedures
// @Summary Add a procedure to a plan
// @Description Link a catalog procedure to a plan. Linking twice succeeds.
// @Tags Plans
// @Accept json
// @Produce json
// @Param planId path int true "Plan ID"
// @Param body body addProcedureRequest true "Procedure to link"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /plans/{planId}/procedures [post]
func (h *PlanHandler) AddProcedure(c *fiber.Ctx) error {
	planID, err := paramID(c, "planId", "PlanId")
	if err != nil {
		return writeError(c, err, "plans.validation.input")
	}

	var body addProcedureRequest
	if err := parseBody(c, &body); err != nil {
		return writeError(c, err, "plans.validation.input")
	}

	if err := h.Plans.AddProcedureToPlan(c.UserContext(), planID, body.ProcedureID.Int64()); err != nil {
		return writeError(c, err, "addProcedureToPlan")
	}
	return utils.MutationSuccessResponse(c, "Success", nil)
}
