package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/plansdb/internal/services"
	"github.com/localnerve/plansdb/internal/types"
	"github.com/localnerve/plansdb/internal/utils"
)

// AssignmentHandler handles the users assigned to plan procedures
type AssignmentHandler struct {
	Plans      *services.PlanService
	Reconciler *services.Reconciler
}

type setAssignedUsersRequest struct {
	UserIDs types.FlexList[types.FlexInt] `json:"userIds"`
}

// assignUserRequest is the body of the legacy route. userId is a single id
// or a list.
type assignUserRequest struct {
	PlanID      types.FlexInt                 `json:"planId"`
	ProcedureID types.FlexInt                 `json:"procedureId"`
	UserID      types.FlexList[types.FlexInt] `json:"userId"`
}

// GetAssignedUsers handles GET /api/plans/:planId/procedures/:procedureId/users
// @Summary Get assigned users
// @Description Get the users assigned to a procedure within a plan
// @Tags Assignments
// @Produce json
// @Param planId path int true "Plan ID"
// @Param procedureId path int true "Procedure ID"
// @Success 200 {array} models.User
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /plans/{planId}/procedures/{procedureId}/users [get]
func (h *AssignmentHandler) GetAssignedUsers(c *fiber.Ctx) error {
	planID, procedureID, err := pairParams(c)
	if err != nil {
		return writeError(c, err, "assignments.validation.input")
	}

	users, err := h.Plans.GetAssignedUsers(c.UserContext(), planID, procedureID)
	if err != nil {
		return writeError(c, err, "getAssignedUsers")
	}
	return utils.SuccessResponse(c, users, fiber.StatusOK)
}

// SetAssignedUsers handles PUT /api/plans/:planId/procedures/:procedureId/users
// @Summary Replace assigned users
// @Description Make the users assigned to a procedure within a plan exactly the requested set
// @Tags Assignments
// @Accept json
// @Produce json
// @Param planId path int true "Plan ID"
// @Param procedureId path int true "Procedure ID"
// @Param body body setAssignedUsersRequest true "Requested user ids"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /plans/{planId}/procedures/{procedureId}/users [put]
func (h *AssignmentHandler) SetAssignedUsers(c *fiber.Ctx) error {
	planID, procedureID, err := pairParams(c)
	if err != nil {
		return writeError(c, err, "assignments.validation.input")
	}

	var body setAssignedUsersRequest
	if err := parseBody(c, &body); err != nil {
		return writeError(c, err, "assignments.validation.input")
	}

	return h.reconcile(c, services.AssignmentRequest{
		PlanID:      planID,
		ProcedureID: procedureID,
		UserIDs:     types.Int64s(body.UserIDs.Slice()),
	})
}

// AssignUserToProcedure handles POST /api/plan/AssignUserToProcedure
// @Summary Assign users to a procedure (legacy)
// @Description Legacy form of the replace route with ids in the body
// @Tags Assignments
// @Accept json
// @Produce json
// @Param body body assignUserRequest true "Plan, procedure and user ids"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /plan/AssignUserToProcedure [post]
func (h *AssignmentHandler) AssignUserToProcedure(c *fiber.Ctx) error {
	var body assignUserRequest
	if err := parseBody(c, &body); err != nil {
		return writeError(c, err, "assignments.validation.input")
	}

	return h.reconcile(c, services.AssignmentRequest{
		PlanID:      body.PlanID.Int64(),
		ProcedureID: body.ProcedureID.Int64(),
		UserIDs:     types.Int64s(body.UserID.Slice()),
	})
}

func (h *AssignmentHandler) reconcile(c *fiber.Ctx, req services.AssignmentRequest) error {
	result, err := h.Reconciler.Reconcile(c.UserContext(), req)
	if err != nil {
		return writeError(c, err, "reconcileAssignments")
	}
	return utils.MutationSuccessResponse(c, "Success", &utils.ChangeCounts{
		Removed: result.Removed,
		Added:   result.Added,
		Kept:    result.Kept,
	})
}

func pairParams(c *fiber.Ctx) (planID, procedureID int64, err error) {
	if planID, err = paramID(c, "planId", "PlanId"); err != nil {
		return 0, 0, err
	}
	if procedureID, err = paramID(c, "procedureId", "ProcedureId"); err != nil {
		return 0, 0, err
	}
	return planID, procedureID, nil
}
