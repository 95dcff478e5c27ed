// common.go
//
// Plan management data service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of plansdb.
// plansdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// plansdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with plansdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/plansdb/internal/logging"
	"github.com/localnerve/plansdb/internal/services"
	"github.com/localnerve/plansdb/internal/types"
	"github.com/localnerve/plansdb/internal/utils"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their json names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Register mounts the plan, assignment and catalog routes on router
func Register(router fiber.Router, plans *services.PlanService, reconciler *services.Reconciler) {
	planHandler := &PlanHandler{Plans: plans}
	assignmentHandler := &AssignmentHandler{Plans: plans, Reconciler: reconciler}
	catalogHandler := &CatalogHandler{Plans: plans}

	router.Get("/plans", planHandler.ListPlans)
	router.Post("/plans", planHandler.CreatePlan)
	router.Get("/plans/:planId", planHandler.GetPlan)
	router.Post("/plans/:planId/procedures", planHandler.AddProcedure)

	router.Get("/plans/:planId/procedures/:procedureId/users", assignmentHandler.GetAssignedUsers)
	router.Put("/plans/:planId/procedures/:procedureId/users", assignmentHandler.SetAssignedUsers)
	router.Post("/plan/AssignUserToProcedure", assignmentHandler.AssignUserToProcedure)

	router.Get("/procedures", catalogHandler.ListProcedures)
	router.Get("/users", catalogHandler.ListUsers)
}

// statusFor maps an error kind to its HTTP status
func statusFor(kind types.Kind) int {
	switch kind {
	case types.KindInvalidArgument:
		return fiber.StatusBadRequest
	case types.KindNotFound:
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

// writeError sends err in the error envelope, errorType names the failed operation
func writeError(c *fiber.Ctx, err error, errorType string) error {
	kind := types.KindOf(err)
	if kind == types.KindInternal {
		logging.FromContext(c.UserContext()).WithError(err).WithField("op", errorType).Error("request failed")
	}
	return utils.ErrorResponse(c, types.MessageOf(err), statusFor(kind), errorType)
}

// parseBody decodes and validates the request body into out
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return types.InvalidArgument("Invalid input")
	}
	if err := validate.Struct(out); err != nil {
		return validationError(err)
	}
	return nil
}

// validationError reports the first failing field as "Invalid <Field>"
func validationError(err error) error {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		name := fieldErrors[0].Field()
		return types.InvalidArgument("Invalid %s%s", strings.ToUpper(name[:1]), name[1:])
	}
	return types.InvalidArgument("Invalid input")
}

// paramID reads a numeric path parameter, label names it in the error
func paramID(c *fiber.Ctx, name, label string) (int64, error) {
	id, err := c.ParamsInt(name)
	if err != nil {
		return 0, types.InvalidArgument("Invalid %s", label)
	}
	return int64(id), nil
}

// ErrorHandler is the fiber error handler. Errors reaching it keep the
// envelope shape used by the handlers.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return utils.ErrorResponse(c, fiberErr.Message, fiberErr.Code, "http")
	}
	return writeError(c, err, "unknown")
}
