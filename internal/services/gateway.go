package services

import (
	"context"

	"github.com/localnerve/plansdb/internal/models"
)

// Gateway is the persistence layer the reconciler runs against
type Gateway interface {
	// WithinTransaction runs fn in a transaction. It commits when fn returns
	// nil and rolls back on error, panic or context cancellation.
	WithinTransaction(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the unit of work handed to WithinTransaction callbacks.
// Lookups return nil without error when the row does not exist.
type Tx interface {
	// LockPlanProcedure takes a row lock on the pair when the store supports it
	LockPlanProcedure(ctx context.Context, planID, procedureID int64) error
	FindPlanWithAssociations(ctx context.Context, planID int64) (*models.Plan, error)
	FindProcedure(ctx context.Context, procedureID int64) (*models.Procedure, error)
	FindUsers(ctx context.Context, userIDs []int64) ([]models.User, error)
	QueryAssignedUsers(ctx context.Context, planID, procedureID int64) ([]models.AssignedUser, error)

	// DeleteAssignedUsers and InsertAssignedUsers stage changes for SaveChanges
	DeleteAssignedUsers(rows []models.AssignedUser)
	InsertAssignedUsers(rows []models.AssignedUser)
	// SaveChanges flushes staged deletes, then staged inserts
	SaveChanges(ctx context.Context) error
}
