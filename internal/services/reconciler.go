// reconciler.go
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

package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/localnerve/plansdb/internal/locks"
	"github.com/localnerve/plansdb/internal/logging"
	"github.com/localnerve/plansdb/internal/models"
	"github.com/localnerve/plansdb/internal/types"
	"github.com/sirupsen/logrus"
)

// AssignmentRequest is the target set of users for a procedure within a plan.
// Duplicate user ids are collapsed.
type AssignmentRequest struct {
	PlanID      int64   `json:"planId"`
	ProcedureID int64   `json:"procedureId"`
	UserIDs     []int64 `json:"userIds"`
}

// ReconcileResult counts the rows touched by a reconciliation
type ReconcileResult struct {
	Removed int `json:"removed"`
	Added   int `json:"added"`
	Kept    int `json:"kept"`
}

// Reconciler replaces the users assigned to a plan procedure with a requested set
type Reconciler struct {
	gateway Gateway
	locker  locks.Locker
}

// NewReconciler creates a reconciler. A nil locker leaves serialization of
// same-pair requests to the store's row locks.
func NewReconciler(gateway Gateway, locker locks.Locker) *Reconciler {
	if locker == nil {
		locker = locks.Noop{}
	}
	return &Reconciler{gateway: gateway, locker: locker}
}

// ReconcileAssignments makes the users assigned to the pair exactly req.UserIDs
func (r *Reconciler) ReconcileAssignments(ctx context.Context, req AssignmentRequest) error {
	_, err := r.Reconcile(ctx, req)
	return err
}

// Reconcile is ReconcileAssignments, also reporting the row delta
func (r *Reconciler) Reconcile(ctx context.Context, req AssignmentRequest) (result ReconcileResult, err error) {
	start := time.Now()
	log := logging.FromContext(ctx).WithFields(logrus.Fields{
		"plan_id":      req.PlanID,
		"procedure_id": req.ProcedureID,
	})
	defer func() {
		observeReconcile(result, err, time.Since(start))
		if err != nil {
			log.WithField("kind", types.KindOf(err)).WithError(err).Warn("assignment reconciliation failed")
		}
	}()

	// Argument checks complete before anything is read or cleared, so an
	// invalid request never deletes existing assignments.
	if err := req.validate(); err != nil {
		return result, err
	}
	requested := uniqueIDs(req.UserIDs)

	release, err := r.locker.Acquire(ctx, locks.PairKey(req.PlanID, req.ProcedureID))
	if err != nil {
		return result, types.Internal(err)
	}
	defer release()

	err = r.gateway.WithinTransaction(ctx, func(tx Tx) error {
		if err := tx.LockPlanProcedure(ctx, req.PlanID, req.ProcedureID); err != nil {
			return err
		}

		plan, err := tx.FindPlanWithAssociations(ctx, req.PlanID)
		if err != nil {
			return err
		}
		procedure, err := tx.FindProcedure(ctx, req.ProcedureID)
		if err != nil {
			return err
		}
		if plan == nil || procedure == nil {
			return types.NotFound("Plan or Procedure not found")
		}
		if !plan.HasProcedure(procedure.ProcedureID) {
			return types.InvalidArgument("ProcedureId: %d is not associated with PlanId: %d", req.ProcedureID, req.PlanID)
		}
		if err := checkUsersExist(ctx, tx, requested); err != nil {
			return err
		}

		existing, err := tx.QueryAssignedUsers(ctx, req.PlanID, req.ProcedureID)
		if err != nil {
			return err
		}

		remove, add, kept := diffAssignments(req.PlanID, req.ProcedureID, existing, requested)
		tx.DeleteAssignedUsers(remove)
		tx.InsertAssignedUsers(add)
		if err := tx.SaveChanges(ctx); err != nil {
			return err
		}

		result = ReconcileResult{Removed: len(remove), Added: len(add), Kept: kept}
		return nil
	})
	if err != nil {
		return ReconcileResult{}, types.Internal(err)
	}

	log.WithFields(logrus.Fields{
		"removed": result.Removed,
		"added":   result.Added,
		"kept":    result.Kept,
	}).Info("assignments reconciled")
	return result, nil
}

func (req AssignmentRequest) validate() error {
	if req.PlanID < 1 {
		return types.InvalidArgument("Invalid PlanId")
	}
	if req.ProcedureID < 1 {
		return types.InvalidArgument("Invalid ProcedureId")
	}
	// An empty set is rejected, so there is no way to unassign every user here.
	if len(req.UserIDs) < 1 {
		return types.InvalidArgument("Invalid UserId")
	}
	return nil
}

func checkUsersExist(ctx context.Context, tx Tx, userIDs []int64) error {
	users, err := tx.FindUsers(ctx, userIDs)
	if err != nil {
		return err
	}

	found := make(map[int64]struct{}, len(users))
	for _, u := range users {
		found[u.UserID] = struct{}{}
	}

	var missing []int64
	for _, id := range userIDs {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return types.InvalidArgument("Invalid UserId: %s not found", joinIDs(missing))
	}
	return nil
}

// diffAssignments computes the delta turning existing into requested.
// Rows for users still requested are kept; a user holding several rows keeps the first.
func diffAssignments(planID, procedureID int64, existing []models.AssignedUser, requested []int64) (remove, add []models.AssignedUser, kept int) {
	want := make(map[int64]struct{}, len(requested))
	for _, id := range requested {
		want[id] = struct{}{}
	}

	present := make(map[int64]struct{}, len(existing))
	for _, row := range existing {
		_, wanted := want[row.UserID]
		_, seen := present[row.UserID]
		if wanted && !seen {
			present[row.UserID] = struct{}{}
			kept++
			continue
		}
		remove = append(remove, row)
	}

	for _, id := range requested {
		if _, ok := present[id]; ok {
			continue
		}
		add = append(add, models.AssignedUser{
			PlanID:      planID,
			ProcedureID: procedureID,
			UserID:      id,
		})
	}
	return remove, add, kept
}

// uniqueIDs drops repeated ids, keeping first-seen order
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
