package main

import (
	"context"
	"time"

	"github.com/localnerve/plansdb/internal/database"
	"github.com/localnerve/plansdb/internal/locks"
	"github.com/localnerve/plansdb/internal/logging"
	"github.com/localnerve/plansdb/internal/services"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newAssignCmd(c *cli) *cobra.Command {
	var (
		planID      int64
		procedureID int64
		userIDs     []int64
	)

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Replace the users assigned to a procedure within a plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			locker, closeLocker, err := locks.FromConfig(c.cfg)
			if err != nil {
				return err
			}
			defer closeLocker()

			return c.withDB(cmd.Context(), func(ctx context.Context, db *gorm.DB) error {
				ctx = logging.WithLogger(ctx, c.log.WithField("command", "assign"))
				start := time.Now()

				reconciler := services.NewReconciler(database.NewGateway(db), locker)
				result, err := reconciler.Reconcile(ctx, services.AssignmentRequest{
					PlanID:      planID,
					ProcedureID: procedureID,
					UserIDs:     userIDs,
				})
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), "assign", start, result)
			})
		},
	}

	cmd.Flags().Int64Var(&planID, "plan", 0, "Plan id (required)")
	cmd.Flags().Int64Var(&procedureID, "procedure", 0, "Procedure id (required)")
	cmd.Flags().Int64SliceVar(&userIDs, "user", nil, "User ids to assign, repeat or comma separate")
	_ = cmd.MarkFlagRequired("plan")
	_ = cmd.MarkFlagRequired("procedure")
	return cmd
}

func newAssignedCmd(c *cli) *cobra.Command {
	var planID, procedureID int64

	cmd := &cobra.Command{
		Use:   "assigned",
		Short: "List the users assigned to a procedure within a plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withDB(cmd.Context(), func(ctx context.Context, db *gorm.DB) error {
				start := time.Now()
				users, err := services.NewPlanService(db).GetAssignedUsers(ctx, planID, procedureID)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), "assigned", start, users)
			})
		},
	}

	cmd.Flags().Int64Var(&planID, "plan", 0, "Plan id (required)")
	cmd.Flags().Int64Var(&procedureID, "procedure", 0, "Procedure id (required)")
	_ = cmd.MarkFlagRequired("plan")
	_ = cmd.MarkFlagRequired("procedure")
	return cmd
}
