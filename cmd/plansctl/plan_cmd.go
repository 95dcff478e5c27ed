package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/localnerve/plansdb/internal/services"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newPlanCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Create plans and link procedures",
	}
	cmd.AddCommand(newPlanCreateCmd(c), newPlanAddProcedureCmd(c))
	return cmd
}

func newPlanCreateCmd(c *cli) *cobra.Command {
	var metadata string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an empty plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			var doc any
			if metadata != "" {
				if err := json.Unmarshal([]byte(metadata), &doc); err != nil {
					return fmt.Errorf("invalid --metadata: %w", err)
				}
			}

			return c.withDB(cmd.Context(), func(ctx context.Context, db *gorm.DB) error {
				start := time.Now()
				plan, err := services.NewPlanService(db).CreatePlan(ctx, doc)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), "plan create", start, plan)
			})
		},
	}

	cmd.Flags().StringVar(&metadata, "metadata", "", "Plan metadata as a JSON object")
	return cmd
}

func newPlanAddProcedureCmd(c *cli) *cobra.Command {
	var planID, procedureID int64

	cmd := &cobra.Command{
		Use:   "add-procedure",
		Short: "Link a catalog procedure to a plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withDB(cmd.Context(), func(ctx context.Context, db *gorm.DB) error {
				start := time.Now()
				if err := services.NewPlanService(db).AddProcedureToPlan(ctx, planID, procedureID); err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), "plan add-procedure", start, map[string]int64{
					"planId":      planID,
					"procedureId": procedureID,
				})
			})
		},
	}

	cmd.Flags().Int64Var(&planID, "plan", 0, "Plan id (required)")
	cmd.Flags().Int64Var(&procedureID, "procedure", 0, "Procedure id (required)")
	_ = cmd.MarkFlagRequired("plan")
	_ = cmd.MarkFlagRequired("procedure")
	return cmd
}
