package main

import (
	"context"
	"time"

	"github.com/localnerve/plansdb/internal/database"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newMigrateCmd(c *cli) *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the plans schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withDB(cmd.Context(), func(ctx context.Context, db *gorm.DB) error {
				start := time.Now()
				if err := database.AutoMigrate(db); err != nil {
					return err
				}

				result := map[string]any{}
				if seed {
					seeded, err := database.Seed(ctx, db)
					if err != nil {
						return err
					}
					result["seeded"] = seeded
				}
				tables, err := db.Migrator().GetTables()
				if err != nil {
					return err
				}
				result["tables"] = tables
				return writeJSON(cmd.OutOrStdout(), "migrate", start, result)
			})
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "Seed the catalog after migrating")
	return cmd
}

func newSeedCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the procedure catalog and seed users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withDB(cmd.Context(), func(ctx context.Context, db *gorm.DB) error {
				start := time.Now()
				seeded, err := database.Seed(ctx, db)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), "seed", start, seeded)
			})
		},
	}
}
