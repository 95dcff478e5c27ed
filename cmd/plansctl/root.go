package main

import (
	"context"
	"os"

	"github.com/localnerve/plansdb/internal/config"
	"github.com/localnerve/plansdb/internal/database"
	"github.com/localnerve/plansdb/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// cli holds what every subcommand shares once the root has run
type cli struct {
	envFile string
	cfg     *config.Config
	log     *logrus.Logger
	open    func(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error)
}

func newCLI() *cli {
	return &cli{open: database.Connect}
}

func newRootCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "plansctl",
		Short:         "Plans database administration",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.envFile != "" {
				if _, err := config.LoadEnvFiles(c.envFile); err != nil {
					return err
				}
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.cfg = cfg
			// stdout carries command output
			c.log = logging.NewWithOutput(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&c.envFile, "env-file", "f", "", "Load environment variables from this file first")

	cmd.AddCommand(
		newMigrateCmd(c),
		newSeedCmd(c),
		newPlanCmd(c),
		newAssignCmd(c),
		newAssignedCmd(c),
		newSchemaCmd(c),
	)
	return cmd
}

// withDB opens the configured database, runs fn and closes it
func (c *cli) withDB(ctx context.Context, fn func(ctx context.Context, db *gorm.DB) error) error {
	db, err := c.open(c.cfg, c.log)
	if err != nil {
		return err
	}
	defer database.Close(db)
	return fn(ctx, db)
}
