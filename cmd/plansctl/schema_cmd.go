package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type columnInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
	Primary  bool   `json:"primaryKey"`
}

func newSchemaCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the tables and columns gorm created",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withDB(cmd.Context(), func(ctx context.Context, db *gorm.DB) error {
				start := time.Now()
				migrator := db.WithContext(ctx).Migrator()

				tables, err := migrator.GetTables()
				if err != nil {
					return err
				}

				schema := make(map[string][]columnInfo, len(tables))
				for _, table := range tables {
					columns, err := migrator.ColumnTypes(table)
					if err != nil {
						return err
					}
					for _, col := range columns {
						nullable, _ := col.Nullable()
						primary, _ := col.PrimaryKey()
						schema[table] = append(schema[table], columnInfo{
							Name:     col.Name(),
							Type:     col.DatabaseTypeName(),
							Nullable: nullable,
							Primary:  primary,
						})
					}
				}
				return writeJSON(cmd.OutOrStdout(), "schema", start, schema)
			})
		},
	}
}
