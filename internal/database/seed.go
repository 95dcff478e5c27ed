package database

import (
	"context"
	"fmt"

	"github.com/localnerve/plansdb/data"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedResult reports how many catalog rows were inserted
type SeedResult struct {
	Procedures int64 `json:"procedures"`
	Users      int64 `json:"users"`
}

// Seed inserts the procedure catalog and seed users. Rows already present
// are left alone, so it is safe to run on every start.
func Seed(ctx context.Context, db *gorm.DB) (SeedResult, error) {
	var result SeedResult

	procedures, err := data.Procedures()
	if err != nil {
		return result, err
	}
	users, err := data.Users()
	if err != nil {
		return result, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&procedures)
		if res.Error != nil {
			return fmt.Errorf("seed procedures: %w", res.Error)
		}
		result.Procedures = res.RowsAffected

		res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&users)
		if res.Error != nil {
			return fmt.Errorf("seed users: %w", res.Error)
		}
		result.Users = res.RowsAffected
		return nil
	})
	return result, err
}
