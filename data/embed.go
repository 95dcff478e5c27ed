package data

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/localnerve/plansdb/internal/models"
)

// ProceduresCSV holds one procedure title per line; the id is the line number
//
//go:embed procedures.csv
var ProceduresCSV []byte

// UsersCSV holds "id,name" rows of the seed users
//
//go:embed users.csv
var UsersCSV []byte

// SeedDate is the creation date given to seed users
var SeedDate = time.Date(1999, 12, 13, 0, 0, 0, 0, time.UTC)

// Procedures parses the embedded procedure catalog
func Procedures() ([]models.Procedure, error) {
	records, err := readCSV(ProceduresCSV, 1)
	if err != nil {
		return nil, fmt.Errorf("procedures.csv: %w", err)
	}

	procedures := make([]models.Procedure, 0, len(records))
	for i, record := range records {
		title := strings.TrimSpace(record[0])
		if title == "" {
			return nil, fmt.Errorf("procedures.csv: empty title on line %d", i+1)
		}
		procedures = append(procedures, models.Procedure{
			ProcedureID:    int64(i + 1),
			ProcedureTitle: title,
		})
	}
	return procedures, nil
}

// Users parses the embedded seed users
func Users() ([]models.User, error) {
	records, err := readCSV(UsersCSV, 2)
	if err != nil {
		return nil, fmt.Errorf("users.csv: %w", err)
	}

	users := make([]models.User, 0, len(records))
	for i, record := range records {
		id, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
		if err != nil || id < 1 {
			return nil, fmt.Errorf("users.csv: invalid id on line %d", i+1)
		}
		user := models.User{UserID: id, Name: strings.TrimSpace(record[1])}
		user.CreateDate = SeedDate
		user.UpdateDate = SeedDate
		users = append(users, user)
	}
	return users, nil
}

func readCSV(raw []byte, fields int) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = fields
	r.TrimLeadingSpace = true
	return r.ReadAll()
}
