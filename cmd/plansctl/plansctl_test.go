package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/localnerve/plansdb/internal/config"
	"github.com/localnerve/plansdb/internal/database"
	"github.com/localnerve/plansdb/internal/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// run executes plansctl against the sqlite file at path and decodes the result
func run(t *testing.T, path string, args ...string) (map[string]json.RawMessage, error) {
	t.Helper()
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DB_DATABASE", path)
	t.Setenv("LOCK_MODE", "local")
	t.Setenv("LOG_LEVEL", "error")

	c := &cli{open: func(cfg *config.Config, _ *logrus.Logger) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open(cfg.DBDatabase), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	}}
	cmd := newRootCmd(c)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		return nil, err
	}
	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	return decoded, nil
}

func TestPlansctlWorkflow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.db")

	out, err := run(t, path, "migrate", "--seed")
	require.NoError(t, err)
	assert.JSONEq(t, `"migrate"`, string(out["command"]))
	var migrated struct {
		Seeded database.SeedResult `json:"seeded"`
		Tables []string            `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(out["result"], &migrated))
	assert.Contains(t, migrated.Tables, "assigned_users")
	assert.Equal(t, database.SeedResult{Procedures: 22, Users: 4}, migrated.Seeded)

	out, err = run(t, path, "seed")
	require.NoError(t, err)
	assert.JSONEq(t, `{"procedures":0,"users":0}`, string(out["result"]))

	out, err = run(t, path, "plan", "create", "--metadata", `{"ward":"east"}`)
	require.NoError(t, err)
	var plan struct {
		PlanID   int64          `json:"planId"`
		Metadata map[string]any `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(out["result"], &plan))
	assert.Equal(t, int64(1), plan.PlanID)
	assert.Equal(t, "east", plan.Metadata["ward"])

	_, err = run(t, path, "plan", "add-procedure", "--plan", "1", "--procedure", "7")
	require.NoError(t, err)

	out, err = run(t, path, "assign", "--plan", "1", "--procedure", "7", "--user", "1,2", "--user", "3")
	require.NoError(t, err)
	assert.JSONEq(t, `{"removed":0,"added":3,"kept":0}`, string(out["result"]))

	out, err = run(t, path, "assign", "--plan", "1", "--procedure", "7", "--user", "3,4")
	require.NoError(t, err)
	assert.JSONEq(t, `{"removed":2,"added":1,"kept":1}`, string(out["result"]))

	out, err = run(t, path, "assigned", "--plan", "1", "--procedure", "7")
	require.NoError(t, err)
	var users []struct {
		UserID int64 `json:"userId"`
	}
	require.NoError(t, json.Unmarshal(out["result"], &users))
	require.Len(t, users, 2)
	assert.Equal(t, int64(3), users[0].UserID)
	assert.Equal(t, int64(4), users[1].UserID)

	out, err = run(t, path, "schema")
	require.NoError(t, err)
	var schema map[string][]columnInfo
	require.NoError(t, json.Unmarshal(out["result"], &schema))
	assert.Contains(t, schema, "plan_procedures")
	assert.NotEmpty(t, schema["assigned_users"])
}

func TestPlansctlAssignErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.db")
	_, err := run(t, path, "migrate", "--seed")
	require.NoError(t, err)

	_, err = run(t, path, "assign", "--plan", "1", "--procedure", "1")
	assert.Equal(t, types.KindInvalidArgument, types.KindOf(err))
	assert.Equal(t, "Invalid UserId", types.MessageOf(err))

	_, err = run(t, path, "assign", "--plan", "5", "--procedure", "1", "--user", "1")
	assert.Equal(t, types.KindNotFound, types.KindOf(err))

	_, err = run(t, path, "assign", "--procedure", "1", "--user", "1")
	assert.ErrorContains(t, err, `required flag(s) "plan" not set`)
}
