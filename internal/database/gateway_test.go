package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/localnerve/plansdb/internal/models"
	"github.com/localnerve/plansdb/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

func seedPair(t *testing.T, db *gorm.DB) {
	t.Helper()
	_, err := Seed(context.Background(), db)
	require.NoError(t, err)

	plan := models.Plan{PlanID: 1}
	models.Stamp(fixedNow, true, &plan)
	require.NoError(t, db.Create(&plan).Error)

	link := models.PlanProcedure{PlanID: 1, ProcedureID: 2}
	models.Stamp(fixedNow, true, &link)
	require.NoError(t, db.Create(&link).Error)
}

func assignedUserIDs(t *testing.T, db *gorm.DB, planID, procedureID int64) []int64 {
	t.Helper()
	var ids []int64
	require.NoError(t, db.Model(&models.AssignedUser{}).
		Where("plan_id = ? AND procedure_id = ?", planID, procedureID).
		Order("user_id").
		Pluck("user_id", &ids).Error)
	return ids
}

func TestSeedIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first, err := Seed(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(4), first.Users)
	assert.Positive(t, first.Procedures)

	second, err := Seed(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, second.Users)
	assert.Zero(t, second.Procedures)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}

func TestGatewayLookups(t *testing.T) {
	db := setupTestDB(t)
	seedPair(t, db)
	g := NewGateway(db)

	err := g.WithinTransaction(context.Background(), func(tx services.Tx) error {
		ctx := context.Background()

		plan, err := tx.FindPlanWithAssociations(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, plan)
		require.Len(t, plan.PlanProcedures, 1)
		assert.Equal(t, int64(2), plan.PlanProcedures[0].ProcedureID)

		missingPlan, err := tx.FindPlanWithAssociations(ctx, 99)
		require.NoError(t, err)
		assert.Nil(t, missingPlan)

		procedure, err := tx.FindProcedure(ctx, 2)
		require.NoError(t, err)
		require.NotNil(t, procedure)
		assert.Equal(t, "Appendectomy", procedure.ProcedureTitle)

		missingProcedure, err := tx.FindProcedure(ctx, 9999)
		require.NoError(t, err)
		assert.Nil(t, missingProcedure)

		users, err := tx.FindUsers(ctx, []int64{1, 3, 42})
		require.NoError(t, err)
		assert.Len(t, users, 2)

		assert.NoError(t, tx.LockPlanProcedure(ctx, 1, 2))
		return nil
	})
	require.NoError(t, err)
}

func TestGatewaySaveChangesStampsAndFlushes(t *testing.T) {
	db := setupTestDB(t)
	seedPair(t, db)
	g := NewGateway(db, WithClock(func() time.Time { return fixedNow }))
	ctx := context.Background()

	err := g.WithinTransaction(ctx, func(tx services.Tx) error {
		tx.InsertAssignedUsers([]models.AssignedUser{
			{PlanID: 1, ProcedureID: 2, UserID: 1},
			{PlanID: 1, ProcedureID: 2, UserID: 2},
		})
		return tx.SaveChanges(ctx)
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, assignedUserIDs(t, db, 1, 2))

	var row models.AssignedUser
	require.NoError(t, db.Where("user_id = ?", 1).First(&row).Error)
	assert.True(t, fixedNow.Equal(row.CreateDate))
	assert.True(t, fixedNow.Equal(row.UpdateDate))

	err = g.WithinTransaction(ctx, func(tx services.Tx) error {
		rows, err := tx.QueryAssignedUsers(ctx, 1, 2)
		if err != nil {
			return err
		}
		require.Len(t, rows, 2)
		tx.DeleteAssignedUsers(rows)
		tx.InsertAssignedUsers([]models.AssignedUser{{PlanID: 1, ProcedureID: 2, UserID: 2}})
		return tx.SaveChanges(ctx)
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, assignedUserIDs(t, db, 1, 2))
}

func TestGatewayRollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	seedPair(t, db)
	g := NewGateway(db)
	ctx := context.Background()
	boom := errors.New("boom")

	err := g.WithinTransaction(ctx, func(tx services.Tx) error {
		tx.InsertAssignedUsers([]models.AssignedUser{{PlanID: 1, ProcedureID: 2, UserID: 1}})
		if err := tx.SaveChanges(ctx); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, assignedUserIDs(t, db, 1, 2))
}

func TestGatewayRejectsUnsavedChanges(t *testing.T) {
	db := setupTestDB(t)
	seedPair(t, db)
	g := NewGateway(db)

	err := g.WithinTransaction(context.Background(), func(tx services.Tx) error {
		tx.InsertAssignedUsers([]models.AssignedUser{{PlanID: 1, ProcedureID: 2, UserID: 1}})
		return nil
	})
	assert.EqualError(t, err, "transaction finished with unsaved changes")
	assert.Empty(t, assignedUserIDs(t, db, 1, 2))
}

func TestGatewayRollsBackOnCancel(t *testing.T) {
	db := setupTestDB(t)
	seedPair(t, db)
	g := NewGateway(db)
	ctx, cancel := context.WithCancel(context.Background())

	err := g.WithinTransaction(ctx, func(tx services.Tx) error {
		tx.InsertAssignedUsers([]models.AssignedUser{{PlanID: 1, ProcedureID: 2, UserID: 1}})
		if err := tx.SaveChanges(ctx); err != nil {
			return err
		}
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, assignedUserIDs(t, db, 1, 2))
}

func TestGatewayUniquePairUser(t *testing.T) {
	db := setupTestDB(t)
	seedPair(t, db)
	g := NewGateway(db)
	ctx := context.Background()

	err := g.WithinTransaction(ctx, func(tx services.Tx) error {
		tx.InsertAssignedUsers([]models.AssignedUser{
			{PlanID: 1, ProcedureID: 2, UserID: 1},
			{PlanID: 1, ProcedureID: 2, UserID: 1},
		})
		return tx.SaveChanges(ctx)
	})
	assert.Error(t, err)
	assert.Empty(t, assignedUserIDs(t, db, 1, 2))
}
