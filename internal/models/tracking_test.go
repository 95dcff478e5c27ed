package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStampInserted(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	row := &AssignedUser{PlanID: 1, ProcedureID: 2, UserID: 3}

	Stamp(now, true, row)

	assert.Equal(t, now, row.CreateDate)
	assert.Equal(t, now, row.UpdateDate)
}

func TestStampUpdatedKeepsCreateDate(t *testing.T) {
	created := time.Date(1999, 12, 13, 0, 0, 0, 0, time.UTC)
	now := created.Add(24 * time.Hour)
	user := &User{UserID: 1, Name: "Nick Morrison"}
	user.CreateDate = created

	Stamp(now, false, user, nil)

	assert.Equal(t, created, user.CreateDate)
	assert.Equal(t, now, user.UpdateDate)
}

func TestStampSkipsTypedNilRows(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var missing *User
	var link *AssignedUser
	plan := &Plan{}

	assert.NotPanics(t, func() { Stamp(now, true, missing, plan, link) })
	assert.Equal(t, now, plan.CreateDate)
	assert.Equal(t, now, plan.UpdateDate)
}

func TestStampNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	plan := &Plan{}

	Stamp(time.Date(2026, 1, 1, 5, 0, 0, 0, loc), true, plan)

	assert.Equal(t, time.UTC, plan.CreateDate.Location())
	assert.Equal(t, 0, plan.CreateDate.Hour())
}

func TestPlanHasProcedure(t *testing.T) {
	plan := Plan{PlanID: 1, PlanProcedures: []PlanProcedure{{PlanID: 1, ProcedureID: 2}}}

	assert.True(t, plan.HasProcedure(2))
	assert.False(t, plan.HasProcedure(3))
}

func TestNewJSON(t *testing.T) {
	empty, err := NewJSON(nil)
	assert.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	doc, err := NewJSON(map[string]string{"name": "knee"})
	assert.NoError(t, err)
	assert.False(t, doc.IsEmpty())
	assert.JSONEq(t, `{"name":"knee"}`, string(doc.JSON))
}
