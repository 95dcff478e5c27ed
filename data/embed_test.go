package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcedures(t *testing.T) {
	procedures, err := Procedures()
	require.NoError(t, err)
	require.NotEmpty(t, procedures)

	assert.Equal(t, int64(1), procedures[0].ProcedureID)
	assert.Equal(t, "Abdominal Aortic Aneurysm Repair", procedures[0].ProcedureTitle)
	for i, p := range procedures {
		assert.Equal(t, int64(i+1), p.ProcedureID)
		assert.NotEmpty(t, p.ProcedureTitle)
	}
}

func TestUsers(t *testing.T) {
	users, err := Users()
	require.NoError(t, err)
	require.Len(t, users, 4)

	assert.Equal(t, int64(1), users[0].UserID)
	assert.Equal(t, "Nick Morrison", users[0].Name)
	assert.Equal(t, SeedDate, users[3].CreateDate)
}
