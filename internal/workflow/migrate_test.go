package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medflow-backend/internal/models"
	"medflow-backend/internal/store"
)

func TestMigrateStatuses(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seed := map[string]bool{
		"New":          false,
		"In Progress":  false,
		"Bill Collect": false,
		"Come Back":    false,
		"Lost":         false,
	}
	ids := map[string]uint{}
	for label, locked := range seed {
		p := &models.Patient{FullName: label, PassportNumber: "P", Status: models.Status(label), IsLocked: locked}
		require.NoError(t, st.CreatePatient(ctx, p))
		ids[label] = p.ID
	}

	dry, err := MigrateStatuses(ctx, st, later, true)
	require.NoError(t, err)
	assert.Equal(t, 3, dry.Rewritten)
	untouched, err := st.GetPatient(ctx, ids["Bill Collect"])
	require.NoError(t, err)
	assert.Equal(t, models.Status("Bill Collect"), untouched.Status)

	report, err := MigrateStatuses(ctx, st, later, false)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Scanned)
	assert.Equal(t, 3, report.Rewritten)
	assert.Equal(t, 1, report.Locked)
	assert.Equal(t, map[string]int{"Lost": 1}, report.Unknown)

	paid, err := st.GetPatient(ctx, ids["Bill Collect"])
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, paid.Status)
	assert.True(t, paid.IsLocked)

	back, err := st.GetPatient(ctx, ids["Come Back"])
	require.NoError(t, err)
	assert.Equal(t, models.StatusReturned, back.Status)

	again, err := MigrateStatuses(ctx, st, later, false)
	require.NoError(t, err)
	assert.Zero(t, again.Rewritten)
}
