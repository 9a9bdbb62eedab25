package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkChanged_ReconcilesContainingSeries(t *testing.T) {
	env := setupTestService(t)
	ctx := t.Context()

	work, err := env.store.GetWork(ctx, env.f.Shared.ID)
	require.NoError(t, err)
	work.Restricted = true
	require.NoError(t, env.store.UpdateWork(ctx, work))

	report, err := env.svc.WorkChanged(ctx, work.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, []string{env.f.Series.ID}, report.Changed)

	s, err := env.store.GetSeries(ctx, env.f.Series.ID)
	require.NoError(t, err)
	assert.True(t, s.Restricted)

	report, err = env.svc.WorkChanged(ctx, work.ID)
	require.NoError(t, err)
	assert.Empty(t, report.Changed, "reconciliation is idempotent")
}

func TestReconcileAll(t *testing.T) {
	env := setupTestService(t)
	ctx := t.Context()

	_, err := env.svc.Create(ctx, env.alice, CreateSeriesInput{Title: "Empty"})
	require.NoError(t, err)

	report, err := env.svc.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Checked)
	assert.Empty(t, report.Changed)

	changed, err := env.svc.ReconcileRestricted(ctx, "series-missing")
	assert.Error(t, err)
	assert.False(t, changed)
}
