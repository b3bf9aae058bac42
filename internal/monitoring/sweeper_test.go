package monitoring_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/isdelr/cabinet-be/internal/auth"
	"github.com/isdelr/cabinet-be/internal/monitoring"
)

func TestSweepRemovesExpiredSessions(t *testing.T) {
	ctx := context.Background()
	store := auth.NewMemoryStore(time.Millisecond)
	for _, u := range []string{"alice", "bob"} {
		_, err := store.Create(ctx, u)
		require.NoError(t, err)
	}
	time.Sleep(5 * time.Millisecond)

	sweeper, err := monitoring.NewSessionSweeper(store, "@every 10m")
	require.NoError(t, err)

	before := testutil.ToFloat64(monitoring.SessionsSwept)
	assert.Equal(t, int64(2), sweeper.Sweep(ctx))
	assert.Equal(t, before+2, testutil.ToFloat64(monitoring.SessionsSwept))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.Zero(t, sweeper.Sweep(ctx))
}

func TestSweeperRejectsBadSchedule(t *testing.T) {
	_, err := monitoring.NewSessionSweeper(auth.NewMemoryStore(time.Hour), "not a schedule")
	assert.Error(t, err)
}

func TestSweeperStopsCleanly(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sweeper, err := monitoring.NewSessionSweeper(auth.NewMemoryStore(time.Hour), "@every 1h")
	require.NoError(t, err)

	sweeper.Start()
	sweeper.Stop()
}
