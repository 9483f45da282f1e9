package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository/bolt"
)

func TestSweepRemovesExpiredSessions(t *testing.T) {
	store, err := bolt.Open(filepath.Join(t.TempDir(), "sessions.db"), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	now := time.Now()
	require.NoError(t, store.Save(ctx, &domain.Session{ID: "live", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.Save(ctx, &domain.Session{ID: "stale", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))

	sweeper, err := NewSessionSweeper(store, "@every 1h", nil)
	require.NoError(t, err)
	sweeper.clock = func() time.Time { return now.Add(10 * time.Minute) }

	removed, err := sweeper.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestNewSessionSweeperRejectsBadSchedule(t *testing.T) {
	_, err := NewSessionSweeper(nil, "not a schedule", nil)
	assert.Error(t, err)
}

func TestSweeperStartStop(t *testing.T) {
	sweeper, err := NewSessionSweeper(nil, "", nil)
	require.NoError(t, err)
	sweeper.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sweeper.Stop(ctx)
}
