package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *TurnsRepo {
	t.Helper()
	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "nested", "tusk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTurnsRepo(db)
}

func TestTurnsRepo_AddAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	at := time.Date(2026, 10, 19, 14, 5, 0, 0, time.UTC)
	require.NoError(t, repo.AddTurn(ctx, core.StoredTurn{
		Message:    "I need a car",
		Reply:      "**Corolla**",
		HistoryLen: 1,
		Provider:   "echo",
		CreatedAt:  at,
	}))

	turns, err := repo.ListTurns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, turns, 1)

	got := turns[0]
	assert.NotZero(t, got.ID)
	assert.Equal(t, "I need a car", got.Message)
	assert.Equal(t, "**Corolla**", got.Reply)
	assert.Equal(t, 1, got.HistoryLen)
	assert.Equal(t, "echo", got.Provider)
	assert.True(t, at.Equal(got.CreatedAt), "created_at %v", got.CreatedAt)
}

func TestTurnsRepo_ListNewestChronological(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.AddTurn(ctx, core.StoredTurn{
			Message: fmt.Sprintf("m%d", i),
			Reply:   fmt.Sprintf("r%d", i),
		}))
	}

	turns, err := repo.ListTurns(ctx, 3)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, "m2", turns[0].Message)
	assert.Equal(t, "m3", turns[1].Message)
	assert.Equal(t, "m4", turns[2].Message)
}

func TestTurnsRepo_EmptyListIsNotNil(t *testing.T) {
	repo := newTestRepo(t)

	turns, err := repo.ListTurns(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, turns)
	assert.Empty(t, turns)
}

func TestNewDB_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tusk.db")
	ctx := context.Background()

	db, err := NewDB(ctx, path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewDB(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	var version int64
	require.NoError(t, db.QueryRow(`SELECT MAX(version_id) FROM goose_db_version`).Scan(&version))
	assert.Equal(t, int64(2), version)
}
