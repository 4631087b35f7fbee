package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/pkg/log"
)

const maxListLimit = 500

type TurnsRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewTurnsRepo(db *sql.DB) *TurnsRepo {
	return &TurnsRepo{db: db, now: time.Now}
}

func (r *TurnsRepo) AddTurn(ctx context.Context, turn core.StoredTurn) error {
	createdAt := turn.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}

	query := `INSERT INTO turns (message, reply, history_len, provider, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, turn.Message, turn.Reply, turn.HistoryLen, turn.Provider, createdAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}
	return nil
}

// ListTurns returns the newest limit turns, oldest first.
func (r *TurnsRepo) ListTurns(ctx context.Context, limit int) ([]core.StoredTurn, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	// Fetch the LAST 'limit' turns by ordering DESC
	query := `SELECT id, message, reply, history_len, provider, created_at FROM turns ORDER BY id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	turns := []core.StoredTurn{}
	for rows.Next() {
		var t core.StoredTurn
		if err := rows.Scan(&t.ID, &t.Message, &t.Reply, &t.HistoryLen, &t.Provider, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turns = append(turns, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Back to chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	log.FromCtx(ctx).Debug().Int("count", len(turns)).Msg("loaded turns")
	return turns, nil
}
