// Package archive records completed turns to Postgres. It is optional:
// the playground runs fully in memory and the archive is a write-behind
// audit log, read back only for transcript review.
package archive

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/convoplay/convoplay/internal/domain"
)

type Recorder struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Recorder {
	return &Recorder{db: db}
}

// RecordTurn writes one exchange. The session row is created on first
// contact so turn rows always have a parent.
func (r *Recorder) RecordTurn(ctx context.Context, turn domain.ArchivedTurn) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO archive_sessions (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`,
		turn.SessionID,
	)
	if err != nil {
		return fmt.Errorf("ensure session: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO archive_turns
		 (session_id, model, persona, user_text, assistant_text, prompt_tokens, completion_tokens, cost)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		turn.SessionID,
		turn.ModelKey,
		turn.PersonaKey,
		turn.UserText,
		turn.AssistantText,
		turn.PromptTokens,
		turn.CompletionTokens,
		turn.Cost,
	)
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}
	return nil
}

// SessionTurns returns the archived exchanges of one session, oldest
// first.
func (r *Recorder) SessionTurns(ctx context.Context, sessionID uuid.UUID) ([]domain.ArchivedTurn, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, session_id, model, persona, user_text, assistant_text,
		        prompt_tokens, completion_tokens, cost, created_at
		 FROM archive_turns
		 WHERE session_id = $1
		 ORDER BY created_at, id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var turns []domain.ArchivedTurn
	for rows.Next() {
		var t domain.ArchivedTurn
		if err := rows.Scan(
			&t.ID,
			&t.SessionID,
			&t.ModelKey,
			&t.PersonaKey,
			&t.UserText,
			&t.AssistantText,
			&t.PromptTokens,
			&t.CompletionTokens,
			&t.Cost,
			&t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}
	return turns, nil
}
