package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/nestmarket/authgate/internal/gate/domain"
)

type eventsRepo struct {
	db *sql.DB
}

func (r *eventsRepo) RecordEvent(ctx context.Context, e domain.AuthEvent) error {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO auth_events (id, kind, email, detail, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.ID, string(e.Kind), e.Email, e.Detail, createdAt,
	)
	return err
}

func (r *eventsRepo) ListRecentByEmail(ctx context.Context, email string, limit int) ([]domain.AuthEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, email, detail, created_at
		FROM auth_events
		WHERE email = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		email, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuthEvent
	for rows.Next() {
		var e domain.AuthEvent
		var kind string
		if err := rows.Scan(&e.ID, &kind, &e.Email, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Kind = domain.EventKind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventsRepo) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM auth_events WHERE created_at < ?`, cutoff,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
