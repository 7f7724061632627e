package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/nestmarket/authgate/internal/gate/domain"
	"github.com/nestmarket/authgate/internal/gate/store"
	"github.com/nestmarket/authgate/pkg/idx"
	"github.com/nestmarket/authgate/pkg/slogx"
)

// recordEvent appends to the auth trail. Auditing never blocks an auth
// operation: failures are logged and swallowed, and a nil store disables
// the trail entirely.
func recordEvent(ctx context.Context, st store.Store, kind domain.EventKind, email, detail string) {
	if st == nil {
		return
	}

	err := st.Events().RecordEvent(ctx, domain.AuthEvent{
		ID:        idx.New().String(),
		Kind:      kind,
		Email:     email,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		slogx.FromContext(ctx).Warn("failed to record auth event",
			slog.String("kind", string(kind)),
			slog.Any("error", err),
		)
	}
}
