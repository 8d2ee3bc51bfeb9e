package console

import (
	"context"

	"github.com/odyssey-erp/usersync/internal/shared"
	"github.com/odyssey-erp/usersync/internal/syncctl"
)

// SessionNotifier turns controller notices into flashes on the session of
// the request that triggered them. Notices without a session are dropped.
type SessionNotifier struct{}

// Notify implements syncctl.Notifier.
func (SessionNotifier) Notify(ctx context.Context, n syncctl.Notice) {
	sess := shared.SessionFromContext(ctx)
	if sess == nil {
		return
	}
	sess.AddFlash(shared.FlashMessage{Kind: string(n.Kind), Message: n.Message})
}
