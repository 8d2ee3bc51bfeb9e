package syncctl

import "context"

// NoticeKind classifies a user-facing notice.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeWarning NoticeKind = "warning"
)

// Notice is a message meant for the person driving the controller.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Notifier delivers notices to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notice)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, n Notice) {
	f(ctx, n)
}

// Recorder observes finished operations.
type Recorder interface {
	ObserveOperation(op, status string)
}

type discard struct{}

func (discard) Notify(context.Context, Notice) {}

func (discard) ObserveOperation(string, string) {}
