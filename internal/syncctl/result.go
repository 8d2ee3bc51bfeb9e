package syncctl

import "errors"

// ErrValidation marks results rejected before any network call.
var ErrValidation = errors.New("syncctl: validation failed")

// Op names a controller operation.
type Op string

const (
	OpLoad   Op = "load"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Status is the outcome class of an operation.
type Status int

const (
	StatusSucceeded Status = iota + 1
	StatusInvalid
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusInvalid:
		return "invalid"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result reports how an operation ended. Err is set for invalid and failed
// results; Message holds the server reply or the validation notice.
// Reloaded is true when a successful write was followed by a successful
// reload; false means the local collection may be stale.
type Result struct {
	Op       Op
	Status   Status
	Message  string
	Err      error
	Reloaded bool
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Status == StatusSucceeded
}
