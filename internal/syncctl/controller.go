// Package syncctl keeps a local copy of the remote user collection in step
// with the server. Every successful write is followed by a full reload, and
// reload responses are applied in the order the reloads were issued.
package syncctl

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/usersync/internal/userapi"
	"github.com/odyssey-erp/usersync/internal/users"
)

// Remote is the part of the user API the controller calls.
type Remote interface {
	ListUsers(ctx context.Context) ([]users.User, error)
	CreateUser(ctx context.Context, p userapi.Payload) (userapi.Reply, error)
	UpdateUser(ctx context.Context, id string, p userapi.Payload) (userapi.Reply, error)
	DeleteUser(ctx context.Context, id string) (userapi.Reply, error)
}

// Options carries optional collaborators. Nil fields fall back to no-ops and
// slog.Default.
type Options struct {
	Logger   *slog.Logger
	Notifier Notifier
	Recorder Recorder
}

// Controller holds the collection and form state.
type Controller struct {
	remote   Remote
	logger   *slog.Logger
	notifier Notifier
	recorder Recorder
	validate *validator.Validate

	startOnce   sync.Once
	startResult Result

	issued atomic.Uint64

	mu      sync.Mutex
	applied uint64
	users   []users.User
	form    Form
}

// New builds a controller with an empty collection. Call Start to run the
// initial load.
func New(remote Remote, opts Options) *Controller {
	c := &Controller{
		remote:   remote,
		logger:   opts.Logger,
		notifier: opts.Notifier,
		recorder: opts.Recorder,
		validate: validator.New(),
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.notifier == nil {
		c.notifier = discard{}
	}
	if c.recorder == nil {
		c.recorder = discard{}
	}
	return c
}

// Start performs the initial load. Later calls return the first result.
func (c *Controller) Start(ctx context.Context) Result {
	c.startOnce.Do(func() {
		c.startResult = c.Load(ctx)
	})
	return c.startResult
}

// Users returns a copy of the current collection.
func (c *Controller) Users() []users.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.users == nil {
		return nil
	}
	out := make([]users.User, len(c.users))
	copy(out, c.users)
	return out
}

// Form returns a snapshot of the form state.
func (c *Controller) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// SetCreateForm stores the create-name and create-email inputs.
func (c *Controller) SetCreateForm(name, email string) {
	c.mu.Lock()
	c.form.CreateName = name
	c.form.CreateEmail = email
	c.mu.Unlock()
}

// SetUpdateForm stores the update-id, update-name and update-email inputs.
func (c *Controller) SetUpdateForm(id, name, email string) {
	c.mu.Lock()
	c.form.UpdateID = id
	c.form.UpdateName = name
	c.form.UpdateEmail = email
	c.mu.Unlock()
}

// Load fetches the full collection and replaces the local copy, unless a
// reload issued later has already been applied. A failed load leaves the
// collection as it was.
func (c *Controller) Load(ctx context.Context) Result {
	seq := c.issued.Add(1)
	list, err := c.remote.ListUsers(ctx)
	if err != nil {
		c.logger.Error("load users failed", slog.Uint64("seq", seq), slog.Any("error", err))
		return c.finish(Result{Op: OpLoad, Status: StatusFailed, Err: err})
	}

	c.mu.Lock()
	fresh := seq > c.applied
	if fresh {
		c.applied = seq
		c.users = list
	}
	c.mu.Unlock()

	if !fresh {
		c.logger.Debug("stale reload discarded", slog.Uint64("seq", seq))
	}
	return c.finish(Result{Op: OpLoad, Status: StatusSucceeded})
}

// Create submits the controller's own create form. Both fields must be
// non-empty.
func (c *Controller) Create(ctx context.Context) Result {
	form := c.Form()
	res := c.CreateFrom(ctx, &form)
	if res.OK() {
		c.mu.Lock()
		c.form.CreateName = ""
		c.form.CreateEmail = ""
		c.mu.Unlock()
	}
	return res
}

// CreateFrom submits the create fields of a form owned by the caller, such
// as one kept per browser session. The fields are cleared on success only.
func (c *Controller) CreateFrom(ctx context.Context, form *Form) Result {
	if err := c.validate.Struct(createFields{Name: form.CreateName, Email: form.CreateEmail}); err != nil {
		return c.invalid(ctx, OpCreate, MsgCreateIncomplete)
	}

	reply, err := c.remote.CreateUser(ctx, userapi.Payload{Name: form.CreateName, Email: form.CreateEmail})
	if err != nil {
		return c.failed(OpCreate, err)
	}

	c.notify(ctx, NoticeSuccess, reply.Message)
	form.CreateName = ""
	form.CreateEmail = ""
	return c.succeeded(ctx, OpCreate, reply.Message)
}

// Update submits the controller's own update form. The id and at least one
// of name or email must be present.
func (c *Controller) Update(ctx context.Context) Result {
	form := c.Form()
	res := c.UpdateFrom(ctx, &form)
	if res.OK() {
		c.mu.Lock()
		c.form.UpdateID = ""
		c.form.UpdateName = ""
		c.form.UpdateEmail = ""
		c.mu.Unlock()
	}
	return res
}

// UpdateFrom submits the update fields of a caller-owned form. Both fields
// are always sent; an empty one goes out as "".
func (c *Controller) UpdateFrom(ctx context.Context, form *Form) Result {
	fields := updateFields{ID: form.UpdateID, Name: form.UpdateName, Email: form.UpdateEmail}
	if err := c.validate.Struct(fields); err != nil {
		return c.invalid(ctx, OpUpdate, MsgUpdateIncomplete)
	}

	reply, err := c.remote.UpdateUser(ctx, form.UpdateID, userapi.Payload{Name: form.UpdateName, Email: form.UpdateEmail})
	if err != nil {
		return c.failed(OpUpdate, err)
	}

	c.notify(ctx, NoticeSuccess, reply.Message)
	form.UpdateID = ""
	form.UpdateName = ""
	form.UpdateEmail = ""
	return c.succeeded(ctx, OpUpdate, reply.Message)
}

// Delete removes the user shown in a row of the collection.
func (c *Controller) Delete(ctx context.Context, id int64) Result {
	reply, err := c.remote.DeleteUser(ctx, strconv.FormatInt(id, 10))
	if err != nil {
		return c.failed(OpDelete, err)
	}

	c.notify(ctx, NoticeSuccess, reply.Message)
	return c.succeeded(ctx, OpDelete, reply.Message)
}

// succeeded reloads after a write and reports whether the reload landed.
func (c *Controller) succeeded(ctx context.Context, op Op, msg string) Result {
	reload := c.Load(ctx)
	if !reload.OK() {
		c.logger.Warn("collection may be stale after write", slog.String("op", string(op)))
	}
	return c.finish(Result{Op: op, Status: StatusSucceeded, Message: msg, Reloaded: reload.OK()})
}

func (c *Controller) invalid(ctx context.Context, op Op, msg string) Result {
	c.logger.Debug("form rejected", slog.String("op", string(op)))
	c.notify(ctx, NoticeWarning, msg)
	return c.finish(Result{Op: op, Status: StatusInvalid, Message: msg, Err: fmt.Errorf("%w: %s", ErrValidation, msg)})
}

func (c *Controller) failed(op Op, err error) Result {
	c.logger.Error(string(op)+" user failed", slog.Any("error", err))
	return c.finish(Result{Op: op, Status: StatusFailed, Err: err})
}

func (c *Controller) notify(ctx context.Context, kind NoticeKind, msg string) {
	c.notifier.Notify(ctx, Notice{Kind: kind, Message: msg})
}

func (c *Controller) finish(r Result) Result {
	c.recorder.ObserveOperation(string(r.Op), r.Status.String())
	return r
}
