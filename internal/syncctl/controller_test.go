package syncctl

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/usersync/internal/userapi"
	"github.com/odyssey-erp/usersync/internal/users"
)

var errNetwork = errors.New("connection refused")

type call struct {
	Method  string
	Path    string
	Payload *userapi.Payload
}

type fakeRemote struct {
	mu       sync.Mutex
	users    []users.User
	nextID   int64
	calls    []call
	writeErr error
	listErr  error
	// listFn overrides ListUsers; n is the 1-based list call number.
	listFn func(n int, snapshot []users.User) ([]users.User, error)
	lists  int
}

func newFakeRemote(seed ...users.User) *fakeRemote {
	f := &fakeRemote{nextID: 1}
	for _, u := range seed {
		f.users = append(f.users, u)
		if u.ID >= f.nextID {
			f.nextID = u.ID + 1
		}
	}
	return f
}

func (f *fakeRemote) record(c call) {
	f.calls = append(f.calls, c)
}

func (f *fakeRemote) ListUsers(ctx context.Context) ([]users.User, error) {
	f.mu.Lock()
	f.lists++
	n := f.lists
	f.record(call{Method: "GET", Path: "/users"})
	snapshot := append([]users.User(nil), f.users...)
	listErr, listFn := f.listErr, f.listFn
	f.mu.Unlock()

	if listErr != nil {
		return nil, listErr
	}
	if listFn != nil {
		return listFn(n, snapshot)
	}
	return snapshot, nil
}

func (f *fakeRemote) CreateUser(ctx context.Context, p userapi.Payload) (userapi.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(call{Method: "POST", Path: "/user", Payload: &p})
	if f.writeErr != nil {
		return userapi.Reply{}, f.writeErr
	}
	u := users.User{ID: f.nextID, Name: p.Name, Email: p.Email}
	f.nextID++
	f.users = append(f.users, u)
	return userapi.Reply{Message: "User created successfully!", ID: u.ID}, nil
}

func (f *fakeRemote) UpdateUser(ctx context.Context, id string, p userapi.Payload) (userapi.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(call{Method: "PUT", Path: "/user/" + id, Payload: &p})
	if f.writeErr != nil {
		return userapi.Reply{}, f.writeErr
	}
	return userapi.Reply{Message: "User updated successfully!"}, nil
}

func (f *fakeRemote) DeleteUser(ctx context.Context, id string) (userapi.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(call{Method: "DELETE", Path: "/user/" + id})
	if f.writeErr != nil {
		return userapi.Reply{}, f.writeErr
	}
	kept := f.users[:0]
	for _, u := range f.users {
		if strconv.FormatInt(u.ID, 10) != id {
			kept = append(kept, u)
		}
	}
	f.users = kept
	return userapi.Reply{Message: "User deleted successfully!"}, nil
}

func (f *fakeRemote) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakeRemote) count(method string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

type noticeLog struct {
	mu      sync.Mutex
	notices []Notice
}

func (l *noticeLog) Notify(ctx context.Context, n Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notices = append(l.notices, n)
}

func (l *noticeLog) All() []Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Notice(nil), l.notices...)
}

type opCounter struct {
	mu   sync.Mutex
	seen map[string]int
}

func (o *opCounter) ObserveOperation(op, status string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.seen == nil {
		o.seen = map[string]int{}
	}
	o.seen[op+"/"+status]++
}

func newController(t *testing.T, remote *fakeRemote) (*Controller, *noticeLog) {
	t.Helper()
	notices := &noticeLog{}
	ctrl := New(remote, Options{Notifier: notices})
	require.True(t, ctrl.Start(context.Background()).OK())
	return ctrl, notices
}

var seedUsers = []users.User{
	{ID: 1, Name: "Ana", Email: "ana@example.com"},
	{ID: 2, Name: "Budi", Email: "budi@example.com"},
}

func TestStartLoadsOnce(t *testing.T) {
	remote := newFakeRemote(seedUsers...)
	ctrl := New(remote, Options{})
	assert.Nil(t, ctrl.Users())

	require.True(t, ctrl.Start(context.Background()).OK())
	require.True(t, ctrl.Start(context.Background()).OK())

	assert.Equal(t, seedUsers, ctrl.Users())
	assert.Equal(t, 1, remote.count("GET"))
}

func TestLoadFailureKeepsCollection(t *testing.T) {
	remote := newFakeRemote(seedUsers...)
	ctrl, notices := newController(t, remote)

	remote.mu.Lock()
	remote.listErr = errNetwork
	remote.mu.Unlock()

	res := ctrl.Load(context.Background())
	assert.Equal(t, StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, errNetwork)
	assert.Equal(t, seedUsers, ctrl.Users())
	assert.Empty(t, notices.All())
}

func TestCreateWithMissingFieldMakesNoCalls(t *testing.T) {
	for _, tc := range []struct{ name, email string }{
		{"", ""},
		{"Ana", ""},
		{"", "ana@example.com"},
	} {
		remote := newFakeRemote(seedUsers...)
		ctrl, notices := newController(t, remote)
		before := len(remote.Calls())

		ctrl.SetCreateForm(tc.name, tc.email)
		res := ctrl.Create(context.Background())

		assert.Equal(t, StatusInvalid, res.Status)
		assert.ErrorIs(t, res.Err, ErrValidation)
		assert.Len(t, remote.Calls(), before, "no network call for %q/%q", tc.name, tc.email)
		assert.Equal(t, seedUsers, ctrl.Users())
		assert.Equal(t, []Notice{{Kind: NoticeWarning, Message: MsgCreateIncomplete}}, notices.All())
		assert.Equal(t, Form{CreateName: tc.name, CreateEmail: tc.email}, ctrl.Form())
	}
}

func TestCreateClearsFieldsAndReloadsOnce(t *testing.T) {
	remote := newFakeRemote(seedUsers...)
	ctrl, notices := newController(t, remote)
	ctrl.SetUpdateForm("2", "keep", "")

	ctrl.SetCreateForm("Citra", "citra@example.com")
	res := ctrl.Create(context.Background())

	require.True(t, res.OK())
	assert.True(t, res.Reloaded)
	assert.Equal(t, "User created successfully!", res.Message)
	assert.Equal(t, Form{UpdateID: "2", UpdateName: "keep"}, ctrl.Form())
	assert.Equal(t, 2, remote.count("GET"), "initial load plus exactly one reload")
	assert.Equal(t, []call{
		{Method: "GET", Path: "/users"},
		{Method: "POST", Path: "/user", Payload: &userapi.Payload{Name: "Citra", Email: "citra@example.com"}},
		{Method: "GET", Path: "/users"},
	}, remote.Calls())
	assert.Len(t, ctrl.Users(), 3)
	assert.Equal(t, []Notice{{Kind: NoticeSuccess, Message: "User created successfully!"}}, notices.All())
}

func TestUpdateValidation(t *testing.T) {
	for _, tc := range []struct{ id, name, email string }{
		{"", "x", "y"},
		{"1", "", ""},
	} {
		remote := newFakeRemote(seedUsers...)
		ctrl, notices := newController(t, remote)

		ctrl.SetUpdateForm(tc.id, tc.name, tc.email)
		res := ctrl.Update(context.Background())

		assert.Equal(t, StatusInvalid, res.Status)
		assert.Equal(t, 1, len(remote.Calls()))
		assert.Equal(t, []Notice{{Kind: NoticeWarning, Message: MsgUpdateIncomplete}}, notices.All())
	}
}

func TestUpdateSendsEmptyEmail(t *testing.T) {
	remote := newFakeRemote(seedUsers...)
	ctrl, _ := newController(t, remote)

	ctrl.SetUpdateForm("1", "Ana Maria", "")
	res := ctrl.Update(context.Background())

	require.True(t, res.OK())
	calls := remote.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "PUT", calls[1].Method)
	assert.Equal(t, "/user/1", calls[1].Path)
	assert.Equal(t, &userapi.Payload{Name: "Ana Maria", Email: ""}, calls[1].Payload)
	assert.Equal(t, Form{}, ctrl.Form())
}

func TestDeleteIssuesOneDeleteAndOneReload(t *testing.T) {
	for _, seed := range [][]users.User{nil, seedUsers} {
		remote := newFakeRemote(seed...)
		ctrl, notices := newController(t, remote)

		res := ctrl.Delete(context.Background(), 3)

		require.True(t, res.OK())
		assert.Equal(t, []call{
			{Method: "GET", Path: "/users"},
			{Method: "DELETE", Path: "/user/3"},
			{Method: "GET", Path: "/users"},
		}, remote.Calls())
		assert.Equal(t, []Notice{{Kind: NoticeSuccess, Message: "User deleted successfully!"}}, notices.All())
	}
}

func TestRemoteFailureLeavesStateUntouched(t *testing.T) {
	remote := newFakeRemote(seedUsers...)
	ctrl, notices := newController(t, remote)
	remote.mu.Lock()
	remote.writeErr = errNetwork
	remote.mu.Unlock()

	ctrl.SetCreateForm("Citra", "citra@example.com")
	ctrl.SetUpdateForm("1", "Ana Maria", "ana.m@example.com")
	want := ctrl.Form()

	results := []Result{
		ctrl.Create(context.Background()),
		ctrl.Update(context.Background()),
		ctrl.Delete(context.Background(), 1),
	}

	for _, res := range results {
		assert.Equal(t, StatusFailed, res.Status, string(res.Op))
		assert.ErrorIs(t, res.Err, errNetwork)
	}
	assert.Equal(t, want, ctrl.Form())
	assert.Equal(t, seedUsers, ctrl.Users())
	assert.Equal(t, 1, remote.count("GET"), "no reload after a failed write")
	assert.Empty(t, notices.All())
}

func TestStaleReloadIsDiscarded(t *testing.T) {
	remote := newFakeRemote()
	gate := make(chan struct{})
	remote.listFn = func(n int, snapshot []users.User) ([]users.User, error) {
		switch n {
		case 1:
			<-gate
			return []users.User{{ID: 1, Name: "old"}}, nil
		default:
			return []users.User{{ID: 2, Name: "new"}}, nil
		}
	}
	ctrl := New(remote, Options{})

	done := make(chan Result, 1)
	go func() { done <- ctrl.Load(context.Background()) }()
	require.Eventually(t, func() bool { return remote.count("GET") == 1 }, time.Second, time.Millisecond)

	require.True(t, ctrl.Load(context.Background()).OK())
	close(gate)
	require.True(t, (<-done).OK())

	assert.Equal(t, []users.User{{ID: 2, Name: "new"}}, ctrl.Users())
}

func TestConcurrentOperationsLastReloadWins(t *testing.T) {
	remote := newFakeRemote(seedUsers...)
	ctrl, _ := newController(t, remote)

	// Reload #2 belongs to operation A and is held back until B is done.
	gate := make(chan struct{})
	remote.mu.Lock()
	remote.listFn = func(n int, snapshot []users.User) ([]users.User, error) {
		if n == 2 {
			<-gate
		}
		return snapshot, nil
	}
	remote.mu.Unlock()

	doneA := make(chan Result, 1)
	go func() {
		ctrl.SetCreateForm("Citra", "citra@example.com")
		doneA <- ctrl.Create(context.Background())
	}()
	require.Eventually(t, func() bool { return remote.count("GET") == 2 }, time.Second, time.Millisecond)

	resB := ctrl.Delete(context.Background(), 1)
	require.True(t, resB.OK())
	close(gate)
	require.True(t, (<-doneA).OK())

	assert.Equal(t, []users.User{
		{ID: 2, Name: "Budi", Email: "budi@example.com"},
		{ID: 3, Name: "Citra", Email: "citra@example.com"},
	}, ctrl.Users())
}

func TestRecorderSeesEveryOperation(t *testing.T) {
	remote := newFakeRemote(seedUsers...)
	rec := &opCounter{}
	ctrl := New(remote, Options{Recorder: rec})

	ctrl.Start(context.Background())
	ctrl.Create(context.Background())
	ctrl.Delete(context.Background(), 2)

	assert.Equal(t, map[string]int{
		"load/succeeded":   2,
		"create/invalid":   1,
		"delete/succeeded": 1,
	}, rec.seen)
}

func TestCallerOwnedFormsStayIndependent(t *testing.T) {
	remote := newFakeRemote(seedUsers...)
	ctrl, notices := newController(t, remote)
	ctrl.SetCreateForm("own", "own@example.com")

	first := Form{CreateEmail: "first@example.com", UpdateID: "1", UpdateName: "Ana Maria"}
	second := Form{CreateName: "Citra", CreateEmail: "citra@example.com"}

	res := ctrl.CreateFrom(context.Background(), &first)
	assert.Equal(t, StatusInvalid, res.Status)
	assert.Equal(t, Form{CreateEmail: "first@example.com", UpdateID: "1", UpdateName: "Ana Maria"}, first)

	res = ctrl.CreateFrom(context.Background(), &second)
	require.True(t, res.OK())
	assert.Equal(t, Form{}, second)

	res = ctrl.UpdateFrom(context.Background(), &first)
	require.True(t, res.OK())
	assert.Equal(t, Form{CreateEmail: "first@example.com"}, first)

	assert.Equal(t, Form{CreateName: "own", CreateEmail: "own@example.com"}, ctrl.Form())
	assert.Equal(t, []Notice{
		{Kind: NoticeWarning, Message: MsgCreateIncomplete},
		{Kind: NoticeSuccess, Message: "User created successfully!"},
		{Kind: NoticeSuccess, Message: "User updated successfully!"},
	}, notices.All())
}

func TestFailedReloadAfterWriteIsReported(t *testing.T) {
	remote := newFakeRemote(seedUsers...)
	ctrl, _ := newController(t, remote)
	remote.mu.Lock()
	remote.listFn = func(n int, snapshot []users.User) ([]users.User, error) {
		return nil, errNetwork
	}
	remote.mu.Unlock()

	ctrl.SetCreateForm("Citra", "citra@example.com")
	res := ctrl.Create(context.Background())

	assert.Equal(t, StatusSucceeded, res.Status)
	assert.False(t, res.Reloaded)
	assert.Equal(t, seedUsers, ctrl.Users(), "stale collection is kept")
	assert.Equal(t, Form{}, ctrl.Form())
}
