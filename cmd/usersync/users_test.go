package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/usersync/internal/syncctl"
	"github.com/odyssey-erp/usersync/internal/users"
	_ "github.com/odyssey-erp/usersync/testing"
)

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	users.NewHandler(nil, users.NewService(users.NewMemoryRepository())).MountRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCreatePrintsReloadedList(t *testing.T) {
	srv := newAPI(t)

	out, _, err := run(t, "--api-url", srv.URL, "create", "--name", "Ada", "--email", "ada@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "success: User created successfully!")
	assert.Contains(t, out, "ada@example.com")
	assert.Contains(t, out, "EMAIL")
}

func TestCreateIncompleteIsReported(t *testing.T) {
	srv := newAPI(t)

	out, errOut, err := run(t, "--api-url", srv.URL, "create", "--name", "Ada")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, errOut, syncctl.MsgCreateIncomplete)
	assert.NotContains(t, out, "Ada")
}

func TestUpdateKeepsEmptyField(t *testing.T) {
	srv := newAPI(t)
	_, _, err := run(t, "--api-url", srv.URL, "create", "--name", "Ada", "--email", "ada@example.com")
	require.NoError(t, err)

	out, _, err := run(t, "--api-url", srv.URL, "update", "1", "--name", "Ada Lovelace")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace")
	assert.Contains(t, out, "ada@example.com")
}

func TestDeleteThenListEmpty(t *testing.T) {
	srv := newAPI(t)
	_, _, err := run(t, "--api-url", srv.URL, "create", "--name", "Ada", "--email", "ada@example.com")
	require.NoError(t, err)

	_, _, err = run(t, "--api-url", srv.URL, "delete", "1")
	require.NoError(t, err)

	out, _, err := run(t, "--api-url", srv.URL, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No users.")
}

func TestDeleteRejectsNonNumericID(t *testing.T) {
	_, _, err := run(t, "delete", "abc")
	assert.Error(t, err)
}

func TestListUnreachableFails(t *testing.T) {
	srv := newAPI(t)
	srv.Close()

	_, _, err := run(t, "--api-url", srv.URL, "--timeout", "2s", "list")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errReported)
	assert.Contains(t, err.Error(), "load failed")
}

func TestConsoleSkipsStartupInTestMode(t *testing.T) {
	_, _, err := run(t, "console")
	assert.NoError(t, err)
}

func TestCreateWarnsWhenReloadFails(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/user", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"User created successfully!","id":1}`))
	})
	r.Get("/users", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	out, errOut, err := run(t, "--api-url", srv.URL, "create", "--name", "Ada", "--email", "ada@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "success: User created successfully!")
	assert.Contains(t, errOut, "could not be reloaded")
}
