// Package userapi is the HTTP client for the remote user CRUD service.
package userapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/odyssey-erp/usersync/internal/users"
)

// Payload is the request body of create and update calls. Both fields are
// always encoded, empty ones as "".
type Payload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Reply is the message envelope returned by mutating calls.
type Reply struct {
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

// Client wraps interactions with the user CRUD API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client. A nil httpClient means a client without timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the address requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListUsers fetches the full collection.
func (c *Client) ListUsers(ctx context.Context) ([]users.User, error) {
	var out []users.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateUser posts a new user.
func (c *Client) CreateUser(ctx context.Context, p Payload) (Reply, error) {
	var out Reply
	err := c.do(ctx, http.MethodPost, "/user", p, &out)
	return out, err
}

// UpdateUser replaces name and email of the user addressed by id.
func (c *Client) UpdateUser(ctx context.Context, id string, p Payload) (Reply, error) {
	var out Reply
	err := c.do(ctx, http.MethodPut, "/user/"+url.PathEscape(id), p, &out)
	return out, err
}

// DeleteUser deletes the user addressed by id.
func (c *Client) DeleteUser(ctx context.Context, id string) (Reply, error) {
	var out Reply
	err := c.do(ctx, http.MethodDelete, "/user/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("userapi: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("userapi: %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newError(method, path, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("userapi: decode %s %s: %w", method, path, err)
	}
	return nil
}
