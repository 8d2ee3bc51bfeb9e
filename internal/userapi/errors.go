package userapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Error reports a non-2xx response from the remote service.
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("userapi: %s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("userapi: %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

func newError(method, path string, resp *http.Response) *Error {
	apiErr := &Error{Method: method, Path: path, Status: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	var reply Reply
	if err := json.Unmarshal(data, &reply); err == nil && reply.Message != "" {
		apiErr.Message = reply.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}
