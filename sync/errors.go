// ABOUTME: Typed errors returned by the list clients and sync orchestration
// ABOUTME: Separates unknown lists, transport failures, and unusable OAuth tokens
package sync

import (
	"errors"
	"fmt"
)

// ListNotFoundError is returned when a list name cannot be resolved to an id.
type ListNotFoundError struct {
	ListName string
}

func (e *ListNotFoundError) Error() string {
	return fmt.Sprintf("the list %q could not be found", e.ListName)
}

// IsListNotFound reports whether err wraps a ListNotFoundError.
func IsListNotFound(err error) bool {
	var target *ListNotFoundError
	return errors.As(err, &target)
}

// TransportError wraps a failed request against a remote API. StatusCode is zero
// when no response was received.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d: %v", e.Method, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// InvalidTokenError means the stored Google token is missing, unreadable, or
// expired without a refresh token. Run "groupsync sync configure" to fix it.
type InvalidTokenError struct {
	Err error
}

func (e *InvalidTokenError) Error() string {
	if e.Err == nil {
		return "invalid google token"
	}
	return fmt.Sprintf("invalid google token: %v", e.Err)
}

func (e *InvalidTokenError) Unwrap() error {
	return e.Err
}
