package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// Kind tags a completion failure with its cause class. The classification
// happens exactly once, at this boundary; callers switch on the kind and
// never inspect upstream error text.
type Kind string

const (
	KindAuth    Kind = "auth"
	KindQuota   Kind = "quota"
	KindNetwork Kind = "network"
	KindUnknown Kind = "unknown"
)

// Error is the tagged failure returned by every provider call.
type Error struct {
	Kind  Kind
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("completion %s error", e.Kind)
	}
	return fmt.Sprintf("completion %s error: %v", e.Kind, e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// KindOf extracts the classified kind from an error chain, defaulting to
// unknown.
func KindOf(err error) Kind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return KindUnknown
}

// Classify wraps an upstream failure with its kind. Status codes decide
// auth (401/403) and quota (429); transport failures are network; anything
// else is unknown.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Error{Kind: kindFromStatus(apiErr.HTTPStatusCode), cause: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if kind := kindFromStatus(reqErr.HTTPStatusCode); kind != KindUnknown {
			return &Error{Kind: kind, cause: err}
		}
		return &Error{Kind: KindNetwork, cause: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return &Error{Kind: KindNetwork, cause: err}
	}

	return &Error{Kind: KindUnknown, cause: err}
}

func kindFromStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusTooManyRequests:
		return KindQuota
	}
	return KindUnknown
}
