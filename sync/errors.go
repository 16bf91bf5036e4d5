// ABOUTME: Typed failures for the contact directory sync
// ABOUTME: Every failure carries a kind and a human-readable detail
package sync

import (
	"fmt"
	"strings"
)

// Kind classifies a sync failure.
type Kind string

const (
	KindMissingEndpoint   Kind = "MissingEndpoint"
	KindMissingCredential Kind = "MissingCredential"
	KindRequestFailed     Kind = "RequestFailed"
	KindNetworkOrParse    Kind = "NetworkOrParseError"
	KindMalformedResponse Kind = "MalformedResponse"
	KindSyncInProgress    Kind = "SyncInProgress"
)

const defaultNetworkErrDetail = "unable to reach the contact directory"

// Error is returned by every failed sync. Error() yields the detail text
// meant for display.
type Error struct {
	Kind   Kind
	Status int // HTTP status for KindRequestFailed
	Detail string
	Err    error
}

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrMissingEndpoint   = &Error{Kind: KindMissingEndpoint, Detail: "the contact directory URL is required"}
	ErrMissingCredential = &Error{Kind: KindMissingCredential, Detail: "the contact directory API key is required"}
	ErrRequestFailed     = &Error{Kind: KindRequestFailed}
	ErrNetworkOrParse    = &Error{Kind: KindNetworkOrParse}
	ErrMalformedResponse = &Error{Kind: KindMalformedResponse}
	ErrSyncInProgress    = &Error{Kind: KindSyncInProgress, Detail: "a contact sync is already in progress"}
)

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func requestFailed(status int, body string) *Error {
	detail := body
	if strings.TrimSpace(detail) == "" {
		detail = fmt.Sprintf("request failed with status %d", status)
	}
	return &Error{Kind: KindRequestFailed, Status: status, Detail: detail}
}

func networkOrParse(err error) *Error {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	if detail == "" {
		detail = defaultNetworkErrDetail
	}
	return &Error{Kind: KindNetworkOrParse, Detail: detail, Err: err}
}

func malformed(shape string) *Error {
	return &Error{
		Kind:   KindMalformedResponse,
		Detail: fmt.Sprintf("unexpected response from the contact directory: got %s, want a contact list", shape),
	}
}

func missingEndpoint() *Error {
	return &Error{Kind: KindMissingEndpoint, Detail: ErrMissingEndpoint.Detail}
}

func missingCredential() *Error {
	return &Error{Kind: KindMissingCredential, Detail: ErrMissingCredential.Detail}
}

func syncInProgress(endpoint string) *Error {
	return &Error{
		Kind:   KindSyncInProgress,
		Detail: fmt.Sprintf("%s (%s)", ErrSyncInProgress.Detail, endpoint),
	}
}
