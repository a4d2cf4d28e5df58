// Package common defines shared constants and sentinel errors used across
// the CSVDesk client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// ErrNotFound is returned when the server reports a missing resource.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized covers rejected credentials and denied authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the server rejects a non-admin caller.
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable covers transport failures and unreachable servers.
	ErrUnavailable = errors.New("server unavailable")

	// ErrStorageUnavailable marks a local credential store that cannot be
	// opened. Callers treat it as "nothing persisted", never as fatal.
	ErrStorageUnavailable = errors.New("local storage unavailable")

	// ErrInternal is a generic service-level failure.
	ErrInternal = errors.New("internal error")
)
