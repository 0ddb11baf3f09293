package auth

import (
	"context"
	"errors"

	"tickerdesk/internal/sentinel"
	dErrors "tickerdesk/pkg/domain-errors"
)

// Store and provider error handling: translates sentinel errors into domain
// errors exactly once, at the strategy boundary.

// storeErrorMapping defines how a dependency error maps to a domain error.
type storeErrorMapping struct {
	target error
	code   dErrors.Code
	msg    string
}

// storeErrorMappings defines error translations in priority order.
// First match wins; more specific errors should come first.
var storeErrorMappings = []storeErrorMapping{
	{context.DeadlineExceeded, dErrors.CodeTimeout, "credential store timed out"},
	{context.Canceled, dErrors.CodeTimeout, "request canceled"},
	{sentinel.ErrNotFound, dErrors.CodeNotFound, "unknown user"},
	{sentinel.ErrAlreadyExists, dErrors.CodeConflict, "email already registered"},
	{sentinel.ErrUnavailable, dErrors.CodeUnavailable, "dependency unavailable"},
}

// translateStoreError maps a credential-store failure to a domain error.
// Existing domain errors pass through unchanged.
func translateStoreError(err error) error {
	if err == nil {
		return nil
	}

	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}

	for _, m := range storeErrorMappings {
		if errors.Is(err, m.target) {
			return dErrors.Wrap(err, m.code, m.msg)
		}
	}

	return dErrors.Wrap(err, dErrors.CodeInternal, "credential store failure")
}

// translateProviderError maps an OAuth provider failure to a domain error.
func translateProviderError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "identity provider timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "identity provider failure")
}

// IsAuthFailure reports whether an error is a negative authentication result
// (unknown user or credential mismatch) as opposed to a hard failure. Callers
// show the same generic message for both kinds of auth failure.
func IsAuthFailure(err error) bool {
	return dErrors.HasCode(err, dErrors.CodeUnauthorized) ||
		dErrors.HasCode(err, dErrors.CodeNotFound)
}
