// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "tickerdesk/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing UserID where SessionID is expected.
type (
	UserID    uuid.UUID
	SessionID uuid.UUID
)

// Parse functions - use at trust boundaries (handlers, cookies, API inputs).

func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user ID")
	return UserID(id), err
}

func ParseSessionID(s string) (SessionID, error) {
	id, err := parseUUID(s, "session ID")
	return SessionID(id), err
}

// New functions - generate fresh identifiers.

func NewUserID() UserID       { return UserID(uuid.New()) }
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// String methods - for logging and debugging.

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id SessionID) String() string { return uuid.UUID(id).String() }

// IsZero reports whether the ID is the zero UUID.

func (id UserID) IsZero() bool    { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

func parseUUID(s, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what)
	}
	return id, nil
}
