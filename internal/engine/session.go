package engine

import "github.com/google/uuid"

// SessionIDGenerator generates the id that tags every log line of one
// engine session.
type SessionIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedSession always returns the same id, for golden logs.
type FixedSession string

// Generate returns the fixed id.
func (f FixedSession) Generate() string { return string(f) }
