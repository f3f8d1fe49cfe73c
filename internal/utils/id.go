package utils

import "github.com/google/uuid"

// NewID returns a fresh correlation identifier, used in place of the
// Linux thread ID the original server logs against each connection
// (spec.md §3, §9's "Lifecycle barrier" note).
func NewID() string {
	return uuid.NewString()
}
