package domain

import "github.com/google/uuid"

// NewID generates a UUIDv7 string for application-owned entities and units
// of work.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
