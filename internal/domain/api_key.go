package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// APIKey grants programmatic access as a subject.
type APIKey struct {
	ID        string
	SubjectID string
	Name      string
	KeyPrefix string // short prefix of the raw key, for identification in listings
	KeyHash   string // SHA-256 of raw key; raw key is never stored
	IsAdmin   bool
	ExpiresAt *time.Time
	CreatedAt time.Time
}

// Expired reports whether the key has an expiry in the past.
func (k *APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && k.ExpiresAt.Before(now)
}

// HashAPIKey derives the stored lookup hash for a raw key.
func HashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// GenerateAPIKey mints a new raw key. Only the returned hash is stored; the
// raw key is shown to the caller once.
func GenerateAPIKey() (raw, hash, prefix string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", "", err
	}
	raw = "rg_" + hex.EncodeToString(buf)
	return raw, HashAPIKey(raw), raw[:11], nil
}

// CreateAPIKeyRequest holds parameters for creating a new API key.
type CreateAPIKeyRequest struct {
	SubjectID string
	Name      string
	IsAdmin   bool
	ExpiresAt *time.Time
}

// Validate checks that the request is well-formed.
func (r *CreateAPIKeyRequest) Validate() error {
	if r.SubjectID == "" {
		return ErrValidation("subject_id is required")
	}
	if r.Name == "" {
		return ErrValidation("api key name is required")
	}
	return nil
}
