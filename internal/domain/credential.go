package domain

import "time"

// Credential is the reference protected resource: a named secret owned by a
// single subject. The secret is plaintext in memory only and encrypted at
// rest by the repository.
type Credential struct {
	ID        string
	OwnerID   string
	Name      string
	Secret    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateCredentialRequest holds parameters for creating a credential.
type CreateCredentialRequest struct {
	Name   string
	Secret string
}

// Validate checks that the request is well-formed.
func (r *CreateCredentialRequest) Validate() error {
	if r.Name == "" {
		return ErrValidation("credential name is required")
	}
	if r.Secret == "" {
		return ErrValidation("credential secret is required")
	}
	return nil
}

// UpdateCredentialRequest holds parameters for updating a credential.
// Nil fields are left unchanged.
type UpdateCredentialRequest struct {
	ID     string
	Name   *string
	Secret *string
}

// Validate checks that the request is well-formed.
func (r *UpdateCredentialRequest) Validate() error {
	if r.ID == "" {
		return ErrValidation("credential id is required")
	}
	if r.Name == nil && r.Secret == nil {
		return ErrValidation("nothing to update")
	}
	if r.Name != nil && *r.Name == "" {
		return ErrValidation("credential name cannot be empty")
	}
	if r.Secret != nil && *r.Secret == "" {
		return ErrValidation("credential secret cannot be empty")
	}
	return nil
}
