package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rowguard/internal/db/crypto"
	"rowguard/internal/domain"
)

// CredentialRepo stores credentials with the secret sealed at rest.
type CredentialRepo struct {
	writeDB *sql.DB
	readDB  *sql.DB
	box     *crypto.SecretBox
}

var _ domain.CredentialRepository = (*CredentialRepo)(nil)

func NewCredentialRepo(writeDB, readDB *sql.DB, box *crypto.SecretBox) *CredentialRepo {
	return &CredentialRepo{writeDB: writeDB, readDB: readDB, box: box}
}

func (r *CredentialRepo) Create(ctx context.Context, c *domain.Credential) (*domain.Credential, error) {
	if c.ID == "" {
		c.ID = domain.NewID()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	cipher, err := r.box.Seal(c.Secret)
	if err != nil {
		return nil, fmt.Errorf("seal secret: %w", err)
	}

	const q = `
		INSERT INTO credentials (id, owner_id, name, secret_cipher, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	if _, err := r.writeDB.ExecContext(ctx, q, c.ID, c.OwnerID, c.Name, cipher, c.CreatedAt, c.UpdatedAt); err != nil {
		return nil, mapDBError(err)
	}
	return c, nil
}

func (r *CredentialRepo) GetByID(ctx context.Context, id string) (*domain.Credential, error) {
	const q = `
		SELECT id, owner_id, name, secret_cipher, created_at, updated_at
		FROM credentials
		WHERE id = ?`

	var c domain.Credential
	var cipher string
	err := r.readDB.QueryRowContext(ctx, q, id).Scan(
		&c.ID, &c.OwnerID, &c.Name, &cipher, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("credential %q not found", id)
	}
	if err != nil {
		return nil, err
	}

	c.Secret, err = r.box.Open(cipher)
	if err != nil {
		return nil, fmt.Errorf("open secret for credential %s: %w", id, err)
	}
	return &c, nil
}

// ListByOwner returns the owner's credentials without secrets. Callers that
// need the secret fetch the single credential by ID.
func (r *CredentialRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Credential, error) {
	const q = `
		SELECT id, owner_id, name, created_at, updated_at
		FROM credentials
		WHERE owner_id = ?
		ORDER BY name`

	rows, err := r.readDB.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var creds []domain.Credential
	for rows.Next() {
		var c domain.Credential
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		creds = append(creds, c)
	}
	return creds, rows.Err()
}

func (r *CredentialRepo) Update(ctx context.Context, c *domain.Credential) (*domain.Credential, error) {
	c.UpdatedAt = time.Now().UTC()

	cipher, err := r.box.Seal(c.Secret)
	if err != nil {
		return nil, fmt.Errorf("seal secret: %w", err)
	}

	const q = `
		UPDATE credentials
		SET name = ?, secret_cipher = ?, updated_at = ?
		WHERE id = ?`

	res, err := r.writeDB.ExecContext(ctx, q, c.Name, cipher, c.UpdatedAt, c.ID)
	if err != nil {
		return nil, mapDBError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.ErrNotFound("credential %q not found", c.ID)
	}
	return c, nil
}

func (r *CredentialRepo) Delete(ctx context.Context, id string) error {
	res, err := r.writeDB.ExecContext(ctx, `DELETE FROM credentials WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound("credential %q not found", id)
	}
	return nil
}
