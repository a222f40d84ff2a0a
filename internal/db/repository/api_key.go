package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rowguard/internal/domain"
)

// APIKeyRepo stores API keys by SHA-256 hash; raw keys are never persisted.
type APIKeyRepo struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

var _ domain.APIKeyRepository = (*APIKeyRepo)(nil)

func NewAPIKeyRepo(writeDB, readDB *sql.DB) *APIKeyRepo {
	return &APIKeyRepo{writeDB: writeDB, readDB: readDB}
}

func (r *APIKeyRepo) Create(ctx context.Context, k *domain.APIKey) (*domain.APIKey, error) {
	if k.ID == "" {
		k.ID = domain.NewID()
	}
	k.CreatedAt = time.Now().UTC()

	const q = `
		INSERT INTO api_keys (id, subject_id, name, key_prefix, key_hash, is_admin, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	var expiresAt interface{}
	if k.ExpiresAt != nil {
		expiresAt = k.ExpiresAt.UTC()
	}

	_, err := r.writeDB.ExecContext(ctx, q,
		k.ID, k.SubjectID, k.Name, k.KeyPrefix, k.KeyHash,
		boolToInt(k.IsAdmin), expiresAt, k.CreatedAt,
	)
	if err != nil {
		return nil, mapDBError(err)
	}
	return k, nil
}

func (r *APIKeyRepo) GetByHash(ctx context.Context, hash string) (*domain.APIKey, error) {
	const q = `
		SELECT id, subject_id, name, key_prefix, key_hash, is_admin, expires_at, created_at
		FROM api_keys
		WHERE key_hash = ?`

	var k domain.APIKey
	var isAdmin int64
	var expiresAt sql.NullTime
	err := r.readDB.QueryRowContext(ctx, q, hash).Scan(
		&k.ID, &k.SubjectID, &k.Name, &k.KeyPrefix, &k.KeyHash,
		&isAdmin, &expiresAt, &k.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("api key not found")
	}
	if err != nil {
		return nil, err
	}

	k.IsAdmin = isAdmin == 1
	if expiresAt.Valid {
		t := expiresAt.Time
		k.ExpiresAt = &t
	}
	return &k, nil
}

func (r *APIKeyRepo) List(ctx context.Context) ([]domain.APIKey, error) {
	const q = `
		SELECT id, subject_id, name, key_prefix, is_admin, expires_at, created_at
		FROM api_keys
		ORDER BY created_at, id`

	rows, err := r.readDB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var keys []domain.APIKey
	for rows.Next() {
		var k domain.APIKey
		var isAdmin int64
		var expiresAt sql.NullTime
		if err := rows.Scan(&k.ID, &k.SubjectID, &k.Name, &k.KeyPrefix, &isAdmin, &expiresAt, &k.CreatedAt); err != nil {
			return nil, err
		}
		k.IsAdmin = isAdmin == 1
		if expiresAt.Valid {
			t := expiresAt.Time
			k.ExpiresAt = &t
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (r *APIKeyRepo) Delete(ctx context.Context, id string) error {
	res, err := r.writeDB.ExecContext(ctx, `DELETE FROM api_keys WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound("api key %q not found", id)
	}
	return nil
}
