package apikey

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rowguard/internal/domain"
)

type mockAPIKeyRepo struct {
	createFn func(ctx context.Context, k *domain.APIKey) (*domain.APIKey, error)
	listFn   func(ctx context.Context) ([]domain.APIKey, error)
	deleteFn func(ctx context.Context, id string) error
}

var _ domain.APIKeyRepository = (*mockAPIKeyRepo)(nil)

func (m *mockAPIKeyRepo) Create(ctx context.Context, k *domain.APIKey) (*domain.APIKey, error) {
	if m.createFn == nil {
		panic("unexpected call to mockAPIKeyRepo.Create")
	}
	return m.createFn(ctx, k)
}

func (m *mockAPIKeyRepo) GetByHash(_ context.Context, _ string) (*domain.APIKey, error) {
	panic("unexpected call to mockAPIKeyRepo.GetByHash")
}

func (m *mockAPIKeyRepo) List(ctx context.Context) ([]domain.APIKey, error) {
	if m.listFn == nil {
		panic("unexpected call to mockAPIKeyRepo.List")
	}
	return m.listFn(ctx)
}

func (m *mockAPIKeyRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn == nil {
		panic("unexpected call to mockAPIKeyRepo.Delete")
	}
	return m.deleteFn(ctx, id)
}

func asActor(t *testing.T, id domain.Identity) context.Context {
	t.Helper()
	ctx, end, err := domain.BeginUnit(context.Background(), id)
	require.NoError(t, err)
	t.Cleanup(end)
	return ctx
}

func asAdmin(t *testing.T) context.Context {
	return asActor(t, domain.Identity{SubjectID: "root", IsAdmin: true})
}

func TestService_Create(t *testing.T) {
	t.Run("happy_path", func(t *testing.T) {
		var stored *domain.APIKey
		repo := &mockAPIKeyRepo{
			createFn: func(_ context.Context, k *domain.APIKey) (*domain.APIKey, error) {
				k.ID = "key-1"
				stored = k
				return k, nil
			},
		}
		svc := NewService(repo)

		raw, key, err := svc.Create(asAdmin(t), domain.CreateAPIKeyRequest{SubjectID: "alice", Name: "ci"})

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(raw, "rg_"))
		assert.Equal(t, domain.HashAPIKey(raw), stored.KeyHash, "only the hash is stored")
		assert.Equal(t, raw[:11], key.KeyPrefix)
		assert.False(t, key.IsAdmin)
	})

	t.Run("non_admin_denied", func(t *testing.T) {
		svc := NewService(&mockAPIKeyRepo{})

		_, _, err := svc.Create(asActor(t, domain.Identity{SubjectID: "alice"}), domain.CreateAPIKeyRequest{SubjectID: "alice", Name: "ci"})

		var denied *domain.AccessDeniedError
		require.ErrorAs(t, err, &denied)
		assert.EqualError(t, err, "admin privileges required")
	})

	t.Run("anonymous_denied", func(t *testing.T) {
		svc := NewService(&mockAPIKeyRepo{})

		_, _, err := svc.Create(context.Background(), domain.CreateAPIKeyRequest{SubjectID: "alice", Name: "ci"})

		var denied *domain.AccessDeniedError
		require.ErrorAs(t, err, &denied)
		assert.EqualError(t, err, "authentication required")
	})

	t.Run("validation_error", func(t *testing.T) {
		svc := NewService(&mockAPIKeyRepo{})

		_, _, err := svc.Create(asAdmin(t), domain.CreateAPIKeyRequest{SubjectID: "alice"})

		var valErr *domain.ValidationError
		require.ErrorAs(t, err, &valErr)
	})
}

func TestService_List(t *testing.T) {
	t.Run("happy_path", func(t *testing.T) {
		repo := &mockAPIKeyRepo{
			listFn: func(_ context.Context) ([]domain.APIKey, error) {
				return []domain.APIKey{{ID: "key-1", SubjectID: "alice", Name: "ci"}}, nil
			},
		}
		svc := NewService(repo)

		keys, err := svc.List(asAdmin(t))

		require.NoError(t, err)
		assert.Len(t, keys, 1)
	})

	t.Run("non_admin_denied", func(t *testing.T) {
		svc := NewService(&mockAPIKeyRepo{})

		_, err := svc.List(asActor(t, domain.Identity{SubjectID: "bob"}))

		var denied *domain.AccessDeniedError
		require.ErrorAs(t, err, &denied)
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("happy_path", func(t *testing.T) {
		deleted := ""
		repo := &mockAPIKeyRepo{
			deleteFn: func(_ context.Context, id string) error {
				deleted = id
				return nil
			},
		}
		svc := NewService(repo)

		require.NoError(t, svc.Delete(asAdmin(t), "key-1"))
		assert.Equal(t, "key-1", deleted)
	})

	t.Run("non_admin_denied", func(t *testing.T) {
		svc := NewService(&mockAPIKeyRepo{})

		err := svc.Delete(asActor(t, domain.Identity{SubjectID: "bob"}), "key-1")

		var denied *domain.AccessDeniedError
		require.ErrorAs(t, err, &denied)
	})

	t.Run("not_found", func(t *testing.T) {
		repo := &mockAPIKeyRepo{
			deleteFn: func(_ context.Context, id string) error {
				return domain.ErrNotFound("api key %q not found", id)
			},
		}
		svc := NewService(repo)

		err := svc.Delete(asAdmin(t), "missing")

		var notFound *domain.NotFoundError
		require.ErrorAs(t, err, &notFound)
	})
}
