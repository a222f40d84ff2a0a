package credential

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"rowguard/internal/domain"
)

// errTest is a sentinel error for test scenarios.
var errTest = fmt.Errorf("test error")

func asActor(t *testing.T, id domain.Identity) context.Context {
	t.Helper()
	ctx, end, err := domain.BeginUnit(context.Background(), id)
	require.NoError(t, err)
	t.Cleanup(end)
	return ctx
}

type mockCredentialRepo struct {
	createFn      func(ctx context.Context, c *domain.Credential) (*domain.Credential, error)
	getByIDFn     func(ctx context.Context, id string) (*domain.Credential, error)
	listByOwnerFn func(ctx context.Context, ownerID string) ([]domain.Credential, error)
	updateFn      func(ctx context.Context, c *domain.Credential) (*domain.Credential, error)
	deleteFn      func(ctx context.Context, id string) error
}

var _ domain.CredentialRepository = (*mockCredentialRepo)(nil)

func (m *mockCredentialRepo) Create(ctx context.Context, c *domain.Credential) (*domain.Credential, error) {
	if m.createFn == nil {
		panic("unexpected call to mockCredentialRepo.Create")
	}
	return m.createFn(ctx, c)
}

func (m *mockCredentialRepo) GetByID(ctx context.Context, id string) (*domain.Credential, error) {
	if m.getByIDFn == nil {
		panic("unexpected call to mockCredentialRepo.GetByID")
	}
	return m.getByIDFn(ctx, id)
}

func (m *mockCredentialRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Credential, error) {
	if m.listByOwnerFn == nil {
		panic("unexpected call to mockCredentialRepo.ListByOwner")
	}
	return m.listByOwnerFn(ctx, ownerID)
}

func (m *mockCredentialRepo) Update(ctx context.Context, c *domain.Credential) (*domain.Credential, error) {
	if m.updateFn == nil {
		panic("unexpected call to mockCredentialRepo.Update")
	}
	return m.updateFn(ctx, c)
}

func (m *mockCredentialRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn == nil {
		panic("unexpected call to mockCredentialRepo.Delete")
	}
	return m.deleteFn(ctx, id)
}

// mockEvaluator stands in for the policy evaluator. Calls without a
// configured function fail the test loudly.
type mockEvaluator struct {
	evaluateFn func(ctx context.Context, resource string, op domain.Operation, row domain.Row) (domain.Decision, error)
	requireFn  func(ctx context.Context, resource string, op domain.Operation, row domain.Row) error
}

var _ domain.PolicyEvaluator = (*mockEvaluator)(nil)

func (m *mockEvaluator) Evaluate(ctx context.Context, resource string, op domain.Operation, row domain.Row) (domain.Decision, error) {
	if m.evaluateFn == nil {
		panic("unexpected call to mockEvaluator.Evaluate")
	}
	return m.evaluateFn(ctx, resource, op, row)
}

func (m *mockEvaluator) Require(ctx context.Context, resource string, op domain.Operation, row domain.Row) error {
	if m.requireFn == nil {
		panic("unexpected call to mockEvaluator.Require")
	}
	return m.requireFn(ctx, resource, op, row)
}

func allowAll() *mockEvaluator {
	return &mockEvaluator{requireFn: func(context.Context, string, domain.Operation, domain.Row) error {
		return nil
	}}
}

func denyAll() *mockEvaluator {
	return &mockEvaluator{requireFn: func(context.Context, string, domain.Operation, domain.Row) error {
		return domain.ErrAccessDenied("access denied")
	}}
}
