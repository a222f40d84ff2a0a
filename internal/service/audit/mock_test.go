package audit

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"rowguard/internal/domain"
)

// mockSink records inserted entries; insertFn, when set, runs first and can
// reject or block the write.
type mockSink struct {
	mu       sync.Mutex
	insertFn func(ctx context.Context, e *domain.AuditEntry) error
	inserted []domain.AuditEntry
}

var _ Sink = (*mockSink)(nil)

func (m *mockSink) Insert(ctx context.Context, e *domain.AuditEntry) error {
	if m.insertFn != nil {
		if err := m.insertFn(ctx, e); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserted = append(m.inserted, *e)
	return nil
}

func (m *mockSink) Inserted() []domain.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.AuditEntry, len(m.inserted))
	copy(out, m.inserted)
	return out
}

// mockAuditRepo implements domain.AuditRepository with function fields.
type mockAuditRepo struct {
	insertFn  func(ctx context.Context, e *domain.AuditEntry) error
	listFn    func(ctx context.Context, f domain.AuditFilter) ([]domain.AuditEntry, error)
	summaryFn func(ctx context.Context, f domain.AuditFilter) ([]domain.ReasonCount, error)
}

var _ domain.AuditRepository = (*mockAuditRepo)(nil)

func (m *mockAuditRepo) Insert(ctx context.Context, e *domain.AuditEntry) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, e)
	}
	panic("unexpected call to mockAuditRepo.Insert")
}

func (m *mockAuditRepo) List(ctx context.Context, f domain.AuditFilter) ([]domain.AuditEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	panic("unexpected call to mockAuditRepo.List")
}

func (m *mockAuditRepo) Summary(ctx context.Context, f domain.AuditFilter) ([]domain.ReasonCount, error) {
	if m.summaryFn != nil {
		return m.summaryFn(ctx, f)
	}
	panic("unexpected call to mockAuditRepo.Summary")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
