// Package audit delivers decision records to durable storage without ever
// blocking the decision path, and serves the ops queries over the stored
// entries.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"rowguard/internal/domain"
	"rowguard/internal/metrics"
)

// Sink persists one audit entry. The SQLite audit repository is the
// production sink.
type Sink interface {
	Insert(ctx context.Context, e *domain.AuditEntry) error
}

// Config bounds the delivery pipeline.
type Config struct {
	// QueueSize is the capacity of the in-memory delivery queue.
	QueueSize int
	// Attempts is how often a sink write is tried before the entry is
	// diverted to the spool.
	Attempts int
	// Backoff is the pause after the first failed attempt; it doubles per
	// subsequent attempt.
	Backoff time.Duration
}

func (c Config) withDefaults() Config {
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.Attempts <= 0 {
		c.Attempts = 3
	}
	if c.Backoff <= 0 {
		c.Backoff = 50 * time.Millisecond
	}
	return c
}

// Logger records audit entries asynchronously. Record never blocks and never
// fails from the caller's point of view; delivery happens on a background
// worker with bounded retries, falling back to a local spool. An entry is
// never dropped without at least an operational log line carrying it.
type Logger struct {
	sink    Sink
	spool   *Spool
	logger  *slog.Logger
	metrics *metrics.Metrics
	cfg     Config

	queue chan domain.AuditEntry
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewLogger starts the delivery worker.
func NewLogger(sink Sink, spool *Spool, logger *slog.Logger, m *metrics.Metrics, cfg Config) *Logger {
	cfg = cfg.withDefaults()
	l := &Logger{
		sink:    sink,
		spool:   spool,
		logger:  logger.With("component", "audit"),
		metrics: m,
		cfg:     cfg,
		queue:   make(chan domain.AuditEntry, cfg.QueueSize),
		done:    make(chan struct{}),
	}
	go l.run()
	return l
}

// Record enqueues an entry for delivery and returns immediately. When the
// queue is full or the logger is closing, the entry goes straight to the
// fallback spool instead of blocking the caller.
func (l *Logger) Record(e domain.AuditEntry) {
	if e.ID == "" {
		e.ID = domain.NewID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		l.divert(e)
		return
	}
	select {
	case l.queue <- e:
		l.mu.Unlock()
		l.metrics.SetAuditQueueDepth(len(l.queue))
	default:
		l.mu.Unlock()
		l.logger.Warn("audit queue full, spooling entry", "entry_id", e.ID)
		l.divert(e)
	}
}

// Close stops intake and waits for the queue to drain, bounded by ctx.
func (l *Logger) Close(ctx context.Context) error {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.queue)
	}
	l.mu.Unlock()

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Logger) run() {
	for e := range l.queue {
		l.deliver(e)
		l.metrics.SetAuditQueueDepth(len(l.queue))
	}
	close(l.done)
}

// deliver writes one entry to the sink with bounded retries. Delivery uses a
// background context: the originating request is long gone and must not
// cancel the write.
func (l *Logger) deliver(e domain.AuditEntry) {
	ctx := context.Background()
	backoff := l.cfg.Backoff

	for attempt := 1; attempt <= l.cfg.Attempts; attempt++ {
		err := l.sink.Insert(ctx, &e)
		if err == nil {
			return
		}
		l.metrics.RecordAuditWriteFailure(metrics.StageSink)
		l.logger.Warn("audit sink write failed",
			"entry_id", e.ID,
			"attempt", attempt,
			"error", err,
		)
		if attempt < l.cfg.Attempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}

	l.logger.Error("audit sink unavailable, diverting entry to spool",
		"entry_id", e.ID,
		"attempts", l.cfg.Attempts,
	)
	l.divert(e)
}

// divert appends the entry to the fallback spool. If even that fails, the
// full entry is serialized into the operational log so a trace survives.
func (l *Logger) divert(e domain.AuditEntry) {
	if err := l.spool.Append(e); err != nil {
		l.metrics.RecordAuditWriteFailure(metrics.StageSpool)
		raw, _ := json.Marshal(e)
		l.logger.Error("audit spool write failed, entry preserved in log only",
			"error", err,
			"entry", string(raw),
		)
		return
	}
	l.metrics.RecordAuditSpooled()
}
