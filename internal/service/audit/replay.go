package audit

import (
	"context"
	"errors"
	"log/slog"

	"github.com/robfig/cron/v3"

	"rowguard/internal/domain"
	"rowguard/internal/metrics"
)

// Replayer periodically redelivers spooled audit entries to the sink. A
// redelivered entry whose ID already exists in the sink counts as delivered,
// which makes replay after a mid-run crash safe.
type Replayer struct {
	spool    *Spool
	sink     Sink
	logger   *slog.Logger
	metrics  *metrics.Metrics
	schedule string
	cron     *cron.Cron
}

func NewReplayer(spool *Spool, sink Sink, logger *slog.Logger, m *metrics.Metrics, schedule string) *Replayer {
	return &Replayer{
		spool:    spool,
		sink:     sink,
		logger:   logger.With("component", "audit-replay"),
		metrics:  m,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start registers the replay schedule and starts the cron runner.
func (r *Replayer) Start() error {
	_, err := r.cron.AddFunc(r.schedule, func() {
		if err := r.ReplayOnce(context.Background()); err != nil {
			r.logger.Warn("spool replay failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	r.cron.Start()
	r.logger.Info("audit spool replay scheduled", "schedule", r.schedule)
	return nil
}

// Stop halts the cron runner. Started jobs finish.
func (r *Replayer) Stop() {
	r.cron.Stop()
	r.logger.Info("audit spool replay stopped")
}

// ReplayOnce attempts to deliver every spooled entry, keeping only the ones
// that still fail.
func (r *Replayer) ReplayOnce(ctx context.Context) error {
	pending, err := r.spool.Pending()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	var remaining []domain.AuditEntry
	var delivered int
	for _, e := range pending {
		err := r.sink.Insert(ctx, &e)
		var conflict *domain.ConflictError
		switch {
		case err == nil:
			delivered++
			r.metrics.RecordAuditReplayed()
		case errors.As(err, &conflict):
			// Already delivered by an earlier interrupted replay.
			delivered++
		default:
			r.metrics.RecordAuditWriteFailure(metrics.StageSink)
			remaining = append(remaining, e)
		}
	}

	if err := r.spool.Rewrite(remaining); err != nil {
		return err
	}
	r.logger.Info("spool replay finished",
		"delivered", delivered,
		"remaining", len(remaining),
	)
	return nil
}
