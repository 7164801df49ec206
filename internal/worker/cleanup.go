package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jwalitptl/clinic-api/internal/config"
	"github.com/jwalitptl/clinic-api/pkg/logger"
)

type OutboxPruner interface {
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}

type AuditPruner interface {
	Cleanup(ctx context.Context, retention time.Duration) (int64, error)
}

// CleanupScheduler prunes processed outbox rows and old audit logs on cron
// schedules.
type CleanupScheduler struct {
	cron   *cron.Cron
	outbox OutboxPruner
	audit  AuditPruner
	config config.JobsConfig
	logger *logger.Logger
	now    func() time.Time
}

func NewCleanupScheduler(outbox OutboxPruner, audit AuditPruner, cfg config.JobsConfig, logger *logger.Logger) (*CleanupScheduler, error) {
	s := &CleanupScheduler{
		cron:   cron.New(),
		outbox: outbox,
		audit:  audit,
		config: cfg,
		logger: logger,
		now:    time.Now,
	}

	if cfg.OutboxCleanupSchedule != "" {
		if _, err := s.cron.AddFunc(cfg.OutboxCleanupSchedule, func() { s.run("outbox", s.CleanOutbox) }); err != nil {
			return nil, fmt.Errorf("invalid outbox cleanup schedule %q: %w", cfg.OutboxCleanupSchedule, err)
		}
	}
	if cfg.AuditCleanupSchedule != "" {
		if _, err := s.cron.AddFunc(cfg.AuditCleanupSchedule, func() { s.run("audit", s.CleanAudit) }); err != nil {
			return nil, fmt.Errorf("invalid audit cleanup schedule %q: %w", cfg.AuditCleanupSchedule, err)
		}
	}

	return s, nil
}

// Start runs the scheduler until ctx is done, then waits for running jobs.
func (s *CleanupScheduler) Start(ctx context.Context) {
	s.cron.Start()
	s.logger.Info("Cleanup scheduler started", "jobs", len(s.cron.Entries()))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("Cleanup scheduler stopped")
}

func (s *CleanupScheduler) run(job string, fn func(context.Context) (int64, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	rows, err := fn(ctx)
	if err != nil {
		s.logger.Error(err, "Cleanup job failed", "job", job)
		return
	}
	s.logger.Info("Cleanup job finished", "job", job, "rows", rows)
}

func (s *CleanupScheduler) CleanOutbox(ctx context.Context) (int64, error) {
	if s.config.OutboxRetention <= 0 {
		return 0, nil
	}
	rows, err := s.outbox.DeleteProcessedBefore(ctx, s.now().Add(-s.config.OutboxRetention))
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup outbox events: %w", err)
	}
	return rows, nil
}

func (s *CleanupScheduler) CleanAudit(ctx context.Context) (int64, error) {
	if s.config.AuditRetention <= 0 {
		return 0, nil
	}
	rows, err := s.audit.Cleanup(ctx, s.config.AuditRetention)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup audit logs: %w", err)
	}
	return rows, nil
}
