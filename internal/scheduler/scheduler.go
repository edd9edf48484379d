package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/agrovista/fermops/internal/config"
	"github.com/agrovista/fermops/internal/metrics"
	"github.com/agrovista/fermops/internal/service/reporting"
	"github.com/agrovista/fermops/pkg/clients/notify"
)

// Scheduler runs the daily alert digest for the configured tenant.
type Scheduler struct {
	cron     *cron.Cron
	reports  *reporting.Service
	notifier notify.Client
	cfg      config.DigestConfig
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. The digest clock runs in
// the farm's configured time zone so "daily" means the farm's day, not the
// host's.
func NewScheduler(cfg config.DigestConfig, reports *reporting.Service, notifier notify.Client, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("invalid digest timezone, falling back to local", zap.String("timezone", cfg.Timezone), zap.Error(err))
		location = time.Local
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(location)),
		reports:  reports,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start registers and starts the digest job. With no tenant configured the
// scheduler stays idle.
func (s *Scheduler) Start() {
	if s.cfg.TenantID == "" {
		s.logger.Info("digest tenant not configured, scheduler idle")
		return
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.sendDailyDigest); err != nil {
		s.logger.Error("failed to schedule daily digest", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) sendDailyDigest() {
	s.logger.Info("generating daily digest", zap.String("tenant_id", s.cfg.TenantID))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	body, err := s.reports.GenerateDigest(ctx, s.cfg.TenantID, time.Now())
	if err != nil {
		metrics.DigestRunsTotal.WithLabelValues("failed").Inc()
		s.logger.Error("failed to generate daily digest", zap.Error(err))
		return
	}

	req := notify.SendDigestRequest{
		TenantID: s.cfg.TenantID,
		Subject:  "Daily farm check",
		Body:     body,
	}

	if err := s.notifier.SendDigest(ctx, req); err != nil {
		metrics.DigestRunsTotal.WithLabelValues("failed").Inc()
		s.logger.Error("failed to send daily digest", zap.Error(err))
		return
	}

	metrics.DigestRunsTotal.WithLabelValues("success").Inc()
	s.logger.Info("daily digest sent successfully")
}
