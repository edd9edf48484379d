package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovista/fermops/internal/config"
	"github.com/agrovista/fermops/internal/domain/models"
	"github.com/agrovista/fermops/internal/service/alerts"
	"github.com/agrovista/fermops/internal/service/reporting"
	"github.com/agrovista/fermops/pkg/clients/notify"
)

type stubRecords struct {
	snap models.Snapshot
}

func (s stubRecords) LoadSnapshot(context.Context, string) (models.Snapshot, error) {
	return s.snap, nil
}

type capturingNotifier struct {
	sent []notify.SendDigestRequest
}

func (c *capturingNotifier) SendDigest(_ context.Context, req notify.SendDigestRequest) error {
	c.sent = append(c.sent, req)
	return nil
}

func TestSendDailyDigest(t *testing.T) {
	reports := reporting.NewService(
		stubRecords{snap: models.Snapshot{Parcels: []models.Parcel{{ID: "p1", Name: "Via Veche"}}}},
		alerts.NewEngine(nil), nil)
	notifier := &capturingNotifier{}

	cfg := config.DigestConfig{CronSchedule: "0 6 * * *", Timezone: "Europe/Bucharest", TenantID: "t1"}
	s := NewScheduler(cfg, reports, notifier, nil)

	s.sendDailyDigest()

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "t1", notifier.sent[0].TenantID)
	assert.Contains(t, notifier.sent[0].Body, "Via Veche")
}

func TestSchedulerStaysIdleWithoutTenant(t *testing.T) {
	reports := reporting.NewService(stubRecords{}, alerts.NewEngine(nil), nil)
	notifier := &capturingNotifier{}

	cfg := config.DigestConfig{CronSchedule: "0 6 * * *", Timezone: "Europe/Bucharest"}
	s := NewScheduler(cfg, reports, notifier, nil)

	s.Start()
	defer s.Stop()

	assert.Empty(t, s.cron.Entries(), "no digest job registered without a tenant")
}
