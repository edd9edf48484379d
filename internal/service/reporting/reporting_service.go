package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/agrovista/fermops/internal/domain/models"
	"github.com/agrovista/fermops/internal/repository/mongodb"
	"github.com/agrovista/fermops/internal/service/alerts"
	"github.com/agrovista/fermops/internal/service/analytics"
)

const dateLayout = "2006-01-02"

// Service exposes the dashboard computations: profit summaries, per-parcel
// re-entry status and the daily alert digest.
type Service struct {
	repo   mongodb.Repository
	engine *alerts.Engine
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(repository mongodb.Repository, engine *alerts.Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repository, engine: engine, logger: logger}
}

// ProfitSummary aggregates sale revenue and expense cost for the tenant
// over [from, to] (zero bounds mean all-time) and feeds the sums through
// the profit calculator. Rows with unparseable dates are skipped.
func (s *Service) ProfitSummary(ctx context.Context, tenantID string, from, to time.Time) (analytics.ProfitBreakdown, error) {
	snap, err := s.repo.LoadSnapshot(ctx, tenantID)
	if err != nil {
		return analytics.ProfitBreakdown{}, fmt.Errorf("load snapshot: %w", err)
	}

	var revenue, cost float64
	for _, sale := range snap.Sales {
		if !s.inRange(sale.Date, from, to) {
			continue
		}
		revenue += sale.Revenue()
	}
	for _, expense := range snap.Expenses {
		if !s.inRange(expense.Date, from, to) {
			continue
		}
		cost += expense.AmountLei
	}

	return analytics.CalculateProfit(revenue, cost), nil
}

// ParcelPause computes the re-entry pause status for one parcel from its
// treatment applications.
func (s *Service) ParcelPause(ctx context.Context, tenantID, parcelID string, today time.Time) (analytics.PauseStatus, error) {
	snap, err := s.repo.LoadSnapshot(ctx, tenantID)
	if err != nil {
		return analytics.PauseStatus{}, fmt.Errorf("load snapshot: %w", err)
	}

	var parcelActivities []models.ActivityRecord
	for _, activity := range snap.Activities {
		if activity.ParcelID == parcelID {
			parcelActivities = append(parcelActivities, activity)
		}
	}

	return analytics.ParcelPauseStatus(parcelActivities, today), nil
}

// GenerateAlerts loads a fresh tenant snapshot and runs the rule engine.
func (s *Service) GenerateAlerts(ctx context.Context, tenantID string, today time.Time) ([]models.SmartAlert, error) {
	snap, err := s.repo.LoadSnapshot(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return s.engine.Generate(alerts.Input{Today: today, Snapshot: snap}), nil
}

// GenerateDigest formats today's alerts for the tenant as a plain-text
// notification body.
func (s *Service) GenerateDigest(ctx context.Context, tenantID string, today time.Time) (string, error) {
	generated, err := s.GenerateAlerts(ctx, tenantID, today)
	if err != nil {
		return "", err
	}

	if len(generated) == 0 {
		return fmt.Sprintf("Daily check (%s): no alerts, everything on track.", today.Format(dateLayout)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Daily check (%s): %d alert(s)\n", today.Format(dateLayout), len(generated))
	for _, alert := range generated {
		fmt.Fprintf(&b, "- [%s] %s: %s\n", alert.Severity, alert.Title, alert.Message)
	}
	return b.String(), nil
}

func (s *Service) inRange(value string, from, to time.Time) bool {
	date, ok := analytics.ParseDateOnly(value)
	if !ok {
		s.logger.Debug("skip row with invalid date", zap.String("value", value))
		return false
	}
	if !from.IsZero() && date.Before(from) {
		return false
	}
	if !to.IsZero() && date.After(to) {
		return false
	}
	return true
}
