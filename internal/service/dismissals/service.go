package dismissals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agrovista/fermops/internal/identity"
	"github.com/agrovista/fermops/internal/repository/postgres"
)

// Repository is the persistence surface the service needs: the canonical
// day oracle, the filtered read, the conflict-target upsert and the plain
// insert fallback.
type Repository interface {
	CurrentDay(ctx context.Context) (time.Time, error)
	ListKeysForDay(ctx context.Context, tenantID, userID string, day time.Time) ([]string, error)
	Upsert(ctx context.Context, tenantID, userID, alertKey string) error
	Insert(ctx context.Context, tenantID, userID, alertKey string) error
	UpsertBulk(ctx context.Context, tenantID, userID string, alertKeys []string) error
}

// Service scopes alert dismissals to (tenant, user, alert key, day).
// Racing writers for the same tuple collapse to one logical effect and none
// of them sees an error; that idempotency is the central property here.
type Service struct {
	repo     Repository
	resolver identity.Resolver
	logger   *zap.Logger
}

// NewService wires the dismissal service.
func NewService(repo Repository, resolver identity.Resolver, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, resolver: resolver, logger: logger}
}

// GetTodayDismissals returns the alert keys the current user dismissed for
// the tenant today. The day comes from the storage clock, never the caller.
// When identity cannot be resolved the read degrades to an empty list.
func (s *Service) GetTodayDismissals(ctx context.Context, tenantID string) ([]string, error) {
	who, err := s.resolver.Resolve(ctx)
	if err != nil {
		s.logger.Warn("skipping dismissal lookup without user context", zap.Error(err))
		return []string{}, nil
	}

	day, err := s.repo.CurrentDay(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve canonical day: %w", err)
	}

	keys, err := s.repo.ListKeysForDay(ctx, tenantID, who.UserID, day)
	if err != nil {
		return nil, fmt.Errorf("list today's dismissals: %w", err)
	}
	return keys, nil
}

// DismissAlert suppresses one alert key for the current user and tenant for
// the rest of the calendar day. Without a resolved identity the write fails
// loudly: silently dropping it would look like success while the alert
// stays un-suppressed. A duplicate dismissal is success, and a missing
// conflict target falls back to a plain insert that tolerates duplicates.
func (s *Service) DismissAlert(ctx context.Context, tenantID, alertKey string) error {
	who, err := s.resolver.Resolve(ctx)
	if err != nil {
		return err
	}

	err = s.repo.Upsert(ctx, tenantID, who.UserID, alertKey)
	switch {
	case err == nil, errors.Is(err, postgres.ErrDuplicateDismissal):
		return nil
	case errors.Is(err, postgres.ErrMissingConflictTarget):
		s.logger.Warn("dismissal conflict target unavailable, falling back to plain insert",
			zap.String("alert_key", alertKey))
		if err := s.repo.Insert(ctx, tenantID, who.UserID, alertKey); err != nil &&
			!errors.Is(err, postgres.ErrDuplicateDismissal) {
			return fmt.Errorf("dismiss alert %s: %w", alertKey, err)
		}
		return nil
	default:
		return fmt.Errorf("dismiss alert %s: %w", alertKey, err)
	}
}

// DismissAlertsBulk applies DismissAlert semantics to a batch. On a missing
// conflict target every key is inserted individually and per-row duplicates
// are tolerated; only a genuinely unexpected error propagates.
func (s *Service) DismissAlertsBulk(ctx context.Context, tenantID string, alertKeys []string) error {
	if len(alertKeys) == 0 {
		return nil
	}

	who, err := s.resolver.Resolve(ctx)
	if err != nil {
		return err
	}

	err = s.repo.UpsertBulk(ctx, tenantID, who.UserID, alertKeys)
	switch {
	case err == nil, errors.Is(err, postgres.ErrDuplicateDismissal):
		return nil
	case errors.Is(err, postgres.ErrMissingConflictTarget):
		s.logger.Warn("bulk dismissal conflict target unavailable, inserting rows individually",
			zap.Int("keys", len(alertKeys)))
		for _, key := range alertKeys {
			if err := s.repo.Insert(ctx, tenantID, who.UserID, key); err != nil &&
				!errors.Is(err, postgres.ErrDuplicateDismissal) {
				return fmt.Errorf("dismiss alert %s: %w", key, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("dismiss alerts bulk: %w", err)
	}
}
