package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Errors the dismissal service distinguishes. Duplicates and a missing
// conflict target are recoverable (idempotency path); anything else is a
// hard failure.
var (
	ErrDuplicateDismissal    = errors.New("alert dismissal already recorded for today")
	ErrMissingConflictTarget = errors.New("dismissal conflict target unavailable")
)

const (
	pqUniqueViolation        = "23505"
	pqInvalidColumnReference = "42P10"
)

// DismissalRepository persists per-day alert dismissals. The dismissed_on
// column is always stamped with the database server's CURRENT_DATE so
// client clock skew cannot forge or extend a dismissal.
type DismissalRepository struct {
	db *sql.DB
}

// NewDismissalRepository wraps the given connection pool.
func NewDismissalRepository(db *sql.DB) *DismissalRepository {
	return &DismissalRepository{db: db}
}

// CurrentDay returns the canonical today according to the database clock.
func (r *DismissalRepository) CurrentDay(ctx context.Context) (time.Time, error) {
	var day time.Time
	if err := r.db.QueryRowContext(ctx, `SELECT CURRENT_DATE`).Scan(&day); err != nil {
		return time.Time{}, fmt.Errorf("error reading current day: %w", err)
	}
	return day, nil
}

// ListKeysForDay returns every alert key the user dismissed for the tenant
// on the given calendar day.
func (r *DismissalRepository) ListKeysForDay(ctx context.Context, tenantID, userID string, day time.Time) ([]string, error) {
	query := `SELECT alert_key FROM alert_dismissals
               WHERE tenant_id = $1 AND user_id = $2 AND dismissed_on = $3
               ORDER BY alert_key`
	rows, err := r.db.QueryContext(ctx, query, tenantID, userID, day)
	if err != nil {
		return nil, fmt.Errorf("error querying alert dismissals: %w", err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("error scanning dismissal row: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dismissal rows: %w", err)
	}
	return keys, nil
}

// Upsert records a dismissal for today with insert-or-ignore semantics on
// (tenant_id, user_id, alert_key, dismissed_on). Returns
// ErrMissingConflictTarget when the database rejects the conflict clause.
func (r *DismissalRepository) Upsert(ctx context.Context, tenantID, userID, alertKey string) error {
	query := `INSERT INTO alert_dismissals (tenant_id, user_id, alert_key, dismissed_on)
               VALUES ($1, $2, $3, CURRENT_DATE)
               ON CONFLICT (tenant_id, user_id, alert_key, dismissed_on) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, tenantID, userID, alertKey); err != nil {
		return classify(err, "error upserting alert dismissal")
	}
	return nil
}

// Insert records a dismissal with a plain insert, the fallback path used
// when the conflict target is unavailable. Duplicates surface as
// ErrDuplicateDismissal for the caller to swallow.
func (r *DismissalRepository) Insert(ctx context.Context, tenantID, userID, alertKey string) error {
	query := `INSERT INTO alert_dismissals (tenant_id, user_id, alert_key, dismissed_on)
               VALUES ($1, $2, $3, CURRENT_DATE)`
	if _, err := r.db.ExecContext(ctx, query, tenantID, userID, alertKey); err != nil {
		return classify(err, "error inserting alert dismissal")
	}
	return nil
}

// UpsertBulk applies Upsert semantics to a batch inside one transaction.
func (r *DismissalRepository) UpsertBulk(ctx context.Context, tenantID, userID string, alertKeys []string) error {
	if len(alertKeys) == 0 {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for bulk dismissal: %w", err)
	}
	defer txn.Rollback()

	stmt, err := txn.PrepareContext(ctx, `INSERT INTO alert_dismissals (tenant_id, user_id, alert_key, dismissed_on)
                                         VALUES ($1, $2, $3, CURRENT_DATE)
                                         ON CONFLICT (tenant_id, user_id, alert_key, dismissed_on) DO NOTHING`)
	if err != nil {
		return classify(err, "failed to prepare bulk dismissal statement")
	}
	defer stmt.Close()

	for _, key := range alertKeys {
		if _, err := stmt.ExecContext(ctx, tenantID, userID, key); err != nil {
			return classify(err, fmt.Sprintf("error in bulk dismissal (key %s)", key))
		}
	}

	return txn.Commit()
}

// classify maps pq error codes onto the repository's sentinel errors.
func classify(err error, msg string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return ErrDuplicateDismissal
		case pqInvalidColumnReference:
			return ErrMissingConflictTarget
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
