package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/agrovista/fermops/internal/identity"
)

// SessionLookup builds an identity lookup backed by the device_sessions
// table. An unknown or revoked token resolves to no context; the resolver
// layer decides per-operation how that degrades.
func SessionLookup(db *sql.DB, sessionToken string) identity.LookupFunc {
	return func(ctx context.Context) (identity.Context, error) {
		query := `SELECT user_id, tenant_id FROM device_sessions
                   WHERE session_token = $1 AND revoked_at IS NULL`
		var resolved identity.Context
		err := db.QueryRowContext(ctx, query, sessionToken).Scan(&resolved.UserID, &resolved.TenantID)
		if err == sql.ErrNoRows {
			return identity.Context{}, fmt.Errorf("no active session for token")
		}
		if err != nil {
			return identity.Context{}, fmt.Errorf("error resolving session: %w", err)
		}
		return resolved, nil
	}
}
