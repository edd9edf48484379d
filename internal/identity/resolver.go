package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrNoUserContext signals that the current user or their tenant membership
// could not be resolved. Read paths degrade to empty results on it; write
// paths surface it, because a dismissal without an owner is meaningless.
var ErrNoUserContext = errors.New("invalid user context")

// Context is the resolved identity of the active session: who is acting and
// which tenant they belong to.
type Context struct {
	UserID   string
	TenantID string
}

// LookupFunc performs the external identity lookup (auth layer, session
// store). It is expected to be slow and is called at most once per session
// on the happy path.
type LookupFunc func(ctx context.Context) (Context, error)

// Resolver yields the session's identity context.
type Resolver interface {
	Resolve(ctx context.Context) (Context, error)
}

// CachingResolver resolves the identity once and caches it for the rest of
// the process lifetime. Concurrent callers arriving before the first
// resolution completes share a single in-flight lookup instead of issuing
// redundant ones. Failures are not cached; identity is assumed not to
// change within a session, so the cache is never invalidated.
type CachingResolver struct {
	lookup LookupFunc
	logger *zap.Logger

	group  singleflight.Group
	mu     sync.RWMutex
	cached *Context
}

// NewCachingResolver wraps the given lookup with session-scoped caching.
func NewCachingResolver(lookup LookupFunc, logger *zap.Logger) *CachingResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachingResolver{lookup: lookup, logger: logger}
}

// Resolve returns the cached identity context, performing the external
// lookup on first use. A failed lookup yields ErrNoUserContext and leaves
// the cache empty so a later call may retry.
func (r *CachingResolver) Resolve(ctx context.Context) (Context, error) {
	r.mu.RLock()
	cached := r.cached
	r.mu.RUnlock()
	if cached != nil {
		return *cached, nil
	}

	result, err, _ := r.group.Do("identity", func() (interface{}, error) {
		resolved, err := r.lookup(ctx)
		if err != nil {
			return Context{}, err
		}
		if resolved.UserID == "" {
			return Context{}, errors.New("lookup returned empty user id")
		}

		r.mu.Lock()
		r.cached = &resolved
		r.mu.Unlock()

		r.logger.Debug("identity context resolved",
			zap.String("user_id", resolved.UserID),
			zap.String("tenant_id", resolved.TenantID))
		return resolved, nil
	})
	if err != nil {
		r.logger.Warn("identity context resolution failed", zap.Error(err))
		return Context{}, fmt.Errorf("%w: %v", ErrNoUserContext, err)
	}

	return result.(Context), nil
}
