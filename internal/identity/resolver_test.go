package identity

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCachesFirstSuccess(t *testing.T) {
	var calls int32
	lookup := func(ctx context.Context) (Context, error) {
		atomic.AddInt32(&calls, 1)
		return Context{UserID: "u1", TenantID: "t1"}, nil
	}

	r := NewCachingResolver(lookup, nil)

	for i := 0; i < 5; i++ {
		got, err := r.Resolve(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Context{UserID: "u1", TenantID: "t1"}, got)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "lookup runs once per session")
}

func TestResolveCoalescesConcurrentCallers(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	lookup := func(ctx context.Context) (Context, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return Context{UserID: "u1", TenantID: "t1"}, nil
	}

	r := NewCachingResolver(lookup, nil)

	const workers = 16
	var wg sync.WaitGroup
	results := make([]Context, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = r.Resolve(context.Background())
		}(i)
	}

	// Let every caller queue up behind the single in-flight lookup.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "u1", results[i].UserID)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "concurrent callers share one lookup")
}

func TestResolveFailureYieldsNoContextAndIsNotCached(t *testing.T) {
	var calls int32
	lookup := func(ctx context.Context) (Context, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return Context{}, errors.New("auth layer down")
		}
		return Context{UserID: "u1", TenantID: "t1"}, nil
	}

	r := NewCachingResolver(lookup, nil)

	_, err := r.Resolve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoUserContext)

	got, err := r.Resolve(context.Background())
	require.NoError(t, err, "failures are not cached, a later call may succeed")
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestResolveRejectsEmptyUserID(t *testing.T) {
	lookup := func(ctx context.Context) (Context, error) {
		return Context{TenantID: "t1"}, nil
	}

	r := NewCachingResolver(lookup, nil)

	_, err := r.Resolve(context.Background())
	assert.ErrorIs(t, err, ErrNoUserContext)
}
