package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeLeaseStore keeps leases in a map with SETNX semantics
type fakeLeaseStore struct {
	mu       sync.Mutex
	values   map[string]string
	setErr   error
	released []string
}

func newFakeLeaseStore() *fakeLeaseStore {
	return &fakeLeaseStore{values: map[string]string{}}
}

func (f *fakeLeaseStore) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return redis.NewBoolResult(false, f.setErr)
	}
	if _, ok := f.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeLeaseStore) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values[keys[0]] == args[0].(string) {
		delete(f.values, keys[0])
		f.released = append(f.released, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func TestRoundKey(t *testing.T) {
	assert.Equal(t, "workflow:settlement:round:2025:Q1:PRIMARY", RoundKey(2025, 1, "PRIMARY"))
}

func TestRedisRoundLocker_SecondAcquireIsRejected(t *testing.T) {
	store := newFakeLeaseStore()
	locker := newRedisRoundLocker(store, time.Minute, zap.NewNop())
	ctx := context.Background()

	release, err := locker.Acquire(ctx, 2025, 1, "PRIMARY")
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, 2025, 1, "PRIMARY")
	assert.ErrorIs(t, err, ErrLeaseHeld)

	// a different round is an independent batch
	releaseOther, err := locker.Acquire(ctx, 2025, 1, "SECONDARY")
	require.NoError(t, err)
	releaseOther()

	release()
	assert.Contains(t, store.released, RoundKey(2025, 1, "PRIMARY"))

	release, err = locker.Acquire(ctx, 2025, 1, "PRIMARY")
	require.NoError(t, err)
	release()
}

func TestRedisRoundLocker_ReleaseOnlyDeletesOwnToken(t *testing.T) {
	store := newFakeLeaseStore()
	locker := newRedisRoundLocker(store, time.Minute, nil)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, 2025, 2, "PRIMARY")
	require.NoError(t, err)

	// simulate expiry and takeover by another instance
	store.values[RoundKey(2025, 2, "PRIMARY")] = "someone-else"
	release()

	assert.Equal(t, "someone-else", store.values[RoundKey(2025, 2, "PRIMARY")])
	assert.Empty(t, store.released)
}

func TestRedisRoundLocker_StoreError(t *testing.T) {
	store := newFakeLeaseStore()
	store.setErr = errors.New("connection refused")
	locker := newRedisRoundLocker(store, time.Minute, zap.NewNop())

	_, err := locker.Acquire(context.Background(), 2025, 1, "PRIMARY")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLeaseHeld)
}

func TestNoopRoundLocker(t *testing.T) {
	var locker RoundLocker = NoopRoundLocker{}
	release, err := locker.Acquire(context.Background(), 2025, 1, "PRIMARY")
	require.NoError(t, err)
	release()
}
