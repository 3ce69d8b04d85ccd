package policy

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/xela07ax/payguard-prototype/internal/domain"
)

type countingRepo struct {
	calls       int
	err         error
	hadDeadline bool
}

func (r *countingRepo) GetOrCreatePolicy(ctx context.Context, userID string) (domain.PolicyConfig, error) {
	r.calls++
	_, r.hadDeadline = ctx.Deadline()
	if r.err != nil {
		return domain.PolicyConfig{}, r.err
	}
	return domain.DefaultPolicyConfig(userID), nil
}

func TestGetCachesAfterFirstMiss(t *testing.T) {
	repo := &countingRepo{}
	cache := NewConfigCache(repo, time.Second, zap.NewNop())

	for i := 0; i < 3; i++ {
		if _, err := cache.Get(context.Background(), "u1"); err != nil {
			t.Fatalf("Get failed: %v", err)
		}
	}

	if repo.calls != 1 {
		t.Errorf("repo hit %d times, want 1: cache not effective", repo.calls)
	}
}

func TestInvalidateForcesReload(t *testing.T) {
	repo := &countingRepo{}
	cache := NewConfigCache(repo, time.Second, zap.NewNop())

	cache.Get(context.Background(), "u1")
	cache.Invalidate("u1")
	cache.Get(context.Background(), "u1")

	if repo.calls != 2 {
		t.Errorf("repo hit %d times, want 2 after invalidation", repo.calls)
	}
}

func TestResetClearsAllEntries(t *testing.T) {
	repo := &countingRepo{}
	cache := NewConfigCache(repo, time.Second, zap.NewNop())

	cache.Get(context.Background(), "u1")
	cache.Get(context.Background(), "u2")
	cache.Reset()
	cache.Get(context.Background(), "u1")
	cache.Get(context.Background(), "u2")

	if repo.calls != 4 {
		t.Errorf("repo hit %d times, want 4 after reset", repo.calls)
	}
}

func TestGetMapsStorageError(t *testing.T) {
	repo := &countingRepo{err: errors.New("db down")}
	cache := NewConfigCache(repo, time.Second, zap.NewNop())

	if _, err := cache.Get(context.Background(), "u1"); !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Errorf("error = %v, want ErrStorageUnavailable", err)
	}

	// Ошибка не кэшируется: следующий вызов снова идет в хранилище
	repo.err = nil
	if _, err := cache.Get(context.Background(), "u1"); err != nil {
		t.Errorf("recovered storage still failing: %v", err)
	}
	if repo.calls != 2 {
		t.Errorf("repo hit %d times, want 2", repo.calls)
	}
}

func TestGetBoundsStorageCall(t *testing.T) {
	repo := &countingRepo{}
	cache := NewConfigCache(repo, time.Second, zap.NewNop())

	if _, err := cache.Get(context.Background(), "u1"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !repo.hadDeadline {
		t.Error("cache miss hit storage without a deadline")
	}
}
