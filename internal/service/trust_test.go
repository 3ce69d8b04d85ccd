package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xela07ax/payguard-prototype/internal/domain"
)

type fakeTrustRepo struct {
	entries map[string]domain.TrustEntry // user|counterparty
	err     error
}

func newFakeTrustRepo() *fakeTrustRepo {
	return &fakeTrustRepo{entries: make(map[string]domain.TrustEntry)}
}

func trustKey(userID, counterpartyID string) string { return userID + "|" + counterpartyID }

func (f *fakeTrustRepo) UpsertTrust(ctx context.Context, userID, counterpartyID string, overrideLimit *decimal.Decimal) (domain.TrustEntry, error) {
	if f.err != nil {
		return domain.TrustEntry{}, f.err
	}
	e := domain.TrustEntry{UserID: userID, CounterpartyID: counterpartyID, AutoApproveLimitOverride: overrideLimit}
	f.entries[trustKey(userID, counterpartyID)] = e
	return e, nil
}

func (f *fakeTrustRepo) DeleteTrust(ctx context.Context, userID, counterpartyID string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.entries, trustKey(userID, counterpartyID))
	return nil
}

func (f *fakeTrustRepo) GetTrust(ctx context.Context, userID, counterpartyID string) (*domain.TrustEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.entries[trustKey(userID, counterpartyID)]; ok {
		return &e, nil
	}
	return nil, nil
}

func (f *fakeTrustRepo) ListTrust(ctx context.Context, userID string) ([]domain.TrustEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.TrustEntry, 0)
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestTrustIsIdempotent(t *testing.T) {
	repo := newFakeTrustRepo()
	s := NewTrustRegistry(repo, time.Second, zap.NewNop())

	for i := 0; i < 3; i++ {
		if _, err := s.Trust(context.Background(), "u1", "cp1", nil); err != nil {
			t.Fatalf("Trust failed: %v", err)
		}
	}

	entries, err := s.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("entries = %d, want 1: repeated Trust must not duplicate", len(entries))
	}
}

func TestTrustReplacesOverride(t *testing.T) {
	repo := newFakeTrustRepo()
	s := NewTrustRegistry(repo, time.Second, zap.NewNop())

	first := decimal.RequireFromString("10.00")
	second := decimal.RequireFromString("25.00")

	s.Trust(context.Background(), "u1", "cp1", &first)
	entry, err := s.Trust(context.Background(), "u1", "cp1", &second)
	if err != nil {
		t.Fatalf("Trust failed: %v", err)
	}
	if entry.AutoApproveLimitOverride == nil || !entry.AutoApproveLimitOverride.Equal(second) {
		t.Errorf("override = %v, want 25.00", entry.AutoApproveLimitOverride)
	}
}

func TestTrustRejectsNegativeOverride(t *testing.T) {
	repo := newFakeTrustRepo()
	s := NewTrustRegistry(repo, time.Second, zap.NewNop())

	neg := decimal.RequireFromString("-1.00")
	_, err := s.Trust(context.Background(), "u1", "cp1", &neg)
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("error = %v, want ErrInvalidAmount", err)
	}
	if len(repo.entries) != 0 {
		t.Error("negative override persisted")
	}
}

func TestRevokeMissingEntryIsNoError(t *testing.T) {
	repo := newFakeTrustRepo()
	s := NewTrustRegistry(repo, time.Second, zap.NewNop())

	if err := s.Revoke(context.Background(), "u1", "never-trusted"); err != nil {
		t.Errorf("Revoke of missing entry failed: %v", err)
	}
}

func TestLookupUntrustedReturnsNilNil(t *testing.T) {
	repo := newFakeTrustRepo()
	s := NewTrustRegistry(repo, time.Second, zap.NewNop())

	entry, err := s.Lookup(context.Background(), "u1", "cp1")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if entry != nil {
		t.Errorf("entry = %+v, want nil for untrusted counterparty", entry)
	}
}

func TestTrustMapsStorageFailure(t *testing.T) {
	repo := newFakeTrustRepo()
	repo.err = errors.New("db down")
	s := NewTrustRegistry(repo, time.Second, zap.NewNop())

	if _, err := s.Trust(context.Background(), "u1", "cp1", nil); !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Errorf("error = %v, want ErrStorageUnavailable", err)
	}
	if _, err := s.Lookup(context.Background(), "u1", "cp1"); !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Errorf("error = %v, want ErrStorageUnavailable", err)
	}
}
