package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xela07ax/payguard-prototype/internal/domain"
)

// fakeLedger имитирует ledger_repo: инкременты атомарны под мьютексом,
// как серверный upsert в Postgres.
type fakeLedger struct {
	mu     sync.Mutex
	totals map[string]decimal.Decimal // user_id|date -> total
	counts map[string]int64
	calls  int

	failNext error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		totals: make(map[string]decimal.Decimal),
		counts: make(map[string]int64),
	}
}

func ledgerKey(userID string, date time.Time) string {
	return userID + "|" + domain.DateOf(date).Format("2006-01-02")
}

func (f *fakeLedger) IncrementDailySpend(ctx context.Context, userID string, date time.Time, amount decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failNext != nil {
		return f.failNext
	}
	k := ledgerKey(userID, date)
	f.totals[k] = f.totals[k].Add(amount)
	f.counts[k]++
	return nil
}

func (f *fakeLedger) GetDailySpend(ctx context.Context, userID string, date time.Time) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		return decimal.Zero, f.failNext
	}
	return f.totals[ledgerKey(userID, date)], nil
}

func (f *fakeLedger) SumSpendRange(ctx context.Context, userID string, from, to time.Time) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		return decimal.Zero, f.failNext
	}
	total := decimal.Zero
	for d := domain.DateOf(from); !d.After(domain.DateOf(to)); d = d.AddDate(0, 0, 1) {
		total = total.Add(f.totals[ledgerKey(userID, d)])
	}
	return total, nil
}

func TestRecordSpendRejectsNonPositiveAmounts(t *testing.T) {
	ledger := newFakeLedger()
	s := NewBudgetLedger(ledger, time.Second, zap.NewNop())

	for _, amount := range []string{"-5.00", "0.00"} {
		err := s.RecordSpend(context.Background(), "u1", decimal.RequireFromString(amount))
		if !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("RecordSpend(%s) error = %v, want ErrInvalidAmount", amount, err)
		}
	}

	// Валидация обязана отработать до обращения к хранилищу
	if ledger.calls != 0 {
		t.Errorf("storage touched %d times for invalid amounts", ledger.calls)
	}
}

func TestRecordSpendConcurrentIncrementsLoseNothing(t *testing.T) {
	ledger := newFakeLedger()
	s := NewBudgetLedger(ledger, time.Second, zap.NewNop())

	const n = 50
	amount := decimal.RequireFromString("1.00")

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.RecordSpend(context.Background(), "u1", amount); err != nil {
				t.Errorf("RecordSpend failed: %v", err)
			}
		}()
	}
	wg.Wait()

	k := ledgerKey("u1", time.Now().UTC())
	if !ledger.totals[k].Equal(decimal.NewFromInt(n)) {
		t.Errorf("total = %s, want %d.00: concurrent increments lost", ledger.totals[k], n)
	}
	if ledger.counts[k] != n {
		t.Errorf("transaction count = %d, want %d", ledger.counts[k], n)
	}
}

func TestRecordSpendMapsStorageFailure(t *testing.T) {
	ledger := newFakeLedger()
	ledger.failNext = errors.New("connection refused")
	s := NewBudgetLedger(ledger, time.Second, zap.NewNop())

	err := s.RecordSpend(context.Background(), "u1", decimal.RequireFromString("1.00"))
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Errorf("error = %v, want ErrStorageUnavailable", err)
	}
}

func TestWeekSpendSumsFromMonday(t *testing.T) {
	ledger := newFakeLedger()
	s := NewBudgetLedger(ledger, time.Second, zap.NewNop())

	now := time.Now().UTC()
	monday := domain.WeekStart(now)

	// Расход в понедельник текущей недели попадает в сумму,
	// воскресенье прошлой недели — нет.
	ledger.totals[ledgerKey("u1", monday)] = decimal.RequireFromString("7.00")
	ledger.totals[ledgerKey("u1", monday.AddDate(0, 0, -1))] = decimal.RequireFromString("100.00")

	got, err := s.WeekSpend(context.Background(), "u1")
	if err != nil {
		t.Fatalf("WeekSpend failed: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("7.00")) {
		t.Errorf("WeekSpend = %s, want 7.00", got)
	}
}
