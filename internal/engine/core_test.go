package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xela07ax/payguard-prototype/internal/audit"
	"github.com/xela07ax/payguard-prototype/internal/connectors"
	"github.com/xela07ax/payguard-prototype/internal/domain"
)

type stubPolicies struct {
	cfg domain.PolicyConfig
	err error
}

func (s *stubPolicies) Get(ctx context.Context, userID string) (domain.PolicyConfig, error) {
	return s.cfg, s.err
}

type stubTrust struct {
	entry *domain.TrustEntry
	err   error
}

func (s *stubTrust) Lookup(ctx context.Context, userID, counterpartyID string) (*domain.TrustEntry, error) {
	return s.entry, s.err
}

type stubBudget struct {
	today decimal.Decimal
	week  decimal.Decimal

	recordErr error
	recorded  []decimal.Decimal
}

func (s *stubBudget) TodaySpend(ctx context.Context, userID string) (decimal.Decimal, error) {
	return s.today, nil
}

func (s *stubBudget) WeekSpend(ctx context.Context, userID string) (decimal.Decimal, error) {
	return s.week, nil
}

func (s *stubBudget) RecordSpend(ctx context.Context, userID string, amount decimal.Decimal) error {
	if s.recordErr != nil {
		return s.recordErr
	}
	s.recorded = append(s.recorded, amount)
	return nil
}

type stubAccounts struct{}

func (stubAccounts) GetAccountID(ctx context.Context, userID string) (string, error) {
	return "acc-" + userID, nil
}

type stubAlerts struct {
	checked  int
	deposits int
}

func (s *stubAlerts) CheckLowBalance(ctx context.Context, userID string, balance decimal.Decimal) (*domain.Alert, error) {
	s.checked++
	return nil, nil
}

func (s *stubAlerts) NotifyDeposit(ctx context.Context, userID string, amount decimal.Decimal, source string) (*domain.Alert, error) {
	s.deposits++
	return nil, nil
}

type stubNotifier struct {
	blocked []domain.Decision
}

func (s *stubNotifier) NotifyBlocked(ctx context.Context, userID, counterpartyID string, amount decimal.Decimal, d domain.Decision) {
	s.blocked = append(s.blocked, d)
}

type stubExecutor struct {
	res   *connectors.ExecutionResult
	err   error
	calls int
}

func (s *stubExecutor) Execute(ctx context.Context, sourceAccount, destinationAddress string, amount decimal.Decimal) (*connectors.ExecutionResult, error) {
	s.calls++
	return s.res, s.err
}

type stubBalances struct{}

func (stubBalances) CurrentBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return decimal.RequireFromString("100.00"), nil
}

type captureTrail struct {
	mu     sync.Mutex
	events []audit.Event
}

func (c *captureTrail) Record(e audit.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captureTrail) lastStatus() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.events) == 0 {
		return ""
	}
	return c.events[len(c.events)-1].Status
}

type coreFixture struct {
	core     *GuardCore
	policies *stubPolicies
	trust    *stubTrust
	budget   *stubBudget
	alerts   *stubAlerts
	notifier *stubNotifier
	executor *stubExecutor
	trail    *captureTrail
}

func newCoreFixture() *coreFixture {
	f := &coreFixture{
		policies: &stubPolicies{cfg: domain.DefaultPolicyConfig("u1")},
		trust:    &stubTrust{entry: &domain.TrustEntry{UserID: "u1", CounterpartyID: "cp1"}},
		budget:   &stubBudget{},
		alerts:   &stubAlerts{},
		notifier: &stubNotifier{},
		executor: &stubExecutor{res: &connectors.ExecutionResult{Success: true, ExternalTxRef: "tx-1", FinalState: "settled"}},
		trail:    &captureTrail{},
	}
	f.core = NewGuardCore(
		f.policies, f.trust, f.budget, stubAccounts{}, f.alerts, f.notifier,
		f.executor, stubBalances{}, f.trail, NewMetrics(nil), zap.NewNop(),
	)
	return f
}

func TestEvaluateTransferRejectsInvalidAmount(t *testing.T) {
	f := newCoreFixture()

	_, err := f.core.EvaluateTransfer(context.Background(), "u1", "cp1", decimal.RequireFromString("-1.00"), false)
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("error = %v, want ErrInvalidAmount", err)
	}
	if len(f.trail.events) != 0 {
		t.Error("invalid amount must not produce a journal event")
	}
}

func TestEvaluateTransferFailsClosedOnStorageError(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*coreFixture)
	}{
		{"policy read fails", func(f *coreFixture) { f.policies.err = errors.New("db down") }},
		{"trust read fails", func(f *coreFixture) { f.trust.err = errors.New("db down") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCoreFixture()
			tt.mutate(f)

			d, err := f.core.EvaluateTransfer(context.Background(), "u1", "cp1", decimal.RequireFromString("1.00"), true)
			if err != nil {
				t.Fatalf("fail-closed must return a decision, got error: %v", err)
			}
			if d.Outcome != domain.OutcomeRequiresConfirmation || d.Reason != domain.ReasonPolicyUnverifiable {
				t.Errorf("decision = %s/%s, want requires_confirmation/policy_unverifiable", d.Outcome, d.Reason)
			}
			if d.Approved() {
				t.Error("storage failure must never approve, even with confirmed=true")
			}
		})
	}
}

func TestExecuteTransferHappyPath(t *testing.T) {
	f := newCoreFixture()

	d, res, err := f.core.ExecuteTransfer(context.Background(), "u1", "cp1", decimal.RequireFromString("3.00"), false)
	if err != nil {
		t.Fatalf("ExecuteTransfer failed: %v", err)
	}
	if d.Outcome != domain.OutcomeAutoApproved {
		t.Errorf("outcome = %s, want auto_approved", d.Outcome)
	}
	if res == nil || res.ExternalTxRef != "tx-1" {
		t.Errorf("execution result = %+v, want tx-1", res)
	}
	if len(f.budget.recorded) != 1 || !f.budget.recorded[0].Equal(decimal.RequireFromString("3.00")) {
		t.Errorf("ledger commits = %v, want single 3.00", f.budget.recorded)
	}
	if f.alerts.checked != 1 {
		t.Errorf("low balance checks = %d, want 1", f.alerts.checked)
	}
	if f.trail.lastStatus() != audit.StatusCompleted {
		t.Errorf("last journal status = %q, want COMPLETED", f.trail.lastStatus())
	}
}

func TestExecuteTransferSkipsExecutorWhenNotApproved(t *testing.T) {
	f := newCoreFixture()
	f.trust.entry = nil // не доверен -> requires_confirmation

	d, res, err := f.core.ExecuteTransfer(context.Background(), "u1", "cp1", decimal.RequireFromString("3.00"), false)
	if err != nil {
		t.Fatalf("ExecuteTransfer failed: %v", err)
	}
	if d.Approved() {
		t.Fatal("untrusted transfer approved")
	}
	if res != nil {
		t.Error("execution result returned for unapproved transfer")
	}
	if f.executor.calls != 0 {
		t.Errorf("executor called %d times for unapproved transfer", f.executor.calls)
	}
	if len(f.budget.recorded) != 0 {
		t.Error("ledger touched for unapproved transfer")
	}
}

func TestExecuteTransferNotifiesOnBlocked(t *testing.T) {
	f := newCoreFixture()
	f.budget.today = f.policies.cfg.DailySpendingLimit // любой положительный amount блокируется

	d, _, err := f.core.ExecuteTransfer(context.Background(), "u1", "cp1", decimal.RequireFromString("1.00"), false)
	if err != nil {
		t.Fatalf("ExecuteTransfer failed: %v", err)
	}
	if d.Outcome != domain.OutcomeBlocked {
		t.Fatalf("outcome = %s, want blocked", d.Outcome)
	}
	if len(f.notifier.blocked) != 1 {
		t.Errorf("block notifications = %d, want 1", len(f.notifier.blocked))
	}
}

func TestExecuteTransferFailedExecutionLeavesLedgerUntouched(t *testing.T) {
	f := newCoreFixture()
	f.executor.res = nil
	f.executor.err = errors.New("provider unreachable")

	_, _, err := f.core.ExecuteTransfer(context.Background(), "u1", "cp1", decimal.RequireFromString("3.00"), false)
	if err == nil {
		t.Fatal("expected executor error to propagate")
	}
	if len(f.budget.recorded) != 0 {
		t.Error("ledger committed for failed transfer")
	}
	if f.trail.lastStatus() != audit.StatusFailed {
		t.Errorf("last journal status = %q, want FAILED", f.trail.lastStatus())
	}
}

func TestExecuteTransferNilResultTreatedAsFailure(t *testing.T) {
	f := newCoreFixture()
	f.executor.res = nil
	f.executor.err = nil

	// Провайдер вернул (nil, nil): это не успех, а отсутствие результата
	_, res, err := f.core.ExecuteTransfer(context.Background(), "u1", "cp1", decimal.RequireFromString("3.00"), false)
	if err != nil {
		t.Fatalf("ExecuteTransfer returned error: %v", err)
	}
	if res != nil {
		t.Errorf("result = %+v, want nil", res)
	}
	if len(f.budget.recorded) != 0 {
		t.Error("ledger committed without an execution result")
	}
	if f.trail.lastStatus() != audit.StatusFailed {
		t.Errorf("last journal status = %q, want FAILED", f.trail.lastStatus())
	}
}

func TestRecordDepositNeverTouchesLedger(t *testing.T) {
	f := newCoreFixture()

	err := f.core.RecordDeposit(context.Background(), "u1", "payroll", decimal.RequireFromString("200.00"))
	if err != nil {
		t.Fatalf("RecordDeposit failed: %v", err)
	}
	if len(f.budget.recorded) != 0 {
		t.Error("deposit must not be committed to the spending ledger")
	}
	if f.alerts.deposits != 1 {
		t.Errorf("deposit notifications = %d, want 1", f.alerts.deposits)
	}
	if len(f.trail.events) != 1 || f.trail.events[0].Direction != string(domain.DirectionIn) {
		t.Errorf("journal events = %+v, want single direction=in row", f.trail.events)
	}
}

func TestExecuteTransferReconciliationRequired(t *testing.T) {
	f := newCoreFixture()
	f.budget.recordErr = errors.New("ledger write timeout")

	// Внешний перевод прошел, коммит расхода упал: наружу НЕ ошибка,
	// событие сверки обязано попасть в журнал.
	d, res, err := f.core.ExecuteTransfer(context.Background(), "u1", "cp1", decimal.RequireFromString("3.00"), false)
	if err != nil {
		t.Fatalf("reconciliation path must not surface an error, got: %v", err)
	}
	if !d.Approved() {
		t.Fatalf("outcome = %s, want approved", d.Outcome)
	}
	if res == nil || !res.Success {
		t.Fatal("execution result lost on reconciliation path")
	}
	if f.trail.lastStatus() != audit.StatusReconcile {
		t.Errorf("last journal status = %q, want RECONCILIATION_REQUIRED", f.trail.lastStatus())
	}
}
