package connectors

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockLedgerProvider — in-process имитация внешнего Ledger-провайдера
// (исполнитель переводов + источник балансов) для локальной разработки
// и интеграционных прогонов без внешней сети.
type MockLedgerProvider struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
}

func NewMockLedgerProvider() *MockLedgerProvider {
	return &MockLedgerProvider{balances: make(map[string]decimal.Decimal)}
}

// Seed задает стартовый баланс счета.
func (m *MockLedgerProvider) Seed(accountID string, balance decimal.Decimal) {
	m.mu.Lock()
	m.balances[accountID] = balance
	m.mu.Unlock()
}

func (m *MockLedgerProvider) Execute(ctx context.Context, sourceAccount, destinationAddress string, amount decimal.Decimal) (*ExecutionResult, error) {
	// Имитируем задержку сети 50-300мс
	latency := time.Duration(50+rand.IntN(250)) * time.Millisecond
	select {
	case <-time.After(latency):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	balance, ok := m.balances[sourceAccount]
	if !ok {
		return nil, fmt.Errorf("account %s not found", sourceAccount)
	}
	if balance.LessThan(amount) {
		return &ExecutionResult{Success: false, FinalState: "insufficient_funds"}, nil
	}

	m.balances[sourceAccount] = balance.Sub(amount)
	return &ExecutionResult{
		Success:       true,
		ExternalTxRef: "mock-" + uuid.New().String(),
		FinalState:    "settled",
	}, nil
}

func (m *MockLedgerProvider) CurrentBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	balance, ok := m.balances[accountID]
	if !ok {
		return decimal.Zero, fmt.Errorf("account %s not found", accountID)
	}
	return balance, nil
}
