package connectors

import (
	"context"

	"github.com/shopspring/decimal"
)

// ExecutionResult — итог внешнего перевода у Ledger-провайдера.
type ExecutionResult struct {
	Success       bool   `json:"success"`
	ExternalTxRef string `json:"external_tx_ref"`
	FinalState    string `json:"final_state"`
}

// TransferExecutor — контракт внешнего исполнителя переводов.
// Вызывается только после AutoApproved или подтвержденного
// RequiresConfirmation; движок сам деньги не двигает.
type TransferExecutor interface {
	Execute(ctx context.Context, sourceAccount, destinationAddress string, amount decimal.Decimal) (*ExecutionResult, error)
}

// BalanceSource — источник текущего баланса счета
// (вход для проверки low balance после перевода).
type BalanceSource interface {
	CurrentBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
}
