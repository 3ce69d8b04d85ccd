package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// WalletRepo — единая точка доступа к PostgreSQL. Методы разнесены по файлам
// по доменам: policy_repo, trust_repo, ledger_repo, alert_repo, transfer_repo.
type WalletRepo struct {
	pool *pgxpool.Pool
}

// NewWalletRepo создает пул соединений. Соединение проверяется в main через Ping.
func NewWalletRepo(ctx context.Context, connString string, maxConns, minConns int32) (*WalletRepo, error) {
	pgCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid connection string: %w", err)
	}
	if maxConns > 0 {
		pgCfg.MaxConns = maxConns
	}
	if minConns > 0 {
		pgCfg.MinConns = minConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}
	return &WalletRepo{pool: pool}, nil
}

// Ping проверяет доступность базы при старте
func (r *WalletRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *WalletRepo) Close() {
	r.pool.Close()
}
