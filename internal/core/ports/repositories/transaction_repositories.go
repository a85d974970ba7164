package repositories

import (
	"context"
	"time"

	"github.com/democraciv/bank_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionRepositoryFacade defines persistence operations for transfers.
type TransactionRepositoryFacade interface {
	// CreateTransfer debits the source, credits the target and records the
	// transaction in a single database transaction. Account rows are locked
	// in IBAN order. Funds and frozen state are re-checked under the lock;
	// a failed re-check surfaces as apperrors.ErrConflict so the caller can
	// retry against fresh balances.
	CreateTransfer(ctx context.Context, txn domain.Transaction) error

	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactionsByAccount returns transfers touching the account,
	// newest first, keyset-paginated. The returned token is nil when no
	// further page exists.
	ListTransactionsByAccount(ctx context.Context, iban string, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	CountTransactions(ctx context.Context) (int64, error)
	CountTransactionsByCurrency(ctx context.Context, currencyCode string) (int64, error)

	// SumOutgoingSince totals transferred amounts in the currency since the
	// given instant.
	SumOutgoingSince(ctx context.Context, currencyCode string, since time.Time) (decimal.Decimal, error)
}
