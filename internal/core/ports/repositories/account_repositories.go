package repositories

import (
	"context"

	"github.com/democraciv/bank_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountRepositoryFacade defines persistence operations for accounts.
//
// Writes that change the derived permission cache take the precomputed grant
// rows and apply them in the same database transaction as the entity change,
// so the cache can never diverge from the entity relationships.
type AccountRepositoryFacade interface {
	// SaveAccount inserts the account and its initial grants atomically.
	// When the account is flagged default-for-currency, any previous default
	// of the same holder and currency is cleared in the same transaction.
	SaveAccount(ctx context.Context, acc domain.Account, grants []domain.Grant) error

	FindAccountByIBAN(ctx context.Context, iban string) (*domain.Account, error)
	FindAccountsByIBANs(ctx context.Context, ibans []string) ([]domain.Account, error)

	// UpdateAccountDetails persists name, frozen, reserve and default flags.
	// Balance and threshold are not touched here.
	UpdateAccountDetails(ctx context.Context, acc domain.Account) error

	UpdateThreshold(ctx context.Context, iban string, newValue decimal.Decimal) error

	// DeleteAccount removes the account row and all grants on it atomically.
	// Referencing transactions are redirected to the deleted-account sentinel
	// by the storage layer.
	DeleteAccount(ctx context.Context, iban string) error

	// ListAccountsByCurrency returns every account in the currency except the
	// sentinel; accounts held by excludeOrgID are skipped when it is non-empty.
	ListAccountsByCurrency(ctx context.Context, currencyCode string, excludeOrgID string) ([]domain.Account, error)

	ListAccountsByHolder(ctx context.Context, holder domain.Holder) ([]domain.Account, error)
	FindDefaultAccount(ctx context.Context, holder domain.Holder, currencyCode string) (*domain.Account, error)

	// SumBalances totals non-reserve balances in the currency, skipping
	// accounts held by excludeOrgID when it is non-empty.
	SumBalances(ctx context.Context, currencyCode string, excludeOrgID string) (decimal.Decimal, error)

	CountAccounts(ctx context.Context) (int64, error)
	CountAccountsByCurrency(ctx context.Context, currencyCode string) (int64, error)

	// EnsureDeletedAccount creates the frozen sentinel account if absent.
	EnsureDeletedAccount(ctx context.Context) error

	// FindAccountsByIBANsForUpdate locks the account rows for update.
	// Must be called within a transaction.
	FindAccountsByIBANsForUpdate(ctx context.Context, tx pgx.Tx, ibans []string) (map[string]domain.Account, error)

	// UpdateAccountBalancesInTx applies signed balance deltas within tx.
	UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, changes map[string]decimal.Decimal) error
}
