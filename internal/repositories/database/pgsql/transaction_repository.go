package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/democraciv/bank_backend/internal/apperrors"
	"github.com/democraciv/bank_backend/internal/core/domain"
	portsrepo "github.com/democraciv/bank_backend/internal/core/ports/repositories"
	"github.com/democraciv/bank_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const transactionColumns = `transaction_id, from_account_iban, to_account_iban, amount, currency_code, purpose, authorized_by_user_id, state, created_at`

type PgxTransactionRepository struct {
	BaseRepository
	accountRepo *PgxAccountRepository
}

// newPgxTransactionRepository creates a new repository for transfer records.
// It composes the account repository so a transfer and its balance mutations
// commit in one database transaction.
func newPgxTransactionRepository(pool PgxPool, accountRepo *PgxAccountRepository) *PgxTransactionRepository {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func (r *PgxTransactionRepository) CreateTransfer(ctx context.Context, txn domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	locked, err := r.accountRepo.FindAccountsByIBANsForUpdate(ctx, tx, []string{txn.FromAccountIBAN, txn.ToAccountIBAN})
	if err != nil {
		return err
	}
	from, ok := locked[txn.FromAccountIBAN]
	if !ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, txn.FromAccountIBAN)
	}
	to, ok := locked[txn.ToAccountIBAN]
	if !ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, txn.ToAccountIBAN)
	}

	// Re-check under the lock. The service validated against a snapshot;
	// a concurrent transfer may have invalidated it since.
	switch {
	case from.CurrencyCode != txn.Amount.CurrencyCode || to.CurrencyCode != txn.Amount.CurrencyCode:
		return fmt.Errorf("%w: currency changed", apperrors.ErrConflict)
	case from.IsFrozen || to.IsFrozen:
		return fmt.Errorf("%w: account frozen", apperrors.ErrConflict)
	case from.Balance.Amount.LessThan(txn.Amount.Amount):
		return fmt.Errorf("%w: insufficient funds", apperrors.ErrConflict)
	}

	changes := map[string]decimal.Decimal{
		txn.FromAccountIBAN: txn.Amount.Amount.Neg(),
		txn.ToAccountIBAN:   txn.Amount.Amount,
	}
	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, changes); err != nil {
		return err
	}

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = tx.Exec(ctx, query,
		txn.ID,
		txn.FromAccountIBAN,
		txn.ToAccountIBAN,
		txn.Amount.Amount,
		txn.Amount.CurrencyCode,
		txn.Purpose,
		txn.AuthorizedByUser,
		txn.State,
		txn.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transaction %s already exists", apperrors.ErrDuplicate, txn.ID)
		}
		return fmt.Errorf("failed to record transaction %s: %w", txn.ID, err)
	}
	return r.Commit(ctx, tx)
}

func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	txn, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	return &txn, nil
}

func (r *PgxTransactionRepository) ListTransactionsByAccount(ctx context.Context, iban string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := []any{iban, limit + 1}
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE (from_account_iban = $1 OR to_account_iban = $1)
	`
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		query += ` AND (created_at, transaction_id) < ($3, $4)`
		args = append(args, lastCreatedAt, lastID)
	}
	query += `
		ORDER BY created_at DESC, transaction_id DESC
		LIMIT $2;
	`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list transactions for %s: %w", iban, err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var newToken *string
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[len(txns)-1]
		token := pagination.EncodeToken(last.CreatedAt, last.ID)
		newToken = &token
	}
	if txns == nil {
		txns = []domain.Transaction{}
	}
	return txns, newToken, nil
}

func (r *PgxTransactionRepository) CountTransactions(ctx context.Context) (int64, error) {
	var count int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions;`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func (r *PgxTransactionRepository) CountTransactionsByCurrency(ctx context.Context, currencyCode string) (int64, error) {
	var count int64
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE currency_code = $1;`, currencyCode).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions by currency: %w", err)
	}
	return count, nil
}

func (r *PgxTransactionRepository) SumOutgoingSince(ctx context.Context, currencyCode string, since time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE currency_code = $1 AND created_at >= $2;
	`
	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, currencyCode, since).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transferred amounts: %w", err)
	}
	return sum, nil
}

// scanTransaction reads one transaction row in transactionColumns order.
func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var txn domain.Transaction
	var amount decimal.Decimal
	var currency string

	err := row.Scan(
		&txn.ID,
		&txn.FromAccountIBAN,
		&txn.ToAccountIBAN,
		&amount,
		&currency,
		&txn.Purpose,
		&txn.AuthorizedByUser,
		&txn.State,
		&txn.CreatedAt,
	)
	if err != nil {
		return domain.Transaction{}, err
	}
	txn.Amount = domain.NewMoney(amount, currency)
	return txn, nil
}
