package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/democraciv/bank_backend/internal/apperrors"
	"github.com/democraciv/bank_backend/internal/core/domain"
	portsrepo "github.com/democraciv/bank_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const accountColumns = `iban, name, balance, currency_code, is_frozen, is_default_for_currency, is_reserve, equilibrium_threshold, holder_kind, holder_user_id, holder_organization_id, created_at`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool PgxPool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// holderColumns splits a holder into its nullable column values.
func holderColumns(h domain.Holder) (sql.NullString, sql.NullString) {
	var userID, orgID sql.NullString
	if h.UserID != "" {
		userID = sql.NullString{String: h.UserID, Valid: true}
	}
	if h.OrganizationID != "" {
		orgID = sql.NullString{String: h.OrganizationID, Valid: true}
	}
	return userID, orgID
}

// scanAccount reads one account row in accountColumns order.
func scanAccount(row pgx.Row) (domain.Account, error) {
	var acc domain.Account
	var balance decimal.Decimal
	var threshold *decimal.Decimal
	var holderUserID, holderOrgID sql.NullString

	err := row.Scan(
		&acc.IBAN,
		&acc.Name,
		&balance,
		&acc.CurrencyCode,
		&acc.IsFrozen,
		&acc.IsDefaultForCurrency,
		&acc.IsReserve,
		&threshold,
		&acc.Holder.Kind,
		&holderUserID,
		&holderOrgID,
		&acc.CreatedAt,
	)
	if err != nil {
		return domain.Account{}, err
	}

	acc.Balance = domain.NewMoney(balance, acc.CurrencyCode)
	acc.EquilibriumThreshold = threshold
	if holderUserID.Valid {
		acc.Holder.UserID = holderUserID.String
	}
	if holderOrgID.Valid {
		acc.Holder.OrganizationID = holderOrgID.String
	}
	return acc, nil
}

// clearDefaultFlag unsets the default flag on the holder's other accounts in
// the same currency.
func clearDefaultFlag(ctx context.Context, q Querier, acc domain.Account) error {
	query := `
		UPDATE accounts
		SET is_default_for_currency = FALSE
		WHERE holder_kind = $1
		  AND holder_user_id IS NOT DISTINCT FROM $2
		  AND holder_organization_id IS NOT DISTINCT FROM $3
		  AND currency_code = $4
		  AND is_default_for_currency
		  AND iban <> $5;
	`
	userID, orgID := holderColumns(acc.Holder)
	_, err := q.Exec(ctx, query, acc.Holder.Kind, userID, orgID, acc.CurrencyCode, acc.IBAN)
	if err != nil {
		return fmt.Errorf("failed to clear default flag: %w", err)
	}
	return nil
}

func (r *PgxAccountRepository) SaveAccount(ctx context.Context, acc domain.Account, grants []domain.Grant) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if acc.IsDefaultForCurrency {
		if err := clearDefaultFlag(ctx, tx, acc); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	userID, orgID := holderColumns(acc.Holder)
	_, err = tx.Exec(ctx, query,
		acc.IBAN,
		acc.Name,
		acc.Balance.Amount,
		acc.CurrencyCode,
		acc.IsFrozen,
		acc.IsDefaultForCurrency,
		acc.IsReserve,
		acc.EquilibriumThreshold,
		acc.Holder.Kind,
		userID,
		orgID,
		acc.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account with IBAN %s already exists", apperrors.ErrDuplicate, acc.IBAN)
		}
		return fmt.Errorf("failed to save account %s: %w", acc.IBAN, err)
	}

	if err := insertGrants(ctx, tx, grants); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func (r *PgxAccountRepository) FindAccountByIBAN(ctx context.Context, iban string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE iban = $1;`
	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, iban))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, iban)
		}
		return nil, fmt.Errorf("failed to find account %s: %w", iban, err)
	}
	return &acc, nil
}

func (r *PgxAccountRepository) FindAccountsByIBANs(ctx context.Context, ibans []string) ([]domain.Account, error) {
	if len(ibans) == 0 {
		return []domain.Account{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE iban = ANY($1) ORDER BY created_at;`
	return r.queryAccounts(ctx, query, ibans)
}

func (r *PgxAccountRepository) UpdateAccountDetails(ctx context.Context, acc domain.Account) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if acc.IsDefaultForCurrency {
		if err := clearDefaultFlag(ctx, tx, acc); err != nil {
			return err
		}
	}

	query := `
		UPDATE accounts
		SET name = $2, is_frozen = $3, is_default_for_currency = $4, is_reserve = $5
		WHERE iban = $1;
	`
	ct, err := tx.Exec(ctx, query, acc.IBAN, acc.Name, acc.IsFrozen, acc.IsDefaultForCurrency, acc.IsReserve)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", acc.IBAN, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, acc.IBAN)
	}
	return r.Commit(ctx, tx)
}

func (r *PgxAccountRepository) UpdateThreshold(ctx context.Context, iban string, newValue decimal.Decimal) error {
	query := `UPDATE accounts SET equilibrium_threshold = $2 WHERE iban = $1;`
	ct, err := r.Pool.Exec(ctx, query, iban, newValue)
	if err != nil {
		return fmt.Errorf("failed to update threshold of %s: %w", iban, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, iban)
	}
	return nil
}

func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, iban string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := deleteGrantsForObject(ctx, tx, domain.ObjectAccount, iban); err != nil {
		return err
	}

	// Transactions referencing the account fall back to the sentinel via
	// their foreign key defaults.
	ct, err := tx.Exec(ctx, `DELETE FROM accounts WHERE iban = $1;`, iban)
	if err != nil {
		return fmt.Errorf("failed to delete account %s: %w", iban, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, iban)
	}
	return r.Commit(ctx, tx)
}

func (r *PgxAccountRepository) ListAccountsByCurrency(ctx context.Context, currencyCode string, excludeOrgID string) ([]domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE currency_code = $1
		  AND iban <> $2
		  AND ($3 = '' OR holder_organization_id IS DISTINCT FROM $3)
		ORDER BY created_at;
	`
	return r.queryAccounts(ctx, query, currencyCode, domain.DeletedAccountIBAN, excludeOrgID)
}

func (r *PgxAccountRepository) ListAccountsByHolder(ctx context.Context, holder domain.Holder) ([]domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE holder_kind = $1
		  AND holder_user_id IS NOT DISTINCT FROM $2
		  AND holder_organization_id IS NOT DISTINCT FROM $3
		ORDER BY created_at;
	`
	userID, orgID := holderColumns(holder)
	return r.queryAccounts(ctx, query, holder.Kind, userID, orgID)
}

func (r *PgxAccountRepository) FindDefaultAccount(ctx context.Context, holder domain.Holder, currencyCode string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE holder_kind = $1
		  AND holder_user_id IS NOT DISTINCT FROM $2
		  AND holder_organization_id IS NOT DISTINCT FROM $3
		  AND currency_code = $4
		  AND is_default_for_currency
		LIMIT 1;
	`
	userID, orgID := holderColumns(holder)
	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, holder.Kind, userID, orgID, currencyCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find default account: %w", err)
	}
	return &acc, nil
}

func (r *PgxAccountRepository) SumBalances(ctx context.Context, currencyCode string, excludeOrgID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(balance), 0)
		FROM accounts
		WHERE currency_code = $1
		  AND NOT is_reserve
		  AND iban <> $2
		  AND ($3 = '' OR holder_organization_id IS DISTINCT FROM $3);
	`
	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, currencyCode, domain.DeletedAccountIBAN, excludeOrgID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum balances: %w", err)
	}
	return sum, nil
}

func (r *PgxAccountRepository) CountAccounts(ctx context.Context) (int64, error) {
	var count int64
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE iban <> $1;`, domain.DeletedAccountIBAN).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

func (r *PgxAccountRepository) CountAccountsByCurrency(ctx context.Context, currencyCode string) (int64, error) {
	var count int64
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE currency_code = $1 AND iban <> $2;`, currencyCode, domain.DeletedAccountIBAN).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts by currency: %w", err)
	}
	return count, nil
}

func (r *PgxAccountRepository) EnsureDeletedAccount(ctx context.Context) error {
	query := `
		INSERT INTO accounts (iban, name, balance, currency_code, is_frozen, is_default_for_currency, is_reserve, holder_kind, created_at)
		VALUES ($1, 'Deleted Bank Account', 0, 'CIV', TRUE, FALSE, FALSE, $2, NOW())
		ON CONFLICT (iban) DO NOTHING;
	`
	if _, err := r.Pool.Exec(ctx, query, domain.DeletedAccountIBAN, domain.HolderNone); err != nil {
		return fmt.Errorf("failed to ensure deleted-account sentinel: %w", err)
	}
	return nil
}

// FindAccountsByIBANsForUpdate retrieves multiple accounts by IBANs and locks
// the rows for update, in IBAN order so concurrent transfers cannot deadlock.
// Must be called within a transaction.
func (r *PgxAccountRepository) FindAccountsByIBANsForUpdate(ctx context.Context, tx pgx.Tx, ibans []string) (map[string]domain.Account, error) {
	if len(ibans) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE iban = ANY($1)
		ORDER BY iban
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, ibans)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for update: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked account row: %w", err)
		}
		accountsMap[acc.IBAN] = acc
	}
	return accountsMap, rows.Err()
}

// UpdateAccountBalancesInTx applies signed balance deltas within tx.
func (r *PgxAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, changes map[string]decimal.Decimal) error {
	if len(changes) == 0 {
		return nil
	}

	query := `
		UPDATE accounts
		SET balance = COALESCE(balance, 0) + $2
		WHERE iban = $1;
	`
	batch := &pgx.Batch{}
	ibans := make([]string, 0, len(changes))
	for iban, delta := range changes {
		if !delta.IsZero() {
			batch.Queue(query, iban, delta)
			ibans = append(ibans, iban)
		}
	}
	if batch.Len() == 0 {
		return nil
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = fmt.Errorf("failed to update balance of %s: %w", ibans[i], err)
			}
		} else if ct.RowsAffected() == 0 {
			if batchErr == nil {
				batchErr = fmt.Errorf("%w: account %s not found during balance update", apperrors.ErrNotFound, ibans[i])
			}
		}
	}
	if closeErr := br.Close(); closeErr != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close balance update batch: %w", closeErr)
	}
	return batchErr
}

func (r *PgxAccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	return accounts, rows.Err()
}
