package pgsql

import (
	"context"
	"testing"
	"time"

	"github.com/democraciv/bank_backend/internal/apperrors"
	"github.com/democraciv/bank_backend/internal/core/domain"
	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// capture records every value offered for an argument slot so assertions can
// run on the applied deltas afterwards, whichever order the batch queued them.
type capture struct {
	into *[]any
}

func (c capture) Match(v any) bool {
	*c.into = append(*c.into, v)
	return true
}

type TransactionRepositoryTestSuite struct {
	suite.Suite
	mock pgxmock.PgxPoolIface
	repo *PgxTransactionRepository
}

func (suite *TransactionRepositoryTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	suite.Require().NoError(err)
	suite.mock = mock

	accountRepo := &PgxAccountRepository{BaseRepository{Pool: mock}}
	suite.repo = &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: mock},
		accountRepo:    accountRepo,
	}
}

func (suite *TransactionRepositoryTestSuite) TearDownTest() {
	suite.mock.Close()
}

func (suite *TransactionRepositoryTestSuite) account(balance string) domain.Account {
	return domain.Account{
		IBAN:         uuid.NewString(),
		Name:         "Bank Account",
		Balance:      domain.NewMoney(decimal.RequireFromString(balance), "LRA"),
		CurrencyCode: "LRA",
		Holder:       domain.IndividualHolder(uuid.NewString()),
		CreatedAt:    time.Now(),
	}
}

func transferBetween(from, to domain.Account, amount string) domain.Transaction {
	return domain.Transaction{
		ID:               uuid.NewString(),
		FromAccountIBAN:  from.IBAN,
		ToAccountIBAN:    to.IBAN,
		Amount:           domain.NewMoney(decimal.RequireFromString(amount), "LRA"),
		Purpose:          "rent",
		AuthorizedByUser: from.Holder.UserID,
		State:            domain.TransactionSuccessful,
		CreatedAt:        time.Now(),
	}
}

// lockedRows builds the result set of the FOR UPDATE select in
// accountColumns order.
func lockedRows(accounts ...domain.Account) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{
		"iban", "name", "balance", "currency_code", "is_frozen",
		"is_default_for_currency", "is_reserve", "equilibrium_threshold",
		"holder_kind", "holder_user_id", "holder_organization_id", "created_at",
	})
	for _, acc := range accounts {
		var userID, orgID any
		if acc.Holder.UserID != "" {
			userID = acc.Holder.UserID
		}
		if acc.Holder.OrganizationID != "" {
			orgID = acc.Holder.OrganizationID
		}
		rows.AddRow(
			acc.IBAN,
			acc.Name,
			acc.Balance.Amount.String(),
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
	}
	return rows
}

func (suite *TransactionRepositoryTestSuite) expectLock(txn domain.Transaction, rows *pgxmock.Rows) {
	suite.mock.ExpectQuery("FOR UPDATE").
		WithArgs([]string{txn.FromAccountIBAN, txn.ToAccountIBAN}).
		WillReturnRows(rows)
}

func (suite *TransactionRepositoryTestSuite) TestCreateTransfer_DebitsAndCreditsAtomically() {
	from := suite.account("500")
	to := suite.account("20")
	txn := transferBetween(from, to, "60")

	suite.mock.ExpectBegin()
	suite.expectLock(txn, lockedRows(from, to))

	var ibans, deltas []any
	batch := suite.mock.ExpectBatch()
	batch.ExpectExec("UPDATE accounts").
		WithArgs(capture{&ibans}, capture{&deltas}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	batch.ExpectExec("UPDATE accounts").
		WithArgs(capture{&ibans}, capture{&deltas}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	suite.mock.ExpectExec("INSERT INTO transactions").
		WithArgs(txn.ID, txn.FromAccountIBAN, txn.ToAccountIBAN, txn.Amount.Amount,
			txn.Amount.CurrencyCode, txn.Purpose, txn.AuthorizedByUser, txn.State, txn.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	suite.Require().NoError(suite.repo.CreateTransfer(context.Background(), txn))

	applied := make(map[string]decimal.Decimal, 2)
	suite.Require().Equal(len(ibans), len(deltas))
	for i := range ibans {
		applied[ibans[i].(string)] = deltas[i].(decimal.Decimal)
	}
	suite.Require().Len(applied, 2)
	suite.True(applied[txn.FromAccountIBAN].Equal(txn.Amount.Amount.Neg()),
		"source delta %s", applied[txn.FromAccountIBAN])
	suite.True(applied[txn.ToAccountIBAN].Equal(txn.Amount.Amount),
		"target delta %s", applied[txn.ToAccountIBAN])
	suite.True(applied[txn.FromAccountIBAN].Add(applied[txn.ToAccountIBAN]).IsZero(),
		"deltas must sum to zero")
	suite.NoError(suite.mock.ExpectationsWereMet())
}

func (suite *TransactionRepositoryTestSuite) TestCreateTransfer_RechecksFundsUnderLock() {
	from := suite.account("50")
	to := suite.account("20")
	txn := transferBetween(from, to, "60")

	suite.mock.ExpectBegin()
	suite.expectLock(txn, lockedRows(from, to))
	suite.mock.ExpectRollback()

	err := suite.repo.CreateTransfer(context.Background(), txn)

	suite.Require().ErrorIs(err, apperrors.ErrConflict)
	suite.ErrorContains(err, "insufficient funds")
	suite.NoError(suite.mock.ExpectationsWereMet())
}

func (suite *TransactionRepositoryTestSuite) TestCreateTransfer_RechecksCurrencyUnderLock() {
	from := suite.account("500")
	to := suite.account("20")
	to.CurrencyCode = "JPY"
	to.Balance = domain.NewMoney(to.Balance.Amount, "JPY")
	txn := transferBetween(from, to, "60")

	suite.mock.ExpectBegin()
	suite.expectLock(txn, lockedRows(from, to))
	suite.mock.ExpectRollback()

	err := suite.repo.CreateTransfer(context.Background(), txn)

	suite.Require().ErrorIs(err, apperrors.ErrConflict)
	suite.ErrorContains(err, "currency changed")
	suite.NoError(suite.mock.ExpectationsWereMet())
}

func (suite *TransactionRepositoryTestSuite) TestCreateTransfer_RechecksFrozenUnderLock() {
	from := suite.account("500")
	to := suite.account("20")
	to.IsFrozen = true
	txn := transferBetween(from, to, "60")

	suite.mock.ExpectBegin()
	suite.expectLock(txn, lockedRows(from, to))
	suite.mock.ExpectRollback()

	err := suite.repo.CreateTransfer(context.Background(), txn)

	suite.Require().ErrorIs(err, apperrors.ErrConflict)
	suite.ErrorContains(err, "account frozen")
	suite.NoError(suite.mock.ExpectationsWereMet())
}

func (suite *TransactionRepositoryTestSuite) TestCreateTransfer_MissingAccountRowIsNotFound() {
	from := suite.account("500")
	to := suite.account("20")
	txn := transferBetween(from, to, "60")

	suite.mock.ExpectBegin()
	suite.expectLock(txn, lockedRows(from))
	suite.mock.ExpectRollback()

	err := suite.repo.CreateTransfer(context.Background(), txn)

	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
	suite.ErrorContains(err, txn.ToAccountIBAN)
	suite.NoError(suite.mock.ExpectationsWereMet())
}

func TestTransactionRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionRepositoryTestSuite))
}
