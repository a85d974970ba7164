package services

import (
	"context"

	"github.com/democraciv/bank_backend/internal/core/domain"
	"github.com/democraciv/bank_backend/internal/dto"
)

// ExecuteTransferParams carries a transfer initiated by the system itself,
// bypassing per-user permission checks.
type ExecuteTransferParams struct {
	FromIBAN     string
	ToIBAN       string
	Amount       domain.Money
	Purpose      string
	AuthorizedBy string
	// Notify controls whether a direct message is sent to the credited
	// account's holder after the transfer commits.
	Notify bool
}

// TransactionSvcFacade defines the transfer business operations.
type TransactionSvcFacade interface {
	// Transfer moves money between two accounts on behalf of a user. The
	// user must be allowed to change the source account.
	Transfer(ctx context.Context, req dto.TransferRequest, requestingUserID string) (*domain.Transaction, error)

	// Execute performs a system transfer, such as an equalization debit.
	Execute(ctx context.Context, params ExecuteTransferParams) (*domain.Transaction, error)

	GetTransaction(ctx context.Context, transactionID string, requestingUserID string) (*domain.Transaction, error)
	ListAccountTransactions(ctx context.Context, iban string, requestingUserID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}
