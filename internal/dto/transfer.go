package dto

import (
	"time"

	"github.com/democraciv/bank_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransferRequest defines the data needed to send money between two accounts.
type TransferRequest struct {
	FromIBAN string          `json:"fromIBAN" binding:"required,uuid"`
	ToIBAN   string          `json:"toIBAN" binding:"required,uuid"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Purpose  string          `json:"purpose" binding:"max=500"`
}

// TransactionResponse defines the data returned for a committed transaction.
type TransactionResponse struct {
	ID           string          `json:"id"`
	FromIBAN     string          `json:"fromIBAN"`
	ToIBAN       string          `json:"toIBAN"`
	Amount       decimal.Decimal `json:"amount"`
	PrettyAmount string          `json:"prettyAmount"`
	CurrencyCode string          `json:"currencyCode"`
	Purpose      string          `json:"purpose"`
	AuthorizedBy string          `json:"authorizedBy"`
	State        string          `json:"state"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// ListTransactionsParams holds pagination parameters for transaction listing.
type ListTransactionsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse is a page of transactions plus the next page token.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to its response DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:           txn.ID,
		FromIBAN:     txn.FromAccountIBAN,
		ToIBAN:       txn.ToAccountIBAN,
		Amount:       txn.Amount.Amount,
		PrettyAmount: txn.Amount.String(),
		CurrencyCode: txn.Amount.CurrencyCode,
		Purpose:      txn.Purpose,
		AuthorizedBy: txn.AuthorizedByUser,
		State:        string(txn.State),
		CreatedAt:    txn.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of transactions.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txns))
	for i := range txns {
		out[i] = ToTransactionResponse(&txns[i])
	}
	return out
}
