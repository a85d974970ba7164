package services

import (
	"context"

	"github.com/democraciv/bank_backend/internal/core/domain"
	"github.com/democraciv/bank_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// AccountSvcFacade defines the account business operations.
type AccountSvcFacade interface {
	// OpenAccount creates an account for the requesting user, or for an
	// organization the user may add accounts to when OrganizationID is set.
	OpenAccount(ctx context.Context, req dto.OpenAccountRequest, requestingUserID string) (*domain.Account, error)

	GetAccount(ctx context.Context, iban string, requestingUserID string) (*domain.Account, error)
	ListAccountsForUser(ctx context.Context, userID string) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, iban string, req dto.UpdateAccountRequest, requestingUserID string) (*domain.Account, error)

	// DeleteAccount removes an account the user may delete. Only accounts
	// with a zero balance can be deleted.
	DeleteAccount(ctx context.Context, iban string, requestingUserID string) error

	SetThreshold(ctx context.Context, iban string, newValue decimal.Decimal) error
	ListThresholdAccounts(ctx context.Context) ([]domain.Account, error)

	// GetDefaultAccount resolves the holder's default account for the
	// currency. Holders without a flagged default have none.
	GetDefaultAccount(ctx context.Context, holder domain.Holder, currencyCode string) (*domain.Account, error)
}
