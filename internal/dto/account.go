package dto

import (
	"time"

	"github.com/democraciv/bank_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// OpenAccountRequest defines the data needed to open a new bank account.
// OrganizationID is set for organization-held accounts; when empty the
// account is held by the acting user.
type OpenAccountRequest struct {
	Name           string `json:"name" binding:"max=100"`
	CurrencyCode   string `json:"currencyCode" binding:"required"`
	OrganizationID string `json:"organizationID"`
	// Defaults to true when omitted, matching how most holders use one
	// account per currency.
	IsDefaultForCurrency *bool `json:"isDefaultForCurrency"`
}

// UpdateAccountRequest defines the fields a holder may change.
// Pointers distinguish zero-value updates from fields not provided.
type UpdateAccountRequest struct {
	Name                 *string `json:"name"`
	IsDefaultForCurrency *bool   `json:"isDefaultForCurrency"`
}

// SetThresholdRequest sets an account's personal equilibrium threshold.
type SetThresholdRequest struct {
	IBAN     string          `json:"iban" binding:"required,uuid"`
	NewValue decimal.Decimal `json:"new" binding:"required"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	IBAN                 string           `json:"iban"`
	Name                 string           `json:"name"`
	Balance              decimal.Decimal  `json:"balance"`
	PrettyBalance        string           `json:"prettyBalance"`
	CurrencyCode         string           `json:"currencyCode"`
	IsFrozen             bool             `json:"isFrozen"`
	IsDefaultForCurrency bool             `json:"isDefaultForCurrency"`
	EquilibriumThreshold *decimal.Decimal `json:"equilibriumThreshold,omitempty"`
	Holder               domain.Holder    `json:"holder"`
	CreatedAt            time.Time        `json:"createdAt"`
}

// ToAccountResponse converts a domain.Account to its response DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		IBAN:                 acc.IBAN,
		Name:                 acc.Name,
		Balance:              acc.Balance.Amount,
		PrettyBalance:        acc.Balance.String(),
		CurrencyCode:         acc.CurrencyCode,
		IsFrozen:             acc.IsFrozen,
		IsDefaultForCurrency: acc.IsDefaultForCurrency,
		EquilibriumThreshold: acc.EquilibriumThreshold,
		Holder:               acc.Holder,
		CreatedAt:            acc.CreatedAt,
	}
}

// ToAccountResponses converts a slice of accounts.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	out := make([]AccountResponse, len(accounts))
	for i := range accounts {
		out[i] = ToAccountResponse(&accounts[i])
	}
	return out
}
