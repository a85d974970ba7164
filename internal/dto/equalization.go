package dto

import "github.com/shopspring/decimal"

// EqualizationResult is the projected or applied outcome for one account in
// an equalization run. Tax > 0 means money flowed account -> treasury,
// Tax < 0 means treasury -> account. Error is set when the account's transfer
// failed in live mode; other accounts in the run are unaffected.
type EqualizationResult struct {
	IBAN       string          `json:"iban"`
	OldBalance decimal.Decimal `json:"old"`
	NewBalance decimal.Decimal `json:"new"`
	Threshold  decimal.Decimal `json:"equilibriumThreshold"`
	Tax        decimal.Decimal `json:"tax"`
	Error      string          `json:"error,omitempty"`
}

// EqualizationReport is the outcome of one equalization run.
type EqualizationReport struct {
	DryRun       bool                 `json:"dryRun"`
	CurrencyCode string               `json:"currencyCode"`
	Results      []EqualizationResult `json:"results"`
}
