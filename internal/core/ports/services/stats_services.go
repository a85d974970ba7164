package services

import (
	"context"

	"github.com/democraciv/bank_backend/internal/dto"
)

// StatsSvcFacade exposes aggregate figures about the bank.
type StatsSvcFacade interface {
	// ListCurrencies returns every supported currency with its circulation.
	ListCurrencies(ctx context.Context) ([]dto.CurrencyInfo, error)

	// Statistics returns per-currency transaction counts, account counts and
	// the velocity of money over the trailing seven days.
	Statistics(ctx context.Context) (*dto.BankStatistics, error)
}
