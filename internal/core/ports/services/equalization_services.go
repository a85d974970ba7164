package services

import (
	"context"

	"github.com/democraciv/bank_backend/internal/dto"
)

// EqualizationSvcFacade runs the periodic balance equalization.
type EqualizationSvcFacade interface {
	// Run applies the equalization formula to every account in the taxed
	// currency: balances above the account's threshold are taxed into the
	// treasury, balances below it are topped up from it. With dryRun set,
	// the report is computed without moving any money. requestingUserID is
	// recorded as the authorizer of the resulting transfers and owns the
	// treasury organization if it has to be provisioned.
	Run(ctx context.Context, dryRun bool, requestingUserID string) (*dto.EqualizationReport, error)
}
