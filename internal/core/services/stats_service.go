package services

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/democraciv/bank_backend/internal/core/domain"
	portsrepo "github.com/democraciv/bank_backend/internal/core/ports/repositories"
	portssvc "github.com/democraciv/bank_backend/internal/core/ports/services"
	"github.com/democraciv/bank_backend/internal/dto"
	"github.com/democraciv/bank_backend/internal/platform/config"
)

// velocityWindow is the trailing window over which the velocity of money is
// computed.
const velocityWindow = 7 * 24 * time.Hour

// statsService aggregates the public and administrative bank figures.
type statsService struct {
	BaseService
	accountRepo     portsrepo.AccountRepositoryFacade
	transactionRepo portsrepo.TransactionRepositoryFacade
	orgRepo         portsrepo.OrganizationRepositoryFacade
	cfg             *config.Config
}

// NewStatsService creates a new StatsService.
func NewStatsService(accountRepo portsrepo.AccountRepositoryFacade, transactionRepo portsrepo.TransactionRepositoryFacade, orgRepo portsrepo.OrganizationRepositoryFacade, cfg *config.Config) portssvc.StatsSvcFacade {
	return &statsService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		orgRepo:         orgRepo,
		cfg:             cfg,
	}
}

var _ portssvc.StatsSvcFacade = (*statsService)(nil)

func (s *statsService) ListCurrencies(ctx context.Context) ([]dto.CurrencyInfo, error) {
	currencies := domain.Currencies()
	sort.Slice(currencies, func(i, j int) bool { return currencies[i].CurrencyCode < currencies[j].CurrencyCode })

	result := make([]dto.CurrencyInfo, 0, len(currencies))
	for _, c := range currencies {
		circulation, err := s.accountRepo.SumBalances(ctx, c.CurrencyCode, s.cfg.ReserveOrgID)
		if err != nil {
			return nil, err
		}
		result = append(result, dto.CurrencyInfo{
			Code:        c.CurrencyCode,
			Name:        c.Name,
			Sign:        dto.CurrencySign{Prefix: c.Prefix, Suffix: c.Suffix},
			Circulation: circulation,
		})
	}
	return result, nil
}

func (s *statsService) Statistics(ctx context.Context) (*dto.BankStatistics, error) {
	totalAccounts, err := s.accountRepo.CountAccounts(ctx)
	if err != nil {
		return nil, err
	}
	totalTransactions, err := s.transactionRepo.CountTransactions(ctx)
	if err != nil {
		return nil, err
	}

	stats := &dto.BankStatistics{
		TotalBankAccounts: totalAccounts,
		TotalTransactions: totalTransactions,
		Currencies:        make(map[string]dto.CurrencyStatistics),
		Organizations:     make(map[string]int64),
	}

	for _, c := range domain.Currencies() {
		transactions, err := s.transactionRepo.CountTransactionsByCurrency(ctx, c.CurrencyCode)
		if err != nil {
			return nil, err
		}
		accounts, err := s.accountRepo.CountAccountsByCurrency(ctx, c.CurrencyCode)
		if err != nil {
			return nil, err
		}
		velocity, err := s.velocity(ctx, c.CurrencyCode)
		if err != nil {
			return nil, err
		}
		stats.Currencies[c.CurrencyCode] = dto.CurrencyStatistics{
			Transactions: transactions,
			BankAccounts: accounts,
			Velocity:     velocity,
		}
	}

	byNation, err := s.orgRepo.CountOrganizationsByNation(ctx)
	if err != nil {
		return nil, err
	}
	for nation, count := range byNation {
		stats.Organizations[string(nation)] = count
	}

	return stats, nil
}

// velocity is the amount sent in the trailing window divided by the money in
// circulation. Zero circulation yields zero velocity.
func (s *statsService) velocity(ctx context.Context, currencyCode string) (decimal.Decimal, error) {
	total, err := s.accountRepo.SumBalances(ctx, currencyCode, s.cfg.ReserveOrgID)
	if err != nil {
		return decimal.Zero, err
	}
	if total.IsZero() {
		return decimal.Zero, nil
	}

	sent, err := s.transactionRepo.SumOutgoingSince(ctx, currencyCode, time.Now().Add(-velocityWindow))
	if err != nil {
		return decimal.Zero, err
	}
	return sent.Div(total), nil
}
