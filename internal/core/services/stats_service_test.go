package services_test

import (
	"context"
	"testing"

	"github.com/democraciv/bank_backend/internal/core/domain"
	portssvc "github.com/democraciv/bank_backend/internal/core/ports/services"
	"github.com/democraciv/bank_backend/internal/core/services"
	"github.com/democraciv/bank_backend/internal/platform/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type StatsServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockTxnRepo     *MockTransactionRepository
	mockOrgRepo     *MockOrganizationRepository
	service         portssvc.StatsSvcFacade
}

func (suite *StatsServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockOrgRepo = new(MockOrganizationRepository)
	cfg := &config.Config{ReserveOrgID: "BANK"}
	suite.service = services.NewStatsService(suite.mockAccountRepo, suite.mockTxnRepo, suite.mockOrgRepo, cfg)
}

func (suite *StatsServiceTestSuite) TestListCurrencies_SortedWithCirculation() {
	ctx := context.Background()

	suite.mockAccountRepo.On("SumBalances", ctx, mock.Anything, "BANK").
		Return(decimal.NewFromInt(1000), nil)

	currencies, err := suite.service.ListCurrencies(ctx)

	suite.Require().NoError(err)
	suite.Require().Len(currencies, len(domain.Currencies()))
	for i := 1; i < len(currencies); i++ {
		suite.Less(currencies[i-1].Code, currencies[i].Code)
	}
	suite.True(currencies[0].Circulation.Equal(decimal.NewFromInt(1000)))
}

func (suite *StatsServiceTestSuite) TestStatistics_AggregatesPerCurrency() {
	ctx := context.Background()

	suite.mockAccountRepo.On("CountAccounts", ctx).Return(int64(12), nil).Once()
	suite.mockTxnRepo.On("CountTransactions", ctx).Return(int64(40), nil).Once()

	suite.mockTxnRepo.On("CountTransactionsByCurrency", ctx, mock.Anything).Return(int64(10), nil)
	suite.mockAccountRepo.On("CountAccountsByCurrency", ctx, mock.Anything).Return(int64(4), nil)
	suite.mockAccountRepo.On("SumBalances", ctx, mock.Anything, "BANK").
		Return(decimal.NewFromInt(500), nil)
	suite.mockTxnRepo.On("SumOutgoingSince", ctx, mock.Anything, mock.Anything).
		Return(decimal.NewFromInt(250), nil)

	suite.mockOrgRepo.On("CountOrganizationsByNation", ctx).
		Return(map[domain.Nation]int64{domain.NationJapan: 3}, nil).Once()

	stats, err := suite.service.Statistics(ctx)

	suite.Require().NoError(err)
	suite.Equal(int64(12), stats.TotalBankAccounts)
	suite.Equal(int64(40), stats.TotalTransactions)
	suite.Equal(int64(3), stats.Organizations["JP"])

	jpy, ok := stats.Currencies["JPY"]
	suite.Require().True(ok)
	suite.Equal(int64(10), jpy.Transactions)
	suite.Equal(int64(4), jpy.BankAccounts)
	suite.True(jpy.Velocity.Equal(decimal.RequireFromString("0.5")))
}

func (suite *StatsServiceTestSuite) TestStatistics_ZeroCirculationZeroVelocity() {
	ctx := context.Background()

	suite.mockAccountRepo.On("CountAccounts", ctx).Return(int64(0), nil).Once()
	suite.mockTxnRepo.On("CountTransactions", ctx).Return(int64(0), nil).Once()
	suite.mockTxnRepo.On("CountTransactionsByCurrency", ctx, mock.Anything).Return(int64(0), nil)
	suite.mockAccountRepo.On("CountAccountsByCurrency", ctx, mock.Anything).Return(int64(0), nil)
	suite.mockAccountRepo.On("SumBalances", ctx, mock.Anything, "BANK").Return(decimal.Zero, nil)
	suite.mockOrgRepo.On("CountOrganizationsByNation", ctx).
		Return(map[domain.Nation]int64{}, nil).Once()

	stats, err := suite.service.Statistics(ctx)

	suite.Require().NoError(err)
	for code, cs := range stats.Currencies {
		suite.True(cs.Velocity.IsZero(), "velocity for %s should be zero", code)
	}
	// The sent sum is never queried when nothing circulates.
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SumOutgoingSince", mock.Anything, mock.Anything, mock.Anything)
}

func TestStatsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StatsServiceTestSuite))
}
