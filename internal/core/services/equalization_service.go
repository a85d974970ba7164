package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/democraciv/bank_backend/internal/apperrors"
	"github.com/democraciv/bank_backend/internal/core/domain"
	portsrepo "github.com/democraciv/bank_backend/internal/core/ports/repositories"
	portssvc "github.com/democraciv/bank_backend/internal/core/ports/services"
	"github.com/democraciv/bank_backend/internal/dto"
	"github.com/democraciv/bank_backend/internal/platform/config"
)

const treasuryOrgName = "Automated Payments - Bank of Arabia"

var ten = decimal.NewFromInt(10)

// ComputeTax returns the signed equalization tax for a balance against its
// equilibrium threshold. The half-distance to the threshold is taken and the
// resulting balance is rounded to the nearest ten away from the threshold,
// so repeated application converges without oscillating. A negative tax means
// the account is owed money by the treasury.
func ComputeTax(balance, threshold decimal.Decimal) decimal.Decimal {
	tax := balance.Sub(threshold).Div(decimal.NewFromInt(2))
	preRound := balance.Sub(tax)

	var rounded decimal.Decimal
	if preRound.GreaterThan(threshold) {
		rounded = preRound.Div(ten).Floor().Mul(ten)
	} else {
		rounded = preRound.Div(ten).Ceil().Mul(ten)
	}
	return balance.Sub(rounded)
}

// equalizationService applies the periodic balance equalization.
type equalizationService struct {
	BaseService
	accountRepo    portsrepo.AccountRepositoryFacade
	orgRepo        portsrepo.OrganizationRepositoryFacade
	userRepo       portsrepo.UserRepositoryFacade
	transactionSvc portssvc.TransactionSvcFacade
	notifier       portssvc.Notifier
	cfg            *config.Config
}

// NewEqualizationService creates a new EqualizationService.
func NewEqualizationService(
	accountRepo portsrepo.AccountRepositoryFacade,
	orgRepo portsrepo.OrganizationRepositoryFacade,
	userRepo portsrepo.UserRepositoryFacade,
	transactionSvc portssvc.TransactionSvcFacade,
	notifier portssvc.Notifier,
	cfg *config.Config,
) portssvc.EqualizationSvcFacade {
	return &equalizationService{
		accountRepo:    accountRepo,
		orgRepo:        orgRepo,
		userRepo:       userRepo,
		transactionSvc: transactionSvc,
		notifier:       notifier,
		cfg:            cfg,
	}
}

var _ portssvc.EqualizationSvcFacade = (*equalizationService)(nil)

func (s *equalizationService) Run(ctx context.Context, dryRun bool, requestingUserID string) (*dto.EqualizationReport, error) {
	accounts, err := s.accountRepo.ListAccountsByCurrency(ctx, s.cfg.TaxedCurrency, s.cfg.TreasuryOrgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list taxed accounts: %w", err)
	}

	report := &dto.EqualizationReport{
		DryRun:       dryRun,
		CurrencyCode: s.cfg.TaxedCurrency,
		Results:      make([]dto.EqualizationResult, 0, len(accounts)),
	}

	var treasury *domain.Account
	if !dryRun {
		treasury, err = s.ensureTreasury(ctx, requestingUserID)
		if err != nil {
			return nil, fmt.Errorf("failed to provision treasury: %w", err)
		}
	}

	for i := range accounts {
		account := &accounts[i]
		oldBalance := account.Balance.Amount
		threshold := account.Threshold()
		tax := ComputeTax(oldBalance, threshold)

		result := dto.EqualizationResult{
			IBAN:       account.IBAN,
			OldBalance: oldBalance,
			NewBalance: oldBalance.Sub(tax),
			Threshold:  threshold,
			Tax:        tax,
		}

		if !dryRun && !tax.IsZero() {
			if err := s.apply(ctx, account, treasury, tax, threshold, requestingUserID); err != nil {
				s.LogError(ctx, err, "equalization transfer failed", slog.String("iban", account.IBAN))
				result.NewBalance = oldBalance
				result.Error = err.Error()
			}
		}

		report.Results = append(report.Results, result)
	}

	s.LogInfo(ctx, "equalization run completed",
		slog.Bool("dry_run", dryRun),
		slog.Int("accounts", len(report.Results)))
	return report, nil
}

// apply moves the tax for one account. Positive tax is collected into the
// treasury and announced to the holder; negative tax is paid out of the
// treasury, where the ordinary received-money notification suffices.
func (s *equalizationService) apply(ctx context.Context, account, treasury *domain.Account, tax, threshold decimal.Decimal, requestingUserID string) error {
	purpose := fmt.Sprintf("Automated Tax by the Ottoman Government.\nYour personal equilibrium balance is: %s", threshold.String())
	amount := domain.NewMoney(tax.Abs(), s.cfg.TaxedCurrency)

	if tax.IsNegative() {
		_, err := s.transactionSvc.Execute(ctx, portssvc.ExecuteTransferParams{
			FromIBAN:     treasury.IBAN,
			ToIBAN:       account.IBAN,
			Amount:       amount,
			Purpose:      purpose,
			AuthorizedBy: requestingUserID,
			Notify:       true,
		})
		return err
	}

	_, err := s.transactionSvc.Execute(ctx, portssvc.ExecuteTransferParams{
		FromIBAN:     account.IBAN,
		ToIBAN:       treasury.IBAN,
		Amount:       amount,
		Purpose:      purpose,
		AuthorizedBy: requestingUserID,
		Notify:       false,
	})
	if err != nil {
		return err
	}

	s.notifyTaxed(ctx, account, amount, threshold)
	return nil
}

func (s *equalizationService) notifyTaxed(ctx context.Context, account *domain.Account, amount domain.Money, threshold decimal.Decimal) {
	targets, holderName := holderNotifyTargets(ctx, s.userRepo, s.orgRepo, account)
	if len(targets) == 0 {
		return
	}

	accountValue := account.Name
	if account.Holder.Kind == domain.HolderOrganization {
		accountValue = fmt.Sprintf("**%s** - %s", holderName, account.Name)
	}

	s.notifier.Enqueue(portssvc.Notification{
		Targets: targets,
		Title:   "Tax by the Ottoman Government Applied",
		Description: fmt.Sprintf("As your bank account's balance exceeded your personal equilibrium balance (%s), "+
			"the amount of Lira specified below was automatically deducted from your bank account and sent back "+
			"to the Ottoman Government as a tax.", threshold.String()),
		URL: fmt.Sprintf("%s/accounts/%s", s.cfg.BaseURL, account.IBAN),
		Fields: []portssvc.NotificationField{
			{Name: "Bank Account", Value: accountValue},
			{Name: "Amount", Value: amount.String()},
		},
	})
}

// ensureTreasury finds or creates the treasury organization and its payout
// account. The account starts with a large working balance so payouts do not
// immediately drain it.
func (s *equalizationService) ensureTreasury(ctx context.Context, ownerUserID string) (*domain.Account, error) {
	org, err := s.orgRepo.FindOrganizationByID(ctx, s.cfg.TreasuryOrgID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		org = &domain.Organization{
			ID:               s.cfg.TreasuryOrgID,
			Name:             treasuryOrgName,
			OwnerUserID:      ownerUserID,
			IsPublicViewable: false,
			CreatedAt:        time.Now(),
		}
		grants := organizationOwnerGrants(ownerUserID, org.ID)
		if err := s.orgRepo.SaveOrganization(ctx, *org, grants); err != nil {
			return nil, err
		}
		s.LogInfo(ctx, "treasury organization created", slog.String("organization_id", org.ID))
	}

	holder := domain.OrganizationHolder(org.ID)
	accounts, err := s.accountRepo.ListAccountsByHolder(ctx, holder)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].Name == s.cfg.TreasuryAccountName && accounts[i].CurrencyCode == s.cfg.TaxedCurrency {
			return &accounts[i], nil
		}
	}

	account := domain.Account{
		IBAN:         uuid.NewString(),
		Name:         s.cfg.TreasuryAccountName,
		Balance:      domain.NewMoney(s.cfg.TreasuryInitialBalance, s.cfg.TaxedCurrency),
		CurrencyCode: s.cfg.TaxedCurrency,
		Holder:       holder,
		CreatedAt:    time.Now(),
	}
	grants := accountGrants(account.IBAN, org.OwnerUserID, nil)
	if err := s.accountRepo.SaveAccount(ctx, account, grants); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "treasury account created", slog.String("iban", account.IBAN))
	return &account, nil
}
