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

var (
	ErrNoAccountAccess = errors.New("you don't have access to that bank account")
	ErrAccountNotEmpty = errors.New("the bank account balance must be zero before it can be deleted")
)

const defaultAccountName = "Bank Account"

// accountService provides core account operations.
type accountService struct {
	BaseService
	accountRepo   portsrepo.AccountRepositoryFacade
	orgRepo       portsrepo.OrganizationRepositoryFacade
	permissionSvc portssvc.PermissionSvcFacade
	cfg           *config.Config
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, orgRepo portsrepo.OrganizationRepositoryFacade, permissionSvc portssvc.PermissionSvcFacade, cfg *config.Config) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo:   accountRepo,
		orgRepo:       orgRepo,
		permissionSvc: permissionSvc,
		cfg:           cfg,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) OpenAccount(ctx context.Context, req dto.OpenAccountRequest, requestingUserID string) (*domain.Account, error) {
	if !domain.IsValidCurrency(req.CurrencyCode) {
		return nil, fmt.Errorf("%w: unknown currency %q", apperrors.ErrValidation, req.CurrencyCode)
	}

	name := req.Name
	if name == "" {
		name = defaultAccountName
	}

	isDefault := true
	if req.IsDefaultForCurrency != nil {
		isDefault = *req.IsDefaultForCurrency
	}

	iban := uuid.NewString()

	var holder domain.Holder
	var grants []domain.Grant

	if req.OrganizationID != "" {
		allowed, err := s.permissionSvc.HasPermission(ctx, requestingUserID, domain.ActionAddOrgAccount, domain.ObjectOrganization, req.OrganizationID)
		if err != nil {
			return nil, fmt.Errorf("failed to check organization permission: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNoAccountAccess)
		}

		org, err := s.orgRepo.FindOrganizationByID(ctx, req.OrganizationID)
		if err != nil {
			return nil, fmt.Errorf("failed to find organization %s: %w", req.OrganizationID, err)
		}
		employees, err := s.orgRepo.ListEmployeesByOrganization(ctx, org.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list employees of %s: %w", org.ID, err)
		}
		employeeIDs := make([]string, 0, len(employees))
		for _, emp := range employees {
			employeeIDs = append(employeeIDs, emp.UserID)
		}

		holder = domain.OrganizationHolder(org.ID)
		grants = accountGrants(iban, org.OwnerUserID, employeeIDs)
	} else {
		holder = domain.IndividualHolder(requestingUserID)
		grants = accountGrants(iban, requestingUserID, nil)
	}

	account := domain.Account{
		IBAN:                 iban,
		Name:                 name,
		Balance:              domain.ZeroMoney(req.CurrencyCode),
		CurrencyCode:         req.CurrencyCode,
		IsDefaultForCurrency: isDefault,
		Holder:               holder,
		CreatedAt:            time.Now(),
	}
	if req.CurrencyCode == s.cfg.TaxedCurrency {
		zero := decimal.Zero
		account.EquilibriumThreshold = &zero
	}

	if err := s.accountRepo.SaveAccount(ctx, account, grants); err != nil {
		s.LogError(ctx, err, "failed to save account", slog.String("iban", iban))
		return nil, fmt.Errorf("failed to open account: %w", err)
	}

	s.LogInfo(ctx, "account opened", slog.String("iban", iban), slog.String("currency", req.CurrencyCode))
	return &account, nil
}

func (s *accountService) GetAccount(ctx context.Context, iban string, requestingUserID string) (*domain.Account, error) {
	allowed, err := s.permissionSvc.HasPermission(ctx, requestingUserID, domain.ActionViewAccount, domain.ObjectAccount, iban)
	if err != nil {
		return nil, fmt.Errorf("failed to check account permission: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNoAccountAccess)
	}
	return s.accountRepo.FindAccountByIBAN(ctx, iban)
}

func (s *accountService) ListAccountsForUser(ctx context.Context, userID string) ([]domain.Account, error) {
	ibans, err := s.permissionSvc.ListAccountIBANsForUser(ctx, userID, domain.ActionViewAccount)
	if err != nil {
		return nil, fmt.Errorf("failed to list viewable accounts: %w", err)
	}
	if len(ibans) == 0 {
		return []domain.Account{}, nil
	}
	return s.accountRepo.FindAccountsByIBANs(ctx, ibans)
}

func (s *accountService) UpdateAccount(ctx context.Context, iban string, req dto.UpdateAccountRequest, requestingUserID string) (*domain.Account, error) {
	allowed, err := s.permissionSvc.HasPermission(ctx, requestingUserID, domain.ActionChangeAccount, domain.ObjectAccount, iban)
	if err != nil {
		return nil, fmt.Errorf("failed to check account permission: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNoAccountAccess)
	}

	account, err := s.accountRepo.FindAccountByIBAN(ctx, iban)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.IsDefaultForCurrency != nil {
		account.IsDefaultForCurrency = *req.IsDefaultForCurrency
	}

	if err := s.accountRepo.UpdateAccountDetails(ctx, *account); err != nil {
		s.LogError(ctx, err, "failed to update account", slog.String("iban", iban))
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

func (s *accountService) DeleteAccount(ctx context.Context, iban string, requestingUserID string) error {
	allowed, err := s.permissionSvc.HasPermission(ctx, requestingUserID, domain.ActionDeleteAccount, domain.ObjectAccount, iban)
	if err != nil {
		return fmt.Errorf("failed to check account permission: %w", err)
	}
	if !allowed {
		return fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNoAccountAccess)
	}

	account, err := s.accountRepo.FindAccountByIBAN(ctx, iban)
	if err != nil {
		return err
	}
	if account.IsDeletedSentinel() {
		return fmt.Errorf("%w: the deleted-account sentinel cannot be removed", apperrors.ErrValidation)
	}
	if !account.Balance.IsZero() {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrAccountNotEmpty)
	}

	if err := s.accountRepo.DeleteAccount(ctx, iban); err != nil {
		s.LogError(ctx, err, "failed to delete account", slog.String("iban", iban))
		return fmt.Errorf("failed to delete account: %w", err)
	}

	s.LogInfo(ctx, "account deleted", slog.String("iban", iban))
	return nil
}

func (s *accountService) SetThreshold(ctx context.Context, iban string, newValue decimal.Decimal) error {
	account, err := s.accountRepo.FindAccountByIBAN(ctx, iban)
	if err != nil {
		return err
	}
	if account.CurrencyCode != s.cfg.TaxedCurrency {
		return fmt.Errorf("%w: thresholds only apply to %s accounts", apperrors.ErrValidation, s.cfg.TaxedCurrency)
	}
	return s.accountRepo.UpdateThreshold(ctx, iban, newValue)
}

func (s *accountService) ListThresholdAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.accountRepo.ListAccountsByCurrency(ctx, s.cfg.TaxedCurrency, s.cfg.TreasuryOrgID)
}

func (s *accountService) GetDefaultAccount(ctx context.Context, holder domain.Holder, currencyCode string) (*domain.Account, error) {
	if err := holder.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}
	account, err := s.accountRepo.FindDefaultAccount(ctx, holder, currencyCode)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: no default account for currency", apperrors.ErrNotFound)
	}
	return account, nil
}
