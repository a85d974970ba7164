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
	ErrAmountTooSmall    = errors.New("the amount to send must be at least 0.01")
	ErrSameAccount       = errors.New("you cannot send money to the same bank account you're sending from")
	ErrDifferentCurrency = errors.New("you cannot send money to a bank account that has a different currency")
	ErrInsufficientFunds = errors.New("you have insufficient funds in your bank account")
	ErrTargetFrozen      = errors.New("the bank account to send money to is frozen")
	ErrSourceFrozen      = errors.New("your bank account is frozen")
)

// minTransferAmount is the ledger's minor unit.
var minTransferAmount = decimal.RequireFromString("0.01")

// transferRetries bounds how often a transfer is revalidated and reattempted
// after losing a balance race.
const transferRetries = 3

const (
	defaultTransactionPageSize = 50
	maxTransactionPageSize     = 100
)

// transactionService provides the money movement operations.
type transactionService struct {
	BaseService
	transactionRepo portsrepo.TransactionRepositoryFacade
	accountRepo     portsrepo.AccountRepositoryFacade
	orgRepo         portsrepo.OrganizationRepositoryFacade
	userRepo        portsrepo.UserRepositoryFacade
	permissionSvc   portssvc.PermissionSvcFacade
	notifier        portssvc.Notifier
	cfg             *config.Config
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(
	transactionRepo portsrepo.TransactionRepositoryFacade,
	accountRepo portsrepo.AccountRepositoryFacade,
	orgRepo portsrepo.OrganizationRepositoryFacade,
	userRepo portsrepo.UserRepositoryFacade,
	permissionSvc portssvc.PermissionSvcFacade,
	notifier portssvc.Notifier,
	cfg *config.Config,
) portssvc.TransactionSvcFacade {
	return &transactionService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
		orgRepo:         orgRepo,
		userRepo:        userRepo,
		permissionSvc:   permissionSvc,
		notifier:        notifier,
		cfg:             cfg,
	}
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

func (s *transactionService) Transfer(ctx context.Context, req dto.TransferRequest, requestingUserID string) (*domain.Transaction, error) {
	allowed, err := s.permissionSvc.HasPermission(ctx, requestingUserID, domain.ActionChangeAccount, domain.ObjectAccount, req.FromIBAN)
	if err != nil {
		return nil, fmt.Errorf("failed to check account permission: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNoAccountAccess)
	}

	return s.Execute(ctx, portssvc.ExecuteTransferParams{
		FromIBAN:     req.FromIBAN,
		ToIBAN:       req.ToIBAN,
		Amount:       domain.Money{Amount: req.Amount},
		Purpose:      req.Purpose,
		AuthorizedBy: requestingUserID,
		Notify:       true,
	})
}

// Execute validates and commits a transfer. The balance and frozen checks are
// repeated inside the database transaction under row locks; when that re-check
// fails the attempt surfaces as a conflict and the whole validation runs again
// against fresh balances, a bounded number of times.
func (s *transactionService) Execute(ctx context.Context, params portssvc.ExecuteTransferParams) (*domain.Transaction, error) {
	var txn *domain.Transaction
	var err error

	for attempt := 0; attempt < transferRetries; attempt++ {
		txn, err = s.attempt(ctx, params)
		if err == nil {
			break
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		s.LogDebug(ctx, "transfer lost a balance race, retrying",
			slog.String("from", params.FromIBAN),
			slog.Int("attempt", attempt+1))
	}
	if err != nil {
		return nil, err
	}

	if params.Notify {
		s.notifyRecipient(ctx, txn)
	}

	s.LogInfo(ctx, "transfer committed",
		slog.String("transaction_id", txn.ID),
		slog.String("from", txn.FromAccountIBAN),
		slog.String("to", txn.ToAccountIBAN),
		slog.String("amount", txn.Amount.String()))
	return txn, nil
}

func (s *transactionService) attempt(ctx context.Context, params portssvc.ExecuteTransferParams) (*domain.Transaction, error) {
	if params.Amount.Amount.LessThan(minTransferAmount) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrAmountTooSmall)
	}
	if params.FromIBAN == params.ToIBAN {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrSameAccount)
	}

	accounts, err := s.accountRepo.FindAccountsByIBANs(ctx, []string{params.FromIBAN, params.ToIBAN})
	if err != nil {
		return nil, err
	}
	var from, to *domain.Account
	for i := range accounts {
		switch accounts[i].IBAN {
		case params.FromIBAN:
			from = &accounts[i]
		case params.ToIBAN:
			to = &accounts[i]
		}
	}
	if from == nil || to == nil {
		return nil, fmt.Errorf("%w: there's no bank account with that IBAN", apperrors.ErrNotFound)
	}

	if from.CurrencyCode != to.CurrencyCode {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrDifferentCurrency)
	}
	// The amount inherits the source account's currency.
	amount := domain.NewMoney(params.Amount.Amount, from.CurrencyCode)

	if amount.Amount.GreaterThan(from.Balance.Amount) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrInsufficientFunds)
	}
	if to.IsFrozen {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrTargetFrozen)
	}
	if from.IsFrozen {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrSourceFrozen)
	}

	txn := domain.Transaction{
		ID:               uuid.NewString(),
		FromAccountIBAN:  from.IBAN,
		ToAccountIBAN:    to.IBAN,
		Amount:           amount,
		Purpose:          params.Purpose,
		AuthorizedByUser: params.AuthorizedBy,
		State:            domain.TransactionSuccessful,
		CreatedAt:        time.Now(),
	}
	if err := s.transactionRepo.CreateTransfer(ctx, txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

func (s *transactionService) GetTransaction(ctx context.Context, transactionID string, requestingUserID string) (*domain.Transaction, error) {
	txn, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	for _, iban := range []string{txn.FromAccountIBAN, txn.ToAccountIBAN} {
		allowed, err := s.permissionSvc.HasPermission(ctx, requestingUserID, domain.ActionViewAccount, domain.ObjectAccount, iban)
		if err != nil {
			return nil, fmt.Errorf("failed to check account permission: %w", err)
		}
		if allowed {
			return txn, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNoAccountAccess)
}

func (s *transactionService) ListAccountTransactions(ctx context.Context, iban string, requestingUserID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	allowed, err := s.permissionSvc.HasPermission(ctx, requestingUserID, domain.ActionViewAccount, domain.ObjectAccount, iban)
	if err != nil {
		return nil, fmt.Errorf("failed to check account permission: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNoAccountAccess)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultTransactionPageSize
	}
	if limit > maxTransactionPageSize {
		limit = maxTransactionPageSize
	}

	txns, nextToken, err := s.transactionRepo.ListTransactionsByAccount(ctx, iban, limit, params.NextToken)
	if err != nil {
		return nil, err
	}
	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}

// notifyRecipient sends the "you received money" direct message to everyone
// who can see the target account's holder side.
func (s *transactionService) notifyRecipient(ctx context.Context, txn *domain.Transaction) {
	to, err := s.accountRepo.FindAccountByIBAN(ctx, txn.ToAccountIBAN)
	if err != nil {
		s.LogError(ctx, err, "failed to load recipient account for notification", slog.String("iban", txn.ToAccountIBAN))
		return
	}

	targets, holderName := holderNotifyTargets(ctx, s.userRepo, s.orgRepo, to)
	if len(targets) == 0 {
		return
	}

	from, err := s.accountRepo.FindAccountByIBAN(ctx, txn.FromAccountIBAN)
	if err != nil {
		s.LogError(ctx, err, "failed to load sender account for notification", slog.String("iban", txn.FromAccountIBAN))
		return
	}
	fromHolderName := holderDisplayName(ctx, s.userRepo, s.orgRepo, from)

	description := "You have just received a transaction!"
	toValue := to.Name
	if to.Holder.Kind == domain.HolderOrganization {
		description = "An organization you're part of has just received a transaction!"
		toValue = fmt.Sprintf("**%s** - %s", holderName, to.Name)
	}

	s.notifier.Enqueue(portssvc.Notification{
		Targets:     targets,
		Title:       "New Transaction",
		Description: description,
		URL:         fmt.Sprintf("%s/transactions/%s", s.cfg.BaseURL, txn.ID),
		Fields: []portssvc.NotificationField{
			{Name: "From", Value: fromHolderName, Inline: true},
			{Name: "To", Value: toValue, Inline: true},
			{Name: "Amount", Value: txn.Amount.String(), Inline: true},
			{Name: "Purpose", Value: txn.Purpose},
		},
	})
}
