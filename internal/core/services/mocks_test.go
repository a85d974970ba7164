package services_test

import (
	"context"
	"time"

	"github.com/democraciv/bank_backend/internal/core/domain"
	portssvc "github.com/democraciv/bank_backend/internal/core/ports/services"
	"github.com/democraciv/bank_backend/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, acc domain.Account, grants []domain.Grant) error {
	args := m.Called(ctx, acc, grants)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByIBAN(ctx context.Context, iban string) (*domain.Account, error) {
	args := m.Called(ctx, iban)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIBANs(ctx context.Context, ibans []string) ([]domain.Account, error) {
	args := m.Called(ctx, ibans)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountDetails(ctx context.Context, acc domain.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateThreshold(ctx context.Context, iban string, newValue decimal.Decimal) error {
	args := m.Called(ctx, iban, newValue)
	return args.Error(0)
}

func (m *MockAccountRepository) DeleteAccount(ctx context.Context, iban string) error {
	args := m.Called(ctx, iban)
	return args.Error(0)
}

func (m *MockAccountRepository) ListAccountsByCurrency(ctx context.Context, currencyCode string, excludeOrgID string) ([]domain.Account, error) {
	args := m.Called(ctx, currencyCode, excludeOrgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccountsByHolder(ctx context.Context, holder domain.Holder) ([]domain.Account, error) {
	args := m.Called(ctx, holder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindDefaultAccount(ctx context.Context, holder domain.Holder, currencyCode string) (*domain.Account, error) {
	args := m.Called(ctx, holder, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SumBalances(ctx context.Context, currencyCode string, excludeOrgID string) (decimal.Decimal, error) {
	args := m.Called(ctx, currencyCode, excludeOrgID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockAccountRepository) CountAccounts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) CountAccountsByCurrency(ctx context.Context, currencyCode string) (int64, error) {
	args := m.Called(ctx, currencyCode)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) EnsureDeletedAccount(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIBANsForUpdate(ctx context.Context, tx pgx.Tx, ibans []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, ibans)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, changes map[string]decimal.Decimal) error {
	args := m.Called(ctx, tx, changes)
	return args.Error(0)
}

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) CreateTransfer(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactionsByAccount(ctx context.Context, iban string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, iban, limit, nextToken)
	var txns []domain.Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.Transaction)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return txns, token, args.Error(2)
}

func (m *MockTransactionRepository) CountTransactions(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) CountTransactionsByCurrency(ctx context.Context, currencyCode string) (int64, error) {
	args := m.Called(ctx, currencyCode)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) SumOutgoingSince(ctx context.Context, currencyCode string, since time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, currencyCode, since)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Mock OrganizationRepository ---
type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) SaveOrganization(ctx context.Context, org domain.Organization, grants []domain.Grant) error {
	args := m.Called(ctx, org, grants)
	return args.Error(0)
}

func (m *MockOrganizationRepository) FindOrganizationByID(ctx context.Context, organizationID string) (*domain.Organization, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) UpdateOrganization(ctx context.Context, org domain.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) DeleteOrganization(ctx context.Context, organizationID string) error {
	args := m.Called(ctx, organizationID)
	return args.Error(0)
}

func (m *MockOrganizationRepository) ListPublicOrganizations(ctx context.Context) ([]domain.Organization, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) CountOrganizationsByNation(ctx context.Context) (map[domain.Nation]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.Nation]int64), args.Error(1)
}

func (m *MockOrganizationRepository) CountAccountsForOrganization(ctx context.Context, organizationID string) (int64, error) {
	args := m.Called(ctx, organizationID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrganizationRepository) SaveEmployee(ctx context.Context, emp domain.Employee, grants []domain.Grant) error {
	args := m.Called(ctx, emp, grants)
	return args.Error(0)
}

func (m *MockOrganizationRepository) DeleteEmployee(ctx context.Context, employeeID string, revoke []domain.Grant) error {
	args := m.Called(ctx, employeeID, revoke)
	return args.Error(0)
}

func (m *MockOrganizationRepository) FindEmployeeByID(ctx context.Context, employeeID string) (*domain.Employee, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

func (m *MockOrganizationRepository) FindEmployee(ctx context.Context, organizationID string, userID string) (*domain.Employee, error) {
	args := m.Called(ctx, organizationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

func (m *MockOrganizationRepository) ListEmployeesByOrganization(ctx context.Context, organizationID string) ([]domain.Employee, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Employee), args.Error(1)
}

func (m *MockOrganizationRepository) ListEmploymentsForUser(ctx context.Context, userID string) ([]domain.Employee, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Employee), args.Error(1)
}

func (m *MockOrganizationRepository) SaveInvitation(ctx context.Context, inv domain.EmployeeInvitation) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockOrganizationRepository) FindInvitationByID(ctx context.Context, invitationID string) (*domain.EmployeeInvitation, error) {
	args := m.Called(ctx, invitationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmployeeInvitation), args.Error(1)
}

func (m *MockOrganizationRepository) FindInvitation(ctx context.Context, organizationID string, userID string) (*domain.EmployeeInvitation, error) {
	args := m.Called(ctx, organizationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmployeeInvitation), args.Error(1)
}

func (m *MockOrganizationRepository) DeleteInvitation(ctx context.Context, invitationID string) error {
	args := m.Called(ctx, invitationID)
	return args.Error(0)
}

func (m *MockOrganizationRepository) ListInvitationsByOrganization(ctx context.Context, organizationID string) ([]domain.EmployeeInvitation, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EmployeeInvitation), args.Error(1)
}

func (m *MockOrganizationRepository) ListInvitationsForUser(ctx context.Context, userID string) ([]domain.EmployeeInvitation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EmployeeInvitation), args.Error(1)
}

func (m *MockOrganizationRepository) AcceptInvitation(ctx context.Context, invitationID string, emp domain.Employee, grants []domain.Grant) error {
	args := m.Called(ctx, invitationID, emp, grants)
	return args.Error(0)
}

func (m *MockOrganizationRepository) TransferOwnership(ctx context.Context, org domain.Organization, newOwnerEmployeeID string, demoted domain.Employee, add []domain.Grant, remove []domain.Grant) error {
	args := m.Called(ctx, org, newOwnerEmployeeID, demoted, add, remove)
	return args.Error(0)
}

// --- Mock PermissionRepository ---
type MockPermissionRepository struct {
	mock.Mock
}

func (m *MockPermissionRepository) InsertGrants(ctx context.Context, grants []domain.Grant) error {
	args := m.Called(ctx, grants)
	return args.Error(0)
}

func (m *MockPermissionRepository) DeleteGrants(ctx context.Context, grants []domain.Grant) error {
	args := m.Called(ctx, grants)
	return args.Error(0)
}

func (m *MockPermissionRepository) HasGrant(ctx context.Context, userID string, action domain.Action, kind domain.ObjectKind, objectID string) (bool, error) {
	args := m.Called(ctx, userID, action, kind, objectID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPermissionRepository) ListObjectIDsForUser(ctx context.Context, userID string, action domain.Action, kind domain.ObjectKind) ([]string, error) {
	args := m.Called(ctx, userID, action, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User, tokenHash string) error {
	args := m.Called(ctx, user, tokenHash)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUsersByIDs(ctx context.Context, userIDs []string) (map[string]domain.User, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByDiscordID(ctx context.Context, discordID int64) (*domain.User, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByTokenHash(ctx context.Context, tokenHash string) (*domain.User, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// --- Mock PermissionService ---
type MockPermissionService struct {
	mock.Mock
}

func (m *MockPermissionService) HasPermission(ctx context.Context, userID string, action domain.Action, kind domain.ObjectKind, objectID string) (bool, error) {
	args := m.Called(ctx, userID, action, kind, objectID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPermissionService) ListAccountIBANsForUser(ctx context.Context, userID string, action domain.Action) ([]string, error) {
	args := m.Called(ctx, userID, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPermissionService) ListOrganizationIDsForUser(ctx context.Context, userID string, action domain.Action) ([]string, error) {
	args := m.Called(ctx, userID, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// --- Mock TransactionService ---
type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) Transfer(ctx context.Context, req dto.TransferRequest, requestingUserID string) (*domain.Transaction, error) {
	args := m.Called(ctx, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) Execute(ctx context.Context, params portssvc.ExecuteTransferParams) (*domain.Transaction, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) GetTransaction(ctx context.Context, transactionID string, requestingUserID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) ListAccountTransactions(ctx context.Context, iban string, requestingUserID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, iban, requestingUserID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

// --- Mock Notifier ---
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Enqueue(n portssvc.Notification) {
	m.Called(n)
}
