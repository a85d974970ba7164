package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/democraciv/bank_backend/internal/apperrors"
	"github.com/democraciv/bank_backend/internal/core/domain"
	portssvc "github.com/democraciv/bank_backend/internal/core/ports/services"
	"github.com/democraciv/bank_backend/internal/dto"
	"github.com/democraciv/bank_backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) OpenAccount(ctx context.Context, req dto.OpenAccountRequest, requestingUserID string) (*domain.Account, error) {
	args := m.Called(ctx, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccount(ctx context.Context, iban string, requestingUserID string) (*domain.Account, error) {
	args := m.Called(ctx, iban, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) ListAccountsForUser(ctx context.Context, userID string) ([]domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) UpdateAccount(ctx context.Context, iban string, req dto.UpdateAccountRequest, requestingUserID string) (*domain.Account, error) {
	args := m.Called(ctx, iban, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) DeleteAccount(ctx context.Context, iban string, requestingUserID string) error {
	args := m.Called(ctx, iban, requestingUserID)
	return args.Error(0)
}
func (m *MockAccountService) SetThreshold(ctx context.Context, iban string, newValue decimal.Decimal) error {
	args := m.Called(ctx, iban, newValue)
	return args.Error(0)
}
func (m *MockAccountService) ListThresholdAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) GetDefaultAccount(ctx context.Context, holder domain.Holder, currencyCode string) (*domain.Account, error) {
	args := m.Called(ctx, holder, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

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

var _ portssvc.TransactionSvcFacade = (*MockTransactionService)(nil)

// --- Mock UserService, only Authenticate matters here ---
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*domain.User), args.String(1), args.Error(2)
}
func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) GetUserByDiscordID(ctx context.Context, discordID int64) (*domain.User, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) LinkDiscord(ctx context.Context, userID string, req dto.LinkDiscordRequest) (*domain.User, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

// --- Test Suite ---
type AccountHandlerTestSuite struct {
	suite.Suite
	router          *gin.Engine
	mockAccountSvc  *MockAccountService
	mockTxnSvc      *MockTransactionService
	mockUserSvc     *MockUserService
	apiToken        string
	authenticatedID string
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()

	suite.mockAccountSvc = new(MockAccountService)
	suite.mockTxnSvc = new(MockTransactionService)
	suite.mockUserSvc = new(MockUserService)

	suite.apiToken = "test-api-token"
	suite.authenticatedID = uuid.NewString()
	suite.mockUserSvc.On("Authenticate", mock.Anything, suite.apiToken).
		Return(&domain.User{UserID: suite.authenticatedID, Username: "tester"}, nil)

	authed := suite.router.Group("/api/v1", middleware.APITokenAuth(suite.mockUserSvc))
	registerAccountRoutes(authed, suite.mockAccountSvc, suite.mockTxnSvc)
	registerTransactionRoutes(authed, suite.mockTxnSvc)
}

func (suite *AccountHandlerTestSuite) request(method, url string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	suite.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+suite.apiToken)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *AccountHandlerTestSuite) TestOpenAccount_Created() {
	account := domain.Account{
		IBAN:                 uuid.NewString(),
		Name:                 "Bank Account",
		Balance:              domain.ZeroMoney("JPY"),
		CurrencyCode:         "JPY",
		IsDefaultForCurrency: true,
		Holder:               domain.IndividualHolder(suite.authenticatedID),
		CreatedAt:            time.Now(),
	}

	suite.mockAccountSvc.On("OpenAccount", mock.Anything, mock.MatchedBy(func(req dto.OpenAccountRequest) bool {
		return req.CurrencyCode == "JPY"
	}), suite.authenticatedID).Return(&account, nil).Once()

	w := suite.request(http.MethodPost, "/api/v1/accounts", gin.H{"currencyCode": "JPY"})

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(account.IBAN, resp.IBAN)
	suite.Equal("JPY", resp.CurrencyCode)
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestOpenAccount_ValidationErrorKeepsMessage() {
	suite.mockAccountSvc.On("OpenAccount", mock.Anything, mock.Anything, suite.authenticatedID).
		Return(nil, fmt.Errorf("%w: unknown currency %q", apperrors.ErrValidation, "XYZ")).Once()

	w := suite.request(http.MethodPost, "/api/v1/accounts", gin.H{"currencyCode": "XYZ"})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "unknown currency")
}

func (suite *AccountHandlerTestSuite) TestGetAccount_Forbidden() {
	iban := uuid.NewString()

	suite.mockAccountSvc.On("GetAccount", mock.Anything, iban, suite.authenticatedID).
		Return(nil, fmt.Errorf("%w: you don't have access to that bank account", apperrors.ErrForbidden)).Once()

	w := suite.request(http.MethodGet, "/api/v1/accounts/"+iban, nil)

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *AccountHandlerTestSuite) TestGetAccount_UppercaseIBANFindsAccount() {
	iban := uuid.NewString()
	account := domain.Account{
		IBAN:         iban,
		Name:         "Bank Account",
		Balance:      domain.ZeroMoney("JPY"),
		CurrencyCode: "JPY",
		Holder:       domain.IndividualHolder(suite.authenticatedID),
		CreatedAt:    time.Now(),
	}

	suite.mockAccountSvc.On("GetAccount", mock.Anything, iban, suite.authenticatedID).
		Return(&account, nil).Once()

	w := suite.request(http.MethodGet, "/api/v1/accounts/"+strings.ToUpper(iban), nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestSend_ExhaustedRetriesReturnConflict() {
	from := uuid.NewString()
	to := uuid.NewString()

	suite.mockTxnSvc.On("Transfer", mock.Anything, mock.MatchedBy(func(req dto.TransferRequest) bool {
		return req.FromIBAN == from && req.ToIBAN == to
	}), suite.authenticatedID).
		Return(nil, fmt.Errorf("%w: insufficient funds", apperrors.ErrConflict)).Once()

	w := suite.request(http.MethodPost, "/api/v1/transactions", gin.H{
		"fromIBAN": strings.ToUpper(from),
		"toIBAN":   to,
		"amount":   "10",
	})

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockTxnSvc.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestDeleteAccount_NoContent() {
	iban := uuid.NewString()

	suite.mockAccountSvc.On("DeleteAccount", mock.Anything, iban, suite.authenticatedID).
		Return(nil).Once()

	w := suite.request(http.MethodDelete, "/api/v1/accounts/"+iban, nil)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestListTransactions_PassesPagination() {
	iban := uuid.NewString()
	expected := &dto.ListTransactionsResponse{
		Transactions: []dto.TransactionResponse{{
			ID:           uuid.NewString(),
			FromIBAN:     iban,
			ToIBAN:       uuid.NewString(),
			Amount:       decimal.NewFromInt(10),
			CurrencyCode: "JPY",
			CreatedAt:    time.Now(),
		}},
	}

	suite.mockTxnSvc.On("ListAccountTransactions", mock.Anything, iban, suite.authenticatedID,
		mock.MatchedBy(func(p dto.ListTransactionsParams) bool {
			return p.Limit == 10 && p.NextToken == nil
		})).Return(expected, nil).Once()

	w := suite.request(http.MethodGet, fmt.Sprintf("/api/v1/accounts/%s/transactions?limit=10", iban), nil)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.ListTransactionsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Transactions, 1)
	suite.Equal(expected.Transactions[0].ID, resp.Transactions[0].ID)
	suite.mockTxnSvc.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestMissingToken_Unauthorized() {
	req, err := http.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	suite.Require().NoError(err)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockAccountSvc.AssertNotCalled(suite.T(), "ListAccountsForUser", mock.Anything, mock.Anything)
}

func TestAccountHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
