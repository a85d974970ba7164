package services_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"testing"

	"github.com/democraciv/bank_backend/internal/apperrors"
	"github.com/democraciv/bank_backend/internal/core/domain"
	portssvc "github.com/democraciv/bank_backend/internal/core/ports/services"
	"github.com/democraciv/bank_backend/internal/core/services"
	"github.com/democraciv/bank_backend/internal/dto"
	"github.com/democraciv/bank_backend/internal/platform/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

var hexTokenRe = regexp.MustCompile(`^[0-9a-f]{64}$`)

type UserServiceTestSuite struct {
	suite.Suite
	mockUserRepo *MockUserRepository
	mockNotifier *MockNotifier
	service      portssvc.UserSvcFacade
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockNotifier = new(MockNotifier)
	cfg := &config.Config{BaseURL: "https://bank.test"}
	suite.service = services.NewUserService(suite.mockUserRepo, suite.mockNotifier, cfg)
}

func (suite *UserServiceTestSuite) TestCreateUser_Success() {
	ctx := context.Background()
	req := dto.CreateUserRequest{Username: "sultan"}

	var storedHash string
	suite.mockUserRepo.On("FindUserByUsername", ctx, "sultan").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("SaveUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Username == "sultan" && u.DiscordDMsEnabled && !u.IsAdmin
	}), mock.MatchedBy(func(hash string) bool {
		storedHash = hash
		return hexTokenRe.MatchString(hash)
	})).Return(nil).Once()

	user, token, err := suite.service.CreateUser(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(user)
	suite.Regexp(hexTokenRe, token)

	// Only the digest is stored, never the token itself.
	sum := sha256.Sum256([]byte(token))
	suite.Equal(hex.EncodeToString(sum[:]), storedHash)
	suite.NotEqual(token, storedHash)

	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestCreateUser_UsernameTaken() {
	ctx := context.Background()
	existing := domain.User{UserID: uuid.NewString(), Username: "sultan"}

	suite.mockUserRepo.On("FindUserByUsername", ctx, "sultan").Return(&existing, nil).Once()

	_, _, err := suite.service.CreateUser(ctx, dto.CreateUserRequest{Username: "sultan"})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.ErrorContains(err, services.ErrUsernameTaken.Error())
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestUpdateUser_RenameToTakenUsername() {
	ctx := context.Background()
	user := domain.User{UserID: uuid.NewString(), Username: "old"}
	taken := "taken"

	suite.mockUserRepo.On("FindUserByID", ctx, user.UserID).Return(&user, nil).Once()
	suite.mockUserRepo.On("FindUserByUsername", ctx, taken).
		Return(&domain.User{UserID: uuid.NewString(), Username: taken}, nil).Once()

	_, err := suite.service.UpdateUser(ctx, user.UserID, dto.UpdateUserRequest{Username: &taken})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "UpdateUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestUpdateUser_TogglesDMs() {
	ctx := context.Background()
	user := domain.User{UserID: uuid.NewString(), Username: "sultan", DiscordDMsEnabled: true}
	disabled := false

	suite.mockUserRepo.On("FindUserByID", ctx, user.UserID).Return(&user, nil).Once()
	suite.mockUserRepo.On("UpdateUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return !u.DiscordDMsEnabled && u.Username == "sultan"
	})).Return(nil).Once()

	updated, err := suite.service.UpdateUser(ctx, user.UserID, dto.UpdateUserRequest{DiscordDMsEnabled: &disabled})

	suite.Require().NoError(err)
	suite.False(updated.DiscordDMsEnabled)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestLinkDiscord_AlreadyLinkedElsewhere() {
	ctx := context.Background()
	userID := uuid.NewString()
	discordID := int64(555)
	other := domain.User{UserID: uuid.NewString(), DiscordID: &discordID}

	suite.mockUserRepo.On("FindUserByDiscordID", ctx, discordID).Return(&other, nil).Once()

	_, err := suite.service.LinkDiscord(ctx, userID, dto.LinkDiscordRequest{DiscordID: discordID})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.ErrorContains(err, services.ErrDiscordAlreadyLinked.Error())
}

func (suite *UserServiceTestSuite) TestLinkDiscord_SuccessSendsWelcome() {
	ctx := context.Background()
	user := domain.User{UserID: uuid.NewString(), Username: "sultan", DiscordDMsEnabled: true}
	discordID := int64(555)
	req := dto.LinkDiscordRequest{
		DiscordID:       discordID,
		DiscordUsername: "sultan#0001",
	}

	suite.mockUserRepo.On("FindUserByDiscordID", ctx, discordID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, user.UserID).Return(&user, nil).Once()
	suite.mockUserRepo.On("UpdateUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.DiscordID != nil && *u.DiscordID == discordID && u.DiscordUsername == "sultan#0001"
	})).Return(nil).Once()
	suite.mockNotifier.On("Enqueue", mock.MatchedBy(func(n portssvc.Notification) bool {
		return n.Title == "Discord Account Connected" && n.Targets[0] == discordID
	})).Once()

	linked, err := suite.service.LinkDiscord(ctx, user.UserID, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(linked.DiscordID)
	suite.Equal(discordID, *linked.DiscordID)
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestLinkDiscord_Relink() {
	ctx := context.Background()
	discordID := int64(555)
	user := domain.User{UserID: uuid.NewString(), Username: "sultan", DiscordID: &discordID, DiscordDMsEnabled: false}

	// Linking the same identity to the same user again is allowed.
	suite.mockUserRepo.On("FindUserByDiscordID", ctx, discordID).Return(&user, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, user.UserID).Return(&user, nil).Once()
	suite.mockUserRepo.On("UpdateUser", ctx, mock.Anything).Return(nil).Once()

	_, err := suite.service.LinkDiscord(ctx, user.UserID, dto.LinkDiscordRequest{DiscordID: discordID})

	suite.Require().NoError(err)
	// DMs are disabled, so no welcome message goes out.
	suite.mockNotifier.AssertNotCalled(suite.T(), "Enqueue", mock.Anything)
}

func (suite *UserServiceTestSuite) TestAuthenticate_InvalidToken() {
	ctx := context.Background()

	suite.mockUserRepo.On("FindUserByTokenHash", ctx, mock.Anything).
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.Authenticate(ctx, "bogus")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.ErrorContains(err, "invalid API token")
}

func (suite *UserServiceTestSuite) TestAuthenticate_LooksUpByDigest() {
	ctx := context.Background()
	token := "secret-token"
	sum := sha256.Sum256([]byte(token))
	user := domain.User{UserID: uuid.NewString(), Username: "sultan"}

	suite.mockUserRepo.On("FindUserByTokenHash", ctx, hex.EncodeToString(sum[:])).
		Return(&user, nil).Once()

	got, err := suite.service.Authenticate(ctx, token)

	suite.Require().NoError(err)
	suite.Equal(user.UserID, got.UserID)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
