package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/democraciv/bank_backend/internal/apperrors"
	"github.com/democraciv/bank_backend/internal/core/domain"
	portsrepo "github.com/democraciv/bank_backend/internal/core/ports/repositories"
	portssvc "github.com/democraciv/bank_backend/internal/core/ports/services"
	"github.com/democraciv/bank_backend/internal/dto"
	"github.com/democraciv/bank_backend/internal/platform/config"
)

var (
	ErrUsernameTaken        = errors.New("a user with that username already exists")
	ErrDiscordAlreadyLinked = errors.New("that Discord account is already linked to another user")
)

// userService provides user registration, identity and token operations.
type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
	notifier portssvc.Notifier
	cfg      *config.Config
}

// NewUserService creates a new UserService.
func NewUserService(userRepo portsrepo.UserRepositoryFacade, notifier portssvc.Notifier, cfg *config.Config) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo, notifier: notifier, cfg: cfg}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, string, error) {
	if existing, err := s.userRepo.FindUserByUsername(ctx, req.Username); err == nil && existing != nil {
		return nil, "", fmt.Errorf("%w: %s", apperrors.ErrDuplicate, ErrUsernameTaken)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, "", err
	}

	user := domain.User{
		UserID:            uuid.NewString(),
		Username:          req.Username,
		DiscordDMsEnabled: true,
		CreatedAt:         time.Now(),
	}

	token, err := generateToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate API token: %w", err)
	}

	if err := s.userRepo.SaveUser(ctx, user, hashToken(token)); err != nil {
		s.LogError(ctx, err, "failed to save user", slog.String("username", req.Username))
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	s.LogInfo(ctx, "user created", slog.String("user_id", user.UserID))
	return &user, token, nil
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.userRepo.FindUserByUsername(ctx, username)
}

func (s *userService) GetUserByDiscordID(ctx context.Context, discordID int64) (*domain.User, error) {
	return s.userRepo.FindUserByDiscordID(ctx, discordID)
}

func (s *userService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil && *req.Username != user.Username {
		if existing, err := s.userRepo.FindUserByUsername(ctx, *req.Username); err == nil && existing != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicate, ErrUsernameTaken)
		} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		user.Username = *req.Username
	}
	if req.DiscordDMsEnabled != nil {
		user.DiscordDMsEnabled = *req.DiscordDMsEnabled
	}

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		s.LogError(ctx, err, "failed to update user", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *userService) LinkDiscord(ctx context.Context, userID string, req dto.LinkDiscordRequest) (*domain.User, error) {
	if existing, err := s.userRepo.FindUserByDiscordID(ctx, req.DiscordID); err == nil && existing != nil && existing.UserID != userID {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicate, ErrDiscordAlreadyLinked)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.DiscordID = &req.DiscordID
	user.DiscordUsername = req.DiscordUsername
	user.DiscordAvatarURL = req.DiscordAvatarURL

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		s.LogError(ctx, err, "failed to link discord identity", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to link discord identity: %w", err)
	}

	if target, ok := user.NotifyTarget(); ok {
		s.notifier.Enqueue(portssvc.Notification{
			Targets: []int64{target},
			Title:   "Discord Account Connected",
			Description: fmt.Sprintf("Your Discord account was just connected with %s. You will now receive "+
				"notifications about received transactions as direct messages.", s.cfg.BaseURL),
			URL: fmt.Sprintf("%s/me", s.cfg.BaseURL),
		})
	}

	s.LogInfo(ctx, "discord identity linked", slog.String("user_id", userID))
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByTokenHash(ctx, hashToken(token))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid API token", apperrors.ErrForbidden)
	}
	return user, nil
}

// generateToken returns a 256-bit random token in hex.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// hashToken returns the hex SHA-256 digest stored in place of the token.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
