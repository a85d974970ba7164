package services

import (
	"context"

	"github.com/democraciv/bank_backend/internal/core/domain"
	"github.com/democraciv/bank_backend/internal/dto"
)

// UserSvcFacade defines the user business operations.
type UserSvcFacade interface {
	// CreateUser registers a user and returns the freshly generated API
	// token. The token is shown once and only its hash is stored.
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, string, error)

	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByDiscordID(ctx context.Context, discordID int64) (*domain.User, error)

	UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest) (*domain.User, error)
	LinkDiscord(ctx context.Context, userID string, req dto.LinkDiscordRequest) (*domain.User, error)

	// Authenticate resolves an API token to its user.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}
