package repositories

import (
	"context"

	"github.com/democraciv/bank_backend/internal/core/domain"
)

// UserRepositoryFacade defines persistence operations for users.
type UserRepositoryFacade interface {
	// SaveUser inserts the user together with its API token hash.
	SaveUser(ctx context.Context, user domain.User, tokenHash string) error

	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUsersByIDs(ctx context.Context, userIDs []string) (map[string]domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	FindUserByDiscordID(ctx context.Context, discordID int64) (*domain.User, error)
	FindUserByTokenHash(ctx context.Context, tokenHash string) (*domain.User, error)

	UpdateUser(ctx context.Context, user domain.User) error
}
