package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/democraciv/bank_backend/internal/apperrors"
	"github.com/democraciv/bank_backend/internal/core/domain"
	portsrepo "github.com/democraciv/bank_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

const userColumns = `user_id, username, is_admin, discord_id, discord_username, discord_avatar_url, discord_dms_enabled, created_at`

type PgxUserRepository struct {
	BaseRepository
}

// newPgxUserRepository creates a new repository for user data.
func newPgxUserRepository(pool PgxPool) *PgxUserRepository {
	return &PgxUserRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User, tokenHash string) error {
	query := `
		INSERT INTO users (` + userColumns + `, api_token_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		user.UserID,
		user.Username,
		user.IsAdmin,
		user.DiscordID,
		nullableString(user.DiscordUsername),
		nullableString(user.DiscordAvatarURL),
		user.DiscordDMsEnabled,
		user.CreatedAt,
		tokenHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username %s already taken", apperrors.ErrDuplicate, user.Username)
		}
		return fmt.Errorf("failed to save user %s: %w", user.UserID, err)
	}
	return nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.findUser(ctx, `WHERE user_id = $1`, userID)
}

func (r *PgxUserRepository) FindUsersByIDs(ctx context.Context, userIDs []string) (map[string]domain.User, error) {
	if len(userIDs) == 0 {
		return map[string]domain.User{}, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	usersMap := make(map[string]domain.User)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		usersMap[user.UserID] = user
	}
	return usersMap, rows.Err()
}

func (r *PgxUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findUser(ctx, `WHERE lower(username) = lower($1)`, username)
}

func (r *PgxUserRepository) FindUserByDiscordID(ctx context.Context, discordID int64) (*domain.User, error) {
	return r.findUser(ctx, `WHERE discord_id = $1`, discordID)
}

func (r *PgxUserRepository) FindUserByTokenHash(ctx context.Context, tokenHash string) (*domain.User, error) {
	return r.findUser(ctx, `WHERE api_token_hash = $1`, tokenHash)
}

func (r *PgxUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	query := `
		UPDATE users
		SET username = $2, is_admin = $3, discord_id = $4, discord_username = $5,
		    discord_avatar_url = $6, discord_dms_enabled = $7
		WHERE user_id = $1;
	`
	ct, err := r.Pool.Exec(ctx, query,
		user.UserID,
		user.Username,
		user.IsAdmin,
		user.DiscordID,
		nullableString(user.DiscordUsername),
		nullableString(user.DiscordAvatarURL),
		user.DiscordDMsEnabled,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username %s already taken", apperrors.ErrDuplicate, user.Username)
		}
		return fmt.Errorf("failed to update user %s: %w", user.UserID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", apperrors.ErrNotFound, user.UserID)
	}
	return nil
}

func (r *PgxUserRepository) findUser(ctx context.Context, where string, arg any) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ` + where + `;`
	user, err := scanUser(r.Pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var user domain.User
	var discordUsername, discordAvatarURL sql.NullString

	err := row.Scan(
		&user.UserID,
		&user.Username,
		&user.IsAdmin,
		&user.DiscordID,
		&discordUsername,
		&discordAvatarURL,
		&user.DiscordDMsEnabled,
		&user.CreatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	user.DiscordUsername = discordUsername.String
	user.DiscordAvatarURL = discordAvatarURL.String
	return user, nil
}
