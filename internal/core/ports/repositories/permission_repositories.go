package repositories

import (
	"context"

	"github.com/democraciv/bank_backend/internal/core/domain"
)

// PermissionRepositoryFacade reads the derived permission cache. Grant writes
// normally ride along entity mutations inside the entity repositories; the
// standalone insert and delete exist for repair jobs and tests.
type PermissionRepositoryFacade interface {
	InsertGrants(ctx context.Context, grants []domain.Grant) error
	DeleteGrants(ctx context.Context, grants []domain.Grant) error

	HasGrant(ctx context.Context, userID string, action domain.Action, kind domain.ObjectKind, objectID string) (bool, error)
	ListObjectIDsForUser(ctx context.Context, userID string, action domain.Action, kind domain.ObjectKind) ([]string, error)
}
