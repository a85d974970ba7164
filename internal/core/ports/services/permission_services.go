package services

import (
	"context"

	"github.com/democraciv/bank_backend/internal/core/domain"
)

// PermissionSvcFacade queries the derived permission cache. Grant derivation
// itself happens inside the mutating services so the cache is rewritten in
// the same transaction as the entity change.
type PermissionSvcFacade interface {
	HasPermission(ctx context.Context, userID string, action domain.Action, kind domain.ObjectKind, objectID string) (bool, error)
	ListAccountIBANsForUser(ctx context.Context, userID string, action domain.Action) ([]string, error)
	ListOrganizationIDsForUser(ctx context.Context, userID string, action domain.Action) ([]string, error)
}
