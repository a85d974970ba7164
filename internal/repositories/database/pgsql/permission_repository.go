package pgsql

import (
	"context"
	"fmt"

	"github.com/democraciv/bank_backend/internal/core/domain"
	portsrepo "github.com/democraciv/bank_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type PgxPermissionRepository struct {
	pool PgxPool
}

// newPgxPermissionRepository creates a new repository for the grant cache.
func newPgxPermissionRepository(pool PgxPool) portsrepo.PermissionRepositoryFacade {
	return &PgxPermissionRepository{pool: pool}
}

var _ portsrepo.PermissionRepositoryFacade = (*PgxPermissionRepository)(nil)

// insertGrants writes grant rows on any querier, so entity repositories can
// commit them inside their own transactions. Re-inserting an existing grant
// is a no-op.
func insertGrants(ctx context.Context, q Querier, grants []domain.Grant) error {
	if len(grants) == 0 {
		return nil
	}

	query := `
		INSERT INTO permission_grants (user_id, object_kind, object_id, action)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING;
	`
	batch := &pgx.Batch{}
	for _, g := range grants {
		batch.Queue(query, g.UserID, g.ObjectKind, g.ObjectID, g.Action)
	}

	br := q.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert grant: %w", err)
		}
	}
	return nil
}

// deleteGrants removes grant rows on any querier.
func deleteGrants(ctx context.Context, q Querier, grants []domain.Grant) error {
	if len(grants) == 0 {
		return nil
	}

	query := `
		DELETE FROM permission_grants
		WHERE user_id = $1 AND object_kind = $2 AND object_id = $3 AND action = $4;
	`
	batch := &pgx.Batch{}
	for _, g := range grants {
		batch.Queue(query, g.UserID, g.ObjectKind, g.ObjectID, g.Action)
	}

	br := q.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to delete grant: %w", err)
		}
	}
	return nil
}

// deleteGrantsForObject removes every grant on one object.
func deleteGrantsForObject(ctx context.Context, q Querier, kind domain.ObjectKind, objectID string) error {
	query := `DELETE FROM permission_grants WHERE object_kind = $1 AND object_id = $2;`
	if _, err := q.Exec(ctx, query, kind, objectID); err != nil {
		return fmt.Errorf("failed to delete grants for %s %s: %w", kind, objectID, err)
	}
	return nil
}

func (r *PgxPermissionRepository) InsertGrants(ctx context.Context, grants []domain.Grant) error {
	return insertGrants(ctx, r.pool, grants)
}

func (r *PgxPermissionRepository) DeleteGrants(ctx context.Context, grants []domain.Grant) error {
	return deleteGrants(ctx, r.pool, grants)
}

func (r *PgxPermissionRepository) HasGrant(ctx context.Context, userID string, action domain.Action, kind domain.ObjectKind, objectID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM permission_grants
			WHERE user_id = $1 AND action = $2 AND object_kind = $3 AND object_id = $4
		);
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, action, kind, objectID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check grant: %w", err)
	}
	return exists, nil
}

func (r *PgxPermissionRepository) ListObjectIDsForUser(ctx context.Context, userID string, action domain.Action, kind domain.ObjectKind) ([]string, error) {
	query := `
		SELECT object_id FROM permission_grants
		WHERE user_id = $1 AND action = $2 AND object_kind = $3
		ORDER BY object_id;
	`
	rows, err := r.pool.Query(ctx, query, userID, action, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list object ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan object id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
