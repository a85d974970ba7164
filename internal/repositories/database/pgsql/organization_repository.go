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

const organizationColumns = `organization_id, name, owner_user_id, description, discord_server, is_public_viewable, nation, organization_type, industry, created_at`

const employeeColumns = `employee_id, user_id, organization_id, employed_since`

const invitationColumns = `invitation_id, user_id, organization_id, created_at`

type PgxOrganizationRepository struct {
	BaseRepository
}

// newPgxOrganizationRepository creates a new repository for organizations,
// their employees and pending invitations.
func newPgxOrganizationRepository(pool PgxPool) *PgxOrganizationRepository {
	return &PgxOrganizationRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.OrganizationRepositoryFacade = (*PgxOrganizationRepository)(nil)

func (r *PgxOrganizationRepository) SaveOrganization(ctx context.Context, org domain.Organization, grants []domain.Grant) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO organizations (` + organizationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err = tx.Exec(ctx, query,
		org.ID,
		org.Name,
		org.OwnerUserID,
		nullableString(org.Description),
		nullableString(org.DiscordServer),
		org.IsPublicViewable,
		org.Nation,
		org.OrganizationType,
		nullableString(string(org.Industry)),
		org.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: organization %s already exists", apperrors.ErrDuplicate, org.ID)
		}
		return fmt.Errorf("failed to save organization %s: %w", org.ID, err)
	}

	if err := insertGrants(ctx, tx, grants); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func (r *PgxOrganizationRepository) FindOrganizationByID(ctx context.Context, organizationID string) (*domain.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE lower(organization_id) = lower($1);`
	org, err := scanOrganization(r.Pool.QueryRow(ctx, query, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: organization %s", apperrors.ErrNotFound, organizationID)
		}
		return nil, fmt.Errorf("failed to find organization %s: %w", organizationID, err)
	}
	return &org, nil
}

func (r *PgxOrganizationRepository) UpdateOrganization(ctx context.Context, org domain.Organization) error {
	query := `
		UPDATE organizations
		SET name = $2, description = $3, discord_server = $4, is_public_viewable = $5,
		    nation = $6, organization_type = $7, industry = $8
		WHERE organization_id = $1;
	`
	ct, err := r.Pool.Exec(ctx, query,
		org.ID,
		org.Name,
		nullableString(org.Description),
		nullableString(org.DiscordServer),
		org.IsPublicViewable,
		org.Nation,
		org.OrganizationType,
		nullableString(string(org.Industry)),
	)
	if err != nil {
		return fmt.Errorf("failed to update organization %s: %w", org.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: organization %s", apperrors.ErrNotFound, org.ID)
	}
	return nil
}

func (r *PgxOrganizationRepository) DeleteOrganization(ctx context.Context, organizationID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM employees WHERE organization_id = $1;`, organizationID); err != nil {
		return fmt.Errorf("failed to delete employees of %s: %w", organizationID, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM employee_invitations WHERE organization_id = $1;`, organizationID); err != nil {
		return fmt.Errorf("failed to delete invitations of %s: %w", organizationID, err)
	}
	if err := deleteGrantsForObject(ctx, tx, domain.ObjectOrganization, organizationID); err != nil {
		return err
	}

	ct, err := tx.Exec(ctx, `DELETE FROM organizations WHERE organization_id = $1;`, organizationID)
	if err != nil {
		return fmt.Errorf("failed to delete organization %s: %w", organizationID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: organization %s", apperrors.ErrNotFound, organizationID)
	}
	return r.Commit(ctx, tx)
}

func (r *PgxOrganizationRepository) ListPublicOrganizations(ctx context.Context) ([]domain.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE is_public_viewable ORDER BY name;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list public organizations: %w", err)
	}
	defer rows.Close()

	var orgs []domain.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization row: %w", err)
		}
		orgs = append(orgs, org)
	}
	if orgs == nil {
		orgs = []domain.Organization{}
	}
	return orgs, rows.Err()
}

func (r *PgxOrganizationRepository) CountOrganizationsByNation(ctx context.Context) (map[domain.Nation]int64, error) {
	rows, err := r.Pool.Query(ctx, `SELECT nation, COUNT(*) FROM organizations GROUP BY nation;`)
	if err != nil {
		return nil, fmt.Errorf("failed to count organizations by nation: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Nation]int64)
	for rows.Next() {
		var nation domain.Nation
		var count int64
		if err := rows.Scan(&nation, &count); err != nil {
			return nil, fmt.Errorf("failed to scan nation count: %w", err)
		}
		counts[nation] = count
	}
	return counts, rows.Err()
}

func (r *PgxOrganizationRepository) CountAccountsForOrganization(ctx context.Context, organizationID string) (int64, error) {
	var count int64
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE holder_organization_id = $1;`, organizationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts of %s: %w", organizationID, err)
	}
	return count, nil
}

func (r *PgxOrganizationRepository) SaveEmployee(ctx context.Context, emp domain.Employee, grants []domain.Grant) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := insertEmployee(ctx, tx, emp); err != nil {
		return err
	}
	if err := insertGrants(ctx, tx, grants); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func (r *PgxOrganizationRepository) DeleteEmployee(ctx context.Context, employeeID string, revoke []domain.Grant) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	ct, err := tx.Exec(ctx, `DELETE FROM employees WHERE employee_id = $1;`, employeeID)
	if err != nil {
		return fmt.Errorf("failed to delete employee %s: %w", employeeID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: employee %s", apperrors.ErrNotFound, employeeID)
	}

	if err := deleteGrants(ctx, tx, revoke); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func (r *PgxOrganizationRepository) FindEmployeeByID(ctx context.Context, employeeID string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE employee_id = $1;`
	emp, err := scanEmployee(r.Pool.QueryRow(ctx, query, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: employee %s", apperrors.ErrNotFound, employeeID)
		}
		return nil, fmt.Errorf("failed to find employee %s: %w", employeeID, err)
	}
	return &emp, nil
}

func (r *PgxOrganizationRepository) FindEmployee(ctx context.Context, organizationID string, userID string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE organization_id = $1 AND user_id = $2;`
	emp, err := scanEmployee(r.Pool.QueryRow(ctx, query, organizationID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no such employment", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find employee of %s: %w", organizationID, err)
	}
	return &emp, nil
}

func (r *PgxOrganizationRepository) ListEmployeesByOrganization(ctx context.Context, organizationID string) ([]domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE organization_id = $1 ORDER BY employed_since;`
	return r.queryEmployees(ctx, query, organizationID)
}

func (r *PgxOrganizationRepository) ListEmploymentsForUser(ctx context.Context, userID string) ([]domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE user_id = $1 ORDER BY employed_since;`
	return r.queryEmployees(ctx, query, userID)
}

func (r *PgxOrganizationRepository) SaveInvitation(ctx context.Context, inv domain.EmployeeInvitation) error {
	query := `
		INSERT INTO employee_invitations (` + invitationColumns + `)
		VALUES ($1, $2, $3, $4);
	`
	_, err := r.Pool.Exec(ctx, query, inv.InvitationID, inv.UserID, inv.OrganizationID, inv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: invitation already pending", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save invitation %s: %w", inv.InvitationID, err)
	}
	return nil
}

func (r *PgxOrganizationRepository) FindInvitationByID(ctx context.Context, invitationID string) (*domain.EmployeeInvitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM employee_invitations WHERE invitation_id = $1;`
	inv, err := scanInvitation(r.Pool.QueryRow(ctx, query, invitationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: invitation %s", apperrors.ErrNotFound, invitationID)
		}
		return nil, fmt.Errorf("failed to find invitation %s: %w", invitationID, err)
	}
	return &inv, nil
}

func (r *PgxOrganizationRepository) FindInvitation(ctx context.Context, organizationID string, userID string) (*domain.EmployeeInvitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM employee_invitations WHERE organization_id = $1 AND user_id = $2;`
	inv, err := scanInvitation(r.Pool.QueryRow(ctx, query, organizationID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no pending invitation", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find invitation for %s: %w", organizationID, err)
	}
	return &inv, nil
}

func (r *PgxOrganizationRepository) DeleteInvitation(ctx context.Context, invitationID string) error {
	ct, err := r.Pool.Exec(ctx, `DELETE FROM employee_invitations WHERE invitation_id = $1;`, invitationID)
	if err != nil {
		return fmt.Errorf("failed to delete invitation %s: %w", invitationID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: invitation %s", apperrors.ErrNotFound, invitationID)
	}
	return nil
}

func (r *PgxOrganizationRepository) ListInvitationsByOrganization(ctx context.Context, organizationID string) ([]domain.EmployeeInvitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM employee_invitations WHERE organization_id = $1 ORDER BY created_at;`
	return r.queryInvitations(ctx, query, organizationID)
}

func (r *PgxOrganizationRepository) ListInvitationsForUser(ctx context.Context, userID string) ([]domain.EmployeeInvitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM employee_invitations WHERE user_id = $1 ORDER BY created_at;`
	return r.queryInvitations(ctx, query, userID)
}

func (r *PgxOrganizationRepository) AcceptInvitation(ctx context.Context, invitationID string, emp domain.Employee, grants []domain.Grant) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	ct, err := tx.Exec(ctx, `DELETE FROM employee_invitations WHERE invitation_id = $1;`, invitationID)
	if err != nil {
		return fmt.Errorf("failed to consume invitation %s: %w", invitationID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: invitation %s", apperrors.ErrNotFound, invitationID)
	}

	if err := insertEmployee(ctx, tx, emp); err != nil {
		return err
	}
	if err := insertGrants(ctx, tx, grants); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func (r *PgxOrganizationRepository) TransferOwnership(ctx context.Context, org domain.Organization, newOwnerEmployeeID string, demoted domain.Employee, add []domain.Grant, remove []domain.Grant) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	ct, err := tx.Exec(ctx, `UPDATE organizations SET owner_user_id = $2 WHERE organization_id = $1;`, org.ID, org.OwnerUserID)
	if err != nil {
		return fmt.Errorf("failed to update owner of %s: %w", org.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: organization %s", apperrors.ErrNotFound, org.ID)
	}

	ct, err = tx.Exec(ctx, `DELETE FROM employees WHERE employee_id = $1;`, newOwnerEmployeeID)
	if err != nil {
		return fmt.Errorf("failed to delete promoted employee %s: %w", newOwnerEmployeeID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: employee %s", apperrors.ErrNotFound, newOwnerEmployeeID)
	}

	if err := insertEmployee(ctx, tx, demoted); err != nil {
		return err
	}
	if err := insertGrants(ctx, tx, add); err != nil {
		return err
	}
	if err := deleteGrants(ctx, tx, remove); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func insertEmployee(ctx context.Context, q Querier, emp domain.Employee) error {
	query := `
		INSERT INTO employees (` + employeeColumns + `)
		VALUES ($1, $2, $3, $4);
	`
	_, err := q.Exec(ctx, query, emp.EmployeeID, emp.UserID, emp.OrganizationID, emp.EmployedSince)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: employment already exists", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save employee %s: %w", emp.EmployeeID, err)
	}
	return nil
}

func (r *PgxOrganizationRepository) queryEmployees(ctx context.Context, query string, args ...any) ([]domain.Employee, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var emps []domain.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee row: %w", err)
		}
		emps = append(emps, emp)
	}
	if emps == nil {
		emps = []domain.Employee{}
	}
	return emps, rows.Err()
}

func (r *PgxOrganizationRepository) queryInvitations(ctx context.Context, query string, args ...any) ([]domain.EmployeeInvitation, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invitations: %w", err)
	}
	defer rows.Close()

	var invs []domain.EmployeeInvitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation row: %w", err)
		}
		invs = append(invs, inv)
	}
	if invs == nil {
		invs = []domain.EmployeeInvitation{}
	}
	return invs, rows.Err()
}

func scanOrganization(row pgx.Row) (domain.Organization, error) {
	var org domain.Organization
	var description, discordServer, industry sql.NullString

	err := row.Scan(
		&org.ID,
		&org.Name,
		&org.OwnerUserID,
		&description,
		&discordServer,
		&org.IsPublicViewable,
		&org.Nation,
		&org.OrganizationType,
		&industry,
		&org.CreatedAt,
	)
	if err != nil {
		return domain.Organization{}, err
	}
	org.Description = description.String
	org.DiscordServer = discordServer.String
	org.Industry = domain.Industry(industry.String)
	return org, nil
}

func scanEmployee(row pgx.Row) (domain.Employee, error) {
	var emp domain.Employee
	err := row.Scan(&emp.EmployeeID, &emp.UserID, &emp.OrganizationID, &emp.EmployedSince)
	return emp, err
}

func scanInvitation(row pgx.Row) (domain.EmployeeInvitation, error) {
	var inv domain.EmployeeInvitation
	err := row.Scan(&inv.InvitationID, &inv.UserID, &inv.OrganizationID, &inv.CreatedAt)
	return inv, err
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
