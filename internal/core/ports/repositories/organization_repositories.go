package repositories

import (
	"context"

	"github.com/democraciv/bank_backend/internal/core/domain"
)

// OrganizationRepositoryFacade defines persistence operations for
// organizations, employees and invitations. Membership writes carry the grant
// rows they imply so entity and permission cache commit together.
type OrganizationRepositoryFacade interface {
	SaveOrganization(ctx context.Context, org domain.Organization, grants []domain.Grant) error
	FindOrganizationByID(ctx context.Context, organizationID string) (*domain.Organization, error)
	UpdateOrganization(ctx context.Context, org domain.Organization) error

	// DeleteOrganization removes the organization together with its
	// employees, pending invitations and every grant on it.
	DeleteOrganization(ctx context.Context, organizationID string) error

	ListPublicOrganizations(ctx context.Context) ([]domain.Organization, error)
	CountOrganizationsByNation(ctx context.Context) (map[domain.Nation]int64, error)
	CountAccountsForOrganization(ctx context.Context, organizationID string) (int64, error)

	SaveEmployee(ctx context.Context, emp domain.Employee, grants []domain.Grant) error
	// DeleteEmployee removes the membership row and revokes the given grants.
	DeleteEmployee(ctx context.Context, employeeID string, revoke []domain.Grant) error
	FindEmployeeByID(ctx context.Context, employeeID string) (*domain.Employee, error)
	FindEmployee(ctx context.Context, organizationID string, userID string) (*domain.Employee, error)
	ListEmployeesByOrganization(ctx context.Context, organizationID string) ([]domain.Employee, error)
	ListEmploymentsForUser(ctx context.Context, userID string) ([]domain.Employee, error)

	SaveInvitation(ctx context.Context, inv domain.EmployeeInvitation) error
	FindInvitationByID(ctx context.Context, invitationID string) (*domain.EmployeeInvitation, error)
	FindInvitation(ctx context.Context, organizationID string, userID string) (*domain.EmployeeInvitation, error)
	DeleteInvitation(ctx context.Context, invitationID string) error
	ListInvitationsByOrganization(ctx context.Context, organizationID string) ([]domain.EmployeeInvitation, error)
	ListInvitationsForUser(ctx context.Context, userID string) ([]domain.EmployeeInvitation, error)

	// AcceptInvitation deletes the invitation, creates the employee row and
	// inserts the membership grants in one transaction.
	AcceptInvitation(ctx context.Context, invitationID string, emp domain.Employee, grants []domain.Grant) error

	// TransferOwnership updates the owner, swaps the employee rows and
	// rewrites the owner-level grants in one transaction. newOwnerEmployeeID
	// is the membership row of the promoted employee; demoted is the new
	// membership row created for the previous owner.
	TransferOwnership(ctx context.Context, org domain.Organization, newOwnerEmployeeID string, demoted domain.Employee, add []domain.Grant, remove []domain.Grant) error
}
