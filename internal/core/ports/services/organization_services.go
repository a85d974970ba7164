package services

import (
	"context"

	"github.com/democraciv/bank_backend/internal/core/domain"
	"github.com/democraciv/bank_backend/internal/dto"
)

// OrganizationSvcFacade defines the organization business operations.
type OrganizationSvcFacade interface {
	CreateOrganization(ctx context.Context, req dto.CreateOrganizationRequest, requestingUserID string) (*domain.Organization, error)
	GetOrganization(ctx context.Context, organizationID string, requestingUserID string) (*domain.Organization, error)
	ListOrganizationsForUser(ctx context.Context, userID string) ([]domain.Organization, error)
	UpdateOrganization(ctx context.Context, organizationID string, req dto.UpdateOrganizationRequest, requestingUserID string) (*domain.Organization, error)

	// DeleteOrganization removes an organization the user owns. Fails while
	// the organization still holds accounts.
	DeleteOrganization(ctx context.Context, organizationID string, requestingUserID string) error

	InviteEmployee(ctx context.Context, organizationID string, req dto.InviteEmployeeRequest, requestingUserID string) (*domain.EmployeeInvitation, error)
	// ResolveInvitation accepts or declines a pending invitation. Only the
	// invited user may resolve it.
	ResolveInvitation(ctx context.Context, invitationID string, accept bool, requestingUserID string) (*domain.Employee, error)
	ListInvitationsForUser(ctx context.Context, userID string) ([]domain.EmployeeInvitation, error)
	ListInvitationsByOrganization(ctx context.Context, organizationID string, requestingUserID string) ([]domain.EmployeeInvitation, error)

	ListEmployees(ctx context.Context, organizationID string, requestingUserID string) ([]domain.Employee, error)
	FireEmployee(ctx context.Context, organizationID string, employeeID string, requestingUserID string) error
	// LeaveOrganization removes the requesting user's own membership.
	LeaveOrganization(ctx context.Context, organizationID string, requestingUserID string) error

	// TransferOwnership promotes an employee to owner and demotes the
	// current owner to employee.
	TransferOwnership(ctx context.Context, organizationID string, newOwnerEmployeeID string, requestingUserID string) (*domain.Organization, error)
}
