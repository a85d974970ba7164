package services

import (
	"context"

	"github.com/democraciv/bank_backend/internal/core/domain"
	portsrepo "github.com/democraciv/bank_backend/internal/core/ports/repositories"
	portssvc "github.com/democraciv/bank_backend/internal/core/ports/services"
)

// permissionService answers permission queries against the derived grant
// cache. The cache itself is rewritten by the mutating services, which hand
// precomputed grant rows to the entity repositories so entity change and
// cache update commit in the same transaction.
type permissionService struct {
	BaseService
	permissionRepo portsrepo.PermissionRepositoryFacade
}

// NewPermissionService creates a new permission service.
func NewPermissionService(permissionRepo portsrepo.PermissionRepositoryFacade) portssvc.PermissionSvcFacade {
	return &permissionService{permissionRepo: permissionRepo}
}

var _ portssvc.PermissionSvcFacade = (*permissionService)(nil)

func (s *permissionService) HasPermission(ctx context.Context, userID string, action domain.Action, kind domain.ObjectKind, objectID string) (bool, error) {
	return s.permissionRepo.HasGrant(ctx, userID, action, kind, objectID)
}

func (s *permissionService) ListAccountIBANsForUser(ctx context.Context, userID string, action domain.Action) ([]string, error) {
	return s.permissionRepo.ListObjectIDsForUser(ctx, userID, action, domain.ObjectAccount)
}

func (s *permissionService) ListOrganizationIDsForUser(ctx context.Context, userID string, action domain.Action) ([]string, error) {
	return s.permissionRepo.ListObjectIDsForUser(ctx, userID, action, domain.ObjectOrganization)
}

// The functions below derive the grant rows implied by an entity
// relationship. They are pure so the mutating services can compute the rows
// up front and commit them alongside the entity change.

// accountGrants returns the grants created by opening an account. For an
// individual account ownerUserID is the holder; for an organization account
// it is the organization's owner and employeeUserIDs are the current staff,
// who can see the account but not change it.
func accountGrants(iban string, ownerUserID string, employeeUserIDs []string) []domain.Grant {
	grants := []domain.Grant{
		{UserID: ownerUserID, ObjectKind: domain.ObjectAccount, ObjectID: iban, Action: domain.ActionViewAccount},
		{UserID: ownerUserID, ObjectKind: domain.ObjectAccount, ObjectID: iban, Action: domain.ActionChangeAccount},
		{UserID: ownerUserID, ObjectKind: domain.ObjectAccount, ObjectID: iban, Action: domain.ActionDeleteAccount},
	}
	for _, userID := range employeeUserIDs {
		if userID == ownerUserID {
			continue
		}
		grants = append(grants, domain.Grant{
			UserID: userID, ObjectKind: domain.ObjectAccount, ObjectID: iban, Action: domain.ActionViewAccount,
		})
	}
	return grants
}

// organizationOwnerGrants returns the owner-level grants on the organization
// object itself.
func organizationOwnerGrants(ownerUserID, organizationID string) []domain.Grant {
	return []domain.Grant{
		{UserID: ownerUserID, ObjectKind: domain.ObjectOrganization, ObjectID: organizationID, Action: domain.ActionViewOrganization},
		{UserID: ownerUserID, ObjectKind: domain.ObjectOrganization, ObjectID: organizationID, Action: domain.ActionChangeOrganization},
		{UserID: ownerUserID, ObjectKind: domain.ObjectOrganization, ObjectID: organizationID, Action: domain.ActionDeleteOrganization},
		{UserID: ownerUserID, ObjectKind: domain.ObjectOrganization, ObjectID: organizationID, Action: domain.ActionManageEmployees},
		{UserID: ownerUserID, ObjectKind: domain.ObjectOrganization, ObjectID: organizationID, Action: domain.ActionAddOrgAccount},
	}
}

// organizationOwnerAccountGrants returns the full account grants the owner
// holds on each of the organization's accounts.
func organizationOwnerAccountGrants(ownerUserID string, ibans []string) []domain.Grant {
	grants := make([]domain.Grant, 0, len(ibans)*3)
	for _, iban := range ibans {
		grants = append(grants,
			domain.Grant{UserID: ownerUserID, ObjectKind: domain.ObjectAccount, ObjectID: iban, Action: domain.ActionViewAccount},
			domain.Grant{UserID: ownerUserID, ObjectKind: domain.ObjectAccount, ObjectID: iban, Action: domain.ActionChangeAccount},
			domain.Grant{UserID: ownerUserID, ObjectKind: domain.ObjectAccount, ObjectID: iban, Action: domain.ActionDeleteAccount},
		)
	}
	return grants
}

// employeeGrants returns the grants an employee holds by virtue of
// membership: visibility and account creation on the organization, plus
// visibility of each organization account.
func employeeGrants(userID, organizationID string, accountIBANs []string) []domain.Grant {
	grants := []domain.Grant{
		{UserID: userID, ObjectKind: domain.ObjectOrganization, ObjectID: organizationID, Action: domain.ActionViewOrganization},
		{UserID: userID, ObjectKind: domain.ObjectOrganization, ObjectID: organizationID, Action: domain.ActionChangeOrganization},
		{UserID: userID, ObjectKind: domain.ObjectOrganization, ObjectID: organizationID, Action: domain.ActionAddOrgAccount},
	}
	for _, iban := range accountIBANs {
		grants = append(grants, domain.Grant{
			UserID: userID, ObjectKind: domain.ObjectAccount, ObjectID: iban, Action: domain.ActionViewAccount,
		})
	}
	return grants
}
