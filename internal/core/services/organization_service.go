package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/democraciv/bank_backend/internal/apperrors"
	"github.com/democraciv/bank_backend/internal/core/domain"
	portsrepo "github.com/democraciv/bank_backend/internal/core/ports/repositories"
	portssvc "github.com/democraciv/bank_backend/internal/core/ports/services"
	"github.com/democraciv/bank_backend/internal/dto"
	"github.com/democraciv/bank_backend/internal/platform/config"
)

var (
	ErrNoOrganizationAccess    = errors.New("you don't have access to that organization")
	ErrOrganizationHasAccounts = errors.New("the organization still holds bank accounts, delete those first")
)

// organizationService provides the organization, employment and invitation
// operations.
type organizationService struct {
	BaseService
	orgRepo       portsrepo.OrganizationRepositoryFacade
	accountRepo   portsrepo.AccountRepositoryFacade
	userRepo      portsrepo.UserRepositoryFacade
	permissionSvc portssvc.PermissionSvcFacade
	notifier      portssvc.Notifier
	cfg           *config.Config
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(
	orgRepo portsrepo.OrganizationRepositoryFacade,
	accountRepo portsrepo.AccountRepositoryFacade,
	userRepo portsrepo.UserRepositoryFacade,
	permissionSvc portssvc.PermissionSvcFacade,
	notifier portssvc.Notifier,
	cfg *config.Config,
) portssvc.OrganizationSvcFacade {
	return &organizationService{
		orgRepo:       orgRepo,
		accountRepo:   accountRepo,
		userRepo:      userRepo,
		permissionSvc: permissionSvc,
		notifier:      notifier,
		cfg:           cfg,
	}
}

var _ portssvc.OrganizationSvcFacade = (*organizationService)(nil)

func (s *organizationService) CreateOrganization(ctx context.Context, req dto.CreateOrganizationRequest, requestingUserID string) (*domain.Organization, error) {
	org := domain.Organization{
		ID:               req.ID,
		Name:             req.Name,
		OwnerUserID:      requestingUserID,
		Description:      req.Description,
		DiscordServer:    req.DiscordServer,
		IsPublicViewable: req.IsPublicViewable,
		Nation:           req.Nation,
		OrganizationType: req.OrganizationType,
		Industry:         req.Industry,
		CreatedAt:        time.Now(),
	}

	grants := organizationOwnerGrants(requestingUserID, org.ID)
	if err := s.orgRepo.SaveOrganization(ctx, org, grants); err != nil {
		s.LogError(ctx, err, "failed to save organization", slog.String("organization_id", org.ID))
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	s.LogInfo(ctx, "organization created", slog.String("organization_id", org.ID))
	return &org, nil
}

func (s *organizationService) GetOrganization(ctx context.Context, organizationID string, requestingUserID string) (*domain.Organization, error) {
	org, err := s.orgRepo.FindOrganizationByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if org.IsPublicViewable {
		return org, nil
	}

	allowed, err := s.permissionSvc.HasPermission(ctx, requestingUserID, domain.ActionViewOrganization, domain.ObjectOrganization, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to check organization permission: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNoOrganizationAccess)
	}
	return org, nil
}

func (s *organizationService) ListOrganizationsForUser(ctx context.Context, userID string) ([]domain.Organization, error) {
	ids, err := s.permissionSvc.ListOrganizationIDsForUser(ctx, userID, domain.ActionViewOrganization)
	if err != nil {
		return nil, fmt.Errorf("failed to list viewable organizations: %w", err)
	}

	orgs := make([]domain.Organization, 0, len(ids))
	for _, id := range ids {
		org, err := s.orgRepo.FindOrganizationByID(ctx, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		orgs = append(orgs, *org)
	}
	return orgs, nil
}

func (s *organizationService) UpdateOrganization(ctx context.Context, organizationID string, req dto.UpdateOrganizationRequest, requestingUserID string) (*domain.Organization, error) {
	allowed, err := s.permissionSvc.HasPermission(ctx, requestingUserID, domain.ActionChangeOrganization, domain.ObjectOrganization, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to check organization permission: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNoOrganizationAccess)
	}

	org, err := s.orgRepo.FindOrganizationByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		org.Name = *req.Name
	}
	if req.Description != nil {
		org.Description = *req.Description
	}
	if req.DiscordServer != nil {
		org.DiscordServer = *req.DiscordServer
	}
	if req.IsPublicViewable != nil {
		org.IsPublicViewable = *req.IsPublicViewable
	}
	if req.Nation != nil {
		org.Nation = *req.Nation
	}
	if req.OrganizationType != nil {
		org.OrganizationType = *req.OrganizationType
	}
	if req.Industry != nil {
		org.Industry = *req.Industry
	}

	if err := s.orgRepo.UpdateOrganization(ctx, *org); err != nil {
		s.LogError(ctx, err, "failed to update organization", slog.String("organization_id", organizationID))
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}
	return org, nil
}

func (s *organizationService) DeleteOrganization(ctx context.Context, organizationID string, requestingUserID string) error {
	allowed, err := s.permissionSvc.HasPermission(ctx, requestingUserID, domain.ActionDeleteOrganization, domain.ObjectOrganization, organizationID)
	if err != nil {
		return fmt.Errorf("failed to check organization permission: %w", err)
	}
	if !allowed {
		return fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNoOrganizationAccess)
	}

	accountCount, err := s.orgRepo.CountAccountsForOrganization(ctx, organizationID)
	if err != nil {
		return err
	}
	if accountCount > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrOrganizationHasAccounts)
	}

	if err := s.orgRepo.DeleteOrganization(ctx, organizationID); err != nil {
		s.LogError(ctx, err, "failed to delete organization", slog.String("organization_id", organizationID))
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	s.LogInfo(ctx, "organization deleted", slog.String("organization_id", organizationID))
	return nil
}

func (s *organizationService) InviteEmployee(ctx context.Context, organizationID string, req dto.InviteEmployeeRequest, requestingUserID string) (*domain.EmployeeInvitation, error) {
	allowed, err := s.permissionSvc.HasPermission(ctx, requestingUserID, domain.ActionManageEmployees, domain.ObjectOrganization, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to check organization permission: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNoOrganizationAccess)
	}

	org, err := s.orgRepo.FindOrganizationByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: there's no user with that username", apperrors.ErrValidation)
		}
		return nil, err
	}

	if existing, err := s.orgRepo.FindEmployee(ctx, organizationID, user.UserID); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: %s is already an employee of yours", apperrors.ErrValidation, user.Username)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	if pending, err := s.orgRepo.FindInvitation(ctx, organizationID, user.UserID); err == nil && pending != nil {
		return nil, fmt.Errorf("%w: there's still a pending invite for %s", apperrors.ErrValidation, user.Username)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	if org.OwnerUserID == user.UserID {
		return nil, fmt.Errorf("%w: %s is the owner of this organization, you can't invite them to join as an employee", apperrors.ErrValidation, user.Username)
	}

	inv := domain.EmployeeInvitation{
		InvitationID:   uuid.NewString(),
		UserID:         user.UserID,
		OrganizationID: organizationID,
		CreatedAt:      time.Now(),
	}
	if err := s.orgRepo.SaveInvitation(ctx, inv); err != nil {
		s.LogError(ctx, err, "failed to save invitation", slog.String("organization_id", organizationID))
		return nil, fmt.Errorf("failed to save invitation: %w", err)
	}

	s.notifyInvited(ctx, org, user)
	return &inv, nil
}

func (s *organizationService) ResolveInvitation(ctx context.Context, invitationID string, accept bool, requestingUserID string) (*domain.Employee, error) {
	inv, err := s.orgRepo.FindInvitationByID(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if inv.UserID != requestingUserID {
		return nil, fmt.Errorf("%w: only the invited user can resolve this invitation", apperrors.ErrForbidden)
	}

	org, err := s.orgRepo.FindOrganizationByID(ctx, inv.OrganizationID)
	if err != nil {
		return nil, err
	}

	if !accept {
		if err := s.orgRepo.DeleteInvitation(ctx, invitationID); err != nil {
			return nil, fmt.Errorf("failed to delete invitation: %w", err)
		}
		s.notifyResolved(ctx, org, requestingUserID, false)
		return nil, nil
	}

	ibans, err := s.organizationAccountIBANs(ctx, org.ID)
	if err != nil {
		return nil, err
	}

	emp := domain.Employee{
		EmployeeID:     uuid.NewString(),
		UserID:         requestingUserID,
		OrganizationID: org.ID,
		EmployedSince:  time.Now(),
	}
	grants := employeeGrants(requestingUserID, org.ID, ibans)
	if err := s.orgRepo.AcceptInvitation(ctx, invitationID, emp, grants); err != nil {
		s.LogError(ctx, err, "failed to accept invitation", slog.String("invitation_id", invitationID))
		return nil, fmt.Errorf("failed to accept invitation: %w", err)
	}

	s.LogInfo(ctx, "invitation accepted", slog.String("organization_id", org.ID), slog.String("user_id", requestingUserID))
	s.notifyResolved(ctx, org, requestingUserID, true)
	return &emp, nil
}

func (s *organizationService) ListInvitationsForUser(ctx context.Context, userID string) ([]domain.EmployeeInvitation, error) {
	return s.orgRepo.ListInvitationsForUser(ctx, userID)
}

func (s *organizationService) ListInvitationsByOrganization(ctx context.Context, organizationID string, requestingUserID string) ([]domain.EmployeeInvitation, error) {
	allowed, err := s.permissionSvc.HasPermission(ctx, requestingUserID, domain.ActionManageEmployees, domain.ObjectOrganization, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to check organization permission: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNoOrganizationAccess)
	}
	return s.orgRepo.ListInvitationsByOrganization(ctx, organizationID)
}

func (s *organizationService) ListEmployees(ctx context.Context, organizationID string, requestingUserID string) ([]domain.Employee, error) {
	allowed, err := s.permissionSvc.HasPermission(ctx, requestingUserID, domain.ActionViewOrganization, domain.ObjectOrganization, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to check organization permission: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNoOrganizationAccess)
	}
	return s.orgRepo.ListEmployeesByOrganization(ctx, organizationID)
}

func (s *organizationService) FireEmployee(ctx context.Context, organizationID string, employeeID string, requestingUserID string) error {
	allowed, err := s.permissionSvc.HasPermission(ctx, requestingUserID, domain.ActionManageEmployees, domain.ObjectOrganization, organizationID)
	if err != nil {
		return fmt.Errorf("failed to check organization permission: %w", err)
	}
	if !allowed {
		return fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNoOrganizationAccess)
	}

	emp, err := s.orgRepo.FindEmployeeByID(ctx, employeeID)
	if err != nil {
		return err
	}
	if emp.OrganizationID != organizationID {
		return fmt.Errorf("%w: employee does not belong to this organization", apperrors.ErrValidation)
	}

	if err := s.removeEmployee(ctx, emp); err != nil {
		return err
	}

	org, err := s.orgRepo.FindOrganizationByID(ctx, organizationID)
	if err == nil {
		s.notifyFired(ctx, org, emp.UserID)
	}
	return nil
}

func (s *organizationService) LeaveOrganization(ctx context.Context, organizationID string, requestingUserID string) error {
	emp, err := s.orgRepo.FindEmployee(ctx, organizationID, requestingUserID)
	if err != nil {
		return err
	}

	if err := s.removeEmployee(ctx, emp); err != nil {
		return err
	}

	org, err := s.orgRepo.FindOrganizationByID(ctx, organizationID)
	if err == nil {
		s.notifyLeft(ctx, org, requestingUserID)
	}
	return nil
}

func (s *organizationService) TransferOwnership(ctx context.Context, organizationID string, newOwnerEmployeeID string, requestingUserID string) (*domain.Organization, error) {
	allowed, err := s.permissionSvc.HasPermission(ctx, requestingUserID, domain.ActionManageEmployees, domain.ObjectOrganization, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to check organization permission: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNoOrganizationAccess)
	}

	org, err := s.orgRepo.FindOrganizationByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	emp, err := s.orgRepo.FindEmployeeByID(ctx, newOwnerEmployeeID)
	if err != nil {
		return nil, err
	}
	if emp.OrganizationID != organizationID {
		return nil, fmt.Errorf("%w: employee does not belong to this organization", apperrors.ErrValidation)
	}

	ibans, err := s.organizationAccountIBANs(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	previousOwnerID := org.OwnerUserID
	newOwnerID := emp.UserID

	// The promoted employee gains the owner-only grants; the previous owner
	// drops to employee level, keeping visibility and account creation.
	add := organizationOwnerGrants(newOwnerID, organizationID)
	add = append(add, organizationOwnerAccountGrants(newOwnerID, ibans)...)

	remove := []domain.Grant{
		{UserID: previousOwnerID, ObjectKind: domain.ObjectOrganization, ObjectID: organizationID, Action: domain.ActionDeleteOrganization},
		{UserID: previousOwnerID, ObjectKind: domain.ObjectOrganization, ObjectID: organizationID, Action: domain.ActionManageEmployees},
	}
	for _, iban := range ibans {
		remove = append(remove,
			domain.Grant{UserID: previousOwnerID, ObjectKind: domain.ObjectAccount, ObjectID: iban, Action: domain.ActionChangeAccount},
			domain.Grant{UserID: previousOwnerID, ObjectKind: domain.ObjectAccount, ObjectID: iban, Action: domain.ActionDeleteAccount},
		)
	}

	org.OwnerUserID = newOwnerID
	demoted := domain.Employee{
		EmployeeID:     uuid.NewString(),
		UserID:         previousOwnerID,
		OrganizationID: organizationID,
		EmployedSince:  time.Now(),
	}

	if err := s.orgRepo.TransferOwnership(ctx, *org, newOwnerEmployeeID, demoted, add, remove); err != nil {
		s.LogError(ctx, err, "failed to transfer ownership", slog.String("organization_id", organizationID))
		return nil, fmt.Errorf("failed to transfer ownership: %w", err)
	}

	s.LogInfo(ctx, "organization ownership transferred",
		slog.String("organization_id", organizationID),
		slog.String("new_owner", newOwnerID))
	s.notifyNewOwner(ctx, org, newOwnerID, previousOwnerID)
	return org, nil
}

// removeEmployee deletes the membership row together with the grants it
// implied.
func (s *organizationService) removeEmployee(ctx context.Context, emp *domain.Employee) error {
	ibans, err := s.organizationAccountIBANs(ctx, emp.OrganizationID)
	if err != nil {
		return err
	}
	revoke := employeeGrants(emp.UserID, emp.OrganizationID, ibans)
	if err := s.orgRepo.DeleteEmployee(ctx, emp.EmployeeID, revoke); err != nil {
		s.LogError(ctx, err, "failed to remove employee", slog.String("employee_id", emp.EmployeeID))
		return fmt.Errorf("failed to remove employee: %w", err)
	}
	return nil
}

func (s *organizationService) organizationAccountIBANs(ctx context.Context, organizationID string) ([]string, error) {
	accounts, err := s.accountRepo.ListAccountsByHolder(ctx, domain.OrganizationHolder(organizationID))
	if err != nil {
		return nil, err
	}
	ibans := make([]string, 0, len(accounts))
	for _, acc := range accounts {
		ibans = append(ibans, acc.IBAN)
	}
	return ibans, nil
}

func (s *organizationService) notifyInvited(ctx context.Context, org *domain.Organization, user *domain.User) {
	target, ok := user.NotifyTarget()
	if !ok {
		return
	}

	owner, err := s.userRepo.FindUserByID(ctx, org.OwnerUserID)
	ownerName := org.OwnerUserID
	if err == nil {
		ownerName = owner.Username
	}

	s.notifier.Enqueue(portssvc.Notification{
		Targets:     []int64{target},
		Title:       "New Invite to Organization",
		Description: fmt.Sprintf("You were invited by **%s** to join **%s** as an employee.", ownerName, org.Name),
		URL:         fmt.Sprintf("%s/me/employment", s.cfg.BaseURL),
	})
}

func (s *organizationService) notifyResolved(ctx context.Context, org *domain.Organization, resolvedByUserID string, accepted bool) {
	person, err := s.userRepo.FindUserByID(ctx, resolvedByUserID)
	if err != nil {
		return
	}

	targets := organizationNotifyTargets(ctx, s.userRepo, s.orgRepo, org)
	if personTarget, ok := person.NotifyTarget(); ok {
		filtered := targets[:0]
		for _, t := range targets {
			if t != personTarget {
				filtered = append(filtered, t)
			}
		}
		targets = filtered
	}
	if len(targets) == 0 {
		return
	}

	var title, description string
	if accepted {
		title = "New Employee"
		description = fmt.Sprintf("**%s** accepted your invite and just joined **%s** as an employee.\n\n"+
			"They now have access to all of your organization's bank accounts and can send money on behalf "+
			"of your organization.", person.Username, org.Name)
	} else {
		title = "Invite Declined"
		description = fmt.Sprintf("**%s** declined your invite to join **%s** as an employee.", person.Username, org.Name)
	}

	s.notifier.Enqueue(portssvc.Notification{
		Targets:     targets,
		Title:       title,
		Description: description,
		URL:         fmt.Sprintf("%s/organizations/%s/employees", s.cfg.BaseURL, org.ID),
	})
}

func (s *organizationService) notifyFired(ctx context.Context, org *domain.Organization, firedUserID string) {
	person, err := s.userRepo.FindUserByID(ctx, firedUserID)
	if err != nil {
		return
	}
	target, ok := person.NotifyTarget()
	if !ok {
		return
	}

	owner, err := s.userRepo.FindUserByID(ctx, org.OwnerUserID)
	ownerName := org.OwnerUserID
	if err == nil {
		ownerName = owner.Username
	}

	s.notifier.Enqueue(portssvc.Notification{
		Targets:     []int64{target},
		Title:       "You were Fired",
		Description: fmt.Sprintf("**%s** just fired you, and you are no longer an employee of **%s**.", ownerName, org.Name),
		URL:         fmt.Sprintf("%s/me", s.cfg.BaseURL),
	})
}

func (s *organizationService) notifyLeft(ctx context.Context, org *domain.Organization, leftUserID string) {
	owner, err := s.userRepo.FindUserByID(ctx, org.OwnerUserID)
	if err != nil {
		return
	}
	target, ok := owner.NotifyTarget()
	if !ok {
		return
	}

	person, err := s.userRepo.FindUserByID(ctx, leftUserID)
	if err != nil {
		return
	}

	s.notifier.Enqueue(portssvc.Notification{
		Targets:     []int64{target},
		Title:       "Employee left Organization",
		Description: fmt.Sprintf("**%s** just left **%s**.", person.Username, org.Name),
		URL:         fmt.Sprintf("%s/organizations/%s/employees", s.cfg.BaseURL, org.ID),
	})
}

func (s *organizationService) notifyNewOwner(ctx context.Context, org *domain.Organization, newOwnerID, previousOwnerID string) {
	newOwner, err := s.userRepo.FindUserByID(ctx, newOwnerID)
	if err != nil {
		return
	}
	previousOwner, err := s.userRepo.FindUserByID(ctx, previousOwnerID)
	if err != nil {
		return
	}

	targets := organizationNotifyTargets(ctx, s.userRepo, s.orgRepo, org)
	if len(targets) == 0 {
		return
	}

	s.notifier.Enqueue(portssvc.Notification{
		Targets: targets,
		Title:   "New Owner of Organization",
		Description: fmt.Sprintf("**%s** was just made the new owner of **%s**. The previous owner was %s.",
			newOwner.Username, org.Name, previousOwner.Username),
		URL: fmt.Sprintf("%s/organizations/%s/employees", s.cfg.BaseURL, org.ID),
	})
}
