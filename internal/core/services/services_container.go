package services

import (
	portsrepo "github.com/democraciv/bank_backend/internal/core/ports/repositories"
	portssvc "github.com/democraciv/bank_backend/internal/core/ports/services"
	"github.com/democraciv/bank_backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, notifier portssvc.Notifier) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{Notifier: notifier}

	// Permission service first since nearly everything authorizes through it
	container.Permission = NewPermissionService(repos.PermissionRepo)

	container.User = NewUserService(repos.UserRepo, notifier, cfg)
	container.Account = NewAccountService(repos.AccountRepo, repos.OrganizationRepo, container.Permission, cfg)
	container.Organization = NewOrganizationService(repos.OrganizationRepo, repos.AccountRepo, repos.UserRepo, container.Permission, notifier, cfg)
	container.Transaction = NewTransactionService(repos.TransactionRepo, repos.AccountRepo, repos.OrganizationRepo, repos.UserRepo, container.Permission, notifier, cfg)
	container.Equalization = NewEqualizationService(repos.AccountRepo, repos.OrganizationRepo, repos.UserRepo, container.Transaction, notifier, cfg)
	container.Stats = NewStatsService(repos.AccountRepo, repos.TransactionRepo, repos.OrganizationRepo, cfg)

	return container
}

// Compile time interface implementation checks
var (
	_ portssvc.AccountSvcFacade      = (*accountService)(nil)
	_ portssvc.TransactionSvcFacade  = (*transactionService)(nil)
	_ portssvc.OrganizationSvcFacade = (*organizationService)(nil)
	_ portssvc.EqualizationSvcFacade = (*equalizationService)(nil)
	_ portssvc.PermissionSvcFacade   = (*permissionService)(nil)
	_ portssvc.UserSvcFacade         = (*userService)(nil)
	_ portssvc.StatsSvcFacade        = (*statsService)(nil)
)
