package pgsql

import (
	portsrepo "github.com/democraciv/bank_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	transactionRepo := newPgxTransactionRepository(dbPool, accountRepo)
	organizationRepo := newPgxOrganizationRepository(dbPool)
	permissionRepo := newPgxPermissionRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:      accountRepo,
		TransactionRepo:  transactionRepo,
		OrganizationRepo: organizationRepo,
		PermissionRepo:   permissionRepo,
		UserRepo:         userRepo,
	}
}
