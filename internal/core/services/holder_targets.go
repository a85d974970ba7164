package services

import (
	"context"

	"github.com/democraciv/bank_backend/internal/core/domain"
	portsrepo "github.com/democraciv/bank_backend/internal/core/ports/repositories"
)

// holderNotifyTargets resolves the reachable direct message targets of an
// account's holder together with the holder's display name. Users without a
// linked Discord identity or with DMs disabled are unreachable; the sentinel
// account has no targets.
func holderNotifyTargets(ctx context.Context, userRepo portsrepo.UserRepositoryFacade, orgRepo portsrepo.OrganizationRepositoryFacade, acc *domain.Account) ([]int64, string) {
	switch acc.Holder.Kind {
	case domain.HolderIndividual:
		user, err := userRepo.FindUserByID(ctx, acc.Holder.UserID)
		if err != nil {
			return nil, ""
		}
		if target, ok := user.NotifyTarget(); ok {
			return []int64{target}, user.Username
		}
		return nil, user.Username

	case domain.HolderOrganization:
		org, err := orgRepo.FindOrganizationByID(ctx, acc.Holder.OrganizationID)
		if err != nil {
			return nil, ""
		}
		return organizationNotifyTargets(ctx, userRepo, orgRepo, org), org.Name
	}
	return nil, acc.Name
}

// organizationNotifyTargets collects the deduplicated reachable targets of an
// organization: its owner plus every employee.
func organizationNotifyTargets(ctx context.Context, userRepo portsrepo.UserRepositoryFacade, orgRepo portsrepo.OrganizationRepositoryFacade, org *domain.Organization) []int64 {
	userIDs := []string{org.OwnerUserID}
	employees, err := orgRepo.ListEmployeesByOrganization(ctx, org.ID)
	if err == nil {
		for _, emp := range employees {
			userIDs = append(userIDs, emp.UserID)
		}
	}

	users, err := userRepo.FindUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil
	}

	seen := make(map[int64]struct{})
	var targets []int64
	for _, user := range users {
		if target, ok := user.NotifyTarget(); ok {
			if _, dup := seen[target]; !dup {
				seen[target] = struct{}{}
				targets = append(targets, target)
			}
		}
	}
	return targets
}

// holderDisplayName returns the holder display name of an account without
// resolving notification targets.
func holderDisplayName(ctx context.Context, userRepo portsrepo.UserRepositoryFacade, orgRepo portsrepo.OrganizationRepositoryFacade, acc *domain.Account) string {
	switch acc.Holder.Kind {
	case domain.HolderIndividual:
		if user, err := userRepo.FindUserByID(ctx, acc.Holder.UserID); err == nil {
			return user.Username
		}
	case domain.HolderOrganization:
		if org, err := orgRepo.FindOrganizationByID(ctx, acc.Holder.OrganizationID); err == nil {
			return org.Name
		}
	}
	return acc.Name
}
