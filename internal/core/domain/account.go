package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// DeletedAccountIBAN identifies the sentinel account that transactions are
// redirected to when a holder is permanently removed. It is always frozen,
// carries no holder and never receives permission grants.
const DeletedAccountIBAN = "00000000-0000-0000-0000-000000000000"

// HolderKind discriminates the tagged union of account holders.
type HolderKind string

const (
	HolderIndividual   HolderKind = "INDIVIDUAL"
	HolderOrganization HolderKind = "ORGANIZATION"
	// HolderNone is only valid for the deleted-account sentinel.
	HolderNone HolderKind = "NONE"
)

// Holder is the owner of an account: exactly one of an individual user or an
// organization. The zero value (HolderNone) is legal only for the sentinel.
type Holder struct {
	Kind           HolderKind `json:"kind"`
	UserID         string     `json:"userID,omitempty"`
	OrganizationID string     `json:"organizationID,omitempty"`
}

// IndividualHolder builds a Holder for a personal account.
func IndividualHolder(userID string) Holder {
	return Holder{Kind: HolderIndividual, UserID: userID}
}

// OrganizationHolder builds a Holder for an organization-held account.
func OrganizationHolder(orgID string) Holder {
	return Holder{Kind: HolderOrganization, OrganizationID: orgID}
}

// NoHolder is the sentinel holder of the deleted account.
func NoHolder() Holder {
	return Holder{Kind: HolderNone}
}

// Validate rejects holders that do not carry exactly the reference their
// kind demands.
func (h Holder) Validate() error {
	switch h.Kind {
	case HolderIndividual:
		if h.UserID == "" || h.OrganizationID != "" {
			return errors.New("individual holder must reference exactly one user")
		}
	case HolderOrganization:
		if h.OrganizationID == "" || h.UserID != "" {
			return errors.New("organization holder must reference exactly one organization")
		}
	case HolderNone:
		if h.UserID != "" || h.OrganizationID != "" {
			return errors.New("sentinel holder must not reference a user or organization")
		}
	default:
		return errors.New("unknown holder kind")
	}
	return nil
}

// Account represents a bank account within the core domain.
type Account struct {
	IBAN                 string           `json:"iban"` // Primary key, random UUID, immutable
	Name                 string           `json:"name"`
	Balance              Money            `json:"balance"` // Balance.CurrencyCode == CurrencyCode always
	CurrencyCode         string           `json:"currencyCode"`
	IsFrozen             bool             `json:"isFrozen"`
	IsDefaultForCurrency bool             `json:"isDefaultForCurrency"` // At most one per (holder, currency)
	IsReserve            bool             `json:"isReserve"`            // Excluded from circulation statistics
	EquilibriumThreshold *decimal.Decimal `json:"equilibriumThreshold"` // Only meaningful for the taxed currency
	Holder               Holder           `json:"holder"`
	CreatedAt            time.Time        `json:"createdAt"`
}

// IsDeletedSentinel reports whether this is the deleted-account sentinel.
func (a *Account) IsDeletedSentinel() bool {
	return a.IBAN == DeletedAccountIBAN
}

// Threshold returns the equilibrium threshold, defaulting to zero when unset.
func (a *Account) Threshold() decimal.Decimal {
	if a.EquilibriumThreshold == nil {
		return decimal.Zero
	}
	return *a.EquilibriumThreshold
}
