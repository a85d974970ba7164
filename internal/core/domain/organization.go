package domain

import "time"

// Nation is presentation-only classification metadata; it has no ledger effect.
type Nation string

const (
	NationJapan Nation = "JP"
)

// OrganizationType is presentation-only classification metadata.
type OrganizationType string

const (
	OrgTypeCorporation     OrganizationType = "CORP"
	OrgTypeOrganization    OrganizationType = "ORG"
	OrgTypeGovernment      OrganizationType = "GOV"
	OrgTypeNonProfit       OrganizationType = "NPO"
	OrgTypeSpecialInterest OrganizationType = "SIG"
)

// Industry is presentation-only classification metadata.
type Industry string

const (
	IndustryAdvertisement Industry = "AD"
	IndustryFinance       Industry = "F"
	IndustryPress         Industry = "PR"
	IndustryDefense       Industry = "D"
	IndustryOther         Industry = "O"
)

// Organization is a corporation or similar body that can hold shared accounts.
type Organization struct {
	ID               string           `json:"id"` // Human-chosen short code, case-insensitively unique, immutable
	Name             string           `json:"name"`
	OwnerUserID      string           `json:"ownerUserID"`
	Description      string           `json:"description"`
	DiscordServer    string           `json:"discordServer,omitempty"`
	IsPublicViewable bool             `json:"isPublicViewable"`
	Nation           Nation           `json:"nation"`
	OrganizationType OrganizationType `json:"organizationType"`
	Industry         Industry         `json:"industry,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// Employee is the membership of a person in an organization. Its existence
// grants standing delegated access to the organization's accounts.
type Employee struct {
	EmployeeID     string    `json:"employeeID"` // Primary key (UUID)
	UserID         string    `json:"userID"`
	OrganizationID string    `json:"organizationID"`
	EmployedSince  time.Time `json:"employedSince"`
}

// EmployeeInvitation is a pending invite, unique per (user, organization).
// It is consumed (deleted) when accepted or rejected; acceptance creates an
// Employee record.
type EmployeeInvitation struct {
	InvitationID   string    `json:"invitationID"` // Primary key (UUID)
	UserID         string    `json:"userID"`
	OrganizationID string    `json:"organizationID"`
	CreatedAt      time.Time `json:"createdAt"`
}
