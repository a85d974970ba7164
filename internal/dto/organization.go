package dto

import (
	"time"

	"github.com/democraciv/bank_backend/internal/core/domain"
)

// CreateOrganizationRequest defines the data needed to form an organization.
// The ID is a human-chosen short code and cannot be changed later.
type CreateOrganizationRequest struct {
	ID               string                  `json:"id" binding:"required,max=8"`
	Name             string                  `json:"name" binding:"required,max=100"`
	Description      string                  `json:"description" binding:"max=1000"`
	DiscordServer    string                  `json:"discordServer"`
	IsPublicViewable bool                    `json:"isPublicViewable"`
	Nation           domain.Nation           `json:"nation"`
	OrganizationType domain.OrganizationType `json:"organizationType"`
	Industry         domain.Industry         `json:"industry"`
}

// UpdateOrganizationRequest defines the mutable organization fields.
type UpdateOrganizationRequest struct {
	Name             *string                  `json:"name"`
	Description      *string                  `json:"description"`
	DiscordServer    *string                  `json:"discordServer"`
	IsPublicViewable *bool                    `json:"isPublicViewable"`
	Nation           *domain.Nation           `json:"nation"`
	OrganizationType *domain.OrganizationType `json:"organizationType"`
	Industry         *domain.Industry         `json:"industry"`
}

// OrganizationResponse defines the data returned for an organization.
type OrganizationResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	OwnerUserID      string    `json:"ownerUserID"`
	Description      string    `json:"description"`
	DiscordServer    string    `json:"discordServer,omitempty"`
	IsPublicViewable bool      `json:"isPublicViewable"`
	Nation           string    `json:"nation"`
	OrganizationType string    `json:"organizationType"`
	Industry         string    `json:"industry,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// InviteEmployeeRequest invites a user (by username) to join an organization.
type InviteEmployeeRequest struct {
	Username string `json:"username" binding:"required,max=150"`
}

// ResolveInvitationRequest accepts or rejects a pending invitation.
type ResolveInvitationRequest struct {
	Accept bool `json:"accept"`
}

// TransferOwnershipRequest hands the organization to an existing employee.
type TransferOwnershipRequest struct {
	EmployeeID string `json:"employeeID" binding:"required,uuid"`
}

// EmployeeResponse defines the data returned for an employment record.
type EmployeeResponse struct {
	EmployeeID     string    `json:"employeeID"`
	UserID         string    `json:"userID"`
	OrganizationID string    `json:"organizationID"`
	EmployedSince  time.Time `json:"employedSince"`
}

// InvitationResponse defines the data returned for a pending invitation.
type InvitationResponse struct {
	InvitationID   string    `json:"invitationID"`
	UserID         string    `json:"userID"`
	OrganizationID string    `json:"organizationID"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ToOrganizationResponse converts a domain.Organization to its response DTO.
func ToOrganizationResponse(org *domain.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:               org.ID,
		Name:             org.Name,
		OwnerUserID:      org.OwnerUserID,
		Description:      org.Description,
		DiscordServer:    org.DiscordServer,
		IsPublicViewable: org.IsPublicViewable,
		Nation:           string(org.Nation),
		OrganizationType: string(org.OrganizationType),
		Industry:         string(org.Industry),
		CreatedAt:        org.CreatedAt,
	}
}

// ToOrganizationResponses converts a slice of organizations.
func ToOrganizationResponses(orgs []domain.Organization) []OrganizationResponse {
	out := make([]OrganizationResponse, len(orgs))
	for i := range orgs {
		out[i] = ToOrganizationResponse(&orgs[i])
	}
	return out
}

// ToEmployeeResponse converts a domain.Employee to its response DTO.
func ToEmployeeResponse(emp *domain.Employee) EmployeeResponse {
	return EmployeeResponse{
		EmployeeID:     emp.EmployeeID,
		UserID:         emp.UserID,
		OrganizationID: emp.OrganizationID,
		EmployedSince:  emp.EmployedSince,
	}
}

// ToEmployeeResponses converts a slice of employees.
func ToEmployeeResponses(emps []domain.Employee) []EmployeeResponse {
	out := make([]EmployeeResponse, len(emps))
	for i := range emps {
		out[i] = ToEmployeeResponse(&emps[i])
	}
	return out
}

// ToInvitationResponse converts a domain.EmployeeInvitation to its DTO.
func ToInvitationResponse(inv *domain.EmployeeInvitation) InvitationResponse {
	return InvitationResponse{
		InvitationID:   inv.InvitationID,
		UserID:         inv.UserID,
		OrganizationID: inv.OrganizationID,
		CreatedAt:      inv.CreatedAt,
	}
}

// ToInvitationResponses converts a slice of invitations.
func ToInvitationResponses(invs []domain.EmployeeInvitation) []InvitationResponse {
	out := make([]InvitationResponse, len(invs))
	for i := range invs {
		out[i] = ToInvitationResponse(&invs[i])
	}
	return out
}
