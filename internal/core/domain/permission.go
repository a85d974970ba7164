package domain

// Action is an object-level permission on an account or organization.
type Action string

const (
	// Account actions.
	ActionViewAccount   Action = "view_account"
	ActionChangeAccount Action = "change_account"
	ActionDeleteAccount Action = "delete_account"

	// Organization actions.
	ActionViewOrganization   Action = "view_organization"
	ActionChangeOrganization Action = "change_organization"
	ActionDeleteOrganization Action = "delete_organization"
	ActionManageEmployees    Action = "manage_employees"
	ActionAddOrgAccount      Action = "add_org_account"
)

// ObjectKind distinguishes the two grantable object types.
type ObjectKind string

const (
	ObjectAccount      ObjectKind = "ACCOUNT"
	ObjectOrganization ObjectKind = "ORGANIZATION"
)

// Grant is one derived permission row: user may perform action on object.
// Grants are a cache over the ownership and employment relationships and are
// recomputed whenever those change; they are never authoritative on their own.
type Grant struct {
	UserID     string     `json:"userID"`
	ObjectKind ObjectKind `json:"objectKind"`
	ObjectID   string     `json:"objectID"`
	Action     Action     `json:"action"`
}
