package membership

import "time"

// JoinMethod records how a membership came to exist.
type JoinMethod string

const (
	JoinedViaInvitation JoinMethod = "invitation"
	JoinedViaCreation   JoinMethod = "creation"
)

// Membership binds a user to an organization with a role. At most one row
// exists per (user, organization); acceptance reactivates an existing row
// instead of inserting a second one.
type Membership struct {
	ID             string
	UserID         string
	OrganizationID string
	TeamID         *string
	Role           Role
	IsActive       bool
	JoinedVia      JoinMethod
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
