package membership

import "context"

// MembershipRepository defines the interface for membership data access
type MembershipRepository interface {
	// Create inserts a new membership row
	Create(ctx context.Context, m Membership) (Membership, error)

	// GetByUserAndOrg retrieves the membership for a (user, organization) pair,
	// active or not
	GetByUserAndOrg(ctx context.Context, userID, organizationID string) (Membership, error)

	// Reactivate updates role/team/join-method on an existing row and flips it
	// active. Used by acceptance when a membership row already exists.
	Reactivate(ctx context.Context, id string, role Role, teamID *string, joinedVia JoinMethod) (Membership, error)

	// ExistsActiveByEmailAndOrg reports whether the email's user already holds
	// an active membership in the organization. Consulted at invitation
	// creation so callers can short-circuit to a role-update flow.
	ExistsActiveByEmailAndOrg(ctx context.Context, email, organizationID string) (bool, error)

	// ListActiveByUser lists the user's active memberships
	ListActiveByUser(ctx context.Context, userID string) ([]Membership, error)
}
