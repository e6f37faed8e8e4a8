package invitation

import "context"

// InvitationService defines the interface for invitation business logic
type InvitationService interface {
	// Create issues a new invitation, applies the caller-selected conflict
	// strategy, and dispatches the invitation email
	Create(ctx context.Context, req CreateRequest) (CreateResponse, error)

	// GetByToken resolves a presented token to a display-ready view (public)
	GetByToken(ctx context.Context, token string) (DetailResponse, error)

	// GetByCode resolves a presented human code; identical semantics
	GetByCode(ctx context.Context, code string) (DetailResponse, error)

	// Accept turns a pending, unexpired invitation plus an authenticated
	// identity into an active organization membership
	Accept(ctx context.Context, token, userID, userEmail string) (AcceptResponse, error)

	// Reject declines a pending invitation on behalf of the invited email
	Reject(ctx context.Context, token, userEmail string) error

	// ListMyInvitations lists pending invitations for the caller's email
	ListMyInvitations(ctx context.Context, email string) ([]MyInvitationResponse, error)

	// ListConflicts surfaces the pending set for an (email, organization)
	// pair so an admin can resolve manually
	ListConflicts(ctx context.Context, email, organizationID string) ([]ConflictItem, error)

	// ExpireDueInvitations runs the batch expiration sweep
	ExpireDueInvitations(ctx context.Context) (int64, error)

	// PurgeOldInvitations deletes non-accepted terminal invitations past the
	// retention window
	PurgeOldInvitations(ctx context.Context) (int64, error)
}
