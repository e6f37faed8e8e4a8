package invitation

import (
	"context"
	"time"
)

// InvitationRepository defines the interface for invitation data access
type InvitationRepository interface {
	// Create inserts a new invitation record. Unique-constraint and
	// foreign-key violations surface as pgconn errors for the service to
	// translate.
	Create(ctx context.Context, inv Invitation) (Invitation, error)

	// GetByToken retrieves a bare invitation by token
	GetByToken(ctx context.Context, token string) (Invitation, error)

	// GetByTokenWithDetails retrieves an invitation by token with joined
	// organization/team/inviter display data
	GetByTokenWithDetails(ctx context.Context, token string) (InvitationWithDetails, error)

	// GetByCodeWithDetails is GetByTokenWithDetails keyed on the human code
	GetByCodeWithDetails(ctx context.Context, code string) (InvitationWithDetails, error)

	// ListPendingByEmailAndOrg lists pending invitations for a normalized
	// email inside one organization, ordered oldest to newest. Used by
	// conflict detection.
	ListPendingByEmailAndOrg(ctx context.Context, email, organizationID string) ([]Invitation, error)

	// ListPendingByEmail lists pending, unexpired invitations for an email
	// across organizations (the "my invitations" view)
	ListPendingByEmail(ctx context.Context, email string) ([]InvitationWithDetails, error)

	// UpdateStatus compare-and-swaps the invitation from one status to
	// another, stamping accepted_at when the target is accepted. It returns
	// false when no row holds id with status from: the row is absent or was
	// already transitioned by a concurrent caller. This is the linearization
	// point for racing accepts.
	UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) (bool, error)

	// ExpireDue flips every pending invitation past its expiry to expired.
	// Idempotent: rows in any other status are never touched.
	ExpireDue(ctx context.Context, now time.Time) (int64, error)

	// DeleteTerminalBefore removes non-accepted terminal invitations whose
	// expiry predates the cutoff (retention cleanup)
	DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Delete removes a single invitation
	Delete(ctx context.Context, id string) error
}
