package invitation

import "errors"

var (
	// ErrInvitationNotFound covers both truly absent credentials and rows no
	// longer pending: an unauthenticated caller must not be able to tell the
	// two apart.
	ErrInvitationNotFound = errors.New("invitation not found or invalid")

	// ErrInvitationExpired is the one negative outcome deliberately
	// distinguishable from not-found.
	ErrInvitationExpired = errors.New("invitation has expired")

	ErrInvitationAlreadyUsed = errors.New("invitation is no longer pending")
	ErrEmailMismatch         = errors.New("your email does not match the invitation email")
	ErrIllegalTransition     = errors.New("illegal invitation status transition")
	ErrCredentialGeneration  = errors.New("failed to generate a unique invitation credential")
	ErrUnknownStrategy       = errors.New("unknown conflict resolution strategy")
)
