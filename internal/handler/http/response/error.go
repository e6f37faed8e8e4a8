package response

import (
	"errors"
	"net/http"

	"github.com/leavehub/leavehub-backend-go/internal/domain/auth"
	"github.com/leavehub/leavehub-backend-go/internal/domain/invitation"
	"github.com/leavehub/leavehub-backend-go/internal/domain/membership"
	"github.com/leavehub/leavehub-backend-go/internal/domain/organization"
	"github.com/leavehub/leavehub-backend-go/internal/domain/team"
	"github.com/leavehub/leavehub-backend-go/internal/domain/user"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses. Messages here are fixed
// strings: a client-supplied token or code never appears in a response body.
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Invitation domain errors
	case errors.Is(err, invitation.ErrInvitationNotFound):
		NotFound(w, "Invitation not found or invalid")
	case errors.Is(err, invitation.ErrInvitationExpired):
		Gone(w, "Invitation has expired")
	case errors.Is(err, invitation.ErrInvitationAlreadyUsed):
		Conflict(w, "Invitation is no longer pending")
	case errors.Is(err, invitation.ErrEmailMismatch):
		Conflict(w, "Your email does not match the invitation email")
	case errors.Is(err, invitation.ErrUnknownStrategy):
		BadRequest(w, "Unknown conflict resolution strategy", nil)
	case errors.Is(err, invitation.ErrCredentialGeneration):
		InternalServerError(w, "Failed to generate invitation credentials")

	// Collaborator domain errors
	case errors.Is(err, organization.ErrOrganizationNotFound):
		NotFound(w, "Organization not found")
	case errors.Is(err, team.ErrTeamNotFound):
		NotFound(w, "Team not found")
	case errors.Is(err, membership.ErrMembershipNotFound):
		NotFound(w, "Membership not found")

	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
