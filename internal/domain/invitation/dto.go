package invitation

import (
	"github.com/leavehub/leavehub-backend-go/internal/domain/membership"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/validator"
)

// CreateRequest - POST /invitations
type CreateRequest struct {
	Email           string  `json:"email"`
	FullName        string  `json:"full_name"`
	Role            string  `json:"role"`
	OrganizationID  string  `json:"organization_id"`
	TeamID          *string `json:"team_id,omitempty"`
	PersonalMessage *string `json:"personal_message,omitempty"`
	BirthDate       *string `json:"birth_date,omitempty"` // YYYY-MM-DD
	OnConflict      string  `json:"on_conflict,omitempty"`

	// From JWT, not from the body
	InvitedByUserID string `json:"-"`
}

func (r *CreateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	} else if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email format is invalid",
		})
	}

	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full_name is required",
		})
	}

	if validator.IsEmpty(r.OrganizationID) {
		errs = append(errs, validator.ValidationError{
			Field:   "organization_id",
			Message: "organization_id is required",
		})
	}

	if !membership.Role(r.Role).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: employee, manager, admin",
		})
	}

	if r.BirthDate != nil {
		if _, ok := validator.IsValidDate(*r.BirthDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "birth_date",
				Message: "birth_date must be in YYYY-MM-DD format",
			})
		}
	}

	if _, err := ParseStrategy(r.OnConflict); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "on_conflict",
			Message: "on_conflict must be one of: keep_latest, keep_highest_role, manual_select",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// CodeLookupRequest - POST /invitations/lookup
type CodeLookupRequest struct {
	Code string `json:"code"`
}

// CreateResponse is the only response that carries the generated credentials:
// the inviter needs them to deliver the invitation.
type CreateResponse struct {
	ID               string  `json:"id"`
	Email            string  `json:"email"`
	FullName         string  `json:"full_name"`
	Role             string  `json:"role"`
	OrganizationID   string  `json:"organization_id"`
	TeamID           *string `json:"team_id,omitempty"`
	Token            string  `json:"token"`
	Code             string  `json:"code"`
	Status           string  `json:"status"`
	ExpiresAt        string  `json:"expires_at"`
	CreatedAt        string  `json:"created_at"`
	SupersededCount  int     `json:"superseded_count,omitempty"`
	ActiveMembership bool    `json:"active_membership_exists"`
}

// DetailResponse - GET /invitations/{token} and POST /invitations/lookup.
// Never contains the token or code.
type DetailResponse struct {
	Email            string  `json:"email"`
	FullName         string  `json:"full_name"`
	Role             string  `json:"role"`
	OrganizationID   string  `json:"organization_id"`
	OrganizationName string  `json:"organization_name"`
	TeamID           *string `json:"team_id,omitempty"`
	TeamName         *string `json:"team_name,omitempty"`
	InviterName      string  `json:"inviter_name"`
	PersonalMessage  *string `json:"personal_message,omitempty"`
	Status           string  `json:"status"`
	ExpiresAt        string  `json:"expires_at"`
}

// MyInvitationResponse - GET /invitations/my. Scoped to the authenticated
// owner of the invited email, so the token may travel here: it is what the
// accept call needs.
type MyInvitationResponse struct {
	Token            string  `json:"token"`
	OrganizationName string  `json:"organization_name"`
	TeamName         *string `json:"team_name,omitempty"`
	Role             string  `json:"role"`
	InviterName      string  `json:"inviter_name"`
	PersonalMessage  *string `json:"personal_message,omitempty"`
	ExpiresAt        string  `json:"expires_at"`
	CreatedAt        string  `json:"created_at"`
}

// ConflictItem - GET /invitations/conflicts, the manual_select surface
type ConflictItem struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	TeamID      *string `json:"team_id,omitempty"`
	InvitedByID string  `json:"invited_by_user_id"`
	ExpiresAt   string  `json:"expires_at"`
	CreatedAt   string  `json:"created_at"`
}

// AcceptResponse for invitation acceptance result
type AcceptResponse struct {
	OrganizationID   string  `json:"organization_id"`
	OrganizationName string  `json:"organization_name"`
	MembershipID     string  `json:"membership_id"`
	Role             string  `json:"role"`
	TeamID           *string `json:"team_id,omitempty"`
	AcceptedAt       string  `json:"accepted_at"`
}
