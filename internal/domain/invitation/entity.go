package invitation

import (
	"time"

	"github.com/leavehub/leavehub-backend-go/internal/domain/membership"
)

// Status represents the status of an invitation
type Status string

const (
	StatusPending    Status = "pending"
	StatusAccepted   Status = "accepted"
	StatusRejected   Status = "rejected"
	StatusExpired    Status = "expired"
	StatusSuperseded Status = "superseded"
)

// IsTerminal reports whether no further transition can leave s. Pending is
// the only non-terminal status.
func (s Status) IsTerminal() bool {
	return s != StatusPending
}

// Event is a request to move an invitation along the state machine.
type Event string

const (
	EventAccept    Event = "accept"
	EventReject    Event = "reject"
	EventExpire    Event = "expire"
	EventSupersede Event = "supersede"
)

// transitions is the full state machine. Every legal move starts at pending;
// nothing ever re-enters pending.
var transitions = map[Status]map[Event]Status{
	StatusPending: {
		EventAccept:    StatusAccepted,
		EventReject:    StatusRejected,
		EventExpire:    StatusExpired,
		EventSupersede: StatusSuperseded,
	},
}

// Transition returns the status reached by applying event to current.
// It is the only place a status change is legal.
func Transition(current Status, event Event) (Status, error) {
	next, ok := transitions[current][event]
	if !ok {
		return current, ErrIllegalTransition
	}
	return next, nil
}

// Invitation represents a time-bounded, single-use credential granting a
// named person a role inside an organization.
type Invitation struct {
	ID              string
	Email           string // stored lowercased
	FullName        string
	BirthDate       *time.Time
	Role            membership.Role
	OrganizationID  string
	TeamID          *string
	InvitedByUserID string
	Token           string
	Code            string
	PersonalMessage *string
	Status          Status
	ExpiresAt       time.Time
	AcceptedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// InvitationWithDetails contains invitation data with joined related names
type InvitationWithDetails struct {
	Invitation
	OrganizationName string
	TeamName         *string
	InviterName      string
}

// IsExpired is the single expiry predicate. It is value-based: a pending row
// past its expires_at counts as expired even before any sweep has flipped its
// status, and rows already in a terminal state are never re-evaluated.
func (i *Invitation) IsExpired(now time.Time) bool {
	return i.Status == StatusPending && !now.Before(i.ExpiresAt)
}

// CanBeAccepted checks if the invitation can be accepted at the given time
func (i *Invitation) CanBeAccepted(now time.Time) bool {
	return i.Status == StatusPending && !i.IsExpired(now)
}
