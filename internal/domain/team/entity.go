package team

import "time"

// Team is an optional grouping inside an organization. Invitations hold a
// weak reference to it: deleting a team nulls team_id on its invitations.
type Team struct {
	ID             string
	OrganizationID string
	Name           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
