package team

import "context"

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	// GetByID retrieves a team by id, scoped to its organization
	GetByID(ctx context.Context, id, organizationID string) (Team, error)

	// Create inserts a new team
	Create(ctx context.Context, t Team) (Team, error)

	// Delete removes a team; invitations referencing it keep living with a
	// nulled team_id
	Delete(ctx context.Context, id string) error
}
