package organization

import "context"

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	// GetByID retrieves an organization by id
	GetByID(ctx context.Context, id string) (Organization, error)

	// Create inserts a new organization
	Create(ctx context.Context, org Organization) (Organization, error)

	// Delete removes an organization; dependent invitations cascade away with it
	Delete(ctx context.Context, id string) error
}
