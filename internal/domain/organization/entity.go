package organization

import "time"

// Organization is the tenant boundary. Invitations never outlive their
// organization.
type Organization struct {
	ID        string
	Name      string
	Slug      string
	LogoURL   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
