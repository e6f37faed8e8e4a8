package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/leavehub/leavehub-backend-go/internal/domain/organization"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/database"
)

type organizationRepositoryImpl struct {
	db *database.DB
}

// NewOrganizationRepository creates a new organization repository instance
func NewOrganizationRepository(db *database.DB) organization.OrganizationRepository {
	return &organizationRepositoryImpl{db: db}
}

// GetByID implements organization.OrganizationRepository.
func (r *organizationRepositoryImpl) GetByID(ctx context.Context, id string) (organization.Organization, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, slug, logo_url, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`

	var org organization.Organization
	err := q.QueryRow(ctx, query, id).Scan(
		&org.ID, &org.Name, &org.Slug, &org.LogoURL, &org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return org, organization.ErrOrganizationNotFound
		}
		return org, fmt.Errorf("failed to get organization: %w", err)
	}

	return org, nil
}

// Create implements organization.OrganizationRepository.
func (r *organizationRepositoryImpl) Create(ctx context.Context, org organization.Organization) (organization.Organization, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO organizations (id, name, slug, logo_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, slug, logo_url, created_at, updated_at
	`

	var created organization.Organization
	err := q.QueryRow(ctx, query, org.ID, org.Name, org.Slug, org.LogoURL).Scan(
		&created.ID, &created.Name, &created.Slug, &created.LogoURL,
		&created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return organization.Organization{}, fmt.Errorf("failed to create organization: %w", err)
	}

	return created, nil
}

// Delete implements organization.OrganizationRepository. Invitations cascade
// away with the organization (ON DELETE CASCADE).
func (r *organizationRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return organization.ErrOrganizationNotFound
	}

	return nil
}
