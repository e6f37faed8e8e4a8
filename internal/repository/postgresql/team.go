package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/leavehub/leavehub-backend-go/internal/domain/team"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/database"
)

type teamRepositoryImpl struct {
	db *database.DB
}

// NewTeamRepository creates a new team repository instance
func NewTeamRepository(db *database.DB) team.TeamRepository {
	return &teamRepositoryImpl{db: db}
}

// GetByID implements team.TeamRepository.
func (r *teamRepositoryImpl) GetByID(ctx context.Context, id, organizationID string) (team.Team, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, organization_id, name, created_at, updated_at
		FROM teams
		WHERE id = $1 AND organization_id = $2
	`

	var t team.Team
	err := q.QueryRow(ctx, query, id, organizationID).Scan(
		&t.ID, &t.OrganizationID, &t.Name, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return t, team.ErrTeamNotFound
		}
		return t, fmt.Errorf("failed to get team: %w", err)
	}

	return t, nil
}

// Create implements team.TeamRepository.
func (r *teamRepositoryImpl) Create(ctx context.Context, t team.Team) (team.Team, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO teams (id, organization_id, name)
		VALUES ($1, $2, $3)
		RETURNING id, organization_id, name, created_at, updated_at
	`

	var created team.Team
	err := q.QueryRow(ctx, query, t.ID, t.OrganizationID, t.Name).Scan(
		&created.ID, &created.OrganizationID, &created.Name,
		&created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return team.Team{}, fmt.Errorf("failed to create team: %w", err)
	}

	return created, nil
}

// Delete implements team.TeamRepository. Dependent invitations keep living
// with team_id nulled (ON DELETE SET NULL).
func (r *teamRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return team.ErrTeamNotFound
	}

	return nil
}
