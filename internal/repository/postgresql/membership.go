package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/leavehub/leavehub-backend-go/internal/domain/membership"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/database"
)

type membershipRepositoryImpl struct {
	db *database.DB
}

// NewMembershipRepository creates a new membership repository instance
func NewMembershipRepository(db *database.DB) membership.MembershipRepository {
	return &membershipRepositoryImpl{db: db}
}

const membershipColumns = `
	id, user_id, organization_id, team_id, role, is_active, joined_via,
	created_at, updated_at
`

func scanMembership(row pgx.Row, m *membership.Membership) error {
	return row.Scan(
		&m.ID, &m.UserID, &m.OrganizationID, &m.TeamID, &m.Role,
		&m.IsActive, &m.JoinedVia, &m.CreatedAt, &m.UpdatedAt,
	)
}

// Create implements membership.MembershipRepository.
func (r *membershipRepositoryImpl) Create(ctx context.Context, m membership.Membership) (membership.Membership, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO memberships (id, user_id, organization_id, team_id, role, is_active, joined_via)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + membershipColumns

	var created membership.Membership
	err := scanMembership(q.QueryRow(ctx, query,
		m.ID, m.UserID, m.OrganizationID, m.TeamID, m.Role, m.IsActive, m.JoinedVia,
	), &created)
	if err != nil {
		return membership.Membership{}, fmt.Errorf("failed to create membership: %w", err)
	}

	return created, nil
}

// GetByUserAndOrg implements membership.MembershipRepository.
func (r *membershipRepositoryImpl) GetByUserAndOrg(ctx context.Context, userID, organizationID string) (membership.Membership, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE user_id = $1 AND organization_id = $2
	`

	var m membership.Membership
	err := scanMembership(q.QueryRow(ctx, query, userID, organizationID), &m)
	if err != nil {
		if err == pgx.ErrNoRows {
			return m, membership.ErrMembershipNotFound
		}
		return m, fmt.Errorf("failed to get membership: %w", err)
	}

	return m, nil
}

// Reactivate implements membership.MembershipRepository.
func (r *membershipRepositoryImpl) Reactivate(ctx context.Context, id string, role membership.Role, teamID *string, joinedVia membership.JoinMethod) (membership.Membership, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE memberships
		SET role = $1, team_id = $2, joined_via = $3, is_active = true, updated_at = NOW()
		WHERE id = $4
		RETURNING ` + membershipColumns

	var updated membership.Membership
	err := scanMembership(q.QueryRow(ctx, query, role, teamID, joinedVia, id), &updated)
	if err != nil {
		if err == pgx.ErrNoRows {
			return membership.Membership{}, membership.ErrMembershipNotFound
		}
		return membership.Membership{}, fmt.Errorf("failed to reactivate membership: %w", err)
	}

	return updated, nil
}

// ExistsActiveByEmailAndOrg implements membership.MembershipRepository.
func (r *membershipRepositoryImpl) ExistsActiveByEmailAndOrg(ctx context.Context, email, organizationID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS(
			SELECT 1
			FROM memberships m
			JOIN users u ON u.id = m.user_id
			WHERE lower(u.email) = $1 AND m.organization_id = $2 AND m.is_active
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, email, organizationID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check active membership: %w", err)
	}

	return exists, nil
}

// ListActiveByUser implements membership.MembershipRepository.
func (r *membershipRepositoryImpl) ListActiveByUser(ctx context.Context, userID string) ([]membership.Membership, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE user_id = $1 AND is_active
		ORDER BY created_at ASC
	`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var memberships []membership.Membership
	for rows.Next() {
		var m membership.Membership
		if err := scanMembership(rows, &m); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return memberships, nil
}
