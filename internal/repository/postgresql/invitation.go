package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/leavehub/leavehub-backend-go/internal/domain/invitation"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/database"
)

type invitationRepositoryImpl struct {
	db *database.DB
}

// NewInvitationRepository creates a new invitation repository instance
func NewInvitationRepository(db *database.DB) invitation.InvitationRepository {
	return &invitationRepositoryImpl{db: db}
}

const invitationColumns = `
	id, email, full_name, birth_date, role, organization_id, team_id,
	invited_by_user_id, token, code, personal_message, status,
	expires_at, accepted_at, created_at, updated_at
`

func scanInvitation(row pgx.Row, inv *invitation.Invitation) error {
	return row.Scan(
		&inv.ID, &inv.Email, &inv.FullName, &inv.BirthDate, &inv.Role,
		&inv.OrganizationID, &inv.TeamID, &inv.InvitedByUserID,
		&inv.Token, &inv.Code, &inv.PersonalMessage, &inv.Status,
		&inv.ExpiresAt, &inv.AcceptedAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
}

// Create implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) Create(ctx context.Context, inv invitation.Invitation) (invitation.Invitation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO invitations (
			id, email, full_name, birth_date, role, organization_id, team_id,
			invited_by_user_id, token, code, personal_message, status, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + invitationColumns

	var created invitation.Invitation
	err := scanInvitation(q.QueryRow(ctx, query,
		inv.ID, inv.Email, inv.FullName, inv.BirthDate, inv.Role,
		inv.OrganizationID, inv.TeamID, inv.InvitedByUserID,
		inv.Token, inv.Code, inv.PersonalMessage, inv.Status, inv.ExpiresAt,
	), &created)
	if err != nil {
		// Constraint violations pass through unwrapped so the service can
		// translate them (code collision retry, FK mapping)
		return invitation.Invitation{}, err
	}

	return created, nil
}

// GetByToken implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) GetByToken(ctx context.Context, token string) (invitation.Invitation, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE token = $1`

	var inv invitation.Invitation
	err := scanInvitation(q.QueryRow(ctx, query, token), &inv)
	if err != nil {
		if err == pgx.ErrNoRows {
			return inv, invitation.ErrInvitationNotFound
		}
		return inv, fmt.Errorf("failed to get invitation by token: %w", err)
	}

	return inv, nil
}

const invitationDetailQuery = `
	SELECT
		i.id, i.email, i.full_name, i.birth_date, i.role, i.organization_id,
		i.team_id, i.invited_by_user_id, i.token, i.code, i.personal_message,
		i.status, i.expires_at, i.accepted_at, i.created_at, i.updated_at,
		o.name AS organization_name,
		t.name AS team_name,
		u.full_name AS inviter_name
	FROM invitations i
	JOIN organizations o ON o.id = i.organization_id
	LEFT JOIN teams t ON t.id = i.team_id
	JOIN users u ON u.id = i.invited_by_user_id
`

func scanInvitationDetail(row pgx.Row, inv *invitation.InvitationWithDetails) error {
	return row.Scan(
		&inv.ID, &inv.Email, &inv.FullName, &inv.BirthDate, &inv.Role,
		&inv.OrganizationID, &inv.TeamID, &inv.InvitedByUserID,
		&inv.Token, &inv.Code, &inv.PersonalMessage, &inv.Status,
		&inv.ExpiresAt, &inv.AcceptedAt, &inv.CreatedAt, &inv.UpdatedAt,
		&inv.OrganizationName, &inv.TeamName, &inv.InviterName,
	)
}

// GetByTokenWithDetails implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) GetByTokenWithDetails(ctx context.Context, token string) (invitation.InvitationWithDetails, error) {
	q := GetQuerier(ctx, r.db)

	var inv invitation.InvitationWithDetails
	err := scanInvitationDetail(q.QueryRow(ctx, invitationDetailQuery+` WHERE i.token = $1`, token), &inv)
	if err != nil {
		if err == pgx.ErrNoRows {
			return inv, invitation.ErrInvitationNotFound
		}
		return inv, fmt.Errorf("failed to get invitation by token: %w", err)
	}

	return inv, nil
}

// GetByCodeWithDetails implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) GetByCodeWithDetails(ctx context.Context, code string) (invitation.InvitationWithDetails, error) {
	q := GetQuerier(ctx, r.db)

	var inv invitation.InvitationWithDetails
	err := scanInvitationDetail(q.QueryRow(ctx, invitationDetailQuery+` WHERE i.code = $1`, code), &inv)
	if err != nil {
		if err == pgx.ErrNoRows {
			return inv, invitation.ErrInvitationNotFound
		}
		return inv, fmt.Errorf("failed to get invitation by code: %w", err)
	}

	return inv, nil
}

// ListPendingByEmailAndOrg implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) ListPendingByEmailAndOrg(ctx context.Context, email, organizationID string) ([]invitation.Invitation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE email = $1 AND organization_id = $2 AND status = 'pending'
		ORDER BY created_at ASC
	`

	rows, err := q.Query(ctx, query, email, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending invitations: %w", err)
	}
	defer rows.Close()

	var invitations []invitation.Invitation
	for rows.Next() {
		var inv invitation.Invitation
		if err := scanInvitation(rows, &inv); err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, inv)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return invitations, nil
}

// ListPendingByEmail implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) ListPendingByEmail(ctx context.Context, email string) ([]invitation.InvitationWithDetails, error) {
	q := GetQuerier(ctx, r.db)

	query := invitationDetailQuery + `
		WHERE i.email = $1 AND i.status = 'pending' AND i.expires_at > NOW()
		ORDER BY i.created_at DESC
	`

	rows, err := q.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending invitations: %w", err)
	}
	defer rows.Close()

	var invitations []invitation.InvitationWithDetails
	for rows.Next() {
		var inv invitation.InvitationWithDetails
		if err := scanInvitationDetail(rows, &inv); err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, inv)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return invitations, nil
}

// UpdateStatus implements invitation.InvitationRepository. The WHERE clause
// on the current status makes this a compare-and-swap: a concurrent caller
// that already moved the row gets false, not a double apply.
func (r *invitationRepositoryImpl) UpdateStatus(ctx context.Context, id string, from, to invitation.Status, at time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE invitations
		SET status = $1,
			accepted_at = CASE WHEN $1 = 'accepted' THEN $2 ELSE accepted_at END,
			updated_at = $2
		WHERE id = $3 AND status = $4
	`

	tag, err := q.Exec(ctx, query, to, at, id, from)
	if err != nil {
		return false, fmt.Errorf("failed to update invitation status: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// ExpireDue implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	// Only pending rows past expiry; terminal rows are untouchable, which
	// makes the sweep idempotent and safe to run concurrently
	query := `
		UPDATE invitations
		SET status = 'expired', updated_at = $1
		WHERE status = 'pending' AND expires_at <= $1
	`

	tag, err := q.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire due invitations: %w", err)
	}

	return tag.RowsAffected(), nil
}

// DeleteTerminalBefore implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM invitations
		WHERE status IN ('rejected', 'expired', 'superseded') AND expires_at < $1
	`

	tag, err := q.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge old invitations: %w", err)
	}

	return tag.RowsAffected(), nil
}

// Delete implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM invitations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return invitation.ErrInvitationNotFound
	}

	return nil
}
