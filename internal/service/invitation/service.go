package invitation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leavehub/leavehub-backend-go/internal/config"
	"github.com/leavehub/leavehub-backend-go/internal/domain/invitation"
	"github.com/leavehub/leavehub-backend-go/internal/domain/membership"
	"github.com/leavehub/leavehub-backend-go/internal/domain/organization"
	"github.com/leavehub/leavehub-backend-go/internal/domain/team"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/clock"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/database"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/email"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/token"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/validator"
)

// unknownOrganizationName is the display fallback when the joined
// organization name is unexpectedly absent.
const unknownOrganizationName = "Unknown Organization"

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type invitationServiceImpl struct {
	tx             database.TxRunner
	invitationRepo invitation.InvitationRepository
	orgRepo        organization.OrganizationRepository
	teamRepo       team.TeamRepository
	membershipRepo membership.MembershipRepository
	generator      token.Generator
	clock          clock.Clock
	emailService   email.EmailService
	cfg            config.InvitationConfig
}

// NewInvitationService creates a new invitation service instance
func NewInvitationService(
	tx database.TxRunner,
	invitationRepo invitation.InvitationRepository,
	orgRepo organization.OrganizationRepository,
	teamRepo team.TeamRepository,
	membershipRepo membership.MembershipRepository,
	generator token.Generator,
	clk clock.Clock,
	emailService email.EmailService,
	cfg config.InvitationConfig,
) invitation.InvitationService {
	return &invitationServiceImpl{
		tx:             tx,
		invitationRepo: invitationRepo,
		orgRepo:        orgRepo,
		teamRepo:       teamRepo,
		membershipRepo: membershipRepo,
		generator:      generator,
		clock:          clk,
		emailService:   emailService,
		cfg:            cfg,
	}
}

// Create implements invitation.InvitationService.
func (s *invitationServiceImpl) Create(ctx context.Context, req invitation.CreateRequest) (invitation.CreateResponse, error) {
	if err := req.Validate(); err != nil {
		return invitation.CreateResponse{}, err
	}

	normalizedEmail := validator.NormalizeEmail(req.Email)
	strategy, err := invitation.ParseStrategy(req.OnConflict)
	if err != nil {
		return invitation.CreateResponse{}, err
	}

	org, err := s.orgRepo.GetByID(ctx, req.OrganizationID)
	if err != nil {
		return invitation.CreateResponse{}, err
	}

	if req.TeamID != nil {
		if _, err := s.teamRepo.GetByID(ctx, *req.TeamID, org.ID); err != nil {
			return invitation.CreateResponse{}, err
		}
	}

	// Surface an existing active membership so the caller can switch to a
	// role-update flow. Creation is still permitted.
	hasActiveMembership, err := s.membershipRepo.ExistsActiveByEmailAndOrg(ctx, normalizedEmail, org.ID)
	if err != nil {
		return invitation.CreateResponse{}, fmt.Errorf("failed to check existing membership: %w", err)
	}

	var birthDate *time.Time
	if req.BirthDate != nil {
		parsed, _ := validator.IsValidDate(*req.BirthDate)
		birthDate = &parsed
	}

	now := s.clock.Now()
	inv := invitation.Invitation{
		ID:              uuid.New().String(),
		Email:           normalizedEmail,
		FullName:        req.FullName,
		BirthDate:       birthDate,
		Role:            membership.Role(req.Role),
		OrganizationID:  org.ID,
		TeamID:          req.TeamID,
		InvitedByUserID: req.InvitedByUserID,
		PersonalMessage: req.PersonalMessage,
		Status:          invitation.StatusPending,
		ExpiresAt:       now.Add(s.cfg.ValidityWindow),
	}

	var created invitation.Invitation
	var supersededCount int
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		created, err = s.insertWithFreshCredentials(txCtx, inv)
		if err != nil {
			return err
		}

		supersededCount, err = s.resolveConflicts(txCtx, strategy, created, now)
		return err
	})
	if err != nil {
		return invitation.CreateResponse{}, err
	}

	// Email delivery is best-effort and must not undo a committed invitation
	if err := s.emailService.SendInvitation(email.InvitationData{
		To:               created.Email,
		FullName:         created.FullName,
		OrganizationName: org.Name,
		PersonalMessage:  created.PersonalMessage,
		Link:             fmt.Sprintf("%s/invitations/%s", strings.TrimRight(s.cfg.FrontendURL, "/"), created.Token),
		Code:             created.Code,
		ExpiresAt:        created.ExpiresAt.Format(time.RFC1123),
	}); err != nil {
		slog.Warn("Failed to send invitation email", "invitation_id", created.ID, "error", err)
	}

	return invitation.CreateResponse{
		ID:               created.ID,
		Email:            created.Email,
		FullName:         created.FullName,
		Role:             string(created.Role),
		OrganizationID:   created.OrganizationID,
		TeamID:           created.TeamID,
		Token:            created.Token,
		Code:             created.Code,
		Status:           string(created.Status),
		ExpiresAt:        created.ExpiresAt.Format(time.RFC3339),
		CreatedAt:        created.CreatedAt.Format(time.RFC3339),
		SupersededCount:  supersededCount,
		ActiveMembership: hasActiveMembership,
	}, nil
}

// insertWithFreshCredentials inserts the invitation, regenerating both
// credentials on a unique-constraint collision. Collisions are vanishingly
// rare given the keyspace, so a small bounded retry is enough; exhausting it
// means the entropy source is broken and the error is fatal.
func (s *invitationServiceImpl) insertWithFreshCredentials(ctx context.Context, inv invitation.Invitation) (invitation.Invitation, error) {
	attempts := s.cfg.MaxCodeAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		tok, err := s.generator.Token()
		if err != nil {
			return invitation.Invitation{}, fmt.Errorf("%w: %v", invitation.ErrCredentialGeneration, err)
		}
		code, err := s.generator.Code()
		if err != nil {
			return invitation.Invitation{}, fmt.Errorf("%w: %v", invitation.ErrCredentialGeneration, err)
		}

		inv.Token = tok
		inv.Code = code

		created, err := s.invitationRepo.Create(ctx, inv)
		if err == nil {
			return created, nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				slog.Warn("Invitation credential collision, regenerating",
					"constraint", pgErr.ConstraintName, "attempt", attempt)
				continue
			case pgForeignKeyViolation:
				return invitation.Invitation{}, s.translateForeignKey(pgErr)
			}
		}
		return invitation.Invitation{}, fmt.Errorf("failed to create invitation: %w", err)
	}

	return invitation.Invitation{}, invitation.ErrCredentialGeneration
}

// translateForeignKey maps constraint violations to domain errors so raw
// storage errors never reach the caller.
func (s *invitationServiceImpl) translateForeignKey(pgErr *pgconn.PgError) error {
	switch {
	case strings.Contains(pgErr.ConstraintName, "organization"):
		return organization.ErrOrganizationNotFound
	case strings.Contains(pgErr.ConstraintName, "team"):
		return team.ErrTeamNotFound
	default:
		return fmt.Errorf("failed to create invitation: %w", pgErr)
	}
}

// resolveConflicts applies the chosen strategy to every other pending
// invitation for the same (email, organization) pair.
func (s *invitationServiceImpl) resolveConflicts(ctx context.Context, strategy invitation.ConflictStrategy, created invitation.Invitation, now time.Time) (int, error) {
	pending, err := s.invitationRepo.ListPendingByEmailAndOrg(ctx, created.Email, created.OrganizationID)
	if err != nil {
		return 0, fmt.Errorf("failed to list conflicting invitations: %w", err)
	}

	count := 0
	for _, stale := range strategy.Resolve(pending) {
		if stale.ID == created.ID {
			continue
		}
		ok, err := s.invitationRepo.UpdateStatus(ctx, stale.ID, invitation.StatusPending, invitation.StatusSuperseded, now)
		if err != nil {
			return count, fmt.Errorf("failed to supersede invitation: %w", err)
		}
		// A losing CAS means another writer already resolved the row; fine
		if ok {
			count++
		}
	}
	return count, nil
}

// GetByToken implements invitation.InvitationService.
func (s *invitationServiceImpl) GetByToken(ctx context.Context, tok string) (invitation.DetailResponse, error) {
	det, err := s.invitationRepo.GetByTokenWithDetails(ctx, tok)
	return s.present(det, err)
}

// GetByCode implements invitation.InvitationService.
func (s *invitationServiceImpl) GetByCode(ctx context.Context, code string) (invitation.DetailResponse, error) {
	det, err := s.invitationRepo.GetByCodeWithDetails(ctx, code)
	return s.present(det, err)
}

// present applies the lookup resolution order shared by both keys: absent and
// terminal rows are indistinguishable, expiry is the one distinguishable
// negative outcome, and the credentials never appear in the response.
func (s *invitationServiceImpl) present(det invitation.InvitationWithDetails, err error) (invitation.DetailResponse, error) {
	if err != nil {
		if errors.Is(err, invitation.ErrInvitationNotFound) {
			return invitation.DetailResponse{}, invitation.ErrInvitationNotFound
		}
		return invitation.DetailResponse{}, err
	}

	if det.Status != invitation.StatusPending {
		return invitation.DetailResponse{}, invitation.ErrInvitationNotFound
	}

	if det.IsExpired(s.clock.Now()) {
		return invitation.DetailResponse{}, invitation.ErrInvitationExpired
	}

	orgName := det.OrganizationName
	if orgName == "" {
		orgName = unknownOrganizationName
	}

	return invitation.DetailResponse{
		Email:            det.Email,
		FullName:         det.FullName,
		Role:             string(det.Role),
		OrganizationID:   det.OrganizationID,
		OrganizationName: orgName,
		TeamID:           det.TeamID,
		TeamName:         det.TeamName,
		InviterName:      det.InviterName,
		PersonalMessage:  det.PersonalMessage,
		Status:           string(det.Status),
		ExpiresAt:        det.ExpiresAt.Format(time.RFC3339),
	}, nil
}

// Accept implements invitation.InvitationService.
func (s *invitationServiceImpl) Accept(ctx context.Context, tok, userID, userEmail string) (invitation.AcceptResponse, error) {
	det, err := s.invitationRepo.GetByTokenWithDetails(ctx, tok)
	if err != nil {
		if errors.Is(err, invitation.ErrInvitationNotFound) {
			return invitation.AcceptResponse{}, invitation.ErrInvitationNotFound
		}
		return invitation.AcceptResponse{}, err
	}

	now := s.clock.Now()

	// Re-validate at acceptance time; lookup may be arbitrarily stale
	if det.Status != invitation.StatusPending {
		return invitation.AcceptResponse{}, invitation.ErrInvitationAlreadyUsed
	}
	if det.IsExpired(now) {
		return invitation.AcceptResponse{}, invitation.ErrInvitationExpired
	}
	if validator.NormalizeEmail(userEmail) != det.Email {
		return invitation.AcceptResponse{}, invitation.ErrEmailMismatch
	}

	var member membership.Membership
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		// The CAS on status is the linearization point: of two racing
		// accepts exactly one flips pending to accepted
		ok, err := s.invitationRepo.UpdateStatus(txCtx, det.ID, invitation.StatusPending, invitation.StatusAccepted, now)
		if err != nil {
			return err
		}
		if !ok {
			return invitation.ErrInvitationAlreadyUsed
		}

		existing, err := s.membershipRepo.GetByUserAndOrg(txCtx, userID, det.OrganizationID)
		switch {
		case err == nil:
			// Active or inactive: reactivate in place, never a second row
			member, err = s.membershipRepo.Reactivate(txCtx, existing.ID, det.Role, det.TeamID, membership.JoinedViaInvitation)
			return err
		case errors.Is(err, membership.ErrMembershipNotFound):
			member, err = s.membershipRepo.Create(txCtx, membership.Membership{
				ID:             uuid.New().String(),
				UserID:         userID,
				OrganizationID: det.OrganizationID,
				TeamID:         det.TeamID,
				Role:           det.Role,
				IsActive:       true,
				JoinedVia:      membership.JoinedViaInvitation,
			})
			return err
		default:
			return fmt.Errorf("failed to load membership: %w", err)
		}
	})
	if err != nil {
		return invitation.AcceptResponse{}, err
	}

	orgName := det.OrganizationName
	if orgName == "" {
		orgName = unknownOrganizationName
	}

	return invitation.AcceptResponse{
		OrganizationID:   det.OrganizationID,
		OrganizationName: orgName,
		MembershipID:     member.ID,
		Role:             string(member.Role),
		TeamID:           member.TeamID,
		AcceptedAt:       now.Format(time.RFC3339),
	}, nil
}

// Reject implements invitation.InvitationService.
func (s *invitationServiceImpl) Reject(ctx context.Context, tok, userEmail string) error {
	det, err := s.invitationRepo.GetByTokenWithDetails(ctx, tok)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	if det.Status != invitation.StatusPending {
		return invitation.ErrInvitationNotFound
	}
	if det.IsExpired(now) {
		return invitation.ErrInvitationExpired
	}
	if validator.NormalizeEmail(userEmail) != det.Email {
		return invitation.ErrEmailMismatch
	}

	ok, err := s.invitationRepo.UpdateStatus(ctx, det.ID, invitation.StatusPending, invitation.StatusRejected, now)
	if err != nil {
		return err
	}
	if !ok {
		return invitation.ErrInvitationAlreadyUsed
	}

	return nil
}

// ListMyInvitations implements invitation.InvitationService.
func (s *invitationServiceImpl) ListMyInvitations(ctx context.Context, emailAddr string) ([]invitation.MyInvitationResponse, error) {
	pending, err := s.invitationRepo.ListPendingByEmail(ctx, validator.NormalizeEmail(emailAddr))
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	results := make([]invitation.MyInvitationResponse, 0, len(pending))
	for _, det := range pending {
		// The query already filters on expiry, but never trust status alone
		if det.IsExpired(now) {
			continue
		}
		orgName := det.OrganizationName
		if orgName == "" {
			orgName = unknownOrganizationName
		}
		results = append(results, invitation.MyInvitationResponse{
			Token:            det.Token,
			OrganizationName: orgName,
			TeamName:         det.TeamName,
			Role:             string(det.Role),
			InviterName:      det.InviterName,
			PersonalMessage:  det.PersonalMessage,
			ExpiresAt:        det.ExpiresAt.Format(time.RFC3339),
			CreatedAt:        det.CreatedAt.Format(time.RFC3339),
		})
	}

	return results, nil
}

// ListConflicts implements invitation.InvitationService.
func (s *invitationServiceImpl) ListConflicts(ctx context.Context, emailAddr, organizationID string) ([]invitation.ConflictItem, error) {
	pending, err := s.invitationRepo.ListPendingByEmailAndOrg(ctx, validator.NormalizeEmail(emailAddr), organizationID)
	if err != nil {
		return nil, err
	}

	items := make([]invitation.ConflictItem, 0, len(pending))
	for _, inv := range pending {
		items = append(items, invitation.ConflictItem{
			ID:          inv.ID,
			Email:       inv.Email,
			Role:        string(inv.Role),
			TeamID:      inv.TeamID,
			InvitedByID: inv.InvitedByUserID,
			ExpiresAt:   inv.ExpiresAt.Format(time.RFC3339),
			CreatedAt:   inv.CreatedAt.Format(time.RFC3339),
		})
	}

	return items, nil
}

// ExpireDueInvitations implements invitation.InvitationService.
func (s *invitationServiceImpl) ExpireDueInvitations(ctx context.Context) (int64, error) {
	return s.invitationRepo.ExpireDue(ctx, s.clock.Now())
}

// PurgeOldInvitations implements invitation.InvitationService.
func (s *invitationServiceImpl) PurgeOldInvitations(ctx context.Context) (int64, error) {
	cutoff := s.clock.Now().AddDate(0, 0, -s.cfg.RetentionDays)
	return s.invitationRepo.DeleteTerminalBefore(ctx, cutoff)
}
