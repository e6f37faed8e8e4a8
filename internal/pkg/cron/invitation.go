package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/leavehub/leavehub-backend-go/internal/domain/invitation"
)

// InvitationJobs contains invitation-related cron jobs
type InvitationJobs struct {
	invitationService invitation.InvitationService
}

// NewInvitationJobs creates invitation cron jobs
func NewInvitationJobs(invitationService invitation.InvitationService) *InvitationJobs {
	return &InvitationJobs{
		invitationService: invitationService,
	}
}

// RegisterJobs registers all invitation-related cron jobs
func (j *InvitationJobs) RegisterJobs(scheduler *Scheduler) {
	// The sweep is a cleanup pass, not a correctness dependency: lookups
	// compute expiry themselves, so any frequency (or none) is safe
	scheduler.AddJob(
		"expire_due_invitations",
		1*time.Hour,
		j.ExpireDueInvitations,
	)

	// Remove non-accepted terminal invitations past the retention window
	scheduler.AddJob(
		"purge_old_invitations",
		24*time.Hour,
		j.PurgeOldInvitations,
	)
}

// ExpireDueInvitations flips pending invitations past their expiry to expired
func (j *InvitationJobs) ExpireDueInvitations(ctx context.Context) error {
	count, err := j.invitationService.ExpireDueInvitations(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		slog.Info("Expired due invitations", "count", count)
	}
	return nil
}

// PurgeOldInvitations deletes old terminal invitations
func (j *InvitationJobs) PurgeOldInvitations(ctx context.Context) error {
	count, err := j.invitationService.PurgeOldInvitations(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		slog.Info("Purged old invitations", "count", count)
	}
	return nil
}
