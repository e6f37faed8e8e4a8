package invitation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_FromPending(t *testing.T) {
	cases := []struct {
		event Event
		want  Status
	}{
		{EventAccept, StatusAccepted},
		{EventReject, StatusRejected},
		{EventExpire, StatusExpired},
		{EventSupersede, StatusSuperseded},
	}

	for _, c := range cases {
		got, err := Transition(StatusPending, c.event)
		require.NoError(t, err, "event %s", c.event)
		assert.Equal(t, c.want, got)
	}
}

func TestTransition_TerminalStatesAreFinal(t *testing.T) {
	terminal := []Status{StatusAccepted, StatusRejected, StatusExpired, StatusSuperseded}
	events := []Event{EventAccept, EventReject, EventExpire, EventSupersede}

	for _, status := range terminal {
		assert.True(t, status.IsTerminal())
		for _, event := range events {
			got, err := Transition(status, event)
			assert.ErrorIs(t, err, ErrIllegalTransition, "%s + %s", status, event)
			assert.Equal(t, status, got, "status must not move")
		}
	}
}

func TestStatus_PendingIsNotTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
}

func TestInvitation_IsExpired_ValueBased(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	pendingPast := Invitation{Status: StatusPending, ExpiresAt: now.Add(-time.Minute)}
	pendingFuture := Invitation{Status: StatusPending, ExpiresAt: now.Add(time.Minute)}
	pendingExact := Invitation{Status: StatusPending, ExpiresAt: now}

	// Pending past expiry is expired even before any sweep runs
	assert.True(t, pendingPast.IsExpired(now))
	assert.False(t, pendingFuture.IsExpired(now))
	assert.True(t, pendingExact.IsExpired(now))

	// Terminal rows never re-evaluate as expired
	for _, status := range []Status{StatusAccepted, StatusRejected, StatusExpired, StatusSuperseded} {
		inv := Invitation{Status: status, ExpiresAt: now.Add(-time.Hour)}
		assert.False(t, inv.IsExpired(now), "status %s", status)
	}
}

func TestInvitation_CanBeAccepted(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	ok := Invitation{Status: StatusPending, ExpiresAt: now.Add(time.Hour)}
	assert.True(t, ok.CanBeAccepted(now))

	expired := Invitation{Status: StatusPending, ExpiresAt: now.Add(-time.Hour)}
	assert.False(t, expired.CanBeAccepted(now))

	accepted := Invitation{Status: StatusAccepted, ExpiresAt: now.Add(time.Hour)}
	assert.False(t, accepted.CanBeAccepted(now))
}
