package invitation

// ConflictStrategy names a policy for resolving multiple pending invitations
// targeting the same (email, organization) pair. It is always chosen by the
// caller, never inferred.
type ConflictStrategy string

const (
	// StrategyKeepLatest supersedes every pending invitation older than the
	// newest one.
	StrategyKeepLatest ConflictStrategy = "keep_latest"
	// StrategyKeepHighestRole supersedes every pending invitation whose role
	// ranks below the highest role present.
	StrategyKeepHighestRole ConflictStrategy = "keep_highest_role"
	// StrategyManualSelect performs no mutation; the conflicting set is
	// surfaced for an admin decision.
	StrategyManualSelect ConflictStrategy = "manual_select"
)

// ParseStrategy validates a caller-supplied strategy name. Empty input
// defaults to manual_select, the only strategy that mutates nothing.
func ParseStrategy(s string) (ConflictStrategy, error) {
	switch ConflictStrategy(s) {
	case StrategyKeepLatest, StrategyKeepHighestRole, StrategyManualSelect:
		return ConflictStrategy(s), nil
	case "":
		return StrategyManualSelect, nil
	default:
		return "", ErrUnknownStrategy
	}
}

// Resolve returns the subset of pending that the strategy supersedes.
// pending must be ordered oldest to newest, as the store returns it, and
// must only contain rows currently in StatusPending: terminal invitations
// never participate in conflict detection.
func (s ConflictStrategy) Resolve(pending []Invitation) []Invitation {
	if len(pending) < 2 {
		return nil
	}

	switch s {
	case StrategyKeepLatest:
		return pending[:len(pending)-1]

	case StrategyKeepHighestRole:
		highest := 0
		for _, inv := range pending {
			if r := inv.Role.Rank(); r > highest {
				highest = r
			}
		}
		var stale []Invitation
		for _, inv := range pending {
			if inv.Role.Rank() < highest {
				stale = append(stale, inv)
			}
		}
		return stale

	default:
		// manual_select and anything unknown mutate nothing
		return nil
	}
}
