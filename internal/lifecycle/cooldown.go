// internal/lifecycle/cooldown.go
package lifecycle

import "time"

const (
	DefaultEditCooldown  = 24 * time.Hour
	DefaultNudgeCooldown = 24 * time.Hour
)

// Policy holds the cooldown windows for self-service edits and nudges.
type Policy struct {
	EditCooldown  time.Duration
	NudgeCooldown time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		EditCooldown:  DefaultEditCooldown,
		NudgeCooldown: DefaultNudgeCooldown,
	}
}

// CanEdit reports whether an edit is allowed at now. lastEdit is the last
// edit instant, or the creation instant when never edited.
func (p Policy) CanEdit(lastEdit *time.Time, now time.Time) bool {
	return elapsed(lastEdit, now, p.EditCooldown)
}

// CanNudge reports whether a nudge is allowed at now. A nil lastNudge
// always allows.
func (p Policy) CanNudge(lastNudge *time.Time, now time.Time) bool {
	return elapsed(lastNudge, now, p.NudgeCooldown)
}

// elapsed is inclusive: exactly one window after last is allowed.
func elapsed(last *time.Time, now time.Time, window time.Duration) bool {
	if last == nil {
		return true
	}
	return now.Sub(*last) >= window
}
