package executor

import "time"

// CooldownGuard suspends new entries after too many consecutive stop-loss
// exits. A limit of 0 disables the guard entirely.
type CooldownGuard struct {
	limit    int
	duration time.Duration

	losses int
	until  time.Time // zero means not cooling
}

func NewCooldownGuard(limit int, duration time.Duration) *CooldownGuard {
	return &CooldownGuard{limit: limit, duration: duration}
}

// RecordLoss counts a stop-loss exit. Returns true when the loss limit is
// reached and the guard enters cooldown.
func (g *CooldownGuard) RecordLoss(now time.Time) bool {
	g.losses++
	if g.limit > 0 && g.losses >= g.limit {
		g.until = now.Add(g.duration)
		return true
	}
	return false
}

// RecordProfit resets the consecutive-loss streak.
func (g *CooldownGuard) RecordProfit() {
	g.losses = 0
}

// Cooling reports whether entries are suspended at now. The first call at or
// after the deadline clears the cooldown and resets the streak.
func (g *CooldownGuard) Cooling(now time.Time) bool {
	if g.until.IsZero() {
		return false
	}
	if now.Before(g.until) {
		return true
	}
	g.until = time.Time{}
	g.losses = 0
	return false
}

// Remaining is the time left until entries resume. Zero when not cooling.
func (g *CooldownGuard) Remaining(now time.Time) time.Duration {
	if g.until.IsZero() || now.After(g.until) {
		return 0
	}
	return g.until.Sub(now)
}

func (g *CooldownGuard) Losses() int { return g.losses }

// State returns the streak and deadline for checkpointing.
func (g *CooldownGuard) State() (losses int, until time.Time) {
	return g.losses, g.until
}

// Restore overwrites the guard state, e.g. from a checkpoint.
func (g *CooldownGuard) Restore(losses int, until time.Time) {
	g.losses = losses
	g.until = until
}
