package engine

import "time"

// BuffTimer tracks when a consumable was last applied. A zero timer has never
// been applied and is always due.
type BuffTimer struct {
	appliedAt time.Time
	duration  time.Duration
}

// NewBuffTimer creates a timer for a buff lasting the given duration.
func NewBuffTimer(duration time.Duration) BuffTimer {
	return BuffTimer{duration: duration}
}

// Due reports whether the buff needs (re)application at the given instant.
// The boundary is exclusive: a buff applied at T is still up at exactly
// T+duration.
func (b BuffTimer) Due(now time.Time) bool {
	return b.appliedAt.IsZero() || now.Sub(b.appliedAt) > b.duration
}

// MarkApplied records the application time. Callers pass the instant the
// buff actually executed, not when the due check ran, so repeated due checks
// before the reapplication lands do not double-count.
func (b *BuffTimer) MarkApplied(now time.Time) {
	b.appliedAt = now
}

// Reset clears the timer back to never-applied.
func (b *BuffTimer) Reset() {
	b.appliedAt = time.Time{}
}
