package sim

import (
	"time"
)

// Pacer converts wall-clock ticks into bounded frame deltas for the interactive loop
// A stall longer than maxBehind is absorbed instead of replayed as one large step
type Pacer struct {
	interval  time.Duration
	maxBehind time.Duration
	last      time.Time
	now       func() time.Time
}

// NewPacer creates a pacer for the nominal interval
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{
		interval:  interval,
		maxBehind: interval * 2,
		now:       time.Now,
	}
}

// SetClock replaces the time source, for tests
func (p *Pacer) SetClock(now func() time.Time) {
	p.now = now
}

// Interval returns the nominal frame interval
func (p *Pacer) Interval() time.Duration { return p.interval }

// Next returns the time since the previous call, clamped to [0, maxBehind]
// The first call returns the nominal interval
func (p *Pacer) Next() time.Duration {
	now := p.now()
	if p.last.IsZero() {
		p.last = now
		return p.interval
	}
	dt := now.Sub(p.last)
	p.last = now
	if dt < 0 {
		return 0
	}
	if dt > p.maxBehind {
		return p.maxBehind
	}
	return dt
}

// Reset forgets the previous call, used after a pause such as a resize
func (p *Pacer) Reset() {
	p.last = time.Time{}
}
