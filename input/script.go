package input

import (
	"fmt"
	"sort"
	"time"
)

// Cue is one entry of a scripted input timeline
// Duration > 0 holds the actions over [At, At+Duration); Duration == 0 is a single press at At
type Cue struct {
	At       time.Duration
	Duration time.Duration
	Actions  Actions
}

// Script replays cues against simulated time for headless runs and tests
type Script struct {
	cues    []Cue
	prev    time.Duration
	now     time.Duration
	started bool
}

// NewScript validates and sorts the cues
func NewScript(cues []Cue) (*Script, error) {
	sorted := make([]Cue, len(cues))
	copy(sorted, cues)
	for i, c := range sorted {
		if c.At < 0 || c.Duration < 0 {
			return nil, fmt.Errorf("cue %d: negative time (at %v, duration %v)", i, c.At, c.Duration)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At < sorted[j].At })

	// prev stays just below zero through the first Advance so a press at 0 lands in the first frame
	return &Script{cues: sorted, prev: -1}, nil
}

// Advance moves script time forward by dt, opening the next frame window
func (s *Script) Advance(dt time.Duration) {
	if dt < 0 {
		return
	}
	if s.started {
		s.prev = s.now
	}
	s.started = true
	s.now += dt
}

// Now returns current script time
func (s *Script) Now() time.Duration { return s.now }

// Held reports whether a held cue covers the current time
func (s *Script) Held(a Action) bool {
	for _, c := range s.cues {
		if c.At > s.now {
			break
		}
		if c.Duration > 0 && c.Actions.Has(a) && s.now < c.At+c.Duration {
			return true
		}
	}
	return false
}

// Pressed reports whether a press cue fell inside (prev, now]
func (s *Script) Pressed(a Action) bool {
	for _, c := range s.cues {
		if c.At > s.now {
			break
		}
		if c.Duration == 0 && c.Actions.Has(a) && c.At > s.prev {
			return true
		}
	}
	return false
}
