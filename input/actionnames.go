package input

import (
	"fmt"
	"strings"
)

// Action is a semantic control, independent of the physical key
type Action uint8

const (
	ActionNone Action = iota
	ActionSlow
	ActionSteerLeft
	ActionSteerRight
	ActionRestart
	ActionQuit
	ActionMute
	actionCount
)

// actionNames maps canonical names used by config and scripts
var actionNames = [actionCount]string{
	ActionNone:       "none",
	ActionSlow:       "slow",
	ActionSteerLeft:  "steer_left",
	ActionSteerRight: "steer_right",
	ActionRestart:    "restart",
	ActionQuit:       "quit",
	ActionMute:       "mute",
}

func (a Action) String() string {
	if a < actionCount {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// ParseAction resolves a canonical name; "left"/"right" are accepted shorthands
func ParseAction(name string) (Action, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "left":
		return ActionSteerLeft, nil
	case "right":
		return ActionSteerRight, nil
	}
	for i, s := range actionNames {
		if s == n {
			return Action(i), nil
		}
	}
	return ActionNone, fmt.Errorf("unknown action %q", name)
}

// Actions is a set of actions
type Actions uint16

// Of builds a set
func Of(as ...Action) Actions {
	var s Actions
	for _, a := range as {
		s = s.With(a)
	}
	return s
}

// With returns the set plus a
func (s Actions) With(a Action) Actions {
	if a == ActionNone || a >= actionCount {
		return s
	}
	return s | 1<<a
}

// Has reports membership
func (s Actions) Has(a Action) bool {
	if a >= actionCount {
		return false
	}
	return s&(1<<a) != 0
}

// Each calls fn for every member in declaration order
func (s Actions) Each(fn func(Action)) {
	for a := ActionNone + 1; a < actionCount; a++ {
		if s.Has(a) {
			fn(a)
		}
	}
}

func (s Actions) String() string {
	var parts []string
	s.Each(func(a Action) { parts = append(parts, a.String()) })
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// ParseActions parses a list of names into a set
func ParseActions(names []string) (Actions, error) {
	var s Actions
	for _, n := range names {
		a, err := ParseAction(n)
		if err != nil {
			return 0, err
		}
		s = s.With(a)
	}
	return s, nil
}
