package input

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
)

// KeyTable maps terminal keys to action sets
// A single key may carry several actions; terminals only auto-repeat the last
// key held, so chords like slow+left need a key of their own
type KeyTable struct {
	Keys  map[tcell.Key]Actions
	Runes map[rune]Actions
}

// DefaultKeyTable returns the default bindings
func DefaultKeyTable() *KeyTable {
	return &KeyTable{
		Keys: map[tcell.Key]Actions{
			tcell.KeyLeft:   Of(ActionSteerLeft),
			tcell.KeyRight:  Of(ActionSteerRight),
			tcell.KeyEscape: Of(ActionQuit),
			tcell.KeyCtrlC:  Of(ActionQuit),
			tcell.KeyCtrlQ:  Of(ActionQuit),
			tcell.KeyEnter:  Of(ActionRestart),
		},
		Runes: map[rune]Actions{
			' ': Of(ActionSlow),
			'a': Of(ActionSteerLeft),
			'd': Of(ActionSteerRight),
			'A': Of(ActionSlow, ActionSteerLeft),
			'D': Of(ActionSlow, ActionSteerRight),
			'r': Of(ActionRestart),
			'R': Of(ActionRestart),
			'q': Of(ActionQuit),
			'm': Of(ActionMute),
		},
	}
}

// Lookup resolves an event to its action set
func (kt *KeyTable) Lookup(ev *tcell.EventKey) Actions {
	if ev == nil {
		return 0
	}
	if ev.Key() == tcell.KeyRune {
		return kt.Runes[ev.Rune()]
	}
	return kt.Keys[ev.Key()]
}

// runeAliases names runes that are awkward as bare config strings
var runeAliases = map[string]rune{
	"space":     ' ',
	"backslash": '\\',
}

// specialKeys names non-rune keys accepted in bindings
var specialKeys = map[string]tcell.Key{
	"left":      tcell.KeyLeft,
	"right":     tcell.KeyRight,
	"up":        tcell.KeyUp,
	"down":      tcell.KeyDown,
	"enter":     tcell.KeyEnter,
	"esc":       tcell.KeyEscape,
	"escape":    tcell.KeyEscape,
	"tab":       tcell.KeyTab,
	"backspace": tcell.KeyBackspace2,
	"ctrl+c":    tcell.KeyCtrlC,
	"ctrl+q":    tcell.KeyCtrlQ,
}

// ApplyBindings overlays bindings onto the table
// bindings maps an action name to key names; listed keys are rebound to that
// action only, replacing whatever they carried before
func (kt *KeyTable) ApplyBindings(bindings map[string][]string) error {
	rebound := make(map[string]bool)
	for actionName, keys := range bindings {
		a, err := ParseAction(actionName)
		if err != nil {
			return fmt.Errorf("key bindings: %w", err)
		}
		for _, keyName := range keys {
			if err := kt.bind(keyName, a, rebound); err != nil {
				return fmt.Errorf("key bindings [%s]: %w", actionName, err)
			}
		}
	}
	return nil
}

func (kt *KeyTable) bind(name string, a Action, rebound map[string]bool) error {
	if name == "" {
		return fmt.Errorf("empty key name")
	}

	// Single characters are case sensitive; named keys are not
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		if !rebound[name] {
			kt.Runes[r] = 0
			rebound[name] = true
		}
		kt.Runes[r] = kt.Runes[r].With(a)
		return nil
	}

	lower := strings.ToLower(name)
	if r, ok := runeAliases[lower]; ok {
		if !rebound[lower] {
			kt.Runes[r] = 0
			rebound[lower] = true
		}
		kt.Runes[r] = kt.Runes[r].With(a)
		return nil
	}
	if k, ok := specialKeys[lower]; ok {
		if !rebound[lower] {
			kt.Keys[k] = 0
			rebound[lower] = true
		}
		kt.Keys[k] = kt.Keys[k].With(a)
		return nil
	}
	return fmt.Errorf("unknown key %q", name)
}
