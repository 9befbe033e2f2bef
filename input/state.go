package input

import (
	"time"

	"github.com/gdamore/tcell/v2"
)

// DefaultHoldWindow covers the usual terminal auto-repeat delay
// Terminals report presses only, so a key counts as held until this long
// after its last repeat
const DefaultHoldWindow = 550 * time.Millisecond

// Keyboard turns terminal key presses into held and pressed-this-frame state
// Not safe for concurrent use; feed it from the loop that ticks the controller
type Keyboard struct {
	table *KeyTable
	hold  time.Duration
	now   func() time.Time

	lastSeen [actionCount]time.Time
	pressed  Actions
}

// NewKeyboard creates a keyboard; nil table uses DefaultKeyTable, hold <= 0 uses DefaultHoldWindow
func NewKeyboard(table *KeyTable, hold time.Duration) *Keyboard {
	if table == nil {
		table = DefaultKeyTable()
	}
	if hold <= 0 {
		hold = DefaultHoldWindow
	}
	return &Keyboard{
		table: table,
		hold:  hold,
		now:   time.Now,
	}
}

// SetClock replaces the time source
func (k *Keyboard) SetClock(now func() time.Time) {
	if now != nil {
		k.now = now
	}
}

// HandleKey records a key event and returns the actions it carried
func (k *Keyboard) HandleKey(ev *tcell.EventKey) Actions {
	actions := k.table.Lookup(ev)
	actions.Each(k.Press)
	return actions
}

// Press records a press of a, e.g. from a mouse click on a button
func (k *Keyboard) Press(a Action) {
	if a == ActionNone || a >= actionCount {
		return
	}
	k.lastSeen[a] = k.now()
	k.pressed = k.pressed.With(a)
}

// Release forgets a, ending a hold early
func (k *Keyboard) Release(a Action) {
	if a < actionCount {
		k.lastSeen[a] = time.Time{}
	}
}

// Held reports whether a was seen within the hold window
func (k *Keyboard) Held(a Action) bool {
	if a == ActionNone || a >= actionCount {
		return false
	}
	seen := k.lastSeen[a]
	if seen.IsZero() {
		return false
	}
	return k.now().Sub(seen) < k.hold
}

// Pressed reports whether a was pressed since the last EndFrame
func (k *Keyboard) Pressed(a Action) bool {
	return k.pressed.Has(a)
}

// EndFrame clears edge-triggered presses; call once after each tick
func (k *Keyboard) EndFrame() {
	k.pressed = 0
}
