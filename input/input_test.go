package input

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time           { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestKeyboard() (*Keyboard, *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	kb := NewKeyboard(nil, 300*time.Millisecond)
	kb.SetClock(clk.now)
	return kb, clk
}

func TestKeyboardHoldWindow(t *testing.T) {
	kb, clk := newTestKeyboard()

	kb.HandleKey(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	if !kb.Held(ActionSlow) {
		t.Fatal("Expected slow held right after press")
	}

	clk.advance(200 * time.Millisecond)
	if !kb.Held(ActionSlow) {
		t.Error("Expected slow still held inside the window")
	}

	// Auto-repeat refreshes the hold
	kb.HandleKey(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	clk.advance(200 * time.Millisecond)
	if !kb.Held(ActionSlow) {
		t.Error("Expected repeat to extend the hold")
	}

	clk.advance(200 * time.Millisecond)
	if kb.Held(ActionSlow) {
		t.Error("Expected hold to expire after the window")
	}
}

func TestKeyboardPressedIsEdgeTriggered(t *testing.T) {
	kb, _ := newTestKeyboard()

	kb.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone))
	if !kb.Pressed(ActionRestart) {
		t.Fatal("Expected restart pressed this frame")
	}
	kb.EndFrame()
	if kb.Pressed(ActionRestart) {
		t.Error("Expected press cleared by EndFrame")
	}
}

func TestKeyboardChordKeys(t *testing.T) {
	kb, _ := newTestKeyboard()

	got := kb.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'A', tcell.ModShift))
	if !got.Has(ActionSlow) || !got.Has(ActionSteerLeft) {
		t.Errorf("Expected Shift+A to carry slow+steer_left, got %s", got)
	}
	if !kb.Held(ActionSlow) || !kb.Held(ActionSteerLeft) {
		t.Error("Expected both chord actions held")
	}
	if kb.Held(ActionSteerRight) {
		t.Error("Expected steer_right not held")
	}
}

func TestKeyboardReleaseAndPress(t *testing.T) {
	kb, _ := newTestKeyboard()

	kb.Press(ActionRestart)
	if !kb.Pressed(ActionRestart) {
		t.Error("Expected programmatic press to register")
	}
	kb.HandleKey(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone))
	kb.Release(ActionSteerLeft)
	if kb.Held(ActionSteerLeft) {
		t.Error("Expected release to end the hold")
	}
	if kb.Held(ActionNone) {
		t.Error("Expected ActionNone never held")
	}
}

func TestApplyBindings(t *testing.T) {
	kt := DefaultKeyTable()
	err := kt.ApplyBindings(map[string][]string{
		"slow":        {"tab"},
		"steer_left":  {"j", "space"},
		"steer_right": {"l"},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got := kt.Lookup(tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone)); !got.Has(ActionSlow) {
		t.Errorf("Expected tab bound to slow, got %s", got)
	}
	got := kt.Lookup(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	if got.Has(ActionSlow) || !got.Has(ActionSteerLeft) {
		t.Errorf("Expected space rebound to steer_left only, got %s", got)
	}
	if got := kt.Lookup(tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone)); !got.Has(ActionSteerLeft) {
		t.Errorf("Expected untouched default 'a' kept, got %s", got)
	}

	if err := kt.ApplyBindings(map[string][]string{"fly": {"f"}}); err == nil {
		t.Error("Expected error for unknown action")
	}
	if err := kt.ApplyBindings(map[string][]string{"slow": {"hyperspace"}}); err == nil {
		t.Error("Expected error for unknown key")
	}
}

func TestParseActions(t *testing.T) {
	s, err := ParseActions([]string{"slow", "left"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s != Of(ActionSlow, ActionSteerLeft) {
		t.Errorf("Expected slow+steer_left, got %s", s)
	}
	if s.String() != "slow+steer_left" {
		t.Errorf("Unexpected string %q", s.String())
	}
	if _, err := ParseAction("jump"); err == nil {
		t.Error("Expected error for unknown action")
	}
}

func TestScriptHeldAndPressed(t *testing.T) {
	script, err := NewScript([]Cue{
		{At: 2 * time.Second, Actions: Of(ActionRestart)},
		{At: time.Second, Duration: time.Second, Actions: Of(ActionSlow, ActionSteerLeft)},
		{At: 0, Actions: Of(ActionMute)},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	step := 500 * time.Millisecond

	script.Advance(0)
	if !script.Pressed(ActionMute) {
		t.Error("Expected press at 0 in the first frame")
	}

	script.Advance(step) // 0.5s
	if script.Pressed(ActionMute) {
		t.Error("Expected press not repeated in later frames")
	}
	if script.Held(ActionSlow) {
		t.Error("Expected slow not yet held at 0.5s")
	}

	script.Advance(step) // 1.0s
	if !script.Held(ActionSlow) || !script.Held(ActionSteerLeft) {
		t.Error("Expected slow+left held at 1.0s")
	}

	script.Advance(step) // 1.5s
	if !script.Held(ActionSteerLeft) {
		t.Error("Expected left held at 1.5s")
	}
	if script.Pressed(ActionRestart) {
		t.Error("Expected restart not yet pressed at 1.5s")
	}

	script.Advance(step) // 2.0s
	if script.Held(ActionSlow) {
		t.Error("Expected hold to end at 2.0s")
	}
	if !script.Pressed(ActionRestart) {
		t.Error("Expected restart pressed in (1.5s, 2.0s]")
	}

	if _, err := NewScript([]Cue{{At: -time.Second}}); err == nil {
		t.Error("Expected error for negative cue time")
	}
}
