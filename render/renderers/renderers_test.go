package renderers

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/vi-drive/config"
	"github.com/lixenwraith/vi-drive/input"
	"github.com/lixenwraith/vi-drive/render"
	"github.com/lixenwraith/vi-drive/sim"
	"github.com/lixenwraith/vi-drive/vehicle"
)

const (
	screenW = 80
	screenH = 24
)

func newHarness(t *testing.T, edits ...func(*config.Scenario)) (*sim.Session, *render.RenderOrchestrator) {
	t.Helper()
	sc, _, err := config.Load("", config.PresetAvoidance)
	if err != nil {
		t.Fatalf("Expected scenario, got %v", err)
	}
	for _, edit := range edits {
		edit(sc)
	}
	s, err := sim.NewSession(sc, input.NewKeyboard(input.DefaultKeyTable(), 0), zerolog.Nop())
	if err != nil {
		t.Fatalf("Expected session, got %v", err)
	}

	screen := tcell.NewSimulationScreen("UTF-8")
	screen.Init()
	t.Cleanup(screen.Fini)
	screen.SetSize(screenW, screenH)

	o := render.NewRenderOrchestrator(screen)
	o.Resize(screenW, screenH)
	RegisterDefaults(o, true)
	return s, o
}

func frame(s *sim.Session, o *render.RenderOrchestrator) {
	o.RenderFrame(render.NewRenderContext(s, screenW, screenH))
}

func screenText(buf *render.RenderBuffer) string {
	w, h := buf.Bounds()
	var sb strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r := buf.Get(x, y).Rune
			if r == 0 {
				r = ' '
			}
			sb.WriteRune(r)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func TestHeadingGlyph(t *testing.T) {
	tests := []struct {
		heading float64
		want    rune
	}{
		{0, '↑'}, {44, '↗'}, {90, '→'}, {180, '↓'}, {270, '←'}, {350, '↑'}, {-90, '←'},
	}
	for _, tt := range tests {
		if got := HeadingGlyph(tt.heading); got != tt.want {
			t.Errorf("HeadingGlyph(%v): expected %q, got %q", tt.heading, tt.want, got)
		}
	}
}

func TestFollowingFrame(t *testing.T) {
	s, o := newHarness(t)
	s.Step(20 * time.Millisecond)
	frame(s, o)

	text := screenText(o.Buffer())
	if !strings.Contains(text, "FOLLOWING") {
		t.Errorf("Expected FOLLOWING in status bar:\n%s", text)
	}
	if strings.Contains(text, CrashTitle) {
		t.Error("Expected no crash dialog while following")
	}

	// Vehicle sits at the viewport center under the camera focus
	rc := render.NewRenderContext(s, screenW, screenH)
	x, y, ok := rc.WorldToScreen(s.Controller.State().Position)
	if !ok {
		t.Fatal("Expected vehicle on screen")
	}
	if got := o.Buffer().Get(x, y).Rune; !strings.ContainsRune(string(arrows[:]), got) {
		t.Errorf("Expected heading arrow at vehicle, got %q", got)
	}
}

// crateBehindStart puts the crate where the forward axis points once the car turns east
func crateBehindStart(sc *config.Scenario) {
	sc.Waypoints = []config.WaypointSection{
		{Name: "A", Position: []float64{0, 0, 0}},
		{Name: "B", Position: []float64{20, 0, 0}},
	}
	sc.Obstacles = []config.ObstacleSection{
		{Name: "Obstacle_Crate", Center: []float64{-3, 0, 0}, Size: []float64{2, 2, 2}},
	}
	sc.Vehicle.RotationSpeed = 100
}

func TestObstacleWarning(t *testing.T) {
	s, o := newHarness(t, crateBehindStart)

	warned := false
	for i := 0; i < 100 && !warned; i++ {
		s.Step(20 * time.Millisecond)
		if !s.HUD.View().ObstacleAhead {
			continue
		}
		warned = true
		frame(s, o)
		text := screenText(o.Buffer())
		if !strings.Contains(text, WarningText) || !strings.Contains(text, WarningHint) {
			t.Errorf("Expected warning and hint:\n%s", text)
		}
		if strings.Contains(text, CrashTitle) {
			t.Error("Expected no crash dialog with the warning")
		}
	}
	if !warned {
		t.Error("Expected an obstacle warning within 2s")
	}
}

func TestCrashDialog(t *testing.T) {
	s, o := newHarness(t)

	for i := 0; i < 600 && s.Controller.Mode() != vehicle.StateCrashed; i++ {
		s.Step(20 * time.Millisecond)
	}
	if s.Controller.Mode() != vehicle.StateCrashed {
		t.Fatal("Expected crash")
	}

	frame(s, o)
	text := screenText(o.Buffer())
	for _, want := range []string{CrashTitle, CrashText, RetryButton, "CRASHED"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q on screen:\n%s", want, text)
		}
	}
	if strings.Contains(text, WarningText) {
		t.Error("Expected warning hidden while crashed")
	}

	b := render.RetryButtonRect(screenW, screenH)
	row := strings.Split(text, "\n")[b.Y]
	if !strings.Contains(row, RetryButton) {
		t.Errorf("Expected button label on row %d, got %q", b.Y, row)
	}
}
