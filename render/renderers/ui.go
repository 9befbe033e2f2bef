package renderers

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/vi-drive/render"
)

// StatusBarRenderer draws the status bar at the bottom
type StatusBarRenderer struct{}

func NewStatusBarRenderer() *StatusBarRenderer { return &StatusBarRenderer{} }

// Render implements SystemRenderer
func (r *StatusBarRenderer) Render(ctx render.RenderContext, buf *render.RenderBuffer) {
	y := ctx.StatusRow()
	if y < 0 {
		return
	}
	buf.FillRect(0, y, ctx.ScreenWidth, 1, render.RgbStatusBar)

	v := ctx.View
	modeBg := render.RgbModeBg
	if v.Crashed {
		modeBg = render.RgbCrashedBg
	}
	x := buf.DrawText(0, y, " "+v.Mode+" ", render.RgbModeText, modeBg, tcell.AttrBold)

	fields := []string{
		fmt.Sprintf("→ %s", v.Target),
		v.Phase,
		fmt.Sprintf("%.1f u/s", v.InstantSpeed),
		fmt.Sprintf("%03.0f°", v.Heading),
	}
	if v.Phase == "waiting" {
		fields = append(fields, fmt.Sprintf("wait %.1fs", v.Wait))
	}
	if v.Steering == "manual" {
		fields = append(fields, "MANUAL")
	}
	fields = append(fields,
		fmt.Sprintf("try %d", v.Attempt+1),
		fmt.Sprintf("wp %d", v.Arrivals),
		fmt.Sprintf("hits %d", v.Crashes),
	)
	if ctx.Muted {
		fields = append(fields, "♪ off")
	}
	x = buf.DrawText(x, y, " "+strings.Join(fields, " │ ")+" ", render.RgbStatusText, render.RgbStatusBar, 0)

	clock := fmt.Sprintf(" %5.1fs ", v.Elapsed.Seconds())
	if cx := ctx.ScreenWidth - render.TextWidth(clock); cx > x {
		buf.DrawText(cx, y, clock, render.RgbStatusDim, render.RgbStatusBar, 0)
	}
}

// Warning text shown while the ray sees an obstacle
const (
	WarningText = "OBSTACLE AHEAD!"
	WarningHint = "Hold SPACEBAR + A (Left) or D (Right) to avoid"
)

// WarningRenderer shows the obstacle warning at the top while following
type WarningRenderer struct{}

func NewWarningRenderer() *WarningRenderer { return &WarningRenderer{} }

// Render implements SystemRenderer
func (r *WarningRenderer) Render(ctx render.RenderContext, buf *render.RenderBuffer) {
	if !ctx.View.ObstacleAhead || ctx.View.Crashed {
		return
	}
	centered(buf, ctx.ScreenWidth, 0, WarningText, render.RgbWarning, render.RgbBackground, tcell.AttrBold)
	if ctx.ManualSteering {
		centered(buf, ctx.ScreenWidth, 1, WarningHint, render.RgbWarningHint, render.RgbBackground, 0)
	}
}

// Crash dialog text
const (
	CrashTitle  = "CRASHED!"
	CrashText   = "You hit an obstacle!"
	RetryButton = "Retry (R)"
)

// CrashOverlayRenderer draws the crash dialog with its retry button
type CrashOverlayRenderer struct{}

func NewCrashOverlayRenderer() *CrashOverlayRenderer { return &CrashOverlayRenderer{} }

// Render implements SystemRenderer
func (r *CrashOverlayRenderer) Render(ctx render.RenderContext, buf *render.RenderBuffer) {
	if !ctx.View.Crashed {
		return
	}

	// Dim the scene behind the dialog
	for y := 0; y < ctx.ViewportHeight; y++ {
		for x := 0; x < ctx.ScreenWidth; x++ {
			c := buf.Get(x, y)
			buf.Set(x, y, 0, c.Fg.Scale(0.5), c.Bg.Scale(0.5), render.BlendReplace, 1)
		}
	}

	p := render.CrashPanelRect(ctx.ScreenWidth, ctx.ScreenHeight)
	buf.FillRect(p.X, p.Y, p.W, p.H, render.RgbOverlayBg)
	for x := p.X; x < p.X+p.W; x++ {
		buf.SetWithBg(x, p.Y, '─', render.RgbOverlayBorder, render.RgbOverlayBg)
		buf.SetWithBg(x, p.Y+p.H-1, '─', render.RgbOverlayBorder, render.RgbOverlayBg)
	}
	for y := p.Y; y < p.Y+p.H; y++ {
		buf.SetWithBg(p.X, y, '│', render.RgbOverlayBorder, render.RgbOverlayBg)
		buf.SetWithBg(p.X+p.W-1, y, '│', render.RgbOverlayBorder, render.RgbOverlayBg)
	}
	buf.SetWithBg(p.X, p.Y, '┌', render.RgbOverlayBorder, render.RgbOverlayBg)
	buf.SetWithBg(p.X+p.W-1, p.Y, '┐', render.RgbOverlayBorder, render.RgbOverlayBg)
	buf.SetWithBg(p.X, p.Y+p.H-1, '└', render.RgbOverlayBorder, render.RgbOverlayBg)
	buf.SetWithBg(p.X+p.W-1, p.Y+p.H-1, '┘', render.RgbOverlayBorder, render.RgbOverlayBg)

	centeredIn(buf, p, p.Y+2, CrashTitle, render.RgbOverlayTitle, render.RgbOverlayBg, tcell.AttrBold)
	centeredIn(buf, p, p.Y+3, CrashText, render.RgbOverlayText, render.RgbOverlayBg, 0)
	if ctx.View.LastHit != "" {
		centeredIn(buf, p, p.Y+4, ctx.View.LastHit, render.RgbStatusDim, render.RgbOverlayBg, 0)
	}

	b := render.RetryButtonRect(ctx.ScreenWidth, ctx.ScreenHeight)
	buf.FillRect(b.X, b.Y, b.W, b.H, render.RgbButtonBg)
	centeredIn(buf, b, b.Y, RetryButton, render.RgbButtonText, render.RgbButtonBg, tcell.AttrBold)
}

func centered(buf *render.RenderBuffer, width, y int, s string, fg, bg render.RGB, attrs tcell.AttrMask) {
	x := (width - render.TextWidth(s)) / 2
	buf.DrawText(max(x, 0), y, s, fg, bg, attrs)
}

func centeredIn(buf *render.RenderBuffer, r render.Rect, y int, s string, fg, bg render.RGB, attrs tcell.AttrMask) {
	x := r.X + (r.W-render.TextWidth(s))/2
	buf.DrawText(max(x, r.X), y, s, fg, bg, attrs)
}

// RegisterDefaults registers the standard layer stack
func RegisterDefaults(o *render.RenderOrchestrator, showRay bool) {
	o.Register(NewGridRenderer(), render.PriorityGrid)
	o.Register(NewPathRenderer(), render.PriorityPath)
	o.Register(NewWaypointRenderer(), render.PriorityWaypoint)
	o.Register(NewObstacleRenderer(), render.PriorityObstacle)
	o.Register(NewRayRenderer(showRay), render.PriorityRay)
	o.Register(NewVehicleRenderer(), render.PriorityVehicle)
	o.Register(NewStatusBarRenderer(), render.PriorityUI)
	o.Register(NewWarningRenderer(), render.PriorityUI)
	o.Register(NewCrashOverlayRenderer(), render.PriorityOverlay)
}
