package renderers

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vi-drive/render"
)

// gridSpacing is the world distance between grid dots
const gridSpacing = 5.0

// GridRenderer draws ground dots every gridSpacing units and the world axes
type GridRenderer struct{}

func NewGridRenderer() *GridRenderer { return &GridRenderer{} }

// Render implements SystemRenderer
func (r *GridRenderer) Render(ctx render.RenderContext, buf *render.RenderBuffer) {
	scale := ctx.Scale
	if scale <= 0 {
		scale = render.DefaultScale
	}
	// Cell footprint in world units
	cw := 1 / scale
	ch := 2 / scale
	for sy := 0; sy < ctx.ViewportHeight; sy++ {
		for sx := 0; sx < ctx.ViewportWidth; sx++ {
			p := ctx.ScreenToWorld(sx, sy)
			onX := nearMultiple(p.X(), gridSpacing, cw/2)
			onZ := nearMultiple(p.Z(), gridSpacing, ch/2)
			switch {
			case math.Abs(p.X()) <= cw/2 && math.Abs(p.Z()) <= ch/2:
				buf.SetFgOnly(sx, sy, '+', render.RgbAxis, 0)
			case onX && onZ:
				buf.SetFgOnly(sx, sy, '·', render.RgbGrid, 0)
			}
		}
	}
}

func nearMultiple(v, step, tol float64) bool {
	m := math.Mod(math.Abs(v), step)
	return m <= tol || step-m < tol
}

// PathRenderer connects consecutive waypoints, closing the loop
type PathRenderer struct{}

func NewPathRenderer() *PathRenderer { return &PathRenderer{} }

// Render implements SystemRenderer
func (r *PathRenderer) Render(ctx render.RenderContext, buf *render.RenderBuffer) {
	n := len(ctx.Waypoints)
	if n < 2 {
		return
	}
	for i := 0; i < n; i++ {
		a := ctx.Waypoints[i].Position
		b := ctx.Waypoints[(i+1)%n].Position
		x0, y0, _ := ctx.WorldToScreen(a)
		x1, y1, _ := ctx.WorldToScreen(b)
		render.Line(x0, y0, x1, y1, func(x, y int) bool {
			if y < ctx.ViewportHeight {
				buf.SetFgOnly(x, y, '.', render.RgbPath, 0)
			}
			return true
		})
	}
}

// WaypointRenderer marks each waypoint; the active target is highlighted
type WaypointRenderer struct{}

func NewWaypointRenderer() *WaypointRenderer { return &WaypointRenderer{} }

// Render implements SystemRenderer
func (r *WaypointRenderer) Render(ctx render.RenderContext, buf *render.RenderBuffer) {
	for i, wp := range ctx.Waypoints {
		sx, sy, ok := ctx.WorldToScreen(wp.Position)
		if !ok {
			continue
		}
		color := render.RgbWaypoint
		glyph := '◇'
		if i == ctx.Frame.WaypointIndex {
			color = render.RgbWaypointNext
			glyph = '◆'
		}
		buf.SetFgOnly(sx, sy, glyph, color, 0)
		if sy+1 < ctx.ViewportHeight {
			label := wp.Name
			buf.DrawText(sx-render.TextWidth(label)/2, sy+1, label, color, render.RgbBackground, 0)
		}
	}
}

// ObstacleRenderer fills each obstacle's ground footprint
type ObstacleRenderer struct{}

func NewObstacleRenderer() *ObstacleRenderer { return &ObstacleRenderer{} }

// Render implements SystemRenderer
func (r *ObstacleRenderer) Render(ctx render.RenderContext, buf *render.RenderBuffer) {
	for _, o := range ctx.Obstacles {
		// Min X is left; max Z is top on screen
		x0, y0, _ := ctx.WorldToScreen(mgl64.Vec3{o.Min.X(), 0, o.Max.Z()})
		x1, y1, _ := ctx.WorldToScreen(mgl64.Vec3{o.Max.X(), 0, o.Min.Z()})
		if x1 < x0 {
			x0, x1 = x1, x0
		}
		if y1 < y0 {
			y0, y1 = y1, y0
		}
		// Clip to the viewport
		x0, y0 = max(x0, 0), max(y0, 0)
		x1, y1 = min(x1, ctx.ViewportWidth-1), min(y1, ctx.ViewportHeight-1)
		if x0 > x1 || y0 > y1 {
			continue
		}
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				edge := y == y0 || y == y1 || x == x0 || x == x1
				if edge {
					buf.SetWithBg(x, y, '▒', render.RgbObstacle, render.RgbObstacleFill)
				} else {
					buf.SetWithBg(x, y, ' ', render.RgbObstacle, render.RgbObstacleFill)
				}
			}
		}
	}
}
