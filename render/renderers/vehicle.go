package renderers

import (
	"math"

	"github.com/lixenwraith/vi-drive/render"
	"github.com/lixenwraith/vi-drive/vehicle"
)

// arrows indexed by compass octant, 0 = north (+Z)
var arrows = [8]rune{'↑', '↗', '→', '↘', '↓', '↙', '←', '↖'}

// HeadingGlyph returns the arrow closest to a compass heading in degrees
func HeadingGlyph(heading float64) rune {
	octant := int(math.Floor(heading/45+0.5)) % 8
	if octant < 0 {
		octant += 8
	}
	return arrows[octant]
}

// VehicleRenderer draws the car as an arrow along its nose
type VehicleRenderer struct{}

func NewVehicleRenderer() *VehicleRenderer { return &VehicleRenderer{} }

// Render implements SystemRenderer
func (r *VehicleRenderer) Render(ctx render.RenderContext, buf *render.RenderBuffer) {
	sx, sy, ok := ctx.WorldToScreen(ctx.Frame.Position)
	if !ok {
		return
	}
	switch {
	case ctx.Frame.Mode == vehicle.StateCrashed:
		buf.SetWithBg(sx, sy, '✖', render.RgbVehicleCrashed, render.RgbBackground)
	case ctx.Slow:
		buf.SetFgOnly(sx, sy, HeadingGlyph(ctx.Frame.Heading), render.RgbVehicleSlow, 0)
	default:
		buf.SetFgOnly(sx, sy, HeadingGlyph(ctx.Frame.Heading), render.RgbVehicle, 0)
	}
}

// RayRenderer draws the forward obstacle ray, green when clear and red up to the hit
type RayRenderer struct {
	Visible bool
}

func NewRayRenderer(visible bool) *RayRenderer { return &RayRenderer{Visible: visible} }

// IsVisible implements VisibilityToggle
func (r *RayRenderer) IsVisible() bool { return r.Visible }

// Render implements SystemRenderer
func (r *RayRenderer) Render(ctx render.RenderContext, buf *render.RenderBuffer) {
	ray := ctx.Ray
	if !ray.Enabled || ctx.Frame.Mode == vehicle.StateCrashed {
		return
	}
	length, color := ray.Length, render.RgbRayClear
	if ray.Hit {
		length, color = ray.HitDistance, render.RgbRayHit
	}
	x0, y0, _ := ctx.WorldToScreen(ray.Origin)
	x1, y1, _ := ctx.WorldToScreen(ray.Origin.Add(ray.Dir.Mul(length)))
	render.Line(x0, y0, x1, y1, func(x, y int) bool {
		// Skip the vehicle cell
		if x == x0 && y == y0 {
			return true
		}
		if y < ctx.ViewportHeight {
			buf.SetFgOnly(x, y, '∙', color, 0)
		}
		return true
	})
	if ray.Hit {
		buf.SetFgOnly(x1, y1, '×', color, 0)
	}
}
