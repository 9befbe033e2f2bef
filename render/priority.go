package render

// RenderPriority determines render order. Lower values render first
type RenderPriority int

const (
	PriorityBackground RenderPriority = iota
	PriorityGrid
	PriorityPath
	PriorityWaypoint
	PriorityObstacle
	PriorityRay
	PriorityVehicle
	PriorityUI
	PriorityOverlay
	PriorityDebug
)
