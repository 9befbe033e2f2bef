package render

// Palette, Tokyo Night based
var (
	RgbBackground = RGB{26, 27, 38}
	RgbGrid       = RGB{41, 46, 66}
	RgbAxis       = RGB{59, 66, 97}

	RgbObstacle     = RGB{247, 118, 142}
	RgbObstacleFill = RGB{90, 40, 52}
	RgbWaypoint     = RGB{122, 162, 247}
	RgbWaypointNext = RGB{224, 175, 104}
	RgbPath         = RGB{65, 72, 104}

	RgbVehicle        = RGB{158, 206, 106}
	RgbVehicleSlow    = RGB{125, 207, 255}
	RgbVehicleCrashed = RGB{255, 0, 0}

	RgbRayClear = RGB{0, 200, 0}
	RgbRayHit   = RGB{255, 60, 60}

	RgbStatusBar  = RGB{36, 40, 59}
	RgbStatusText = RGB{192, 202, 245}
	RgbStatusDim  = RGB{86, 95, 137}
	RgbModeBg     = RGB{135, 206, 250}
	RgbCrashedBg  = RGB{200, 50, 50}
	RgbModeText   = RGB{0, 0, 0}

	RgbWarning     = RGB{255, 60, 60}
	RgbWarningHint = RGB{255, 255, 255}

	RgbOverlayBg     = RGB{20, 20, 28}
	RgbOverlayBorder = RGB{247, 118, 142}
	RgbOverlayTitle  = RGB{255, 60, 60}
	RgbOverlayText   = RGB{192, 202, 245}
	RgbButtonBg      = RGB{122, 162, 247}
	RgbButtonText    = RGB{0, 0, 0}
)
