package record

import (
	"time"
)

// Event kinds
const (
	KindArrival = "arrival"
	KindCrash   = "crash"
	KindRestart = "restart"
)

// Models lists every table for AutoMigrate
var Models = []interface{}{
	&Session{},
	&Event{},
}

// Session is one run of the controller from start to exit
type Session struct {
	ID        uint      `gorm:"primarykey"`
	StartedAt time.Time `gorm:"index:idx_session_started"`
	EndedAt   *time.Time
	Preset    string `gorm:"size:32"`
	Scenario  string `gorm:"size:255"`
	Mode      string `gorm:"size:16"` // play or simulate
	Waypoints int

	// Summary, written on close
	Ticks     uint64
	SimTimeMs int64
	Arrivals  int
	Crashes   int
	Restarts  int
}

func (*Session) TableName() string {
	return "sessions"
}

// Event is a discrete controller event within a session
type Event struct {
	ID            uint    `gorm:"primarykey"`
	SessionID     uint   `gorm:"index:idx_event_session"`
	Kind          string `gorm:"size:16;index:idx_event_kind"`
	Tick          uint64
	SimTimeMs     int64
	Attempt       int
	WaypointIndex int
	Other         string `gorm:"size:127"`
	PosX          float64
	PosY          float64
	PosZ          float64
	CreatedAt     time.Time
}

func (*Event) TableName() string {
	return "events"
}
