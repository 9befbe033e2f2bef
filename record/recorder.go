package record

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/vi-drive/vehicle"
)

// DefaultQueueSize bounds pending event writes
const DefaultQueueSize = 256

// SessionInfo describes a session at start
type SessionInfo struct {
	Preset    string
	Scenario  string
	Mode      string
	Waypoints int
}

// Recorder is a vehicle.Sink that persists discrete events to a Store
// Sink calls enqueue and return; a single worker performs the writes
type Recorder struct {
	store   *Store
	log     zerolog.Logger
	session Session

	queue chan Event
	wg    sync.WaitGroup
	once  sync.Once

	// Guards the session counters, the clock and closed; sink calls after Close are dropped
	mu       sync.Mutex
	closed   bool
	dropped  int
	failed   int
	lastTick uint64
	lastTime time.Duration
}

// NewRecorder inserts the session row and starts the writer
func NewRecorder(store *Store, info SessionInfo, queueSize int, log zerolog.Logger) (*Recorder, error) {
	if store == nil || store.DB == nil {
		return nil, errors.New("recorder needs an open store")
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	r := &Recorder{
		store: store,
		log:   log.With().Str("component", "recorder").Logger(),
		session: Session{
			StartedAt: time.Now(),
			Preset:    info.Preset,
			Scenario:  info.Scenario,
			Mode:      info.Mode,
			Waypoints: info.Waypoints,
		},
		queue: make(chan Event, queueSize),
	}
	if err := store.DB.Create(&r.session).Error; err != nil {
		return nil, errors.Wrap(err, "could not create session")
	}

	r.wg.Add(1)
	go r.run()

	r.log.Debug().Uint("session", r.session.ID).Msg("recording started")
	return r, nil
}

// SessionID returns the row id of the active session
func (r *Recorder) SessionID() uint { return r.session.ID }

func (r *Recorder) run() {
	defer r.wg.Done()
	for ev := range r.queue {
		if err := r.store.DB.Create(&ev).Error; err != nil {
			r.mu.Lock()
			r.failed++
			r.mu.Unlock()
			r.log.Error().Err(err).Str("kind", ev.Kind).Msg("could not write event")
		}
	}
}

// enqueue counts the event and hands it to the writer without blocking the controller
// A full queue drops the write but keeps the count; after Close the event is discarded
func (r *Recorder) enqueue(ev Event) {
	ev.SessionID = r.session.ID

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.dropped++
		r.log.Debug().Str("kind", ev.Kind).Msg("event after close, dropped")
		return
	}

	switch ev.Kind {
	case KindArrival:
		r.session.Arrivals++
	case KindCrash:
		r.session.Crashes++
	case KindRestart:
		r.session.Restarts++
	}

	select {
	case r.queue <- ev:
	default:
		r.dropped++
		r.log.Warn().Str("kind", ev.Kind).Msg("event queue full, dropped")
	}
}

// Frame tracks the session clock for the summary
func (r *Recorder) Frame(s vehicle.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.lastTick = s.Tick
	r.lastTime = s.Time
}

func (r *Recorder) Arrived(e vehicle.ArrivalEvent) {
	r.enqueue(Event{
		Kind:          KindArrival,
		Tick:          e.Tick,
		SimTimeMs:     e.Time.Milliseconds(),
		Attempt:       e.Attempt,
		WaypointIndex: e.Index,
		Other:         e.Waypoint.Name,
		PosX:          e.Waypoint.Position.X(),
		PosY:          e.Waypoint.Position.Y(),
		PosZ:          e.Waypoint.Position.Z(),
	})
}

func (r *Recorder) Crashed(e vehicle.CrashEvent) {
	r.enqueue(Event{
		Kind:          KindCrash,
		Tick:          e.Tick,
		SimTimeMs:     e.Time.Milliseconds(),
		Attempt:       e.Attempt,
		WaypointIndex: e.WaypointIndex,
		Other:         e.Other,
		PosX:          e.Position.X(),
		PosY:          e.Position.Y(),
		PosZ:          e.Position.Z(),
	})
}

func (r *Recorder) Restarted(s vehicle.Snapshot) {
	r.enqueue(Event{
		Kind:          KindRestart,
		Tick:          s.Tick,
		SimTimeMs:     s.Time.Milliseconds(),
		Attempt:       s.Attempt,
		WaypointIndex: s.WaypointIndex,
		PosX:          s.Position.X(),
		PosY:          s.Position.Y(),
		PosZ:          s.Position.Z(),
	})
}

// Dropped returns how many events were lost to a full queue, a failed write or a late sink call
func (r *Recorder) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped + r.failed
}

// Close drains the queue and writes the session summary; safe to call twice
func (r *Recorder) Close() error {
	var err error
	r.once.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.queue)
		r.mu.Unlock()
		r.wg.Wait()

		ended := time.Now()
		r.session.EndedAt = &ended
		r.session.Ticks = r.lastTick
		r.session.SimTimeMs = r.lastTime.Milliseconds()
		if e := r.store.DB.Save(&r.session).Error; e != nil {
			err = errors.Wrap(e, "could not save session summary")
			return
		}
		r.log.Info().
			Uint("session", r.session.ID).
			Int("arrivals", r.session.Arrivals).
			Int("crashes", r.session.Crashes).
			Int("restarts", r.session.Restarts).
			Int("dropped", r.Dropped()).
			Msg("recording closed")
	})
	return err
}
