package vehicle

// Sink receives controller output; calls are synchronous from Tick and must not block
type Sink interface {
	Frame(Snapshot)
	Arrived(ArrivalEvent)
	Crashed(CrashEvent)
	Restarted(Snapshot)
}

// NopSink ignores everything; embed it to implement a subset
type NopSink struct{}

func (NopSink) Frame(Snapshot)       {}
func (NopSink) Arrived(ArrivalEvent) {}
func (NopSink) Crashed(CrashEvent)   {}
func (NopSink) Restarted(Snapshot)   {}

// MultiSink fans out to every member in order, nil members skipped
type MultiSink []Sink

func (m MultiSink) Frame(s Snapshot) {
	for _, sk := range m {
		if sk != nil {
			sk.Frame(s)
		}
	}
}

func (m MultiSink) Arrived(e ArrivalEvent) {
	for _, sk := range m {
		if sk != nil {
			sk.Arrived(e)
		}
	}
}

func (m MultiSink) Crashed(e CrashEvent) {
	for _, sk := range m {
		if sk != nil {
			sk.Crashed(e)
		}
	}
}

func (m MultiSink) Restarted(s Snapshot) {
	for _, sk := range m {
		if sk != nil {
			sk.Restarted(s)
		}
	}
}
