// Package service runs long-lived subsystems of a session: audio output, telemetry storage
package service

// Service is a subsystem with an explicit lifecycle
//
// Lifecycle:
//  1. Construction
//  2. Init() - validate configuration, no side effects on failure
//  3. Start() - acquire resources, launch goroutines
//  4. [runtime operation]
//  5. Stop() - release resources; must be idempotent
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Dependencies returns names of services that must start before this one
	Dependencies() []string

	Init() error
	Start() error
	Stop() error
}
