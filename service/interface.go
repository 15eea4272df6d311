package service

import "context"

// Service defines the lifecycle of a long-lived subsystem
// Services own resources: the audio device, the TTS backend, the history database
//
// Lifecycle:
//  1. Construction (by the composition root)
//  2. Init(ctx) - resolve configuration, build internal state
//  3. Start(ctx) - open devices, launch goroutines
//  4. [runtime operation]
//  5. Stop() - halt goroutines, release resources
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Dependencies returns names of services that must Init and Start before this one
	Dependencies() []string

	// Init configures the service
	Init(ctx context.Context) error

	// Start begins service operation
	// Called after all services have initialized
	Start(ctx context.Context) error

	// Stop halts service operation and releases resources
	// Must be idempotent
	Stop() error
}
