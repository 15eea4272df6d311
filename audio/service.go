package audio

import (
	"context"
	"log/slog"

	"github.com/lixenwraith/eduvoice/service"
)

var _ service.Service = (*AudioService)(nil)

// ServiceOptions configures the audio service
type ServiceOptions struct {
	SampleRate int
	Output     OutputKind
	Config     AudioConfig
	Tracks     map[string]string // Extra asset tracks, id -> file path
	Logger     *slog.Logger

	// Test hooks
	output Output
	opener Opener
}

// AudioService wraps Engine and Switcher as a Service
// Handles graceful degradation when no audio output is available
type AudioService struct {
	opts     ServiceOptions
	engine   *Engine
	switcher *Switcher
}

// NewService creates a new audio service
func NewService(opts ServiceOptions) *AudioService {
	return &AudioService{opts: opts}
}

// Name implements Service
func (s *AudioService) Name() string {
	return "audio"
}

// Dependencies implements Service
func (s *AudioService) Dependencies() []string {
	return nil
}

// Init implements Service; builds the engine graph without opening a device
func (s *AudioService) Init(ctx context.Context) error {
	log := orDiscard(s.opts.Logger)

	out := s.opts.output
	if out == nil {
		out = NewOutput(s.opts.Output, log)
	}

	s.engine = NewEngine(EngineOptions{
		SampleRate: s.opts.SampleRate,
		Output:     out,
		Opener:     s.opts.opener,
		Config:     s.opts.Config,
		Logger:     log,
	})
	s.switcher = NewSwitcher(s.engine, NewCatalog(s.opts.Tracks), log)
	s.engine.Warmup()
	return nil
}

// Start implements Service; output failure leaves the engine silent
func (s *AudioService) Start(ctx context.Context) error {
	return s.engine.Initialize(ctx)
}

// Stop implements Service
func (s *AudioService) Stop() error {
	if s.engine == nil {
		return nil
	}
	return s.engine.Close()
}

// Engine returns the engine; nil before Init
func (s *AudioService) Engine() *Engine {
	return s.engine
}

// Switcher returns the track switcher; nil before Init
func (s *AudioService) Switcher() *Switcher {
	return s.switcher
}
