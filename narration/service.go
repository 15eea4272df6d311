package narration

import (
	"context"

	"github.com/lixenwraith/eduvoice/service"
)

var _ service.Service = (*Service)(nil)

// Service runs the Narrator under the service hub
type Service struct {
	opts     Options
	narrator *Narrator
}

// NewService creates the narration service
func NewService(opts Options) *Service {
	return &Service{opts: opts}
}

func (s *Service) Name() string { return "narration" }

func (s *Service) Dependencies() []string { return nil }

// Init builds the narrator; backend detection is deferred to Start
func (s *Service) Init(context.Context) error {
	s.narrator = New(s.opts)
	return nil
}

// Start resolves the TTS backend
func (s *Service) Start(ctx context.Context) error {
	return s.narrator.Init(ctx)
}

// Stop cancels speech in progress
func (s *Service) Stop() error {
	if s.narrator != nil {
		s.narrator.Close()
	}
	return nil
}

// Narrator returns the narrator; nil before Init
func (s *Service) Narrator() *Narrator { return s.narrator }
