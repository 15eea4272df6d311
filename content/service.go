package content

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/lixenwraith/eduvoice/quiz"
	"github.com/lixenwraith/eduvoice/service"
)

var _ service.Service = (*Service)(nil)

// Options selects the question source
type Options struct {
	File   string // YAML quiz file, empty for the built-in bank
	Count  int    // Questions per session, 0 for all
	Seed   uint64 // Shuffle seed, 0 for time-based
	Logger *slog.Logger
}

// Service loads the quiz once at Init
type Service struct {
	opts Options
	quiz quiz.Quiz
}

// NewService creates a new content service
func NewService(opts Options) *Service {
	return &Service{opts: opts}
}

// Name implements Service
func (s *Service) Name() string {
	return "content"
}

// Dependencies implements Service
func (s *Service) Dependencies() []string {
	return nil
}

// Init implements Service; a bad quiz file fails startup
func (s *Service) Init(context.Context) error {
	var (
		q   quiz.Quiz
		err error
	)
	if s.opts.File != "" {
		q, err = LoadFile(s.opts.File)
	} else {
		q, err = Default()
	}
	if err != nil {
		return err
	}

	seed := s.opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	if s.opts.Count > 0 {
		q = Sample(q, s.opts.Count, rand.New(rand.NewPCG(seed, seed>>1)))
	}
	s.quiz = q

	if s.opts.Logger != nil {
		s.opts.Logger.Info("quiz loaded", "component", "content", "topic", q.Topic, "questions", len(q.Questions))
	}
	return nil
}

// Start implements Service
func (s *Service) Start(context.Context) error { return nil }

// Stop implements Service
func (s *Service) Stop() error { return nil }

// Quiz returns the loaded quiz
func (s *Service) Quiz() quiz.Quiz { return s.quiz }

// SetQuiz replaces the loaded quiz, used when replaying from history
func (s *Service) SetQuiz(q quiz.Quiz) { s.quiz = q }
