package store

import (
	"context"
	"log/slog"

	"github.com/lixenwraith/eduvoice/service"
)

var _ service.Service = (*Service)(nil)

// Service opens the history database at Init
type Service struct {
	path string
	log  *slog.Logger
	db   *DB
	repo *Repository
}

// NewService creates a store service for the database at path
func NewService(path string, log *slog.Logger) *Service {
	return &Service{path: path, log: log}
}

// Name implements Service
func (s *Service) Name() string {
	return "store"
}

// Dependencies implements Service
func (s *Service) Dependencies() []string {
	return nil
}

// Init implements Service
func (s *Service) Init(context.Context) error {
	db, err := Open(s.path, s.log)
	if err != nil {
		return err
	}
	s.db = db
	s.repo = NewRepository(db)
	return nil
}

// Start implements Service
func (s *Service) Start(context.Context) error { return nil }

// Stop implements Service
func (s *Service) Stop() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Repository returns the repository; nil before Init
func (s *Service) Repository() *Repository {
	return s.repo
}
