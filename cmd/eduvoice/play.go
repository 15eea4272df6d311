package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/eduvoice/audio"
	"github.com/lixenwraith/eduvoice/config"
	"github.com/lixenwraith/eduvoice/content"
	"github.com/lixenwraith/eduvoice/narration"
	"github.com/lixenwraith/eduvoice/quiz"
	"github.com/lixenwraith/eduvoice/service"
	"github.com/lixenwraith/eduvoice/store"
	"github.com/lixenwraith/eduvoice/ui"
)

type playFlags struct {
	quizFile  string
	historyID string
	track     string
	file      string
	mute      bool
	count     int
}

func newPlayCmd(c *cli) *cobra.Command {
	var f playFlags
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a quiz (the default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlay(cmd, c, f)
		},
	}
	cmd.Flags().StringVar(&f.quizFile, "quiz", "", "YAML quiz file (default: quiz.file or the built-in bank)")
	cmd.Flags().StringVar(&f.historyID, "history", "", "replay a saved quiz by id")
	cmd.Flags().StringVar(&f.track, "track", "", "music track id (see 'eduvoice tracks')")
	cmd.Flags().StringVar(&f.file, "file", "", "audio file for the custom track; selects it")
	cmd.Flags().BoolVar(&f.mute, "mute", false, "start muted")
	cmd.Flags().IntVar(&f.count, "count", -1, "questions per session, 0 for all (default: quiz.count)")
	return cmd
}

// session is the service graph behind one play
type session struct {
	hub       *service.Hub
	audio     *audio.AudioService
	narration *narration.Service
	content   *content.Service
	store     *store.Service
}

func newSession(c *cli, f playFlags, audioCfg audio.AudioConfig) (*session, error) {
	cfg := c.cfg

	quizFile := cfg.Quiz.File
	if f.quizFile != "" {
		quizFile = f.quizFile
	}
	count := cfg.Quiz.Count
	if f.count >= 0 {
		count = f.count
	}
	output, err := audio.ParseOutputKind(cfg.Audio.Output)
	if err != nil {
		return nil, err
	}

	s := &session{
		hub: service.NewHub(c.log),
		audio: audio.NewService(audio.ServiceOptions{
			SampleRate: cfg.Audio.SampleRate,
			Output:     output,
			Config:     audioCfg,
			Tracks:     cfg.Audio.Tracks,
			Logger:     c.log,
		}),
		narration: narration.NewService(narration.Options{
			Backend: cfg.Narration.Backend,
			Lang:    cfg.Narration.Lang,
			Voice:   cfg.Narration.Voice,
			Rate:    cfg.Narration.Rate,
			Volume:  audioCfg.EffectiveVoice(),
			Logger:  c.log,
		}),
		content: content.NewService(content.Options{
			File:   quizFile,
			Count:  count,
			Seed:   cfg.Quiz.Seed,
			Logger: c.log,
		}),
		store: store.NewService(cfg.Store.Path, c.log),
	}

	for _, svc := range []service.Service{s.audio, s.narration, s.content, s.store} {
		if err := s.hub.Register(svc); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// audioConfigFor applies play flags over the configured audio state
func audioConfigFor(cfg config.Config, f playFlags) audio.AudioConfig {
	ac := cfg.AudioConfig()
	if f.mute {
		ac.IsMuted = true
	}
	if f.file != "" {
		ac.CustomFile = f.file
		ac.CustomFileName = filepath.Base(f.file)
		ac.ActiveTrack = audio.TrackUpload
	}
	if f.track != "" {
		ac.ActiveTrack = audio.TrackID(f.track)
	}
	return ac
}

// pickQuiz loads the session quiz; a fresh quiz is saved so it appears in history
func (s *session) pickQuiz(ctx context.Context, historyID string) (quiz.Quiz, error) {
	repo := s.store.Repository()
	if historyID != "" {
		return repo.Get(ctx, historyID)
	}
	q := s.content.Quiz()
	q.ID = ""
	return repo.Save(ctx, q)
}

func runPlay(cmd *cobra.Command, c *cli, f playFlags) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	audioCfg := audioConfigFor(c.cfg, f)
	if _, err := audio.NewCatalog(c.cfg.Audio.Tracks).Lookup(audioCfg.ActiveTrack); err != nil {
		return fmt.Errorf("--track: %w", err)
	}

	s, err := newSession(c, f, audioCfg)
	if err != nil {
		return err
	}
	if err := s.hub.InitAll(ctx); err != nil {
		return err
	}
	if err := s.hub.StartAll(ctx); err != nil {
		return err
	}
	defer func() {
		if err := s.hub.StopAll(); err != nil {
			c.log.Warn("shutdown", "error", err)
		}
	}()

	q, err := s.pickQuiz(ctx, f.historyID)
	if err != nil {
		return err
	}

	engine := s.audio.Engine()
	narrator := s.narration.Narrator()
	controls := audio.NewControls(engine, s.audio.Switcher(), narrator)

	c.loader.Watch(func(next config.Config) {
		controls.Modify(func(cur *audio.AudioConfig) {
			cur.MusicVolume = next.Audio.MusicVolume
			cur.VoiceVolume = next.Audio.VoiceVolume
			cur.IsMuted = next.Audio.Muted
		})
	})

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	defer screen.Fini()

	c.log.Info("session started", "quiz", q.ID, "questions", len(q.Questions),
		"audio", engine.Stats().Output, "tts", narrator.BackendName())

	app := ui.New(ui.Options{
		Screen: screen,
		Quiz:   q,
		Flow: quiz.Options{
			Narrator: narrator,
			Effects:  engine,
			Ambient:  controls,
			Logger:   c.log,
		},
		Controls:    controls,
		Speaker:     narrator,
		History:     s.store.Repository(),
		AutoAdvance: c.cfg.Quiz.AutoAdvance,
		Logger:      c.log,
	})
	return app.Run(ctx)
}
