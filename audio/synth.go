package audio

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gopxl/beep"
)

// Synth renders effects and drives the ambient drone
type Synth struct {
	rate  beep.SampleRate
	cache *effectCache
	music *bus
	log   *slog.Logger

	mu    sync.Mutex
	drone *drone
}

func newSynth(rate beep.SampleRate, music *bus, render renderFunc, log *slog.Logger) *Synth {
	if render == nil {
		render = func(k EffectKind) (*Buffer, error) { return renderEffect(k, rate) }
	}
	return &Synth{rate: rate, cache: newEffectCache(render), music: music, log: orDiscard(log)}
}

// Render returns the memoized buffer for kind, rendering on first use
func (s *Synth) Render(ctx context.Context, kind EffectKind) (*Buffer, error) {
	return s.cache.get(ctx, kind)
}

// Renders reports how many times the render routine ran
func (s *Synth) Renders() int64 { return s.cache.renders.Load() }

// StartAmbient replaces any running drone with a new one for mood
func (s *Synth) StartAmbient(m Mood) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.drone != nil {
		s.drone.stop()
		s.drone = nil
	}
	d, ok := newDrone(m, s.rate)
	if !ok {
		s.log.Warn("unknown mood", "component", "audio", "mood", m)
		return
	}
	s.drone = d
	s.music.add(d)
}

// StopAmbient silences the drone; safe when idle
func (s *Synth) StopAmbient() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drone != nil {
		s.drone.stop()
		s.drone = nil
	}
}

// ActiveVoices returns the number of sounding drone voices
func (s *Synth) ActiveVoices() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drone == nil {
		return 0
	}
	return s.drone.sounding()
}
