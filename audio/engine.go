package audio

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/eduvoice/constant"
)

// EngineOptions configures an Engine; zero values select defaults
type EngineOptions struct {
	SampleRate int
	Output     Output // nil runs the engine silent
	Opener     Opener // nil uses DecodeFile
	Config     AudioConfig
	Logger     *slog.Logger
}

// Engine owns the music and sfx buses, the file player and the synth
// Nodes are built lazily; the device opens only in Initialize
type Engine struct {
	rate   beep.SampleRate
	out    Output
	open   Opener
	render renderFunc
	log    *slog.Logger

	nodesOnce sync.Once
	music     *bus
	sfx       *bus
	file      *filePlayer
	synth     *Synth
	root      beep.Streamer

	initOnce sync.Once
	opened   atomic.Bool
	silent   atomic.Bool
	closed   atomic.Bool

	pending  chan struct{}
	inflight sync.WaitGroup
	played   atomic.Uint64
	dropped  atomic.Uint64

	mu  sync.Mutex
	cfg AudioConfig
}

// Stats reports engine counters
type Stats struct {
	Played  uint64
	Dropped uint64
	Renders int64
	Output  string
	Silent  bool
}

// NewEngine creates an engine without touching the audio device
func NewEngine(opts EngineOptions) *Engine {
	rate := opts.SampleRate
	if rate <= 0 {
		rate = constant.AudioSampleRate
	}
	cfg := opts.Config
	if cfg == (AudioConfig{}) {
		cfg = DefaultAudioConfig()
	}
	return &Engine{
		rate:    beep.SampleRate(rate),
		out:     opts.Output,
		open:    opts.Opener,
		log:     orDiscard(opts.Logger),
		pending: make(chan struct{}, constant.EffectQueueSize),
		cfg:     cfg.Normalized(),
	}
}

func (e *Engine) ensureNodes() {
	e.nodesOnce.Do(func() {
		cfg := e.Config()
		e.music = newBus(e.rate, cfg.EffectiveMusic())
		e.sfx = newBus(e.rate, cfg.EffectiveSFX())
		e.file = newFilePlayer(e.rate, e.open, e.log)
		e.music.add(e.file)
		e.synth = newSynth(e.rate, e.music, e.render, e.log)
		e.root = beep.Mix(e.music, e.sfx)
	})
}

// Initialize opens the output once; concurrent callers share the attempt
// Device failure switches the engine to silent mode and is not returned
func (e *Engine) Initialize(ctx context.Context) error {
	e.ensureNodes()
	e.initOnce.Do(func() {
		if e.out == nil {
			e.log.Info("audio output disabled", "component", "audio")
			e.silent.Store(true)
			return
		}
		if err := e.out.Open(e.rate, e.root); err != nil {
			e.log.Warn("audio output unavailable, running silent", "component", "audio", "output", e.out.Name(), "error", err)
			e.silent.Store(true)
			return
		}
		e.opened.Store(true)
		e.log.Info("audio output opened", "component", "audio", "output", e.out.Name(), "rate", int(e.rate))
	})

	if e.silent.Load() {
		return nil
	}
	if err := e.synth.cache.preload(ctx); err != nil {
		e.log.Warn("effect preload failed", "component", "audio", "error", err)
	}
	return nil
}

// Warmup builds the nodes and renders effects in the background
func (e *Engine) Warmup() {
	e.ensureNodes()
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		if err := e.synth.cache.preload(context.Background()); err != nil {
			e.log.Warn("effect warmup failed", "component", "audio", "error", err)
		}
	}()
}

// Silent reports whether the engine gave up on the output device
func (e *Engine) Silent() bool { return e.silent.Load() }

// Synth returns the synthesizer, building nodes if needed
func (e *Engine) Synth() *Synth {
	e.ensureNodes()
	return e.synth
}

// Config returns the last applied configuration
func (e *Engine) Config() AudioConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// ApplyConfig sets both bus targets from cfg; mute zeroes targets but keeps stored volumes
func (e *Engine) ApplyConfig(cfg AudioConfig) {
	cfg = cfg.Normalized()
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()

	e.ensureNodes()
	e.music.setTarget(cfg.EffectiveMusic())
	e.sfx.setTarget(cfg.EffectiveSFX())
}

// SetBusVolume moves bus b toward level, clamped to [0,1]
func (e *Engine) SetBusVolume(b Bus, level float64) {
	e.ensureNodes()
	e.busFor(b).setTarget(level)
}

// BusTarget returns the target gain of bus b
func (e *Engine) BusTarget(b Bus) float64 {
	e.ensureNodes()
	return e.busFor(b).targetGain()
}

// BusGain returns the current smoothed gain of bus b
func (e *Engine) BusGain(b Bus) float64 {
	e.ensureNodes()
	return e.busFor(b).currentGain()
}

func (e *Engine) busFor(b Bus) *bus {
	if b == BusSFX {
		return e.sfx
	}
	return e.music
}

// PlayEffect schedules kind on the sfx bus and returns immediately
// Returns false when silent or the pending queue is full
func (e *Engine) PlayEffect(kind EffectKind) bool {
	if e.silent.Load() || e.closed.Load() {
		return false
	}
	e.ensureNodes()

	if buf, ok := e.synth.cache.ready(kind); ok {
		e.sfx.add(buf.Streamer())
		e.played.Add(1)
		return true
	}

	select {
	case e.pending <- struct{}{}:
	default:
		e.dropped.Add(1)
		return false
	}

	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		defer func() { <-e.pending }()

		buf, err := e.synth.Render(context.Background(), kind)
		if err != nil {
			e.log.Warn("effect render failed", "component", "audio", "effect", kind.String(), "error", err)
			return
		}
		e.sfx.add(buf.Streamer())
		e.played.Add(1)
	}()
	return true
}

// StartAmbient pauses file playback and starts a drone for mood
func (e *Engine) StartAmbient(m Mood) {
	if e.silent.Load() || e.closed.Load() {
		return
	}
	e.ensureNodes()
	e.file.pause()
	e.synth.StartAmbient(m)
}

// StopAmbient stops the drone; safe when idle
func (e *Engine) StopAmbient() {
	e.ensureNodes()
	e.synth.StopAmbient()
}

// PlayFile stops the drone and plays path through the file player
// A paused source resumes where it stopped
func (e *Engine) PlayFile(path string) error {
	return e.playFile(path, false)
}

// RestartFile is PlayFile from the first sample, even for the current source
func (e *Engine) RestartFile(path string) error {
	return e.playFile(path, true)
}

func (e *Engine) playFile(path string, restart bool) error {
	if e.silent.Load() || e.closed.Load() {
		return nil
	}
	e.ensureNodes()
	e.synth.StopAmbient()
	if err := e.file.play(path, restart); err != nil {
		e.log.Warn("file playback failed", "component", "audio", "source", path, "error", err)
		return err
	}
	return nil
}

// StopMusic silences both music families
func (e *Engine) StopMusic() {
	e.ensureNodes()
	e.synth.StopAmbient()
	e.file.pause()
}

// MusicPlaying reports whether a drone or the file player is sounding
func (e *Engine) MusicPlaying() bool {
	e.ensureNodes()
	return e.synth.ActiveVoices() > 0 || e.file.isPlaying()
}

// FilePlaying reports whether the file player is sounding
func (e *Engine) FilePlaying() bool {
	e.ensureNodes()
	return e.file.isPlaying()
}

// FileSource returns the file player's current source
func (e *Engine) FileSource() string {
	e.ensureNodes()
	return e.file.currentSource()
}

// Stats returns a snapshot of engine counters
func (e *Engine) Stats() Stats {
	e.ensureNodes()
	st := Stats{
		Played:  e.played.Load(),
		Dropped: e.dropped.Load(),
		Silent:  e.silent.Load(),
	}
	st.Renders = e.synth.Renders()
	if e.out != nil && e.opened.Load() {
		st.Output = e.out.Name()
	}
	return st
}

// Close stops playback and releases the device
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	e.inflight.Wait()
	e.ensureNodes()
	e.synth.StopAmbient()
	e.file.close()
	if e.opened.Load() {
		return e.out.Close()
	}
	return nil
}
