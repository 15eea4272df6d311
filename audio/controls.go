package audio

import "sync"

// VoiceVolume receives the effective narration volume
type VoiceVolume interface {
	SetVolume(float64)
}

// Controls applies AudioConfig changes to the engine, switcher and narration
// It is the single writer of the user's audio settings
type Controls struct {
	applyMu  sync.Mutex // serializes writers through the collaborators
	mu       sync.Mutex
	cfg      AudioConfig
	engine   *Engine
	switcher *Switcher
	voice    VoiceVolume
	watchers []func(AudioConfig)
}

// NewControls wires the collaborators; voice may be nil
func NewControls(engine *Engine, switcher *Switcher, voice VoiceVolume) *Controls {
	return &Controls{cfg: engine.Config(), engine: engine, switcher: switcher, voice: voice}
}

// Config returns the current settings
func (c *Controls) Config() AudioConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// OnChange registers fn to receive every applied config
// fn runs inside the write and must not call back into Controls
func (c *Controls) OnChange(fn func(AudioConfig)) {
	c.mu.Lock()
	c.watchers = append(c.watchers, fn)
	c.mu.Unlock()
}

// Update applies cfg; track selection is idempotent so echoes do not restart music
func (c *Controls) Update(cfg AudioConfig) {
	c.modify(func(cur *AudioConfig) { *cur = cfg }, false)
}

// Modify applies fn to the current settings as one atomic edit
func (c *Controls) Modify(fn func(*AudioConfig)) AudioConfig {
	return c.modify(fn, false)
}

// modify runs read, edit and apply as one step; collaborators see writes in order
func (c *Controls) modify(fn func(*AudioConfig), restart bool) AudioConfig {
	c.applyMu.Lock()
	defer c.applyMu.Unlock()

	c.mu.Lock()
	cfg := c.cfg
	fn(&cfg)
	cfg = cfg.Normalized()
	c.cfg = cfg
	watchers := append([]func(AudioConfig){}, c.watchers...)
	c.mu.Unlock()

	c.apply(cfg, watchers, restart)
	return cfg
}

// apply must be called with applyMu held
func (c *Controls) apply(cfg AudioConfig, watchers []func(AudioConfig), restart bool) {
	c.engine.ApplyConfig(cfg)
	if c.voice != nil {
		c.voice.SetVolume(cfg.EffectiveVoice())
	}
	if path, _ := c.switcher.Upload(); path != cfg.CustomFile {
		c.switcher.SetUploadFile(cfg.CustomFile, cfg.CustomFileName)
	}
	if !cfg.IsMuted && cfg.MusicVolume > 0 {
		if restart {
			c.switcher.ForcePlay(cfg.ActiveTrack)
		} else {
			c.switcher.SetActiveTrack(cfg.ActiveTrack)
		}
	}

	for _, fn := range watchers {
		fn(cfg)
	}
}

// ToggleMute flips mute and returns the new state
func (c *Controls) ToggleMute() bool {
	cfg := c.modify(func(cfg *AudioConfig) { cfg.IsMuted = !cfg.IsMuted }, false)
	return cfg.IsMuted
}

// AdjustMusic changes music volume by delta and unmutes
func (c *Controls) AdjustMusic(delta float64) {
	c.modify(func(cfg *AudioConfig) {
		cfg.MusicVolume = Clamp(cfg.MusicVolume + delta)
		cfg.IsMuted = false
	}, false)
}

// AdjustVoice changes narration volume by delta and unmutes
func (c *Controls) AdjustVoice(delta float64) {
	c.modify(func(cfg *AudioConfig) {
		cfg.VoiceVolume = Clamp(cfg.VoiceVolume + delta)
		cfg.IsMuted = false
	}, false)
}

// SelectTrack makes id active and force-restarts it
func (c *Controls) SelectTrack(id TrackID) error {
	if _, err := c.switcher.Catalog().Lookup(id); err != nil {
		return err
	}
	c.modify(func(cfg *AudioConfig) { cfg.ActiveTrack = id }, true)
	return nil
}

// Tracks lists the selectable tracks in cycle order
func (c *Controls) Tracks() []Track {
	return c.switcher.Catalog().Tracks()
}

// CycleTrack selects the next catalog track
func (c *Controls) CycleTrack() TrackID {
	cfg := c.modify(func(cfg *AudioConfig) {
		cfg.ActiveTrack = c.switcher.Catalog().Next(cfg.ActiveTrack)
	}, true)
	return cfg.ActiveTrack
}

// SetCustomFile assigns the upload file and selects the upload track
func (c *Controls) SetCustomFile(path, name string) {
	c.modify(func(cfg *AudioConfig) {
		cfg.CustomFile, cfg.CustomFileName = path, name
		cfg.ActiveTrack = TrackUpload
	}, false)
}

// Resume reapplies the current settings, restarting music if it stopped
func (c *Controls) Resume() {
	c.modify(func(*AudioConfig) {}, false)
}
