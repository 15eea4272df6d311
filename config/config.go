// Package config loads eduvoice settings from file, environment and .env
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/eduvoice/audio"
	"github.com/lixenwraith/eduvoice/constant"
)

// Config holds every configurable option
type Config struct {
	Audio     AudioSection     `mapstructure:"audio" yaml:"audio"`
	Narration NarrationSection `mapstructure:"narration" yaml:"narration"`
	Quiz      QuizSection      `mapstructure:"quiz" yaml:"quiz"`
	Store     StoreSection     `mapstructure:"store" yaml:"store"`
	Log       LogSection       `mapstructure:"log" yaml:"log"`
}

// AudioSection configures the mixer and music tracks
type AudioSection struct {
	MusicVolume float64           `mapstructure:"music_volume" yaml:"music_volume"`
	VoiceVolume float64           `mapstructure:"voice_volume" yaml:"voice_volume"`
	Muted       bool              `mapstructure:"muted" yaml:"muted"`
	Track       string            `mapstructure:"track" yaml:"track"`
	CustomFile  string            `mapstructure:"custom_file" yaml:"custom_file"`
	Tracks      map[string]string `mapstructure:"tracks" yaml:"tracks,omitempty"` // id -> audio file path
	SampleRate  int               `mapstructure:"sample_rate" yaml:"sample_rate"`
	Output      string            `mapstructure:"output" yaml:"output"` // auto, speaker, pipe, none
}

// NarrationSection configures the TTS backend
type NarrationSection struct {
	Backend string  `mapstructure:"backend" yaml:"backend"` // auto, none, or a tool name
	Lang    string  `mapstructure:"lang" yaml:"lang"`
	Rate    float64 `mapstructure:"rate" yaml:"rate"`
	Voice   string  `mapstructure:"voice" yaml:"voice"`
}

// QuizSection configures the question source and flow timing
type QuizSection struct {
	AutoAdvance time.Duration `mapstructure:"auto_advance" yaml:"auto_advance"` // 0 disables
	File        string        `mapstructure:"file" yaml:"file"`
	Count       int           `mapstructure:"count" yaml:"count"` // 0 plays every question
	Seed        uint64        `mapstructure:"seed" yaml:"seed"`
}

// StoreSection locates the history database
type StoreSection struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LogSection enables file logging
type LogSection struct {
	Debug bool   `mapstructure:"debug" yaml:"debug"`
	File  string `mapstructure:"file" yaml:"file"`
}

// Speech rate bounds accepted by every backend
const (
	minSpeechRate = 0.5
	maxSpeechRate = 2.0
)

// Defaults returns the built-in configuration
func Defaults() Config {
	return Config{
		Audio: AudioSection{
			MusicVolume: constant.DefaultMusicVolume,
			VoiceVolume: constant.DefaultVoiceVolume,
			Track:       string(audio.TrackZen),
			SampleRate:  constant.AudioSampleRate,
			Output:      string(audio.OutputAuto),
		},
		Narration: NarrationSection{
			Backend: "auto",
			Lang:    "en",
			Rate:    constant.DefaultSpeechRate,
		},
		Quiz: QuizSection{
			AutoAdvance: constant.DefaultAutoAdvance,
		},
		Store: StoreSection{
			Path: filepath.Join(HomeDir(), "eduvoice.db"),
		},
		Log: LogSection{
			File: filepath.Join("logs", "eduvoice.log"),
		},
	}
}

// HomeDir is the per-user data directory, falling back to the working directory
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".eduvoice"
	}
	return filepath.Join(home, ".eduvoice")
}

// Normalize clamps and defaults out-of-range values in place
func (c *Config) Normalize() {
	d := Defaults()

	c.Audio.MusicVolume = audio.Clamp(c.Audio.MusicVolume)
	c.Audio.VoiceVolume = audio.Clamp(c.Audio.VoiceVolume)
	if c.Audio.Track == "" {
		c.Audio.Track = d.Audio.Track
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = d.Audio.SampleRate
	}
	if c.Audio.Output == "" {
		c.Audio.Output = d.Audio.Output
	}

	if c.Narration.Backend == "" {
		c.Narration.Backend = d.Narration.Backend
	}
	if c.Narration.Lang == "" {
		c.Narration.Lang = d.Narration.Lang
	}
	switch {
	case c.Narration.Rate <= 0:
		c.Narration.Rate = d.Narration.Rate
	case c.Narration.Rate < minSpeechRate:
		c.Narration.Rate = minSpeechRate
	case c.Narration.Rate > maxSpeechRate:
		c.Narration.Rate = maxSpeechRate
	}

	c.Quiz.AutoAdvance = max(c.Quiz.AutoAdvance, 0)
	c.Quiz.Count = max(c.Quiz.Count, 0)

	if c.Store.Path == "" {
		c.Store.Path = d.Store.Path
	}
	if c.Log.File == "" {
		c.Log.File = d.Log.File
	}
}

// Validate rejects values that cannot be clamped into range
func (c Config) Validate() error {
	if _, err := audio.ParseOutputKind(c.Audio.Output); err != nil {
		return fmt.Errorf("audio.output: %w", err)
	}
	for id, path := range c.Audio.Tracks {
		if path == "" {
			return fmt.Errorf("audio.tracks.%s: empty path", id)
		}
	}
	return nil
}

// AudioConfig is the mixer state the config describes
func (c Config) AudioConfig() audio.AudioConfig {
	cfg := audio.AudioConfig{
		MusicVolume: c.Audio.MusicVolume,
		VoiceVolume: c.Audio.VoiceVolume,
		IsMuted:     c.Audio.Muted,
		ActiveTrack: audio.TrackID(c.Audio.Track),
		CustomFile:  c.Audio.CustomFile,
	}
	if cfg.CustomFile != "" {
		cfg.CustomFileName = filepath.Base(cfg.CustomFile)
	}
	return cfg.Normalized()
}

// WriteDefault writes the built-in configuration as YAML, refusing to overwrite
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	body, err := yaml.Marshal(Defaults())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, body, 0o644)
}
