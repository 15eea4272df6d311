package audio

import (
	"math"

	"github.com/lixenwraith/eduvoice/constant"
)

// AudioConfig is the user-facing audio state
// Owned by the UI layer and passed by value on every change
type AudioConfig struct {
	MusicVolume    float64 // 0.0-1.0
	VoiceVolume    float64 // 0.0-1.0
	IsMuted        bool
	ActiveTrack    TrackID
	CustomFile     string // Path of the user-chosen file, empty until one is picked
	CustomFileName string
}

// DefaultAudioConfig returns the startup configuration
func DefaultAudioConfig() AudioConfig {
	return AudioConfig{
		MusicVolume: constant.DefaultMusicVolume,
		VoiceVolume: constant.DefaultVoiceVolume,
		ActiveTrack: TrackZen,
	}
}

// Clamp limits a volume to [0,1]; NaN maps to 0
func Clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Normalized returns a copy with volumes clamped and an empty track defaulted
func (c AudioConfig) Normalized() AudioConfig {
	c.MusicVolume = Clamp(c.MusicVolume)
	c.VoiceVolume = Clamp(c.VoiceVolume)
	if c.ActiveTrack == "" {
		c.ActiveTrack = TrackZen
	}
	return c
}

// EffectiveMusic is the music bus target; mute forces 0 without touching MusicVolume
func (c AudioConfig) EffectiveMusic() float64 {
	if c.IsMuted {
		return 0
	}
	return Clamp(c.MusicVolume)
}

// EffectiveSFX is the effects bus target
func (c AudioConfig) EffectiveSFX() float64 {
	if c.IsMuted {
		return 0
	}
	return constant.SFXVolume
}

// EffectiveVoice is the narration volume
func (c AudioConfig) EffectiveVoice() float64 {
	if c.IsMuted {
		return 0
	}
	return Clamp(c.VoiceVolume)
}
