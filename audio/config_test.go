package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/lixenwraith/eduvoice/constant"
)

// TestDefaultAudioConfig verifies startup defaults
func TestDefaultAudioConfig(t *testing.T) {
	cfg := DefaultAudioConfig()
	assert.Equal(t, constant.DefaultMusicVolume, cfg.MusicVolume)
	assert.Equal(t, constant.DefaultVoiceVolume, cfg.VoiceVolume)
	assert.False(t, cfg.IsMuted)
	assert.Equal(t, TrackZen, cfg.ActiveTrack)
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.3, 0.3},
		{1, 1},
		{1.7, 1},
		{math.NaN(), 0},
		{math.Inf(1), 1},
		{math.Inf(-1), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Clamp(tt.in), "Clamp(%v)", tt.in)
	}
}

// TestClampProperty verifies clamped volumes always land in [0,1]
func TestClampProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Float64().Draw(t, "v")
		got := Clamp(v)
		if got < 0 || got > 1 {
			t.Fatalf("Clamp(%v) = %v out of range", v, got)
		}
		if v >= 0 && v <= 1 && got != v {
			t.Fatalf("Clamp(%v) changed an in-range value to %v", v, got)
		}
	})
}

// TestMuteKeepsStoredVolumes verifies mute only affects effective levels
func TestMuteKeepsStoredVolumes(t *testing.T) {
	cfg := AudioConfig{MusicVolume: 0.3, VoiceVolume: 0.8}
	assert.Equal(t, 0.3, cfg.EffectiveMusic())
	assert.Equal(t, constant.SFXVolume, cfg.EffectiveSFX())
	assert.Equal(t, 0.8, cfg.EffectiveVoice())

	cfg.IsMuted = true
	assert.Zero(t, cfg.EffectiveMusic())
	assert.Zero(t, cfg.EffectiveSFX())
	assert.Zero(t, cfg.EffectiveVoice())
	assert.Equal(t, 0.3, cfg.MusicVolume)
}

func TestNormalized(t *testing.T) {
	cfg := AudioConfig{MusicVolume: 2, VoiceVolume: -1}.Normalized()
	assert.Equal(t, 1.0, cfg.MusicVolume)
	assert.Zero(t, cfg.VoiceVolume)
	assert.Equal(t, TrackZen, cfg.ActiveTrack)
}

func TestParseOutputKind(t *testing.T) {
	for in, want := range map[string]OutputKind{"": OutputAuto, "auto": OutputAuto, " Pipe ": OutputPipe, "speaker": OutputSpeaker, "none": OutputNone} {
		got, err := ParseOutputKind(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseOutputKind("hdmi")
	assert.Error(t, err)
}
