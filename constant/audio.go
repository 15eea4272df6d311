package constant

import "time"

// Audio Hardware Settings
const (
	// AudioSampleRate matches the rate effects are rendered at; output resamples if needed
	AudioSampleRate = 24000

	// AudioBufferDuration determines output latency
	AudioBufferDuration = 100 * time.Millisecond
)

// Bus Defaults
const (
	DefaultMusicVolume = 0.3
	DefaultVoiceVolume = 1.0

	// SFXVolume is fixed; only mute affects it
	SFXVolume = 0.5

	// BusTimeConstant is the smoothing time constant for bus gain changes
	BusTimeConstant = 100 * time.Millisecond
)

// Correct Sound
const (
	CorrectSoundLength    = 800 * time.Millisecond
	CorrectSoundStop      = 600 * time.Millisecond
	CorrectSoundAttack    = 50 * time.Millisecond
	CorrectSoundNote2At   = 100 * time.Millisecond
	CorrectSoundSweepEnd  = 200 * time.Millisecond
	CorrectSoundPeakGain  = 0.3
	CorrectSoundFloorGain = 0.01
)

// Wrong Sound
const (
	WrongSoundLength    = 600 * time.Millisecond
	WrongSoundStop      = 400 * time.Millisecond
	WrongSoundStartFreq = 150.0 // Hz
	WrongSoundEndFreq   = 50.0  // Hz
	WrongSoundCutoff    = 400.0 // Hz, low-pass
	WrongSoundPeakGain  = 0.3
	WrongSoundFloorGain = 0.01
)

// Click Sound
const (
	ClickSoundLength    = 100 * time.Millisecond
	ClickSoundStop      = 50 * time.Millisecond
	ClickSoundFreq      = 800.0 // Hz
	ClickSoundPeakGain  = 0.05
	ClickSoundFloorGain = 0.01
)

// Ambient Drone
const (
	// DroneFadeIn is the linear gain ramp per voice
	DroneFadeIn = 4 * time.Second

	// DroneStagger delays each successive voice's ramp
	DroneStagger = 1500 * time.Millisecond

	// DroneVoiceGain is the per-voice target level before bus gain
	DroneVoiceGain = 0.12

	// DroneLFODepth is the pitch wobble depth in Hz
	DroneLFODepth = 1.5
)

// Effect queue
const (
	// EffectQueueSize bounds pending effect plays; extra requests are dropped
	EffectQueueSize = 16
)
