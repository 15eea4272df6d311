package audio

import (
	"math"
	"time"

	"github.com/lixenwraith/eduvoice/constant"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveTriangle
)

// waveSample evaluates a unit waveform at phase in [0,1)
func waveSample(wave WaveType, phase float64) float64 {
	switch wave {
	case WaveSquare:
		if phase < 0.5 {
			return 1.0
		}
		return -1.0
	case WaveSaw:
		return 2.0 * (phase - 0.5)
	case WaveTriangle:
		if phase < 0.5 {
			return 4.0*phase - 1.0
		}
		return 3.0 - 4.0*phase
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// effectDef describes one offline-rendered sound effect
type effectDef struct {
	wave   WaveType
	freq   automation
	gain   automation
	cutoff float64 // Low-pass cutoff in Hz, 0 disables
	stop   time.Duration
	length time.Duration
}

func secs(d time.Duration) float64 { return d.Seconds() }

// effectDefinition returns the synthesis recipe for kind
func effectDefinition(kind EffectKind) (effectDef, bool) {
	switch kind {
	case EffectCorrect:
		return effectDef{
			wave: WaveTriangle,
			freq: newAutomation(523.25).
				set(523.25, 0).
				set(659.25, secs(constant.CorrectSoundNote2At)).
				exp(1046.5, secs(constant.CorrectSoundSweepEnd)),
			gain: newAutomation(0).
				set(0, 0).
				linear(constant.CorrectSoundPeakGain, secs(constant.CorrectSoundAttack)).
				exp(constant.CorrectSoundFloorGain, secs(constant.CorrectSoundStop)),
			stop:   constant.CorrectSoundStop,
			length: constant.CorrectSoundLength,
		}, true

	case EffectWrong:
		return effectDef{
			wave: WaveSaw,
			freq: newAutomation(constant.WrongSoundStartFreq).
				set(constant.WrongSoundStartFreq, 0).
				exp(constant.WrongSoundEndFreq, secs(constant.WrongSoundStop)),
			gain: newAutomation(constant.WrongSoundPeakGain).
				set(constant.WrongSoundPeakGain, 0).
				exp(constant.WrongSoundFloorGain, secs(constant.WrongSoundStop)),
			cutoff: constant.WrongSoundCutoff,
			stop:   constant.WrongSoundStop,
			length: constant.WrongSoundLength,
		}, true

	case EffectClick:
		return effectDef{
			wave: WaveSine,
			freq: newAutomation(constant.ClickSoundFreq),
			gain: newAutomation(constant.ClickSoundPeakGain).
				set(constant.ClickSoundPeakGain, 0).
				exp(constant.ClickSoundFloorGain, secs(constant.ClickSoundStop)),
			stop:   constant.ClickSoundStop,
			length: constant.ClickSoundLength,
		}, true
	}
	return effectDef{}, false
}
