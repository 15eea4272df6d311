package audio

import (
	"math"
	"sync"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/eduvoice/constant"
)

// moodPatch is the fixed voicing of one mood
type moodPatch struct {
	freqs   []float64
	wave    WaveType
	lfoRate float64 // Hz, base rate; each voice drifts slightly faster
}

func moodPatchFor(m Mood) (moodPatch, bool) {
	switch m {
	case MoodZen:
		// C3 G3 C4 E4
		return moodPatch{freqs: chordFreqs(48, 55, 60, 64), wave: WaveSine, lfoRate: 0.10}, true
	case MoodCosmos:
		// A2 E3 B3 D4
		return moodPatch{freqs: chordFreqs(45, 52, 59, 62), wave: WaveTriangle, lfoRate: 0.07}, true
	case MoodFocus:
		// D3 A3 D4 F4
		return moodPatch{freqs: chordFreqs(50, 57, 62, 65), wave: WaveSine, lfoRate: 0.20}, true
	}
	return moodPatch{}, false
}

// droneVoice is one oscillator with its pitch LFO and linear fade-in
type droneVoice struct {
	freq     float64
	wave     WaveType
	lfoRate  float64
	phase    float64
	lfoPhase float64
	delay    int // samples before the ramp starts
	ramp     int // ramp length in samples
	pos      int
}

func (v *droneVoice) sample(sr float64) float64 {
	var env float64
	if v.pos >= v.delay {
		env = 1.0
		if v.ramp > 0 && v.pos-v.delay < v.ramp {
			env = float64(v.pos-v.delay) / float64(v.ramp)
		}
	}
	v.pos++

	out := waveSample(v.wave, v.phase) * env * constant.DroneVoiceGain

	f := v.freq + constant.DroneLFODepth*math.Sin(2*math.Pi*v.lfoPhase)
	v.phase += f / sr
	v.phase -= math.Floor(v.phase)
	v.lfoPhase += v.lfoRate / sr
	v.lfoPhase -= math.Floor(v.lfoPhase)
	return out
}

// drone streams a chord until stopped; the bus drops it once Stream reports done
type drone struct {
	mu      sync.Mutex
	mood    Mood
	voices  []*droneVoice
	rate    beep.SampleRate
	stopped bool
}

func newDrone(m Mood, rate beep.SampleRate) (*drone, bool) {
	patch, ok := moodPatchFor(m)
	if !ok {
		return nil, false
	}
	d := &drone{mood: m, rate: rate, voices: make([]*droneVoice, len(patch.freqs))}
	for i, f := range patch.freqs {
		d.voices[i] = &droneVoice{
			freq:    f,
			wave:    patch.wave,
			lfoRate: patch.lfoRate * (1 + 0.15*float64(i)),
			delay:   rate.N(constant.DroneStagger) * i,
			ramp:    rate.N(constant.DroneFadeIn),
		}
	}
	return d, true
}

func (d *drone) Stream(samples [][2]float64) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return 0, false
	}
	sr := float64(d.rate)
	for i := range samples {
		var s float64
		for _, v := range d.voices {
			s += v.sample(sr)
		}
		samples[i][0] = s
		samples[i][1] = s
	}
	return len(samples), true
}

func (d *drone) Err() error { return nil }

func (d *drone) stop() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}

func (d *drone) sounding() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return 0
	}
	return len(d.voices)
}
