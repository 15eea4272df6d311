package audio

import (
	"math"
	"sync"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/eduvoice/constant"
)

// bus sums its inputs through a beep.Mixer and applies a smoothed gain
// Gain follows the target with a one-pole filter, so level changes never click
type bus struct {
	mu     sync.Mutex
	mixer  beep.Mixer
	target float64
	gain   float64
	coeff  float64
}

func newBus(rate beep.SampleRate, initial float64) *bus {
	initial = Clamp(initial)
	tau := constant.BusTimeConstant.Seconds()
	return &bus{
		target: initial,
		gain:   initial,
		coeff:  1 - math.Exp(-1/(tau*float64(rate))),
	}
}

func (b *bus) add(s ...beep.Streamer) {
	b.mu.Lock()
	b.mixer.Add(s...)
	b.mu.Unlock()
}

func (b *bus) clear() {
	b.mu.Lock()
	b.mixer.Clear()
	b.mu.Unlock()
}

func (b *bus) setTarget(v float64) {
	b.mu.Lock()
	b.target = Clamp(v)
	b.mu.Unlock()
}

func (b *bus) targetGain() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.target
}

func (b *bus) currentGain() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gain
}

func (b *bus) inputs() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mixer.Len()
}

// Stream never ends; an empty bus yields silence
func (b *bus) Stream(samples [][2]float64) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range samples {
		samples[i] = [2]float64{}
	}
	b.mixer.Stream(samples)

	for i := range samples {
		b.gain += (b.target - b.gain) * b.coeff
		samples[i][0] *= b.gain
		samples[i][1] *= b.gain
	}
	return len(samples), true
}

func (b *bus) Err() error { return nil }
