package audio

import (
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"
)

// Buffer holds rendered mono samples; immutable after render
type Buffer struct {
	samples []float64
	rate    beep.SampleRate
}

// Len returns the sample count
func (b *Buffer) Len() int { return len(b.samples) }

// SampleRate returns the render rate
func (b *Buffer) SampleRate() beep.SampleRate { return b.rate }

// Duration returns the buffer length in time
func (b *Buffer) Duration() time.Duration { return b.rate.D(len(b.samples)) }

// At returns sample i, or 0 outside the buffer
func (b *Buffer) At(i int) float64 {
	if i < 0 || i >= len(b.samples) {
		return 0
	}
	return b.samples[i]
}

// Peak returns the largest absolute sample
func (b *Buffer) Peak() float64 {
	var peak float64
	for _, s := range b.samples {
		peak = math.Max(peak, math.Abs(s))
	}
	return peak
}

// Streamer returns an independent stereo cursor over the buffer
func (b *Buffer) Streamer() beep.StreamSeeker {
	return &bufferStreamer{buf: b}
}

type bufferStreamer struct {
	buf *Buffer
	pos int
}

func (s *bufferStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= len(s.buf.samples) {
		return 0, false
	}
	n := copy2(samples, s.buf.samples[s.pos:])
	s.pos += n
	return n, true
}

func (s *bufferStreamer) Err() error    { return nil }
func (s *bufferStreamer) Len() int      { return len(s.buf.samples) }
func (s *bufferStreamer) Position() int { return s.pos }

func (s *bufferStreamer) Seek(p int) error {
	if p < 0 || p > len(s.buf.samples) {
		return fmt.Errorf("seek %d out of range [0, %d]", p, len(s.buf.samples))
	}
	s.pos = p
	return nil
}

func copy2(dst [][2]float64, src []float64) int {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i][0] = src[i]
		dst[i][1] = src[i]
	}
	return n
}

// renderEffect synthesizes kind offline at rate
func renderEffect(kind EffectKind, rate beep.SampleRate) (*Buffer, error) {
	def, ok := effectDefinition(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownEffect, kind)
	}
	if rate <= 0 {
		return nil, fmt.Errorf("render %v: invalid sample rate %d", kind, rate)
	}

	sr := float64(rate)
	out := make([]float64, rate.N(def.length))
	stopN := min(rate.N(def.stop), len(out))

	// One-pole low-pass
	var alpha, lp float64
	if def.cutoff > 0 {
		alpha = 1 - math.Exp(-2*math.Pi*def.cutoff/sr)
	}

	phase := 0.0
	for i := 0; i < stopN; i++ {
		t := float64(i) / sr
		s := waveSample(def.wave, phase)
		if def.cutoff > 0 {
			lp += alpha * (s - lp)
			s = lp
		}
		out[i] = s * def.gain.valueAt(t)

		phase += def.freq.valueAt(t) / sr
		phase -= math.Floor(phase)
	}

	return &Buffer{samples: out, rate: rate}, nil
}
