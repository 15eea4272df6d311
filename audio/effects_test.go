package audio

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/eduvoice/constant"
)

const testRate = beep.SampleRate(constant.AudioSampleRate)

// TestAutomationValueAt verifies set, linear and exponential segments
func TestAutomationValueAt(t *testing.T) {
	def, ok := effectDefinition(EffectCorrect)
	require.True(t, ok)

	assert.InDelta(t, 523.25, def.freq.valueAt(0.05), 1e-9)
	assert.InDelta(t, 659.25, def.freq.valueAt(0.1), 1e-9)
	assert.InDelta(t, math.Sqrt(659.25*1046.5), def.freq.valueAt(0.15), 1e-6)
	assert.InDelta(t, 1046.5, def.freq.valueAt(0.5), 1e-9)

	assert.InDelta(t, 0.0, def.gain.valueAt(0), 1e-9)
	assert.InDelta(t, 0.15, def.gain.valueAt(0.025), 1e-9)
	assert.InDelta(t, 0.3, def.gain.valueAt(0.05), 1e-9)
	assert.InDelta(t, 0.01, def.gain.valueAt(0.7), 1e-9)
}

// TestExpRampHoldsAcrossZero verifies an exponential ramp from 0 holds the start value
func TestExpRampHoldsAcrossZero(t *testing.T) {
	a := newAutomation(0).set(0, 0).exp(1, 1)
	assert.Zero(t, a.valueAt(0.5))
	assert.Equal(t, 1.0, a.valueAt(1))
}

// TestRenderEffectShape verifies buffer length, silence after stop and peak level
func TestRenderEffectShape(t *testing.T) {
	tests := []struct {
		kind   EffectKind
		length time.Duration
		stop   time.Duration
		peak   float64
	}{
		{EffectCorrect, constant.CorrectSoundLength, constant.CorrectSoundStop, constant.CorrectSoundPeakGain},
		{EffectWrong, constant.WrongSoundLength, constant.WrongSoundStop, constant.WrongSoundPeakGain},
		{EffectClick, constant.ClickSoundLength, constant.ClickSoundStop, constant.ClickSoundPeakGain},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			buf, err := renderEffect(tt.kind, testRate)
			require.NoError(t, err)
			assert.Equal(t, testRate.N(tt.length), buf.Len())
			assert.Equal(t, testRate, buf.SampleRate())

			for i := testRate.N(tt.stop); i < buf.Len(); i++ {
				require.Zero(t, buf.At(i), "sample %d after stop", i)
			}
			assert.Greater(t, buf.Peak(), 0.0)
			assert.LessOrEqual(t, buf.Peak(), tt.peak+1e-9)
		})
	}
}

// TestRenderDeterministic verifies identical output across renders
func TestRenderDeterministic(t *testing.T) {
	a, err := renderEffect(EffectWrong, testRate)
	require.NoError(t, err)
	b, err := renderEffect(EffectWrong, testRate)
	require.NoError(t, err)
	assert.Equal(t, a.samples, b.samples)
}

func TestRenderUnknownKind(t *testing.T) {
	_, err := renderEffect(EffectKind(99), testRate)
	assert.ErrorIs(t, err, ErrUnknownEffect)
}

// TestCacheSharesInflightRender verifies concurrent requests render once
func TestCacheSharesInflightRender(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	cache := newEffectCache(func(k EffectKind) (*Buffer, error) {
		calls.Add(1)
		<-release
		return renderEffect(k, testRate)
	})

	const callers = 16
	var wg sync.WaitGroup
	results := make([]*Buffer, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			buf, err := cache.get(context.Background(), EffectCorrect)
			assert.NoError(t, err)
			results[i] = buf
		}(i)
	}

	// Let the callers pile up on the pending entry
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

// TestCacheRetriesFailedRender verifies failures are not memoized
func TestCacheRetriesFailedRender(t *testing.T) {
	var calls atomic.Int32
	cache := newEffectCache(func(k EffectKind) (*Buffer, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("boom")
		}
		return renderEffect(k, testRate)
	})

	_, err := cache.get(context.Background(), EffectClick)
	require.Error(t, err)
	_, ok := cache.ready(EffectClick)
	assert.False(t, ok)

	buf, err := cache.get(context.Background(), EffectClick)
	require.NoError(t, err)
	assert.NotNil(t, buf)
	assert.Equal(t, int32(2), calls.Load())

	_, ok = cache.ready(EffectClick)
	assert.True(t, ok)
}

// TestDroneFadeIn verifies voices start silent, ramp up, and stop on request
func TestDroneFadeIn(t *testing.T) {
	d, ok := newDrone(MoodZen, testRate)
	require.True(t, ok)
	assert.Equal(t, 4, d.sounding())

	frames := make([][2]float64, testRate.N(time.Second))
	n, ok := d.Stream(frames)
	require.True(t, ok)
	require.Equal(t, len(frames), n)
	assert.Zero(t, frames[0][0])

	var early, late float64
	for i := 0; i < 1000; i++ {
		early = math.Max(early, math.Abs(frames[i][0]))
		late = math.Max(late, math.Abs(frames[len(frames)-1000+i][0]))
	}
	assert.Less(t, early, late)
	assert.LessOrEqual(t, late, constant.DroneVoiceGain/4+1e-9)

	d.stop()
	n, ok = d.Stream(frames)
	assert.False(t, ok)
	assert.Zero(t, n)
	assert.Zero(t, d.sounding())
}

// TestBusGainSmoothing verifies gain approaches the target without jumping
func TestBusGainSmoothing(t *testing.T) {
	b := newBus(testRate, 0)
	b.setTarget(1)

	frames := make([][2]float64, 1)
	b.Stream(frames)
	assert.Less(t, b.currentGain(), 0.01)

	frames = make([][2]float64, testRate.N(100*time.Millisecond))
	b.Stream(frames)
	// One time constant reaches ~63%
	assert.InDelta(t, 1-math.Exp(-1), b.currentGain(), 0.01)

	frames = make([][2]float64, testRate.N(time.Second))
	b.Stream(frames)
	assert.InDelta(t, 1.0, b.currentGain(), 1e-3)
	assert.Equal(t, 1.0, b.targetGain())

	b.setTarget(3)
	assert.Equal(t, 1.0, b.targetGain())
}

func TestParseEffectKind(t *testing.T) {
	k, err := ParseEffectKind(" Wrong ")
	require.NoError(t, err)
	assert.Equal(t, EffectWrong, k)

	_, err = ParseEffectKind("boing")
	assert.ErrorIs(t, err, ErrUnknownEffect)
}
