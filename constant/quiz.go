package constant

import "time"

// Narration timing
const (
	// NarrationPerRune is the safety budget per character of narrated text
	NarrationPerRune = 100 * time.Millisecond

	// NarrationFloor is added to every safety timeout
	NarrationFloor = 5000 * time.Millisecond

	// DefaultSpeechRate mirrors the original 1.1x speaking rate
	DefaultSpeechRate = 1.1
)

// Quiz flow timing
const (
	// DefaultAutoAdvance is the delay after feedback before moving on; 0 disables it
	DefaultAutoAdvance = 4 * time.Second

	// MinOptions is the smallest option count a question may carry
	MinOptions = 2
)

// UI timing
const (
	// FrameUpdateInterval is the redraw tick for the speaking indicator
	FrameUpdateInterval = 120 * time.Millisecond
)
