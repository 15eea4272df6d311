package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// EffectKind represents the synthesized sound effects
type EffectKind int

const (
	EffectCorrect EffectKind = iota // Right answer chime
	EffectWrong                     // Wrong answer buzz
	EffectClick                     // Navigation tick
	effectKindCount
)

var effectNames = [effectKindCount]string{"correct", "wrong", "click"}

func (k EffectKind) String() string {
	if k < 0 || k >= effectKindCount {
		return fmt.Sprintf("effect(%d)", int(k))
	}
	return effectNames[k]
}

// EffectKinds returns every effect kind in declaration order
func EffectKinds() []EffectKind {
	kinds := make([]EffectKind, 0, effectKindCount)
	for k := EffectKind(0); k < effectKindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// ParseEffectKind resolves an effect by name, case-insensitively
func ParseEffectKind(name string) (EffectKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range effectNames {
		if n == name {
			return EffectKind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEffect, name)
}

// Mood selects the chord table of an ambient drone
type Mood int

const (
	MoodZen Mood = iota
	MoodCosmos
	MoodFocus
)

func (m Mood) String() string {
	switch m {
	case MoodZen:
		return "zen"
	case MoodCosmos:
		return "cosmos"
	case MoodFocus:
		return "focus"
	default:
		return fmt.Sprintf("mood(%d)", int(m))
	}
}

// Bus identifies one of the two gain buses
type Bus int

const (
	BusMusic Bus = iota
	BusSFX
)

func (b Bus) String() string {
	if b == BusSFX {
		return "sfx"
	}
	return "music"
}

// Sentinel errors
var (
	ErrUnknownEffect = errors.New("unknown sound effect")
	ErrUnknownTrack  = errors.New("unknown track")
	ErrNoOutput      = errors.New("no audio output available")
	ErrUnsupported   = errors.New("unsupported audio file format")
)

func orDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
