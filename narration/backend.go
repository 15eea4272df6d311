package narration

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
)

// ErrNoBackend is returned when a requested TTS tool is not installed
var ErrNoBackend = errors.New("no text-to-speech backend found")

// Utterance is one narration request
type Utterance struct {
	Text   string
	Volume float64 // 0.0-1.0
	Rate   float64 // 1.0 = normal speed
	Lang   string  // BCP 47 tag, e.g. "en" or "en-US"
	Voice  string  // Backend-specific voice name, empty for default
}

// Backend speaks utterances through a platform TTS engine
// Speak blocks until speech ends or ctx is cancelled
type Backend interface {
	Name() string
	Speak(ctx context.Context, u Utterance) error
}

// baseWPM is the default speaking speed of espeak and say
const baseWPM = 175

// execBackend runs one process per utterance
type execBackend struct {
	name string
	path string
	args func(Utterance) []string
}

func (b *execBackend) Name() string { return b.name }

func (b *execBackend) Speak(ctx context.Context, u Utterance) error {
	cmd := exec.CommandContext(ctx, b.path, b.args(u)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s: %w: %s", b.name, err, out)
	}
	return nil
}

func wpm(rate float64) string {
	if rate <= 0 {
		rate = 1
	}
	return strconv.Itoa(int(math.Round(baseWPM * rate)))
}

func espeakArgs(u Utterance) []string {
	// Amplitude 0-200, 100 is normal
	args := []string{"-a", strconv.Itoa(int(math.Round(u.Volume * 100))), "-s", wpm(u.Rate)}
	if v := u.Voice; v != "" {
		args = append(args, "-v", v)
	} else if u.Lang != "" {
		args = append(args, "-v", u.Lang)
	}
	return append(args, "--", u.Text)
}

func spdSayArgs(u Utterance) []string {
	// Volume and rate span -100..100
	vol := int(math.Round(u.Volume*200 - 100))
	rate := int(math.Round(max(-100, min(100, (u.Rate-1)*100))))
	args := []string{"-w", "-i", strconv.Itoa(vol), "-r", strconv.Itoa(rate)}
	if u.Lang != "" {
		args = append(args, "-l", u.Lang)
	}
	if u.Voice != "" {
		args = append(args, "-y", u.Voice)
	}
	return append(args, "--", u.Text)
}

func sayArgs(u Utterance) []string {
	args := []string{"-r", wpm(u.Rate)}
	if u.Voice != "" {
		args = append(args, "-v", u.Voice)
	}
	// say has no volume flag; embedded command sets it
	text := fmt.Sprintf("[[volm %.2f]] %s", u.Volume, u.Text)
	return append(args, "--", text)
}

var knownBackends = []struct {
	name string
	args func(Utterance) []string
}{
	{"espeak-ng", espeakArgs},
	{"espeak", espeakArgs},
	{"spd-say", spdSayArgs},
	{"say", sayArgs},
}

// DetectBackend resolves name to a backend
// "auto" or "" picks the first installed tool: espeak-ng > espeak > spd-say > say
// "none" and a missing auto tool yield the silent backend
func DetectBackend(name string) (Backend, error) {
	switch name {
	case "none":
		return silentBackend{}, nil
	case "", "auto":
		for _, kb := range knownBackends {
			if path, err := exec.LookPath(kb.name); err == nil {
				return &execBackend{name: kb.name, path: path, args: kb.args}, nil
			}
		}
		return silentBackend{}, nil
	}

	for _, kb := range knownBackends {
		if kb.name != name {
			continue
		}
		path, err := exec.LookPath(kb.name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrNoBackend, name)
		}
		return &execBackend{name: kb.name, path: path, args: kb.args}, nil
	}
	return nil, fmt.Errorf("%w: unknown backend %q", ErrNoBackend, name)
}

// silentBackend completes every utterance immediately
type silentBackend struct{}

func (silentBackend) Name() string { return "none" }

func (silentBackend) Speak(context.Context, Utterance) error { return nil }
