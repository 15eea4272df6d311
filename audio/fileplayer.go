package audio

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

// Opener decodes an audio source into a seekable stream
type Opener func(path string) (beep.StreamSeekCloser, beep.Format, error)

// DecodeFile opens path and picks a decoder by extension (.wav, .mp3, .ogg)
func DecodeFile(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		s, format, err = wav.Decode(f)
	case ".mp3":
		s, format, err = mp3.Decode(f)
	case ".ogg", ".oga":
		s, format, err = vorbis.Decode(f)
	default:
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return s, format, nil
}

// filePlayer is the single reusable file-playback element on the music bus
// Never plays two sources at once; the source loops until paused or replaced
type filePlayer struct {
	mu        sync.Mutex
	rate      beep.SampleRate
	open      Opener
	log       *slog.Logger
	source    string
	stream    beep.StreamSeekCloser
	resampled beep.Streamer
	srcRate   beep.SampleRate
	playing   bool
}

func newFilePlayer(rate beep.SampleRate, open Opener, log *slog.Logger) *filePlayer {
	if open == nil {
		open = DecodeFile
	}
	return &filePlayer{rate: rate, open: open, log: orDiscard(log)}
}

// play starts or resumes path
// Same source while playing is a no-op and same source while paused resumes,
// unless restart is set, which rewinds the current source to its first sample
func (p *filePlayer) play(path string, restart bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if path == p.source && p.stream != nil {
		if restart {
			if err := p.stream.Seek(0); err != nil {
				p.playing = false
				return fmt.Errorf("rewind %s: %w", path, err)
			}
			p.resampled = p.wrap()
		}
		p.playing = true
		return nil
	}

	// Switch: pause, rewind, detach the old source, then assign
	p.playing = false
	p.release()

	s, format, err := p.open(path)
	if err != nil {
		return err
	}
	if err := s.Seek(0); err != nil {
		s.Close()
		return fmt.Errorf("rewind %s: %w", path, err)
	}

	p.source = path
	p.stream = s
	p.srcRate = format.SampleRate
	p.resampled = p.wrap()
	p.playing = true
	return nil
}

// wrap builds a fresh resampler over the current stream, must be called with mu held
func (p *filePlayer) wrap() beep.Streamer {
	if p.srcRate == p.rate || p.srcRate == 0 {
		return p.stream
	}
	return beep.Resample(4, p.srcRate, p.rate, p.stream)
}

func (p *filePlayer) pause() {
	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
}

func (p *filePlayer) isPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// position is the source playhead in source frames, 0 without a source
func (p *filePlayer) position() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil {
		return 0
	}
	return p.stream.Position()
}

func (p *filePlayer) currentSource() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source
}

func (p *filePlayer) close() {
	p.mu.Lock()
	p.playing = false
	p.release()
	p.mu.Unlock()
}

// release must be called with mu held
func (p *filePlayer) release() {
	if p.stream != nil {
		if err := p.stream.Close(); err != nil {
			p.log.Warn("close audio source", "component", "audio", "source", p.source, "error", err)
		}
	}
	p.source = ""
	p.stream = nil
	p.resampled = nil
	p.srcRate = 0
}

// Stream emits silence while paused and loops the source at end of stream
func (p *filePlayer) Stream(samples [][2]float64) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	filled := 0
	looped := false
	for p.playing && p.resampled != nil && filled < len(samples) {
		n, ok := p.resampled.Stream(samples[filled:])
		filled += n
		if ok && n > 0 {
			looped = false
			continue
		}
		if err := p.stream.Err(); err != nil {
			p.log.Warn("audio source failed", "component", "audio", "source", p.source, "error", err)
			p.playing = false
			break
		}
		if looped && n == 0 {
			// Empty source would spin forever
			p.playing = false
			break
		}
		if err := p.stream.Seek(0); err != nil {
			p.log.Warn("loop audio source", "component", "audio", "source", p.source, "error", err)
			p.playing = false
			break
		}
		p.resampled = p.wrap()
		looped = true
	}
	for i := filled; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}

func (p *filePlayer) Err() error { return nil }
