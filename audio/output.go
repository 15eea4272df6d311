package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/eduvoice/constant"
)

// Output is an audio device that pulls from a root streamer once opened
type Output interface {
	Name() string
	Open(rate beep.SampleRate, root beep.Streamer) error
	Close() error
}

// OutputKind selects the device implementation
type OutputKind string

const (
	OutputAuto    OutputKind = "auto"
	OutputSpeaker OutputKind = "speaker"
	OutputPipe    OutputKind = "pipe"
	OutputNone    OutputKind = "none"
)

// ParseOutputKind accepts auto, speaker, pipe or none; empty maps to auto
func ParseOutputKind(s string) (OutputKind, error) {
	switch k := OutputKind(strings.ToLower(strings.TrimSpace(s))); k {
	case OutputAuto, OutputSpeaker, OutputPipe, OutputNone:
		return k, nil
	case "":
		return OutputAuto, nil
	default:
		return "", fmt.Errorf("unknown audio output %q", s)
	}
}

// NewOutput builds the output for kind; auto tries speaker then pipe
func NewOutput(kind OutputKind, log *slog.Logger) Output {
	switch kind {
	case OutputSpeaker:
		return &speakerOutput{}
	case OutputPipe:
		return &pipeOutput{log: orDiscard(log)}
	case OutputNone:
		return nil
	default:
		return &fallbackOutput{outputs: []Output{&speakerOutput{}, &pipeOutput{log: orDiscard(log)}}}
	}
}

// speakerOutput plays through beep/speaker (oto)
type speakerOutput struct{}

func (*speakerOutput) Name() string { return "speaker" }

func (*speakerOutput) Open(rate beep.SampleRate, root beep.Streamer) error {
	if err := speaker.Init(rate, rate.N(constant.AudioBufferDuration)); err != nil {
		return fmt.Errorf("speaker init: %w", err)
	}
	speaker.Play(root)
	return nil
}

func (*speakerOutput) Close() error {
	speaker.Clear()
	speaker.Close()
	return nil
}

// pipeOutput writes s16le stereo frames to a detected CLI backend
type pipeOutput struct {
	log     *slog.Logger
	backend *BackendConfig
	cmd     *exec.Cmd
	w       io.WriteCloser
	stop    chan struct{}
	wg      sync.WaitGroup
}

func (p *pipeOutput) Name() string {
	if p.backend != nil {
		return "pipe:" + p.backend.Name
	}
	return "pipe"
}

func (p *pipeOutput) Open(rate beep.SampleRate, root beep.Streamer) error {
	backend, err := DetectBackend(int(rate))
	if err != nil {
		return err
	}
	p.backend = backend

	if backend.Type == BackendOSS {
		f, err := os.OpenFile(backend.Path, os.O_WRONLY, 0)
		if err != nil {
			return fmt.Errorf("open %s: %w", backend.Path, err)
		}
		p.w = f
	} else {
		cmd := exec.Command(backend.Path, backend.Args...)
		stdin, err := cmd.StdinPipe()
		if err != nil {
			return fmt.Errorf("%s stdin: %w", backend.Name, err)
		}
		if err := cmd.Start(); err != nil {
			stdin.Close()
			return fmt.Errorf("start %s: %w", backend.Name, err)
		}
		p.cmd = cmd
		p.w = stdin
	}

	p.stop = make(chan struct{})
	p.wg.Add(1)
	go p.loop(rate, root)
	return nil
}

// loop pulls one buffer per tick and writes it to the process
func (p *pipeOutput) loop(rate beep.SampleRate, root beep.Streamer) {
	defer p.wg.Done()

	ticker := time.NewTicker(constant.AudioBufferDuration)
	defer ticker.Stop()

	n := rate.N(constant.AudioBufferDuration)
	frames := make([][2]float64, n)
	out := make([]byte, n*4)

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			root.Stream(frames)
			framesToBytes(frames, out)
			if _, err := p.w.Write(out); err != nil {
				p.log.Warn("audio pipe closed", "component", "audio", "backend", p.backend.Name, "error", err)
				return
			}
		}
	}
}

func (p *pipeOutput) Close() error {
	if p.stop == nil {
		return nil
	}
	close(p.stop)
	p.wg.Wait()
	p.stop = nil

	var err error
	if p.w != nil {
		err = p.w.Close()
	}
	if p.cmd != nil && p.cmd.Process != nil {
		p.cmd.Process.Kill()
		p.cmd.Wait()
	}
	return err
}

// framesToBytes converts stereo floats to interleaved int16 LE with soft limiting
func framesToBytes(in [][2]float64, out []byte) {
	for i, f := range in {
		for ch := 0; ch < 2; ch++ {
			v := f[ch]
			if v > 0.8 {
				v = 0.8 + 0.2*(1.0-1.0/(1.0+(v-0.8)*5.0))
			} else if v < -0.8 {
				v = -0.8 - 0.2*(1.0-1.0/(1.0+(-v-0.8)*5.0))
			}
			v = max(-1.0, min(1.0, v))
			binary.LittleEndian.PutUint16(out[i*4+ch*2:], uint16(int16(v*32767)))
		}
	}
}

// fallbackOutput opens the first output that succeeds
type fallbackOutput struct {
	outputs []Output
	active  Output
}

func (f *fallbackOutput) Name() string {
	if f.active != nil {
		return f.active.Name()
	}
	return "auto"
}

func (f *fallbackOutput) Open(rate beep.SampleRate, root beep.Streamer) error {
	var errs []error
	for _, o := range f.outputs {
		if err := o.Open(rate, root); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.Name(), err))
			continue
		}
		f.active = o
		return nil
	}
	return fmt.Errorf("%w: %v", ErrNoOutput, errs)
}

func (f *fallbackOutput) Close() error {
	if f.active == nil {
		return nil
	}
	return f.active.Close()
}
