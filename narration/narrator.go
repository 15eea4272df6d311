package narration

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/lixenwraith/eduvoice/constant"
)

// EventKind distinguishes narration lifecycle events
type EventKind int

const (
	EventStarted EventKind = iota
	EventEnded
)

func (k EventKind) String() string {
	if k == EventEnded {
		return "ended"
	}
	return "started"
}

// Event is delivered to subscribers; Seq identifies the utterance
type Event struct {
	Kind EventKind
	Seq  uint64
}

// Options configures a Narrator
type Options struct {
	Backend string  // "auto", "none" or a tool name
	Lang    string  // Defaults to "en"
	Voice   string  // Backend-specific
	Rate    float64 // Defaults to constant.DefaultSpeechRate
	Volume  float64 // Initial volume, clamped
	Logger  *slog.Logger

	// Custom overrides detection when set
	Custom Backend
}

// Narrator serializes speech: a new utterance always cancels the previous one
type Narrator struct {
	opts Options
	log  *slog.Logger

	initOnce sync.Once
	backend  Backend

	mu      sync.Mutex
	volume  float64
	seq     uint64
	current uint64 // Seq of the sounding utterance, 0 when idle
	cancel  context.CancelFunc

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int

	wg sync.WaitGroup
}

// New creates a narrator; the backend is resolved on first use
func New(opts Options) *Narrator {
	if opts.Lang == "" {
		opts.Lang = "en"
	}
	if opts.Rate <= 0 {
		opts.Rate = constant.DefaultSpeechRate
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Narrator{
		opts:   opts,
		log:    log,
		volume: clamp(opts.Volume),
		subs:   make(map[int]func(Event)),
	}
}

// Init resolves the backend once; concurrent callers wait for the same attempt
// A missing or broken backend degrades to silence and is not returned
func (n *Narrator) Init(ctx context.Context) error {
	n.initOnce.Do(func() {
		if n.opts.Custom != nil {
			n.backend = n.opts.Custom
			return
		}
		b, err := DetectBackend(n.opts.Backend)
		if err != nil {
			n.log.Warn("narration backend unavailable, running silent", "component", "narration", "backend", n.opts.Backend, "error", err)
			b = silentBackend{}
		}
		n.backend = b
		n.log.Info("narration backend ready", "component", "narration", "backend", b.Name())
	})
	return ctx.Err()
}

// BackendName returns the resolved backend, initializing if needed
func (n *Narrator) BackendName() string {
	n.Init(context.Background())
	return n.backend.Name()
}

// SetVolume sets the volume for subsequent utterances
func (n *Narrator) SetVolume(v float64) {
	n.mu.Lock()
	n.volume = clamp(v)
	n.mu.Unlock()
}

// Volume returns the current volume
func (n *Narrator) Volume() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.volume
}

// Speaking reports whether an utterance is sounding
func (n *Narrator) Speaking() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current != 0
}

// Timeout returns the safety budget for text
func Timeout(text string) time.Duration {
	return time.Duration(utf8.RuneCountInString(text))*constant.NarrationPerRune + constant.NarrationFloor
}

// Say cancels any current utterance and starts text
// The returned channel closes when speech ends, fails, is cancelled or times out
func (n *Narrator) Say(text string) <-chan struct{} {
	n.Init(context.Background())
	done := make(chan struct{})

	n.mu.Lock()
	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
		n.current = 0
	}
	if strings.TrimSpace(text) == "" {
		n.mu.Unlock()
		close(done)
		return done
	}

	ctx, cancel := context.WithTimeout(context.Background(), Timeout(text))
	n.seq++
	seq := n.seq
	n.current = seq
	n.cancel = cancel
	u := Utterance{Text: text, Volume: n.volume, Rate: n.opts.Rate, Lang: n.opts.Lang, Voice: n.opts.Voice}
	backend := n.backend
	n.wg.Add(1)
	n.mu.Unlock()

	n.emit(Event{Kind: EventStarted, Seq: seq})

	go func() {
		defer n.wg.Done()
		defer close(done)

		result := make(chan error, 1)
		go func() { result <- backend.Speak(ctx, u) }()

		select {
		case err := <-result:
			if err != nil && !errors.Is(err, context.Canceled) {
				n.log.Warn("narration failed", "component", "narration", "backend", backend.Name(), "error", err)
			}
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				n.log.Warn("narration timed out", "component", "narration", "seq", seq)
			}
		}

		n.mu.Lock()
		if n.current == seq {
			n.current = 0
			n.cancel = nil
		}
		n.mu.Unlock()
		cancel()

		n.emit(Event{Kind: EventEnded, Seq: seq})
	}()

	return done
}

// Speak narrates text and waits for it to finish
// Returns ctx.Err() if ctx ends first; the utterance keeps playing
func (n *Narrator) Speak(ctx context.Context, text string) error {
	select {
	case <-n.Say(text):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel stops the current utterance; safe when idle
func (n *Narrator) Cancel() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
		n.current = 0
	}
}

// Subscribe registers fn for lifecycle events and returns its removal func
// fn runs on narration goroutines and must not block
func (n *Narrator) Subscribe(fn func(Event)) (unsubscribe func()) {
	n.subMu.Lock()
	id := n.nextSub
	n.nextSub++
	n.subs[id] = fn
	n.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.subMu.Lock()
			delete(n.subs, id)
			n.subMu.Unlock()
		})
	}
}

func (n *Narrator) emit(ev Event) {
	n.subMu.Lock()
	fns := make([]func(Event), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Close cancels speech and waits for in-flight utterances to settle
func (n *Narrator) Close() {
	n.Cancel()
	n.wg.Wait()
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return min(v, 1)
}
