// Package ui is the terminal front end: quiz screens, history and audio settings
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/eduvoice/audio"
	"github.com/lixenwraith/eduvoice/constant"
	"github.com/lixenwraith/eduvoice/narration"
	"github.com/lixenwraith/eduvoice/quiz"
	"github.com/lixenwraith/eduvoice/store"
)

// Speaker is the narration surface the UI observes
type Speaker interface {
	Subscribe(func(narration.Event)) (unsubscribe func())
	Speaking() bool
}

// History is the persisted quiz list
type History interface {
	List(ctx context.Context) ([]store.Summary, error)
	Get(ctx context.Context, id string) (quiz.Quiz, error)
	Delete(ctx context.Context, id string) error
	RecordResult(ctx context.Context, quizID string, score, total int) (store.Result, error)
}

// Options wires the app; everything but Screen is optional
type Options struct {
	Screen      tcell.Screen // Initialized by the caller
	Quiz        quiz.Quiz
	Flow        quiz.Options // Collaborators for every flow the app creates
	Controls    *audio.Controls
	Speaker     Speaker
	History     History
	AutoAdvance time.Duration // 0 disables
	Logger      *slog.Logger
}

type screenID int

const (
	screenQuiz screenID = iota // Intro, question, feedback and finished follow the flow status
	screenHistory
	screenSettings
)

// Interrupt payloads
type (
	wakeEvent    struct{}
	advanceEvent struct{ gen uint64 }
)

// App owns the flow and renders it
type App struct {
	opts   Options
	screen tcell.Screen
	log    *slog.Logger

	flow      *quiz.Flow
	recorded  bool // Result stored for the current finish
	active    screenID
	unsubs    []func()
	speaking  atomic.Bool
	frame     int
	status    string // One-line message in the footer
	statusTTL time.Time

	history    []store.Summary
	historyPos int
	trackPos   int

	advanceGen   uint64
	advanceTimer *time.Timer
}

// New creates the app and its first flow
func New(opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	a := &App{opts: opts, screen: opts.Screen, log: log}
	a.flow = quiz.NewFlow(opts.Quiz, a.flowOptions())
	return a
}

func (a *App) flowOptions() quiz.Options {
	o := a.opts.Flow
	if o.Logger == nil {
		o.Logger = a.log
	}
	return o
}

// Flow returns the current flow
func (a *App) Flow() *quiz.Flow { return a.flow }

// Run drives input and rendering until quit or ctx is done
func (a *App) Run(ctx context.Context) error {
	if a.opts.Speaker != nil {
		a.unsubs = append(a.unsubs, a.opts.Speaker.Subscribe(func(narration.Event) {
			a.speaking.Store(a.opts.Speaker.Speaking())
			a.wake()
		}))
	}
	if a.opts.Controls != nil {
		a.opts.Controls.OnChange(func(audio.AudioConfig) { a.wake() })
	}
	defer a.shutdown()

	events := make(chan tcell.Event, 64)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				a.screen.Fini()
				fmt.Fprintf(os.Stderr, "\r\nEVENT POLLER CRASHED: %v\r\nStack Trace:\r\n%s\r\n", r, debug.Stack())
				os.Exit(1)
			}
		}()
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(constant.FrameUpdateInterval)
	defer ticker.Stop()

	a.draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !a.handleEvent(ev) {
				return nil
			}
			a.draw()
		case <-ticker.C:
			if a.speaking.Load() {
				a.frame++
				a.draw()
			}
			if a.status != "" && time.Now().After(a.statusTTL) {
				a.status = ""
				a.draw()
			}
		}
	}
}

func (a *App) shutdown() {
	a.cancelAdvance()
	for _, fn := range a.unsubs {
		fn()
	}
	a.unsubs = nil
}

// wake redraws from any goroutine
func (a *App) wake() {
	a.screen.PostEvent(tcell.NewEventInterrupt(wakeEvent{}))
}

// handleEvent returns false to quit
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev)
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventInterrupt:
		if adv, ok := ev.Data().(advanceEvent); ok {
			a.autoAdvance(adv.gen)
		}
	}
	return true
}

// load replaces the flow with q and starts it
func (a *App) load(q quiz.Quiz) {
	a.cancelAdvance()
	a.flow = quiz.NewFlow(q, a.flowOptions())
	a.recorded = false
	a.active = screenQuiz
	a.flow.Start()
}

// afterTransition schedules auto-advance and records a finished quiz
func (a *App) afterTransition() {
	st := a.flow.State()
	switch st.Status {
	case quiz.StatusFeedback:
		a.scheduleAdvance()
	case quiz.StatusFinished:
		a.cancelAdvance()
		a.recordResult(st)
	default:
		a.cancelAdvance()
		a.recorded = false
	}
}

func (a *App) scheduleAdvance() {
	a.cancelAdvance()
	if a.opts.AutoAdvance <= 0 {
		return
	}
	gen := a.advanceGen
	a.advanceTimer = time.AfterFunc(a.opts.AutoAdvance, func() {
		a.screen.PostEvent(tcell.NewEventInterrupt(advanceEvent{gen: gen}))
	})
}

func (a *App) cancelAdvance() {
	a.advanceGen++
	if a.advanceTimer != nil {
		a.advanceTimer.Stop()
		a.advanceTimer = nil
	}
}

// autoAdvance fires only for the feedback that scheduled it
func (a *App) autoAdvance(gen uint64) {
	if gen != a.advanceGen || a.flow.State().Status != quiz.StatusFeedback {
		return
	}
	a.advanceTimer = nil
	a.flow.Next()
	a.afterTransition()
}

func (a *App) recordResult(st quiz.State) {
	q := a.flow.Quiz()
	if a.recorded || a.opts.History == nil || q.ID == "" {
		return
	}
	a.recorded = true
	if _, err := a.opts.History.RecordResult(context.Background(), q.ID, st.Score, len(q.Questions)); err != nil {
		a.log.Warn("record result failed", "component", "ui", "quiz", q.ID, "error", err)
	}
}

func (a *App) flash(msg string) {
	a.status = msg
	a.statusTTL = time.Now().Add(3 * time.Second)
}

func (a *App) openHistory() {
	if a.opts.History == nil {
		a.flash("History is not available")
		return
	}
	list, err := a.opts.History.List(context.Background())
	if err != nil {
		a.log.Warn("history list failed", "component", "ui", "error", err)
		a.flash("Could not load history")
		return
	}
	a.history = list
	a.historyPos = min(a.historyPos, max(len(list)-1, 0))
	a.active = screenHistory
}

func (a *App) openSettings() {
	if a.opts.Controls == nil {
		a.flash("Audio settings are not available")
		return
	}
	active := a.opts.Controls.Config().ActiveTrack
	for i, t := range a.tracks() {
		if t.ID == active {
			a.trackPos = i
		}
	}
	a.active = screenSettings
}

func (a *App) tracks() []audio.Track {
	if a.opts.Controls == nil {
		return nil
	}
	return a.opts.Controls.Tracks()
}
