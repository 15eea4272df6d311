package quiz

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/lixenwraith/eduvoice/audio"
)

// Narrator speaks text, superseding anything in progress
type Narrator interface {
	Say(text string) <-chan struct{}
	Cancel()
}

// Effects plays short sound effects
type Effects interface {
	PlayEffect(audio.EffectKind) bool
}

// Ambient resumes background music when a quiz starts
type Ambient interface {
	Resume()
}

// Options wires optional collaborators into a Flow
type Options struct {
	Narrator Narrator
	Effects  Effects
	Ambient  Ambient
	OnFinish func() // Restart calls this instead of Start when set
	Logger   *slog.Logger
}

// Flow is the quiz state machine
// Transitions run under a lock; side effects run after it is released, in order
type Flow struct {
	mu    sync.Mutex
	quiz  Quiz
	state State
	opts  Options
	log   *slog.Logger

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

// NewFlow creates a flow in the intro phase
func NewFlow(q Quiz, opts Options) *Flow {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Flow{
		quiz:  q,
		state: State{Status: StatusIntro},
		opts:  opts,
		log:   log,
		subs:  make(map[int]func(State)),
	}
}

// Quiz returns the quiz being played
func (f *Flow) Quiz() Quiz { return f.quiz }

// State returns a copy of the current state
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.clone()
}

// Current returns the question at the current index
func (f *Flow) Current() (Question, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.CurrentIndex < 0 || f.state.CurrentIndex >= len(f.quiz.Questions) {
		return Question{}, false
	}
	return f.quiz.Questions[f.state.CurrentIndex], true
}

// Subscribe registers fn for every state change and returns its removal func
func (f *Flow) Subscribe(fn func(State)) (unsubscribe func()) {
	f.subMu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = fn
	f.subMu.Unlock()
	return func() {
		f.subMu.Lock()
		delete(f.subs, id)
		f.subMu.Unlock()
	}
}

// Start resets to the first question and narrates it; no-op without questions
func (f *Flow) Start() {
	f.mu.Lock()
	if len(f.quiz.Questions) == 0 {
		f.mu.Unlock()
		f.log.Warn("start ignored, quiz has no questions", "component", "quiz")
		return
	}
	f.state = State{Status: StatusPlaying}
	text := f.quiz.Questions[0].Text
	snap := f.state.clone()
	f.mu.Unlock()

	f.log.Debug("quiz started", "component", "quiz", "questions", len(f.quiz.Questions))
	if f.opts.Ambient != nil {
		f.opts.Ambient.Resume()
	}
	f.narrate(text)
	f.notify(snap)
}

// Select answers the current question; ignored unless playing and unanswered
func (f *Flow) Select(index int) bool {
	f.mu.Lock()
	if f.state.Status != StatusPlaying || f.state.Selected != nil {
		f.mu.Unlock()
		return false
	}
	q := f.quiz.Questions[f.state.CurrentIndex]
	if index < 0 || index >= len(q.Options) {
		f.mu.Unlock()
		return false
	}

	correct := index == q.CorrectIndex
	if correct {
		f.state.Score++
	}
	f.state.Selected = &index
	f.state.Status = StatusFeedback
	snap := f.state.clone()
	f.mu.Unlock()

	effect, text := audio.EffectWrong, "Wrong answer! "+q.Explanation
	if correct {
		effect, text = audio.EffectCorrect, "Correct answer! "+q.Explanation
	}
	f.log.Debug("answer selected", "component", "quiz", "question", snap.CurrentIndex, "option", index, "correct", correct)

	f.cancelNarration()
	f.playEffect(effect)
	f.narrate(text)
	f.notify(snap)
	return true
}

// Advance moves one question in dir; next past the last finishes the quiz
func (f *Flow) Advance(dir Direction) bool {
	f.mu.Lock()
	if f.state.Status != StatusPlaying && f.state.Status != StatusFeedback {
		f.mu.Unlock()
		return false
	}

	target := f.state.CurrentIndex + 1
	if dir == Prev {
		target = f.state.CurrentIndex - 1
	}
	if target < 0 {
		f.mu.Unlock()
		return false
	}

	total := len(f.quiz.Questions)
	if target >= total {
		f.state.Status = StatusFinished
		snap := f.state.clone()
		f.mu.Unlock()

		f.log.Debug("quiz finished", "component", "quiz", "score", snap.Score, "total", total)
		f.narrate(FinishedText(snap.Score, total))
		f.notify(snap)
		return true
	}

	f.state.CurrentIndex = target
	f.state.Selected = nil
	f.state.Status = StatusPlaying
	text := f.quiz.Questions[target].Text
	snap := f.state.clone()
	f.mu.Unlock()

	f.cancelNarration()
	f.playEffect(audio.EffectClick)
	f.narrate(text)
	f.notify(snap)
	return true
}

// Next is Advance(Next)
func (f *Flow) Next() bool { return f.Advance(Next) }

// Prev is Advance(Prev)
func (f *Flow) Prev() bool { return f.Advance(Prev) }

// Restart hands control to OnFinish when set, otherwise starts over
func (f *Flow) Restart() {
	if f.opts.OnFinish != nil {
		f.opts.OnFinish()
		return
	}
	f.Start()
}

// FinishedText is the closing narration
func FinishedText(score, total int) string {
	return fmt.Sprintf("Quiz finished. You got %d of %d questions.", score, total)
}

func (f *Flow) narrate(text string) {
	if f.opts.Narrator != nil {
		f.opts.Narrator.Say(text)
	}
}

func (f *Flow) cancelNarration() {
	if f.opts.Narrator != nil {
		f.opts.Narrator.Cancel()
	}
}

func (f *Flow) playEffect(k audio.EffectKind) {
	if f.opts.Effects != nil {
		f.opts.Effects.PlayEffect(k)
	}
}

func (f *Flow) notify(s State) {
	f.subMu.Lock()
	fns := make([]func(State), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.subMu.Unlock()
	for _, fn := range fns {
		fn(s.clone())
	}
}
