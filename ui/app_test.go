package ui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/eduvoice/audio"
	"github.com/lixenwraith/eduvoice/narration"
	"github.com/lixenwraith/eduvoice/quiz"
	"github.com/lixenwraith/eduvoice/store"
)

func testQuiz(id, topic string) quiz.Quiz {
	return quiz.Quiz{
		ID:    id,
		Topic: topic,
		Questions: []quiz.Question{
			{ID: "1", Text: "Which codec is lossless?", Options: []string{"FLAC", "MP3"}, CorrectIndex: 0, Explanation: "FLAC keeps every sample."},
			{ID: "2", Text: "What does fps measure?", Options: []string{"Bit depth", "Frames per second"}, CorrectIndex: 1},
		},
	}
}

// memHistory is an in-memory History
type memHistory struct {
	mu      sync.Mutex
	quizzes []quiz.Quiz
	results []store.Result
}

func (h *memHistory) List(context.Context) ([]store.Summary, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]store.Summary, 0, len(h.quizzes))
	for _, q := range h.quizzes {
		out = append(out, store.Summary{ID: q.ID, Topic: q.Topic, QuestionCount: len(q.Questions)})
	}
	return out, nil
}

func (h *memHistory) Get(_ context.Context, id string) (quiz.Quiz, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, q := range h.quizzes {
		if q.ID == id {
			return q, nil
		}
	}
	return quiz.Quiz{}, store.ErrNotFound
}

func (h *memHistory) Delete(_ context.Context, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, q := range h.quizzes {
		if q.ID == id {
			h.quizzes = append(h.quizzes[:i], h.quizzes[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (h *memHistory) RecordResult(_ context.Context, id string, score, total int) (store.Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r := store.Result{QuizID: id, Score: score, Total: total}
	h.results = append(h.results, r)
	return r, nil
}

// fakeSpeaker drives the speaking indicator by hand
type fakeSpeaker struct {
	mu       sync.Mutex
	speaking bool
	subs     []func(narration.Event)
}

func (s *fakeSpeaker) Subscribe(fn func(narration.Event)) func() {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
	return func() {}
}

func (s *fakeSpeaker) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}

func (s *fakeSpeaker) set(on bool) {
	s.mu.Lock()
	s.speaking = on
	subs := append([]func(narration.Event){}, s.subs...)
	s.mu.Unlock()
	kind := narration.EventEnded
	if on {
		kind = narration.EventStarted
	}
	for _, fn := range subs {
		fn(narration.Event{Kind: kind})
	}
}

func newTestApp(t *testing.T, opts Options) (*App, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(100, 30)
	t.Cleanup(screen.Fini)

	opts.Screen = screen
	if opts.Quiz.Questions == nil {
		opts.Quiz = testQuiz("q1", "Codecs")
	}
	return New(opts), screen
}

func newControls() *audio.Controls {
	engine := audio.NewEngine(audio.EngineOptions{})
	switcher := audio.NewSwitcher(engine, audio.NewCatalog(nil), nil)
	return audio.NewControls(engine, switcher, nil)
}

func contents(s tcell.SimulationScreen) string {
	cells, w, h := s.GetContents()
	var b strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if r := cells[y*w+x].Runes; len(r) > 0 {
				b.WriteRune(r[0])
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestIntroThenStart(t *testing.T) {
	app, screen := newTestApp(t, Options{})

	app.draw()
	assert.Contains(t, contents(screen), "Press Enter to start")
	assert.Contains(t, contents(screen), "Codecs")

	require.True(t, app.handleKey(key(tcell.KeyEnter)))
	assert.Equal(t, quiz.StatusPlaying, app.Flow().State().Status)

	app.draw()
	out := contents(screen)
	assert.Contains(t, out, "Which codec is lossless?")
	assert.Contains(t, out, "1) FLAC")
	assert.Contains(t, out, "Question 1 of 2")
}

// TestPlayThroughRecordsResult verifies a finished quiz is recorded once
func TestPlayThroughRecordsResult(t *testing.T) {
	hist := &memHistory{}
	app, screen := newTestApp(t, Options{History: hist})

	for _, ev := range []*tcell.EventKey{key(tcell.KeyEnter), runeKey('1'), runeKey('n'), runeKey('1'), runeKey('n')} {
		require.True(t, app.handleKey(ev))
	}

	st := app.Flow().State()
	assert.Equal(t, quiz.StatusFinished, st.Status)
	assert.Equal(t, 1, st.Score)

	app.draw()
	assert.Contains(t, contents(screen), "You got 1 of 2 questions.")

	app.handleKey(key(tcell.KeyRight))
	require.Len(t, hist.results, 1)
	assert.Equal(t, store.Result{QuizID: "q1", Score: 1, Total: 2}, hist.results[0])

	// Restart and finish again records a second result
	for _, ev := range []*tcell.EventKey{runeKey('r'), runeKey('1'), runeKey('n'), runeKey('2'), runeKey('n')} {
		app.handleKey(ev)
	}
	require.Len(t, hist.results, 2)
	assert.Equal(t, 2, hist.results[1].Score)
}

func TestFeedbackRendering(t *testing.T) {
	app, screen := newTestApp(t, Options{})
	app.handleKey(key(tcell.KeyEnter))
	app.handleKey(runeKey('2'))
	app.handleKey(runeKey('1'))

	st := app.Flow().State()
	assert.Equal(t, quiz.StatusFeedback, st.Status)
	assert.Zero(t, st.Score, "second select is ignored")

	app.draw()
	out := contents(screen)
	assert.Contains(t, out, "Wrong answer!")
	assert.Contains(t, out, "FLAC keeps every sample.")
	assert.Contains(t, out, "✓ 1) FLAC")
	assert.Contains(t, out, "✗ 2) MP3")
}

func TestUnsavedQuizIsNotRecorded(t *testing.T) {
	hist := &memHistory{}
	app, _ := newTestApp(t, Options{History: hist, Quiz: testQuiz("", "Loose")})
	for _, ev := range []*tcell.EventKey{key(tcell.KeyEnter), runeKey('1'), runeKey('n'), runeKey('2'), runeKey('n')} {
		app.handleKey(ev)
	}
	assert.Equal(t, quiz.StatusFinished, app.Flow().State().Status)
	assert.Empty(t, hist.results)
}

func TestAudioKeys(t *testing.T) {
	ctl := newControls()
	app, screen := newTestApp(t, Options{Controls: ctl})

	app.handleKey(runeKey('m'))
	assert.True(t, ctl.Config().IsMuted)
	app.draw()
	assert.Contains(t, contents(screen), "muted")

	app.handleKey(runeKey('+'))
	cfg := ctl.Config()
	assert.False(t, cfg.IsMuted, "volume change unmutes")
	assert.InDelta(t, 0.4, cfg.MusicVolume, 1e-9)

	app.handleKey(runeKey('['))
	assert.InDelta(t, 0.9, ctl.Config().VoiceVolume, 1e-9)

	app.handleKey(runeKey('t'))
	assert.Equal(t, audio.TrackCosmos, ctl.Config().ActiveTrack)
}

func TestSettingsSelectTrack(t *testing.T) {
	ctl := newControls()
	app, screen := newTestApp(t, Options{Controls: ctl})

	app.handleKey(runeKey('s'))
	app.draw()
	out := contents(screen)
	assert.Contains(t, out, "Audio settings")
	assert.Contains(t, out, "Deep Cosmos")
	assert.Contains(t, out, "no file")

	app.handleKey(key(tcell.KeyDown))
	app.handleKey(key(tcell.KeyDown))
	app.handleKey(key(tcell.KeyEnter))
	assert.Equal(t, audio.TrackFocus, ctl.Config().ActiveTrack)

	app.handleKey(key(tcell.KeyEscape))
	assert.Equal(t, screenQuiz, app.active)
}

func TestHistoryPlayAndDelete(t *testing.T) {
	hist := &memHistory{quizzes: []quiz.Quiz{testQuiz("a", "Audio"), testQuiz("b", "Video")}}
	app, screen := newTestApp(t, Options{History: hist})

	app.handleKey(runeKey('h'))
	require.Equal(t, screenHistory, app.active)
	app.draw()
	out := contents(screen)
	assert.Contains(t, out, "Audio")
	assert.Contains(t, out, "Video")

	app.handleKey(key(tcell.KeyDown))
	app.handleKey(key(tcell.KeyEnter))
	assert.Equal(t, screenQuiz, app.active)
	assert.Equal(t, "b", app.Flow().Quiz().ID)
	assert.Equal(t, quiz.StatusPlaying, app.Flow().State().Status)

	app.handleKey(runeKey('h'))
	app.handleKey(runeKey('d'))
	list, err := hist.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].ID)
	assert.Zero(t, app.historyPos)
}

func TestQuitKeys(t *testing.T) {
	app, _ := newTestApp(t, Options{})
	assert.False(t, app.handleKey(runeKey('q')))
	assert.False(t, app.handleKey(key(tcell.KeyCtrlC)))
	assert.True(t, app.handleKey(runeKey('x')))
}

// runApp starts Run and returns a func that stops it and waits
func runApp(t *testing.T, app *App) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	return func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not return")
		}
	}
}

func TestAutoAdvance(t *testing.T) {
	app, screen := newTestApp(t, Options{AutoAdvance: 30 * time.Millisecond})
	stop := runApp(t, app)
	defer stop()

	screen.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, '1', tcell.ModNone)

	require.Eventually(t, func() bool {
		st := app.Flow().State()
		return st.Status == quiz.StatusPlaying && st.CurrentIndex == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSpeakingIndicator(t *testing.T) {
	sp := &fakeSpeaker{}
	app, screen := newTestApp(t, Options{Speaker: sp})
	stop := runApp(t, app)
	defer stop()

	require.Eventually(t, func() bool {
		sp.mu.Lock()
		defer sp.mu.Unlock()
		return len(sp.subs) == 1
	}, time.Second, 5*time.Millisecond)

	sp.set(true)
	require.Eventually(t, func() bool {
		return strings.Contains(contents(screen), "speaking")
	}, 2*time.Second, 10*time.Millisecond)

	sp.set(false)
	require.Eventually(t, func() bool {
		return !strings.Contains(contents(screen), "speaking")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRunQuits(t *testing.T) {
	app, screen := newTestApp(t, Options{})
	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("q did not quit")
	}
}

func TestWrap(t *testing.T) {
	lines := wrap("the quick brown fox jumps over the lazy dog", 10)
	for _, l := range lines {
		assert.LessOrEqual(t, runewidth.StringWidth(l), 10, l)
	}
	assert.Equal(t, "the quick", lines[0])

	long := wrap("supercalifragilistic", 8)
	assert.Equal(t, []string{"supercal", "ifragili", "stic"}, long)

	wide := wrap("音声音声音声", 4)
	for _, l := range wide {
		assert.LessOrEqual(t, runewidth.StringWidth(l), 4, l)
	}
}

func TestBar(t *testing.T) {
	assert.Equal(t, "[█████·····]", bar(0.5, 10))
	assert.Equal(t, "[··········]", bar(-1, 10))
	assert.Equal(t, "[██████████]", bar(2, 10))
}
