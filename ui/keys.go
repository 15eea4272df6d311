package ui

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/eduvoice/quiz"
)

// Volume step for +/- and [/]
const volumeStep = 0.1

// handleKey dispatches a key press; returns false to quit
func (a *App) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC {
		return false
	}
	if a.globalKey(ev) {
		return true
	}

	switch a.active {
	case screenHistory:
		return a.historyKey(ev)
	case screenSettings:
		return a.settingsKey(ev)
	default:
		return a.quizKey(ev)
	}
}

// globalKey handles audio shortcuts available on every screen
func (a *App) globalKey(ev *tcell.EventKey) bool {
	c := a.opts.Controls
	if c == nil || ev.Key() != tcell.KeyRune {
		return false
	}
	switch ev.Rune() {
	case 'm':
		if c.ToggleMute() {
			a.flash("Muted")
		} else {
			a.flash("Sound on")
		}
	case '+', '=':
		c.AdjustMusic(volumeStep)
	case '-', '_':
		c.AdjustMusic(-volumeStep)
	case ']':
		c.AdjustVoice(volumeStep)
	case '[':
		c.AdjustVoice(-volumeStep)
	case 't':
		id := c.CycleTrack()
		a.flash(fmt.Sprintf("Track: %s", a.trackTitle(id)))
	default:
		return false
	}
	return true
}

func (a *App) quizKey(ev *tcell.EventKey) bool {
	st := a.flow.State()
	changed := false

	switch ev.Key() {
	case tcell.KeyEscape:
		return false
	case tcell.KeyEnter:
		switch st.Status {
		case quiz.StatusIntro:
			a.flow.Start()
			changed = true
		case quiz.StatusFeedback:
			changed = a.flow.Next()
		case quiz.StatusFinished:
			a.flow.Restart()
			changed = true
		}
	case tcell.KeyRight:
		changed = a.flow.Next()
	case tcell.KeyLeft:
		changed = a.flow.Prev()
	case tcell.KeyRune:
		switch r := ev.Rune(); {
		case r == 'q':
			return false
		case r == 'h':
			a.openHistory()
		case r == 's':
			a.openSettings()
		case r == 'n':
			changed = a.flow.Next()
		case r == 'p':
			changed = a.flow.Prev()
		case r == 'r':
			a.flow.Restart()
			changed = true
		case r == ' ' && st.Status == quiz.StatusIntro:
			a.flow.Start()
			changed = true
		case r >= '1' && r <= '9':
			changed = a.flow.Select(int(r - '1'))
		}
	}

	if changed {
		a.afterTransition()
	}
	return true
}

func (a *App) historyKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		a.active = screenQuiz
	case tcell.KeyUp:
		a.historyPos = max(a.historyPos-1, 0)
	case tcell.KeyDown:
		a.historyPos = min(a.historyPos+1, max(len(a.history)-1, 0))
	case tcell.KeyEnter:
		a.playSelected()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 'h':
			a.active = screenQuiz
		case 'k':
			a.historyPos = max(a.historyPos-1, 0)
		case 'j':
			a.historyPos = min(a.historyPos+1, max(len(a.history)-1, 0))
		case 'd':
			a.deleteSelected()
		}
	}
	return true
}

func (a *App) playSelected() {
	if a.historyPos >= len(a.history) {
		return
	}
	id := a.history[a.historyPos].ID
	q, err := a.opts.History.Get(context.Background(), id)
	if err != nil {
		a.log.Warn("history load failed", "component", "ui", "quiz", id, "error", err)
		a.flash("Could not load quiz")
		return
	}
	a.load(q)
}

func (a *App) deleteSelected() {
	if a.historyPos >= len(a.history) {
		return
	}
	id := a.history[a.historyPos].ID
	if err := a.opts.History.Delete(context.Background(), id); err != nil {
		a.log.Warn("history delete failed", "component", "ui", "quiz", id, "error", err)
		a.flash("Could not delete quiz")
		return
	}
	a.flash("Deleted")
	a.openHistory()
}

func (a *App) settingsKey(ev *tcell.EventKey) bool {
	tracks := a.tracks()
	switch ev.Key() {
	case tcell.KeyEscape:
		a.active = screenQuiz
	case tcell.KeyUp:
		a.trackPos = max(a.trackPos-1, 0)
	case tcell.KeyDown:
		a.trackPos = min(a.trackPos+1, max(len(tracks)-1, 0))
	case tcell.KeyEnter:
		if a.trackPos < len(tracks) {
			t := tracks[a.trackPos]
			if err := a.opts.Controls.SelectTrack(t.ID); err != nil {
				a.flash(err.Error())
			} else {
				a.flash("Track: " + t.Title)
			}
		}
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 's':
			a.active = screenQuiz
		case 'k':
			a.trackPos = max(a.trackPos-1, 0)
		case 'j':
			a.trackPos = min(a.trackPos+1, max(len(tracks)-1, 0))
		}
	}
	return true
}
