package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/lixenwraith/eduvoice/audio"
	"github.com/lixenwraith/eduvoice/quiz"
)

// Spinner frames while narration is speaking
var speakFrames = []string{"◜", "◝", "◞", "◟"}

func (a *App) draw() {
	a.screen.Clear()
	c := newCanvas(a.screen)
	if c.w < 20 || c.h < 8 {
		c.put(0, 0, styleDefault, "Terminal too small")
		a.screen.Show()
		return
	}

	a.drawHeader(c)
	c.x, c.y = 2, 2

	switch a.active {
	case screenHistory:
		a.drawHistory(c)
	case screenSettings:
		a.drawSettings(c)
	default:
		switch st := a.flow.State(); st.Status {
		case quiz.StatusIntro:
			a.drawIntro(c)
		case quiz.StatusFinished:
			a.drawFinished(c, st)
		default:
			a.drawQuestion(c, st)
		}
	}

	a.drawFooter(c)
	a.screen.Show()
}

func (a *App) drawHeader(c *canvas) {
	c.fill(0, styleHeader)
	title := " EduVoice"
	if topic := a.flow.Quiz().Topic; topic != "" {
		title += " · " + topic
	}
	c.put(0, 0, styleHeader.Bold(true), title)

	right := ""
	if a.speaking.Load() {
		right = speakFrames[a.frame%len(speakFrames)] + " speaking  "
	}
	if ctl := a.opts.Controls; ctl != nil {
		cfg := ctl.Config()
		if cfg.IsMuted {
			right += "muted "
		} else {
			right += fmt.Sprintf("♪ %d%%  voice %d%% ", pct(cfg.MusicVolume), pct(cfg.VoiceVolume))
		}
	}
	if w := runewidth.StringWidth(right); w < c.w-runewidth.StringWidth(title)-1 {
		c.put(c.w-w, 0, styleHeader, right)
	}
}

func (a *App) drawFooter(c *canvas) {
	y := c.h - 1
	if a.status != "" {
		c.put(1, y-1, styleSpeaking, a.status)
	}

	var hint string
	switch a.active {
	case screenHistory:
		hint = "↑/↓ move  enter play  d delete  esc back  q quit"
	case screenSettings:
		hint = "↑/↓ track  enter select  +/- music  [/] voice  m mute  esc back"
	default:
		switch a.flow.State().Status {
		case quiz.StatusIntro:
			hint = "enter start  h history  s settings  q quit"
		case quiz.StatusFinished:
			hint = "r restart  h history  s settings  q quit"
		default:
			hint = fmt.Sprintf("1-%d answer  n/→ next  p/← prev  m mute  t track  r restart  q quit",
				min(len(a.currentOptions()), 9))
		}
	}
	c.put(1, y, styleDim, hint)
}

func (a *App) drawIntro(c *canvas) {
	q := a.flow.Quiz()
	c.line(styleTitle, "Welcome to EduVoice")
	c.blank()
	if q.Topic != "" {
		c.line(styleDefault, "Topic:      "+q.Topic)
	}
	if q.Difficulty != "" {
		c.line(styleDefault, "Difficulty: "+string(q.Difficulty))
	}
	c.line(styleDefault, fmt.Sprintf("Questions:  %d", len(q.Questions)))
	c.blank()
	if len(q.Questions) == 0 {
		c.line(styleWrong, "This quiz has no questions.")
		return
	}
	c.para(styleDim, 0, "Each question is read aloud. Answer with the number keys; the explanation is narrated after every answer.")
	c.blank()
	c.line(styleTitle, "Press Enter to start")
}

func (a *App) drawQuestion(c *canvas, st quiz.State) {
	q, ok := a.flow.Current()
	if !ok {
		return
	}
	total := len(a.flow.Quiz().Questions)
	c.line(styleDim, fmt.Sprintf("Question %d of %d    Score %d", st.CurrentIndex+1, total, st.Score))
	c.blank()
	c.para(styleTitle, 0, q.Text)
	c.blank()

	for i, opt := range q.Options {
		style := styleDefault
		mark := "  "
		if st.Selected != nil {
			switch {
			case i == q.CorrectIndex:
				style, mark = styleCorrect, "✓ "
			case i == *st.Selected:
				style, mark = styleWrong, "✗ "
			default:
				style = styleDim
			}
		}
		label := fmt.Sprintf("%s%d) ", mark, i+1)
		c.put(c.x, c.y, style, label)
		indent := runewidth.StringWidth(label)
		for j, l := range wrap(opt, c.w-c.x-indent) {
			if j > 0 {
				c.y++
			}
			c.put(c.x+indent, c.y, style, l)
		}
		c.y++
	}

	if st.Status != quiz.StatusFeedback || st.Selected == nil {
		return
	}
	c.blank()
	if *st.Selected == q.CorrectIndex {
		c.line(styleCorrect, "Correct answer!")
	} else {
		c.line(styleWrong, "Wrong answer!")
	}
	if q.Explanation != "" {
		c.para(styleDefault, 0, q.Explanation)
	}
	c.blank()
	if st.CurrentIndex+1 < total {
		c.line(styleDim, "Press n or Enter for the next question")
	} else {
		c.line(styleDim, "Press n or Enter to see your result")
	}
}

func (a *App) drawFinished(c *canvas, st quiz.State) {
	total := len(a.flow.Quiz().Questions)
	c.line(styleTitle, "Quiz finished")
	c.blank()
	c.line(styleDefault, fmt.Sprintf("You got %d of %d questions.", st.Score, total))
	if total > 0 {
		ratio := float64(st.Score) / float64(total)
		c.line(styleDefault, fmt.Sprintf("%s %d%%", bar(ratio, 20), pct(ratio)))
	}
}

func (a *App) drawHistory(c *canvas) {
	c.line(styleTitle, "Quiz history")
	c.blank()
	if len(a.history) == 0 {
		c.line(styleDim, "No saved quizzes yet.")
		return
	}
	for i, s := range a.history {
		if c.y >= c.h-3 {
			c.line(styleDim, fmt.Sprintf("… %d more", len(a.history)-i))
			break
		}
		played := "unplayed"
		if s.Plays > 0 {
			played = fmt.Sprintf("best %d/%d, %d plays", s.BestScore, s.QuestionCount, s.Plays)
		}
		row := fmt.Sprintf("%s  %-28s %2d q  %-6s %s",
			s.CreatedAt.Format("2006-01-02 15:04"),
			runewidth.Truncate(s.Topic, 28, "…"), s.QuestionCount, s.Difficulty, played)
		style := styleDefault
		if i == a.historyPos {
			style = styleCursor
		}
		c.line(style, row)
	}
}

func (a *App) drawSettings(c *canvas) {
	cfg := a.opts.Controls.Config()
	c.line(styleTitle, "Audio settings")
	c.blank()
	c.line(styleDefault, fmt.Sprintf("Music  %s %3d%%", bar(cfg.MusicVolume, 20), pct(cfg.MusicVolume)))
	c.line(styleDefault, fmt.Sprintf("Voice  %s %3d%%", bar(cfg.VoiceVolume, 20), pct(cfg.VoiceVolume)))
	if cfg.IsMuted {
		c.line(styleWrong, "Muted")
	} else {
		c.line(styleDim, "Sound on")
	}
	c.blank()
	c.line(styleTitle, "Tracks")
	for i, t := range a.tracks() {
		marker := "  "
		if t.ID == cfg.ActiveTrack {
			marker = "▶ "
		}
		label := marker + t.Title
		if t.Kind == audio.KindUpload {
			if cfg.CustomFileName != "" {
				label += " (" + cfg.CustomFileName + ")"
			} else {
				label += " (no file, use --file)"
			}
		}
		style := styleDefault
		if i == a.trackPos {
			style = styleCursor
		}
		c.line(style, label)
	}
}

func (a *App) currentOptions() []string {
	q, ok := a.flow.Current()
	if !ok {
		return nil
	}
	return q.Options
}

func (a *App) trackTitle(id audio.TrackID) string {
	for _, t := range a.tracks() {
		if t.ID == id {
			return t.Title
		}
	}
	return strings.ToUpper(string(id))
}

func pct(v float64) int {
	return int(v*100 + 0.5)
}
