package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
)

// Palette
var (
	styleDefault  = tcell.StyleDefault
	styleTitle    = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleDim      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleCorrect  = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleWrong    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleCursor   = tcell.StyleDefault.Reverse(true)
	styleSpeaking = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleHeader   = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
)

// canvas writes text into a screen region, tracking the next free row
type canvas struct {
	s    tcell.Screen
	x, y int
	w, h int
}

func newCanvas(s tcell.Screen) *canvas {
	w, h := s.Size()
	return &canvas{s: s, w: w, h: h}
}

// put draws text at column x of row y, clipped to the canvas width; returns columns used
func (c *canvas) put(x, y int, style tcell.Style, text string) int {
	if y < 0 || y >= c.h {
		return 0
	}
	col := x
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if col+rw > c.w {
			break
		}
		c.s.SetContent(col, y, r, nil, style)
		col += rw
	}
	return col - x
}

// fill paints a full-width row
func (c *canvas) fill(y int, style tcell.Style) {
	for x := 0; x < c.w; x++ {
		c.s.SetContent(x, y, ' ', nil, style)
	}
}

// line writes one row at the cursor and advances
func (c *canvas) line(style tcell.Style, text string) {
	c.put(c.x, c.y, style, text)
	c.y++
}

// para wraps text to the canvas width at the cursor, with a hanging indent
func (c *canvas) para(style tcell.Style, indent int, text string) {
	for _, l := range wrap(text, c.w-c.x-indent) {
		c.put(c.x+indent, c.y, style, l)
		c.y++
	}
}

func (c *canvas) blank() { c.y++ }

// wrap breaks text on word boundaries; words longer than width are cut
func wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	var out []string
	for _, l := range strings.Split(wordwrap.String(text, width), "\n") {
		for runewidth.StringWidth(l) > width {
			head := runewidth.Truncate(l, width, "")
			if head == "" {
				break
			}
			out = append(out, head)
			l = l[len(head):]
		}
		out = append(out, l)
	}
	return out
}

// bar renders a 0-1 level as a fixed-width meter
func bar(level float64, width int) string {
	n := int(level*float64(width) + 0.5)
	n = min(max(n, 0), width)
	return "[" + strings.Repeat("█", n) + strings.Repeat("·", width-n) + "]"
}
