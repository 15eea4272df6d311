package quiz

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lixenwraith/eduvoice/constant"
)

// Sentinel errors
var (
	ErrNoQuestions     = errors.New("quiz has no questions")
	ErrInvalidQuestion = errors.New("invalid question")
)

// Difficulty of a generated or authored quiz
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty accepts easy, medium or hard; empty maps to medium
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case Easy, Medium, Hard:
		return d, nil
	case "":
		return Medium, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
}

// Question is one multiple-choice item
type Question struct {
	ID           string   `json:"id" yaml:"id"`
	Text         string   `json:"text" yaml:"text"`
	Options      []string `json:"options" yaml:"options"`
	CorrectIndex int      `json:"correct_index" yaml:"correct_index"`
	Explanation  string   `json:"explanation" yaml:"explanation"`
}

// Validate checks text, option count and the correct index
func (q Question) Validate() error {
	switch {
	case strings.TrimSpace(q.Text) == "":
		return fmt.Errorf("%w: empty text", ErrInvalidQuestion)
	case len(q.Options) < constant.MinOptions:
		return fmt.Errorf("%w: %q has %d options, need at least %d", ErrInvalidQuestion, q.Text, len(q.Options), constant.MinOptions)
	case q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options):
		return fmt.Errorf("%w: %q correct index %d out of range", ErrInvalidQuestion, q.Text, q.CorrectIndex)
	}
	return nil
}

// Quiz is an ordered question set with metadata
type Quiz struct {
	ID         string     `json:"id" yaml:"id"`
	Topic      string     `json:"topic" yaml:"topic"`
	Difficulty Difficulty `json:"difficulty" yaml:"difficulty"`
	CreatedAt  time.Time  `json:"created_at" yaml:"created_at"`
	Questions  []Question `json:"questions" yaml:"questions"`
}

// Validate requires at least one question and validates each
func (q Quiz) Validate() error {
	if len(q.Questions) == 0 {
		return ErrNoQuestions
	}
	for i, question := range q.Questions {
		if err := question.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return nil
}

// Status is the quiz flow phase
type Status int

const (
	StatusIntro Status = iota
	StatusPlaying
	StatusFeedback
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusIntro:
		return "intro"
	case StatusPlaying:
		return "playing"
	case StatusFeedback:
		return "feedback"
	case StatusFinished:
		return "finished"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// State is a snapshot of the flow
type State struct {
	Status       Status
	CurrentIndex int
	Score        int
	Selected     *int // nil until an option is chosen for the current question
}

func (s State) clone() State {
	if s.Selected != nil {
		v := *s.Selected
		s.Selected = &v
	}
	return s
}

// Direction of navigation
type Direction int

const (
	Next Direction = iota
	Prev
)
