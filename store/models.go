package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lixenwraith/eduvoice/quiz"
)

// Summary is a history row without its questions
type Summary struct {
	ID            string
	Topic         string
	Difficulty    quiz.Difficulty
	QuestionCount int
	CreatedAt     time.Time
	BestScore     int // Highest recorded score, 0 when unplayed
	Plays         int
}

// Result is one finished session
type Result struct {
	ID         int64
	QuizID     string
	Score      int
	Total      int
	FinishedAt time.Time
}

// quizRow mirrors the quizzes table
type quizRow struct {
	ID            string
	Topic         string
	Difficulty    string
	QuestionCount int
	Questions     string
	CreatedAt     int64
}

func toRow(q quiz.Quiz) (quizRow, error) {
	body, err := json.Marshal(q.Questions)
	if err != nil {
		return quizRow{}, fmt.Errorf("encode questions: %w", err)
	}
	return quizRow{
		ID:            q.ID,
		Topic:         q.Topic,
		Difficulty:    string(q.Difficulty),
		QuestionCount: len(q.Questions),
		Questions:     string(body),
		CreatedAt:     q.CreatedAt.UnixMilli(),
	}, nil
}

func (r quizRow) toQuiz() (quiz.Quiz, error) {
	var questions []quiz.Question
	if err := json.Unmarshal([]byte(r.Questions), &questions); err != nil {
		return quiz.Quiz{}, fmt.Errorf("decode questions of %s: %w", r.ID, err)
	}
	return quiz.Quiz{
		ID:         r.ID,
		Topic:      r.Topic,
		Difficulty: quiz.Difficulty(r.Difficulty),
		CreatedAt:  time.UnixMilli(r.CreatedAt),
		Questions:  questions,
	}, nil
}
