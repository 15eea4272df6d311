package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/lixenwraith/eduvoice/quiz"
)

// ErrNotFound is returned for an unknown quiz id
var ErrNotFound = errors.New("quiz not found")

const (
	listCacheKey = "summaries"
	listCacheTTL = 5 * time.Minute
)

// Repository stores quizzes and their results
type Repository struct {
	db    *sql.DB
	cache *cache.Cache
	log   *slog.Logger
	now   func() time.Time
}

// NewRepository wraps an open database
func NewRepository(db *DB) *Repository {
	return &Repository{
		db:    db.Conn(),
		cache: cache.New(listCacheTTL, 2*listCacheTTL),
		log:   db.log,
		now:   time.Now,
	}
}

// Save inserts or replaces a quiz and returns the stored copy
// Empty ID gets a fresh UUID; zero CreatedAt gets the current time
func (r *Repository) Save(ctx context.Context, q quiz.Quiz) (quiz.Quiz, error) {
	if err := q.Validate(); err != nil {
		return quiz.Quiz{}, err
	}
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = r.now()
	}
	if q.Difficulty == "" {
		q.Difficulty = quiz.Medium
	}
	// Millisecond precision matches what the table holds
	q.CreatedAt = q.CreatedAt.Truncate(time.Millisecond)

	row, err := toRow(q)
	if err != nil {
		return quiz.Quiz{}, err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO quizzes (id, topic, difficulty, question_count, questions, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			topic = excluded.topic,
			difficulty = excluded.difficulty,
			question_count = excluded.question_count,
			questions = excluded.questions`,
		row.ID, row.Topic, row.Difficulty, row.QuestionCount, row.Questions, row.CreatedAt)
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("save quiz: %w", err)
	}

	r.cache.Delete(listCacheKey)
	r.log.Debug("quiz saved", "component", "store", "id", q.ID, "questions", row.QuestionCount)
	return q, nil
}

// Get loads a quiz with its questions
func (r *Repository) Get(ctx context.Context, id string) (quiz.Quiz, error) {
	var row quizRow
	err := r.db.QueryRowContext(ctx, `
		SELECT id, topic, difficulty, question_count, questions, created_at
		FROM quizzes WHERE id = ?`, id).
		Scan(&row.ID, &row.Topic, &row.Difficulty, &row.QuestionCount, &row.Questions, &row.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return quiz.Quiz{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("get quiz: %w", err)
	}
	return row.toQuiz()
}

// List returns summaries newest first
func (r *Repository) List(ctx context.Context) ([]Summary, error) {
	if cached, ok := r.cache.Get(listCacheKey); ok {
		return cloneSummaries(cached.([]Summary)), nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT q.id, q.topic, q.difficulty, q.question_count, q.created_at,
			COALESCE(MAX(r.score), 0), COUNT(r.id)
		FROM quizzes q
		LEFT JOIN results r ON r.quiz_id = q.id
		GROUP BY q.id
		ORDER BY q.created_at DESC, q.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			s          Summary
			difficulty string
			created    int64
		)
		if err := rows.Scan(&s.ID, &s.Topic, &difficulty, &s.QuestionCount, &created, &s.BestScore, &s.Plays); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		s.Difficulty = quiz.Difficulty(difficulty)
		s.CreatedAt = time.UnixMilli(created)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}

	r.cache.SetDefault(listCacheKey, out)
	return cloneSummaries(out), nil
}

// Delete removes a quiz and its results
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	r.cache.Delete(listCacheKey)
	r.log.Debug("quiz deleted", "component", "store", "id", id)
	return nil
}

// RecordResult stores a finished session for a saved quiz
func (r *Repository) RecordResult(ctx context.Context, quizID string, score, total int) (Result, error) {
	res := Result{QuizID: quizID, Score: score, Total: total, FinishedAt: r.now().Truncate(time.Millisecond)}

	out, err := r.db.ExecContext(ctx, `
		INSERT INTO results (quiz_id, score, total, finished_at) VALUES (?, ?, ?, ?)`,
		quizID, score, total, res.FinishedAt.UnixMilli())
	if err != nil {
		if _, getErr := r.Get(ctx, quizID); errors.Is(getErr, ErrNotFound) {
			return Result{}, getErr
		}
		return Result{}, fmt.Errorf("record result: %w", err)
	}
	if res.ID, err = out.LastInsertId(); err != nil {
		return Result{}, fmt.Errorf("record result: %w", err)
	}

	r.cache.Delete(listCacheKey)
	return res, nil
}

// Results returns a quiz's sessions newest first
func (r *Repository) Results(ctx context.Context, quizID string) ([]Result, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, quiz_id, score, total, finished_at
		FROM results WHERE quiz_id = ?
		ORDER BY finished_at DESC, id DESC`, quizID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var (
			res      Result
			finished int64
		)
		if err := rows.Scan(&res.ID, &res.QuizID, &res.Score, &res.Total, &finished); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		res.FinishedAt = time.UnixMilli(finished)
		out = append(out, res)
	}
	return out, rows.Err()
}

func cloneSummaries(s []Summary) []Summary {
	if s == nil {
		return nil
	}
	return append([]Summary(nil), s...)
}
