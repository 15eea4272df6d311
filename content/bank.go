package content

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/eduvoice/quiz"
)

//go:embed bank.yaml
var bankYAML []byte

// Default returns the built-in question bank
func Default() (quiz.Quiz, error) {
	q, err := Parse(bankYAML)
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("built-in bank: %w", err)
	}
	return q, nil
}

// LoadFile reads and validates a YAML quiz file
func LoadFile(path string) (quiz.Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("read quiz file: %w", err)
	}
	q, err := Parse(data)
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("%s: %w", path, err)
	}
	return q, nil
}

// Parse decodes YAML into a validated quiz
// Missing question ids are numbered from 1; an empty difficulty becomes medium
func Parse(data []byte) (quiz.Quiz, error) {
	var q quiz.Quiz
	if err := yaml.Unmarshal(data, &q); err != nil {
		return quiz.Quiz{}, fmt.Errorf("parse quiz: %w", err)
	}

	d, err := quiz.ParseDifficulty(string(q.Difficulty))
	if err != nil {
		return quiz.Quiz{}, err
	}
	q.Difficulty = d

	for i := range q.Questions {
		if q.Questions[i].ID == "" {
			q.Questions[i].ID = strconv.Itoa(i + 1)
		}
	}

	if err := q.Validate(); err != nil {
		return quiz.Quiz{}, err
	}
	return q, nil
}

// Sample returns a copy of q holding n questions in shuffled order
// n <= 0 or n >= len keeps every question, still shuffled
func Sample(q quiz.Quiz, n int, r *rand.Rand) quiz.Quiz {
	qs := make([]quiz.Question, len(q.Questions))
	copy(qs, q.Questions)
	if r != nil {
		r.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
	}
	if n > 0 && n < len(qs) {
		qs = qs[:n]
	}
	q.Questions = qs
	return q
}
