package content

import (
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/eduvoice/quiz"
)

// TestDefaultBank verifies the embedded bank parses and validates
func TestDefaultBank(t *testing.T) {
	q, err := Default()
	require.NoError(t, err)
	assert.Equal(t, "Multimedia Systems", q.Topic)
	assert.Equal(t, quiz.Medium, q.Difficulty)
	require.Len(t, q.Questions, 30)

	first := q.Questions[0]
	assert.Equal(t, "1", first.ID)
	assert.Len(t, first.Options, 4)
	assert.Equal(t, 1, first.CorrectIndex)
	assert.NotEmpty(t, first.Explanation)
}

func TestParseAssignsIDs(t *testing.T) {
	q, err := Parse([]byte(`
topic: Audio
questions:
  - text: Which is louder?
    options: [soft, loud]
    correct_index: 1
    explanation: Loud is louder.
  - text: Pick mono
    options: [mono, stereo]
    correct_index: 0
`))
	require.NoError(t, err)
	assert.Equal(t, "1", q.Questions[0].ID)
	assert.Equal(t, "2", q.Questions[1].ID)
	assert.Equal(t, quiz.Medium, q.Difficulty)
}

func TestParseRejectsInvalid(t *testing.T) {
	_, err := Parse([]byte("topic: empty\n"))
	assert.ErrorIs(t, err, quiz.ErrNoQuestions)

	_, err = Parse([]byte(`
questions:
  - text: Broken
    options: [only]
    correct_index: 0
`))
	assert.ErrorIs(t, err, quiz.ErrInvalidQuestion)

	_, err = Parse([]byte("difficulty: nightmare\nquestions: []\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("questions: [\n"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiz.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
topic: Video
difficulty: hard
questions:
  - text: PAL frame rate?
    options: ["24 fps", "25 fps"]
    correct_index: 1
`), 0o644))

	q, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, quiz.Hard, q.Difficulty)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

// TestSample verifies subsets are drawn without mutating the source
func TestSample(t *testing.T) {
	q, err := Default()
	require.NoError(t, err)

	r := rand.New(rand.NewPCG(1, 2))
	s := Sample(q, 10, r)
	require.Len(t, s.Questions, 10)
	assert.Equal(t, "1", q.Questions[0].ID)

	seen := map[string]bool{}
	for _, question := range s.Questions {
		assert.False(t, seen[question.ID], "duplicate %s", question.ID)
		seen[question.ID] = true
	}

	assert.Len(t, Sample(q, 0, nil).Questions, 30)
	assert.Len(t, Sample(q, 99, nil).Questions, 30)
}

func TestServiceLoads(t *testing.T) {
	s := NewService(Options{Count: 5, Seed: 7})
	require.NoError(t, s.Init(context.Background()))
	assert.Len(t, s.Quiz().Questions, 5)

	bad := NewService(Options{File: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, bad.Init(context.Background()))
}
