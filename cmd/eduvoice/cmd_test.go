package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/eduvoice/audio"
	"github.com/lixenwraith/eduvoice/config"
)

const testQuizYAML = `topic: Video Basics
difficulty: easy
questions:
  - text: What does fps measure?
    options: [Bit depth, Frames per second]
    correct_index: 1
  - text: Which container holds video?
    options: [MP4, TXT]
    correct_index: 0
`

// testEnv writes a config pointing the store at a temp dir and isolates HOME
func testEnv(t *testing.T) (cfgFile, dir string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	cfgFile = filepath.Join(dir, "eduvoice.yaml")
	body := "store:\n  path: " + filepath.Join(dir, "history.db") + "\naudio:\n  output: none\n  tracks:\n    rain: /music/rain.mp3\n"
	require.NoError(t, os.WriteFile(cfgFile, []byte(body), 0o644))
	return cfgFile, dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "eduvoice dev\n", out)
}

func TestHistoryCommands(t *testing.T) {
	cfgFile, dir := testEnv(t)
	quizFile := filepath.Join(dir, "video.yaml")
	require.NoError(t, os.WriteFile(quizFile, []byte(testQuizYAML), 0o644))

	out, err := execute(t, "--config", cfgFile, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved quizzes.")

	out, err = execute(t, "--config", cfgFile, "history", "import", quizFile)
	require.NoError(t, err)
	assert.Contains(t, out, `Imported "Video Basics" (2 questions)`)

	id := regexp.MustCompile(`as (\S+)`).FindStringSubmatch(out)
	require.Len(t, id, 2)

	out, err = execute(t, "--config", cfgFile, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, id[1])
	assert.Contains(t, out, "Video Basics")
	assert.Contains(t, out, "easy")

	out, err = execute(t, "--config", cfgFile, "history", "results", id[1])
	require.NoError(t, err)
	assert.Contains(t, out, "No finished sessions.")

	_, err = execute(t, "--config", cfgFile, "history", "delete", id[1])
	require.NoError(t, err)

	_, err = execute(t, "--config", cfgFile, "history", "delete", id[1])
	require.Error(t, err)
}

func TestTracks(t *testing.T) {
	cfgFile, _ := testEnv(t)
	out, err := execute(t, "--config", cfgFile, "tracks")
	require.NoError(t, err)
	assert.Regexp(t, `\* zen\s+Zen Garden\s+synth, zen`, out)
	assert.Contains(t, out, "rain")
	assert.Contains(t, out, "/music/rain.mp3")
	assert.Contains(t, out, "Custom File")
}

func TestSfxExport(t *testing.T) {
	cfgFile, dir := testEnv(t)
	wavPath := filepath.Join(dir, "click.wav")

	out, err := execute(t, "--config", cfgFile, "sfx", "export", "click", wavPath, "--rate", "8000")
	require.NoError(t, err)
	assert.Contains(t, out, "8000 Hz")

	body, err := os.ReadFile(wavPath)
	require.NoError(t, err)
	require.Greater(t, len(body), 44)
	assert.Equal(t, "RIFF", string(body[:4]))

	_, err = execute(t, "--config", cfgFile, "sfx", "export", "boom", wavPath)
	require.ErrorIs(t, err, audio.ErrUnknownEffect)
}

func TestConfigShowAndInit(t *testing.T) {
	cfgFile, dir := testEnv(t)

	out, err := execute(t, "--config", cfgFile, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "music_volume: 0.3")
	assert.Contains(t, out, "history.db")

	target := filepath.Join(dir, "fresh.yaml")
	_, err = execute(t, "--config", cfgFile, "config", "init", target)
	require.NoError(t, err)
	_, err = os.Stat(target)
	require.NoError(t, err)
}

func TestPlayRejectsUnknownTrack(t *testing.T) {
	cfgFile, _ := testEnv(t)
	_, err := execute(t, "--config", cfgFile, "play", "--track", "polka")
	require.ErrorIs(t, err, audio.ErrUnknownTrack)
}

func TestAudioConfigFor(t *testing.T) {
	cfg := config.Defaults()

	ac := audioConfigFor(cfg, playFlags{})
	assert.Equal(t, audio.TrackZen, ac.ActiveTrack)
	assert.False(t, ac.IsMuted)

	ac = audioConfigFor(cfg, playFlags{mute: true, file: "/tmp/song.mp3"})
	assert.True(t, ac.IsMuted)
	assert.Equal(t, audio.TrackUpload, ac.ActiveTrack)
	assert.Equal(t, "song.mp3", ac.CustomFileName)

	ac = audioConfigFor(cfg, playFlags{file: "/tmp/song.mp3", track: "focus"})
	assert.Equal(t, audio.TrackFocus, ac.ActiveTrack, "explicit track wins over --file")
	assert.Equal(t, "/tmp/song.mp3", ac.CustomFile)
}
