package audio

import (
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// BackendType identifies a CLI playback backend
type BackendType int

const (
	BackendPulse BackendType = iota
	BackendPipeWire
	BackendALSA
	BackendSoX
	BackendFFplay
	BackendOSS
)

// BackendConfig describes a raw PCM sink process
type BackendConfig struct {
	Type BackendType
	Name string
	Path string
	Args []string
}

// ErrNoAudioBackend is returned when no playback tool is installed
var ErrNoAudioBackend = errors.New("no compatible audio backend found")

// DetectBackend searches for a tool accepting s16le stereo on stdin
// Priority: pacat > pw-cat > aplay > play (sox) > ffplay > OSS
func DetectBackend(rate int) (*BackendConfig, error) {
	r := strconv.Itoa(rate)

	if path, err := exec.LookPath("pacat"); err == nil {
		return &BackendConfig{Type: BackendPulse, Name: "pacat", Path: path, Args: []string{
			"--raw", "--format=s16le", "--rate=" + r, "--channels=2", "--latency-msec=50", "--playback",
		}}, nil
	}

	if path, err := exec.LookPath("pw-cat"); err == nil {
		return &BackendConfig{Type: BackendPipeWire, Name: "pw-cat", Path: path, Args: []string{
			"--playback", "--format=s16", "--rate=" + r, "--channels=2", "--latency=50ms", "-",
		}}, nil
	}

	if path, err := exec.LookPath("aplay"); err == nil {
		return &BackendConfig{Type: BackendALSA, Name: "aplay", Path: path, Args: []string{
			"-t", "raw", "-f", "S16_LE", "-r", r, "-c", "2", "-q",
		}}, nil
	}

	if path, err := exec.LookPath("play"); err == nil {
		return &BackendConfig{Type: BackendSoX, Name: "sox", Path: path, Args: []string{
			"-t", "raw", "-e", "signed", "-b", "16", "-c", "2", "-r", r, "-", "-d", "-q",
		}}, nil
	}

	if path, err := exec.LookPath("ffplay"); err == nil {
		return &BackendConfig{Type: BackendFFplay, Name: "ffplay", Path: path, Args: []string{
			"-nodisp", "-autoexit", "-f", "s16le", "-ac", "2", "-ar", r,
			"-probesize", "32", "-analyzeduration", "0", "-i", "pipe:0", "-loglevel", "quiet",
		}}, nil
	}

	// FreeBSD OSS, direct device write
	if runtime.GOOS == "freebsd" {
		if _, err := os.Stat("/dev/dsp"); err == nil {
			return &BackendConfig{Type: BackendOSS, Name: "oss", Path: "/dev/dsp"}, nil
		}
	}

	return nil, ErrNoAudioBackend
}
