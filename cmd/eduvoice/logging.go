package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const maxLogSize = 10 * 1024 * 1024

// setupLogging returns the process logger; without debug everything is discarded
// With debug, path is rotated aside past maxLogSize and opened for append
func setupLogging(debug bool, path string) (*slog.Logger, *os.File) {
	if !debug {
		log.SetOutput(io.Discard)
		logger := slog.New(slog.DiscardHandler)
		slog.SetDefault(logger)
		return logger, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "log directory: %v\n", err)
		return setupLogging(false, path)
	}

	if info, err := os.Stat(path); err == nil && info.Size() > maxLogSize {
		ext := filepath.Ext(path)
		rotated := fmt.Sprintf("%s-%s%s", strings.TrimSuffix(path, ext), time.Now().Format("20060102-150405"), ext)
		if err := os.Rename(path, rotated); err != nil {
			fmt.Fprintf(os.Stderr, "rotate log: %v\n", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log: %v\n", err)
		return setupLogging(false, path)
	}

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
	log.SetOutput(f)
	logger.Info("logging started", "pid", os.Getpid())
	return logger, f
}
