package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, EDUVOICE_AUDIO_MUSIC_VOLUME etc.
const EnvPrefix = "EDUVOICE"

// Options locates configuration sources
type Options struct {
	File        string   // Explicit config file; when set it must exist
	SearchPaths []string // Directories searched for eduvoice.yaml when File is empty
	EnvFile     string   // Dotenv file, ".env" when empty; a missing file is ignored
	Logger      *slog.Logger
}

// Loader reads and watches the configuration
type Loader struct {
	v    *viper.Viper
	opts Options
	log  *slog.Logger

	mu  sync.Mutex
	cfg Config
}

// DefaultSearchPaths returns the standard config locations, most specific last
func DefaultSearchPaths() []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "eduvoice"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "eduvoice"))
	}
	return append(paths, HomeDir(), ".")
}

// NewLoader prepares a viper instance with defaults and env bindings
func NewLoader(opts Options) *Loader {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.SearchPaths == nil {
		opts.SearchPaths = DefaultSearchPaths()
	}
	if opts.EnvFile == "" {
		opts.EnvFile = ".env"
	}

	v := viper.New()
	setDefaults(v, Defaults())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("eduvoice")
		v.SetConfigType("yaml")
		for _, p := range opts.SearchPaths {
			v.AddConfigPath(p)
		}
	}

	return &Loader{v: v, opts: opts, log: opts.Logger}
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("audio.music_volume", d.Audio.MusicVolume)
	v.SetDefault("audio.voice_volume", d.Audio.VoiceVolume)
	v.SetDefault("audio.muted", d.Audio.Muted)
	v.SetDefault("audio.track", d.Audio.Track)
	v.SetDefault("audio.custom_file", d.Audio.CustomFile)
	v.SetDefault("audio.sample_rate", d.Audio.SampleRate)
	v.SetDefault("audio.output", d.Audio.Output)

	v.SetDefault("narration.backend", d.Narration.Backend)
	v.SetDefault("narration.lang", d.Narration.Lang)
	v.SetDefault("narration.rate", d.Narration.Rate)
	v.SetDefault("narration.voice", d.Narration.Voice)

	v.SetDefault("quiz.auto_advance", d.Quiz.AutoAdvance)
	v.SetDefault("quiz.file", d.Quiz.File)
	v.SetDefault("quiz.count", d.Quiz.Count)
	v.SetDefault("quiz.seed", d.Quiz.Seed)

	v.SetDefault("store.path", d.Store.Path)

	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("log.file", d.Log.File)
}

// Load reads .env, then the config file, then decodes with env overrides on top
func (l *Loader) Load() (Config, error) {
	if err := godotenv.Load(l.opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", l.opts.EnvFile, err)
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.opts.File != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		l.log.Debug("no config file, using defaults", "component", "config")
	}

	cfg, err := l.decode()
	if err != nil {
		return Config{}, err
	}

	l.mu.Lock()
	l.cfg = cfg
	l.mu.Unlock()

	l.log.Info("config loaded", "component", "config", "file", l.v.ConfigFileUsed())
	return cfg, nil
}

func (l *Loader) decode() (Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Current returns the last successfully loaded configuration
func (l *Loader) Current() Config {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cfg
}

// File returns the config file in use, empty when running on defaults
func (l *Loader) File() string {
	return l.v.ConfigFileUsed()
}

// Watch calls fn with the new configuration whenever the file changes
// Invalid edits are logged and skipped; without a config file Watch is a no-op
func (l *Loader) Watch(fn func(Config)) bool {
	if l.v.ConfigFileUsed() == "" {
		return false
	}

	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := l.decode()
		if err != nil {
			l.log.Warn("config reload failed", "component", "config", "file", e.Name, "error", err)
			return
		}
		l.mu.Lock()
		l.cfg = cfg
		l.mu.Unlock()

		l.log.Info("config reloaded", "component", "config", "file", e.Name)
		fn(cfg)
	})
	l.v.WatchConfig()
	return true
}
