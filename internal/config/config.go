// Package config provides configuration management for the video diary.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// Default values
	DefaultPort     = 8790
	DefaultLogLevel = "info"
	DefaultDataDir  = ".video-diary"
	DefaultFFmpeg   = "ffmpeg"
	DefaultFFprobe  = "ffprobe"

	// Environment variable names
	EnvPort        = "DIARY_PORT"
	EnvLogLevel    = "DIARY_LOG_LEVEL"
	EnvDataDir     = "DIARY_DATA_DIR"
	EnvFFmpeg      = "DIARY_FFMPEG"
	EnvFFprobe     = "DIARY_FFPROBE"
	EnvTrimTimeout = "DIARY_TRIM_TIMEOUT"
	EnvHeadless    = "DIARY_HEADLESS"

	// File layout below the data directory
	DBFilename       = "diary.db"
	CacheFilename    = "cache.bolt"
	ArtifactsDirname = "clips"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	CachePath() string
	ArtifactsDir() string
	FFmpegPath() string
	FFprobePath() string
	TrimTimeout() time.Duration
	Headless() bool
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port        int
	logLevel    string
	dataDir     string
	ffmpegPath  string
	ffprobePath string
	trimTimeout time.Duration
	headless    bool
}

// New creates a new EnvConfig with defaults and environment variable
// overrides. A .env file in the working directory is applied first when
// present; variables already set in the environment win.
func New() (*EnvConfig, error) {
	_ = godotenv.Load()

	cfg := &EnvConfig{
		port:        DefaultPort,
		logLevel:    DefaultLogLevel,
		dataDir:     defaultDataDir(),
		ffmpegPath:  DefaultFFmpeg,
		ffprobePath: DefaultFFprobe,
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if ff := os.Getenv(EnvFFmpeg); ff != "" {
		cfg.ffmpegPath = ff
	}
	if fp := os.Getenv(EnvFFprobe); fp != "" {
		cfg.ffprobePath = fp
	}

	if tt := os.Getenv(EnvTrimTimeout); tt != "" {
		d, err := time.ParseDuration(tt)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvTrimTimeout, err)
		}
		if d < 0 {
			return nil, fmt.Errorf("invalid %s: must not be negative", EnvTrimTimeout)
		}
		cfg.trimTimeout = d
	}

	if h := os.Getenv(EnvHeadless); h != "" {
		headless, err := strconv.ParseBool(h)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		cfg.headless = headless
	}

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// CachePath returns the path of the cache snapshot file
func (c *EnvConfig) CachePath() string {
	return filepath.Join(c.dataDir, CacheFilename)
}

// ArtifactsDir returns the directory trimmed clips are written to
func (c *EnvConfig) ArtifactsDir() string {
	return filepath.Join(c.dataDir, ArtifactsDirname)
}

func (c *EnvConfig) FFmpegPath() string {
	return c.ffmpegPath
}

func (c *EnvConfig) FFprobePath() string {
	return c.ffprobePath
}

// TrimTimeout bounds a single trim; zero means no limit.
func (c *EnvConfig) TrimTimeout() time.Duration {
	return c.trimTimeout
}

// Headless reports whether the tray should be skipped.
func (c *EnvConfig) Headless() bool {
	return c.headless
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
