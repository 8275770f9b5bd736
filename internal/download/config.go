package download

import (
	"fmt"
	"time"

	"github.com/handiism/tubetunes/internal/config"
)

// Config holds the manager settings that can be changed while it runs.
//
// A change applies to future decisions only: tasks already running keep
// the output directory they were started with, and lowering MaxConcurrent
// does not stop running workers.
type Config struct {
	// MaxConcurrent is the number of tasks allowed to run at once, 1 to 10.
	MaxConcurrent int

	// MaxRetries is the retry budget of each task. A task is attempted at
	// most MaxRetries+1 times.
	MaxRetries int

	// RetryDelay is the wait between a failure and the task re-entering
	// the queue.
	RetryDelay time.Duration

	// TaskTimeout bounds a single attempt. Zero disables the check.
	TaskTimeout time.Duration

	// AutoRetry enables retries. When false every failure is final.
	AutoRetry bool

	// OutputDir is where downloaders write artifacts.
	OutputDir string

	// MaxFinishedTasks caps how many finished tasks are kept in memory.
	// The oldest are dropped first. Zero keeps everything.
	MaxFinishedTasks int
}

// Default values used by DefaultConfig.
const (
	DefaultMaxConcurrent = 3
	DefaultMaxRetries    = 3
	DefaultRetryDelay    = 5 * time.Second
	DefaultTaskTimeout   = 10 * time.Minute
)

// DefaultConfig returns the default manager configuration writing to outputDir.
func DefaultConfig(outputDir string) Config {
	return Config{
		MaxConcurrent: DefaultMaxConcurrent,
		MaxRetries:    DefaultMaxRetries,
		RetryDelay:    DefaultRetryDelay,
		TaskTimeout:   DefaultTaskTimeout,
		AutoRetry:     true,
		OutputDir:     outputDir,
	}
}

// ConfigFromSettings builds a Config from application settings.
func ConfigFromSettings(s *config.Settings) Config {
	return Config{
		MaxConcurrent:    s.MaxConcurrentDownloads,
		MaxRetries:       s.DownloadMaxRetries,
		RetryDelay:       s.RetryDelay(),
		TaskTimeout:      s.TaskTimeout(),
		AutoRetry:        s.AutoRetry,
		OutputDir:        s.DownloadsPath,
		MaxFinishedTasks: s.MaxFinishedTasks,
	}
}

// Validate reports the first invalid field. The error wraps ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.MaxConcurrent < config.MinConcurrentDownloads || c.MaxConcurrent > config.MaxConcurrentDownloads:
		return fmt.Errorf("%w: max concurrent must be between %d and %d, got %d",
			ErrInvalidConfig, config.MinConcurrentDownloads, config.MaxConcurrentDownloads, c.MaxConcurrent)
	case c.MaxRetries < 0:
		return fmt.Errorf("%w: max retries must not be negative, got %d", ErrInvalidConfig, c.MaxRetries)
	case c.RetryDelay < 0:
		return fmt.Errorf("%w: retry delay must not be negative, got %v", ErrInvalidConfig, c.RetryDelay)
	case c.TaskTimeout < 0:
		return fmt.Errorf("%w: task timeout must not be negative, got %v", ErrInvalidConfig, c.TaskTimeout)
	case c.MaxFinishedTasks < 0:
		return fmt.Errorf("%w: max finished tasks must not be negative, got %d", ErrInvalidConfig, c.MaxFinishedTasks)
	case c.OutputDir == "":
		return fmt.Errorf("%w: output directory is required", ErrInvalidConfig)
	}
	return nil
}
