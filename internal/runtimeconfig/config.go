package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrSchedulingIntervalInvalid = errors.New("cms config: scheduling interval must be positive")
var ErrSchedulingBatchSizeInvalid = errors.New("cms config: scheduling batch size must be positive")
var ErrSchedulingMaxAttemptsInvalid = errors.New("cms config: scheduling max attempts must be positive")
var ErrCronRequiresScheduling = errors.New("cms config: executor auto-start requires scheduling to be enabled")
var ErrStorageProviderUnknown = errors.New("cms config: storage provider is invalid")
var ErrLoggingProviderRequired = errors.New("cms config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("cms config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("cms config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("cms config: logging format is invalid")

// Config aggregates feature flags and adapter bindings for the publishing
// module. Fields intentionally use simple types so host applications can
// extend them later.
type Config struct {
	Enabled    bool
	Storage    StorageConfig
	Cache      CacheConfig
	Scheduling SchedulingConfig
	Features   Features
	Commands   CommandsConfig
	Logging    LoggingConfig
}

// StorageConfig lists identifiers for storage-related dependencies.
type StorageConfig struct {
	Provider string
}

// CacheConfig captures cache behaviour toggles for the content
// repositories.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// SchedulingConfig tunes the task executor.
type SchedulingConfig struct {
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
}

// Features toggles module functionality.
type Features struct {
	Scheduling bool
	Audit      bool
	Activity   bool
	Logger     bool
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Enabled         bool
	AutoStartRunner bool
	HandlerTimeout  time.Duration
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults: bun storage, scheduling and
// audit on, a one minute executor cadence, and batch/retry limits matching
// the executor contract.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Storage: StorageConfig{
			Provider: "bun",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Scheduling: SchedulingConfig{
			Interval:    time.Minute,
			BatchSize:   50,
			MaxAttempts: 3,
		},
		Features: Features{
			Scheduling: true,
			Audit:      true,
		},
		Commands: CommandsConfig{},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if provider := normalizeProvider(cfg.Storage.Provider); provider != "" && provider != "bun" && provider != "memory" {
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, provider)
	}
	if cfg.Scheduling.Interval < 0 {
		return ErrSchedulingIntervalInvalid
	}
	if cfg.Scheduling.BatchSize < 0 {
		return ErrSchedulingBatchSizeInvalid
	}
	if cfg.Scheduling.MaxAttempts < 0 {
		return ErrSchedulingMaxAttemptsInvalid
	}
	if cfg.Commands.AutoStartRunner && !cfg.Features.Scheduling {
		return ErrCronRequiresScheduling
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
