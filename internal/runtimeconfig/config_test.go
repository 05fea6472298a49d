package runtimeconfig

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Scheduling.Interval != time.Minute {
		t.Fatalf("interval = %v", cfg.Scheduling.Interval)
	}
	if cfg.Scheduling.BatchSize != 50 {
		t.Fatalf("batch size = %d", cfg.Scheduling.BatchSize)
	}
	if cfg.Scheduling.MaxAttempts != 3 {
		t.Fatalf("max attempts = %d", cfg.Scheduling.MaxAttempts)
	}
	if !cfg.Features.Scheduling || !cfg.Features.Audit {
		t.Fatalf("scheduling and audit should default on: %+v", cfg.Features)
	}
}

func TestValidateRejectsNegativeSchedulingValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scheduling.Interval = -time.Second
	if err := cfg.Validate(); !errors.Is(err, ErrSchedulingIntervalInvalid) {
		t.Fatalf("expected interval error, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Scheduling.BatchSize = -1
	if err := cfg.Validate(); !errors.Is(err, ErrSchedulingBatchSizeInvalid) {
		t.Fatalf("expected batch size error, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Scheduling.MaxAttempts = -1
	if err := cfg.Validate(); !errors.Is(err, ErrSchedulingMaxAttemptsInvalid) {
		t.Fatalf("expected max attempts error, got %v", err)
	}
}

func TestValidateRunnerRequiresScheduling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Features.Scheduling = false
	cfg.Commands.AutoStartRunner = true
	if err := cfg.Validate(); !errors.Is(err, ErrCronRequiresScheduling) {
		t.Fatalf("expected cron error, got %v", err)
	}
}

func TestValidateStorageProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Provider = "redis"
	if err := cfg.Validate(); !errors.Is(err, ErrStorageProviderUnknown) {
		t.Fatalf("expected storage provider error, got %v", err)
	}

	cfg.Storage.Provider = "memory"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("memory provider should validate: %v", err)
	}
}

func TestValidateLogging(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = ""
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingProviderRequired) {
		t.Fatalf("expected provider required, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "zap"
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingProviderUnknown) {
		t.Fatalf("expected provider unknown, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingLevelInvalid) {
		t.Fatalf("expected level invalid, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingFormatInvalid) {
		t.Fatalf("expected format invalid, got %v", err)
	}
}
