package cms

import "github.com/KCuppens/bedrock-cms/internal/runtimeconfig"

var (
	ErrSchedulingIntervalInvalid    = runtimeconfig.ErrSchedulingIntervalInvalid
	ErrSchedulingBatchSizeInvalid   = runtimeconfig.ErrSchedulingBatchSizeInvalid
	ErrSchedulingMaxAttemptsInvalid = runtimeconfig.ErrSchedulingMaxAttemptsInvalid
	ErrCronRequiresScheduling       = runtimeconfig.ErrCronRequiresScheduling
	ErrStorageProviderUnknown       = runtimeconfig.ErrStorageProviderUnknown
	ErrLoggingProviderRequired      = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown       = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid          = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid         = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config           = runtimeconfig.Config
	StorageConfig    = runtimeconfig.StorageConfig
	CacheConfig      = runtimeconfig.CacheConfig
	SchedulingConfig = runtimeconfig.SchedulingConfig
	Features         = runtimeconfig.Features
	CommandsConfig   = runtimeconfig.CommandsConfig
	LoggingConfig    = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
