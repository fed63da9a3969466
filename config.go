package awesomepages

import "github.com/goliatone/go-awesome-pages/internal/runtimeconfig"

var (
	ErrLoggingProviderRequired     = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown      = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid         = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid        = runtimeconfig.ErrLoggingFormatInvalid
	ErrSourcesTimeoutInvalid       = runtimeconfig.ErrSourcesTimeoutInvalid
	ErrSourcesMaxBytesInvalid      = runtimeconfig.ErrSourcesMaxBytesInvalid
	ErrSourcesContentTypesRequired = runtimeconfig.ErrSourcesContentTypesRequired
	ErrCacheBodySizeInvalid        = runtimeconfig.ErrCacheBodySizeInvalid
	ErrRunnerConcurrencyInvalid    = runtimeconfig.ErrRunnerConcurrencyInvalid
	ErrIndexWeightsInvalid         = runtimeconfig.ErrIndexWeightsInvalid
	ErrLanguageConfidenceInvalid   = runtimeconfig.ErrLanguageConfidenceInvalid
)

type (
	Config         = runtimeconfig.Config
	LoggingConfig  = runtimeconfig.LoggingConfig
	SourcesConfig  = runtimeconfig.SourcesConfig
	CacheConfig    = runtimeconfig.CacheConfig
	RunnerConfig   = runtimeconfig.RunnerConfig
	IndexConfig    = runtimeconfig.IndexConfig
	LanguageConfig = runtimeconfig.LanguageConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
