package mdsite

import "github.com/goliatone/go-mdsite/internal/runtimeconfig"

var (
	ErrContentDirRequired      = runtimeconfig.ErrContentDirRequired
	ErrOutputDirRequired       = runtimeconfig.ErrOutputDirRequired
	ErrOutputOverlapsContent   = runtimeconfig.ErrOutputOverlapsContent
	ErrMarkdownEngineUnknown   = runtimeconfig.ErrMarkdownEngineUnknown
	ErrWorkersInvalid          = runtimeconfig.ErrWorkersInvalid
	ErrManifestDriverUnknown   = runtimeconfig.ErrManifestDriverUnknown
	ErrManifestDSNRequired     = runtimeconfig.ErrManifestDSNRequired
	ErrIncrementalNeedsDriver  = runtimeconfig.ErrIncrementalNeedsDriver
	ErrSitemapRequiresBaseURL  = runtimeconfig.ErrSitemapRequiresBaseURL
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrCommandTimeoutInvalid   = runtimeconfig.ErrCommandTimeoutInvalid
)

type (
	Config               = runtimeconfig.Config
	SiteConfig           = runtimeconfig.SiteConfig
	MarkdownConfig       = runtimeconfig.MarkdownConfig
	MarkdownParserConfig = runtimeconfig.MarkdownParserConfig
	GeneratorConfig      = runtimeconfig.GeneratorConfig
	ManifestConfig       = runtimeconfig.ManifestConfig
	LoggingConfig        = runtimeconfig.LoggingConfig
	CommandsConfig       = runtimeconfig.CommandsConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
