package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrContentDirRequired      = errors.New("mdsite config: content directory is required")
	ErrOutputDirRequired       = errors.New("mdsite config: output directory is required when generator is enabled")
	ErrOutputOverlapsContent   = errors.New("mdsite config: output directory must differ from content and static directories")
	ErrMarkdownEngineUnknown   = errors.New("mdsite config: markdown engine is invalid")
	ErrWorkersInvalid          = errors.New("mdsite config: generator workers must be zero or positive")
	ErrManifestDriverUnknown   = errors.New("mdsite config: manifest driver is invalid")
	ErrManifestDSNRequired     = errors.New("mdsite config: manifest dsn is required for sql drivers")
	ErrIncrementalNeedsDriver  = errors.New("mdsite config: incremental builds require a manifest driver")
	ErrSitemapRequiresBaseURL  = errors.New("mdsite config: sitemap and robots generation require a base url")
	ErrLoggingProviderRequired = errors.New("mdsite config: logging provider is required")
	ErrLoggingProviderUnknown  = errors.New("mdsite config: logging provider is invalid")
	ErrLoggingLevelInvalid     = errors.New("mdsite config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("mdsite config: logging format is invalid")
	ErrCommandTimeoutInvalid   = errors.New("mdsite config: command timeout must be zero or positive")
)

// Config aggregates every runtime option of the site generator.
type Config struct {
	Site      SiteConfig
	Markdown  MarkdownConfig
	Generator GeneratorConfig
	Manifest  ManifestConfig
	Logging   LoggingConfig
	Commands  CommandsConfig
}

// SiteConfig locates inputs and outputs on disk.
type SiteConfig struct {
	ContentDir   string
	StaticDir    string
	TemplatePath string
	OutputDir    string
	// BasePath prefixes root relative links, e.g. "/repo/" for project pages.
	BasePath string
	BaseURL  string
}

// MarkdownConfig captures discovery and parser behaviour.
type MarkdownConfig struct {
	// Engine is "builtin" or "goldmark".
	Engine    string
	Pattern   string
	Recursive bool
	// FrontMatterSchema points at a JSON schema file. Blank disables
	// validation; "default" selects the bundled schema.
	FrontMatterSchema string
	Parser            MarkdownParserConfig
}

// MarkdownParserConfig mirrors interfaces.ParseOptions for runtime configuration.
type MarkdownParserConfig struct {
	Extensions []string
	HardWraps  bool
	SafeMode   bool
}

// GeneratorConfig captures behaviour for the static site generator.
type GeneratorConfig struct {
	Enabled         bool
	CleanBuild      bool
	CopyAssets      bool
	Incremental     bool
	IncludeDrafts   bool
	FailFast        bool
	GenerateSitemap bool
	GenerateRobots  bool
	Workers         int
}

// ManifestConfig selects where build manifests are kept.
type ManifestConfig struct {
	// Driver is "memory", "sqlite3" or "postgres".
	Driver   string
	DSN      string
	CacheTTL time.Duration
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Timeout time.Duration
}

// DefaultConfig mirrors the layout of a typical site checkout: content/,
// static/ and template.html rendered into public/.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			ContentDir:   "content",
			StaticDir:    "static",
			TemplatePath: "template.html",
			OutputDir:    "public",
			BasePath:     "/",
		},
		Markdown: MarkdownConfig{
			Engine:    "builtin",
			Pattern:   "*.md",
			Recursive: true,
		},
		Generator: GeneratorConfig{
			Enabled:    true,
			CleanBuild: true,
			CopyAssets: true,
		},
		Manifest: ManifestConfig{
			Driver: "memory",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Commands: CommandsConfig{
			Timeout: 5 * time.Minute,
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Site.ContentDir) == "" {
		return ErrContentDirRequired
	}
	if cfg.Generator.Enabled {
		output := cleanDir(cfg.Site.OutputDir)
		if output == "" {
			return ErrOutputDirRequired
		}
		if output == cleanDir(cfg.Site.ContentDir) || output == cleanDir(cfg.Site.StaticDir) {
			return ErrOutputOverlapsContent
		}
		if cfg.Generator.Workers < 0 {
			return fmt.Errorf("%w: %d", ErrWorkersInvalid, cfg.Generator.Workers)
		}
		if (cfg.Generator.GenerateSitemap || cfg.Generator.GenerateRobots) && strings.TrimSpace(cfg.Site.BaseURL) == "" {
			return ErrSitemapRequiresBaseURL
		}
	}

	switch engine := strings.ToLower(strings.TrimSpace(cfg.Markdown.Engine)); engine {
	case "", "builtin", "goldmark":
	default:
		return fmt.Errorf("%w: %s", ErrMarkdownEngineUnknown, engine)
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Manifest.Driver))
	switch driver {
	case "", "memory", "none":
	case "sqlite", "sqlite3", "postgres", "postgresql":
		if strings.TrimSpace(cfg.Manifest.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrManifestDSNRequired, driver)
		}
	default:
		return fmt.Errorf("%w: %s", ErrManifestDriverUnknown, driver)
	}
	if cfg.Generator.Incremental && driver == "none" {
		return ErrIncrementalNeedsDriver
	}

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

	if cfg.Commands.Timeout < 0 {
		return ErrCommandTimeoutInvalid
	}
	return nil
}

func cleanDir(dir string) string {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return ""
	}
	trimmed = strings.TrimPrefix(strings.TrimRight(trimmed, "/"), "./")
	if trimmed == "" {
		return "/"
	}
	return trimmed
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
