package di

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/uptrace/bun"

	sitecmd "github.com/goliatone/go-mdsite/internal/commands/site"
	"github.com/goliatone/go-mdsite/internal/generator"
	"github.com/goliatone/go-mdsite/internal/logging"
	"github.com/goliatone/go-mdsite/internal/logging/console"
	"github.com/goliatone/go-mdsite/internal/logging/gologger"
	"github.com/goliatone/go-mdsite/internal/manifest"
	"github.com/goliatone/go-mdsite/internal/markdown"
	"github.com/goliatone/go-mdsite/internal/runtimeconfig"
	"github.com/goliatone/go-mdsite/internal/validation"
	"github.com/goliatone/go-mdsite/pkg/interfaces"
)

const (
	manifestDriverNone = "none"
	defaultSchemaName  = "default"
)

// Container wires module dependencies from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	parser    interfaces.MarkdownParser
	validator markdown.FrontMatterValidator
	template  *generator.Template

	bunDB         *bun.DB
	manifestStore manifest.Store
	ownsManifest  bool

	markdownSvc  *markdown.Service
	generatorSvc generator.Service

	registry     sitecmd.CommandRegistry
	siteCommands *sitecmd.HandlerSet
}

// Option mutates the container before services are built.
type Option func(*Container)

// WithLoggerProvider overrides the provider selected by Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithMarkdownParser replaces the engine selected by Config.Markdown.Engine.
func WithMarkdownParser(parser interfaces.MarkdownParser) Option {
	return func(c *Container) {
		c.parser = parser
	}
}

// WithFrontMatterValidator replaces the schema named in Config.Markdown.
func WithFrontMatterValidator(validator markdown.FrontMatterValidator) Option {
	return func(c *Container) {
		c.validator = validator
	}
}

// WithTemplate supplies the page template instead of Config.Site.TemplatePath.
func WithTemplate(tmpl *generator.Template) Option {
	return func(c *Container) {
		c.template = tmpl
	}
}

// WithBunDB keeps the manifest in an existing database. The caller keeps
// ownership of db.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithManifestStore injects a ready manifest store. The caller keeps
// ownership of store.
func WithManifestStore(store manifest.Store) Option {
	return func(c *Container) {
		c.manifestStore = store
	}
}

// WithCommandRegistry registers the site command handlers with reg.
func WithCommandRegistry(reg sitecmd.CommandRegistry) Option {
	return func(c *Container) {
		c.registry = reg
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	steps := []func(context.Context) error{
		c.configureLogger,
		c.configureMarkdown,
		c.configureManifest,
		c.configureGenerator,
		c.configureCommands,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	return c, nil
}

func (c *Container) configureLogger(context.Context) error {
	if c.loggerProvider == nil {
		provider, err := newLoggerProvider(c.Config.Logging)
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "")
	return nil
}

func newLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
	default:
		opts := console.Options{Writer: os.Stderr}
		if strings.TrimSpace(cfg.Level) != "" {
			level, err := console.ParseLevel(cfg.Level)
			if err != nil {
				return nil, err
			}
			opts.MinLevel = &level
		}
		return console.NewProvider(opts), nil
	}
}

func (c *Container) configureMarkdown(context.Context) error {
	if c.validator == nil {
		validator, err := newFrontMatterValidator(c.Config.Markdown.FrontMatterSchema)
		if err != nil {
			return err
		}
		if validator != nil {
			c.validator = validator
		}
	}

	svc, err := markdown.NewService(markdown.Config{
		BasePath:  c.Config.Site.ContentDir,
		Pattern:   c.Config.Markdown.Pattern,
		Recursive: c.Config.Markdown.Recursive,
		Engine:    c.Config.Markdown.Engine,
		Parser: interfaces.ParseOptions{
			Extensions: c.Config.Markdown.Parser.Extensions,
			HardWraps:  c.Config.Markdown.Parser.HardWraps,
			SafeMode:   c.Config.Markdown.Parser.SafeMode,
		},
		Validator: c.validator,
		Logger:    logging.MarkdownLogger(c.loggerProvider),
	}, c.parser)
	if err != nil {
		return err
	}
	c.markdownSvc = svc
	return nil
}

func newFrontMatterValidator(schema string) (*validation.FrontMatterValidator, error) {
	schema = strings.TrimSpace(schema)
	switch schema {
	case "":
		return nil, nil
	case defaultSchemaName:
		return validation.NewFrontMatterValidator(nil)
	default:
		doc, err := validation.LoadSchemaFile(schema)
		if err != nil {
			return nil, err
		}
		return validation.NewFrontMatterValidator(doc)
	}
}

func (c *Container) configureManifest(ctx context.Context) error {
	if c.manifestStore != nil {
		return nil
	}
	cfg := manifest.Config{
		Driver:   c.Config.Manifest.Driver,
		DSN:      c.Config.Manifest.DSN,
		CacheTTL: c.Config.Manifest.CacheTTL,
		Logger:   logging.ManifestLogger(c.loggerProvider),
	}

	switch {
	case c.bunDB != nil:
		store, err := manifest.NewBunStore(ctx, c.bunDB, cfg)
		if err != nil {
			return err
		}
		c.manifestStore = store
	case strings.EqualFold(strings.TrimSpace(cfg.Driver), manifestDriverNone):
		return nil
	default:
		store, err := manifest.Open(ctx, cfg)
		if err != nil {
			return err
		}
		c.manifestStore = store
		c.ownsManifest = true
	}
	return nil
}

func (c *Container) configureGenerator(context.Context) error {
	if !c.Config.Generator.Enabled {
		c.generatorSvc = generator.NewDisabledService()
		return nil
	}
	site := c.Config.Site
	gen := c.Config.Generator
	c.generatorSvc = generator.NewService(generator.Config{
		ContentDir:      site.ContentDir,
		StaticDir:       site.StaticDir,
		TemplatePath:    site.TemplatePath,
		OutputDir:       site.OutputDir,
		BasePath:        site.BasePath,
		BaseURL:         site.BaseURL,
		CleanBuild:      gen.CleanBuild,
		CopyAssets:      gen.CopyAssets,
		Incremental:     gen.Incremental,
		IncludeDrafts:   gen.IncludeDrafts,
		FailFast:        gen.FailFast,
		Workers:         gen.Workers,
		GenerateSitemap: gen.GenerateSitemap,
		GenerateRobots:  gen.GenerateRobots,
	}, generator.Dependencies{
		Documents: c.markdownSvc,
		Manifest:  c.manifestStore,
		Template:  c.template,
		Logger:    logging.GeneratorLogger(c.loggerProvider),
	})
	return nil
}

func (c *Container) configureCommands(context.Context) error {
	set, err := sitecmd.RegisterSiteCommands(c.registry, c.generatorSvc, c.loggerProvider, c.Config.Commands.Timeout)
	if err != nil {
		return fmt.Errorf("di: register site commands: %w", err)
	}
	c.siteCommands = set
	return nil
}

// Close releases the manifest store when the container opened it.
func (c *Container) Close() error {
	if c.manifestStore == nil || !c.ownsManifest {
		return nil
	}
	err := c.manifestStore.Close()
	c.manifestStore = nil
	return err
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

func (c *Container) Logger() interfaces.Logger { return c.logger }

func (c *Container) MarkdownService() *markdown.Service { return c.markdownSvc }

func (c *Container) GeneratorService() generator.Service { return c.generatorSvc }

func (c *Container) ManifestStore() manifest.Store { return c.manifestStore }

func (c *Container) SiteCommands() *sitecmd.HandlerSet { return c.siteCommands }
