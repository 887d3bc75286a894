package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-mdsite"
	sitecmd "github.com/goliatone/go-mdsite/internal/commands/site"
	"github.com/goliatone/go-mdsite/internal/generator"
)

type buildHandler interface {
	Execute(context.Context, sitecmd.BuildSiteCommand) error
}

type diffHandler interface {
	Execute(context.Context, sitecmd.DiffSiteCommand) error
}

type cleanHandler interface {
	Execute(context.Context, sitecmd.CleanSiteCommand) error
}

type renderHandler interface {
	Execute(context.Context, sitecmd.RenderDocumentCommand) error
}

type handlerSet struct {
	build  buildHandler
	diff   diffHandler
	clean  cleanHandler
	render renderHandler
}

type moduleOptions struct {
	config mdsite.Config
}

type moduleResources struct {
	handlers handlerSet
	close    func() error
}

var (
	moduleBuilder           = buildModule
	stdout        io.Writer = os.Stdout
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("mdsite: %v", err)
	}
}

func buildModule(opts moduleOptions) (*moduleResources, error) {
	module, err := mdsite.New(context.Background(), opts.config)
	if err != nil {
		return nil, err
	}
	commands := module.Commands()
	if commands == nil {
		return &moduleResources{close: module.Close}, nil
	}
	return &moduleResources{
		handlers: handlerSet{
			build:  commands.Build,
			diff:   commands.Diff,
			clean:  commands.Clean,
			render: commands.Render,
		},
		close: module.Close,
	}, nil
}

func run(args []string) error {
	if len(args) == 0 {
		return errors.New("missing subcommand (build, diff, clean, render)")
	}

	sub := args[0]
	switch sub {
	case "build", "diff", "clean", "render":
	default:
		return fmt.Errorf("unknown subcommand %q", sub)
	}

	fs := flag.NewFlagSet(sub, flag.ContinueOnError)
	opts := bindFlags(fs)
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	cfg, err := opts.config(fs.Args(), sub)
	if err != nil {
		return err
	}

	resources, err := moduleBuilder(moduleOptions{config: cfg})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	if resources.close != nil {
		defer resources.close()
	}

	ctx := context.Background()
	switch sub {
	case "build":
		return runBuild(ctx, resources.handlers, opts, false)
	case "diff":
		return runBuild(ctx, resources.handlers, opts, true)
	case "clean":
		if resources.handlers.clean == nil {
			return errors.New("clean handler not configured")
		}
		if err := resources.handlers.clean.Execute(ctx, sitecmd.CleanSiteCommand{}); err != nil {
			return err
		}
		log.Printf("module=site operation=clean output=%s", cfg.Site.OutputDir)
		return nil
	default:
		return runRender(ctx, resources.handlers, fs.Args())
	}
}

func runBuild(ctx context.Context, handlers handlerSet, opts *cliOptions, diff bool) error {
	var envelope sitecmd.ResultEnvelope
	capture := func(env sitecmd.ResultEnvelope) { envelope = env }

	var err error
	if diff {
		if handlers.diff == nil {
			return errors.New("diff handler not configured")
		}
		err = handlers.diff.Execute(ctx, sitecmd.DiffSiteCommand{
			Sources:        opts.sources,
			Force:          opts.force,
			ResultCallback: capture,
		})
	} else {
		if handlers.build == nil {
			return errors.New("build handler not configured")
		}
		err = handlers.build.Execute(ctx, sitecmd.BuildSiteCommand{
			Sources:        opts.sources,
			Force:          opts.force,
			DryRun:         opts.dryRun,
			ResultCallback: capture,
		})
	}
	logBuildSummary(envelope)
	return err
}

func runRender(ctx context.Context, handlers handlerSet, args []string) error {
	if handlers.render == nil {
		return errors.New("render handler not configured")
	}
	if len(args) != 1 {
		return errors.New("render expects exactly one source path")
	}
	return handlers.render.Execute(ctx, sitecmd.RenderDocumentCommand{
		Source: args[0],
		Callback: func(page *generator.RenderedPage) {
			fmt.Fprint(stdout, page.HTML)
		},
	})
}

func logBuildSummary(envelope sitecmd.ResultEnvelope) {
	operation, _ := envelope.Metadata["operation"].(string)
	if operation == "" {
		operation = "build"
	}
	result := envelope.Result
	if result == nil {
		log.Printf("module=site operation=%s", operation)
		return
	}
	log.Printf("module=site operation=%s summary built=%d skipped=%d assets=%d errors=%d dry_run=%t duration=%s",
		operation, result.PagesBuilt, result.PagesSkipped, result.AssetsCopied, len(result.Errors), result.DryRun, result.Duration.Round(time.Millisecond))
	for _, diagnostic := range result.Diagnostics {
		switch {
		case diagnostic.Err != nil:
			log.Printf("module=site page=%s status=failed error=%q", diagnostic.Source, diagnostic.Err)
		case diagnostic.Skipped:
			log.Printf("module=site page=%s status=skipped reason=%s", diagnostic.Source, diagnostic.Reason)
		}
	}
}

type cliOptions struct {
	contentDir     string
	staticDir      string
	templatePath   string
	outputDir      string
	basePath       string
	baseURL        string
	engine         string
	pattern        string
	schema         string
	incremental    bool
	force          bool
	dryRun         bool
	includeDrafts  bool
	failFast       bool
	noClean        bool
	sitemap        bool
	robots         bool
	workers        int
	manifestDriver string
	manifestDSN    string
	manifestTTL    time.Duration
	logProvider    string
	logLevel       string
	logFormat      string
	sourceList     string
	sources        []string
}

func bindFlags(fs *flag.FlagSet) *cliOptions {
	defaults := mdsite.DefaultConfig()
	opts := &cliOptions{}
	fs.StringVar(&opts.contentDir, "content", defaults.Site.ContentDir, "Markdown content directory")
	fs.StringVar(&opts.staticDir, "static", defaults.Site.StaticDir, "Static asset directory copied into the output")
	fs.StringVar(&opts.templatePath, "template", defaults.Site.TemplatePath, "HTML template with {{ Title }} and {{ Content }} placeholders")
	fs.StringVar(&opts.outputDir, "output", defaults.Site.OutputDir, "Output directory")
	fs.StringVar(&opts.basePath, "base-path", defaults.Site.BasePath, "Prefix for root relative href and src attributes")
	fs.StringVar(&opts.baseURL, "base-url", "", "Absolute site URL used by sitemap.xml and robots.txt")
	fs.StringVar(&opts.engine, "engine", defaults.Markdown.Engine, "Markdown engine: builtin or goldmark")
	fs.StringVar(&opts.pattern, "pattern", defaults.Markdown.Pattern, "Glob applied to content file names")
	fs.StringVar(&opts.schema, "frontmatter-schema", "", "JSON schema file for front matter, or \"default\"")
	fs.BoolVar(&opts.incremental, "incremental", false, "Skip sources unchanged since the last build")
	fs.BoolVar(&opts.force, "force", false, "Render every source even when unchanged")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "Report what would be written without writing")
	fs.BoolVar(&opts.includeDrafts, "include-drafts", false, "Render documents marked draft")
	fs.BoolVar(&opts.failFast, "fail-fast", false, "Stop at the first failing document")
	fs.BoolVar(&opts.noClean, "no-clean", false, "Keep existing output instead of deleting it first")
	fs.BoolVar(&opts.sitemap, "sitemap", false, "Write sitemap.xml (requires -base-url)")
	fs.BoolVar(&opts.robots, "robots", false, "Write robots.txt (requires -base-url)")
	fs.IntVar(&opts.workers, "workers", 0, "Concurrent page renderers (0 uses every CPU)")
	fs.StringVar(&opts.manifestDriver, "manifest-driver", defaults.Manifest.Driver, "Build manifest store: memory, sqlite3, postgres or none")
	fs.StringVar(&opts.manifestDSN, "manifest-dsn", "", "DSN for sql manifest drivers")
	fs.DurationVar(&opts.manifestTTL, "manifest-cache-ttl", 0, "Cache manifest lookups for this long (0 disables the cache)")
	fs.StringVar(&opts.logProvider, "log-provider", defaults.Logging.Provider, "Logger: console or gologger")
	fs.StringVar(&opts.logLevel, "log-level", defaults.Logging.Level, "Minimum log level")
	fs.StringVar(&opts.logFormat, "log-format", "", "gologger output format: json, console or pretty")
	fs.StringVar(&opts.sourceList, "sources", "", "Comma separated content paths to build")
	return opts
}

// config maps flags onto the runtime configuration. A single positional
// argument to build or diff is taken as the base path.
func (o *cliOptions) config(positional []string, sub string) (mdsite.Config, error) {
	cfg := mdsite.DefaultConfig()
	cfg.Site.ContentDir = o.contentDir
	cfg.Site.StaticDir = o.staticDir
	cfg.Site.TemplatePath = o.templatePath
	cfg.Site.OutputDir = o.outputDir
	cfg.Site.BasePath = o.basePath
	cfg.Site.BaseURL = o.baseURL

	if sub == "build" || sub == "diff" {
		switch len(positional) {
		case 0:
		case 1:
			cfg.Site.BasePath = positional[0]
		default:
			return cfg, fmt.Errorf("%s accepts at most one base path argument", sub)
		}
	}

	cfg.Markdown.Engine = o.engine
	cfg.Markdown.Pattern = o.pattern
	cfg.Markdown.FrontMatterSchema = o.schema

	cfg.Generator.Incremental = o.incremental
	cfg.Generator.IncludeDrafts = o.includeDrafts
	cfg.Generator.FailFast = o.failFast
	cfg.Generator.CleanBuild = !o.noClean && !o.incremental
	cfg.Generator.GenerateSitemap = o.sitemap
	cfg.Generator.GenerateRobots = o.robots
	cfg.Generator.Workers = o.workers

	cfg.Manifest.Driver = o.manifestDriver
	cfg.Manifest.DSN = o.manifestDSN
	cfg.Manifest.CacheTTL = o.manifestTTL

	cfg.Logging.Provider = o.logProvider
	cfg.Logging.Level = o.logLevel
	cfg.Logging.Format = o.logFormat

	o.sources = splitList(o.sourceList)
	return cfg, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
