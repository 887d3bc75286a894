// Package mdsite converts a tree of Markdown files into a static HTML site.
package mdsite

import (
	"context"

	sitecmd "github.com/goliatone/go-mdsite/internal/commands/site"
	"github.com/goliatone/go-mdsite/internal/di"
	"github.com/goliatone/go-mdsite/internal/generator"
	"github.com/goliatone/go-mdsite/internal/markdown"
	"github.com/goliatone/go-mdsite/pkg/interfaces"
)

// GeneratorService exports the static site generator contract.
type GeneratorService = generator.Service

// BuildOptions narrows the scope of a build.
type BuildOptions = generator.BuildOptions

// BuildResult reports what a build produced.
type BuildResult = generator.BuildResult

// RenderedPage is one generated page.
type RenderedPage = generator.RenderedPage

// SiteCommands groups the build, diff, clean and render command handlers.
type SiteCommands = sitecmd.HandlerSet

// Option customises container wiring.
type Option = di.Option

var (
	WithLoggerProvider       = di.WithLoggerProvider
	WithMarkdownParser       = di.WithMarkdownParser
	WithFrontMatterValidator = di.WithFrontMatterValidator
	WithTemplate             = di.WithTemplate
	WithBunDB                = di.WithBunDB
	WithManifestStore        = di.WithManifestStore
	WithCommandRegistry      = di.WithCommandRegistry
)

// ErrTitleNotFound is returned by ExtractTitle for documents without a
// "# " heading line.
var ErrTitleNotFound = markdown.ErrTitleNotFound

// Module represents the top level runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module from cfg.
func New(ctx context.Context, cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

func (m *Module) Generator() GeneratorService {
	return m.container.GeneratorService()
}

func (m *Module) Markdown() interfaces.MarkdownService {
	return m.container.MarkdownService()
}

func (m *Module) Commands() *SiteCommands {
	return m.container.SiteCommands()
}

// Build runs the generator with opts.
func (m *Module) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	return m.container.GeneratorService().Build(ctx, opts)
}

// Close releases resources opened by New.
func (m *Module) Close() error {
	return m.container.Close()
}

// MarkdownToHTML converts a document with the builtin grammar and returns the
// rendered root div.
func MarkdownToHTML(document string) (string, error) {
	return markdown.NewConverter().Convert(document)
}

// ExtractTitle returns the text of the first "# " line of document.
func ExtractTitle(document string) (string, error) {
	return markdown.ExtractTitle(document)
}
