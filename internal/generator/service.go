// Package generator turns a tree of Markdown sources into a static HTML site.
package generator

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/goliatone/go-mdsite/internal/identity"
	"github.com/goliatone/go-mdsite/internal/logging"
	"github.com/goliatone/go-mdsite/internal/manifest"
	"github.com/goliatone/go-mdsite/pkg/interfaces"
)

var (
	// ErrServiceDisabled indicates the generator feature is disabled.
	ErrServiceDisabled = errors.New("generator: service disabled")
	// ErrOutputDirRequired guards destructive operations against an empty
	// output directory.
	ErrOutputDirRequired = errors.New("generator: output directory is required")
	errDocumentsRequired = errors.New("generator: document source is required")
)

// Service describes the static site generator contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	RenderDocument(ctx context.Context, source string) (*RenderedPage, error)
	Clean(ctx context.Context) error
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	ContentDir   string
	StaticDir    string
	TemplatePath string
	OutputDir    string
	// BasePath prefixes root relative href and src attributes, e.g. "/docs/".
	BasePath string
	// BaseURL is the absolute site URL used by sitemap.xml and robots.txt.
	BaseURL         string
	CleanBuild      bool
	CopyAssets      bool
	Incremental     bool
	IncludeDrafts   bool
	FailFast        bool
	Workers         int
	GenerateSitemap bool
	GenerateRobots  bool
}

// BuildOptions narrows the scope of a generator run.
type BuildOptions struct {
	// Sources limits the build to these content relative paths. Empty means
	// every discovered document.
	Sources []string
	DryRun  bool
	// Force renders pages even when the manifest says they are unchanged.
	Force bool
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	BuildID      string
	PagesBuilt   int
	PagesSkipped int
	AssetsCopied int
	Duration     time.Duration
	Rendered     []RenderedPage
	Diagnostics  []RenderDiagnostic
	Errors       []error
	DryRun       bool
}

// DocumentSource reads and renders Markdown documents. markdown.Service
// satisfies it.
type DocumentSource interface {
	Discover(ctx context.Context, dir string, opts interfaces.LoadOptions) ([]string, error)
	Read(ctx context.Context, path string) (*interfaces.Document, error)
	RenderDocument(ctx context.Context, doc *interfaces.Document, opts interfaces.ParseOptions) ([]byte, error)
}

// Dependencies lists the services required by the generator.
type Dependencies struct {
	Documents DocumentSource
	// Manifest enables incremental builds. Optional.
	Manifest manifest.Store
	// Template overrides Config.TemplatePath. Optional.
	Template *Template
	Logger   interfaces.Logger
}

// NewService wires a generator implementation with the provided configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &service{
		cfg:       cfg,
		deps:      deps,
		logger:    logger,
		now:       time.Now,
		templates: map[string]*Template{},
	}
}

// NewDisabledService returns a Service that fails all operations with ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg    Config
	deps   Dependencies
	logger interfaces.Logger
	now    func() time.Time

	mu        sync.Mutex
	templates map[string]*Template
}

type disabledService struct{}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.deps.Documents == nil {
		return nil, errDocumentsRequired
	}
	if strings.TrimSpace(s.cfg.OutputDir) == "" {
		return nil, ErrOutputDirRequired
	}
	if _, err := s.templateFor(""); err != nil {
		return nil, err
	}

	start := s.now()
	buildID := identity.BuildUUID().String()
	ctx = logging.ContextWithBuild(ctx, buildID)
	logger := logging.WithDocumentContext(s.logger, "", buildID, "build")
	result := &BuildResult{BuildID: buildID, DryRun: opts.DryRun}
	writer := newArtifactWriter(s.cfg.OutputDir, opts.DryRun)

	if s.cfg.CleanBuild && !opts.DryRun {
		if err := writer.RemoveAll(ctx); err != nil {
			return nil, fmt.Errorf("generator: clean %s: %w", s.cfg.OutputDir, err)
		}
		logger.Debug("generator.output.cleaned", "dir", s.cfg.OutputDir)
	}

	if s.cfg.CopyAssets && strings.TrimSpace(s.cfg.StaticDir) != "" && !opts.DryRun {
		copied, err := copyStatic(ctx, writer, s.cfg.StaticDir, logger)
		result.AssetsCopied = copied
		if err != nil {
			result.Errors = append(result.Errors, err)
			if s.cfg.FailFast {
				result.Duration = s.now().Sub(start)
				return result, err
			}
		}
	}

	previous, err := s.loadManifest(ctx)
	if err != nil {
		logger.Warn("generator.manifest.load_failed", "error", err)
		result.Errors = append(result.Errors, err)
		previous = map[string]manifest.Entry{}
	}

	full := len(opts.Sources) == 0
	sources := normalizeSources(opts.Sources)
	if full {
		sources, err = s.deps.Documents.Discover(ctx, ".", interfaces.LoadOptions{})
		if err != nil {
			return nil, fmt.Errorf("generator: discover sources: %w", err)
		}
	}

	var (
		mu      sync.Mutex
		written []RenderedPage
		listed  []RenderedPage
	)
	buildCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	failed := false

	collect := func(outcome renderOutcome) {
		mu.Lock()
		defer mu.Unlock()
		if failed && errors.Is(outcome.err, context.Canceled) {
			return
		}
		result.Diagnostics = append(result.Diagnostics, outcome.diagnostic)
		pageLogger := logging.WithDocumentContext(logger, outcome.diagnostic.Source, buildID, "render")
		switch {
		case outcome.err != nil:
			result.Errors = append(result.Errors, outcome.err)
			pageLogger.Error("generator.page.failed", "error", outcome.err)
			if s.cfg.FailFast {
				failed = true
				cancel()
			}
		case outcome.skipped:
			result.PagesSkipped++
			if outcome.page != nil {
				listed = append(listed, *outcome.page)
			}
			pageLogger.Debug("generator.page.skipped", "reason", outcome.diagnostic.Reason)
		default:
			result.PagesBuilt++
			result.Rendered = append(result.Rendered, *outcome.page)
			written = append(written, *outcome.page)
			listed = append(listed, *outcome.page)
			pageLogger.Info("generator.page.rendered", "output", outcome.page.Output, "duration", outcome.diagnostic.Duration)
		}
	}

	workers := s.effectiveWorkerCount(len(sources))
	if err := s.renderConcurrently(buildCtx, sources, workers, previous, writer, opts, collect); err != nil && !failed {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sortResult(result)

	if !opts.DryRun && !failed {
		if err := s.persistManifest(ctx, buildID, written, previous, sources, full); err != nil {
			logger.Warn("generator.manifest.save_failed", "error", err)
			result.Errors = append(result.Errors, err)
		}
		if err := s.writeSiteIndex(ctx, writer, s.siteIndex(listed, previous, sources, full)); err != nil {
			result.Errors = append(result.Errors, err)
		}
	}

	result.Duration = s.now().Sub(start)
	logger.Info("generator.build.completed",
		"pages_built", result.PagesBuilt,
		"pages_skipped", result.PagesSkipped,
		"assets_copied", result.AssetsCopied,
		"errors", len(result.Errors),
		"dry_run", result.DryRun,
		"duration", result.Duration,
	)

	if len(result.Errors) > 0 {
		return result, errors.Join(result.Errors...)
	}
	return result, nil
}

func (s *service) renderConcurrently(
	ctx context.Context,
	sources []string,
	workers int,
	previous map[string]manifest.Entry,
	writer artifactWriter,
	opts BuildOptions,
	collect func(renderOutcome),
) error {
	if len(sources) == 0 {
		return nil
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for source := range jobs {
				select {
				case <-ctx.Done():
					collect(renderOutcome{
						diagnostic: RenderDiagnostic{Source: source, Err: ctx.Err()},
						err:        ctx.Err(),
					})
				default:
					collect(s.renderSource(ctx, source, previous, writer, opts))
				}
			}
		}()
	}

	for _, source := range sources {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- source:
		}
	}
	close(jobs)
	wg.Wait()
	return nil
}

func (s *service) renderSource(
	ctx context.Context,
	source string,
	previous map[string]manifest.Entry,
	writer artifactWriter,
	opts BuildOptions,
) renderOutcome {
	start := s.now()
	output := OutputPath(source)
	diagnostic := RenderDiagnostic{Source: source, Output: output}
	fail := func(err error) renderOutcome {
		diagnostic.Err = err
		diagnostic.Duration = s.now().Sub(start)
		return renderOutcome{diagnostic: diagnostic, err: err}
	}

	doc, err := s.deps.Documents.Read(ctx, source)
	if err != nil {
		return fail(err)
	}
	if doc.FrontMatter.Draft && !s.cfg.IncludeDrafts {
		diagnostic.Skipped = true
		diagnostic.Reason = skipDraft
		return renderOutcome{diagnostic: diagnostic, skipped: true}
	}

	tmpl, err := s.templateFor(doc.FrontMatter.Template)
	if err != nil {
		return fail(fmt.Errorf("%s: %w", source, err))
	}

	checksum := hex.EncodeToString(doc.Checksum)
	renderKey := tmpl.Fingerprint(s.cfg.BasePath)
	if s.cfg.Incremental && !opts.Force &&
		manifest.Unchanged(previous, source, checksum, output, renderKey) && writer.Exists(output) {
		diagnostic.Skipped = true
		diagnostic.Reason = skipUnchanged
		page := s.describePage(doc, source, output, checksum, previous[source].PageID)
		page.Template = tmpl.Name()
		page.RenderKey = renderKey
		return renderOutcome{page: page, diagnostic: diagnostic, skipped: true}
	}

	page, err := s.renderPage(ctx, doc, tmpl, source, output, checksum)
	if err != nil {
		return fail(err)
	}
	if err := s.writePage(ctx, writer, page); err != nil {
		return fail(err)
	}
	page.Duration = s.now().Sub(start)
	diagnostic.Duration = page.Duration
	return renderOutcome{page: page, diagnostic: diagnostic}
}

func (s *service) renderPage(ctx context.Context, doc *interfaces.Document, tmpl *Template, source, output, checksum string) (*RenderedPage, error) {
	body, err := s.deps.Documents.RenderDocument(ctx, doc, interfaces.ParseOptions{})
	if err != nil {
		return nil, err
	}

	page := s.describePage(doc, source, output, checksum, identity.PageUUID(source))
	page.Template = tmpl.Name()
	page.RenderKey = tmpl.Fingerprint(s.cfg.BasePath)
	page.HTML = tmpl.Apply(doc.Title, string(body), s.cfg.BasePath)
	return page, nil
}

func (s *service) describePage(doc *interfaces.Document, source, output, checksum string, id uuid.UUID) *RenderedPage {
	return &RenderedPage{
		PageID:   id,
		Source:   source,
		Output:   output,
		Route:    pageRoute(s.cfg.BasePath, output),
		Title:    doc.Title,
		Slug:     pageSlug(doc, source),
		Checksum: checksum,
		Modified: doc.LastModified,
	}
}

func (s *service) writePage(ctx context.Context, writer artifactWriter, page *RenderedPage) error {
	if dir := path.Dir(page.Output); dir != "." {
		if err := writer.EnsureDir(ctx, dir); err != nil {
			return fmt.Errorf("generator: ensure dir %s: %w", dir, err)
		}
	}
	err := writer.WriteFile(ctx, writeFileRequest{
		Path:     page.Output,
		Content:  strings.NewReader(page.HTML),
		Category: categoryPage,
		Checksum: page.Checksum,
	})
	if err != nil {
		return fmt.Errorf("generator: write %s: %w", page.Output, err)
	}
	return nil
}

// siteIndex lists the sitemap entries for a build. Partial builds only see
// the selected sources, so the rest of the site comes from the manifest of
// earlier builds. A nil result means the site is not fully known and the
// existing sitemap must be kept.
func (s *service) siteIndex(listed []RenderedPage, previous map[string]manifest.Entry, sources []string, full bool) []sitemapEntry {
	entries := make([]sitemapEntry, 0, len(listed)+len(previous))
	for _, page := range listed {
		entries = append(entries, sitemapEntry{Location: page.Route, LastMod: page.Modified})
	}
	if full {
		return entries
	}
	if len(previous) == 0 {
		return nil
	}
	selected := make(map[string]struct{}, len(sources))
	for _, source := range sources {
		selected[source] = struct{}{}
	}
	for source, entry := range previous {
		if _, ok := selected[source]; ok {
			continue
		}
		entries = append(entries, sitemapEntry{
			Location: pageRoute(s.cfg.BasePath, entry.Output),
			LastMod:  entry.RenderedAt,
		})
	}
	return entries
}

func (s *service) writeSiteIndex(ctx context.Context, writer artifactWriter, entries []sitemapEntry) error {
	baseURL := strings.TrimSpace(s.cfg.BaseURL)
	if baseURL == "" {
		if s.cfg.GenerateSitemap || s.cfg.GenerateRobots {
			s.logger.Warn("generator.sitemap.skipped", "reason", "base url not configured")
		}
		return nil
	}

	switch {
	case s.cfg.GenerateSitemap && entries == nil:
		s.logger.Debug("generator.sitemap.skipped", "reason", "partial build without manifest history")
	case s.cfg.GenerateSitemap:
		err := writer.WriteFile(ctx, writeFileRequest{
			Path:     "sitemap.xml",
			Content:  strings.NewReader(buildSitemap(baseURL, entries)),
			Category: categorySitemap,
		})
		if err != nil {
			return fmt.Errorf("generator: write sitemap: %w", err)
		}
	}
	if s.cfg.GenerateRobots {
		err := writer.WriteFile(ctx, writeFileRequest{
			Path:     "robots.txt",
			Content:  strings.NewReader(buildRobots(baseURL, s.cfg.GenerateSitemap)),
			Category: categoryRobots,
		})
		if err != nil {
			return fmt.Errorf("generator: write robots: %w", err)
		}
	}
	return nil
}

// RenderDocument renders one source into a full page without writing it.
func (s *service) RenderDocument(ctx context.Context, source string) (*RenderedPage, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.deps.Documents == nil {
		return nil, errDocumentsRequired
	}
	source = strings.TrimSpace(source)
	doc, err := s.deps.Documents.Read(ctx, source)
	if err != nil {
		return nil, err
	}
	tmpl, err := s.templateFor(doc.FrontMatter.Template)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return s.renderPage(ctx, doc, tmpl, source, OutputPath(source), hex.EncodeToString(doc.Checksum))
}

// Clean removes the output directory and forgets the manifest.
func (s *service) Clean(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	dir := strings.TrimSpace(s.cfg.OutputDir)
	if dir == "" || filepath.Clean(dir) == string(filepath.Separator) {
		return ErrOutputDirRequired
	}
	if err := newArtifactWriter(dir, false).RemoveAll(ctx); err != nil {
		return fmt.Errorf("generator: clean %s: %w", dir, err)
	}
	if s.deps.Manifest != nil {
		if err := s.deps.Manifest.Reset(ctx); err != nil {
			return err
		}
	}
	s.logger.Info("generator.output.cleaned", "dir", dir)
	return nil
}

// templateFor resolves a named template relative to the configured template
// file. An empty name selects the site template.
func (s *service) templateFor(name string) (*Template, error) {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()
	if tmpl, ok := s.templates[name]; ok {
		return tmpl, nil
	}

	var (
		tmpl *Template
		err  error
	)
	switch {
	case name == "" && s.deps.Template != nil:
		tmpl = s.deps.Template
	case name == "" && strings.TrimSpace(s.cfg.TemplatePath) == "":
		tmpl, err = ParseTemplate("default", DefaultTemplate)
	case name == "":
		tmpl, err = LoadTemplate(s.cfg.TemplatePath)
	default:
		dir := "."
		if strings.TrimSpace(s.cfg.TemplatePath) != "" {
			dir = filepath.Dir(s.cfg.TemplatePath)
		}
		tmpl, err = LoadTemplate(filepath.Join(dir, filepath.FromSlash(name)))
	}
	if err != nil {
		return nil, err
	}
	s.templates[name] = tmpl
	return tmpl, nil
}

func (s *service) effectiveWorkerCount(sources int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if sources > 0 && workers > sources {
		workers = sources
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// pageSlug prefers the front matter slug and falls back to the normalized
// title, then the file name.
func pageSlug(doc *interfaces.Document, source string) string {
	if value := strings.TrimSpace(doc.FrontMatter.Slug); value != "" {
		return value
	}
	if normalized, err := slug.Normalize(doc.Title); err == nil && normalized != "" {
		return normalized
	}
	return strings.TrimSuffix(path.Base(source), path.Ext(source))
}

func normalizeSources(sources []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(sources))
	for _, source := range sources {
		source = strings.TrimPrefix(path.Clean(filepath.ToSlash(strings.TrimSpace(source))), "./")
		if source == "" || source == "." {
			continue
		}
		if _, ok := seen[source]; ok {
			continue
		}
		seen[source] = struct{}{}
		out = append(out, source)
	}
	sort.Strings(out)
	return out
}

func sortResult(result *BuildResult) {
	sort.Slice(result.Rendered, func(i, j int) bool {
		return result.Rendered[i].Source < result.Rendered[j].Source
	})
	sort.Slice(result.Diagnostics, func(i, j int) bool {
		return result.Diagnostics[i].Source < result.Diagnostics[j].Source
	})
}

func (disabledService) Build(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) RenderDocument(context.Context, string) (*RenderedPage, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Clean(context.Context) error {
	return ErrServiceDisabled
}
