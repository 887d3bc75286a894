package generator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-mdsite/internal/manifest"
	"github.com/goliatone/go-mdsite/internal/markdown"
	"github.com/goliatone/go-mdsite/pkg/testsupport"
)

const testTemplate = `<html><head><title>{{ Title }}</title><link href="/index.css" rel="stylesheet"></head><body>{{ Content }}</body></html>`

type siteFixture struct {
	root    string
	content string
	static  string
	output  string
	tmpl    string
}

func newSiteFixture(t *testing.T, pages map[string]string) siteFixture {
	t.Helper()
	root := t.TempDir()
	fx := siteFixture{
		root:    root,
		content: filepath.Join(root, "content"),
		static:  filepath.Join(root, "static"),
		output:  filepath.Join(root, "public"),
		tmpl:    filepath.Join(root, "template.html"),
	}
	testsupport.WriteTree(t, fx.content, pages)
	testsupport.WriteTree(t, fx.static, map[string]string{
		"index.css":       "body { margin: 0; }",
		"images/logo.png": "png",
	})
	testsupport.WriteTree(t, root, map[string]string{"template.html": testTemplate})
	return fx
}

func (fx siteFixture) config() Config {
	return Config{
		ContentDir:   fx.content,
		StaticDir:    fx.static,
		TemplatePath: fx.tmpl,
		OutputDir:    fx.output,
		BasePath:     "/",
		CopyAssets:   true,
		Workers:      2,
	}
}

func (fx siteFixture) service(t *testing.T, cfg Config, store manifest.Store) *service {
	t.Helper()
	docs, err := markdown.NewService(markdown.Config{BasePath: fx.content, Recursive: true}, nil)
	if err != nil {
		t.Fatalf("markdown.NewService: %v", err)
	}
	return NewService(cfg, Dependencies{Documents: docs, Manifest: store}).(*service)
}

func defaultPages() map[string]string {
	return map[string]string{
		"index.md":       "# Home\n\nHello **world**",
		"blog/post.md":   "# Post\n\nRead [more](/blog/other.html) ![logo](/images/logo.png)",
		"blog/notes.txt": "ignored",
		"blog/draft.md":  "---\ndraft: true\n---\n# Draft\n\nwip",
		"about/index.md": "---\ntitle: About us\nslug: about\n---\n# Heading\n\n> quoted",
	}
}

func TestBuildWritesPagesAndCopiesStatic(t *testing.T) {
	fx := newSiteFixture(t, defaultPages())
	svc := fx.service(t, fx.config(), nil)

	result, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if result.PagesBuilt != 3 {
		t.Fatalf("expected 3 pages built, got %d", result.PagesBuilt)
	}
	if result.PagesSkipped != 1 {
		t.Fatalf("expected draft to be skipped, got %d skipped", result.PagesSkipped)
	}
	if result.AssetsCopied != 2 {
		t.Fatalf("expected 2 assets copied, got %d", result.AssetsCopied)
	}
	if result.BuildID == "" {
		t.Fatal("expected build id")
	}

	index := testsupport.ReadFile(t, filepath.Join(fx.output, "index.html"))
	want := `<html><head><title>Home</title><link href="/index.css" rel="stylesheet"></head><body><div><h1>Home</h1><p>Hello <b>world</b></p></div></body></html>`
	if index != want {
		t.Fatalf("unexpected index page:\n%s", index)
	}

	about := testsupport.ReadFile(t, filepath.Join(fx.output, "about", "index.html"))
	if !strings.Contains(about, "<title>About us</title>") {
		t.Fatalf("expected front matter title, got %s", about)
	}
	if !strings.Contains(about, "<blockquote>quoted</blockquote>") {
		t.Fatalf("expected blockquote, got %s", about)
	}

	if _, err := os.Stat(filepath.Join(fx.output, "blog", "draft.html")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected draft page to be absent, stat err %v", err)
	}
	if got := testsupport.ReadFile(t, filepath.Join(fx.output, "images", "logo.png")); got != "png" {
		t.Fatalf("expected copied asset, got %q", got)
	}

	var slugs []string
	for _, page := range result.Rendered {
		slugs = append(slugs, page.Slug)
	}
	if strings.Join(slugs, ",") != "about,post,home" {
		t.Fatalf("unexpected slugs %v", slugs)
	}
}

func TestBuildRewritesRootRelativeURLsUnderBasePath(t *testing.T) {
	fx := newSiteFixture(t, defaultPages())
	cfg := fx.config()
	cfg.BasePath = "/docs"
	svc := fx.service(t, cfg, nil)

	if _, err := svc.Build(context.Background(), BuildOptions{}); err != nil {
		t.Fatalf("build: %v", err)
	}

	post := testsupport.ReadFile(t, filepath.Join(fx.output, "blog", "post.html"))
	for _, fragment := range []string{
		`href="/docs/index.css"`,
		`<a href="/docs/blog/other.html">more</a>`,
		`<img src="/docs/images/logo.png" alt="logo"></img>`,
	} {
		if !strings.Contains(post, fragment) {
			t.Fatalf("expected %s in %s", fragment, post)
		}
	}
}

func TestBuildIncrementalSkipsUnchangedSources(t *testing.T) {
	fx := newSiteFixture(t, defaultPages())
	cfg := fx.config()
	cfg.Incremental = true
	store := manifest.NewMemoryStore()
	svc := fx.service(t, cfg, store)
	ctx := context.Background()

	first, err := svc.Build(ctx, BuildOptions{})
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	if first.PagesBuilt != 3 {
		t.Fatalf("expected 3 pages on first build, got %d", first.PagesBuilt)
	}

	second, err := svc.Build(ctx, BuildOptions{})
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if second.PagesBuilt != 0 || second.PagesSkipped != 4 {
		t.Fatalf("expected everything skipped, got built=%d skipped=%d", second.PagesBuilt, second.PagesSkipped)
	}

	testsupport.WriteTree(t, fx.content, map[string]string{"index.md": "# Home\n\nChanged"})
	third, err := svc.Build(ctx, BuildOptions{})
	if err != nil {
		t.Fatalf("third build: %v", err)
	}
	if third.PagesBuilt != 1 || third.Rendered[0].Source != "index.md" {
		t.Fatalf("expected only index.md rebuilt, got %+v", third.Rendered)
	}

	forced, err := svc.Build(ctx, BuildOptions{Force: true})
	if err != nil {
		t.Fatalf("forced build: %v", err)
	}
	if forced.PagesBuilt != 3 {
		t.Fatalf("expected force to rebuild 3 pages, got %d", forced.PagesBuilt)
	}

	entries, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if entries["index.md"].BuildID != forced.BuildID {
		t.Fatalf("expected manifest to record latest build id")
	}
}

func TestBuildIncrementalRebuildsMissingOutput(t *testing.T) {
	fx := newSiteFixture(t, map[string]string{"index.md": "# Home"})
	cfg := fx.config()
	cfg.Incremental = true
	svc := fx.service(t, cfg, manifest.NewMemoryStore())
	ctx := context.Background()

	if _, err := svc.Build(ctx, BuildOptions{}); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if err := os.Remove(filepath.Join(fx.output, "index.html")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	result, err := svc.Build(ctx, BuildOptions{})
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if result.PagesBuilt != 1 {
		t.Fatalf("expected missing output to be rebuilt, got %d", result.PagesBuilt)
	}
}

func TestBuildPrunesManifestEntriesForRemovedSources(t *testing.T) {
	fx := newSiteFixture(t, map[string]string{"index.md": "# Home", "old.md": "# Old"})
	cfg := fx.config()
	cfg.Incremental = true
	store := manifest.NewMemoryStore()
	svc := fx.service(t, cfg, store)
	ctx := context.Background()

	if _, err := svc.Build(ctx, BuildOptions{}); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if err := os.Remove(filepath.Join(fx.content, "old.md")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := svc.Build(ctx, BuildOptions{}); err != nil {
		t.Fatalf("second build: %v", err)
	}
	entries, _ := store.Load(ctx)
	if _, ok := entries["old.md"]; ok {
		t.Fatal("expected stale manifest entry to be pruned")
	}
	if _, ok := entries["index.md"]; !ok {
		t.Fatal("expected index.md entry to remain")
	}
}

func TestBuildIncludeDrafts(t *testing.T) {
	fx := newSiteFixture(t, defaultPages())
	cfg := fx.config()
	cfg.IncludeDrafts = true
	svc := fx.service(t, cfg, nil)

	result, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if result.PagesBuilt != 4 || result.PagesSkipped != 0 {
		t.Fatalf("expected drafts rendered, got built=%d skipped=%d", result.PagesBuilt, result.PagesSkipped)
	}
}

func TestBuildCollectsErrorsAndContinues(t *testing.T) {
	fx := newSiteFixture(t, map[string]string{
		"index.md":    "# Home",
		"untitled.md": "no heading here",
	})
	svc := fx.service(t, fx.config(), nil)

	result, err := svc.Build(context.Background(), BuildOptions{})
	if err == nil {
		t.Fatal("expected build error")
	}
	if !errors.Is(err, markdown.ErrTitleNotFound) {
		t.Fatalf("expected ErrTitleNotFound, got %v", err)
	}
	if result == nil || result.PagesBuilt != 1 || len(result.Errors) != 1 {
		t.Fatalf("expected one page and one error, got %+v", result)
	}
	var failed RenderDiagnostic
	for _, diagnostic := range result.Diagnostics {
		if diagnostic.Err != nil {
			failed = diagnostic
		}
	}
	if failed.Source != "untitled.md" {
		t.Fatalf("expected diagnostic for untitled.md, got %+v", failed)
	}
}

func TestBuildFailFastStopsAfterFirstError(t *testing.T) {
	pages := map[string]string{"a.md": "no title"}
	for _, name := range []string{"b.md", "c.md", "d.md", "e.md"} {
		pages[name] = "# " + name
	}
	fx := newSiteFixture(t, pages)
	cfg := fx.config()
	cfg.FailFast = true
	cfg.Workers = 1
	svc := fx.service(t, cfg, nil)

	result, err := svc.Build(context.Background(), BuildOptions{})
	if err == nil {
		t.Fatal("expected build error")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected only the first error, got %v", result.Errors)
	}
	if result.PagesBuilt == len(pages)-1 {
		t.Fatal("expected fail fast to stop before building every page")
	}
}

func TestBuildDryRunWritesNothing(t *testing.T) {
	fx := newSiteFixture(t, defaultPages())
	cfg := fx.config()
	cfg.GenerateSitemap = true
	cfg.BaseURL = "https://example.com"
	store := manifest.NewMemoryStore()
	svc := fx.service(t, cfg, store)

	result, err := svc.Build(context.Background(), BuildOptions{DryRun: true})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !result.DryRun || result.PagesBuilt != 3 {
		t.Fatalf("expected dry run with 3 pages, got %+v", result)
	}
	if _, err := os.Stat(fx.output); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no output directory, stat err %v", err)
	}
	entries, _ := store.Load(context.Background())
	if len(entries) != 0 {
		t.Fatalf("expected manifest untouched, got %d entries", len(entries))
	}
}

func TestBuildSelectedSources(t *testing.T) {
	fx := newSiteFixture(t, defaultPages())
	svc := fx.service(t, fx.config(), nil)

	result, err := svc.Build(context.Background(), BuildOptions{Sources: []string{"./blog/post.md", "blog/post.md"}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if result.PagesBuilt != 1 || result.Rendered[0].Output != "blog/post.html" {
		t.Fatalf("expected only blog/post.html, got %+v", result.Rendered)
	}
}

func TestBuildSitemapAndRobots(t *testing.T) {
	fx := newSiteFixture(t, defaultPages())
	cfg := fx.config()
	cfg.BaseURL = "https://example.com/"
	cfg.GenerateSitemap = true
	cfg.GenerateRobots = true
	svc := fx.service(t, cfg, nil)

	if _, err := svc.Build(context.Background(), BuildOptions{}); err != nil {
		t.Fatalf("build: %v", err)
	}

	sitemap := testsupport.ReadFile(t, filepath.Join(fx.output, "sitemap.xml"))
	for _, loc := range []string{
		"<loc>https://example.com/index.html</loc>",
		"<loc>https://example.com/blog/post.html</loc>",
		"<loc>https://example.com/about/index.html</loc>",
	} {
		if !strings.Contains(sitemap, loc) {
			t.Fatalf("expected %s in sitemap:\n%s", loc, sitemap)
		}
	}
	if strings.Contains(sitemap, "draft") {
		t.Fatalf("expected drafts excluded from sitemap:\n%s", sitemap)
	}

	robots := testsupport.ReadFile(t, filepath.Join(fx.output, "robots.txt"))
	if !strings.Contains(robots, "Sitemap: https://example.com/sitemap.xml") {
		t.Fatalf("unexpected robots.txt:\n%s", robots)
	}
}

func TestBuildCleanBuildRemovesStaleOutput(t *testing.T) {
	fx := newSiteFixture(t, map[string]string{"index.md": "# Home"})
	testsupport.WriteTree(t, fx.output, map[string]string{"stale.html": "old"})
	cfg := fx.config()
	cfg.CleanBuild = true
	svc := fx.service(t, cfg, nil)

	if _, err := svc.Build(context.Background(), BuildOptions{}); err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := os.Stat(filepath.Join(fx.output, "stale.html")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected stale output removed, stat err %v", err)
	}
}

func TestRenderDocumentUsesFrontMatterTemplate(t *testing.T) {
	fx := newSiteFixture(t, map[string]string{
		"index.md": "---\ntemplate: plain.html\n---\n# Home\n\ntext",
	})
	testsupport.WriteTree(t, fx.root, map[string]string{"plain.html": "<main>{{ Content }}</main>"})
	svc := fx.service(t, fx.config(), nil)

	page, err := svc.RenderDocument(context.Background(), "index.md")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if page.HTML != "<main><div><h1>Home</h1><p>text</p></div></main>" {
		t.Fatalf("unexpected html %q", page.HTML)
	}
	if page.Template != filepath.Join(fx.root, "plain.html") {
		t.Fatalf("unexpected template %q", page.Template)
	}
	if _, err := os.Stat(fx.output); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("expected RenderDocument not to write output")
	}
}

func TestCleanRemovesOutputAndResetsManifest(t *testing.T) {
	fx := newSiteFixture(t, map[string]string{"index.md": "# Home"})
	cfg := fx.config()
	cfg.Incremental = true
	store := manifest.NewMemoryStore()
	svc := fx.service(t, cfg, store)
	ctx := context.Background()

	if _, err := svc.Build(ctx, BuildOptions{}); err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := svc.Clean(ctx); err != nil {
		t.Fatalf("clean: %v", err)
	}
	if _, err := os.Stat(fx.output); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected output removed, stat err %v", err)
	}
	entries, _ := store.Load(ctx)
	if len(entries) != 0 {
		t.Fatalf("expected manifest reset, got %d entries", len(entries))
	}
}

func TestCleanRequiresOutputDir(t *testing.T) {
	svc := NewService(Config{}, Dependencies{})
	if err := svc.Clean(context.Background()); !errors.Is(err, ErrOutputDirRequired) {
		t.Fatalf("expected ErrOutputDirRequired, got %v", err)
	}
}

func TestBuildRequiresDocuments(t *testing.T) {
	svc := NewService(Config{OutputDir: t.TempDir()}, Dependencies{})
	if _, err := svc.Build(context.Background(), BuildOptions{}); !errors.Is(err, errDocumentsRequired) {
		t.Fatalf("expected errDocumentsRequired, got %v", err)
	}
}

func TestBuildHonoursCancelledContext(t *testing.T) {
	fx := newSiteFixture(t, defaultPages())
	svc := fx.service(t, fx.config(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Build(ctx, BuildOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDisabledService(t *testing.T) {
	svc := NewDisabledService()
	if _, err := svc.Build(context.Background(), BuildOptions{}); !errors.Is(err, ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
	if err := svc.Clean(context.Background()); !errors.Is(err, ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
}

func TestEffectiveWorkerCount(t *testing.T) {
	svc := &service{cfg: Config{Workers: 8}}
	if got := svc.effectiveWorkerCount(3); got != 3 {
		t.Fatalf("expected workers capped at sources, got %d", got)
	}
	svc.cfg.Workers = 0
	if got := svc.effectiveWorkerCount(0); got < 1 {
		t.Fatalf("expected at least one worker, got %d", got)
	}
}

func TestBuildIncrementalRebuildsWhenTemplateOrBasePathChanges(t *testing.T) {
	fx := newSiteFixture(t, defaultPages())
	store := manifest.NewMemoryStore()
	ctx := context.Background()
	cfg := fx.config()
	cfg.Incremental = true

	if _, err := fx.service(t, cfg, store).Build(ctx, BuildOptions{}); err != nil {
		t.Fatalf("initial build: %v", err)
	}
	unchanged, err := fx.service(t, cfg, store).Build(ctx, BuildOptions{})
	if err != nil {
		t.Fatalf("unchanged build: %v", err)
	}
	if unchanged.PagesBuilt != 0 {
		t.Fatalf("expected no rebuild with the same template, got %d", unchanged.PagesBuilt)
	}

	cfg.BasePath = "/docs/"
	rebased, err := fx.service(t, cfg, store).Build(ctx, BuildOptions{})
	if err != nil {
		t.Fatalf("base path build: %v", err)
	}
	if rebased.PagesBuilt != 3 {
		t.Fatalf("expected base path change to rebuild 3 pages, got built=%d skipped=%d", rebased.PagesBuilt, rebased.PagesSkipped)
	}
	post := testsupport.ReadFile(t, filepath.Join(fx.output, "blog", "post.html"))
	if !strings.Contains(post, `<a href="/docs/blog/other.html">more</a>`) {
		t.Fatalf("expected links under the new base path, got %s", post)
	}

	testsupport.WriteTree(t, fx.root, map[string]string{
		"template.html": `<html><body><main class="v2">{{ Content }}</main></body></html>`,
	})
	retemplated, err := fx.service(t, cfg, store).Build(ctx, BuildOptions{})
	if err != nil {
		t.Fatalf("template build: %v", err)
	}
	if retemplated.PagesBuilt != 3 {
		t.Fatalf("expected template change to rebuild 3 pages, got built=%d skipped=%d", retemplated.PagesBuilt, retemplated.PagesSkipped)
	}
	if home := testsupport.ReadFile(t, filepath.Join(fx.output, "index.html")); !strings.Contains(home, `<main class="v2">`) {
		t.Fatalf("expected the new template in index.html, got %s", home)
	}

	entries, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if entries["index.md"].RenderKey != retemplated.Rendered[0].RenderKey || entries["index.md"].RenderKey == "" {
		t.Fatalf("expected manifest to record the latest render key, got %q", entries["index.md"].RenderKey)
	}
}

func TestBuildSelectedSourcesKeepsFullSitemap(t *testing.T) {
	fx := newSiteFixture(t, defaultPages())
	cfg := fx.config()
	cfg.BaseURL = "https://example.com"
	cfg.GenerateSitemap = true
	svc := fx.service(t, cfg, manifest.NewMemoryStore())
	ctx := context.Background()

	if _, err := svc.Build(ctx, BuildOptions{}); err != nil {
		t.Fatalf("full build: %v", err)
	}
	if _, err := svc.Build(ctx, BuildOptions{Sources: []string{"blog/post.md"}}); err != nil {
		t.Fatalf("partial build: %v", err)
	}

	sitemap := testsupport.ReadFile(t, filepath.Join(fx.output, "sitemap.xml"))
	for _, loc := range []string{
		"<loc>https://example.com/index.html</loc>",
		"<loc>https://example.com/blog/post.html</loc>",
		"<loc>https://example.com/about/index.html</loc>",
	} {
		if !strings.Contains(sitemap, loc) {
			t.Fatalf("expected %s to survive a partial build:\n%s", loc, sitemap)
		}
	}
}

func TestBuildSelectedSourcesWithoutManifestKeepsSitemap(t *testing.T) {
	fx := newSiteFixture(t, defaultPages())
	cfg := fx.config()
	cfg.BaseURL = "https://example.com"
	cfg.GenerateSitemap = true
	svc := fx.service(t, cfg, nil)
	ctx := context.Background()

	if _, err := svc.Build(ctx, BuildOptions{}); err != nil {
		t.Fatalf("full build: %v", err)
	}
	before := testsupport.ReadFile(t, filepath.Join(fx.output, "sitemap.xml"))

	if _, err := svc.Build(ctx, BuildOptions{Sources: []string{"index.md"}}); err != nil {
		t.Fatalf("partial build: %v", err)
	}
	if after := testsupport.ReadFile(t, filepath.Join(fx.output, "sitemap.xml")); after != before {
		t.Fatalf("expected sitemap to be left alone, got:\n%s", after)
	}
}
