package markdown

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-mdsite/internal/logging"
	"github.com/goliatone/go-mdsite/pkg/interfaces"
)

// FrontMatterValidator checks the raw front matter of a document.
type FrontMatterValidator interface {
	ValidateFrontMatter(raw map[string]any) error
}

// Config controls discovery and rendering.
type Config struct {
	// BasePath is the content root. Ignored when FS is set.
	BasePath  string
	FS        fs.FS
	Pattern   string
	Recursive bool
	Engine    string
	Parser    interfaces.ParseOptions
	Validator FrontMatterValidator
	Logger    interfaces.Logger
}

// Service implements interfaces.MarkdownService over a content tree.
type Service struct {
	cfg       Config
	parser    interfaces.MarkdownParser
	loader    *Loader
	validator FrontMatterValidator
	logger    interfaces.Logger
}

var _ interfaces.MarkdownService = (*Service)(nil)

// NewService builds a service. A nil parser selects the engine named in
// cfg.Engine.
func NewService(cfg Config, parser interfaces.MarkdownParser) (*Service, error) {
	filesystem := cfg.FS
	if filesystem == nil {
		var err error
		filesystem, err = prepareFilesystem(cfg.BasePath)
		if err != nil {
			return nil, err
		}
	}

	if parser == nil {
		var err error
		parser, err = NewParser(cfg.Engine, cfg.Parser)
		if err != nil {
			return nil, err
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}

	return &Service{
		cfg:    cfg,
		parser: parser,
		loader: NewLoader(filesystem, LoaderConfig{
			BasePath:  cfg.BasePath,
			Pattern:   cfg.Pattern,
			Recursive: cfg.Recursive,
		}),
		validator: cfg.Validator,
		logger:    logger,
	}, nil
}

// Load reads, validates and renders one document. The document title comes
// from front matter or the first "# " line; a missing title is an error.
func (s *Service) Load(ctx context.Context, path string, opts interfaces.LoadOptions) (*interfaces.Document, error) {
	doc, err := s.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := s.render(ctx, doc, opts.Parser); err != nil {
		return nil, err
	}
	return doc, nil
}

// Read loads one document, validates its front matter and resolves its
// title without rendering the body.
func (s *Service) Read(ctx context.Context, path string) (*interfaces.Document, error) {
	result, err := s.loader.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := s.inspect(ctx, result.Document); err != nil {
		return nil, err
	}
	return result.Document, nil
}

// Discover lists the documents under dir that Load would accept.
func (s *Service) Discover(ctx context.Context, dir string, opts interfaces.LoadOptions) ([]string, error) {
	return s.loader.Discover(ctx, dir, LoadParams{Pattern: opts.Pattern, Recursive: opts.Recursive})
}

// LoadDirectory loads every matching document under dir, sorted by path.
// The first failing document aborts the call.
func (s *Service) LoadDirectory(ctx context.Context, dir string, opts interfaces.LoadOptions) ([]*interfaces.Document, error) {
	results, err := s.loader.LoadDirectory(ctx, dir, LoadParams{
		Pattern:   opts.Pattern,
		Recursive: opts.Recursive,
	})
	if err != nil {
		return nil, err
	}

	docs := make([]*interfaces.Document, 0, len(results))
	for _, result := range results {
		if err := s.inspect(ctx, result.Document); err != nil {
			return nil, err
		}
		if err := s.render(ctx, result.Document, opts.Parser); err != nil {
			return nil, err
		}
		docs = append(docs, result.Document)
	}
	return docs, nil
}

// Render converts Markdown into an HTML fragment.
func (s *Service) Render(ctx context.Context, markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.parser.ParseWithOptions(markdown, mergeParseOptions(s.cfg.Parser, opts))
}

// RenderDocument renders doc.Body and stores the result in doc.BodyHTML.
func (s *Service) RenderDocument(ctx context.Context, doc *interfaces.Document, opts interfaces.ParseOptions) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("markdown service: document is nil")
	}
	html, err := s.Render(ctx, doc.Body, opts)
	if err != nil {
		return nil, fmt.Errorf("markdown render document %s: %w", doc.FilePath, err)
	}
	doc.BodyHTML = html
	return html, nil
}

func (s *Service) inspect(ctx context.Context, doc *interfaces.Document) error {
	if s.validator != nil {
		if err := s.validator.ValidateFrontMatter(doc.FrontMatter.Raw); err != nil {
			logging.WithDocumentContext(s.logger.WithContext(ctx), doc.FilePath, "", "validate").
				Warn("markdown.frontmatter.invalid", "error", err)
			return wrapConversionError(fmt.Errorf("%s: %w: %w", doc.FilePath, ErrFrontMatterInvalid, err))
		}
	}

	title, err := ResolveTitle(doc)
	if err != nil {
		return wrapConversionError(fmt.Errorf("%s: %w", doc.FilePath, err))
	}
	doc.Title = title
	return nil
}

func (s *Service) render(ctx context.Context, doc *interfaces.Document, overrides interfaces.ParseOptions) error {
	logger := logging.WithDocumentContext(s.logger.WithContext(ctx), doc.FilePath, "", "render")
	if _, err := s.RenderDocument(ctx, doc, overrides); err != nil {
		logger.Error("markdown.render.failed", "error", err)
		return err
	}
	logger.Debug("markdown.document.rendered", "title", doc.Title, "bytes", len(doc.BodyHTML))
	return nil
}

func mergeParseOptions(base, override interfaces.ParseOptions) interfaces.ParseOptions {
	result := base
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string(nil), override.Extensions...)
	}
	if override.HardWraps {
		result.HardWraps = true
	}
	if override.SafeMode {
		result.SafeMode = true
	}
	return result
}

func prepareFilesystem(basePath string) (fs.FS, error) {
	if strings.TrimSpace(basePath) == "" {
		basePath = "."
	}
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("markdown service: stat base path %s: %w", basePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("markdown service: base path %s is not a directory", basePath)
	}
	return os.DirFS(filepath.Clean(basePath)), nil
}
