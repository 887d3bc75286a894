package markdown

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-mdsite/pkg/interfaces"
)

const defaultPattern = "*.md"

// LoaderConfig configures how Markdown files are discovered.
type LoaderConfig struct {
	// BasePath is the on-disk root backing the filesystem, used to turn
	// absolute paths into filesystem relative ones.
	BasePath string
	// Pattern limits discovered files (defaults to "*.md"). Patterns without a
	// slash are matched against the file name only.
	Pattern   string
	Recursive bool
}

// Loader reads Markdown documents out of an fs.FS.
type Loader struct {
	fs        fs.FS
	basePath  string
	pattern   string
	recursive bool
}

// LoadParams carries per call overrides.
type LoadParams struct {
	Pattern   string
	Recursive *bool
}

// DocumentResult is a parsed document along with its raw source.
type DocumentResult struct {
	Document *interfaces.Document
	Source   []byte
}

func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = defaultPattern
	}
	base := ""
	if strings.TrimSpace(cfg.BasePath) != "" {
		base = filepath.Clean(cfg.BasePath)
	}
	return &Loader{
		fs:        filesystem,
		basePath:  base,
		pattern:   pattern,
		recursive: cfg.Recursive,
	}
}

// LoadFile reads and parses one document and stamps its checksum.
func (l *Loader) LoadFile(ctx context.Context, name string) (*DocumentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel, err := l.relative(name)
	if err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", rel, err)
	}
	info, err := fs.Stat(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("markdown loader stat %s: %w", rel, err)
	}

	doc, err := BuildDocument(rel, data, info.ModTime())
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)
	doc.Checksum = sum[:]

	return &DocumentResult{Document: doc, Source: data}, nil
}

// LoadDirectory walks dir and loads every file matching the pattern. Results
// are sorted by path.
func (l *Loader) LoadDirectory(ctx context.Context, dir string, params LoadParams) ([]*DocumentResult, error) {
	names, err := l.Discover(ctx, dir, params)
	if err != nil {
		return nil, err
	}
	results := make([]*DocumentResult, 0, len(names))
	for _, name := range names {
		result, err := l.LoadFile(ctx, name)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// Discover lists the matching files under dir without reading them.
func (l *Loader) Discover(ctx context.Context, dir string, params LoadParams) ([]string, error) {
	root, err := l.relative(dir)
	if err != nil {
		return nil, err
	}

	recursive := l.recursive
	if params.Recursive != nil {
		recursive = *params.Recursive
	}
	pattern := strings.TrimSpace(params.Pattern)
	if pattern == "" {
		pattern = l.pattern
	}

	var names []string
	walkErr := fs.WalkDir(l.fs, root, func(current string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if current != root && !recursive {
				return fs.SkipDir
			}
			return nil
		}
		if matchPattern(pattern, current) {
			names = append(names, current)
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Strings(names)
	return names, nil
}

func matchPattern(pattern, name string) bool {
	pattern = strings.ReplaceAll(filepath.ToSlash(pattern), "**/", "")
	target := name
	if !strings.Contains(pattern, "/") {
		target = path.Base(name)
	}
	ok, err := path.Match(pattern, target)
	return err == nil && ok
}

// relative maps name onto the loader filesystem: absolute paths are made
// relative to BasePath and separators are normalised to slashes.
func (l *Loader) relative(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return ".", nil
	}
	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) {
		if l.basePath == "" {
			return "", fmt.Errorf("markdown loader: absolute path %s provided without base path", name)
		}
		rel, err := filepath.Rel(l.basePath, clean)
		if err != nil {
			return "", fmt.Errorf("markdown loader: make relative %s: %w", name, err)
		}
		clean = rel
	}
	clean = filepath.ToSlash(clean)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("markdown loader: %s escapes the content root", name)
	}
	return clean, nil
}
