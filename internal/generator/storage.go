package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type writeCategory string

const (
	categoryPage    writeCategory = "page"
	categoryAsset   writeCategory = "asset"
	categorySitemap writeCategory = "sitemap"
	categoryRobots  writeCategory = "robots"
)

// writeFileRequest describes one output file, relative to the output root.
type writeFileRequest struct {
	Path     string
	Content  io.Reader
	Category writeCategory
	Checksum string
}

// artifactWriter abstracts where generator outputs go.
type artifactWriter interface {
	EnsureDir(ctx context.Context, path string) error
	WriteFile(ctx context.Context, req writeFileRequest) error
	RemoveAll(ctx context.Context) error
	Exists(path string) bool
}

func newArtifactWriter(root string, dryRun bool) artifactWriter {
	if dryRun {
		return &dryRunWriter{fsWriter: fsWriter{root: root}}
	}
	return &fsWriter{root: root}
}

type fsWriter struct {
	root string
}

func (w *fsWriter) resolve(rel string) (string, error) {
	rel = filepath.FromSlash(strings.TrimPrefix(rel, "/"))
	full := filepath.Join(w.root, rel)
	if full != filepath.Clean(w.root) && !strings.HasPrefix(full, filepath.Clean(w.root)+string(filepath.Separator)) {
		return "", fmt.Errorf("generator: %s escapes output directory", rel)
	}
	return full, nil
}

func (w *fsWriter) EnsureDir(ctx context.Context, rel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := w.resolve(rel)
	if err != nil {
		return err
	}
	return os.MkdirAll(full, 0o755)
}

func (w *fsWriter) WriteFile(ctx context.Context, req writeFileRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if req.Content == nil {
		return errors.New("generator: write requires content reader")
	}
	if strings.TrimSpace(req.Path) == "" {
		return errors.New("generator: write requires path")
	}
	full, err := w.resolve(req.Path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	file, err := os.Create(full)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, req.Content); err != nil {
		_ = file.Close()
		return fmt.Errorf("generator: write %s: %w", req.Path, err)
	}
	return file.Close()
}

func (w *fsWriter) RemoveAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.RemoveAll(w.root)
}

func (w *fsWriter) Exists(rel string) bool {
	full, err := w.resolve(rel)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && !info.IsDir()
}

// dryRunWriter records what would have been written. Existence checks still
// look at the real output tree.
type dryRunWriter struct {
	fsWriter
	mu      sync.Mutex
	written []string
}

func (*dryRunWriter) EnsureDir(context.Context, string) error { return nil }

func (w *dryRunWriter) WriteFile(_ context.Context, req writeFileRequest) error {
	w.mu.Lock()
	w.written = append(w.written, req.Path)
	w.mu.Unlock()
	return nil
}

func (*dryRunWriter) RemoveAll(context.Context) error { return nil }
