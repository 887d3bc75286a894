package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-mdsite/pkg/interfaces"
)

// copyStatic copies every file under src into the writer's output root,
// keeping the directory layout. A missing src is not an error.
func copyStatic(ctx context.Context, writer artifactWriter, src string, logger interfaces.Logger) (int, error) {
	info, err := os.Stat(src)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("generator.static.missing", "dir", src)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("generator: stat static dir %s: %w", src, err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("generator: static path %s is not a directory", src)
	}

	static := os.DirFS(src)
	copied := 0
	err = fs.WalkDir(static, ".", func(name string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if name == "." {
				return nil
			}
			return writer.EnsureDir(ctx, name)
		}

		file, err := static.Open(name)
		if err != nil {
			return err
		}
		defer file.Close()

		if err := writer.WriteFile(ctx, writeFileRequest{Path: name, Content: file, Category: categoryAsset}); err != nil {
			return fmt.Errorf("generator: copy %s: %w", name, err)
		}
		logger.Debug("generator.static.copied", "file", name)
		copied++
		return nil
	})
	if err != nil {
		return copied, err
	}
	return copied, nil
}
