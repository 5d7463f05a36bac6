package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/behaviorgo/internal/config"
	"github.com/vk/behaviorgo/internal/ctxlog"
	"github.com/vk/behaviorgo/internal/fsutil"
	"github.com/vk/behaviorgo/internal/jsonconfig"
)

// ErrValidationFailed is returned by Validate when at least one file is invalid.
var ErrValidationFailed = errors.New("validation failed")

// expandPaths turns each path into the tree files it names: a file stands
// for itself and a directory for every supported file beneath it.
func (a *App) expandPaths(paths []string) ([]string, error) {
	fs := a.builder.Filesystem()
	var files []string
	for _, p := range paths {
		resolved, err := a.builder.ResolvePath(p)
		if err != nil {
			return nil, err
		}
		info, err := fs.Stat(resolved)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := fsutil.FindFilesByExtension(fs, resolved, a.builder.Extensions()...)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", p, err)
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no tree files found in %s", p)
		}
		files = append(files, found...)
	}
	return files, nil
}

// Validate builds every tree file named by paths and reports the outcome
// of each. It fails if any file does not build.
func (a *App) Validate(ctx context.Context, paths []string) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	files, err := a.expandPaths(paths)
	if err != nil {
		return err
	}

	failed := 0
	for _, file := range files {
		tree, err := a.builder.BuildTreeWithFile(ctx, file)
		if err != nil {
			failed++
			fmt.Fprintf(a.outW, "FAIL %s\n  %v\n", file, err)
			continue
		}
		fmt.Fprintf(a.outW, "OK   %s (tree %q, %d nodes)\n", file, tree.Name, tree.Size())
	}

	a.logger.Info("Validation finished.", "files", len(files), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d tree files are invalid", ErrValidationFailed, failed, len(files))
	}
	return nil
}

// Dump builds the tree file at path and prints its normalized definition,
// with subtrees inlined, as indented JSON.
func (a *App) Dump(ctx context.Context, path string) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	tree, err := a.builder.BuildTreeWithFile(ctx, path)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.outW, jsonconfig.Indent(config.Encode(tree.Definition())))
	return nil
}
