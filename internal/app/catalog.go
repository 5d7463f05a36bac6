package app

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/behaviorgo/internal/bt"
	"github.com/vk/behaviorgo/internal/config"
	"github.com/vk/behaviorgo/internal/ctxlog"
)

// ImportTrees builds every tree file named by paths and stores its
// definition in the catalog under the tree's name. Subtrees are inlined, so
// stored documents do not depend on the files they were read from. Nothing
// is stored unless every file builds and no two files share a tree name.
func (a *App) ImportTrees(ctx context.Context, paths []string) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	files, err := a.expandPaths(paths)
	if err != nil {
		return err
	}

	type imported struct {
		file string
		tree *bt.Tree
	}
	trees := make([]imported, 0, len(files))
	seen := make(map[string]string, len(files))
	for _, file := range files {
		tree, err := a.builder.BuildTreeWithFile(ctx, file)
		if err != nil {
			return fmt.Errorf("cannot import %s: %w", file, err)
		}
		if prev, ok := seen[tree.Name]; ok {
			return fmt.Errorf("cannot import %s: tree %q was already imported from %s", file, tree.Name, prev)
		}
		seen[tree.Name] = file
		trees = append(trees, imported{file: file, tree: tree})
	}

	for _, t := range trees {
		if err := a.catalog.Put(ctx, t.tree.Name, config.Encode(t.tree.Definition())); err != nil {
			return fmt.Errorf("cannot import %s: %w", t.file, err)
		}
		fmt.Fprintf(a.outW, "imported %s from %s\n", t.tree.Name, t.file)
	}

	a.logger.Info("Catalog import finished.", "trees", len(trees))
	return nil
}

// ListTrees prints the catalog entries, one per line.
func (a *App) ListTrees(ctx context.Context) error {
	entries, err := a.catalog.List(ctxlog.WithLogger(ctx, a.logger))
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(a.outW, "%s\t%s\n", e.Name, e.UpdatedAt.UTC().Format(time.RFC3339))
	}
	return nil
}

// DeleteTree removes a tree from the catalog.
func (a *App) DeleteTree(ctx context.Context, name string) error {
	if err := a.catalog.Delete(ctxlog.WithLogger(ctx, a.logger), name); err != nil {
		return err
	}
	fmt.Fprintf(a.outW, "deleted %s\n", name)
	return nil
}
