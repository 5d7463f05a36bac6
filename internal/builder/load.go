package builder

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5/util"
	"github.com/vk/behaviorgo/internal/ctxlog"
)

type cachedDocument struct {
	modTime time.Time
	size    int64
	doc     map[string]any
}

// LoadDocument reads and parses a tree file into the generic document
// shape. Parsed documents are cached until the file's modification time or
// size changes. The returned document is shared with the cache and must
// not be modified.
func (b *Builder) LoadDocument(ctx context.Context, path string) (map[string]any, error) {
	logger := ctxlog.FromContext(ctx)

	ext := strings.ToLower(filepath.Ext(path))
	parser, ok := b.parsers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, path, strings.Join(sortedExtensions(b.parsers), ", "))
	}

	clean, err := b.ResolvePath(path)
	if err != nil {
		return nil, err
	}

	info, err := b.fs.Stat(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree file %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("failed to read tree file %s: is a directory", path)
	}

	if b.cache != nil {
		if cached, ok := b.cache.Get(clean); ok && cached.modTime.Equal(info.ModTime()) && cached.size == info.Size() {
			logger.Debug("Document cache hit.", "path", clean)
			return cached.doc, nil
		}
	}

	src, err := util.ReadFile(b.fs, clean)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree file %s: %w", path, err)
	}

	doc, err := parser.Parse(ctx, clean, src)
	if err != nil {
		return nil, err
	}

	if b.cache != nil {
		b.cache.Add(clean, cachedDocument{modTime: info.ModTime(), size: info.Size(), doc: doc})
	}
	logger.Debug("Document loaded.", "path", clean, "format", ext)
	return doc, nil
}

// CachedDocuments reports how many parsed documents are cached.
func (b *Builder) CachedDocuments() int {
	if b.cache == nil {
		return 0
	}
	return b.cache.Len()
}

func sortedExtensions[V any](m map[string]V) []string {
	exts := make([]string, 0, len(m))
	for ext := range m {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
