package builder

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vk/behaviorgo/internal/blackboard"
	"github.com/vk/behaviorgo/internal/bt"
	"github.com/vk/behaviorgo/internal/catalog"
	"github.com/vk/behaviorgo/internal/config"
	"github.com/vk/behaviorgo/internal/ctxlog"
	"github.com/vk/behaviorgo/internal/hcl"
	"github.com/vk/behaviorgo/internal/jsonconfig"
	"github.com/vk/behaviorgo/internal/registry"
	"github.com/vk/behaviorgo/internal/yamlconfig"
)

// DefaultCacheSize is the number of parsed documents kept by default.
const DefaultCacheSize = 64

// Builder constructs behavior trees from documents.
type Builder struct {
	registry *registry.Registry
	fs       billy.Filesystem
	rooted   bool
	catalog  catalog.Catalog
	now      func() time.Time
	initial  map[string]any
	parsers  map[string]config.Parser
	cache    *lru.Cache[string, cachedDocument]
	observer bt.Observer
}

// Option configures a Builder.
type Option func(*Builder) error

// WithFilesystem sets the filesystem files are read from. Paths are then
// taken relative to its root and cannot leave it. Without this option any
// OS path works, relative paths resolving against the working directory.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(b *Builder) error {
		b.fs = fs
		b.rooted = true
		return nil
	}
}

// WithCatalog enables `tree` subtree references and BuildTreeByName.
func WithCatalog(c catalog.Catalog) Option {
	return func(b *Builder) error {
		b.catalog = c
		return nil
	}
}

// WithClock sets the clock handed to time-based nodes.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) error {
		b.now = now
		return nil
	}
}

// WithBlackboard seeds the blackboard of every built tree with a copy of initial.
func WithBlackboard(initial map[string]any) Option {
	return func(b *Builder) error {
		b.initial = initial
		return nil
	}
}

// WithCacheSize sets how many parsed files are cached. Zero disables the cache.
func WithCacheSize(size int) Option {
	return func(b *Builder) error {
		if size < 0 {
			return fmt.Errorf("cache size must not be negative, got %d", size)
		}
		if size == 0 {
			b.cache = nil
			return nil
		}
		cache, err := lru.New[string, cachedDocument](size)
		if err != nil {
			return fmt.Errorf("failed to create document cache: %w", err)
		}
		b.cache = cache
		return nil
	}
}

// WithObserver attaches fn to every node of every built tree.
func WithObserver(fn bt.Observer) Option {
	return func(b *Builder) error {
		b.observer = fn
		return nil
	}
}

// WithParser registers a parser for a file extension such as ".toml".
func WithParser(ext string, p config.Parser) Option {
	return func(b *Builder) error {
		b.parsers[strings.ToLower(ext)] = p
		return nil
	}
}

// New creates a Builder that resolves node types through r.
func New(r *registry.Registry, opts ...Option) (*Builder, error) {
	if r == nil {
		return nil, fmt.Errorf("builder requires a registry")
	}
	b := &Builder{
		registry: r,
		fs:       osfs.New("/"),
		now:      time.Now,
		parsers: map[string]config.Parser{
			".json": jsonconfig.NewParser(),
			".hcl":  hcl.NewParser(),
			".yaml": yamlconfig.NewParser(),
			".yml":  yamlconfig.NewParser(),
		},
	}
	if err := WithCacheSize(DefaultCacheSize)(b); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Extensions returns the sorted file extensions the builder can parse.
func (b *Builder) Extensions() []string {
	return sortedExtensions(b.parsers)
}

// Filesystem returns the filesystem files are read from.
func (b *Builder) Filesystem() billy.Filesystem {
	return b.fs
}

// ResolvePath returns the name under which path is opened on Filesystem.
// On the default OS filesystem that is the absolute path.
func (b *Builder) ResolvePath(path string) (string, error) {
	clean := filepath.Clean(path)
	if b.rooted {
		return clean, nil
	}
	abs, err := filepath.Abs(clean)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return abs, nil
}

// BuildTree builds a tree from an in-memory document. Relative subtree
// `file` references resolve against the filesystem root.
func (b *Builder) BuildTree(ctx context.Context, data map[string]any) (*bt.Tree, error) {
	return b.build(ctx, data, inlineSource())
}

// BuildTreeWithFile reads the file at path, parses it according to its
// extension and builds the tree from the resulting document.
func (b *Builder) BuildTreeWithFile(ctx context.Context, path string) (*bt.Tree, error) {
	doc, err := b.LoadDocument(ctx, path)
	if err != nil {
		return nil, err
	}
	return b.build(ctx, doc, fileSource(path))
}

// BuildTreeByName builds the tree stored under name in the catalog.
func (b *Builder) BuildTreeByName(ctx context.Context, name string) (*bt.Tree, error) {
	if b.catalog == nil {
		return nil, fmt.Errorf("cannot build tree %q: no catalog configured", name)
	}
	doc, err := b.catalog.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("cannot build tree %q: %w", name, err)
	}
	return b.build(ctx, doc, catalogSource(name))
}

func (b *Builder) build(ctx context.Context, data map[string]any, src source) (*bt.Tree, error) {
	logger := ctxlog.FromContext(ctx).With("source", src.String())
	logger.Debug("Build: Decoding document.")

	def, err := config.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", src, err)
	}

	verr := &ValidationError{}
	b.expand(ctx, def, src, verr)
	if err := verr.ErrOrNil(); err != nil {
		return nil, fmt.Errorf("failed to resolve subtrees of %s: %w", src, err)
	}
	logger.Debug("Build: Subtrees expanded.", "nodes", def.Root.Count())

	b.validate(def, verr)
	if err := verr.ErrOrNil(); err != nil {
		return nil, fmt.Errorf("failed to validate %s: %w", src, err)
	}
	logger.Debug("Build: Validation passed.")

	root := b.instantiate(ctx, def, verr)
	if err := verr.ErrOrNil(); err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", src, err)
	}

	tree := bt.NewTree(def, root, blackboard.New(b.initial))
	logger.Info("Build: Tree construction successful.", "tree", tree.Name, "id", tree.ID.String(), "nodes", tree.Size())
	return tree, nil
}

// source identifies where a document came from.
type source struct {
	kind string
	ref  string
}

func inlineSource() source             { return source{kind: "inline"} }
func fileSource(path string) source    { return source{kind: "file", ref: filepath.Clean(path)} }
func catalogSource(name string) source { return source{kind: "tree", ref: name} }

func (s source) String() string {
	if s.ref == "" {
		return s.kind
	}
	return s.kind + ":" + s.ref
}

// dir is the directory relative `file` references resolve against.
func (s source) dir() string {
	if s.kind == "file" {
		return filepath.Dir(s.ref)
	}
	return ""
}
