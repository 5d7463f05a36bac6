package builder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/vk/behaviorgo/internal/config"
	"github.com/vk/behaviorgo/internal/ctxlog"
	"github.com/vk/behaviorgo/internal/dag"
	"github.com/vk/behaviorgo/internal/nodeid"
	"github.com/vk/behaviorgo/internal/registry"
)

const (
	// SubtreeType is the node type replaced by a referenced tree at build time.
	SubtreeType = "subtree"
	// MaxSubtreeDepth bounds how deeply subtrees may include each other.
	MaxSubtreeDepth = 32

	subtreeFile = "file"
	subtreeTree = "tree"
)

// expander inlines subtree references for a single build.
type expander struct {
	ctx   context.Context
	b     *Builder
	graph *dag.Graph
	verr  *ValidationError
}

// expand replaces every subtree node of def, recursively, with the root of
// the document it references. Problems are recorded in verr.
func (b *Builder) expand(ctx context.Context, def *config.Tree, src source, verr *ValidationError) {
	e := &expander{ctx: ctx, b: b, graph: dag.New(), verr: verr}
	e.graph.AddNode(src.String())
	def.Root = e.expandNode(def.Root, nodeid.Root(def.Name), src, 0)
}

func (e *expander) expandNode(n *config.Node, addr *nodeid.Address, src source, depth int) *config.Node {
	if n.Type != SubtreeType {
		for i, c := range n.Children {
			n.Children[i] = e.expandNode(c, addr.Child(c.Type, i), src, depth)
		}
		return n
	}

	path := addr.String()
	target, ok := e.target(n, path, src)
	if !ok {
		return n
	}
	if depth+1 > MaxSubtreeDepth {
		e.verr.Addf(path, ErrSubtreeDepth, "including %s exceeds %d levels", target, MaxSubtreeDepth)
		return n
	}

	key := target.String()
	e.graph.AddNode(key)
	if err := e.graph.AddEdge(src.String(), key); err != nil {
		e.verr.Add(path, fmt.Errorf("%w: %w", ErrSubtreeCycle, err))
		return n
	}
	if err := e.graph.DetectCycles(); err != nil {
		e.verr.Add(path, fmt.Errorf("%w: %w", ErrSubtreeCycle, err))
		return n
	}

	doc, err := e.load(target)
	if err != nil {
		e.verr.Add(path, fmt.Errorf("%w %s: %w", ErrSubtree, target, err))
		return n
	}
	def, err := config.Decode(doc)
	if err != nil {
		e.verr.Add(path, fmt.Errorf("%w %s: %w", ErrSubtree, target, err))
		return n
	}

	ctxlog.FromContext(e.ctx).Debug("Subtree resolved.", "node", path, "target", key, "depth", depth+1)

	root := def.Root
	if n.Name != n.Type {
		root.Name = n.Name
	}
	return e.expandNode(root, addr, target, depth+1)
}

// target reads and checks the reference properties of a subtree node.
func (e *expander) target(n *config.Node, path string, src source) (source, bool) {
	if len(n.Children) > 0 {
		e.verr.Addf(path, ErrChildCount, "%q takes no children, got %d", SubtreeType, len(n.Children))
		return source{}, false
	}

	props := registry.Properties(n.Properties)
	valid := true
	for _, key := range props.Unknown([]string{subtreeFile, subtreeTree}) {
		e.verr.Addf(path, ErrInvalidProperty, "%q is not accepted by %q", key, SubtreeType)
		valid = false
	}
	file, err := props.String(subtreeFile, "")
	if err != nil {
		e.verr.Add(path, err)
		valid = false
	}
	tree, err := props.String(subtreeTree, "")
	if err != nil {
		e.verr.Add(path, err)
		valid = false
	}
	if !valid {
		return source{}, false
	}

	switch {
	case file != "" && tree != "":
		e.verr.Addf(path, ErrInvalidProperty, "only one of %q and %q may be set", subtreeFile, subtreeTree)
		return source{}, false
	case file != "":
		if !filepath.IsAbs(file) {
			file = filepath.Join(src.dir(), file)
		}
		return fileSource(file), true
	case tree != "":
		return catalogSource(tree), true
	default:
		e.verr.Addf(path, ErrInvalidProperty, "one of %q and %q is required", subtreeFile, subtreeTree)
		return source{}, false
	}
}

func (e *expander) load(target source) (map[string]any, error) {
	if target.kind == "file" {
		return e.b.LoadDocument(e.ctx, target.ref)
	}
	if e.b.catalog == nil {
		return nil, errors.New("no catalog configured")
	}
	return e.b.catalog.Get(e.ctx, target.ref)
}
