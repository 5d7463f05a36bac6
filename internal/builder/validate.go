package builder

import (
	"context"
	"fmt"

	"github.com/vk/behaviorgo/internal/bt"
	"github.com/vk/behaviorgo/internal/config"
	"github.com/vk/behaviorgo/internal/nodeid"
	"github.com/vk/behaviorgo/internal/registry"
)

// validate checks every node of def against the registry.
func (b *Builder) validate(def *config.Tree, verr *ValidationError) {
	var walk func(n *config.Node, addr *nodeid.Address)
	walk = func(n *config.Node, addr *nodeid.Address) {
		path := addr.String()
		reg, ok := b.registry.Nodes[n.Type]
		if !ok {
			verr.Addf(path, ErrUnknownNodeType, "%q", n.Type)
		} else {
			lo, hi := reg.Arity()
			count := len(n.Children)
			if count < lo || (hi >= 0 && count > hi) {
				verr.Addf(path, ErrChildCount, "%s %q takes %s, got %d", reg.Kind, n.Type, arity(lo, hi), count)
			}
			if reg.Properties != nil {
				for _, key := range registry.Properties(n.Properties).Unknown(reg.Properties) {
					verr.Addf(path, ErrInvalidProperty, "%q is not accepted by %q", key, n.Type)
				}
			}
		}
		for i, c := range n.Children {
			walk(c, addr.Child(c.Type, i))
		}
	}
	walk(def.Root, nodeid.Root(def.Name))
}

func arity(lo, hi int) string {
	switch {
	case hi < 0:
		return fmt.Sprintf("at least %d children", lo)
	case lo == hi && lo == 1:
		return "exactly 1 child"
	case lo == hi:
		return fmt.Sprintf("exactly %d children", lo)
	default:
		return fmt.Sprintf("between %d and %d children", lo, hi)
	}
}

// instantiate builds the runtime nodes bottom-up. A failing factory is
// recorded in verr and its ancestors are skipped.
func (b *Builder) instantiate(ctx context.Context, def *config.Tree, verr *ValidationError) bt.Node {
	var build func(n *config.Node, addr *nodeid.Address) bt.Node
	build = func(n *config.Node, addr *nodeid.Address) bt.Node {
		children := make([]bt.Node, 0, len(n.Children))
		complete := true
		for i, c := range n.Children {
			child := build(c, addr.Child(c.Type, i))
			if child == nil {
				complete = false
				continue
			}
			children = append(children, child)
		}
		if !complete {
			return nil
		}

		reg := b.registry.Nodes[n.Type]
		node, err := reg.Factory(&registry.BuildContext{
			Ctx:      ctx,
			Meta:     bt.Meta{Address: addr, Type: n.Type, Name: n.Name},
			Spec:     n,
			Children: children,
			Props:    registry.Properties(n.Properties),
			Registry: b.registry,
			Now:      b.now,
		})
		if err != nil {
			verr.Add(addr.String(), err)
			return nil
		}
		if b.observer != nil {
			node = bt.Observe(node, b.observer)
		}
		return node
	}
	return build(def.Root, nodeid.Root(def.Name))
}
