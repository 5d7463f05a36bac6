package env_vars

import (
	"context"
	"os"

	"github.com/vk/behaviorgo/internal/blackboard"
	"github.com/vk/behaviorgo/internal/bt"
	"github.com/vk/behaviorgo/internal/ctxlog"
	"github.com/vk/behaviorgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
// LookupEnv defaults to os.LookupEnv.
type Module struct {
	LookupEnv func(string) (string, bool)
}

// Register registers the `env` leaf with the engine.
func (m *Module) Register(r *registry.Registry) {
	lookup := m.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	r.RegisterNode("env", &registry.RegisteredNode{
		Kind:       registry.Leaf,
		Factory:    newEnv(lookup),
		Properties: []string{"var", "key", "default"},
	})
}

// newEnv builds a leaf that copies an environment variable into the
// blackboard. The key defaults to the variable name.
func newEnv(lookup func(string) (string, bool)) registry.Factory {
	return func(bc *registry.BuildContext) (bt.Node, error) {
		name, err := bc.Props.RequiredString("var")
		if err != nil {
			return nil, err
		}
		key, err := bc.Props.String("key", name)
		if err != nil {
			return nil, err
		}
		hasDefault := bc.Props.Has("default")
		def, err := bc.Props.String("default", "")
		if err != nil {
			return nil, err
		}

		return bt.NewAction(bc.Meta, func(ctx context.Context, bb *blackboard.Blackboard) bt.Status {
			value, ok := lookup(name)
			if !ok {
				if !hasDefault {
					ctxlog.FromContext(ctx).Debug("Environment variable not set.", "var", name)
					return bt.Failure
				}
				value = def
			}
			bb.Set(key, value)
			return bt.Success
		}), nil
	}
}
