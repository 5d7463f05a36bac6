// Package blackboard registers the leaves that read and write the tree's
// blackboard directly from a document, without Go code.
package blackboard

import (
	"context"
	"fmt"
	"reflect"

	"github.com/ohler55/ojg/jp"
	bb "github.com/vk/behaviorgo/internal/blackboard"
	"github.com/vk/behaviorgo/internal/bt"
	"github.com/vk/behaviorgo/internal/config"
	"github.com/vk/behaviorgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the `set`, `unset` and `check` leaves with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNode("set", &registry.RegisteredNode{
		Kind:       registry.Leaf,
		Factory:    newSet,
		Properties: []string{"key", "value"},
	})
	r.RegisterNode("unset", &registry.RegisteredNode{
		Kind:       registry.Leaf,
		Factory:    newUnset,
		Properties: []string{"key"},
	})
	r.RegisterNode("check", &registry.RegisteredNode{
		Kind:       registry.Leaf,
		Factory:    newCheck,
		Properties: []string{"path", "equals"},
	})
}

func newSet(bc *registry.BuildContext) (bt.Node, error) {
	key, err := bc.Props.RequiredString("key")
	if err != nil {
		return nil, err
	}
	if !bc.Props.Has("value") {
		return nil, fmt.Errorf("%w \"value\": is required", registry.ErrInvalidProperty)
	}
	value := bc.Props["value"]
	return bt.NewAction(bc.Meta, func(_ context.Context, board *bb.Blackboard) bt.Status {
		board.Set(key, value)
		return bt.Success
	}), nil
}

func newUnset(bc *registry.BuildContext) (bt.Node, error) {
	key, err := bc.Props.RequiredString("key")
	if err != nil {
		return nil, err
	}
	return bt.NewAction(bc.Meta, func(_ context.Context, board *bb.Blackboard) bt.Status {
		board.Delete(key)
		return bt.Success
	}), nil
}

// newCheck builds a condition over the blackboard. The path is a JSONPath
// expression evaluated against a snapshot, e.g. `$.enemy.distance`. Without
// `equals` the check passes when the path matches anything non-null.
func newCheck(bc *registry.BuildContext) (bt.Node, error) {
	raw, err := bc.Props.RequiredString("path")
	if err != nil {
		return nil, err
	}
	expr, err := jp.ParseString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w \"path\": invalid jsonpath '%s': %v", registry.ErrInvalidProperty, raw, err)
	}
	want, hasWant := bc.Props["equals"]

	return bt.NewCondition(bc.Meta, func(_ context.Context, board *bb.Blackboard) bool {
		for _, got := range expr.Get(board.Snapshot()) {
			if got == nil {
				continue
			}
			if !hasWant || equal(got, want) {
				return true
			}
		}
		return false
	}), nil
}

// equal compares blackboard values with document values after normalizing
// both, so an int written by Go code matches a number from JSON.
func equal(a, b any) bool {
	return reflect.DeepEqual(config.Normalize(a), config.Normalize(b))
}
