// Package core registers the standard behavior tree node types: the
// composites, the decorators and the generic leaves.
package core

import (
	"fmt"

	"github.com/vk/behaviorgo/internal/bt"
	"github.com/vk/behaviorgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the node types with the engine.
func (m *Module) Register(r *registry.Registry) {
	composite := func(f registry.Factory, props ...string) *registry.RegisteredNode {
		return &registry.RegisteredNode{Kind: registry.Composite, Factory: f, Properties: append([]string{}, props...), MinChildren: 1, MaxChildren: -1}
	}
	decorator := func(f registry.Factory, props ...string) *registry.RegisteredNode {
		return &registry.RegisteredNode{Kind: registry.Decorator, Factory: f, Properties: append([]string{}, props...)}
	}
	leaf := func(f registry.Factory, props ...string) *registry.RegisteredNode {
		return &registry.RegisteredNode{Kind: registry.Leaf, Factory: f, Properties: append([]string{}, props...)}
	}

	r.RegisterNode("sequence", composite(newSequence))
	r.RegisterNode("selector", composite(newSelector))
	r.RegisterNode("parallel", composite(newParallel, "success_threshold", "failure_threshold", "concurrent"))

	r.RegisterNode("inverter", decorator(newInverter))
	r.RegisterNode("succeeder", decorator(newForce(bt.Success)))
	r.RegisterNode("failer", decorator(newForce(bt.Failure)))
	r.RegisterNode("repeater", decorator(newRepeater, "count"))
	r.RegisterNode("retry", decorator(newRetry, "attempts"))
	r.RegisterNode("timeout", decorator(newTimeout, "duration"))

	r.RegisterNode("action", leaf(newAction, "action"))
	r.RegisterNode("condition", leaf(newCondition, "condition"))
	r.RegisterNode("succeed", leaf(newConstant(bt.Success)))
	r.RegisterNode("fail", leaf(newConstant(bt.Failure)))
	r.RegisterNode("running", leaf(newConstant(bt.Running)))
	r.RegisterNode("wait", leaf(newWait, "duration"))
}

func newSequence(bc *registry.BuildContext) (bt.Node, error) {
	return bt.NewSequence(bc.Meta, bc.Children...), nil
}

func newSelector(bc *registry.BuildContext) (bt.Node, error) {
	return bt.NewSelector(bc.Meta, bc.Children...), nil
}

func newParallel(bc *registry.BuildContext) (bt.Node, error) {
	n := len(bc.Children)
	success, err := bc.Props.Int("success_threshold", n)
	if err != nil {
		return nil, err
	}
	failure, err := bc.Props.Int("failure_threshold", 1)
	if err != nil {
		return nil, err
	}
	if success < 1 || success > n {
		return nil, fmt.Errorf("%w \"success_threshold\": must be between 1 and %d, got %d", registry.ErrInvalidProperty, n, success)
	}
	if failure < 1 || failure > n {
		return nil, fmt.Errorf("%w \"failure_threshold\": must be between 1 and %d, got %d", registry.ErrInvalidProperty, n, failure)
	}
	concurrent, err := bc.Props.Bool("concurrent", false)
	if err != nil {
		return nil, err
	}
	return bt.NewParallel(bc.Meta, success, failure, concurrent, bc.Children...), nil
}

func newInverter(bc *registry.BuildContext) (bt.Node, error) {
	return bt.NewInverter(bc.Meta, bc.Children[0]), nil
}

func newForce(status bt.Status) registry.Factory {
	return func(bc *registry.BuildContext) (bt.Node, error) {
		return bt.NewForce(bc.Meta, status, bc.Children[0]), nil
	}
}

func newRepeater(bc *registry.BuildContext) (bt.Node, error) {
	count, err := bc.Props.Int("count", 0)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("%w \"count\": must not be negative, got %d", registry.ErrInvalidProperty, count)
	}
	return bt.NewRepeater(bc.Meta, count, bc.Children[0]), nil
}

func newRetry(bc *registry.BuildContext) (bt.Node, error) {
	if !bc.Props.Has("attempts") {
		return nil, fmt.Errorf("%w \"attempts\": is required", registry.ErrInvalidProperty)
	}
	attempts, err := bc.Props.Int("attempts", 0)
	if err != nil {
		return nil, err
	}
	if attempts < 1 {
		return nil, fmt.Errorf("%w \"attempts\": must be at least 1, got %d", registry.ErrInvalidProperty, attempts)
	}
	return bt.NewRetry(bc.Meta, attempts, bc.Children[0]), nil
}

func newTimeout(bc *registry.BuildContext) (bt.Node, error) {
	d, err := bc.Props.Duration("duration")
	if err != nil {
		return nil, err
	}
	return bt.NewTimeout(bc.Meta, d, bc.Now, bc.Children[0]), nil
}

func newAction(bc *registry.BuildContext) (bt.Node, error) {
	name, err := bc.Props.RequiredString("action")
	if err != nil {
		return nil, err
	}
	fn, err := bc.Registry.Action(name)
	if err != nil {
		return nil, err
	}
	return bt.NewAction(bc.Meta, fn), nil
}

func newCondition(bc *registry.BuildContext) (bt.Node, error) {
	name, err := bc.Props.RequiredString("condition")
	if err != nil {
		return nil, err
	}
	fn, err := bc.Registry.Condition(name)
	if err != nil {
		return nil, err
	}
	return bt.NewCondition(bc.Meta, fn), nil
}

func newConstant(status bt.Status) registry.Factory {
	return func(bc *registry.BuildContext) (bt.Node, error) {
		return bt.NewConstant(bc.Meta, status), nil
	}
}

func newWait(bc *registry.BuildContext) (bt.Node, error) {
	d, err := bc.Props.Duration("duration")
	if err != nil {
		return nil, err
	}
	return bt.NewWait(bc.Meta, d, bc.Now), nil
}
