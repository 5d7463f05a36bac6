package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/vk/behaviorgo/internal/bt"
	"github.com/vk/behaviorgo/internal/config"
)

// Sentinel errors reported by factories and lookups.
var (
	ErrInvalidProperty  = errors.New("invalid property")
	ErrUnknownAction    = errors.New("unknown action")
	ErrUnknownCondition = errors.New("unknown condition")
)

// Module is the interface that all node modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Kind classifies node types by how many children they take.
type Kind int

const (
	// Leaf nodes take no children.
	Leaf Kind = iota
	// Decorator nodes take exactly one child.
	Decorator
	// Composite nodes take one or more children.
	Composite
)

func (k Kind) String() string {
	switch k {
	case Leaf:
		return "leaf"
	case Decorator:
		return "decorator"
	case Composite:
		return "composite"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// BuildContext carries everything a factory may need to build one node.
type BuildContext struct {
	Ctx      context.Context
	Meta     bt.Meta
	Spec     *config.Node
	Children []bt.Node
	Props    Properties
	Registry *Registry
	// Now is the clock used by time-based nodes.
	Now func() time.Time
}

// Factory builds a node. Children are already built when it is called.
type Factory func(bc *BuildContext) (bt.Node, error)

// RegisteredNode describes one node type.
type RegisteredNode struct {
	Kind    Kind
	Factory Factory
	// Properties lists the accepted property keys. A nil slice accepts any.
	Properties []string
	// MinChildren and MaxChildren bound a composite's arity; MaxChildren of
	// -1 is unbounded. They are derived from Kind for the other kinds.
	MinChildren int
	MaxChildren int
}

// Arity returns the inclusive bounds on the number of children.
func (n *RegisteredNode) Arity() (int, int) {
	switch n.Kind {
	case Leaf:
		return 0, 0
	case Decorator:
		return 1, 1
	default:
		return n.MinChildren, n.MaxChildren
	}
}

// Registry holds all the registered node types, actions and conditions for
// a single application instance.
type Registry struct {
	Nodes      map[string]*RegisteredNode
	Actions    map[string]bt.ActionFunc
	Conditions map[string]bt.ConditionFunc
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		Nodes:      make(map[string]*RegisteredNode),
		Actions:    make(map[string]bt.ActionFunc),
		Conditions: make(map[string]bt.ConditionFunc),
	}
}

// Use registers every given module.
func (r *Registry) Use(modules ...Module) *Registry {
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// RegisterNode registers a node type.
func (r *Registry) RegisterNode(nodeType string, node *RegisteredNode) {
	if _, exists := r.Nodes[nodeType]; exists {
		panic(fmt.Sprintf("node type '%s' already registered", nodeType))
	}
	slog.Debug("Registering node type.", "type", nodeType, "kind", node.Kind.String())
	r.Nodes[nodeType] = node
}

// RegisterAction registers a Go function for `action` leaves.
func (r *Registry) RegisterAction(name string, fn bt.ActionFunc) {
	if _, exists := r.Actions[name]; exists {
		panic(fmt.Sprintf("action '%s' already registered", name))
	}
	slog.Debug("Registering action.", "name", name)
	r.Actions[name] = fn
}

// RegisterCondition registers a Go predicate for `condition` leaves.
func (r *Registry) RegisterCondition(name string, fn bt.ConditionFunc) {
	if _, exists := r.Conditions[name]; exists {
		panic(fmt.Sprintf("condition '%s' already registered", name))
	}
	slog.Debug("Registering condition.", "name", name)
	r.Conditions[name] = fn
}

// Action looks up a registered action.
func (r *Registry) Action(name string) (bt.ActionFunc, error) {
	fn, ok := r.Actions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	return fn, nil
}

// Condition looks up a registered condition.
func (r *Registry) Condition(name string) (bt.ConditionFunc, error) {
	fn, ok := r.Conditions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCondition, name)
	}
	return fn, nil
}

// Types returns the registered node types in sorted order.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.Nodes))
	for t := range r.Nodes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
