package print

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vk/behaviorgo/internal/blackboard"
	"github.com/vk/behaviorgo/internal/bt"
	"github.com/vk/behaviorgo/internal/ctxlog"
	"github.com/vk/behaviorgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the `print` leaf with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNode("print", &registry.RegisteredNode{
		Kind:       registry.Leaf,
		Factory:    newPrint,
		Properties: []string{"message", "level", "key"},
	})
}

func newPrint(bc *registry.BuildContext) (bt.Node, error) {
	message, err := bc.Props.RequiredString("message")
	if err != nil {
		return nil, err
	}
	levelStr, err := bc.Props.String("level", "info")
	if err != nil {
		return nil, err
	}
	level, err := parseLevel(levelStr)
	if err != nil {
		return nil, err
	}
	key, err := bc.Props.String("key", "")
	if err != nil {
		return nil, err
	}

	node := bc.Meta.ID()
	return bt.NewAction(bc.Meta, func(ctx context.Context, bb *blackboard.Blackboard) bt.Status {
		attrs := []any{"node", node}
		if key != "" {
			value, _ := bb.Get(key)
			attrs = append(attrs, "key", key, "value", value)
		}
		ctxlog.FromContext(ctx).Log(ctx, level, message, attrs...)
		return bt.Success
	}), nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w \"level\": must be 'debug', 'info', 'warn' or 'error', got %q", registry.ErrInvalidProperty, s)
	}
}
