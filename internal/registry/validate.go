package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/behaviorgo/internal/ctxlog"
	"github.com/vk/behaviorgo/internal/nodeid"
)

// ValidateRegistry checks that every registered node type can actually be
// built: it has a factory, a usable name and a consistent arity.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, nodeType := range r.Types() {
		def := r.Nodes[nodeType]
		if !nodeid.IsValidName(nodeType) {
			errs = append(errs, fmt.Sprintf("node type '%s': name must match [a-zA-Z0-9_-]+", nodeType))
		}
		if def.Factory == nil {
			errs = append(errs, fmt.Sprintf("node type '%s': no factory", nodeType))
		}
		if def.Kind == Composite {
			if def.MinChildren < 1 {
				errs = append(errs, fmt.Sprintf("node type '%s': composites need at least one child, MinChildren is %d", nodeType, def.MinChildren))
			}
			if def.MaxChildren != -1 && def.MaxChildren < def.MinChildren {
				errs = append(errs, fmt.Sprintf("node type '%s': MaxChildren %d is below MinChildren %d", nodeType, def.MaxChildren, def.MinChildren))
			}
		}
		if def.Properties == nil {
			logger.Debug("Node type accepts any property.", "type", nodeType)
		}
	}

	if len(r.Nodes) == 0 {
		errs = append(errs, "no node types registered")
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
