package builder

import (
	"errors"

	"github.com/vk/behaviorgo/internal/catalog"
	"github.com/vk/behaviorgo/internal/config"
	"github.com/vk/behaviorgo/internal/registry"
)

// Errors reported by the builder. Every issue inside a *ValidationError
// wraps one of them, so callers can test with errors.Is.
var (
	ErrUnsupportedFormat = errors.New("unsupported tree file format")
	ErrUnknownNodeType   = errors.New("unknown node type")
	ErrChildCount        = errors.New("wrong number of children")
	ErrSubtreeCycle      = errors.New("subtree cycle")
	ErrSubtreeDepth      = errors.New("subtree nesting too deep")
	ErrSubtree           = errors.New("cannot resolve subtree")

	ErrInvalidDocument  = config.ErrInvalidDocument
	ErrInvalidProperty  = registry.ErrInvalidProperty
	ErrUnknownAction    = registry.ErrUnknownAction
	ErrUnknownCondition = registry.ErrUnknownCondition
	ErrTreeNotFound     = catalog.ErrTreeNotFound
)

// ValidationError collects every issue found in a document.
type ValidationError = config.ValidationError

// Issue is a single problem located by node address.
type Issue = config.Issue
