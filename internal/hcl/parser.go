package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/behaviorgo/internal/config"
	"github.com/vk/behaviorgo/internal/ctxlog"
)

const nodeBlock = "node"

// Parser is the HCL-specific implementation of the config.Parser interface.
type Parser struct{}

// NewParser creates a new HCL document parser.
func NewParser() *Parser {
	return &Parser{}
}

var _ config.Parser = (*Parser)(nil)

// Parse implements config.Parser.
func (p *Parser) Parse(ctx context.Context, filename string, src []byte) (map[string]any, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL parser started.", "file", filename, "bytes", len(src))

	file, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("failed to parse HCL file %s: unexpected body type %T", filename, file.Body)
	}

	doc, err := attributesToMap(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, err)
	}

	var roots []*hclsyntax.Block
	for _, block := range body.Blocks {
		if block.Type != nodeBlock {
			return nil, fmt.Errorf("failed to decode HCL file %s: %s: unsupported block type %q, only %q is allowed", filename, block.DefRange(), block.Type, nodeBlock)
		}
		roots = append(roots, block)
	}
	if len(roots) != 1 {
		return nil, fmt.Errorf("failed to decode HCL file %s: expected exactly one top-level %q block, found %d", filename, nodeBlock, len(roots))
	}

	root, err := translateNode(roots[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, err)
	}
	doc[config.KeyRoot] = root

	logger.Debug("HCL parsing complete.", "file", filename)
	return doc, nil
}

// translateNode converts a `node` block and its nested blocks into the
// generic node object shape.
func translateNode(block *hclsyntax.Block) (map[string]any, error) {
	if len(block.Labels) == 0 || len(block.Labels) > 2 {
		return nil, fmt.Errorf("%s: a %q block takes a type label and an optional name label, got %d labels", block.DefRange(), nodeBlock, len(block.Labels))
	}

	out := map[string]any{config.KeyType: block.Labels[0]}
	if len(block.Labels) == 2 {
		out[config.KeyName] = block.Labels[1]
	}

	props, err := attributesToMap(block.Body)
	if err != nil {
		return nil, err
	}
	if len(props) > 0 {
		out[config.KeyProperties] = props
	}

	var children []any
	for _, nested := range block.Body.Blocks {
		if nested.Type != nodeBlock {
			return nil, fmt.Errorf("%s: unsupported block type %q inside %q block", nested.DefRange(), nested.Type, nodeBlock)
		}
		child, err := translateNode(nested)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	if len(children) > 0 {
		out[config.KeyChildren] = children
	}

	return out, nil
}

// attributesToMap evaluates every attribute of a body without variables
// or functions and converts the results to native Go values.
func attributesToMap(body *hclsyntax.Body) (map[string]any, error) {
	out := make(map[string]any, len(body.Attributes))
	for name, attr := range body.Attributes {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("attribute %q: %w", name, diags)
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		out[name] = native
	}
	return out, nil
}
