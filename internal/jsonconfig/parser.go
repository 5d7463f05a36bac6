package jsonconfig

import (
	"context"
	"fmt"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
	"github.com/vk/behaviorgo/internal/config"
	"github.com/vk/behaviorgo/internal/ctxlog"
)

// Parser is the JSON-specific implementation of the config.Parser interface.
type Parser struct{}

// NewParser creates a new JSON document parser.
func NewParser() *Parser {
	return &Parser{}
}

var _ config.Parser = (*Parser)(nil)

// Parse implements config.Parser. The top-level value must be an object.
func (p *Parser) Parse(ctx context.Context, filename string, src []byte) (map[string]any, error) {
	ctxlog.FromContext(ctx).Debug("JSON parser started.", "file", filename, "bytes", len(src))

	v, err := oj.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON file %s: %w", filename, err)
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("failed to parse JSON file %s: %w: top-level value is %T, want an object", filename, config.ErrInvalidDocument, v)
	}
	return doc, nil
}

// Marshal encodes a document as compact JSON with sorted keys.
func Marshal(doc map[string]any) ([]byte, error) {
	out, err := oj.Marshal(doc, &ojg.Options{Sort: true})
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON document: %w", err)
	}
	return out, nil
}

// Indent renders a document as indented JSON with sorted keys.
func Indent(doc map[string]any) string {
	return oj.JSON(doc, &ojg.Options{Indent: 2, Sort: true})
}
