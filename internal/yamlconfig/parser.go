package yamlconfig

import (
	"context"
	"fmt"

	"github.com/vk/behaviorgo/internal/config"
	"github.com/vk/behaviorgo/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

// Parser is the YAML-specific implementation of the config.Parser interface.
type Parser struct{}

// NewParser creates a new YAML document parser.
func NewParser() *Parser {
	return &Parser{}
}

var _ config.Parser = (*Parser)(nil)

// Parse implements config.Parser. The document must be a single mapping
// with string keys at every level.
func (p *Parser) Parse(ctx context.Context, filename string, src []byte) (map[string]any, error) {
	ctxlog.FromContext(ctx).Debug("YAML parser started.", "file", filename, "bytes", len(src))

	var v any
	if err := yaml.Unmarshal(src, &v); err != nil {
		return nil, fmt.Errorf("failed to parse YAML file %s: %w", filename, err)
	}
	converted, err := stringKeys(v, "")
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML file %s: %w: %v", filename, config.ErrInvalidDocument, err)
	}
	doc, ok := converted.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("failed to parse YAML file %s: %w: top-level value is %T, want a mapping", filename, config.ErrInvalidDocument, v)
	}
	return config.Normalize(doc).(map[string]any), nil
}

// stringKeys rewrites the mappings yaml.v3 decodes with non-string key
// types into map[string]any, rejecting keys that are not strings.
func stringKeys(v any, path string) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		for k, vv := range val {
			c, err := stringKeys(vv, path+"."+k)
			if err != nil {
				return nil, err
			}
			val[k] = c
		}
		return val, nil
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, vv := range val {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("key %v at %q is not a string", k, path)
			}
			c, err := stringKeys(vv, path+"."+key)
			if err != nil {
				return nil, err
			}
			out[key] = c
		}
		return out, nil
	case []any:
		for i, vv := range val {
			c, err := stringKeys(vv, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			val[i] = c
		}
		return val, nil
	default:
		return v, nil
	}
}
