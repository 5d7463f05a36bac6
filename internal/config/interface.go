package config

import "context"

// Parser is the interface for a format-specific document parser.
type Parser interface {
	// Parse turns the raw bytes of a file into the generic document shape
	// accepted by Decode. The filename is used for diagnostics only.
	Parse(ctx context.Context, filename string, src []byte) (map[string]any, error)
}
