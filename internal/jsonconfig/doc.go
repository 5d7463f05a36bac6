// Package jsonconfig provides the JSON implementation of the config.Parser
// interface and the canonical JSON encoding of tree definitions.
package jsonconfig
