// Package yamlconfig provides the YAML implementation of the config.Parser
// interface. A YAML tree document has the same shape as a JSON one.
package yamlconfig
