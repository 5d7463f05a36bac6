package app

import (
	"fmt"
	"time"

	"github.com/vk/behaviorgo/internal/nodeid"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Root   string // confines tree files to this directory; empty reads any OS path
	DBPath string // SQLite catalog; empty keeps the catalog in memory

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	CacheSize       int

	Ticks    int // 0 ticks until the tree stops running
	Interval time.Duration
	Trace    bool     // print every node's status after each tick
	Watch    []string // limits the trace to these node addresses and their subtrees
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck-port %d: must be between 0 and 65535", cfg.HealthcheckPort)
	}
	if cfg.CacheSize < 0 {
		return nil, fmt.Errorf("invalid cache-size %d: must not be negative", cfg.CacheSize)
	}
	if cfg.Ticks < 0 {
		return nil, fmt.Errorf("invalid ticks %d: must not be negative", cfg.Ticks)
	}
	if cfg.Interval < 0 {
		return nil, fmt.Errorf("invalid interval %s: must not be negative", cfg.Interval)
	}
	if _, err := parseAddresses(cfg.Watch); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// parseAddresses parses node addresses such as "guard.sequence[0]".
func parseAddresses(raw []string) ([]*nodeid.Address, error) {
	addrs := make([]*nodeid.Address, 0, len(raw))
	for _, r := range raw {
		addr, err := nodeid.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("invalid watch address %q: %w", r, err)
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}
