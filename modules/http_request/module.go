package http_request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vk/behaviorgo/internal/blackboard"
	"github.com/vk/behaviorgo/internal/bt"
	"github.com/vk/behaviorgo/internal/ctxlog"
	"github.com/vk/behaviorgo/internal/registry"
)

// defaultMaxBody caps how much of a response body is read when
// `max_body` is not set.
const defaultMaxBody = 1 << 20

// Module implements the registry.Module interface for this package.
// Client defaults to http.DefaultClient.
type Module struct {
	Client *http.Client
}

// Register registers the `http_request` leaf with the engine.
func (m *Module) Register(r *registry.Registry) {
	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}
	r.RegisterNode("http_request", &registry.RegisteredNode{
		Kind:       registry.Leaf,
		Factory:    newHttpRequest(client),
		Properties: []string{"url", "method", "expect_status", "key", "timeout", "max_body"},
	})
}

// newHttpRequest builds a leaf that performs one request per tick. It
// succeeds when the response has the expected status, or any 2xx status
// when none is given. With `key` set the response is written to the
// blackboard as {"status_code", "body"}, with the body truncated to
// `max_body` bytes.
func newHttpRequest(client *http.Client) registry.Factory {
	return func(bc *registry.BuildContext) (bt.Node, error) {
		url, err := bc.Props.RequiredString("url")
		if err != nil {
			return nil, err
		}
		method, err := bc.Props.String("method", http.MethodGet)
		if err != nil {
			return nil, err
		}
		method = strings.ToUpper(method)
		expect, err := bc.Props.Int("expect_status", 0)
		if err != nil {
			return nil, err
		}
		key, err := bc.Props.String("key", "")
		if err != nil {
			return nil, err
		}
		maxBody, err := bc.Props.Int("max_body", defaultMaxBody)
		if err != nil {
			return nil, err
		}
		if maxBody < 1 {
			return nil, fmt.Errorf("%w \"max_body\": must be positive, got %d", registry.ErrInvalidProperty, maxBody)
		}
		var timeout time.Duration
		if bc.Props.Has("timeout") {
			if timeout, err = bc.Props.Duration("timeout"); err != nil {
				return nil, err
			}
		}
		if _, err := http.NewRequest(method, url, nil); err != nil {
			return nil, fmt.Errorf("%w \"url\": %v", registry.ErrInvalidProperty, err)
		}

		node := bc.Meta.ID()
		return bt.NewAction(bc.Meta, func(ctx context.Context, bb *blackboard.Blackboard) bt.Status {
			logger := ctxlog.FromContext(ctx).With("node", node, "method", method, "url", url)
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			req, err := http.NewRequestWithContext(ctx, method, url, nil)
			if err != nil {
				logger.Error("Failed to create request.", "error", err)
				return bt.Failure
			}
			logger.Debug("Making HTTP request.")

			resp, err := client.Do(req)
			if err != nil {
				logger.Warn("HTTP request failed.", "error", err)
				return bt.Failure
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(io.LimitReader(resp.Body, int64(maxBody)))
			if err != nil {
				logger.Warn("Failed to read response body.", "error", err)
				return bt.Failure
			}
			logger.Debug("Received HTTP response.", "status", resp.Status)

			if key != "" {
				bb.Set(key, map[string]any{
					"status_code": int64(resp.StatusCode),
					"body":        string(body),
				})
			}

			if expect != 0 {
				if resp.StatusCode == expect {
					return bt.Success
				}
				return bt.Failure
			}
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return bt.Success
			}
			return bt.Failure
		}), nil
	}
}
