package http_request

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/behaviorgo/internal/builder"
	"github.com/vk/behaviorgo/internal/bt"
	"github.com/vk/behaviorgo/internal/registry"
)

func buildLeaf(t *testing.T, props map[string]any) (*bt.Tree, error) {
	t.Helper()
	b, err := builder.New(registry.New().Use(&Module{}), builder.WithFilesystem(memfs.New()))
	require.NoError(t, err)
	return b.BuildTree(context.Background(), map[string]any{
		"name": "request",
		"root": map[string]any{"type": "http_request", "properties": props},
	})
}

func TestHttpRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			fmt.Fprint(w, "pong")
		case "/created":
			if r.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	testCases := []struct {
		name  string
		props map[string]any
		want  bt.Status
	}{
		{"2xx succeeds", map[string]any{"url": server.URL + "/ok"}, bt.Success},
		{"404 fails", map[string]any{"url": server.URL + "/missing"}, bt.Failure},
		{"expected 404 succeeds", map[string]any{"url": server.URL + "/missing", "expect_status": 404}, bt.Success},
		{"method is honored", map[string]any{"url": server.URL + "/created", "method": "post", "expect_status": 201}, bt.Success},
		{"unreachable host fails", map[string]any{"url": "http://127.0.0.1:1/", "timeout": "1s"}, bt.Failure},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tree, err := buildLeaf(t, tc.props)
			require.NoError(t, err)

			status, err := tree.Tick(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.want, status)
		})
	}
}

func TestHttpRequest_StoresResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "pong")
	}))
	defer server.Close()

	tree, err := buildLeaf(t, map[string]any{"url": server.URL, "key": "reply"})
	require.NoError(t, err)

	status, err := tree.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bt.Success, status)
	reply, ok := tree.Blackboard.Get("reply")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"status_code": int64(200), "body": "pong"}, reply)
}

func TestHttpRequest_TruncatesLargeBodies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Repeat("x", defaultMaxBody+512))
	}))
	defer server.Close()

	testCases := []struct {
		name  string
		props map[string]any
		want  int
	}{
		{"default cap", map[string]any{"url": server.URL, "key": "reply"}, defaultMaxBody},
		{"explicit cap", map[string]any{"url": server.URL, "key": "reply", "max_body": 16}, 16},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			tree, err := buildLeaf(t, tc.props)
			require.NoError(t, err)

			// --- Act ---
			status, err := tree.Tick(context.Background())

			// --- Assert ---
			require.NoError(t, err)
			assert.Equal(t, bt.Success, status)
			reply, ok := tree.Blackboard.Get("reply")
			require.True(t, ok)
			assert.Len(t, reply.(map[string]any)["body"], tc.want)
		})
	}
}

func TestHttpRequest_InvalidProperties(t *testing.T) {
	testCases := []struct {
		name  string
		props map[string]any
	}{
		{"missing url", map[string]any{}},
		{"bad method", map[string]any{"url": "http://localhost", "method": "BAD METHOD"}},
		{"bad timeout", map[string]any{"url": "http://localhost", "timeout": "soon"}},
		{"bad expect_status", map[string]any{"url": "http://localhost", "expect_status": "ok"}},
		{"zero max_body", map[string]any{"url": "http://localhost", "max_body": 0}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := buildLeaf(t, tc.props)
			assert.ErrorIs(t, err, registry.ErrInvalidProperty)
		})
	}
}
