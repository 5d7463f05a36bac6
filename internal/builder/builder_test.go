package builder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bbpkg "github.com/vk/behaviorgo/internal/blackboard"
	"github.com/vk/behaviorgo/internal/bt"
	"github.com/vk/behaviorgo/internal/inmemorycatalog"
	"github.com/vk/behaviorgo/internal/registry"
	"github.com/vk/behaviorgo/modules/blackboard"
	"github.com/vk/behaviorgo/modules/core"
)

func newTestRegistry() *registry.Registry {
	r := registry.New().Use(&core.Module{}, &blackboard.Module{})
	r.RegisterAction("attack", func(_ context.Context, board *bbpkg.Blackboard) bt.Status {
		board.Set("attacked", true)
		return bt.Success
	})
	r.RegisterCondition("enemy_visible", func(_ context.Context, board *bbpkg.Blackboard) bool {
		visible, _ := board.Get("enemy")
		return visible == true
	})
	return r
}

func newTestBuilder(t *testing.T, fs billy.Filesystem, opts ...Option) *Builder {
	t.Helper()
	if fs != nil {
		opts = append([]Option{WithFilesystem(fs)}, opts...)
	}
	b, err := New(newTestRegistry(), opts...)
	require.NoError(t, err)
	return b
}

func writeFiles(t *testing.T, fs billy.Filesystem, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, util.WriteFile(fs, name, []byte(content), 0o644))
	}
}

func guardDocument() map[string]any {
	return map[string]any{
		"name":        "guard",
		"description": "attack when an enemy is visible",
		"root": map[string]any{
			"type": "selector",
			"children": []any{
				map[string]any{
					"type": "sequence",
					"name": "engage",
					"children": []any{
						map[string]any{"type": "condition", "properties": map[string]any{"condition": "enemy_visible"}},
						map[string]any{"type": "action", "properties": map[string]any{"action": "attack"}},
					},
				},
				map[string]any{"type": "wait", "properties": map[string]any{"duration": 100}},
			},
		},
	}
}

const guardJSON = `{
  "name": "guard",
  "description": "attack when an enemy is visible",
  "root": {
    "type": "selector",
    "children": [
      {
        "type": "sequence",
        "name": "engage",
        "children": [
          {"type": "condition", "properties": {"condition": "enemy_visible"}},
          {"type": "action", "properties": {"action": "attack"}}
        ]
      },
      {"type": "wait", "properties": {"duration": 100}}
    ]
  }
}`

const guardHCL = `
name        = "guard"
description = "attack when an enemy is visible"

node "selector" {
  node "sequence" "engage" {
    node "condition" {
      condition = "enemy_visible"
    }
    node "action" {
      action = "attack"
    }
  }
  node "wait" {
    duration = 100
  }
}
`

const guardYAML = `
name: guard
description: attack when an enemy is visible
root:
  type: selector
  children:
    - type: sequence
      name: engage
      children:
        - type: condition
          properties: {condition: enemy_visible}
        - type: action
          properties: {action: attack}
    - type: wait
      properties: {duration: 100}
`

func TestBuildTree(t *testing.T) {
	// --- Arrange ---
	b := newTestBuilder(t, memfs.New(), WithBlackboard(map[string]any{"enemy": true}))

	// --- Act ---
	tree, err := b.BuildTree(context.Background(), guardDocument())

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "guard", tree.Name)
	assert.Equal(t, "attack when an enemy is visible", tree.Description)
	assert.Equal(t, 5, tree.Size())

	var ids []string
	tree.Walk(func(n bt.Node) bool {
		ids = append(ids, n.Meta().ID())
		return true
	})
	assert.Equal(t, []string{
		"guard",
		"guard.sequence[0]",
		"guard.sequence[0].condition[0]",
		"guard.sequence[0].action[1]",
		"guard.wait[1]",
	}, ids)

	engage, ok := tree.Find("guard.sequence[0]")
	require.True(t, ok)
	assert.Equal(t, "engage", engage.Meta().Name)

	status, err := tree.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bt.Success, status)
	attacked, _ := tree.Blackboard.Get("attacked")
	assert.Equal(t, true, attacked)
}

func TestBuildTreeWithFile_EquivalentToBuildTree(t *testing.T) {
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{
		"trees/guard.json": guardJSON,
		"trees/guard.hcl":  guardHCL,
		"trees/guard.yaml": guardYAML,
	})
	b := newTestBuilder(t, fs)
	ctx := context.Background()

	fromMap, err := b.BuildTree(ctx, guardDocument())
	require.NoError(t, err)

	for _, path := range []string{"trees/guard.json", "trees/guard.hcl", "trees/guard.yaml"} {
		t.Run(path, func(t *testing.T) {
			fromFile, err := b.BuildTreeWithFile(ctx, path)
			require.NoError(t, err)

			assert.Equal(t, fromMap.Definition(), fromFile.Definition())
			assert.Equal(t, fromMap.Size(), fromFile.Size())
			assert.NotEqual(t, fromMap.ID, fromFile.ID)
		})
	}
}

func TestBuildTreeWithFile_Errors(t *testing.T) {
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{
		"tree.toml":   "name = 'x'",
		"broken.json": `{"root": `,
	})
	require.NoError(t, fs.MkdirAll("dir.json", 0o755))
	b := newTestBuilder(t, fs)
	ctx := context.Background()

	_, err := b.BuildTreeWithFile(ctx, "tree.toml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = b.BuildTreeWithFile(ctx, "missing.json")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = b.BuildTreeWithFile(ctx, "broken.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.json")

	_, err = b.BuildTreeWithFile(ctx, "dir.json")
	assert.ErrorContains(t, err, "is a directory")
}

func TestBuildTree_CollectsValidationIssues(t *testing.T) {
	b := newTestBuilder(t, memfs.New())
	doc := map[string]any{
		"name": "broken",
		"root": map[string]any{
			"type": "sequence",
			"children": []any{
				map[string]any{"type": "teleport"},
				map[string]any{"type": "inverter"},
				map[string]any{"type": "wait", "properties": map[string]any{"duration": "1s", "speed": 3}},
			},
		},
	}

	_, err := b.BuildTree(context.Background(), doc)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Issues, 3)
	assert.Equal(t, "broken.teleport[0]", verr.Issues[0].Path)
	assert.ErrorIs(t, verr.Issues[0].Err, ErrUnknownNodeType)
	assert.Equal(t, "broken.inverter[1]", verr.Issues[1].Path)
	assert.ErrorIs(t, verr.Issues[1].Err, ErrChildCount)
	assert.Equal(t, "broken.wait[2]", verr.Issues[2].Path)
	assert.ErrorIs(t, verr.Issues[2].Err, ErrInvalidProperty)

	assert.ErrorIs(t, err, ErrUnknownNodeType)
	assert.ErrorIs(t, err, ErrChildCount)
	assert.Contains(t, err.Error(), "decorator \"inverter\" takes exactly 1 child, got 0")
}

func TestBuildTree_CollectsFactoryIssues(t *testing.T) {
	b := newTestBuilder(t, memfs.New())
	doc := map[string]any{
		"root": map[string]any{
			"type": "sequence",
			"children": []any{
				map[string]any{"type": "action", "properties": map[string]any{"action": "dance"}},
				map[string]any{"type": "condition", "properties": map[string]any{"condition": "raining"}},
				map[string]any{"type": "retry", "child": map[string]any{"type": "succeed"}},
			},
		},
	}

	_, err := b.BuildTree(context.Background(), doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.ErrorIs(t, err, ErrUnknownCondition)
	assert.ErrorIs(t, err, ErrInvalidProperty)
	assert.Contains(t, err.Error(), "tree.action[0]")
	assert.Contains(t, err.Error(), "tree.condition[1]")
	assert.Contains(t, err.Error(), "tree.retry[2]")
}

func TestBuildTree_InvalidDocument(t *testing.T) {
	b := newTestBuilder(t, memfs.New())

	_, err := b.BuildTree(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidDocument)

	_, err = b.BuildTree(context.Background(), map[string]any{"name": "x"})
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestBuildTree_BareNodeDocument(t *testing.T) {
	b := newTestBuilder(t, memfs.New())

	tree, err := b.BuildTree(context.Background(), map[string]any{"type": "succeed"})
	require.NoError(t, err)
	assert.Equal(t, "tree", tree.Name)
	assert.Equal(t, "tree", tree.Root.Meta().ID())
}

func TestBuildTree_BlackboardIsPerTree(t *testing.T) {
	b := newTestBuilder(t, memfs.New(), WithBlackboard(map[string]any{"hp": 10}))
	doc := map[string]any{"type": "set", "properties": map[string]any{"key": "hp", "value": 1}}

	first, err := b.BuildTree(context.Background(), doc)
	require.NoError(t, err)
	second, err := b.BuildTree(context.Background(), doc)
	require.NoError(t, err)

	_, err = first.Tick(context.Background())
	require.NoError(t, err)

	hp, _ := first.Blackboard.Get("hp")
	assert.Equal(t, int64(1), hp)
	hp, _ = second.Blackboard.Get("hp")
	assert.Equal(t, 10, hp)
}

func TestSubtree_File(t *testing.T) {
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{
		"trees/main.json": `{
			"name": "main",
			"root": {"type": "sequence", "children": [
				{"type": "subtree", "name": "patrol_route", "properties": {"file": "parts/patrol.json"}},
				{"type": "subtree", "properties": {"file": "common/idle.hcl"}}
			]}
		}`,
		"trees/parts/patrol.json": `{"name": "patrol", "root": {"type": "sequence", "children": [
			{"type": "set", "properties": {"key": "at", "value": "a"}},
			{"type": "subtree", "properties": {"file": "../common/idle.hcl"}}
		]}}`,
		"trees/common/idle.hcl": `node "succeed" "idle" {}`,
	})
	b := newTestBuilder(t, fs)

	tree, err := b.BuildTreeWithFile(context.Background(), "trees/main.json")
	require.NoError(t, err)

	def := tree.Definition()
	require.Len(t, def.Root.Children, 2)
	patrol := def.Root.Children[0]
	assert.Equal(t, "sequence", patrol.Type)
	assert.Equal(t, "patrol_route", patrol.Name)
	require.Len(t, patrol.Children, 2)
	assert.Equal(t, "idle", patrol.Children[1].Name)
	assert.Equal(t, "succeed", def.Root.Children[1].Type)

	_, ok := tree.Find("main.sequence[0].succeed[1]")
	assert.True(t, ok)

	status, err := tree.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bt.Success, status)
}

func TestSubtree_Cycle(t *testing.T) {
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{
		"a.json":    `{"root": {"type": "sequence", "children": [{"type": "subtree", "properties": {"file": "b.json"}}]}}`,
		"b.json":    `{"root": {"type": "subtree", "properties": {"file": "a.json"}}}`,
		"self.json": `{"root": {"type": "inverter", "child": {"type": "subtree", "properties": {"file": "self.json"}}}}`,
	})
	b := newTestBuilder(t, fs)

	_, err := b.BuildTreeWithFile(context.Background(), "a.json")
	assert.ErrorIs(t, err, ErrSubtreeCycle)
	assert.Contains(t, err.Error(), "file:a.json -> file:b.json -> file:a.json")

	_, err = b.BuildTreeWithFile(context.Background(), "self.json")
	assert.ErrorIs(t, err, ErrSubtreeCycle)
}

func TestSubtree_DiamondIsNotACycle(t *testing.T) {
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{
		"leaf.json": `{"type": "succeed"}`,
		"main.json": `{"root": {"type": "sequence", "children": [
			{"type": "subtree", "properties": {"file": "leaf.json"}},
			{"type": "subtree", "properties": {"file": "leaf.json"}}
		]}}`,
	})
	b := newTestBuilder(t, fs)

	tree, err := b.BuildTreeWithFile(context.Background(), "main.json")
	require.NoError(t, err)
	assert.Equal(t, 3, tree.Size())
}

func TestSubtree_Depth(t *testing.T) {
	chain := func(n int) billy.Filesystem {
		fs := memfs.New()
		files := map[string]string{}
		for i := 0; i < n; i++ {
			files[fmt.Sprintf("t%d.json", i)] = fmt.Sprintf(`{"type": "subtree", "properties": {"file": "t%d.json"}}`, i+1)
		}
		files[fmt.Sprintf("t%d.json", n)] = `{"type": "succeed"}`
		writeFiles(t, fs, files)
		return fs
	}

	b := newTestBuilder(t, chain(MaxSubtreeDepth))
	_, err := b.BuildTreeWithFile(context.Background(), "t0.json")
	require.NoError(t, err)

	b = newTestBuilder(t, chain(MaxSubtreeDepth+1))
	_, err = b.BuildTreeWithFile(context.Background(), "t0.json")
	assert.ErrorIs(t, err, ErrSubtreeDepth)
}

func TestSubtree_InvalidReferences(t *testing.T) {
	fs := memfs.New()
	b := newTestBuilder(t, fs)

	testCases := []struct {
		name    string
		props   map[string]any
		wantErr error
	}{
		{"neither", nil, ErrInvalidProperty},
		{"both", map[string]any{"file": "a.json", "tree": "a"}, ErrInvalidProperty},
		{"unknown property", map[string]any{"file": "a.json", "mode": "x"}, ErrInvalidProperty},
		{"wrong type", map[string]any{"file": 5}, ErrInvalidProperty},
		{"missing file", map[string]any{"file": "missing.json"}, os.ErrNotExist},
		{"no catalog", map[string]any{"tree": "patrol"}, ErrSubtree},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc := map[string]any{"type": "subtree"}
			if tc.props != nil {
				doc["properties"] = tc.props
			}
			_, err := b.BuildTree(context.Background(), doc)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestSubtree_CatalogAndBuildTreeByName(t *testing.T) {
	ctx := context.Background()
	cat := inmemorycatalog.New()
	require.NoError(t, cat.Put(ctx, "patrol", map[string]any{"name": "patrol", "root": map[string]any{"type": "succeed"}}))
	require.NoError(t, cat.Put(ctx, "main", map[string]any{
		"name": "main",
		"root": map[string]any{"type": "inverter", "child": map[string]any{"type": "subtree", "properties": map[string]any{"tree": "patrol"}}},
	}))
	b := newTestBuilder(t, memfs.New(), WithCatalog(cat))

	tree, err := b.BuildTreeByName(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, "main", tree.Name)
	status, err := tree.Tick(ctx)
	require.NoError(t, err)
	assert.Equal(t, bt.Failure, status)

	_, err = b.BuildTreeByName(ctx, "nope")
	assert.ErrorIs(t, err, ErrTreeNotFound)

	_, err = b.BuildTree(ctx, map[string]any{"type": "subtree", "properties": map[string]any{"tree": "nope"}})
	assert.ErrorIs(t, err, ErrTreeNotFound)

	noCatalog := newTestBuilder(t, memfs.New())
	_, err = noCatalog.BuildTreeByName(ctx, "main")
	assert.ErrorContains(t, err, "no catalog configured")
}

func TestDocumentCache(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.json")
	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	write := func(nodeType string, mtime time.Time) {
		require.NoError(t, os.WriteFile(path, []byte(`{"type": "`+nodeType+`"}`), 0o644))
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}
	b := newTestBuilder(t, osfs.New(dir))
	ctx := context.Background()

	// --- Act / Assert ---
	write("succeed", first)
	tree, err := b.BuildTreeWithFile(ctx, "tree.json")
	require.NoError(t, err)
	assert.Equal(t, "succeed", tree.Root.Meta().Type)
	assert.Equal(t, 1, b.CachedDocuments())

	// Same size and modification time: the cached document is used.
	write("running", first)
	tree, err = b.BuildTreeWithFile(ctx, "tree.json")
	require.NoError(t, err)
	assert.Equal(t, "succeed", tree.Root.Meta().Type)

	write("running", second)
	tree, err = b.BuildTreeWithFile(ctx, "tree.json")
	require.NoError(t, err)
	assert.Equal(t, "running", tree.Root.Meta().Type)
	assert.Equal(t, 1, b.CachedDocuments())
}

func TestDocumentCache_Disabled(t *testing.T) {
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{"t.json": `{"type": "succeed"}`})
	b := newTestBuilder(t, fs, WithCacheSize(0))

	_, err := b.BuildTreeWithFile(context.Background(), "t.json")
	require.NoError(t, err)
	assert.Equal(t, 0, b.CachedDocuments())
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New(registry.New(), WithCacheSize(-1))
	assert.Error(t, err)
}

func TestExtensions(t *testing.T) {
	b := newTestBuilder(t, memfs.New())
	assert.Equal(t, []string{".hcl", ".json", ".yaml", ".yml"}, b.Extensions())
}

func TestBuilder_ConcurrentBuilds(t *testing.T) {
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{"guard.json": guardJSON})
	b := newTestBuilder(t, fs)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.BuildTreeWithFile(context.Background(), "guard.json")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestWithObserver(t *testing.T) {
	// --- Arrange ---
	var (
		mu   sync.Mutex
		seen []string
	)
	observer := func(_ context.Context, n bt.Node, status bt.Status) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, fmt.Sprintf("%s=%s", n.Meta().ID(), status))
	}
	b := newTestBuilder(t, memfs.New(), WithBlackboard(map[string]any{"enemy": true}), WithObserver(observer))
	tree, err := b.BuildTree(context.Background(), guardDocument())
	require.NoError(t, err)

	// --- Act ---
	status, err := tree.Tick(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, bt.Success, status)
	assert.Equal(t, []string{
		"guard.sequence[0].condition[0]=success",
		"guard.sequence[0].action[1]=success",
		"guard.sequence[0]=success",
		"guard=success",
	}, seen)
	assert.Equal(t, 5, tree.Size(), "observed nodes keep their children")
}

func TestBuildTreeWithFile_DefaultFilesystemAcceptsAnyPath(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "work"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "t.json"), []byte(`{"name": "outer", "root": {"type": "succeed"}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "work", "main.json"),
		[]byte(`{"name": "main", "root": {"type": "subtree", "properties": {"file": "../t.json"}}}`), 0o644))
	t.Chdir(filepath.Join(dir, "work"))

	b, err := New(newTestRegistry())
	require.NoError(t, err)
	ctx := context.Background()

	// --- Act ---
	up, upErr := b.BuildTreeWithFile(ctx, "../t.json")
	abs, absErr := b.BuildTreeWithFile(ctx, filepath.Join(dir, "t.json"))
	including, includingErr := b.BuildTreeWithFile(ctx, "main.json")

	// --- Assert ---
	require.NoError(t, upErr)
	require.NoError(t, absErr)
	require.NoError(t, includingErr)
	assert.Equal(t, "outer", up.Name)
	assert.Equal(t, up.Definition(), abs.Definition())
	assert.Equal(t, "succeed", including.Root.Meta().Type)

	resolved, err := b.ResolvePath("../t.json")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(resolved))
}

func TestBuildTreeWithFile_ExplicitFilesystemIsConfined(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "root"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "t.json"), []byte(`{"type": "succeed"}`), 0o644))
	b := newTestBuilder(t, osfs.New(filepath.Join(dir, "root")))

	_, err := b.BuildTreeWithFile(context.Background(), "../t.json")
	assert.Error(t, err)

	resolved, err := b.ResolvePath("trees/../t.json")
	require.NoError(t, err)
	assert.Equal(t, "t.json", resolved)
}

// recordingParser treats every file as a bare root node of the type it names.
type recordingParser struct {
	mu    sync.Mutex
	files []string
}

func (p *recordingParser) Parse(_ context.Context, filename string, src []byte) (map[string]any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.files = append(p.files, filename)
	return map[string]any{"type": strings.TrimSpace(string(src))}, nil
}

func TestWithParser(t *testing.T) {
	// --- Arrange ---
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{
		"leaf.txt":  "succeed\n",
		"Shout.TXT": "fail",
	})
	parser := &recordingParser{}
	b := newTestBuilder(t, fs, WithParser(".TXT", parser))
	ctx := context.Background()

	// --- Act ---
	leaf, leafErr := b.BuildTreeWithFile(ctx, "leaf.txt")
	shout, shoutErr := b.BuildTreeWithFile(ctx, "Shout.TXT")

	// --- Assert ---
	require.NoError(t, leafErr)
	require.NoError(t, shoutErr)
	assert.Equal(t, "succeed", leaf.Root.Meta().Type)
	assert.Equal(t, "fail", shout.Root.Meta().Type)
	assert.Equal(t, []string{"leaf.txt", "Shout.TXT"}, parser.files)
	assert.Equal(t, []string{".hcl", ".json", ".txt", ".yaml", ".yml"}, b.Extensions())
}
