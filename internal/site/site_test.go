package site

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kiln/internal/compiler"
	"github.com/roach88/kiln/internal/config"
	"github.com/roach88/kiln/internal/engine"
	"github.com/roach88/kiln/internal/item"
	"github.com/roach88/kiln/internal/resource"
)

func newProvider(t *testing.T, files map[string]string) *resource.Provider {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	p, err := resource.New(root, nil)
	require.NoError(t, err)
	return p
}

func ruleIDs(rules []compiler.Rule) []item.ID {
	out := make([]item.ID, len(rules))
	for i, r := range rules {
		out[i] = r.ID()
	}
	return out
}

func TestPopulate(t *testing.T) {
	p := newProvider(t, map[string]string{
		"posts/a.md": "A",
		"posts/b.md": "B",
		"about.md":   "about",
	})
	cfg := &config.Config{Rules: []config.Rule{
		{Match: "posts/*.md", Route: "ext:.html", Metadata: map[string]string{"section": "posts"}},
		{Match: "*.md", Route: "identity"},
		{Match: "posts/*.md", Version: "raw", Route: "none"},
		{Create: "index.html", Compiler: "index", Pattern: "posts/*.md", Route: "identity"},
	}}

	rules, err := Populate(cfg, nil)(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, []item.ID{
		item.New("posts/a.md"),
		item.New("posts/b.md"),
		item.New("about.md"),
		item.New("posts/a.md").WithVersion("raw"),
		item.New("posts/b.md").WithVersion("raw"),
		item.New("index.html"),
	}, ruleIDs(rules))

	assert.Equal(t, map[string]string{"section": "posts"}, rules[0].Data)
	assert.Equal(t, compiler.Copy{}, rules[0].Compiler)
	dest, ok := rules[0].Route(rules[0].ID(), rules[0].Data)
	assert.True(t, ok)
	assert.Equal(t, "posts/a.html", dest)

	res, isSource := rules[3].Item.Resource()
	assert.True(t, isSource)
	assert.Equal(t, "posts/a.md", res)

	_, isSource = rules[5].Item.Resource()
	assert.False(t, isSource)
	assert.Equal(t, compiler.Index{Pattern: "posts/*.md"}, rules[5].Compiler)
}

func TestPopulate_FirstRuleClaimsResource(t *testing.T) {
	p := newProvider(t, map[string]string{"a.md": "A"})
	cfg := &config.Config{Rules: []config.Rule{
		{Match: "*.md", Route: "ext:.html"},
		{Match: "a.*", Route: "identity"},
	}}

	rules, err := Populate(cfg, nil)(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, rules, 1)

	dest, _ := rules[0].Route(rules[0].ID(), nil)
	assert.Equal(t, "a.html", dest)
}

func TestPopulate_MetadataIsNotShared(t *testing.T) {
	p := newProvider(t, map[string]string{"a.md": "A", "b.md": "B"})
	cfg := &config.Config{Rules: []config.Rule{{Match: "*.md", Metadata: map[string]string{"k": "v"}}}}

	rules, err := Populate(cfg, nil)(context.Background(), p)
	require.NoError(t, err)
	rules[0].Data.(map[string]string)["k"] = "changed"
	assert.Equal(t, "v", rules[1].Data.(map[string]string)["k"])
}

func TestPopulate_ExpandRouteAppliesToExpandedItems(t *testing.T) {
	p := newProvider(t, nil)
	cfg := &config.Config{Rules: []config.Rule{
		{Create: "raw", Compiler: "expand", Pattern: "posts/*", Version: "raw", Route: "ext:.txt"},
	}}

	rules, err := Populate(cfg, nil)(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, item.New("raw"), rules[0].ID())
	assert.Nil(t, rules[0].Route)

	exp, ok := rules[0].Compiler.(compiler.Expand)
	require.True(t, ok)
	assert.Equal(t, "raw", exp.Version)
	dest, _ := exp.Route(item.New("posts/a.md"), nil)
	assert.Equal(t, "posts/a.txt", dest)
}

func TestCompiler(t *testing.T) {
	c, err := Compiler(config.Rule{Compiler: "concat", Pattern: "*.md", From: "raw", Separator: ","})
	require.NoError(t, err)
	assert.Equal(t, compiler.Concat{Pattern: "*.md", Version: "raw", Separator: ","}, c)

	_, err = Compiler(config.Rule{Compiler: "nope"})
	assert.ErrorContains(t, err, "unknown compiler")
}

// A whole site built from a YAML configuration, twice.
func TestBuildFromConfig(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"kiln.yaml": `
rules:
  - match: "posts/*.md"
    route: "ext:.html"
  - create: all.txt
    compiler: concat
    pattern: "posts/*.md"
    separator: "\n"
  - create: index.html
    compiler: index
    pattern: "posts/*.md"
`,
		"posts/a.md":    "alpha",
		"posts/b.md":    "beta",
		".hidden":       "x",
		"posts/a.md~":   "backup",
		"drafts/wip.md": "wip",
	}
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	cfg, err := config.Load(filepath.Join(dir, "kiln.yaml"))
	require.NoError(t, err)
	eng := engine.New(cfg.Engine(), Populate(cfg, nil))

	report, err := eng.Run(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"posts/a.html", "posts/b.html", "all.txt", "index.html"}, report.Written)

	all, err := os.ReadFile(filepath.Join(cfg.DestinationDir(), "all.txt"))
	require.NoError(t, err)
	assert.Equal(t, "alpha\nbeta", string(all))

	index, err := os.ReadFile(filepath.Join(cfg.DestinationDir(), "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<ul>\n<li><a href=\"/posts/a.html\">posts/a.md</a></li>\n<li><a href=\"/posts/b.html\">posts/b.md</a></li>\n</ul>\n", string(index))

	again, err := eng.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, again.Written)
	assert.Empty(t, again.Modified)
}
