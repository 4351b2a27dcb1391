package scaffold

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"plume/internal/builder"
	"plume/internal/config"
)

func TestCreateNewSiteBuilds(t *testing.T) {
	root := filepath.Join(t.TempDir(), "mysite")
	require.NoError(t, CreateNewSite(root))

	site, err := config.Load(root)
	require.NoError(t, err)
	require.Equal(t, "My Site", site.Site.Title)
	require.Equal(t, "Your Name", site.Site.Author)
	require.Len(t, site.Social, 2)
	require.Equal(t, "default", builder.ThemeFor(site))

	tmpl, err := builder.LoadTemplates(filepath.Join(root, "templates"), builder.ThemeFor(site))
	require.NoError(t, err)

	out := filepath.Join(root, "public")
	n, err := builder.BuildSite(out, filepath.Join(root, "content"), filepath.Join(root, "static"), site, tmpl, builder.BuildOptions{CleanDestination: true})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	index, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(index), `<link rel="canonical" href="https://example.com/index.html">`)
	require.Contains(t, string(index), `<meta property="og:image" content="https://example.com/images/cover.png">`)
	require.Contains(t, string(index), `<p class="intro">Welcome! Start writing in content/.</p>`)
	require.Contains(t, string(index), `<a href="https://github.com/your-name">GitHub</a>`)
	require.FileExists(t, filepath.Join(out, "css", "style.css"))
}

func TestScaffoldThemeRendersAnySocialShape(t *testing.T) {
	root := filepath.Join(t.TempDir(), "mysite")
	require.NoError(t, CreateNewSite(root))

	site, err := config.Parse([]byte("site:\n  title: Notes\nsocial:\n  - https://x.example/me\n  - name: GitHub\n    url: https://github.com/ex\n  - 42\n  - [nested]\n"))
	require.NoError(t, err)

	tmpl, err := builder.LoadTemplates(filepath.Join(root, "templates"), builder.ThemeFor(site))
	require.NoError(t, err)

	out := filepath.Join(root, "public")
	_, err = builder.BuildSite(out, filepath.Join(root, "content"), filepath.Join(root, "static"), site, tmpl, builder.BuildOptions{})
	require.NoError(t, err)

	index, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(index), `<a href="https://x.example/me">https://x.example/me</a>`)
	require.Contains(t, string(index), `<a href="https://github.com/ex">GitHub</a>`)
}

func TestCreateNewSiteRefusesExisting(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, config.FileName), nil, 0644))
	err := CreateNewSite(root)
	require.True(t, errors.Is(err, ErrExists))
}

func TestCreateNewContent(t *testing.T) {
	root := t.TempDir()
	site, err := config.Parse([]byte("site:\n  author: Ada \"The Countess\"\n"))
	require.NoError(t, err)

	path, err := CreateNewContent(root, site, "posts", "My First Post")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "content", "posts", "my-first-post.md"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	parts := splitFront(t, raw)
	var fm map[string]any
	require.NoError(t, yaml.Unmarshal(parts, &fm))
	require.Equal(t, "My First Post", fm["title"])
	require.Equal(t, `Ada "The Countess"`, fm["author"])
	require.Equal(t, true, fm["draft"])

	_, err = CreateNewContent(root, site, "posts", "My First Post")
	require.True(t, errors.Is(err, ErrExists))

	_, err = CreateNewContent(root, site, "posts", "   ")
	require.Error(t, err)
}

func TestCreateNewContentUsesProjectArchetype(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "archetypes"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "archetypes", "default.md"), []byte("# {{ .Title }} for {{ .Site.Site.Title }}\n"), 0644))

	site, err := config.Parse([]byte("site:\n  title: Notes\n"))
	require.NoError(t, err)

	path, err := CreateNewContent(root, site, "notes", "Hello")
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "# Hello for Notes\n", string(raw))
}

func splitFront(t *testing.T, raw []byte) []byte {
	t.Helper()
	const delim = "---\n"
	s := string(raw)
	require.True(t, len(s) > len(delim) && s[:len(delim)] == delim)
	rest := s[len(delim):]
	end := -1
	for i := 0; i+len(delim) <= len(rest); i++ {
		if rest[i:i+len(delim)] == delim && (i == 0 || rest[i-1] == '\n') {
			end = i
			break
		}
	}
	require.GreaterOrEqual(t, end, 0)
	return []byte(rest[:end])
}
