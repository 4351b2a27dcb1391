package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"plume/internal/config"
)

const testLayout = `{{ define "main" }}<html><head><title>{{ .Title }} | {{ .Site.Site.Title }}</title>
<link rel="canonical" href="{{ .Permalink }}">
<base href="{{ .BaseHref }}">
{{ with .Site.SEO.keywords }}<meta name="keywords" content="{{ range $i, $k := . }}{{ if $i }},{{ end }}{{ $k }}{{ end }}">{{ end }}
</head><body>{{ template "header" . }}{{ .Content }}{{ template "footer" . }}</body></html>{{ end }}`

const testHeader = `{{ define "header" }}<header>{{ .Author }}|{{ .Description }}</header>{{ end }}`

const testFooter = `{{ define "footer" }}<footer>{{ range .Site.Social }}<a href="{{ .url }}">{{ .name }}</a>{{ end }}</footer>{{ end }}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func setupProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	theme := filepath.Join(root, "templates", DefaultTheme)
	writeFile(t, filepath.Join(theme, "layout.html"), testLayout)
	writeFile(t, filepath.Join(theme, "header.html"), testHeader)
	writeFile(t, filepath.Join(theme, "footer.html"), testFooter)

	writeFile(t, filepath.Join(root, "content", "index.md"), "---\ntitle: Home\n---\nWelcome, see [the post](posts/first.md).\n")
	writeFile(t, filepath.Join(root, "content", "posts", "first.md"), "---\ntitle: First\nauthor: Guest\n---\n# Hello\n\n[about](/about.md)\n")
	writeFile(t, filepath.Join(root, "content", "posts", "wip.md"), "---\ntitle: WIP\ndraft: true\n---\nnot yet\n")
	writeFile(t, filepath.Join(root, "content", "notes.txt"), "ignored")
	writeFile(t, filepath.Join(root, "static", "css", "style.css"), "body{}")
	writeFile(t, filepath.Join(root, "static", "secret.env"), "nope")
	return root
}

func loadSettings(t *testing.T, doc string) *config.Settings {
	t.Helper()
	s, err := config.Parse([]byte(doc))
	require.NoError(t, err)
	return s
}

func TestBuildSite(t *testing.T) {
	root := setupProject(t)
	site := loadSettings(t, `site:
  title: Field Notes
  author: Ada
  url: https://notes.example.com
  description: Site description
seo:
  keywords: [go, notes]
social:
  - name: GitHub
    url: https://github.com/example
`)

	tmpl, err := LoadTemplates(filepath.Join(root, "templates"), ThemeFor(site))
	require.NoError(t, err)

	out := filepath.Join(root, "public")
	n, err := BuildSite(out, filepath.Join(root, "content"), filepath.Join(root, "static"), site, tmpl, BuildOptions{CleanDestination: true})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	index, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(index), "<title>Home | Field Notes</title>")
	require.Contains(t, string(index), `href="https://notes.example.com/index.html"`)
	require.Contains(t, string(index), `<base href="https://notes.example.com/">`)
	require.Contains(t, string(index), `content="go,notes"`)
	require.Contains(t, string(index), `href="posts/first.html"`)
	require.Contains(t, string(index), "<header>Ada|Site description</header>")
	require.Contains(t, string(index), `<a href="https://github.com/example">GitHub</a>`)

	post, err := os.ReadFile(filepath.Join(out, "posts", "first.html"))
	require.NoError(t, err)
	require.Contains(t, string(post), "<header>Guest|Site description</header>")
	require.Contains(t, string(post), `href="https://notes.example.com/about.html"`)

	require.NoFileExists(t, filepath.Join(out, "posts", "wip.html"))
	require.NoFileExists(t, filepath.Join(out, "notes.html"))
	require.FileExists(t, filepath.Join(out, "css", "style.css"))
	require.NoFileExists(t, filepath.Join(out, "secret.env"))
}

func TestBuildSiteWithoutSiteURL(t *testing.T) {
	root := setupProject(t)
	site := loadSettings(t, "")

	tmpl, err := LoadTemplates(filepath.Join(root, "templates"), ThemeFor(site))
	require.NoError(t, err)

	out := filepath.Join(root, "public")
	_, err = BuildSite(out, filepath.Join(root, "content"), filepath.Join(root, "static"), site, tmpl, BuildOptions{})
	require.NoError(t, err)

	post, err := os.ReadFile(filepath.Join(out, "posts", "first.html"))
	require.NoError(t, err)
	require.Contains(t, string(post), `<base href="../">`)
	require.Contains(t, string(post), `href="/about.html"`)
}

func TestBuildSiteCleansDestination(t *testing.T) {
	root := setupProject(t)
	site := loadSettings(t, "")
	tmpl, err := LoadTemplates(filepath.Join(root, "templates"), DefaultTheme)
	require.NoError(t, err)

	out := filepath.Join(root, "public")
	writeFile(t, filepath.Join(out, "stale.html"), "old")

	_, err = BuildSite(out, filepath.Join(root, "content"), filepath.Join(root, "static"), site, tmpl, BuildOptions{CleanDestination: true})
	require.NoError(t, err)
	require.NoFileExists(t, filepath.Join(out, "stale.html"))
}

func TestBuildSiteMissingContent(t *testing.T) {
	root := setupProject(t)
	site := loadSettings(t, "")
	tmpl, err := LoadTemplates(filepath.Join(root, "templates"), DefaultTheme)
	require.NoError(t, err)

	n, err := BuildSite(filepath.Join(root, "public"), filepath.Join(root, "nothing"), filepath.Join(root, "nostatic"), site, tmpl, BuildOptions{})
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestThemeFor(t *testing.T) {
	require.Equal(t, DefaultTheme, ThemeFor(loadSettings(t, "")))
	require.Equal(t, "paper", ThemeFor(loadSettings(t, "homepage:\n  theme: paper\n")))
	require.Equal(t, DefaultTheme, ThemeFor(loadSettings(t, "homepage:\n  theme: [a]\n")))
}

func TestLoadTemplatesMissingTheme(t *testing.T) {
	_, err := LoadTemplates(t.TempDir(), "absent")
	require.Error(t, err)
	require.Contains(t, err.Error(), `"absent"`)
}

func TestSocialLink(t *testing.T) {
	require.Equal(t, SocialLink{Name: "https://x.example", URL: "https://x.example"}, socialLink("https://x.example"))
	require.Equal(t, SocialLink{Name: "GitHub", URL: "https://github.com/ex"}, socialLink(map[string]any{"name": "GitHub", "url": "https://github.com/ex"}))
	require.Equal(t, SocialLink{Name: "https://m.example", URL: "https://m.example"}, socialLink(map[any]any{"url": "https://m.example", 1: "x"}))
	require.Equal(t, SocialLink{}, socialLink(42))
	require.Equal(t, SocialLink{}, socialLink(nil))
	require.Equal(t, SocialLink{}, socialLink(map[string]any{"name": "No URL"}))
}
