// internal/scaffold/scaffold.go
package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/DataDrake/waterlog"

	"plume/internal/config"
	"plume/internal/util"
)

// ErrExists is returned when a scaffold target is already present.
var ErrExists = errors.New("already exists")

// CreateNewSite lays out a starter project in the directory name.
func CreateNewSite(name string) error {
	if util.PathExists(filepath.Join(name, config.FileName)) {
		return fmt.Errorf("site %s: %w", name, ErrExists)
	}
	waterlog.Infof("Scaffolding new site in: %s\n", name)

	dirs := []string{"content/posts", "static/css", "static/images", "templates/default", "archetypes"}
	for _, dir := range dirs {
		if err := os.MkdirAll(filepath.Join(name, dir), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	files := map[string]string{
		config.FileName:                 siteYmlContent,
		"site.biff":                     siteBiffContent,
		"content/index.md":              indexMdContent,
		"static/css/style.css":          staticCSSContent,
		"templates/default/layout.html": layoutHTMLContent,
		"templates/default/header.html": headerHTMLContent,
		"templates/default/footer.html": footerHTMLContent,
		"archetypes/default.md":         archetypeDefaultMdContent,
	}
	for path, content := range files {
		if err := os.WriteFile(filepath.Join(name, path), []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write file %s: %w", path, err)
		}
	}

	waterlog.Goodln("Site scaffolded.")
	waterlog.Infof("Next: cd %s, then run `plume gen` or `plume serve`\n", name)
	return nil
}

// CreateNewContent renders the default archetype into
// content/<kind>/<slug>.md under root and returns the path written.
func CreateNewContent(root string, site *config.Settings, kind, title string) (string, error) {
	slug := util.Slugify(title)
	if slug == "" {
		return "", errors.New("title must not be empty")
	}
	path := filepath.Join(root, "content", kind, slug+".md")
	if util.PathExists(path) {
		return "", fmt.Errorf("content %s: %w", path, ErrExists)
	}

	archetypePath := filepath.Join(root, "archetypes", "default.md")
	tmplSrc := archetypeDefaultMdContent
	if raw, err := os.ReadFile(archetypePath); err == nil {
		tmplSrc = string(raw)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("could not read archetype file %s: %w", archetypePath, err)
	}

	tmpl, err := template.New("archetype").Parse(tmplSrc)
	if err != nil {
		return "", fmt.Errorf("failed to parse archetype file %s: %w", archetypePath, err)
	}

	data := struct {
		Title  string
		Author string
		Site   *config.Settings
	}{
		Title:  title,
		Author: site.Site.Author,
		Site:   site,
	}

	var out bytes.Buffer
	if err := tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("failed to execute archetype template: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, out.Bytes(), 0644); err != nil {
		return "", err
	}
	return path, nil
}

const siteYmlContent = `site:
  title: My Site
  author: Your Name
  url: https://example.com
  description: A new site published with plume.
  image: /images/cover.png

homepage:
  theme: default
  intro: Welcome! Start writing in content/.

seo:
  keywords: [blog, plume]
  twitter_card: summary_large_image

# Each entry is a URL, or a mapping with url and an optional name.
social:
  - name: GitHub
    url: https://github.com/your-name
  - name: RSS
    url: /feed.xml
`

const siteBiffContent = `// title: My Enchanted Garden
// author: A. Writer
// STATES: has_water, has_seed

=== index ===
// title: Home
You are at the start.
* Go outside -> outside

=== outside ===
// title: The Great Outdoors
You are outside. This is the end.

END
`

const indexMdContent = `---
title: Home
---

Hello from plume. Edit content/index.md to change this page.
`

const archetypeDefaultMdContent = `---
title: {{ printf "%q" .Title }}
author: {{ printf "%q" .Author }}
description: ""
draft: true
---

Write something meaningful here.
`

const staticCSSContent = `body {
  font-family: sans-serif;
  max-width: 700px;
  margin: 2em auto;
  padding: 0 1em;
  line-height: 1.6;
  color: #222;
  background: #fdfdfd;
}
header { display: flex; justify-content: space-between; align-items: baseline; margin-bottom: 2em; }
.site-name { font-size: 1.2em; }
.site-name a { color: inherit; text-decoration: none; }
.author { font-size: 0.9em; color: #777; font-style: italic; }
.intro { color: #555; }
main { margin-bottom: 3em; }
footer { text-align: center; font-size: 0.9em; color: #555; }
footer nav a { color: #444; text-decoration: none; margin: 0 0.5em; }
footer nav a:hover { text-decoration: underline; }
`

const layoutHTMLContent = `{{ define "main" }}
<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{ .Title }}{{ if ne .Title .Site.Site.Title }} | {{ .Site.Site.Title }}{{ end }}</title>
  <link rel="canonical" href="{{ .Permalink }}">
  <link rel="stylesheet" href="{{ .BaseHref }}css/style.css">
  <meta name="description" content="{{ .Description }}">
  {{ if .Author }}<meta name="author" content="{{ .Author }}">{{ end }}
  {{ with .Site.SEO.keywords }}<meta name="keywords" content="{{ range $i, $k := . }}{{ if $i }}, {{ end }}{{ $k }}{{ end }}">{{ end }}
  <meta property="og:title" content="{{ .Title }}">
  <meta property="og:description" content="{{ .Description }}">
  <meta property="og:url" content="{{ .Permalink }}">
  {{ with .Image }}<meta property="og:image" content="{{ $.Site.AbsURL . }}">{{ end }}
  {{ with .Site.SEO.twitter_card }}<meta name="twitter:card" content="{{ . }}">{{ end }}
{{ if .ShowEditML }}
<style>
  .cm-add { background-color: #d4edda; color: #155724; }
  .cm-del { background-color: #f8d7da; color: #721c24; text-decoration: line-through; }
</style>
{{ end }}
</head>
<body>
  {{ template "header" . }}
  <main>
    {{ if .IsHome }}{{ with .Site.Homepage.intro }}<p class="intro">{{ . }}</p>{{ end }}{{ end }}
    {{ .Content }}
  </main>
  {{ template "footer" . }}
</body>
</html>
{{ end }}`

const headerHTMLContent = `{{ define "header" }}
<header>
  <div class="site-name"><a href="{{ .BaseHref }}index.html">{{ if .StoryTitle }}{{ .StoryTitle }}{{ else }}{{ .Site.Site.Title }}{{ end }}</a></div>
  {{ if .Author }}<div class="author">{{ .Author }}</div>{{ end }}
</header>
{{ end }}`

const footerHTMLContent = `{{ define "footer" }}
<footer>
  <nav>
    <a href="{{ .BaseHref }}index.html">home</a>
    {{ range .Site.Social }}{{ with socialLink . }}{{ if .URL }}<a href="{{ .URL }}">{{ .Name }}</a>{{ end }}{{ end }}{{ end }}
  </nav>
  <div class="copyright">&copy; {{ .Site.Site.Author }}</div>
</footer>
{{ end }}`
