// internal/story/story.go
package story

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/verkaro/bigif/bigif"
	"github.com/verkaro/editml-go"
	"gopkg.in/yaml.v3"

	"plume/internal/config"
)

var (
	knotHeader   = regexp.MustCompile(`^===\s*([\w-]+)\s*===$`)
	nonSlugChars = regexp.MustCompile(`[^\w- ]+`)
	dashRuns     = regexp.MustCompile(`-+`)
)

// knotMeta maps a knot name to the `// key: value` comments under its header.
type knotMeta map[string]map[string]string

// frontMatter is written at the top of every generated page.
type frontMatter struct {
	Title       string            `yaml:"title"`
	StoryTitle  string            `yaml:"story_title,omitempty"`
	StoryAuthor string            `yaml:"story_author,omitempty"`
	Draft       bool              `yaml:"draft"`
	Extra       map[string]string `yaml:",inline"`
}

// scanKnotMeta collects per-knot metadata comments from the raw story source.
func scanKnotMeta(src []byte) (knotMeta, error) {
	meta := make(knotMeta)
	var current string

	scanner := bufio.NewScanner(bytes.NewReader(src))
	for scanner.Scan() {
		line := strings.TrimFunc(scanner.Text(), unicode.IsSpace)

		if m := knotHeader.FindStringSubmatch(line); m != nil {
			current = m[1]
			if meta[current] == nil {
				meta[current] = make(map[string]string)
			}
			continue
		}
		if current == "" || !strings.HasPrefix(line, "//") {
			continue
		}
		key, value, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, "//")), ":")
		if !ok {
			continue
		}
		meta[current][strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return meta, nil
}

// cleanKnotBody resolves EditML markup into plain markdown.
func cleanKnotBody(raw string) (string, error) {
	nodes, issues := editml.Parse(raw)
	if len(issues) > 0 && issues[0].Severity == editml.SeverityError {
		return "", fmt.Errorf("editml parsing error: %s", issues[0].Message)
	}
	clean, issues := editml.TransformCleanView(nodes)
	if len(issues) > 0 && issues[0].Severity == editml.SeverityError {
		return "", fmt.Errorf("editml transformation error: %s", issues[0].Message)
	}
	return clean, nil
}

// splitTitle picks a knot's page title and returns its body without the
// first level-one heading. A `// title:` comment wins over the heading, and
// the knot name is the last resort.
func splitTitle(knotName, content string, meta map[string]string) (string, string) {
	title := meta["title"]
	var heading string
	var lines []string

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimFunc(line, unicode.IsSpace)
		if strings.HasPrefix(trimmed, "# ") {
			if heading == "" {
				heading = strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
			}
			continue
		}
		lines = append(lines, line)
	}
	body := strings.TrimSpace(strings.Join(lines, "\n"))

	if title == "" {
		title = heading
	}
	if title == "" {
		title = titleCase(strings.ReplaceAll(knotName, "_", " "))
	}
	return title, body
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// Compile turns a .biff story into one markdown page per knot under
// contentDir and returns the number of pages written. When the story has no
// author of its own, the site author is used.
func Compile(biffPath, contentDir string, site *config.Settings) (int, error) {
	src, err := os.ReadFile(biffPath)
	if err != nil {
		return 0, err
	}

	meta, err := scanKnotMeta(src)
	if err != nil {
		return 0, fmt.Errorf("failed to scan story metadata: %w", err)
	}

	compiled, err := bigif.Compile(string(src))
	if err != nil {
		return 0, fmt.Errorf("biff syntax error: %w", err)
	}

	var story struct {
		Metadata map[string]string `json:"metadata"`
		Graph    struct {
			Nodes map[string]*bigif.StoryNode `json:"nodes"`
		} `json:"graph"`
	}
	if err := json.Unmarshal(compiled, &story); err != nil {
		return 0, fmt.Errorf("failed to decode compiled story: %w", err)
	}

	storyTitle := story.Metadata["title"]
	storyAuthor := story.Metadata["author"]
	if storyAuthor == "" {
		storyAuthor = site.Site.Author
	}

	paths := pagePaths(story.Graph.Nodes, contentDir)
	written := 0
	for id, node := range story.Graph.Nodes {
		km := meta[node.KnotName]
		title, raw := splitTitle(node.KnotName, node.Content, km)

		body, err := cleanKnotBody(raw)
		if err != nil {
			return written, fmt.Errorf("failed to process knot %s: %w", node.KnotName, err)
		}

		var page bytes.Buffer
		fm := frontMatter{
			Title:       title,
			StoryTitle:  storyTitle,
			StoryAuthor: storyAuthor,
			Extra:       make(map[string]string),
		}
		for k, v := range km {
			if k != "title" && k != "draft" && k != "story_title" && k != "story_author" {
				fm.Extra[k] = v
			}
		}
		if err := writeFrontMatter(&page, fm); err != nil {
			return written, err
		}

		fmt.Fprintf(&page, "## %s\n\n%s\n\n", title, body)
		for _, edge := range node.Edges {
			rel, err := filepath.Rel(filepath.Dir(paths[id]), paths[edge.TargetNodeID])
			if err != nil {
				return written, err
			}
			fmt.Fprintf(&page, "* [%s](%s)\n", edge.Text, filepath.ToSlash(rel))
		}

		if err := os.MkdirAll(filepath.Dir(paths[id]), 0755); err != nil {
			return written, fmt.Errorf("failed to create directory for story page: %w", err)
		}
		if err := os.WriteFile(paths[id], page.Bytes(), 0644); err != nil {
			return written, fmt.Errorf("failed to write story page %s: %w", paths[id], err)
		}
		written++
	}
	return written, nil
}

func writeFrontMatter(w io.Writer, fm frontMatter) error {
	out, err := yaml.Marshal(fm)
	if err != nil {
		return fmt.Errorf("failed to encode front matter: %w", err)
	}
	if _, err := fmt.Fprintf(w, "---\n%s---\n", out); err != nil {
		return err
	}
	return nil
}

// pagePaths assigns every node a file: scene segments become directories and
// active state flags are appended to the knot name.
func pagePaths(nodes map[string]*bigif.StoryNode, outDir string) map[string]string {
	paths := make(map[string]string, len(nodes))
	for id, node := range nodes {
		dirs := []string{outDir}
		if node.Scene != "" {
			for _, seg := range strings.Split(node.Scene, "/") {
				dirs = append(dirs, slug(seg))
			}
		}
		var flags []string
		for k, on := range node.State {
			if on {
				flags = append(flags, slug(k))
			}
		}
		sort.Strings(flags)
		name := strings.Join(append([]string{slug(node.KnotName)}, flags...), "-") + ".md"
		paths[id] = filepath.Join(append(dirs, name)...)
	}
	return paths
}

func slug(s string) string {
	s = strings.ToLower(s)
	s = nonSlugChars.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " ", "-")
	return dashRuns.ReplaceAllString(s, "-")
}
