// internal/config/config.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// FileName is the site configuration file looked up in the project root.
const FileName = "site.yml"

// SiteSettings holds the flat fields of the `site` section.
type SiteSettings struct {
	Title       string `yaml:"title"`
	Author      string `yaml:"author"`
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
}

// Document is the recognized top-level shape of site.yml. Every section is
// optional; missing sections are filled in by resolve.
type Document struct {
	Site     *SiteSettings  `yaml:"site"`
	Homepage map[string]any `yaml:"homepage"`
	SEO      map[string]any `yaml:"seo"`
	Social   []any          `yaml:"social"`
}

// Settings is the loaded configuration. It is built once by Load and must be
// treated as read-only by every consumer.
type Settings struct {
	Site     SiteSettings
	Homepage map[string]any
	SEO      map[string]any
	Social   []any

	// RelativeURLs is always false: published links are absolute.
	RelativeURLs bool

	// Source is the file the settings were read from, empty when none existed.
	Source string
}

// ParseError reports a site file that exists but could not be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("could not parse site config: %v", e.Err)
	}
	return fmt.Sprintf("could not parse site config %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	errMultipleDocuments = errors.New("expected a single YAML document")
	errInvalidUTF8       = errors.New("file is not valid UTF-8")
)

// Load reads site.yml from dir. A missing file is not an error: every
// setting then takes its empty default.
func Load(dir string) (*Settings, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile reads the site configuration at path.
func LoadFile(path string) (*Settings, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return resolve(Document{}, ""), nil
		}
		return nil, fmt.Errorf("could not stat config file at %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	doc, err := decode(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return resolve(doc, path), nil
}

// Parse builds Settings from an in-memory site document.
func Parse(data []byte) (*Settings, error) {
	doc, err := decode(data)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return resolve(doc, ""), nil
}

func decode(data []byte) (Document, error) {
	var doc Document
	if !utf8.Valid(data) {
		return Document{}, errInvalidUTF8
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return Document{}, nil
		}
		return Document{}, err
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return Document{}, err
		}
		return Document{}, errMultipleDocuments
	}

	dropDuplicateKeys(&root)
	if err := root.Decode(&doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// dropDuplicateKeys resolves repeated mapping keys to their last value, in
// the position of their first occurrence.
func dropDuplicateKeys(n *yaml.Node) {
	for _, c := range n.Content {
		dropDuplicateKeys(c)
	}
	if n.Kind != yaml.MappingNode {
		return
	}
	seen := make(map[string]int)
	kept := make([]*yaml.Node, 0, len(n.Content))
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if key.Kind == yaml.ScalarNode && key.Value != "<<" {
			if at, ok := seen[key.Value]; ok {
				kept[at+1] = val
				continue
			}
			seen[key.Value] = len(kept)
		}
		kept = append(kept, key, val)
	}
	n.Content = kept
}

func resolve(doc Document, source string) *Settings {
	s := &Settings{
		Homepage:     doc.Homepage,
		SEO:          doc.SEO,
		Social:       doc.Social,
		RelativeURLs: false,
		Source:       source,
	}
	if doc.Site != nil {
		s.Site = *doc.Site
	}
	if s.Homepage == nil {
		s.Homepage = map[string]any{}
	}
	if s.SEO == nil {
		s.SEO = map[string]any{}
	}
	if s.Social == nil {
		s.Social = []any{}
	}
	return s
}
