// internal/builder/render.go
package builder

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
	"gopkg.in/yaml.v3"
)

var frontMatterDelim = []byte("---")

type renderer struct {
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// newRenderer builds the markdown pipeline. absURL may be nil, in which case
// root-relative links are left alone.
func newRenderer(absURL func(string) string, opts BuildOptions) *renderer {
	r := &renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Footnote),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
				parser.WithASTTransformers(
					util.Prioritized(newLinkTransformer(absURL), 100),
				),
			),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
	if !opts.Unsafe {
		r.sanitizer = bluemonday.UGCPolicy()
	}
	return r
}

// splitFrontMatter separates a leading `---` delimited YAML block from the
// body. Content without one is returned whole.
func splitFrontMatter(raw []byte) (front, body []byte) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if !bytes.HasPrefix(raw, frontMatterDelim) {
		return nil, raw
	}
	rest := raw[len(frontMatterDelim):]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 || len(bytes.TrimSpace(rest[:nl])) != 0 {
		return nil, raw
	}
	rest = rest[nl+1:]

	for off := 0; off <= len(rest); {
		line := rest[off:]
		end := bytes.IndexByte(line, '\n')
		if end < 0 {
			end = len(line)
		}
		if bytes.Equal(bytes.TrimSpace(line[:end]), frontMatterDelim) {
			front = rest[:off]
			if off+end < len(rest) {
				body = rest[off+end+1:]
			}
			return front, body
		}
		off += end + 1
	}
	return nil, raw
}

// process parses front matter and renders the body to HTML.
func (r *renderer) process(raw []byte) (PageMeta, string, error) {
	meta := PageMeta{}

	front, body := splitFrontMatter(raw)
	if front != nil {
		if err := yaml.Unmarshal(front, &meta); err != nil {
			return PageMeta{}, "", fmt.Errorf("failed to parse front matter: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return meta, "", fmt.Errorf("failed to render markdown: %w", err)
	}

	if r.sanitizer != nil {
		return meta, string(r.sanitizer.SanitizeBytes(buf.Bytes())), nil
	}
	return meta, buf.String(), nil
}
