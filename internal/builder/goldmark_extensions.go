// internal/builder/goldmark_extensions.go
package builder

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// linkTransformer rewrites link destinations: links to .md sources point at
// the generated .html, and root-relative links become absolute under the
// site URL when one is configured.
type linkTransformer struct {
	absURL func(string) string
}

func newLinkTransformer(absURL func(string) string) parser.ASTTransformer {
	return &linkTransformer{absURL: absURL}
}

func (t *linkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		link.Destination = t.rewrite(link.Destination)
		return ast.WalkContinue, nil
	})
}

func (t *linkTransformer) rewrite(dest []byte) []byte {
	path, fragment := dest, []byte(nil)
	if i := bytes.IndexByte(dest, '#'); i >= 0 {
		path, fragment = dest[:i], dest[i:]
	}
	if isExternal(path) {
		return dest
	}

	out := make([]byte, 0, len(dest)+8)
	if bytes.HasSuffix(path, []byte(".md")) {
		out = append(out, bytes.TrimSuffix(path, []byte(".md"))...)
		out = append(out, ".html"...)
	} else {
		out = append(out, path...)
	}
	if t.absURL != nil && bytes.HasPrefix(out, []byte("/")) && !bytes.HasPrefix(out, []byte("//")) {
		out = []byte(t.absURL(string(out)))
	}
	return append(out, fragment...)
}

func isExternal(dest []byte) bool {
	if bytes.HasPrefix(dest, []byte("//")) {
		return true
	}
	for i, c := range dest {
		switch {
		case c == ':':
			return i > 0
		case c == '/' || c == '?' || c == '.':
			return false
		}
	}
	return false
}
