package util

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ComputeBaseHref calculates the relative path to the site root
// so that CSS/JS links work correctly for pages at any depth.
// For example, a page at posts/a/b.html would get a BaseHref of "../../".
func ComputeBaseHref(relPath string) string {
	dir := filepath.Dir(relPath)
	if dir == "." {
		return ""
	}
	depth := strings.Count(dir, string(os.PathSeparator)) + 1
	return strings.Repeat("../", depth)
}

// PathExists reports whether path can be stat'ed.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// Slugify lowercases s and joins its words with dashes.
func Slugify(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}
