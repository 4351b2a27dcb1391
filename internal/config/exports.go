// internal/config/exports.go
package config

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// Names of the exported configuration values, as consumed by templates and
// by `plume config`.
const (
	KeySiteName     = "SITENAME"
	KeyAuthor       = "AUTHOR"
	KeySiteURL      = "SITEURL"
	KeyDescription  = "DESCRIPTION"
	KeySiteImage    = "SITE_IMAGE"
	KeyHomepage     = "HOMEPAGE"
	KeySEO          = "SEO"
	KeySocial       = "SOCIAL"
	KeyRelativeURLs = "RELATIVE_URLS"
)

// Exports returns the flat configuration surface. The returned maps and
// slices are copies; changing them does not affect s.
func (s *Settings) Exports() map[string]any {
	return map[string]any{
		KeySiteName:     s.Site.Title,
		KeyAuthor:       s.Site.Author,
		KeySiteURL:      s.Site.URL,
		KeyDescription:  s.Site.Description,
		KeySiteImage:    s.Site.Image,
		KeyHomepage:     copyValue(s.Homepage),
		KeySEO:          copyValue(s.SEO),
		KeySocial:       copyValue(s.Social),
		KeyRelativeURLs: s.RelativeURLs,
	}
}

// Digest fingerprints the exported surface. Equal documents always produce
// equal digests.
func (s *Settings) Digest() string {
	// yaml.v3 sorts map keys, so the encoding is stable.
	out, err := yaml.Marshal(s.Exports())
	if err != nil {
		return ""
	}
	sum := blake3.Sum256(out)
	return hex.EncodeToString(sum[:])
}

// AbsURL turns a site-relative path into an absolute link under SITEURL.
// Without a SITEURL the path is returned as given.
func (s *Settings) AbsURL(rel string) string {
	base := strings.TrimRight(s.Site.URL, "/")
	if base == "" {
		return rel
	}
	return base + "/" + strings.TrimLeft(rel, "/")
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = copyValue(val)
		}
		return m
	case map[any]any:
		// Non-string keys are stringified so the surface stays JSON-encodable.
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = copyValue(val)
		}
		return m
	case []any:
		l := make([]any, len(t))
		for i, val := range t {
			l[i] = copyValue(val)
		}
		return l
	default:
		return v
	}
}
