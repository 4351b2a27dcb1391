// internal/builder/builder.go
package builder

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/DataDrake/waterlog"
	"github.com/charlievieth/fastwalk"

	"plume/internal/config"
	"plume/internal/util"
)

// DefaultTheme is used when site.yml does not name one under homepage.theme.
const DefaultTheme = "default"

type BuildOptions struct {
	CleanDestination bool
	Unsafe           bool
}

// staticExts lists the file extensions copied from the static directory.
var staticExts = map[string]bool{
	".css": true, ".js": true, ".txt": true, ".svg": true, ".ico": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	".woff": true, ".woff2": true,
}

// BuildSite renders every content page into outputDir and copies static
// assets. It returns the number of pages written.
func BuildSite(outputDir, contentDir, staticDir string, site *config.Settings, tmpl *template.Template, opts BuildOptions) (int, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, err
	}

	if opts.CleanDestination {
		waterlog.Infoln("Cleaning destination directory...")
		entries, err := os.ReadDir(outputDir)
		if err != nil {
			return 0, err
		}
		for _, entry := range entries {
			if err := os.RemoveAll(filepath.Join(outputDir, entry.Name())); err != nil {
				return 0, err
			}
		}
	}

	var absURL func(string) string
	if !site.RelativeURLs && site.Site.URL != "" {
		absURL = site.AbsURL
	}
	r := newRenderer(absURL, opts)

	var pages atomic.Int64
	if util.PathExists(contentDir) {
		conf := fastwalk.Config{Follow: false}
		err := fastwalk.Walk(&conf, contentDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.Type().IsRegular() {
				return nil
			}
			ext := filepath.Ext(d.Name())
			if ext != ".html" && ext != ".md" {
				return nil
			}
			relPath, err := filepath.Rel(contentDir, path)
			if err != nil {
				return err
			}
			written, err := buildPage(r, path, relPath, outputDir, site, tmpl)
			if err != nil {
				return err
			}
			if written {
				pages.Add(1)
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
	}

	if err := copyStaticAssets(staticDir, outputDir); err != nil {
		return 0, err
	}
	return int(pages.Load()), nil
}

func buildPage(r *renderer, path, relPath, outputDir string, site *config.Settings, tmpl *template.Template) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if !utf8.Valid(raw) {
		return false, fmt.Errorf("content file is not valid UTF-8: %s", path)
	}

	meta, htmlOut, err := r.process(raw)
	if err != nil {
		return false, fmt.Errorf("failed to process content for %s: %w", path, err)
	}

	slug := strings.TrimSuffix(relPath, filepath.Ext(relPath))
	if meta.Draft && !isExceptionPage(slug) {
		waterlog.Debugf("Skipping draft %s\n", relPath)
		return false, nil
	}

	outRel := slug + ".html"
	outputPath := filepath.Join(outputDir, outRel)
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return false, err
	}

	data := newPageData(meta, htmlOut, outRel, site)
	if err := renderPage(tmpl, outputPath, data); err != nil {
		return false, fmt.Errorf("failed to render page %s: %w", path, err)
	}
	waterlog.Debugf("Rendered %s\n", outputPath)
	return true, nil
}

// newPageData fills page fields, falling back to the site settings for
// anything the front matter leaves empty.
func newPageData(meta PageMeta, htmlOut, outRel string, site *config.Settings) PageData {
	urlPath := filepath.ToSlash(outRel)
	data := PageData{
		Content:     template.HTML(htmlOut),
		Title:       meta.Title,
		Author:      meta.Author,
		Description: meta.Description,
		Image:       meta.Image,
		ShowEditML:  meta.ShowEditML,
		StoryTitle:  meta.StoryTitle,
		IsHome:      urlPath == "index.html",
		Site:        site,
		Params:      meta.Params,
	}

	if !site.RelativeURLs && site.Site.URL != "" {
		data.BaseHref = site.AbsURL("")
		if !strings.HasSuffix(data.BaseHref, "/") {
			data.BaseHref += "/"
		}
		data.Permalink = site.AbsURL(urlPath)
	} else {
		data.BaseHref = util.ComputeBaseHref(outRel)
		data.Permalink = urlPath
	}

	if meta.StoryAuthor != "" {
		data.Author = meta.StoryAuthor
	}
	if data.Author == "" {
		data.Author = site.Site.Author
	}
	if data.Description == "" {
		data.Description = site.Site.Description
	}
	if data.Image == "" {
		data.Image = site.Site.Image
	}
	if data.Title == "" {
		data.Title = site.Site.Title
	}
	return data
}

// copyStaticAssets copies whitelisted files from staticDir into outputDir.
func copyStaticAssets(staticDir, outputDir string) error {
	if !util.PathExists(staticDir) {
		return nil
	}
	conf := fastwalk.Config{Follow: false}
	return fastwalk.Walk(&conf, staticDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || !staticExts[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}
		rel, err := filepath.Rel(staticDir, path)
		if err != nil {
			return err
		}
		return copyFile(path, filepath.Join(outputDir, rel))
	})
}

func copyFile(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// isExceptionPage reports pages that are published even when marked draft.
func isExceptionPage(slug string) bool {
	slug = filepath.ToSlash(slug)
	return slug == "index" || slug == "about" || slug == "404"
}

// renderPage executes the "main" template into outPath.
func renderPage(tmpl *template.Template, outPath string, data PageData) error {
	outFile, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := tmpl.ExecuteTemplate(outFile, "main", data); err != nil {
		outFile.Close()
		return err
	}
	return outFile.Close()
}

// ThemeFor picks the template theme: homepage.theme when it is a non-empty
// string, DefaultTheme otherwise.
func ThemeFor(site *config.Settings) string {
	if theme, ok := site.Homepage["theme"].(string); ok && theme != "" {
		return theme
	}
	return DefaultTheme
}

// SocialLink is a social entry reduced to something a theme can render.
type SocialLink struct {
	Name string
	URL  string
}

// socialLink accepts any shape of social entry: a bare URL string, or a
// mapping with url and an optional name. Anything else yields an empty link.
func socialLink(entry any) SocialLink {
	var link SocialLink
	switch e := entry.(type) {
	case string:
		link.URL = e
	case map[string]any:
		link.URL, _ = e["url"].(string)
		link.Name, _ = e["name"].(string)
	case map[any]any:
		link.URL, _ = e["url"].(string)
		link.Name, _ = e["name"].(string)
	}
	if link.Name == "" {
		link.Name = link.URL
	}
	return link
}

var templateFuncs = template.FuncMap{
	"socialLink": socialLink,
}

// LoadTemplates parses the layout, header and footer of a theme.
func LoadTemplates(templateDir, theme string) (*template.Template, error) {
	path := filepath.Join(templateDir, theme)
	tmpl, err := template.New("layout.html").Funcs(templateFuncs).ParseFiles(
		filepath.Join(path, "layout.html"),
		filepath.Join(path, "header.html"),
		filepath.Join(path, "footer.html"),
	)
	if err != nil {
		return nil, fmt.Errorf("could not load theme %q: %w", theme, err)
	}
	return tmpl, nil
}
