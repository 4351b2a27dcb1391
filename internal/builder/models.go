// internal/builder/models.go
package builder

import (
	"html/template"

	"plume/internal/config"
)

// PageMeta is the front matter of a content file. Unknown keys land in Params.
type PageMeta struct {
	Title       string         `yaml:"title"`
	Author      string         `yaml:"author"`
	Draft       bool           `yaml:"draft"`
	Description string         `yaml:"description"`
	Image       string         `yaml:"image"`
	ShowEditML  bool           `yaml:"showEditML"`
	StoryTitle  string         `yaml:"story_title"`
	StoryAuthor string         `yaml:"story_author"`
	Params      map[string]any `yaml:",inline"`
}

// PageData is what the "main" template is executed with.
type PageData struct {
	Content     template.HTML
	Title       string
	BaseHref    string
	Permalink   string
	Author      string
	Description string
	Image       string
	ShowEditML  bool
	StoryTitle  string
	IsHome      bool
	Site        *config.Settings
	Params      map[string]any
}
