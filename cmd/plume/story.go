// cmd/plume/story.go
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/DataDrake/waterlog"
	"github.com/spf13/cobra"

	"plume/internal/story"
)

var (
	storyInput  string
	storyOutput string
	contentOnly bool

	cmdStory = &cobra.Command{
		Use:   "story",
		Short: "Compile a .biff story into content pages and build the site",
		Long: `Compile a .biff story into content pages and optionally build the site.

Pages go to content/ for site.biff, or content/<story name> for any other
input file, unless -o is given.`,
		Args: cobra.NoArgs,
		RunE: runStory,
	}
)

func init() {
	cmdStory.Flags().StringVarP(&storyInput, "input", "i", storyFile, "input story file (*.biff)")
	cmdStory.Flags().StringVarP(&storyOutput, "output", "o", "", "output directory for generated content")
	cmdStory.Flags().BoolVar(&contentOnly, "content-only", false, "generate content only, do not build the site")
}

// storyContentDir picks where compiled pages go when -o is not set.
func storyContentDir(input, output string) string {
	if output != "" {
		return output
	}
	if input == storyFile {
		return contentDir
	}
	base := filepath.Base(input)
	return filepath.Join(contentDir, strings.TrimSuffix(base, filepath.Ext(base)))
}

func runStory(_ *cobra.Command, _ []string) error {
	site, err := loadSettings()
	if err != nil {
		return err
	}
	dest := storyContentDir(storyInput, storyOutput)

	waterlog.Infoln("Compiling story")
	n, err := story.Compile(storyInput, dest, site)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("story file '%s' not found", storyInput)
		}
		return fmt.Errorf("biff compilation failed: %w", err)
	}
	waterlog.Infof("Story: %d knots processed into %s.\n", n, dest)
	if contentOnly {
		waterlog.Goodln("Content-only generation complete.")
		return nil
	}

	opts := buildOptions()
	opts.CleanDestination = true
	pages, err := buildSite(site, opts)
	if err != nil {
		return err
	}
	waterlog.Goodln(fmt.Sprintf("Build successful, %d pages generated.", pages))
	return nil
}
