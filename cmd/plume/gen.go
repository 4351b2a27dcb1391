// cmd/plume/gen.go
package main

import (
	"fmt"

	"github.com/DataDrake/waterlog"
	"github.com/spf13/cobra"

	"plume/internal/builder"
	"plume/internal/config"
)

var cmdGen = &cobra.Command{
	Use:   "gen",
	Short: "Generate the site from existing content",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		site, err := loadSettings()
		if err != nil {
			return err
		}
		opts := buildOptions()
		opts.CleanDestination = true

		waterlog.Infoln("Generating site from content")
		n, err := buildSite(site, opts)
		if err != nil {
			return err
		}
		waterlog.Goodln(fmt.Sprintf("Generated %d pages.", n))
		return nil
	},
}

// buildSite loads the configured theme and renders content into outputDir.
func buildSite(site *config.Settings, opts builder.BuildOptions) (int, error) {
	tmpl, err := builder.LoadTemplates(templateDir, builder.ThemeFor(site))
	if err != nil {
		return 0, fmt.Errorf("failed to load templates: %w", err)
	}
	n, err := builder.BuildSite(outputDir, contentDir, staticDir, site, tmpl, opts)
	if err != nil {
		return 0, fmt.Errorf("site generation failed: %w", err)
	}
	return n, nil
}
