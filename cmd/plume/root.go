// cmd/plume/root.go
package main

import (
	"fmt"
	"os"

	"github.com/DataDrake/waterlog"
	"github.com/DataDrake/waterlog/format"
	"github.com/spf13/cobra"

	"plume/internal/builder"
	"plume/internal/config"
)

const (
	contentDir  = "content"
	templateDir = "templates"
	staticDir   = "static"
	outputDir   = "public"
	storyFile   = "site.biff"
)

var (
	projectDir string
	debug      bool
	unsafe     bool
	verbose    bool
	quiet      bool

	rootCmd = &cobra.Command{
		Use:   "plume",
		Short: "A small static site publisher configured by site.yml",
		Long: `plume renders markdown content and .biff stories into a static site.

Site-wide settings (title, author, url, description, image, homepage,
seo and social) are read once from site.yml in the project directory.
A missing site.yml is fine: every setting then falls back to empty.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
)

func init() {
	rootCmd.AddCommand(cmdGen, cmdServe, cmdStory, cmdNew, cmdConfig)

	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", ".", "project directory containing "+config.FileName)
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug-level log output (same as --verbose)")
	rootCmd.PersistentFlags().BoolVar(&unsafe, "unsafe", false, "disable HTML sanitization")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "quiet output")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

func setup(_ *cobra.Command, _ []string) error {
	waterlog.SetFormat(format.Min)
	switch {
	case quiet:
		waterlog.SetLevel(0)
	case verbose || debug:
		waterlog.SetLevel(7)
	default:
		waterlog.SetLevel(6)
	}
	if projectDir != "." {
		if err := os.Chdir(projectDir); err != nil {
			return fmt.Errorf("cannot enter project directory: %w", err)
		}
	}
	return nil
}

func buildOptions() builder.BuildOptions {
	return builder.BuildOptions{Unsafe: unsafe}
}

// loadSettings reads site.yml from the project directory.
func loadSettings() (*config.Settings, error) {
	site, err := config.Load(".")
	if err != nil {
		return nil, err
	}
	if site.Source == "" {
		waterlog.Debugf("No %s found, using empty site settings\n", config.FileName)
	} else {
		waterlog.Debugf("Loaded %s (digest %.12s)\n", site.Source, site.Digest())
	}
	return site, nil
}
