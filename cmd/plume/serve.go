// cmd/plume/serve.go
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/DataDrake/waterlog"
	"github.com/spf13/cobra"

	"plume/internal/builder"
	"plume/internal/config"
	"plume/internal/server"
	"plume/internal/story"
)

var port int

var cmdServe = &cobra.Command{
	Use:   "serve",
	Short: "Run a local dev server with auto-rebuild",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		watch := []string{contentDir, templateDir, staticDir, config.FileName, storyFile}
		return server.Run(port, outputDir, watch, newRebuilder().build, buildOptions())
	},
}

func init() {
	cmdServe.Flags().IntVarP(&port, "port", "p", 1313, "port for the local development server")
}

// rebuilder performs full builds for the dev server. Every build reads
// site.yml again into a fresh Settings value.
type rebuilder struct {
	digest string
}

func newRebuilder() *rebuilder { return &rebuilder{} }

func (r *rebuilder) build(opts builder.BuildOptions) error {
	site, err := loadSettings()
	if err != nil {
		return err
	}
	if d := site.Digest(); d != r.digest {
		if r.digest != "" {
			waterlog.Infof("%s changed, using new settings\n", config.FileName)
		}
		r.digest = d
	}

	n, err := story.Compile(storyFile, contentDir, site)
	switch {
	case errors.Is(err, os.ErrNotExist):
		waterlog.Debugf("No %s found, skipping story compilation\n", storyFile)
	case err != nil:
		return fmt.Errorf("biff compilation failed: %w", err)
	default:
		waterlog.Infof("Story: %d knots processed.\n", n)
	}

	pages, err := buildSite(site, opts)
	if err != nil {
		return err
	}
	waterlog.Infof("Site: %d pages generated.\n", pages)
	return nil
}
