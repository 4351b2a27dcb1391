// cmd/plume/config.go
package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"plume/internal/config"
)

var asJSON bool

var cmdConfig = &cobra.Command{
	Use:   "config",
	Short: "Print the settings loaded from " + config.FileName,
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		site, err := loadSettings()
		if err != nil {
			return err
		}
		return writeExports(os.Stdout, site, asJSON)
	},
}

func init() {
	cmdConfig.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of YAML")
}

func writeExports(w io.Writer, site *config.Settings, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(site.Exports())
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(site.Exports()); err != nil {
		return err
	}
	return enc.Close()
}
