// cmd/plume/new.go
package main

import (
	"strings"

	"github.com/DataDrake/waterlog"
	"github.com/spf13/cobra"

	"plume/internal/scaffold"
)

var cmdNew = &cobra.Command{
	Use:   "new site <name> | new <kind> <title...>",
	Short: "Create a new site scaffold or new content from the archetype",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		if args[0] == "site" {
			return scaffold.CreateNewSite(args[1])
		}
		site, err := loadSettings()
		if err != nil {
			return err
		}
		path, err := scaffold.CreateNewContent(".", site, args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		waterlog.Goodln("Created: " + path)
		return nil
	},
}
