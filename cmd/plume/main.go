// cmd/plume/main.go
package main

import "github.com/DataDrake/waterlog"

func main() {
	if err := rootCmd.Execute(); err != nil {
		waterlog.Fatalf("Operation failed: %v\n", err)
	}
}
