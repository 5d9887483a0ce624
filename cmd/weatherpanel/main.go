// Package main is the entry point for the weatherpanel CLI.
//
// Usage:
//
//	weatherpanel run -c panel.yaml      # Drive the panel
//	weatherpanel validate -c panel.yaml # Validate configuration
//	weatherpanel version                # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "weatherpanel",
	Short: "An indoor/outdoor weather panel",
	Long: `weatherpanel shows indoor sensor readings next to outdoor conditions.

It polls a local sensor and the OpenWeatherMap current-weather API,
redraws the panel once a second and keeps the display dark outside the
configured active hours. Any fault in the display or its backlight
restarts the whole panel from scratch.

Quick start:
  1. Create a config file (panel.yaml)
  2. Put OWM_API_KEY=... in a .env file next to it
  3. Run: weatherpanel run -c panel.yaml

Example config:
  indoor:
    url: http://192.168.1.40/
  outdoor:
    lat: 48.2082
    lon: 16.3738
    api_key: ${OWM_API_KEY}`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this weatherpanel binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("weatherpanel %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
