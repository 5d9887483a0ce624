package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/weatherpanel"
	"github.com/jpalmerr/weatherpanel/config"
)

// validateCmd validates a config file without driving the panel.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a weatherpanel configuration file without touching any hardware.

This command loads the .env file next to the config, parses the YAML,
expands environment variables and validates all fields.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  weatherpanel validate -c panel.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	backlight := "none"
	if cfg.Backlight.Pin != "" {
		backlight = cfg.Backlight.Pin
		if cfg.Backlight.IsActiveLow() {
			backlight += " (active low)"
		}
	}
	mirror := "none"
	if cfg.Display.MQTT.Broker != "" {
		mirror = cfg.Display.MQTT.Broker
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Active hours:  %02d:00-%02d:59\n", *cfg.ActiveHours.Start, *cfg.ActiveHours.End)
	fmt.Printf("  Indoor:        %s every %s\n", cfg.Indoor.URL, cfg.Indoor.Cadence.Duration())
	fmt.Printf("  Outdoor:       %s every %s\n",
		weatherpanel.OutdoorURL(cfg.Outdoor.BaseURL, cfg.Outdoor.Lat, cfg.Outdoor.Lon, "***", cfg.Outdoor.Units),
		cfg.Outdoor.Cadence.Duration())
	fmt.Printf("  Display:       %s\n", cfg.Display.Kind)
	fmt.Printf("  MQTT mirror:   %s\n", mirror)
	fmt.Printf("  Backlight:     %s\n", backlight)

	return nil
}
