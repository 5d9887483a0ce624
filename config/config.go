// Package config provides YAML configuration parsing for the weather panel
// binary.
//
// Example configuration:
//
//	title: Hallway
//	active_hours: {start: 9, end: 23}
//
//	indoor:
//	  url: http://192.168.1.40/
//	  cadence: 3s
//
//	outdoor:
//	  lat: 48.2082
//	  lon: 16.3738
//	  api_key: ${OWM_API_KEY}
//	  cadence: 10s
//
//	display:
//	  kind: terminal
//	  mqtt:
//	    broker: tcp://localhost:1883
//
//	backlight:
//	  pin: GPIO4
//	  active_low: true
//
// Environment variables referenced as ${VAR} or ${VAR:-default} are
// expanded in URLs, header values, the API key and MQTT credentials. A
// ".env" file next to the config file is loaded first when present.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// minCadence is the minimum allowed poll cadence.
// This prevents accidental hammering of the sensor or the weather API.
const minCadence = 1 * time.Second

// Display kinds.
const (
	DisplayTerminal = "terminal"
	DisplayLog      = "log"
)

// Config is the root configuration structure for the panel.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the status page title.
	Title string `yaml:"title"`

	// StatusPort enables the local status server. 0 disables it.
	StatusPort int `yaml:"status_port"`

	// ActiveHours is the inclusive window in which the display is lit.
	// Defaults to 9..23.
	ActiveHours ActiveHoursConfig `yaml:"active_hours"`

	// RenderInterval is the render tick period. Defaults to 1s.
	RenderInterval Duration `yaml:"render_interval"`

	// InactiveRecheck is how often the render loop re-checks power while
	// the display is off. Defaults to 1m.
	InactiveRecheck Duration `yaml:"inactive_recheck"`

	// InactiveCadence is the poller sleep while the display is off.
	// Defaults to 1h.
	InactiveCadence Duration `yaml:"inactive_cadence"`

	// Restart bounds the delay between cold restarts.
	Restart RestartConfig `yaml:"restart"`

	Log       LogConfig       `yaml:"log"`
	Indoor    IndoorConfig    `yaml:"indoor"`
	Outdoor   OutdoorConfig   `yaml:"outdoor"`
	Display   DisplayConfig   `yaml:"display"`
	Backlight BacklightConfig `yaml:"backlight"`
}

// ActiveHoursConfig is an inclusive local-hour window.
type ActiveHoursConfig struct {
	Start *int `yaml:"start"`
	End   *int `yaml:"end"`
}

// RestartConfig configures the exponential restart backoff.
type RestartConfig struct {
	// Initial is the first delay. Defaults to 1s.
	Initial Duration `yaml:"initial"`

	// Max caps the delay. Defaults to 1m.
	Max Duration `yaml:"max"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	// Level is debug, info, warn or error. Defaults to info.
	Level string `yaml:"level"`

	// Format is text (colored, for terminals) or json. Defaults to text.
	Format string `yaml:"format"`
}

// IndoorConfig defines the local sensor source.
type IndoorConfig struct {
	// URL is the sensor endpoint. Required.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url"`

	// Cadence is the sleep between fetches. Defaults to 3s.
	Cadence Duration `yaml:"cadence"`

	// Timeout bounds one fetch. Defaults to 3s.
	Timeout Duration `yaml:"timeout"`

	// Headers are sent with every fetch. Values support substitution.
	Headers map[string]string `yaml:"headers"`
}

// OutdoorConfig defines the weather service source.
type OutdoorConfig struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`

	// APIKey is the OpenWeatherMap key. Required. Supports substitution.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the API root.
	BaseURL string `yaml:"base_url"`

	// Units defaults to metric.
	Units string `yaml:"units"`

	// Cadence is the sleep between fetches. Defaults to 10s.
	Cadence Duration `yaml:"cadence"`

	// Timeout bounds one fetch. Defaults to 3s.
	Timeout Duration `yaml:"timeout"`

	Headers map[string]string `yaml:"headers"`
}

// DisplayConfig selects the display and optional mirror.
type DisplayConfig struct {
	// Kind is "terminal" (default) or "log".
	Kind string `yaml:"kind"`

	// MQTT mirrors every frame to a broker when Broker is set.
	MQTT MQTTConfig `yaml:"mqtt"`
}

// MQTTConfig configures the MQTT frame mirror.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// BacklightConfig configures the GPIO backlight. Leave Pin empty to run
// without one.
type BacklightConfig struct {
	Pin string `yaml:"pin"`

	// ActiveLow drives the pin low to turn the backlight on. Defaults to
	// true, matching the reference board.
	ActiveLow *bool `yaml:"active_low"`
}

// IsActiveLow reports the effective polarity.
func (b BacklightConfig) IsActiveLow() bool {
	return b.ActiveLow == nil || *b.ActiveLow
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// A ".env" file in the same directory is loaded into the environment first
// when it exists; variables already set are not overridden.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Parse parses YAML configuration data, applies defaults, expands
// environment variables and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	setDefault := func(d *Duration, v time.Duration) {
		if *d == 0 {
			*d = Duration(v)
		}
	}

	if c.ActiveHours.Start == nil {
		start := 9
		c.ActiveHours.Start = &start
	}
	if c.ActiveHours.End == nil {
		end := 23
		c.ActiveHours.End = &end
	}
	setDefault(&c.RenderInterval, time.Second)
	setDefault(&c.InactiveRecheck, time.Minute)
	setDefault(&c.InactiveCadence, time.Hour)
	setDefault(&c.Restart.Initial, time.Second)
	setDefault(&c.Restart.Max, time.Minute)
	setDefault(&c.Indoor.Cadence, 3*time.Second)
	setDefault(&c.Indoor.Timeout, 3*time.Second)
	setDefault(&c.Outdoor.Cadence, 10*time.Second)
	setDefault(&c.Outdoor.Timeout, 3*time.Second)

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Display.Kind == "" {
		c.Display.Kind = DisplayTerminal
	}
	if c.Outdoor.Units == "" {
		c.Outdoor.Units = "metric"
	}
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	var err error

	if c.StatusPort < 0 || c.StatusPort > 65535 {
		return fmt.Errorf("status_port must be between 0 and 65535, got %d", c.StatusPort)
	}

	for name, hour := range map[string]int{"start": *c.ActiveHours.Start, "end": *c.ActiveHours.End} {
		if hour < 0 || hour > 23 {
			return fmt.Errorf("active_hours.%s must be between 0 and 23, got %d", name, hour)
		}
	}

	for name, d := range map[string]Duration{
		"render_interval":  c.RenderInterval,
		"inactive_recheck": c.InactiveRecheck,
		"inactive_cadence": c.InactiveCadence,
		"restart.initial":  c.Restart.Initial,
		"restart.max":      c.Restart.Max,
		"indoor.timeout":   c.Indoor.Timeout,
		"outdoor.timeout":  c.Outdoor.Timeout,
	} {
		if d.Duration() < 0 {
			return fmt.Errorf("%s cannot be negative, got %s", name, d.Duration())
		}
	}
	if c.Restart.Max < c.Restart.Initial {
		return fmt.Errorf("restart.max (%s) must not be less than restart.initial (%s)",
			c.Restart.Max.Duration(), c.Restart.Initial.Duration())
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	// indoor
	if c.Indoor.URL == "" {
		return errors.New("indoor: url is required")
	}
	if c.Indoor.URL, err = expandEnvVars(c.Indoor.URL); err != nil {
		return fmt.Errorf("indoor: url: %w", err)
	}
	if err := validateHTTPURL(c.Indoor.URL); err != nil {
		return fmt.Errorf("indoor: %w", err)
	}
	if c.Indoor.Cadence.Duration() < minCadence {
		return fmt.Errorf("indoor: cadence must be at least %s, got %s", minCadence, c.Indoor.Cadence.Duration())
	}
	if err := expandHeaders(c.Indoor.Headers); err != nil {
		return fmt.Errorf("indoor: %w", err)
	}

	// outdoor
	if c.Outdoor.APIKey == "" {
		return errors.New("outdoor: api_key is required")
	}
	if c.Outdoor.APIKey, err = expandEnvVars(c.Outdoor.APIKey); err != nil {
		return fmt.Errorf("outdoor: api_key: %w", err)
	}
	if c.Outdoor.APIKey == "" {
		return errors.New("outdoor: api_key expanded to an empty value")
	}
	if c.Outdoor.Lat < -90 || c.Outdoor.Lat > 90 {
		return fmt.Errorf("outdoor: lat must be between -90 and 90, got %v", c.Outdoor.Lat)
	}
	if c.Outdoor.Lon < -180 || c.Outdoor.Lon > 180 {
		return fmt.Errorf("outdoor: lon must be between -180 and 180, got %v", c.Outdoor.Lon)
	}
	if c.Outdoor.BaseURL != "" {
		if c.Outdoor.BaseURL, err = expandEnvVars(c.Outdoor.BaseURL); err != nil {
			return fmt.Errorf("outdoor: base_url: %w", err)
		}
		if err := validateHTTPURL(c.Outdoor.BaseURL); err != nil {
			return fmt.Errorf("outdoor: base_url: %w", err)
		}
	}
	if c.Outdoor.Cadence.Duration() < minCadence {
		return fmt.Errorf("outdoor: cadence must be at least %s, got %s", minCadence, c.Outdoor.Cadence.Duration())
	}
	if err := expandHeaders(c.Outdoor.Headers); err != nil {
		return fmt.Errorf("outdoor: %w", err)
	}

	// display
	switch c.Display.Kind {
	case DisplayTerminal, DisplayLog:
	default:
		return fmt.Errorf("display.kind must be %q or %q, got %q", DisplayTerminal, DisplayLog, c.Display.Kind)
	}
	if m := &c.Display.MQTT; m.Broker != "" {
		if m.Broker, err = expandEnvVars(m.Broker); err != nil {
			return fmt.Errorf("display.mqtt.broker: %w", err)
		}
		if u, perr := url.Parse(m.Broker); perr != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("display.mqtt.broker must look like tcp://host:port, got %q", m.Broker)
		}
		if m.Username, err = expandEnvVars(m.Username); err != nil {
			return fmt.Errorf("display.mqtt.username: %w", err)
		}
		if m.Password, err = expandEnvVars(m.Password); err != nil {
			return fmt.Errorf("display.mqtt.password: %w", err)
		}
	}

	// backlight
	if c.Backlight.Pin != "" && strings.TrimSpace(c.Backlight.Pin) != c.Backlight.Pin {
		return fmt.Errorf("backlight.pin must not contain spaces, got %q", c.Backlight.Pin)
	}

	return nil
}

func expandHeaders(headers map[string]string) error {
	for k, v := range headers {
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("headers[%s]: %w", k, err)
		}
		headers[k] = expanded
	}
	return nil
}

func validateHTTPURL(raw string) error {
	parsedURL, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if parsedURL.Scheme == "" {
		return errors.New("url must have a scheme (http:// or https://)")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", parsedURL.Scheme)
	}
	return nil
}
