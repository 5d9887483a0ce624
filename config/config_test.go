package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
indoor:
  url: http://192.168.1.40/
outdoor:
  lat: 48.2
  lon: 16.3
  api_key: secret
`

func TestParse_MinimalConfig(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// check defaults applied
	if *cfg.ActiveHours.Start != 9 || *cfg.ActiveHours.End != 23 {
		t.Errorf("ActiveHours = %d..%d, want 9..23", *cfg.ActiveHours.Start, *cfg.ActiveHours.End)
	}
	checks := []struct {
		name string
		got  Duration
		want time.Duration
	}{
		{"RenderInterval", cfg.RenderInterval, time.Second},
		{"InactiveRecheck", cfg.InactiveRecheck, time.Minute},
		{"InactiveCadence", cfg.InactiveCadence, time.Hour},
		{"Restart.Initial", cfg.Restart.Initial, time.Second},
		{"Restart.Max", cfg.Restart.Max, time.Minute},
		{"Indoor.Cadence", cfg.Indoor.Cadence, 3 * time.Second},
		{"Indoor.Timeout", cfg.Indoor.Timeout, 3 * time.Second},
		{"Outdoor.Cadence", cfg.Outdoor.Cadence, 10 * time.Second},
		{"Outdoor.Timeout", cfg.Outdoor.Timeout, 3 * time.Second},
	}
	for _, c := range checks {
		if c.got.Duration() != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got.Duration(), c.want)
		}
	}
	if cfg.StatusPort != 0 {
		t.Errorf("StatusPort = %d, want 0", cfg.StatusPort)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v, want info/text", cfg.Log)
	}
	if cfg.Display.Kind != DisplayTerminal {
		t.Errorf("Display.Kind = %q, want %q", cfg.Display.Kind, DisplayTerminal)
	}
	if cfg.Outdoor.Units != "metric" {
		t.Errorf("Outdoor.Units = %q, want metric", cfg.Outdoor.Units)
	}
	if !cfg.Backlight.IsActiveLow() {
		t.Error("Backlight.IsActiveLow() = false, want true by default")
	}
}

func TestParse_FullConfig(t *testing.T) {
	yaml := `
title: Hallway
status_port: 9090
active_hours: {start: 7, end: 22}
render_interval: 500ms
inactive_recheck: 30s
inactive_cadence: 30m
restart:
  initial: 2s
  max: 30s
log:
  level: debug
  format: json

indoor:
  url: http://sensor.local/
  cadence: 5s
  timeout: 2s
  headers:
    X-Token: abc

outdoor:
  lat: -33.9
  lon: 151.2
  api_key: key123
  base_url: http://owm.local
  units: imperial
  cadence: 1m

display:
  kind: log
  mqtt:
    broker: tcp://broker.local:1883
    topic: home/panel
    client_id: hallway

backlight:
  pin: GPIO17
  active_low: false
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Title != "Hallway" {
		t.Errorf("Title = %q, want Hallway", cfg.Title)
	}
	if cfg.StatusPort != 9090 {
		t.Errorf("StatusPort = %d, want 9090", cfg.StatusPort)
	}
	if *cfg.ActiveHours.Start != 7 || *cfg.ActiveHours.End != 22 {
		t.Errorf("ActiveHours = %d..%d, want 7..22", *cfg.ActiveHours.Start, *cfg.ActiveHours.End)
	}
	if cfg.RenderInterval.Duration() != 500*time.Millisecond {
		t.Errorf("RenderInterval = %v, want 500ms", cfg.RenderInterval.Duration())
	}
	if cfg.Restart.Initial.Duration() != 2*time.Second || cfg.Restart.Max.Duration() != 30*time.Second {
		t.Errorf("Restart = %+v, want 2s..30s", cfg.Restart)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want debug/json", cfg.Log)
	}
	if cfg.Indoor.URL != "http://sensor.local/" {
		t.Errorf("Indoor.URL = %q", cfg.Indoor.URL)
	}
	if cfg.Indoor.Cadence.Duration() != 5*time.Second {
		t.Errorf("Indoor.Cadence = %v, want 5s", cfg.Indoor.Cadence.Duration())
	}
	if cfg.Indoor.Headers["X-Token"] != "abc" {
		t.Errorf("Indoor.Headers = %v", cfg.Indoor.Headers)
	}
	if cfg.Outdoor.Lat != -33.9 || cfg.Outdoor.Lon != 151.2 {
		t.Errorf("Outdoor lat/lon = %v/%v", cfg.Outdoor.Lat, cfg.Outdoor.Lon)
	}
	if cfg.Outdoor.Units != "imperial" {
		t.Errorf("Outdoor.Units = %q, want imperial", cfg.Outdoor.Units)
	}
	if cfg.Outdoor.Cadence.Duration() != time.Minute {
		t.Errorf("Outdoor.Cadence = %v, want 1m", cfg.Outdoor.Cadence.Duration())
	}
	if cfg.Display.Kind != DisplayLog {
		t.Errorf("Display.Kind = %q, want log", cfg.Display.Kind)
	}
	if cfg.Display.MQTT.Topic != "home/panel" || cfg.Display.MQTT.ClientID != "hallway" {
		t.Errorf("Display.MQTT = %+v", cfg.Display.MQTT)
	}
	if cfg.Backlight.Pin != "GPIO17" || cfg.Backlight.IsActiveLow() {
		t.Errorf("Backlight = %+v, want GPIO17 active high", cfg.Backlight)
	}
}

func TestParse_ActiveHoursZeroIsKept(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML + "active_hours: {start: 0, end: 0}\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if *cfg.ActiveHours.Start != 0 || *cfg.ActiveHours.End != 0 {
		t.Errorf("ActiveHours = %d..%d, want 0..0", *cfg.ActiveHours.Start, *cfg.ActiveHours.End)
	}
}

func TestParse_EnvVarSubstitution(t *testing.T) {
	t.Setenv("OWM_KEY", "from-env")
	t.Setenv("SENSOR_HOST", "10.0.0.7")
	t.Setenv("SENSOR_TOKEN", "tok")
	t.Setenv("MQTT_PASS", "hunter2")

	yaml := `
indoor:
  url: http://${SENSOR_HOST}/
  headers:
    Authorization: Bearer ${SENSOR_TOKEN}
outdoor:
  api_key: ${OWM_KEY}
display:
  mqtt:
    broker: tcp://${MQTT_HOST:-localhost}:1883
    username: panel
    password: ${MQTT_PASS}
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Indoor.URL != "http://10.0.0.7/" {
		t.Errorf("Indoor.URL = %q, want http://10.0.0.7/", cfg.Indoor.URL)
	}
	if got := cfg.Indoor.Headers["Authorization"]; got != "Bearer tok" {
		t.Errorf("Authorization header = %q, want %q", got, "Bearer tok")
	}
	if cfg.Outdoor.APIKey != "from-env" {
		t.Errorf("Outdoor.APIKey = %q, want from-env", cfg.Outdoor.APIKey)
	}
	if cfg.Display.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("Display.MQTT.Broker = %q, want tcp://localhost:1883", cfg.Display.MQTT.Broker)
	}
	if cfg.Display.MQTT.Password != "hunter2" {
		t.Errorf("Display.MQTT.Password = %q, want hunter2", cfg.Display.MQTT.Password)
	}
}

func TestParse_EnvVarMissing(t *testing.T) {
	yaml := `
indoor:
  url: http://sensor.local/
outdoor:
  api_key: ${WEATHERPANEL_UNSET_KEY}
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Parse() expected error for missing env var, got nil")
	}
	if !strings.Contains(err.Error(), "WEATHERPANEL_UNSET_KEY") {
		t.Errorf("error = %q, want it to name the variable", err.Error())
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		wantErrLike string
	}{
		{
			name: "missing indoor url",
			yaml: `
outdoor:
  api_key: k
`,
			wantErrLike: "indoor: url is required",
		},
		{
			name: "indoor url without scheme",
			yaml: `
indoor:
  url: sensor.local
outdoor:
  api_key: k
`,
			wantErrLike: "must have a scheme",
		},
		{
			name: "indoor url wrong scheme",
			yaml: `
indoor:
  url: ftp://sensor.local
outdoor:
  api_key: k
`,
			wantErrLike: "must be http or https",
		},
		{
			name: "missing api key",
			yaml: `
indoor:
  url: http://sensor.local/
`,
			wantErrLike: "api_key is required",
		},
		{
			name: "api key expands to empty",
			yaml: `
indoor:
  url: http://sensor.local/
outdoor:
  api_key: ${WEATHERPANEL_UNSET_KEY:-}
`,
			wantErrLike: "empty value",
		},
		{
			name: "latitude out of range",
			yaml: `
indoor:
  url: http://sensor.local/
outdoor:
  api_key: k
  lat: 91
`,
			wantErrLike: "lat must be between",
		},
		{
			name: "longitude out of range",
			yaml: `
indoor:
  url: http://sensor.local/
outdoor:
  api_key: k
  lon: -181
`,
			wantErrLike: "lon must be between",
		},
		{
			name:        "status port out of range",
			yaml:        minimalYAML + "status_port: 70000\n",
			wantErrLike: "status_port must be between",
		},
		{
			name:        "active hour out of range",
			yaml:        minimalYAML + "active_hours: {start: 9, end: 24}\n",
			wantErrLike: "active_hours.end must be between 0 and 23",
		},
		{
			name:        "negative render interval",
			yaml:        minimalYAML + "render_interval: -1s\n",
			wantErrLike: "render_interval cannot be negative",
		},
		{
			name:        "restart max below initial",
			yaml:        minimalYAML + "restart: {initial: 10s, max: 1s}\n",
			wantErrLike: "restart.max",
		},
		{
			name:        "bad log level",
			yaml:        minimalYAML + "log: {level: loud}\n",
			wantErrLike: "log.level",
		},
		{
			name:        "bad log format",
			yaml:        minimalYAML + "log: {format: xml}\n",
			wantErrLike: "log.format",
		},
		{
			name:        "bad display kind",
			yaml:        minimalYAML + "display: {kind: oled}\n",
			wantErrLike: "display.kind",
		},
		{
			name:        "mqtt broker without scheme",
			yaml:        minimalYAML + "display: {mqtt: {broker: localhost}}\n",
			wantErrLike: "display.mqtt.broker",
		},
		{
			name:        "backlight pin with spaces",
			yaml:        minimalYAML + "backlight: {pin: \" GPIO4\"}\n",
			wantErrLike: "backlight.pin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErrLike) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErrLike)
			}
		})
	}
}

func TestParse_CadenceMinimum(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{"indoor at minimum", minimalYAML[:strings.Index(minimalYAML, "outdoor:")] + "  cadence: 1s\n" + minimalYAML[strings.Index(minimalYAML, "outdoor:"):], false},
		{"indoor below minimum", minimalYAML[:strings.Index(minimalYAML, "outdoor:")] + "  cadence: 500ms\n" + minimalYAML[strings.Index(minimalYAML, "outdoor:"):], true},
		{"outdoor below minimum", minimalYAML + "  cadence: 100ms\n", true},
		{"outdoor above minimum", minimalYAML + "  cadence: 2s\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if tt.wantErr && err == nil {
				t.Fatal("Parse() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if tt.wantErr && !strings.Contains(err.Error(), "cadence must be at least") {
				t.Errorf("error = %q, want cadence error", err.Error())
			}
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("indoor: [unclosed"))
	if err == nil {
		t.Fatal("Parse() expected error for invalid YAML, got nil")
	}
	if !strings.Contains(err.Error(), "failed to parse YAML") {
		t.Errorf("error = %q, want YAML parse error", err.Error())
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"seconds", "10s", 10 * time.Second, false},
		{"milliseconds", "1500ms", 1500 * time.Millisecond, false},
		{"minutes", "2m", 2 * time.Minute, false},
		{"hours", "1h", 1 * time.Hour, false},
		{"combined", "1m30s", 90 * time.Second, false},
		{"invalid", "not-a-duration", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(minimalYAML + "inactive_recheck: " + tt.input + "\n"))
			if tt.wantErr {
				if err == nil {
					t.Fatal("Parse() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if cfg.InactiveRecheck.Duration() != tt.want {
				t.Errorf("InactiveRecheck = %v, want %v", cfg.InactiveRecheck.Duration(), tt.want)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "value")
	t.Setenv("EMPTY_VAR", "") // set but empty

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"no vars", "plain text", "plain text", false},
		{"simple var", "${TEST_VAR}", "value", false},
		{"var in text", "prefix ${TEST_VAR} suffix", "prefix value suffix", false},
		{"multiple vars", "${TEST_VAR}-${TEST_VAR}", "value-value", false},
		{"with default (var set)", "${TEST_VAR:-default}", "value", false},
		{"with default (var unset)", "${UNSET:-default}", "default", false},
		{"missing required", "${MISSING}", "", true},
		{"empty default (var unset)", "${UNSET:-}", "", false},
		{"set but empty var", "${EMPTY_VAR}", "", false},
		{"set but empty with default", "${EMPTY_VAR:-fallback}", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandEnvVars(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expandEnvVars() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expandEnvVars() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expandEnvVars() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	const key = "WEATHERPANEL_TEST_DOTENV_KEY"

	// t.Setenv registers cleanup; Unsetenv leaves the variable for .env to fill.
	t.Setenv(key, "")
	os.Unsetenv(key)

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(key+"=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	yaml := `
indoor:
  url: http://sensor.local/
outdoor:
  api_key: ${` + key + `}
`
	path := filepath.Join(dir, "panel.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Outdoor.APIKey != "from-dotenv" {
		t.Errorf("Outdoor.APIKey = %q, want from-dotenv", cfg.Outdoor.APIKey)
	}
}

func TestLoad_DotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	const key = "WEATHERPANEL_TEST_DOTENV_SET"
	t.Setenv(key, "from-shell")

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(key+"=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "panel.yaml")
	yaml := "indoor: {url: http://sensor.local/}\noutdoor: {api_key: \"${" + key + "}\"}\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Outdoor.APIKey != "from-shell" {
		t.Errorf("Outdoor.APIKey = %q, want from-shell", cfg.Outdoor.APIKey)
	}
}

func TestLoad_WithoutDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.yaml")
	if err := os.WriteFile(path, []byte(minimalYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("error = %q, want read error", err.Error())
	}
}
