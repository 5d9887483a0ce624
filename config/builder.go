package config

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/jpalmerr/weatherpanel"
	"github.com/jpalmerr/weatherpanel/internal/display"
	"github.com/jpalmerr/weatherpanel/internal/render"
)

// BuildSources converts the indoor and outdoor sections into sources.
func BuildSources(cfg *Config) (indoor, outdoor *weatherpanel.HTTPSource, err error) {
	indoorOpts := []weatherpanel.SourceOption{
		weatherpanel.WithTimeout(cfg.Indoor.Timeout.Duration()),
	}
	if len(cfg.Indoor.Headers) > 0 {
		indoorOpts = append(indoorOpts, weatherpanel.WithHeaders(mapToKeyValuePairs(cfg.Indoor.Headers)...))
	}
	indoor, err = weatherpanel.NewIndoorSource(cfg.Indoor.URL, indoorOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("indoor: %w", err)
	}

	outdoorOpts := []weatherpanel.SourceOption{
		weatherpanel.WithTimeout(cfg.Outdoor.Timeout.Duration()),
		weatherpanel.WithUnits(cfg.Outdoor.Units),
	}
	if cfg.Outdoor.BaseURL != "" {
		outdoorOpts = append(outdoorOpts, weatherpanel.WithBaseURL(cfg.Outdoor.BaseURL))
	}
	if len(cfg.Outdoor.Headers) > 0 {
		outdoorOpts = append(outdoorOpts, weatherpanel.WithHeaders(mapToKeyValuePairs(cfg.Outdoor.Headers)...))
	}
	outdoor, err = weatherpanel.NewOutdoorSource(cfg.Outdoor.Lat, cfg.Outdoor.Lon, cfg.Outdoor.APIKey, outdoorOpts...)
	if err != nil {
		indoor.Close()
		return nil, nil, fmt.Errorf("outdoor: %w", err)
	}
	return indoor, outdoor, nil
}

// BuildRestartPolicy returns the exponential backoff described by the
// restart section. It never stops on elapsed time and has no jitter, so
// restart.max is a hard ceiling.
func BuildRestartPolicy(cfg *Config) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.Restart.Initial.Duration()
	b.MaxInterval = cfg.Restart.Max.Duration()
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Displays is the output side of the panel built from configuration.
type Displays struct {
	// Display receives every frame.
	Display weatherpanel.Display

	// Backlight switches every output that has one. Nil when none does.
	Backlight weatherpanel.Backlight

	// Terminal is set when display.kind is "terminal". The caller must
	// Start it and should stop the panel once it is Done.
	Terminal *display.Terminal

	mqtt mqtt.Client
}

// Close releases the MQTT connection and stops the terminal.
func (d *Displays) Close() {
	if d.mqtt != nil {
		d.mqtt.Disconnect(250)
	}
	if d.Terminal != nil {
		d.Terminal.Stop()
	}
}

// BuildDisplays creates the configured display, the optional MQTT mirror
// and the optional GPIO backlight. Connecting to the broker blocks until the
// first connection succeeds or ctx is done.
func BuildDisplays(ctx context.Context, cfg *Config, logger *slog.Logger, termOpts ...display.TerminalOption) (*Displays, error) {
	if logger == nil {
		logger = slog.Default()
	}

	out := &Displays{}
	var outputs []render.Display

	switch cfg.Display.Kind {
	case DisplayLog:
		outputs = append(outputs, display.NewLog(logger))
	default:
		out.Terminal = display.NewTerminal(termOpts...)
		outputs = append(outputs, out.Terminal)
	}

	if m := cfg.Display.MQTT; m.Broker != "" {
		client, err := display.ConnectMQTT(ctx, display.MQTTConfig{
			Broker:   m.Broker,
			ClientID: m.ClientID,
			Username: m.Username,
			Password: m.Password,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("display.mqtt: %w", err)
		}
		out.mqtt = client

		var mirrorOpts []display.MirrorOption
		if m.Topic != "" {
			mirrorOpts = append(mirrorOpts, display.WithTopic(m.Topic))
		}
		outputs = append(outputs, display.NewMQTTMirror(client, logger, mirrorOpts...))
	}

	if len(outputs) == 1 {
		out.Display = outputs[0]
	} else {
		out.Display = display.Multi(outputs)
	}

	backlights := display.BacklightsOf(outputs...)
	if cfg.Backlight.Pin != "" {
		pin, err := display.OpenGPIOBacklight(cfg.Backlight.Pin, cfg.Backlight.IsActiveLow())
		if err != nil {
			out.Close()
			return nil, fmt.Errorf("backlight: %w", err)
		}
		logger.Info("gpio backlight ready", "pin", pin.Pin(), "active_low", cfg.Backlight.IsActiveLow())
		backlights = append(backlights, pin)
	}
	if len(backlights) > 0 {
		out.Backlight = backlights
	}

	return out, nil
}

// BuildOptions converts everything except sources and displays into panel
// options.
func BuildOptions(cfg *Config) []weatherpanel.Option {
	opts := []weatherpanel.Option{
		weatherpanel.WithIndoorCadence(cfg.Indoor.Cadence.Duration()),
		weatherpanel.WithOutdoorCadence(cfg.Outdoor.Cadence.Duration()),
		weatherpanel.WithInactiveCadence(cfg.InactiveCadence.Duration()),
		weatherpanel.WithRenderInterval(cfg.RenderInterval.Duration()),
		weatherpanel.WithInactiveRecheck(cfg.InactiveRecheck.Duration()),
		weatherpanel.WithActiveHours(*cfg.ActiveHours.Start, *cfg.ActiveHours.End),
		weatherpanel.WithRestartBackoff(BuildRestartPolicy(cfg)),
		weatherpanel.WithStatusPort(cfg.StatusPort),
	}
	if cfg.Title != "" {
		opts = append(opts, weatherpanel.WithTitle(cfg.Title))
	}
	return opts
}

// mapToKeyValuePairs converts a map to a sorted slice of key-value pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	// sort keys for deterministic ordering
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}
