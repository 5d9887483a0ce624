package weatherpanel

import (
	"errors"
	"time"

	"github.com/jpalmerr/weatherpanel/internal/poller"
)

// sourceConfig holds mutable state during source construction.
type sourceConfig struct {
	headers map[string]string
	timeout time.Duration
	baseURL string
	units   string
}

// SourceOption configures a source during construction.
//
// Built-in options: [WithTimeout], [WithHeaders], [WithBaseURL], [WithUnits].
type SourceOption func(*sourceConfig) error

func newSourceConfig(opts []SourceOption) (*sourceConfig, error) {
	cfg := &sourceConfig{
		headers: make(map[string]string),
		timeout: poller.DefaultTimeout,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	cfg.headers = copyMap(cfg.headers)
	return cfg, nil
}

// WithTimeout bounds a single fetch. Defaults to 3 seconds.
//
// Returns an error if the duration is zero or negative.
func WithTimeout(d time.Duration) SourceOption {
	return func(cfg *sourceConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithHeaders adds HTTP headers sent with every fetch.
//
// Accepts variadic key-value pairs. The number of arguments must be even.
//
// Example:
//
//	indoor, err := weatherpanel.NewIndoorSource(url,
//	    weatherpanel.WithHeaders("Authorization", "Bearer token123"),
//	)
func WithHeaders(keyValues ...string) SourceOption {
	return func(cfg *sourceConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithHeaders requires an even number of arguments (key-value pairs)")
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.headers[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}

// WithBaseURL overrides the weather service root for [NewOutdoorSource].
// It has no effect on the indoor source.
func WithBaseURL(base string) SourceOption {
	return func(cfg *sourceConfig) error {
		if err := validateURL(base); err != nil {
			return err
		}
		cfg.baseURL = base
		return nil
	}
}

// WithUnits sets the weather service unit system. The panel formats values
// as Celsius, so anything other than "metric" changes only the numbers.
func WithUnits(units string) SourceOption {
	return func(cfg *sourceConfig) error {
		if units == "" {
			return errors.New("units cannot be empty")
		}
		cfg.units = units
		return nil
	}
}
