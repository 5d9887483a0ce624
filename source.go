package weatherpanel

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jpalmerr/weatherpanel/internal/poller"
	"github.com/jpalmerr/weatherpanel/internal/store"
)

const (
	// DefaultOutdoorBaseURL is the OpenWeatherMap API root.
	DefaultOutdoorBaseURL = "http://api.openweathermap.org"

	// DefaultUnits requests Celsius from the weather service.
	DefaultUnits = "metric"
)

// NewIndoorSource creates the local sensor [Source].
//
// The endpoint must answer GET with a JSON object carrying numeric
// "temperature", "humidity" and "pressure" fields.
//
// Returns an error if the URL is invalid.
//
// Example:
//
//	indoor, err := weatherpanel.NewIndoorSource("http://192.168.1.40/",
//	    weatherpanel.WithTimeout(2*time.Second),
//	)
func NewIndoorSource(rawURL string, opts ...SourceOption) (*HTTPSource, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	cfg, err := newSourceConfig(opts)
	if err != nil {
		return nil, err
	}

	return poller.NewHTTPSource(store.IndoorName, rawURL, cfg.headers, cfg.timeout, poller.IndoorPaths, nil), nil
}

// NewOutdoorSource creates the OpenWeatherMap current-weather [Source] for
// the given coordinates.
//
// The request is GET {base}/data/2.5/weather?lat=..&lon=..&appid=..&units=metric.
// Temperature, humidity and pressure are read from "main" and the icon code
// from "weather[0].icon".
//
// Returns an error if the API key is empty or the coordinates are out of
// range.
func NewOutdoorSource(lat, lon float64, apiKey string, opts ...SourceOption) (*HTTPSource, error) {
	if apiKey == "" {
		return nil, errors.New("outdoor source: api key cannot be empty")
	}
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("outdoor source: latitude %v out of range", lat)
	}
	if lon < -180 || lon > 180 {
		return nil, fmt.Errorf("outdoor source: longitude %v out of range", lon)
	}

	cfg, err := newSourceConfig(opts)
	if err != nil {
		return nil, err
	}

	rawURL := OutdoorURL(cfg.baseURL, lat, lon, apiKey, cfg.units)
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	return poller.NewHTTPSource(store.OutdoorName, rawURL, cfg.headers, cfg.timeout, poller.OutdoorPaths, nil), nil
}

// OutdoorURL builds the current-weather request URL. Empty base and units
// fall back to [DefaultOutdoorBaseURL] and [DefaultUnits].
func OutdoorURL(base string, lat, lon float64, apiKey, units string) string {
	if base == "" {
		base = DefaultOutdoorBaseURL
	}
	if units == "" {
		units = DefaultUnits
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("appid", apiKey)
	q.Set("units", units)

	return strings.TrimRight(base, "/") + "/data/2.5/weather?" + q.Encode()
}

func validateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL: " + err.Error())
	}
	if parsed.Scheme == "" {
		return errors.New("URL must have a scheme (http:// or https://)")
	}
	return nil
}

// copyMap returns a shallow copy of the map.
func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
