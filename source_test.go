package weatherpanel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestNewIndoorSource(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Sensor-Key") != "k1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"temperature": 21.5, "humidity": 44.2, "pressure": 1009.6}`))
	}))
	defer ts.Close()

	src, err := NewIndoorSource(ts.URL,
		WithTimeout(time.Second),
		WithHeaders("X-Sensor-Key", "k1"),
	)
	if err != nil {
		t.Fatalf("NewIndoorSource() error = %v", err)
	}
	defer src.Close()

	if src.Name() != "indoor" {
		t.Errorf("Name() = %q, want indoor", src.Name())
	}

	r, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if r.Temperature != 21.5 || r.Humidity != 44.2 || r.Pressure != 1009.6 {
		t.Errorf("reading = %+v", r)
	}
}

func TestNewIndoorSource_Invalid(t *testing.T) {
	tests := []struct {
		name string
		url  string
		opts []SourceOption
	}{
		{"no scheme", "192.168.1.40", nil},
		{"bad url", "http://[::1", nil},
		{"odd headers", "http://sensor.local", []SourceOption{WithHeaders("X-Only-Key")}},
		{"zero timeout", "http://sensor.local", []SourceOption{WithTimeout(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewIndoorSource(tt.url, tt.opts...); err == nil {
				t.Error("NewIndoorSource() expected error, got nil")
			}
		})
	}
}

func TestNewOutdoorSource(t *testing.T) {
	var gotQuery url.Values
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{
			"weather": [{"id": 500, "main": "Rain", "icon": "10d"}],
			"main": {"temp": 7.25, "humidity": 81, "pressure": 1012}
		}`))
	}))
	defer ts.Close()

	src, err := NewOutdoorSource(48.2082, 16.3738, "secret", WithBaseURL(ts.URL))
	if err != nil {
		t.Fatalf("NewOutdoorSource() error = %v", err)
	}
	defer src.Close()

	r, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if gotPath != "/data/2.5/weather" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery.Get("lat") != "48.2082" || gotQuery.Get("lon") != "16.3738" {
		t.Errorf("coordinates = %q,%q", gotQuery.Get("lat"), gotQuery.Get("lon"))
	}
	if gotQuery.Get("appid") != "secret" || gotQuery.Get("units") != "metric" {
		t.Errorf("query = %v", gotQuery)
	}
	if r.Temperature != 7.25 || r.Humidity != 81 || r.Pressure != 1012 || r.Icon != "10d" {
		t.Errorf("reading = %+v", r)
	}
}

func TestNewOutdoorSource_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		key      string
		opts     []SourceOption
	}{
		{"empty key", 0, 0, "", nil},
		{"latitude", 91, 0, "k", nil},
		{"longitude", 0, -181, "k", nil},
		{"bad base", 0, 0, "k", []SourceOption{WithBaseURL("not a url")}},
		{"empty units", 0, 0, "k", []SourceOption{WithUnits("")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewOutdoorSource(tt.lat, tt.lon, tt.key, tt.opts...); err == nil {
				t.Error("NewOutdoorSource() expected error, got nil")
			}
		})
	}
}

func TestOutdoorURL(t *testing.T) {
	got := OutdoorURL("", 1.5, -2, "abc", "")
	want := "http://api.openweathermap.org/data/2.5/weather?appid=abc&lat=1.5&lon=-2&units=metric"
	if got != want {
		t.Errorf("OutdoorURL() = %q, want %q", got, want)
	}

	got = OutdoorURL("https://owm.example.com/", 0, 0, "a b", "imperial")
	if !strings.HasPrefix(got, "https://owm.example.com/data/2.5/weather?") {
		t.Errorf("OutdoorURL() = %q, trailing slash not trimmed", got)
	}
	if !strings.Contains(got, "appid=a+b") || !strings.Contains(got, "units=imperial") {
		t.Errorf("OutdoorURL() = %q, query not encoded", got)
	}
}
