package poller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func serveJSON(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestHTTPSource_IndoorSuccess(t *testing.T) {
	server := serveJSON(http.StatusOK, `{"temperature": 21.3, "humidity": 40.0, "pressure": 1012}`)
	defer server.Close()

	src := NewHTTPSource("indoor", server.URL, nil, time.Second, IndoorPaths, nil)
	defer src.Close()

	r, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if r.Temperature != 21.3 || r.Humidity != 40 || r.Pressure != 1012 {
		t.Errorf("reading = %+v, want 21.3/40/1012", r)
	}
	if r.Icon != "" {
		t.Errorf("Icon = %q, want empty for indoor", r.Icon)
	}
	if r.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}
}

func TestHTTPSource_OutdoorSuccess(t *testing.T) {
	server := serveJSON(http.StatusOK, `{
		"weather": [{"id": 500, "main": "Rain", "icon": "10d"}],
		"main": {"temp": 7.45, "humidity": 87, "pressure": 1003}
	}`)
	defer server.Close()

	src := NewHTTPSource("outdoor", server.URL, nil, time.Second, OutdoorPaths, nil)

	r, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if r.Temperature != 7.45 || r.Humidity != 87 || r.Pressure != 1003 {
		t.Errorf("reading = %+v", r)
	}
	if r.Icon != "10d" {
		t.Errorf("Icon = %q, want %q", r.Icon, "10d")
	}
}

func TestHTTPSource_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		paths   FieldPaths
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `{}`, IndoorPaths, ErrStatus},
		{"unauthorized", http.StatusUnauthorized, `{"cod": 401}`, OutdoorPaths, ErrStatus},
		{"not json", http.StatusOK, `<html>`, IndoorPaths, ErrMalformed},
		{"missing field", http.StatusOK, `{"temperature": 20, "humidity": 30}`, IndoorPaths, ErrMalformed},
		{"missing icon", http.StatusOK, `{"main": {"temp": 1, "humidity": 2, "pressure": 3}, "weather": []}`, OutdoorPaths, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := serveJSON(tt.status, tt.body)
			defer server.Close()

			src := NewHTTPSource("test", server.URL, nil, time.Second, tt.paths, nil)
			_, err := src.Fetch(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Fetch() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHTTPSource_Unreachable(t *testing.T) {
	server := serveJSON(http.StatusOK, `{}`)
	url := server.URL
	server.Close()

	src := NewHTTPSource("indoor", url, nil, time.Second, IndoorPaths, nil)
	if _, err := src.Fetch(context.Background()); err == nil {
		t.Error("Fetch() error = nil for closed server")
	}
}

func TestNewHTTPSource_DefaultTimeout(t *testing.T) {
	src := NewHTTPSource("indoor", "http://localhost", nil, 0, IndoorPaths, nil)
	if src.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", src.timeout, DefaultTimeout)
	}
}
