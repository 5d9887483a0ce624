// Package mock serves fake indoor-sensor and weather-service responses for
// demos and manual testing.
//
// Readings drift slowly between requests. A configurable share of requests
// fails with 503 so the panel's error indicator can be seen.
package mock

import (
	"log/slog"
	"math/rand"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// icons cycled by the fake weather service.
var icons = []string{"01d", "02d", "03d", "04n", "09d", "10d", "11n", "13d", "50n"}

type reading struct {
	temp, humidity, pressure float64
}

// walk nudges every value by up to step in either direction.
func (r *reading) walk(rng *rand.Rand, step float64) {
	r.temp += (rng.Float64()*2 - 1) * step
	r.humidity = clamp(r.humidity+(rng.Float64()*2-1)*step*2, 0, 100)
	r.pressure += (rng.Float64()*2 - 1) * step
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

// Server holds the drifting state behind the fake endpoints.
type Server struct {
	mu      sync.Mutex
	rng     *rand.Rand
	indoor  reading
	outdoor reading
	iconIdx int
	failure float64
	logger  *slog.Logger
}

// New creates a mock server. failure is the share of requests, 0..1, that
// answer 503.
func New(failure float64, seed int64, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		rng:     rand.New(rand.NewSource(seed)),
		indoor:  reading{temp: 21.5, humidity: 40, pressure: 1013},
		outdoor: reading{temp: 7.2, humidity: 81, pressure: 1012},
		failure: clamp(failure, 0, 1),
		logger:  logger,
	}
}

// Handler routes "/" to the indoor sensor and "/data/2.5/weather" to the
// weather service.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/data/2.5/weather", s.handleWeather).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleSensor).Methods(http.MethodGet)
	return r
}

func (s *Server) fail() bool {
	return s.rng.Float64() < s.failure
}

func (s *Server) handleSensor(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.fail() {
		s.mu.Unlock()
		s.logger.Info("injected failure", "endpoint", "indoor")
		http.Error(w, "sensor busy", http.StatusServiceUnavailable)
		return
	}
	s.indoor.walk(s.rng, 0.1)
	body := map[string]float64{
		"temperature": s.indoor.temp,
		"humidity":    s.indoor.humidity,
		"pressure":    s.indoor.pressure,
	}
	s.mu.Unlock()

	writeJSON(w, body, s.logger)
}

type weatherResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
		Pressure float64 `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Icon string `json:"icon"`
	} `json:"weather"`
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("appid") == "" {
		http.Error(w, `{"cod":401,"message":"Invalid API key"}`, http.StatusUnauthorized)
		return
	}

	s.mu.Lock()
	if s.fail() {
		s.mu.Unlock()
		s.logger.Info("injected failure", "endpoint", "outdoor")
		http.Error(w, "rate limited", http.StatusServiceUnavailable)
		return
	}
	s.outdoor.walk(s.rng, 0.3)
	if s.rng.Intn(20) == 0 {
		s.iconIdx = (s.iconIdx + 1) % len(icons)
	}
	var resp weatherResponse
	resp.Main.Temp = s.outdoor.temp
	resp.Main.Humidity = s.outdoor.humidity
	resp.Main.Pressure = s.outdoor.pressure
	resp.Weather = append(resp.Weather, struct {
		Icon string `json:"icon"`
	}{Icon: icons[s.iconIdx]})
	s.mu.Unlock()

	writeJSON(w, resp, s.logger)
}

func writeJSON(w http.ResponseWriter, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to write response", "error", err)
	}
}
