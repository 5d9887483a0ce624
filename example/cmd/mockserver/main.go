// Standalone mock sensor and weather service for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/weatherpanel run -c example/panel.yaml
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jpalmerr/weatherpanel/example/mock"
)

func main() {
	addr := flag.String("addr", ":9999", "listen address")
	failure := flag.Float64("failure", 0.1, "share of requests answered with 503")
	flag.Parse()

	fmt.Printf("Mock sensor and weather service starting on %s\n", *addr)
	fmt.Println("  indoor:  GET /")
	fmt.Println("  outdoor: GET /data/2.5/weather?lat=..&lon=..&appid=..")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	server := mock.New(*failure, time.Now().UnixNano(), slog.Default())
	if err := http.ListenAndServe(*addr, server.Handler()); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
