// Command example drives a panel against the mock sensor and weather
// service, printing frames to the log and serving the status page.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/weatherpanel"
	"github.com/jpalmerr/weatherpanel/example/mock"
	"github.com/jpalmerr/weatherpanel/internal/display"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// mock sensor and weather service, failing 10% of requests
	go func() {
		if err := http.ListenAndServe(":9999", mock.New(0.1, time.Now().UnixNano(), logger).Handler()); err != nil {
			logger.Error("mock server error", "error", err)
		}
	}()
	time.Sleep(100 * time.Millisecond)

	indoor, err := weatherpanel.NewIndoorSource("http://localhost:9999/")
	if err != nil {
		logger.Error("failed to create indoor source", "error", err)
		os.Exit(1)
	}
	outdoor, err := weatherpanel.NewOutdoorSource(48.2082, 16.3738, "demo",
		weatherpanel.WithBaseURL("http://localhost:9999"),
	)
	if err != nil {
		logger.Error("failed to create outdoor source", "error", err)
		os.Exit(1)
	}

	screen := display.NewLog(logger)

	// always lit, so the demo works at any hour
	panel, err := weatherpanel.New(
		weatherpanel.WithIndoor(indoor),
		weatherpanel.WithOutdoor(outdoor),
		weatherpanel.WithDisplay(screen),
		weatherpanel.WithBacklight(screen),
		weatherpanel.WithActiveHours(0, 23),
		weatherpanel.WithStatusPort(8080),
		weatherpanel.WithTitle("Demo Panel"),
		weatherpanel.WithLogger(logger),
	)
	if err != nil {
		logger.Error("failed to create panel", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Weather Panel Demo                                  ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Frames are logged once a second                     ║")
	fmt.Println("  ║   Status page: http://localhost:8080                  ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := panel.Start(ctx); err != nil {
		logger.Error("panel error", "error", err)
		os.Exit(1)
	}
}
