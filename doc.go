// Package weatherpanel drives a small indoor/outdoor weather display.
//
// A panel polls a local sensor and a weather service on independent
// cadences, keeps the latest reading of each in a slot, and repaints a
// display once per second. A time-of-day power gate switches the backlight
// and suspends rendering and polling at night. A heartbeat indicator blinks
// green while both readings are fresh and red otherwise.
//
// # Quick Start
//
//	indoor, _ := weatherpanel.NewIndoorSource("http://192.168.1.40/")
//	outdoor, _ := weatherpanel.NewOutdoorSource(48.2082, 16.3738, os.Getenv("OWM_API_KEY"))
//
//	p, _ := weatherpanel.New(
//	    weatherpanel.WithIndoor(indoor),
//	    weatherpanel.WithOutdoor(outdoor),
//	    weatherpanel.WithDisplay(myDisplay),
//	    weatherpanel.WithBacklight(myBacklight),
//	)
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	p.Start(ctx) // blocks until context is cancelled
//
// # Faults
//
// A failed fetch (network error, timeout, non-200, malformed JSON) only
// marks its slot stale; the last good values stay on screen. A failed
// display update turns the indicator red for that tick. Anything else,
// including a lost display ([ErrDisplayLost]) or a failing backlight, tears
// down the whole assembly, which is rebuilt from scratch after a backoff.
//
// # Architecture
//
// The panel consists of several internal packages (under internal/):
//
//   - store: copy-on-write slots and the commit hub
//   - poller: HTTP client, JSON decoding and the per-source poll loop
//   - power: the active-hours window and the edge-triggered gate
//   - render: formatting, heartbeat and the render loop
//   - supervisor: crash-only restarts
//   - display: terminal, MQTT, log and GPIO capabilities
//   - server: the optional status API
//
// The cmd/weatherpanel binary wires these together from a YAML config file.
package weatherpanel
