package poller

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/weatherpanel/internal/store"
)

// DefaultInactiveCadence is the sleep between power checks while the
// display is off.
const DefaultInactiveCadence = time.Hour

// PowerGate reports whether the display is active.
type PowerGate interface {
	Active() bool
	// Changed returns a channel closed on the next power transition.
	Changed() <-chan struct{}
}

// Config configures a [Poller].
type Config struct {
	// Source is fetched once per cadence.
	Source Source

	// Slot receives every fetch outcome.
	Slot *store.Slot

	// Gate suppresses fetching while the display is inactive.
	Gate PowerGate

	// Cadence is the sleep after each fetch attempt.
	Cadence time.Duration

	// InactiveCadence is the sleep between power checks while inactive.
	// Defaults to [DefaultInactiveCadence].
	InactiveCadence time.Duration

	Logger *slog.Logger
}

// Poller calls its source on a fixed cadence and records the outcome in its
// slot.
//
// Fetch failures never escape the loop: they clear the slot's freshness and
// are logged. While the gate is inactive the poller does not fetch at all;
// it sleeps the inactive cadence, waking early if the gate transitions.
type Poller struct {
	source          Source
	slot            *store.Slot
	gate            PowerGate
	cadence         time.Duration
	inactiveCadence time.Duration
	logger          *slog.Logger
}

// New creates a [Poller].
func New(cfg Config) *Poller {
	inactive := cfg.InactiveCadence
	if inactive <= 0 {
		inactive = DefaultInactiveCadence
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		source:          cfg.Source,
		slot:            cfg.Slot,
		gate:            cfg.Gate,
		cadence:         cfg.Cadence,
		inactiveCadence: inactive,
		logger:          logger.With("source", cfg.Source.Name()),
	}
}

// Run polls until ctx is cancelled. It always returns nil; there is no
// graceful shutdown beyond cancellation.
func (p *Poller) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		// grab the channel before checking so a transition in between wakes us
		changed := p.gate.Changed()
		if !p.gate.Active() {
			p.logger.Debug("display inactive, skipping fetch", "recheck_in", p.inactiveCadence.String())
			if !sleep(ctx, p.inactiveCadence, changed) {
				return nil
			}
			continue
		}

		p.PollOnce(ctx)

		if !sleep(ctx, p.cadence, nil) {
			return nil
		}
	}
}

// PollOnce performs a single fetch and records the outcome.
func (p *Poller) PollOnce(ctx context.Context) store.Snapshot {
	start := time.Now()
	reading, err := p.safeFetch(ctx)
	if err != nil {
		p.logger.Warn("fetch failed",
			"error", err.Error(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
		return p.slot.MarkStale(err)
	}

	p.logger.Debug("fetch completed",
		"temperature", reading.Temperature,
		"humidity", reading.Humidity,
		"pressure", reading.Pressure,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return p.slot.Commit(reading)
}

// safeFetch calls the source with panic recovery.
// A panicking source is treated like any other fetch fault; the stack is
// logged with a correlation ID.
func (p *Poller) safeFetch(ctx context.Context) (reading store.Reading, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			p.logger.Error("source panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("source panic (correlation_id: %s)", correlationID)
		}
	}()
	return p.source.Fetch(ctx)
}

// sleep waits for d, ctx cancellation, or wake being closed.
// It returns false only if ctx was cancelled.
func sleep(ctx context.Context, d time.Duration, wake <-chan struct{}) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	case <-wake:
		return true
	}
}
