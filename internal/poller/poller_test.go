package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jpalmerr/weatherpanel/internal/store"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSource returns queued outcomes in order, repeating the last one.
type fakeSource struct {
	mu       sync.Mutex
	outcomes []func() (store.Reading, error)
	calls    atomic.Int32
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(ctx context.Context) (store.Reading, error) {
	n := int(f.calls.Add(1)) - 1
	f.mu.Lock()
	if n >= len(f.outcomes) {
		n = len(f.outcomes) - 1
	}
	out := f.outcomes[n]
	f.mu.Unlock()
	return out()
}

func ok(temp float64) func() (store.Reading, error) {
	return func() (store.Reading, error) { return store.Reading{Temperature: temp}, nil }
}

func fail(msg string) func() (store.Reading, error) {
	return func() (store.Reading, error) { return store.Reading{}, errors.New(msg) }
}

// fakeGate is a manually driven power gate.
type fakeGate struct {
	mu      sync.Mutex
	active  bool
	changed chan struct{}
}

func newFakeGate(active bool) *fakeGate {
	return &fakeGate{active: active, changed: make(chan struct{})}
}

func (g *fakeGate) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

func (g *fakeGate) Changed() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.changed
}

func (g *fakeGate) Set(active bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active == active {
		return
	}
	g.active = active
	close(g.changed)
	g.changed = make(chan struct{})
}

func TestPoller_PollOnceSuccess(t *testing.T) {
	slot := store.NewSlot(store.IndoorName, nil)
	p := New(Config{
		Source:  &fakeSource{outcomes: []func() (store.Reading, error){ok(21.3)}},
		Slot:    slot,
		Gate:    newFakeGate(true),
		Cadence: time.Second,
		Logger:  testLogger(),
	})

	snap := p.PollOnce(context.Background())
	if !snap.Fresh || snap.Latest.Temperature != 21.3 {
		t.Errorf("snapshot = %+v, want fresh 21.3", snap)
	}
}

func TestPoller_FailureKeepsLastReading(t *testing.T) {
	slot := store.NewSlot(store.OutdoorName, nil)
	p := New(Config{
		Source:  &fakeSource{outcomes: []func() (store.Reading, error){ok(5), fail("timeout")}},
		Slot:    slot,
		Gate:    newFakeGate(true),
		Cadence: time.Second,
		Logger:  testLogger(),
	})

	p.PollOnce(context.Background())
	snap := p.PollOnce(context.Background())

	if snap.Fresh {
		t.Error("Fresh = true after failure")
	}
	if snap.Latest == nil || snap.Latest.Temperature != 5 {
		t.Errorf("Latest = %+v, want previous reading kept", snap.Latest)
	}
}

func TestPoller_SourcePanicIsFetchFault(t *testing.T) {
	slot := store.NewSlot(store.IndoorName, nil)
	p := New(Config{
		Source: &fakeSource{outcomes: []func() (store.Reading, error){
			func() (store.Reading, error) { panic("sensor exploded") },
		}},
		Slot:    slot,
		Gate:    newFakeGate(true),
		Cadence: time.Second,
		Logger:  testLogger(),
	})

	snap := p.PollOnce(context.Background())
	if snap.Fresh {
		t.Error("Fresh = true after panic")
	}
	if snap.LastError == "" {
		t.Error("LastError empty after panic")
	}
}

func TestPoller_RunPollsOnCadence(t *testing.T) {
	src := &fakeSource{outcomes: []func() (store.Reading, error){ok(1)}}
	p := New(Config{
		Source:  src,
		Slot:    store.NewSlot(store.IndoorName, nil),
		Gate:    newFakeGate(true),
		Cadence: 10 * time.Millisecond,
		Logger:  testLogger(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := p.Run(ctx); err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
	if n := src.calls.Load(); n < 3 {
		t.Errorf("fetches = %d, want at least 3", n)
	}
}

func TestPoller_NeverFetchesWhileInactive(t *testing.T) {
	src := &fakeSource{outcomes: []func() (store.Reading, error){ok(1)}}
	p := New(Config{
		Source:          src,
		Slot:            store.NewSlot(store.IndoorName, nil),
		Gate:            newFakeGate(false),
		Cadence:         time.Millisecond,
		InactiveCadence: 5 * time.Millisecond,
		Logger:          testLogger(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	_ = p.Run(ctx)

	if n := src.calls.Load(); n != 0 {
		t.Errorf("fetches while inactive = %d, want 0", n)
	}
}

func TestPoller_WakesOnTransition(t *testing.T) {
	src := &fakeSource{outcomes: []func() (store.Reading, error){ok(1)}}
	gate := newFakeGate(false)
	slot := store.NewSlot(store.IndoorName, nil)
	p := New(Config{
		Source:          src,
		Slot:            slot,
		Gate:            gate,
		Cadence:         time.Hour,
		InactiveCadence: time.Hour,
		Logger:          testLogger(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = p.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	gate.Set(true)

	deadline := time.After(time.Second)
	for !slot.Load().Fresh {
		select {
		case <-deadline:
			t.Fatal("poller did not fetch after gate became active")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestPoller_RunReturnsOnCancelledContext(t *testing.T) {
	src := &fakeSource{outcomes: []func() (store.Reading, error){ok(1)}}
	p := New(Config{
		Source:  src,
		Slot:    store.NewSlot(store.IndoorName, nil),
		Gate:    newFakeGate(true),
		Cadence: time.Hour,
		Logger:  testLogger(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Run(ctx); err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
	if n := src.calls.Load(); n != 0 {
		t.Errorf("fetches = %d, want 0 with cancelled context", n)
	}
}
