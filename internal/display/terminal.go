package display

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/jpalmerr/weatherpanel/internal/render"
)

const (
	pagePanel = "panel"
	pageOff   = "off"
)

// iconLabels maps OpenWeatherMap condition codes (without the day/night
// suffix) to short labels.
var iconLabels = map[string]string{
	"01": "☀ clear",
	"02": "🌤 few clouds",
	"03": "☁ clouds",
	"04": "☁ overcast",
	"09": "🌧 showers",
	"10": "🌦 rain",
	"11": "⛈ storm",
	"13": "❄ snow",
	"50": "🌫 mist",
}

// IconLabel returns a printable label for a condition code like "10d".
func IconLabel(code string) string {
	if len(code) >= 2 {
		if label, ok := iconLabels[code[:2]]; ok {
			return label
		}
	}
	return code
}

// Terminal draws the panel in a terminal using tview.
//
// Setters only update an in-memory model and wake a flusher goroutine,
// which pushes the model to the screen with QueueUpdateDraw. Once the tview
// application stops, every setter returns [render.ErrDisplayLost].
type Terminal struct {
	app     *tview.Application
	pages   *tview.Pages
	outdoor *tview.TextView
	indoor  *tview.TextView
	status  *tview.TextView

	mu        sync.Mutex
	fields    map[render.Field]string
	indicator render.Color
	icon      string
	backlight bool
	updated   time.Time

	now     func() time.Time
	refresh chan struct{}
	ready   chan struct{}
	done    chan struct{}

	started  atomic.Bool
	doneOnce sync.Once
}

// TerminalOption configures a [Terminal].
type TerminalOption func(*Terminal)

// WithScreen draws on the given screen instead of the process terminal.
func WithScreen(screen tcell.Screen) TerminalOption {
	return func(t *Terminal) {
		t.app.SetScreen(screen)
	}
}

// NewTerminal builds the terminal layout. Call [Terminal.Start] to begin
// drawing.
func NewTerminal(opts ...TerminalOption) *Terminal {
	makePane := func(title string) *tview.TextView {
		tv := tview.NewTextView().
			SetDynamicColors(true).
			SetWrap(false)
		tv.SetBorder(true).SetTitle(title).SetTitleAlign(tview.AlignLeft)
		return tv
	}

	outdoor := makePane(" Outdoor ")
	indoor := makePane(" Indoor ")
	status := tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	status.SetTextColor(tcell.ColorYellow)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(outdoor, 6, 0, false).
		AddItem(indoor, 5, 0, false).
		AddItem(status, 1, 0, false)

	pages := tview.NewPages().
		AddPage(pagePanel, layout, true, true).
		AddPage(pageOff, tview.NewBox(), true, false)

	t := &Terminal{
		app:       tview.NewApplication().EnableMouse(false),
		pages:     pages,
		outdoor:   outdoor,
		indoor:    indoor,
		status:    status,
		fields:    make(map[render.Field]string, len(render.Fields)),
		backlight: true,
		now:       time.Now,
		refresh:   make(chan struct{}, 1),
		ready:     make(chan struct{}),
		done:      make(chan struct{}),
	}
	t.app.SetRoot(pages, true)

	var once sync.Once
	t.app.SetBeforeDrawFunc(func(screen tcell.Screen) bool {
		once.Do(func() { close(t.ready) })
		return false
	})

	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start runs the tview application in the background. It returns
// immediately; [Terminal.Done] closes when the application exits.
func (t *Terminal) Start() {
	if !t.started.CompareAndSwap(false, true) {
		return
	}
	go t.flush()
	go func() {
		defer t.markDone()
		_ = t.app.Run()
	}()
}

// Stop ends the tview application.
func (t *Terminal) Stop() {
	t.app.Stop()
	if !t.started.Load() {
		t.markDone()
	}
}

// Done is closed once the terminal can no longer draw.
func (t *Terminal) Done() <-chan struct{} {
	return t.done
}

// WaitReady blocks until the first screen draw or until the terminal stops.
func (t *Terminal) WaitReady() {
	select {
	case <-t.ready:
	case <-t.done:
	}
}

func (t *Terminal) markDone() {
	t.doneOnce.Do(func() { close(t.done) })
}

// SetText implements render.Display.
func (t *Terminal) SetText(field render.Field, text string) error {
	return t.update(func() { t.fields[field] = text })
}

// SetIndicator implements render.Display.
func (t *Terminal) SetIndicator(color render.Color) error {
	return t.update(func() {
		t.indicator = color
		t.updated = t.now()
	})
}

// ShowIcon implements render.Display.
func (t *Terminal) ShowIcon(code string) error {
	return t.update(func() { t.icon = code })
}

// HideIcon implements render.Display.
func (t *Terminal) HideIcon() error {
	return t.update(func() { t.icon = "" })
}

// SetBacklight implements power.Backlight.
func (t *Terminal) SetBacklight(on bool) error {
	return t.update(func() { t.backlight = on })
}

func (t *Terminal) update(fn func()) error {
	select {
	case <-t.done:
		return fmt.Errorf("terminal: %w", render.ErrDisplayLost)
	default:
	}

	t.mu.Lock()
	fn()
	t.mu.Unlock()

	select {
	case t.refresh <- struct{}{}:
	default:
	}
	return nil
}

// flush pushes the model to the screen whenever it changes. Bursts of
// setter calls collapse into one draw.
func (t *Terminal) flush() {
	for {
		select {
		case <-t.done:
			return
		case <-t.refresh:
		}

		view := t.View()
		select {
		case <-t.done:
			return
		default:
		}

		// QueueUpdateDraw blocks once the app stops draining its queue
		queued := make(chan struct{})
		go func() {
			defer close(queued)
			t.app.QueueUpdateDraw(func() {
				t.outdoor.SetText(view.Outdoor)
				t.indoor.SetText(view.Indoor)
				t.status.SetText(view.Status)
				if view.Backlight {
					t.pages.SwitchToPage(pagePanel)
				} else {
					t.pages.SwitchToPage(pageOff)
				}
			})
		}()

		select {
		case <-queued:
		case <-t.done:
			return
		}
	}
}

// TerminalView is the text content of the terminal panes.
type TerminalView struct {
	Outdoor   string
	Indoor    string
	Status    string
	Backlight bool
}

// View renders the current model into pane text.
func (t *Terminal) View() TerminalView {
	t.mu.Lock()
	defer t.mu.Unlock()

	var outdoor strings.Builder
	fmt.Fprintf(&outdoor, " %s  %s  %s",
		t.fields[render.OutdoorTemperature],
		t.fields[render.OutdoorHumidity],
		t.fields[render.OutdoorPressure],
	)
	if t.icon != "" {
		fmt.Fprintf(&outdoor, "\n %s", IconLabel(t.icon))
	}

	indoor := fmt.Sprintf(" %s  %s  %s",
		t.fields[render.IndoorTemperature],
		t.fields[render.IndoorHumidity],
		t.fields[render.IndoorPressure],
	)

	dot := "○"
	if t.indicator != render.ColorOff {
		dot = "●"
	}
	status := fmt.Sprintf("[%s]%s[-] ", t.indicator.String(), dot)
	if t.updated.IsZero() {
		status += "waiting for first frame"
	} else {
		status += "updated " + humanize.RelTime(t.updated, t.now(), "ago", "from now")
	}

	return TerminalView{
		Outdoor:   outdoor.String(),
		Indoor:    indoor,
		Status:    status,
		Backlight: t.backlight,
	}
}
