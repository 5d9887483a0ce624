package display

import (
	"log/slog"
	"sync"

	"github.com/jpalmerr/weatherpanel/internal/render"
)

// Log is a headless display that writes frames to a structured logger.
//
// Field updates are buffered and emitted as one Debug record when the
// indicator is set, which the render loop does last on every tick. Icon and
// backlight changes are logged at Info.
type Log struct {
	logger *slog.Logger

	mu     sync.Mutex
	fields map[render.Field]string
	icon   string
}

// NewLog creates a Log display. A nil logger uses slog.Default().
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{
		logger: logger.With("display", "log"),
		fields: make(map[render.Field]string, len(render.Fields)),
	}
}

// SetText implements render.Display.
func (l *Log) SetText(field render.Field, text string) error {
	l.mu.Lock()
	l.fields[field] = text
	l.mu.Unlock()
	return nil
}

// SetIndicator implements render.Display.
func (l *Log) SetIndicator(color render.Color) error {
	l.mu.Lock()
	attrs := make([]any, 0, 2*len(render.Fields)+2)
	for _, f := range render.Fields {
		attrs = append(attrs, f.String(), l.fields[f])
	}
	l.mu.Unlock()

	attrs = append(attrs, "indicator", color.String())
	l.logger.Debug("frame", attrs...)
	return nil
}

// ShowIcon implements render.Display.
func (l *Log) ShowIcon(code string) error {
	l.mu.Lock()
	l.icon = code
	l.mu.Unlock()
	l.logger.Info("icon shown", "icon", code)
	return nil
}

// HideIcon implements render.Display.
func (l *Log) HideIcon() error {
	l.mu.Lock()
	l.icon = ""
	l.mu.Unlock()
	l.logger.Info("icon hidden")
	return nil
}

// SetBacklight implements power.Backlight.
func (l *Log) SetBacklight(on bool) error {
	l.logger.Info("backlight", "on", on)
	return nil
}

// Text returns the last text pushed for a field.
func (l *Log) Text(field render.Field) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fields[field]
}

// Icon returns the icon currently shown, or "" when hidden.
func (l *Log) Icon() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.icon
}
