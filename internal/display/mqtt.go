package display

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	jsoniter "github.com/json-iterator/go"

	"github.com/jpalmerr/weatherpanel/internal/render"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// DefaultMQTTTopic is the topic frames are published to.
	DefaultMQTTTopic = "weatherpanel/frame"

	defaultPublishTimeout = 2 * time.Second
)

// Publisher is the part of an MQTT client the mirror needs.
// mqtt.Client satisfies it.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MirrorFrame is the JSON document published for every rendered frame.
type MirrorFrame struct {
	Fields    map[render.Field]string `json:"fields"`
	Indicator render.Color            `json:"indicator"`
	Icon      string                  `json:"icon,omitempty"`
	Backlight bool                    `json:"backlight"`
	At        time.Time               `json:"at"`
}

// MQTTMirror republishes the panel to an MQTT topic.
//
// A frame is published when the indicator is set, which closes every tick,
// and when the backlight changes. Publish failures are logged and never
// returned, so a broker outage cannot degrade the physical panel.
type MQTTMirror struct {
	pub     Publisher
	topic   string
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time

	mu    sync.Mutex
	frame MirrorFrame
}

// MirrorOption configures an [MQTTMirror].
type MirrorOption func(*MQTTMirror)

// WithTopic sets the publish topic.
func WithTopic(topic string) MirrorOption {
	return func(m *MQTTMirror) {
		if topic != "" {
			m.topic = topic
		}
	}
}

// WithPublishTimeout bounds how long a publish may wait for the broker.
func WithPublishTimeout(d time.Duration) MirrorOption {
	return func(m *MQTTMirror) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// NewMQTTMirror creates a mirror publishing through pub.
func NewMQTTMirror(pub Publisher, logger *slog.Logger, opts ...MirrorOption) *MQTTMirror {
	if logger == nil {
		logger = slog.Default()
	}
	m := &MQTTMirror{
		pub:     pub,
		topic:   DefaultMQTTTopic,
		timeout: defaultPublishTimeout,
		logger:  logger.With("display", "mqtt"),
		now:     time.Now,
		frame: MirrorFrame{
			Fields:    make(map[render.Field]string, len(render.Fields)),
			Backlight: true,
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetText implements render.Display.
func (m *MQTTMirror) SetText(field render.Field, text string) error {
	m.mu.Lock()
	m.frame.Fields[field] = text
	m.mu.Unlock()
	return nil
}

// SetIndicator implements render.Display.
func (m *MQTTMirror) SetIndicator(color render.Color) error {
	m.mu.Lock()
	m.frame.Indicator = color
	m.mu.Unlock()
	m.publish()
	return nil
}

// ShowIcon implements render.Display.
func (m *MQTTMirror) ShowIcon(code string) error {
	m.mu.Lock()
	m.frame.Icon = code
	m.mu.Unlock()
	return nil
}

// HideIcon implements render.Display.
func (m *MQTTMirror) HideIcon() error {
	m.mu.Lock()
	m.frame.Icon = ""
	m.mu.Unlock()
	return nil
}

// SetBacklight implements power.Backlight.
func (m *MQTTMirror) SetBacklight(on bool) error {
	m.mu.Lock()
	m.frame.Backlight = on
	m.mu.Unlock()
	m.publish()
	return nil
}

func (m *MQTTMirror) publish() {
	m.mu.Lock()
	frame := m.frame
	frame.Fields = make(map[render.Field]string, len(m.frame.Fields))
	for k, v := range m.frame.Fields {
		frame.Fields[k] = v
	}
	m.mu.Unlock()
	frame.At = m.now()

	payload, err := json.Marshal(frame)
	if err != nil {
		m.logger.Warn("encode frame failed", "error", err)
		return
	}

	token := m.pub.Publish(m.topic, 0, true, payload)
	if !token.WaitTimeout(m.timeout) {
		m.logger.Warn("publish timed out", "topic", m.topic, "timeout", m.timeout.String())
		return
	}
	if err := token.Error(); err != nil {
		m.logger.Warn("publish failed", "topic", m.topic, "error", err)
	}
}

// MQTTConfig holds broker connection settings.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

// ConnectMQTT creates a paho client and waits for the first connection.
// The client reconnects on its own afterwards.
func ConnectMQTT(ctx context.Context, cfg MQTTConfig, logger *slog.Logger) (mqtt.Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "weatherpanel"
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("mqtt connected", "broker", cfg.Broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return nil, fmt.Errorf("mqtt connect: %w", err)
			}
			return client, nil
		}
		select {
		case <-ctx.Done():
			client.Disconnect(250)
			return nil, ctx.Err()
		default:
		}
	}
}
