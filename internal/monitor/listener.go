package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/NelisKaars/DigitalTwinAnalyzer/internal/ditto"
	"github.com/NelisKaars/DigitalTwinAnalyzer/internal/twin"
)

// defaultPingInterval is the keep-alive cadence when none is configured.
const defaultPingInterval = 30 * time.Second

// handshakeTimeout bounds the WebSocket dial.
const handshakeTimeout = 10 * time.Second

// Logger defines the logging interface for the listener.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// EventSink receives every successfully parsed change notification.
// Implemented by the MQTT bridge; optional.
type EventSink interface {
	PublishEvent(thingName string, payload []byte) error
}

// wsConn is the slice of *websocket.Conn the listener uses, extracted so
// message handling is testable without a live socket.
type wsConn interface {
	WriteJSON(v any) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// controlFrame is a Ditto protocol control message sent by the listener.
type controlFrame struct {
	Topic   string         `json:"topic"`
	Path    string         `json:"path"`
	Headers map[string]any `json:"headers"`
	Value   any            `json:"value,omitempty"`
}

// envelope is an inbound Ditto protocol event frame.
type envelope struct {
	Topic string `json:"topic"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// Options configure a Listener.
type Options struct {
	// URL is the Ditto WebSocket endpoint (ws://host:port/ws/2).
	URL string

	// Credentials authenticate the connection.
	Credentials ditto.Credentials

	// Namespace scopes the subscription topics.
	Namespace string

	// PingInterval is the keep-alive cadence. Defaults to 30 seconds.
	PingInterval time.Duration

	// Output receives the operator-facing change report. Defaults to stdout.
	Output io.Writer
}

// Listener maintains the connection and prints twin changes as they arrive.
type Listener struct {
	opts    Options
	logger  Logger
	sink    EventSink
	running atomic.Bool
}

// New creates a Listener. The sink may be nil.
func New(opts Options) *Listener {
	if opts.PingInterval <= 0 {
		opts.PingInterval = defaultPingInterval
	}
	if opts.Namespace == "" {
		opts.Namespace = twin.DefaultNamespace
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Listener{
		opts:   opts,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the listener.
func (l *Listener) SetLogger(logger Logger) {
	l.logger = logger
}

// SetEventSink attaches an event sink for republishing change notifications.
func (l *Listener) SetEventSink(sink EventSink) {
	l.sink = sink
}

// Run connects, subscribes, and blocks printing change notifications until
// the context is cancelled or the connection drops.
func (l *Listener) Run(ctx context.Context) error {
	dialer := &websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	header := http.Header{}
	header.Set("Authorization", l.opts.Credentials.AuthHeader())

	l.logger.Info("connecting", "url", l.opts.URL)
	conn, resp, err := dialer.DialContext(ctx, l.opts.URL, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("monitor: connecting to %s: %w (status %d)", l.opts.URL, err, resp.StatusCode)
		}
		return fmt.Errorf("monitor: connecting to %s: %w", l.opts.URL, err)
	}
	defer conn.Close()

	if err := l.subscribe(conn); err != nil {
		return err
	}
	l.logger.Info("subscribed to twin updates, waiting for changes")

	l.running.Store(true)
	defer l.running.Store(false)

	done := make(chan struct{})
	defer close(done)
	go l.keepAlive(conn, done)

	// Unblock the read loop on cancellation.
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("monitor: connection closed: %w", err)
		}
		l.handleMessage(raw)
	}
}

// subscribe sends the two subscription control frames: one naming modify
// commands, one for generic event subscription. Both target the same twin
// event stream.
func (l *Listener) subscribe(conn wsConn) error {
	ns := l.opts.Namespace

	modify := controlFrame{
		Topic:   ns + "/twin-1/things/twin/commands/modify",
		Path:    "/",
		Headers: map[string]any{"correlation-id": uuid.NewString()},
		Value: map[string]any{
			"topic": ns + "/_/_/things/twin/commands/modify",
			"path":  "/",
		},
	}
	if err := conn.WriteJSON(modify); err != nil {
		return fmt.Errorf("monitor: subscribing to modify commands: %w", err)
	}

	events := controlFrame{
		Topic:   ns + "/twin-1/things/twin/events/subscribe",
		Path:    "/",
		Headers: map[string]any{"correlation-id": uuid.NewString()},
	}
	if err := conn.WriteJSON(events); err != nil {
		return fmt.Errorf("monitor: subscribing to events: %w", err)
	}

	return nil
}

// keepAlive sends a fixed-shape ping frame on every tick for the life of the
// connection. It is driven purely by wall-clock ticks, decoupled from
// inbound traffic, and stops when the running flag goes false.
func (l *Listener) keepAlive(conn wsConn, done <-chan struct{}) {
	ticker := time.NewTicker(l.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if !l.running.Load() {
				return
			}
			ping := controlFrame{
				Topic:   l.opts.Namespace + "/ping/things/twin/commands/modify",
				Path:    "/",
				Headers: map[string]any{},
				Value:   "ping",
			}
			if err := conn.WriteJSON(ping); err != nil {
				l.logger.Warn("keep-alive failed", "error", err)
				return
			}
			l.logger.Debug("keep-alive sent")
		}
	}
}

// handleMessage parses and prints one inbound frame. Parse failures are
// logged with the raw payload and swallowed.
func (l *Listener) handleMessage(raw []byte) {
	var msg envelope
	if err := json.Unmarshal(raw, &msg); err != nil {
		l.logger.Error("malformed message", "error", err, "raw", string(raw))
		return
	}

	out := l.opts.Output
	fmt.Fprintln(out, "\n--- Digital Twin Update ---")

	if msg.Topic != "" {
		parts := strings.Split(msg.Topic, "/")
		if len(parts) >= 2 {
			fmt.Fprintf(out, "Thing ID: %s\n", parts[1])
		}
	}
	if msg.Path != "" {
		fmt.Fprintf(out, "Path: %s\n", msg.Path)
	}
	if msg.Value != nil {
		l.printValue(out, msg.Value)
	}

	l.forward(msg, raw)
}

// printValue renders the value payload: maps as key/value lines, everything
// else verbatim. When the value carries a full features document, the
// factory-relevant paths are surfaced explicitly.
func (l *Listener) printValue(out io.Writer, value any) {
	m, isMap := value.(map[string]any)
	if !isMap {
		fmt.Fprintf(out, "Value: %v\n", value)
		return
	}

	fmt.Fprintln(out, "Value:")
	for _, key := range sortedKeys(m) {
		fmt.Fprintf(out, "  %s: %v\n", key, m[key])
	}

	features, ok := m["features"].(map[string]any)
	if !ok {
		return
	}
	if temp, ok := featureProperty(features, "Mixer", "Temperature"); ok {
		fmt.Fprintf(out, "Temperature: %v\n", temp)
	}
	if rpm, ok := featureProperty(features, "Mixer", "RPM"); ok {
		fmt.Fprintf(out, "RPM: %v\n", rpm)
	}
	if status, ok := featureProperty(features, "Alarm", "alarm_status"); ok {
		fmt.Fprintf(out, "Alarm Status: %v\n", status)
	}
}

// forward hands the event to the sink, when one is attached.
func (l *Listener) forward(msg envelope, raw []byte) {
	if l.sink == nil {
		return
	}

	thingName := "unknown"
	if parts := strings.Split(msg.Topic, "/"); len(parts) >= 2 && parts[1] != "" {
		thingName = parts[1]
	}
	if err := l.sink.PublishEvent(thingName, raw); err != nil {
		l.logger.Warn("event bridge publish failed", "thing", thingName, "error", err)
	}
}

// featureProperty digs value.features[feature].properties[property] out of
// the decoded JSON.
func featureProperty(features map[string]any, feature, property string) (any, bool) {
	f, ok := features[feature].(map[string]any)
	if !ok {
		return nil, false
	}
	props, ok := f["properties"].(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := props[property]
	return v, ok
}

// sortedKeys keeps map rendering deterministic.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
