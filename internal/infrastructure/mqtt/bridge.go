package mqtt

import (
	"fmt"
	"strings"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/NelisKaars/DigitalTwinAnalyzer/internal/infrastructure/config"
)

const (
	defaultConnectTimeout    = 10 * time.Second
	defaultPublishTimeout    = 5 * time.Second
	defaultDisconnectQuiesce = 250 // milliseconds

	// maxPayloadSize caps event payloads at 1MB, in line with typical
	// broker limits.
	maxPayloadSize = 1 << 20

	maxQoS = 2
)

// Logger defines the logging interface for the bridge.
type Logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Bridge republishes twin change events to an MQTT broker.
//
// All methods are safe for concurrent use. PublishEvent satisfies the
// monitor listener's event sink interface.
type Bridge struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig

	connected bool
	connMu    sync.RWMutex

	logger   Logger
	loggerMu sync.RWMutex
}

// Connect establishes the broker connection and announces the bridge as
// online on the retained status topic.
func Connect(cfg config.MQTTConfig) (*Bridge, error) {
	opts := pahomqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port)).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(defaultConnectTimeout)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	b := &Bridge{cfg: cfg}

	// Brokers flag an unclean disconnect by delivering the will message.
	opts.SetWill(b.statusTopic(), "offline", byte(cfg.QoS), true)

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		b.setConnected(true)
		b.publishStatus("online")
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		b.setConnected(false)
		if logger := b.getLogger(); logger != nil {
			logger.Warn("broker connection lost", "error", err)
		}
	})

	b.client = pahomqtt.NewClient(opts)
	token := b.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	b.setConnected(true)
	return b, nil
}

// PublishEvent pushes one twin change notification to the broker under
// <prefix>/<thing-name>.
func (b *Bridge) PublishEvent(thingName string, payload []byte) error {
	topic, err := EventTopic(b.cfg.TopicPrefix, thingName)
	if err != nil {
		return err
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !b.IsConnected() {
		return ErrNotConnected
	}

	qos := b.cfg.QoS
	if qos < 0 || qos > maxQoS {
		qos = 1
	}

	token := b.client.Publish(topic, byte(qos), false, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// Close announces the bridge as offline and disconnects.
func (b *Bridge) Close() error {
	if b.client == nil {
		return nil
	}
	if b.IsConnected() {
		b.publishStatus("offline")
	}
	b.client.Disconnect(defaultDisconnectQuiesce)
	b.setConnected(false)
	return nil
}

// IsConnected returns the last known connection state.
func (b *Bridge) IsConnected() bool {
	b.connMu.RLock()
	defer b.connMu.RUnlock()
	return b.connected && b.client.IsConnected()
}

// SetLogger sets a logger for connection events. Optional.
func (b *Bridge) SetLogger(logger Logger) {
	b.loggerMu.Lock()
	b.logger = logger
	b.loggerMu.Unlock()
}

func (b *Bridge) getLogger() Logger {
	b.loggerMu.RLock()
	defer b.loggerMu.RUnlock()
	return b.logger
}

func (b *Bridge) setConnected(v bool) {
	b.connMu.Lock()
	b.connected = v
	b.connMu.Unlock()
}

func (b *Bridge) statusTopic() string {
	return strings.TrimSuffix(b.cfg.TopicPrefix, "/") + "/status"
}

// publishStatus writes the retained liveness marker. Best effort.
func (b *Bridge) publishStatus(status string) {
	token := b.client.Publish(b.statusTopic(), byte(b.cfg.QoS), true, status)
	token.WaitTimeout(defaultPublishTimeout)
}

// EventTopic builds the publish topic for a thing's events. Thing names may
// not contain MQTT wildcards or topic separators; offending characters are
// replaced with dashes.
func EventTopic(prefix, thingName string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("%w: empty prefix", ErrInvalidTopic)
	}
	if thingName == "" {
		return "", fmt.Errorf("%w: empty thing name", ErrInvalidTopic)
	}

	sanitized := strings.NewReplacer("/", "-", "+", "-", "#", "-").Replace(thingName)
	return strings.TrimSuffix(prefix, "/") + "/" + sanitized, nil
}
