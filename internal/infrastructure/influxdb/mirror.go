package influxdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/NelisKaars/DigitalTwinAnalyzer/internal/infrastructure/config"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultPingTimeout    = 5 * time.Second

	// millisecondsPerSecond converts the configured flush interval for the
	// InfluxDB API.
	millisecondsPerSecond = 1000
)

// Mirror archives replayed sensor values into an InfluxDB bucket.
//
// All methods are safe for concurrent use. Writes are batched and sent
// asynchronously; failures surface through the SetOnError callback.
type Mirror struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	cfg      config.InfluxDBConfig

	connected bool
	mu        sync.RWMutex

	onError func(err error)
}

// Connect creates the client, verifies connectivity with a ping, and
// configures the non-blocking write API.
func Connect(cfg config.InfluxDBConfig) (*Mirror, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = 10
	}

	client := influxdb2.NewClientWithOptions(
		cfg.URL,
		cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(uint(batchSize)).
			SetFlushInterval(uint(flushInterval)*millisecondsPerSecond),
	)

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	m := &Mirror{
		client:    client,
		writeAPI:  client.WriteAPI(cfg.Org, cfg.Bucket),
		cfg:       cfg,
		connected: true,
	}

	go m.handleWriteErrors(m.writeAPI.Errors())

	return m, nil
}

// WriteReplayValue records one numeric sensor value from a replay. Values
// are tagged by thing, feature, and property so a bucket can hold several
// replays side by side. Satisfies the replay engine's mirror interface.
func (m *Mirror) WriteReplayValue(thingID, featureID, property string, value float64) {
	if !m.IsConnected() {
		return
	}

	point := write.NewPoint(
		"twin_replay",
		map[string]string{
			"thing_id": thingID,
			"feature":  featureID,
			"property": property,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)
	m.writeAPI.WritePoint(point)
}

// handleWriteErrors drains async write errors from the WriteAPI.
func (m *Mirror) handleWriteErrors(errorsCh <-chan error) {
	for err := range errorsCh {
		m.mu.RLock()
		callback := m.onError
		m.mu.RUnlock()
		if callback != nil {
			callback(err)
		}
	}
}

// HealthCheck pings the server.
func (m *Mirror) HealthCheck(ctx context.Context) error {
	if !m.IsConnected() {
		return ErrNotConnected
	}

	checkCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	healthy, err := m.client.Ping(checkCtx)
	if err != nil {
		return fmt.Errorf("influxdb health check: %w", err)
	}
	if !healthy {
		return fmt.Errorf("influxdb health check: server not healthy")
	}
	return nil
}

// IsConnected returns the last known connection state.
func (m *Mirror) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// SetOnError sets a callback for async write failures.
func (m *Mirror) SetOnError(callback func(err error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onError = callback
}

// Flush blocks until all buffered points are written. Safe to call after
// Close.
func (m *Mirror) Flush() {
	if m.writeAPI == nil || !m.IsConnected() {
		return
	}
	m.writeAPI.Flush()
}

// Close flushes pending writes and shuts the client down.
func (m *Mirror) Close() error {
	if m.client == nil {
		return nil
	}

	m.mu.Lock()
	m.connected = false
	m.mu.Unlock()

	m.writeAPI.Flush()
	m.client.Close()
	return nil
}
