package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Digital Twin Analyzer
// tooling. All configuration is loaded from YAML and can be overridden by
// environment variables.
type Config struct {
	Ditto        DittoConfig        `yaml:"ditto"`
	Availability AvailabilityConfig `yaml:"availability"`
	Replay       ReplayConfig       `yaml:"replay"`
	Monitor      MonitorConfig      `yaml:"monitor"`
	MQTT         MQTTConfig         `yaml:"mqtt"`
	InfluxDB     InfluxDBConfig     `yaml:"influxdb"`
	Setup        SetupConfig        `yaml:"setup"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// DittoConfig contains connection settings for the Eclipse Ditto instance.
//
// Credentials are configuration values injected at the boundary: the default
// ditto/ditto sandbox credentials live here, never as literals inside the
// client logic, so deployments can source them from the environment instead.
type DittoConfig struct {
	// URL is the base URL of the Ditto HTTP API (e.g. "http://localhost:8080").
	URL string `yaml:"url"`

	// WebSocketURL is the Ditto WebSocket endpoint (e.g. "ws://localhost:8080/ws/2").
	WebSocketURL string `yaml:"websocket_url"`

	// Username and Password are used for HTTP Basic authentication.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Token, when set, switches authentication to a Bearer token and the
	// basic credentials are ignored. The token is treated as an opaque string.
	Token string `yaml:"token"`

	// Namespace is the default namespace prepended to thing identifiers that
	// arrive without one.
	Namespace string `yaml:"namespace"`

	// RequestTimeout is the per-request timeout in seconds.
	RequestTimeout int `yaml:"request_timeout"`
}

// AvailabilityConfig controls the pre-flight wait for Ditto to come up after
// the container stack starts.
type AvailabilityConfig struct {
	// Timeout is the maximum wall-clock wait in seconds.
	Timeout int `yaml:"timeout"`

	// Interval is the delay between probes in seconds.
	Interval int `yaml:"interval"`
}

// ReplayConfig contains CSV replay settings.
type ReplayConfig struct {
	// CSVPath is the default input file when none is given on the command line.
	CSVPath string `yaml:"csv_path"`

	// Interval is the fixed delay between rows in seconds.
	Interval float64 `yaml:"interval"`
}

// MonitorConfig contains live update listener settings.
type MonitorConfig struct {
	// PingInterval is the keep-alive cadence in seconds.
	PingInterval int `yaml:"ping_interval"`
}

// MQTTConfig contains settings for the optional event bridge that republishes
// twin change notifications to a local broker.
type MQTTConfig struct {
	Enabled bool   `yaml:"enabled"`
	Broker  string `yaml:"broker"`
	Port    int    `yaml:"port"`

	// ClientID identifies this tool on the broker.
	ClientID string `yaml:"client_id"`

	// TopicPrefix is prepended to the thing name when publishing events.
	TopicPrefix string `yaml:"topic_prefix"`

	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      int    `yaml:"qos"`
}

// InfluxDBConfig contains settings for the optional replay mirror that
// archives replayed sensor values into InfluxDB.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// SetupConfig points at the orchestration manifest.
type SetupConfig struct {
	// ManifestPath is the YAML file declaring the setup/shutdown phases.
	ManifestPath string `yaml:"manifest_path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable
// overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: DITTOCTL_SECTION_KEY
// For example: DITTOCTL_DITTO_URL, DITTOCTL_DITTO_PASSWORD
//
// A missing file is not an error: the operator scripts are expected to work
// against a local sandbox with defaults only. Any other read or parse
// failure is reported.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
			return nil, fmt.Errorf("parsing config file: %w", unmarshalErr)
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults for a local Ditto
// sandbox.
func defaultConfig() *Config {
	return &Config{
		Ditto: DittoConfig{
			URL:            "http://localhost:8080",
			WebSocketURL:   "ws://localhost:8080/ws/2",
			Username:       "ditto",
			Password:       "ditto",
			Namespace:      "org.eclipse.ditto",
			RequestTimeout: 5,
		},
		Availability: AvailabilityConfig{
			Timeout:  60,
			Interval: 2,
		},
		Replay: ReplayConfig{
			Interval: 1,
		},
		Monitor: MonitorConfig{
			PingInterval: 30,
		},
		MQTT: MQTTConfig{
			Broker:      "localhost",
			Port:        1883,
			ClientID:    "dittoctl",
			TopicPrefix: "ditto/events",
			QoS:         1,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Setup: SetupConfig{
			ManifestPath: "configs/setup.yaml",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables follow the pattern: DITTOCTL_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Ditto connection
	if v := os.Getenv("DITTOCTL_DITTO_URL"); v != "" {
		cfg.Ditto.URL = v
	}
	if v := os.Getenv("DITTOCTL_DITTO_WEBSOCKET_URL"); v != "" {
		cfg.Ditto.WebSocketURL = v
	}
	if v := os.Getenv("DITTOCTL_DITTO_USERNAME"); v != "" {
		cfg.Ditto.Username = v
	}
	if v := os.Getenv("DITTOCTL_DITTO_PASSWORD"); v != "" {
		cfg.Ditto.Password = v
	}
	if v := os.Getenv("DITTOCTL_DITTO_TOKEN"); v != "" {
		cfg.Ditto.Token = v
	}
	if v := os.Getenv("DITTOCTL_DITTO_NAMESPACE"); v != "" {
		cfg.Ditto.Namespace = v
	}

	// Optional sinks
	if v := os.Getenv("DITTOCTL_MQTT_BROKER"); v != "" {
		cfg.MQTT.Broker = v
	}
	if v := os.Getenv("DITTOCTL_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}
	if v := os.Getenv("DITTOCTL_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Manifest
	if v := os.Getenv("DITTOCTL_SETUP_MANIFEST"); v != "" {
		cfg.Setup.ManifestPath = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Ditto.URL == "" {
		errs = append(errs, "ditto.url is required")
	}
	if c.Ditto.Token == "" && c.Ditto.Username == "" {
		errs = append(errs, "ditto.username is required when no token is set")
	}
	if c.Ditto.RequestTimeout <= 0 {
		errs = append(errs, "ditto.request_timeout must be positive")
	}

	if c.Availability.Timeout <= 0 {
		errs = append(errs, "availability.timeout must be positive")
	}
	if c.Availability.Interval <= 0 {
		errs = append(errs, "availability.interval must be positive")
	}

	if c.Replay.Interval < 0 {
		errs = append(errs, "replay.interval must not be negative")
	}

	if c.Monitor.PingInterval <= 0 {
		errs = append(errs, "monitor.ping_interval must be positive")
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			errs = append(errs, "mqtt.broker is required when mqtt is enabled")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetRequestTimeout returns the per-request HTTP timeout as a Duration.
func (c *DittoConfig) GetRequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// GetTimeout returns the availability wait budget as a Duration.
func (c *AvailabilityConfig) GetTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// GetInterval returns the probe interval as a Duration.
func (c *AvailabilityConfig) GetInterval() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// GetInterval returns the per-row replay delay as a Duration.
func (c *ReplayConfig) GetInterval() time.Duration {
	return time.Duration(c.Interval * float64(time.Second))
}

// GetPingInterval returns the keep-alive cadence as a Duration.
func (c *MonitorConfig) GetPingInterval() time.Duration {
	return time.Duration(c.PingInterval) * time.Second
}
