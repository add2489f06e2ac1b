package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for BrewLogic Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Device      DeviceConfig      `yaml:"device"`
	Box         BoxConfig         `yaml:"box"`
	Storage     StorageConfig     `yaml:"storage"`
	Database    DatabaseConfig    `yaml:"database"`
	Connections ConnectionsConfig `yaml:"connections"`
	MQTT        MQTTConfig        `yaml:"mqtt"`
	InfluxDB    InfluxDBConfig    `yaml:"influxdb"`
	HTTP        HTTPConfig        `yaml:"http"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// DeviceConfig identifies the controller. The values are reported by the
// SysInfo object and the status page.
type DeviceConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Platform string `yaml:"platform"`
}

// BoxConfig contains command engine settings.
type BoxConfig struct {
	// UserStartID is the first ID handed to user objects. Lower IDs are
	// reserved for system objects.
	UserStartID int `yaml:"user_start_id"`

	// DefaultProfiles is the active profile mask used until one is stored.
	DefaultProfiles int `yaml:"default_profiles"`

	// UpdateInterval is the main loop period in milliseconds.
	UpdateInterval int `yaml:"update_interval_ms"`

	// TelemetryInterval is the process value sampling period in seconds.
	// 0 disables sampling.
	TelemetryInterval int `yaml:"telemetry_interval"`

	// MockSensors are the bus addresses DISCOVER_NEW_OBJECTS reports as
	// attached mock temperature sensors.
	MockSensors []uint64 `yaml:"mock_sensors"`
}

// StorageConfig selects the object record store.
type StorageConfig struct {
	// Backend is one of "sqlite", "pebble" or "memory".
	Backend string `yaml:"backend"`

	// Capacity limits the total record bytes. 0 means unlimited.
	Capacity int `yaml:"capacity"`

	// PebblePath is the directory of the pebble store.
	PebblePath string `yaml:"pebble_path"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// ConnectionsConfig lists the byte streams that carry the command protocol.
type ConnectionsConfig struct {
	TCP    TCPConfig            `yaml:"tcp"`
	Serial SerialConfig         `yaml:"serial"`
	MQTT   MQTTConnectionConfig `yaml:"mqtt"`
}

// TCPConfig contains the protocol listener settings.
type TCPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// SerialConfig names a character device already configured for the link
// (for example with stty). It is opened as a plain file.
type SerialConfig struct {
	Enabled bool   `yaml:"enabled"`
	Device  string `yaml:"device"`
}

// MQTTConnectionConfig carries the protocol over two MQTT topics.
type MQTTConnectionConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// HTTPConfig contains the status server settings.
type HTTPConfig struct {
	Enabled  bool              `yaml:"enabled"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Timeouts HTTPTimeoutConfig `yaml:"timeouts"`
}

// HTTPTimeoutConfig contains HTTP timeout settings in seconds.
type HTTPTimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: BREWLOGIC_SECTION_KEY
// For example: BREWLOGIC_STORAGE_BACKEND, BREWLOGIC_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration, used when no file exists.
func Default() *Config {
	cfg := defaultConfig()
	applyEnvOverrides(cfg)
	return cfg
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			ID:       "brewlogic-001",
			Name:     "BrewLogic",
			Platform: "linux",
		},
		Box: BoxConfig{
			UserStartID:       100,
			DefaultProfiles:   0x01,
			UpdateInterval:    10,
			TelemetryInterval: 10,
		},
		Storage: StorageConfig{
			Backend:    "sqlite",
			PebblePath: "./data/objects",
		},
		Database: DatabaseConfig{
			Path:        "./data/brewlogic.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Connections: ConnectionsConfig{
			TCP: TCPConfig{
				Enabled: true,
				Host:    "0.0.0.0",
				Port:    8332,
			},
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "brewlogic-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		HTTP: HTTPConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8080,
			Timeouts: HTTPTimeoutConfig{
				Read:  10,
				Write: 10,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: BREWLOGIC_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BREWLOGIC_DEVICE_ID"); v != "" {
		cfg.Device.ID = v
	}

	// Storage
	if v := os.Getenv("BREWLOGIC_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("BREWLOGIC_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Connections
	if v := os.Getenv("BREWLOGIC_TCP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Connections.TCP.Port = port
		}
	}
	if v := os.Getenv("BREWLOGIC_SERIAL_DEVICE"); v != "" {
		cfg.Connections.Serial.Device = v
		cfg.Connections.Serial.Enabled = true
	}

	// MQTT
	if v := os.Getenv("BREWLOGIC_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("BREWLOGIC_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("BREWLOGIC_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("BREWLOGIC_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	if v := os.Getenv("BREWLOGIC_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Device.ID == "" {
		errs = append(errs, "device.id is required")
	}

	// Box validation: ID 1 is the profiles object.
	if c.Box.UserStartID < 2 || c.Box.UserStartID > 0xFFFF {
		errs = append(errs, "box.user_start_id must be between 2 and 65535")
	}
	if c.Box.DefaultProfiles < 0 || c.Box.DefaultProfiles > 0xFF {
		errs = append(errs, "box.default_profiles must fit in one byte")
	}
	if c.Box.UpdateInterval < 1 {
		errs = append(errs, "box.update_interval_ms must be positive")
	}

	switch c.Storage.Backend {
	case "sqlite":
		if c.Database.Path == "" {
			errs = append(errs, "database.path is required for the sqlite backend")
		}
	case "pebble":
		if c.Storage.PebblePath == "" {
			errs = append(errs, "storage.pebble_path is required for the pebble backend")
		}
	case "memory":
	default:
		errs = append(errs, fmt.Sprintf("storage.backend %q must be sqlite, pebble or memory", c.Storage.Backend))
	}
	if c.Storage.Capacity < 0 {
		errs = append(errs, "storage.capacity must not be negative")
	}

	if c.Connections.TCP.Enabled && (c.Connections.TCP.Port < 1 || c.Connections.TCP.Port > 65535) {
		errs = append(errs, "connections.tcp.port must be between 1 and 65535")
	}
	if c.Connections.Serial.Enabled && c.Connections.Serial.Device == "" {
		errs = append(errs, "connections.serial.device is required when serial is enabled")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb.url and influxdb.bucket are required when influxdb is enabled")
	}

	if c.HTTP.Enabled && (c.HTTP.Port < 1 || c.HTTP.Port > 65535) {
		errs = append(errs, "http.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the HTTP read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.HTTP.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the HTTP write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.HTTP.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the HTTP idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.HTTP.Timeouts.Idle) * time.Second
}

// GetUpdateInterval returns the main loop period.
func (c *Config) GetUpdateInterval() time.Duration {
	return time.Duration(c.Box.UpdateInterval) * time.Millisecond
}

// GetTelemetryInterval returns the sampling period, 0 when disabled.
func (c *Config) GetTelemetryInterval() time.Duration {
	return time.Duration(c.Box.TelemetryInterval) * time.Second
}
