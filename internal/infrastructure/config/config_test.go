package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
device:
  id: "fermenter-1"
box:
  user_start_id: 200
  default_profiles: 3
  mock_sensors: [0x28FF000000000001, 0x28FF000000000002]
storage:
  backend: "pebble"
  pebble_path: "/tmp/objects"
  capacity: 4096
connections:
  tcp:
    enabled: true
    port: 9000
  serial:
    enabled: true
    device: "/dev/ttyACM0"
mqtt:
  broker:
    host: "broker.local"
    port: 1883
    client_id: "test-client"
  qos: 1
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.ID != "fermenter-1" {
		t.Errorf("Device.ID = %q, want %q", cfg.Device.ID, "fermenter-1")
	}
	if cfg.Box.UserStartID != 200 {
		t.Errorf("Box.UserStartID = %d, want 200", cfg.Box.UserStartID)
	}
	if cfg.Box.DefaultProfiles != 3 {
		t.Errorf("Box.DefaultProfiles = %d, want 3", cfg.Box.DefaultProfiles)
	}
	if len(cfg.Box.MockSensors) != 2 || cfg.Box.MockSensors[1] != 0x28FF000000000002 {
		t.Errorf("Box.MockSensors = %#x, want two addresses", cfg.Box.MockSensors)
	}
	if cfg.Storage.Backend != "pebble" || cfg.Storage.Capacity != 4096 {
		t.Errorf("Storage = %+v, want pebble with capacity 4096", cfg.Storage)
	}
	if cfg.Connections.TCP.Port != 9000 {
		t.Errorf("Connections.TCP.Port = %d, want 9000", cfg.Connections.TCP.Port)
	}
	if cfg.Connections.Serial.Device != "/dev/ttyACM0" {
		t.Errorf("Connections.Serial.Device = %q", cfg.Connections.Serial.Device)
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.local")
	}

	// Values absent from the file keep their defaults.
	if cfg.HTTP.Port != 8080 {
		t.Errorf("HTTP.Port = %d, want default 8080", cfg.HTTP.Port)
	}
	if cfg.Box.UpdateInterval != 10 {
		t.Errorf("Box.UpdateInterval = %d, want default 10", cfg.Box.UpdateInterval)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
device:
  id: ""
storage:
  backend: "flash"
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected validation error, got nil")
	}
	for _, want := range []string{"device.id", "storage.backend"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return defaultConfig() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "missing device ID", mutate: func(c *Config) { c.Device.ID = "" }, wantErr: true},
		{name: "start id in profiles range", mutate: func(c *Config) { c.Box.UserStartID = 1 }, wantErr: true},
		{name: "start id too large", mutate: func(c *Config) { c.Box.UserStartID = 70000 }, wantErr: true},
		{name: "profiles wider than a byte", mutate: func(c *Config) { c.Box.DefaultProfiles = 0x100 }, wantErr: true},
		{name: "zero update interval", mutate: func(c *Config) { c.Box.UpdateInterval = 0 }, wantErr: true},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Backend = "eeprom" }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{
			name:   "memory backend needs no path",
			mutate: func(c *Config) { c.Storage.Backend = "memory"; c.Database.Path = "" },
		},
		{
			name:    "pebble without path",
			mutate:  func(c *Config) { c.Storage.Backend = "pebble"; c.Storage.PebblePath = "" },
			wantErr: true,
		},
		{name: "negative capacity", mutate: func(c *Config) { c.Storage.Capacity = -1 }, wantErr: true},
		{name: "invalid tcp port", mutate: func(c *Config) { c.Connections.TCP.Port = 0 }, wantErr: true},
		{
			name:   "disabled tcp ignores port",
			mutate: func(c *Config) { c.Connections.TCP.Enabled = false; c.Connections.TCP.Port = 0 },
		},
		{name: "serial without device", mutate: func(c *Config) { c.Connections.Serial.Enabled = true }, wantErr: true},
		{name: "invalid QoS", mutate: func(c *Config) { c.MQTT.QoS = 3 }, wantErr: true},
		{name: "influxdb without url", mutate: func(c *Config) { c.InfluxDB.Enabled = true }, wantErr: true},
		{name: "invalid http port", mutate: func(c *Config) { c.HTTP.Port = 70000 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		Box: BoxConfig{UpdateInterval: 25, TelemetryInterval: 15},
		HTTP: HTTPConfig{
			Timeouts: HTTPTimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}
	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}
	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
	if got := cfg.GetUpdateInterval(); got != 25*time.Millisecond {
		t.Errorf("GetUpdateInterval() = %v, want 25ms", got)
	}
	if got := cfg.GetTelemetryInterval(); got != 15*time.Second {
		t.Errorf("GetTelemetryInterval() = %v, want 15s", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("BREWLOGIC_DEVICE_ID", "env-device")
	t.Setenv("BREWLOGIC_STORAGE_BACKEND", "memory")
	t.Setenv("BREWLOGIC_DATABASE_PATH", "/custom/path.db")
	t.Setenv("BREWLOGIC_TCP_PORT", "9100")
	t.Setenv("BREWLOGIC_SERIAL_DEVICE", "/dev/ttyUSB1")
	t.Setenv("BREWLOGIC_MQTT_HOST", "mqtt.example.com")
	t.Setenv("BREWLOGIC_MQTT_USERNAME", "testuser")
	t.Setenv("BREWLOGIC_MQTT_PASSWORD", "testpass")
	t.Setenv("BREWLOGIC_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("BREWLOGIC_LOG_LEVEL", "debug")

	applyEnvOverrides(cfg)

	checks := []struct {
		name, got, want string
	}{
		{"Device.ID", cfg.Device.ID, "env-device"},
		{"Storage.Backend", cfg.Storage.Backend, "memory"},
		{"Database.Path", cfg.Database.Path, "/custom/path.db"},
		{"Connections.Serial.Device", cfg.Connections.Serial.Device, "/dev/ttyUSB1"},
		{"MQTT.Broker.Host", cfg.MQTT.Broker.Host, "mqtt.example.com"},
		{"MQTT.Auth.Username", cfg.MQTT.Auth.Username, "testuser"},
		{"MQTT.Auth.Password", cfg.MQTT.Auth.Password, "testpass"},
		{"InfluxDB.Token", cfg.InfluxDB.Token, "secret-token"},
		{"Logging.Level", cfg.Logging.Level, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}

	if cfg.Connections.TCP.Port != 9100 {
		t.Errorf("Connections.TCP.Port = %d, want 9100", cfg.Connections.TCP.Port)
	}
	if !cfg.Connections.Serial.Enabled {
		t.Error("BREWLOGIC_SERIAL_DEVICE should enable the serial connection")
	}
}

func TestApplyEnvOverrides_BadPortIgnored(t *testing.T) {
	cfg := defaultConfig()
	t.Setenv("BREWLOGIC_TCP_PORT", "not-a-port")
	applyEnvOverrides(cfg)
	if cfg.Connections.TCP.Port != 8332 {
		t.Errorf("Connections.TCP.Port = %d, want default 8332", cfg.Connections.TCP.Port)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig should validate: %v", err)
	}
	if cfg.Box.UserStartID != 100 {
		t.Errorf("defaultConfig Box.UserStartID = %d, want 100", cfg.Box.UserStartID)
	}
	if cfg.Box.DefaultProfiles != 0x01 {
		t.Errorf("defaultConfig Box.DefaultProfiles = %d, want 1", cfg.Box.DefaultProfiles)
	}
	if cfg.Connections.TCP.Port != 8332 {
		t.Errorf("defaultConfig Connections.TCP.Port = %d, want 8332", cfg.Connections.TCP.Port)
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
}

func TestDefault_AppliesEnv(t *testing.T) {
	t.Setenv("BREWLOGIC_DEVICE_ID", "from-env")
	if got := Default().Device.ID; got != "from-env" {
		t.Errorf("Default().Device.ID = %q, want from-env", got)
	}
}
