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
board:
  target_hz: 50000
  refresh_rate: 30
  pacer: deadline
devices:
  - id: led0
    kind: led
    rows: 2
    cols: 8
    labels: [HI, LO]
    signals:
      - slices: {led: [15, 8]}
      - slices: {led: [7, 0]}
  - id: sw0
    kind: switch
    rows: 1
    cols: 4
    echo: led0
    signals:
      - register: sw
        pins: [3, 2, 1, 0]
mqtt:
  broker:
    host: "localhost"
    port: 1883
  qos: 1
api:
  port: 9000
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Board.TargetHz != 50000 {
		t.Errorf("Board.TargetHz = %d, want 50000", cfg.Board.TargetHz)
	}
	if cfg.Board.Pacer != PacerDeadline {
		t.Errorf("Board.Pacer = %q, want %q", cfg.Board.Pacer, PacerDeadline)
	}
	if len(cfg.Devices) != 2 {
		t.Fatalf("len(Devices) = %d, want 2", len(cfg.Devices))
	}
	led := cfg.Devices[0]
	if got := led.Signals[0].Slices["led"]; len(got) != 2 || got[0] != 15 || got[1] != 8 {
		t.Errorf("Devices[0].Signals[0].Slices[led] = %v, want [15 8]", got)
	}
	if cfg.Devices[1].Echo != "led0" {
		t.Errorf("Devices[1].Echo = %q, want %q", cfg.Devices[1].Echo, "led0")
	}
	if cfg.API.Port != 9000 {
		t.Errorf("API.Port = %d, want 9000", cfg.API.Port)
	}
	// Unset sections keep their defaults.
	if cfg.Board.ResetCycles != 10 {
		t.Errorf("Board.ResetCycles = %d, want default 10", cfg.Board.ResetCycles)
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
board:
  target_hz: 0
  pacer: turbo
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected validation error, got nil")
	}
	for _, want := range []string{"board.target_hz", "board.pacer"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return defaultConfig() }

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "zero refresh rate",
			mutate:  func(c *Config) { c.Board.RefreshRate = 0 },
			wantErr: "board.refresh_rate",
		},
		{
			name:    "negative reset cycles",
			mutate:  func(c *Config) { c.Board.ResetCycles = -1 },
			wantErr: "board.reset_cycles",
		},
		{
			name:    "device without id",
			mutate:  func(c *Config) { c.Devices[0].ID = "" },
			wantErr: "devices[0].id",
		},
		{
			name:    "duplicate device id",
			mutate:  func(c *Config) { c.Devices[1].ID = c.Devices[0].ID },
			wantErr: "duplicated",
		},
		{
			name:    "unknown kind",
			mutate:  func(c *Config) { c.Devices[0].Kind = "seven_segment" },
			wantErr: "devices[0].kind",
		},
		{
			name:    "empty grid",
			mutate:  func(c *Config) { c.Devices[1].Cols = 0 },
			wantErr: "devices[1].rows",
		},
		{
			name: "signal with two forms",
			mutate: func(c *Config) {
				c.Devices[0].Signals[0].Slices = map[string][]int{"led": {3, 0}}
			},
			wantErr: "exactly one",
		},
		{
			name: "slice without low bit",
			mutate: func(c *Config) {
				c.Devices[0].Signals[0] = SignalConfig{Slices: map[string][]int{"led": {3}}}
			},
			wantErr: "[high, low]",
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: "api.port",
		},
		{
			name:    "short API secret",
			mutate:  func(c *Config) { c.API.Auth.Secret = "short" },
			wantErr: "api.auth.secret",
		},
		{
			name: "trace enabled without path",
			mutate: func(c *Config) {
				c.Trace.Enabled = true
				c.Trace.Path = ""
			},
			wantErr: "trace.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error mentioning %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{Read: 30, Write: 45, Idle: 120},
		},
		Board: BoardConfig{RefreshRate: 50},
	}

	if got := cfg.GetReadTimeout(); got != 30*time.Second {
		t.Errorf("GetReadTimeout() = %v, want 30s", got)
	}
	if got := cfg.GetWriteTimeout(); got != 45*time.Second {
		t.Errorf("GetWriteTimeout() = %v, want 45s", got)
	}
	if got := cfg.GetIdleTimeout(); got != 120*time.Second {
		t.Errorf("GetIdleTimeout() = %v, want 2m0s", got)
	}
	if got := cfg.RefreshPeriod(); got != 20*time.Millisecond {
		t.Errorf("RefreshPeriod() = %v, want 20ms", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("CAKEBOARD_BOARD_TARGET_HZ", "2000")
	t.Setenv("CAKEBOARD_BOARD_REFRESH_RATE", "25")
	t.Setenv("CAKEBOARD_BOARD_PACER", "deadline")
	t.Setenv("CAKEBOARD_MQTT_HOST", "mqtt.example.com")
	t.Setenv("CAKEBOARD_MQTT_USERNAME", "testuser")
	t.Setenv("CAKEBOARD_MQTT_PASSWORD", "testpass")
	t.Setenv("CAKEBOARD_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("CAKEBOARD_TRACE_PATH", "/tmp/trace.db")
	t.Setenv("CAKEBOARD_API_HOST", "0.0.0.0")
	t.Setenv("CAKEBOARD_API_PORT", "9100")
	t.Setenv("CAKEBOARD_LOG_LEVEL", "debug")

	applyEnvOverrides(cfg)

	if cfg.Board.TargetHz != 2000 {
		t.Errorf("Board.TargetHz = %d, want 2000", cfg.Board.TargetHz)
	}
	if cfg.Board.RefreshRate != 25 {
		t.Errorf("Board.RefreshRate = %d, want 25", cfg.Board.RefreshRate)
	}
	if cfg.Board.Pacer != "deadline" {
		t.Errorf("Board.Pacer = %q, want deadline", cfg.Board.Pacer)
	}
	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}
	if cfg.MQTT.Auth.Username != "testuser" || cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth = %+v, want testuser/testpass", cfg.MQTT.Auth)
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
	if cfg.Trace.Path != "/tmp/trace.db" {
		t.Errorf("Trace.Path = %q, want /tmp/trace.db", cfg.Trace.Path)
	}
	if cfg.API.Host != "0.0.0.0" || cfg.API.Port != 9100 {
		t.Errorf("API = %s:%d, want 0.0.0.0:9100", cfg.API.Host, cfg.API.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestApplyEnvOverrides_IgnoresBadNumbers(t *testing.T) {
	cfg := defaultConfig()
	t.Setenv("CAKEBOARD_BOARD_TARGET_HZ", "fast")

	applyEnvOverrides(cfg)

	if cfg.Board.TargetHz != 1_000_000 {
		t.Errorf("Board.TargetHz = %d, want default 1000000", cfg.Board.TargetHz)
	}
}

func TestPath(t *testing.T) {
	t.Setenv("CAKEBOARD_CONFIG", "")
	if got := Path(); got != DefaultPath {
		t.Errorf("Path() = %q, want %q", got, DefaultPath)
	}

	t.Setenv("CAKEBOARD_CONFIG", "/etc/cakeboard.yaml")
	if got := Path(); got != "/etc/cakeboard.yaml" {
		t.Errorf("Path() = %q, want /etc/cakeboard.yaml", got)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaultConfig should validate: %v", err)
	}
	if cfg.Board.Pacer != PacerAdaptive {
		t.Errorf("defaultConfig Board.Pacer = %q, want %q", cfg.Board.Pacer, PacerAdaptive)
	}
	if len(cfg.Devices) != 2 {
		t.Errorf("defaultConfig has %d devices, want 2", len(cfg.Devices))
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
}
