package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CAKEBOARD_CONFIG is unset.
const DefaultPath = "configs/config.yaml"

// Pacer strategies.
const (
	PacerAdaptive = "adaptive"
	PacerDeadline = "deadline"
)

// Config is the root configuration structure for CakeBoard.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Board     BoardConfig     `yaml:"board"`
	Devices   []DeviceConfig  `yaml:"devices"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Trace     TraceConfig     `yaml:"trace"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Panel     PanelConfig     `yaml:"panel"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// BoardConfig controls clock pacing.
type BoardConfig struct {
	// TargetHz is the simulated clock frequency.
	TargetHz int `yaml:"target_hz"`

	// RefreshRate is the number of device refresh passes per second.
	RefreshRate int `yaml:"refresh_rate"`

	// Pacer selects "adaptive" (batch controller) or "deadline" (fixed period).
	Pacer string `yaml:"pacer"`

	// ResetCycles holds the design in reset for this many cycles at start.
	ResetCycles int `yaml:"reset_cycles"`

	// CounterShift selects which bits of the reference counter reach the LEDs.
	CounterShift uint `yaml:"counter_shift"`
}

// DeviceConfig describes one peripheral and its register bindings.
type DeviceConfig struct {
	ID     string   `yaml:"id"`
	Kind   string   `yaml:"kind"`
	Rows   int      `yaml:"rows"`
	Cols   int      `yaml:"cols"`
	Labels []string `yaml:"labels"`

	// Echo names a device that mirrors every row changed on a switch.
	Echo string `yaml:"echo"`

	Signals []SignalConfig `yaml:"signals"`
}

// SignalConfig binds a run of device cells to a design register.
//
// Exactly one form is used per entry:
//
//	{register: led, width: 8}            low 8 bits of led
//	{slices: {led: [15, 8]}}             bits 15..8 of led
//	{register: led, pins: [7, 6, 5]}     explicit cell slots, MSB first
type SignalConfig struct {
	Register string           `yaml:"register"`
	Width    int              `yaml:"width"`
	Slices   map[string][]int `yaml:"slices"`
	Pins     []int            `yaml:"pins"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`

	// PublishInterval is the minimum gap between state publishes, in milliseconds.
	PublishInterval int `yaml:"publish_interval"`
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

	// SampleInterval is the gap between telemetry samples, in milliseconds.
	SampleInterval int `yaml:"sample_interval"`
}

// TraceConfig contains the SQLite session trace settings.
type TraceConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// Interval is the minimum gap between recorded snapshots, in milliseconds.
	Interval int `yaml:"interval"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
	Auth     APIAuthConfig    `yaml:"auth"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// APIAuthConfig enables bearer-token checks when Secret is set.
type APIAuthConfig struct {
	Secret string `yaml:"secret"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`

	// SnapshotInterval is the minimum gap between snapshot broadcasts, in
	// milliseconds.
	SnapshotInterval int `yaml:"snapshot_interval"`
}

// PanelConfig controls the terminal panel.
type PanelConfig struct {
	Enabled  bool `yaml:"enabled"`
	Keyboard bool `yaml:"keyboard"`

	// Interval is the minimum gap between redraws, in milliseconds.
	Interval int `yaml:"interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Path returns the configuration file path from CAKEBOARD_CONFIG, or DefaultPath.
func Path() string {
	if v := os.Getenv("CAKEBOARD_CONFIG"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: CAKEBOARD_SECTION_KEY
// For example: CAKEBOARD_BOARD_TARGET_HZ, CAKEBOARD_API_PORT
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

// Default returns the built-in configuration with environment overrides
// applied. It is used when no configuration file exists.
func Default() *Config {
	cfg := defaultConfig()
	applyEnvOverrides(cfg)
	return cfg
}

// defaultConfig returns a Config with sensible defaults.
// The default board mirrors a small trainer: one 16-lamp LED bar and
// one 16-lever switch bank.
func defaultConfig() *Config {
	return &Config{
		Board: BoardConfig{
			TargetHz:     1_000_000,
			RefreshRate:  60,
			Pacer:        PacerAdaptive,
			ResetCycles:  10,
			CounterShift: 16,
		},
		Devices: []DeviceConfig{
			{
				ID:      "led",
				Kind:    "led",
				Rows:    1,
				Cols:    16,
				Labels:  []string{"LED"},
				Signals: []SignalConfig{{Register: "led", Width: 16}},
			},
			{
				ID:      "sw",
				Kind:    "switch",
				Rows:    1,
				Cols:    16,
				Labels:  []string{"SW"},
				Signals: []SignalConfig{{Register: "sw", Width: 16}},
			},
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "cakeboard",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
			PublishInterval: 100,
		},
		InfluxDB: InfluxDBConfig{
			URL:            "http://localhost:8086",
			Org:            "cakeboard",
			Bucket:         "cakeboard",
			BatchSize:      100,
			FlushInterval:  10,
			SampleInterval: 1000,
		},
		Trace: TraceConfig{
			Path:        "./data/trace.db",
			WALMode:     true,
			BusyTimeout: 5,
			Interval:    100,
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8480,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,

			SnapshotInterval: 100,
		},
		Panel: PanelConfig{
			Enabled:  true,
			Keyboard: true,
			Interval: 50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: CAKEBOARD_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Board
	if v, ok := envInt("CAKEBOARD_BOARD_TARGET_HZ"); ok {
		cfg.Board.TargetHz = v
	}
	if v, ok := envInt("CAKEBOARD_BOARD_REFRESH_RATE"); ok {
		cfg.Board.RefreshRate = v
	}
	if v := os.Getenv("CAKEBOARD_BOARD_PACER"); v != "" {
		cfg.Board.Pacer = v
	}

	// MQTT
	if v := os.Getenv("CAKEBOARD_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("CAKEBOARD_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("CAKEBOARD_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("CAKEBOARD_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Trace
	if v := os.Getenv("CAKEBOARD_TRACE_PATH"); v != "" {
		cfg.Trace.Path = v
	}

	// API
	if v := os.Getenv("CAKEBOARD_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v, ok := envInt("CAKEBOARD_API_PORT"); ok {
		cfg.API.Port = v
	}
	if v := os.Getenv("CAKEBOARD_API_SECRET"); v != "" {
		cfg.API.Auth.Secret = v
	}

	// Logging
	if v := os.Getenv("CAKEBOARD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Validate checks the configuration for errors.
// Every problem is collected so one run reports them all.
func (c *Config) Validate() error {
	var errs []string

	// Board validation
	if c.Board.TargetHz <= 0 {
		errs = append(errs, "board.target_hz must be positive")
	}
	if c.Board.RefreshRate <= 0 {
		errs = append(errs, "board.refresh_rate must be positive")
	}
	switch c.Board.Pacer {
	case PacerAdaptive, PacerDeadline:
	default:
		errs = append(errs, fmt.Sprintf("board.pacer must be %q or %q", PacerAdaptive, PacerDeadline))
	}
	if c.Board.ResetCycles < 0 {
		errs = append(errs, "board.reset_cycles must not be negative")
	}

	// Device validation
	seen := make(map[string]struct{}, len(c.Devices))
	for i, d := range c.Devices {
		errs = append(errs, d.validate(i)...)
		if _, dup := seen[d.ID]; dup && d.ID != "" {
			errs = append(errs, fmt.Sprintf("devices[%d].id %q is duplicated", i, d.ID))
		}
		seen[d.ID] = struct{}{}
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// Trace validation
	if c.Trace.Enabled && c.Trace.Path == "" {
		errs = append(errs, "trace.path is required when trace is enabled")
	}

	// API validation
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}
	const minSecretLength = 32
	if s := c.API.Auth.Secret; s != "" && len(s) < minSecretLength {
		errs = append(errs, "api.auth.secret must be at least 32 characters")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

func (d DeviceConfig) validate(i int) []string {
	var errs []string
	prefix := fmt.Sprintf("devices[%d]", i)

	if d.ID == "" {
		errs = append(errs, prefix+".id is required")
	}
	if d.Kind != "led" && d.Kind != "switch" {
		errs = append(errs, fmt.Sprintf("%s.kind %q must be led or switch", prefix, d.Kind))
	}
	if d.Rows <= 0 || d.Cols <= 0 {
		errs = append(errs, prefix+".rows and cols must be positive")
	}
	for j, s := range d.Signals {
		forms := 0
		if s.Register != "" && len(s.Pins) == 0 {
			forms++
		}
		if len(s.Slices) > 0 {
			forms++
		}
		if len(s.Pins) > 0 {
			forms++
		}
		if forms != 1 {
			errs = append(errs, fmt.Sprintf("%s.signals[%d] must use exactly one of width, slices or pins", prefix, j))
		}
		for reg, hl := range s.Slices {
			if len(hl) != 2 {
				errs = append(errs, fmt.Sprintf("%s.signals[%d].slices.%s must be [high, low]", prefix, j, reg))
			}
		}
	}
	return errs
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// RefreshPeriod returns the gap between device refresh passes.
func (c *Config) RefreshPeriod() time.Duration {
	if c.Board.RefreshRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.Board.RefreshRate)
}
