// Package config loads the YAML configuration of the smt100 command
// line tools.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/truebner/smt100-go/pkg/bus"
)

// Defaults applied by Load.
const (
	DefaultCycleMs   = 1000
	DefaultTimeoutMs = 500
)

// Config is the root configuration.
type Config struct {
	// Port is the serial device path, e.g. "/dev/ttyUSB0".
	Port string `yaml:"port"`

	// CycleMs is the measurement cycle time in milliseconds.
	CycleMs int `yaml:"cycle_ms"`

	// TimeoutMs is the per-request timeout in milliseconds.
	TimeoutMs int `yaml:"timeout_ms"`

	// Trace is an optional bus trace file path.
	Trace string `yaml:"trace"`

	// Sensors are the SMT100 devices on the bus.
	Sensors []SensorConfig `yaml:"sensors"`

	// MQTT configures the telemetry bridge (smt100-mqtt only).
	MQTT *MQTTConfig `yaml:"mqtt"`
}

// SensorConfig describes one SMT100 on the bus.
type SensorConfig struct {
	// Name labels the sensor in logs and telemetry.
	Name string `yaml:"name"`

	// Slave is the Modbus slave address (1..247).
	Slave uint8 `yaml:"slave"`
}

// MQTTConfig configures the MQTT telemetry bridge.
type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         uint8  `yaml:"qos"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
}

// Cycle returns the measurement cycle time.
func (c *Config) Cycle() time.Duration {
	return time.Duration(c.CycleMs) * time.Millisecond
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// Load reads and decodes the configuration file, applying defaults.
// Unknown keys are an error. The result is validated.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if cfg.CycleMs == 0 {
		cfg.CycleMs = DefaultCycleMs
	}
	if cfg.TimeoutMs == 0 {
		cfg.TimeoutMs = DefaultTimeoutMs
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks configuration correctness. It does not mutate the
// configuration.
func Validate(cfg *Config) error {
	if cfg.Port == "" {
		return fmt.Errorf("port is required")
	}
	if cfg.CycleMs <= 0 {
		return fmt.Errorf("cycle_ms must be positive, got %d", cfg.CycleMs)
	}
	if cfg.TimeoutMs <= 0 {
		return fmt.Errorf("timeout_ms must be positive, got %d", cfg.TimeoutMs)
	}
	if len(cfg.Sensors) == 0 {
		return fmt.Errorf("at least one sensor is required")
	}

	names := make(map[string]bool)
	slaves := make(map[uint8]string)
	for _, s := range cfg.Sensors {
		if s.Name == "" {
			return fmt.Errorf("sensor with slave %d: name is required", s.Slave)
		}
		if names[s.Name] {
			return fmt.Errorf("sensor %q: duplicate name", s.Name)
		}
		names[s.Name] = true

		if !bus.SlaveAddress(s.Slave).Device() {
			return fmt.Errorf("sensor %q: slave %d outside device range %d..%d",
				s.Name, s.Slave, bus.MinDeviceAddress, bus.MaxDeviceAddress)
		}
		if other, taken := slaves[s.Slave]; taken {
			return fmt.Errorf("sensor %q: slave %d already used by %q", s.Name, s.Slave, other)
		}
		slaves[s.Slave] = s.Name
	}

	if cfg.MQTT != nil {
		if cfg.MQTT.Broker == "" {
			return fmt.Errorf("mqtt: broker is required")
		}
		if cfg.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt: qos must be 0, 1, or 2, got %d", cfg.MQTT.QoS)
		}
	}

	return nil
}
