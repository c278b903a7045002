package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial      SerialConfig      `yaml:"serial"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Sampling    SamplingConfig    `yaml:"sampling"`
	AutoTest    AutoTestConfig    `yaml:"auto_test"`
	Logging     LoggingConfig     `yaml:"logging"`
	Mock        MockConfig        `yaml:"mock"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port string `yaml:"port"`
}

// CalibrationConfig contains the load cell scale factor. Calibration itself
// is an offline procedure; only its result lives here.
type CalibrationConfig struct {
	Scale         float64 `yaml:"scale"`           // Force units per raw count
	TareOnConnect bool    `yaml:"tare_on_connect"` // Zero the reading when the rig connects
}

// SamplingConfig contains measurement loop parameters.
type SamplingConfig struct {
	Period         time.Duration `yaml:"period"`          // Sample period while a test is running
	AverageSamples int           `yaml:"average_samples"` // Moving average window (0 = disabled)
}

// AutoTestConfig controls ESC auto-detection and the automatic throttle profile.
type AutoTestConfig struct {
	Enabled  bool          `yaml:"enabled"`
	MinForce float64       `yaml:"min_force"` // Minimum force delta to confirm an ESC is present
	Hold     time.Duration `yaml:"hold"`      // Dwell at full throttle during an auto test
}

// LoggingConfig controls the CSV session logs.
type LoggingConfig struct {
	Dir        string `yaml:"dir"`
	ForcedSync bool   `yaml:"forced_sync"` // Sync after every row; a failed write aborts the test
	Verbose    bool   `yaml:"verbose"`
}

// MockConfig contains mock rig configuration.
type MockConfig struct {
	ThrustPerDegree float64       `yaml:"thrust_per_degree"` // Steady-state force per servo degree
	NoiseLevel      float64       `yaml:"noise_level"`       // Noise amplitude in force units
	ResponseTime    time.Duration `yaml:"response_time"`     // First-order thrust lag
	SampleRate      time.Duration `yaml:"sample_rate"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port: "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
		},
		Calibration: CalibrationConfig{
			Scale:         1.0 / 420.0, // Grams per count for a typical 5 kg bridge at gain 128
			TareOnConnect: true,
		},
		Sampling: SamplingConfig{
			Period:         100 * time.Millisecond,
			AverageSamples: 0, // No averaging by default
		},
		AutoTest: AutoTestConfig{
			Enabled:  true,
			MinForce: 20,
			Hold:     3 * time.Second,
		},
		Logging: LoggingConfig{
			Dir:        "logs",
			ForcedSync: false,
			Verbose:    false,
		},
		Mock: MockConfig{
			ThrustPerDegree: 4.5,
			NoiseLevel:      0.8,
			ResponseTime:    400 * time.Millisecond,
			SampleRate:      20 * time.Millisecond, // 50 samples per second
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}

	if c.Calibration.Scale == 0 {
		c.Calibration.Scale = def.Calibration.Scale
	}

	if c.Sampling.Period == 0 {
		c.Sampling.Period = def.Sampling.Period
	}

	if c.AutoTest.MinForce == 0 {
		c.AutoTest.MinForce = def.AutoTest.MinForce
	}
	if c.AutoTest.Hold == 0 {
		c.AutoTest.Hold = def.AutoTest.Hold
	}

	if c.Logging.Dir == "" {
		c.Logging.Dir = def.Logging.Dir
	}

	if c.Mock.ThrustPerDegree == 0 {
		c.Mock.ThrustPerDegree = def.Mock.ThrustPerDegree
	}
	if c.Mock.ResponseTime == 0 {
		c.Mock.ResponseTime = def.Mock.ResponseTime
	}
	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
}
