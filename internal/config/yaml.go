// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"
	"unicode/utf8"

	"specterm/internal/analysis"
	"specterm/internal/log"

	"gopkg.in/yaml.v3"
)

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	Debug     bool            `yaml:"debug"`     // Enable debug mode (forces debug log level).
	LogLevel  string          `yaml:"log_level"` // Logging level (e.g., "debug", "info", "warn", "error").
	LogFile   string          `yaml:"log_file"`  // Log destination while the screen is in use; empty discards.
	Audio     AudioConfig     `yaml:"audio"`
	Spectrum  SpectrumConfig  `yaml:"spectrum"`
	Render    RenderConfig    `yaml:"render"`
	Recording RecordingConfig `yaml:"recording"`
	Transport TransportConfig `yaml:"transport"`
}

// AudioConfig holds settings related to audio capture.
type AudioConfig struct {
	Source          string  `yaml:"source"`            // Input device name, matched exactly then by substring. Empty or "default" for the system default.
	SampleRate      float64 `yaml:"sample_rate"`       // Sample rate in Hz, 0 for the device default.
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Frames per callback period, 0 lets PortAudio choose.
	Channels        int     `yaml:"channels"`          // Requested input channels, clamped to the device maximum.
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency settings from PortAudio device.
	GateThreshold   float64 `yaml:"gate_threshold"`    // Noise gate threshold in [0, 1], 0 disables the gate.
}

// SpectrumConfig holds the transform and level mapping settings.
type SpectrumConfig struct {
	Window         string  `yaml:"window"`          // Window function name (e.g., "hann", "hamming", "rectangular").
	DBFloor        float64 `yaml:"db_floor"`        // Level mapped to an empty column.
	DBCeiling      float64 `yaml:"db_ceiling"`      // Level mapped to a full column.
	HeightFraction float64 `yaml:"height_fraction"` // Share of the terminal height a full column occupies.
}

// RenderConfig holds presentation settings.
type RenderConfig struct {
	Async     bool   `yaml:"async"`      // Present from a render goroutine instead of the audio callback.
	FillChar  string `yaml:"fill_char"`  // Rune drawn for filled cells.
	EmptyChar string `yaml:"empty_char"` // Rune drawn for empty cells.
}

// RecordingConfig holds settings related to audio recording functionality.
type RecordingConfig struct {
	Enabled    bool   `yaml:"enabled"`     // Record the captured stream to a WAV file.
	OutputDir  string `yaml:"output_dir"`  // Directory for generated file names.
	OutputFile string `yaml:"output_file"` // Explicit output path, overrides OutputDir.
	BitDepth   int    `yaml:"bit_depth"`   // 16, 24 or 32.
}

// TransportConfig holds settings related to publishing bar heights.
type TransportConfig struct {
	UDPEnabled       bool          `yaml:"udp_enabled"`        // Enable sending heights over UDP.
	UDPTargetAddress string        `yaml:"udp_target_address"` // Target address and port for UDP packets (e.g., "127.0.0.1:9090").
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`  // Interval between sending UDP packets.
	WSEnabled        bool          `yaml:"ws_enabled"`         // Serve heights to WebSocket clients.
	WSAddress        string        `yaml:"ws_address"`         // Listen address for the WebSocket server.
	WSSendInterval   time.Duration `yaml:"ws_send_interval"`   // Minimum interval between broadcasts.
}

// LoadConfig loads configuration from a YAML file specified by path. If path is
// empty, it searches "config.yaml" and then $XDG_CONFIG_HOME/specterm/config.yaml.
// If no file is found, it uses built-in defaults. After loading defaults or from
// file, it applies environment variable overrides and validates the final
// configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path == "" {
		cfg.applyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid default configuration: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	log.Debugf("configuration: Loaded %s", path)

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing default config location, or "".
func findConfigFile() string {
	candidates := []string{"config.yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "specterm", "config.yaml"))
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Validate checks every section and returns all problems joined together.
func (c *Config) Validate() error {
	var errs []error

	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("log_level '%s' is not a known level", c.LogLevel))
	}

	// Audio Validation
	a := c.Audio
	if a.SampleRate != 0 && (a.SampleRate < MinSampleRate || a.SampleRate > MaxSampleRate) {
		errs = append(errs, fmt.Errorf("audio.sample_rate %.0f outside [%d, %d]", a.SampleRate, MinSampleRate, MaxSampleRate))
	}
	if a.FramesPerBuffer != 0 && (a.FramesPerBuffer < MinBufferFrames || a.FramesPerBuffer > MaxBufferFrames) {
		errs = append(errs, fmt.Errorf("audio.frames_per_buffer %d outside [%d, %d]", a.FramesPerBuffer, MinBufferFrames, MaxBufferFrames))
	}
	if a.Channels < 1 || a.Channels > MaxChannels {
		errs = append(errs, fmt.Errorf("audio.channels %d outside [1, %d]", a.Channels, MaxChannels))
	}
	if a.GateThreshold < 0 || a.GateThreshold > 1 {
		errs = append(errs, fmt.Errorf("audio.gate_threshold %g outside [0, 1]", a.GateThreshold))
	}

	// Spectrum Validation
	if _, err := c.Spectrum.Analysis(); err != nil {
		errs = append(errs, fmt.Errorf("spectrum: %w", err))
	}

	// Render Validation
	if utf8.RuneCountInString(c.Render.FillChar) != 1 {
		errs = append(errs, fmt.Errorf("render.fill_char %q must be a single character", c.Render.FillChar))
	}
	if utf8.RuneCountInString(c.Render.EmptyChar) != 1 {
		errs = append(errs, fmt.Errorf("render.empty_char %q must be a single character", c.Render.EmptyChar))
	}

	// Recording Validation
	switch c.Recording.BitDepth {
	case 16, 24, 32:
	default:
		errs = append(errs, fmt.Errorf("recording.bit_depth %d must be 16, 24 or 32", c.Recording.BitDepth))
	}

	// Transport Validation
	t := c.Transport
	if t.UDPEnabled {
		if _, _, err := net.SplitHostPort(t.UDPTargetAddress); err != nil {
			errs = append(errs, fmt.Errorf("transport.udp_target_address '%s' appears invalid: %w", t.UDPTargetAddress, err))
		}
		if t.UDPSendInterval <= 0 {
			errs = append(errs, errors.New("transport.udp_send_interval must be positive when UDP is enabled"))
		}
	}
	if t.WSEnabled {
		if _, _, err := net.SplitHostPort(t.WSAddress); err != nil {
			errs = append(errs, fmt.Errorf("transport.ws_address '%s' appears invalid: %w", t.WSAddress, err))
		}
		if t.WSSendInterval <= 0 {
			errs = append(errs, errors.New("transport.ws_send_interval must be positive when WebSocket is enabled"))
		}
	}

	return errors.Join(errs...)
}

// Analysis converts the section into the transform configuration, parsing the
// window name and validating the level range.
func (s SpectrumConfig) Analysis() (analysis.SpectrumConfig, error) {
	window, err := analysis.ParseWindowFunc(s.Window)
	if err != nil {
		return analysis.SpectrumConfig{}, err
	}
	cfg := analysis.SpectrumConfig{
		Window:         window,
		FloorDB:        s.DBFloor,
		CeilingDB:      s.DBCeiling,
		HeightFraction: s.HeightFraction,
	}
	if err := cfg.Validate(); err != nil {
		return analysis.SpectrumConfig{}, err
	}
	return cfg, nil
}

// Level returns the effective log level. Debug mode forces LevelDebug.
func (c *Config) Level() log.LogLevel {
	if c.Debug {
		return log.LevelDebug
	}
	level, _ := log.ParseLevel(c.LogLevel)
	return level
}

// applyEnvOverrides applies ENV_* variables on top of the file values.
// Unparseable values are ignored.
func (cfg *Config) applyEnvOverrides() {
	// ENV_{...}
	// These are general overrides.

	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
			log.Debugf("configuration: Overriding debug from env: %v", bVal)
		}
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		cfg.LogLevel = val
		log.Debugf("configuration: Overriding log_level from env: %s", val)
	}

	// ENV_DB_{...}
	// These tune the level mapping.

	// ENV_DB_FLOOR
	if val, ok := os.LookupEnv("ENV_DB_FLOOR"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Spectrum.DBFloor = fVal
			log.Debugf("configuration: Overriding spectrum.db_floor from env: %g", fVal)
		}
	}
	// ENV_DB_CEILING
	if val, ok := os.LookupEnv("ENV_DB_CEILING"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Spectrum.DBCeiling = fVal
			log.Debugf("configuration: Overriding spectrum.db_ceiling from env: %g", fVal)
		}
	}

	// ENV_UDP_{...}
	// These are specific to the transport layer.

	// ENV_UDP_ENABLED
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.UDPEnabled = bVal
			log.Debugf("configuration: Overriding transport.udp_enabled from env: %v", bVal)
		}
	}
	// ENV_UDP_TARGET_ADDRESS
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		cfg.Transport.UDPTargetAddress = val
		log.Debugf("configuration: Overriding transport.udp_target_address from env: %s", val)
	}
	// ENV_UDP_SEND_INTERVAL
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			cfg.Transport.UDPSendInterval = dur
			log.Debugf("configuration: Overriding transport.udp_send_interval from env: %s", dur)
		}
	}

	// ENV_WS_{...}

	// ENV_WS_ENABLED
	if val, ok := os.LookupEnv("ENV_WS_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.WSEnabled = bVal
			log.Debugf("configuration: Overriding transport.ws_enabled from env: %v", bVal)
		}
	}
	// ENV_WS_ADDRESS
	if val, ok := os.LookupEnv("ENV_WS_ADDRESS"); ok {
		cfg.Transport.WSAddress = val
		log.Debugf("configuration: Overriding transport.ws_address from env: %s", val)
	}
}
