// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"specterm/internal/analysis"
	"specterm/internal/log"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := LoadConfig("")
	if err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected default config, got nil")
	}
	if cfg.Spectrum.DBFloor != analysis.DefaultFloorDB || cfg.Spectrum.DBCeiling != analysis.DefaultCeilingDB {
		t.Errorf("default level range = %g..%g", cfg.Spectrum.DBFloor, cfg.Spectrum.DBCeiling)
	}
	if cfg.Render.Async {
		t.Error("async rendering should be off by default")
	}
}

func TestLoadConfig_XDGLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	dir := filepath.Join(home, "specterm")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("audio:\n  source: \"USB Mic\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Audio.Source != "USB Mic" {
		t.Errorf("audio.source = %q, want %q", cfg.Audio.Source, "USB Mic")
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("nonexistent.yaml")
	if err == nil {
		t.Errorf("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoadConfig_UnmarshalError(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, ":\n:bad")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Error("expected unmarshal error, got nil or wrong error")
	}
}

func TestLoadConfig_FileValues(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
log_level: warn
audio:
  source: "Loopback"
  sample_rate: 48000
  frames_per_buffer: 256
  channels: 1
  gate_threshold: 0.01
spectrum:
  window: blackman
  db_floor: -80
  db_ceiling: -10
  height_fraction: 1
render:
  async: true
  fill_char: "█"
  empty_char: "·"
transport:
  udp_enabled: true
  udp_target_address: "10.0.0.2:7000"
  udp_send_interval: 50ms
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Audio.Source != "Loopback" || cfg.Audio.SampleRate != 48000 || cfg.Audio.FramesPerBuffer != 256 || cfg.Audio.Channels != 1 {
		t.Errorf("audio section = %+v", cfg.Audio)
	}
	if !cfg.Render.Async || cfg.Render.FillChar != "█" || cfg.Render.EmptyChar != "·" {
		t.Errorf("render section = %+v", cfg.Render)
	}
	if cfg.Transport.UDPSendInterval != 50*time.Millisecond {
		t.Errorf("udp_send_interval = %v, want 50ms", cfg.Transport.UDPSendInterval)
	}
	// Untouched sections keep their defaults.
	if cfg.Recording.BitDepth != DefaultBitDepth {
		t.Errorf("recording.bit_depth = %d, want default %d", cfg.Recording.BitDepth, DefaultBitDepth)
	}

	sc, err := cfg.Spectrum.Analysis()
	if err != nil {
		t.Fatalf("Analysis() error = %v", err)
	}
	if sc.Window != analysis.Blackman || sc.FloorDB != -80 || sc.CeilingDB != -10 || sc.HeightFraction != 1 {
		t.Errorf("Analysis() = %+v", sc)
	}
	if cfg.Level() != log.LevelWarn {
		t.Errorf("Level() = %v, want WARN", cfg.Level())
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"Defaults", func(*Config) {}, ""},
		{"Bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"Sample rate too low", func(c *Config) { c.Audio.SampleRate = 4000 }, "audio.sample_rate"},
		{"Device sample rate", func(c *Config) { c.Audio.SampleRate = 0 }, ""},
		{"Buffer too large", func(c *Config) { c.Audio.FramesPerBuffer = 1 << 16 }, "audio.frames_per_buffer"},
		{"No channels", func(c *Config) { c.Audio.Channels = 0 }, "audio.channels"},
		{"Gate above one", func(c *Config) { c.Audio.GateThreshold = 2 }, "audio.gate_threshold"},
		{"Unknown window", func(c *Config) { c.Spectrum.Window = "kaiser" }, "spectrum"},
		{"Inverted range", func(c *Config) { c.Spectrum.DBCeiling = -95 }, "spectrum"},
		{"Ceiling -10", func(c *Config) { c.Spectrum.DBCeiling = -10 }, ""},
		{"Zero fraction", func(c *Config) { c.Spectrum.HeightFraction = 0 }, "spectrum"},
		{"Empty fill", func(c *Config) { c.Render.FillChar = "" }, "render.fill_char"},
		{"Two runes", func(c *Config) { c.Render.EmptyChar = "ab" }, "render.empty_char"},
		{"Bit depth", func(c *Config) { c.Recording.BitDepth = 12 }, "recording.bit_depth"},
		{"UDP without port", func(c *Config) {
			c.Transport.UDPEnabled = true
			c.Transport.UDPTargetAddress = "localhost"
		}, "transport.udp_target_address"},
		{"UDP zero interval", func(c *Config) {
			c.Transport.UDPEnabled = true
			c.Transport.UDPSendInterval = 0
		}, "transport.udp_send_interval"},
		{"UDP disabled ignores address", func(c *Config) { c.Transport.UDPTargetAddress = "" }, ""},
		{"WS bad address", func(c *Config) {
			c.Transport.WSEnabled = true
			c.Transport.WSAddress = "8080"
		}, "transport.ws_address"},
		{"WS zero interval", func(c *Config) {
			c.Transport.WSEnabled = true
			c.Transport.WSSendInterval = 0
		}, "transport.ws_send_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_JoinsErrors(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Audio.Channels = 0
	cfg.Recording.BitDepth = 7

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"audio.channels", "recording.bit_depth"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("ENV_DEBUG", "true")
	t.Setenv("ENV_LOG_LEVEL", "error")
	t.Setenv("ENV_DB_FLOOR", "-70")
	t.Setenv("ENV_DB_CEILING", "-10")
	t.Setenv("ENV_UDP_ENABLED", "1")
	t.Setenv("ENV_UDP_TARGET_ADDRESS", "192.168.1.5:9000")
	t.Setenv("ENV_UDP_SEND_INTERVAL", "10ms")
	t.Setenv("ENV_WS_ENABLED", "true")
	t.Setenv("ENV_WS_ADDRESS", ":9999")

	path := writeTempConfig(t, "spectrum:\n  db_floor: -60\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if !cfg.Debug || cfg.Level() != log.LevelDebug {
		t.Errorf("debug = %v, level = %v; want debug forced", cfg.Debug, cfg.Level())
	}
	if cfg.LogLevel != "error" {
		t.Errorf("log_level = %q, want error", cfg.LogLevel)
	}
	if cfg.Spectrum.DBFloor != -70 {
		t.Errorf("db_floor = %g, env should win over the file", cfg.Spectrum.DBFloor)
	}
	if cfg.Spectrum.DBCeiling != -10 {
		t.Errorf("db_ceiling = %g, want -10", cfg.Spectrum.DBCeiling)
	}
	tr := cfg.Transport
	if !tr.UDPEnabled || tr.UDPTargetAddress != "192.168.1.5:9000" || tr.UDPSendInterval != 10*time.Millisecond {
		t.Errorf("udp overrides not applied: %+v", tr)
	}
	if !tr.WSEnabled || tr.WSAddress != ":9999" {
		t.Errorf("ws overrides not applied: %+v", tr)
	}
}

func TestApplyEnvOverrides_IgnoresGarbage(t *testing.T) {
	t.Setenv("ENV_UDP_ENABLED", "maybe")
	t.Setenv("ENV_DB_FLOOR", "loud")
	t.Setenv("ENV_UDP_SEND_INTERVAL", "soon")

	cfg := Default()
	cfg.applyEnvOverrides()

	if cfg.Transport.UDPEnabled {
		t.Error("unparseable bool should be ignored")
	}
	if cfg.Spectrum.DBFloor != analysis.DefaultFloorDB {
		t.Errorf("db_floor = %g, want default", cfg.Spectrum.DBFloor)
	}
	if cfg.Transport.UDPSendInterval != DefaultUDPSendInterval {
		t.Errorf("udp_send_interval = %v, want default", cfg.Transport.UDPSendInterval)
	}
}
