// SPDX-License-Identifier: MIT
package config

import (
	"time"

	"specterm/internal/analysis"
)

// Core configuration constants that define the boundaries and defaults
// for the visualizer.
const (
	// Audio capture
	DefaultSource          = ""    // System default input device
	DefaultSampleRate      = 0     // 0 uses the device default rate
	DefaultFramesPerBuffer = 512   // Balanced latency/performance
	DefaultChannels        = 2     // Stereo, clamped to what the device offers
	DefaultLowLatency      = false // Standard latency mode
	DefaultGateThreshold   = 0.0   // Gate disabled

	// Rendering
	DefaultFillChar  = " "
	DefaultEmptyChar = " "

	// Recording
	DefaultRecordingDir = "./recordings"
	DefaultBitDepth     = 16

	// Transport
	DefaultUDPTargetAddress = "127.0.0.1:9090"
	DefaultUDPSendInterval  = 33 * time.Millisecond // ~30Hz
	DefaultWSAddress        = "localhost:8080"
	DefaultWSSendInterval   = 33 * time.Millisecond

	// Hardware and processing limits
	MinSampleRate   = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate   = 192000 // Maximum supported sample rate (Hz)
	MinBufferFrames = 16
	MaxBufferFrames = 8192
	MaxChannels     = 32

	// DefaultSourceName selects the system default input when given as <source>.
	DefaultSourceName = "default"
)

// Default returns the built-in configuration every file and environment
// override is applied on top of.
func Default() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		Audio: AudioConfig{
			Source:          DefaultSource,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			Channels:        DefaultChannels,
			LowLatency:      DefaultLowLatency,
			GateThreshold:   DefaultGateThreshold,
		},
		Spectrum: SpectrumConfig{
			Window:         analysis.Hann.String(),
			DBFloor:        analysis.DefaultFloorDB,
			DBCeiling:      analysis.DefaultCeilingDB,
			HeightFraction: analysis.DefaultHeightFraction,
		},
		Render: RenderConfig{
			Async:     false,
			FillChar:  DefaultFillChar,
			EmptyChar: DefaultEmptyChar,
		},
		Recording: RecordingConfig{
			Enabled:   false,
			OutputDir: DefaultRecordingDir,
			BitDepth:  DefaultBitDepth,
		},
		Transport: TransportConfig{
			UDPEnabled:       false,
			UDPTargetAddress: DefaultUDPTargetAddress,
			UDPSendInterval:  DefaultUDPSendInterval,
			WSEnabled:        false,
			WSAddress:        DefaultWSAddress,
			WSSendInterval:   DefaultWSSendInterval,
		},
	}
}
