// SPDX-License-Identifier: MIT
/*
Package audio implements the capture side of the visualizer:
- Input device lookup by name and stream setup using PortAudio
- Per-period delivery of interleaved float32 samples to a PeriodFunc
- Noise gate that mutes periods below a peak threshold
- WAV recording of the captured stream with atomic state management
- Mono mixing of interleaved periods

Thread Safety:
- The period callback runs on the PortAudio thread with the OS thread locked
- Uses atomic operations for recording and gate state
- Pre-allocates buffers to avoid GC in hot path
*/
package audio

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"specterm/internal/config"
	"specterm/internal/log"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"
)

// PeriodFunc receives one callback period of interleaved samples. The slice
// is only valid for the duration of the call.
type PeriodFunc func(interleaved []float32, channels int)

type Engine struct {
	// Core configuration and state.
	config *config.Config

	// Audio input handling.
	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream
	channels     int
	sampleRate   float64
	onPeriod     PeriodFunc
	periods      atomic.Uint64

	// Noise gate for signal conditioning.
	gateEnabled   atomic.Bool
	gateThreshold atomic.Uint32 // math.Float32bits of the peak threshold

	// Recording state and buffers.
	isRecording atomic.Bool
	recMu       sync.Mutex // guards the encoder between the callback and Stop
	bitDepth    int
	outputFile  *os.File
	wavEncoder  *wav.Encoder
	sampleBuf   *audio.IntBuffer // Reusable buffer for format conversion
}

// NewEngine resolves the configured input device and negotiates the channel
// count and sample rate. onPeriod is called for every captured period.
func NewEngine(cfg *config.Config, onPeriod PeriodFunc) (*Engine, error) {
	inputDevice, err := InputDevice(cfg.Audio.Source)
	if err != nil {
		return nil, err
	}
	if inputDevice.MaxInputChannels <= 0 {
		return nil, fmt.Errorf("device '%s' does not support input", inputDevice.Name)
	}

	engine := newEngine(cfg, inputDevice, onPeriod)

	log.Infof("Audio: Using '%s' (%d of %d channels, %.0f Hz, latency %v)",
		inputDevice.Name, engine.channels, inputDevice.MaxInputChannels,
		engine.sampleRate, engine.inputLatency)

	return engine, nil
}

func newEngine(cfg *config.Config, device *portaudio.DeviceInfo, onPeriod PeriodFunc) *Engine {
	engine := &Engine{
		config:      cfg,
		inputDevice: device,
		channels:    min(cfg.Audio.Channels, device.MaxInputChannels),
		sampleRate:  cfg.Audio.SampleRate,
		onPeriod:    onPeriod,
		bitDepth:    cfg.Recording.BitDepth,
	}
	if engine.sampleRate <= 0 {
		engine.sampleRate = device.DefaultSampleRate
	}

	if cfg.Audio.LowLatency {
		engine.inputLatency = device.DefaultLowInputLatency
	} else {
		engine.inputLatency = device.DefaultHighInputLatency
	}

	if cfg.Audio.GateThreshold > 0 {
		engine.SetGateThreshold(cfg.Audio.GateThreshold)
		engine.EnableGate()
	}

	return engine
}

// Channels returns the negotiated number of input channels.
func (e *Engine) Channels() int {
	return e.channels
}

// SampleRate returns the negotiated sample rate in Hz.
func (e *Engine) SampleRate() float64 {
	return e.sampleRate
}

// DeviceName returns the name of the input device in use.
func (e *Engine) DeviceName() string {
	return e.inputDevice.Name
}

// Periods returns the number of callback periods delivered so far.
func (e *Engine) Periods() uint64 {
	return e.periods.Load()
}

func (e *Engine) StartInputStream() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: e.channels,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		FramesPerBuffer: e.config.Audio.FramesPerBuffer,
		SampleRate:      e.sampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processInputStream)
	if err != nil {
		return fmt.Errorf("failed to open input stream: %w", err)
	}
	e.inputStream = stream

	if err := e.inputStream.Start(); err != nil {
		e.inputStream.Close()
		e.inputStream = nil
		return fmt.Errorf("failed to start input stream: %w", err)
	}

	return nil
}

func (e *Engine) StopInputStream() error {
	if e.inputStream == nil {
		return nil
	}

	stream := e.inputStream
	e.inputStream = nil

	stopErr := stream.Stop()
	closeErr := stream.Close()
	return errors.Join(stopErr, closeErr)
}

// processInputStream is the core audio processing callback.
// Performance Critical:
// - Runs in a dedicated OS thread (LockOSThread)
// - Uses pre-allocated buffers only
// - No dynamic allocations in the hot path once the period length is stable
func (e *Engine) processInputStream(in []float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	e.periods.Add(1)

	// The recording holds the raw stream, before the gate.
	if e.isRecording.Load() {
		e.writeRecording(in)
	}

	if e.gateEnabled.Load() && !e.gateOpen(in) {
		clear(in)
	}

	if e.onPeriod != nil {
		e.onPeriod(in, e.channels)
	}
}

func (e *Engine) Close() error {
	var errs []error
	if err := e.StopInputStream(); err != nil {
		errs = append(errs, err)
	}
	if err := e.StopRecording(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
