// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"specterm/internal/log"
	"specterm/pkg/bitint"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var errAlreadyRecording = errors.New("already recording")

// RecordingPath returns the file the stream is recorded to: the explicit
// output file when set, else a timestamped name inside dir.
func RecordingPath(dir, outputFile string, now time.Time) string {
	if outputFile != "" {
		return outputFile
	}
	return filepath.Join(dir, "specterm-"+now.Format("20060102-150405")+".wav")
}

// StartRecording opens filename and begins writing every captured period to
// it as PCM WAV at the configured bit depth.
func (e *Engine) StartRecording(filename string) error {
	if e.isRecording.Load() {
		return errAlreadyRecording
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create recording directory: %w", err)
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	bitDepth := e.bitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}

	e.recMu.Lock()
	e.outputFile = file
	e.wavEncoder = wav.NewEncoder(file, int(e.sampleRate), bitDepth, e.channels, 1)
	e.sampleBuf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: e.channels,
			SampleRate:  int(e.sampleRate),
		},
		Data:           make([]int, max(e.config.Audio.FramesPerBuffer, 0)*e.channels),
		SourceBitDepth: bitDepth,
	}
	e.recMu.Unlock()

	e.isRecording.Store(true)
	log.Infof("Audio: Recording to %s (%d-bit)", filename, bitDepth)

	return nil
}

func (e *Engine) StopRecording() error {
	if !e.isRecording.Swap(false) {
		return nil
	}

	e.recMu.Lock()
	defer e.recMu.Unlock()

	var errs []error
	if e.wavEncoder != nil {
		if err := e.wavEncoder.Close(); err != nil {
			errs = append(errs, err)
		}
		e.wavEncoder = nil
	}

	if e.outputFile != nil {
		if err := e.outputFile.Close(); err != nil {
			errs = append(errs, err)
		}
		e.outputFile = nil
	}

	return errors.Join(errs...)
}

// writeRecording converts one period to integer PCM and appends it to the
// WAV file. A period that races with StopRecording is dropped.
func (e *Engine) writeRecording(in []float32) {
	if !e.recMu.TryLock() {
		return
	}
	defer e.recMu.Unlock()

	if e.wavEncoder == nil {
		return
	}

	e.sampleBuf.Data = bitint.Grow(e.sampleBuf.Data, len(in))
	fullScale := float64(int(1)<<(e.sampleBuf.SourceBitDepth-1) - 1)
	for i, sample := range in {
		e.sampleBuf.Data[i] = int(float64(clampUnit(sample)) * fullScale)
	}

	if err := e.wavEncoder.Write(e.sampleBuf); err != nil {
		log.Errorf("Audio: Error writing to WAV file: %v", err)
	}
}

func clampUnit(s float32) float32 {
	switch {
	case s > 1:
		return 1
	case s < -1:
		return -1
	}
	return s
}
