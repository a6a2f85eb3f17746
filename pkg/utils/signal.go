// SPDX-License-Identifier: MIT
package utils

import "math"

// MockTransport records the heights it is sent instead of transmitting them.
type MockTransport struct {
	LastData []float64
	Sends    int
	Closed   bool
}

// Send stores a copy of data for later inspection.
func (m *MockTransport) Send(data []float64) error {
	m.LastData = make([]float64, len(data))
	copy(m.LastData, data)
	m.Sends++
	return nil
}

func (m *MockTransport) Close() error {
	m.Closed = true
	return nil
}

// GenerateComplexWave returns a 440Hz tone with its second and third harmonic,
// peaking at 0.9 full scale.
func GenerateComplexWave(size int, sampleRate float64) []float32 {
	buffer := make([]float32, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2
		buffer[i] = float32(signal * 0.9)
	}
	return buffer
}

func GenerateSineWave(size int, sampleRate, frequency float64) []float32 {
	buffer := make([]float32, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = float32(math.Sin(2*math.Pi*frequency*t) * 0.9)
	}
	return buffer
}

// Interleave merges equally long channel buffers into one frame-ordered
// buffer [c0[0], c1[0], ..., c0[1], c1[1], ...]. Extra samples in longer
// channels are dropped.
func Interleave(channels ...[]float32) []float32 {
	if len(channels) == 0 {
		return nil
	}
	frames := len(channels[0])
	for _, ch := range channels[1:] {
		frames = min(frames, len(ch))
	}

	out := make([]float32, frames*len(channels))
	for f := range frames {
		for c, ch := range channels {
			out[f*len(channels)+c] = ch[f]
		}
	}
	return out
}

func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}

	if startBin < 0 {
		startBin = 0
	}

	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]

	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}

	return peakBin
}
