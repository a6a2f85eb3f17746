// SPDX-License-Identifier: MIT
package audio

import "math"

func (e *Engine) EnableGate() {
	e.gateEnabled.Store(true)
}

func (e *Engine) DisableGate() {
	e.gateEnabled.Store(false)
}

// SetGateThreshold adjusts the noise gate threshold.
// The value is a peak amplitude in the range 0.0-1.0 where 0=always open, 1=always closed.
func (e *Engine) SetGateThreshold(threshold float64) {
	if threshold < 0.0 || math.IsNaN(threshold) {
		threshold = 0.0
	}
	if threshold > 1.0 {
		threshold = 1.0
	}

	e.gateThreshold.Store(math.Float32bits(float32(threshold)))
}

// GetGateThreshold returns the current noise gate threshold as a float64.
func (e *Engine) GetGateThreshold() float64 {
	return float64(math.Float32frombits(e.gateThreshold.Load()))
}

// gateOpen reports whether the peak amplitude of buffer exceeds the
// threshold. A threshold of 1 keeps the gate closed for full-scale input.
func (e *Engine) gateOpen(buffer []float32) bool {
	threshold := math.Float32frombits(e.gateThreshold.Load())
	return peak(buffer) > threshold
}

// peak returns the largest absolute sample value.
func peak(buffer []float32) float32 {
	var maxAmplitude float32
	for _, sample := range buffer {
		// Clearing the sign bit is abs without a branch.
		amplitude := math.Float32frombits(math.Float32bits(sample) &^ (1 << 31))
		if amplitude > maxAmplitude {
			maxAmplitude = amplitude
		}
	}
	return maxAmplitude
}
