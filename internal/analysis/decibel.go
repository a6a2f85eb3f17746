// SPDX-License-Identifier: MIT
package analysis

import "math"

// MinAmplitude floors magnitudes before the logarithm so a silent bin maps
// to a finite level (about -138.5 dB) instead of -Inf.
const MinAmplitude = 0x1p-23 // float32 machine epsilon

// AmplitudeToDB converts a linear magnitude to decibels relative to 1.0.
func AmplitudeToDB(amplitude float64) float64 {
	a := math.Abs(amplitude)
	if !(a > MinAmplitude) { // also catches NaN
		a = MinAmplitude
	}
	return 20 * math.Log10(a)
}

// Normalize maps db from [floor, ceiling] onto [0, 1], saturating values
// outside the range. floor must be below ceiling.
func Normalize(db, floor, ceiling float64) float64 {
	switch {
	case db <= floor:
		return 0
	case db >= ceiling:
		return 1
	}
	return (db - floor) / (ceiling - floor)
}
