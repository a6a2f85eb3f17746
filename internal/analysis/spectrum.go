// SPDX-License-Identifier: MIT
package analysis

import (
	"errors"
	"fmt"
	"math/cmplx"

	"specterm/internal/log"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Default level range and bar scale.
const (
	DefaultFloorDB        = -90.0
	DefaultCeilingDB      = 20.0
	DefaultHeightFraction = 0.5
)

var (
	errBadRange    = errors.New("db ceiling must be above db floor")
	errBadFraction = errors.New("height fraction must be in (0, 1]")
)

// SpectrumConfig controls how magnitudes are turned into bar heights.
type SpectrumConfig struct {
	Window         WindowFunc
	FloorDB        float64 // levels at or below map to 0
	CeilingDB      float64 // levels at or above map to the full bar
	HeightFraction float64 // share of the terminal rows a full bar occupies
}

// DefaultSpectrumConfig returns a Hann window over [-90, +20] dB at half height.
func DefaultSpectrumConfig() SpectrumConfig {
	return SpectrumConfig{
		Window:         Hann,
		FloorDB:        DefaultFloorDB,
		CeilingDB:      DefaultCeilingDB,
		HeightFraction: DefaultHeightFraction,
	}
}

// Validate checks the level range and the height fraction. The floor may not
// sit below the level of a silent bin, otherwise silence would draw a bar.
func (c SpectrumConfig) Validate() error {
	if !(c.CeilingDB > c.FloorDB) {
		return fmt.Errorf("%w: floor %.1f, ceiling %.1f", errBadRange, c.FloorDB, c.CeilingDB)
	}
	if silent := AmplitudeToDB(0); c.FloorDB < silent {
		return fmt.Errorf("db floor %.1f is below the silence level %.1f", c.FloorDB, silent)
	}
	if !(c.HeightFraction > 0 && c.HeightFraction <= 1) {
		return fmt.Errorf("%w: got %g", errBadFraction, c.HeightFraction)
	}
	return nil
}

// Spectrum turns blocks of mono samples into one bar height per transform
// bin. The transform size N equals the number of bars, so every bin,
// including the mirrored upper half, gets a column.
//
// The sample history, window, plan and scratch buffer always have length N
// and are rebuilt together by Resize. A Spectrum is not safe for concurrent
// use.
type Spectrum struct {
	cfg  SpectrumConfig
	size int

	plan    *fourier.CmplxFFT // nil while size is 0
	window  []float64
	scratch []complex128

	// samples is a ring of the latest size mono samples; pos is the oldest.
	samples []float32
	pos     int
	filled  int
}

// NewSpectrum creates a Spectrum of transform size n.
func NewSpectrum(n int, cfg SpectrumConfig) (*Spectrum, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Spectrum{cfg: cfg, size: -1}
	s.Resize(n)

	log.Debugf("Analysis: Initializing Spectrum (Size: %d, Window: %v, Range: %.1f..%.1f dB)",
		s.size, cfg.Window, cfg.FloorDB, cfg.CeilingDB)
	return s, nil
}

// Size returns the current transform size N.
func (s *Spectrum) Size() int {
	return s.size
}

// Resize rebuilds the sample history, window, plan and scratch buffer for
// transform size n. Negative sizes are treated as zero. Resizing to the
// current size does nothing; otherwise the sample history starts empty.
func (s *Spectrum) Resize(n int) {
	n = max(n, 0)
	if n == s.size {
		return
	}

	s.size = n
	s.window = make([]float64, n)
	fillWindow(s.window, s.cfg.Window)
	s.scratch = make([]complex128, n)
	s.samples = make([]float32, n)
	s.pos = 0
	s.filled = 0

	switch {
	case n == 0:
		s.plan = nil
	case s.plan == nil:
		s.plan = fourier.NewCmplxFFT(n)
	default:
		s.plan.Reset(n)
	}
}

// Transform computes heights from the first N samples of block. It does
// nothing and returns false when N is 0, block holds fewer than N samples or
// heights has fewer than N entries. Heights lie in [0, rows*fraction].
func (s *Spectrum) Transform(block []float32, rows int, heights []float64) bool {
	n := s.size
	if n == 0 || len(block) < n || len(heights) < n {
		return false
	}
	for i, v := range block[:n] {
		s.scratch[i] = complex(float64(v)*s.window[i], 0)
	}
	s.finish(rows, heights[:n])
	return true
}

// Push appends mono samples to the sample history, keeping the latest N.
// Blocks longer than N overwrite the whole history.
func (s *Spectrum) Push(mono []float32) {
	n := s.size
	if n == 0 || len(mono) == 0 {
		return
	}
	if len(mono) >= n {
		copy(s.samples, mono[len(mono)-n:])
		s.pos = 0
		s.filled = n
		return
	}

	// Wrap-around write into the ring.
	k := copy(s.samples[s.pos:], mono)
	copy(s.samples, mono[k:])
	s.pos = (s.pos + len(mono)) % n
	s.filled = min(s.filled+len(mono), n)
}

// Ready reports whether N samples have been pushed since the last rebuild.
func (s *Spectrum) Ready() bool {
	return s.size > 0 && s.filled >= s.size
}

// Heights transforms the sample history, oldest sample first, into heights.
// It returns false when the history is not Ready or heights is too short.
func (s *Spectrum) Heights(rows int, heights []float64) bool {
	n := s.size
	if !s.Ready() || len(heights) < n {
		return false
	}
	for i := range n {
		j := s.pos + i
		if j >= n {
			j -= n
		}
		s.scratch[i] = complex(float64(s.samples[j])*s.window[i], 0)
	}
	s.finish(rows, heights[:n])
	return true
}

// finish runs the transform in place over scratch and maps every bin to a
// bar height.
func (s *Spectrum) finish(rows int, heights []float64) {
	s.plan.Coefficients(s.scratch, s.scratch)

	scale := float64(max(rows, 0)) * s.cfg.HeightFraction
	floor, ceiling := s.cfg.FloorDB, s.cfg.CeilingDB
	for i, c := range s.scratch {
		heights[i] = Normalize(AmplitudeToDB(cmplx.Abs(c)), floor, ceiling) * scale
	}
}
