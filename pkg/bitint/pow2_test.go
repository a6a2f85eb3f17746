// SPDX-License-Identifier: MIT
package bitint

import (
	"fmt"
	"testing"
)

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		n        int
		expected int
	}{
		{-10, 1},     // Negative number
		{0, 1},       // Zero
		{1, 1},       // One
		{8, 8},       // Already power of two
		{10, 16},     // Not power of two
		{1000, 1024}, // Large number
		{3, 4},       // Small non-power
		{4097, 8192}, // Just past a power
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d→%d", tt.n, tt.expected), func(t *testing.T) {
			result := NextPowerOfTwo(tt.n)
			if result != tt.expected {
				t.Errorf("NextPowerOfTwo(%d) = %d, expected %d", tt.n, result, tt.expected)
			}
		})
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	tests := []struct {
		n        int
		expected bool
	}{
		{-2, false},     // Negative number
		{0, false},      // Zero
		{1, true},       // One
		{8, true},       // Power of two
		{10, false},     // Not power of two
		{1 << 20, true}, // Large power of two
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d→%t", tt.n, tt.expected), func(t *testing.T) {
			result := IsPowerOfTwo(tt.n)
			if result != tt.expected {
				t.Errorf("IsPowerOfTwo(%d) = %v, expected %v", tt.n, result, tt.expected)
			}
		})
	}
}

func TestGrow(t *testing.T) {
	tests := []struct {
		name    string
		initCap int
		n       int
		wantCap int
		reuse   bool
	}{
		{"From nil", 0, 300, 512, false},
		{"Fits", 512, 480, 512, true},
		{"Shrinks in place", 512, 16, 512, true},
		{"Exact power", 0, 256, 256, false},
		{"Outgrows", 256, 257, 512, false},
		{"Negative", 8, -1, 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf []float32
			if tt.initCap > 0 {
				buf = make([]float32, 0, tt.initCap)
			}
			got := Grow(buf, tt.n)

			if len(got) != max(tt.n, 0) {
				t.Errorf("Grow() length = %d, want %d", len(got), max(tt.n, 0))
			}
			if cap(got) != tt.wantCap {
				t.Errorf("Grow() capacity = %d, want %d", cap(got), tt.wantCap)
			}
			if tt.reuse && cap(buf) > 0 && len(got) > 0 && &got[0] != &buf[:1][0] {
				t.Error("Grow() reallocated a buffer that was large enough")
			}
		})
	}

	buf := Grow([]float32(nil), 1000)
	allocs := testing.AllocsPerRun(100, func() {
		buf = Grow(buf, 900)
		buf = Grow(buf, 1024)
	})
	if allocs > 0 {
		t.Errorf("Grow() within capacity allocated %.1f times, want 0", allocs)
	}
}

func BenchmarkNextPowerOfTwo(b *testing.B) {
	var i int
	b.ReportAllocs()
	for b.Loop() {
		NextPowerOfTwo(i % 10000)
		i++
	}
}

func BenchmarkIsPowerOfTwo(b *testing.B) {
	var i int
	b.ReportAllocs()
	for b.Loop() {
		IsPowerOfTwo(i % 10000)
		i++
	}
}
