// SPDX-License-Identifier: MIT
package audio

import (
	"testing"

	"specterm/pkg/utils"
)

func TestMixToMonoStereoAverages(t *testing.T) {
	left := utils.GenerateSineWave(256, testSampleRate, 440)
	right := utils.GenerateComplexWave(256, testSampleRate)
	interleaved := utils.Interleave(left, right)

	dst := make([]float32, 256)
	n := MixToMono(dst, interleaved, 2)
	if n != 256 {
		t.Fatalf("MixToMono() = %d frames, want 256", n)
	}
	for i := range n {
		want := (left[i] + right[i]) / 2
		if absFloat(float64(dst[i]-want)) > 1e-7 {
			t.Errorf("mono[%d] = %g, want %g", i, dst[i], want)
		}
	}
}

func TestMixToMono(t *testing.T) {
	tests := []struct {
		name        string
		interleaved []float32
		channels    int
		dstLen      int
		want        []float32
	}{
		{"Mono copies", []float32{0.1, -0.2, 0.3}, 1, 3, []float32{0.1, -0.2, 0.3}},
		{"Stereo", []float32{1, 0, 0.5, 0.5, -1, 1}, 2, 3, []float32{0.5, 0.5, 0}},
		{"Three channels", []float32{3, 0, 0, 0, 3, 3}, 3, 2, []float32{1, 2}},
		{"Partial frame ignored", []float32{1, 1, 0.5}, 2, 4, []float32{1}},
		{"Short destination", []float32{1, 1, 2, 2, 3, 3}, 2, 2, []float32{1, 2}},
		{"No channels", []float32{1, 2}, 0, 2, nil},
		{"Negative channels", []float32{1, 2}, -2, 2, nil},
		{"Empty", nil, 2, 4, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]float32, tt.dstLen)
			n := MixToMono(dst, tt.interleaved, tt.channels)
			if n != len(tt.want) {
				t.Fatalf("MixToMono() = %d frames, want %d", n, len(tt.want))
			}
			for i, w := range tt.want {
				if absFloat(float64(dst[i]-w)) > 1e-6 {
					t.Errorf("mono[%d] = %g, want %g", i, dst[i], w)
				}
			}
		})
	}
}

func TestMixToMonoNoAllocs(t *testing.T) {
	dst := make([]float32, testFrameSize)
	allocs := testing.AllocsPerRun(100, func() {
		MixToMono(dst, testBuffer, testChannels)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in MixToMono, got %.1f", allocs)
	}
}

func BenchmarkMixToMono(b *testing.B) {
	dst := make([]float32, testFrameSize)
	b.ReportAllocs()
	for b.Loop() {
		MixToMono(dst, testBuffer, testChannels)
	}
}
