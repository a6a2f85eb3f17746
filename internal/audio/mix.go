// SPDX-License-Identifier: MIT
package audio

// MixToMono averages every group of channels interleaved samples into one
// mono sample and returns the number of frames written to dst. A trailing
// partial frame is ignored, as are frames beyond len(dst). With one channel
// the input is copied unchanged.
func MixToMono(dst, interleaved []float32, channels int) int {
	if channels <= 0 {
		return 0
	}
	frames := min(len(interleaved)/channels, len(dst))

	if channels == 1 {
		return copy(dst[:frames], interleaved)
	}

	scale := 1 / float32(channels)
	for i := range frames {
		frame := interleaved[i*channels : (i+1)*channels]
		var sum float32
		for _, s := range frame {
			sum += s
		}
		dst[i] = sum * scale
	}
	return frames
}
