package audio

import (
	"math"

	"github.com/halvorsen/scriptor/internal/apperr"
)

const (
	targetSampleRate = 16000
	resampleFrame    = 1024 // fixed in/out resampler frame size
	sincTaps         = 16   // taps on each side of the windowed-sinc kernel
)

// ResampleTo16k converts samples at sourceRate to 16 kHz mono. It is the
// identity function when sourceRate is already 16000. Internally, input is
// padded to a whole number of 1024-sample frames (the reference resampler's
// fixed input frame size) and run through a windowed-sinc interpolator,
// since no FFT or resampling library is available to this module.
func ResampleTo16k(samples []float32, sourceRate int) ([]float32, error) {
	if sourceRate <= 0 {
		return nil, apperr.NewResampleError("invalid source sample rate", nil)
	}
	if sourceRate == targetSampleRate {
		out := make([]float32, len(samples))
		copy(out, samples)
		return out, nil
	}
	if len(samples) == 0 {
		return []float32{}, nil
	}

	padded := padToFrame(samples, resampleFrame)
	return windowedSincResample(padded, sourceRate, targetSampleRate), nil
}

func padToFrame(samples []float32, frame int) []float32 {
	rem := len(samples) % frame
	if rem == 0 {
		out := make([]float32, len(samples))
		copy(out, samples)
		return out
	}
	padLen := len(samples) + (frame - rem)
	out := make([]float32, padLen)
	copy(out, samples)
	return out
}

// windowedSincResample resamples src from srcRate to dstRate using a
// Hann-windowed sinc kernel evaluated at each output instant, looking back
// and forward sincTaps input samples on either side of the ideal fractional
// source position. This trades memory for simplicity: no streaming state
// needs to be carried across calls.
func windowedSincResample(src []float32, srcRate, dstRate int) []float32 {
	ratio := float64(dstRate) / float64(srcRate)
	outLen := int(math.Round(float64(len(src)) * ratio))
	out := make([]float32, outLen)

	// When downsampling, widen the kernel to act as an anti-alias filter.
	scale := ratio
	if scale > 1 {
		scale = 1
	}

	for i := 0; i < outLen; i++ {
		srcPos := float64(i) / ratio
		center := int(math.Floor(srcPos))
		frac := srcPos - float64(center)

		var acc, norm float64
		for k := -sincTaps; k <= sincTaps; k++ {
			idx := center + k
			if idx < 0 || idx >= len(src) {
				continue
			}
			x := (float64(k) - frac) * scale
			w := sincKernel(x) * hannWindow(float64(k)+frac, sincTaps)
			acc += float64(src[idx]) * w
			norm += w
		}
		if norm != 0 {
			out[i] = float32(acc / norm)
		}
	}
	return out
}

func sincKernel(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

func hannWindow(x float64, half int) float64 {
	n := float64(half)
	if x < -n || x > n {
		return 0
	}
	return 0.5 * (1 + math.Cos(math.Pi*x/n))
}
