package audio

import "math"

// Normalize applies RMS-based gain followed by a soft-knee clip, per the
// conditioner contract: quiet input (RMS < 0.001) passes through untouched
// with gain 1; otherwise gain is capped at 20 and the output is soft-clipped
// to stay within [-1, 1] without hard clipping artifacts.
func Normalize(samples []float32) (out []float32, gain float32) {
	rms := RMS(samples)
	if rms < 0.001 {
		out = make([]float32, len(samples))
		copy(out, samples)
		return out, 1
	}

	gain = float32(math.Min(20, 0.05/float64(rms)))
	out = make([]float32, len(samples))
	for i, x := range samples {
		out[i] = softKneeClip(x * gain)
	}
	return out, gain
}

func softKneeClip(x float32) float32 {
	mag := float32(math.Abs(float64(x)))
	if mag <= 0.9 {
		return x
	}
	sign := float32(1)
	if x < 0 {
		sign = -1
	}
	knee := 0.9 + 0.1*float32(math.Tanh(float64((mag-0.9)/0.1)))
	return sign * knee
}

// RMS computes the root-mean-square amplitude of samples. Empty input
// yields 0.
func RMS(samples []float32) float32 {
	if len(samples) == 0 {
		return 0
	}
	var sumSq float64
	for _, s := range samples {
		sumSq += float64(s) * float64(s)
	}
	return float32(math.Sqrt(sumSq / float64(len(samples))))
}

// DurationMS returns the duration, in whole milliseconds, of samples at the
// given sample rate.
func DurationMS(samples []float32, rate int) int64 {
	if rate <= 0 {
		return 0
	}
	return int64(float64(len(samples)) / float64(rate) * 1000.0)
}
