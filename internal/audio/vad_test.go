package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindBestCutPointEmptyRange(t *testing.T) {
	pos, rms, silence := FindBestCutPoint(make([]float32, 1000), 500, 500, 16000, DefaultVADConfig())

	assert.Equal(t, 500, pos)
	assert.Equal(t, float32(0), rms)
	assert.True(t, silence)
}

func TestFindBestCutPointPrefersSilentWindow(t *testing.T) {
	rate := 16000
	cfg := DefaultVADConfig()
	total := 2 * rate // 2 seconds

	samples := make([]float32, total)
	for i := range samples {
		samples[i] = 0.5 // loud throughout
	}
	// Carve out a silent patch in the middle.
	silenceStart := rate - cfg.windowSamples(rate)/2
	silenceEnd := silenceStart + cfg.windowSamples(rate)*2
	for i := silenceStart; i < silenceEnd && i < len(samples); i++ {
		samples[i] = 0
	}

	pos, _, isSilence := FindBestCutPoint(samples, 0, total, rate, cfg)

	assert.True(t, isSilence)
	assert.InDelta(t, rate, pos, float64(cfg.windowSamples(rate)))
}

func TestFindBestCutPointFallsBackToMinEnergy(t *testing.T) {
	rate := 16000
	cfg := DefaultVADConfig()
	total := rate

	samples := make([]float32, total)
	for i := range samples {
		// Never below the silence threshold, but with a clear minimum region.
		samples[i] = 0.5
	}
	for i := total / 2; i < total/2+1000; i++ {
		samples[i] = 0.05
	}

	_, _, isSilence := FindBestCutPoint(samples, 0, total, rate, cfg)

	assert.False(t, isSilence)
}
