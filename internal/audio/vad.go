package audio

// VADConfig tunes the windowed energy detector used to find chunk
// boundaries.
type VADConfig struct {
	WindowMS          int
	StepMS            int
	SilenceThreshold  float32
}

// DefaultVADConfig holds the windowed RMS detector's default tuning.
func DefaultVADConfig() VADConfig {
	return VADConfig{WindowMS: 100, StepMS: 50, SilenceThreshold: 0.01}
}

func (c VADConfig) windowSamples(rate int) int {
	return c.WindowMS * rate / 1000
}

func (c VADConfig) stepSamples(rate int) int {
	return c.StepMS * rate / 1000
}

// FindBestCutPoint scans windows of samples in [searchStart, searchEnd) and
// returns a cut position, the RMS of the chosen window, and whether that
// window was silent.
//
// If any window is below the silence threshold, the quietest silent window
// wins. Otherwise the globally quietest window wins, flagged non-silent. An
// empty search range returns (searchStart, 0, true).
func FindBestCutPoint(samples []float32, searchStart, searchEnd, rate int, cfg VADConfig) (pos int, rms float32, isSilence bool) {
	if searchEnd <= searchStart || searchStart < 0 || searchEnd > len(samples) {
		if searchStart < 0 {
			searchStart = 0
		}
		return searchStart, 0, true
	}

	window := cfg.windowSamples(rate)
	step := cfg.stepSamples(rate)
	if window <= 0 || step <= 0 {
		return searchStart, 0, true
	}

	bestSilentPos := -1
	bestSilentRMS := float32(0)
	bestAnyPos := searchStart
	bestAnyRMS := float32(-1)

	for start := searchStart; start+window <= searchEnd; start += step {
		w := samples[start : start+window]
		r := RMS(w)
		center := start + window/2

		if bestAnyRMS < 0 || r < bestAnyRMS {
			bestAnyRMS = r
			bestAnyPos = center
		}

		if r < cfg.SilenceThreshold {
			if bestSilentPos == -1 || r < bestSilentRMS {
				bestSilentPos = center
				bestSilentRMS = r
			}
		}
	}

	if bestSilentPos != -1 {
		return bestSilentPos, bestSilentRMS, true
	}
	if bestAnyRMS < 0 {
		// Range too short for even one window.
		return searchStart, 0, true
	}
	return bestAnyPos, bestAnyRMS, false
}
