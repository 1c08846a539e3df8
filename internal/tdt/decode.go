package tdt

import (
	"math"
	"sort"
)

// splitLogits applies temperature scaling and the blank penalty to the
// token logits, and separates out the duration logits, per §4.5's
// decode_tdt contract.
func splitLogits(logits []float32, cfg DecodingConfig) (tokenLogits, durationLogits []float32) {
	tokenLogits = make([]float32, VocabSize)
	copy(tokenLogits, logits[:VocabSize])
	durationLogits = logits[VocabSize : VocabSize+DurationClasses]

	if cfg.Temperature != 1.0 && cfg.Temperature > 0 {
		for i := range tokenLogits {
			tokenLogits[i] /= cfg.Temperature
		}
	}
	tokenLogits[BlankID] -= cfg.BlankPenalty
	return tokenLogits, durationLogits
}

func argmax(xs []float32) int {
	best := 0
	for i := 1; i < len(xs); i++ {
		if xs[i] > xs[best] {
			best = i
		}
	}
	return best
}

// decodeDuration reads the argmax duration class and maps it to a frame
// advance of 1..DurationClasses.
func decodeDuration(durationLogits []float32) int {
	return argmax(durationLogits) + 1
}

// logSoftmax computes log-probabilities over xs in a numerically stable way.
func logSoftmax(xs []float32) []float32 {
	max := xs[0]
	for _, x := range xs {
		if x > max {
			max = x
		}
	}
	var sum float64
	for _, x := range xs {
		sum += math.Exp(float64(x - max))
	}
	logSum := math.Log(sum)
	out := make([]float32, len(xs))
	for i, x := range xs {
		out[i] = x - max - float32(logSum)
	}
	return out
}

type scoredIndex struct {
	index int
	score float32
}

// topB returns the indices of the B highest-scoring entries, ties broken by
// ascending original index for determinism.
func topB(scores []float32, b int) []int {
	if b > len(scores) {
		b = len(scores)
	}
	candidates := make([]scoredIndex, len(scores))
	for i, s := range scores {
		candidates[i] = scoredIndex{index: i, score: s}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].index < candidates[j].index
	})
	out := make([]int, b)
	for i := 0; i < b; i++ {
		out[i] = candidates[i].index
	}
	return out
}
