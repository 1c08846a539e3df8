package tdt

type hypothesis struct {
	tokens []int
	score  float32
	state  LSTMState
	last   int
	t      int
}

func (h hypothesis) active(T int) bool { return h.t < T }

// beamDecode runs beam search with the given width over enc, returning the
// token sequence of the highest-scoring final hypothesis.
//
// Each hypothesis-step reads a single shared argmax duration and applies it
// to every one of that hypothesis's top-B token expansions (not a per-token
// duration); successors are then truncated to the top B globally by score,
// matching the reference decoder.
func beamDecode(stages Stages, enc EncoderOutput, language Language, cfg DecodingConfig) ([]int, error) {
	T := enc.ValidTimeSteps
	B := cfg.BeamWidth
	if B < 1 {
		B = 1
	}

	init := hypothesis{state: ZeroLSTMState(), last: BlankID}
	if primeID, ok := language.primeToken(); ok {
		_, next, err := stages.DecoderJoint.Run(primeID, init.state, make([]float32, EncoderDim))
		if err != nil {
			return nil, err
		}
		init.state = next
		init.last = primeID
	}

	hyps := []hypothesis{init}
	maxIter := 10 * T
	if maxIter == 0 {
		maxIter = 1
	}

	for iter := 0; iter < maxIter; iter++ {
		anyActive := false
		for _, h := range hyps {
			if h.active(T) {
				anyActive = true
				break
			}
		}
		if !anyActive {
			break
		}

		var pool []hypothesis
		for _, h := range hyps {
			if !h.active(T) {
				pool = append(pool, h)
				continue
			}

			frame, err := enc.Frame(h.t)
			if err != nil {
				return nil, err
			}
			logits, next, err := stages.DecoderJoint.Run(h.last, h.state, frame)
			if err != nil {
				return nil, err
			}

			tokenLogits, durationLogits := splitLogits(logits, cfg)
			duration := decodeDuration(durationLogits)
			logProbs := logSoftmax(tokenLogits)
			candidates := topB(logProbs, B)

			for _, token := range candidates {
				succ := hypothesis{
					tokens: h.tokens,
					score:  h.score + logProbs[token],
					state:  h.state,
					last:   h.last,
					t:      h.t + duration,
				}
				if token != BlankID {
					succ.tokens = append(append([]int{}, h.tokens...), token)
					succ.state = next.Clone()
					succ.last = token
				}
				pool = append(pool, succ)
			}
		}

		hyps = keepTopHyps(pool, B)
	}

	best := hyps[0]
	for _, h := range hyps[1:] {
		if h.score > best.score {
			best = h
		}
	}
	return best.tokens, nil
}

func keepTopHyps(pool []hypothesis, b int) []hypothesis {
	scores := make([]float32, len(pool))
	for i, h := range pool {
		scores[i] = h.score
	}
	idx := topB(scores, b)
	out := make([]hypothesis, len(idx))
	for i, j := range idx {
		out[i] = pool[j]
	}
	return out
}
