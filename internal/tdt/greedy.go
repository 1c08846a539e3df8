package tdt

// greedyDecode runs the frame-advancing greedy TDT loop over enc, returning
// the emitted token ids in order.
func greedyDecode(stages Stages, enc EncoderOutput, language Language, cfg DecodingConfig) ([]int, error) {
	T := enc.ValidTimeSteps
	state := ZeroLSTMState()
	last := BlankID

	if primeID, ok := language.primeToken(); ok {
		_, next, err := stages.DecoderJoint.Run(primeID, state, make([]float32, EncoderDim))
		if err != nil {
			return nil, err
		}
		state = next
		last = primeID
	}

	var emitted []int
	t := 0
	maxIter := 10 * T
	if maxIter == 0 {
		maxIter = 1
	}

	for iter := 0; t < T && iter < maxIter; iter++ {
		frame, err := enc.Frame(t)
		if err != nil {
			return nil, err
		}

		logits, next, err := stages.DecoderJoint.Run(last, state, frame)
		if err != nil {
			return nil, err
		}

		tokenLogits, durationLogits := splitLogits(logits, cfg)
		token := argmax(tokenLogits)
		duration := decodeDuration(durationLogits)

		if token != BlankID {
			emitted = append(emitted, token)
			last = token
			state = next
		}
		t += duration
	}

	return emitted, nil
}
