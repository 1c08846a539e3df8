package tdt

import "github.com/halvorsen/scriptor/internal/vocab"

// Pipeline runs the four-stage neural pipeline and TDT decode loop over a
// single chunk of 16 kHz mono samples.
type Pipeline struct {
	Stages Stages
	Vocab  *vocab.Vocabulary
}

// Transcribe pads samples to MaxRawSamples, runs mel → encoder, then
// greedy or beam decode depending on cfg.BeamWidth, and returns detokenized
// text.
func (p *Pipeline) Transcribe(samples []float32, language Language, cfg DecodingConfig) (string, error) {
	validLen := len(samples)
	padded := make([]float32, MaxRawSamples)
	copy(padded, samples)

	mel, err := p.Stages.Mel.Run(padded, validLen)
	if err != nil {
		return "", err
	}
	if mel.ValidFrames == 0 {
		return "", nil
	}

	enc, err := p.Stages.Encoder.Run(mel)
	if err != nil {
		return "", err
	}
	if enc.ValidTimeSteps == 0 {
		return "", nil
	}

	var tokens []int
	if cfg.BeamWidth <= 1 {
		tokens, err = greedyDecode(p.Stages, enc, language, cfg)
	} else {
		tokens, err = beamDecode(p.Stages, enc, language, cfg)
	}
	if err != nil {
		return "", err
	}

	return p.Vocab.Detokenize(tokens), nil
}
