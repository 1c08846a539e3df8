package tdt

// MelStage computes a mel spectrogram from raw samples padded to
// MaxRawSamples, given the true (unpadded) sample count as validLen.
type MelStage interface {
	Run(paddedSamples []float32, validLen int) (MelOutput, error)
}

// EncoderStage turns mel features into the encoded time series.
type EncoderStage interface {
	Run(mel MelOutput) (EncoderOutput, error)
}

// DecoderJointStage runs one decode step: given the last emitted (or
// priming) token id, the current LSTM state, and one encoder frame, it
// produces the joint logits and the decoder's next state.
//
// The spec's decoder and joint are two named graphs with independent
// shapes (decoder depends only on token+state; joint combines one encoder
// frame with the decoder's projection). A backend is free to implement
// this as two sequential calls against separate graphs (graph-execution
// backend A) or as one fused graph call (graph-execution backend B) —
// either way the external per-step contract taken by the decode loops
// below is this single Run method.
type DecoderJointStage interface {
	Run(tokenID int, state LSTMState, encoderFrame []float32) (logits []float32, next LSTMState, err error)
}

// Stages groups the pipeline stages behind one handle. RequiresReset
// signals stateful-backend hygiene (§4.5/§9): when true, the owning backend
// must recreate all stage handles before each transcription.
type Stages struct {
	Mel           MelStage
	Encoder       EncoderStage
	DecoderJoint  DecoderJointStage
	RequiresReset bool
}
