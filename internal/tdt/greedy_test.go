package tdt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResponse struct {
	token    int
	duration int
}

type fakeCall struct {
	tokenID int
	state   LSTMState
	frame   []float32
}

// fakeDJ is a DecoderJointStage test double driven by a canned sequence of
// responses, one per call, recording every call for assertion.
type fakeDJ struct {
	responses []fakeResponse
	calls     []fakeCall
}

func (f *fakeDJ) Run(tokenID int, state LSTMState, frame []float32) ([]float32, LSTMState, error) {
	idx := len(f.calls)
	f.calls = append(f.calls, fakeCall{tokenID: tokenID, state: state, frame: frame})
	r := f.responses[idx]
	next := LSTMState{H: []float32{float32(idx + 1)}, C: []float32{float32(idx + 1)}}
	return buildLogits(r.token, r.duration), next, nil
}

func buildLogits(token, duration int) []float32 {
	out := make([]float32, VocabSize+DurationClasses)
	out[token] = 20
	out[VocabSize+duration-1] = 20
	return out
}

func encoderOutputFor(validSteps int) EncoderOutput {
	return EncoderOutput{Data: make([]float32, EncoderDim*EncoderMaxSteps), ValidTimeSteps: validSteps}
}

func TestGreedyDecodeEmitsNonBlankAndSkipsBlank(t *testing.T) {
	dj := &fakeDJ{responses: []fakeResponse{
		{token: 5, duration: 1},
		{token: BlankID, duration: 1},
		{token: 7, duration: 1},
	}}
	enc := encoderOutputFor(3)

	tokens, err := greedyDecode(Stages{DecoderJoint: dj}, enc, LanguageAuto, DefaultDecodingConfig())

	require.NoError(t, err)
	assert.Equal(t, []int{5, 7}, tokens)
	require.Len(t, dj.calls, 3)

	// Call 0 starts from the zero state with the blank as "last".
	assert.Equal(t, BlankID, dj.calls[0].tokenID)
	assert.Equal(t, ZeroLSTMState(), dj.calls[0].state)

	// Call 1 sees the token emitted by call 0, with its resulting state.
	assert.Equal(t, 5, dj.calls[1].tokenID)
	assert.Equal(t, float32(1), dj.calls[1].state.H[0])

	// Call 2: call 1 emitted blank, so last token and state carry over
	// unchanged from call 0's result.
	assert.Equal(t, 5, dj.calls[2].tokenID)
	assert.Equal(t, float32(1), dj.calls[2].state.H[0])
}

func TestGreedyDecodePrimesBeforeMainLoop(t *testing.T) {
	dj := &fakeDJ{responses: []fakeResponse{
		{token: 0, duration: 1}, // priming call, logits discarded
		{token: 9, duration: 1},
	}}
	enc := encoderOutputFor(1)
	enc.Data[0*EncoderMaxSteps+0] = 99 // distinguishes the real frame 0 from the zeroed priming frame

	tokens, err := greedyDecode(Stages{DecoderJoint: dj}, enc, LanguageFrench, DefaultDecodingConfig())

	require.NoError(t, err)
	assert.Equal(t, []int{9}, tokens)
	require.Len(t, dj.calls, 2)

	assert.Equal(t, primeTokenFrench, dj.calls[0].tokenID)
	assert.Equal(t, float32(0), dj.calls[0].frame[0])

	assert.Equal(t, primeTokenFrench, dj.calls[1].tokenID)
	assert.Equal(t, float32(99), dj.calls[1].frame[0])
}

func TestGreedyDecodeStopsAtValidTimeSteps(t *testing.T) {
	dj := &fakeDJ{responses: []fakeResponse{
		{token: 1, duration: 5}, // jumps straight past ValidTimeSteps
	}}
	enc := encoderOutputFor(2)

	tokens, err := greedyDecode(Stages{DecoderJoint: dj}, enc, LanguageAuto, DefaultDecodingConfig())

	require.NoError(t, err)
	assert.Equal(t, []int{1}, tokens)
	assert.Len(t, dj.calls, 1)
}
