package tdt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeamDecodeWidthOneMatchesGreedy(t *testing.T) {
	responses := []fakeResponse{
		{token: 5, duration: 1},
		{token: BlankID, duration: 1},
		{token: 7, duration: 1},
	}
	enc := encoderOutputFor(3)
	cfg := DecodingConfig{BeamWidth: 1, Temperature: 1.0, BlankPenalty: 6.0}

	greedyDJ := &fakeDJ{responses: responses}
	greedyTokens, err := greedyDecode(Stages{DecoderJoint: greedyDJ}, enc, LanguageAuto, cfg)
	require.NoError(t, err)

	beamDJ := &fakeDJ{responses: responses}
	beamTokens, err := beamDecode(Stages{DecoderJoint: beamDJ}, enc, LanguageAuto, cfg)
	require.NoError(t, err)

	assert.Equal(t, greedyTokens, beamTokens)
	assert.Equal(t, []int{5, 7}, beamTokens)
}

func TestBeamDecodePrimesBeforeMainLoop(t *testing.T) {
	dj := &fakeDJ{responses: []fakeResponse{
		{token: 0, duration: 1},
		{token: 9, duration: 1},
	}}
	enc := encoderOutputFor(1)

	tokens, err := beamDecode(Stages{DecoderJoint: dj}, enc, LanguageEnglish, DefaultDecodingConfig())

	require.NoError(t, err)
	assert.Equal(t, []int{9}, tokens)
	require.Len(t, dj.calls, 2)
	assert.Equal(t, primeTokenEnglish, dj.calls[0].tokenID)
}

func TestBeamDecodeDefaultsWidthToOne(t *testing.T) {
	dj := &fakeDJ{responses: []fakeResponse{{token: 3, duration: 1}}}
	enc := encoderOutputFor(1)

	tokens, err := beamDecode(Stages{DecoderJoint: dj}, enc, LanguageAuto, DecodingConfig{BeamWidth: 0, Temperature: 1, BlankPenalty: 6})

	require.NoError(t, err)
	assert.Equal(t, []int{3}, tokens)
}

func TestKeepTopHypsOrdersByScore(t *testing.T) {
	pool := []hypothesis{
		{tokens: []int{1}, score: 0.1},
		{tokens: []int{2}, score: 0.9},
		{tokens: []int{3}, score: 0.5},
	}

	top := keepTopHyps(pool, 2)

	require.Len(t, top, 2)
	assert.Equal(t, []int{2}, top[0].tokens)
	assert.Equal(t, []int{3}, top[1].tokens)
}
