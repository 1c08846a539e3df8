package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvorsen/scriptor/internal/apperr"
	"github.com/halvorsen/scriptor/internal/logger"
	"github.com/halvorsen/scriptor/internal/tdt"
)

func testLogger() *logger.Logger {
	return logger.New(logger.LevelOff, nil)
}

type stubEngine struct {
	loaded    bool
	texts     []string
	errs      []error
	callCount int
}

func (s *stubEngine) IsLoaded() bool { return s.loaded }

func (s *stubEngine) RunInference(samples []float32, language tdt.Language, cfg tdt.DecodingConfig) (string, error) {
	i := s.callCount
	s.callCount++
	var text string
	var err error
	if i < len(s.texts) {
		text = s.texts[i]
	}
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return text, err
}

func oneSecondSamples() []float32 {
	return make([]float32, 16000)
}

func TestTranscribeReturnsEmptyRecordForEmptySamples(t *testing.T) {
	o := New(&stubEngine{loaded: true, texts: []string{"should never be reached"}}, testLogger())

	result, err := o.Transcribe(nil, SourceFile, "clip.wav", tdt.LanguageAuto, tdt.DefaultDecodingConfig())

	require.NoError(t, err)
	assert.Equal(t, int64(0), result.DurationMS)
	assert.Equal(t, "", result.RawText)
	assert.Empty(t, result.Segments)
}

func TestTranscribeReturnsMockWhenEngineNotLoaded(t *testing.T) {
	o := New(&stubEngine{loaded: false}, testLogger())

	result, err := o.Transcribe(oneSecondSamples(), SourceFile, "clip.wav", tdt.LanguageAuto, tdt.DefaultDecodingConfig())

	require.NoError(t, err)
	assert.Equal(t, "[transcription unavailable]", result.RawText)
	assert.Equal(t, float64(0), result.Segments[0].Confidence)
	assert.Equal(t, SourceFile, result.SourceType)
	assert.NotEmpty(t, result.ID)
}

func TestTranscribeReturnsEngineTextOnSuccess(t *testing.T) {
	engine := &stubEngine{loaded: true, texts: []string{"bonjour le monde"}}
	o := New(engine, testLogger())

	result, err := o.Transcribe(oneSecondSamples(), SourceDictation, "", tdt.LanguageFrench, tdt.DefaultDecodingConfig())

	require.NoError(t, err)
	assert.Equal(t, "bonjour le monde", result.RawText)
	assert.Equal(t, 0.95, result.Segments[0].Confidence)
	assert.Equal(t, "fr", result.LanguageTag)
}

func TestTranscribeFallsBackToMockWhenAllChunksFail(t *testing.T) {
	engine := &stubEngine{loaded: true, errs: []error{apperr.NewTranscriptionFailed("boom", nil)}}
	o := New(engine, testLogger())

	result, err := o.Transcribe(oneSecondSamples(), SourceFile, "clip.wav", tdt.LanguageAuto, tdt.DefaultDecodingConfig())

	require.NoError(t, err)
	assert.Equal(t, "[transcription unavailable]", result.RawText)
}

func TestRunChunkedFiltersHallucinationOnlyForMultiChunk(t *testing.T) {
	o := New(&stubEngine{}, testLogger())

	single, err := o.runChunked(oneSecondSamples(), tdt.LanguageAuto, tdt.DefaultDecodingConfig())
	_ = single
	require.Error(t, err) // no texts stubbed, engine returns empty -> dropped -> all failed

	engine := &stubEngine{texts: []string{"ok, bonjour"}}
	o2 := New(engine, testLogger())
	text, err := o2.runChunked(oneSecondSamples(), tdt.LanguageAuto, tdt.DefaultDecodingConfig())
	require.NoError(t, err)
	// Single chunk: hallucination filter is not applied.
	assert.Equal(t, "ok, bonjour", text)
}

func TestRunChunkedDropsEmptyAndJoinsSurvivors(t *testing.T) {
	engine := &stubEngine{texts: []string{"", "hello"}}
	o := New(engine, testLogger())

	// Force multi-chunk by using audio long enough to split (over max chunk
	// seconds); a plain long silence still yields at least one chunk per
	// call to RunInference per produced chunk.
	samples := make([]float32, 16000*16)
	text, err := o.runChunked(samples, tdt.LanguageAuto, tdt.DefaultDecodingConfig())

	require.NoError(t, err)
	assert.Contains(t, text, "hello")
}
