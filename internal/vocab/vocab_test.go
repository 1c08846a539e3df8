package vocab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvorsen/scriptor/internal/apperr"
)

func TestLoadJSONVocabulary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"0":"▁bonjour","1":"le","2":"▁monde"}`), 0o644))

	v, err := Load(path)

	require.NoError(t, err)
	tok, ok := v.Token(0)
	require.True(t, ok)
	assert.Equal(t, "▁bonjour", tok)
}

func TestLoadTxtVocabulary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.txt")
	require.NoError(t, os.WriteFile(path, []byte("▁bonjour 0\nle 1\n▁monde 2\n"), 0o644))

	v, err := Load(path)

	require.NoError(t, err)
	tok, ok := v.Token(2)
	require.True(t, ok)
	assert.Equal(t, "▁monde", tok)
}

func TestLoadTxtVocabularyRejectsMalformedLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.txt")
	require.NoError(t, os.WriteFile(path, []byte("nospacehere\n"), 0o644))

	_, err := Load(path)

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.VocabularyError))
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/vocab.txt")

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.VocabularyError))
}

func TestDetokenizeSkipsBlankAndOutOfRange(t *testing.T) {
	v := &Vocabulary{tokens: map[int]string{0: "▁bonjour", 1: "▁le", 2: "▁monde"}}

	text := v.Detokenize([]int{0, 1, BlankID, 2, VocabSize + 10})

	assert.Equal(t, "bonjour le monde", text)
}

func TestDetokenizeSkipsUnknownID(t *testing.T) {
	v := &Vocabulary{tokens: map[int]string{0: "▁bonjour"}}

	text := v.Detokenize([]int{0, 999})

	assert.Equal(t, "bonjour", text)
}

func TestDetokenizeEmptySequence(t *testing.T) {
	v := &Vocabulary{tokens: map[int]string{}}

	assert.Equal(t, "", v.Detokenize(nil))
}
