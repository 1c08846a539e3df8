// Package vocab loads the TDT vocabulary (token id -> subword string) and
// renders emitted token sequences back into text.
package vocab

import (
	"bufio"
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/halvorsen/scriptor/internal/apperr"
)

// VocabSize is the number of real vocabulary entries (ids 0..VocabSize-1).
const VocabSize = 8193

// BlankID is the sentinel blank token id, the last id of the vocabulary.
const BlankID = 8192

// WordBoundary is the SentencePiece word-boundary marker rendered as a
// leading space at detokenization time.
const WordBoundary = "▁" // ▁

// Vocabulary maps token ids to subword strings.
type Vocabulary struct {
	tokens map[int]string
}

// Load reads a vocabulary file, auto-detecting JSON (an object mapping
// decimal-string ids to tokens) versus the line-oriented "<token> <id>" TXT
// format by content, not extension.
func Load(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.NewVocabularyError("cannot read vocabulary file", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		return loadJSON(data)
	}
	return loadTxt(data)
}

func loadJSON(data []byte) (*Vocabulary, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperr.NewVocabularyError("invalid vocabulary JSON", err)
	}
	tokens := make(map[int]string, len(raw))
	for idStr, tok := range raw {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return nil, apperr.NewVocabularyError("invalid vocabulary id: "+idStr, err)
		}
		tokens[id] = tok
	}
	return &Vocabulary{tokens: tokens}, nil
}

func loadTxt(data []byte) (*Vocabulary, error) {
	tokens := make(map[int]string)
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		idx := strings.LastIndex(line, " ")
		if idx < 0 {
			return nil, apperr.NewVocabularyError("malformed vocabulary line: "+line, nil)
		}
		tok := line[:idx]
		idStr := strings.TrimSpace(line[idx+1:])
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return nil, apperr.NewVocabularyError("invalid vocabulary id in line: "+line, err)
		}
		tokens[id] = tok
	}
	if err := scanner.Err(); err != nil {
		return nil, apperr.NewVocabularyError("failed to scan vocabulary file", err)
	}
	return &Vocabulary{tokens: tokens}, nil
}

// Token returns the subword string for id, and whether it was found.
func (v *Vocabulary) Token(id int) (string, bool) {
	tok, ok := v.tokens[id]
	return tok, ok
}

// Detokenize renders a sequence of emitted token ids as text, skipping the
// blank and any out-of-range id, and rendering the SentencePiece
// word-boundary marker as a leading space.
func (v *Vocabulary) Detokenize(ids []int) string {
	var b strings.Builder
	for _, id := range ids {
		if id == BlankID || id >= VocabSize {
			continue
		}
		tok, ok := v.Token(id)
		if !ok {
			continue
		}
		tok = strings.ReplaceAll(tok, WordBoundary, " ")
		b.WriteString(tok)
	}
	return strings.TrimSpace(b.String())
}
