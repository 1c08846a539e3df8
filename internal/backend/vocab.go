package backend

import (
	"path/filepath"

	"github.com/halvorsen/scriptor/internal/vocab"
)

// loadVocab tries a model directory's known vocabulary filenames in order
// and loads the first one present.
func loadVocab(dir string) (*vocab.Vocabulary, error) {
	var err error
	for _, name := range []string{"parakeet_v3_vocab.json", "parakeet_vocab.json", "vocab.txt"} {
		var v *vocab.Vocabulary
		v, err = vocab.Load(filepath.Join(dir, name))
		if err == nil {
			return v, nil
		}
	}
	return nil, err
}
