package backend

import (
	"sync"

	"github.com/halvorsen/scriptor/internal/tdt"
)

// DynamicEngine holds the active backend behind a single handle. Switches
// are serialized with inference: a transcription in flight holds the lock
// for its whole call, so a concurrent SwitchBackend simply waits.
type DynamicEngine struct {
	mu     sync.Mutex
	active Engine
}

// NewDynamicEngine wraps an already-constructed initial engine.
func NewDynamicEngine(initial Engine) *DynamicEngine {
	return &DynamicEngine{active: initial}
}

// SwitchBackend is a no-op if next already names the active backend.
// Otherwise it loads next's model before replacing the handle, so a
// failed load leaves the previous backend active.
func (d *DynamicEngine) SwitchBackend(next Engine, modelDir string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active != nil && d.active.Name() == next.Name() {
		return nil
	}
	if err := next.LoadModel(modelDir); err != nil {
		return err
	}
	d.active = next
	return nil
}

// Name reports the active backend's name.
func (d *DynamicEngine) Name() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active == nil {
		return ""
	}
	return d.active.Name()
}

// IsLoaded reports whether the active backend has a model loaded.
func (d *DynamicEngine) IsLoaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active != nil && d.active.IsLoaded()
}

// RunInference holds the lock for the full call, so a SwitchBackend
// cannot replace the handle mid-transcription.
func (d *DynamicEngine) RunInference(samples []float32, language tdt.Language, cfg tdt.DecodingConfig) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active.RunInference(samples, language, cfg)
}
