package recognizer

import (
	"context"
	"sync"

	"github.com/platewatch/platewatch/pkg/types"
)

// Replay serves a scripted sequence of recognition results, one entry per
// frame. Past the end of the script it returns no candidates. Used for
// offline runs and tests.
type Replay struct {
	mu      sync.Mutex
	script  [][]types.Candidate
	current int
}

// NewReplay creates a replay recognizer from per-frame candidate sets.
func NewReplay(script [][]types.Candidate) *Replay {
	return &Replay{script: script}
}

// Recognize implements Recognizer.
func (r *Replay) Recognize(_ context.Context, _ types.Frame) ([]types.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current >= len(r.script) {
		return nil, nil
	}
	out := r.script[r.current]
	r.current++
	return out, nil
}

// Exhausted reports whether the whole script has been served.
func (r *Replay) Exhausted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current >= len(r.script)
}
