// Package recognizer is the boundary to the external plate-recognition
// engine. The pipeline only ever sees the Recognizer interface; detection
// and OCR stay the collaborator's problem.
package recognizer

import (
	"context"

	"github.com/platewatch/platewatch/pkg/types"
)

// Recognizer produces plate candidates for a frame. Implementations must
// be safe for sequential use from the pipeline goroutine; they need not
// support concurrent calls.
type Recognizer interface {
	Recognize(ctx context.Context, frame types.Frame) ([]types.Candidate, error)
}

// Func adapts a function to the Recognizer interface.
type Func func(ctx context.Context, frame types.Frame) ([]types.Candidate, error)

// Recognize implements Recognizer.
func (f Func) Recognize(ctx context.Context, frame types.Frame) ([]types.Candidate, error) {
	return f(ctx, frame)
}
