// Package pipeline runs the capture loop: frames in, recognized plates
// through the confidence gate and the duplicate filter, accepted
// detections into the session journal.
package pipeline

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/platewatch/platewatch/internal/metrics"
	"github.com/platewatch/platewatch/internal/recognizer"
	"github.com/platewatch/platewatch/internal/recorder"
	"github.com/platewatch/platewatch/pkg/types"
)

// Notifier receives every accepted detection, e.g. for live streaming to
// monitor clients.
type Notifier interface {
	Publish(d types.Detection)
}

// Pipeline wires a frame source to the recognizer and the recorder.
type Pipeline struct {
	source        Source
	recognizer    recognizer.Recognizer
	recorder      *recorder.Recorder
	metrics       *metrics.Metrics
	logger        zerolog.Logger
	minConfidence float64
	processEvery  int
	notifier      Notifier
}

// Options configures a pipeline.
type Options struct {
	Source        Source
	Recognizer    recognizer.Recognizer
	Recorder      *recorder.Recorder
	Metrics       *metrics.Metrics
	Logger        zerolog.Logger
	MinConfidence float64
	ProcessEvery  int
	Notifier      Notifier
}

// New creates a pipeline. ProcessEvery below 1 is clamped to 1.
func New(opts Options) *Pipeline {
	processEvery := opts.ProcessEvery
	if processEvery < 1 {
		processEvery = 1
	}
	return &Pipeline{
		source:        opts.Source,
		recognizer:    opts.Recognizer,
		recorder:      opts.Recorder,
		metrics:       opts.Metrics,
		logger:        opts.Logger,
		minConfidence: opts.MinConfidence,
		processEvery:  processEvery,
		notifier:      opts.Notifier,
	}
}

// Run drives the loop until the context is cancelled or the source
// drains. Recognizer failures are logged and skipped; the loop keeps
// going, matching a live feed where one bad frame is not fatal.
func (p *Pipeline) Run(ctx context.Context) error {
	for {
		frame, err := p.source.Next(ctx)
		if err != nil {
			if errors.Is(err, ErrSourceDrained) {
				p.logger.Info().Msg("frame source drained, ending session")
				return nil
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		p.metrics.FramesRead.Add(1)

		if frame.Number%uint64(p.processEvery) != 0 {
			continue
		}
		p.metrics.FramesProcessed.Add(1)

		candidates, err := p.recognizer.Recognize(ctx, frame)
		if err != nil {
			p.metrics.RecognizeErrors.Add(1)
			p.logger.Warn().Err(err).Uint64("frame", frame.Number).Msg("recognition failed")
			continue
		}

		for _, c := range candidates {
			p.metrics.Candidates.Add(1)

			// The confidence gate runs before the duplicate filter so a
			// low-confidence read never refreshes the last-seen index.
			if c.DetectionConfidence < p.minConfidence {
				p.metrics.BelowConfidence.Add(1)
				continue
			}

			observedAt := frame.CapturedAt
			accepted, err := p.recorder.Offer(c, observedAt)
			if err != nil {
				// The acceptance is already in memory; durability catches
				// up on the next successful write.
				p.logger.Error().Err(err).Str("plate", c.Plate).Msg("journal write failed")
			}
			if accepted && p.notifier != nil {
				p.notifier.Publish(types.Detection{
					Plate:               c.Plate,
					OCRConfidence:       c.OCRConfidence,
					DetectionConfidence: c.DetectionConfidence,
					ObservedAt:          observedAt,
				})
			}
		}
	}
}
