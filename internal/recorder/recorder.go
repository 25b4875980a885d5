// Package recorder decides acceptance of recognized plates and keeps the
// session journal durable. It is the composition root for the duplicate
// filter, the in-memory session log, and the on-disk journal.
package recorder

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/platewatch/platewatch/internal/dedup"
	"github.com/platewatch/platewatch/internal/metrics"
	"github.com/platewatch/platewatch/internal/session"
	"github.com/platewatch/platewatch/pkg/types"
)

// Recorder serializes the duplicate check and the acceptance as one
// critical section, so concurrent offers of the same plate can never both
// land as first sightings.
type Recorder struct {
	mu      sync.Mutex
	filter  *dedup.Filter
	log     *session.Log
	journal *session.Journal
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// New creates a recorder for one session. The journal file lives under
// outputDir and is named after the session id.
func New(window time.Duration, outputDir string, m *metrics.Metrics, logger zerolog.Logger) (*Recorder, error) {
	log := session.NewLog(time.Now())
	journal, err := session.NewJournal(outputDir, log.ID())
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("session_id", log.ID()).
		Str("journal", journal.Path()).
		Dur("duplicate_window", window).
		Msg("session started")

	return &Recorder{
		filter:  dedup.NewFilter(window),
		log:     log,
		journal: journal,
		metrics: m,
		logger:  logger,
	}, nil
}

// ShouldAccept reports whether a sighting of plate at the given time would
// be accepted. It takes no lock beyond the filter's own; callers that go
// on to accept must use Offer, which re-checks under the recorder lock.
func (r *Recorder) ShouldAccept(plate string, at time.Time) bool {
	return r.filter.ShouldAccept(plate, at)
}

// Offer runs the duplicate check and, if the candidate is new, records it:
// the last-seen index is updated, the detection is appended to the session
// log, and the full journal is rewritten.
//
// A persistence failure is returned as a *session.PersistError, but the
// acceptance stands: the in-memory log is authoritative and the next
// successful persist carries the detection to disk.
func (r *Recorder) Offer(c types.Candidate, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.filter.Admit(c.Plate, at) {
		if r.metrics != nil {
			r.metrics.Suppressed.Add(1)
		}
		r.logger.Debug().Str("plate", c.Plate).Msg("duplicate suppressed")
		return false, nil
	}

	r.log.Append(types.Detection{
		Plate:               c.Plate,
		OCRConfidence:       c.OCRConfidence,
		DetectionConfidence: c.DetectionConfidence,
		ObservedAt:          at,
	})
	if r.metrics != nil {
		r.metrics.Accepted.Add(1)
		r.metrics.SessionDetections.Store(uint64(r.log.Count()))
	}
	r.logger.Info().
		Str("plate", c.Plate).
		Float64("ocr_confidence", c.OCRConfidence).
		Float64("detection_confidence", c.DetectionConfidence).
		Int("total", r.log.Count()).
		Msg("detection saved")

	return true, r.persistLocked()
}

// Summary aggregates accepted detections by plate.
func (r *Recorder) Summary() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.log.Summarize()
}

// Status is a point-in-time snapshot of the session.
type Status struct {
	SessionID       string            `json:"session_id"`
	StartedAt       time.Time         `json:"started_at"`
	TotalDetections int               `json:"total_detections"`
	UniquePlates    int               `json:"unique_plates"`
	LastPlate       string            `json:"last_plate,omitempty"`
	LastSeenAt      *time.Time        `json:"last_seen_at,omitempty"`
	JournalPath     string            `json:"journal_path"`
	DuplicateWindow time.Duration     `json:"duplicate_window_ns"`
	Detections      []types.Detection `json:"-"`
}

// Status returns the current session snapshot.
func (r *Recorder) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Status{
		SessionID:       r.log.ID(),
		StartedAt:       r.log.StartedAt(),
		TotalDetections: r.log.Count(),
		UniquePlates:    len(r.log.Summarize()),
		JournalPath:     r.journal.Path(),
		DuplicateWindow: r.filter.Window(),
		Detections:      r.log.Detections(),
	}
	if last, ok := r.log.Last(); ok {
		s.LastPlate = last.Plate
		at := last.ObservedAt
		s.LastSeenAt = &at
	}
	return s
}

// SessionID returns the immutable session identifier.
func (r *Recorder) SessionID() string {
	return r.log.ID()
}

// JournalPath returns the journal file path.
func (r *Recorder) JournalPath() string {
	return r.journal.Path()
}

// Close persists the final state of the session journal.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.persistLocked()
}

func (r *Recorder) persistLocked() error {
	start := time.Now()
	err := r.journal.Persist(r.log.Document())
	if r.metrics != nil {
		r.metrics.UpdatePersistLatency(time.Since(start))
	}
	if err != nil {
		if r.metrics != nil {
			r.metrics.PersistErrors.Add(1)
		}
		r.logger.Error().Err(err).Msg("journal write failed, session kept in memory")
		return err
	}
	return nil
}
