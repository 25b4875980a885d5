// Package session holds the in-memory session log and its on-disk
// journal. One Log is created per recognition session; its identity never
// changes, and its detections are kept in acceptance order.
package session

import (
	"time"

	"github.com/platewatch/platewatch/pkg/types"
)

// IDFormat is the timestamp layout session identifiers are derived from.
const IDFormat = "20060102_150405"

// Log is the in-memory session record. It is not safe for concurrent use;
// the recorder serializes access.
type Log struct {
	id         string
	createdAt  time.Time
	detections []types.Detection
}

// NewLog creates a session log identified by its creation time.
func NewLog(createdAt time.Time) *Log {
	return &Log{
		id:        createdAt.Format(IDFormat),
		createdAt: createdAt,
	}
}

// ID returns the immutable session identifier.
func (l *Log) ID() string {
	return l.id
}

// CreatedAt returns the log creation time.
func (l *Log) CreatedAt() time.Time {
	return l.createdAt
}

// Append records an accepted detection. Detections arrive in acceptance
// order, so insertion order is time order.
func (l *Log) Append(d types.Detection) {
	l.detections = append(l.detections, d)
}

// Count returns the number of accepted detections.
func (l *Log) Count() int {
	return len(l.detections)
}

// Detections returns a copy of the accepted detections in order.
func (l *Log) Detections() []types.Detection {
	out := make([]types.Detection, len(l.detections))
	copy(out, l.detections)
	return out
}

// Last returns the most recently accepted detection, if any.
func (l *Log) Last() (types.Detection, bool) {
	if len(l.detections) == 0 {
		return types.Detection{}, false
	}
	return l.detections[len(l.detections)-1], true
}

// Summarize aggregates accepted detections by plate. It reads without
// side effects, so repeated calls yield identical results.
func (l *Log) Summarize() map[string]int {
	counts := make(map[string]int, len(l.detections))
	for _, d := range l.detections {
		counts[d.Plate]++
	}
	return counts
}

// StartedAt returns the timestamp of the first accepted detection, or the
// log creation time if nothing has been accepted yet.
func (l *Log) StartedAt() time.Time {
	if len(l.detections) > 0 {
		return l.detections[0].ObservedAt
	}
	return l.createdAt
}

// Document produces the persisted form of the session.
func (l *Log) Document() types.SessionDocument {
	records := make([]types.DetectionRecord, 0, len(l.detections))
	for _, d := range l.detections {
		records = append(records, d.Record())
	}
	return types.SessionDocument{
		SessionID:       l.id,
		SessionStart:    l.StartedAt().Format(time.RFC3339Nano),
		TotalDetections: len(records),
		Detections:      records,
	}
}
