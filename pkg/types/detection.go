package types

import (
	"math"
	"time"
)

// Candidate is one recognized plate produced by the external ALPR engine
// for a single frame. It has not yet passed the confidence gate or the
// duplicate filter.
type Candidate struct {
	Plate               string
	OCRConfidence       float64
	DetectionConfidence float64
}

// Detection is an accepted candidate bound to the moment it was observed.
type Detection struct {
	Plate               string
	OCRConfidence       float64
	DetectionConfidence float64
	ObservedAt          time.Time
}

// Frame is an opaque captured image handed to the recognizer. The pipeline
// never inspects the pixel data.
type Frame struct {
	Data       []byte
	CapturedAt time.Time
	Number     uint64
}

// DetectionRecord is the per-detection entry of the persisted session
// document. Confidences are rounded to 4 decimals on the way in.
type DetectionRecord struct {
	Timestamp           string  `json:"timestamp"`
	Plate               string  `json:"plate"`
	OCRConfidence       float64 `json:"ocr_confidence"`
	DetectionConfidence float64 `json:"detection_confidence"`
}

// SessionDocument is the complete on-disk session artifact. The file is
// rewritten whole on every accepted detection, so a reader always sees a
// parseable document.
type SessionDocument struct {
	SessionID       string            `json:"session_id"`
	SessionStart    string            `json:"session_start"`
	TotalDetections int               `json:"total_detections"`
	Detections      []DetectionRecord `json:"detections"`
}

// Record converts a detection into its persisted form.
func (d Detection) Record() DetectionRecord {
	return DetectionRecord{
		Timestamp:           d.ObservedAt.Format(time.RFC3339Nano),
		Plate:               d.Plate,
		OCRConfidence:       Round4(d.OCRConfidence),
		DetectionConfidence: Round4(d.DetectionConfidence),
	}
}

// Round4 rounds a confidence to 4 decimal places, the precision carried by
// the session document.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
