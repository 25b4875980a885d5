package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewatch/platewatch/pkg/types"
)

func detection(plate string, at time.Time) types.Detection {
	return types.Detection{
		Plate:               plate,
		OCRConfidence:       0.91,
		DetectionConfidence: 0.87,
		ObservedAt:          at,
	}
}

func TestIDDerivedFromCreationTime(t *testing.T) {
	created := time.Date(2026, 8, 26, 14, 30, 5, 0, time.UTC)
	l := NewLog(created)
	assert.Equal(t, "20260826_143005", l.ID())
	assert.Equal(t, created, l.CreatedAt())
}

func TestSummarizeAggregatesByPlate(t *testing.T) {
	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	l := NewLog(base)

	l.Append(detection("ABC123", base))
	l.Append(detection("XYZ999", base.Add(2*time.Second)))
	l.Append(detection("ABC123", base.Add(10*time.Second)))

	want := map[string]int{"ABC123": 2, "XYZ999": 1}
	assert.Equal(t, want, l.Summarize())

	// Reading twice without an intervening append yields the same result.
	assert.Equal(t, want, l.Summarize())
}

func TestStartedAtFallsBackToCreationTime(t *testing.T) {
	created := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	l := NewLog(created)
	assert.Equal(t, created, l.StartedAt())

	first := created.Add(42 * time.Second)
	l.Append(detection("ABC123", first))
	assert.Equal(t, first, l.StartedAt())
}

func TestDocumentMatchesLogState(t *testing.T) {
	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	l := NewLog(base)

	l.Append(detection("ABC123", base.Add(time.Second)))
	l.Append(detection("DEF456", base.Add(2*time.Second)))

	doc := l.Document()
	assert.Equal(t, l.ID(), doc.SessionID)
	assert.Equal(t, 2, doc.TotalDetections)
	require.Len(t, doc.Detections, doc.TotalDetections)
	assert.Equal(t, base.Add(time.Second).Format(time.RFC3339Nano), doc.SessionStart)
	assert.Equal(t, "ABC123", doc.Detections[0].Plate)
	assert.Equal(t, "DEF456", doc.Detections[1].Plate)
}

func TestDocumentRoundsConfidences(t *testing.T) {
	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	l := NewLog(base)
	l.Append(types.Detection{
		Plate:               "ABC123",
		OCRConfidence:       0.912345678,
		DetectionConfidence: 0.87654321,
		ObservedAt:          base,
	})

	doc := l.Document()
	assert.Equal(t, 0.9123, doc.Detections[0].OCRConfidence)
	assert.Equal(t, 0.8765, doc.Detections[0].DetectionConfidence)
}

func TestDetectionsReturnsCopy(t *testing.T) {
	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	l := NewLog(base)
	l.Append(detection("ABC123", base))

	got := l.Detections()
	got[0].Plate = "MUTATED"

	fresh := l.Detections()
	assert.Equal(t, "ABC123", fresh[0].Plate)
}

func TestLast(t *testing.T) {
	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	l := NewLog(base)

	_, ok := l.Last()
	assert.False(t, ok)

	l.Append(detection("ABC123", base))
	l.Append(detection("XYZ999", base.Add(time.Second)))

	last, ok := l.Last()
	require.True(t, ok)
	assert.Equal(t, "XYZ999", last.Plate)
}
