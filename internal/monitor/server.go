// Package monitor serves the session monitoring API: current status,
// per-plate summary, recent detections, a live SSE stream of accepted
// detections, and Prometheus metrics.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/platewatch/platewatch/internal/metrics"
	"github.com/platewatch/platewatch/internal/recorder"
	"github.com/platewatch/platewatch/pkg/types"
)

const recentDetectionLimit = 25

// Server exposes the monitoring endpoints for one session.
type Server struct {
	recorder    *recorder.Recorder
	metrics     *metrics.Metrics
	broadcaster *Broadcaster
	logger      zerolog.Logger
	httpServer  *http.Server
}

// NewServer creates a monitor server bound to addr.
func NewServer(addr string, rec *recorder.Recorder, m *metrics.Metrics, logger zerolog.Logger) *Server {
	s := &Server{
		recorder:    rec,
		metrics:     m,
		broadcaster: NewBroadcaster(logger),
		logger:      logger,
	}
	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		ReadTimeout: 10 * time.Second,
	}
	return s
}

// Broadcaster returns the fanout the pipeline publishes accepted
// detections to.
func (s *Server) Broadcaster() *Broadcaster {
	return s.broadcaster
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/status", s.handleStatus)
	r.Get("/api/summary", s.handleSummary)
	r.Get("/api/detections", s.handleDetections)
	r.Get("/api/detections/stream", s.handleDetectionsStream)
	r.Handle("/metrics", s.metrics.Handler())
	return r
}

// ListenAndServe runs the server until Shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("monitor server listening")
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server and closes all stream subscribers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.broadcaster.Close()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.recorder.Status()
	payload := map[string]any{
		"session_id":       st.SessionID,
		"started_at":       st.StartedAt.Format(time.RFC3339Nano),
		"total_detections": st.TotalDetections,
		"unique_plates":    st.UniquePlates,
		"journal_path":     st.JournalPath,
		"duplicate_window": st.DuplicateWindow.Seconds(),
		"frames_read":      s.metrics.FramesRead.Load(),
		"frames_processed": s.metrics.FramesProcessed.Load(),
		"suppressed":       s.metrics.Suppressed.Load(),
		"persist_errors":   s.metrics.PersistErrors.Load(),
		"timestamp":        float64(time.Now().Unix()),
	}
	if st.LastPlate != "" {
		payload["last_plate"] = st.LastPlate
		payload["last_seen_at"] = st.LastSeenAt.Format(time.RFC3339Nano)
	}
	writeJSON(w, payload)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"session_id": s.recorder.SessionID(),
		"plates":     s.recorder.Summary(),
	})
}

func (s *Server) handleDetections(w http.ResponseWriter, r *http.Request) {
	st := s.recorder.Status()
	detections := st.Detections
	if len(detections) > recentDetectionLimit {
		detections = detections[len(detections)-recentDetectionLimit:]
	}

	records := make([]types.DetectionRecord, 0, len(detections))
	for _, d := range detections {
		records = append(records, d.Record())
	}
	writeJSON(w, map[string]any{
		"session_id": st.SessionID,
		"total":      st.TotalDetections,
		"detections": records,
	})
}

func (s *Server) handleDetectionsStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	id, events := s.broadcaster.Subscribe()
	defer s.broadcaster.Unsubscribe(id)

	// Open the stream with the current session state so late subscribers
	// are not blind until the next acceptance.
	if err := writeSSE(w, map[string]any{
		"session_id":       s.recorder.SessionID(),
		"total_detections": s.recorder.Status().TotalDetections,
	}); err != nil {
		return
	}
	flusher.Flush()

	keepalive := time.NewTicker(15 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case d, ok := <-events:
			if !ok {
				return
			}
			if err := writeSSE(w, d.Record()); err != nil {
				return
			}
			flusher.Flush()
		case <-keepalive.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSSE(w http.ResponseWriter, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
