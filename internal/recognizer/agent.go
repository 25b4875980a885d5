package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/platewatch/platewatch/pkg/types"
)

const defaultAgentTimeout = 5 * time.Second

// agentResponse mirrors the JSON emitted by openalpr-style recognition
// agents for a single frame.
type agentResponse struct {
	EpochTime      float64       `json:"epoch_time"`
	ProcessingTime float64       `json:"processing_time_ms"`
	Results        []agentResult `json:"results"`
}

type agentResult struct {
	Plate               string  `json:"plate"`
	Confidence          float64 `json:"confidence"`
	OCRConfidence       float64 `json:"ocr_confidence"`
	DetectionConfidence float64 `json:"detection_confidence"`
}

// AgentClient posts frame bytes to a plate-recognition agent over HTTP and
// decodes its JSON results into candidates.
type AgentClient struct {
	baseURL string
	client  *http.Client
}

// NewAgentClient creates a client for the agent at baseURL.
func NewAgentClient(baseURL string) *AgentClient {
	return &AgentClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultAgentTimeout},
	}
}

// Recognize implements Recognizer.
func (a *AgentClient) Recognize(ctx context.Context, frame types.Frame) ([]types.Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/recognize", bytes.NewReader(frame.Data))
	if err != nil {
		return nil, fmt.Errorf("build recognize request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recognize request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("recognize agent returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var payload agentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode recognize response: %w", err)
	}

	candidates := make([]types.Candidate, 0, len(payload.Results))
	for _, r := range payload.Results {
		c := types.Candidate{
			Plate:               r.Plate,
			OCRConfidence:       r.OCRConfidence,
			DetectionConfidence: r.DetectionConfidence,
		}
		// Agents that report a single confidence use it for both stages.
		if c.OCRConfidence == 0 && c.DetectionConfidence == 0 && r.Confidence != 0 {
			c.OCRConfidence = r.Confidence
			c.DetectionConfidence = r.Confidence
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}
