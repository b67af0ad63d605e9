package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// DefaultRemoteTimeout bounds a single call to a remote model server.
const DefaultRemoteTimeout = 10 * time.Second

// RemoteModel asks an external model server for a probability.
type RemoteModel struct {
	url      string
	features []string
	timeout  time.Duration
	client   *http.Client
}

type remoteRequest struct {
	Features     []*float64 `json:"features"`
	FeatureNames []string   `json:"feature_names,omitempty"`
}

type remoteResponse struct {
	Probability *float64 `json:"probability"`
}

// NewRemoteModel creates a client for the model server at url.
func NewRemoteModel(url string, featureNames []string, timeout time.Duration) *RemoteModel {
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	return &RemoteModel{
		url:      url,
		features: featureNames,
		timeout:  timeout,
		client:   &http.Client{},
	}
}

// Predict implements Predictor. Transport failures and timeouts wrap
// ErrModelUnavailable.
func (m *RemoteModel) Predict(ctx context.Context, features []float64) (float64, error) {
	body, err := json.Marshal(remoteRequest{Features: sanitize(features), FeatureNames: m.features})
	if err != nil {
		return 0, fmt.Errorf("encoding model request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("creating model request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: POST %s: %v", ErrModelUnavailable, m.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, fmt.Errorf("model server returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
		}
		return 0, fmt.Errorf("decoding model response: %w", err)
	}
	if out.Probability == nil {
		return 0, fmt.Errorf("model response has no probability")
	}
	if err := CheckProbability(*out.Probability); err != nil {
		return 0, err
	}
	return *out.Probability, nil
}

func (m *RemoteModel) String() string {
	return fmt.Sprintf("remote:%s", m.url)
}

// sanitize sends NaN and Inf features as null; JSON cannot carry them.
func sanitize(features []float64) []*float64 {
	out := make([]*float64, len(features))
	for i := range features {
		if !math.IsNaN(features[i]) && !math.IsInf(features[i], 0) {
			out[i] = &features[i]
		}
	}
	return out
}
