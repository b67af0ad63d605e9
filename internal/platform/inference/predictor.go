// Package inference holds the probability-model collaborators used by the
// model-backed prediction endpoints. Callers only see Predictor; how the
// probability is produced (a local coefficient file or a remote model
// server) is chosen at startup.
package inference

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrModelUnavailable is returned when a remote model cannot be reached.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrInvalidProbability is returned when a model produces a value outside [0,1].
	ErrInvalidProbability = errors.New("model returned an invalid probability")
)

// Predictor turns a feature vector, in the model's declared order, into a
// probability in [0,1].
type Predictor interface {
	Predict(ctx context.Context, features []float64) (float64, error)
}

// PredictorFunc is a function adapter for Predictor.
type PredictorFunc func(ctx context.Context, features []float64) (float64, error)

func (f PredictorFunc) Predict(ctx context.Context, features []float64) (float64, error) {
	return f(ctx, features)
}

// CheckProbability rejects NaN and values outside [0,1].
func CheckProbability(p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidProbability, p)
	}
	return nil
}

// Source describes where a model comes from. Exactly one of Path or URL is set.
type Source struct {
	Path     string
	URL      string
	Timeout  time.Duration
	Features []string
}

// Configured reports whether the source points anywhere.
func (s Source) Configured() bool {
	return s.Path != "" || s.URL != ""
}

// Open loads the model a Source points to.
func Open(src Source) (Predictor, error) {
	switch {
	case src.Path != "" && src.URL != "":
		return nil, fmt.Errorf("model source has both a path and a URL")
	case src.Path != "":
		m, err := LoadLogisticModel(src.Path)
		if err != nil {
			return nil, err
		}
		if err := m.CheckFeatures(src.Features); err != nil {
			return nil, fmt.Errorf("model %s: %w", src.Path, err)
		}
		return m, nil
	case src.URL != "":
		return NewRemoteModel(src.URL, src.Features, src.Timeout), nil
	default:
		return nil, fmt.Errorf("model source is empty")
	}
}
