package inference

import (
	"context"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Feature is one input of a LogisticModel. Values are standardized with
// Mean and Scale when Scale is non-zero. Impute replaces NaN inputs.
type Feature struct {
	Name   string   `yaml:"name"`
	Weight float64  `yaml:"weight"`
	Mean   float64  `yaml:"mean"`
	Scale  float64  `yaml:"scale"`
	Impute *float64 `yaml:"impute"`
}

// LogisticModel is a binary logistic regression read from a coefficient file.
// It is immutable after loading.
type LogisticModel struct {
	Name      string    `yaml:"name"`
	Intercept float64   `yaml:"intercept"`
	Features  []Feature `yaml:"features"`

	path string
}

// LoadLogisticModel reads a YAML coefficient file.
func LoadLogisticModel(path string) (*LogisticModel, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}

	var m LogisticModel
	if err := yaml.Unmarshal(buf, &m); err != nil {
		return nil, fmt.Errorf("parsing model file %s: %w", path, err)
	}
	if len(m.Features) == 0 {
		return nil, fmt.Errorf("model file %s declares no features", path)
	}
	m.path = path
	return &m, nil
}

// CheckFeatures verifies that the model expects exactly names, in order.
func (m *LogisticModel) CheckFeatures(names []string) error {
	if len(names) == 0 {
		return nil
	}
	if len(names) != len(m.Features) {
		return fmt.Errorf("expected %d features, model declares %d", len(names), len(m.Features))
	}
	for i, f := range m.Features {
		if f.Name != names[i] {
			return fmt.Errorf("feature %d: expected %q, model declares %q", i, names[i], f.Name)
		}
	}
	return nil
}

// Predict implements Predictor.
func (m *LogisticModel) Predict(_ context.Context, features []float64) (float64, error) {
	if len(features) != len(m.Features) {
		return 0, fmt.Errorf("model %s: expected %d features, got %d", m.Name, len(m.Features), len(features))
	}

	z := m.Intercept
	for i, f := range m.Features {
		x := features[i]
		if math.IsNaN(x) {
			if f.Impute == nil {
				return 0, fmt.Errorf("model %s: feature %s is missing and has no impute value", m.Name, f.Name)
			}
			x = *f.Impute
		}
		if f.Scale != 0 {
			x = (x - f.Mean) / f.Scale
		}
		z += f.Weight * x
	}

	p := 1 / (1 + math.Exp(-z))
	if err := CheckProbability(p); err != nil {
		return 0, fmt.Errorf("model %s: %w", m.Name, err)
	}
	return p, nil
}

func (m *LogisticModel) String() string {
	return fmt.Sprintf("logistic:%s", m.path)
}
