package prediction

import (
	"math"

	"github.com/triageon/triageon/internal/scoring"
)

// Severity labels reported by the model-backed services.
const (
	SeverityHigh = "High"
	SeverityLow  = "Low"
)

// ModelInput maps one request field to one model feature. Default is used
// when the field is absent or not numeric.
type ModelInput struct {
	Field   string
	Feature string
	Default float64
}

// ModelSpec describes a model-backed service: which request fields feed the
// model, in feature order, and the probability at which risk is High.
type ModelSpec struct {
	Disease string
	Cutoff  float64
	Inputs  []ModelInput
	// LenientBody treats an undecodable request body as an empty object.
	LenientBody bool
	// BoolAsNumber reads JSON true/false as 1/0 instead of the default.
	BoolAsNumber bool
}

// Features returns the model feature names in order.
func (m ModelSpec) Features() []string {
	out := make([]string, len(m.Inputs))
	for i, in := range m.Inputs {
		out[i] = in.Feature
	}
	return out
}

// Vector reads the feature vector from rec, substituting defaults.
func (m ModelSpec) Vector(rec scoring.VitalRecord) []float64 {
	out := make([]float64, len(m.Inputs))
	for i, in := range m.Inputs {
		if m.BoolAsNumber {
			if raw, ok := rec.Get(in.Field); ok {
				if b, isBool := raw.(bool); isBool {
					out[i] = boolFeature(b)
					continue
				}
			}
		}
		n := rec.Numeric(in.Field)
		if n.Valid {
			out[i] = n.Value
		} else {
			out[i] = in.Default
		}
	}
	return out
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// DiabetesModel passes missing inputs through as NaN for the model to impute.
var DiabetesModel = ModelSpec{
	Disease: "diabetes",
	Cutoff:  0.35,
	Inputs: []ModelInput{
		{Field: "pregnancies", Feature: "pregnancies", Default: math.NaN()},
		{Field: "glucose", Feature: "glucose", Default: math.NaN()},
		{Field: "blood_pressure", Feature: "blood_pressure", Default: math.NaN()},
		{Field: "bmi", Feature: "bmi", Default: math.NaN()},
		{Field: "age", Feature: "age", Default: math.NaN()},
	},
}

// HeartModel renames request fields to the model's clinical feature names
// and fills gaps with fixed defaults.
var HeartModel = ModelSpec{
	Disease: "heart_disease",
	Cutoff:  0.30,
	Inputs: []ModelInput{
		{Field: "age", Feature: "age", Default: 40},
		{Field: "sex", Feature: "sex", Default: 1},
		{Field: "chest_pain", Feature: "cp", Default: 0},
		{Field: "resting_bp", Feature: "trestbps", Default: 120},
		{Field: "cholesterol", Feature: "chol", Default: 200},
		{Field: "diabetes", Feature: "fbs", Default: 0},
		{Field: "max_heart_rate", Feature: "thalach", Default: 150},
		{Field: "exercise_angina", Feature: "exang", Default: 0},
	},
	LenientBody:  true,
	BoolAsNumber: true,
}

// ModelInfo describes a configured model for the health endpoint.
type ModelInfo struct {
	Disease  string   `json:"disease"`
	Source   string   `json:"source"`
	Features []string `json:"features"`
	Cutoff   float64  `json:"cutoff"`
}
