package scoring

import "fmt"

// SeverityUnknown is reported when an input is missing or not numeric.
const SeverityUnknown = "Unknown"

// Evaluation is the uniform result of every single-disease endpoint.
type Evaluation struct {
	Disease         string   `json:"disease"`
	Severity        string   `json:"severity"`
	RiskProbability *float64 `json:"risk_probability"`
	Confidence      float64  `json:"confidence"`
}

// Rule is one row of a stage table. A nil When matches everything and must
// be the last rule of a table.
type Rule struct {
	Stage string
	Risk  float64
	When  func(v []float64) bool
}

// Stager maps one or more numeric vitals to an ordered severity stage.
// Rules are evaluated top-down; the first match wins.
type Stager struct {
	disease  string
	inputs   []string
	rules    []Rule
	omitRisk bool
}

// StagerOption configures a Stager.
type StagerOption func(*Stager)

// WithoutRisk makes the stager report stages with a null risk probability.
func WithoutRisk() StagerOption {
	return func(s *Stager) { s.omitRisk = true }
}

// NewStager validates a rule table. The table must end with a catch-all rule
// so every finite input maps to exactly one stage.
func NewStager(disease string, inputs []string, rules []Rule, opts ...StagerOption) (*Stager, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("stager %s: no inputs", disease)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("stager %s: no rules", disease)
	}
	for i, r := range rules[:len(rules)-1] {
		if r.When == nil {
			return nil, fmt.Errorf("stager %s: rule %d (%s) is a catch-all before the last rule", disease, i, r.Stage)
		}
	}
	if rules[len(rules)-1].When != nil {
		return nil, fmt.Errorf("stager %s: last rule must be a catch-all", disease)
	}
	s := &Stager{disease: disease, inputs: inputs, rules: rules}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// MustStager is NewStager for package-level tables.
func MustStager(disease string, inputs []string, rules []Rule, opts ...StagerOption) *Stager {
	s, err := NewStager(disease, inputs, rules, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Disease returns the tag reported in evaluations.
func (s *Stager) Disease() string { return s.disease }

// Inputs returns the request field names the stager reads, in order.
func (s *Stager) Inputs() []string { return s.inputs }

// Classify stages the inputs. Missing or unparseable inputs produce an
// Unknown evaluation with zero confidence rather than an error.
func (s *Stager) Classify(inputs ...Numeric) Evaluation {
	if len(inputs) != len(s.inputs) {
		return s.unknown()
	}
	values := make([]float64, len(inputs))
	for i, in := range inputs {
		if !in.Valid {
			return s.unknown()
		}
		values[i] = in.Value
	}
	for _, r := range s.rules {
		if r.When == nil || r.When(values) {
			ev := Evaluation{Disease: s.disease, Severity: r.Stage, Confidence: 1.0}
			if !s.omitRisk {
				risk := r.Risk
				ev.RiskProbability = &risk
			}
			return ev
		}
	}
	// unreachable: NewStager guarantees a catch-all
	return s.unknown()
}

// ClassifyRecord reads the stager's inputs from rec and classifies them.
func (s *Stager) ClassifyRecord(rec VitalRecord) Evaluation {
	inputs := make([]Numeric, len(s.inputs))
	for i, name := range s.inputs {
		inputs[i] = rec.Numeric(name)
	}
	return s.Classify(inputs...)
}

func (s *Stager) unknown() Evaluation {
	return Evaluation{Disease: s.disease, Severity: SeverityUnknown, Confidence: 0.0}
}
