package triage

import "github.com/triageon/triageon/internal/scoring"

// StatusOK is the status reported on every scored triage response.
const StatusOK = "OK"

type Decision struct {
	TriageLevel     string `json:"triage_level"`
	Department      string `json:"department"`
	TimeToTreatment string `json:"time_to_treatment"`
	ClinicalMessage string `json:"clinical_message"`
}

type Explanations struct {
	PatientMessage string `json:"patient_message"`
}

// Response is the body returned by the triage endpoint.
type Response struct {
	Status          string       `json:"status"`
	ConfidenceScore float64      `json:"confidence_score"`
	TriageDecision  Decision     `json:"triage_decision"`
	Explanations    Explanations `json:"explanations"`
}

// NewResponse renders an assessment.
func NewResponse(a scoring.Assessment) *Response {
	return &Response{
		Status:          StatusOK,
		ConfidenceScore: a.Band.Confidence,
		TriageDecision: Decision{
			TriageLevel:     a.Band.Level,
			Department:      a.Band.Department,
			TimeToTreatment: a.Band.TimeToTreatment,
			ClinicalMessage: a.Band.ClinicalMessage,
		},
		Explanations: Explanations{
			PatientMessage: a.Band.PatientMessage,
		},
	}
}

// ValidationError is the 400 body for a record rejected by the guard.
type ValidationError struct {
	Message string `json:"message"`
	Field   string `json:"field"`
	Reason  string `json:"reason"`
}
