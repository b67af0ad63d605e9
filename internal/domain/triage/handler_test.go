package triage

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo) {
	h := NewHandler(newTestService())
	e := echo.New()
	return h, e
}

const redPayload = `{
	"age":"72","sex":"1","pregnancies":"0","glucose":"210","blood_pressure":"90",
	"bmi":"31","chest_pain":"3","resting_bp":"150","cholesterol":"260","diabetes":"1",
	"max_heart_rate":"130","exercise_angina":"1","systolic_bp":"175","diastolic_bp":"105",
	"temperature":"39.4"
}`

func TestHandler_Triage(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(redPayload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Triage(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got Response
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	want := Response{
		Status:          "OK",
		ConfidenceScore: 0.95,
		TriageDecision: Decision{
			TriageLevel:     "RED",
			Department:      "Emergency + ICU",
			TimeToTreatment: "Immediate",
			ClinicalMessage: "Critical condition detected",
		},
		Explanations: Explanations{
			PatientMessage: "Your condition is critical. Immediate medical care is required.",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestHandler_Triage_GuardFailure(t *testing.T) {
	h, e := newTestHandler()
	body := strings.Replace(redPayload, `"bmi":"31"`, `"bmi":"heavy"`, 1)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Triage(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var got ValidationError
	json.Unmarshal(rec.Body.Bytes(), &got)
	want := ValidationError{Message: "invalid numeric value for bmi", Field: "bmi", Reason: "invalid_numeric"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("error body mismatch (-want +got):\n%s", diff)
	}
}

func TestHandler_Triage_EmptyBody(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Triage(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"field":"age"`) {
		t.Errorf("expected age reported as first missing field, got %s", rec.Body.String())
	}
}

func TestHandler_Triage_MalformedJSON(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`[1,2,3]`))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Triage(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 HTTPError, got %v", err)
	}
}
