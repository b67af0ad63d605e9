package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"generated", ""},
		{"propagated", "caller-id-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/triage", nil)
			if tt.header != "" {
				req.Header.Set(RequestIDHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var seen string
			err := RequestID()(func(c echo.Context) error {
				seen = requestID(c)
				return c.NoContent(http.StatusOK)
			})(c)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if seen == "" || (tt.header != "" && seen != tt.header) {
				t.Errorf("unexpected request id %q", seen)
			}
			if rec.Header().Get(RequestIDHeader) != seen {
				t.Errorf("response header %q does not match %q", rec.Header().Get(RequestIDHeader), seen)
			}
		})
	}
}

func logLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		handler   echo.HandlerFunc
		wantLevel string
		wantCode  float64
	}{
		{
			name:      "ok",
			path:      "/api/triage",
			handler:   func(c echo.Context) error { return c.NoContent(http.StatusOK) },
			wantLevel: "info",
			wantCode:  200,
		},
		{
			name:      "quiet health check",
			path:      "/health",
			handler:   func(c echo.Context) error { return c.NoContent(http.StatusOK) },
			wantLevel: "debug",
			wantCode:  200,
		},
		{
			name: "guard rejection",
			path: "/api/triage",
			handler: func(c echo.Context) error {
				return c.JSON(http.StatusBadRequest, map[string]string{"field": "bmi"})
			},
			wantLevel: "warn",
			wantCode:  400,
		},
		{
			name: "model unavailable",
			path: "/api/prediction/heart",
			handler: func(c echo.Context) error {
				return echo.NewHTTPError(http.StatusBadGateway, "model service unavailable")
			},
			wantLevel: "error",
			wantCode:  502,
		},
		{
			name: "failing health check is not quiet",
			path: "/health/models",
			handler: func(c echo.Context) error {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "down")
			},
			wantLevel: "error",
			wantCode:  503,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, tt.path, nil), httptest.NewRecorder())
			c.Set("request_id", "req-123")

			Logger(zerolog.New(&buf), "/health", "/metrics")(tt.handler)(c)

			entry := logLine(t, &buf)
			if entry["level"] != tt.wantLevel {
				t.Errorf("expected level %s, got %v", tt.wantLevel, entry["level"])
			}
			if entry["status"] != tt.wantCode {
				t.Errorf("expected status %v, got %v", tt.wantCode, entry["status"])
			}
			if entry["request_id"] != "req-123" || entry["path"] != tt.path {
				t.Errorf("unexpected log fields %v", entry)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/prediction/bp", nil), httptest.NewRecorder())
	c.SetPath("/api/prediction/bp")

	err := Recovery(zerolog.New(&buf))(func(c echo.Context) error {
		panic("stager table exhausted")
	})(c)

	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 HTTPError, got %v", err)
	}
	entry := logLine(t, &buf)
	if entry["panic"] != "stager table exhausted" || entry["route"] != "/api/prediction/bp" {
		t.Errorf("unexpected log fields %v", entry)
	}
	if stack, _ := entry["stack"].(string); !strings.Contains(stack, "goroutine") {
		t.Error("expected a stack trace in the log")
	}
}

func TestRecovery_PassesThrough(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), httptest.NewRecorder())
	if err := Recovery(zerolog.Nop())(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
