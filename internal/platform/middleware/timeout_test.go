package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

// slowModel blocks like a remote model call until d elapses or the request
// context ends.
func slowModel(d time.Duration) echo.HandlerFunc {
	return func(c echo.Context) error {
		select {
		case <-time.After(d):
			return c.JSON(http.StatusOK, map[string]string{"severity": "Low"})
		case <-c.Request().Context().Done():
			return c.Request().Context().Err()
		}
	}
}

func TestRequestTimeout(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		timeout  time.Duration
		work     time.Duration
		wantCode int
	}{
		{"fast prediction", "/api/prediction/heart", time.Second, 0, http.StatusOK},
		{"slow prediction", "/api/prediction/heart", 50 * time.Millisecond, 5 * time.Second, http.StatusGatewayTimeout},
		{"skipped path", "/metrics", 50 * time.Millisecond, 100 * time.Millisecond, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			h := RequestTimeout(tt.timeout, "/metrics")(slowModel(tt.work))
			err := h(c)
			if tt.wantCode == http.StatusGatewayTimeout {
				if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusGatewayTimeout {
					t.Fatalf("expected 504 HTTPError for the logger, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.wantCode == http.StatusGatewayTimeout && !strings.Contains(rec.Body.String(), `"message"`) {
				t.Errorf("expected JSON message body, got %s", rec.Body.String())
			}
		})
	}
}

func TestRequestTimeout_SetsDeadline(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/triage", nil), httptest.NewRecorder())

	h := RequestTimeout(30*time.Second)(func(c echo.Context) error {
		deadline, ok := c.Request().Context().Deadline()
		if !ok || time.Until(deadline) > 30*time.Second {
			t.Errorf("expected a 30s deadline, got %v (set=%v)", deadline, ok)
		}
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequestTimeout_PassesHandlerError(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/prediction/diabetes", nil), httptest.NewRecorder())

	h := RequestTimeout(time.Second)(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadGateway, "model service unavailable")
	})
	he, ok := h(c).(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadGateway {
		t.Errorf("expected 502 HTTPError, got %v", he)
	}
}

func TestRequestTimeout_DropsLateWrites(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/prediction/diabetes", nil), rec)

	finished := make(chan struct{})
	h := RequestTimeout(20 * time.Millisecond)(func(c echo.Context) error {
		defer close(finished)
		time.Sleep(100 * time.Millisecond)
		c.Response().Header().Set("X-Late", "1")
		return c.String(http.StatusOK, "late result")
	})
	h(c)
	<-finished

	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("expected 504, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "late result") || rec.Header().Get("X-Late") != "" {
		t.Errorf("late handler output leaked into the response: %q %v", rec.Body.String(), rec.Header())
	}
}

func TestRequestTimeout_KeepsHeadersOnHandlerError(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/triage", nil), rec)

	h := RequestTimeout(time.Second)(func(c echo.Context) error {
		c.Response().Header().Set("Retry-After", "1")
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
	})
	if he, ok := h(c).(*echo.HTTPError); !ok || he.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 HTTPError, got %v", he)
	}
	if got := c.Response().Header().Get("Retry-After"); got != "1" {
		t.Errorf("expected Retry-After to survive, got %q", got)
	}
}
