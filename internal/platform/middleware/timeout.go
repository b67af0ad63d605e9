package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

const timeoutMessage = "request processing exceeded the allowed time limit"

// RequestTimeout bounds each request with a context deadline. A handler
// still running at the deadline is abandoned and the client gets a 504.
// Remote model calls observe the same deadline through the request context.
//
// The abandoned handler keeps running until it notices ctx is done, but its
// writes are discarded. Handlers must not touch echo.Context state other
// than the response after ctx is done.
//
// Paths under a skip prefix run without a deadline.
func RequestTimeout(timeout time.Duration, skip ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if hasPathPrefix(c.Request().URL.Path, skip) {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))

			res := c.Response()
			orig := res.Writer
			tw := &timeoutWriter{w: orig, h: make(http.Header)}
			res.Writer = tw

			done := make(chan error, 1)
			go func() { done <- next(c) }()

			select {
			case err := <-done:
				tw.release()
				res.Writer = orig
				return err
			case <-ctx.Done():
				if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
					tw.abandon(0)
					return ctx.Err()
				}
				tw.abandon(http.StatusGatewayTimeout)
				return echo.NewHTTPError(http.StatusGatewayTimeout, timeoutMessage)
			}
		}
	}
}

// timeoutWriter serializes writes from a handler goroutine onto the real
// writer and drops them once the request has been abandoned. Handler headers
// are buffered until the first write so they never race the 504.
type timeoutWriter struct {
	mu          sync.Mutex
	w           http.ResponseWriter
	h           http.Header
	wroteHeader bool
	timedOut    bool
}

func (tw *timeoutWriter) Header() http.Header { return tw.h }

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.writeHeaderLocked(code)
}

func (tw *timeoutWriter) writeHeaderLocked(code int) {
	if tw.timedOut || tw.wroteHeader {
		return
	}
	tw.wroteHeader = true
	dst := tw.w.Header()
	for k, v := range tw.h {
		dst[k] = v
	}
	tw.w.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	tw.writeHeaderLocked(http.StatusOK)
	return tw.w.Write(b)
}

// release hands pending headers back to the real writer so an error
// response written after the handler returns still carries them.
func (tw *timeoutWriter) release() {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.wroteHeader {
		return
	}
	dst := tw.w.Header()
	for k, v := range tw.h {
		dst[k] = v
	}
}

// abandon stops forwarding handler writes. When code is non-zero and the
// handler has not started its response, code is written with a JSON body.
func (tw *timeoutWriter) abandon(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return
	}
	tw.timedOut = true
	if code == 0 || tw.wroteHeader {
		return
	}
	body, _ := json.Marshal(map[string]string{"message": timeoutMessage})
	tw.w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	tw.w.WriteHeader(code)
	tw.w.Write(body)
}
