package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/trialsafe/adjudicate/internal/platform/auth"
)

func TestRecoveryConvertsPanicTo500(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	e := echo.New()
	e.Use(RequestID(), Recovery(logger))
	e.GET("/boom", func(c echo.Context) error {
		panic("unreachable row")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-ID", "rid-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	out := buf.String()
	if !strings.Contains(out, "panic recovered") {
		t.Errorf("missing panic log: %s", out)
	}
	if !strings.Contains(out, `"request_id":"rid-123"`) {
		t.Errorf("request id not logged as string: %s", out)
	}
}

func TestLoggerRecordsCallerIdentity(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	e := echo.New()
	e.Use(RequestID(), Logger(logger), auth.DevAuthMiddleware())
	e.GET("/ok", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	out := buf.String()
	if !strings.Contains(out, `"user_id":1`) {
		t.Errorf("caller identity not logged: %s", out)
	}
	if !strings.Contains(out, `"status":200`) {
		t.Errorf("status not logged: %s", out)
	}
}
