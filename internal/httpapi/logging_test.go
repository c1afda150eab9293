package httpapi

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":      LevelOff,
		"off":   LevelOff,
		"error": LevelError,
		"info":  LevelInfo,
		"debug": LevelDebug,
		"weird": LevelInfo, // default
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLogLevel_Overrides(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?log=debug", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("query override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/x?log=1", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("legacy query override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/x", nil)
	r.Header.Set("X-Log-Level", "error")
	if got := requestLogLevel(r); got != LevelError {
		t.Fatalf("header override failed: %v", got)
	}
	SetRequestLogLevel("off")
	defer SetRequestLogLevel("info")
	if got := requestLogLevel(httptest.NewRequest("GET", "/x", nil)); got != LevelOff {
		t.Fatalf("default level not applied: %v", got)
	}
}

func TestLogEnd_ServerErrorsAlwaysLogged(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer SetLogger(zerolog.Nop())

	r := httptest.NewRequest(http.MethodPost, "/predict?log=off", nil)
	logEnd(r, http.StatusInternalServerError, time.Now(), errors.New("onnx exploded"))
	if !strings.Contains(buf.String(), "onnx exploded") {
		t.Fatalf("cause not logged: %q", buf.String())
	}

	buf.Reset()
	logEnd(r, http.StatusOK, time.Now(), nil)
	if buf.Len() != 0 {
		t.Fatalf("expected no access line with log=off, got %q", buf.String())
	}
}
