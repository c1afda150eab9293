package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	zl "github.com/rs/zerolog/log"
)

// zlog is the structured logger used by the HTTP layer.
var zlog = zl.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l }

// LogLevel controls per-request access logging.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

var defaultLogLevel = LevelInfo

// SetRequestLogLevel sets the default access log level ("off", "error", "info", "debug").
func SetRequestLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	// Per-request overrides
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// reqLogger returns zlog annotated with the request id and route.
func reqLogger(r *http.Request) zerolog.Logger {
	c := zlog.With().Str("path", r.URL.Path)
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		c = c.Str("request_id", rid)
	}
	return c.Logger()
}

// logEnd writes the access line for a finished request. Server errors are
// always logged, with their cause.
func logEnd(r *http.Request, status int, start time.Time, err error) {
	lvl := requestLogLevel(r)
	l := reqLogger(r)
	switch {
	case status >= http.StatusInternalServerError:
		l.Error().Int("status", status).Dur("dur", time.Since(start)).Err(err).Msg("request failed")
	case status >= http.StatusBadRequest && lvl >= LevelInfo:
		l.Info().Int("status", status).Dur("dur", time.Since(start)).Err(err).Msg("request rejected")
	case lvl >= LevelInfo:
		l.Info().Int("status", status).Dur("dur", time.Since(start)).Msg("request done")
	}
}
