package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Sumatoshi-tech/splitdepth/pkg/observability"
)

type statusRecorder struct {
	http.ResponseWriter

	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// logRequests logs one line per request once the response is written.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: rw, status: http.StatusOK}

		next.ServeHTTP(rec, hr)

		level := slogLevelFor(rec.status)
		s.logger.Log(hr.Context(), level, "request served",
			"method", hr.Method,
			"path", hr.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// instrument records RED metrics for op.
func (s *Server) instrument(op string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		done := s.red.TrackInflight(hr.Context(), op)
		defer done()

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: rw, status: http.StatusOK}

		next.ServeHTTP(rec, hr)

		status := observability.StatusOK
		if rec.status >= http.StatusBadRequest {
			status = observability.StatusError
		}

		s.red.RecordRequest(hr.Context(), op, status, time.Since(start))
	})
}

func slogLevelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
