package middleware

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	log "github.com/sirupsen/logrus"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID reuses an incoming X-Request-ID or assigns a new UUID, and echoes it back.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), RequestIDContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the id set by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDContextKey).(string)
	return id
}

// RequestLogger logs one structured line per request once it completes.
func RequestLogger(next http.Handler) http.Handler {
	return handlers.CustomLoggingHandler(io.Discard, next, logRequest)
}

func logRequest(_ io.Writer, p handlers.LogFormatterParams) {
	entry := log.WithFields(log.Fields{
		"method":      p.Request.Method,
		"path":        p.URL.Path,
		"status":      p.StatusCode,
		"bytes":       p.Size,
		"duration_ms": time.Since(p.TimeStamp).Milliseconds(),
		"request_id":  RequestIDFromContext(p.Request.Context()),
	})
	switch {
	case p.StatusCode >= http.StatusInternalServerError:
		entry.Error("Request failed")
	case p.StatusCode >= http.StatusBadRequest:
		entry.Warn("Request rejected")
	default:
		entry.Info("Request handled")
	}
}
