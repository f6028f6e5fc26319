package server

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	clinterrors "github.com/NVIDIA/clint/pkg/errors"
)

type contextKey string

const (
	contextKeyRequestID contextKey = "requestID"

	headerRequestID  = "X-Request-Id"
	headerAPIVersion = "X-API-Version"
)

// RequestID returns the request ID assigned by the middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withMiddleware wraps an API handler with request IDs, API version
// negotiation, rate limiting, panic recovery, logging and metrics.
func (s *Server) withMiddleware(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(headerRequestID)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}
		r = r.WithContext(context.WithValue(r.Context(), contextKeyRequestID, requestID))
		w.Header().Set(headerRequestID, requestID)
		w.Header().Set(headerAPIVersion, negotiateAPIVersion(r))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if p := recover(); p != nil {
				slog.Error("handler panic",
					slog.String("requestId", requestID),
					slog.String("panic", fmt.Sprint(p)))
				WriteError(rec, r, http.StatusInternalServerError, clinterrors.ErrCodeInternal,
					"internal server error", true, nil)
			}
			elapsed := time.Since(start)
			httpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
			httpRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
			slog.Debug("request",
				slog.String("requestId", requestID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("duration", elapsed))
		}()

		if s.limiter != nil && !s.limiter.Allow() {
			rateLimitRejects.Inc()
			retry := int(math.Ceil(1 / float64(s.limiter.Limit())))
			rec.Header().Set("Retry-After", strconv.Itoa(max(retry, 1)))
			WriteError(rec, r, http.StatusTooManyRequests, clinterrors.ErrCodeRateLimitExceeded,
				"rate limit exceeded", true, map[string]any{"limit": float64(s.limiter.Limit())})
			return
		}

		next(rec, r)
	}
}
