package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/auth"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/platform/logger"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ViewerResolver resolves the caller from an Authorization header. A nil viewer
// with a nil error means there is no caller.
type ViewerResolver interface {
	Resolve(ctx context.Context, authHeader string) (*domain.Viewer, error)
}

// Logger logs one line per request with its status and duration.
func Logger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(started)),
				zap.String("request_id", chimw.GetReqID(r.Context())),
			}
			if ww.Status() >= http.StatusInternalServerError {
				log.Error("HTTP request failed", fields...)
				return
			}
			log.Info("HTTP request served", fields...)
		})
	}
}

// Tracing continues the caller's W3C trace, if any, and opens a server span for the request.
func Tracing(tracerName string) func(http.Handler) http.Handler {
	tracer := otel.Tracer(tracerName)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", r.Method),
					attribute.String("url.path", r.URL.Path),
				),
			)
			defer span.End()

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			span.SetAttributes(attribute.Int("http.response.status_code", ww.Status()))
			if ww.Status() >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(ww.Status()))
			}
		})
	}
}

// Viewer resolves the caller once per request and stores it with auth.WithViewer.
// Requests without a usable token continue anonymously.
func Viewer(resolver ViewerResolver, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			viewer, err := resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				log.Error("Failed to resolve viewer", zap.Error(err))
				writeJSONError(w, http.StatusInternalServerError, "failed to resolve viewer")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithViewer(r.Context(), viewer)))
		})
	}
}

// RequestSizeLimit rejects bodies declared larger than maxBytes and caps the rest.
func RequestSizeLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"errors": []map[string]string{{"message": message}},
	})
}
