package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/financaspro/financas/internal/metrics"
)

// recorder keeps what the access log needs to know about a response.
type recorder struct {
	middleware.WrapResponseWriter
	failure string
}

// noteFailure attaches the reason of an error response to the access log.
func (rec *recorder) noteFailure(reason string) {
	rec.failure = reason
}

// code is the status sent, 200 when the handler never set one.
func (rec *recorder) code() int {
	if code := rec.Status(); code != 0 {
		return code
	}
	return http.StatusOK
}

// observe recovers handler panics, counts the request in api_calls_total and
// writes one access log line for it.
func observe(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &recorder{WrapResponseWriter: middleware.NewWrapResponseWriter(w, r.ProtoMajor)}
			started := time.Now()

			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler {
						panic(v)
					}
					rescue(logger, rec, r, v)
				}
				served(logger, rec, r, time.Since(started))
			}()

			next.ServeHTTP(rec, r)
		})
	}
}

func rescue(logger *slog.Logger, rec *recorder, r *http.Request, v any) {
	logger.LogAttrs(r.Context(), slog.LevelError, "handler panicked",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("panic", fmt.Sprint(v)),
		slog.String("stack", string(debug.Stack())),
	)
	rec.noteFailure(fmt.Sprintf("panic: %v", v))
	// nothing can be sent once the handler has started the response
	if rec.Status() == 0 {
		writeError(rec, http.StatusInternalServerError, "internal server error")
	}
}

func served(logger *slog.Logger, rec *recorder, r *http.Request, elapsed time.Duration) {
	code := rec.code()
	route := "unmatched"
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		route = rctx.RoutePattern()
	}
	metrics.APICalls.WithLabelValues("http", route, strconv.Itoa(code)).Inc()

	level := slog.LevelInfo
	if code >= http.StatusInternalServerError {
		level = slog.LevelError
	} else if code >= http.StatusBadRequest {
		level = slog.LevelWarn
	}

	attrs := []slog.Attr{
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("route", route),
		slog.String("uri", r.URL.RequestURI()),
		slog.Int("code", code),
		slog.Int("size", rec.BytesWritten()),
		slog.Duration("elapsed", elapsed),
		slog.String("client", r.RemoteAddr),
	}
	if rec.failure != "" {
		attrs = append(attrs, slog.String("failure", rec.failure))
	}
	logger.LogAttrs(r.Context(), level, "request served", attrs...)
}
