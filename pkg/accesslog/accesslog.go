package accesslog

import (
	"net/http"
	"time"

	"github.com/Stephen-Muteti/writing-backend/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler returns a middleware that logs every HTTP request with its
// status, duration and the number of bytes written.
func Handler(logger logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		f := func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.With(r.Context(),
				"method", r.Method,
				"uri", r.RequestURI,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
			).Infof("%s %s %d", r.Method, r.URL.Path, ww.Status())
		}

		return http.HandlerFunc(f)
	}
}
