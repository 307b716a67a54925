package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter wires the handlers. Metrics are served from gatherer when it is
// not nil.
func NewRouter(h *Handlers, gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/feed", h.Feed)
	mux.HandleFunc("GET /api/circles/{id}/posts", h.CirclePosts)
	mux.HandleFunc("POST /api/circles/{id}/members", h.JoinCircle)
	mux.HandleFunc("DELETE /api/circles/{id}/members/{userId}", h.LeaveCircle)
	mux.HandleFunc("GET /api/jobs", h.Jobs)
	mux.HandleFunc("POST /api/candidates", h.SearchCandidates)
	mux.HandleFunc("POST /api/posts", h.CreatePost)
	mux.HandleFunc("POST /api/posts/{id}/appreciations", h.Appreciate)
	mux.HandleFunc("DELETE /api/session", h.Reset)
	mux.HandleFunc("GET /healthz", h.Health)

	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return logRequests(h.logger, mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.status = code
	r.wroteHeader = true
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("latency", time.Since(start)),
		}

		switch {
		case rec.status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case rec.status >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Debug("request", fields...)
		}
	})
}
