package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type ServerConfig struct {
	Logger *zap.Logger
}

// Server wires HTTP endpoints to counters with observability instrumentation.
type Server struct {
	cfg            ServerConfig
	router         *mux.Router
	httpMetrics    *prometheus.HistogramVec
	requestCounter *prometheus.CounterVec
	eventsReceived *prometheus.CounterVec
	consentUpdates *prometheus.CounterVec
}

func NewServer(cfg ServerConfig) *Server {
	srv := &Server{cfg: cfg}
	srv.initMetrics()
	srv.buildRouter()
	return srv
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) initMetrics() {
	s.httpMetrics = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "commitment",
		Subsystem: "http",
		Name:      "request_latency_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "code"})
	s.requestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "commitment",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by route",
	}, []string{"route", "method", "code"})
	s.eventsReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "commitment",
		Subsystem: "collector",
		Name:      "events_received_total",
		Help:      "Tracking events accepted, by type",
	}, []string{"event_type"})
	s.consentUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "commitment",
		Subsystem: "collector",
		Name:      "consent_updates_total",
		Help:      "Consent decisions received, by category and value",
	}, []string{"consent_type", "granted"})
	prometheus.MustRegister(s.httpMetrics, s.requestCounter, s.eventsReceived, s.consentUpdates)
}

func (s *Server) buildRouter() {
	r := mux.NewRouter()
	r.Use(s.instrument)

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Handle("/events/track-batch", otelhttp.NewHandler(http.HandlerFunc(s.handleTrackBatch), "TrackBatch")).Methods(http.MethodPost)
	apiRouter.Handle("/consent/set", otelhttp.NewHandler(http.HandlerFunc(s.handleConsentSet), "ConsentSet")).Methods(http.MethodPost)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.router = r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// instrument wraps every route with request correlation, one structured log
// line per request and the latency/count metrics. A single timer and status
// capture serve all three.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.Must(uuid.NewV4()).String()
			w.Header().Set("X-Request-Id", id)
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))
		elapsed := time.Since(start)

		route := routeTemplate(r)
		labels := prometheus.Labels{
			"route":  route,
			"method": r.Method,
			"code":   strconv.Itoa(rec.code),
		}
		s.httpMetrics.With(labels).Observe(elapsed.Seconds())
		s.requestCounter.With(labels).Inc()

		s.cfg.Logger.Info("request handled",
			zap.String("request_id", id),
			zap.String("route", route),
			zap.String("method", r.Method),
			zap.Int("code", rec.code),
			zap.Duration("elapsed", elapsed),
		)
	})
}

// routeTemplate reports the mux pattern that matched, falling back to the
// raw path for unrouted requests.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return r.URL.Path
}

type requestIDKey struct{}

// requestID returns the correlation id stamped by instrument, if any.
func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// statusRecorder captures the response code for the log line and the metric
// labels.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.code = code
	sr.ResponseWriter.WriteHeader(code)
}
