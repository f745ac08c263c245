package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	leadsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_leads_created_total",
			Help: "Total number of leads accepted by the public intake",
		},
	)

	leadAssignments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_lead_assignments_total",
			Help: "Lead assignment attempts by result code",
		},
		[]string{"result"},
	)

	paymentsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_payments_processed_total",
			Help: "Total number of processed payments by resulting status",
		},
		[]string{"status"},
	)

	notificationsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_notifications_delivered_total",
			Help: "Notifications delivered by channel",
		},
		[]string{"channel"},
	)

	pdfsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_pdfs_generated_total",
			Help: "Generated PDF reports by kind and result",
		},
		[]string{"kind", "result"},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming handlers working behind the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern labels by chi pattern ("/shared/leads/{id}") instead of the
// raw path so ids do not explode the label space.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func RecordLeadCreated() {
	leadsCreated.Inc()
}

func RecordAssignment(result string) {
	leadAssignments.WithLabelValues(result).Inc()
}

func RecordPayment(status string) {
	paymentsProcessed.WithLabelValues(status).Inc()
}

func RecordNotification(channel string) {
	notificationsDelivered.WithLabelValues(channel).Inc()
}

func RecordPdf(kind, result string) {
	pdfsGenerated.WithLabelValues(kind, result).Inc()
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}
