package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const statusUp = "UP"

var infoPage = template.Must(template.New("info").Parse(`<html><body>
<h1>Health Monitoring Module</h1>
<p>Application: {{.Application}}</p>
<p><a href="{{.MetricsPath}}">Metrics</a></p>
<p><a href="{{.HealthPath}}">Health</a></p>
</body></html>
`))

// Endpoints are the paths the metrics and health documents are served on.
type Endpoints struct {
	Metrics string
	Health  string
}

// Validate checks both paths are absolute, distinct and not the root.
func (e Endpoints) Validate() error {
	for _, p := range []string{e.Metrics, e.Health} {
		if !strings.HasPrefix(p, "/") || p == "/" {
			return fmt.Errorf("endpoint %q must be an absolute path other than /", p)
		}
		if strings.ContainsAny(p, "{} ") {
			return fmt.Errorf("endpoint %q contains invalid characters", p)
		}
	}
	if e.Metrics == e.Health {
		return errors.New("metrics and health endpoints must differ")
	}
	return nil
}

// Handler serves the metrics exposition, the health document and the info page.
type Handler struct {
	application string
	endpoints   Endpoints
	metrics     http.Handler

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler. metrics renders the exposition format.
func NewHandler(application string, endpoints Endpoints, metrics http.Handler, opts ...HandlerOption) *Handler {
	h := &Handler{
		application: application,
		endpoints:   endpoints,
		metrics:     metrics,
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:      statusUp,
		Application: h.application,
		Timestamp:   h.clock().UnixMilli(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleInfo(w http.ResponseWriter, _ *http.Request) {
	var buf strings.Builder
	err := infoPage.Execute(&buf, struct {
		Application string
		MetricsPath string
		HealthPath  string
	}{h.application, h.endpoints.Metrics, h.endpoints.Health})
	if err != nil {
		writeInternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(buf.String()))
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type healthResponse struct {
	Status      string `json:"status"`
	Application string `json:"application"`
	Timestamp   int64  `json:"timestamp"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{
		Error:   message,
		Details: details,
	})
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, err.Error(), "")
}
