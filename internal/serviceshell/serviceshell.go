/*------------------------------------------------------------------------------
* serviceshell.go : thin HTTP shell around get_tt
*
* Parse inbound fields, call into the core engine, push the result to
* telemetry/search sinks, write a response.
*-----------------------------------------------------------------------------*/
package serviceshell

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"taupgo/internal/searchsink"
	"taupgo/internal/session"
	"taupgo/internal/telemetry"
)

// Handler serves GET /tt?delta=<deg>&depth=<km> against a cached model
// factory, recording Prometheus metrics and optionally indexing each
// request into an Elasticsearch sink.
type Handler struct {
	factory    *session.Factory
	modelName  string
	modelPath  string
	metrics    *telemetry.Metrics
	search     *searchsink.Sink // nil disables search indexing
}

// NewHandler builds the /tt HTTP handler. search may be nil.
func NewHandler(factory *session.Factory, modelName, modelPath string, metrics *telemetry.Metrics, search *searchsink.Sink) *Handler {
	return &Handler{factory: factory, modelName: modelName, modelPath: modelPath, metrics: metrics, search: search}
}

type ttResponse struct {
	CorrelationID string            `json:"correlation_id,omitempty"`
	Arrivals      []session.Arrival `json:"arrivals"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	depthKm, _ := strconv.ParseFloat(r.URL.Query().Get("depth"), 64)
	deltaDeg, err := strconv.ParseFloat(r.URL.Query().Get("delta"), 64)
	if err != nil {
		h.metrics.Requests.WithLabelValues(h.modelName, "bad_request").Inc()
		http.Error(w, "delta query parameter is required", http.StatusBadRequest)
		return
	}

	m, err := h.factory.Open(h.modelName, h.modelPath)
	if err != nil {
		h.metrics.Requests.WithLabelValues(h.modelName, "model_error").Inc()
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s, err := session.NewSession(m, depthKm, nil, session.Options{Tolerances: session.DefaultTolerances()})
	if err != nil {
		h.metrics.Requests.WithLabelValues(h.modelName, "session_error").Inc()
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	arrivals, err := s.GetTT(session.Request{DeltaDeg: &deltaDeg})
	if err != nil {
		h.metrics.Requests.WithLabelValues(h.modelName, "tt_error").Inc()
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	for _, a := range arrivals {
		h.metrics.Arrivals.WithLabelValues(a.PhaseCode).Inc()
	}
	h.metrics.Requests.WithLabelValues(h.modelName, "ok").Inc()
	h.metrics.RequestLatency.WithLabelValues(h.modelName).Observe(time.Since(start).Seconds())

	resp := ttResponse{Arrivals: arrivals}
	if h.search != nil {
		if id, err := h.search.IndexRequest(r.Context(), h.modelName, depthKm, deltaDeg, arrivals); err == nil {
			resp.CorrelationID = id
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
