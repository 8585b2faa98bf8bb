package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/20100g/ActiveDirectoryCSDsc/interfaces"
	"github.com/20100g/ActiveDirectoryCSDsc/metrics"
	"github.com/20100g/ActiveDirectoryCSDsc/reconciler"
)

// maxBodySize is the maximum allowed request body size (1MB).
const maxBodySize = 1024 * 1024

// Handler processes HTTP requests against the settings reconciler.
type Handler struct {
	resource *reconciler.Resource
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// NewHandler creates an HTTP request handler around a reconciler resource.
func NewHandler(resource *reconciler.Resource, m *metrics.Metrics, log *slog.Logger) *Handler {
	return &Handler{resource: resource, metrics: m, log: log}
}

// HandleGet returns the full current configuration snapshot as a JSON
// object keyed by setting name.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	current, err := h.resource.Get(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.metrics.SnapshotReads.Inc()

	h.writeJSON(w, http.StatusOK, renderSnapshot(current))
}

// HandleTest checks convergence against the partial desired snapshot in
// the request body and responds with {"converged": bool}.
func (h *Handler) HandleTest(w http.ResponseWriter, r *http.Request) {
	desired, err := h.readDesired(r)
	if err != nil {
		h.writeErrorStatus(w, http.StatusBadRequest, err)
		return
	}

	converged, err := h.resource.Test(r.Context(), desired)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.metrics.SnapshotReads.Inc()

	h.writeJSON(w, http.StatusOK, map[string]any{"converged": converged})
}

// HandleApply converges the configuration toward the partial desired
// snapshot in the request body and responds with {"applied": n}.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	desired, err := h.readDesired(r)
	if err != nil {
		h.writeErrorStatus(w, http.StatusBadRequest, err)
		return
	}

	applied, err := h.resource.Set(r.Context(), desired)
	h.metrics.SettingsWrites.Add(float64(applied))
	if applied > 0 {
		h.metrics.RestartSignals.Inc()
	}
	if err != nil {
		h.metrics.ApplyFailures.Inc()
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"applied": applied})
}

// readDesired decodes the request body into a partial desired snapshot.
func (h *Handler) readDesired(r *http.Request) (interfaces.Snapshot, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("invalid desired snapshot: %w", err)
	}

	return reconciler.ParseDesired(h.resource.Schema(), doc)
}

// renderSnapshot converts a snapshot to its JSON shape: scalars as
// strings, lists and flag sets as arrays of strings.
func renderSnapshot(snap interfaces.Snapshot) map[string]any {
	doc := make(map[string]any, len(snap))
	for name, v := range snap {
		switch v.Kind {
		case interfaces.StringList:
			doc[name] = v.List
		case interfaces.FlagSet:
			doc[name] = v.Flags
		default:
			doc[name] = v.Scalar
		}
	}
	return doc
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

// writeError maps reconciler errors onto HTTP statuses: unavailable store
// to 503, invalid input to 400, everything else to 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, interfaces.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, interfaces.ErrUnknownSetting),
		errors.Is(err, interfaces.ErrUnknownFlagName),
		errors.Is(err, interfaces.ErrInvalidFlagValue):
		status = http.StatusBadRequest
	}
	h.writeErrorStatus(w, status, err)
}

func (h *Handler) writeErrorStatus(w http.ResponseWriter, status int, err error) {
	h.log.Error("Request failed", slog.Int("status", status), "err", err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
