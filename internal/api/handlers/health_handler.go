package handlers

import (
	"net/http"
	"time"
)

// DatasetStatus reports the state of the in-memory directory dataset.
type DatasetStatus interface {
	LoadedAt() time.Time
	Loading() bool
}

// HealthHandler answers liveness probes.
type HealthHandler struct {
	dataset DatasetStatus
}

// NewHealthHandler creates a new health handler. dataset may be nil.
func NewHealthHandler(dataset DatasetStatus) *HealthHandler {
	return &HealthHandler{dataset: dataset}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}
	if h.dataset != nil {
		loaded := h.dataset.LoadedAt()
		status := map[string]any{
			"loaded":  !loaded.IsZero(),
			"loading": h.dataset.Loading(),
		}
		if !loaded.IsZero() {
			status["loadedAt"] = loaded.UTC().Format(time.RFC3339)
		}
		body["dataset"] = status
	}
	respondWithJSON(w, http.StatusOK, body)
}
