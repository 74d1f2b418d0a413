package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/medtravel/hospitaldirectory/internal/application/services"
	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
	"github.com/medtravel/hospitaldirectory/internal/domain/repositories"
)

const maxFilterBody = 16 << 10

// DirectoryViewer derives directory views and suggestions.
type DirectoryViewer interface {
	View(ctx context.Context, values url.Values) *services.DirectoryView
	ApplyFilter(ctx context.Context, change services.FilterChange) (*services.DirectoryView, error)
	Suggest(ctx context.Context, params repositories.SuggestParams) ([]entities.Suggestion, error)
}

// DirectoryHandler serves the filterable directory.
type DirectoryHandler struct {
	service DirectoryViewer
}

// NewDirectoryHandler creates a new directory handler
func NewDirectoryHandler(service DirectoryViewer) *DirectoryHandler {
	return &DirectoryHandler{service: service}
}

// GetDirectory handles GET /api/directory
func (h *DirectoryHandler) GetDirectory(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.service.View(r.Context(), r.URL.Query()))
}

// ApplyFilter handles POST /api/directory/filters
func (h *DirectoryHandler) ApplyFilter(w http.ResponseWriter, r *http.Request) {
	var change services.FilterChange
	if err := decodeJSON(w, r, maxFilterBody, &change); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	view, err := h.service.ApplyFilter(r.Context(), change)
	if err != nil {
		respondWithAppError(w, err, "failed to apply filter")
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

// Suggest handles GET /api/search/suggest
func (h *DirectoryHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	params := repositories.SuggestParams{
		Query: r.URL.Query().Get("q"),
		Kind:  entities.DirectoryKind(r.URL.Query().Get("kind")),
		Limit: queryInt(r, "limit", 0),
	}
	switch params.Kind {
	case "", entities.DirectoryKindHospital, entities.DirectoryKindDoctor, entities.DirectoryKindTreatment:
	default:
		respondWithError(w, http.StatusBadRequest, "kind must be hospital, doctor or treatment")
		return
	}

	suggestions, err := h.service.Suggest(r.Context(), params)
	if err != nil {
		respondWithAppError(w, err, "failed to fetch suggestions")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}
