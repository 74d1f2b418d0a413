package handlers

import (
	"context"
	"net/http"

	"github.com/medtravel/hospitaldirectory/internal/application/services"
	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
	"github.com/medtravel/hospitaldirectory/internal/infrastructure/observability"
)

// HospitalSearcher runs the hospital aggregation.
type HospitalSearcher interface {
	Search(ctx context.Context, q services.HospitalQuery) (*entities.HospitalPage, error)
}

// HospitalHandler serves the hospital aggregation route.
type HospitalHandler struct {
	service HospitalSearcher
}

// NewHospitalHandler creates a new hospital handler
func NewHospitalHandler(service HospitalSearcher) *HospitalHandler {
	return &HospitalHandler{service: service}
}

// ListHospitals handles GET /api/hospitals
func (h *HospitalHandler) ListHospitals(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := services.HospitalQuery{
		Q:           params.Get("q"),
		CityID:      params.Get("cityId"),
		DoctorID:    params.Get("doctorId"),
		TreatmentID: params.Get("treatmentId"),
		City:        params.Get("city"),
		Doctor:      params.Get("doctor"),
		Treatment:   params.Get("treatment"),
		HospitalID:  params.Get("hospitalId"),
		Page:        queryInt(r, "page", 1),
		PageSize:    queryInt(r, "pageSize", services.DefaultPageSize),
	}

	page, err := h.service.Search(r.Context(), q)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("Hospital aggregation failed")
		respondWithJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Failed to fetch hospitals",
			"details": err.Error(),
		})
		return
	}

	respondWithJSON(w, http.StatusOK, page)
}
