package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/medtravel/hospitaldirectory/internal/application/services"
	apperrors "github.com/medtravel/hospitaldirectory/pkg/errors"
)

const maxLeadBody = 64 << 10

// LeadSubmitter accepts lead form submissions.
type LeadSubmitter interface {
	Submit(ctx context.Context, in services.LeadInput, clientIP, userAgent string) (*services.LeadResult, error)
}

// LeadHandler handles the enquiry, callback and quote forms.
type LeadHandler struct {
	service    LeadSubmitter
	retryAfter int
	proxies    TrustedProxies
}

// NewLeadHandler creates a new lead handler. retryAfterSeconds is sent
// with rate-limited answers. Forwarding headers count only when the peer
// is one of proxies.
func NewLeadHandler(service LeadSubmitter, retryAfterSeconds int, proxies TrustedProxies) *LeadHandler {
	return &LeadHandler{service: service, retryAfter: retryAfterSeconds, proxies: proxies}
}

// SubmitLead handles POST /api/leads
func (h *LeadHandler) SubmitLead(w http.ResponseWriter, r *http.Request) {
	var in services.LeadInput
	if err := decodeJSON(w, r, maxLeadBody, &in); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	res, err := h.service.Submit(r.Context(), in, h.proxies.ClientIP(r), r.UserAgent())
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeRateLimited) && h.retryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(h.retryAfter))
		}
		respondWithAppError(w, err, "failed to submit enquiry")
		return
	}

	if res.Duplicate {
		respondWithJSON(w, http.StatusAccepted, map[string]string{
			"status": "duplicate_ignored",
		})
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{
		"status": "received",
		"id":     res.Lead.ID,
	})
}
