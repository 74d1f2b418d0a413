package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
	"github.com/medtravel/hospitaldirectory/internal/domain/providers"
	"github.com/medtravel/hospitaldirectory/internal/infrastructure/observability"
)

const (
	maxWebhookBody  = 64 << 10
	signatureHeader = "X-CMS-Signature"
)

// CMSWebhookHandler turns CMS change notifications into content events.
type CMSWebhookHandler struct {
	bus           providers.EventBus
	signingSecret string
}

// NewCMSWebhookHandler creates a webhook handler. With an empty secret
// requests are not authenticated.
func NewCMSWebhookHandler(bus providers.EventBus, signingSecret string) *CMSWebhookHandler {
	return &CMSWebhookHandler{bus: bus, signingSecret: signingSecret}
}

// CMSWebhookEvent is the notification body.
type CMSWebhookEvent struct {
	Collection string `json:"collection"`
	ItemID     string `json:"itemId"`
	Event      string `json:"event"`
}

// HandleWebhook handles POST /webhooks/cms
func (h *CMSWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	logger := observability.LoggerFromContext(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	if h.signingSecret != "" && !h.verifySignature(r.Header.Get(signatureHeader), body) {
		respondWithError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	var payload CMSWebhookEvent
	if err := json.Unmarshal(body, &payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	payload.Collection = strings.TrimSpace(payload.Collection)
	if payload.Collection == "" {
		respondWithError(w, http.StatusBadRequest, "collection is required")
		return
	}

	event := entities.NewContentEvent(payload.Collection, payload.ItemID, eventType(payload.Event))
	if err := h.bus.Publish(r.Context(), providers.EventChannelContentUpdates, event); err != nil {
		logger.Error().Err(err).Str("collection", event.Collection).Msg("Failed to publish content event")
		respondWithError(w, http.StatusServiceUnavailable, "failed to queue content event")
		return
	}
	if err := h.bus.Publish(r.Context(), providers.GetCollectionChannel(event.Collection), event); err != nil {
		logger.Warn().Err(err).Str("collection", event.Collection).Msg("Failed to publish collection event")
	}

	logger.Info().Str("collection", event.Collection).Str("item_id", event.ItemID).Str("type", string(event.EventType)).Msg("CMS change received")
	respondWithJSON(w, http.StatusAccepted, map[string]string{
		"status":   "queued",
		"event_id": event.ID,
	})
}

func (h *CMSWebhookHandler) verifySignature(signature string, body []byte) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.signingSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(strings.ToLower(signature)), []byte(expected))
}

// eventType maps the CMS hook names (e.g. "onItemUpdated", "deleted") to
// content event types. Unknown names count as updates.
func eventType(raw string) entities.ContentEventType {
	name := strings.ToLower(raw)
	switch {
	case strings.Contains(name, "creat") || strings.Contains(name, "insert"):
		return entities.ContentEventCreated
	case strings.Contains(name, "delet") || strings.Contains(name, "remov"):
		return entities.ContentEventDeleted
	}
	return entities.ContentEventUpdated
}
