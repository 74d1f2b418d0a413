package routes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medtravel/hospitaldirectory/internal/adapters/cache"
	"github.com/medtravel/hospitaldirectory/internal/adapters/cms"
	"github.com/medtravel/hospitaldirectory/internal/adapters/events"
	"github.com/medtravel/hospitaldirectory/internal/api/handlers"
	"github.com/medtravel/hospitaldirectory/internal/api/middleware"
	"github.com/medtravel/hospitaldirectory/internal/api/routes"
	"github.com/medtravel/hospitaldirectory/internal/application/services"
	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
	"github.com/medtravel/hospitaldirectory/internal/domain/providers"
	"github.com/medtravel/hospitaldirectory/internal/query/directory"
)

type discardLeads struct{}

func (discardLeads) Create(context.Context, *entities.Lead) error { return nil }

func newServer(t *testing.T) http.Handler {
	t.Helper()
	provider := cms.NewMemoryAdapter()
	provider.Put(providers.CollectionCities, providers.CMSItem{"_id": "c-suva", "cityName": "Suva", "state": "Central"})
	provider.Put(providers.CollectionTreatments, providers.CMSItem{"_id": "t-angio", "treatmentName": "Angioplasty"})
	provider.Put(providers.CollectionHospitals, providers.CMSItem{"_id": "h1", "hospitalName": "Pacific Heart Group"})
	provider.Put(providers.CollectionBranches, providers.CMSItem{
		"_id": "b1", "branchName": "Pacific Heart Suva", "hospital": "h1",
		"city": []any{"c-suva"}, "treatment": []any{"t-angio"},
	})

	hospitals := services.NewHospitalService(provider, services.MaxPageSize)
	store := directory.NewStore(hospitals.ListAll)
	require.NoError(t, store.Refresh(context.Background()))
	memory := cache.NewMemoryAdapter()
	bus := events.NewMemoryEventBus()
	t.Cleanup(func() { _ = bus.Close() })

	router := routes.NewRouter(routes.Handlers{
		Health:    handlers.NewHealthHandler(store),
		Hospital:  handlers.NewHospitalHandler(hospitals),
		Directory: handlers.NewDirectoryHandler(services.NewDirectoryService(store, nil)),
		Lead:      handlers.NewLeadHandler(services.NewLeadService(discardLeads{}, memory, memory, nil, services.DefaultLeadPolicy()), 600, nil),
		Content:   handlers.NewContentHandler(services.NewContentService(provider)),
		Webhook:   handlers.NewCMSWebhookHandler(bus, ""),
	}, middleware.NewCacheMiddleware(memory, nil), nil, nil)
	return router.SetupRoutes()
}

func TestRouter_Routes(t *testing.T) {
	server := newServer(t)

	testCases := []struct {
		method string
		target string
		body   string
		status int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/api/hospitals?city=suva", "", http.StatusOK},
		{http.MethodGet, "/api/directory?view=treatments", "", http.StatusOK},
		{http.MethodPost, "/api/directory/filters", `{"key":"city","text":"suva"}`, http.StatusOK},
		{http.MethodGet, "/api/search/suggest?q=angio", "", http.StatusOK},
		{http.MethodPost, "/api/leads", `{"name":"Mere","email":"mere@example.com"}`, http.StatusCreated},
		{http.MethodGet, "/api/blogs", "", http.StatusOK},
		{http.MethodGet, "/api/blogs/missing", "", http.StatusNotFound},
		{http.MethodGet, "/api/albums", "", http.StatusOK},
		{http.MethodPost, "/webhooks/cms", `{"collection":"DoctorMaster"}`, http.StatusAccepted},
		{http.MethodGet, "/api/unknown", "", http.StatusNotFound},
		{http.MethodDelete, "/api/hospitals", "", http.StatusMethodNotAllowed},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, strings.NewReader(tc.body))
			w := httptest.NewRecorder()
			server.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestRouter_CachesHospitalResponses(t *testing.T) {
	server := newServer(t)

	first := httptest.NewRecorder()
	server.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/hospitals", nil))
	second := httptest.NewRecorder()
	server.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/hospitals", nil))

	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Contains(t, second.Body.String(), "Pacific Heart Group")
	assert.Equal(t, "public, max-age=120, must-revalidate", second.Header().Get("Cache-Control"))
}
