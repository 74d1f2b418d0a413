package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medtravel/hospitaldirectory/internal/api/handlers"
	"github.com/medtravel/hospitaldirectory/internal/application/services"
	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
	"github.com/medtravel/hospitaldirectory/internal/domain/repositories"
	"github.com/medtravel/hospitaldirectory/internal/query/directory"
	apperrors "github.com/medtravel/hospitaldirectory/pkg/errors"
)

type stubDirectory struct {
	values  url.Values
	change  services.FilterChange
	params  repositories.SuggestParams
	viewErr error
}

func (s *stubDirectory) View(ctx context.Context, values url.Values) *services.DirectoryView {
	s.values = values
	return &services.DirectoryView{View: directory.ParseView(values.Get("view")), Query: "view=doctors"}
}

func (s *stubDirectory) ApplyFilter(ctx context.Context, change services.FilterChange) (*services.DirectoryView, error) {
	s.change = change
	if s.viewErr != nil {
		return nil, s.viewErr
	}
	return &services.DirectoryView{View: directory.ViewHospitals, Query: "view=hospitals&city=suva"}, nil
}

func (s *stubDirectory) Suggest(ctx context.Context, params repositories.SuggestParams) ([]entities.Suggestion, error) {
	s.params = params
	return []entities.Suggestion{{ID: "t1", Kind: entities.DirectoryKindTreatment, Name: "Angioplasty"}}, nil
}

func TestDirectoryHandler_GetDirectory(t *testing.T) {
	stub := &stubDirectory{}
	handler := handlers.NewDirectoryHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/directory?view=doctors&city=suva", nil)
	w := httptest.NewRecorder()
	handler.GetDirectory(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "suva", stub.values.Get("city"))
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "doctors", body["view"])
	assert.Equal(t, "view=doctors", body["query"])
}

func TestDirectoryHandler_ApplyFilter(t *testing.T) {
	stub := &stubDirectory{}
	handler := handlers.NewDirectoryHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/directory/filters", strings.NewReader(`{"query":"view=hospitals","key":"city","text":"suva"}`))
	w := httptest.NewRecorder()
	handler.ApplyFilter(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.FilterChange{Query: "view=hospitals", Key: "city", Text: "suva"}, stub.change)
}

func TestDirectoryHandler_ApplyFilter_Errors(t *testing.T) {
	stub := &stubDirectory{viewErr: apperrors.NewValidationError("unknown filter key: price")}
	handler := handlers.NewDirectoryHandler(stub)

	w := httptest.NewRecorder()
	handler.ApplyFilter(w, httptest.NewRequest(http.MethodPost, "/api/directory/filters", strings.NewReader(`{"key":"price"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown filter key")

	w = httptest.NewRecorder()
	handler.ApplyFilter(w, httptest.NewRequest(http.MethodPost, "/api/directory/filters", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDirectoryHandler_Suggest(t *testing.T) {
	stub := &stubDirectory{}
	handler := handlers.NewDirectoryHandler(stub)

	w := httptest.NewRecorder()
	handler.Suggest(w, httptest.NewRequest(http.MethodGet, "/api/search/suggest?q=ang&kind=treatment&limit=3", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, repositories.SuggestParams{Query: "ang", Kind: entities.DirectoryKindTreatment, Limit: 3}, stub.params)
	var body struct {
		Suggestions []entities.Suggestion `json:"suggestions"`
		Count       int                   `json:"count"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, 1, body.Count)

	w = httptest.NewRecorder()
	handler.Suggest(w, httptest.NewRequest(http.MethodGet, "/api/search/suggest?q=ang&kind=clinic", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
