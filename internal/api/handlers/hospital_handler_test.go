package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medtravel/hospitaldirectory/internal/api/handlers"
	"github.com/medtravel/hospitaldirectory/internal/application/services"
	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
)

type stubHospitalSearcher struct {
	got  services.HospitalQuery
	page *entities.HospitalPage
	err  error
}

func (s *stubHospitalSearcher) Search(ctx context.Context, q services.HospitalQuery) (*entities.HospitalPage, error) {
	s.got = q
	return s.page, s.err
}

func TestHospitalHandler_ListHospitals(t *testing.T) {
	stub := &stubHospitalSearcher{page: &entities.HospitalPage{
		Items:    []entities.Hospital{{ID: "h1", Name: "Pacific Heart Group", Branches: []entities.Branch{}}},
		Total:    1,
		Page:     2,
		PageSize: 5,
	}}
	handler := handlers.NewHospitalHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/hospitals?q=heart&cityId=c1&treatment=knee&page=2&pageSize=5", nil)
	w := httptest.NewRecorder()
	handler.ListHospitals(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.HospitalQuery{Q: "heart", CityID: "c1", Treatment: "knee", Page: 2, PageSize: 5}, stub.got)

	var body entities.HospitalPage
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, 1, body.Total)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "h1", body.Items[0].ID)
}

func TestHospitalHandler_ListHospitals_Defaults(t *testing.T) {
	stub := &stubHospitalSearcher{page: &entities.HospitalPage{Items: []entities.Hospital{}}}
	handler := handlers.NewHospitalHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/hospitals?page=abc", nil)
	handler.ListHospitals(httptest.NewRecorder(), req)

	assert.Equal(t, 1, stub.got.Page)
	assert.Equal(t, services.DefaultPageSize, stub.got.PageSize)
}

func TestHospitalHandler_ListHospitals_Error(t *testing.T) {
	handler := handlers.NewHospitalHandler(&stubHospitalSearcher{err: errors.New("cms timeout")})

	req := httptest.NewRequest(http.MethodGet, "/api/hospitals", nil)
	w := httptest.NewRecorder()
	handler.ListHospitals(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "Failed to fetch hospitals", body["error"])
	assert.Equal(t, "cms timeout", body["details"])
}
