package services

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/medtravel/hospitaldirectory/internal/adapters/cms"
	"github.com/medtravel/hospitaldirectory/internal/domain/providers"
)

// directoryCMS seeds a small directory using several of the field-name
// and reference shapes the CMS has produced over time.
func directoryCMS() *cms.MemoryAdapter {
	m := cms.NewMemoryAdapter()
	m.Put(providers.CollectionCities,
		providers.CMSItem{"_id": "c-suva", "cityName": "Suva", "state": "Central", "country": "Fiji"},
		providers.CMSItem{"_id": "c-nadi", "name": "Nadi", "state": "Western", "country": "Fiji"},
	)
	m.Put(providers.CollectionDepartments,
		providers.CMSItem{"_id": "dep-heart", "department": "Heart Care"},
		providers.CMSItem{"_id": "dep-bone", "name": "Bone & Joint"},
	)
	m.Put(providers.CollectionSpecializations,
		providers.CMSItem{"_id": "spec-cardio", "specialization": "Cardiology", "department": []any{"dep-heart"}},
	)
	m.Put(providers.CollectionDoctors,
		providers.CMSItem{"_id": "doc-ana", "doctorName": "Dr Ana Cakau", "specialization": []any{"spec-cardio"}, "popular": true},
	)
	m.Put(providers.CollectionTreatments,
		providers.CMSItem{"_id": "t-angio", "treatmentName": "Angioplasty", "cost": "$5000", "department": []any{"dep-heart"}},
		providers.CMSItem{"_id": "t-knee", "name": "Knee Replacement", "departments": []any{map[string]any{"_id": "dep-bone"}}},
	)
	m.Put(providers.CollectionHospitals,
		providers.CMSItem{"_id": "h-pacific", "hospitalName": "Pacific Heart Group", "logo": "wix:image://v1/ph~mv2.png/ph.png", "popular": true},
		providers.CMSItem{"_id": "h-capital", "hospitalName": "Capital Medical Centre"},
		providers.CMSItem{"_id": "h-western", "name": "Western Orthopaedic Hospital"},
	)
	m.Put(providers.CollectionBranches,
		providers.CMSItem{
			"_id":        "b-pacific-suva",
			"branchName": "Pacific Heart Suva",
			"hospital":   "h-pacific",
			"city":       []any{"c-suva"},
			"doctor":     []any{"doc-ana"},
			"treatment":  []any{"t-angio"},
		},
		providers.CMSItem{
			"_id":                     "b-capital-suva",
			"name":                    "Capital Medical Suva",
			"HospitalMaster_branches": []any{map[string]any{"_id": "h-capital"}},
			"city":                    "c-suva",
			"treatment":               []any{"t-angio"},
		},
		providers.CMSItem{
			"_id":            "b-western-nadi",
			"branchName":     "Western Orthopaedic Nadi",
			"hospitalMaster": "h-western",
			"cities":         []any{"c-nadi"},
			"treatments":     []any{"t-knee"},
		},
	)
	return m
}

// faultyCMS fails every query fail selects and counts all queries.
type faultyCMS struct {
	inner providers.CMSProvider
	fail  func(q *providers.CMSQuery) bool
	calls atomic.Int32
}

var errCMSDown = errors.New("cms unavailable")

func (f *faultyCMS) Query(ctx context.Context, q *providers.CMSQuery) (*providers.CMSResult, error) {
	f.calls.Add(1)
	if f.fail != nil && f.fail(q) {
		return nil, errCMSDown
	}
	return f.inner.Query(ctx, q)
}

func filtersOn(q *providers.CMSQuery, field string) bool {
	for _, f := range q.Filters {
		if f.Field == field {
			return true
		}
	}
	return false
}
