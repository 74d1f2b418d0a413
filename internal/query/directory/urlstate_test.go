package directory

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuery(t *testing.T) {
	values := url.Values{
		"view":      {"doctors"},
		"sortBy":    {"za"},
		"city":      {idSuva},
		"doctor":    {"dr-ana-cakau"},
		"treatment": {"angioplasty"},
		"unknown":   {"x"},
	}

	st := ParseQuery(values)

	assert.Equal(t, ViewDoctors, st.View)
	assert.Equal(t, SortZA, st.SortBy)
	assert.Equal(t, FilterID(idSuva), st.Get(SlotCity))
	assert.Equal(t, FilterText("dr-ana-cakau"), st.Get(SlotDoctor))
	assert.False(t, st.Get(SlotTreatment).Active(), "doctor comes after treatment in URL order")
}

func TestParseQuery_OnlyCanonicalUUIDsAreIDs(t *testing.T) {
	st := ParseQuery(url.Values{
		"city":   {"{" + idSuva + "}"},
		"branch": {idB1},
	})

	assert.Equal(t, ByText, st.Get(SlotCity).Kind())
	assert.Equal(t, ByID, st.Get(SlotBranch).Kind())
}

func TestEncodeQuery_Visibility(t *testing.T) {
	st := NewState().Set(SlotDoctor, FilterText("Dr Ana"))

	values := EncodeQuery(st, nil)

	assert.Equal(t, "hospitals", values.Get("view"))
	assert.NotContains(t, values, "sortBy")
	for _, key := range []string{"city", "state", "treatment", "branch", "location"} {
		assert.Contains(t, values, key)
	}
	assert.Equal(t, "dr-ana", values.Get("doctor"), "hidden slots appear while they hold a value")
	assert.NotContains(t, values, "specialization")
	assert.NotContains(t, values, "department")
}

func TestEncodeQuery_UsesDisplayNames(t *testing.T) {
	ds := NewDataset(sampleHospitals())
	st := NewState().WithView(ViewTreatments).WithSort(SortPopular).
		Set(SlotCity, FilterID(idSuva)).
		Set(SlotTreatment, FilterID(idT1)).
		Set(SlotDepartment, FilterID("not-in-options"))
	opts := BuildOptions(Apply(ds, NewState().WithView(ViewTreatments)), ViewTreatments)

	values := EncodeQuery(st, opts)

	assert.Equal(t, "popular", values.Get("sortBy"))
	assert.Equal(t, "suva", values.Get("city"))
	assert.Equal(t, "angioplasty", values.Get("treatment"))
	assert.Equal(t, "not-in-options", values.Get("department"), "falls back to the raw id")
}

func TestURLRoundTrip_ReconcilesToIDs(t *testing.T) {
	ds := NewDataset(sampleHospitals())

	testCases := []struct {
		name  string
		state State
	}{
		{
			name: "hospitals",
			state: NewState().
				Set(SlotCity, FilterID(idSuva)).
				Set(SlotBranch, FilterID(idB1)),
		},
		{
			name: "doctors",
			state: NewState().WithView(ViewDoctors).
				Set(SlotDoctor, FilterID(idD1)).
				Set(SlotSpecialization, FilterID(idCardiology)).
				Set(SlotState, FilterID("Central")),
		},
		{
			name: "treatments",
			state: NewState().WithView(ViewTreatments).WithSort(SortAZ).
				Set(SlotTreatment, FilterID(idT1)).
				Set(SlotDepartment, FilterID(idHeartCare)).
				Set(SlotLocation, FilterID(idSuva)),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts := BuildOptions(Apply(ds, tc.state), tc.state.View)
			encoded := EncodeQuery(tc.state, opts).Encode()

			parsed, err := url.ParseQuery(encoded)
			require.NoError(t, err)
			st := ParseQuery(parsed)
			for _, slot := range AllSlots() {
				if tc.state.Get(slot).Active() {
					assert.Equal(t, ByText, st.Get(slot).Kind(), "%s is a slug before data loads", slot)
				}
			}

			assert.Equal(t, tc.state, Reconcile(st, ds))
		})
	}
}

func TestReconcile_LeavesUnknownTextAndEmptyDataset(t *testing.T) {
	st := NewState().Set(SlotCity, FilterText("labasa"))

	assert.Equal(t, st, Reconcile(st, NewDataset(sampleHospitals())))

	suvaText := NewState().Set(SlotCity, FilterText("suva"))
	assert.Equal(t, suvaText, Reconcile(suvaText, NewDataset(nil)))
}

func TestCanonicalQuery(t *testing.T) {
	st := NewState().Set(SlotCity, FilterText("Suva"))

	target, changed := CanonicalQuery(url.Values{"city": {"Suva"}}, st, nil)
	assert.True(t, changed)

	current, err := url.ParseQuery(target)
	require.NoError(t, err)
	again, changed := CanonicalQuery(current, st, nil)
	assert.False(t, changed)
	assert.Equal(t, target, again)
}
