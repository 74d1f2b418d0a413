package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
)

func optionIDs(opts []Option) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		out = append(out, o.ID)
	}
	return out
}

func TestUniqueOptions_FollowFilteredSets(t *testing.T) {
	ds := NewDataset(sampleHospitals())

	for _, view := range []View{ViewHospitals, ViewDoctors, ViewTreatments} {
		t.Run(string(view), func(t *testing.T) {
			st := NewState().WithView(view).Set(SlotCity, FilterID(idSuva))
			res := Apply(ds, st)

			treatments := UniqueOptions(res, view, SlotTreatment)
			assert.NotContains(t, optionIDs(treatments), idT2, "knee replacement is only offered in Nadi")

			// Every option must be derivable from the filtered result.
			available := map[string]bool{}
			for _, tr := range res.Treatments {
				available[tr.ID] = true
			}
			for _, o := range treatments {
				assert.True(t, available[o.ID], "option %s not in filtered treatments", o.Name)
			}

			for _, o := range UniqueOptions(res, view, SlotCity) {
				assert.Equal(t, idSuva, o.ID)
			}
		})
	}
}

func TestUniqueOptions_HospitalsView(t *testing.T) {
	res := Apply(NewDataset(sampleHospitals()), NewState())

	assert.Equal(t, []Option{{ID: idNadi, Name: "Nadi"}, {ID: idSuva, Name: "Suva"}}, UniqueOptions(res, ViewHospitals, SlotCity))
	assert.Equal(t, []Option{{ID: "Central", Name: "Central"}, {ID: "Western", Name: "Western"}}, UniqueOptions(res, ViewHospitals, SlotState))
	assert.Equal(t, []Option{{ID: idNadi, Name: "Nadi, Western"}, {ID: idSuva, Name: "Suva, Central"}}, UniqueOptions(res, ViewHospitals, SlotLocation))
	assert.Equal(t, []string{idB2, idB1, idB3}, optionIDs(UniqueOptions(res, ViewHospitals, SlotBranch)))
	assert.Equal(t, []string{idT1, idT2}, optionIDs(UniqueOptions(res, ViewHospitals, SlotTreatment)))
}

func TestUniqueOptions_HospitalLevelTreatment(t *testing.T) {
	dialysis := entities.Treatment{ID: "t-dialysis", Name: "Dialysis"}
	ds := NewDataset([]entities.Hospital{{
		ID:         "h-1",
		Name:       "Harbour Hospital",
		Treatments: []entities.Treatment{dialysis},
		Branches:   []entities.Branch{{ID: "b-1", Name: "Harbour Suva", Cities: []entities.City{suva}}},
	}})

	res := Apply(ds, NewState())
	assert.Equal(t, []Option{{ID: "t-dialysis", Name: "Dialysis"}}, UniqueOptions(res, ViewHospitals, SlotTreatment))

	// The dropdown offers what the filter accepts.
	filtered := Apply(ds, NewState().Set(SlotTreatment, FilterID("t-dialysis")))
	require.Len(t, filtered.Hospitals, 1)
	assert.Equal(t, []string{"t-dialysis"}, optionIDs(UniqueOptions(filtered, ViewHospitals, SlotTreatment)))
}

func TestUniqueOptions_DoctorsView(t *testing.T) {
	res := Apply(NewDataset(sampleHospitals()), NewState().WithView(ViewDoctors))

	assert.Equal(t, []Option{{ID: idD1, Name: "Dr Ana Cakau"}, {ID: idD2, Name: "Dr Ben Waqa"}}, UniqueOptions(res, ViewDoctors, SlotDoctor))
	assert.Equal(t, []string{idCardiology, idOrthopedics}, optionIDs(UniqueOptions(res, ViewDoctors, SlotSpecialization)))
	assert.Equal(t, []string{idBoneJoint, idHeartCare}, optionIDs(UniqueOptions(res, ViewDoctors, SlotDepartment)))
}

func TestUniqueOptions_LastNameWins(t *testing.T) {
	res := Result{Treatments: []entities.ExtendedTreatment{
		{Treatment: entities.Treatment{ID: "t-1", Name: "Angio"}},
		{Treatment: entities.Treatment{ID: "t-1", Name: "Angioplasty"}},
		{Treatment: entities.Treatment{ID: "", Name: "Orphan"}},
	}}

	opts := UniqueOptions(res, ViewTreatments, SlotTreatment)

	require.Len(t, opts, 1)
	assert.Equal(t, "Angioplasty", opts[0].Name)
}

func TestOptions_Name(t *testing.T) {
	opts := BuildOptions(Apply(NewDataset(sampleHospitals()), NewState()), ViewHospitals)

	name, ok := opts.Name(SlotCity, idSuva)
	require.True(t, ok)
	assert.Equal(t, "Suva", name)

	_, ok = opts.Name(SlotCity, "missing")
	assert.False(t, ok)
	assert.Len(t, opts, int(slotCount))
}
