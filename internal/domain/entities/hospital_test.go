package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeByID_DropsLaterDuplicates(t *testing.T) {
	base := []Treatment{{ID: "t1", Name: "Angioplasty"}, {ID: "t2", Name: "Bypass"}}
	later := []Treatment{{ID: "t2", Name: "Bypass (dup)"}, {ID: "t3", Name: "Stent"}, {ID: "", Name: "no id"}}

	merged := MergeByID(base, later)

	assert.Len(t, merged, 3)
	assert.Equal(t, "Bypass", merged[1].Name)
	assert.Equal(t, "t3", merged[2].ID)
}

func TestMergeByID_DoesNotAliasBase(t *testing.T) {
	base := make([]Department, 1, 4)
	base[0] = Department{ID: "d1", Name: "Heart Care"}

	merged := MergeByID(base, []Department{{ID: "d2", Name: "Ortho"}})
	merged[0].Name = "changed"

	assert.Equal(t, "Heart Care", base[0].Name)
}

func TestLocationKey(t *testing.T) {
	assert.Equal(t, "h1|b1", LocationKey("h1", "b1"))
	assert.Equal(t, "h1|no-branch", LocationKey("h1", ""))
	assert.Equal(t, DoctorLocation{HospitalID: "h1"}.Key(), TreatmentLocation{HospitalID: "h1"}.Key())
}

func TestLeadKind_Valid(t *testing.T) {
	assert.True(t, LeadKindQuote.Valid())
	assert.False(t, LeadKind("spam").Valid())
}
