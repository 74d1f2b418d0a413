package cms

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medtravel/hospitaldirectory/internal/domain/providers"
)

func TestNormalizeRefs(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		wantIDs []string
	}{
		{name: "nil", value: nil, wantIDs: nil},
		{name: "empty string", value: "", wantIDs: nil},
		{name: "id string", value: "c1", wantIDs: []string{"c1"}},
		{name: "object", value: map[string]any{"_id": "c1", "cityName": "Suva"}, wantIDs: []string{"c1"}},
		{name: "object with id key", value: map[string]any{"id": "c2"}, wantIDs: []string{"c2"}},
		{name: "object without id", value: map[string]any{"cityName": "Suva"}, wantIDs: nil},
		{name: "mixed array", value: []any{"c1", map[string]any{"_id": "c2"}, 42, nil}, wantIDs: []string{"c1", "c2"}},
		{name: "string slice", value: []string{"c1", "", "c3"}, wantIDs: []string{"c1", "c3"}},
		{name: "unsupported", value: 3.14, wantIDs: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refs := NormalizeRefs(tt.value)
			var ids []string
			for _, r := range refs {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestRef_Expanded(t *testing.T) {
	stub := NormalizeRefs("c1")[0]
	full := NormalizeRefs(map[string]any{"_id": "c1", "cityName": "Suva"})[0]

	assert.False(t, stub.Expanded())
	assert.True(t, full.Expanded())
}

func TestRefIDs_Deduplicates(t *testing.T) {
	assert.Equal(t, []string{"d1", "d2"}, RefIDs([]any{"d1", map[string]any{"_id": "d2"}, "d1"}))
}

func TestFieldRefIDs(t *testing.T) {
	items := []providers.CMSItem{
		{"_id": "b1", "doctor": []any{"d1", "d2"}},
		{"_id": "b2", "doctors": []any{map[string]any{"_id": "d2"}, "d3"}},
	}
	assert.Equal(t, []string{"d1", "d2", "d3"}, FieldRefIDs(items, DoctorRefFields...))
}
