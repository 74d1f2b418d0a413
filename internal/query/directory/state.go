package directory

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Slot is one of the fixed filter slots.
type Slot int

// Slots in URL order.
const (
	SlotBranch Slot = iota
	SlotCity
	SlotTreatment
	SlotDoctor
	SlotSpecialization
	SlotDepartment
	SlotLocation
	SlotState
	slotCount
)

var slotNames = [slotCount]string{"branch", "city", "treatment", "doctor", "specialization", "department", "location", "state"}

// AllSlots lists every slot in URL order.
func AllSlots() []Slot {
	out := make([]Slot, slotCount)
	for i := range out {
		out[i] = Slot(i)
	}
	return out
}

func (s Slot) String() string {
	if s < 0 || s >= slotCount {
		return fmt.Sprintf("Slot(%d)", int(s))
	}
	return slotNames[s]
}

// ParseSlot resolves a slot by its query-string name.
func ParseSlot(name string) (Slot, bool) {
	for i, n := range slotNames {
		if n == name {
			return Slot(i), true
		}
	}
	return 0, false
}

// View selects which entity list the directory renders.
type View string

const (
	ViewHospitals  View = "hospitals"
	ViewDoctors    View = "doctors"
	ViewTreatments View = "treatments"
)

// ParseView falls back to the hospitals view for unknown input.
func ParseView(s string) View {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewDoctors, ViewTreatments:
		return v
	}
	return ViewHospitals
}

// SortBy orders the derived lists.
type SortBy string

const (
	SortAll     SortBy = "all"
	SortPopular SortBy = "popular"
	SortAZ      SortBy = "az"
	SortZA      SortBy = "za"
)

// ParseSortBy falls back to SortAll for unknown input.
func ParseSortBy(s string) SortBy {
	switch v := SortBy(strings.ToLower(strings.TrimSpace(s))); v {
	case SortPopular, SortAZ, SortZA:
		return v
	}
	return SortAll
}

// FilterKind tags the Filter union.
type FilterKind int

const (
	Unfiltered FilterKind = iota
	ByID
	ByText
)

// Filter is the value of one slot: nothing, an exact entity id, or a
// free-text query. Exactly one of the three holds.
type Filter struct {
	kind  FilterKind
	value string
}

// NoFilter is the unfiltered slot value.
func NoFilter() Filter { return Filter{} }

// FilterID selects an exact entity. An empty id is NoFilter.
func FilterID(id string) Filter {
	id = strings.TrimSpace(id)
	if id == "" {
		return Filter{}
	}
	return Filter{kind: ByID, value: id}
}

// FilterText matches by substring. An empty query is NoFilter.
func FilterText(query string) Filter {
	query = strings.TrimSpace(query)
	if query == "" {
		return Filter{}
	}
	return Filter{kind: ByText, value: query}
}

// Kind returns the union tag.
func (f Filter) Kind() FilterKind { return f.kind }

// Active reports whether the slot constrains anything.
func (f Filter) Active() bool { return f.kind != Unfiltered }

// ID returns the selected id, or "" unless the filter is ByID.
func (f Filter) ID() string {
	if f.kind == ByID {
		return f.value
	}
	return ""
}

// Query returns the free text, or "" unless the filter is ByText.
func (f Filter) Query() string {
	if f.kind == ByText {
		return f.value
	}
	return ""
}

type filterJSON struct {
	ID    string `json:"id"`
	Query string `json:"query"`
}

// MarshalJSON encodes the slot as {id, query}.
func (f Filter) MarshalJSON() ([]byte, error) {
	return json.Marshal(filterJSON{ID: f.ID(), Query: f.Query()})
}

// UnmarshalJSON decodes {id, query}; a non-empty id wins over the query.
func (f *Filter) UnmarshalJSON(data []byte) error {
	var raw filterJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID != "" {
		*f = FilterID(raw.ID)
	} else {
		*f = FilterText(raw.Query)
	}
	return nil
}

// State is the complete filter selection. It is a value: every mutator
// returns a new State.
type State struct {
	View    View
	SortBy  SortBy
	filters [slotCount]Filter
}

// NewState returns the default state: hospitals view, no filters.
func NewState() State {
	return State{View: ViewHospitals, SortBy: SortAll}
}

// Get returns the value of a slot.
func (s State) Get(slot Slot) Filter {
	if slot < 0 || slot >= slotCount {
		return Filter{}
	}
	return s.filters[slot]
}

// primarySlots are the alternative drill-down entry points; at most one of
// them is ever active.
var primarySlots = [...]Slot{SlotDoctor, SlotTreatment, SlotBranch}

func isPrimary(slot Slot) bool {
	for _, p := range primarySlots {
		if p == slot {
			return true
		}
	}
	return false
}

// Set assigns a slot. Activating one primary slot clears the other two.
func (s State) Set(slot Slot, f Filter) State {
	if slot < 0 || slot >= slotCount {
		return s
	}
	s.filters[slot] = f
	if f.Active() && isPrimary(slot) {
		for _, p := range primarySlots {
			if p != slot {
				s.filters[p] = Filter{}
			}
		}
	}
	return s
}

// replace assigns a slot without applying the transition table.
func (s State) replace(slot Slot, f Filter) State {
	s.filters[slot] = f
	return s
}

// WithView switches the view.
func (s State) WithView(v View) State {
	s.View = v
	return s
}

// WithSort switches the sort order.
func (s State) WithSort(by SortBy) State {
	s.SortBy = by
	return s
}

// Reset clears every slot, keeping view and sort.
func (s State) Reset() State {
	s.filters = [slotCount]Filter{}
	return s
}

// Filters returns the slots keyed by name.
func (s State) Filters() map[string]Filter {
	out := make(map[string]Filter, slotCount)
	for i, f := range s.filters {
		out[slotNames[i]] = f
	}
	return out
}

type stateJSON struct {
	View    View              `json:"view"`
	SortBy  SortBy            `json:"sortBy"`
	Filters map[string]Filter `json:"filters"`
}

// MarshalJSON encodes the state with every slot present.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{View: s.View, SortBy: s.SortBy, Filters: s.Filters()})
}

// UnmarshalJSON decodes a state. Unknown slots are ignored and the
// transition table is applied in slot order.
func (s *State) UnmarshalJSON(data []byte) error {
	var raw stateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	st := NewState().WithView(ParseView(string(raw.View))).WithSort(ParseSortBy(string(raw.SortBy)))
	for _, slot := range AllSlots() {
		if f, ok := raw.Filters[slot.String()]; ok {
			st = st.Set(slot, f)
		}
	}
	*s = st
	return nil
}
