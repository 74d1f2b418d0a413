package directory

import (
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/medtravel/hospitaldirectory/pkg/utils"
)

// Query-string keys besides the slot names.
const (
	ParamView   = "view"
	ParamSortBy = "sortBy"
)

var visibleSlots = map[View][]Slot{
	ViewHospitals:  {SlotCity, SlotState, SlotTreatment, SlotBranch, SlotLocation},
	ViewDoctors:    {SlotCity, SlotState, SlotDoctor, SlotSpecialization, SlotTreatment, SlotLocation},
	ViewTreatments: {SlotCity, SlotState, SlotTreatment, SlotDepartment, SlotLocation},
}

// Visible reports whether a slot has a control in the given view.
func Visible(view View, slot Slot) bool {
	for _, s := range visibleSlots[view] {
		if s == slot {
			return true
		}
	}
	return false
}

// looksLikeID reports whether a query-string value is a canonical UUID,
// the shape of every CMS item id.
func looksLikeID(value string) bool {
	if len(value) != 36 {
		return false
	}
	_, err := uuid.Parse(value)
	return err == nil
}

// ParseQuery reads a state from a query string. UUID-shaped values become
// id filters and anything else free text. Slots are applied in URL order
// through the transition table, so with several primary slots present the
// last one in that order wins.
func ParseQuery(values url.Values) State {
	st := NewState().
		WithView(ParseView(values.Get(ParamView))).
		WithSort(ParseSortBy(values.Get(ParamSortBy)))

	for _, slot := range AllSlots() {
		raw := strings.TrimSpace(values.Get(slot.String()))
		if raw == "" {
			continue
		}
		if looksLikeID(raw) {
			st = st.Set(slot, FilterID(raw))
		} else {
			st = st.Set(slot, FilterText(raw))
		}
	}
	return st
}

// EncodeQuery renders the canonical query string of a state. A slot is
// written when it is visible in the view or holds a value; values are the
// slugged display names resolved through opts, falling back to the raw id.
func EncodeQuery(st State, opts Options) url.Values {
	values := url.Values{}
	values.Set(ParamView, string(st.View))
	if st.SortBy != "" && st.SortBy != SortAll {
		values.Set(ParamSortBy, string(st.SortBy))
	}

	for _, slot := range AllSlots() {
		f := st.Get(slot)
		if !f.Active() && !Visible(st.View, slot) {
			continue
		}
		values.Set(slot.String(), displayValue(slot, f, opts))
	}
	return values
}

func displayValue(slot Slot, f Filter, opts Options) string {
	switch f.Kind() {
	case ByID:
		if name, ok := opts.Name(slot, f.ID()); ok {
			return utils.GenerateSlug(name)
		}
		return utils.GenerateSlug(f.ID())
	case ByText:
		return utils.GenerateSlug(f.Query())
	}
	return ""
}

// CanonicalQuery returns the encoded target query and whether it differs
// from current, in which case the caller should replace its URL.
func CanonicalQuery(current url.Values, st State, opts Options) (string, bool) {
	target := EncodeQuery(st, opts).Encode()
	return target, target != current.Encode()
}

// Reconcile resolves slug-only text filters to ids once the dataset is
// loaded. The first candidate whose slugged name equals the slugged query
// wins; unmatched text is left as is. The transition table is not
// re-applied since the state already satisfies it.
func Reconcile(st State, ds *Dataset) State {
	if ds.Empty() {
		return st
	}
	for _, slot := range AllSlots() {
		f := st.Get(slot)
		if f.Kind() != ByText {
			continue
		}
		want := utils.GenerateSlug(f.Query())
		if want == "" {
			continue
		}
		for _, c := range candidates(ds, slot) {
			if utils.GenerateSlug(c.Name) == want {
				st = st.replace(slot, FilterID(c.ID))
				break
			}
		}
	}
	return st
}

// candidates lists every (id, name) a slot can resolve to, in dataset
// order.
func candidates(ds *Dataset, slot Slot) []Option {
	var out []Option
	add := func(id, name string) {
		if id != "" && name != "" {
			out = append(out, Option{ID: id, Name: name})
		}
	}

	switch slot {
	case SlotCity, SlotState, SlotLocation:
		set := optionSet{}
		for _, b := range ds.Branches {
			for _, c := range b.Cities {
				switch slot {
				case SlotLocation:
					set.addCity(c, SlotLocation)
					add(c.ID, c.Name)
				case SlotState:
					add(c.State, c.State)
				default:
					add(c.ID, c.Name)
				}
			}
		}
		// Formatted "City, State" names take precedence for locations.
		if slot == SlotLocation {
			out = append(set.sorted(), out...)
		}
	case SlotBranch:
		for _, b := range ds.Branches {
			add(b.ID, b.Name)
		}
	case SlotTreatment:
		for _, t := range ds.Treatments {
			add(t.ID, t.Name)
		}
	case SlotDoctor:
		for _, d := range ds.Doctors {
			add(d.BaseID, d.Name)
		}
	case SlotSpecialization:
		for _, d := range ds.Doctors {
			for _, s := range d.Specializations {
				add(s.ID, s.Name)
			}
		}
	case SlotDepartment:
		for _, t := range ds.Treatments {
			for _, dep := range t.Departments {
				add(dep.ID, dep.Name)
			}
		}
		for _, d := range ds.Doctors {
			for _, dep := range d.Departments {
				add(dep.ID, dep.Name)
			}
		}
	}
	return out
}
