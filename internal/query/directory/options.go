package directory

import (
	"slices"
	"strings"

	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
)

// Option is one entry of a dependent dropdown.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Options holds the dropdown entries per slot name.
type Options map[string][]Option

// Name resolves the display name of an id within a slot.
func (o Options) Name(slot Slot, id string) (string, bool) {
	for _, opt := range o[slot.String()] {
		if opt.ID == id {
			return opt.Name, true
		}
	}
	return "", false
}

// optionSet collects options keyed by id; a later name for the same id
// replaces the earlier one.
type optionSet map[string]string

func (s optionSet) add(id, name string) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" || name == "" {
		return
	}
	s[id] = name
}

func (s optionSet) addCity(c entities.City, slot Slot) {
	switch slot {
	case SlotCity:
		s.add(c.ID, c.Name)
	case SlotState:
		s.add(c.State, c.State)
	case SlotLocation:
		name := c.Name
		if c.State != "" {
			name += ", " + c.State
		}
		s.add(c.ID, name)
	}
}

func (s optionSet) sorted() []Option {
	out := make([]Option, 0, len(s))
	for id, name := range s {
		out = append(out, Option{ID: id, Name: name})
	}
	col := newCollator()
	slices.SortFunc(out, func(a, b Option) int {
		if c := col.CompareString(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// UniqueOptions derives the entries of one slot from the filtered sets of
// the active view, so every dropdown only offers values that still have a
// match under the other filters.
func UniqueOptions(res Result, view View, slot Slot) []Option {
	set := optionSet{}

	switch slot {
	case SlotCity, SlotState, SlotLocation:
		switch view {
		case ViewDoctors:
			for _, d := range res.Doctors {
				for _, l := range d.FilteredLocations {
					for _, c := range l.Cities {
						set.addCity(c, slot)
					}
				}
			}
		case ViewTreatments:
			for _, t := range res.Treatments {
				for _, l := range t.FilteredBranchesAvailableAt {
					for _, c := range l.Cities {
						set.addCity(c, slot)
					}
				}
			}
		default:
			for _, b := range res.Branches {
				for _, c := range b.Cities {
					set.addCity(c, slot)
				}
			}
		}

	case SlotBranch:
		switch view {
		case ViewDoctors:
			for _, d := range res.Doctors {
				for _, l := range d.FilteredLocations {
					set.add(l.BranchID, l.BranchName)
				}
			}
		case ViewTreatments:
			for _, t := range res.Treatments {
				for _, l := range t.FilteredBranchesAvailableAt {
					set.add(l.BranchID, l.BranchName)
				}
			}
		default:
			for _, b := range res.Branches {
				set.add(b.ID, b.Name)
			}
		}

	case SlotTreatment:
		if view == ViewHospitals {
			keys := make(map[string]struct{}, len(res.Branches)+len(res.Hospitals))
			for _, b := range res.Branches {
				keys[b.Key()] = struct{}{}
			}
			// Hospital-level attachments live at the hospital's no-branch key.
			for _, h := range res.Hospitals {
				keys[entities.LocationKey(h.ID, "")] = struct{}{}
			}
			for _, t := range res.Treatments {
				if slices.ContainsFunc(t.FilteredBranchesAvailableAt, func(l entities.TreatmentLocation) bool {
					_, ok := keys[l.Key()]
					return ok
				}) {
					set.add(t.ID, t.Name)
				}
			}
		} else {
			for _, t := range res.Treatments {
				set.add(t.ID, t.Name)
			}
		}

	case SlotDoctor:
		for _, d := range res.Doctors {
			set.add(d.BaseID, d.Name)
		}

	case SlotSpecialization:
		for _, d := range res.Doctors {
			for _, s := range d.Specializations {
				set.add(s.ID, s.Name)
			}
		}

	case SlotDepartment:
		if view == ViewDoctors {
			for _, d := range res.Doctors {
				for _, dep := range d.Departments {
					set.add(dep.ID, dep.Name)
				}
			}
		} else {
			for _, t := range res.Treatments {
				for _, dep := range t.Departments {
					set.add(dep.ID, dep.Name)
				}
			}
		}
	}

	return set.sorted()
}

// BuildOptions derives every slot's entries.
func BuildOptions(res Result, view View) Options {
	out := make(Options, slotCount)
	for _, slot := range AllSlots() {
		out[slot.String()] = UniqueOptions(res, view, slot)
	}
	return out
}
