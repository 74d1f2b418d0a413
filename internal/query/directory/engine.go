package directory

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
	"github.com/medtravel/hospitaldirectory/pkg/utils"
)

// BranchView is a branch flattened out of its hospital, carrying the owner
// fields a branch card renders.
type BranchView struct {
	entities.Branch
	HospitalID      string `json:"hospitalId"`
	HospitalName    string `json:"hospitalName"`
	HospitalSlug    string `json:"hospitalSlug,omitempty"`
	HospitalLogo    string `json:"hospitalLogo,omitempty"`
	HospitalPopular bool   `json:"hospitalPopular"`
}

// Key returns the location key of the branch.
func (b BranchView) Key() string {
	return entities.LocationKey(b.HospitalID, b.ID)
}

// Dataset is an immutable snapshot of the directory: the hospital list and
// everything derived from it once per load.
type Dataset struct {
	Hospitals  []entities.Hospital
	Branches   []BranchView
	Doctors    []entities.ExtendedDoctor
	Treatments []entities.ExtendedTreatment

	treatmentByID map[string]int
}

// NewDataset flattens branches and builds the extended doctor and
// treatment aggregates.
func NewDataset(hospitals []entities.Hospital) *Dataset {
	if hospitals == nil {
		hospitals = []entities.Hospital{}
	}
	ds := &Dataset{
		Hospitals:     hospitals,
		Branches:      []BranchView{},
		Doctors:       BuildExtendedDoctors(hospitals),
		Treatments:    BuildExtendedTreatments(hospitals),
		treatmentByID: make(map[string]int),
	}
	for _, h := range hospitals {
		for _, b := range h.Branches {
			ds.Branches = append(ds.Branches, BranchView{
				Branch:          b,
				HospitalID:      h.ID,
				HospitalName:    utils.CleanHospitalName(h.Name),
				HospitalSlug:    h.Slug,
				HospitalLogo:    h.Logo,
				HospitalPopular: h.Popular,
			})
		}
	}
	for i, t := range ds.Treatments {
		ds.treatmentByID[t.ID] = i
	}
	return ds
}

// Empty reports whether the snapshot holds no hospitals.
func (ds *Dataset) Empty() bool {
	return ds == nil || len(ds.Hospitals) == 0
}

// Treatment looks up an aggregated treatment by id.
func (ds *Dataset) Treatment(id string) (entities.ExtendedTreatment, bool) {
	i, ok := ds.treatmentByID[id]
	if !ok {
		return entities.ExtendedTreatment{}, false
	}
	return ds.Treatments[i], true
}

// Result is the derived, filtered and sorted view of a Dataset.
type Result struct {
	Hospitals  []entities.Hospital          `json:"hospitals"`
	Branches   []BranchView                 `json:"branches"`
	Doctors    []entities.ExtendedDoctor    `json:"doctors"`
	Treatments []entities.ExtendedTreatment `json:"treatments"`
}

// Apply runs the derivation pipeline: branches, doctors, treatments, then
// sorting. It never mutates the dataset.
func Apply(ds *Dataset, st State) Result {
	if ds == nil {
		ds = NewDataset(nil)
	}
	p := newPredicates(ds, st)

	branches := p.filterBranches()
	doctors := p.filterDoctors()
	treatments := p.filterTreatments(doctors)
	hospitals := p.regroupHospitals(branches)

	return Result{
		Hospitals:  sortEntities(hospitals, st.SortBy, func(h entities.Hospital) (string, bool) { return h.Name, h.Popular }),
		Branches:   sortEntities(branches, st.SortBy, func(b BranchView) (string, bool) { return b.Name, b.Popular }),
		Doctors:    sortEntities(doctors, st.SortBy, func(d entities.ExtendedDoctor) (string, bool) { return d.Name, d.Popular }),
		Treatments: sortEntities(treatments, st.SortBy, func(t entities.ExtendedTreatment) (string, bool) { return t.Name, t.Popular }),
	}
}

// treatmentMatch is one aggregated treatment selected by the treatment
// slot, with its location keys and lower-cased department names.
type treatmentMatch struct {
	keys        map[string]struct{}
	departments map[string]struct{}
}

type predicates struct {
	ds     *Dataset
	st     State
	city   Filter
	state  Filter
	loc    Filter
	treat  Filter
	branch Filter

	treatments    []treatmentMatch
	treatmentKeys map[string]struct{}
}

func newPredicates(ds *Dataset, st State) *predicates {
	p := &predicates{
		ds:     ds,
		st:     st,
		city:   st.Get(SlotCity),
		state:  st.Get(SlotState),
		loc:    st.Get(SlotLocation),
		treat:  st.Get(SlotTreatment),
		branch: st.Get(SlotBranch),
	}
	if p.treat.Active() {
		p.treatmentKeys = make(map[string]struct{})
		for _, t := range ds.Treatments {
			if !matchTreatment(t.Treatment, p.treat) {
				continue
			}
			m := treatmentMatch{keys: make(map[string]struct{}), departments: departmentNames(t.Departments)}
			for _, l := range t.BranchesAvailableAt {
				m.keys[l.Key()] = struct{}{}
				p.treatmentKeys[l.Key()] = struct{}{}
			}
			p.treatments = append(p.treatments, m)
		}
	}
	return p
}

func (p *predicates) locationActive() bool {
	return p.city.Active() || p.state.Active() || p.loc.Active()
}

// citiesMatch applies the city, state and location slots to the cities of
// one place. Address is only consulted by the location slot.
func (p *predicates) citiesMatch(cities []entities.City, address string) bool {
	if p.city.Active() && !slices.ContainsFunc(cities, func(c entities.City) bool { return matchCity(c, p.city) }) {
		return false
	}
	if p.state.Active() && !slices.ContainsFunc(cities, func(c entities.City) bool { return matchState(c, p.state) }) {
		return false
	}
	if p.loc.Active() {
		ok := slices.ContainsFunc(cities, func(c entities.City) bool { return matchLocation(c, p.loc) })
		if !ok && p.loc.Kind() == ByText && address != "" {
			ok = utils.MatchesText(address, p.loc.Query())
		}
		if !ok {
			return false
		}
	}
	return true
}

func (p *predicates) offersTreatment(key string) bool {
	if !p.treat.Active() {
		return true
	}
	_, ok := p.treatmentKeys[key]
	return ok
}

func (p *predicates) filterBranches() []BranchView {
	out := []BranchView{}
	for _, b := range p.ds.Branches {
		if !p.citiesMatch(b.Cities, b.Address) {
			continue
		}
		if !p.offersTreatment(b.Key()) {
			continue
		}
		if p.branch.Active() && !matchBranch(b.ID, b.Name, b.HospitalName, p.branch) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// regroupHospitals rebuilds hospitals from the filtered branches. A
// hospital without a surviving branch is kept only when no location or
// branch slot is active and its own listing satisfies the treatment slot.
func (p *predicates) regroupHospitals(branches []BranchView) []entities.Hospital {
	byHospital := make(map[string][]entities.Branch)
	for _, b := range branches {
		byHospital[b.HospitalID] = append(byHospital[b.HospitalID], b.Branch)
	}

	out := []entities.Hospital{}
	for _, h := range p.ds.Hospitals {
		kept, ok := byHospital[h.ID]
		if !ok {
			if p.locationActive() || p.branch.Active() {
				continue
			}
			if p.treat.Active() && !p.offersTreatment(entities.LocationKey(h.ID, "")) {
				continue
			}
			kept = []entities.Branch{}
		}
		hospital := h
		hospital.Branches = kept
		out = append(out, hospital)
	}
	return out
}

func (p *predicates) filterDoctors() []entities.ExtendedDoctor {
	doctorSlot := p.st.Get(SlotDoctor)
	specSlot := p.st.Get(SlotSpecialization)
	restricted := p.locationActive() || p.treat.Active()

	out := []entities.ExtendedDoctor{}
	for _, d := range p.ds.Doctors {
		if doctorSlot.Active() && !matchDoctor(d, doctorSlot) {
			continue
		}
		if specSlot.Active() && !slices.ContainsFunc(d.Specializations, func(s entities.Specialization) bool {
			return matchNamed(s.ID, s.Name, specSlot)
		}) {
			continue
		}

		// Locations at which some selected treatment is offered and whose
		// departments overlap the doctor's.
		var treatmentKeys map[string]struct{}
		if p.treat.Active() {
			names := departmentNames(d.Departments)
			treatmentKeys = make(map[string]struct{})
			for _, m := range p.treatments {
				if !intersects(names, m.departments) {
					continue
				}
				for _, l := range d.Locations {
					if _, ok := m.keys[l.Key()]; ok {
						treatmentKeys[l.Key()] = struct{}{}
					}
				}
			}
		}

		filtered := []entities.DoctorLocation{}
		for _, l := range d.Locations {
			if !p.citiesMatch(l.Cities, "") {
				continue
			}
			if treatmentKeys != nil {
				if _, ok := treatmentKeys[l.Key()]; !ok {
					continue
				}
			}
			filtered = append(filtered, l)
		}
		if restricted && len(filtered) == 0 {
			continue
		}

		doctor := d
		doctor.FilteredLocations = filtered
		out = append(out, doctor)
	}
	return out
}

func (p *predicates) filterTreatments(doctors []entities.ExtendedDoctor) []entities.ExtendedTreatment {
	deptSlot := p.st.Get(SlotDepartment)

	// In the doctors view a doctor or specialization selection narrows
	// treatments to what the matching doctors can actually deliver.
	var doctorKeys, doctorDepartments map[string]struct{}
	if p.st.View == ViewDoctors && (p.st.Get(SlotDoctor).Active() || p.st.Get(SlotSpecialization).Active()) {
		doctorKeys = make(map[string]struct{})
		doctorDepartments = make(map[string]struct{})
		for _, d := range doctors {
			for _, l := range d.FilteredLocations {
				doctorKeys[l.Key()] = struct{}{}
			}
			for name := range departmentNames(d.Departments) {
				doctorDepartments[name] = struct{}{}
			}
		}
	}
	restricted := p.locationActive() || p.branch.Active() || doctorKeys != nil

	out := []entities.ExtendedTreatment{}
	for _, t := range p.ds.Treatments {
		if p.treat.Active() && !matchTreatment(t.Treatment, p.treat) {
			continue
		}
		if deptSlot.Active() && !slices.ContainsFunc(t.Departments, func(d entities.Department) bool {
			return matchNamed(d.ID, d.Name, deptSlot)
		}) {
			continue
		}
		if doctorDepartments != nil && !intersects(departmentNames(t.Departments), doctorDepartments) {
			continue
		}

		filtered := []entities.TreatmentLocation{}
		for _, l := range t.BranchesAvailableAt {
			if !p.citiesMatch(l.Cities, "") {
				continue
			}
			if p.branch.Active() && !matchBranch(l.BranchID, l.BranchName, l.HospitalName, p.branch) {
				continue
			}
			if doctorKeys != nil {
				if _, ok := doctorKeys[l.Key()]; !ok {
					continue
				}
			}
			filtered = append(filtered, l)
		}
		if restricted && len(filtered) == 0 {
			continue
		}

		treatment := t
		treatment.FilteredBranchesAvailableAt = filtered
		out = append(out, treatment)
	}
	return out
}

func matchCity(c entities.City, f Filter) bool {
	switch f.Kind() {
	case ByID:
		return c.ID == f.ID()
	case ByText:
		return utils.MatchesText(c.Name, f.Query())
	}
	return true
}

// matchState treats a state id as the state name itself; states are not
// entities of their own.
func matchState(c entities.City, f Filter) bool {
	if c.State == "" {
		return false
	}
	switch f.Kind() {
	case ByID:
		return strings.EqualFold(c.State, f.ID())
	case ByText:
		return utils.MatchesText(c.State, f.Query())
	}
	return true
}

func matchLocation(c entities.City, f Filter) bool {
	switch f.Kind() {
	case ByID:
		return c.ID == f.ID() || strings.EqualFold(c.State, f.ID())
	case ByText:
		q := f.Query()
		return utils.MatchesText(c.Name, q) ||
			(c.State != "" && utils.MatchesText(c.State, q)) ||
			(c.Country != "" && utils.MatchesText(c.Country, q))
	}
	return true
}

func matchBranch(id, name, hospitalName string, f Filter) bool {
	switch f.Kind() {
	case ByID:
		return id != "" && id == f.ID()
	case ByText:
		return (name != "" && utils.MatchesText(name, f.Query())) ||
			(hospitalName != "" && utils.MatchesText(hospitalName, f.Query()))
	}
	return true
}

func matchDoctor(d entities.ExtendedDoctor, f Filter) bool {
	switch f.Kind() {
	case ByID:
		return d.BaseID == f.ID() || (d.ID != "" && d.ID == f.ID())
	case ByText:
		return utils.MatchesText(d.Name, f.Query())
	}
	return true
}

func matchTreatment(t entities.Treatment, f Filter) bool {
	return matchNamed(t.ID, t.Name, f)
}

func matchNamed(id, name string, f Filter) bool {
	switch f.Kind() {
	case ByID:
		return id != "" && id == f.ID()
	case ByText:
		return name != "" && utils.MatchesText(name, f.Query())
	}
	return true
}

func departmentNames(departments []entities.Department) map[string]struct{} {
	out := make(map[string]struct{}, len(departments))
	for _, d := range departments {
		if name := utils.NormalizeName(d.Name); name != "" {
			out[name] = struct{}{}
		}
	}
	return out
}

func intersects(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}

// sortEntities applies the sort selector. Popular keeps flagged entities
// in name order; za reverses it.
func sortEntities[T any](items []T, by SortBy, key func(T) (string, bool)) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if _, popular := key(item); by == SortPopular && !popular {
			continue
		}
		out = append(out, item)
	}

	col := newCollator()
	slices.SortStableFunc(out, func(a, b T) int {
		an, _ := key(a)
		bn, _ := key(b)
		c := col.CompareString(an, bn)
		if by == SortZA {
			return -c
		}
		return c
	})
	return out
}

// newCollator returns a fresh collator; collators are not safe for
// concurrent use.
func newCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase)
}
