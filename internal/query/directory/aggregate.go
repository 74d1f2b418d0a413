package directory

import (
	"strings"

	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
	"github.com/medtravel/hospitaldirectory/pkg/utils"
)

// BuildExtendedTreatments folds every treatment occurrence (hospital level,
// branch level, or inside a specialist group) into one entry per treatment
// id. Each entry lists the distinct (hospital, branch) locations offering
// it, with the cost and departments seen there.
func BuildExtendedTreatments(hospitals []entities.Hospital) []entities.ExtendedTreatment {
	b := treatmentBuilder{index: make(map[string]int)}

	for _, h := range hospitals {
		for _, t := range h.Treatments {
			b.add(t, h, nil, nil)
		}
		for _, g := range h.Specialists {
			for _, t := range g.Treatments {
				b.add(t, h, nil, g.Departments)
			}
		}
		for i := range h.Branches {
			branch := &h.Branches[i]
			for _, t := range branch.Treatments {
				b.add(t, h, branch, nil)
			}
			for _, g := range branch.Specialists {
				for _, t := range g.Treatments {
					b.add(t, h, branch, g.Departments)
				}
			}
		}
	}

	return b.out
}

type treatmentBuilder struct {
	index map[string]int
	out   []entities.ExtendedTreatment
}

func (b *treatmentBuilder) add(t entities.Treatment, h entities.Hospital, branch *entities.Branch, groupDepartments []entities.Department) {
	if t.ID == "" {
		return
	}

	departments := entities.MergeByID(t.Departments, groupDepartments)
	cost := utils.FirstNonEmpty(t.Cost, entities.PriceVaries)

	i, ok := b.index[t.ID]
	if !ok {
		base := t
		base.Cost = cost
		base.Departments = nil
		b.index[t.ID] = len(b.out)
		b.out = append(b.out, entities.ExtendedTreatment{
			Treatment:           base,
			BranchesAvailableAt: []entities.TreatmentLocation{},
			Departments:         []entities.Department{},
		})
		i = len(b.out) - 1
	}
	entry := &b.out[i]
	fillTreatment(&entry.Treatment, t)

	loc := entities.TreatmentLocation{
		HospitalID:   h.ID,
		HospitalName: h.Name,
		Cities:       []entities.City{},
		Departments:  departments,
		Cost:         cost,
	}
	if branch != nil {
		loc.BranchID = branch.ID
		loc.BranchName = branch.Name
		loc.Cities = cloneCities(branch.Cities)
	}

	if j := treatmentLocationIndex(entry.BranchesAvailableAt, loc.Key()); j >= 0 {
		existing := &entry.BranchesAvailableAt[j]
		existing.Departments = entities.MergeByID(existing.Departments, departments)
	} else {
		entry.BranchesAvailableAt = append(entry.BranchesAvailableAt, loc)
	}
	entry.Departments = entities.MergeByID(entry.Departments, departments)
}

// fillTreatment completes display fields the first sighting left empty.
func fillTreatment(dst *entities.Treatment, src entities.Treatment) {
	if dst.Name == "" {
		dst.Name = src.Name
	}
	if dst.Description == "" {
		dst.Description = src.Description
	}
	if dst.Category == "" {
		dst.Category = src.Category
	}
	if dst.Duration == "" {
		dst.Duration = src.Duration
	}
	if dst.Image == "" {
		dst.Image = src.Image
	}
	dst.Popular = dst.Popular || src.Popular
}

func treatmentLocationIndex(locs []entities.TreatmentLocation, key string) int {
	for i, l := range locs {
		if l.Key() == key {
			return i
		}
	}
	return -1
}

// BuildExtendedDoctors folds every doctor occurrence into one entry per
// doctor identity, with the distinct locations the doctor practises at and
// the union of departments and related treatments across them.
func BuildExtendedDoctors(hospitals []entities.Hospital) []entities.ExtendedDoctor {
	b := doctorBuilder{index: make(map[string]int)}

	for _, h := range hospitals {
		for _, d := range h.Doctors {
			b.add(d, h, nil)
		}
		for i := range h.Branches {
			branch := &h.Branches[i]
			for _, d := range branch.Doctors {
				b.add(d, h, branch)
			}
		}
	}

	return b.out
}

// DoctorIdentity keys a doctor occurrence. Doctors without an id are keyed
// by name scoped to the hospital listing them, so two unrelated id-less
// doctors sharing a name at different hospitals stay distinct.
func DoctorIdentity(d entities.Doctor, hospitalID string) string {
	if d.ID != "" {
		return d.ID
	}
	slug := utils.GenerateSlug(d.Name)
	if slug == "" {
		return ""
	}
	return "name:" + slug + "@" + hospitalID
}

type doctorBuilder struct {
	index map[string]int
	out   []entities.ExtendedDoctor
}

func (b *doctorBuilder) add(d entities.Doctor, h entities.Hospital, branch *entities.Branch) {
	key := DoctorIdentity(d, h.ID)
	if key == "" {
		return
	}

	departments := doctorDepartments(d)
	treatments := doctorTreatments(d, h, branch)

	loc := entities.DoctorLocation{
		HospitalID:   h.ID,
		HospitalName: h.Name,
		Cities:       []entities.City{},
	}
	if branch != nil {
		loc.BranchID = branch.ID
		loc.BranchName = branch.Name
		loc.Cities = cloneCities(branch.Cities)
	}

	i, ok := b.index[key]
	if !ok {
		b.index[key] = len(b.out)
		b.out = append(b.out, entities.ExtendedDoctor{
			Doctor:            d,
			BaseID:            key,
			Locations:         []entities.DoctorLocation{loc},
			Departments:       departments,
			RelatedTreatments: treatments,
		})
		return
	}

	entry := &b.out[i]
	if !hasDoctorLocation(entry.Locations, loc.Key()) {
		entry.Locations = append(entry.Locations, loc)
	}
	entry.Departments = entities.MergeByID(entry.Departments, departments)
	entry.RelatedTreatments = entities.MergeByID(entry.RelatedTreatments, treatments)
	entry.Specializations = entities.MergeByID(entry.Specializations, d.Specializations)
	entry.Popular = entry.Popular || d.Popular
}

func doctorDepartments(d entities.Doctor) []entities.Department {
	out := []entities.Department{}
	for _, s := range d.Specializations {
		out = entities.MergeByID(out, s.Departments)
	}
	return out
}

// doctorTreatments merges, in order, the branch's treatments, the
// hospital's treatments, treatments nested in the doctor's specializations,
// and treatments of specialist groups named after one of them.
func doctorTreatments(d entities.Doctor, h entities.Hospital, branch *entities.Branch) []entities.Treatment {
	lists := make([][]entities.Treatment, 0, 4)
	if branch != nil {
		lists = append(lists, branch.Treatments)
	}
	lists = append(lists, h.Treatments)

	specNames := make(map[string]struct{}, len(d.Specializations))
	for _, s := range d.Specializations {
		lists = append(lists, s.Treatments)
		if name := strings.ToLower(strings.TrimSpace(s.Name)); name != "" {
			specNames[name] = struct{}{}
		}
	}

	groups := h.Specialists
	if branch != nil {
		groups = append(append([]entities.SpecialistGroup{}, h.Specialists...), branch.Specialists...)
	}
	for _, g := range groups {
		if _, ok := specNames[strings.ToLower(strings.TrimSpace(g.Name))]; ok {
			lists = append(lists, g.Treatments)
		}
	}

	return entities.MergeByID([]entities.Treatment{}, lists...)
}

func hasDoctorLocation(locs []entities.DoctorLocation, key string) bool {
	for _, l := range locs {
		if l.Key() == key {
			return true
		}
	}
	return false
}

func cloneCities(cities []entities.City) []entities.City {
	out := make([]entities.City, len(cities))
	copy(out, cities)
	return out
}
