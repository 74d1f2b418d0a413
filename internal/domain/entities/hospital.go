package entities

// Hospital is the canonical view of a hospital record after the CMS
// mapping layer has resolved field-name alternatives and references.
type Hospital struct {
	ID              string            `json:"_id"`
	Name            string            `json:"name"`
	Slug            string            `json:"slug"`
	Logo            string            `json:"logo,omitempty"`
	YearEstablished string            `json:"yearEstablished,omitempty"`
	Description     string            `json:"description,omitempty"`
	Popular         bool              `json:"popular"`
	Branches        []Branch          `json:"branches"`
	Doctors         []Doctor          `json:"doctors"`
	Treatments      []Treatment       `json:"treatments"`
	Specialists     []SpecialistGroup `json:"specialists,omitempty"`
}

// Branch is a physical location of a hospital.
type Branch struct {
	ID             string            `json:"_id"`
	Name           string            `json:"name"`
	Address        string            `json:"address,omitempty"`
	Image          string            `json:"image,omitempty"`
	Cities         []City            `json:"cities"`
	TotalBeds      int               `json:"totalBeds,omitempty"`
	ICUBeds        int               `json:"icuBeds,omitempty"`
	Doctors        []Doctor          `json:"doctors"`
	Treatments     []Treatment       `json:"treatments"`
	Specialists    []SpecialistGroup `json:"specialists,omitempty"`
	Accreditations []Accreditation   `json:"accreditations,omitempty"`
	Popular        bool              `json:"popular"`
}

// City is referenced (not owned) by branches.
type City struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

// Department groups specializations and treatments ("Heart Care").
type Department struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Specialization of a doctor, optionally carrying the departments and
// treatments it covers.
type Specialization struct {
	ID          string       `json:"_id"`
	Name        string       `json:"name"`
	Departments []Department `json:"departments,omitempty"`
	Treatments  []Treatment  `json:"treatments,omitempty"`
}

// Doctor is a raw doctor occurrence as attached to a hospital or branch.
type Doctor struct {
	ID              string           `json:"_id"`
	Name            string           `json:"name"`
	Specializations []Specialization `json:"specialization"`
	Qualification   string           `json:"qualification,omitempty"`
	Experience      string           `json:"experience,omitempty"`
	ProfileImage    string           `json:"profileImage,omitempty"`
	Popular         bool             `json:"popular"`
}

// Treatment is a raw treatment occurrence.
type Treatment struct {
	ID          string       `json:"_id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Category    string       `json:"category,omitempty"`
	Cost        string       `json:"cost,omitempty"`
	Duration    string       `json:"duration,omitempty"`
	Image       string       `json:"image,omitempty"`
	Popular     bool         `json:"popular"`
	Departments []Department `json:"departments,omitempty"`
}

// SpecialistGroup bundles treatments under a specialization name. It is an
// indirect path between doctors and treatments.
type SpecialistGroup struct {
	ID          string       `json:"_id"`
	Name        string       `json:"name"`
	Departments []Department `json:"departments,omitempty"`
	Treatments  []Treatment  `json:"treatments,omitempty"`
}

// Accreditation awarded to a branch.
type Accreditation struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Identifiable is implemented by every entity that merges by ID.
type Identifiable interface {
	EntityID() string
}

func (h Hospital) EntityID() string        { return h.ID }
func (b Branch) EntityID() string          { return b.ID }
func (c City) EntityID() string            { return c.ID }
func (d Department) EntityID() string      { return d.ID }
func (s Specialization) EntityID() string  { return s.ID }
func (d Doctor) EntityID() string          { return d.ID }
func (t Treatment) EntityID() string       { return t.ID }
func (s SpecialistGroup) EntityID() string { return s.ID }
func (a Accreditation) EntityID() string   { return a.ID }

// MergeByID appends every element of the later lists to base unless an
// element with the same ID is already present. Elements without an ID are
// skipped. The result never aliases base.
func MergeByID[T Identifiable](base []T, lists ...[]T) []T {
	out := make([]T, 0, len(base))
	seen := make(map[string]struct{}, len(base))

	add := func(items []T) {
		for _, item := range items {
			id := item.EntityID()
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, item)
		}
	}

	add(base)
	for _, list := range lists {
		add(list)
	}
	return out
}

// HospitalPage is the paged response of the hospital aggregation route.
type HospitalPage struct {
	Items    []Hospital `json:"items"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
}
