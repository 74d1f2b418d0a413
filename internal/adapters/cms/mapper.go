package cms

import (
	"time"

	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
	"github.com/medtravel/hospitaldirectory/internal/domain/providers"
	"github.com/medtravel/hospitaldirectory/pkg/utils"
)

// Ordered field-name alternatives per concept. The first present field wins.
var (
	HospitalNameFields    = []string{"hospitalName", "name", "title"}
	BranchNameFields      = []string{"branchName", "name", "title"}
	DoctorNameFields      = []string{"doctorName", "name", "title"}
	CityNameFields        = []string{"cityName", "name", "title"}
	TreatmentNameFields   = []string{"treatmentName", "name", "title"}
	DepartmentNameFields  = []string{"department", "departmentName", "name", "title"}
	SpecializationFields  = []string{"specialization", "name", "title"}
	SpecialistGroupFields = []string{"specialty", "specialization", "name", "title"}

	CityRefFields           = []string{"city", "cities"}
	DoctorRefFields         = []string{"doctor", "doctors"}
	TreatmentRefFields      = []string{"treatment", "treatments"}
	SpecialistRefFields     = []string{"specialists", "specialist"}
	SpecializationRefFields = []string{"specialization", "specializations", "speciality"}
	DepartmentRefFields     = []string{"department", "departments"}
	AccreditationRefFields  = []string{"accreditation", "accreditations"}

	// BranchHospitalFields are the back-reference shapes linking a branch
	// to its owning hospital.
	BranchHospitalFields = []string{"hospital", "hospitalMaster", "HospitalMaster_branches", "hospitalGroup"}
)

// Lookup holds bulk-fetched referenced records by collection and id.
type Lookup struct {
	items map[string]map[string]providers.CMSItem
}

// NewLookup creates an empty lookup.
func NewLookup() *Lookup {
	return &Lookup{items: make(map[string]map[string]providers.CMSItem)}
}

// Add registers items of a collection.
func (l *Lookup) Add(collection string, items ...providers.CMSItem) {
	byID := l.items[collection]
	if byID == nil {
		byID = make(map[string]providers.CMSItem, len(items))
		l.items[collection] = byID
	}
	for _, item := range items {
		if id := item.ID(); id != "" {
			byID[id] = item
		}
	}
}

// Get returns the record of collection with id.
func (l *Lookup) Get(collection, id string) (providers.CMSItem, bool) {
	if l == nil {
		return nil, false
	}
	item, ok := l.items[collection][id]
	return item, ok
}

// resolve turns a reference field into records: expanded references are
// used as-is, bare ids go through the lookup, and misses fall back to the
// unresolved stub so a failed bulk fetch only costs display richness.
func (l *Lookup) resolve(collection string, value any) []providers.CMSItem {
	refs := NormalizeRefs(value)
	out := make([]providers.CMSItem, 0, len(refs))
	for _, ref := range refs {
		if ref.Expanded() {
			out = append(out, ref.Item)
			continue
		}
		if item, ok := l.Get(collection, ref.ID); ok {
			out = append(out, item)
			continue
		}
		out = append(out, ref.Item)
	}
	return out
}

// MapHospital maps a hospital record. Branches are mapped separately
// because they come from their own collection.
func MapHospital(item providers.CMSItem, lk *Lookup, branches []entities.Branch) entities.Hospital {
	name := text(item, HospitalNameFields...)
	if branches == nil {
		branches = []entities.Branch{}
	}
	return entities.Hospital{
		ID:              item.ID(),
		Name:            name,
		Slug:            utils.FirstNonEmpty(text(item, "slug"), utils.GenerateSlug(name)),
		Logo:            utils.ImageURL(text(item, "logo", "hospitalLogo", "image")),
		YearEstablished: text(item, "yearEstablished", "establishedYear", "established"),
		Description:     utils.ShortDescription(lookup(item, "description", "about"), descriptionLength),
		Popular:         boolean(item, "popular", "isPopular"),
		Branches:        branches,
		Doctors:         mapDoctors(lk.resolve(providers.CollectionDoctors, lookup(item, DoctorRefFields...)), lk),
		Treatments:      mapTreatments(lk.resolve(providers.CollectionTreatments, lookup(item, TreatmentRefFields...)), lk),
		Specialists:     mapSpecialistGroups(lk.resolve(providers.CollectionSpecialists, lookup(item, SpecialistRefFields...)), lk),
	}
}

const descriptionLength = 600

// MapBranch maps a branch record with its resolved references.
func MapBranch(item providers.CMSItem, lk *Lookup) entities.Branch {
	cities := lk.resolve(providers.CollectionCities, lookup(item, CityRefFields...))
	accreditations := lk.resolve(providers.CollectionAccreditations, lookup(item, AccreditationRefFields...))

	branch := entities.Branch{
		ID:             item.ID(),
		Name:           text(item, BranchNameFields...),
		Address:        text(item, "address", "branchAddress"),
		Image:          utils.ImageURL(text(item, "branchImage", "image")),
		Cities:         make([]entities.City, 0, len(cities)),
		TotalBeds:      integer(item, "totalBeds", "beds"),
		ICUBeds:        integer(item, "icuBeds", "icuBedsCount"),
		Doctors:        mapDoctors(lk.resolve(providers.CollectionDoctors, lookup(item, DoctorRefFields...)), lk),
		Treatments:     mapTreatments(lk.resolve(providers.CollectionTreatments, lookup(item, TreatmentRefFields...)), lk),
		Specialists:    mapSpecialistGroups(lk.resolve(providers.CollectionSpecialists, lookup(item, SpecialistRefFields...)), lk),
		Accreditations: make([]entities.Accreditation, 0, len(accreditations)),
		Popular:        boolean(item, "popular", "isPopular"),
	}
	for _, c := range cities {
		branch.Cities = append(branch.Cities, MapCity(c))
	}
	for _, a := range accreditations {
		branch.Accreditations = append(branch.Accreditations, MapAccreditation(a))
	}
	return branch
}

// BranchHospitalIDs extracts the owning hospital ids of a branch.
func BranchHospitalIDs(item providers.CMSItem) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, field := range BranchHospitalFields {
		for _, id := range RefIDs(item[field]) {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// MapCity maps a city record.
func MapCity(item providers.CMSItem) entities.City {
	return entities.City{
		ID:      item.ID(),
		Name:    text(item, CityNameFields...),
		State:   text(item, "state", "stateName"),
		Country: text(item, "country", "countryName"),
	}
}

// MapDoctor maps a doctor with its specializations.
func MapDoctor(item providers.CMSItem, lk *Lookup) entities.Doctor {
	specs := lk.resolve(providers.CollectionSpecializations, lookup(item, SpecializationRefFields...))
	doctor := entities.Doctor{
		ID:              item.ID(),
		Name:            text(item, DoctorNameFields...),
		Specializations: make([]entities.Specialization, 0, len(specs)),
		Qualification:   text(item, "qualification", "qualifications"),
		Experience:      text(item, "experienceYears", "experience"),
		ProfileImage:    utils.ImageURL(text(item, "profileImage", "image", "photo")),
		Popular:         boolean(item, "popular", "isPopular"),
	}
	for _, s := range specs {
		doctor.Specializations = append(doctor.Specializations, MapSpecialization(s, lk))
	}
	return doctor
}

// MapSpecialization maps a specialization with nested departments and
// treatments.
func MapSpecialization(item providers.CMSItem, lk *Lookup) entities.Specialization {
	return entities.Specialization{
		ID:          item.ID(),
		Name:        text(item, SpecializationFields...),
		Departments: mapDepartments(lk.resolve(providers.CollectionDepartments, lookup(item, DepartmentRefFields...))),
		Treatments:  mapTreatments(lk.resolve(providers.CollectionTreatments, lookup(item, TreatmentRefFields...)), lk),
	}
}

// MapTreatment maps a treatment occurrence.
func MapTreatment(item providers.CMSItem, lk *Lookup) entities.Treatment {
	return entities.Treatment{
		ID:          item.ID(),
		Name:        text(item, TreatmentNameFields...),
		Description: utils.ShortDescription(lookup(item, "description", "treatmentDescription"), utils.DefaultExcerptLength),
		Category:    text(item, "category", "treatmentCategory"),
		Cost:        text(item, "cost", "averageCost", "price"),
		Duration:    text(item, "duration", "treatmentDuration"),
		Image:       utils.ImageURL(text(item, "treatmentImage", "image")),
		Popular:     boolean(item, "popular", "isPopular"),
		Departments: mapDepartments(lk.resolve(providers.CollectionDepartments, lookup(item, DepartmentRefFields...))),
	}
}

// MapSpecialistGroup maps a specialist grouping.
func MapSpecialistGroup(item providers.CMSItem, lk *Lookup) entities.SpecialistGroup {
	return entities.SpecialistGroup{
		ID:          item.ID(),
		Name:        text(item, SpecialistGroupFields...),
		Departments: mapDepartments(lk.resolve(providers.CollectionDepartments, lookup(item, DepartmentRefFields...))),
		Treatments:  mapTreatments(lk.resolve(providers.CollectionTreatments, lookup(item, TreatmentRefFields...)), lk),
	}
}

// MapDepartment maps a department record.
func MapDepartment(item providers.CMSItem) entities.Department {
	return entities.Department{ID: item.ID(), Name: text(item, DepartmentNameFields...)}
}

// MapAccreditation maps an accreditation record.
func MapAccreditation(item providers.CMSItem) entities.Accreditation {
	return entities.Accreditation{
		ID:    item.ID(),
		Name:  text(item, "title", "name"),
		Image: utils.ImageURL(text(item, "image", "logo")),
	}
}

// MapBlogPost maps a blog post for cards and detail pages.
func MapBlogPost(item providers.CMSItem) entities.BlogPost {
	title := text(item, "title")
	content := lookup(item, "richContent", "content")
	excerpt := text(item, "excerpt")
	if excerpt == "" {
		excerpt = utils.ShortDescription(lookup(item, "richContent", "content", "plainContent"), utils.DefaultExcerptLength)
	} else {
		excerpt = utils.ShortDescription(excerpt, utils.DefaultExcerptLength)
	}
	return entities.BlogPost{
		ID:          item.ID(),
		Title:       title,
		Slug:        utils.FirstNonEmpty(text(item, "slug"), utils.GenerateSlug(title)),
		Excerpt:     excerpt,
		CoverImage:  utils.ImageURL(text(item, "coverImage", "media", "image")),
		Author:      text(item, "author", "authorName"),
		Tags:        stringList(item, "hashtags", "tags"),
		PublishedAt: timestamp(item, "firstPublishedDate", "publishedDate", "_createdDate"),
		Content:     content,
	}
}

// MapAlbum maps a photo album. Photos may be plain media strings or
// objects carrying src and a description.
func MapAlbum(item providers.CMSItem) entities.PhotoAlbum {
	title := text(item, "title", "name")
	album := entities.PhotoAlbum{
		ID:     item.ID(),
		Title:  title,
		Slug:   utils.FirstNonEmpty(text(item, "slug"), utils.GenerateSlug(title)),
		Photos: []entities.AlbumPhoto{},
	}

	if raw, ok := lookup(item, "photos", "images", "mediagallery").([]any); ok {
		for _, elem := range raw {
			var photo entities.AlbumPhoto
			switch v := elem.(type) {
			case string:
				photo.URL = utils.ImageURL(v)
			case map[string]any:
				m := providers.CMSItem(v)
				photo.URL = utils.ImageURL(text(m, "src", "url", "image"))
				photo.Caption = text(m, "description", "title", "alt")
			}
			if photo.URL != "" {
				album.Photos = append(album.Photos, photo)
			}
		}
	}

	album.Cover = utils.ImageURL(text(item, "coverImage", "cover"))
	if album.Cover == "" && len(album.Photos) > 0 {
		album.Cover = album.Photos[0].URL
	}
	return album
}

func mapDoctors(items []providers.CMSItem, lk *Lookup) []entities.Doctor {
	out := make([]entities.Doctor, 0, len(items))
	for _, item := range items {
		out = append(out, MapDoctor(item, lk))
	}
	return out
}

func mapTreatments(items []providers.CMSItem, lk *Lookup) []entities.Treatment {
	out := make([]entities.Treatment, 0, len(items))
	for _, item := range items {
		out = append(out, MapTreatment(item, lk))
	}
	return out
}

func mapSpecialistGroups(items []providers.CMSItem, lk *Lookup) []entities.SpecialistGroup {
	out := make([]entities.SpecialistGroup, 0, len(items))
	for _, item := range items {
		out = append(out, MapSpecialistGroup(item, lk))
	}
	return out
}

func mapDepartments(items []providers.CMSItem) []entities.Department {
	out := make([]entities.Department, 0, len(items))
	for _, item := range items {
		out = append(out, MapDepartment(item))
	}
	return out
}

func timestamp(item providers.CMSItem, fields ...string) *time.Time {
	var raw string
	switch v := lookup(item, fields...).(type) {
	case string:
		raw = v
	case map[string]any:
		raw, _ = v["$date"].(string)
	}
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}
