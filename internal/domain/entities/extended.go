package entities

// PriceVaries is shown when a treatment occurrence carries no cost.
const PriceVaries = "Price Varies"

// NoBranch stands in for the branch ID of hospital-level attachments in
// location deduplication keys.
const NoBranch = "no-branch"

// DoctorLocation is a (hospital, branch, cities) tuple where a doctor
// practises. BranchID is empty for hospital-level listings.
type DoctorLocation struct {
	HospitalID   string `json:"hospitalId"`
	HospitalName string `json:"hospitalName"`
	BranchID     string `json:"branchId,omitempty"`
	BranchName   string `json:"branchName,omitempty"`
	Cities       []City `json:"cities"`
}

// Key returns the deduplication key of the location.
func (l DoctorLocation) Key() string {
	return LocationKey(l.HospitalID, l.BranchID)
}

// TreatmentLocation is a place a treatment is offered, with the
// departments and cost that apply there.
type TreatmentLocation struct {
	HospitalID   string       `json:"hospitalId"`
	HospitalName string       `json:"hospitalName"`
	BranchID     string       `json:"branchId,omitempty"`
	BranchName   string       `json:"branchName,omitempty"`
	Cities       []City       `json:"cities"`
	Departments  []Department `json:"departments"`
	Cost         string       `json:"cost"`
}

// Key returns the deduplication key of the location.
func (l TreatmentLocation) Key() string {
	return LocationKey(l.HospitalID, l.BranchID)
}

// LocationKey builds the (hospitalId, branchId-or-"no-branch") key.
func LocationKey(hospitalID, branchID string) string {
	if branchID == "" {
		branchID = NoBranch
	}
	return hospitalID + "|" + branchID
}

// ExtendedDoctor is one distinct doctor aggregated across every hospital
// and branch listing it.
type ExtendedDoctor struct {
	Doctor
	BaseID            string           `json:"baseId"`
	Locations         []DoctorLocation `json:"locations"`
	Departments       []Department     `json:"departments"`
	RelatedTreatments []Treatment      `json:"relatedTreatments"`

	// FilteredLocations is set by the filter engine to the locations that
	// satisfy the active location predicates.
	FilteredLocations []DoctorLocation `json:"filteredLocations,omitempty"`
}

// ExtendedTreatment is one distinct treatment aggregated across every
// hospital, branch and specialist group offering it.
type ExtendedTreatment struct {
	Treatment
	BranchesAvailableAt []TreatmentLocation `json:"branchesAvailableAt"`
	Departments         []Department        `json:"departments"`

	// FilteredBranchesAvailableAt is set by the filter engine.
	FilteredBranchesAvailableAt []TreatmentLocation `json:"filteredBranchesAvailableAt,omitempty"`
}
