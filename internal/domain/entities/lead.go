package entities

import "time"

// LeadKind distinguishes the website forms a lead came from.
type LeadKind string

const (
	LeadKindEnquiry  LeadKind = "enquiry"
	LeadKindCallback LeadKind = "callback"
	LeadKindQuote    LeadKind = "quote"
)

// Valid reports whether k is a known lead kind.
func (k LeadKind) Valid() bool {
	switch k {
	case LeadKindEnquiry, LeadKindCallback, LeadKindQuote:
		return true
	}
	return false
}

// Lead is a patient enquiry captured by one of the website forms.
type Lead struct {
	ID          string    `json:"id" db:"id"`
	Kind        LeadKind  `json:"kind" db:"kind"`
	Name        string    `json:"name" db:"name"`
	Email       string    `json:"email" db:"email"`
	Phone       string    `json:"phone" db:"phone"`
	Country     string    `json:"country" db:"country"`
	Message     string    `json:"message" db:"message"`
	HospitalID  string    `json:"hospital_id,omitempty" db:"hospital_id"`
	DoctorID    string    `json:"doctor_id,omitempty" db:"doctor_id"`
	TreatmentID string    `json:"treatment_id,omitempty" db:"treatment_id"`
	Page        string    `json:"page" db:"page"`
	UserAgent   string    `json:"user_agent" db:"user_agent"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
