package entities

// DirectoryKind is the entity kind of a search document.
type DirectoryKind string

const (
	DirectoryKindHospital  DirectoryKind = "hospital"
	DirectoryKindDoctor    DirectoryKind = "doctor"
	DirectoryKindTreatment DirectoryKind = "treatment"
)

// DirectoryDocument is what the suggestion index stores per entity.
type DirectoryDocument struct {
	ID       string        `json:"id"`
	EntityID string        `json:"entity_id"`
	Kind     DirectoryKind `json:"kind"`
	Name     string        `json:"name"`
	Slug     string        `json:"slug"`
	Cities   []string      `json:"cities"`
	Context  string        `json:"context,omitempty"`
	Popular  bool          `json:"popular"`
}

// Suggestion is a type-ahead result.
type Suggestion struct {
	ID      string        `json:"id"`
	Kind    DirectoryKind `json:"kind"`
	Name    string        `json:"name"`
	Slug    string        `json:"slug"`
	Context string        `json:"context,omitempty"`
}
