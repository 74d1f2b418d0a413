package providers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// CMS collection names.
const (
	CollectionHospitals       = "HospitalMaster"
	CollectionBranches        = "BranchesMaster"
	CollectionDoctors         = "DoctorMaster"
	CollectionCities          = "CityMaster"
	CollectionTreatments      = "TreatmentMaster"
	CollectionSpecialists     = "SpecialistsMaster"
	CollectionSpecializations = "Specialization"
	CollectionDepartments     = "Department"
	CollectionAccreditations  = "Accreditation"
	CollectionBlogPosts       = "Blog/Posts"
	CollectionAlbums          = "PhotoAlbums"
)

// FilterOp is a single-field CMS filter operator.
type FilterOp string

const (
	OpEq       FilterOp = "$eq"
	OpContains FilterOp = "$contains"
	OpHasSome  FilterOp = "$hasSome"
)

// CMSFilter is one field predicate. Contains matches substrings of a single
// field; HasSome matches array or reference fields containing any value.
type CMSFilter struct {
	Field  string   `json:"field"`
	Op     FilterOp `json:"op"`
	Value  string   `json:"value,omitempty"`
	Values []string `json:"values,omitempty"`
}

// CMSSort orders results by a field.
type CMSSort struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending,omitempty"`
}

// CMSQuery is a collection query. Filters are ANDed together.
type CMSQuery struct {
	Collection string      `json:"collection"`
	Filters    []CMSFilter `json:"filters,omitempty"`
	Includes   []string    `json:"includes,omitempty"`
	Sort       []CMSSort   `json:"sort,omitempty"`
	LimitN     int         `json:"limit,omitempty"`
	SkipN      int         `json:"skip,omitempty"`
}

// NewQuery starts a query against a collection.
func NewQuery(collection string) *CMSQuery {
	return &CMSQuery{Collection: collection}
}

// Eq adds an equality filter.
func (q *CMSQuery) Eq(field, value string) *CMSQuery {
	q.Filters = append(q.Filters, CMSFilter{Field: field, Op: OpEq, Value: value})
	return q
}

// Contains adds a case-insensitive substring filter on one field.
func (q *CMSQuery) Contains(field, value string) *CMSQuery {
	q.Filters = append(q.Filters, CMSFilter{Field: field, Op: OpContains, Value: value})
	return q
}

// HasSome adds an array-contains-any filter.
func (q *CMSQuery) HasSome(field string, values ...string) *CMSQuery {
	q.Filters = append(q.Filters, CMSFilter{Field: field, Op: OpHasSome, Values: values})
	return q
}

// Include expands reference fields in the result.
func (q *CMSQuery) Include(fields ...string) *CMSQuery {
	q.Includes = append(q.Includes, fields...)
	return q
}

// Limit caps the number of returned items.
func (q *CMSQuery) Limit(n int) *CMSQuery {
	q.LimitN = n
	return q
}

// Skip offsets the result window.
func (q *CMSQuery) Skip(n int) *CMSQuery {
	q.SkipN = n
	return q
}

// Ascending sorts by field, ascending.
func (q *CMSQuery) Ascending(field string) *CMSQuery {
	q.Sort = append(q.Sort, CMSSort{Field: field})
	return q
}

// Descending sorts by field, descending.
func (q *CMSQuery) Descending(field string) *CMSQuery {
	q.Sort = append(q.Sort, CMSSort{Field: field, Descending: true})
	return q
}

// Key returns a stable hash of the query, used as a cache key.
func (q *CMSQuery) Key() string {
	data, _ := json.Marshal(q)
	sum := sha256.Sum256(data)
	return q.Collection + ":" + hex.EncodeToString(sum[:12])
}

// CMSItem is a raw CMS record. Reference fields are either an id string,
// an object carrying _id, or an array of either.
type CMSItem map[string]any

// ID returns the item's _id.
func (i CMSItem) ID() string {
	if id, ok := i["_id"].(string); ok {
		return id
	}
	return ""
}

// CMSResult is one page of a query.
type CMSResult struct {
	Items      []CMSItem `json:"items"`
	TotalCount int       `json:"totalCount"`
}

// CMSProvider runs collection queries against the content store.
type CMSProvider interface {
	Query(ctx context.Context, q *CMSQuery) (*CMSResult, error)
}
