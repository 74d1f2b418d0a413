package services

import (
	"context"
	"sort"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/medtravel/hospitaldirectory/internal/adapters/cms"
	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
	"github.com/medtravel/hospitaldirectory/internal/domain/providers"
	"github.com/medtravel/hospitaldirectory/internal/infrastructure/observability"
	apperrors "github.com/medtravel/hospitaldirectory/pkg/errors"
)

const (
	// DefaultPageSize applies when a caller does not ask for one.
	DefaultPageSize = 20
	// MaxPageSize caps pageSize on the hospital route.
	MaxPageSize = 50

	// probeLimit bounds each free-text and back-reference probe.
	probeLimit = 1000
	// maxReferenceDepth bounds how many hops of references are resolved,
	// enough for hospital -> doctor -> specialization -> department.
	maxReferenceDepth = 4
)

// HospitalQuery is the input of the hospital aggregation route. Each of
// city, doctor and treatment may be given as an id, as free text, or both.
type HospitalQuery struct {
	Q           string
	CityID      string
	DoctorID    string
	TreatmentID string
	City        string
	Doctor      string
	Treatment   string
	HospitalID  string
	Page        int
	PageSize    int
}

// HospitalService aggregates hospitals with their branches, doctors and
// treatments out of the CMS collections.
type HospitalService struct {
	cms         providers.CMSProvider
	maxPageSize int
}

// NewHospitalService creates a hospital service over a CMS provider.
func NewHospitalService(provider providers.CMSProvider, maxPageSize int) *HospitalService {
	if maxPageSize <= 0 || maxPageSize > MaxPageSize {
		maxPageSize = MaxPageSize
	}
	return &HospitalService{cms: provider, maxPageSize: maxPageSize}
}

// Search resolves the query to a page of fully populated hospitals.
func (s *HospitalService) Search(ctx context.Context, q HospitalQuery) (*entities.HospitalPage, error) {
	ctx, span := observability.StartSpan(ctx, "HospitalService.Search",
		attribute.String("query.q", q.Q),
		attribute.Int("query.page", q.Page),
	)
	defer span.End()

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > s.maxPageSize {
		q.PageSize = s.maxPageSize
	}
	page := &entities.HospitalPage{Items: []entities.Hospital{}, Page: q.Page, PageSize: q.PageSize}

	// 1. Free text to candidate ids.
	var cityIDs, doctorIDs, treatmentIDs, nameIDs idSet
	var g errgroup.Group
	g.Go(func() error {
		cityIDs = s.candidateIDs(ctx, providers.CollectionCities, cms.CityNameFields, q.CityID, q.City)
		return nil
	})
	g.Go(func() error {
		doctorIDs = s.candidateIDs(ctx, providers.CollectionDoctors, cms.DoctorNameFields, q.DoctorID, q.Doctor)
		return nil
	})
	g.Go(func() error {
		treatmentIDs = s.candidateIDs(ctx, providers.CollectionTreatments, cms.TreatmentNameFields, q.TreatmentID, q.Treatment)
		return nil
	})
	g.Go(func() error {
		nameIDs = s.candidateIDs(ctx, providers.CollectionHospitals, cms.HospitalNameFields, "", q.Q)
		return nil
	})
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, ids := range []idSet{cityIDs, doctorIDs, treatmentIDs, nameIDs} {
		if ids != nil && len(ids) == 0 {
			return page, nil
		}
	}

	// 2. Hospitals owning a branch that references every requested entity.
	var hospitalIDs idSet
	if cityIDs != nil || doctorIDs != nil || treatmentIDs != nil {
		branches := s.branchesReferencing(ctx, []referenceFilter{
			{fields: cms.CityRefFields, ids: cityIDs},
			{fields: cms.DoctorRefFields, ids: doctorIDs},
			{fields: cms.TreatmentRefFields, ids: treatmentIDs},
		})
		hospitalIDs = idSet{}
		for _, b := range branches {
			hospitalIDs.add(cms.BranchHospitalIDs(b)...)
		}
	}
	if q.HospitalID != "" {
		hospitalIDs = hospitalIDs.intersect(newIDSet(q.HospitalID))
	}
	hospitalIDs = hospitalIDs.intersect(nameIDs)
	if hospitalIDs != nil && len(hospitalIDs) == 0 {
		return page, nil
	}

	// 3. The page of hospitals.
	hq := providers.NewQuery(providers.CollectionHospitals).
		Ascending(cms.HospitalNameFields[0]).
		Skip((q.Page - 1) * q.PageSize).
		Limit(q.PageSize)
	if hospitalIDs != nil {
		hq.HasSome("_id", hospitalIDs.sorted()...)
	}
	res, err := s.cms.Query(ctx, hq)
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewExternalError("failed to query hospitals", err)
	}
	page.Total = res.TotalCount
	if len(res.Items) == 0 {
		return page, nil
	}

	// 4. Every branch of those hospitals, references expanded.
	pageIDs := make([]string, 0, len(res.Items))
	for _, item := range res.Items {
		pageIDs = append(pageIDs, item.ID())
	}
	branchItems, err := s.branchesOf(ctx, pageIDs)
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewExternalError("failed to query branches", err)
	}

	// 5. Bulk-resolve whatever the expansion left as bare ids.
	lk := s.resolveReferences(ctx, map[string][]providers.CMSItem{
		providers.CollectionHospitals: res.Items,
		providers.CollectionBranches:  branchItems,
	})

	onPage := newIDSet(pageIDs...)
	branchesByHospital := make(map[string][]entities.Branch, len(pageIDs))
	for _, item := range branchItems {
		branch := cms.MapBranch(item, lk)
		// 6. The branch fetch ignores the city and treatment filters.
		if !branchMatches(branch, cityIDs, treatmentIDs) {
			continue
		}
		for _, hid := range cms.BranchHospitalIDs(item) {
			if onPage.has(hid) {
				branchesByHospital[hid] = append(branchesByHospital[hid], branch)
			}
		}
	}

	// 7. Hospital doctor and treatment lists include their branches'.
	for _, item := range res.Items {
		hospital := cms.MapHospital(item, lk, branchesByHospital[item.ID()])
		doctors := make([][]entities.Doctor, 0, len(hospital.Branches))
		treatments := make([][]entities.Treatment, 0, len(hospital.Branches))
		for _, b := range hospital.Branches {
			doctors = append(doctors, b.Doctors)
			treatments = append(treatments, b.Treatments)
		}
		hospital.Doctors = entities.MergeByID(hospital.Doctors, doctors...)
		hospital.Treatments = entities.MergeByID(hospital.Treatments, treatments...)
		page.Items = append(page.Items, hospital)
	}

	span.SetAttributes(attribute.Int("result.count", len(page.Items)), attribute.Int("result.total", page.Total))
	return page, nil
}

// ListAll pages through every hospital.
func (s *HospitalService) ListAll(ctx context.Context) ([]entities.Hospital, error) {
	var out []entities.Hospital
	for pageNum := 1; ; pageNum++ {
		page, err := s.Search(ctx, HospitalQuery{Page: pageNum, PageSize: s.maxPageSize})
		if err != nil {
			return nil, err
		}
		out = append(out, page.Items...)
		if len(page.Items) < page.PageSize || len(out) >= page.Total {
			break
		}
	}
	if out == nil {
		out = []entities.Hospital{}
	}
	return out, nil
}

// candidateIDs returns nil when neither id nor text is given, otherwise the
// id plus every record whose name fields contain text.
func (s *HospitalService) candidateIDs(ctx context.Context, collection string, fields []string, id, text string) idSet {
	if id == "" && text == "" {
		return nil
	}
	out := idSet{}
	if id != "" {
		out.add(id)
	}
	if text != "" {
		out.add(s.probe(ctx, collection, fields, func(q *providers.CMSQuery, field string) {
			q.Contains(field, text)
		})...)
	}
	return out
}

// probe runs one query per field alternative, since the CMS only filters
// on a single field at a time, and returns the union of matched ids. A
// failing field is logged and skipped.
func (s *HospitalService) probe(ctx context.Context, collection string, fields []string, filter func(*providers.CMSQuery, string)) []string {
	items := s.probeItems(ctx, collection, fields, nil, filter)
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID())
	}
	return ids
}

func (s *HospitalService) probeItems(ctx context.Context, collection string, fields, includes []string, filter func(*providers.CMSQuery, string)) []providers.CMSItem {
	logger := observability.LoggerFromContext(ctx)

	var mu sync.Mutex
	byID := make(map[string]providers.CMSItem)
	var g errgroup.Group
	for _, field := range fields {
		g.Go(func() error {
			q := providers.NewQuery(collection).Limit(probeLimit)
			if len(includes) > 0 {
				q.Include(includes...)
			}
			filter(q, field)
			res, err := s.cms.Query(ctx, q)
			if err != nil {
				logger.Warn().Err(err).Str("collection", collection).Str("field", field).Msg("CMS field probe failed")
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			for _, item := range res.Items {
				if id := item.ID(); id != "" {
					byID[id] = item
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]providers.CMSItem, 0, len(byID))
	for _, item := range byID {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

type referenceFilter struct {
	fields []string
	ids    idSet
}

// branchesReferencing returns the branches that reference at least one id
// of every active filter.
func (s *HospitalService) branchesReferencing(ctx context.Context, filters []referenceFilter) []providers.CMSItem {
	var matched map[string]providers.CMSItem
	for _, f := range filters {
		if f.ids == nil {
			continue
		}
		ids := f.ids.sorted()
		items := s.probeItems(ctx, providers.CollectionBranches, f.fields, nil, func(q *providers.CMSQuery, field string) {
			q.HasSome(field, ids...)
		})

		next := make(map[string]providers.CMSItem, len(items))
		for _, item := range items {
			if _, ok := matched[item.ID()]; matched == nil || ok {
				next[item.ID()] = item
			}
		}
		matched = next
		if len(matched) == 0 {
			break
		}
	}

	out := make([]providers.CMSItem, 0, len(matched))
	for _, item := range matched {
		out = append(out, item)
	}
	return out
}

// branchIncludes are the branch references expanded in place.
var branchIncludes = []string{"city", "doctor", "treatment", "specialists", "accreditation"}

// branchesOf fetches every branch pointing back at one of the hospitals,
// trying each back-reference field the CMS has used.
func (s *HospitalService) branchesOf(ctx context.Context, hospitalIDs []string) ([]providers.CMSItem, error) {
	var mu sync.Mutex
	byID := make(map[string]providers.CMSItem)

	g, gctx := errgroup.WithContext(ctx)
	for _, field := range cms.BranchHospitalFields {
		g.Go(func() error {
			q := providers.NewQuery(providers.CollectionBranches).
				HasSome(field, hospitalIDs...).
				Include(branchIncludes...).
				Limit(probeLimit)
			res, err := s.cms.Query(gctx, q)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for _, item := range res.Items {
				if id := item.ID(); id != "" {
					byID[id] = item
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]providers.CMSItem, 0, len(byID))
	for _, item := range byID {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

type referenceEdge struct {
	fields []string
	target string
}

var ownerEdges = []referenceEdge{
	{fields: cms.DoctorRefFields, target: providers.CollectionDoctors},
	{fields: cms.TreatmentRefFields, target: providers.CollectionTreatments},
	{fields: cms.SpecialistRefFields, target: providers.CollectionSpecialists},
	{fields: cms.CityRefFields, target: providers.CollectionCities},
	{fields: cms.AccreditationRefFields, target: providers.CollectionAccreditations},
}

var groupEdges = []referenceEdge{
	{fields: cms.DepartmentRefFields, target: providers.CollectionDepartments},
	{fields: cms.TreatmentRefFields, target: providers.CollectionTreatments},
}

// referenceEdges lists, per collection, the fields pointing into another
// collection that the mapper follows.
var referenceEdges = map[string][]referenceEdge{
	providers.CollectionHospitals:       ownerEdges,
	providers.CollectionBranches:        ownerEdges,
	providers.CollectionDoctors:         {{fields: cms.SpecializationRefFields, target: providers.CollectionSpecializations}},
	providers.CollectionSpecializations: groupEdges,
	providers.CollectionSpecialists:     groupEdges,
	providers.CollectionTreatments:      {{fields: cms.DepartmentRefFields, target: providers.CollectionDepartments}},
}

// resolveReferences walks the reference graph breadth first from seeds,
// loading unexpanded ids in batches. A failed batch is logged and its ids
// stay unresolved; the mapper then falls back to the bare reference.
func (s *HospitalService) resolveReferences(ctx context.Context, seeds map[string][]providers.CMSItem) *cms.Lookup {
	logger := observability.LoggerFromContext(ctx)
	loaders := cms.NewLoaders(s.cms)
	lk := cms.NewLookup()
	requested := make(map[string]idSet)

	frontier := seeds
	for depth := 0; depth < maxReferenceDepth && len(frontier) > 0; depth++ {
		next := make(map[string][]providers.CMSItem)
		pending := make(map[string]idSet)

		for collection, items := range frontier {
			for _, item := range items {
				for _, edge := range referenceEdges[collection] {
					for _, field := range edge.fields {
						for _, ref := range cms.NormalizeRefs(item[field]) {
							if _, ok := lk.Get(edge.target, ref.ID); ok {
								continue
							}
							if ref.Expanded() {
								lk.Add(edge.target, ref.Item)
								next[edge.target] = append(next[edge.target], ref.Item)
								continue
							}
							if requested[edge.target].has(ref.ID) {
								continue
							}
							if pending[edge.target] == nil {
								pending[edge.target] = idSet{}
							}
							pending[edge.target].add(ref.ID)
						}
					}
				}
			}
		}

		var mu sync.Mutex
		var g errgroup.Group
		for collection, ids := range pending {
			if requested[collection] == nil {
				requested[collection] = idSet{}
			}
			requested[collection].add(ids.sorted()...)

			g.Go(func() error {
				items, err := loaders.LoadMany(ctx, collection, ids.sorted())
				if err != nil {
					logger.Warn().Err(err).Str("collection", collection).Int("ids", len(ids)).Msg("Bulk reference lookup failed")
				}
				mu.Lock()
				defer mu.Unlock()
				next[collection] = append(next[collection], items...)
				return nil
			})
		}
		_ = g.Wait()

		for collection, items := range next {
			lk.Add(collection, items...)
		}
		frontier = next
	}
	return lk
}

// branchMatches re-applies the city and treatment filters to a mapped
// branch. A nil set means the filter is inactive.
func branchMatches(b entities.Branch, cityIDs, treatmentIDs idSet) bool {
	if cityIDs != nil {
		ok := false
		for _, c := range b.Cities {
			if cityIDs.has(c.ID) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if treatmentIDs != nil {
		for _, t := range b.Treatments {
			if treatmentIDs.has(t.ID) {
				return true
			}
		}
		for _, g := range b.Specialists {
			for _, t := range g.Treatments {
				if treatmentIDs.has(t.ID) {
					return true
				}
			}
		}
		return false
	}
	return true
}

// idSet is a set of ids. A nil idSet means "unrestricted" wherever sets
// are intersected.
type idSet map[string]struct{}

func newIDSet(ids ...string) idSet {
	s := idSet{}
	s.add(ids...)
	return s
}

func (s idSet) add(ids ...string) {
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
}

func (s idSet) has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s idSet) intersect(other idSet) idSet {
	if s == nil {
		return other
	}
	if other == nil {
		return s
	}
	out := idSet{}
	for id := range s {
		if other.has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

func (s idSet) sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
