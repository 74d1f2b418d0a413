package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
	"github.com/medtravel/hospitaldirectory/internal/domain/repositories"
	"github.com/medtravel/hospitaldirectory/internal/infrastructure/observability"
	"github.com/medtravel/hospitaldirectory/internal/query/directory"
	apperrors "github.com/medtravel/hospitaldirectory/pkg/errors"
	"github.com/medtravel/hospitaldirectory/pkg/utils"
)

const (
	defaultSuggestLimit = 8
	maxSuggestLimit     = 25
)

// DirectoryView is the derived directory for one filter state.
type DirectoryView struct {
	View    directory.View              `json:"view"`
	SortBy  directory.SortBy            `json:"sortBy"`
	Filters map[string]directory.Filter `json:"filters"`
	directory.Result
	Options directory.Options `json:"options"`
	Query   string            `json:"query"`
	Loading bool              `json:"loading"`
}

// FilterChange sets one slot, or the view or sort, on top of the state
// encoded in Query.
type FilterChange struct {
	Query string `json:"query"`
	Key   string `json:"key"`
	ID    string `json:"id"`
	Text  string `json:"text"`
}

// value is the selector value of a view or sort change, sent as either
// field.
func (c FilterChange) value() string {
	return utils.FirstNonEmpty(c.ID, c.Text)
}

// DirectoryService serves filtered directory views out of the in-memory
// dataset and answers type-ahead queries.
type DirectoryService struct {
	store  *directory.Store
	search repositories.DirectorySearchRepository
}

// NewDirectoryService creates a directory service. search may be nil, in
// which case suggestions come from the dataset.
func NewDirectoryService(store *directory.Store, search repositories.DirectorySearchRepository) *DirectoryService {
	return &DirectoryService{store: store, search: search}
}

// Refresh reloads the dataset.
func (s *DirectoryService) Refresh(ctx context.Context) error {
	return s.store.Refresh(ctx)
}

// Dataset returns the current snapshot.
func (s *DirectoryService) Dataset() *directory.Dataset {
	return s.store.Dataset()
}

// View derives the directory for a query string. Slug values are
// reconciled to ids against the loaded dataset first.
func (s *DirectoryService) View(ctx context.Context, values url.Values) *DirectoryView {
	ds := s.store.Dataset()
	st := directory.Reconcile(directory.ParseQuery(values), ds)
	return s.derive(ctx, ds, st, values)
}

// ApplyFilter applies one change and returns the resulting view together
// with its canonical query string.
func (s *DirectoryService) ApplyFilter(ctx context.Context, change FilterChange) (*DirectoryView, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(change.Query, "?"))
	if err != nil {
		return nil, apperrors.NewValidationError("query is not a valid query string")
	}
	ds := s.store.Dataset()
	st := directory.Reconcile(directory.ParseQuery(values), ds)

	switch change.Key {
	case directory.ParamView:
		st = st.WithView(directory.ParseView(change.value()))
	case directory.ParamSortBy:
		st = st.WithSort(directory.ParseSortBy(change.value()))
	case "reset":
		st = st.Reset()
	default:
		slot, ok := directory.ParseSlot(change.Key)
		if !ok {
			return nil, apperrors.NewValidationError("unknown filter key: " + change.Key)
		}
		if change.ID != "" {
			st = st.Set(slot, directory.FilterID(change.ID))
		} else {
			st = st.Set(slot, directory.FilterText(change.Text))
		}
	}

	return s.derive(ctx, ds, st, values), nil
}

func (s *DirectoryService) derive(ctx context.Context, ds *directory.Dataset, st directory.State, current url.Values) *DirectoryView {
	_, span := observability.StartSpan(ctx, "DirectoryService.derive")
	defer span.End()

	res := directory.Apply(ds, st)
	opts := directory.BuildOptions(res, st.View)
	query, _ := directory.CanonicalQuery(current, st, opts)

	return &DirectoryView{
		View:    st.View,
		SortBy:  st.SortBy,
		Filters: st.Filters(),
		Result:  res,
		Options: opts,
		Query:   query,
		Loading: s.store.Loading(),
	}
}

// Suggest answers a type-ahead query from the search index, falling back
// to a substring scan of the dataset when no index is configured or the
// index fails.
func (s *DirectoryService) Suggest(ctx context.Context, params repositories.SuggestParams) ([]entities.Suggestion, error) {
	params.Query = strings.TrimSpace(params.Query)
	if params.Query == "" {
		return []entities.Suggestion{}, nil
	}
	if params.Limit <= 0 {
		params.Limit = defaultSuggestLimit
	}
	if params.Limit > maxSuggestLimit {
		params.Limit = maxSuggestLimit
	}

	if s.search != nil {
		out, err := s.search.Suggest(ctx, params)
		if err == nil {
			return out, nil
		}
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("query", params.Query).Msg("Suggestion index failed, scanning dataset")
	}
	return scanSuggestions(s.store.Dataset(), params), nil
}

func scanSuggestions(ds *directory.Dataset, params repositories.SuggestParams) []entities.Suggestion {
	out := []entities.Suggestion{}
	for _, doc := range DirectoryDocuments(ds) {
		if len(out) >= params.Limit {
			break
		}
		if params.Kind != "" && doc.Kind != params.Kind {
			continue
		}
		if !utils.MatchesText(doc.Name, params.Query) {
			continue
		}
		out = append(out, entities.Suggestion{
			ID:      doc.EntityID,
			Kind:    doc.Kind,
			Name:    doc.Name,
			Slug:    doc.Slug,
			Context: doc.Context,
		})
	}
	return out
}
