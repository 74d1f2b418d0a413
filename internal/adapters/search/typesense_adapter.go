package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"golang.org/x/sync/errgroup"

	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
	"github.com/medtravel/hospitaldirectory/internal/domain/repositories"
	tsclient "github.com/medtravel/hospitaldirectory/internal/infrastructure/clients/typesense"
)

const (
	collectionName = "directory"

	defaultSuggestLimit = 8
	maxSuggestLimit     = 25
	indexConcurrency    = 8
)

// TypesenseAdapter implements directory suggestions using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

var _ repositories.DirectorySearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context, reset bool) error {
	_, err := a.client.Client().Collection(collectionName).Retrieve(ctx)
	if err == nil {
		if !reset {
			return nil
		}
		if _, err := a.client.Client().Collection(collectionName).Delete(ctx); err != nil {
			return fmt.Errorf("failed to drop typesense collection: %w", err)
		}
		log.Info().Str("collection", collectionName).Msg("Dropped Typesense collection")
	}

	if _, err := a.client.Client().Collections().Create(ctx, directorySchema()); err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}

	log.Info().Str("collection", collectionName).Msg("Created Typesense collection")
	return nil
}

func directorySchema() *api.CollectionSchema {
	return &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "entity_id", Type: "string"},
			{Name: "kind", Type: "string", Facet: pointer.True()},
			{Name: "name", Type: "string"},
			{Name: "slug", Type: "string"},
			{Name: "cities", Type: "string[]", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "context", Type: "string", Optional: pointer.True()},
			{Name: "rank", Type: "int32"},
		},
		DefaultSortingField: pointer.String("rank"),
	}
}

// IndexBatch upserts documents with bounded concurrency.
func (a *TypesenseAdapter) IndexBatch(ctx context.Context, docs []entities.DirectoryDocument) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(indexConcurrency)

	for _, doc := range docs {
		document := toDocument(doc)
		g.Go(func() error {
			if _, err := a.client.Client().Collection(collectionName).Documents().Upsert(ctx, document); err != nil {
				return fmt.Errorf("failed to index %s: %w", document["id"], err)
			}
			return nil
		})
	}

	return g.Wait()
}

// Suggest returns type-ahead matches.
func (a *TypesenseAdapter) Suggest(ctx context.Context, params repositories.SuggestParams) ([]entities.Suggestion, error) {
	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(params.Query),
		QueryBy: pointer.String("name,context,cities"),
		SortBy:  pointer.String("_text_match:desc,rank:desc"),
		PerPage: pointer.Int(clampLimit(params.Limit)),
		Page:    pointer.Int(1),
	}
	if filter := kindFilter(params.Kind); filter != "" {
		searchParams.FilterBy = pointer.String(filter)
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search directory: %w", err)
	}

	suggestions := []entities.Suggestion{}
	if result.Hits == nil {
		return suggestions, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		suggestions = append(suggestions, fromDocument(*hit.Document))
	}
	return suggestions, nil
}

func toDocument(doc entities.DirectoryDocument) map[string]any {
	rank := 0
	if doc.Popular {
		rank = 1
	}
	cities := doc.Cities
	if cities == nil {
		cities = []string{}
	}
	return map[string]any{
		"id":        doc.ID,
		"entity_id": doc.EntityID,
		"kind":      string(doc.Kind),
		"name":      doc.Name,
		"slug":      doc.Slug,
		"cities":    cities,
		"context":   doc.Context,
		"rank":      rank,
	}
}

// fromDocument reads a hit defensively; Typesense returns untyped maps.
func fromDocument(doc map[string]any) entities.Suggestion {
	str := func(key string) string {
		v, _ := doc[key].(string)
		return v
	}
	return entities.Suggestion{
		ID:      str("entity_id"),
		Kind:    entities.DirectoryKind(str("kind")),
		Name:    str("name"),
		Slug:    str("slug"),
		Context: str("context"),
	}
}

func kindFilter(kind entities.DirectoryKind) string {
	switch kind {
	case entities.DirectoryKindHospital, entities.DirectoryKindDoctor, entities.DirectoryKindTreatment:
		return "kind:=" + strings.ToLower(string(kind))
	}
	return ""
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultSuggestLimit
	}
	if limit > maxSuggestLimit {
		return maxSuggestLimit
	}
	return limit
}
