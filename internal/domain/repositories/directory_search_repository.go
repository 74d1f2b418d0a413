package repositories

import (
	"context"

	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
)

// DirectorySearchRepository defines the suggestion index operations (e.g. Typesense).
type DirectorySearchRepository interface {
	// InitSchema ensures the collection exists. When reset is true an
	// existing collection is dropped first.
	InitSchema(ctx context.Context, reset bool) error

	// IndexBatch upserts documents.
	IndexBatch(ctx context.Context, docs []entities.DirectoryDocument) error

	// Suggest returns type-ahead matches.
	Suggest(ctx context.Context, params SuggestParams) ([]entities.Suggestion, error)
}

// SuggestParams defines a type-ahead query.
type SuggestParams struct {
	Query string
	Kind  entities.DirectoryKind
	Limit int
}
