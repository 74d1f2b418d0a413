package cms

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/medtravel/hospitaldirectory/internal/domain/providers"
)

// maxBatch bounds the ids sent in a single $hasSome lookup.
const maxBatch = 100

// ErrItemNotFound is reported for ids the CMS did not return.
var ErrItemNotFound = errors.New("cms item not found")

// Loaders batches by-id lookups per collection. A Loaders value caches
// results for its lifetime, so create one per request.
type Loaders struct {
	provider providers.CMSProvider

	mu      sync.Mutex
	loaders map[string]*dataloader.Loader[string, providers.CMSItem]
}

// NewLoaders creates request-scoped loaders over provider.
func NewLoaders(provider providers.CMSProvider) *Loaders {
	return &Loaders{
		provider: provider,
		loaders:  make(map[string]*dataloader.Loader[string, providers.CMSItem]),
	}
}

func (l *Loaders) loader(collection string) *dataloader.Loader[string, providers.CMSItem] {
	l.mu.Lock()
	defer l.mu.Unlock()

	if loader, ok := l.loaders[collection]; ok {
		return loader
	}
	loader := dataloader.NewBatchedLoader(l.batchFn(collection),
		dataloader.WithBatchCapacity[string, providers.CMSItem](maxBatch),
	)
	l.loaders[collection] = loader
	return loader
}

func (l *Loaders) batchFn(collection string) dataloader.BatchFunc[string, providers.CMSItem] {
	return func(ctx context.Context, keys []string) []*dataloader.Result[providers.CMSItem] {
		results := make([]*dataloader.Result[providers.CMSItem], len(keys))

		q := providers.NewQuery(collection).HasSome("_id", keys...).Limit(len(keys))
		res, err := l.provider.Query(ctx, q)

		byID := make(map[string]providers.CMSItem)
		if err == nil {
			for _, item := range res.Items {
				byID[item.ID()] = item
			}
		}

		for i, key := range keys {
			if err != nil {
				results[i] = &dataloader.Result[providers.CMSItem]{Error: err}
			} else if item, ok := byID[key]; ok {
				results[i] = &dataloader.Result[providers.CMSItem]{Data: item}
			} else {
				results[i] = &dataloader.Result[providers.CMSItem]{Error: fmt.Errorf("%s %s: %w", collection, key, ErrItemNotFound)}
			}
		}
		return results
	}
}

// LoadMany fetches the records of a collection by id. Ids the CMS does
// not know are skipped. A non-nil error means at least one batch failed;
// the items that did load are still returned.
func (l *Loaders) LoadMany(ctx context.Context, collection string, ids []string) ([]providers.CMSItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	items, errs := l.loader(collection).LoadMany(ctx, ids)()

	out := make([]providers.CMSItem, 0, len(items))
	var batchErr error
	for i, item := range items {
		if i < len(errs) && errs[i] != nil {
			if !errors.Is(errs[i], ErrItemNotFound) && batchErr == nil {
				batchErr = errs[i]
			}
			continue
		}
		if item != nil {
			out = append(out, item)
		}
	}
	return out, batchErr
}
