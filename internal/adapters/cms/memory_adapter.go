package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/medtravel/hospitaldirectory/internal/domain/providers"
)

// MemoryAdapter serves collections from memory with the same operator
// semantics as the hosted data API. It backs local development (via a
// JSON fixture) and tests.
type MemoryAdapter struct {
	mu          sync.RWMutex
	collections map[string][]providers.CMSItem
	byID        map[string]providers.CMSItem
}

var _ providers.CMSProvider = (*MemoryAdapter)(nil)

// NewMemoryAdapter creates an empty in-memory CMS.
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		collections: make(map[string][]providers.CMSItem),
		byID:        make(map[string]providers.CMSItem),
	}
}

// LoadFixture reads a JSON object mapping collection names to item arrays.
func LoadFixture(path string) (*MemoryAdapter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CMS fixture: %w", err)
	}

	var raw map[string][]providers.CMSItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode CMS fixture %s: %w", path, err)
	}

	adapter := NewMemoryAdapter()
	for collection, items := range raw {
		adapter.Put(collection, items...)
	}
	return adapter, nil
}

// Put appends items to a collection, replacing items with the same _id.
func (m *MemoryAdapter) Put(collection string, items ...providers.CMSItem) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := m.collections[collection]
	for _, item := range items {
		id := item.ID()
		replaced := false
		if id != "" {
			for i, current := range existing {
				if current.ID() == id {
					existing[i] = item
					replaced = true
					break
				}
			}
			m.byID[id] = item
		}
		if !replaced {
			existing = append(existing, item)
		}
	}
	m.collections[collection] = existing
}

// Query implements providers.CMSProvider.
func (m *MemoryAdapter) Query(ctx context.Context, q *providers.CMSQuery) (*providers.CMSResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]providers.CMSItem, 0)
	for _, item := range m.collections[q.Collection] {
		if matchesAll(item, q.Filters) {
			matched = append(matched, item)
		}
	}

	if len(q.Sort) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			for _, s := range q.Sort {
				a := strings.ToLower(text(matched[i], s.Field))
				b := strings.ToLower(text(matched[j], s.Field))
				if a == b {
					continue
				}
				if s.Descending {
					return a > b
				}
				return a < b
			}
			return false
		})
	}

	total := len(matched)
	start := q.SkipN
	if start > total {
		start = total
	}
	end := total
	if q.LimitN > 0 && start+q.LimitN < end {
		end = start + q.LimitN
	}

	items := make([]providers.CMSItem, 0, end-start)
	for _, item := range matched[start:end] {
		items = append(items, m.expand(item, q.Includes))
	}

	return &providers.CMSResult{Items: items, TotalCount: total}, nil
}

// expand copies item, replacing included reference fields by the full
// referenced records where known.
func (m *MemoryAdapter) expand(item providers.CMSItem, includes []string) providers.CMSItem {
	out := copyItem(item)
	for _, field := range includes {
		value, ok := out[field]
		if !ok {
			continue
		}
		refs := NormalizeRefs(value)
		expanded := make([]any, 0, len(refs))
		for _, ref := range refs {
			if full, ok := m.byID[ref.ID]; ok {
				expanded = append(expanded, map[string]any(copyItem(full)))
				continue
			}
			expanded = append(expanded, map[string]any(ref.Item))
		}
		out[field] = expanded
	}
	return out
}

func matchesAll(item providers.CMSItem, filters []providers.CMSFilter) bool {
	for _, f := range filters {
		if !matches(item, f) {
			return false
		}
	}
	return true
}

func matches(item providers.CMSItem, f providers.CMSFilter) bool {
	value, ok := item[f.Field]
	if !ok || value == nil {
		return false
	}

	switch f.Op {
	case providers.OpEq:
		if s, isString := value.(string); isString {
			return s == f.Value
		}
		if text(item, f.Field) == f.Value {
			return true
		}
		for _, id := range RefIDs(value) {
			if id == f.Value {
				return true
			}
		}
		return false
	case providers.OpContains:
		return strings.Contains(strings.ToLower(text(item, f.Field)), strings.ToLower(f.Value))
	case providers.OpHasSome:
		have := make(map[string]struct{})
		for _, id := range RefIDs(value) {
			have[id] = struct{}{}
		}
		for _, s := range stringList(item, f.Field) {
			have[s] = struct{}{}
		}
		for _, want := range f.Values {
			if _, ok := have[want]; ok {
				return true
			}
		}
		return false
	}
	return false
}
