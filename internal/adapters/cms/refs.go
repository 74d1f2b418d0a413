package cms

import (
	"github.com/medtravel/hospitaldirectory/internal/domain/providers"
)

// Ref is one normalized reference. Item is the expanded record when the
// CMS returned one, otherwise a stub holding only _id.
type Ref struct {
	ID   string
	Item providers.CMSItem
}

// Expanded reports whether the reference carries more than its id.
func (r Ref) Expanded() bool {
	for key := range r.Item {
		if key != "_id" {
			return true
		}
	}
	return false
}

// NormalizeRefs collapses every reference shape the CMS emits (an id
// string, an object with _id, or an array of either) into a list of Refs.
// Entries without an id are dropped.
func NormalizeRefs(value any) []Ref {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return []Ref{{ID: v, Item: providers.CMSItem{"_id": v}}}
	case providers.CMSItem:
		return refFromMap(v)
	case map[string]any:
		return refFromMap(v)
	case []string:
		out := make([]Ref, 0, len(v))
		for _, id := range v {
			out = append(out, NormalizeRefs(id)...)
		}
		return out
	case []providers.CMSItem:
		out := make([]Ref, 0, len(v))
		for _, item := range v {
			out = append(out, refFromMap(item)...)
		}
		return out
	case []map[string]any:
		out := make([]Ref, 0, len(v))
		for _, item := range v {
			out = append(out, refFromMap(item)...)
		}
		return out
	case []any:
		out := make([]Ref, 0, len(v))
		for _, elem := range v {
			out = append(out, NormalizeRefs(elem)...)
		}
		return out
	}
	return nil
}

func refFromMap(m map[string]any) []Ref {
	id, _ := m["_id"].(string)
	if id == "" {
		id, _ = m["id"].(string)
	}
	if id == "" {
		return nil
	}
	item := providers.CMSItem(m)
	if _, ok := item["_id"]; !ok {
		item = copyItem(item)
		item["_id"] = id
	}
	return []Ref{{ID: id, Item: item}}
}

// RefIDs returns the ids referenced by value, in order, without duplicates.
func RefIDs(value any) []string {
	refs := NormalizeRefs(value)
	out := make([]string, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if _, ok := seen[ref.ID]; ok {
			continue
		}
		seen[ref.ID] = struct{}{}
		out = append(out, ref.ID)
	}
	return out
}

// FieldRefIDs collects RefIDs over the first present field of every item.
func FieldRefIDs(items []providers.CMSItem, fields ...string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, item := range items {
		for _, id := range RefIDs(lookup(item, fields...)) {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func copyItem(item providers.CMSItem) providers.CMSItem {
	out := make(providers.CMSItem, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}
