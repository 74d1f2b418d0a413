package cms

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/medtravel/hospitaldirectory/internal/domain/providers"
)

// lookup returns the value of the first field present on the item. The CMS
// collections were edited by hand over time and the same concept lives
// under different keys depending on the collection revision.
func lookup(item providers.CMSItem, fields ...string) any {
	for _, field := range fields {
		if v, ok := item[field]; ok && v != nil {
			if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
				continue
			}
			return v
		}
	}
	return nil
}

// text reads the first present field as display text. Expanded references
// contribute their own name or title.
func text(item providers.CMSItem, fields ...string) string {
	switch v := lookup(item, fields...).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case map[string]any:
		return text(providers.CMSItem(v), "name", "title")
	case providers.CMSItem:
		return text(v, "name", "title")
	case []any:
		if len(v) == 0 {
			return ""
		}
		if m, ok := v[0].(map[string]any); ok {
			return text(providers.CMSItem(m), "name", "title")
		}
		if s, ok := v[0].(string); ok {
			return strings.TrimSpace(s)
		}
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
	return ""
}

func boolean(item providers.CMSItem, fields ...string) bool {
	switch v := lookup(item, fields...).(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	case float64:
		return v != 0
	}
	return false
}

func integer(item providers.CMSItem, fields ...string) int {
	switch v := lookup(item, fields...).(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	}
	return 0
}

func stringList(item providers.CMSItem, fields ...string) []string {
	switch v := lookup(item, fields...).(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			if s, ok := elem.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return nil
}
