package query

import (
	"math"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/meur/civatlas/internal/models"
)

// suggestThreshold is the largest normalized edit distance still offered
// as a "did you mean" hint.
const suggestThreshold = 0.5

// Filter keeps the items whose resolved fields contain the query,
// case-insensitively. A blank query returns items unchanged.
func Filter(items []models.Entity, query string, fields []string) []models.Entity {
	q := normalize(query)
	if q == "" {
		return items
	}

	out := make([]models.Entity, 0, len(items))
	for _, item := range items {
		if matches(item, q, fields) {
			out = append(out, item)
		}
	}
	return out
}

func matches(item models.Entity, q string, fields []string) bool {
	for _, f := range fields {
		v, ok := Resolve(item, f)
		if !ok {
			continue
		}
		s, ok := stringify(v)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

// Suggest returns the item name closest to a query that matched nothing
func Suggest(items []models.Entity, query string) (string, bool) {
	q := normalize(query)
	if q == "" {
		return "", false
	}

	best, bestScore := "", math.Inf(1)
	for _, item := range items {
		name := strings.ToLower(item.Name)
		if name == "" {
			continue
		}
		longest := max(len([]rune(name)), len([]rune(q)))
		score := float64(levenshtein.ComputeDistance(q, name)) / float64(longest)
		if score < bestScore {
			best, bestScore = item.Name, score
		}
	}
	if best == "" || bestScore > suggestThreshold {
		return "", false
	}
	return best, true
}

func normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// stringify renders a scalar field value the way it is displayed
func stringify(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case []any:
		parts := make([]string, 0, len(x))
		for _, el := range x {
			s, _ := stringify(el)
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), true
	}
	if n, ok := toNumber(v); ok {
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	return "", false
}

func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}
