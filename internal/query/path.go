// Package query derives the visible item set of a dataset: dotted-path field
// access, search filtering and deterministic sorting.
package query

import "strings"

// Record is a value that exposes named fields to Resolve
type Record interface {
	Lookup(key string) (any, bool)
}

// Resolve reads a dotted-path value out of a nested record. It reports
// false as soon as a segment is missing or the terminal value is nil.
func Resolve(record any, path string) (any, bool) {
	if path == "" || record == nil {
		return nil, false
	}

	cur := record
	for _, key := range strings.Split(path, ".") {
		var ok bool
		switch node := cur.(type) {
		case Record:
			cur, ok = node.Lookup(key)
		case map[string]any:
			cur, ok = node[key]
		default:
			return nil, false
		}
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}
