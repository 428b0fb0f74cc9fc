package ingestion

import "github.com/poiesic/newsimport/core"

// Supports reports whether the importer can service the query type.
// Matching ignores case and surrounding whitespace.
func Supports(t core.QueryType) bool {
	switch t.Normalize() {
	case core.QueryTypeEverything, core.QueryTypeHeadlines:
		return true
	default:
		return false
	}
}

// FilterSupported returns the queries whose type is supported, in input order.
// Nil entries are dropped. The input slice is not modified.
func FilterSupported(queries []*core.QueryDefinition) []*core.QueryDefinition {
	supported := make([]*core.QueryDefinition, 0, len(queries))
	for _, q := range queries {
		if q != nil && Supports(q.QueryType) {
			supported = append(supported, q)
		}
	}
	return supported
}
