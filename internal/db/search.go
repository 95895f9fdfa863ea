package db

import "github.com/smart-mall/concierge/internal/domain/search/filter"

// KNNQuery describes a filtered vector similarity search.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	Filters      filter.Expression
	ReturnFields []string
}

// SearchEntry is one raw FT.SEARCH hit: the record key, its similarity
// score, and the returned fields.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// SearchResult is the raw FT.SEARCH response.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}
