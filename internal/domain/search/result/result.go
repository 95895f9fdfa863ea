// Package result holds the raw vector search hit shared between the
// storage adapter and the retrieval layer.
package result

// Result is a single search hit: id, cosine similarity in [0,1], and the
// scalar payload of the matched index record. Ephemeral, produced per query.
type Result struct {
	id     string
	score  float64
	fields map[string]string
}

// New creates a search result.
func New(id string, score float64, fields map[string]string) Result {
	return Result{id: id, score: score, fields: fields}
}

// ID returns the record identifier.
func (r *Result) ID() string { return r.id }

// Score returns the similarity score.
func (r *Result) Score() float64 { return r.score }

// Fields returns the scalar payload of the record.
func (r *Result) Fields() map[string]string { return r.fields }

// Field returns a single payload field, or "" when absent.
func (r *Result) Field(name string) string { return r.fields[name] }
