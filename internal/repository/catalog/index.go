package catalog

import (
	"fmt"

	"github.com/smart-mall/concierge/internal/db"
	"github.com/smart-mall/concierge/internal/domain"
	domcat "github.com/smart-mall/concierge/internal/domain/catalog"
)

// HNSWConfig tunes the vector graph built for each collection index.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// buildIndex creates an IndexDefinition from a catalog collection.
func buildIndex(col domcat.Collection, vectorDim int, hnsw HNSWConfig) *db.IndexDefinition {
	def := &db.IndexDefinition{
		Name:     indexName(col.Name),
		Prefixes: []string{collectionPrefix(col.Name)},
		Fields:   make([]db.IndexField, 0, len(col.TagFields)+len(col.NumericFields)+1),
	}

	for _, name := range col.TagFields {
		f := db.IndexField{
			Name: name,
			Type: db.IndexFieldTag,
		}
		if name == domcat.FieldTags {
			f.TagSeparator = ","
		}
		def.Fields = append(def.Fields, f)
	}

	for _, name := range col.NumericFields {
		def.Fields = append(def.Fields, db.IndexField{
			Name: name,
			Type: db.IndexFieldNumeric,
		})
	}

	def.Fields = append(def.Fields, db.IndexField{
		Name:              vectorField,
		Alias:             "vector",
		Type:              db.IndexFieldVector,
		VectorAlgo:        db.VectorHNSW,
		VectorDim:         vectorDim,
		VectorDistance:    db.DistanceCosine,
		VectorM:           hnsw.M,
		VectorEFConstruct: hnsw.EFConstruct,
	})

	return def
}

func indexName(collection string) string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, collection)
}

func collectionPrefix(collection string) string {
	return fmt.Sprintf("%s%s:", domain.KeyPrefix, collection)
}

func recordKey(collection, id string) string {
	return collectionPrefix(collection) + id
}
