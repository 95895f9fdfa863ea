// Package catalog adapts RediSearch vector indexes to the catalog
// collections: idempotent index creation, batch record writes, and
// filtered KNN search.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/smart-mall/concierge/internal/db"
	"github.com/smart-mall/concierge/internal/domain"
	domcat "github.com/smart-mall/concierge/internal/domain/catalog"
	"github.com/smart-mall/concierge/internal/domain/search/filter"
	"github.com/smart-mall/concierge/internal/domain/search/result"
)

// store is the consumer interface for the vector catalog (ISP).
type store interface {
	Ping(ctx context.Context) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	DelMulti(ctx context.Context, keys []string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo implements the vector store ports of the sync and retrieval layers.
type Repo struct {
	store store
	hnsw  HNSWConfig
}

// New creates a catalog vector store.
func New(s store) *Repo {
	return &Repo{store: s, hnsw: HNSWConfig{M: 32, EFConstruct: 400}}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// EnsureCollection creates the FT index for a collection if it does not
// exist yet. Safe to call on every startup.
func (r *Repo) EnsureCollection(ctx context.Context, col domcat.Collection, vectorDim int) error {
	def := buildIndex(col, vectorDim, r.hnsw)

	err := r.store.CreateIndex(ctx, def)
	if err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return nil
}

// HasCollection reports whether the collection index exists.
func (r *Repo) HasCollection(ctx context.Context, col domcat.Collection) (bool, error) {
	ok, err := r.store.IndexExists(ctx, indexName(col.Name))
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", col.Name, err)
	}
	return ok, nil
}

// Insert writes records as index hashes. The whole batch goes in one
// pipelined call; partial failure leaves previously written keys in place.
func (r *Repo) Insert(ctx context.Context, col domcat.Collection, records []domcat.Record) error {
	if len(records) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, 0, len(records))
	for _, rec := range records {
		fields := make(map[string]string, len(rec.Fields)+1)
		for k, v := range rec.Fields {
			fields[k] = v
		}
		fields[vectorField] = string(vectorToBytes(rec.Vector))

		items = append(items, db.HashSetItem{
			Key:    recordKey(col.Name, rec.ID),
			Fields: fields,
		})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset records %s: %w", col.Name, err)
	}
	return nil
}

// DeleteByIDs removes records by document id. Missing ids are not an error.
func (r *Repo) DeleteByIDs(ctx context.Context, col domcat.Collection, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, recordKey(col.Name, id))
	}

	if err := r.store.DelMulti(ctx, keys); err != nil {
		return fmt.Errorf("del records %s: %w", col.Name, err)
	}
	return nil
}

// Has reports whether a record exists in the collection.
func (r *Repo) Has(ctx context.Context, col domcat.Collection, id string) (bool, error) {
	ok, err := r.store.Exists(ctx, recordKey(col.Name, id))
	if err != nil {
		return false, fmt.Errorf("check record %s/%s: %w", col.Name, id, err)
	}
	return ok, nil
}

// SearchKNN runs a filtered vector similarity search and returns hits in
// the index's native similarity order.
func (r *Repo) SearchKNN(
	ctx context.Context, col domcat.Collection,
	vector []float32, filters filter.Expression, topK int,
) ([]result.Result, error) {
	q := &db.KNNQuery{
		IndexName:    indexName(col.Name),
		Vector:       vector,
		K:            topK,
		Filters:      filters,
		ReturnFields: col.OutputFields(),
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, fmt.Errorf("%s: %w", col.Name, domain.ErrCollectionNotFound)
		}
		return nil, fmt.Errorf("search knn %s: %w", col.Name, err)
	}

	return parseKNNResults(sr, col.Name), nil
}

// Count returns the number of records in a collection.
func (r *Repo) Count(ctx context.Context, col domcat.Collection) (int, error) {
	n, err := r.store.SearchCount(ctx, indexName(col.Name), "*")
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return 0, fmt.Errorf("%s: %w", col.Name, domain.ErrCollectionNotFound)
		}
		return 0, fmt.Errorf("search count %s: %w", col.Name, err)
	}
	return n, nil
}

// HealthCheck reports store reachability, index presence, and ping latency.
func (r *Repo) HealthCheck(ctx context.Context) (bool, time.Duration, error) {
	start := time.Now()
	if err := r.store.Ping(ctx); err != nil {
		return false, time.Since(start), fmt.Errorf("ping: %w", err)
	}
	latency := time.Since(start)

	for _, col := range domcat.All() {
		ok, err := r.store.IndexExists(ctx, indexName(col.Name))
		if err != nil {
			return false, latency, fmt.Errorf("check index %s: %w", col.Name, err)
		}
		if !ok {
			return false, latency, fmt.Errorf("index %s: %w", col.Name, domain.ErrCollectionNotFound)
		}
	}

	return true, latency, nil
}

// parseKNNResults converts raw search entries into domain results,
// stripping the key prefix back to document ids.
func parseKNNResults(sr *db.SearchResult, collection string) []result.Result {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	prefix := collectionPrefix(collection)
	results := make([]result.Result, 0, len(sr.Entries))

	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, prefix)
		fields := make(map[string]string, len(entry.Fields))
		for k, v := range entry.Fields {
			if k == vectorField {
				continue
			}
			fields[k] = v
		}
		results = append(results, result.New(id, entry.Score, fields))
	}

	return results
}
