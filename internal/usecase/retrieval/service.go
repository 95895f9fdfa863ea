// Package retrieval implements semantic search over the mall catalog:
// query embedding, filtered KNN search, score thresholding, and the
// LLM context builder. A degraded mode serves fixed fallback payloads
// when the vector backend is unavailable.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/smart-mall/concierge/internal/domain/catalog"
	"github.com/smart-mall/concierge/internal/domain/search/filter"
	"github.com/smart-mall/concierge/internal/domain/search/result"
)

// Defaults applied when a query leaves TopK or MinScore unset.
const (
	DefaultTopK     = 5
	DefaultMinScore = 0.5
)

// StoreQuery narrows a store search. Zero values mean "no filter".
type StoreQuery struct {
	Category string
	Floor    *int
	TopK     int
	MinScore float64
}

// ProductQuery narrows a product search. Zero values mean "no filter".
type ProductQuery struct {
	Category string
	Brand    string
	MinPrice *float64
	MaxPrice *float64
	TopK     int
	MinScore float64
}

// LocationQuery narrows a location search. Zero values mean "no filter".
type LocationQuery struct {
	Type     string
	Floor    *int
	TopK     int
	MinScore float64
}

// NavigateResult is the top-1 store lookup used by navigation.
type NavigateResult struct {
	Found   bool     `json:"found"`
	Store   StoreHit `json:"store,omitempty"`
	Message string   `json:"message"`
}

// Service answers semantic catalog queries.
type Service struct {
	embedder embedder
	store    vectorStore
	topK     int
	minScore float64
	degraded atomic.Bool
	logger   *zap.Logger
}

// NewService creates the retrieval service with default thresholds.
func NewService(e embedder, s vectorStore, logger *zap.Logger) *Service {
	return &Service{
		embedder: e,
		store:    s,
		topK:     DefaultTopK,
		minScore: DefaultMinScore,
		logger:   logger,
	}
}

// WithDefaults overrides the service-level top-k and score threshold.
func (s *Service) WithDefaults(topK int, minScore float64) *Service {
	if topK > 0 {
		s.topK = topK
	}
	if minScore > 0 {
		s.minScore = minScore
	}
	return s
}

// SetDegraded toggles degraded mode. While set, searches return fixed
// fallback payloads and never touch the embedder or the vector store.
func (s *Service) SetDegraded(on bool) {
	s.degraded.Store(on)
}

// Degraded reports whether degraded mode is active.
func (s *Service) Degraded() bool {
	return s.degraded.Load()
}

// SearchStores returns stores semantically matching the query,
// in descending score order. An empty slice is a valid answer.
func (s *Service) SearchStores(ctx context.Context, query string, q StoreQuery) ([]StoreHit, error) {
	if s.Degraded() {
		return fallbackStores(), nil
	}

	filters, err := buildStoreFilter(q.Category, q.Floor)
	if err != nil {
		return nil, err
	}

	raw, err := s.search(ctx, catalog.Stores, query, filters, q.TopK, q.MinScore)
	if err != nil {
		return nil, err
	}

	hits := make([]StoreHit, 0, len(raw))
	for _, r := range raw {
		hits = append(hits, parseStoreHit(r))
	}
	return hits, nil
}

// SearchProducts returns products semantically matching the query,
// in descending score order.
func (s *Service) SearchProducts(ctx context.Context, query string, q ProductQuery) ([]ProductHit, error) {
	if s.Degraded() {
		return fallbackProducts(), nil
	}

	filters, err := buildProductFilter(q.Category, q.Brand, q.MinPrice, q.MaxPrice)
	if err != nil {
		return nil, err
	}

	raw, err := s.search(ctx, catalog.Products, query, filters, q.TopK, q.MinScore)
	if err != nil {
		return nil, err
	}

	hits := make([]ProductHit, 0, len(raw))
	for _, r := range raw {
		hits = append(hits, parseProductHit(r))
	}
	return hits, nil
}

// SearchLocations returns navigable locations matching the query.
func (s *Service) SearchLocations(ctx context.Context, query string, q LocationQuery) ([]LocationHit, error) {
	if s.Degraded() {
		return fallbackLocations(), nil
	}

	filters, err := buildLocationFilter(q.Type, q.Floor)
	if err != nil {
		return nil, err
	}

	raw, err := s.search(ctx, catalog.Locations, query, filters, q.TopK, q.MinScore)
	if err != nil {
		return nil, err
	}

	hits := make([]LocationHit, 0, len(raw))
	for _, r := range raw {
		hits = append(hits, parseLocationHit(r))
	}
	return hits, nil
}

// NavigateToStore resolves a store name to its best match. A miss is a
// Found=false result, not an error.
func (s *Service) NavigateToStore(ctx context.Context, name string) (NavigateResult, error) {
	if s.Degraded() {
		return fallbackNavigate(name), nil
	}

	hits, err := s.SearchStores(ctx, name, StoreQuery{TopK: 1})
	if err != nil {
		return NavigateResult{}, err
	}
	if len(hits) == 0 {
		return NavigateResult{
			Found:   false,
			Message: fmt.Sprintf("未找到店铺: %s", name),
		}, nil
	}

	store := hits[0]
	return NavigateResult{
		Found:   true,
		Store:   store,
		Message: fmt.Sprintf("%s 位于 %d 楼 %s", store.Name, store.Floor, store.Area),
	}, nil
}

// BuildContext assembles a grounding snippet for the LLM from up to two
// searches. Section failures are logged and skipped so a flaky backend
// degrades the context instead of failing the turn. The result is
// hard-truncated at maxLen runes with a "..." marker, possibly
// mid-sentence.
func (s *Service) BuildContext(ctx context.Context, query string, includeStores, includeProducts bool, maxLen int) string {
	var parts []string

	if includeStores {
		stores, err := s.SearchStores(ctx, query, StoreQuery{TopK: 3})
		switch {
		case err != nil:
			s.logger.Warn("context store search failed", zap.Error(err))
		case len(stores) > 0:
			parts = append(parts, formatStoreContext(stores))
		}
	}

	if includeProducts {
		products, err := s.SearchProducts(ctx, query, ProductQuery{TopK: 5})
		switch {
		case err != nil:
			s.logger.Warn("context product search failed", zap.Error(err))
		case len(products) > 0:
			parts = append(parts, formatProductContext(products))
		}
	}

	context := joinSections(parts)
	return truncateRunes(context, maxLen)
}

// search embeds the query and runs a thresholded KNN search.
func (s *Service) search(
	ctx context.Context, col catalog.Collection,
	query string, filters filter.Expression, topK int, minScore float64,
) ([]result.Result, error) {
	if topK <= 0 {
		topK = s.topK
	}
	if minScore <= 0 {
		minScore = s.minScore
	}

	emb, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	raw, err := s.store.SearchKNN(ctx, col, emb.Embedding, filters, topK)
	if err != nil {
		return nil, err
	}

	kept := raw[:0]
	for _, r := range raw {
		if r.Score() >= minScore {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score() > kept[j].Score()
	})

	s.logger.Debug("retrieval search",
		zap.String("collection", col.Name),
		zap.Int("hits", len(kept)),
		zap.Int("top_k", topK))

	return kept, nil
}

func buildStoreFilter(category string, floor *int) (filter.Expression, error) {
	var conds []filter.Condition

	if category != "" {
		c, err := filter.NewMatch(catalog.FieldCategory, category)
		if err != nil {
			return filter.Expression{}, err
		}
		conds = append(conds, c)
	}
	if floor != nil {
		c, err := floorCondition(*floor)
		if err != nil {
			return filter.Expression{}, err
		}
		conds = append(conds, c)
	}
	return filter.NewExpression(conds...)
}

func buildProductFilter(category, brand string, minPrice, maxPrice *float64) (filter.Expression, error) {
	var conds []filter.Condition

	if category != "" {
		c, err := filter.NewMatch(catalog.FieldCategory, category)
		if err != nil {
			return filter.Expression{}, err
		}
		conds = append(conds, c)
	}
	if brand != "" {
		c, err := filter.NewMatch(catalog.FieldBrand, brand)
		if err != nil {
			return filter.Expression{}, err
		}
		conds = append(conds, c)
	}
	if minPrice != nil || maxPrice != nil {
		r, err := filter.NewRangeBounds(minPrice, maxPrice)
		if err != nil {
			return filter.Expression{}, err
		}
		c, err := filter.NewRange(catalog.FieldPrice, r)
		if err != nil {
			return filter.Expression{}, err
		}
		conds = append(conds, c)
	}
	return filter.NewExpression(conds...)
}

func buildLocationFilter(locType string, floor *int) (filter.Expression, error) {
	var conds []filter.Condition

	if locType != "" {
		c, err := filter.NewMatch(catalog.FieldType, locType)
		if err != nil {
			return filter.Expression{}, err
		}
		conds = append(conds, c)
	}
	if floor != nil {
		c, err := floorCondition(*floor)
		if err != nil {
			return filter.Expression{}, err
		}
		conds = append(conds, c)
	}
	return filter.NewExpression(conds...)
}

// floorCondition matches an exact floor via a degenerate numeric range,
// since floor is indexed as a NUMERIC field.
func floorCondition(floor int) (filter.Condition, error) {
	f := float64(floor)
	r, err := filter.NewRangeBounds(&f, &f)
	if err != nil {
		return filter.Condition{}, err
	}
	return filter.NewRange(catalog.FieldFloor, r)
}

func formatStoreContext(stores []StoreHit) string {
	out := "【相关店铺】\n"
	for i, store := range stores {
		out += fmt.Sprintf("%d. %s（%s）- %d楼%s\n", i+1, store.Name, store.Category, store.Floor, store.Area)
		if store.Description != "" {
			out += fmt.Sprintf("   %s...\n", truncateRunesRaw(store.Description, 50))
		}
	}
	return out
}

func formatProductContext(products []ProductHit) string {
	out := "【相关商品】\n"
	for i, p := range products {
		out += fmt.Sprintf("%d. %s", i+1, p.Name)
		if p.Brand != "" {
			out += fmt.Sprintf("（%s）", p.Brand)
		}
		out += fmt.Sprintf(" - ¥%s", strconv.FormatFloat(p.Price, 'f', -1, 64))
		if p.StoreName != "" {
			out += fmt.Sprintf(" @ %s", p.StoreName)
		}
		out += "\n"
	}
	return out
}

func joinSections(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return parts[0] + "\n" + parts[1]
	}
}

// truncateRunes cuts at maxLen runes and appends the lossy marker.
func truncateRunes(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

// truncateRunesRaw cuts at maxLen runes without a marker.
func truncateRunesRaw(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
