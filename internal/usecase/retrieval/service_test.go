package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/smart-mall/concierge/internal/domain/catalog"
	"github.com/smart-mall/concierge/internal/domain/search/result"
)

func TestSearchStores_MapsFields(t *testing.T) {
	emb := &mockEmbedder{}
	vs := &mockVectorStore{results: map[string][]result.Result{
		"stores": {storeResult("s1", 0.92, "星巴克", "餐饮", "2", "A区")},
	}}
	svc := newTestService(t, emb, vs)

	hits, err := svc.SearchStores(context.Background(), "咖啡", StoreQuery{})
	if err != nil {
		t.Fatalf("SearchStores: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}

	h := hits[0]
	if h.ID != "s1" || h.Name != "星巴克" || h.Category != "餐饮" {
		t.Errorf("unexpected hit: %+v", h)
	}
	if h.Floor != 2 || h.Area != "A区" {
		t.Errorf("unexpected floor/area: %+v", h)
	}
	if h.Position.X != 10 || h.Position.Z != 20 {
		t.Errorf("unexpected position: %+v", h.Position)
	}
	if h.Rating != 4.5 || h.Score != 0.92 {
		t.Errorf("unexpected rating/score: %+v", h)
	}
	if emb.calls != 1 {
		t.Errorf("expected 1 embed call, got %d", emb.calls)
	}
}

func TestSearchStores_DefaultTopK(t *testing.T) {
	emb := &mockEmbedder{}
	vs := &mockVectorStore{}
	svc := newTestService(t, emb, vs)

	if _, err := svc.SearchStores(context.Background(), "咖啡", StoreQuery{}); err != nil {
		t.Fatalf("SearchStores: %v", err)
	}
	if len(vs.calls) != 1 {
		t.Fatalf("expected 1 search call, got %d", len(vs.calls))
	}
	if vs.calls[0].topK != DefaultTopK {
		t.Errorf("expected top-k %d, got %d", DefaultTopK, vs.calls[0].topK)
	}
	if vs.calls[0].col.Name != catalog.Stores.Name {
		t.Errorf("expected stores collection, got %s", vs.calls[0].col.Name)
	}
}

func TestSearchStores_BuildsFilter(t *testing.T) {
	emb := &mockEmbedder{}
	vs := &mockVectorStore{}
	svc := newTestService(t, emb, vs)

	floor := 2
	if _, err := svc.SearchStores(context.Background(), "咖啡", StoreQuery{Category: "餐饮", Floor: &floor}); err != nil {
		t.Fatalf("SearchStores: %v", err)
	}

	conds := vs.calls[0].filters.Conditions()
	if len(conds) != 2 {
		t.Fatalf("expected 2 filter conditions, got %d", len(conds))
	}
	if conds[0].Key() != catalog.FieldCategory || conds[0].Match() != "餐饮" {
		t.Errorf("unexpected category condition: %+v", conds[0])
	}
	if conds[1].Key() != catalog.FieldFloor || !conds[1].IsRange() {
		t.Fatalf("unexpected floor condition: %+v", conds[1])
	}
	r := conds[1].Range()
	if r.GTE() == nil || r.LTE() == nil || *r.GTE() != 2 || *r.LTE() != 2 {
		t.Errorf("expected floor range [2,2], got gte=%v lte=%v", r.GTE(), r.LTE())
	}
}

func TestSearchProducts_PriceRangeFilter(t *testing.T) {
	emb := &mockEmbedder{}
	vs := &mockVectorStore{}
	svc := newTestService(t, emb, vs)

	minPrice, maxPrice := 100.0, 500.0
	_, err := svc.SearchProducts(context.Background(), "球鞋", ProductQuery{
		Brand:    "Nike",
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
	})
	if err != nil {
		t.Fatalf("SearchProducts: %v", err)
	}

	conds := vs.calls[0].filters.Conditions()
	if len(conds) != 2 {
		t.Fatalf("expected 2 filter conditions, got %d", len(conds))
	}
	if conds[0].Key() != catalog.FieldBrand || conds[0].Match() != "Nike" {
		t.Errorf("unexpected brand condition: %+v", conds[0])
	}
	r := conds[1].Range()
	if conds[1].Key() != catalog.FieldPrice || r == nil || *r.GTE() != 100 || *r.LTE() != 500 {
		t.Errorf("unexpected price condition: %+v", conds[1])
	}
}

func TestSearch_DropsBelowThreshold(t *testing.T) {
	emb := &mockEmbedder{}
	vs := &mockVectorStore{results: map[string][]result.Result{
		"stores": {
			storeResult("s1", 0.9, "星巴克", "餐饮", "2", "A区"),
			storeResult("s2", 0.3, "Nike", "运动", "1", "B区"),
		},
	}}
	svc := newTestService(t, emb, vs)

	hits, err := svc.SearchStores(context.Background(), "咖啡", StoreQuery{})
	if err != nil {
		t.Fatalf("SearchStores: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "s1" {
		t.Fatalf("expected only s1 above threshold, got %+v", hits)
	}
}

func TestSearch_SortedByScoreDescending(t *testing.T) {
	emb := &mockEmbedder{}
	vs := &mockVectorStore{results: map[string][]result.Result{
		"stores": {
			storeResult("s1", 0.6, "优衣库", "服装", "3", "C区"),
			storeResult("s2", 0.95, "星巴克", "餐饮", "2", "A区"),
		},
	}}
	svc := newTestService(t, emb, vs)

	hits, err := svc.SearchStores(context.Background(), "咖啡", StoreQuery{})
	if err != nil {
		t.Fatalf("SearchStores: %v", err)
	}
	if len(hits) != 2 || hits[0].ID != "s2" || hits[1].ID != "s1" {
		t.Fatalf("expected descending score order, got %+v", hits)
	}
}

func TestSearch_EmbedErrorPropagates(t *testing.T) {
	wantErr := errors.New("provider down")
	emb := &mockEmbedder{err: wantErr}
	vs := &mockVectorStore{}
	svc := newTestService(t, emb, vs)

	if _, err := svc.SearchStores(context.Background(), "咖啡", StoreQuery{}); !errors.Is(err, wantErr) {
		t.Fatalf("expected embed error, got %v", err)
	}
	if len(vs.calls) != 0 {
		t.Errorf("store should not be queried after embed failure")
	}
}

func TestSearchLocations(t *testing.T) {
	emb := &mockEmbedder{}
	vs := &mockVectorStore{results: map[string][]result.Result{
		"locations": {result.New("l1", 0.8, map[string]string{
			catalog.FieldName:  "一楼洗手间",
			catalog.FieldType:  "facility",
			catalog.FieldFloor: "1",
		})},
	}}
	svc := newTestService(t, emb, vs)

	hits, err := svc.SearchLocations(context.Background(), "洗手间", LocationQuery{})
	if err != nil {
		t.Fatalf("SearchLocations: %v", err)
	}
	if len(hits) != 1 || hits[0].Name != "一楼洗手间" || hits[0].Type != "facility" || hits[0].Floor != 1 {
		t.Fatalf("unexpected location hit: %+v", hits)
	}
}

func TestNavigateToStore_Found(t *testing.T) {
	emb := &mockEmbedder{}
	vs := &mockVectorStore{results: map[string][]result.Result{
		"stores": {storeResult("s1", 0.9, "Nike", "运动", "1", "A区")},
	}}
	svc := newTestService(t, emb, vs)

	nav, err := svc.NavigateToStore(context.Background(), "Nike")
	if err != nil {
		t.Fatalf("NavigateToStore: %v", err)
	}
	if !nav.Found {
		t.Fatal("expected store to be found")
	}
	if nav.Store.ID != "s1" {
		t.Errorf("unexpected store: %+v", nav.Store)
	}
	if nav.Message != "Nike 位于 1 楼 A区" {
		t.Errorf("unexpected message: %q", nav.Message)
	}
	if vs.calls[0].topK != 1 {
		t.Errorf("expected top-1 lookup, got top-%d", vs.calls[0].topK)
	}
}

func TestNavigateToStore_NotFound(t *testing.T) {
	emb := &mockEmbedder{}
	vs := &mockVectorStore{}
	svc := newTestService(t, emb, vs)

	nav, err := svc.NavigateToStore(context.Background(), "不存在的店")
	if err != nil {
		t.Fatalf("NavigateToStore: %v", err)
	}
	if nav.Found {
		t.Fatal("expected miss, got found")
	}
	if !strings.Contains(nav.Message, "未找到店铺") {
		t.Errorf("unexpected message: %q", nav.Message)
	}
}

func TestBuildContext(t *testing.T) {
	emb := &mockEmbedder{}
	vs := &mockVectorStore{results: map[string][]result.Result{
		"stores":   {storeResult("s1", 0.9, "星巴克", "餐饮", "2", "A区")},
		"products": {productResult("p1", 0.8, "拿铁", "星巴克", "38", "星巴克")},
	}}
	svc := newTestService(t, emb, vs)

	got := svc.BuildContext(context.Background(), "咖啡", true, true, 2000)
	if !strings.Contains(got, "【相关店铺】") || !strings.Contains(got, "1. 星巴克（餐饮）- 2楼A区") {
		t.Errorf("missing store section: %q", got)
	}
	if !strings.Contains(got, "【相关商品】") || !strings.Contains(got, "1. 拿铁（星巴克） - ¥38 @ 星巴克") {
		t.Errorf("missing product section: %q", got)
	}
	if len(vs.calls) != 2 {
		t.Fatalf("expected 2 searches, got %d", len(vs.calls))
	}
	if vs.calls[0].topK != 3 || vs.calls[1].topK != 5 {
		t.Errorf("unexpected top-k pair: %d/%d", vs.calls[0].topK, vs.calls[1].topK)
	}
}

func TestBuildContext_Truncates(t *testing.T) {
	emb := &mockEmbedder{}
	vs := &mockVectorStore{results: map[string][]result.Result{
		"stores": {storeResult("s1", 0.9, "星巴克", "餐饮", "2", "A区")},
	}}
	svc := newTestService(t, emb, vs)

	got := svc.BuildContext(context.Background(), "咖啡", true, false, 10)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncation marker, got %q", got)
	}
	if n := len([]rune(strings.TrimSuffix(got, "..."))); n != 10 {
		t.Errorf("expected 10 runes before marker, got %d", n)
	}
}

func TestBuildContext_SkipsFailedSection(t *testing.T) {
	emb := &mockEmbedder{err: errors.New("provider down")}
	vs := &mockVectorStore{}
	svc := newTestService(t, emb, vs)

	if got := svc.BuildContext(context.Background(), "咖啡", true, true, 2000); got != "" {
		t.Errorf("expected empty context when all sections fail, got %q", got)
	}
}

func TestDegradedMode_ServesFallbacks(t *testing.T) {
	emb := &mockEmbedder{}
	vs := &mockVectorStore{}
	svc := newTestService(t, emb, vs)
	svc.SetDegraded(true)

	stores, err := svc.SearchStores(context.Background(), "咖啡", StoreQuery{})
	if err != nil {
		t.Fatalf("SearchStores: %v", err)
	}
	if len(stores) != 1 || stores[0].ID != "store_001" {
		t.Fatalf("unexpected fallback stores: %+v", stores)
	}

	products, err := svc.SearchProducts(context.Background(), "球鞋", ProductQuery{})
	if err != nil {
		t.Fatalf("SearchProducts: %v", err)
	}
	if len(products) != 1 || products[0].ID != "prod_001" {
		t.Fatalf("unexpected fallback products: %+v", products)
	}

	nav, err := svc.NavigateToStore(context.Background(), "Nike")
	if err != nil {
		t.Fatalf("NavigateToStore: %v", err)
	}
	if !nav.Found || nav.Store.Name != "Nike" || nav.Store.Floor != 2 {
		t.Fatalf("unexpected fallback navigation: %+v", nav)
	}

	if emb.calls != 0 || len(vs.calls) != 0 {
		t.Errorf("degraded mode must not touch embedder or store (embed=%d search=%d)", emb.calls, len(vs.calls))
	}

	svc.SetDegraded(false)
	if svc.Degraded() {
		t.Error("expected degraded mode cleared")
	}
}
