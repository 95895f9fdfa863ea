package concierge

import (
	"context"

	"github.com/smart-mall/concierge/internal/usecase/retrieval"
)

// Position is a point in the mall coordinate system.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// StoreResult is one store hit with its similarity score.
type StoreResult struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Floor       int      `json:"floor"`
	Area        string   `json:"area"`
	Position    Position `json:"position"`
	Rating      float64  `json:"rating"`
	Score       float64  `json:"score"`
}

// ProductResult is one product hit with its similarity score.
type ProductResult struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	StoreID     string  `json:"store_id"`
	StoreName   string  `json:"store_name"`
	Rating      float64 `json:"rating"`
	Score       float64 `json:"score"`
}

// LocationResult is one navigable location hit.
type LocationResult struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Floor       int      `json:"floor"`
	Position    Position `json:"position"`
	Score       float64  `json:"score"`
}

// NavigateResult answers a navigate-to-store request.
type NavigateResult struct {
	Found   bool        `json:"found"`
	Store   StoreResult `json:"store,omitempty"`
	Message string      `json:"message"`
}

// StoreSearchOptions filter a store search. Zero values mean "no filter"
// and service defaults for TopK/MinScore.
type StoreSearchOptions struct {
	Category string
	Floor    *int
	TopK     int
	MinScore float64
}

// ProductSearchOptions filter a product search.
type ProductSearchOptions struct {
	Category string
	Brand    string
	MinPrice *float64
	MaxPrice *float64
	TopK     int
	MinScore float64
}

// LocationSearchOptions filter a location search.
type LocationSearchOptions struct {
	Type     string
	Floor    *int
	TopK     int
	MinScore float64
}

// SearchStores runs a semantic store search.
func (c *Client) SearchStores(ctx context.Context, query string, opts StoreSearchOptions) ([]StoreResult, error) {
	hits, err := c.retrieval.SearchStores(ctx, query, retrieval.StoreQuery{
		Category: opts.Category,
		Floor:    opts.Floor,
		TopK:     opts.TopK,
		MinScore: opts.MinScore,
	})
	if err != nil {
		return nil, err
	}
	out := make([]StoreResult, len(hits))
	for i, h := range hits {
		out[i] = storeResultFromHit(h)
	}
	return out, nil
}

// SearchProducts runs a semantic product search.
func (c *Client) SearchProducts(ctx context.Context, query string, opts ProductSearchOptions) ([]ProductResult, error) {
	hits, err := c.retrieval.SearchProducts(ctx, query, retrieval.ProductQuery{
		Category: opts.Category,
		Brand:    opts.Brand,
		MinPrice: opts.MinPrice,
		MaxPrice: opts.MaxPrice,
		TopK:     opts.TopK,
		MinScore: opts.MinScore,
	})
	if err != nil {
		return nil, err
	}
	out := make([]ProductResult, len(hits))
	for i, h := range hits {
		out[i] = ProductResult(h)
	}
	return out, nil
}

// SearchLocations runs a semantic location search.
func (c *Client) SearchLocations(ctx context.Context, query string, opts LocationSearchOptions) ([]LocationResult, error) {
	hits, err := c.retrieval.SearchLocations(ctx, query, retrieval.LocationQuery{
		Type:     opts.Type,
		Floor:    opts.Floor,
		TopK:     opts.TopK,
		MinScore: opts.MinScore,
	})
	if err != nil {
		return nil, err
	}
	out := make([]LocationResult, len(hits))
	for i, h := range hits {
		out[i] = LocationResult{
			ID:          h.ID,
			Name:        h.Name,
			Type:        h.Type,
			Description: h.Description,
			Floor:       h.Floor,
			Position:    Position(h.Position),
			Score:       h.Score,
		}
	}
	return out, nil
}

// NavigateToStore finds the best-matching store by name.
func (c *Client) NavigateToStore(ctx context.Context, name string) (NavigateResult, error) {
	res, err := c.retrieval.NavigateToStore(ctx, name)
	if err != nil {
		return NavigateResult{}, err
	}
	return NavigateResult{
		Found:   res.Found,
		Store:   storeResultFromHit(res.Store),
		Message: res.Message,
	}, nil
}

// BuildContext renders retrieved stores and products into a prompt
// context block, truncated to maxLen runes.
func (c *Client) BuildContext(ctx context.Context, query string, includeStores, includeProducts bool, maxLen int) string {
	return c.retrieval.BuildContext(ctx, query, includeStores, includeProducts, maxLen)
}

func storeResultFromHit(h retrieval.StoreHit) StoreResult {
	return StoreResult{
		ID:          h.ID,
		Name:        h.Name,
		Category:    h.Category,
		Description: h.Description,
		Floor:       h.Floor,
		Area:        h.Area,
		Position:    Position(h.Position),
		Rating:      h.Rating,
		Score:       h.Score,
	}
}
