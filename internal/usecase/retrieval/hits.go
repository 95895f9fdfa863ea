package retrieval

import (
	"strconv"
	"strings"

	"github.com/smart-mall/concierge/internal/domain/catalog"
	"github.com/smart-mall/concierge/internal/domain/search/result"
)

// StoreHit is a store search result with its similarity score.
type StoreHit struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Floor       int              `json:"floor"`
	Area        string           `json:"area"`
	Position    catalog.Position `json:"position"`
	Rating      float64          `json:"rating"`
	Score       float64          `json:"score"`
}

// ProductHit is a product search result with its similarity score.
type ProductHit struct {
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

// LocationHit is a navigable location search result with its similarity score.
type LocationHit struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Type        string           `json:"type"`
	Description string           `json:"description"`
	Floor       int              `json:"floor"`
	Position    catalog.Position `json:"position"`
	Score       float64          `json:"score"`
}

func parseStoreHit(r result.Result) StoreHit {
	return StoreHit{
		ID:          r.ID(),
		Name:        r.Field(catalog.FieldName),
		Category:    r.Field(catalog.FieldCategory),
		Description: r.Field(catalog.FieldDescription),
		Floor:       parseInt(r.Field(catalog.FieldFloor)),
		Area:        r.Field(catalog.FieldArea),
		Position:    parsePosition(r),
		Rating:      parseFloat(r.Field(catalog.FieldRating)),
		Score:       r.Score(),
	}
}

func parseProductHit(r result.Result) ProductHit {
	return ProductHit{
		ID:          r.ID(),
		Name:        r.Field(catalog.FieldName),
		Brand:       r.Field(catalog.FieldBrand),
		Category:    r.Field(catalog.FieldCategory),
		Description: r.Field(catalog.FieldDescription),
		Price:       parseFloat(r.Field(catalog.FieldPrice)),
		StoreID:     r.Field(catalog.FieldStoreID),
		StoreName:   r.Field(catalog.FieldStoreName),
		Rating:      parseFloat(r.Field(catalog.FieldRating)),
		Score:       r.Score(),
	}
}

func parseLocationHit(r result.Result) LocationHit {
	return LocationHit{
		ID:          r.ID(),
		Name:        r.Field(catalog.FieldName),
		Type:        r.Field(catalog.FieldType),
		Description: r.Field(catalog.FieldDescription),
		Floor:       parseInt(r.Field(catalog.FieldFloor)),
		Position:    parsePosition(r),
		Score:       r.Score(),
	}
}

func parsePosition(r result.Result) catalog.Position {
	return catalog.Position{
		X: parseFloat(r.Field(catalog.FieldPositionX)),
		Y: parseFloat(r.Field(catalog.FieldPositionY)),
		Z: parseFloat(r.Field(catalog.FieldPositionZ)),
	}
}

func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
