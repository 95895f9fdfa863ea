package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/smart-mall/concierge/internal/domain"
	"github.com/smart-mall/concierge/internal/usecase/retrieval"
)

// executor dispatches tool calls to the retrieval and commerce backends.
// Not-found lookups are successful empty payloads, not errors; only
// unexpected backend failures bubble up.
type executor struct {
	retriever retriever
	commerce  commerceStore
}

func (e *executor) execute(ctx context.Context, sessionID, name string, args map[string]any) (map[string]any, error) {
	switch name {
	case ToolNavigateToStore:
		return e.navigateToStore(ctx, args)
	case ToolNavigateToArea:
		return e.navigateToArea(ctx, args)
	case ToolSearchProducts:
		return e.searchProducts(ctx, args)
	case ToolSearchStores:
		return e.searchStores(ctx, args)
	case ToolSearchByImage:
		return e.searchByImage(ctx, args)
	case ToolGetProductDetail:
		return e.getProductDetail(ctx, args)
	case ToolGetStoreInfo:
		return e.getStoreInfo(ctx, args)
	case ToolGetCart:
		return e.getCart(ctx, sessionID)
	case ToolAddToCart:
		return e.addToCart(ctx, sessionID, args)
	case ToolCreateOrder:
		return e.createOrder(ctx, sessionID, args)
	case ToolRecommendProducts:
		return e.recommendProducts(ctx, args)
	case ToolRecommendRestaurants:
		return e.recommendRestaurants(ctx, args)
	default:
		return nil, fmt.Errorf("%s: %w", name, domain.ErrUnknownTool)
	}
}

func (e *executor) navigateToStore(ctx context.Context, args map[string]any) (map[string]any, error) {
	name := argString(args, "store_name")
	nav, err := e.retriever.NavigateToStore(ctx, name)
	if err != nil {
		return nil, err
	}
	if !nav.Found {
		return map[string]any{
			"success": false,
			"message": nav.Message,
		}, nil
	}
	return map[string]any{
		"success": true,
		"store":   nav.Store,
		"message": nav.Message,
	}, nil
}

func (e *executor) navigateToArea(ctx context.Context, args map[string]any) (map[string]any, error) {
	name := argString(args, "area_name")
	hits, err := e.retriever.SearchLocations(ctx, name, retrieval.LocationQuery{})
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return map[string]any{
			"success": false,
			"message": fmt.Sprintf("未找到区域: %s", name),
		}, nil
	}
	return map[string]any{
		"success":   true,
		"area":      hits[0],
		"locations": hits,
		"message":   fmt.Sprintf("%s 位于 %d 楼", hits[0].Name, hits[0].Floor),
	}, nil
}

func (e *executor) searchProducts(ctx context.Context, args map[string]any) (map[string]any, error) {
	keyword := argString(args, "keyword")
	hits, err := e.retriever.SearchProducts(ctx, keyword, retrieval.ProductQuery{
		Category: argString(args, "category"),
		Brand:    argString(args, "brand"),
		MinPrice: argFloat(args, "min_price"),
		MaxPrice: argFloat(args, "max_price"),
	})
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return map[string]any{
			"success":  true,
			"products": []retrieval.ProductHit{},
			"total":    0,
			"message":  fmt.Sprintf("未找到相关商品: %s", keyword),
		}, nil
	}
	return map[string]any{
		"success":  true,
		"products": hits,
		"total":    len(hits),
	}, nil
}

func (e *executor) searchStores(ctx context.Context, args map[string]any) (map[string]any, error) {
	keyword := argString(args, "keyword")
	hits, err := e.retriever.SearchStores(ctx, keyword, retrieval.StoreQuery{
		Category: argString(args, "category"),
	})
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return map[string]any{
			"success": true,
			"stores":  []retrieval.StoreHit{},
			"total":   0,
			"message": fmt.Sprintf("未找到相关店铺: %s", keyword),
		}, nil
	}
	return map[string]any{
		"success": true,
		"stores":  hits,
		"total":   len(hits),
	}, nil
}

func (e *executor) searchByImage(ctx context.Context, args map[string]any) (map[string]any, error) {
	description := argString(args, "image_description")
	switch argString(args, "search_type") {
	case "product":
		hits, err := e.retriever.SearchProducts(ctx, description, retrieval.ProductQuery{})
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"success": true,
			"message": "根据图片风格为您推荐",
			"results": hits,
		}, nil
	case "food":
		hits, err := e.retriever.SearchStores(ctx, description, retrieval.StoreQuery{Category: "餐饮"})
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"success": true,
			"message": "根据图片为您推荐餐厅",
			"results": hits,
		}, nil
	default:
		hits, err := e.retriever.SearchStores(ctx, description, retrieval.StoreQuery{})
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"success": true,
			"message": "根据图片为您推荐店铺",
			"results": hits,
		}, nil
	}
}

func (e *executor) getProductDetail(ctx context.Context, args map[string]any) (map[string]any, error) {
	id := argString(args, "product_id")
	p, err := e.commerce.GetProductDetail(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return map[string]any{
				"success": false,
				"message": fmt.Sprintf("未找到商品: %s", id),
			}, nil
		}
		return nil, err
	}
	return map[string]any{
		"success": true,
		"product": p,
	}, nil
}

func (e *executor) getStoreInfo(ctx context.Context, args map[string]any) (map[string]any, error) {
	id := argString(args, "store_id")
	s, err := e.commerce.GetStoreInfo(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrStoreNotFound) {
			return map[string]any{
				"success": false,
				"message": fmt.Sprintf("未找到店铺: %s", id),
			}, nil
		}
		return nil, err
	}
	return map[string]any{
		"success": true,
		"store":   s,
	}, nil
}

func (e *executor) getCart(ctx context.Context, sessionID string) (map[string]any, error) {
	cart, err := e.commerce.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"success": true,
		"cart":    cart,
		"total":   cart.Total(),
		"count":   cart.Count(),
	}, nil
}

func (e *executor) addToCart(ctx context.Context, sessionID string, args map[string]any) (map[string]any, error) {
	productID := argString(args, "product_id")
	cart, err := e.commerce.AddToCart(ctx, sessionID, productID, argString(args, "sku_id"), argInt(args, "quantity"))
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return map[string]any{
				"success": false,
				"message": fmt.Sprintf("未找到商品: %s", productID),
			}, nil
		}
		return nil, err
	}
	return map[string]any{
		"success":    true,
		"cart_id":    cart.ID,
		"message":    "已添加到购物车",
		"cart_total": cart.Total(),
	}, nil
}

func (e *executor) createOrder(ctx context.Context, sessionID string, args map[string]any) (map[string]any, error) {
	order, err := e.commerce.CreateOrder(ctx, sessionID, argString(args, "cart_id"), argString(args, "address_id"))
	if err != nil {
		if errors.Is(err, domain.ErrCartEmpty) {
			return map[string]any{
				"success": false,
				"message": "购物车是空的，无法下单",
			}, nil
		}
		return nil, err
	}
	return map[string]any{
		"success": true,
		"order":   order,
		"message": "订单创建成功，请完成支付",
	}, nil
}

func (e *executor) recommendProducts(ctx context.Context, args map[string]any) (map[string]any, error) {
	parts := []string{"推荐"}
	for _, key := range []string{"category", "style", "price_range"} {
		if v := argString(args, key); v != "" {
			parts = append(parts, v)
		}
	}

	hits, err := e.retriever.SearchProducts(ctx, strings.Join(parts, " "), retrieval.ProductQuery{
		Category: argString(args, "category"),
	})
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return map[string]any{
			"success":  true,
			"products": []retrieval.ProductHit{},
			"message":  "暂时没有合适的推荐",
		}, nil
	}
	return map[string]any{
		"success":  true,
		"products": hits,
	}, nil
}

func (e *executor) recommendRestaurants(ctx context.Context, args map[string]any) (map[string]any, error) {
	parts := []string{"餐厅", "美食"}
	if v := argString(args, "cuisine"); v != "" {
		parts = append(parts, v)
	}
	if v := argString(args, "style"); v != "" {
		parts = append(parts, v)
	}

	hits, err := e.retriever.SearchStores(ctx, strings.Join(parts, " "), retrieval.StoreQuery{Category: "餐饮"})
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return map[string]any{
			"success":     true,
			"restaurants": []map[string]any{},
			"message":     "未找到相关餐厅",
		}, nil
	}

	restaurants := make([]map[string]any, 0, len(hits))
	for _, h := range hits {
		restaurants = append(restaurants, map[string]any{
			"id":          h.ID,
			"name":        h.Name,
			"cuisine":     h.Category,
			"floor":       h.Floor,
			"area":        h.Area,
			"description": h.Description,
			"score":       h.Score,
		})
	}
	return map[string]any{
		"success":     true,
		"restaurants": restaurants,
	}, nil
}

func argString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// argFloat returns nil when the argument is absent or not numeric.
func argFloat(args map[string]any, key string) *float64 {
	switch v := args[key].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	default:
		return nil
	}
}

func argInt(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
