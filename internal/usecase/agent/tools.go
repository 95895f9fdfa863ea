package agent

import "github.com/smart-mall/concierge/internal/domain/chat"

// Tier is a tool's safety classification. It is a pure function of the
// tool name, never of the arguments.
type Tier string

const (
	// TierSafe tools execute immediately inside the reasoning loop.
	TierSafe Tier = "safe"
	// TierConfirm tools suspend the turn until the user confirms.
	TierConfirm Tier = "confirm"
	// TierCritical tools (monetary/irreversible) require a hard confirmation.
	TierCritical Tier = "critical"
)

// Tool couples a callable schema with its safety tier.
type Tool struct {
	Schema chat.ToolSchema
	Tier   Tier
}

// Tool names.
const (
	ToolNavigateToStore      = "navigate_to_store"
	ToolNavigateToArea       = "navigate_to_area"
	ToolSearchProducts       = "search_products"
	ToolSearchStores         = "search_stores"
	ToolSearchByImage        = "search_by_image"
	ToolGetProductDetail     = "get_product_detail"
	ToolGetStoreInfo         = "get_store_info"
	ToolAddToCart            = "add_to_cart"
	ToolGetCart              = "get_cart"
	ToolCreateOrder          = "create_order"
	ToolRecommendProducts    = "recommend_products"
	ToolRecommendRestaurants = "recommend_restaurants"
)

// mallTools is the static tool registry, in declaration order.
var mallTools = []Tool{
	{
		Tier: TierSafe,
		Schema: chat.ToolSchema{
			Name:        ToolNavigateToStore,
			Description: "导航到指定店铺，在 3D 场景中高亮显示路径。当用户询问某个店铺在哪里、怎么去某个店铺时使用。",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"store_name": map[string]any{
						"type":        "string",
						"description": "店铺名称，如 Nike、星巴克、优衣库",
					},
					"highlight": map[string]any{
						"type":        "boolean",
						"description": "是否高亮显示店铺",
						"default":     true,
					},
				},
				"required": []string{"store_name"},
			},
		},
	},
	{
		Tier: TierSafe,
		Schema: chat.ToolSchema{
			Name:        ToolNavigateToArea,
			Description: "导航到指定区域，如美食区、服装区、电影院等。当用户询问某个区域在哪里时使用。",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"area_name": map[string]any{
						"type":        "string",
						"description": "区域名称，如美食区、服装区、儿童区",
					},
					"show_stores": map[string]any{
						"type":        "boolean",
						"description": "是否显示区域内的店铺列表",
						"default":     true,
					},
				},
				"required": []string{"area_name"},
			},
		},
	},
	{
		Tier: TierSafe,
		Schema: chat.ToolSchema{
			Name:        ToolSearchProducts,
			Description: "搜索商品，支持关键词、价格范围、品牌、分类筛选。当用户想找某类商品时使用。",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"keyword": map[string]any{
						"type":        "string",
						"description": "搜索关键词，如运动鞋、连衣裙、手机",
					},
					"min_price": map[string]any{
						"type":        "number",
						"description": "最低价格",
					},
					"max_price": map[string]any{
						"type":        "number",
						"description": "最高价格",
					},
					"brand": map[string]any{
						"type":        "string",
						"description": "品牌名称",
					},
					"category": map[string]any{
						"type":        "string",
						"description": "商品分类",
					},
				},
				"required": []string{"keyword"},
			},
		},
	},
	{
		Tier: TierSafe,
		Schema: chat.ToolSchema{
			Name:        ToolSearchStores,
			Description: "搜索店铺，支持关键词和分类筛选。当用户想找某类店铺时使用。",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"keyword": map[string]any{
						"type":        "string",
						"description": "搜索关键词",
					},
					"category": map[string]any{
						"type":        "string",
						"description": "店铺分类，如餐饮、服装、数码",
					},
				},
				"required": []string{"keyword"},
			},
		},
	},
	{
		Tier: TierSafe,
		Schema: chat.ToolSchema{
			Name:        ToolSearchByImage,
			Description: "根据图片搜索相似商品或美食。当用户上传图片并询问类似商品时使用。",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"image_description": map[string]any{
						"type":        "string",
						"description": "图片内容描述（由视觉模型生成）",
					},
					"search_type": map[string]any{
						"type":        "string",
						"enum":        []string{"product", "food", "store"},
						"description": "搜索类型：商品、美食、店铺",
					},
				},
				"required": []string{"image_description", "search_type"},
			},
		},
	},
	{
		Tier: TierSafe,
		Schema: chat.ToolSchema{
			Name:        ToolGetProductDetail,
			Description: "获取商品详情，包括价格、库存、规格、评价等。当用户想了解某个商品的详细信息时使用。",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"product_id": map[string]any{
						"type":        "string",
						"description": "商品 ID",
					},
				},
				"required": []string{"product_id"},
			},
		},
	},
	{
		Tier: TierSafe,
		Schema: chat.ToolSchema{
			Name:        ToolGetStoreInfo,
			Description: "获取店铺信息，包括营业时间、联系方式、优惠活动等。",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"store_id": map[string]any{
						"type":        "string",
						"description": "店铺 ID",
					},
					"info_type": map[string]any{
						"type":        "string",
						"enum":        []string{"basic", "promotions", "reviews"},
						"description": "信息类型：基本信息、优惠活动、用户评价",
						"default":     "basic",
					},
				},
				"required": []string{"store_id"},
			},
		},
	},
	{
		Tier: TierConfirm,
		Schema: chat.ToolSchema{
			Name:        ToolAddToCart,
			Description: "添加商品到购物车。当用户明确表示要购买某商品时使用。",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"product_id": map[string]any{
						"type":        "string",
						"description": "商品 ID",
					},
					"quantity": map[string]any{
						"type":        "integer",
						"description": "数量",
						"default":     1,
					},
					"sku_id": map[string]any{
						"type":        "string",
						"description": "规格 ID（如尺码、颜色）",
					},
				},
				"required": []string{"product_id"},
			},
		},
	},
	{
		Tier: TierSafe,
		Schema: chat.ToolSchema{
			Name:        ToolGetCart,
			Description: "获取购物车内容。当用户询问购物车有什么时使用。",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	},
	{
		Tier: TierCritical,
		Schema: chat.ToolSchema{
			Name:        ToolCreateOrder,
			Description: "创建订单。此操作需要用户确认支付。当用户明确表示要下单、结算时使用。",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"cart_id": map[string]any{
						"type":        "string",
						"description": "购物车 ID",
					},
					"address_id": map[string]any{
						"type":        "string",
						"description": "收货地址 ID",
					},
				},
				"required": []string{"cart_id"},
			},
		},
	},
	{
		Tier: TierSafe,
		Schema: chat.ToolSchema{
			Name:        ToolRecommendProducts,
			Description: "推荐商品。根据用户偏好、历史记录或当前上下文推荐商品。",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"category": map[string]any{
						"type":        "string",
						"description": "商品分类",
					},
					"style": map[string]any{
						"type":        "string",
						"description": "风格偏好，如休闲、正式、运动",
					},
					"price_range": map[string]any{
						"type":        "string",
						"description": "价格范围，如低价、中等、高端",
					},
				},
			},
		},
	},
	{
		Tier: TierSafe,
		Schema: chat.ToolSchema{
			Name:        ToolRecommendRestaurants,
			Description: "推荐餐厅。根据用户口味偏好推荐商城内的餐厅。",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"cuisine": map[string]any{
						"type":        "string",
						"description": "菜系，如中餐、西餐、日料、韩餐",
					},
					"style": map[string]any{
						"type":        "string",
						"description": "风格，如图片中的菜品风格描述",
					},
					"price_level": map[string]any{
						"type":        "string",
						"enum":        []string{"budget", "moderate", "premium"},
						"description": "价格档次",
					},
				},
			},
		},
	},
}

// Tools returns the full registry in declaration order.
func Tools() []Tool {
	return mallTools
}

// ToolsForContext returns the tool schemas visible for a turn. The image
// search tool is only offered when the turn carries an image.
func ToolsForContext(hasImage bool) []chat.ToolSchema {
	schemas := make([]chat.ToolSchema, 0, len(mallTools))
	for _, t := range mallTools {
		if !hasImage && t.Schema.Name == ToolSearchByImage {
			continue
		}
		schemas = append(schemas, t.Schema)
	}
	return schemas
}

// TierOf returns the safety tier of a tool. Unknown tools report false.
func TierOf(name string) (Tier, bool) {
	for _, t := range mallTools {
		if t.Schema.Name == name {
			return t.Tier, true
		}
	}
	return "", false
}
