package agent

import "testing"

func TestRegistry_TwelveTools(t *testing.T) {
	if n := len(Tools()); n != 12 {
		t.Fatalf("expected 12 tools, got %d", n)
	}
}

func TestToolsForContext_HidesImageSearchWithoutImage(t *testing.T) {
	withImage := ToolsForContext(true)
	withoutImage := ToolsForContext(false)

	if len(withImage) != 12 {
		t.Errorf("expected 12 tools with image, got %d", len(withImage))
	}
	if len(withoutImage) != 11 {
		t.Errorf("expected 11 tools without image, got %d", len(withoutImage))
	}
	for _, schema := range withoutImage {
		if schema.Name == ToolSearchByImage {
			t.Fatal("search_by_image must be hidden without an image")
		}
	}
}

func TestTierOf(t *testing.T) {
	cases := []struct {
		name string
		want Tier
	}{
		{ToolSearchStores, TierSafe},
		{ToolNavigateToStore, TierSafe},
		{ToolGetCart, TierSafe},
		{ToolAddToCart, TierConfirm},
		{ToolCreateOrder, TierCritical},
	}
	for _, tc := range cases {
		got, ok := TierOf(tc.name)
		if !ok {
			t.Fatalf("tool %s missing from registry", tc.name)
		}
		if got != tc.want {
			t.Errorf("%s: expected tier %s, got %s", tc.name, tc.want, got)
		}
	}

	if _, ok := TierOf("drop_database"); ok {
		t.Error("unknown tool should not resolve")
	}
}
