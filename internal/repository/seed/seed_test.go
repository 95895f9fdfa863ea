package seed

import "testing"

func TestLoad(t *testing.T) {
	ds, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ds.Stores) == 0 || len(ds.Products) == 0 || len(ds.Locations) == 0 {
		t.Fatalf("expected all three document types, got %d/%d/%d",
			len(ds.Stores), len(ds.Products), len(ds.Locations))
	}

	for _, s := range ds.Stores {
		if s.ID == "" || s.Name == "" {
			t.Errorf("store missing id or name: %+v", s)
		}
		if s.UpdatedAt == 0 {
			t.Errorf("store %s: updated_at not stamped", s.ID)
		}
	}

	// Products reference seeded stores.
	storeIDs := make(map[string]bool, len(ds.Stores))
	for _, s := range ds.Stores {
		storeIDs[s.ID] = true
	}
	for _, p := range ds.Products {
		if !storeIDs[p.StoreID] {
			t.Errorf("product %s references unknown store %s", p.ID, p.StoreID)
		}
		if p.Price <= 0 {
			t.Errorf("product %s: non-positive price", p.ID)
		}
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile("does-not-exist.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
