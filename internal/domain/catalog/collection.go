// Package catalog defines the mall catalog documents (stores, products,
// locations) and their vector index projections.
package catalog

// Field names shared between documents, index schemas, and search payloads.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldFloor       = "floor"
	FieldArea        = "area"
	FieldBrand       = "brand"
	FieldPrice       = "price"
	FieldStoreID     = "store_id"
	FieldStoreName   = "store_name"
	FieldType        = "type"
	FieldRating      = "rating"
	FieldStock       = "stock"
	FieldTags        = "tags"
	FieldPositionX   = "position_x"
	FieldPositionY   = "position_y"
	FieldPositionZ   = "position_z"
	FieldUpdatedAt   = "updated_at"
)

// Collection describes a named partition of the vector index holding one
// document type's records.
type Collection struct {
	Name          string
	TagFields     []string
	NumericFields []string
}

// OutputFields lists the scalar fields a search should return for this collection.
func (c Collection) OutputFields() []string {
	out := make([]string, 0, len(c.TagFields)+len(c.NumericFields))
	out = append(out, c.TagFields...)
	out = append(out, c.NumericFields...)
	return out
}

// Predefined collections. Field sets match the document scalar projections.
var (
	Stores = Collection{
		Name:          "stores",
		TagFields:     []string{FieldName, FieldDescription, FieldCategory, FieldArea, FieldTags},
		NumericFields: []string{FieldFloor, FieldPositionX, FieldPositionY, FieldPositionZ, FieldRating, FieldUpdatedAt},
	}
	Products = Collection{
		Name:          "products",
		TagFields:     []string{FieldName, FieldDescription, FieldCategory, FieldBrand, FieldStoreID, FieldStoreName, FieldTags},
		NumericFields: []string{FieldPrice, FieldRating, FieldStock, FieldUpdatedAt},
	}
	Locations = Collection{
		Name:          "locations",
		TagFields:     []string{FieldName, FieldDescription, FieldType},
		NumericFields: []string{FieldFloor, FieldPositionX, FieldPositionY, FieldPositionZ, FieldUpdatedAt},
	}
)

// All returns every predefined collection.
func All() []Collection {
	return []Collection{Stores, Products, Locations}
}

// ByName resolves a predefined collection by name.
func ByName(name string) (Collection, bool) {
	for _, c := range All() {
		if c.Name == name {
			return c, true
		}
	}
	return Collection{}, false
}
