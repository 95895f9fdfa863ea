package catalog

import (
	"strconv"
	"strings"
	"time"
)

// Document is the sync-side contract every catalog document satisfies:
// a stable id, a canonical text projection for embedding, and the scalar
// fields stored next to the vector. The embedding is always regenerated
// from EmbeddingText, never edited independently of the text fields.
type Document interface {
	DocID() string
	EmbeddingText() string
	ScalarFields() map[string]string
}

// Record is the index-resident projection of a Document: scalar fields plus
// the embedding vector. Created and overwritten whole, never patched in place.
type Record struct {
	ID     string
	Fields map[string]string
	Vector []float32
}

// Position is a 3-axis coordinate inside the mall scene.
type Position struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

// Store is a mall store document.
type Store struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Category    string   `yaml:"category" json:"category"`
	Floor       int      `yaml:"floor" json:"floor"`
	Area        string   `yaml:"area" json:"area"`
	Position    Position `yaml:"position" json:"position"`
	Rating      float64  `yaml:"rating" json:"rating"`
	Tags        []string `yaml:"tags" json:"tags"`
	UpdatedAt   int64    `yaml:"updated_at" json:"updated_at"`
}

// DocID implements Document.
func (s Store) DocID() string { return s.ID }

// EmbeddingText joins the searchable text fields into the canonical
// embedding projection.
func (s Store) EmbeddingText() string {
	return joinText(s.Name, s.Category, s.Description, strings.Join(s.Tags, " "))
}

// ScalarFields implements Document.
func (s Store) ScalarFields() map[string]string {
	return map[string]string{
		FieldName:        s.Name,
		FieldDescription: s.Description,
		FieldCategory:    s.Category,
		FieldFloor:       strconv.Itoa(s.Floor),
		FieldArea:        s.Area,
		FieldPositionX:   formatFloat(s.Position.X),
		FieldPositionY:   formatFloat(s.Position.Y),
		FieldPositionZ:   formatFloat(s.Position.Z),
		FieldRating:      formatFloat(s.Rating),
		FieldTags:        strings.Join(s.Tags, ","),
		FieldUpdatedAt:   strconv.FormatInt(s.UpdatedAt, 10),
	}
}

// Product is a catalog product document.
type Product struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Category    string   `yaml:"category" json:"category"`
	Brand       string   `yaml:"brand" json:"brand"`
	Price       float64  `yaml:"price" json:"price"`
	StoreID     string   `yaml:"store_id" json:"store_id"`
	StoreName   string   `yaml:"store_name" json:"store_name"`
	Rating      float64  `yaml:"rating" json:"rating"`
	Stock       int      `yaml:"stock" json:"stock"`
	Tags        []string `yaml:"tags" json:"tags"`
	UpdatedAt   int64    `yaml:"updated_at" json:"updated_at"`
}

// DocID implements Document.
func (p Product) DocID() string { return p.ID }

// EmbeddingText joins the searchable text fields into the canonical
// embedding projection.
func (p Product) EmbeddingText() string {
	return joinText(p.Name, p.Brand, p.Category, p.Description, strings.Join(p.Tags, " "))
}

// ScalarFields implements Document.
func (p Product) ScalarFields() map[string]string {
	return map[string]string{
		FieldName:        p.Name,
		FieldDescription: p.Description,
		FieldCategory:    p.Category,
		FieldBrand:       p.Brand,
		FieldPrice:       formatFloat(p.Price),
		FieldStoreID:     p.StoreID,
		FieldStoreName:   p.StoreName,
		FieldRating:      formatFloat(p.Rating),
		FieldStock:       strconv.Itoa(p.Stock),
		FieldTags:        strings.Join(p.Tags, ","),
		FieldUpdatedAt:   strconv.FormatInt(p.UpdatedAt, 10),
	}
}

// Location is a navigable mall location: area, facility, entrance, elevator.
type Location struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Type        string   `yaml:"type" json:"type"`
	Description string   `yaml:"description" json:"description"`
	Floor       int      `yaml:"floor" json:"floor"`
	Position    Position `yaml:"position" json:"position"`
	UpdatedAt   int64    `yaml:"updated_at" json:"updated_at"`
}

// DocID implements Document.
func (l Location) DocID() string { return l.ID }

// EmbeddingText joins the searchable text fields into the canonical
// embedding projection.
func (l Location) EmbeddingText() string {
	return joinText(l.Name, l.Type, l.Description)
}

// ScalarFields implements Document.
func (l Location) ScalarFields() map[string]string {
	return map[string]string{
		FieldName:        l.Name,
		FieldDescription: l.Description,
		FieldType:        l.Type,
		FieldFloor:       strconv.Itoa(l.Floor),
		FieldPositionX:   formatFloat(l.Position.X),
		FieldPositionY:   formatFloat(l.Position.Y),
		FieldPositionZ:   formatFloat(l.Position.Z),
		FieldUpdatedAt:   strconv.FormatInt(l.UpdatedAt, 10),
	}
}

// Now returns the logical timestamp stamped on documents at sync time.
func Now() int64 { return time.Now().Unix() }

func joinText(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
