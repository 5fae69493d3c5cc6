// Package models defines core data structures for products, catalogs, and recommendations.
package models

// Product is one catalog row. Raw feature values are kept as loaded; normalized
// values live in the similarity index, never here.
type Product struct {
	ID         int64   `json:"id" db:"product_id"`
	Name       string  `json:"name" db:"product_name"`
	Rating     float64 `json:"rating" db:"avg_rating"`
	CoPurchase float64 `json:"co_purchase_count" db:"co_purchase_count"`
}

// Catalog is an ordered product list. Position in Products is the insertion
// order used to break ties between equal similarity scores.
type Catalog struct {
	Products []Product `json:"products"`
	// Source describes where the catalog was loaded from (path or DSN).
	Source string `json:"source,omitempty"`
	// Fingerprint is a content hash of the source, when available.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Len returns the number of products in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Products)
}

// Features is a normalized (rating, co-purchase) pair in [0,1]x[0,1].
type Features struct {
	Rating     float64 `json:"rating"`
	CoPurchase float64 `json:"co_purchase"`
}

// IsZero reports whether both components are zero.
func (f Features) IsZero() bool {
	return f.Rating == 0 && f.CoPurchase == 0
}

// ProductDetail is a product together with its normalized features.
type ProductDetail struct {
	Product
	Normalized Features `json:"normalized"`
	Position   int      `json:"position"`
}
