package model

// CatalogItem is the read-only product/variant view the ledger consumes from
// the catalog. CRUD on the catalog itself lives elsewhere.
type CatalogItem struct {
	ProductID    uint64  `db:"product_id" json:"product_id"`
	VariantID    uint64  `db:"variant_id" json:"variant_id,omitempty"`
	Name         string  `db:"name" json:"name"`
	VariantLabel string  `db:"variant_label" json:"variant_label,omitempty"`
	Price        float64 `db:"price" json:"price"`
}
