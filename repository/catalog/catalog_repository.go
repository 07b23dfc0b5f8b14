package catalog

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/stocklane/inventory/model"
)

// CatalogRepository is the read-only product/variant lookup the ledger
// consumes. Catalog CRUD belongs to the catalog service, not here.
type CatalogRepository interface {
	GetItem(ctx context.Context, productID, variantID uint64) (*model.CatalogItem, error)
}

type SQL struct {
	conn *sqlx.DB
}

func NewCatalogRepository(conn *sqlx.DB) CatalogRepository {
	return &SQL{conn: conn}
}

const getProductItem = `SELECT p.id AS product_id, 0 AS variant_id, p.name, '' AS variant_label, p.price
FROM product p WHERE p.id = ?`

const getVariantItem = `SELECT p.id AS product_id, pv.id AS variant_id, p.name, pv.label AS variant_label, COALESCE(pv.price, p.price) AS price
FROM product p JOIN product_variant pv ON pv.product_id = p.id
WHERE p.id = ? AND pv.id = ?`

func (r *SQL) GetItem(ctx context.Context, productID, variantID uint64) (*model.CatalogItem, error) {
	var item model.CatalogItem
	var err error
	if variantID == 0 {
		err = r.conn.GetContext(ctx, &item, getProductItem, productID)
	} else {
		err = r.conn.GetContext(ctx, &item, getVariantItem, productID, variantID)
	}
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}
