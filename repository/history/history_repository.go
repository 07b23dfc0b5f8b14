package history

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/stocklane/inventory/model"
)

// HistoryRepository is the append-only audit trail. Inserts always ride the
// transaction that carries the paired stock mutation; rows are never updated
// or deleted.
type HistoryRepository interface {
	InsertTx(ctx context.Context, tx *sqlx.Tx, entry *model.InventoryHistory) (uint64, error)
	List(ctx context.Context, productID, variantID uint64, limit, offset int) ([]model.InventoryHistory, int64, error)
	SoldQuantities(ctx context.Context, from, to string) (map[uint64]map[uint64]int64, error)
}

type SQL struct {
	conn *sqlx.DB
}

func NewHistoryRepository(conn *sqlx.DB) HistoryRepository {
	return &SQL{conn: conn}
}

func (r *SQL) InsertTx(ctx context.Context, tx *sqlx.Tx, entry *model.InventoryHistory) (uint64, error) {
	q := "INSERT INTO inventory_history (product_id, variant_id, previous_quantity, new_quantity, adjustment, reason, actor_id, metadata) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
	res, err := tx.ExecContext(ctx, q,
		entry.ProductID, entry.VariantID, entry.PreviousQuantity, entry.NewQuantity,
		entry.Adjustment, entry.Reason, entry.ActorID, entry.Metadata)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (r *SQL) List(ctx context.Context, productID, variantID uint64, limit, offset int) ([]model.InventoryHistory, int64, error) {
	q := `SELECT id, product_id, variant_id, previous_quantity, new_quantity, adjustment, reason, actor_id, metadata, created_at
FROM inventory_history WHERE product_id = ? AND variant_id = ?
ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := r.conn.QueryxContext(ctx, q, productID, variantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := make([]model.InventoryHistory, 0)
	for rows.Next() {
		var e model.InventoryHistory
		if err := rows.StructScan(&e); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.conn.GetContext(ctx, &total, "SELECT COUNT(*) FROM inventory_history WHERE product_id = ? AND variant_id = ?", productID, variantID); err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// SoldQuantities aggregates sale deltas per (product, variant) inside a date
// range, for the turnover report.
func (r *SQL) SoldQuantities(ctx context.Context, from, to string) (map[uint64]map[uint64]int64, error) {
	q := `SELECT product_id, variant_id, COALESCE(SUM(-adjustment), 0) AS sold
FROM inventory_history
WHERE reason = 'sale' AND adjustment < 0 AND created_at >= ? AND created_at < ?
GROUP BY product_id, variant_id`
	rows, err := r.conn.QueryxContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sold := make(map[uint64]map[uint64]int64)
	for rows.Next() {
		var productID, variantID uint64
		var qty int64
		if err := rows.Scan(&productID, &variantID, &qty); err != nil {
			return nil, err
		}
		if sold[productID] == nil {
			sold[productID] = make(map[uint64]int64)
		}
		sold[productID][variantID] = qty
	}
	return sold, rows.Err()
}
