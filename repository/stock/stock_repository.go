package stock

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/stocklane/inventory/model"
)

// StockRepository is the durable store for stock records. Every write to
// current_stock/reserved_stock is conditioned on the row version so that
// concurrent writers, including other processes, serialize per record.
type StockRepository interface {
	GetStock(ctx context.Context, productID, variantID uint64) (*model.StockRecord, error)
	GetStockTx(ctx context.Context, tx *sqlx.Tx, productID, variantID uint64) (*model.StockRecord, error)
	// EnsureStock lazily creates the zeroed record on first write and
	// returns the current row.
	EnsureStock(ctx context.Context, productID, variantID uint64) (*model.StockRecord, error)
	// CASUpdateStockTx writes both counters conditioned on expectedVersion.
	// Returns false without error when another writer won the race.
	CASUpdateStockTx(ctx context.Context, tx *sqlx.Tx, id uint64, currentStock, reservedStock, expectedVersion int64) (bool, error)
	// DeductStockTx is the sale-path conditional decrement used inside the
	// checkout transaction. Returns false when the non-negative invariant
	// would break (and the record does not allow backorder).
	DeductStockTx(ctx context.Context, tx *sqlx.Tx, productID, variantID uint64, quantity int64) (bool, error)
	// ReleaseReservedTx returns held quantity to the available pool,
	// flooring reserved_stock at zero.
	ReleaseReservedTx(ctx context.Context, tx *sqlx.Tx, productID, variantID uint64, quantity int64) error
	ListLowStock(ctx context.Context, threshold int64) ([]model.LowStockAlert, error)
	ListOutOfStock(ctx context.Context) ([]model.OutOfStockEntry, error)
	GetMetrics(ctx context.Context) (*model.InventoryMetrics, error)
	GetAverageStock(ctx context.Context) ([]model.TurnoverEntry, error)
}

type SQL struct {
	conn *sqlx.DB
}

func NewStockRepository(conn *sqlx.DB) StockRepository {
	return &SQL{conn: conn}
}

const stockColumns = "id, product_id, variant_id, current_stock, reserved_stock, low_stock_threshold, allow_backorder, restock_date, version, updated_at"

func (r *SQL) GetStock(ctx context.Context, productID, variantID uint64) (*model.StockRecord, error) {
	var rec model.StockRecord
	q := "SELECT " + stockColumns + " FROM stock_record WHERE product_id = ? AND variant_id = ?"
	if err := r.conn.GetContext(ctx, &rec, q, productID, variantID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *SQL) GetStockTx(ctx context.Context, tx *sqlx.Tx, productID, variantID uint64) (*model.StockRecord, error) {
	var rec model.StockRecord
	q := "SELECT " + stockColumns + " FROM stock_record WHERE product_id = ? AND variant_id = ?"
	if err := tx.GetContext(ctx, &rec, q, productID, variantID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *SQL) EnsureStock(ctx context.Context, productID, variantID uint64) (*model.StockRecord, error) {
	// INSERT IGNORE keeps concurrent first-writers from failing on the
	// unique (product_id, variant_id) key.
	q := "INSERT IGNORE INTO stock_record (product_id, variant_id, current_stock, reserved_stock, low_stock_threshold, allow_backorder, version) VALUES (?, ?, 0, 0, 0, 0, 1)"
	if _, err := r.conn.ExecContext(ctx, q, productID, variantID); err != nil {
		return nil, err
	}
	return r.GetStock(ctx, productID, variantID)
}

func (r *SQL) CASUpdateStockTx(ctx context.Context, tx *sqlx.Tx, id uint64, currentStock, reservedStock, expectedVersion int64) (bool, error) {
	q := "UPDATE stock_record SET current_stock = ?, reserved_stock = ?, version = version + 1 WHERE id = ? AND version = ?"
	res, err := tx.ExecContext(ctx, q, currentStock, reservedStock, id, expectedVersion)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *SQL) DeductStockTx(ctx context.Context, tx *sqlx.Tx, productID, variantID uint64, quantity int64) (bool, error) {
	q := "UPDATE stock_record SET current_stock = current_stock - ?, version = version + 1 WHERE product_id = ? AND variant_id = ? AND (current_stock - ? >= 0 OR allow_backorder = 1)"
	res, err := tx.ExecContext(ctx, q, quantity, productID, variantID, quantity)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *SQL) ReleaseReservedTx(ctx context.Context, tx *sqlx.Tx, productID, variantID uint64, quantity int64) error {
	q := "UPDATE stock_record SET reserved_stock = GREATEST(reserved_stock - ?, 0), version = version + 1 WHERE product_id = ? AND variant_id = ?"
	_, err := tx.ExecContext(ctx, q, quantity, productID, variantID)
	return err
}

const listLowStockQuery = `SELECT sr.product_id, sr.variant_id, p.name AS product_name, COALESCE(pv.label, '') AS variant_label,
(sr.current_stock - sr.reserved_stock) AS available_stock, ? AS threshold
FROM stock_record sr
JOIN product p ON p.id = sr.product_id
LEFT JOIN product_variant pv ON pv.product_id = sr.product_id AND pv.id = sr.variant_id
WHERE (sr.current_stock - sr.reserved_stock) > 0 AND (sr.current_stock - sr.reserved_stock) <= ?
ORDER BY available_stock ASC`

func (r *SQL) ListLowStock(ctx context.Context, threshold int64) ([]model.LowStockAlert, error) {
	rows, err := r.conn.QueryxContext(ctx, listLowStockQuery, threshold, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := make([]model.LowStockAlert, 0)
	for rows.Next() {
		var a model.LowStockAlert
		if err := rows.StructScan(&a); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

const listOutOfStockQuery = `SELECT sr.product_id, sr.variant_id, p.name AS product_name, COALESCE(pv.label, '') AS variant_label, sr.restock_date
FROM stock_record sr
JOIN product p ON p.id = sr.product_id
LEFT JOIN product_variant pv ON pv.product_id = sr.product_id AND pv.id = sr.variant_id
WHERE (sr.current_stock - sr.reserved_stock) <= 0 AND sr.allow_backorder = 0
ORDER BY sr.product_id, sr.variant_id`

func (r *SQL) ListOutOfStock(ctx context.Context) ([]model.OutOfStockEntry, error) {
	rows, err := r.conn.QueryxContext(ctx, listOutOfStockQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]model.OutOfStockEntry, 0)
	for rows.Next() {
		var e model.OutOfStockEntry
		if err := rows.StructScan(&e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

const metricsQuery = `SELECT COUNT(*) AS total_products,
COALESCE(SUM(current_stock), 0) AS total_stock,
COALESCE(SUM(reserved_stock), 0) AS total_reserved,
COALESCE(SUM(CASE WHEN (current_stock - reserved_stock) > 0 AND (current_stock - reserved_stock) <= low_stock_threshold THEN 1 ELSE 0 END), 0) AS low_stock_count,
COALESCE(SUM(CASE WHEN (current_stock - reserved_stock) <= 0 AND allow_backorder = 0 THEN 1 ELSE 0 END), 0) AS out_of_stock_count
FROM stock_record`

func (r *SQL) GetMetrics(ctx context.Context) (*model.InventoryMetrics, error) {
	var m model.InventoryMetrics
	if err := r.conn.GetContext(ctx, &m, metricsQuery); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *SQL) GetAverageStock(ctx context.Context) ([]model.TurnoverEntry, error) {
	// current_stock stands in for the period average; the history-based
	// sold counts come from the history repository.
	q := "SELECT product_id, variant_id, 0 AS sold_quantity, CAST(current_stock AS DOUBLE) AS average_stock FROM stock_record"
	rows, err := r.conn.QueryxContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]model.TurnoverEntry, 0)
	for rows.Next() {
		var e model.TurnoverEntry
		if err := rows.StructScan(&e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
