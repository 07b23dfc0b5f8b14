package model

import (
	"time"

	"github.com/stocklane/inventory/constant"
)

// StockRecord is the persisted stock line for one (product, variant) pair.
// VariantID 0 is the product's default line. All mutation goes through the
// version-conditioned writes in repository/stock; nothing else may touch
// CurrentStock or ReservedStock.
type StockRecord struct {
	ID                uint64     `db:"id" json:"-"`
	ProductID         uint64     `db:"product_id" json:"product_id"`
	VariantID         uint64     `db:"variant_id" json:"variant_id,omitempty"`
	CurrentStock      int64      `db:"current_stock" json:"current_stock"`
	ReservedStock     int64      `db:"reserved_stock" json:"reserved_stock"`
	LowStockThreshold int64      `db:"low_stock_threshold" json:"low_stock_threshold"`
	AllowBackorder    bool       `db:"allow_backorder" json:"allow_backorder"`
	RestockDate       *time.Time `db:"restock_date" json:"restock_date,omitempty"`
	Version           int64      `db:"version" json:"-"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// Available is the sellable quantity: current minus reserved, floored at zero.
func (s *StockRecord) Available() int64 {
	avail := s.CurrentStock - s.ReservedStock
	if avail < 0 {
		return 0
	}
	return avail
}

// Status classifies the record for storefront display.
func (s *StockRecord) Status() constant.StockStatus {
	avail := s.Available()
	if avail == 0 && !s.AllowBackorder {
		return constant.StockStatusOutOfStock
	}
	if avail > 0 && avail <= s.LowStockThreshold {
		return constant.StockStatusLowStock
	}
	return constant.StockStatusInStock
}

// CanDeduct reports whether quantity can be taken from current stock without
// breaking the non-negative invariant. Backorder-enabled records always pass.
func (s *StockRecord) CanDeduct(quantity int64) bool {
	if s.AllowBackorder {
		return true
	}
	return s.CurrentStock-quantity >= 0
}

type InventoryHistory struct {
	ID               uint64                    `db:"id" json:"id"`
	ProductID        uint64                    `db:"product_id" json:"product_id"`
	VariantID        uint64                    `db:"variant_id" json:"variant_id,omitempty"`
	PreviousQuantity int64                     `db:"previous_quantity" json:"previous_quantity"`
	NewQuantity      int64                     `db:"new_quantity" json:"new_quantity"`
	Adjustment       int64                     `db:"adjustment" json:"adjustment"`
	Reason           constant.AdjustmentReason `db:"reason" json:"reason"`
	ActorID          string                    `db:"actor_id" json:"actor_id"`
	Metadata         Metadata                  `db:"metadata" json:"metadata,omitempty"`
	CreatedAt        time.Time                 `db:"created_at" json:"created_at"`
}

type UpdateInventoryRequest struct {
	ProductID  uint64                    `json:"product_id" validate:"required"`
	VariantID  uint64                    `json:"variant_id"`
	Adjustment int64                     `json:"adjustment" validate:"required"`
	Reason     constant.AdjustmentReason `json:"reason" validate:"required"`
	ActorID    string                    `json:"actor_id" validate:"required"`
	Metadata   Metadata                  `json:"metadata"`
	// RetryCount bounds the optimistic-lock retry loop. Zero means the
	// configured default. Threaded explicitly so callers (and tests) can
	// force exhaustion.
	RetryCount int `json:"retry_count"`
}

type AdjustmentResult struct {
	ProductID        uint64            `json:"product_id"`
	VariantID        uint64            `json:"variant_id,omitempty"`
	PreviousQuantity int64             `json:"previous_quantity"`
	NewQuantity      int64             `json:"new_quantity"`
	AvailableStock   int64             `json:"available_stock"`
	History          *InventoryHistory `json:"history,omitempty"`
}

type BulkUpdateResult struct {
	ProductID uint64            `json:"product_id"`
	VariantID uint64            `json:"variant_id,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	ErrorCode string            `json:"error_code,omitempty"`
	Result    *AdjustmentResult `json:"result,omitempty"`
}

type StockInfoView struct {
	ProductID         uint64               `json:"product_id"`
	VariantID         uint64               `json:"variant_id,omitempty"`
	ProductName       string               `json:"product_name,omitempty"`
	VariantLabel      string               `json:"variant_label,omitempty"`
	CurrentStock      int64                `json:"current_stock"`
	ReservedStock     int64                `json:"reserved_stock"`
	AvailableStock    int64                `json:"available_stock"`
	LowStockThreshold int64                `json:"low_stock_threshold"`
	AllowBackorder    bool                 `json:"allow_backorder"`
	RestockDate       *time.Time           `json:"restock_date,omitempty"`
	Status            constant.StockStatus `json:"status"`
}

type InventoryHistoryResponse struct {
	History []InventoryHistory `json:"history"`
	Total   int64              `json:"total"`
}

type LowStockAlert struct {
	ProductID      uint64 `db:"product_id" json:"product_id"`
	VariantID      uint64 `db:"variant_id" json:"variant_id,omitempty"`
	ProductName    string `db:"product_name" json:"product_name"`
	VariantLabel   string `db:"variant_label" json:"variant_label,omitempty"`
	AvailableStock int64  `db:"available_stock" json:"available_stock"`
	Threshold      int64  `db:"threshold" json:"threshold"`
}

type OutOfStockEntry struct {
	ProductID    uint64     `db:"product_id" json:"product_id"`
	VariantID    uint64     `db:"variant_id" json:"variant_id,omitempty"`
	ProductName  string     `db:"product_name" json:"product_name"`
	VariantLabel string     `db:"variant_label" json:"variant_label,omitempty"`
	RestockDate  *time.Time `db:"restock_date" json:"restock_date,omitempty"`
}

type InventoryMetrics struct {
	TotalProducts   int64 `db:"total_products" json:"total_products"`
	TotalStock      int64 `db:"total_stock" json:"total_stock"`
	TotalReserved   int64 `db:"total_reserved" json:"total_reserved"`
	LowStockCount   int64 `db:"low_stock_count" json:"low_stock_count"`
	OutOfStockCount int64 `db:"out_of_stock_count" json:"out_of_stock_count"`
}

type TurnoverEntry struct {
	ProductID    uint64  `db:"product_id" json:"product_id"`
	VariantID    uint64  `db:"variant_id" json:"variant_id,omitempty"`
	SoldQuantity int64   `db:"sold_quantity" json:"sold_quantity"`
	AverageStock float64 `db:"average_stock" json:"average_stock"`
	TurnoverRate float64 `json:"turnover_rate"`
}

type TurnoverPeriod struct {
	From time.Time `json:"from" validate:"required"`
	To   time.Time `json:"to" validate:"required"`
}
