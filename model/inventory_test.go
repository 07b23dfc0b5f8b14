package model_test

import (
	"testing"
	"time"

	"github.com/stocklane/inventory/constant"
	"github.com/stocklane/inventory/model"
)

func TestStockRecord_Available(t *testing.T) {
	tests := []struct {
		name string
		rec  model.StockRecord
		want int64
	}{
		{
			name: "current minus reserved",
			rec:  model.StockRecord{CurrentStock: 10, ReservedStock: 3},
			want: 7,
		},
		{
			name: "fully reserved",
			rec:  model.StockRecord{CurrentStock: 5, ReservedStock: 5},
			want: 0,
		},
		{
			name: "over-reserved floors at zero",
			rec:  model.StockRecord{CurrentStock: 2, ReservedStock: 5},
			want: 0,
		},
		{
			name: "backordered negative current floors at zero",
			rec:  model.StockRecord{CurrentStock: -3, AllowBackorder: true},
			want: 0,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.Available(); got != tt.want {
				t.Fatalf("Available() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStockRecord_Status(t *testing.T) {
	tests := []struct {
		name string
		rec  model.StockRecord
		want constant.StockStatus
	}{
		{
			name: "in stock",
			rec:  model.StockRecord{CurrentStock: 100, LowStockThreshold: 5},
			want: constant.StockStatusInStock,
		},
		{
			name: "at the threshold is low stock",
			rec:  model.StockRecord{CurrentStock: 5, LowStockThreshold: 5},
			want: constant.StockStatusLowStock,
		},
		{
			name: "nothing available",
			rec:  model.StockRecord{CurrentStock: 4, ReservedStock: 4},
			want: constant.StockStatusOutOfStock,
		},
		{
			name: "empty but backorderable stays in stock",
			rec:  model.StockRecord{CurrentStock: 0, AllowBackorder: true},
			want: constant.StockStatusInStock,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.Status(); got != tt.want {
				t.Fatalf("Status() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStockRecord_CanDeduct(t *testing.T) {
	rec := model.StockRecord{CurrentStock: 3}
	if !rec.CanDeduct(3) {
		t.Fatal("deducting exactly the current stock should pass")
	}
	if rec.CanDeduct(4) {
		t.Fatal("deducting past zero should fail without backorder")
	}

	backorder := model.StockRecord{CurrentStock: 0, AllowBackorder: true}
	if !backorder.CanDeduct(100) {
		t.Fatal("backorder records deduct past zero")
	}
}

func TestReservation_IsExpired(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	active := model.Reservation{Status: constant.ReservationStatusActive, ExpiresAt: now.Add(-time.Second)}
	if !active.IsExpired(now) {
		t.Fatal("active hold past its deadline should be expired")
	}

	future := model.Reservation{Status: constant.ReservationStatusActive, ExpiresAt: now.Add(time.Minute)}
	if future.IsExpired(now) {
		t.Fatal("hold before its deadline should not be expired")
	}

	released := model.Reservation{Status: constant.ReservationStatusReleased, ExpiresAt: now.Add(-time.Hour)}
	if released.IsExpired(now) {
		t.Fatal("terminal holds never expire again")
	}
}
