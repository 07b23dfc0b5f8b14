package model

import (
	"time"

	"github.com/stocklane/inventory/constant"
)

// Reservation is a time-bounded hold on stock tied to a checkout session.
// Terminal statuses (released, expired, converted) are never reused; a retry
// always creates a new reservation.
type Reservation struct {
	ReservationID string                     `db:"reservation_id" json:"reservation_id"`
	ProductID     uint64                     `db:"product_id" json:"product_id"`
	VariantID     uint64                     `db:"variant_id" json:"variant_id,omitempty"`
	Quantity      int64                      `db:"quantity" json:"quantity"`
	SessionID     string                     `db:"session_id" json:"session_id"`
	ExpiresAt     time.Time                  `db:"expires_at" json:"expires_at"`
	Status        constant.ReservationStatus `db:"status" json:"status"`
	CreatedAt     time.Time                  `db:"created_at" json:"created_at"`
}

func (r *Reservation) IsExpired(now time.Time) bool {
	return r.Status == constant.ReservationStatusActive && now.After(r.ExpiresAt)
}

type ReserveInventoryRequest struct {
	ProductID  uint64 `json:"product_id" validate:"required"`
	VariantID  uint64 `json:"variant_id"`
	Quantity   int64  `json:"quantity" validate:"required,gt=0"`
	SessionID  string `json:"session_id" validate:"required"`
	DurationMs int64  `json:"duration_ms"`
	ActorID    string `json:"actor_id"`
}

// ReservationResult is a soft outcome: insufficient stock is Success=false
// with the available count, not an error.
type ReservationResult struct {
	Success        bool   `json:"success"`
	ReservationID  string `json:"reservation_id,omitempty"`
	AvailableStock int64  `json:"available_stock"`
	Message        string `json:"message,omitempty"`
}
