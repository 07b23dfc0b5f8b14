package constant

type ContextKey string

const (
	ActorIDKey ContextKey = "actor_id"

	// SystemActorID attributes automated mutations (expiry sweep, consumers).
	SystemActorID = "system"
)

type AdjustmentReason string

const (
	ReasonRestock    AdjustmentReason = "restock"
	ReasonSale       AdjustmentReason = "sale"
	ReasonReturn     AdjustmentReason = "return"
	ReasonAdjustment AdjustmentReason = "adjustment"
	ReasonCorrection AdjustmentReason = "correction"
)

var ValidAdjustmentReasons = map[AdjustmentReason]bool{
	ReasonRestock:    true,
	ReasonSale:       true,
	ReasonReturn:     true,
	ReasonAdjustment: true,
	ReasonCorrection: true,
}

type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

type ReservationStatus string

const (
	ReservationStatusActive    ReservationStatus = "active"
	ReservationStatusReleased  ReservationStatus = "released"
	ReservationStatusExpired   ReservationStatus = "expired"
	ReservationStatusConverted ReservationStatus = "converted"
)

const (
	// DefaultVariantID is the variant id of a product's default stock line.
	DefaultVariantID uint64 = 0

	// DefaultRetryCount bounds the optimistic-lock retry loop when the caller
	// does not pass an explicit budget.
	DefaultRetryCount = 3
)
