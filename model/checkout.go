package model

// CheckoutLine is one basket line passed to validate-and-reserve. Transient,
// never persisted.
type CheckoutLine struct {
	ProductID         uint64 `json:"product_id" validate:"required"`
	VariantID         uint64 `json:"variant_id"`
	RequestedQuantity int64  `json:"requested_quantity" validate:"required,gt=0"`
	VariantLabel      string `json:"variant_label,omitempty"`
}

type ValidatedProduct struct {
	ProductID         uint64  `json:"product_id"`
	VariantID         uint64  `json:"variant_id,omitempty"`
	ProductName       string  `json:"product_name,omitempty"`
	VariantLabel      string  `json:"variant_label,omitempty"`
	Price             float64 `json:"price,omitempty"`
	RequestedQuantity int64   `json:"requested_quantity"`
	AvailableStock    int64   `json:"available_stock"`
	Sufficient        bool    `json:"sufficient"`
}

type ValidationResult struct {
	IsValid           bool               `json:"is_valid"`
	ValidatedProducts []ValidatedProduct `json:"validated_products"`
	Errors            []string           `json:"errors"`
}

type CheckoutRequest struct {
	SessionID string         `json:"session_id" validate:"required"`
	ActorID   string         `json:"actor_id" validate:"required"`
	Lines     []CheckoutLine `json:"lines" validate:"required,dive,required"`
}

type CheckoutResult struct {
	SessionID string             `json:"session_id"`
	Deducted  []AdjustmentResult `json:"deducted"`
}
