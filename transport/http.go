package transport

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	appcheckout "github.com/stocklane/inventory/application/checkout"
	appinventory "github.com/stocklane/inventory/application/inventory"
	appreservation "github.com/stocklane/inventory/application/reservation"
	"github.com/stocklane/inventory/constant"
	"github.com/stocklane/inventory/model"
	utilsContext "github.com/stocklane/inventory/utils/context"
	"github.com/stocklane/inventory/utils/errors"
	validatorx "github.com/stocklane/inventory/utils/validator"
	httpSwagger "github.com/swaggo/http-swagger"
)

type RestHandler struct {
	InventoryApp   appinventory.InventoryApp
	ReservationApp appreservation.ReservationApp
	CheckoutApp    appcheckout.CheckoutApp
}

func NewTransport(inventoryApp appinventory.InventoryApp, reservationApp appreservation.ReservationApp, checkoutApp appcheckout.CheckoutApp, internalAPIKey string) http.Handler {
	mux := mux.NewRouter()

	rh := &RestHandler{
		InventoryApp:   inventoryApp,
		ReservationApp: reservationApp,
		CheckoutApp:    checkoutApp,
	}

	// Swagger UI and prometheus metrics
	mux.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)
	mux.Path("/metrics").Handler(promhttp.Handler())

	// Inventory reads
	mux.HandleFunc("/v1/inventory/{productID}/availability", rh.CheckAvailability).Methods(http.MethodGet)
	mux.HandleFunc("/v1/inventory/{productID}/available", rh.GetAvailableInventory).Methods(http.MethodGet)
	mux.HandleFunc("/v1/inventory/{productID}/history", rh.GetInventoryHistory).Methods(http.MethodGet)
	mux.HandleFunc("/v1/inventory/{productID}", rh.GetProductInventoryInfo).Methods(http.MethodGet)

	// Inventory writes
	mux.HandleFunc("/v1/inventory/adjust", rh.UpdateInventory).Methods(http.MethodPost)
	mux.HandleFunc("/v1/inventory/bulk", rh.BulkUpdateInventory).Methods(http.MethodPost)

	// Reservations
	mux.HandleFunc("/v1/reservations", rh.ReserveInventory).Methods(http.MethodPost)
	mux.HandleFunc("/v1/reservations/{reservationID}", rh.ReleaseReservation).Methods(http.MethodDelete)
	mux.HandleFunc("/v1/sessions/{sessionID}/reservations", rh.ReleaseSessionReservations).Methods(http.MethodDelete)

	// Checkout
	mux.HandleFunc("/v1/checkout", rh.FinalizeCheckout).Methods(http.MethodPost)

	// Reports
	mux.HandleFunc("/v1/reports/low-stock", rh.GetLowStockProducts).Methods(http.MethodGet)
	mux.HandleFunc("/v1/reports/out-of-stock", rh.GetOutOfStockProducts).Methods(http.MethodGet)
	mux.HandleFunc("/v1/reports/metrics", rh.GetInventoryMetrics).Methods(http.MethodGet)
	mux.HandleFunc("/v1/reports/turnover", rh.GetInventoryTurnover).Methods(http.MethodGet)

	// Internal routes (service-to-service, API key)
	internal := mux.PathPrefix("/internal/v1").Subrouter()
	internal.Use(InternalMiddleware(internalAPIKey))
	internal.HandleFunc("/reservation/{reservationID}/expire", rh.ExpireReservation).Methods(http.MethodPost)
	internal.HandleFunc("/reservations/sweep", rh.SweepExpired).Methods(http.MethodPost)

	// middleware
	mux.Use(LoggingMiddleware())
	mux.Use(ActorMiddleware())

	return mux
}

// CheckAvailability handler
// @Summary Check availability
// @Description Check whether the requested quantity is available for a product/variant
// @Tags Inventory
// @Produce json
// @Param productID path int true "Product ID"
// @Param variant_id query int false "Variant ID"
// @Param quantity query int true "Requested quantity"
// @Success 200 {object} transport.responseEnvelope
// @Failure 400 {object} transport.responseEnvelope
// @Router /v1/inventory/{productID}/availability [get]
func (s *RestHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, variantID, err := pathIDs(r)
	if err != nil {
		writeError(w, err)
		return
	}
	quantity, err := strconv.ParseInt(r.URL.Query().Get("quantity"), 10, 64)
	if err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	available, err := s.InventoryApp.CheckAvailability(ctx, productID, variantID, quantity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, map[string]bool{"available": available})
}

// GetAvailableInventory handler
// @Summary Get available inventory
// @Tags Inventory
// @Produce json
// @Param productID path int true "Product ID"
// @Param variant_id query int false "Variant ID"
// @Success 200 {object} transport.responseEnvelope
// @Router /v1/inventory/{productID}/available [get]
func (s *RestHandler) GetAvailableInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, variantID, err := pathIDs(r)
	if err != nil {
		writeError(w, err)
		return
	}

	available, err := s.InventoryApp.GetAvailableInventory(ctx, productID, variantID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, map[string]int64{"available_stock": available})
}

// GetProductInventoryInfo handler
// @Summary Get inventory info for a product or variant
// @Tags Inventory
// @Produce json
// @Param productID path int true "Product ID"
// @Param variant_id query int false "Variant ID"
// @Success 200 {object} model.StockInfoView
// @Router /v1/inventory/{productID} [get]
func (s *RestHandler) GetProductInventoryInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, variantID, err := pathIDs(r)
	if err != nil {
		writeError(w, err)
		return
	}

	info, err := s.InventoryApp.GetProductInventoryInfo(ctx, productID, variantID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, info)
}

// UpdateInventory handler
// @Summary Adjust stock
// @Description Apply a signed adjustment with reason and audit metadata
// @Tags Inventory
// @Accept json
// @Produce json
// @Param request body model.UpdateInventoryRequest true "Adjustment Request"
// @Success 200 {object} model.AdjustmentResult
// @Failure 409 {object} transport.responseEnvelope
// @Router /v1/inventory/adjust [post]
func (s *RestHandler) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.UpdateInventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}
	if req.ActorID == "" {
		req.ActorID = utilsContext.GetActorID(ctx)
	}
	if err := validatorx.ValidateStruct(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	result, err := s.InventoryApp.UpdateInventory(ctx, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, result)
}

type bulkUpdateRequest struct {
	Updates []model.UpdateInventoryRequest `json:"updates" validate:"required,dive"`
}

// BulkUpdateInventory handler
// @Summary Bulk adjust stock
// @Description Apply independent adjustments; lines succeed or fail individually
// @Tags Inventory
// @Accept json
// @Produce json
// @Param request body transport.bulkUpdateRequest true "Bulk Request"
// @Success 200 {array} model.BulkUpdateResult
// @Router /v1/inventory/bulk [post]
func (s *RestHandler) BulkUpdateInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req bulkUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}
	if len(req.Updates) == 0 {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	results := s.InventoryApp.BulkUpdateInventory(ctx, req.Updates, utilsContext.GetActorID(ctx))
	writeSuccess(w, results)
}

// GetInventoryHistory handler
// @Summary Get adjustment history
// @Tags Inventory
// @Produce json
// @Param productID path int true "Product ID"
// @Param variant_id query int false "Variant ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} model.InventoryHistoryResponse
// @Router /v1/inventory/{productID}/history [get]
func (s *RestHandler) GetInventoryHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, variantID, err := pathIDs(r)
	if err != nil {
		writeError(w, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	history, err := s.InventoryApp.GetInventoryHistory(ctx, productID, variantID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, history)
}

// ReserveInventory handler
// @Summary Reserve stock for a session
// @Description Hold stock for a limited duration; insufficient stock is a soft failure
// @Tags Reservation
// @Accept json
// @Produce json
// @Param request body model.ReserveInventoryRequest true "Reserve Request"
// @Success 200 {object} model.ReservationResult
// @Router /v1/reservations [post]
func (s *RestHandler) ReserveInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.ReserveInventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}
	if req.ActorID == "" {
		req.ActorID = utilsContext.GetActorID(ctx)
	}
	if err := validatorx.ValidateStruct(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	result, err := s.ReservationApp.Reserve(ctx, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, result)
}

// ReleaseReservation handler
// @Summary Release a reservation
// @Description Idempotent: unknown or finished reservations are a no-op
// @Tags Reservation
// @Produce json
// @Param reservationID path string true "Reservation ID"
// @Success 200 {object} transport.responseEnvelope
// @Router /v1/reservations/{reservationID} [delete]
func (s *RestHandler) ReleaseReservation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reservationID := mux.Vars(r)["reservationID"]
	if reservationID == "" {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	if err := s.ReservationApp.Release(ctx, reservationID); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, nil)
}

// ReleaseSessionReservations handler
// @Summary Release every active reservation of a session
// @Tags Reservation
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} transport.responseEnvelope
// @Router /v1/sessions/{sessionID}/reservations [delete]
func (s *RestHandler) ReleaseSessionReservations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID := mux.Vars(r)["sessionID"]
	if sessionID == "" {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	if err := s.ReservationApp.ReleaseSessionReservations(ctx, sessionID); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, nil)
}

// FinalizeCheckout handler
// @Summary Finalize a checkout basket
// @Description Validate and deduct every line in one transaction, all-or-nothing
// @Tags Checkout
// @Accept json
// @Produce json
// @Param request body model.CheckoutRequest true "Checkout Request"
// @Success 200 {object} model.CheckoutResult
// @Failure 409 {object} transport.responseEnvelope
// @Router /v1/checkout [post]
func (s *RestHandler) FinalizeCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}
	if req.ActorID == "" {
		req.ActorID = utilsContext.GetActorID(ctx)
	}
	if err := validatorx.ValidateStruct(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	result, err := s.CheckoutApp.FinalizeCheckout(ctx, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, result)
}

// GetLowStockProducts handler
// @Summary Low stock report
// @Tags Reports
// @Produce json
// @Param threshold query int false "Availability threshold"
// @Success 200 {array} model.LowStockAlert
// @Router /v1/reports/low-stock [get]
func (s *RestHandler) GetLowStockProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	threshold, _ := strconv.ParseInt(r.URL.Query().Get("threshold"), 10, 64)
	alerts, err := s.InventoryApp.GetLowStockProducts(ctx, threshold)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, alerts)
}

// GetOutOfStockProducts handler
// @Summary Out of stock report
// @Tags Reports
// @Produce json
// @Success 200 {array} model.OutOfStockEntry
// @Router /v1/reports/out-of-stock [get]
func (s *RestHandler) GetOutOfStockProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries, err := s.InventoryApp.GetOutOfStockProducts(ctx)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, entries)
}

// GetInventoryMetrics handler
// @Summary Aggregate inventory metrics
// @Tags Reports
// @Produce json
// @Success 200 {object} model.InventoryMetrics
// @Router /v1/reports/metrics [get]
func (s *RestHandler) GetInventoryMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	metrics, err := s.InventoryApp.GetInventoryMetrics(ctx)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, metrics)
}

// GetInventoryTurnover handler
// @Summary Inventory turnover report
// @Tags Reports
// @Produce json
// @Param from query string true "Period start (RFC3339)"
// @Param to query string true "Period end (RFC3339)"
// @Success 200 {array} model.TurnoverEntry
// @Router /v1/reports/turnover [get]
func (s *RestHandler) GetInventoryTurnover(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	entries, err := s.InventoryApp.GetInventoryTurnover(ctx, model.TurnoverPeriod{From: from, To: to})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, entries)
}

// ExpireReservation handler (internal, called by the expiration consumer)
func (s *RestHandler) ExpireReservation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reservationID := mux.Vars(r)["reservationID"]
	if reservationID == "" {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	if err := s.ReservationApp.ExpireReservation(ctx, reservationID); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, nil)
}

// SweepExpired handler (internal, scan fallback for missed expiry messages)
func (s *RestHandler) SweepExpired(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	swept, err := s.ReservationApp.SweepExpired(ctx)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, map[string]int{"swept": swept})
}

func pathIDs(r *http.Request) (uint64, uint64, error) {
	productID, err := strconv.ParseUint(mux.Vars(r)["productID"], 10, 64)
	if err != nil || productID == 0 {
		return 0, 0, errors.SetCustomError(constant.ErrInvalidRequest)
	}
	variantID := constant.DefaultVariantID
	if raw := r.URL.Query().Get("variant_id"); raw != "" {
		variantID, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return 0, 0, errors.SetCustomError(constant.ErrInvalidRequest)
		}
	}
	return productID, variantID, nil
}
