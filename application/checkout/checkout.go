package checkout

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	appinventory "github.com/stocklane/inventory/application/inventory"
	appreservation "github.com/stocklane/inventory/application/reservation"
	"github.com/stocklane/inventory/constant"
	"github.com/stocklane/inventory/model"
	catalogrepo "github.com/stocklane/inventory/repository/catalog"
	redisrepo "github.com/stocklane/inventory/repository/redis"
	stockrepo "github.com/stocklane/inventory/repository/stock"
	txrepo "github.com/stocklane/inventory/repository/tx"
	"github.com/stocklane/inventory/utils/errors"
	"github.com/stocklane/inventory/utils/logger"
	"go.uber.org/zap"
)

// CheckoutApp validates and finalizes multi-line baskets. Validation is
// strictly all-or-nothing: it never shrinks requested quantities. Callers
// that want to soft-adjust a basket to the available stock must do so when
// building the checkout session, before calling in here.
type CheckoutApp interface {
	// ValidateAndReserve checks every line against available stock inside
	// the caller's transaction. It performs no mutation and never commits
	// or aborts the transaction; on IsValid=false the caller is expected to
	// abort.
	ValidateAndReserve(ctx context.Context, tx *sqlx.Tx, lines []model.CheckoutLine) (*model.ValidationResult, error)
	// FinalizeCheckout owns one transaction for the whole basket: convert
	// the session's holds, validate, deduct every line, commit. A failure
	// on any line rolls back everything, holds included.
	FinalizeCheckout(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResult, error)
}

type checkoutAppImpl struct {
	txRepo         txrepo.TxRepository
	stockRepo      stockrepo.StockRepository
	catalogRepo    catalogrepo.CatalogRepository
	redisRepo      redisrepo.Repository
	inventoryApp   appinventory.InventoryApp
	reservationApp appreservation.ReservationApp
}

func NewCheckoutApp(
	txRepo txrepo.TxRepository,
	stockRepo stockrepo.StockRepository,
	catalogRepo catalogrepo.CatalogRepository,
	redisRepo redisrepo.Repository,
	inventoryApp appinventory.InventoryApp,
	reservationApp appreservation.ReservationApp,
) CheckoutApp {
	return &checkoutAppImpl{
		txRepo:         txRepo,
		stockRepo:      stockRepo,
		catalogRepo:    catalogRepo,
		redisRepo:      redisRepo,
		inventoryApp:   inventoryApp,
		reservationApp: reservationApp,
	}
}

func (s *checkoutAppImpl) ValidateAndReserve(ctx context.Context, tx *sqlx.Tx, lines []model.CheckoutLine) (*model.ValidationResult, error) {
	if len(lines) == 0 {
		return nil, errors.SetCustomError(constant.ErrInvalidRequest)
	}

	result := &model.ValidationResult{
		IsValid:           true,
		ValidatedProducts: make([]model.ValidatedProduct, 0, len(lines)),
		Errors:            make([]string, 0),
	}

	for _, line := range lines {
		validated := model.ValidatedProduct{
			ProductID:         line.ProductID,
			VariantID:         line.VariantID,
			VariantLabel:      line.VariantLabel,
			RequestedQuantity: line.RequestedQuantity,
		}

		item, err := s.catalogRepo.GetItem(ctx, line.ProductID, line.VariantID)
		if err != nil {
			logger.Error("[ValidateAndReserve] catalog lookup", zap.String("error", err.Error()))
			return nil, errors.SetCustomError(constant.ErrInternal)
		}
		if item == nil {
			result.IsValid = false
			result.Errors = append(result.Errors, fmt.Sprintf("product %d is not available", line.ProductID))
			result.ValidatedProducts = append(result.ValidatedProducts, validated)
			continue
		}
		validated.ProductName = item.Name
		validated.Price = item.Price
		if validated.VariantLabel == "" {
			validated.VariantLabel = item.VariantLabel
		}

		rec, err := s.stockRepo.GetStockTx(ctx, tx, line.ProductID, line.VariantID)
		if err != nil {
			logger.Error("[ValidateAndReserve] get stock", zap.String("error", err.Error()))
			return nil, errors.SetCustomError(constant.ErrInternal)
		}
		if rec != nil {
			validated.AvailableStock = rec.Available()
		}

		if validated.AvailableStock >= line.RequestedQuantity {
			validated.Sufficient = true
		} else {
			result.IsValid = false
			result.Errors = append(result.Errors, fmt.Sprintf(
				"insufficient stock for %s: %d available, %d requested",
				displayName(validated), validated.AvailableStock, line.RequestedQuantity))
		}
		result.ValidatedProducts = append(result.ValidatedProducts, validated)
	}

	return result, nil
}

func (s *checkoutAppImpl) FinalizeCheckout(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResult, error) {
	if req.SessionID == "" || req.ActorID == "" || len(req.Lines) == 0 {
		return nil, errors.SetCustomError(constant.ErrInvalidRequest)
	}

	tx, err := s.txRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("[FinalizeCheckout] begin tx", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	committed := false
	defer func() {
		if !committed {
			_ = s.txRepo.RollbackTx(tx)
		}
	}()

	// settle the session's holds before validating: a hold guarantees the
	// basket it was created for, so it must not count against it. On
	// rollback the holds stay active.
	if err := s.reservationApp.ConvertSessionTx(ctx, tx, req.SessionID); err != nil {
		return nil, err
	}

	validation, err := s.ValidateAndReserve(ctx, tx, req.Lines)
	if err != nil {
		return nil, err
	}
	if !validation.IsValid {
		logger.Info("[FinalizeCheckout] validation failed",
			zap.String("session_id", req.SessionID),
			zap.Strings("errors", validation.Errors))
		return nil, errors.SetCustomErrorDetails(constant.ErrInsufficientStock, map[string]interface{}{
			"errors":             validation.Errors,
			"validated_products": validation.ValidatedProducts,
		})
	}

	deducted := make([]model.AdjustmentResult, 0, len(req.Lines))
	for _, line := range req.Lines {
		if err := s.inventoryApp.AtomicDeductTx(ctx, tx, line.ProductID, line.VariantID, line.RequestedQuantity); err != nil {
			logger.Error("[FinalizeCheckout] deduct", zap.Uint64("product_id", line.ProductID), zap.String("error", err.Error()))
			return nil, err
		}
		if err := s.inventoryApp.RecordHistoryTx(ctx, tx, line.ProductID, line.VariantID, -line.RequestedQuantity,
			constant.ReasonSale, req.ActorID, model.Metadata{"session_id": req.SessionID}); err != nil {
			logger.Error("[FinalizeCheckout] record history", zap.Uint64("product_id", line.ProductID), zap.String("error", err.Error()))
			return nil, err
		}

		rec, err := s.stockRepo.GetStockTx(ctx, tx, line.ProductID, line.VariantID)
		if err != nil || rec == nil {
			logger.Error("[FinalizeCheckout] reread stock", zap.Uint64("product_id", line.ProductID), zap.Error(err))
			return nil, errors.SetCustomError(constant.ErrInternal)
		}
		deducted = append(deducted, model.AdjustmentResult{
			ProductID:        line.ProductID,
			VariantID:        line.VariantID,
			PreviousQuantity: rec.CurrentStock + line.RequestedQuantity,
			NewQuantity:      rec.CurrentStock,
			AvailableStock:   rec.Available(),
		})
	}

	if err := s.txRepo.CommitTx(tx); err != nil {
		logger.Error("[FinalizeCheckout] commit tx", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	committed = true

	for _, line := range req.Lines {
		if err := s.redisRepo.InvalidateAvailability(ctx, line.ProductID, line.VariantID); err != nil {
			logger.Warn("[FinalizeCheckout] cache invalidation failed", zap.String("error", err.Error()))
		}
	}

	return &model.CheckoutResult{SessionID: req.SessionID, Deducted: deducted}, nil
}

func displayName(v model.ValidatedProduct) string {
	if v.VariantLabel != "" {
		return fmt.Sprintf("%s (%s)", v.ProductName, v.VariantLabel)
	}
	if v.ProductName != "" {
		return v.ProductName
	}
	return fmt.Sprintf("product %d", v.ProductID)
}
