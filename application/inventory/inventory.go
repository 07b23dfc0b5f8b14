package inventory

import (
	"context"
	stderrors "errors"
	"math/rand"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stocklane/inventory/cmd/config"
	"github.com/stocklane/inventory/constant"
	"github.com/stocklane/inventory/model"
	catalogrepo "github.com/stocklane/inventory/repository/catalog"
	historyrepo "github.com/stocklane/inventory/repository/history"
	redisrepo "github.com/stocklane/inventory/repository/redis"
	reservationrepo "github.com/stocklane/inventory/repository/reservation"
	stockrepo "github.com/stocklane/inventory/repository/stock"
	txrepo "github.com/stocklane/inventory/repository/tx"
	"github.com/stocklane/inventory/utils/errors"
	"github.com/stocklane/inventory/utils/logger"
	"github.com/stocklane/inventory/utils/metrics"
	"go.uber.org/zap"
)

// InventoryApp is the adjustment engine plus the read/reporting surface.
// Every mutation of a stock record flows through here (or through the
// reservation app's reserved-count path); the write is version-conditioned
// and the history row rides the same transaction, so a stock change without
// its audit entry cannot be observed even under partial failure.
type InventoryApp interface {
	CheckAvailability(ctx context.Context, productID, variantID uint64, quantity int64) (bool, error)
	GetAvailableInventory(ctx context.Context, productID, variantID uint64) (int64, error)
	GetProductInventoryInfo(ctx context.Context, productID, variantID uint64) (*model.StockInfoView, error)

	UpdateInventory(ctx context.Context, req *model.UpdateInventoryRequest) (*model.AdjustmentResult, error)
	BulkUpdateInventory(ctx context.Context, updates []model.UpdateInventoryRequest, actorID string) []model.BulkUpdateResult

	// AtomicDeductTx is the sale-path deduction. It participates in the
	// caller's open transaction and assumes availability was validated in
	// that same transaction; the conditional decrement still re-checks the
	// non-negative invariant.
	AtomicDeductTx(ctx context.Context, tx *sqlx.Tx, productID, variantID uint64, quantity int64) error
	RecordHistoryTx(ctx context.Context, tx *sqlx.Tx, productID, variantID uint64, delta int64, reason constant.AdjustmentReason, actorID string, metadata model.Metadata) error
	RecordHistory(ctx context.Context, productID, variantID uint64, delta int64, reason constant.AdjustmentReason, actorID string, metadata model.Metadata) error

	GetInventoryHistory(ctx context.Context, productID, variantID uint64, limit, offset int) (*model.InventoryHistoryResponse, error)
	GetLowStockProducts(ctx context.Context, threshold int64) ([]model.LowStockAlert, error)
	GetOutOfStockProducts(ctx context.Context) ([]model.OutOfStockEntry, error)
	GetInventoryMetrics(ctx context.Context) (*model.InventoryMetrics, error)
	GetInventoryTurnover(ctx context.Context, period model.TurnoverPeriod) ([]model.TurnoverEntry, error)
}

type inventoryAppImpl struct {
	config          *config.Config
	txRepo          txrepo.TxRepository
	stockRepo       stockrepo.StockRepository
	historyRepo     historyrepo.HistoryRepository
	reservationRepo reservationrepo.ReservationRepository
	catalogRepo     catalogrepo.CatalogRepository
	redisRepo       redisrepo.Repository
}

func NewInventoryApp(
	config *config.Config,
	txRepo txrepo.TxRepository,
	stockRepo stockrepo.StockRepository,
	historyRepo historyrepo.HistoryRepository,
	reservationRepo reservationrepo.ReservationRepository,
	catalogRepo catalogrepo.CatalogRepository,
	redisRepo redisrepo.Repository,
) InventoryApp {
	return &inventoryAppImpl{
		config:          config,
		txRepo:          txRepo,
		stockRepo:       stockRepo,
		historyRepo:     historyRepo,
		reservationRepo: reservationRepo,
		catalogRepo:     catalogRepo,
		redisRepo:       redisRepo,
	}
}

const backoffStep = 20 * time.Millisecond

func (s *inventoryAppImpl) UpdateInventory(ctx context.Context, req *model.UpdateInventoryRequest) (*model.AdjustmentResult, error) {
	if req.Adjustment == 0 || req.ActorID == "" || !constant.ValidAdjustmentReasons[req.Reason] {
		return nil, errors.SetCustomError(constant.ErrInvalidRequest)
	}

	retries := req.RetryCount
	if retries <= 0 {
		retries = s.config.Inventory.RetryCount
	}

	for attempt := 0; attempt < retries; attempt++ {
		result, conflict, err := s.tryAdjust(ctx, req)
		if err != nil {
			metrics.AdjustmentsTotal.WithLabelValues(string(req.Reason), "failed").Inc()
			return nil, err
		}
		if conflict {
			metrics.CASConflictsTotal.Inc()
			// jittered backoff before re-reading; another writer bumped the version
			time.Sleep(time.Duration(attempt+1)*backoffStep + time.Duration(rand.Int63n(int64(backoffStep))))
			continue
		}

		metrics.AdjustmentsTotal.WithLabelValues(string(req.Reason), "success").Inc()
		metrics.AdjustmentRetries.Observe(float64(attempt))
		if err := s.redisRepo.InvalidateAvailability(ctx, req.ProductID, req.VariantID); err != nil {
			logger.Warn("[UpdateInventory] cache invalidation failed", zap.String("error", err.Error()))
		}
		return result, nil
	}

	logger.Warn("[UpdateInventory] retry budget exhausted",
		zap.Uint64("product_id", req.ProductID),
		zap.Uint64("variant_id", req.VariantID),
		zap.Int("retry_count", retries))
	metrics.AdjustmentsTotal.WithLabelValues(string(req.Reason), "conflict").Inc()
	return nil, errors.SetCustomError(constant.ErrConcurrencyConflict)
}

// tryAdjust runs one read-compute-write cycle. conflict=true means the
// version-conditioned write lost the race and the caller should retry.
func (s *inventoryAppImpl) tryAdjust(ctx context.Context, req *model.UpdateInventoryRequest) (*model.AdjustmentResult, bool, error) {
	rec, err := s.stockRepo.GetStock(ctx, req.ProductID, req.VariantID)
	if err != nil {
		logger.Error("[UpdateInventory] get stock", zap.String("error", err.Error()))
		return nil, false, errors.SetCustomError(constant.ErrInternal)
	}
	if rec == nil {
		if req.Adjustment < 0 {
			return nil, false, errors.SetCustomError(constant.ErrNotFound)
		}
		// lazy creation on first positive write
		rec, err = s.stockRepo.EnsureStock(ctx, req.ProductID, req.VariantID)
		if err != nil || rec == nil {
			logger.Error("[UpdateInventory] ensure stock", zap.Uint64("product_id", req.ProductID), zap.Error(err))
			return nil, false, errors.SetCustomError(constant.ErrInternal)
		}
	}

	newQuantity := rec.CurrentStock + req.Adjustment
	if newQuantity < rec.ReservedStock && !rec.AllowBackorder {
		// a negative adjustment may not eat into quantity still held by
		// active reservations
		return nil, false, errors.SetInsufficientStock(rec.Available(), -req.Adjustment)
	}

	tx, err := s.txRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("[UpdateInventory] begin tx", zap.String("error", err.Error()))
		return nil, false, errors.SetCustomError(constant.ErrInternal)
	}
	committed := false
	defer func() {
		if !committed {
			_ = s.txRepo.RollbackTx(tx)
		}
	}()

	ok, err := s.stockRepo.CASUpdateStockTx(ctx, tx, rec.ID, newQuantity, rec.ReservedStock, rec.Version)
	if err != nil {
		logger.Error("[UpdateInventory] cas write", zap.String("error", err.Error()))
		return nil, false, errors.SetCustomError(constant.ErrInternal)
	}
	if !ok {
		return nil, true, nil
	}

	entry := &model.InventoryHistory{
		ProductID:        req.ProductID,
		VariantID:        req.VariantID,
		PreviousQuantity: rec.CurrentStock,
		NewQuantity:      newQuantity,
		Adjustment:       req.Adjustment,
		Reason:           req.Reason,
		ActorID:          req.ActorID,
		Metadata:         req.Metadata,
		CreatedAt:        time.Now().UTC(),
	}
	entryID, err := s.historyRepo.InsertTx(ctx, tx, entry)
	if err != nil {
		logger.Error("[UpdateInventory] insert history", zap.String("error", err.Error()))
		return nil, false, errors.SetCustomError(constant.ErrInternal)
	}
	entry.ID = entryID

	if err := s.txRepo.CommitTx(tx); err != nil {
		logger.Error("[UpdateInventory] commit tx", zap.String("error", err.Error()))
		return nil, false, errors.SetCustomError(constant.ErrInternal)
	}
	committed = true

	available := newQuantity - rec.ReservedStock
	if available < 0 {
		available = 0
	}
	return &model.AdjustmentResult{
		ProductID:        req.ProductID,
		VariantID:        req.VariantID,
		PreviousQuantity: rec.CurrentStock,
		NewQuantity:      newQuantity,
		AvailableStock:   available,
		History:          entry,
	}, false, nil
}

// BulkUpdateInventory applies independent adjustments: each line commits or
// fails on its own, unlike the checkout path which is all-or-nothing.
func (s *inventoryAppImpl) BulkUpdateInventory(ctx context.Context, updates []model.UpdateInventoryRequest, actorID string) []model.BulkUpdateResult {
	results := make([]model.BulkUpdateResult, 0, len(updates))
	for i := range updates {
		req := updates[i]
		if req.ActorID == "" {
			req.ActorID = actorID
		}

		line := model.BulkUpdateResult{
			ProductID: req.ProductID,
			VariantID: req.VariantID,
		}
		result, err := s.UpdateInventory(ctx, &req)
		if err != nil {
			line.Error = err.Error()
			var ce errors.CustomError
			if stderrors.As(err, &ce) {
				line.ErrorCode = ce.ErrorCode()
			}
		} else {
			line.Success = true
			line.Result = result
		}
		results = append(results, line)
	}
	return results
}

func (s *inventoryAppImpl) AtomicDeductTx(ctx context.Context, tx *sqlx.Tx, productID, variantID uint64, quantity int64) error {
	if quantity <= 0 {
		return errors.SetCustomError(constant.ErrInvalidRequest)
	}
	ok, err := s.stockRepo.DeductStockTx(ctx, tx, productID, variantID, quantity)
	if err != nil {
		logger.Error("[AtomicDeductTx] deduct", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}
	if !ok {
		// validated moments earlier inside this same transaction, so a miss
		// here means either an unknown record or a broken invariant
		rec, recErr := s.stockRepo.GetStockTx(ctx, tx, productID, variantID)
		if recErr == nil && rec == nil {
			return errors.SetCustomError(constant.ErrNotFound)
		}
		var available int64
		if rec != nil {
			available = rec.Available()
		}
		return errors.SetInsufficientStock(available, quantity)
	}
	return nil
}

func (s *inventoryAppImpl) RecordHistoryTx(ctx context.Context, tx *sqlx.Tx, productID, variantID uint64, delta int64, reason constant.AdjustmentReason, actorID string, metadata model.Metadata) error {
	if !constant.ValidAdjustmentReasons[reason] || actorID == "" {
		return errors.SetCustomError(constant.ErrInvalidRequest)
	}
	rec, err := s.stockRepo.GetStockTx(ctx, tx, productID, variantID)
	if err != nil {
		logger.Error("[RecordHistoryTx] get stock", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}
	if rec == nil {
		return errors.SetCustomError(constant.ErrNotFound)
	}

	// the stock mutation already landed inside this transaction, so the
	// record's current count is the post-adjustment quantity
	entry := &model.InventoryHistory{
		ProductID:        productID,
		VariantID:        variantID,
		PreviousQuantity: rec.CurrentStock - delta,
		NewQuantity:      rec.CurrentStock,
		Adjustment:       delta,
		Reason:           reason,
		ActorID:          actorID,
		Metadata:         metadata,
		CreatedAt:        time.Now().UTC(),
	}
	if _, err := s.historyRepo.InsertTx(ctx, tx, entry); err != nil {
		logger.Error("[RecordHistoryTx] insert history", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}
	return nil
}

func (s *inventoryAppImpl) RecordHistory(ctx context.Context, productID, variantID uint64, delta int64, reason constant.AdjustmentReason, actorID string, metadata model.Metadata) error {
	tx, err := s.txRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("[RecordHistory] begin tx", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}
	committed := false
	defer func() {
		if !committed {
			_ = s.txRepo.RollbackTx(tx)
		}
	}()

	if err := s.RecordHistoryTx(ctx, tx, productID, variantID, delta, reason, actorID, metadata); err != nil {
		return err
	}

	if err := s.txRepo.CommitTx(tx); err != nil {
		logger.Error("[RecordHistory] commit tx", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}
	committed = true
	return nil
}

func (s *inventoryAppImpl) CheckAvailability(ctx context.Context, productID, variantID uint64, quantity int64) (bool, error) {
	if quantity <= 0 {
		return false, errors.SetCustomError(constant.ErrInvalidRequest)
	}
	rec, err := s.getStockOrCatalogMiss(ctx, productID, variantID)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, nil
	}
	if rec.AllowBackorder {
		return true, nil
	}
	available, err := s.correctedAvailable(ctx, rec)
	if err != nil {
		return false, err
	}
	return available >= quantity, nil
}

func (s *inventoryAppImpl) GetAvailableInventory(ctx context.Context, productID, variantID uint64) (int64, error) {
	// the keyspace is only populated by successful lookups below, so a hit
	// implies the product was known at cache time
	if cached, hit, _ := s.redisRepo.GetAvailability(ctx, productID, variantID); hit {
		return cached, nil
	}

	rec, err := s.getStockOrCatalogMiss(ctx, productID, variantID)
	if err != nil {
		return 0, err
	}
	if rec == nil {
		return 0, nil
	}
	available, err := s.correctedAvailable(ctx, rec)
	if err != nil {
		return 0, err
	}
	if err := s.redisRepo.SetAvailability(ctx, productID, variantID, available, s.config.Inventory.CacheTTL); err != nil {
		logger.Warn("[GetAvailableInventory] cache set failed", zap.String("error", err.Error()))
	}
	return available, nil
}

func (s *inventoryAppImpl) GetProductInventoryInfo(ctx context.Context, productID, variantID uint64) (*model.StockInfoView, error) {
	item, err := s.catalogRepo.GetItem(ctx, productID, variantID)
	if err != nil {
		logger.Error("[GetProductInventoryInfo] catalog lookup", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	if item == nil {
		return nil, errors.SetCustomError(constant.ErrNotFound)
	}

	rec, err := s.stockRepo.GetStock(ctx, productID, variantID)
	if err != nil {
		logger.Error("[GetProductInventoryInfo] get stock", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	if rec == nil {
		// known product with no stock line yet: zero stock, not an error
		rec = &model.StockRecord{ProductID: productID, VariantID: variantID}
	}

	available, err := s.correctedAvailable(ctx, rec)
	if err != nil {
		return nil, err
	}
	return &model.StockInfoView{
		ProductID:         productID,
		VariantID:         variantID,
		ProductName:       item.Name,
		VariantLabel:      item.VariantLabel,
		CurrentStock:      rec.CurrentStock,
		ReservedStock:     rec.ReservedStock,
		AvailableStock:    available,
		LowStockThreshold: rec.LowStockThreshold,
		AllowBackorder:    rec.AllowBackorder,
		RestockDate:       rec.RestockDate,
		Status:            rec.Status(),
	}, nil
}

func (s *inventoryAppImpl) GetInventoryHistory(ctx context.Context, productID, variantID uint64, limit, offset int) (*model.InventoryHistoryResponse, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	entries, total, err := s.historyRepo.List(ctx, productID, variantID, limit, offset)
	if err != nil {
		logger.Error("[GetInventoryHistory] list", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	return &model.InventoryHistoryResponse{History: entries, Total: total}, nil
}

func (s *inventoryAppImpl) GetLowStockProducts(ctx context.Context, threshold int64) ([]model.LowStockAlert, error) {
	if threshold <= 0 {
		threshold = s.config.Inventory.LowStockThreshold
	}
	alerts, err := s.stockRepo.ListLowStock(ctx, threshold)
	if err != nil {
		logger.Error("[GetLowStockProducts] list", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	return alerts, nil
}

func (s *inventoryAppImpl) GetOutOfStockProducts(ctx context.Context) ([]model.OutOfStockEntry, error) {
	entries, err := s.stockRepo.ListOutOfStock(ctx)
	if err != nil {
		logger.Error("[GetOutOfStockProducts] list", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	return entries, nil
}

func (s *inventoryAppImpl) GetInventoryMetrics(ctx context.Context) (*model.InventoryMetrics, error) {
	m, err := s.stockRepo.GetMetrics(ctx)
	if err != nil {
		logger.Error("[GetInventoryMetrics] aggregate", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	return m, nil
}

func (s *inventoryAppImpl) GetInventoryTurnover(ctx context.Context, period model.TurnoverPeriod) ([]model.TurnoverEntry, error) {
	if period.From.IsZero() || period.To.IsZero() || !period.To.After(period.From) {
		return nil, errors.SetCustomError(constant.ErrInvalidRequest)
	}

	averages, err := s.stockRepo.GetAverageStock(ctx)
	if err != nil {
		logger.Error("[GetInventoryTurnover] average stock", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	sold, err := s.historyRepo.SoldQuantities(ctx, period.From.UTC().Format(time.DateTime), period.To.UTC().Format(time.DateTime))
	if err != nil {
		logger.Error("[GetInventoryTurnover] sold quantities", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}

	entries := make([]model.TurnoverEntry, 0, len(averages))
	for _, avg := range averages {
		soldQty := sold[avg.ProductID][avg.VariantID]
		if soldQty == 0 && avg.AverageStock == 0 {
			continue
		}
		entry := model.TurnoverEntry{
			ProductID:    avg.ProductID,
			VariantID:    avg.VariantID,
			SoldQuantity: soldQty,
			AverageStock: avg.AverageStock,
		}
		if avg.AverageStock > 0 {
			entry.TurnoverRate = float64(soldQty) / avg.AverageStock
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// correctedAvailable treats expired-but-not-yet-swept holds as already
// released so a late sweep never makes stock look falsely unavailable.
func (s *inventoryAppImpl) correctedAvailable(ctx context.Context, rec *model.StockRecord) (int64, error) {
	expired, err := s.reservationRepo.SumActiveExpired(ctx, rec.ProductID, rec.VariantID, time.Now().UTC())
	if err != nil {
		logger.Error("[correctedAvailable] expired holds", zap.String("error", err.Error()))
		return 0, errors.SetCustomError(constant.ErrInternal)
	}
	reserved := rec.ReservedStock - expired
	if reserved < 0 {
		reserved = 0
	}
	available := rec.CurrentStock - reserved
	if available < 0 {
		available = 0
	}
	return available, nil
}

// getStockOrCatalogMiss distinguishes "unknown product" from "known product
// with no stock line yet": the former is NotFound, the latter zero stock.
func (s *inventoryAppImpl) getStockOrCatalogMiss(ctx context.Context, productID, variantID uint64) (*model.StockRecord, error) {
	rec, err := s.stockRepo.GetStock(ctx, productID, variantID)
	if err != nil {
		logger.Error("[getStock] get stock", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	if rec != nil {
		return rec, nil
	}
	item, err := s.catalogRepo.GetItem(ctx, productID, variantID)
	if err != nil {
		logger.Error("[getStock] catalog lookup", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	if item == nil {
		return nil, errors.SetCustomError(constant.ErrNotFound)
	}
	return nil, nil
}
