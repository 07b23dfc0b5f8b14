package reservation

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stocklane/inventory/cmd/config"
	"github.com/stocklane/inventory/constant"
	"github.com/stocklane/inventory/model"
	catalogrepo "github.com/stocklane/inventory/repository/catalog"
	redisrepo "github.com/stocklane/inventory/repository/redis"
	reservationrepo "github.com/stocklane/inventory/repository/reservation"
	stockrepo "github.com/stocklane/inventory/repository/stock"
	txrepo "github.com/stocklane/inventory/repository/tx"
	"github.com/stocklane/inventory/thirdparty/rabbitmq"
	"github.com/stocklane/inventory/utils/errors"
	"github.com/stocklane/inventory/utils/logger"
	"github.com/stocklane/inventory/utils/metrics"
	"go.uber.org/zap"
)

// ReservationApp manages time-bounded holds. A hold's reserved quantity
// lives on the stock record; the reservation row is the unit that can be
// released exactly once, guarded by its status transition.
type ReservationApp interface {
	Reserve(ctx context.Context, req *model.ReserveInventoryRequest) (*model.ReservationResult, error)
	// Release is idempotent: releasing an unknown or already-terminal
	// reservation is a no-op success.
	Release(ctx context.Context, reservationID string) error
	ReleaseSessionReservations(ctx context.Context, sessionID string) error
	// ExpireReservation is the sweep entry point, driven by the delayed
	// expiration message.
	ExpireReservation(ctx context.Context, reservationID string) error
	// ConvertSessionTx finalizes the session's active holds inside the
	// checkout transaction: status flips to converted and the held quantity
	// leaves the reserved pool, freeing it for the checkout's own deduction.
	ConvertSessionTx(ctx context.Context, tx *sqlx.Tx, sessionID string) error
	// SweepExpired is the scan fallback for missed expiry messages.
	SweepExpired(ctx context.Context) (int, error)
}

type reservationAppImpl struct {
	config          *config.Config
	txRepo          txrepo.TxRepository
	stockRepo       stockrepo.StockRepository
	reservationRepo reservationrepo.ReservationRepository
	catalogRepo     catalogrepo.CatalogRepository
	redisRepo       redisrepo.Repository
	publisher       *rabbitmq.Publisher
}

func NewReservationApp(
	config *config.Config,
	txRepo txrepo.TxRepository,
	stockRepo stockrepo.StockRepository,
	reservationRepo reservationrepo.ReservationRepository,
	catalogRepo catalogrepo.CatalogRepository,
	redisRepo redisrepo.Repository,
	publisher *rabbitmq.Publisher,
) ReservationApp {
	return &reservationAppImpl{
		config:          config,
		txRepo:          txRepo,
		stockRepo:       stockRepo,
		reservationRepo: reservationRepo,
		catalogRepo:     catalogRepo,
		redisRepo:       redisRepo,
		publisher:       publisher,
	}
}

const (
	backoffStep = 20 * time.Millisecond
	sweepBatch  = 100
)

func (s *reservationAppImpl) Reserve(ctx context.Context, req *model.ReserveInventoryRequest) (*model.ReservationResult, error) {
	if req.Quantity <= 0 || req.SessionID == "" {
		return nil, errors.SetCustomError(constant.ErrInvalidRequest)
	}

	duration := time.Duration(req.DurationMs) * time.Millisecond
	if duration <= 0 {
		duration = s.config.Inventory.ReservationDuration
	}

	for attempt := 0; attempt < s.config.Inventory.RetryCount; attempt++ {
		result, conflict, err := s.tryReserve(ctx, req, duration)
		if err != nil {
			return nil, err
		}
		if conflict {
			metrics.CASConflictsTotal.Inc()
			time.Sleep(time.Duration(attempt+1)*backoffStep + time.Duration(rand.Int63n(int64(backoffStep))))
			continue
		}
		return result, nil
	}

	logger.Warn("[Reserve] retry budget exhausted",
		zap.Uint64("product_id", req.ProductID),
		zap.Uint64("variant_id", req.VariantID))
	return nil, errors.SetCustomError(constant.ErrConcurrencyConflict)
}

func (s *reservationAppImpl) tryReserve(ctx context.Context, req *model.ReserveInventoryRequest, duration time.Duration) (*model.ReservationResult, bool, error) {
	rec, err := s.loadStock(ctx, req.ProductID, req.VariantID)
	if err != nil {
		return nil, false, err
	}
	if rec == nil {
		metrics.ReservationsTotal.WithLabelValues("rejected").Inc()
		return &model.ReservationResult{
			Success:        false,
			AvailableStock: 0,
			Message:        "product has no stock available",
		}, false, nil
	}

	if rec.Available() < req.Quantity {
		// expired-but-unswept holds may be inflating the reserved count;
		// reclaim them for this record before giving up
		if released, _ := s.reclaimExpired(ctx, req.ProductID, req.VariantID); released > 0 {
			rec, err = s.loadStock(ctx, req.ProductID, req.VariantID)
			if err != nil {
				return nil, false, err
			}
		}
	}
	if rec == nil || rec.Available() < req.Quantity {
		var available int64
		if rec != nil {
			available = rec.Available()
		}
		metrics.ReservationsTotal.WithLabelValues("rejected").Inc()
		return &model.ReservationResult{
			Success:        false,
			AvailableStock: available,
			Message:        fmt.Sprintf("only %d available, requested %d", available, req.Quantity),
		}, false, nil
	}

	tx, err := s.txRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("[Reserve] begin tx", zap.String("error", err.Error()))
		return nil, false, errors.SetCustomError(constant.ErrInternal)
	}
	committed := false
	defer func() {
		if !committed {
			_ = s.txRepo.RollbackTx(tx)
		}
	}()

	ok, err := s.stockRepo.CASUpdateStockTx(ctx, tx, rec.ID, rec.CurrentStock, rec.ReservedStock+req.Quantity, rec.Version)
	if err != nil {
		logger.Error("[Reserve] cas write", zap.String("error", err.Error()))
		return nil, false, errors.SetCustomError(constant.ErrInternal)
	}
	if !ok {
		return nil, true, nil
	}

	reservation := &model.Reservation{
		ReservationID: uuid.NewString(),
		ProductID:     req.ProductID,
		VariantID:     req.VariantID,
		Quantity:      req.Quantity,
		SessionID:     req.SessionID,
		ExpiresAt:     time.Now().UTC().Add(duration),
		Status:        constant.ReservationStatusActive,
	}
	if err := s.reservationRepo.InsertTx(ctx, tx, reservation); err != nil {
		logger.Error("[Reserve] insert reservation", zap.String("error", err.Error()))
		return nil, false, errors.SetCustomError(constant.ErrInternal)
	}

	if err := s.txRepo.CommitTx(tx); err != nil {
		logger.Error("[Reserve] commit tx", zap.String("error", err.Error()))
		return nil, false, errors.SetCustomError(constant.ErrInternal)
	}
	committed = true

	if s.publisher != nil {
		msg := rabbitmq.ReservationExpirationMessage{
			ReservationID: reservation.ReservationID,
			SessionID:     reservation.SessionID,
			ExpiresAt:     reservation.ExpiresAt,
		}
		if err := s.publisher.PublishReservationExpiration(msg); err != nil {
			logger.Error("[Reserve] publish expiration", zap.String("error", err.Error()))
		}
	}
	if err := s.redisRepo.InvalidateAvailability(ctx, req.ProductID, req.VariantID); err != nil {
		logger.Warn("[Reserve] cache invalidation failed", zap.String("error", err.Error()))
	}
	metrics.ReservationsTotal.WithLabelValues("reserved").Inc()

	return &model.ReservationResult{
		Success:        true,
		ReservationID:  reservation.ReservationID,
		AvailableStock: rec.Available() - req.Quantity,
	}, false, nil
}

func (s *reservationAppImpl) Release(ctx context.Context, reservationID string) error {
	return s.finishReservation(ctx, reservationID, constant.ReservationStatusReleased)
}

func (s *reservationAppImpl) ExpireReservation(ctx context.Context, reservationID string) error {
	return s.finishReservation(ctx, reservationID, constant.ReservationStatusExpired)
}

// finishReservation moves an active hold to a terminal state and returns the
// held quantity to the available pool. The status-guarded transition makes
// the whole operation idempotent: losing the race to a concurrent release,
// expiry, or conversion is a no-op, never a double release.
func (s *reservationAppImpl) finishReservation(ctx context.Context, reservationID string, to constant.ReservationStatus) error {
	reservation, err := s.reservationRepo.Get(ctx, reservationID)
	if err != nil {
		logger.Error("[finishReservation] get", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}
	if reservation == nil {
		logger.Info("[finishReservation] unknown reservation, nothing to do", zap.String("reservation_id", reservationID))
		return nil
	}
	if reservation.Status != constant.ReservationStatusActive {
		return nil
	}

	tx, err := s.txRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("[finishReservation] begin tx", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}
	committed := false
	defer func() {
		if !committed {
			_ = s.txRepo.RollbackTx(tx)
		}
	}()

	ok, err := s.reservationRepo.TransitionTx(ctx, tx, reservationID, to)
	if err != nil {
		logger.Error("[finishReservation] transition", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}
	if !ok {
		// someone else finished it first
		return nil
	}

	if err := s.stockRepo.ReleaseReservedTx(ctx, tx, reservation.ProductID, reservation.VariantID, reservation.Quantity); err != nil {
		logger.Error("[finishReservation] release reserved", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}

	if err := s.txRepo.CommitTx(tx); err != nil {
		logger.Error("[finishReservation] commit tx", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}
	committed = true

	if err := s.redisRepo.InvalidateAvailability(ctx, reservation.ProductID, reservation.VariantID); err != nil {
		logger.Warn("[finishReservation] cache invalidation failed", zap.String("error", err.Error()))
	}
	metrics.ReservationsTotal.WithLabelValues(string(to)).Inc()
	return nil
}

func (s *reservationAppImpl) ReleaseSessionReservations(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return errors.SetCustomError(constant.ErrInvalidRequest)
	}
	reservations, err := s.reservationRepo.ListActiveBySession(ctx, sessionID)
	if err != nil {
		logger.Error("[ReleaseSessionReservations] list", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}
	for _, reservation := range reservations {
		// racing an in-flight checkout for the same session is fine: the
		// status guard lets whichever transition lands first win
		if err := s.Release(ctx, reservation.ReservationID); err != nil {
			return err
		}
	}
	return nil
}

func (s *reservationAppImpl) ConvertSessionTx(ctx context.Context, tx *sqlx.Tx, sessionID string) error {
	reservations, err := s.reservationRepo.ListActiveBySessionTx(ctx, tx, sessionID)
	if err != nil {
		logger.Error("[ConvertSessionTx] list", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}
	for _, reservation := range reservations {
		ok, err := s.reservationRepo.TransitionTx(ctx, tx, reservation.ReservationID, constant.ReservationStatusConverted)
		if err != nil {
			logger.Error("[ConvertSessionTx] transition", zap.String("error", err.Error()))
			return errors.SetCustomError(constant.ErrInternal)
		}
		if !ok {
			continue
		}
		if err := s.stockRepo.ReleaseReservedTx(ctx, tx, reservation.ProductID, reservation.VariantID, reservation.Quantity); err != nil {
			logger.Error("[ConvertSessionTx] release reserved", zap.String("error", err.Error()))
			return errors.SetCustomError(constant.ErrInternal)
		}
		metrics.ReservationsTotal.WithLabelValues(string(constant.ReservationStatusConverted)).Inc()
	}
	return nil
}

func (s *reservationAppImpl) SweepExpired(ctx context.Context) (int, error) {
	expired, err := s.reservationRepo.ListExpired(ctx, time.Now().UTC(), sweepBatch)
	if err != nil {
		logger.Error("[SweepExpired] list", zap.String("error", err.Error()))
		return 0, errors.SetCustomError(constant.ErrInternal)
	}
	swept := 0
	for _, reservation := range expired {
		if err := s.ExpireReservation(ctx, reservation.ReservationID); err != nil {
			logger.Error("[SweepExpired] expire", zap.String("reservation_id", reservation.ReservationID), zap.String("error", err.Error()))
			continue
		}
		swept++
	}
	return swept, nil
}

// reclaimExpired expires this record's overdue holds right now instead of
// waiting for the sweep, so reservations never fail against stock that is
// only nominally held.
func (s *reservationAppImpl) reclaimExpired(ctx context.Context, productID, variantID uint64) (int, error) {
	now := time.Now().UTC()
	total, err := s.reservationRepo.SumActiveExpired(ctx, productID, variantID, now)
	if err != nil || total == 0 {
		return 0, err
	}

	expired, err := s.reservationRepo.ListExpired(ctx, now, sweepBatch)
	if err != nil {
		return 0, err
	}
	released := 0
	for _, reservation := range expired {
		if reservation.ProductID != productID || reservation.VariantID != variantID {
			continue
		}
		if err := s.ExpireReservation(ctx, reservation.ReservationID); err != nil {
			continue
		}
		released++
	}
	return released, nil
}

func (s *reservationAppImpl) loadStock(ctx context.Context, productID, variantID uint64) (*model.StockRecord, error) {
	rec, err := s.stockRepo.GetStock(ctx, productID, variantID)
	if err != nil {
		logger.Error("[Reserve] get stock", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	if rec != nil {
		return rec, nil
	}
	item, err := s.catalogRepo.GetItem(ctx, productID, variantID)
	if err != nil {
		logger.Error("[Reserve] catalog lookup", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	if item == nil {
		return nil, errors.SetCustomError(constant.ErrNotFound)
	}
	return nil, nil
}
