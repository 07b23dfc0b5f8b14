package reservation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	appreservation "github.com/stocklane/inventory/application/reservation"
	"github.com/stocklane/inventory/cmd/config"
	"github.com/stocklane/inventory/constant"
	catalogmocks "github.com/stocklane/inventory/mocks/repository/catalog"
	redismocks "github.com/stocklane/inventory/mocks/repository/redis"
	reservationmocks "github.com/stocklane/inventory/mocks/repository/reservation"
	stockmocks "github.com/stocklane/inventory/mocks/repository/stock"
	txmocks "github.com/stocklane/inventory/mocks/repository/tx"
	"github.com/stocklane/inventory/model"
	cerr "github.com/stocklane/inventory/utils/errors"
	"github.com/stretchr/testify/mock"
)

// Note: reservation.go checks if publisher is nil before publishing the
// delayed expiration message, so tests run with a nil publisher.

type mocks struct {
	txRepo          *txmocks.TxRepository
	stockRepo       *stockmocks.StockRepository
	reservationRepo *reservationmocks.ReservationRepository
	catalogRepo     *catalogmocks.CatalogRepository
	redisRepo       *redismocks.Repository
}

func newMocks(t *testing.T) mocks {
	return mocks{
		txRepo:          txmocks.NewTxRepository(t),
		stockRepo:       stockmocks.NewStockRepository(t),
		reservationRepo: reservationmocks.NewReservationRepository(t),
		catalogRepo:     catalogmocks.NewCatalogRepository(t),
		redisRepo:       redismocks.NewRepository(t),
	}
}

func newApp(m mocks) appreservation.ReservationApp {
	cfg := &config.Config{
		Inventory: config.InventoryConfig{
			ReservationDuration: 30 * time.Minute,
			RetryCount:          3,
		},
	}
	return appreservation.NewReservationApp(cfg, m.txRepo, m.stockRepo, m.reservationRepo, m.catalogRepo, m.redisRepo, nil)
}

func TestReservationApp_Reserve(t *testing.T) {
	t.Run("success: hold created and reserved count bumped", func(t *testing.T) {
		m := newMocks(t)
		rec := &model.StockRecord{ID: 10, ProductID: 1, CurrentStock: 10, ReservedStock: 2, Version: 3}
		m.stockRepo.On("GetStock", mock.Anything, uint64(1), uint64(0)).Return(rec, nil).Once()

		tx := &sqlx.Tx{}
		m.txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
		m.stockRepo.On("CASUpdateStockTx", mock.Anything, tx, uint64(10), int64(10), int64(5), int64(3)).Return(true, nil).Once()
		m.reservationRepo.On("InsertTx", mock.Anything, tx, mock.MatchedBy(func(r *model.Reservation) bool {
			return r.ReservationID != "" && r.ProductID == 1 && r.Quantity == 3 &&
				r.SessionID == "sess-1" && r.Status == constant.ReservationStatusActive &&
				r.ExpiresAt.After(time.Now())
		})).Return(nil).Once()
		m.txRepo.On("CommitTx", tx).Return(nil).Once()
		m.redisRepo.On("InvalidateAvailability", mock.Anything, uint64(1), uint64(0)).Return(nil).Once()

		got, err := newApp(m).Reserve(context.Background(), &model.ReserveInventoryRequest{
			ProductID: 1,
			Quantity:  3,
			SessionID: "sess-1",
		})
		if err != nil {
			t.Fatalf("Reserve() error = %v", err)
		}
		if !got.Success {
			t.Fatalf("Reserve() should succeed, got %+v", got)
		}
		if got.ReservationID == "" {
			t.Fatal("Reserve() should return a reservation id")
		}
		if got.AvailableStock != 5 {
			t.Fatalf("AvailableStock = %d, want 5", got.AvailableStock)
		}
	})

	t.Run("soft failure: shortage is not an error", func(t *testing.T) {
		m := newMocks(t)
		rec := &model.StockRecord{ID: 10, ProductID: 1, CurrentStock: 5, ReservedStock: 3, Version: 3}
		m.stockRepo.On("GetStock", mock.Anything, uint64(1), uint64(0)).Return(rec, nil).Once()
		// no lapsed holds to reclaim, the shortage is real
		m.reservationRepo.On("SumActiveExpired", mock.Anything, uint64(1), uint64(0), mock.Anything).Return(int64(0), nil).Once()

		got, err := newApp(m).Reserve(context.Background(), &model.ReserveInventoryRequest{
			ProductID: 1,
			Quantity:  5,
			SessionID: "sess-1",
		})
		if err != nil {
			t.Fatalf("Reserve() error = %v", err)
		}
		if got.Success {
			t.Fatal("Reserve() should soft-fail on shortage")
		}
		if got.AvailableStock != 2 {
			t.Fatalf("AvailableStock = %d, want 2", got.AvailableStock)
		}
		if got.Message != "only 2 available, requested 5" {
			t.Fatalf("Message = %q", got.Message)
		}
	})

	t.Run("shortage caused by lapsed holds is reclaimed inline", func(t *testing.T) {
		m := newMocks(t)
		// first read: 2 available, 3 of the reserved units are overdue
		stale := &model.StockRecord{ID: 10, ProductID: 1, CurrentStock: 5, ReservedStock: 3, Version: 3}
		m.stockRepo.On("GetStock", mock.Anything, uint64(1), uint64(0)).Return(stale, nil).Once()
		m.reservationRepo.On("SumActiveExpired", mock.Anything, uint64(1), uint64(0), mock.Anything).Return(int64(3), nil).Once()

		overdue := &model.Reservation{
			ReservationID: "res-old",
			ProductID:     1,
			Quantity:      3,
			SessionID:     "sess-old",
			ExpiresAt:     time.Now().Add(-time.Minute),
			Status:        constant.ReservationStatusActive,
		}
		m.reservationRepo.On("ListExpired", mock.Anything, mock.Anything, 100).Return([]model.Reservation{*overdue}, nil).Once()

		// inline expiry of the overdue hold
		m.reservationRepo.On("Get", mock.Anything, "res-old").Return(overdue, nil).Once()
		expireTx := &sqlx.Tx{}
		m.txRepo.On("BeginTx", mock.Anything).Return(expireTx, nil).Once()
		m.reservationRepo.On("TransitionTx", mock.Anything, expireTx, "res-old", constant.ReservationStatusExpired).Return(true, nil).Once()
		m.stockRepo.On("ReleaseReservedTx", mock.Anything, expireTx, uint64(1), uint64(0), int64(3)).Return(nil).Once()
		m.txRepo.On("CommitTx", expireTx).Return(nil).Once()
		m.redisRepo.On("InvalidateAvailability", mock.Anything, uint64(1), uint64(0)).Return(nil).Times(2)

		// second read sees the freed stock
		fresh := &model.StockRecord{ID: 10, ProductID: 1, CurrentStock: 5, ReservedStock: 0, Version: 4}
		m.stockRepo.On("GetStock", mock.Anything, uint64(1), uint64(0)).Return(fresh, nil).Once()

		reserveTx := &sqlx.Tx{}
		m.txRepo.On("BeginTx", mock.Anything).Return(reserveTx, nil).Once()
		m.stockRepo.On("CASUpdateStockTx", mock.Anything, reserveTx, uint64(10), int64(5), int64(5), int64(4)).Return(true, nil).Once()
		m.reservationRepo.On("InsertTx", mock.Anything, reserveTx, mock.Anything).Return(nil).Once()
		m.txRepo.On("CommitTx", reserveTx).Return(nil).Once()

		got, err := newApp(m).Reserve(context.Background(), &model.ReserveInventoryRequest{
			ProductID: 1,
			Quantity:  5,
			SessionID: "sess-1",
		})
		if err != nil {
			t.Fatalf("Reserve() error = %v", err)
		}
		if !got.Success {
			t.Fatalf("Reserve() should succeed after reclaiming lapsed holds, got %+v", got)
		}
	})

	t.Run("error: unknown product", func(t *testing.T) {
		m := newMocks(t)
		m.stockRepo.On("GetStock", mock.Anything, uint64(42), uint64(0)).Return(nil, nil).Once()
		m.catalogRepo.On("GetItem", mock.Anything, uint64(42), uint64(0)).Return(nil, nil).Once()

		_, err := newApp(m).Reserve(context.Background(), &model.ReserveInventoryRequest{
			ProductID: 42,
			Quantity:  1,
			SessionID: "sess-1",
		})
		var ce cerr.CustomError
		if !errors.As(err, &ce) || ce.ErrorCode() != constant.ErrorTypeCode[constant.ErrNotFound] {
			t.Fatalf("error = %v, want NotFound", err)
		}
	})

	t.Run("soft failure: known product with no stock line", func(t *testing.T) {
		m := newMocks(t)
		m.stockRepo.On("GetStock", mock.Anything, uint64(2), uint64(0)).Return(nil, nil).Once()
		m.catalogRepo.On("GetItem", mock.Anything, uint64(2), uint64(0)).Return(&model.CatalogItem{ProductID: 2, Name: "Mug"}, nil).Once()

		got, err := newApp(m).Reserve(context.Background(), &model.ReserveInventoryRequest{
			ProductID: 2,
			Quantity:  1,
			SessionID: "sess-1",
		})
		if err != nil {
			t.Fatalf("Reserve() error = %v", err)
		}
		if got.Success {
			t.Fatal("Reserve() should soft-fail when the product has no stock")
		}
	})

	t.Run("error: invalid quantity", func(t *testing.T) {
		m := newMocks(t)
		_, err := newApp(m).Reserve(context.Background(), &model.ReserveInventoryRequest{
			ProductID: 1,
			SessionID: "sess-1",
		})
		var ce cerr.CustomError
		if !errors.As(err, &ce) || ce.ErrorCode() != constant.ErrorTypeCode[constant.ErrInvalidRequest] {
			t.Fatalf("error = %v, want InvalidRequest", err)
		}
	})
}

func TestReservationApp_Release(t *testing.T) {
	t.Run("success: active hold released and stock returned", func(t *testing.T) {
		m := newMocks(t)
		res := &model.Reservation{
			ReservationID: "res-1",
			ProductID:     1,
			Quantity:      3,
			SessionID:     "sess-1",
			Status:        constant.ReservationStatusActive,
		}
		m.reservationRepo.On("Get", mock.Anything, "res-1").Return(res, nil).Once()

		tx := &sqlx.Tx{}
		m.txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
		m.reservationRepo.On("TransitionTx", mock.Anything, tx, "res-1", constant.ReservationStatusReleased).Return(true, nil).Once()
		m.stockRepo.On("ReleaseReservedTx", mock.Anything, tx, uint64(1), uint64(0), int64(3)).Return(nil).Once()
		m.txRepo.On("CommitTx", tx).Return(nil).Once()
		m.redisRepo.On("InvalidateAvailability", mock.Anything, uint64(1), uint64(0)).Return(nil).Once()

		if err := newApp(m).Release(context.Background(), "res-1"); err != nil {
			t.Fatalf("Release() error = %v", err)
		}
	})

	t.Run("idempotent: unknown reservation is a no-op", func(t *testing.T) {
		m := newMocks(t)
		m.reservationRepo.On("Get", mock.Anything, "res-missing").Return(nil, nil).Once()

		if err := newApp(m).Release(context.Background(), "res-missing"); err != nil {
			t.Fatalf("Release() error = %v", err)
		}
	})

	t.Run("idempotent: already released is a no-op", func(t *testing.T) {
		m := newMocks(t)
		res := &model.Reservation{ReservationID: "res-1", Status: constant.ReservationStatusReleased}
		m.reservationRepo.On("Get", mock.Anything, "res-1").Return(res, nil).Once()

		if err := newApp(m).Release(context.Background(), "res-1"); err != nil {
			t.Fatalf("Release() error = %v", err)
		}
	})

	t.Run("losing the transition race releases nothing", func(t *testing.T) {
		m := newMocks(t)
		res := &model.Reservation{
			ReservationID: "res-1",
			ProductID:     1,
			Quantity:      3,
			Status:        constant.ReservationStatusActive,
		}
		m.reservationRepo.On("Get", mock.Anything, "res-1").Return(res, nil).Once()

		tx := &sqlx.Tx{}
		m.txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
		// a concurrent expiry flipped the status first
		m.reservationRepo.On("TransitionTx", mock.Anything, tx, "res-1", constant.ReservationStatusReleased).Return(false, nil).Once()
		m.txRepo.On("RollbackTx", tx).Return(nil).Once()

		if err := newApp(m).Release(context.Background(), "res-1"); err != nil {
			t.Fatalf("Release() error = %v", err)
		}
	})
}

func TestReservationApp_ReleaseSessionReservations(t *testing.T) {
	m := newMocks(t)
	res := model.Reservation{
		ReservationID: "res-1",
		ProductID:     1,
		Quantity:      2,
		SessionID:     "sess-1",
		Status:        constant.ReservationStatusActive,
	}
	m.reservationRepo.On("ListActiveBySession", mock.Anything, "sess-1").Return([]model.Reservation{res}, nil).Once()

	m.reservationRepo.On("Get", mock.Anything, "res-1").Return(&res, nil).Once()
	tx := &sqlx.Tx{}
	m.txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
	m.reservationRepo.On("TransitionTx", mock.Anything, tx, "res-1", constant.ReservationStatusReleased).Return(true, nil).Once()
	m.stockRepo.On("ReleaseReservedTx", mock.Anything, tx, uint64(1), uint64(0), int64(2)).Return(nil).Once()
	m.txRepo.On("CommitTx", tx).Return(nil).Once()
	m.redisRepo.On("InvalidateAvailability", mock.Anything, uint64(1), uint64(0)).Return(nil).Once()

	if err := newApp(m).ReleaseSessionReservations(context.Background(), "sess-1"); err != nil {
		t.Fatalf("ReleaseSessionReservations() error = %v", err)
	}
}

func TestReservationApp_SweepExpired(t *testing.T) {
	m := newMocks(t)
	overdue := model.Reservation{
		ReservationID: "res-old",
		ProductID:     1,
		Quantity:      4,
		Status:        constant.ReservationStatusActive,
		ExpiresAt:     time.Now().Add(-time.Hour),
	}
	m.reservationRepo.On("ListExpired", mock.Anything, mock.Anything, 100).Return([]model.Reservation{overdue}, nil).Once()

	m.reservationRepo.On("Get", mock.Anything, "res-old").Return(&overdue, nil).Once()
	tx := &sqlx.Tx{}
	m.txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
	m.reservationRepo.On("TransitionTx", mock.Anything, tx, "res-old", constant.ReservationStatusExpired).Return(true, nil).Once()
	m.stockRepo.On("ReleaseReservedTx", mock.Anything, tx, uint64(1), uint64(0), int64(4)).Return(nil).Once()
	m.txRepo.On("CommitTx", tx).Return(nil).Once()
	m.redisRepo.On("InvalidateAvailability", mock.Anything, uint64(1), uint64(0)).Return(nil).Once()

	swept, err := newApp(m).SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("SweepExpired() error = %v", err)
	}
	if swept != 1 {
		t.Fatalf("swept = %d, want 1", swept)
	}
}
