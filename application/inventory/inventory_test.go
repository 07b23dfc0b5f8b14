package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	appinventory "github.com/stocklane/inventory/application/inventory"
	"github.com/stocklane/inventory/cmd/config"
	"github.com/stocklane/inventory/constant"
	catalogmocks "github.com/stocklane/inventory/mocks/repository/catalog"
	historymocks "github.com/stocklane/inventory/mocks/repository/history"
	redismocks "github.com/stocklane/inventory/mocks/repository/redis"
	reservationmocks "github.com/stocklane/inventory/mocks/repository/reservation"
	stockmocks "github.com/stocklane/inventory/mocks/repository/stock"
	txmocks "github.com/stocklane/inventory/mocks/repository/tx"
	"github.com/stocklane/inventory/model"
	cerr "github.com/stocklane/inventory/utils/errors"
	"github.com/stretchr/testify/mock"
)

func testConfig() *config.Config {
	return &config.Config{
		Inventory: config.InventoryConfig{
			RetryCount:        3,
			LowStockThreshold: 5,
			CacheTTL:          30 * time.Second,
		},
	}
}

func TestInventoryApp_UpdateInventory(t *testing.T) {
	type fields struct {
		config          *config.Config
		txRepo          *txmocks.TxRepository
		stockRepo       *stockmocks.StockRepository
		historyRepo     *historymocks.HistoryRepository
		reservationRepo *reservationmocks.ReservationRepository
		catalogRepo     *catalogmocks.CatalogRepository
		redisRepo       *redismocks.Repository
	}
	type args struct {
		ctx context.Context
		req *model.UpdateInventoryRequest
	}
	tests := []struct {
		name          string
		fields        fields
		args          args
		mockCall      func(f fields)
		want          *model.AdjustmentResult
		wantErr       bool
		errCode       constant.ErrorType
		wantAvailable int64
		wantRequested int64
	}{
		{
			name: "success: restock adjustment",
			fields: fields{
				config:          testConfig(),
				txRepo:          txmocks.NewTxRepository(t),
				stockRepo:       stockmocks.NewStockRepository(t),
				historyRepo:     historymocks.NewHistoryRepository(t),
				reservationRepo: reservationmocks.NewReservationRepository(t),
				catalogRepo:     catalogmocks.NewCatalogRepository(t),
				redisRepo:       redismocks.NewRepository(t),
			},
			args: args{
				ctx: context.Background(),
				req: &model.UpdateInventoryRequest{
					ProductID:  1,
					Adjustment: 5,
					Reason:     constant.ReasonRestock,
					ActorID:    "admin-1",
				},
			},
			mockCall: func(f fields) {
				rec := &model.StockRecord{ID: 10, ProductID: 1, CurrentStock: 10, ReservedStock: 2, Version: 3}
				f.stockRepo.On("GetStock", mock.Anything, uint64(1), uint64(0)).Return(rec, nil).Once()

				tx := &sqlx.Tx{}
				f.txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
				f.stockRepo.On("CASUpdateStockTx", mock.Anything, tx, uint64(10), int64(15), int64(2), int64(3)).Return(true, nil).Once()

				f.historyRepo.On("InsertTx", mock.Anything, tx, mock.MatchedBy(func(e *model.InventoryHistory) bool {
					return e.ProductID == 1 && e.PreviousQuantity == 10 && e.NewQuantity == 15 &&
						e.Adjustment == 5 && e.Reason == constant.ReasonRestock && e.ActorID == "admin-1"
				})).Return(uint64(77), nil).Once()

				f.txRepo.On("CommitTx", tx).Return(nil).Once()
				f.redisRepo.On("InvalidateAvailability", mock.Anything, uint64(1), uint64(0)).Return(nil).Once()
			},
			want: &model.AdjustmentResult{
				ProductID:        1,
				PreviousQuantity: 10,
				NewQuantity:      15,
				AvailableStock:   13,
			},
		},
		{
			name: "success: first write lazily creates the stock record",
			fields: fields{
				config:          testConfig(),
				txRepo:          txmocks.NewTxRepository(t),
				stockRepo:       stockmocks.NewStockRepository(t),
				historyRepo:     historymocks.NewHistoryRepository(t),
				reservationRepo: reservationmocks.NewReservationRepository(t),
				catalogRepo:     catalogmocks.NewCatalogRepository(t),
				redisRepo:       redismocks.NewRepository(t),
			},
			args: args{
				ctx: context.Background(),
				req: &model.UpdateInventoryRequest{
					ProductID:  2,
					Adjustment: 7,
					Reason:     constant.ReasonRestock,
					ActorID:    "admin-1",
				},
			},
			mockCall: func(f fields) {
				f.stockRepo.On("GetStock", mock.Anything, uint64(2), uint64(0)).Return(nil, nil).Once()
				fresh := &model.StockRecord{ID: 11, ProductID: 2, Version: 1}
				f.stockRepo.On("EnsureStock", mock.Anything, uint64(2), uint64(0)).Return(fresh, nil).Once()

				tx := &sqlx.Tx{}
				f.txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
				f.stockRepo.On("CASUpdateStockTx", mock.Anything, tx, uint64(11), int64(7), int64(0), int64(1)).Return(true, nil).Once()
				f.historyRepo.On("InsertTx", mock.Anything, tx, mock.Anything).Return(uint64(78), nil).Once()
				f.txRepo.On("CommitTx", tx).Return(nil).Once()
				f.redisRepo.On("InvalidateAvailability", mock.Anything, uint64(2), uint64(0)).Return(nil).Once()
			},
			want: &model.AdjustmentResult{
				ProductID:        2,
				PreviousQuantity: 0,
				NewQuantity:      7,
				AvailableStock:   7,
			},
		},
		{
			name: "success: version conflict then retry wins",
			fields: fields{
				config:          testConfig(),
				txRepo:          txmocks.NewTxRepository(t),
				stockRepo:       stockmocks.NewStockRepository(t),
				historyRepo:     historymocks.NewHistoryRepository(t),
				reservationRepo: reservationmocks.NewReservationRepository(t),
				catalogRepo:     catalogmocks.NewCatalogRepository(t),
				redisRepo:       redismocks.NewRepository(t),
			},
			args: args{
				ctx: context.Background(),
				req: &model.UpdateInventoryRequest{
					ProductID:  1,
					Adjustment: -4,
					Reason:     constant.ReasonSale,
					ActorID:    "svc-order",
					RetryCount: 2,
				},
			},
			mockCall: func(f fields) {
				tx := &sqlx.Tx{}

				// attempt 1: another writer bumped the version
				stale := &model.StockRecord{ID: 10, ProductID: 1, CurrentStock: 10, Version: 3}
				f.stockRepo.On("GetStock", mock.Anything, uint64(1), uint64(0)).Return(stale, nil).Once()
				f.txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
				f.stockRepo.On("CASUpdateStockTx", mock.Anything, tx, uint64(10), int64(6), int64(0), int64(3)).Return(false, nil).Once()
				f.txRepo.On("RollbackTx", tx).Return(nil).Once()

				// attempt 2: fresh read succeeds
				fresh := &model.StockRecord{ID: 10, ProductID: 1, CurrentStock: 9, Version: 4}
				f.stockRepo.On("GetStock", mock.Anything, uint64(1), uint64(0)).Return(fresh, nil).Once()
				f.txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
				f.stockRepo.On("CASUpdateStockTx", mock.Anything, tx, uint64(10), int64(5), int64(0), int64(4)).Return(true, nil).Once()
				f.historyRepo.On("InsertTx", mock.Anything, tx, mock.Anything).Return(uint64(79), nil).Once()
				f.txRepo.On("CommitTx", tx).Return(nil).Once()
				f.redisRepo.On("InvalidateAvailability", mock.Anything, uint64(1), uint64(0)).Return(nil).Once()
			},
			want: &model.AdjustmentResult{
				ProductID:        1,
				PreviousQuantity: 9,
				NewQuantity:      5,
				AvailableStock:   5,
			},
		},
		{
			name: "error: retry budget exhausted",
			fields: fields{
				config:          testConfig(),
				txRepo:          txmocks.NewTxRepository(t),
				stockRepo:       stockmocks.NewStockRepository(t),
				historyRepo:     historymocks.NewHistoryRepository(t),
				reservationRepo: reservationmocks.NewReservationRepository(t),
				catalogRepo:     catalogmocks.NewCatalogRepository(t),
				redisRepo:       redismocks.NewRepository(t),
			},
			args: args{
				ctx: context.Background(),
				req: &model.UpdateInventoryRequest{
					ProductID:  1,
					Adjustment: 3,
					Reason:     constant.ReasonRestock,
					ActorID:    "admin-1",
					RetryCount: 1,
				},
			},
			mockCall: func(f fields) {
				rec := &model.StockRecord{ID: 10, ProductID: 1, CurrentStock: 10, Version: 3}
				f.stockRepo.On("GetStock", mock.Anything, uint64(1), uint64(0)).Return(rec, nil).Once()

				tx := &sqlx.Tx{}
				f.txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
				f.stockRepo.On("CASUpdateStockTx", mock.Anything, tx, uint64(10), int64(13), int64(0), int64(3)).Return(false, nil).Once()
				f.txRepo.On("RollbackTx", tx).Return(nil).Once()
			},
			wantErr: true,
			errCode: constant.ErrConcurrencyConflict,
		},
		{
			name: "error: insufficient stock carries available and requested",
			fields: fields{
				config:          testConfig(),
				txRepo:          txmocks.NewTxRepository(t),
				stockRepo:       stockmocks.NewStockRepository(t),
				historyRepo:     historymocks.NewHistoryRepository(t),
				reservationRepo: reservationmocks.NewReservationRepository(t),
				catalogRepo:     catalogmocks.NewCatalogRepository(t),
				redisRepo:       redismocks.NewRepository(t),
			},
			args: args{
				ctx: context.Background(),
				req: &model.UpdateInventoryRequest{
					ProductID:  1,
					Adjustment: -8,
					Reason:     constant.ReasonSale,
					ActorID:    "svc-order",
				},
			},
			mockCall: func(f fields) {
				rec := &model.StockRecord{ID: 10, ProductID: 1, CurrentStock: 3, Version: 2}
				f.stockRepo.On("GetStock", mock.Anything, uint64(1), uint64(0)).Return(rec, nil).Once()
			},
			wantErr:       true,
			errCode:       constant.ErrInsufficientStock,
			wantAvailable: 3,
			wantRequested: 8,
		},
		{
			name: "error: negative adjustment may not eat into held stock",
			fields: fields{
				config:          testConfig(),
				txRepo:          txmocks.NewTxRepository(t),
				stockRepo:       stockmocks.NewStockRepository(t),
				historyRepo:     historymocks.NewHistoryRepository(t),
				reservationRepo: reservationmocks.NewReservationRepository(t),
				catalogRepo:     catalogmocks.NewCatalogRepository(t),
				redisRepo:       redismocks.NewRepository(t),
			},
			args: args{
				ctx: context.Background(),
				req: &model.UpdateInventoryRequest{
					ProductID:  1,
					Adjustment: -5,
					Reason:     constant.ReasonSale,
					ActorID:    "svc-order",
				},
			},
			mockCall: func(f fields) {
				// 8 of 10 units are promised to active reservations, so only
				// 2 may leave
				rec := &model.StockRecord{ID: 10, ProductID: 1, CurrentStock: 10, ReservedStock: 8, Version: 3}
				f.stockRepo.On("GetStock", mock.Anything, uint64(1), uint64(0)).Return(rec, nil).Once()
			},
			wantErr:       true,
			errCode:       constant.ErrInsufficientStock,
			wantAvailable: 2,
			wantRequested: 5,
		},
		{
			name: "success: backorder record may go negative",
			fields: fields{
				config:          testConfig(),
				txRepo:          txmocks.NewTxRepository(t),
				stockRepo:       stockmocks.NewStockRepository(t),
				historyRepo:     historymocks.NewHistoryRepository(t),
				reservationRepo: reservationmocks.NewReservationRepository(t),
				catalogRepo:     catalogmocks.NewCatalogRepository(t),
				redisRepo:       redismocks.NewRepository(t),
			},
			args: args{
				ctx: context.Background(),
				req: &model.UpdateInventoryRequest{
					ProductID:  1,
					Adjustment: -8,
					Reason:     constant.ReasonSale,
					ActorID:    "svc-order",
				},
			},
			mockCall: func(f fields) {
				rec := &model.StockRecord{ID: 10, ProductID: 1, CurrentStock: 3, AllowBackorder: true, Version: 2}
				f.stockRepo.On("GetStock", mock.Anything, uint64(1), uint64(0)).Return(rec, nil).Once()

				tx := &sqlx.Tx{}
				f.txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
				f.stockRepo.On("CASUpdateStockTx", mock.Anything, tx, uint64(10), int64(-5), int64(0), int64(2)).Return(true, nil).Once()
				f.historyRepo.On("InsertTx", mock.Anything, tx, mock.Anything).Return(uint64(80), nil).Once()
				f.txRepo.On("CommitTx", tx).Return(nil).Once()
				f.redisRepo.On("InvalidateAvailability", mock.Anything, uint64(1), uint64(0)).Return(nil).Once()
			},
			want: &model.AdjustmentResult{
				ProductID:        1,
				PreviousQuantity: 3,
				NewQuantity:      -5,
				AvailableStock:   0,
			},
		},
		{
			name: "error: negative adjustment on unknown record",
			fields: fields{
				config:          testConfig(),
				txRepo:          txmocks.NewTxRepository(t),
				stockRepo:       stockmocks.NewStockRepository(t),
				historyRepo:     historymocks.NewHistoryRepository(t),
				reservationRepo: reservationmocks.NewReservationRepository(t),
				catalogRepo:     catalogmocks.NewCatalogRepository(t),
				redisRepo:       redismocks.NewRepository(t),
			},
			args: args{
				ctx: context.Background(),
				req: &model.UpdateInventoryRequest{
					ProductID:  99,
					Adjustment: -1,
					Reason:     constant.ReasonSale,
					ActorID:    "svc-order",
				},
			},
			mockCall: func(f fields) {
				f.stockRepo.On("GetStock", mock.Anything, uint64(99), uint64(0)).Return(nil, nil).Once()
			},
			wantErr: true,
			errCode: constant.ErrNotFound,
		},
		{
			name: "error: zero adjustment",
			fields: fields{
				config:          testConfig(),
				txRepo:          txmocks.NewTxRepository(t),
				stockRepo:       stockmocks.NewStockRepository(t),
				historyRepo:     historymocks.NewHistoryRepository(t),
				reservationRepo: reservationmocks.NewReservationRepository(t),
				catalogRepo:     catalogmocks.NewCatalogRepository(t),
				redisRepo:       redismocks.NewRepository(t),
			},
			args: args{
				ctx: context.Background(),
				req: &model.UpdateInventoryRequest{
					ProductID: 1,
					Reason:    constant.ReasonRestock,
					ActorID:   "admin-1",
				},
			},
			mockCall: nil,
			wantErr:  true,
			errCode:  constant.ErrInvalidRequest,
		},
		{
			name: "error: unknown reason",
			fields: fields{
				config:          testConfig(),
				txRepo:          txmocks.NewTxRepository(t),
				stockRepo:       stockmocks.NewStockRepository(t),
				historyRepo:     historymocks.NewHistoryRepository(t),
				reservationRepo: reservationmocks.NewReservationRepository(t),
				catalogRepo:     catalogmocks.NewCatalogRepository(t),
				redisRepo:       redismocks.NewRepository(t),
			},
			args: args{
				ctx: context.Background(),
				req: &model.UpdateInventoryRequest{
					ProductID:  1,
					Adjustment: 2,
					Reason:     constant.AdjustmentReason("shrinkage"),
					ActorID:    "admin-1",
				},
			},
			mockCall: nil,
			wantErr:  true,
			errCode:  constant.ErrInvalidRequest,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if tt.mockCall != nil {
				tt.mockCall(tt.fields)
			}
			app := appinventory.NewInventoryApp(tt.fields.config, tt.fields.txRepo, tt.fields.stockRepo,
				tt.fields.historyRepo, tt.fields.reservationRepo, tt.fields.catalogRepo, tt.fields.redisRepo)

			got, err := app.UpdateInventory(tt.args.ctx, tt.args.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("UpdateInventory() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr {
				var ce cerr.CustomError
				if !errors.As(err, &ce) {
					t.Fatalf("error type = %T, want CustomError", err)
				}
				if ce.ErrorCode() != constant.ErrorTypeCode[tt.errCode] {
					t.Fatalf("error code = %s, want %s", ce.ErrorCode(), constant.ErrorTypeCode[tt.errCode])
				}
				if tt.errCode == constant.ErrInsufficientStock {
					details := ce.Details()
					if details["available"] != tt.wantAvailable || details["requested"] != tt.wantRequested {
						t.Fatalf("details = %v, want available=%d requested=%d", details, tt.wantAvailable, tt.wantRequested)
					}
				}
				return
			}

			if got.PreviousQuantity != tt.want.PreviousQuantity {
				t.Fatalf("PreviousQuantity = %d, want %d", got.PreviousQuantity, tt.want.PreviousQuantity)
			}
			if got.NewQuantity != tt.want.NewQuantity {
				t.Fatalf("NewQuantity = %d, want %d", got.NewQuantity, tt.want.NewQuantity)
			}
			if got.AvailableStock != tt.want.AvailableStock {
				t.Fatalf("AvailableStock = %d, want %d", got.AvailableStock, tt.want.AvailableStock)
			}
			if got.History == nil {
				t.Fatal("History should ride every adjustment")
			}
		})
	}
}

func TestInventoryApp_BulkUpdateInventory(t *testing.T) {
	txRepo := txmocks.NewTxRepository(t)
	stockRepo := stockmocks.NewStockRepository(t)
	historyRepo := historymocks.NewHistoryRepository(t)
	reservationRepo := reservationmocks.NewReservationRepository(t)
	catalogRepo := catalogmocks.NewCatalogRepository(t)
	redisRepo := redismocks.NewRepository(t)

	// line 1 commits on its own
	rec := &model.StockRecord{ID: 10, ProductID: 1, CurrentStock: 10, Version: 3}
	stockRepo.On("GetStock", mock.Anything, uint64(1), uint64(0)).Return(rec, nil).Once()
	tx := &sqlx.Tx{}
	txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
	stockRepo.On("CASUpdateStockTx", mock.Anything, tx, uint64(10), int64(15), int64(0), int64(3)).Return(true, nil).Once()
	historyRepo.On("InsertTx", mock.Anything, tx, mock.Anything).Return(uint64(1), nil).Once()
	txRepo.On("CommitTx", tx).Return(nil).Once()
	redisRepo.On("InvalidateAvailability", mock.Anything, uint64(1), uint64(0)).Return(nil).Once()

	// line 2 fails independently: unknown record, negative adjustment
	stockRepo.On("GetStock", mock.Anything, uint64(99), uint64(0)).Return(nil, nil).Once()

	app := appinventory.NewInventoryApp(testConfig(), txRepo, stockRepo, historyRepo, reservationRepo, catalogRepo, redisRepo)

	results := app.BulkUpdateInventory(context.Background(), []model.UpdateInventoryRequest{
		{ProductID: 1, Adjustment: 5, Reason: constant.ReasonRestock},
		{ProductID: 99, Adjustment: -2, Reason: constant.ReasonSale},
	}, "admin-1")

	if len(results) != 2 {
		t.Fatalf("results len = %d, want 2", len(results))
	}
	if !results[0].Success || results[0].Result == nil {
		t.Fatalf("line 1 should succeed, got %+v", results[0])
	}
	if results[1].Success {
		t.Fatal("line 2 should fail")
	}
	if results[1].ErrorCode != constant.ErrorTypeCode[constant.ErrNotFound] {
		t.Fatalf("line 2 error code = %s, want %s", results[1].ErrorCode, constant.ErrorTypeCode[constant.ErrNotFound])
	}
}

func TestInventoryApp_GetAvailableInventory(t *testing.T) {
	t.Run("cache hit skips the database", func(t *testing.T) {
		txRepo := txmocks.NewTxRepository(t)
		stockRepo := stockmocks.NewStockRepository(t)
		historyRepo := historymocks.NewHistoryRepository(t)
		reservationRepo := reservationmocks.NewReservationRepository(t)
		catalogRepo := catalogmocks.NewCatalogRepository(t)
		redisRepo := redismocks.NewRepository(t)

		redisRepo.On("GetAvailability", mock.Anything, uint64(1), uint64(0)).Return(int64(7), true, nil).Once()

		app := appinventory.NewInventoryApp(testConfig(), txRepo, stockRepo, historyRepo, reservationRepo, catalogRepo, redisRepo)
		got, err := app.GetAvailableInventory(context.Background(), 1, 0)
		if err != nil {
			t.Fatalf("GetAvailableInventory() error = %v", err)
		}
		if got != 7 {
			t.Fatalf("available = %d, want 7", got)
		}
	})

	t.Run("cache miss corrects for expired holds and repopulates", func(t *testing.T) {
		txRepo := txmocks.NewTxRepository(t)
		stockRepo := stockmocks.NewStockRepository(t)
		historyRepo := historymocks.NewHistoryRepository(t)
		reservationRepo := reservationmocks.NewReservationRepository(t)
		catalogRepo := catalogmocks.NewCatalogRepository(t)
		redisRepo := redismocks.NewRepository(t)

		redisRepo.On("GetAvailability", mock.Anything, uint64(1), uint64(0)).Return(int64(0), false, nil).Once()
		rec := &model.StockRecord{ID: 10, ProductID: 1, CurrentStock: 10, ReservedStock: 4, Version: 3}
		stockRepo.On("GetStock", mock.Anything, uint64(1), uint64(0)).Return(rec, nil).Once()
		// one unit is held by a lapsed reservation the sweep has not reached
		reservationRepo.On("SumActiveExpired", mock.Anything, uint64(1), uint64(0), mock.Anything).Return(int64(1), nil).Once()
		redisRepo.On("SetAvailability", mock.Anything, uint64(1), uint64(0), int64(7), 30*time.Second).Return(nil).Once()

		app := appinventory.NewInventoryApp(testConfig(), txRepo, stockRepo, historyRepo, reservationRepo, catalogRepo, redisRepo)
		got, err := app.GetAvailableInventory(context.Background(), 1, 0)
		if err != nil {
			t.Fatalf("GetAvailableInventory() error = %v", err)
		}
		if got != 7 {
			t.Fatalf("available = %d, want 7", got)
		}
	})

	t.Run("unknown product is NotFound", func(t *testing.T) {
		txRepo := txmocks.NewTxRepository(t)
		stockRepo := stockmocks.NewStockRepository(t)
		historyRepo := historymocks.NewHistoryRepository(t)
		reservationRepo := reservationmocks.NewReservationRepository(t)
		catalogRepo := catalogmocks.NewCatalogRepository(t)
		redisRepo := redismocks.NewRepository(t)

		redisRepo.On("GetAvailability", mock.Anything, uint64(42), uint64(0)).Return(int64(0), false, nil).Once()
		stockRepo.On("GetStock", mock.Anything, uint64(42), uint64(0)).Return(nil, nil).Once()
		catalogRepo.On("GetItem", mock.Anything, uint64(42), uint64(0)).Return(nil, nil).Once()

		app := appinventory.NewInventoryApp(testConfig(), txRepo, stockRepo, historyRepo, reservationRepo, catalogRepo, redisRepo)
		_, err := app.GetAvailableInventory(context.Background(), 42, 0)

		var ce cerr.CustomError
		if !errors.As(err, &ce) || ce.ErrorCode() != constant.ErrorTypeCode[constant.ErrNotFound] {
			t.Fatalf("error = %v, want NotFound", err)
		}
	})
}

func TestInventoryApp_CheckAvailability(t *testing.T) {
	t.Run("backorder record is always available", func(t *testing.T) {
		txRepo := txmocks.NewTxRepository(t)
		stockRepo := stockmocks.NewStockRepository(t)
		historyRepo := historymocks.NewHistoryRepository(t)
		reservationRepo := reservationmocks.NewReservationRepository(t)
		catalogRepo := catalogmocks.NewCatalogRepository(t)
		redisRepo := redismocks.NewRepository(t)

		rec := &model.StockRecord{ID: 10, ProductID: 1, CurrentStock: 0, AllowBackorder: true}
		stockRepo.On("GetStock", mock.Anything, uint64(1), uint64(0)).Return(rec, nil).Once()

		app := appinventory.NewInventoryApp(testConfig(), txRepo, stockRepo, historyRepo, reservationRepo, catalogRepo, redisRepo)
		ok, err := app.CheckAvailability(context.Background(), 1, 0, 1000)
		if err != nil {
			t.Fatalf("CheckAvailability() error = %v", err)
		}
		if !ok {
			t.Fatal("backorder record should be available at any quantity")
		}
	})

	t.Run("quantity above available is rejected", func(t *testing.T) {
		txRepo := txmocks.NewTxRepository(t)
		stockRepo := stockmocks.NewStockRepository(t)
		historyRepo := historymocks.NewHistoryRepository(t)
		reservationRepo := reservationmocks.NewReservationRepository(t)
		catalogRepo := catalogmocks.NewCatalogRepository(t)
		redisRepo := redismocks.NewRepository(t)

		rec := &model.StockRecord{ID: 10, ProductID: 1, CurrentStock: 5, ReservedStock: 2}
		stockRepo.On("GetStock", mock.Anything, uint64(1), uint64(0)).Return(rec, nil).Once()
		reservationRepo.On("SumActiveExpired", mock.Anything, uint64(1), uint64(0), mock.Anything).Return(int64(0), nil).Once()

		app := appinventory.NewInventoryApp(testConfig(), txRepo, stockRepo, historyRepo, reservationRepo, catalogRepo, redisRepo)
		ok, err := app.CheckAvailability(context.Background(), 1, 0, 4)
		if err != nil {
			t.Fatalf("CheckAvailability() error = %v", err)
		}
		if ok {
			t.Fatal("4 requested with 3 available should not pass")
		}
	})
}

func TestInventoryApp_GetInventoryTurnover(t *testing.T) {
	txRepo := txmocks.NewTxRepository(t)
	stockRepo := stockmocks.NewStockRepository(t)
	historyRepo := historymocks.NewHistoryRepository(t)
	reservationRepo := reservationmocks.NewReservationRepository(t)
	catalogRepo := catalogmocks.NewCatalogRepository(t)
	redisRepo := redismocks.NewRepository(t)

	stockRepo.On("GetAverageStock", mock.Anything).Return([]model.TurnoverEntry{
		{ProductID: 1, AverageStock: 20},
		{ProductID: 2, AverageStock: 0},
	}, nil).Once()
	historyRepo.On("SoldQuantities", mock.Anything, mock.Anything, mock.Anything).Return(map[uint64]map[uint64]int64{
		1: {0: 10},
	}, nil).Once()

	app := appinventory.NewInventoryApp(testConfig(), txRepo, stockRepo, historyRepo, reservationRepo, catalogRepo, redisRepo)
	entries, err := app.GetInventoryTurnover(context.Background(), model.TurnoverPeriod{
		From: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("GetInventoryTurnover() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries len = %d, want 1 (zero-activity lines dropped)", len(entries))
	}
	if entries[0].TurnoverRate != 0.5 {
		t.Fatalf("turnover rate = %f, want 0.5", entries[0].TurnoverRate)
	}
}
