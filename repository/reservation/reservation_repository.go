package reservation

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stocklane/inventory/constant"
	"github.com/stocklane/inventory/model"
)

// ReservationRepository persists holds. Status transitions are guarded in
// SQL (`WHERE status = 'active'`) so a hold can never be double-released:
// whoever flips the row first wins and everyone else sees zero rows affected.
type ReservationRepository interface {
	InsertTx(ctx context.Context, tx *sqlx.Tx, res *model.Reservation) error
	Get(ctx context.Context, reservationID string) (*model.Reservation, error)
	// TransitionTx flips status from active to the given terminal state.
	// Returns false when the reservation was not active anymore.
	TransitionTx(ctx context.Context, tx *sqlx.Tx, reservationID string, to constant.ReservationStatus) (bool, error)
	ListActiveBySession(ctx context.Context, sessionID string) ([]model.Reservation, error)
	ListActiveBySessionTx(ctx context.Context, tx *sqlx.Tx, sessionID string) ([]model.Reservation, error)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]model.Reservation, error)
	// SumActiveExpired returns held-but-expired quantity for one stock line,
	// for read-time availability correction before the sweep lands.
	SumActiveExpired(ctx context.Context, productID, variantID uint64, now time.Time) (int64, error)
}

type SQL struct {
	conn *sqlx.DB
}

func NewReservationRepository(conn *sqlx.DB) ReservationRepository {
	return &SQL{conn: conn}
}

const reservationColumns = "reservation_id, product_id, variant_id, quantity, session_id, expires_at, status, created_at"

func (r *SQL) InsertTx(ctx context.Context, tx *sqlx.Tx, res *model.Reservation) error {
	q := "INSERT INTO stock_reservation (reservation_id, product_id, variant_id, quantity, session_id, expires_at, status) VALUES (?, ?, ?, ?, ?, ?, ?)"
	_, err := tx.ExecContext(ctx, q, res.ReservationID, res.ProductID, res.VariantID, res.Quantity, res.SessionID, res.ExpiresAt, res.Status)
	return err
}

func (r *SQL) Get(ctx context.Context, reservationID string) (*model.Reservation, error) {
	var res model.Reservation
	q := "SELECT " + reservationColumns + " FROM stock_reservation WHERE reservation_id = ?"
	if err := r.conn.GetContext(ctx, &res, q, reservationID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (r *SQL) TransitionTx(ctx context.Context, tx *sqlx.Tx, reservationID string, to constant.ReservationStatus) (bool, error) {
	q := "UPDATE stock_reservation SET status = ? WHERE reservation_id = ? AND status = ?"
	res, err := tx.ExecContext(ctx, q, to, reservationID, constant.ReservationStatusActive)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *SQL) ListActiveBySession(ctx context.Context, sessionID string) ([]model.Reservation, error) {
	q := "SELECT " + reservationColumns + " FROM stock_reservation WHERE session_id = ? AND status = ?"
	return r.list(ctx, r.conn.QueryxContext, q, sessionID, constant.ReservationStatusActive)
}

func (r *SQL) ListActiveBySessionTx(ctx context.Context, tx *sqlx.Tx, sessionID string) ([]model.Reservation, error) {
	q := "SELECT " + reservationColumns + " FROM stock_reservation WHERE session_id = ? AND status = ?"
	return r.list(ctx, tx.QueryxContext, q, sessionID, constant.ReservationStatusActive)
}

func (r *SQL) ListExpired(ctx context.Context, now time.Time, limit int) ([]model.Reservation, error) {
	q := "SELECT " + reservationColumns + " FROM stock_reservation WHERE status = ? AND expires_at <= ? ORDER BY expires_at ASC LIMIT ?"
	return r.list(ctx, r.conn.QueryxContext, q, constant.ReservationStatusActive, now, limit)
}

func (r *SQL) SumActiveExpired(ctx context.Context, productID, variantID uint64, now time.Time) (int64, error) {
	var total sql.NullInt64
	q := "SELECT COALESCE(SUM(quantity), 0) FROM stock_reservation WHERE product_id = ? AND variant_id = ? AND status = ? AND expires_at <= ?"
	if err := r.conn.GetContext(ctx, &total, q, productID, variantID, constant.ReservationStatusActive, now); err != nil {
		return 0, err
	}
	if !total.Valid {
		return 0, nil
	}
	return total.Int64, nil
}

type queryxFunc func(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)

func (r *SQL) list(ctx context.Context, queryx queryxFunc, q string, args ...interface{}) ([]model.Reservation, error) {
	rows, err := queryx(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		if err := rows.StructScan(&res); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}
