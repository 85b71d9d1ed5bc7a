package postgres

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-hotel-reservations/internal/dates"
	"github.com/ariefcatur/go-hotel-reservations/internal/hotel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"time"
)

type ReservationRepo struct{ DB *pgxpool.Pool }

const reservationCols = `id, COALESCE(external_id, ''), room_id, user_id, check_in, check_out, guests,
	total_amount_cents, paid_amount_cents, status, created_at, updated_at`

// overlapWhere is dates.Overlaps in SQL for placeholders ($start, $end) = ($3, $4):
// check_in < end AND start < check_out.
const overlapWhere = `check_in < $4 AND $3 < check_out`

func scanReservation(row pgx.Row) (hotel.Reservation, error) {
	var r hotel.Reservation
	var in, out time.Time
	var status string
	err := row.Scan(&r.ID, &r.ExternalID, &r.RoomID, &r.UserID, &in, &out, &r.Guests,
		&r.TotalAmountCents, &r.PaidAmountCents, &status, &r.CreatedAt, &r.UpdatedAt)
	r.CheckIn = dates.FromTime(in)
	r.CheckOut = dates.FromTime(out)
	r.Status = hotel.ReservationStatus(status)
	return r, err
}

func statusStrings(ss []hotel.ReservationStatus) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, string(s))
	}
	return out
}

func (r *ReservationRepo) FindOverlapping(ctx context.Context, roomIDs []string, stay dates.Range, statuses []hotel.ReservationStatus) ([]hotel.Reservation, error) {
	if len(roomIDs) == 0 {
		return nil, nil
	}
	rows, err := r.DB.Query(ctx, `
		SELECT `+reservationCols+`
		FROM reservations
		WHERE room_id = ANY($1) AND status = ANY($2) AND `+overlapWhere+`
		ORDER BY check_in, id`,
		roomIDs, statusStrings(statuses), stay.Start.Time(), stay.End.Time())
	if err != nil {
		return nil, mapErr("find overlapping", err)
	}
	defer rows.Close()

	var out []hotel.Reservation
	for rows.Next() {
		x, err := scanReservation(rows)
		if err != nil {
			return nil, mapErr("scan reservation", err)
		}
		out = append(out, x)
	}
	return out, mapErr("find overlapping", rows.Err())
}

// Create inserts a reservation only if its room is free for the stay.
// The room row is locked (FOR UPDATE) inside a serializable transaction, the
// overlap is re-checked against active reservations, then the row is inserted; the
// reservations_no_overlap exclusion constraint is the last line. Losing any of
// these races returns hotel.ErrConflict.
//
// A non-empty ExternalID makes Create idempotent per user: a second call by the
// same user with the same id returns the first reservation.
func (r *ReservationRepo) Create(ctx context.Context, res hotel.Reservation) (hotel.Reservation, error) {
	if res.ExternalID != "" {
		existing, err := r.GetByExternalID(ctx, res.UserID, res.ExternalID)
		if err == nil {
			return existing, nil
		}
		if !hotel.IsNotFound(err) {
			return hotel.Reservation{}, err
		}
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return hotel.Reservation{}, mapErr("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var roomID string
	if err := tx.QueryRow(ctx, `SELECT id FROM rooms WHERE id=$1 FOR UPDATE`, res.RoomID).Scan(&roomID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return hotel.Reservation{}, hotel.ErrRoomNotFound
		}
		return hotel.Reservation{}, mapErr("lock room", err)
	}

	var clashes int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM reservations
		WHERE room_id = $1 AND status = ANY($2) AND `+overlapWhere,
		res.RoomID, statusStrings(hotel.ActiveStatuses), res.CheckIn.Time(), res.CheckOut.Time()).Scan(&clashes)
	if err != nil {
		return hotel.Reservation{}, mapErr("recheck overlap", err)
	}
	if clashes > 0 {
		return hotel.Reservation{}, fmt.Errorf("room %s %s: %w", res.RoomID, res.Stay(), hotel.ErrConflict)
	}

	var external any
	if res.ExternalID != "" {
		external = res.ExternalID
	}
	created, err := scanReservation(tx.QueryRow(ctx, `
		INSERT INTO reservations(id, external_id, room_id, user_id, check_in, check_out, guests,
		                         total_amount_cents, paid_amount_cents, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING `+reservationCols,
		res.ID, external, res.RoomID, res.UserID, res.CheckIn.Time(), res.CheckOut.Time(), res.Guests,
		res.TotalAmountCents, res.PaidAmountCents, string(res.Status)))
	if err != nil {
		if res.ExternalID != "" && isUniqueViolation(err) {
			_ = tx.Rollback(ctx)
			if existing, lookupErr := r.GetByExternalID(ctx, res.UserID, res.ExternalID); lookupErr == nil {
				return existing, nil
			}
		}
		return hotel.Reservation{}, mapErr("insert reservation", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return hotel.Reservation{}, mapErr("commit reservation", err)
	}
	return created, nil
}

func (r *ReservationRepo) Get(ctx context.Context, id string) (hotel.Reservation, error) {
	res, err := scanReservation(r.DB.QueryRow(ctx, `SELECT `+reservationCols+` FROM reservations WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return hotel.Reservation{}, hotel.ErrReservationNotFound
	}
	if err != nil {
		return hotel.Reservation{}, mapErr("get reservation", err)
	}
	return res, nil
}

func (r *ReservationRepo) GetByExternalID(ctx context.Context, userID, externalID string) (hotel.Reservation, error) {
	res, err := scanReservation(r.DB.QueryRow(ctx, `
		SELECT `+reservationCols+` FROM reservations
		WHERE user_id=$1 AND external_id=$2`, userID, externalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return hotel.Reservation{}, hotel.ErrReservationNotFound
	}
	if err != nil {
		return hotel.Reservation{}, mapErr("get reservation by external id", err)
	}
	return res, nil
}

// UpdateStatus is a compare-and-set on status.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id string, from, to hotel.ReservationStatus) (hotel.Reservation, error) {
	res, err := scanReservation(r.DB.QueryRow(ctx, `
		UPDATE reservations SET status=$3, updated_at=now()
		WHERE id=$1 AND status=$2
		RETURNING `+reservationCols, id, string(from), string(to)))
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return hotel.Reservation{}, mapErr("update status", err)
	}
	if _, err := r.Get(ctx, id); err != nil {
		return hotel.Reservation{}, err
	}
	return hotel.Reservation{}, fmt.Errorf("reservation %s no longer %s: %w", id, from, hotel.ErrConflict)
}
