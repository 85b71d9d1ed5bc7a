package postgres

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-hotel-reservations/internal/hotel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CatalogRepo struct{ DB *pgxpool.Pool }

const roomCols = `id, number, floor, room_type_id, maintenance, occupancy, created_at, updated_at`

func scanRoom(row pgx.Row) (hotel.Room, error) {
	var r hotel.Room
	var occ string
	err := row.Scan(&r.ID, &r.Number, &r.Floor, &r.RoomTypeID, &r.Maintenance, &occ, &r.CreatedAt, &r.UpdatedAt)
	r.Occupancy = hotel.Occupancy(occ)
	return r, err
}

func (c *CatalogRepo) GetRoomType(ctx context.Context, id string) (hotel.RoomType, error) {
	var t hotel.RoomType
	err := c.DB.QueryRow(ctx, `
		SELECT id, name, base_price_cents, max_guests, capacity, created_at
		FROM room_types WHERE id=$1`, id).
		Scan(&t.ID, &t.Name, &t.BasePriceCents, &t.MaxGuests, &t.Capacity, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return hotel.RoomType{}, hotel.ErrRoomTypeNotFound
	}
	if err != nil {
		return hotel.RoomType{}, mapErr("get room type", err)
	}
	return t, nil
}

func (c *CatalogRepo) GetRoom(ctx context.Context, id string) (hotel.Room, error) {
	r, err := scanRoom(c.DB.QueryRow(ctx, `SELECT `+roomCols+` FROM rooms WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return hotel.Room{}, hotel.ErrRoomNotFound
	}
	if err != nil {
		return hotel.Room{}, mapErr("get room", err)
	}
	return r, nil
}

// ListRoomsByType keeps creation order so room assignment is stable.
func (c *CatalogRepo) ListRoomsByType(ctx context.Context, typeID string) ([]hotel.Room, error) {
	return c.listRooms(ctx, `SELECT `+roomCols+` FROM rooms WHERE room_type_id=$1 ORDER BY created_at, id`, typeID)
}

func (c *CatalogRepo) ListRooms(ctx context.Context) ([]hotel.Room, error) {
	return c.listRooms(ctx, `SELECT `+roomCols+` FROM rooms ORDER BY created_at, id`)
}

func (c *CatalogRepo) listRooms(ctx context.Context, sql string, args ...any) ([]hotel.Room, error) {
	rows, err := c.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr("list rooms", err)
	}
	defer rows.Close()

	var out []hotel.Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, mapErr("scan room", err)
		}
		out = append(out, r)
	}
	return out, mapErr("list rooms", rows.Err())
}

// SetOccupancy never overwrites a room that went into maintenance since it was read.
func (c *CatalogRepo) SetOccupancy(ctx context.Context, roomID string, occ hotel.Occupancy) error {
	ct, err := c.DB.Exec(ctx, `
		UPDATE rooms SET occupancy=$2, updated_at=now()
		WHERE id=$1 AND NOT maintenance`, roomID, string(occ))
	if err != nil {
		return mapErr("set occupancy", err)
	}
	if ct.RowsAffected() != 1 {
		return hotel.ErrRoomNotFound
	}
	return nil
}

func (c *CatalogRepo) SetMaintenance(ctx context.Context, roomID string, on bool) (hotel.Room, error) {
	r, err := scanRoom(c.DB.QueryRow(ctx, `
		UPDATE rooms SET maintenance=$2, updated_at=now()
		WHERE id=$1 RETURNING `+roomCols, roomID, on))
	if errors.Is(err, pgx.ErrNoRows) {
		return hotel.Room{}, hotel.ErrRoomNotFound
	}
	if err != nil {
		return hotel.Room{}, mapErr("set maintenance", err)
	}
	return r, nil
}

func (c *CatalogRepo) CreateRoomType(ctx context.Context, t hotel.RoomType) error {
	_, err := c.DB.Exec(ctx, `
		INSERT INTO room_types(id, name, base_price_cents, max_guests, capacity)
		VALUES ($1,$2,$3,$4,$5)`, t.ID, t.Name, t.BasePriceCents, t.MaxGuests, t.Capacity)
	return mapErr("create room type", err)
}

func (c *CatalogRepo) CreateRoom(ctx context.Context, r hotel.Room) error {
	occ := r.Occupancy
	if occ == "" {
		occ = hotel.OccupancyAvailable
	}
	_, err := c.DB.Exec(ctx, `
		INSERT INTO rooms(id, number, floor, room_type_id, maintenance, occupancy)
		VALUES ($1,$2,$3,$4,$5,$6)`, r.ID, r.Number, r.Floor, r.RoomTypeID, r.Maintenance, string(occ))
	return mapErr("create room", err)
}
