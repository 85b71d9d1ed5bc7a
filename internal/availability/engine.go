// Package availability decides whether rooms can be booked for a stay, which room
// to assign, how full each calendar day is, and keeps the cached room occupancy in
// line with the reservations that actually cover today.
package availability

import (
	"context"
	"github.com/ariefcatur/go-hotel-reservations/internal/dates"
	"github.com/ariefcatur/go-hotel-reservations/internal/hotel"
	"go.uber.org/zap"
	"time"
)

// Catalog is the room and room type store.
type Catalog interface {
	GetRoomType(ctx context.Context, id string) (hotel.RoomType, error)
	GetRoom(ctx context.Context, id string) (hotel.Room, error)
	// ListRoomsByType and ListRooms return rooms in creation order.
	ListRoomsByType(ctx context.Context, typeID string) ([]hotel.Room, error)
	ListRooms(ctx context.Context) ([]hotel.Room, error)
	SetOccupancy(ctx context.Context, roomID string, occ hotel.Occupancy) error
	SetMaintenance(ctx context.Context, roomID string, on bool) (hotel.Room, error)
}

// Reservations is the reservation store.
type Reservations interface {
	// FindOverlapping returns reservations on roomIDs whose stay overlaps the given
	// range and whose status is one of statuses.
	FindOverlapping(ctx context.Context, roomIDs []string, stay dates.Range, statuses []hotel.ReservationStatus) ([]hotel.Reservation, error)
	// Create must refuse, atomically, a reservation that overlaps an active one
	// on the same room, returning hotel.ErrConflict.
	Create(ctx context.Context, r hotel.Reservation) (hotel.Reservation, error)
	Get(ctx context.Context, id string) (hotel.Reservation, error)
	// GetByExternalID finds the reservation userID made under externalID, or
	// returns hotel.ErrReservationNotFound.
	GetByExternalID(ctx context.Context, userID, externalID string) (hotel.Reservation, error)
	// UpdateStatus moves id from one status to another and fails with
	// hotel.ErrConflict when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to hotel.ReservationStatus) (hotel.Reservation, error)
}

type Engine struct {
	Catalog      Catalog
	Reservations Reservations
	Location     *time.Location // hotel time zone, decides "today"
	Now          func() time.Time
	Log          *zap.Logger
}

func NewEngine(cat Catalog, res Reservations, loc *time.Location, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{Catalog: cat, Reservations: res, Location: loc, Now: time.Now, Log: log}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) Today() dates.Date {
	return dates.Today(e.now(), e.Location)
}

func (e *Engine) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

// target is what an id resolved to: a room type with its rooms, or a single room.
type target struct {
	roomType hotel.RoomType
	rooms    []hotel.Room
	single   bool
}

func (t target) roomIDs() []string {
	ids := make([]string, 0, len(t.rooms))
	for _, r := range t.rooms {
		ids = append(ids, r.ID)
	}
	return ids
}

// resolve looks id up as a room type first, then as a room.
func (e *Engine) resolve(ctx context.Context, id string) (target, error) {
	rt, err := e.Catalog.GetRoomType(ctx, id)
	switch {
	case err == nil:
		rooms, err := e.Catalog.ListRoomsByType(ctx, rt.ID)
		if err != nil {
			return target{}, err
		}
		return target{roomType: rt, rooms: rooms}, nil
	case !hotel.IsNotFound(err):
		return target{}, err
	}

	room, err := e.Catalog.GetRoom(ctx, id)
	if hotel.IsNotFound(err) {
		return target{}, hotel.ErrTargetNotFound
	}
	if err != nil {
		return target{}, err
	}
	rt, err = e.Catalog.GetRoomType(ctx, room.RoomTypeID)
	if err != nil {
		return target{}, err
	}
	return target{roomType: rt, rooms: []hotel.Room{room}, single: true}, nil
}
