package availability

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-hotel-reservations/internal/dates"
	"github.com/ariefcatur/go-hotel-reservations/internal/hotel"
	"sync"
	"time"
)

// memCatalog and memReservations are in-memory stores with the same contract as
// the Postgres repositories.
type memCatalog struct {
	mu        sync.Mutex
	types     map[string]hotel.RoomType
	rooms     []hotel.Room
	failSet   map[string]error
	setCalls  int
	listCalls int
}

func newMemCatalog() *memCatalog {
	return &memCatalog{types: map[string]hotel.RoomType{}, failSet: map[string]error{}}
}

func (c *memCatalog) addType(rt hotel.RoomType) hotel.RoomType {
	c.types[rt.ID] = rt
	return rt
}

func (c *memCatalog) addRoom(r hotel.Room) hotel.Room {
	if r.Occupancy == "" {
		r.Occupancy = hotel.OccupancyAvailable
	}
	c.rooms = append(c.rooms, r)
	return r
}

func (c *memCatalog) GetRoomType(_ context.Context, id string) (hotel.RoomType, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rt, ok := c.types[id]
	if !ok {
		return hotel.RoomType{}, hotel.ErrRoomTypeNotFound
	}
	return rt, nil
}

func (c *memCatalog) GetRoom(_ context.Context, id string) (hotel.Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.rooms {
		if r.ID == id {
			return r, nil
		}
	}
	return hotel.Room{}, hotel.ErrRoomNotFound
}

func (c *memCatalog) ListRoomsByType(_ context.Context, typeID string) ([]hotel.Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listCalls++
	var out []hotel.Room
	for _, r := range c.rooms {
		if r.RoomTypeID == typeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *memCatalog) ListRooms(_ context.Context) ([]hotel.Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]hotel.Room(nil), c.rooms...), nil
}

func (c *memCatalog) SetOccupancy(_ context.Context, roomID string, occ hotel.Occupancy) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setCalls++
	if err := c.failSet[roomID]; err != nil {
		return err
	}
	for i := range c.rooms {
		if c.rooms[i].ID == roomID {
			c.rooms[i].Occupancy = occ
			return nil
		}
	}
	return hotel.ErrRoomNotFound
}

func (c *memCatalog) SetMaintenance(_ context.Context, roomID string, on bool) (hotel.Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.rooms {
		if c.rooms[i].ID == roomID {
			c.rooms[i].Maintenance = on
			return c.rooms[i], nil
		}
	}
	return hotel.Room{}, hotel.ErrRoomNotFound
}

func (c *memCatalog) room(id string) hotel.Room {
	r, _ := c.GetRoom(context.Background(), id)
	return r
}

type memReservations struct {
	mu        sync.Mutex
	rows      []hotel.Reservation
	findCalls int
	findErr   error
	// beforeCreate runs inside Create before the overlap check, to simulate a
	// competing writer.
	beforeCreate func()
}

func (m *memReservations) add(r hotel.Reservation) hotel.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, r)
	return r
}

func (m *memReservations) FindOverlapping(_ context.Context, roomIDs []string, stay dates.Range, statuses []hotel.ReservationStatus) ([]hotel.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++
	if m.findErr != nil {
		return nil, m.findErr
	}
	ids := map[string]bool{}
	for _, id := range roomIDs {
		ids[id] = true
	}
	st := map[hotel.ReservationStatus]bool{}
	for _, s := range statuses {
		st[s] = true
	}
	var out []hotel.Reservation
	for _, r := range m.rows {
		if ids[r.RoomID] && st[r.Status] && r.Stay().Overlaps(stay) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReservations) Create(_ context.Context, r hotel.Reservation) (hotel.Reservation, error) {
	if m.beforeCreate != nil {
		m.beforeCreate()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.rows {
		if r.ExternalID != "" && x.UserID == r.UserID && x.ExternalID == r.ExternalID {
			return x, nil
		}
	}
	for _, x := range m.rows {
		if x.RoomID == r.RoomID && x.Status.Active() && x.Stay().Overlaps(r.Stay()) {
			return hotel.Reservation{}, hotel.ErrConflict
		}
	}
	m.rows = append(m.rows, r)
	return r, nil
}

func (m *memReservations) Get(_ context.Context, id string) (hotel.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return hotel.Reservation{}, hotel.ErrReservationNotFound
}

func (m *memReservations) GetByExternalID(_ context.Context, userID, externalID string) (hotel.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.UserID == userID && r.ExternalID == externalID {
			return r, nil
		}
	}
	return hotel.Reservation{}, hotel.ErrReservationNotFound
}

func (m *memReservations) UpdateStatus(_ context.Context, id string, from, to hotel.ReservationStatus) (hotel.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID != id {
			continue
		}
		if m.rows[i].Status != from {
			return hotel.Reservation{}, hotel.ErrConflict
		}
		m.rows[i].Status = to
		return m.rows[i], nil
	}
	return hotel.Reservation{}, hotel.ErrReservationNotFound
}

type recordedEvents struct {
	created []hotel.Reservation
	changed []hotel.ReservationStatus
}

func (e *recordedEvents) ReservationCreated(_ context.Context, r hotel.Reservation, _ hotel.Room, _ hotel.RoomType) {
	e.created = append(e.created, r)
}

func (e *recordedEvents) ReservationStatusChanged(_ context.Context, r hotel.Reservation, from hotel.ReservationStatus, _ string) {
	e.changed = append(e.changed, from, r.Status)
}

var errBoom = errors.New("boom")

func d(s string) dates.Date { return dates.MustParse(s) }

func stay(in, out string) dates.Range { return dates.Range{Start: d(in), End: d(out)} }

// suiteDeluxe builds the four-room "Suite Deluxe" hotel with one CONFIRMED stay on
// room 201 for 2025-06-10..13, and an engine whose today is 2025-06-01.
func suiteDeluxe() (*Engine, *memCatalog, *memReservations) {
	cat := newMemCatalog()
	cat.addType(hotel.RoomType{ID: "rt-suite", Name: "Suite Deluxe", BasePriceCents: 25000, MaxGuests: 4, Capacity: 2})
	for i, n := range []string{"201", "202", "203", "204"} {
		cat.addRoom(hotel.Room{ID: "room-" + n, Number: n, Floor: 2, RoomTypeID: "rt-suite", CreatedAt: time.Date(2024, 1, i+1, 0, 0, 0, 0, time.UTC)})
	}
	res := &memReservations{}
	res.add(hotel.Reservation{
		ID: "res-1", RoomID: "room-201", UserID: "u-1",
		CheckIn: d("2025-06-10"), CheckOut: d("2025-06-13"),
		Guests: 2, Status: hotel.StatusConfirmed,
	})
	e := NewEngine(cat, res, time.UTC, nil)
	e.Now = func() time.Time { return time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC) }
	return e, cat, res
}
