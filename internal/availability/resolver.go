package availability

import (
	"context"
	"github.com/ariefcatur/go-hotel-reservations/internal/dates"
	"github.com/ariefcatur/go-hotel-reservations/internal/hotel"
)

// ValidateStay rejects empty or inverted stays, stays starting before today in the
// hotel's time zone, and non-positive guest counts.
func (e *Engine) ValidateStay(stay dates.Range, guests int) error {
	if stay.Start.IsZero() || !stay.Start.Before(stay.End) {
		return hotel.ErrInvalidDates
	}
	if stay.Start.Before(e.Today()) {
		return hotel.ErrCheckInPast
	}
	if guests < 1 {
		return hotel.ErrInvalidGuests
	}
	return nil
}

// FindAvailableRoom picks a room for stay. id may name a room type, in which case
// the first non-maintenance room of the type without an active overlapping
// reservation wins, or a concrete room, which is then the only candidate.
//
// The answer is advisory: nothing is locked. Reservations.Create repeats the check
// atomically when the booking is written.
func (e *Engine) FindAvailableRoom(ctx context.Context, id string, stay dates.Range, guests int) (hotel.Room, error) {
	room, _, err := e.findRoom(ctx, id, stay, guests)
	return room, err
}

func (e *Engine) findRoom(ctx context.Context, id string, stay dates.Range, guests int) (hotel.Room, hotel.RoomType, error) {
	if err := e.ValidateStay(stay, guests); err != nil {
		return hotel.Room{}, hotel.RoomType{}, err
	}

	t, err := e.resolve(ctx, id)
	if err != nil {
		return hotel.Room{}, hotel.RoomType{}, err
	}
	if guests > t.roomType.MaxGuests {
		return hotel.Room{}, hotel.RoomType{}, hotel.ErrCapacityExceeded
	}

	candidates := t.rooms
	if !t.single {
		candidates = make([]hotel.Room, 0, len(t.rooms))
		for _, r := range t.rooms {
			if !r.Maintenance {
				candidates = append(candidates, r)
			}
		}
	}
	if len(candidates) == 0 {
		return hotel.Room{}, hotel.RoomType{}, hotel.ErrNoAvailability
	}

	ids := make([]string, 0, len(candidates))
	for _, r := range candidates {
		ids = append(ids, r.ID)
	}
	existing, err := e.Reservations.FindOverlapping(ctx, ids, stay, hotel.ActiveStatuses)
	if err != nil {
		return hotel.Room{}, hotel.RoomType{}, err
	}

	busy := busyRooms(existing, stay)
	for _, r := range candidates {
		if !busy[r.ID] {
			return r, t.roomType, nil
		}
	}
	return hotel.Room{}, hotel.RoomType{}, hotel.ErrNoAvailability
}

// busyRooms re-applies the overlap predicate so a store returning a wider set
// cannot mark a free room as taken.
func busyRooms(existing []hotel.Reservation, stay dates.Range) map[string]bool {
	busy := make(map[string]bool, len(existing))
	for _, r := range existing {
		if r.Status.Active() && r.Stay().Overlaps(stay) {
			busy[r.RoomID] = true
		}
	}
	return busy
}
