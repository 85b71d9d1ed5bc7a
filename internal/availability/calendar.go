package availability

import (
	"context"
	"github.com/ariefcatur/go-hotel-reservations/internal/dates"
	"github.com/ariefcatur/go-hotel-reservations/internal/hotel"
	"time"
)

// MonthAvailability returns one cell per day of the month, keyed "YYYY-MM-DD".
// For a room type every room of the type counts towards the total; for a room the
// total is 1. A room is occupied on D when an active reservation has
// checkIn <= D < checkOut.
func (e *Engine) MonthAvailability(ctx context.Context, id string, year int, month time.Month) (map[string]hotel.DayAvailability, error) {
	if month < time.January || month > time.December {
		return nil, hotel.ErrInvalidMonth
	}

	t, err := e.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	span := dates.Month(year, month)
	var existing []hotel.Reservation
	if len(t.rooms) > 0 {
		existing, err = e.Reservations.FindOverlapping(ctx, t.roomIDs(), span, hotel.ActiveStatuses)
		if err != nil {
			return nil, err
		}
	}
	return aggregate(t.roomIDs(), existing, span), nil
}

func aggregate(roomIDs []string, existing []hotel.Reservation, span dates.Range) map[string]hotel.DayAvailability {
	known := make(map[string]bool, len(roomIDs))
	for _, id := range roomIDs {
		known[id] = true
	}
	total := len(known)

	days := span.Days()
	out := make(map[string]hotel.DayAvailability, len(days))
	for _, day := range days {
		occupied := map[string]bool{}
		for _, r := range existing {
			if known[r.RoomID] && r.Status.Active() && r.Stay().Contains(day) {
				occupied[r.RoomID] = true
			}
		}
		n := len(occupied)
		out[day.String()] = hotel.DayAvailability{
			Available:      n < total,
			AvailableRooms: total - n,
			OccupiedRooms:  n,
			TotalRooms:     total,
		}
	}
	return out
}
