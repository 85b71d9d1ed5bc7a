package availability

import (
	"context"
	"github.com/ariefcatur/go-hotel-reservations/internal/dates"
	"github.com/ariefcatur/go-hotel-reservations/internal/hotel"
	"go.uber.org/zap"
)

type ReconcileResult struct {
	Updated int `json:"updated"`
	// Skipped counts maintenance rooms and rooms whose update failed.
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// ReconcileRoomStatuses sets every non-maintenance room to OCCUPIED when a
// CONFIRMED reservation covers today and to AVAILABLE otherwise. Only rooms whose
// stored occupancy differs are written, so a second run with no reservation
// changes in between updates nothing. A failed room update is logged and the sweep
// moves on.
func (e *Engine) ReconcileRoomStatuses(ctx context.Context) (ReconcileResult, error) {
	var res ReconcileResult
	log := e.logger()

	rooms, err := e.Catalog.ListRooms(ctx)
	if err != nil {
		return res, err
	}

	operational := make([]hotel.Room, 0, len(rooms))
	ids := make([]string, 0, len(rooms))
	for _, r := range rooms {
		if r.Maintenance {
			res.Skipped++
			continue
		}
		operational = append(operational, r)
		ids = append(ids, r.ID)
	}
	if len(operational) == 0 {
		return res, nil
	}

	today := e.Today()
	tonight := dates.Range{Start: today, End: today.AddDays(1)}
	current, err := e.Reservations.FindOverlapping(ctx, ids, tonight, []hotel.ReservationStatus{hotel.StatusConfirmed})
	if err != nil {
		return res, err
	}
	occupied := make(map[string]bool, len(current))
	for _, r := range current {
		if r.Status == hotel.StatusConfirmed && r.Stay().Contains(today) {
			occupied[r.RoomID] = true
		}
	}

	for _, r := range operational {
		want := hotel.OccupancyAvailable
		if occupied[r.ID] {
			want = hotel.OccupancyOccupied
		}
		if r.Occupancy == want {
			continue
		}
		if err := e.Catalog.SetOccupancy(ctx, r.ID, want); err != nil {
			log.Warn("room occupancy update failed",
				zap.String("room_id", r.ID),
				zap.String("room_number", r.Number),
				zap.String("want", string(want)),
				zap.Error(err))
			res.Skipped++
			res.Failed++
			continue
		}
		res.Updated++
	}

	log.Info("room statuses reconciled",
		zap.String("today", today.String()),
		zap.Int("rooms", len(rooms)),
		zap.Int("updated", res.Updated),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed))
	return res, nil
}
