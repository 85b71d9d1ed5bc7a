package availability

import (
	"context"
	"github.com/ariefcatur/go-hotel-reservations/internal/hotel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestMonthAvailability_RoomType(t *testing.T) {
	e, _, _ := suiteDeluxe()

	got, err := e.MonthAvailability(context.Background(), "rt-suite", 2025, time.June)
	require.NoError(t, err)
	require.Len(t, got, 30)

	for _, day := range []string{"2025-06-10", "2025-06-11", "2025-06-12"} {
		assert.Equal(t, hotel.DayAvailability{Available: true, AvailableRooms: 3, OccupiedRooms: 1, TotalRooms: 4}, got[day], day)
	}
	for _, day := range []string{"2025-06-01", "2025-06-09", "2025-06-13", "2025-06-14", "2025-06-30"} {
		assert.Equal(t, 4, got[day].AvailableRooms, day)
	}
	for day, cell := range got {
		assert.Equal(t, cell.TotalRooms, cell.AvailableRooms+cell.OccupiedRooms, day)
		assert.Equal(t, cell.AvailableRooms > 0, cell.Available, day)
	}
}

func TestMonthAvailability_SingleRoom(t *testing.T) {
	e, _, _ := suiteDeluxe()

	got, err := e.MonthAvailability(context.Background(), "room-201", 2025, time.June)
	require.NoError(t, err)

	assert.Equal(t, hotel.DayAvailability{Available: false, AvailableRooms: 0, OccupiedRooms: 1, TotalRooms: 1}, got["2025-06-12"])
	assert.Equal(t, hotel.DayAvailability{Available: true, AvailableRooms: 1, OccupiedRooms: 0, TotalRooms: 1}, got["2025-06-13"])
}

func TestMonthAvailability_FullyBooked(t *testing.T) {
	e, _, res := suiteDeluxe()
	for _, n := range []string{"202", "203", "204"} {
		res.add(hotel.Reservation{ID: "x" + n, RoomID: "room-" + n, CheckIn: d("2025-06-11"), CheckOut: d("2025-06-12"), Status: hotel.StatusPendingPayment})
	}
	// A second stay on the same room the same day is counted once.
	res.add(hotel.Reservation{ID: "dup", RoomID: "room-202", CheckIn: d("2025-06-11"), CheckOut: d("2025-06-12"), Status: hotel.StatusConfirmed})

	got, err := e.MonthAvailability(context.Background(), "rt-suite", 2025, time.June)
	require.NoError(t, err)
	assert.Equal(t, hotel.DayAvailability{Available: false, AvailableRooms: 0, OccupiedRooms: 4, TotalRooms: 4}, got["2025-06-11"])
	assert.Equal(t, 3, got["2025-06-12"].AvailableRooms)
}

func TestMonthAvailability_StaysSpanningMonths(t *testing.T) {
	e, _, res := suiteDeluxe()
	res.add(hotel.Reservation{ID: "long", RoomID: "room-204", CheckIn: d("2025-05-28"), CheckOut: d("2025-06-03"), Status: hotel.StatusConfirmed})
	res.add(hotel.Reservation{ID: "nye", RoomID: "room-203", CheckIn: d("2025-06-30"), CheckOut: d("2025-07-02"), Status: hotel.StatusConfirmed})

	got, err := e.MonthAvailability(context.Background(), "rt-suite", 2025, time.June)
	require.NoError(t, err)
	assert.Equal(t, 3, got["2025-06-01"].AvailableRooms)
	assert.Equal(t, 3, got["2025-06-02"].AvailableRooms)
	assert.Equal(t, 4, got["2025-06-03"].AvailableRooms)
	assert.Equal(t, 3, got["2025-06-30"].AvailableRooms)
	_, ok := got["2025-07-01"]
	assert.False(t, ok)
}

func TestMonthAvailability_InvalidInput(t *testing.T) {
	e, _, _ := suiteDeluxe()

	_, err := e.MonthAvailability(context.Background(), "rt-suite", 2025, 13)
	assert.ErrorIs(t, err, hotel.ErrInvalidMonth)

	_, err = e.MonthAvailability(context.Background(), "missing", 2025, time.June)
	assert.True(t, hotel.IsNotFound(err))
}

func TestMonthAvailability_EmptyRoomType(t *testing.T) {
	e, cat, res := suiteDeluxe()
	cat.addType(hotel.RoomType{ID: "rt-empty", Name: "Attic", MaxGuests: 1})

	got, err := e.MonthAvailability(context.Background(), "rt-empty", 2025, time.February)
	require.NoError(t, err)
	assert.Len(t, got, 28)
	assert.Equal(t, hotel.DayAvailability{}, got["2025-02-14"])
	assert.Zero(t, res.findCalls)
}
