package hotel

import (
	"github.com/ariefcatur/go-hotel-reservations/internal/dates"
	"time"
)

type RoomType struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	BasePriceCents int       `json:"basePriceCents"`
	MaxGuests      int       `json:"maxGuests"`
	Capacity       int       `json:"capacity"` // beds; informational
	CreatedAt      time.Time `json:"createdAt"`
}

// Room keeps the staff-controlled maintenance flag apart from the derived occupancy.
type Room struct {
	ID          string    `json:"id"`
	Number      string    `json:"number"`
	Floor       int       `json:"floor"`
	RoomTypeID  string    `json:"roomTypeId"`
	Maintenance bool      `json:"maintenance"`
	Occupancy   Occupancy `json:"occupancy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (r Room) Status() RoomStatus {
	if r.Maintenance {
		return RoomMaintenance
	}
	if r.Occupancy == OccupancyOccupied {
		return RoomOccupied
	}
	return RoomAvailable
}

type Reservation struct {
	ID               string            `json:"id"`
	ExternalID       string            `json:"externalId,omitempty"`
	RoomID           string            `json:"roomId"`
	UserID           string            `json:"userId"`
	CheckIn          dates.Date        `json:"checkIn"`
	CheckOut         dates.Date        `json:"checkOut"` // exclusive
	Guests           int               `json:"guests"`
	TotalAmountCents int               `json:"totalAmountCents"`
	PaidAmountCents  int               `json:"paidAmountCents"`
	Status           ReservationStatus `json:"status"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

func (r Reservation) Stay() dates.Range {
	return dates.Range{Start: r.CheckIn, End: r.CheckOut}
}

// DayAvailability is one cell of a month calendar. It is computed, never stored.
type DayAvailability struct {
	Available      bool `json:"available"`
	AvailableRooms int  `json:"availableRooms"`
	OccupiedRooms  int  `json:"occupiedRooms"`
	TotalRooms     int  `json:"totalRooms"`
}
