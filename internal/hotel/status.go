package hotel

type ReservationStatus string

const (
	StatusPendingPayment ReservationStatus = "PENDING_PAYMENT"
	StatusConfirmed      ReservationStatus = "CONFIRMED"
	StatusCompleted      ReservationStatus = "COMPLETED"
	StatusCancelled      ReservationStatus = "CANCELLED"
)

// ActiveStatuses are the statuses that hold a room for their dates.
var ActiveStatuses = []ReservationStatus{StatusPendingPayment, StatusConfirmed}

var validNext = map[ReservationStatus]map[ReservationStatus]bool{
	StatusPendingPayment: {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed:      {StatusCompleted: true, StatusCancelled: true},
	StatusCompleted:      {},
	StatusCancelled:      {},
}

func CanTransition(from, to ReservationStatus) bool {
	return validNext[from][to]
}

func (s ReservationStatus) Valid() bool {
	_, ok := validNext[s]
	return ok
}

func (s ReservationStatus) Active() bool {
	return s == StatusPendingPayment || s == StatusConfirmed
}

// Occupancy is the derived half of a room's status. Only the reconciler writes it.
type Occupancy string

const (
	OccupancyAvailable Occupancy = "AVAILABLE"
	OccupancyOccupied  Occupancy = "OCCUPIED"
)

// RoomStatus is what staff screens show: MAINTENANCE when the staff flag is set,
// otherwise the derived occupancy.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "AVAILABLE"
	RoomOccupied    RoomStatus = "OCCUPIED"
	RoomMaintenance RoomStatus = "MAINTENANCE"
)
