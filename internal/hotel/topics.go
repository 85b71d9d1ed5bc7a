package hotel

const (
	TopicReservationCreated       = "hotel.reservation.created"
	TopicReservationStatusChanged = "hotel.reservation.status_changed"
)

// Partition key = room_id, so every event touching one room stays ordered.
func PartitionKey(roomID string) []byte { return []byte(roomID) }
