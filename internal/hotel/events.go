package hotel

import (
	"encoding/json"
	"time"
)

const (
	EventReservationCreated       = "ReservationCreated"
	EventReservationStatusChanged = "ReservationStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // one of the consts above
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"` // e.g. "hotel-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // reservation id
	Payload       json.RawMessage `json:"payload"`
}

type ReservationCreatedPayload struct {
	ReservationID    string            `json:"reservation_id"`
	RoomID           string            `json:"room_id"`
	RoomNumber       string            `json:"room_number"`
	RoomTypeName     string            `json:"room_type_name"`
	UserID           string            `json:"user_id"`
	CheckIn          string            `json:"check_in"`
	CheckOut         string            `json:"check_out"`
	Guests           int               `json:"guests"`
	TotalAmountCents int               `json:"total_amount_cents"`
	Status           ReservationStatus `json:"status"`
}

type ReservationStatusChangedPayload struct {
	ReservationID string            `json:"reservation_id"`
	RoomID        string            `json:"room_id"`
	From          ReservationStatus `json:"from"`
	To            ReservationStatus `json:"to"`
	ChangedBy     string            `json:"changed_by,omitempty"`
}
