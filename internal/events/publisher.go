// Package events turns committed reservation changes into Kafka envelopes.
package events

import (
	"context"
	"github.com/ariefcatur/go-hotel-reservations/internal/hotel"
	kafkax "github.com/ariefcatur/go-hotel-reservations/internal/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"time"
)

type publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header) bool
}

type traceKey struct{}

// WithTrace stores the request id that becomes the envelope's trace_id.
func WithTrace(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

func traceID(ctx context.Context) string {
	s, _ := ctx.Value(traceKey{}).(string)
	return s
}

type Publisher struct {
	Created       publisher // hotel.TopicReservationCreated
	StatusChanged publisher // hotel.TopicReservationStatusChanged
	Service       string
	Now           func() time.Time
}

func (p *Publisher) envelope(ctx context.Context, eventType, correlation string, payload any) hotel.Envelope {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return hotel.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    now().UTC(),
		Producer:      p.Service,
		TraceID:       traceID(ctx),
		CorrelationID: correlation,
		Payload:       kafkax.MustMarshal(payload),
	}
}

func (p *Publisher) ReservationCreated(ctx context.Context, r hotel.Reservation, room hotel.Room, rt hotel.RoomType) {
	ev := p.envelope(ctx, hotel.EventReservationCreated, r.ID, hotel.ReservationCreatedPayload{
		ReservationID:    r.ID,
		RoomID:           room.ID,
		RoomNumber:       room.Number,
		RoomTypeName:     rt.Name,
		UserID:           r.UserID,
		CheckIn:          r.CheckIn.String(),
		CheckOut:         r.CheckOut.String(),
		Guests:           r.Guests,
		TotalAmountCents: r.TotalAmountCents,
		Status:           r.Status,
	})
	p.Created.Publish(hotel.PartitionKey(room.ID), kafkax.MustMarshal(ev), kafkax.EventHeaders(ev.EventType, ev.EventVersion)...)
}

func (p *Publisher) ReservationStatusChanged(ctx context.Context, r hotel.Reservation, from hotel.ReservationStatus, actor string) {
	ev := p.envelope(ctx, hotel.EventReservationStatusChanged, r.ID, hotel.ReservationStatusChangedPayload{
		ReservationID: r.ID,
		RoomID:        r.RoomID,
		From:          from,
		To:            r.Status,
		ChangedBy:     actor,
	})
	p.StatusChanged.Publish(hotel.PartitionKey(r.RoomID), kafkax.MustMarshal(ev), kafkax.EventHeaders(ev.EventType, ev.EventVersion)...)
}
