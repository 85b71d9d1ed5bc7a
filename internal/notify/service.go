// Package notify sends the booking confirmation once a reservation is created.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/ariefcatur/go-hotel-reservations/internal/hotel"
	kafkax "github.com/ariefcatur/go-hotel-reservations/internal/kafka"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Deduper interface {
	MarkOnce(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

type Service struct {
	Dedup  Deduper
	Mailer Mailer
	From   string
	Log    *zap.Logger
}

// HandleReservationCreated is installed as the consumer handler. A mail
// failure is logged and the offset still committed: the reservation stands
// whether or not the guest was notified.
func (s *Service) HandleReservationCreated(ctx context.Context, m kafkago.Message) error {
	var env hotel.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		s.Log.Warn("dropping malformed envelope", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if env.EventType != hotel.EventReservationCreated {
		return nil
	}

	first, err := s.Dedup.MarkOnce(ctx, env.EventID)
	if err != nil {
		return fmt.Errorf("dedup %s: %w", env.EventID, err)
	}
	if !first {
		return nil
	}

	p, err := kafkax.UnwrapPayload[hotel.ReservationCreatedPayload](env.Payload)
	if err != nil {
		s.Log.Warn("dropping malformed payload", zap.String("event_id", env.EventID), zap.Error(err))
		return nil
	}

	if err := s.Mailer.Send(ctx, confirmation(s.From, p)); err != nil {
		s.Log.Error("confirmation mail failed",
			zap.String("reservation_id", p.ReservationID),
			zap.String("trace_id", env.TraceID),
			zap.Error(err))
		// let a redelivery try again
		if ferr := s.Dedup.Forget(ctx, env.EventID); ferr != nil {
			s.Log.Warn("dedup forget failed", zap.String("event_id", env.EventID), zap.Error(ferr))
		}
	}
	return nil
}

func confirmation(from string, p hotel.ReservationCreatedPayload) Message {
	return Message{
		From:    from,
		To:      p.UserID,
		Subject: fmt.Sprintf("Reservation %s received", p.ReservationID),
		Body: fmt.Sprintf("Room %s (%s), %s to %s, %d guest(s). Total %d.%02d. Status: %s.",
			p.RoomNumber, p.RoomTypeName, p.CheckIn, p.CheckOut, p.Guests,
			p.TotalAmountCents/100, p.TotalAmountCents%100, p.Status),
	}
}
