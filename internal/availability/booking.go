package availability

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-hotel-reservations/internal/dates"
	"github.com/ariefcatur/go-hotel-reservations/internal/hotel"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Events receives reservation changes after they are committed. Implementations
// must not block on delivery; a failure never undoes the reservation.
type Events interface {
	ReservationCreated(ctx context.Context, r hotel.Reservation, room hotel.Room, rt hotel.RoomType)
	ReservationStatusChanged(ctx context.Context, r hotel.Reservation, from hotel.ReservationStatus, actor string)
}

type BookRequest struct {
	TargetID   string
	UserID     string
	ExternalID string
	Stay       dates.Range
	Guests     int
}

// Bookings writes reservations on top of the engine's checks.
type Bookings struct {
	Engine *Engine
	Events Events
}

func NewBookings(e *Engine, ev Events) *Bookings {
	return &Bookings{Engine: e, Events: ev}
}

// Book reserves a room for a guest. The reservation starts PENDING_PAYMENT and is
// priced at nights times the room type's base price. When another booking takes
// the chosen room between the search and the insert, Book returns
// hotel.ErrConflict rather than hotel.ErrNoAvailability.
//
// A request whose ExternalID this user already booked under returns that
// reservation without searching again.
func (b *Bookings) Book(ctx context.Context, req BookRequest) (hotel.Reservation, error) {
	if req.UserID == "" {
		return hotel.Reservation{}, fmt.Errorf("%w: user id required", hotel.ErrValidation)
	}
	if prev, ok, err := b.replay(ctx, req); err != nil || ok {
		return prev, err
	}
	room, rt, err := b.Engine.findRoom(ctx, req.TargetID, req.Stay, req.Guests)
	if err != nil {
		return hotel.Reservation{}, err
	}
	return b.create(ctx, req, room, rt, hotel.StatusPendingPayment)
}

// OccupyRoom is the staff path: the reservation is made on one concrete room and
// is CONFIRMED straight away. Room occupancy is reconciled right after.
func (b *Bookings) OccupyRoom(ctx context.Context, req BookRequest) (hotel.Reservation, error) {
	if req.UserID == "" {
		return hotel.Reservation{}, fmt.Errorf("%w: user id required", hotel.ErrValidation)
	}
	if prev, ok, err := b.replay(ctx, req); err != nil || ok {
		return prev, err
	}
	room, err := b.Engine.Catalog.GetRoom(ctx, req.TargetID)
	if err != nil {
		return hotel.Reservation{}, err
	}
	if room.Maintenance {
		return hotel.Reservation{}, hotel.ErrRoomMaintenance
	}
	room, rt, err := b.Engine.findRoom(ctx, room.ID, req.Stay, req.Guests)
	if err != nil {
		return hotel.Reservation{}, err
	}
	created, err := b.create(ctx, req, room, rt, hotel.StatusConfirmed)
	if err != nil {
		return hotel.Reservation{}, err
	}
	b.reconcile(ctx)
	return created, nil
}

// replay looks up an earlier reservation made by the same user under the same
// external id.
func (b *Bookings) replay(ctx context.Context, req BookRequest) (hotel.Reservation, bool, error) {
	if req.ExternalID == "" {
		return hotel.Reservation{}, false, nil
	}
	prev, err := b.Engine.Reservations.GetByExternalID(ctx, req.UserID, req.ExternalID)
	switch {
	case err == nil:
		b.Engine.logger().Info("reservation replayed",
			zap.String("reservation_id", prev.ID),
			zap.String("external_id", req.ExternalID))
		return prev, true, nil
	case hotel.IsNotFound(err):
		return hotel.Reservation{}, false, nil
	default:
		return hotel.Reservation{}, false, err
	}
}

func (b *Bookings) create(ctx context.Context, req BookRequest, room hotel.Room, rt hotel.RoomType, status hotel.ReservationStatus) (hotel.Reservation, error) {
	now := b.Engine.now().UTC()
	r := hotel.Reservation{
		ID:               uuid.NewString(),
		ExternalID:       req.ExternalID,
		RoomID:           room.ID,
		UserID:           req.UserID,
		CheckIn:          req.Stay.Start,
		CheckOut:         req.Stay.End,
		Guests:           req.Guests,
		TotalAmountCents: req.Stay.Nights() * rt.BasePriceCents,
		Status:           status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	created, err := b.Engine.Reservations.Create(ctx, r)
	if err != nil {
		return hotel.Reservation{}, err
	}
	if created.ID != r.ID {
		// a concurrent request with the same external id committed first
		return created, nil
	}

	b.Engine.logger().Info("reservation created",
		zap.String("reservation_id", created.ID),
		zap.String("room_id", room.ID),
		zap.String("room_number", room.Number),
		zap.String("stay", created.Stay().String()),
		zap.String("status", string(created.Status)))
	if b.Events != nil {
		b.Events.ReservationCreated(ctx, created, room, rt)
	}
	return created, nil
}

// ChangeStatus applies a staff or guest driven transition and reconciles room
// occupancy afterwards.
func (b *Bookings) ChangeStatus(ctx context.Context, id string, to hotel.ReservationStatus, actor string) (hotel.Reservation, error) {
	if !to.Valid() {
		return hotel.Reservation{}, fmt.Errorf("%w: unknown status %q", hotel.ErrValidation, to)
	}
	cur, err := b.Engine.Reservations.Get(ctx, id)
	if err != nil {
		return hotel.Reservation{}, err
	}
	if !hotel.CanTransition(cur.Status, to) {
		return hotel.Reservation{}, fmt.Errorf("%w: %s -> %s", hotel.ErrInvalidTransition, cur.Status, to)
	}
	updated, err := b.Engine.Reservations.UpdateStatus(ctx, id, cur.Status, to)
	if err != nil {
		return hotel.Reservation{}, err
	}
	if b.Events != nil {
		b.Events.ReservationStatusChanged(ctx, updated, cur.Status, actor)
	}
	b.reconcile(ctx)
	return updated, nil
}

// SetMaintenance toggles the staff flag. Occupancy is left to the reconciler.
func (b *Bookings) SetMaintenance(ctx context.Context, roomID string, on bool) (hotel.Room, error) {
	room, err := b.Engine.Catalog.SetMaintenance(ctx, roomID, on)
	if err != nil {
		return hotel.Room{}, err
	}
	if !on {
		b.reconcile(ctx)
	}
	return room, nil
}

// reconcile runs after a write has committed; its failure is not the caller's.
func (b *Bookings) reconcile(ctx context.Context) {
	if _, err := b.Engine.ReconcileRoomStatuses(ctx); err != nil && !errors.Is(err, context.Canceled) {
		b.Engine.logger().Warn("reconcile after write failed", zap.Error(err))
	}
}
