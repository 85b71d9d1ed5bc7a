package httpx

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-hotel-reservations/internal/availability"
	"github.com/ariefcatur/go-hotel-reservations/internal/dates"
	"github.com/ariefcatur/go-hotel-reservations/internal/events"
	"github.com/ariefcatur/go-hotel-reservations/internal/hotel"
	"github.com/ariefcatur/go-hotel-reservations/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"net/http"
	"time"
)

type OccupyRoomReq struct {
	ExternalID string     `json:"externalId" validate:"max=128"`
	UserID     string     `json:"userId"` // defaults to the operator
	CheckIn    dates.Date `json:"checkIn"`
	CheckOut   dates.Date `json:"checkOut"`
	Guests     int        `json:"guests"`
}

type MaintenanceReq struct {
	Maintenance *bool `json:"maintenance" validate:"required"`
}

type ChangeStatusReq struct {
	Status hotel.ReservationStatus `json:"status" validate:"required,oneof=PENDING_PAYMENT CONFIRMED COMPLETED CANCELLED"`
}

func (h *Handler) occupyRoom(w http.ResponseWriter, r *http.Request) {
	var req OccupyRoomReq
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, _ := PrincipalFrom(r.Context())
	if req.UserID == "" {
		req.UserID = p.Subject
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	ctx = events.WithTrace(ctx, middleware.GetReqID(ctx))

	res, err := h.Bookings.OccupyRoom(ctx, availability.BookRequest{
		TargetID:   chi.URLParam(r, "id"),
		UserID:     req.UserID,
		ExternalID: req.ExternalID,
		Stay:       dates.Range{Start: req.CheckIn, End: req.CheckOut},
		Guests:     req.Guests,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.cacheReservation(ctx, res)
	writeJSON(w, http.StatusCreated, ReservationResp{Reservation: res})
}

func (h *Handler) setMaintenance(w http.ResponseWriter, r *http.Request) {
	var req MaintenanceReq
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	room, err := h.Bookings.SetMaintenance(ctx, chi.URLParam(r, "id"), *req.Maintenance)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	var req ChangeStatusReq
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	p, _ := PrincipalFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	ctx = events.WithTrace(ctx, middleware.GetReqID(ctx))

	res, err := h.Bookings.ChangeStatus(ctx, id, req.Status, p.Subject)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.cacheDel(ctx, fmt.Sprintf(redisx.KeyReservation, id))
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	res, err := h.Engine.ReconcileRoomStatuses(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
