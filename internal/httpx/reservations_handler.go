package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/ariefcatur/go-hotel-reservations/internal/availability"
	"github.com/ariefcatur/go-hotel-reservations/internal/dates"
	"github.com/ariefcatur/go-hotel-reservations/internal/events"
	"github.com/ariefcatur/go-hotel-reservations/internal/hotel"
	"github.com/ariefcatur/go-hotel-reservations/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"net/http"
	"time"
)

type CreateReservationReq struct {
	ExternalID string     `json:"externalId" validate:"max=128"`
	RoomID     string     `json:"roomId" validate:"required"` // a room or a room type
	CheckIn    dates.Date `json:"checkIn"`
	CheckOut   dates.Date `json:"checkOut"`
	Guests     int        `json:"guests"`
}

type ReservationResp struct {
	Reservation hotel.Reservation `json:"reservation"`
	Idempotent  bool              `json:"idempotent"`
}

func (h *Handler) book(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationReq
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, _ := PrincipalFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	ctx = events.WithTrace(ctx, middleware.GetReqID(ctx))

	// Fast-path idempotency; the unique (user_id, external_id) in Postgres still backs it.
	idemKey := fmt.Sprintf(redisx.KeyIdemReservationCreate, p.Subject, req.ExternalID)
	if req.ExternalID != "" {
		if id, ok := h.cacheGet(ctx, idemKey); ok {
			if res, err := h.Reservations.Get(ctx, id); err == nil && res.UserID == p.Subject {
				writeJSON(w, http.StatusOK, ReservationResp{Reservation: res, Idempotent: true})
				return
			}
		}
	}

	res, err := h.Bookings.Book(ctx, availability.BookRequest{
		TargetID:   req.RoomID,
		UserID:     p.Subject,
		ExternalID: req.ExternalID,
		Stay:       dates.Range{Start: req.CheckIn, End: req.CheckOut},
		Guests:     req.Guests,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if req.ExternalID != "" {
		h.cacheSet(ctx, idemKey, res.ID, redisx.TTLIdempotency)
	}
	h.cacheReservation(ctx, res)
	writeJSON(w, http.StatusCreated, ReservationResp{Reservation: res})
}

func (h *Handler) getReservation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, _ := PrincipalFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var res hotel.Reservation
	cached := false
	if s, ok := h.cacheGet(ctx, fmt.Sprintf(redisx.KeyReservation, id)); ok {
		cached = json.Unmarshal([]byte(s), &res) == nil
	}
	if !cached {
		var err error
		if res, err = h.Reservations.Get(ctx, id); err != nil {
			h.writeError(w, r, err)
			return
		}
		h.cacheReservation(ctx, res)
	}

	// guests only see their own reservations
	if !isStaff(p) && res.UserID != p.Subject {
		h.writeError(w, r, hotel.ErrReservationNotFound)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) cacheReservation(ctx context.Context, res hotel.Reservation) {
	b, err := json.Marshal(res)
	if err != nil {
		return
	}
	h.cacheSet(ctx, fmt.Sprintf(redisx.KeyReservation, res.ID), string(b), redisx.TTLReservationCache)
}

func (h *Handler) cacheGet(ctx context.Context, key string) (string, bool) {
	if h.Cache == nil {
		return "", false
	}
	v, ok, err := h.Cache.Get(ctx, key)
	if err != nil {
		h.Log.Debug("cache get failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return v, ok
}

func (h *Handler) cacheSet(ctx context.Context, key, value string, ttl time.Duration) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Set(ctx, key, value, ttl); err != nil {
		h.Log.Debug("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (h *Handler) cacheDel(ctx context.Context, key string) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Del(ctx, key); err != nil {
		h.Log.Warn("cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}
