package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-hotel-reservations/internal/availability"
	"github.com/ariefcatur/go-hotel-reservations/internal/dates"
	"github.com/ariefcatur/go-hotel-reservations/internal/hotel"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"net/http"
	"reflect"
	"strings"
	"time"
)

type Availability interface {
	FindAvailableRoom(ctx context.Context, id string, stay dates.Range, guests int) (hotel.Room, error)
	MonthAvailability(ctx context.Context, id string, year int, month time.Month) (map[string]hotel.DayAvailability, error)
	ReconcileRoomStatuses(ctx context.Context) (availability.ReconcileResult, error)
}

type Bookings interface {
	Book(ctx context.Context, req availability.BookRequest) (hotel.Reservation, error)
	OccupyRoom(ctx context.Context, req availability.BookRequest) (hotel.Reservation, error)
	ChangeStatus(ctx context.Context, id string, to hotel.ReservationStatus, actor string) (hotel.Reservation, error)
	SetMaintenance(ctx context.Context, roomID string, on bool) (hotel.Room, error)
}

type ReservationReader interface {
	Get(ctx context.Context, id string) (hotel.Reservation, error)
}

// Cache is the Redis fast path; a nil Cache disables it. The database stays
// the source of truth.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type Handler struct {
	Engine       Availability
	Bookings     Bookings
	Reservations ReservationReader
	Cache        Cache
	Log          *zap.Logger
}

func (h *Handler) Register(r chi.Router, auth *Auth, rl *RateLimiter) {
	r.With(rl.Limit).Get("/availability/{id}", h.findRoom)
	r.Get("/calendar/{id}", h.calendar)

	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate, RequireRole(RoleUser, RoleOperator, RoleAdmin))
		r.With(rl.Limit).Post("/reservations", h.book)
		r.Get("/reservations/{id}", h.getReservation)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.Authenticate, RequireRole(RoleOperator, RoleAdmin))
		r.Post("/rooms/{id}/occupy", h.occupyRoom)
		r.Put("/rooms/{id}/maintenance", h.setMaintenance)
		r.Post("/rooms/reconcile", h.reconcile)
		r.Patch("/reservations/{id}/status", h.changeStatus)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case hotel.IsValidationError(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case hotel.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case hotel.IsNoAvailability(err):
		writeJSON(w, http.StatusConflict, map[string]string{"error": hotel.ErrNoAvailability.Error()})
	case hotel.IsConflict(err):
		writeJSON(w, http.StatusConflict, map[string]any{"error": hotel.ErrConflict.Error(), "retryable": true})
	case errors.Is(err, hotel.ErrInvalidTransition):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, map[string]string{"error": "timeout"})
	default:
		h.Log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

// decode reads a JSON body and checks its validate tags. Either failure is a
// hotel.ErrValidation.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid json", hotel.ErrValidation)
	}
	if err := validate.Struct(v); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) {
			msgs := make([]string, 0, len(fields))
			for _, fe := range fields {
				msgs = append(msgs, fe.Field()+" failed "+fe.Tag())
			}
			return fmt.Errorf("%w: %s", hotel.ErrValidation, strings.Join(msgs, ", "))
		}
		return fmt.Errorf("%w: %v", hotel.ErrValidation, err)
	}
	return nil
}
