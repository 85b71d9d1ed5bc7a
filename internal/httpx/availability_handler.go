package httpx

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-hotel-reservations/internal/dates"
	"github.com/ariefcatur/go-hotel-reservations/internal/hotel"
	"github.com/go-chi/chi/v5"
	"net/http"
	"strconv"
	"time"
)

type FindRoomResp struct {
	Available bool       `json:"available"`
	Room      hotel.Room `json:"room"`
}

func parseStay(r *http.Request) (dates.Range, int, error) {
	q := r.URL.Query()
	in, err := dates.Parse(q.Get("checkIn"))
	if err != nil {
		return dates.Range{}, 0, fmt.Errorf("%w: checkIn must be YYYY-MM-DD", hotel.ErrValidation)
	}
	out, err := dates.Parse(q.Get("checkOut"))
	if err != nil {
		return dates.Range{}, 0, fmt.Errorf("%w: checkOut must be YYYY-MM-DD", hotel.ErrValidation)
	}
	guests := 1
	if s := q.Get("guests"); s != "" {
		if guests, err = strconv.Atoi(s); err != nil {
			return dates.Range{}, 0, fmt.Errorf("%w: guests must be a number", hotel.ErrValidation)
		}
	}
	return dates.Range{Start: in, End: out}, guests, nil
}

func (h *Handler) findRoom(w http.ResponseWriter, r *http.Request) {
	stay, guests, err := parseStay(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	room, err := h.Engine.FindAvailableRoom(ctx, chi.URLParam(r, "id"), stay, guests)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FindRoomResp{Available: true, Room: room})
}

// calendar takes a 0-based month (January = 0), as browser clients send it.
func (h *Handler) calendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil || year < 1 {
		h.writeError(w, r, fmt.Errorf("%w: year must be a number", hotel.ErrValidation))
		return
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil || month < 0 || month > 11 {
		h.writeError(w, r, hotel.ErrInvalidMonth)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	days, err := h.Engine.MonthAvailability(ctx, chi.URLParam(r, "id"), year, time.Month(month+1))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}
