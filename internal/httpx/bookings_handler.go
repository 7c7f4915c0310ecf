package httpx

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-pethotel-pos/internal/apperr"
	"github.com/ariefcatur/go-pethotel-pos/internal/booking"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingFlow interface {
	Available(ctx context.Context, date time.Time) (bool, error)
	Quote(ctx context.Context, f booking.Form) (booking.Quote, error)
	Create(ctx context.Context, userID string, f booking.Form) (booking.Booking, error)
	List(ctx context.Context, userID string) ([]booking.Booking, error)
	Cancel(ctx context.Context, userID, bookID string) (booking.Booking, error)
	CalendarData(ctx context.Context, year int) ([]booking.RoomDay, error)
	ListRooms(ctx context.Context, category string) ([]booking.Room, error)
}

type BookingsHandler struct {
	Flow BookingFlow
	Log  *zap.Logger
}

func (h *BookingsHandler) Register(r chi.Router) {
	r.Post("/bookings/quote", h.quote)
	r.Post("/bookings", h.create)
	r.Get("/bookings", h.list)
	r.Post("/bookings/{id}/cancel", h.cancel)
	r.Get("/rooms/availability", h.availability)
	r.Get("/rooms/calendar", h.calendar)
	r.Get("/rooms", h.rooms)
}

func (h *BookingsHandler) quote(w http.ResponseWriter, r *http.Request) {
	var f booking.Form
	if !decode(w, r, &f) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	q, err := h.Flow.Quote(ctx, f)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *BookingsHandler) create(w http.ResponseWriter, r *http.Request) {
	var f booking.Form
	if !decode(w, r, &f) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	b, err := h.Flow.Create(ctx, userID(r), f)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BookingsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	bs, err := h.Flow.List(ctx, userID(r))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, bs)
}

func (h *BookingsHandler) cancel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	b, err := h.Flow.Cancel(ctx, userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingsHandler) availability(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("date")
	date, err := time.Parse(booking.DateLayout, day)
	if err != nil {
		writeError(w, h.Log, apperr.Validation("rooms.availability", map[string]string{"date": "date must be YYYY-MM-DD"}))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ok, err := h.Flow.Available(ctx, date)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": day, "available": ok})
}

func (h *BookingsHandler) calendar(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if s := r.URL.Query().Get("year"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, h.Log, apperr.Validation("rooms.calendar", map[string]string{"year": "year must be a number"}))
			return
		}
		year = n
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	days, err := h.Flow.CalendarData(ctx, year)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

func (h *BookingsHandler) rooms(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rooms, err := h.Flow.ListRooms(ctx, r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}
