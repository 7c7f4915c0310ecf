// Package booking handles room stays: quotes, availability, creation and cancellation.
package booking

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/ariefcatur/go-pethotel-pos/internal/apperr"
	"github.com/ariefcatur/go-pethotel-pos/internal/counter"
	"github.com/ariefcatur/go-pethotel-pos/internal/pricing"
	"go.uber.org/zap"
)

type RoomStore interface {
	// Rooms lists rooms of one category, or of every category when category is "".
	Rooms(ctx context.Context, category string) ([]Room, error)
	// FindRoom returns apperr.ErrRoomNotFound when nothing matches.
	FindRoom(ctx context.Context, category, name string) (Room, error)
}

type BookingStore interface {
	Append(ctx context.Context, userID string, b Booking) error
	// List returns apperr.ErrBookingNotFound when the user has no bookings document.
	List(ctx context.Context, userID string) ([]Booking, error)
	SetStatus(ctx context.Context, userID, bookID string, status Status) error
}

type Service struct {
	Rooms    RoomStore
	Bookings BookingStore
	Counter  counter.Allocator
	Log      *zap.Logger
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Available reports whether any room of any category is free on date.
func (s *Service) Available(ctx context.Context, date time.Time) (bool, error) {
	rooms, err := s.Rooms.Rooms(ctx, "")
	if err != nil {
		return false, apperr.IO("booking.available", err)
	}
	return anyFree(rooms, date.Format(DateLayout)), nil
}

func anyFree(rooms []Room, day string) bool {
	for _, r := range rooms {
		if r.Quantities[day] > 0 {
			return true
		}
	}
	return false
}

// Quote prices a stay. When either date has no free room, or both dates are the
// same day, the amounts are zero and Message says why.
func (s *Service) Quote(ctx context.Context, f Form) (Quote, error) {
	checkIn, err1 := time.Parse(DateLayout, f.CheckIn)
	checkOut, err2 := time.Parse(DateLayout, f.CheckOut)
	if err1 != nil || err2 != nil {
		fields := map[string]string{}
		if err1 != nil {
			fields["checkin_date"] = "Please select a check-in date."
		}
		if err2 != nil {
			fields["checkout_date"] = "Please select a checkout date."
		}
		return Quote{}, apperr.Validation("booking.quote", fields)
	}

	room, err := s.Rooms.FindRoom(ctx, f.Category, f.RoomName)
	if err != nil {
		return Quote{}, apperr.IO("booking.quote", err)
	}
	rooms, err := s.Rooms.Rooms(ctx, "")
	if err != nil {
		return Quote{}, apperr.IO("booking.quote", err)
	}

	q := Quote{
		RoomPrice:         room.Price,
		CheckInAvailable:  anyFree(rooms, checkIn.Format(DateLayout)),
		CheckOutAvailable: anyFree(rooms, checkOut.Format(DateLayout)),
	}
	switch {
	case !q.CheckInAvailable && !q.CheckOutAvailable:
		q.Message = "Sorry, no rooms are available for the selected dates."
	case !q.CheckInAvailable:
		q.Message = "Sorry, no rooms are available for checkin date."
	case !q.CheckOutAvailable:
		q.Message = "Sorry, no rooms are available for checkout date."
	}
	if q.Message == "" {
		q.Stay = pricing.QuoteStay(checkIn, checkOut, room.Price)
	}
	return q, nil
}

// Create validates the form, prices it, allocates a B id and appends the booking
// to the user's document.
func (s *Service) Create(ctx context.Context, userID string, f Form) (Booking, error) {
	if userID == "" {
		return Booking{}, apperr.ErrMissingUser
	}
	if err := Validate(f); err != nil {
		return Booking{}, err
	}
	q, err := s.Quote(ctx, f)
	if err != nil {
		return Booking{}, err
	}
	if q.Message != "" {
		return Booking{}, apperr.ErrNoRoomAvailable
	}

	id, err := s.Counter.Next(ctx, counter.Booking)
	if err != nil {
		return Booking{}, apperr.IO("booking.create", err)
	}
	b := Booking{
		BookID:          id,
		BookDate:        s.now().UTC(),
		RoomName:        f.RoomName,
		CheckIn:         f.CheckIn,
		CheckOut:        f.CheckOut,
		OwnerName:       f.OwnerName,
		PetName:         f.PetName,
		Email:           f.Email,
		Contact:         f.Contact,
		Category:        f.Category,
		FoodCategory:    f.FoodCategory,
		VaccinationFile: f.VaccinationFile,
		RoomPrice:       q.RoomPrice,
		Stay:            q.Stay,
		Status:          StatusPending,
	}
	if err := s.Bookings.Append(ctx, userID, b); err != nil {
		s.Log.Error("booking append failed", zap.String("user_id", userID), zap.String("book_id", id), zap.Error(err))
		return Booking{}, apperr.IO("booking.create", err)
	}
	s.Log.Info("booking created",
		zap.String("user_id", userID),
		zap.String("book_id", id),
		zap.Int("nights", b.Stay.Nights),
		zap.String("total", b.Stay.Total.StringFixed(2)))
	return b, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Booking, error) {
	if userID == "" {
		return nil, apperr.ErrMissingUser
	}
	bs, err := s.Bookings.List(ctx, userID)
	if err != nil {
		return nil, apperr.IO("booking.list", err)
	}
	return bs, nil
}

// Cancel moves one of the user's bookings to Cancelled.
func (s *Service) Cancel(ctx context.Context, userID, bookID string) (Booking, error) {
	if userID == "" {
		return Booking{}, apperr.ErrMissingUser
	}
	bs, err := s.Bookings.List(ctx, userID)
	if err != nil {
		return Booking{}, apperr.IO("booking.cancel", err)
	}
	for _, b := range bs {
		if b.BookID != bookID {
			continue
		}
		if !CanTransition(b.Status, StatusCancelled) {
			return Booking{}, apperr.ErrIllegalTransition
		}
		if err := s.Bookings.SetStatus(ctx, userID, bookID, StatusCancelled); err != nil {
			return Booking{}, apperr.IO("booking.cancel", err)
		}
		b.Status = StatusCancelled
		s.Log.Info("booking cancelled", zap.String("user_id", userID), zap.String("book_id", bookID))
		return b, nil
	}
	return Booking{}, apperr.ErrBookingNotFound
}

// CalendarData flattens room quantities into one entry per room and day of year.
func (s *Service) CalendarData(ctx context.Context, year int) ([]RoomDay, error) {
	rooms, err := s.Rooms.Rooms(ctx, "")
	if err != nil {
		return nil, apperr.IO("booking.calendar", err)
	}
	prefix := strconv.Itoa(year) + "-"
	out := []RoomDay{}
	for _, r := range rooms {
		for day, qty := range r.Quantities {
			if len(day) != len(DateLayout) || day[:5] != prefix {
				continue
			}
			t, err := time.Parse(DateLayout, day)
			if err != nil {
				continue
			}
			name := r.Name
			if name == "" {
				name = "Unknown"
			}
			out = append(out, RoomDay{Category: r.Category, RoomName: name, Date: day, Quantity: qty, Month: int(t.Month()) - 1})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].RoomName < out[j].RoomName
	})
	return out, nil
}

// ListRooms returns rooms naturally ordered by room id.
func (s *Service) ListRooms(ctx context.Context, category string) ([]Room, error) {
	rooms, err := s.Rooms.Rooms(ctx, category)
	if err != nil {
		return nil, apperr.IO("booking.rooms", err)
	}
	sort.SliceStable(rooms, func(i, j int) bool { return naturalLess(rooms[i].RoomID, rooms[j].RoomID) })
	return rooms, nil
}
