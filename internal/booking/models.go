package booking

import (
	"time"

	"github.com/ariefcatur/go-pethotel-pos/internal/pricing"
	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// Form is what the customer submits from the booking page.
type Form struct {
	RoomName        string `json:"room_name"`
	CheckIn         string `json:"checkin_date"`
	CheckOut        string `json:"checkout_date"`
	OwnerName       string `json:"owner_name"`
	PetName         string `json:"pet_name"`
	Email           string `json:"email"`
	Contact         string `json:"contact"`
	Category        string `json:"category"`
	FoodCategory    string `json:"food_category"`
	VaccinationFile string `json:"vaccination_file"`
}

type Booking struct {
	BookID          string          `json:"book_id"`
	BookDate        time.Time       `json:"book_date"`
	RoomName        string          `json:"room_name"`
	CheckIn         string          `json:"checkin_date"`
	CheckOut        string          `json:"checkout_date"`
	OwnerName       string          `json:"owner_name"`
	PetName         string          `json:"pet_name"`
	Email           string          `json:"email"`
	Contact         string          `json:"contact"`
	Category        string          `json:"category"`
	FoodCategory    string          `json:"food_category"`
	VaccinationFile string          `json:"vaccination_image"`
	RoomPrice       decimal.Decimal `json:"price"`
	Stay            pricing.Stay    `json:"stay"`
	Status          Status          `json:"status"`
}

type Room struct {
	RoomID      string          `json:"room_id"`
	Category    string          `json:"category"`
	Name        string          `json:"room_name"`
	Description string          `json:"room_description,omitempty"`
	Price       decimal.Decimal `json:"room_price"`
	Size        string          `json:"room_size,omitempty"`
	Image       string          `json:"room_image,omitempty"`
	// Quantities maps a day (DateLayout) to the number of free rooms.
	Quantities map[string]int `json:"room_quantity"`
}

// RoomDay is one calendar cell: free rooms of one room type on one day.
type RoomDay struct {
	Category string `json:"category"`
	RoomName string `json:"room_name"`
	Date     string `json:"date"`
	Quantity int    `json:"quantity"`
	Month    int    `json:"month"` // 0-based, as the calendar widget expects
}

type Quote struct {
	pricing.Stay
	RoomPrice         decimal.Decimal `json:"room_price"`
	CheckInAvailable  bool            `json:"checkin_available"`
	CheckOutAvailable bool            `json:"checkout_available"`
	Message           string          `json:"message,omitempty"`
}
