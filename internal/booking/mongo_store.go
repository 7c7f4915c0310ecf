package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-pethotel-pos/internal/apperr"
	"github.com/ariefcatur/go-pethotel-pos/internal/pricing"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	RoomsCollection    = "rooms"
	BookingsCollection = "bookings"
)

type roomDoc struct {
	RoomID      string   `bson:"room_id"`
	Category    string   `bson:"category"`
	Name        string   `bson:"room_name"`
	Description string   `bson:"room_description,omitempty"`
	Price       any      `bson:"room_price"`
	Size        string   `bson:"room_size,omitempty"`
	Image       string   `bson:"room_image,omitempty"`
	Quantity    []bson.M `bson:"room_quantity"`
}

// dayLayouts are the date spellings found in room_quantity keys.
var dayLayouts = []string{DateLayout, time.RFC3339, "2006/01/02", "January 2, 2006", "Jan 2, 2006", "1/2/2006"}

func normalizeDay(s string) (string, bool) {
	for _, l := range dayLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.Format(DateLayout), true
		}
	}
	return "", false
}

func (d roomDoc) toRoom() Room {
	r := Room{
		RoomID:      d.RoomID,
		Category:    d.Category,
		Name:        d.Name,
		Description: d.Description,
		Price:       pricing.ParseAmount(d.Price),
		Size:        d.Size,
		Image:       d.Image,
		Quantities:  map[string]int{},
	}
	// room_quantity is a list of per-month maps: [{"2024-05-01": 3, ...}, ...]
	for _, month := range d.Quantity {
		for day, qty := range month {
			if k, ok := normalizeDay(day); ok {
				r.Quantities[k] = pricing.ParseQuantity(qty)
			}
		}
	}
	return r
}

type RoomMongoStore struct {
	coll *mongo.Collection
}

func NewRoomMongoStore(db *mongo.Database) *RoomMongoStore {
	return &RoomMongoStore{coll: db.Collection(RoomsCollection)}
}

func (s *RoomMongoStore) Rooms(ctx context.Context, category string) ([]Room, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	cur, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	var docs []roomDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}
	out := make([]Room, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toRoom())
	}
	return out, nil
}

func (s *RoomMongoStore) FindRoom(ctx context.Context, category, name string) (Room, error) {
	var d roomDoc
	err := s.coll.FindOne(ctx, bson.M{"category": category, "room_name": name}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Room{}, apperr.ErrRoomNotFound
		}
		return Room{}, fmt.Errorf("failed to find room: %w", err)
	}
	return d.toRoom(), nil
}

// Put writes a room keyed by its room id. Room management screens own this data;
// it is used for seeding.
func (s *RoomMongoStore) Put(ctx context.Context, r Room) error {
	byMonth := map[string]bson.M{}
	var order []string
	for day, qty := range r.Quantities {
		if len(day) < 7 {
			continue
		}
		month := day[:7]
		if _, ok := byMonth[month]; !ok {
			byMonth[month] = bson.M{}
			order = append(order, month)
		}
		byMonth[month][day] = qty
	}
	months := make([]bson.M, 0, len(order))
	for _, m := range order {
		months = append(months, byMonth[m])
	}
	doc := roomDoc{
		RoomID: r.RoomID, Category: r.Category, Name: r.Name, Description: r.Description,
		Price: r.Price.String(), Size: r.Size, Image: r.Image, Quantity: months,
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"room_id": r.RoomID, "category": r.Category}, doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to put room: %w", err)
	}
	return nil
}

type bookingDoc struct {
	BookID          string    `bson:"book_id"`
	BookDate        time.Time `bson:"book_date"`
	RoomName        string    `bson:"room_name"`
	CheckIn         string    `bson:"checkin_date"`
	CheckOut        string    `bson:"checkout_date"`
	OwnerName       string    `bson:"owner_name"`
	PetName         string    `bson:"pet_name"`
	Email           string    `bson:"email"`
	Contact         string    `bson:"contact"`
	Category        string    `bson:"category"`
	FoodCategory    string    `bson:"food_category"`
	VaccinationFile string    `bson:"vaccination_image"`
	Price           string    `bson:"price"`
	Status          string    `bson:"status"`
	Nights          int       `bson:"nights"`
	ServiceTax      string    `bson:"serviceTax"`
	SalesTax        string    `bson:"salesTax"`
	Subtotal        string    `bson:"subtotal"`
	TotalPrice      string    `bson:"totalPrice"`
}

func toBookingDoc(b Booking) bookingDoc {
	return bookingDoc{
		BookID: b.BookID, BookDate: b.BookDate, RoomName: b.RoomName,
		CheckIn: b.CheckIn, CheckOut: b.CheckOut, OwnerName: b.OwnerName, PetName: b.PetName,
		Email: b.Email, Contact: b.Contact, Category: b.Category, FoodCategory: b.FoodCategory,
		VaccinationFile: b.VaccinationFile, Price: b.RoomPrice.StringFixed(2), Status: string(b.Status),
		Nights:     b.Stay.Nights,
		ServiceTax: b.Stay.ServiceTax.StringFixed(2),
		SalesTax:   b.Stay.SalesTax.StringFixed(2),
		Subtotal:   b.Stay.Base.StringFixed(2),
		TotalPrice: b.Stay.Total.StringFixed(2),
	}
}

func amount(s string) decimal.Decimal { return pricing.ParseAmount(s) }

func (d bookingDoc) toBooking() Booking {
	return Booking{
		BookID: d.BookID, BookDate: d.BookDate, RoomName: d.RoomName,
		CheckIn: d.CheckIn, CheckOut: d.CheckOut, OwnerName: d.OwnerName, PetName: d.PetName,
		Email: d.Email, Contact: d.Contact, Category: d.Category, FoodCategory: d.FoodCategory,
		VaccinationFile: d.VaccinationFile, RoomPrice: amount(d.Price), Status: Status(d.Status),
		Stay: pricing.Stay{
			Nights:     d.Nights,
			Base:       amount(d.Subtotal),
			ServiceTax: amount(d.ServiceTax),
			SalesTax:   amount(d.SalesTax),
			Total:      amount(d.TotalPrice),
		},
	}
}

type BookingMongoStore struct {
	coll *mongo.Collection
}

func NewBookingMongoStore(db *mongo.Database) *BookingMongoStore {
	return &BookingMongoStore{coll: db.Collection(BookingsCollection)}
}

func (s *BookingMongoStore) Append(ctx context.Context, userID string, b Booking) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$push": bson.M{"bookings": toBookingDoc(b)}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to append booking: %w", err)
	}
	return nil
}

func (s *BookingMongoStore) List(ctx context.Context, userID string) ([]Booking, error) {
	var doc struct {
		Bookings []bookingDoc `bson:"bookings"`
	}
	err := s.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	out := make([]Booking, 0, len(doc.Bookings))
	for _, d := range doc.Bookings {
		out = append(out, d.toBooking())
	}
	return out, nil
}

func (s *BookingMongoStore) SetStatus(ctx context.Context, userID, bookID string, status Status) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": userID, "bookings.book_id": bookID},
		bson.M{"$set": bson.M{"bookings.$.status": string(status)}})
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.ErrBookingNotFound
	}
	return nil
}
