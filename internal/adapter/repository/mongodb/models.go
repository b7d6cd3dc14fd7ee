package mongodb

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/listing/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type listingDocument struct {
	ID            primitive.ObjectID   `bson:"_id"`
	Title         string               `bson:"title"`
	Description   string               `bson:"description"`
	Image         string               `bson:"image"`
	Host          string               `bson:"host"`
	Type          string               `bson:"type"`
	Address       string               `bson:"address"`
	Country       string               `bson:"country"`
	Admin         string               `bson:"admin"`
	City          string               `bson:"city"`
	Bookings      []primitive.ObjectID `bson:"bookings"`
	BookingsIndex domain.BookingsIndex `bson:"bookingsIndex"`
	Price         int                  `bson:"price"`
	NumOfGuests   int                  `bson:"numOfGuests"`
}

// Users are keyed by the identity provider's id, so _id is a string.
type userDocument struct {
	ID       string               `bson:"_id"`
	Name     string               `bson:"name"`
	Avatar   string               `bson:"avatar"`
	Contact  string               `bson:"contact"`
	Listings []primitive.ObjectID `bson:"listings"`
}

type bookingDocument struct {
	ID       primitive.ObjectID `bson:"_id"`
	Listing  primitive.ObjectID `bson:"listing"`
	Tenant   string             `bson:"tenant"`
	CheckIn  time.Time          `bson:"checkIn"`
	CheckOut time.Time          `bson:"checkOut"`
}

// cityGroupDocument is one row of the $group stage keyed by {admin, city}.
type cityGroupDocument struct {
	ID struct {
		Admin string `bson:"admin"`
		City  string `bson:"city"`
	} `bson:"_id"`
}

func fromDomainListing(l *domain.Listing) *listingDocument {
	bookings := l.Bookings
	if bookings == nil {
		bookings = []primitive.ObjectID{}
	}
	index := l.BookingsIndex
	if index == nil {
		index = domain.BookingsIndex{}
	}
	return &listingDocument{
		ID:            l.ID,
		Title:         l.Title,
		Description:   l.Description,
		Image:         l.Image,
		Host:          l.Host,
		Type:          string(l.Type),
		Address:       l.Address,
		Country:       l.Country,
		Admin:         l.Admin,
		City:          l.City,
		Bookings:      bookings,
		BookingsIndex: index,
		Price:         l.Price,
		NumOfGuests:   l.NumOfGuests,
	}
}

func (d *listingDocument) toDomain() *domain.Listing {
	return &domain.Listing{
		ID:            d.ID,
		Title:         d.Title,
		Description:   d.Description,
		Image:         d.Image,
		Host:          d.Host,
		Type:          domain.ListingType(d.Type),
		Address:       d.Address,
		Country:       d.Country,
		Admin:         d.Admin,
		City:          d.City,
		Bookings:      d.Bookings,
		BookingsIndex: d.BookingsIndex,
		Price:         d.Price,
		NumOfGuests:   d.NumOfGuests,
	}
}

func toDomainListings(docs []*listingDocument) []*domain.Listing {
	listings := make([]*domain.Listing, 0, len(docs))
	for _, doc := range docs {
		listings = append(listings, doc.toDomain())
	}
	return listings
}

func (d *userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:       d.ID,
		Name:     d.Name,
		Avatar:   d.Avatar,
		Contact:  d.Contact,
		Listings: d.Listings,
	}
}

func (d *bookingDocument) toDomain() *domain.Booking {
	return &domain.Booking{
		ID:       d.ID,
		Listing:  d.Listing,
		Tenant:   d.Tenant,
		CheckIn:  d.CheckIn,
		CheckOut: d.CheckOut,
	}
}
