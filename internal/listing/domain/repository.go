package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListingRepository persists listings and runs listing searches.
type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Listing, error)
	// FindByQuery returns one page of matches and the total match count ignoring the window.
	FindByQuery(ctx context.Context, query ListingQuery) ([]*Listing, int64, error)
	// SearchCityGroups autocompletes text against city and returns distinct (admin, city) pairs.
	SearchCityGroups(ctx context.Context, text string) ([]CityAdmin, error)
	// SearchAddresses autocompletes text against address, returning at most limit listings.
	SearchAddresses(ctx context.Context, text string, limit int64) ([]*Listing, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*User, error)
	// AppendListing pushes listingID onto the user's listings.
	AppendListing(ctx context.Context, userID string, listingID primitive.ObjectID) error
}

type BookingRepository interface {
	// FindByIDs pages through the bookings whose ids are in ids.
	FindByIDs(ctx context.Context, ids []primitive.ObjectID, skip, limit int64) ([]*Booking, int64, error)
}
