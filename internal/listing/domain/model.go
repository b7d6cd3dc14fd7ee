package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ListingType string

const (
	ListingTypeApartment ListingType = "APARTMENT"
	ListingTypeHouse     ListingType = "HOUSE"
)

// IsValid reports whether t is one of the supported listing types.
func (t ListingType) IsValid() bool {
	switch t {
	case ListingTypeApartment, ListingTypeHouse:
		return true
	}
	return false
}

// BookingsIndex maps year -> month -> day -> booked. It is denormalized on the listing
// and only ever serialized as a whole.
type BookingsIndex map[string]BookingsIndexYear

type BookingsIndexYear map[string]BookingsIndexMonth

type BookingsIndexMonth map[string]bool

// Listing is a rentable property.
type Listing struct {
	ID            primitive.ObjectID
	Title         string
	Description   string
	Image         string
	Host          string
	Type          ListingType
	Address       string
	Country       string
	Admin         string
	City          string
	Bookings      []primitive.ObjectID
	BookingsIndex BookingsIndex
	Price         int
	NumOfGuests   int
}

// User is a marketplace account. Hosts own listings through Listings.
type User struct {
	ID       string
	Name     string
	Avatar   string
	Contact  string
	Listings []primitive.ObjectID
}

type Booking struct {
	ID       primitive.ObjectID
	Listing  primitive.ObjectID
	Tenant   string
	CheckIn  time.Time
	CheckOut time.Time
}

// Viewer is the caller identity resolved once per request.
type Viewer struct {
	ID string
}

// ListingView pairs a fetched listing with the caller's authorization over it.
// Authorized is never persisted.
type ListingView struct {
	Listing    *Listing
	Authorized bool
}

// Location is a geocoded address. Empty strings mean the component did not resolve.
type Location struct {
	Country string
	Admin   string
	City    string
}

// CityAdmin is one distinct (admin, city) group returned by autocomplete.
type CityAdmin struct {
	Admin string
	City  string
}

// ListingsPage is a paginated listing envelope. Region is nil when no location was searched.
type ListingsPage struct {
	Region *string
	Total  int64
	Result []*Listing
}

type CityAdminPage struct {
	Total  int64
	Result []CityAdmin
}

type BookingsPage struct {
	Total  int64
	Result []*Booking
}

type AutoCompleteKind int

const (
	AutoCompleteListings AutoCompleteKind = iota + 1
	AutoCompleteCityAdmin
)

func (k AutoCompleteKind) String() string {
	switch k {
	case AutoCompleteListings:
		return "Listings"
	case AutoCompleteCityAdmin:
		return "CityAndAdminResults"
	}
	return "Unknown"
}

// AutoCompleteResult is a tagged union: exactly the payload named by Kind is set.
type AutoCompleteResult struct {
	Kind      AutoCompleteKind
	Listings  *ListingsPage
	CityAdmin *CityAdminPage
}

// ListingsFilter selects the price ordering of a listings search. The zero value is unsorted.
type ListingsFilter string

const (
	ListingsFilterNone           ListingsFilter = ""
	ListingsFilterPriceLowToHigh ListingsFilter = "PRICE_LOW_TO_HIGH"
	ListingsFilterPriceHighToLow ListingsFilter = "PRICE_HIGH_TO_LOW"
)

func (f ListingsFilter) IsValid() bool {
	switch f {
	case ListingsFilterNone, ListingsFilterPriceLowToHigh, ListingsFilterPriceHighToLow:
		return true
	}
	return false
}

// ListingQuery is what the repository needs to run a listings search.
type ListingQuery struct {
	Country string
	Admin   string
	City    string
	Sort    ListingsFilter
	Skip    int64
	Limit   int64
}

// HostListingInput is the payload of the hostListing mutation.
// Field order matters: validation reports the first failing field in declaration order.
type HostListingInput struct {
	Title       string      `validate:"max=100"`
	Description string      `validate:"max=5000"`
	Type        ListingType `validate:"oneof=APARTMENT HOUSE"`
	Price       int         `validate:"gte=0"`
	Image       string
	Address     string
	NumOfGuests int
}
