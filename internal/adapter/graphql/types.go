package graphql

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/listing/usecase"
	"github.com/graph-gophers/graphql-go"
)

type listingResolver struct {
	root *Resolver
	view *domain.ListingView
}

func (r *listingResolver) ID() graphql.ID {
	return graphql.ID(r.view.Listing.ID.Hex())
}

func (r *listingResolver) Title() string { return r.view.Listing.Title }
func (r *listingResolver) Description() string { return r.view.Listing.Description }
func (r *listingResolver) Image() string { return r.view.Listing.Image }
func (r *listingResolver) Type() string { return string(r.view.Listing.Type) }
func (r *listingResolver) Address() string { return r.view.Listing.Address }
func (r *listingResolver) Country() string { return r.view.Listing.Country }
func (r *listingResolver) Admin() string { return r.view.Listing.Admin }
func (r *listingResolver) City() string { return r.view.Listing.City }
func (r *listingResolver) Price() int32 { return int32(r.view.Listing.Price) }
func (r *listingResolver) NumOfGuests() int32 { return int32(r.view.Listing.NumOfGuests) }

func (r *listingResolver) Host(ctx context.Context) (*userResolver, error) {
	host, err := r.root.listings.ListingHost(ctx, r.view.Listing)
	if err != nil {
		return nil, toGraphQLError(err)
	}
	return &userResolver{user: host}, nil
}

func (r *listingResolver) BookingsIndex() (string, error) {
	out, err := usecase.BookingsIndexJSON(r.view.Listing.BookingsIndex)
	if err != nil {
		return "", toGraphQLError(err)
	}
	return out, nil
}

func (r *listingResolver) Bookings(ctx context.Context, args struct {
	Limit int32
	Page  int32
}) (*bookingsResolver, error) {
	page, err := r.root.listings.ListingBookings(ctx, r.view, int(args.Limit), int(args.Page))
	if err != nil {
		return nil, toGraphQLError(err)
	}
	if page == nil {
		return nil, nil
	}
	return &bookingsResolver{root: r.root, page: page}, nil
}

type listingsResolver struct {
	root *Resolver
	page *domain.ListingsPage
}

func (r *listingsResolver) Region() *string { return r.page.Region }
func (r *listingsResolver) Total() int32 { return int32(r.page.Total) }

func (r *listingsResolver) Result() []*listingResolver {
	out := make([]*listingResolver, 0, len(r.page.Result))
	for _, l := range r.page.Result {
		out = append(out, &listingResolver{root: r.root, view: &domain.ListingView{Listing: l}})
	}
	return out
}

type userResolver struct {
	user *domain.User
}

func (r *userResolver) ID() graphql.ID { return graphql.ID(r.user.ID) }
func (r *userResolver) Name() string { return r.user.Name }
func (r *userResolver) Avatar() string { return r.user.Avatar }
func (r *userResolver) Contact() string { return r.user.Contact }

type bookingsResolver struct {
	root *Resolver
	page *domain.BookingsPage
}

func (r *bookingsResolver) Total() int32 { return int32(r.page.Total) }

func (r *bookingsResolver) Result() []*bookingResolver {
	out := make([]*bookingResolver, 0, len(r.page.Result))
	for _, b := range r.page.Result {
		out = append(out, &bookingResolver{root: r.root, booking: b})
	}
	return out
}

type bookingResolver struct {
	root    *Resolver
	booking *domain.Booking
}

func (r *bookingResolver) ID() graphql.ID { return graphql.ID(r.booking.ID.Hex()) }
func (r *bookingResolver) CheckIn() string { return r.booking.CheckIn.UTC().Format(time.RFC3339) }
func (r *bookingResolver) CheckOut() string { return r.booking.CheckOut.UTC().Format(time.RFC3339) }

func (r *bookingResolver) Tenant(ctx context.Context) (*userResolver, error) {
	tenant, err := r.root.listings.BookingTenant(ctx, r.booking)
	if err != nil {
		return nil, toGraphQLError(err)
	}
	return &userResolver{user: tenant}, nil
}

type cityAdminResolver struct {
	group domain.CityAdmin
}

func (r *cityAdminResolver) Admin() string { return r.group.Admin }
func (r *cityAdminResolver) City() string { return r.group.City }

type cityAndAdminResultsResolver struct {
	page *domain.CityAdminPage
}

func (r *cityAndAdminResultsResolver) Total() int32 { return int32(r.page.Total) }

func (r *cityAndAdminResultsResolver) Result() []*cityAdminResolver {
	out := make([]*cityAdminResolver, 0, len(r.page.Result))
	for _, g := range r.page.Result {
		out = append(out, &cityAdminResolver{group: g})
	}
	return out
}

// autoCompleteResultResolver resolves the AutoCompleteResult union from the explicit kind.
type autoCompleteResultResolver struct {
	root   *Resolver
	result *domain.AutoCompleteResult
}

func (r *autoCompleteResultResolver) ToListings() (*listingsResolver, bool) {
	if r.result.Kind != domain.AutoCompleteListings || r.result.Listings == nil {
		return nil, false
	}
	return &listingsResolver{root: r.root, page: r.result.Listings}, true
}

func (r *autoCompleteResultResolver) ToCityAndAdminResults() (*cityAndAdminResultsResolver, bool) {
	if r.result.Kind != domain.AutoCompleteCityAdmin || r.result.CityAdmin == nil {
		return nil, false
	}
	return &cityAndAdminResultsResolver{page: r.result.CityAdmin}, true
}
