package graphql

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/auth"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/listing/usecase"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/platform/metrics"
	"github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"
)

// ListingService is the usecase surface the graph resolvers call.
type ListingService interface {
	AutoComplete(ctx context.Context, text string) (*domain.AutoCompleteResult, error)
	GetListing(ctx context.Context, id string, viewer *domain.Viewer) (*domain.ListingView, error)
	SearchListings(ctx context.Context, in usecase.SearchListingsInput) (*domain.ListingsPage, error)
	HostListing(ctx context.Context, input domain.HostListingInput, viewer *domain.Viewer) (*domain.Listing, error)
	ListingHost(ctx context.Context, listing *domain.Listing) (*domain.User, error)
	ListingBookings(ctx context.Context, view *domain.ListingView, limit, page int) (*domain.BookingsPage, error)
	BookingTenant(ctx context.Context, booking *domain.Booking) (*domain.User, error)
}

// Resolver is the root resolver for both Query and Mutation.
type Resolver struct {
	listings ListingService
	metrics  *metrics.MetricsManager
	logger   *logger.Logger
}

func NewResolver(listings ListingService, metricsManager *metrics.MetricsManager, log *logger.Logger) *Resolver {
	return &Resolver{
		listings: listings,
		metrics:  metricsManager,
		logger:   log.Named("GraphResolver"),
	}
}

// observe records the outcome of a root operation and converts err for the response.
func (r *Resolver) observe(operation string, started time.Time, err error) error {
	if err == nil {
		r.metrics.ObserveOperation(operation, started, "")
		return nil
	}

	code := errorCode(err)
	r.metrics.ObserveOperation(operation, started, code)
	if code == CodeInternal {
		r.logger.Error("Graph operation failed", zap.String("operation", operation), zap.Error(err))
	} else {
		r.logger.Debug("Graph operation rejected", zap.String("operation", operation), zap.String("code", code), zap.Error(err))
	}
	return toGraphQLError(err)
}

func (r *Resolver) AutoCompleteOptions(ctx context.Context, args struct{ Text string }) (*autoCompleteResultResolver, error) {
	started := time.Now()
	result, err := r.listings.AutoComplete(ctx, args.Text)
	if err != nil {
		return nil, r.observe("autoCompleteOptions", started, err)
	}
	_ = r.observe("autoCompleteOptions", started, nil)
	return &autoCompleteResultResolver{root: r, result: result}, nil
}

func (r *Resolver) Listing(ctx context.Context, args struct{ ID graphql.ID }) (*listingResolver, error) {
	started := time.Now()
	view, err := r.listings.GetListing(ctx, string(args.ID), auth.ViewerFromContext(ctx))
	if err != nil {
		return nil, r.observe("listing", started, err)
	}
	_ = r.observe("listing", started, nil)
	return &listingResolver{root: r, view: view}, nil
}

type listingsArgs struct {
	Location *string
	Filter   *string
	Limit    int32
	Page     int32
}

func (r *Resolver) Listings(ctx context.Context, args listingsArgs) (*listingsResolver, error) {
	started := time.Now()
	in := usecase.SearchListingsInput{
		Location: args.Location,
		Limit:    int(args.Limit),
		Page:     int(args.Page),
	}
	if args.Filter != nil {
		in.Filter = domain.ListingsFilter(*args.Filter)
	}

	page, err := r.listings.SearchListings(ctx, in)
	if err != nil {
		return nil, r.observe("listings", started, err)
	}
	_ = r.observe("listings", started, nil)
	return &listingsResolver{root: r, page: page}, nil
}

type hostListingInput struct {
	Title       string
	Description string
	Image       string
	Type        string
	Address     string
	Price       int32
	NumOfGuests int32
}

func (r *Resolver) HostListing(ctx context.Context, args struct{ Input hostListingInput }) (*listingResolver, error) {
	started := time.Now()
	in := domain.HostListingInput{
		Title:       args.Input.Title,
		Description: args.Input.Description,
		Type:        domain.ListingType(args.Input.Type),
		Price:       int(args.Input.Price),
		Image:       args.Input.Image,
		Address:     args.Input.Address,
		NumOfGuests: int(args.Input.NumOfGuests),
	}

	listing, err := r.listings.HostListing(ctx, in, auth.ViewerFromContext(ctx))
	if err != nil {
		return nil, r.observe("hostListing", started, err)
	}
	_ = r.observe("hostListing", started, nil)
	return &listingResolver{root: r, view: &domain.ListingView{Listing: listing}}, nil
}
