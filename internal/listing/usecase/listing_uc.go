package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/platform/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// SubjectListingCreated is published after a listing has been stored and indexed under its host.
	SubjectListingCreated = "listing.created"

	addressSuggestionLimit = 5
)

var tracer = otel.Tracer("rental-listing-service/usecase")

// ListingCreatedEvent is the payload of SubjectListingCreated.
type ListingCreatedEvent struct {
	ListingID string    `json:"listing_id"`
	HostID    string    `json:"host_id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Country   string    `json:"country"`
	Admin     string    `json:"admin"`
	City      string    `json:"city"`
	Price     int       `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

// ListingUsecase implements the listing queries, the hostListing mutation and the
// Listing field lookups.
type ListingUsecase struct {
	listings  domain.ListingRepository
	users     domain.UserRepository
	bookings  domain.BookingRepository
	geocoder  Geocoder
	storage   ImageStorage
	publisher EventPublisher
	mailer    Mailer
	metrics   *metrics.MetricsManager
	logger    *logger.Logger
}

// NewListingUsecase wires the usecase. publisher, mailer and metricsManager may be nil.
func NewListingUsecase(
	listings domain.ListingRepository,
	users domain.UserRepository,
	bookings domain.BookingRepository,
	geocoder Geocoder,
	storage ImageStorage,
	publisher EventPublisher,
	mailer Mailer,
	metricsManager *metrics.MetricsManager,
	log *logger.Logger,
) *ListingUsecase {
	return &ListingUsecase{
		listings:  listings,
		users:     users,
		bookings:  bookings,
		geocoder:  geocoder,
		storage:   storage,
		publisher: publisher,
		mailer:    mailer,
		metrics:   metricsManager,
		logger:    log.Named("ListingUsecase"),
	}
}

// AutoComplete first looks for distinct (admin, city) groups matching text. Only when none
// match does it fall back to an address search capped at five listings.
func (uc *ListingUsecase) AutoComplete(ctx context.Context, text string) (*domain.AutoCompleteResult, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.AutoComplete", trace.WithAttributes(attribute.String("autocomplete.text", text)))
	defer span.End()

	groups, err := uc.listings.SearchCityGroups(ctx, text)
	if err != nil {
		uc.logger.Error("City group search failed", zap.String("text", text), zap.Error(err))
		return nil, fail(span, fmt.Errorf("%w: failed to search (autocomplete) listings: %v", domain.ErrUpstream, err))
	}
	if len(groups) > 0 {
		span.SetAttributes(attribute.String("autocomplete.kind", domain.AutoCompleteCityAdmin.String()), attribute.Int("autocomplete.total", len(groups)))
		return &domain.AutoCompleteResult{
			Kind:      domain.AutoCompleteCityAdmin,
			CityAdmin: &domain.CityAdminPage{Total: int64(len(groups)), Result: groups},
		}, nil
	}

	found, err := uc.listings.SearchAddresses(ctx, text, addressSuggestionLimit)
	if err != nil {
		uc.logger.Error("Address search failed", zap.String("text", text), zap.Error(err))
		return nil, fail(span, fmt.Errorf("%w: failed to search (autocomplete) listings: %v", domain.ErrUpstream, err))
	}
	if found == nil {
		found = []*domain.Listing{}
	}
	span.SetAttributes(attribute.String("autocomplete.kind", domain.AutoCompleteListings.String()), attribute.Int("autocomplete.total", len(found)))
	return &domain.AutoCompleteResult{
		Kind:     domain.AutoCompleteListings,
		Listings: &domain.ListingsPage{Total: int64(len(found)), Result: found},
	}, nil
}

// GetListing fetches one listing. The view is authorized only when viewer is the listing's host.
func (uc *ListingUsecase) GetListing(ctx context.Context, id string, viewer *domain.Viewer) (*domain.ListingView, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.GetListing", trace.WithAttributes(attribute.String("listing.id", id)))
	defer span.End()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fail(span, domain.NewValidationError("id", "invalid listing id %q", id))
	}

	listing, err := uc.listings.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.logger.Debug("Listing not found", zap.String("listing_id", id))
			return nil, fail(span, fmt.Errorf("%w: listing can't be found", domain.ErrNotFound))
		}
		uc.logger.Error("Failed to fetch listing", zap.String("listing_id", id), zap.Error(err))
		return nil, fail(span, fmt.Errorf("%w: failed to query listing: %v", domain.ErrUpstream, err))
	}

	authorized := viewer != nil && viewer.ID != "" && viewer.ID == listing.Host
	span.SetAttributes(attribute.Bool("listing.authorized", authorized))
	return &domain.ListingView{Listing: listing, Authorized: authorized}, nil
}

// SearchListingsInput carries the arguments of the listings query.
type SearchListingsInput struct {
	Location *string
	Filter   domain.ListingsFilter
	Limit    int
	Page     int
}

// SearchListings pages through listings, optionally restricted to a geocoded location.
// Country is mandatory once a location is given; admin and city narrow the match when resolved.
func (uc *ListingUsecase) SearchListings(ctx context.Context, in SearchListingsInput) (*domain.ListingsPage, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.SearchListings",
		trace.WithAttributes(
			attribute.String("listings.filter", string(in.Filter)),
			attribute.Int("listings.limit", in.Limit),
			attribute.Int("listings.page", in.Page),
		))
	defer span.End()

	page := domain.PageRequest{Limit: in.Limit, Page: in.Page}
	if err := page.Validate(); err != nil {
		return nil, fail(span, err)
	}
	if !in.Filter.IsValid() {
		return nil, fail(span, domain.NewValidationError("filter", "unknown listings filter %q", in.Filter))
	}

	query := domain.ListingQuery{
		Sort:  in.Filter,
		Skip:  page.Offset(),
		Limit: int64(page.Limit),
	}

	var region *string
	if in.Location != nil && *in.Location != "" {
		loc, err := uc.geocoder.Geocode(ctx, *in.Location)
		if err != nil {
			uc.logger.Error("Failed to geocode search location", zap.String("location", *in.Location), zap.Error(err))
			return nil, fail(span, domain.Upstream("geocode location", err))
		}
		if loc.Country == "" {
			return nil, fail(span, domain.NewValidationError("location", "no country found"))
		}
		query.Country = loc.Country
		query.Admin = loc.Admin
		query.City = loc.City

		label := domain.RegionLabel(*loc)
		region = &label
		span.SetAttributes(attribute.String("listings.region", label))
	}

	result, total, err := uc.listings.FindByQuery(ctx, query)
	if err != nil {
		uc.logger.Error("Failed to query listings", zap.Any("query", query), zap.Error(err))
		return nil, fail(span, fmt.Errorf("%w: failed to query listings: %v", domain.ErrUpstream, err))
	}
	if result == nil {
		result = []*domain.Listing{}
	}

	span.SetAttributes(attribute.Int64("listings.total", total))
	return &domain.ListingsPage{Region: region, Total: total, Result: result}, nil
}

// HostListing creates a listing owned by viewer. Steps run in order and the first failure
// aborts the rest. A failed insert removes the uploaded image; a failed host update removes
// the inserted listing and the image.
func (uc *ListingUsecase) HostListing(ctx context.Context, input domain.HostListingInput, viewer *domain.Viewer) (*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.HostListing", trace.WithAttributes(attribute.String("listing.title", input.Title)))
	defer span.End()

	if err := domain.ValidateHostListingInput(input); err != nil {
		uc.logger.Debug("Rejected hostListing input", zap.Error(err))
		return nil, fail(span, err)
	}

	if viewer == nil || viewer.ID == "" {
		return nil, fail(span, domain.ErrUnauthenticated)
	}
	log := uc.logger.With(zap.String("host_id", viewer.ID))
	span.SetAttributes(attribute.String("listing.host", viewer.ID))

	loc, err := uc.geocoder.Geocode(ctx, input.Address)
	if err != nil {
		log.Error("Failed to geocode listing address", zap.String("address", input.Address), zap.Error(err))
		return nil, fail(span, domain.Upstream("geocode address", err))
	}
	if loc.Country == "" || loc.Admin == "" || loc.City == "" {
		log.Info("Listing address did not fully resolve",
			zap.String("address", input.Address),
			zap.String("country", loc.Country),
			zap.String("admin", loc.Admin),
			zap.String("city", loc.City))
		return nil, fail(span, domain.NewValidationError("address", "invalid address input"))
	}

	imageURL, err := uc.storage.UploadImage(ctx, input.Image)
	if err != nil {
		log.Error("Failed to upload listing image", zap.Error(err))
		return nil, fail(span, domain.Upstream("upload image", err))
	}

	listing := &domain.Listing{
		ID:            primitive.NewObjectID(),
		Title:         input.Title,
		Description:   input.Description,
		Image:         imageURL,
		Host:          viewer.ID,
		Type:          input.Type,
		Address:       input.Address,
		Country:       loc.Country,
		Admin:         loc.Admin,
		City:          loc.City,
		Bookings:      []primitive.ObjectID{},
		BookingsIndex: domain.BookingsIndex{},
		Price:         input.Price,
		NumOfGuests:   input.NumOfGuests,
	}

	if err := uc.listings.Create(ctx, listing); err != nil {
		log.Error("Failed to insert listing", zap.Error(err))
		uc.discardImage(ctx, imageURL)
		return nil, fail(span, domain.Upstream("insert listing", err))
	}

	if err := uc.users.AppendListing(ctx, viewer.ID, listing.ID); err != nil {
		log.Error("Failed to index listing under host", zap.String("listing_id", listing.ID.Hex()), zap.Error(err))
		if delErr := uc.listings.Delete(ctx, listing.ID); delErr != nil {
			log.Error("Failed to remove orphaned listing", zap.String("listing_id", listing.ID.Hex()), zap.Error(delErr))
		}
		uc.discardImage(ctx, imageURL)
		return nil, fail(span, domain.Upstream("append listing to host", err))
	}

	log.Info("Listing created", zap.String("listing_id", listing.ID.Hex()), zap.String("city", listing.City))
	span.SetAttributes(attribute.String("listing.id", listing.ID.Hex()))
	uc.metrics.IncListingsCreated()
	uc.announce(ctx, listing)
	return listing, nil
}

// ListingHost resolves the user that owns listing.
func (uc *ListingUsecase) ListingHost(ctx context.Context, listing *domain.Listing) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.ListingHost", trace.WithAttributes(attribute.String("listing.host", listing.Host)))
	defer span.End()

	host, err := uc.users.FindByID(ctx, listing.Host)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.logger.Warn("Listing references a missing host",
				zap.String("listing_id", listing.ID.Hex()), zap.String("host_id", listing.Host))
			return nil, fail(span, fmt.Errorf("%w: host can't be found", domain.ErrNotFound))
		}
		return nil, fail(span, fmt.Errorf("%w: failed to query host: %v", domain.ErrUpstream, err))
	}
	return host, nil
}

// BookingTenant resolves the user who made booking.
func (uc *ListingUsecase) BookingTenant(ctx context.Context, booking *domain.Booking) (*domain.User, error) {
	tenant, err := uc.users.FindByID(ctx, booking.Tenant)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.logger.Warn("Booking references a missing tenant",
				zap.String("booking_id", booking.ID.Hex()), zap.String("tenant_id", booking.Tenant))
			return nil, fmt.Errorf("%w: tenant can't be found", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to query tenant: %v", domain.ErrUpstream, err)
	}
	return tenant, nil
}

// ListingBookings pages through the bookings of an authorized view. It returns nil, nil
// when the view is not authorized, whether or not bookings exist.
func (uc *ListingUsecase) ListingBookings(ctx context.Context, view *domain.ListingView, limit, page int) (*domain.BookingsPage, error) {
	if view == nil || view.Listing == nil || !view.Authorized {
		return nil, nil
	}

	ctx, span := tracer.Start(ctx, "ListingUsecase.ListingBookings",
		trace.WithAttributes(attribute.String("listing.id", view.Listing.ID.Hex())))
	defer span.End()

	req := domain.PageRequest{Limit: limit, Page: page}
	if err := req.Validate(); err != nil {
		return nil, fail(span, err)
	}

	result, total, err := uc.bookings.FindByIDs(ctx, view.Listing.Bookings, req.Offset(), int64(req.Limit))
	if err != nil {
		uc.logger.Error("Failed to query listing bookings", zap.String("listing_id", view.Listing.ID.Hex()), zap.Error(err))
		return nil, fail(span, fmt.Errorf("%w: failed to query listing bookings: %v", domain.ErrUpstream, err))
	}
	if result == nil {
		result = []*domain.Booking{}
	}
	return &domain.BookingsPage{Total: total, Result: result}, nil
}

// BookingsIndexJSON serializes the availability index. A nil index renders as "{}".
func BookingsIndexJSON(index domain.BookingsIndex) (string, error) {
	if index == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(index)
	if err != nil {
		return "", fmt.Errorf("failed to serialize bookings index: %w", err)
	}
	return string(raw), nil
}

func (uc *ListingUsecase) discardImage(ctx context.Context, imageURL string) {
	if err := uc.storage.DeleteImage(ctx, imageURL); err != nil {
		uc.logger.Error("Failed to remove uploaded image", zap.String("image_url", imageURL), zap.Error(err))
	}
}

// announce runs the post-commit notifications. Their failures never fail the mutation.
func (uc *ListingUsecase) announce(ctx context.Context, listing *domain.Listing) {
	if uc.publisher != nil {
		event := ListingCreatedEvent{
			ListingID: listing.ID.Hex(),
			HostID:    listing.Host,
			Title:     listing.Title,
			Type:      string(listing.Type),
			Country:   listing.Country,
			Admin:     listing.Admin,
			City:      listing.City,
			Price:     listing.Price,
			CreatedAt: time.Now().UTC(),
		}
		if err := uc.publisher.Publish(ctx, SubjectListingCreated, event); err != nil {
			uc.logger.Warn("Failed to publish listing created event", zap.String("listing_id", event.ListingID), zap.Error(err))
		}
	}

	if uc.mailer == nil {
		return
	}
	host, err := uc.users.FindByID(ctx, listing.Host)
	if err != nil {
		uc.logger.Warn("Skipping listing created email, host lookup failed", zap.String("host_id", listing.Host), zap.Error(err))
		return
	}
	if host.Contact == "" {
		return
	}
	if err := uc.mailer.SendListingCreatedEmail(host.Contact, listing.Title); err != nil {
		uc.logger.Warn("Failed to send listing created email", zap.String("host_id", listing.Host), zap.Error(err))
	}
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
