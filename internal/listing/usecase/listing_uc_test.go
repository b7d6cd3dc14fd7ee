package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockListingRepository struct{ mock.Mock }

func (m *MockListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}
func (m *MockListingRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockListingRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}
func (m *MockListingRepository) FindByQuery(ctx context.Context, query domain.ListingQuery) ([]*domain.Listing, int64, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.Listing), args.Get(1).(int64), args.Error(2)
}
func (m *MockListingRepository) SearchCityGroups(ctx context.Context, text string) ([]domain.CityAdmin, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CityAdmin), args.Error(1)
}
func (m *MockListingRepository) SearchAddresses(ctx context.Context, text string, limit int64) ([]*domain.Listing, error) {
	args := m.Called(ctx, text, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepository) AppendListing(ctx context.Context, userID string, listingID primitive.ObjectID) error {
	args := m.Called(ctx, userID, listingID)
	return args.Error(0)
}

type MockBookingRepository struct{ mock.Mock }

func (m *MockBookingRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID, skip, limit int64) ([]*domain.Booking, int64, error) {
	args := m.Called(ctx, ids, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.Booking), args.Get(1).(int64), args.Error(2)
}

type MockGeocoder struct{ mock.Mock }

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (*domain.Location, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Location), args.Error(1)
}

type MockImageStorage struct{ mock.Mock }

func (m *MockImageStorage) UploadImage(ctx context.Context, image string) (string, error) {
	args := m.Called(ctx, image)
	return args.String(0), args.Error(1)
}
func (m *MockImageStorage) DeleteImage(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type MockMailer struct{ mock.Mock }

func (m *MockMailer) SendListingCreatedEmail(toEmail, listingTitle string) error {
	args := m.Called(toEmail, listingTitle)
	return args.Error(0)
}

type fixture struct {
	listings  *MockListingRepository
	users     *MockUserRepository
	bookings  *MockBookingRepository
	geocoder  *MockGeocoder
	storage   *MockImageStorage
	publisher *MockPublisher
	mailer    *MockMailer
	uc        *ListingUsecase
}

func newFixture() *fixture {
	f := &fixture{
		listings:  new(MockListingRepository),
		users:     new(MockUserRepository),
		bookings:  new(MockBookingRepository),
		geocoder:  new(MockGeocoder),
		storage:   new(MockImageStorage),
		publisher: new(MockPublisher),
		mailer:    new(MockMailer),
	}
	f.uc = NewListingUsecase(f.listings, f.users, f.bookings, f.geocoder, f.storage, f.publisher, f.mailer, nil, logger.NewNop())
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.listings.AssertExpectations(t)
	f.users.AssertExpectations(t)
	f.bookings.AssertExpectations(t)
	f.geocoder.AssertExpectations(t)
	f.storage.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
	f.mailer.AssertExpectations(t)
}

func hostInput() domain.HostListingInput {
	return domain.HostListingInput{
		Title:       "Loft near the canal",
		Description: "Bright loft with two bedrooms.",
		Type:        domain.ListingTypeApartment,
		Price:       12000,
		Image:       "data:image/png;base64,iVBORw0KGgo=",
		Address:     "10 Rue de Rivoli, Paris",
		NumOfGuests: 3,
	}
}

var paris = &domain.Location{Country: "France", Admin: "Ile-de-France", City: "Paris"}

func TestAutoComplete_CityGroupsSkipAddressSearch(t *testing.T) {
	f := newFixture()
	groups := []domain.CityAdmin{{Admin: "Ile-de-France", City: "Paris"}, {Admin: "Texas", City: "Paris"}}
	f.listings.On("SearchCityGroups", mock.Anything, "Par").Return(groups, nil)

	res, err := f.uc.AutoComplete(context.Background(), "Par")
	require.NoError(t, err)
	assert.Equal(t, domain.AutoCompleteCityAdmin, res.Kind)
	assert.Nil(t, res.Listings)
	require.NotNil(t, res.CityAdmin)
	assert.EqualValues(t, 2, res.CityAdmin.Total)
	assert.Equal(t, groups, res.CityAdmin.Result)

	f.listings.AssertNotCalled(t, "SearchAddresses", mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestAutoComplete_FallsBackToAddressSearch(t *testing.T) {
	f := newFixture()
	found := []*domain.Listing{{ID: primitive.NewObjectID(), Address: "10 Rue de Rivoli"}}
	f.listings.On("SearchCityGroups", mock.Anything, "10 Rue").Return([]domain.CityAdmin{}, nil)
	f.listings.On("SearchAddresses", mock.Anything, "10 Rue", int64(5)).Return(found, nil)

	res, err := f.uc.AutoComplete(context.Background(), "10 Rue")
	require.NoError(t, err)
	assert.Equal(t, domain.AutoCompleteListings, res.Kind)
	require.NotNil(t, res.Listings)
	assert.Nil(t, res.Listings.Region)
	assert.EqualValues(t, 1, res.Listings.Total)
	assert.Equal(t, found, res.Listings.Result)
	f.assertExpectations(t)
}

func TestAutoComplete_WrapsStoreErrors(t *testing.T) {
	f := newFixture()
	f.listings.On("SearchCityGroups", mock.Anything, "x").Return(nil, errors.New("search index missing"))

	_, err := f.uc.AutoComplete(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
	assert.Contains(t, err.Error(), "search index missing")
}

func TestGetListing_Authorization(t *testing.T) {
	id := primitive.NewObjectID()
	listing := &domain.Listing{ID: id, Host: "host-1"}

	tests := []struct {
		name   string
		viewer *domain.Viewer
		want   bool
	}{
		{name: "host", viewer: &domain.Viewer{ID: "host-1"}, want: true},
		{name: "other user", viewer: &domain.Viewer{ID: "guest-7"}, want: false},
		{name: "anonymous", viewer: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.listings.On("FindByID", mock.Anything, id).Return(listing, nil)

			view, err := f.uc.GetListing(context.Background(), id.Hex(), tt.viewer)
			require.NoError(t, err)
			assert.Same(t, listing, view.Listing)
			assert.Equal(t, tt.want, view.Authorized)
		})
	}
}

func TestGetListing_Errors(t *testing.T) {
	f := newFixture()
	_, err := f.uc.GetListing(context.Background(), "not-an-object-id", nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	id := primitive.NewObjectID()
	f.listings.On("FindByID", mock.Anything, id).Return(nil, domain.ErrNotFound)
	_, err = f.uc.GetListing(context.Background(), id.Hex(), nil)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestListingBookings_HiddenUnlessAuthorized(t *testing.T) {
	f := newFixture()
	bookingIDs := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}
	listing := &domain.Listing{ID: primitive.NewObjectID(), Host: "host-1", Bookings: bookingIDs}

	page, err := f.uc.ListingBookings(context.Background(), &domain.ListingView{Listing: listing}, 10, 1)
	assert.NoError(t, err)
	assert.Nil(t, page)
	f.bookings.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	booked := []*domain.Booking{{ID: bookingIDs[1], Listing: listing.ID, Tenant: "guest-7"}}
	f.bookings.On("FindByIDs", mock.Anything, bookingIDs, int64(1), int64(1)).Return(booked, int64(2), nil)

	page, err = f.uc.ListingBookings(context.Background(), &domain.ListingView{Listing: listing, Authorized: true}, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, booked, page.Result)
	f.assertExpectations(t)
}

func TestSearchListings_WithLocation(t *testing.T) {
	f := newFixture()
	location := "Paris"
	want := domain.ListingQuery{
		Country: "France",
		Admin:   "Ile-de-France",
		City:    "Paris",
		Sort:    domain.ListingsFilterPriceHighToLow,
		Skip:    20,
		Limit:   10,
	}
	result := []*domain.Listing{{ID: primitive.NewObjectID(), City: "Paris"}}
	f.geocoder.On("Geocode", mock.Anything, location).Return(paris, nil)
	f.listings.On("FindByQuery", mock.Anything, want).Return(result, int64(31), nil)

	page, err := f.uc.SearchListings(context.Background(), SearchListingsInput{
		Location: &location,
		Filter:   domain.ListingsFilterPriceHighToLow,
		Limit:    10,
		Page:     3,
	})
	require.NoError(t, err)
	require.NotNil(t, page.Region)
	assert.Equal(t, "Paris, Ile-de-France, France", *page.Region)
	assert.EqualValues(t, 31, page.Total)
	assert.Equal(t, result, page.Result)
	f.assertExpectations(t)
}

func TestSearchListings_WithoutLocation(t *testing.T) {
	f := newFixture()
	want := domain.ListingQuery{Limit: 5}
	f.listings.On("FindByQuery", mock.Anything, want).Return(nil, int64(0), nil)

	page, err := f.uc.SearchListings(context.Background(), SearchListingsInput{Limit: 5, Page: 0})
	require.NoError(t, err)
	assert.Nil(t, page.Region)
	assert.NotNil(t, page.Result)
	assert.Empty(t, page.Result)
	f.geocoder.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
}

func TestSearchListings_RequiresCountry(t *testing.T) {
	f := newFixture()
	location := "nowhere"
	f.geocoder.On("Geocode", mock.Anything, location).Return(&domain.Location{City: "Atlantis"}, nil)

	_, err := f.uc.SearchListings(context.Background(), SearchListingsInput{Location: &location, Limit: 10, Page: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	f.listings.AssertNotCalled(t, "FindByQuery", mock.Anything, mock.Anything)
}

func TestSearchListings_RejectsBadWindow(t *testing.T) {
	f := newFixture()
	_, err := f.uc.SearchListings(context.Background(), SearchListingsInput{Limit: 0, Page: 1})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = f.uc.SearchListings(context.Background(), SearchListingsInput{Limit: 10, Filter: "PRICE_SIDEWAYS"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestHostListing_HappyPath(t *testing.T) {
	f := newFixture()
	in := hostInput()
	viewer := &domain.Viewer{ID: "host-1"}
	imageURL := "http://minio:9000/listing-images/listings/abc.png"

	var stored *domain.Listing
	f.geocoder.On("Geocode", mock.Anything, in.Address).Return(paris, nil)
	f.storage.On("UploadImage", mock.Anything, in.Image).Return(imageURL, nil)
	f.listings.On("Create", mock.Anything, mock.AnythingOfType("*domain.Listing")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.Listing) }).
		Return(nil)
	f.users.On("AppendListing", mock.Anything, "host-1", mock.AnythingOfType("primitive.ObjectID")).Return(nil)
	f.publisher.On("Publish", mock.Anything, SubjectListingCreated, mock.AnythingOfType("usecase.ListingCreatedEvent")).Return(nil)
	f.users.On("FindByID", mock.Anything, "host-1").Return(&domain.User{ID: "host-1", Contact: "host@example.com"}, nil)
	f.mailer.On("SendListingCreatedEmail", "host@example.com", in.Title).Return(nil)

	listing, err := f.uc.HostListing(context.Background(), in, viewer)
	require.NoError(t, err)
	assert.Same(t, stored, listing)
	assert.False(t, listing.ID.IsZero())
	assert.Equal(t, "host-1", listing.Host)
	assert.Equal(t, imageURL, listing.Image)
	assert.Equal(t, "France", listing.Country)
	assert.Equal(t, "Ile-de-France", listing.Admin)
	assert.Equal(t, "Paris", listing.City)
	assert.NotNil(t, listing.Bookings)
	assert.Empty(t, listing.Bookings)
	assert.NotNil(t, listing.BookingsIndex)
	assert.Empty(t, listing.BookingsIndex)
	assert.Equal(t, 3, listing.NumOfGuests)

	f.users.AssertCalled(t, "AppendListing", mock.Anything, "host-1", listing.ID)
	f.assertExpectations(t)
}

func TestHostListing_NotificationFailuresDoNotFail(t *testing.T) {
	f := newFixture()
	in := hostInput()
	f.geocoder.On("Geocode", mock.Anything, in.Address).Return(paris, nil)
	f.storage.On("UploadImage", mock.Anything, in.Image).Return("http://img/x.png", nil)
	f.listings.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.users.On("AppendListing", mock.Anything, "host-1", mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, SubjectListingCreated, mock.Anything).Return(errors.New("nats: no servers"))
	f.users.On("FindByID", mock.Anything, "host-1").Return(nil, domain.ErrNotFound)

	listing, err := f.uc.HostListing(context.Background(), in, &domain.Viewer{ID: "host-1"})
	require.NoError(t, err)
	assert.NotNil(t, listing)
	f.mailer.AssertNotCalled(t, "SendListingCreatedEmail", mock.Anything, mock.Anything)
}

func TestHostListing_ValidationRunsFirst(t *testing.T) {
	f := newFixture()
	in := hostInput()
	in.Title = strings.Repeat("t", 101)
	in.Price = -1

	_, err := f.uc.HostListing(context.Background(), in, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.EqualError(t, err, "listing title must be under 100 characters")
	f.geocoder.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
}

func TestHostListing_RequiresViewer(t *testing.T) {
	f := newFixture()
	_, err := f.uc.HostListing(context.Background(), hostInput(), nil)
	assert.True(t, errors.Is(err, domain.ErrUnauthenticated))
	f.geocoder.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
}

func TestHostListing_RequiresFullAddress(t *testing.T) {
	for _, loc := range []*domain.Location{
		{Admin: "Ile-de-France", City: "Paris"},
		{Country: "France", City: "Paris"},
		{Country: "France", Admin: "Ile-de-France"},
	} {
		f := newFixture()
		in := hostInput()
		f.geocoder.On("Geocode", mock.Anything, in.Address).Return(loc, nil)

		_, err := f.uc.HostListing(context.Background(), in, &domain.Viewer{ID: "host-1"})
		require.Error(t, err)
		assert.EqualError(t, err, "invalid address input")
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
		f.storage.AssertNotCalled(t, "UploadImage", mock.Anything, mock.Anything)
	}
}

func TestHostListing_InsertFailureRemovesImage(t *testing.T) {
	f := newFixture()
	in := hostInput()
	f.geocoder.On("Geocode", mock.Anything, in.Address).Return(paris, nil)
	f.storage.On("UploadImage", mock.Anything, in.Image).Return("http://img/x.png", nil)
	f.listings.On("Create", mock.Anything, mock.Anything).Return(errors.New("write concern"))
	f.storage.On("DeleteImage", mock.Anything, "http://img/x.png").Return(nil)

	_, err := f.uc.HostListing(context.Background(), in, &domain.Viewer{ID: "host-1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
	f.users.AssertNotCalled(t, "AppendListing", mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestHostListing_AppendFailureRemovesListingAndImage(t *testing.T) {
	f := newFixture()
	in := hostInput()
	var stored *domain.Listing
	f.geocoder.On("Geocode", mock.Anything, in.Address).Return(paris, nil)
	f.storage.On("UploadImage", mock.Anything, in.Image).Return("http://img/x.png", nil)
	f.listings.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.Listing) }).
		Return(nil)
	f.users.On("AppendListing", mock.Anything, "host-1", mock.Anything).Return(errors.New("timeout"))
	f.listings.On("Delete", mock.Anything, mock.AnythingOfType("primitive.ObjectID")).Return(errors.New("still down"))
	f.storage.On("DeleteImage", mock.Anything, "http://img/x.png").Return(nil)

	_, err := f.uc.HostListing(context.Background(), in, &domain.Viewer{ID: "host-1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
	require.NotNil(t, stored)
	f.listings.AssertCalled(t, "Delete", mock.Anything, stored.ID)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestListingHost(t *testing.T) {
	f := newFixture()
	listing := &domain.Listing{ID: primitive.NewObjectID(), Host: "host-1"}
	f.users.On("FindByID", mock.Anything, "host-1").Return(&domain.User{ID: "host-1", Name: "Ada"}, nil).Once()

	host, err := f.uc.ListingHost(context.Background(), listing)
	require.NoError(t, err)
	assert.Equal(t, "Ada", host.Name)

	f.users.On("FindByID", mock.Anything, "host-1").Return(nil, domain.ErrNotFound).Once()
	_, err = f.uc.ListingHost(context.Background(), listing)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestBookingsIndexJSON(t *testing.T) {
	out, err := BookingsIndexJSON(domain.BookingsIndex{})
	require.NoError(t, err)
	assert.Equal(t, "{}", out)

	out, err = BookingsIndexJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", out)

	out, err = BookingsIndexJSON(domain.BookingsIndex{"2026": {"10": {"19": true}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"2026":{"10":{"19":true}}}`, out)
}

func TestBookingTenant(t *testing.T) {
	f := newFixture()
	booking := &domain.Booking{ID: primitive.NewObjectID(), Tenant: "guest-7"}
	f.users.On("FindByID", mock.Anything, "guest-7").Return(&domain.User{ID: "guest-7", Name: "Grace"}, nil).Once()

	tenant, err := f.uc.BookingTenant(context.Background(), booking)
	require.NoError(t, err)
	assert.Equal(t, "Grace", tenant.Name)

	f.users.On("FindByID", mock.Anything, "guest-7").Return(nil, errors.New("socket closed")).Once()
	_, err = f.uc.BookingTenant(context.Background(), booking)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
}
