package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/platform/logger"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"googlemaps.github.io/maps"
)

var tracer = otel.Tracer("rental-listing-service/google-geocoder")

var errNotConfigured = errors.New("google geocoding is not configured")

// Geocoder resolves addresses with the Google Geocoding API.
type Geocoder struct {
	client *maps.Client
	logger *logger.Logger
}

// NewGeocoder builds a client for apiKey. Extra options are passed to the maps client.
// With an empty key every lookup fails with an upstream error.
func NewGeocoder(apiKey string, log *logger.Logger, opts ...maps.ClientOption) (*Geocoder, error) {
	g := &Geocoder{logger: log.Named("GoogleGeocoder")}
	if apiKey == "" {
		log.Warn("Google geocoder has no API key; address lookups will fail")
		return g, nil
	}

	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create google maps client: %w", err)
	}
	g.client = client
	return g, nil
}

// Geocode returns the country, first-level administrative area and city of the best match.
// An address with no match yields an empty Location.
func (g *Geocoder) Geocode(ctx context.Context, address string) (*domain.Location, error) {
	ctx, span := tracer.Start(ctx, "Google.Geocode")
	defer span.End()

	if g.client == nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, errNotConfigured)
	}

	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		span.RecordError(err)
		g.logger.Error("Geocoding request failed", zap.String("address", address), zap.Error(err))
		return nil, fmt.Errorf("%w: geocoding failed: %v", domain.ErrUpstream, err)
	}
	if len(results) == 0 {
		g.logger.Debug("Address did not geocode", zap.String("address", address))
		return &domain.Location{}, nil
	}

	loc := extractLocation(results[0].AddressComponents)
	return &loc, nil
}

func extractLocation(components []maps.AddressComponent) domain.Location {
	var loc domain.Location
	for _, component := range components {
		for _, kind := range component.Types {
			switch kind {
			case "country":
				loc.Country = component.LongName
			case "administrative_area_level_1":
				loc.Admin = component.LongName
			case "locality", "postal_town":
				if loc.City == "" {
					loc.City = component.LongName
				}
			}
		}
	}
	return loc
}
