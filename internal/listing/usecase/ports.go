package usecase

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/listing/domain"
)

// Geocoder resolves a free-text address. Components that did not resolve are left empty.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*domain.Location, error)
}

// ImageStorage hosts listing images and returns the public reference for each upload.
type ImageStorage interface {
	UploadImage(ctx context.Context, image string) (string, error)
	DeleteImage(ctx context.Context, url string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

type Mailer interface {
	SendListingCreatedEmail(toEmail, listingTitle string) error
}
