package mongodb

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const bookingCollectionName = "bookings"

// BookingRepository is read-only; bookings are written by the booking flow.
type BookingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewBookingRepository(db *mongo.Database, log *logger.Logger) *BookingRepository {
	return &BookingRepository{
		collection: db.Collection(bookingCollectionName),
		logger:     log.Named("BookingRepository"),
	}
}

func (r *BookingRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID, skip, limit int64) ([]*domain.Booking, int64, error) {
	if len(ids) == 0 {
		return []*domain.Booking{}, 0, nil
	}

	filter := bson.M{"_id": bson.M{"$in": ids}}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSkip(skip).SetLimit(limit))
	if err != nil {
		r.logger.Error("Failed to find bookings", zap.Int("ids", len(ids)), zap.Error(err))
		return nil, 0, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*bookingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("db cursor all failed: %w", err)
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count bookings", zap.Error(err))
		return nil, 0, fmt.Errorf("db count failed: %w", err)
	}

	bookings := make([]*domain.Booking, 0, len(docs))
	for _, doc := range docs {
		bookings = append(bookings, doc.toDomain())
	}
	return bookings, total, nil
}
