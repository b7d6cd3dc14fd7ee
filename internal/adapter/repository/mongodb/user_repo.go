package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const userCollectionName = "users"

type UserRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewUserRepository(db *mongo.Database, log *logger.Logger) *UserRepository {
	return &UserRepository{
		collection: db.Collection(userCollectionName),
		logger:     log.Named("UserRepository"),
	}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var doc userDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to get user by ID from DB", zap.String("user_id", id), zap.Error(err))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomain(), nil
}

// AppendListing pushes listingID onto the user's listings array in a single update.
func (r *UserRepository) AppendListing(ctx context.Context, userID string, listingID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$push": bson.M{"listings": listingID}},
	)
	if err != nil {
		r.logger.Error("Failed to append listing to user", zap.String("user_id", userID), zap.String("listing_id", listingID.Hex()), zap.Error(err))
		return fmt.Errorf("db update failed: %w", err)
	}
	if result.MatchedCount == 0 {
		r.logger.Warn("User not found while appending listing", zap.String("user_id", userID))
		return domain.ErrNotFound
	}
	return nil
}
