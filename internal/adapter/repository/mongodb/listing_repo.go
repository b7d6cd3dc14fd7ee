package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const listingCollectionName = "listings"

// ListingRepository implements domain.ListingRepository on MongoDB. The autocomplete
// queries use an Atlas Search index with autocomplete mappings on city and address.
type ListingRepository struct {
	collection  *mongo.Collection
	searchIndex string
	logger      *logger.Logger
}

// NewListingRepository ensures the listing indexes and returns the repository.
// Index failures are logged; the indexes may already exist or be managed outside the service.
func NewListingRepository(db *mongo.Database, searchIndex string, log *logger.Logger) (*ListingRepository, error) {
	collection := db.Collection(listingCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "country", Value: 1}, {Key: "admin", Value: 1}, {Key: "city", Value: 1}, {Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "host", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("Failed to create indexes for listings collection", zap.Error(err))
	} else {
		log.Info("Successfully ensured indexes for listings collection")
	}

	searchModel := mongo.SearchIndexModel{
		Definition: bson.D{{Key: "mappings", Value: bson.D{
			{Key: "dynamic", Value: false},
			{Key: "fields", Value: bson.D{
				{Key: "city", Value: bson.D{{Key: "type", Value: "autocomplete"}}},
				{Key: "address", Value: bson.D{{Key: "type", Value: "autocomplete"}}},
			}},
		}}},
		Options: options.SearchIndexes().SetName(searchIndex),
	}
	if _, err := collection.SearchIndexes().CreateOne(ctx, searchModel); err != nil {
		// Plain mongod has no search support and Atlas rejects duplicates.
		log.Warn("Could not create listings search index", zap.String("index", searchIndex), zap.Error(err))
	}

	return &ListingRepository{
		collection:  collection,
		searchIndex: searchIndex,
		logger:      log.Named("ListingRepository"),
	}, nil
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	if listing.ID.IsZero() {
		listing.ID = primitive.NewObjectID()
	}
	doc := fromDomainListing(listing)

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to insert listing into DB", zap.String("listing_id", doc.ID.Hex()), zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}
	listing.Bookings = doc.Bookings
	listing.BookingsIndex = doc.BookingsIndex
	r.logger.Debug("Listing inserted", zap.String("listing_id", doc.ID.Hex()))
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Failed to delete listing from DB", zap.String("listing_id", id.Hex()), zap.Error(err))
		return fmt.Errorf("db delete failed: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Listing, error) {
	var doc listingDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to get listing by ID from DB", zap.String("listing_id", id.Hex()), zap.Error(err))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByQuery applies the location filter, then the price sort, then skip and limit.
// The returned total counts every match.
func (r *ListingRepository) FindByQuery(ctx context.Context, query domain.ListingQuery) ([]*domain.Listing, int64, error) {
	filter := listingFilter(query)

	findOptions := options.Find().SetSkip(query.Skip).SetLimit(query.Limit)
	if sort, ok := priceSort(query.Sort); ok {
		findOptions.SetSort(sort)
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		r.logger.Error("Failed to find listings", zap.Any("filter", filter), zap.Error(err))
		return nil, 0, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode listings", zap.Error(err))
		return nil, 0, fmt.Errorf("db cursor all failed: %w", err)
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count listings", zap.Any("filter", filter), zap.Error(err))
		return nil, 0, fmt.Errorf("db count failed: %w", err)
	}

	return toDomainListings(docs), total, nil
}

func (r *ListingRepository) SearchCityGroups(ctx context.Context, text string) ([]domain.CityAdmin, error) {
	pipeline := mongo.Pipeline{
		r.autocompleteStage(text, "city"),
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: bson.D{
			{Key: "admin", Value: "$admin"},
			{Key: "city", Value: "$city"},
		}}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("City autocomplete aggregation failed", zap.String("text", text), zap.Error(err))
		return nil, fmt.Errorf("db aggregate failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []cityGroupDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}

	groups := make([]domain.CityAdmin, 0, len(docs))
	for _, doc := range docs {
		groups = append(groups, domain.CityAdmin{Admin: doc.ID.Admin, City: doc.ID.City})
	}
	return groups, nil
}

func (r *ListingRepository) SearchAddresses(ctx context.Context, text string, limit int64) ([]*domain.Listing, error) {
	pipeline := mongo.Pipeline{
		r.autocompleteStage(text, "address"),
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Address autocomplete aggregation failed", zap.String("text", text), zap.Error(err))
		return nil, fmt.Errorf("db aggregate failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}
	return toDomainListings(docs), nil
}

func (r *ListingRepository) autocompleteStage(text, path string) bson.D {
	return bson.D{{Key: "$search", Value: bson.D{
		{Key: "index", Value: r.searchIndex},
		{Key: "autocomplete", Value: bson.D{
			{Key: "query", Value: text},
			{Key: "path", Value: path},
		}},
	}}}
}

func listingFilter(query domain.ListingQuery) bson.M {
	filter := bson.M{}
	if query.Country != "" {
		filter["country"] = query.Country
	}
	if query.Admin != "" {
		filter["admin"] = query.Admin
	}
	if query.City != "" {
		filter["city"] = query.City
	}
	return filter
}

func priceSort(f domain.ListingsFilter) (bson.D, bool) {
	switch f {
	case domain.ListingsFilterPriceLowToHigh:
		return bson.D{{Key: "price", Value: 1}}, true
	case domain.ListingsFilterPriceHighToLow:
		return bson.D{{Key: "price", Value: -1}}, true
	}
	return nil, false
}
