package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"age-checker-shopify-layer/internal/domain"
	"age-checker-shopify-layer/internal/infrastructure/repository/entity"
	"age-checker-shopify-layer/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ShopsCollection is the collection holding one document per installed shop
const ShopsCollection = "shops"

// MongoShopRepository implements ShopRepository using MongoDB
type MongoShopRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoShopRepository creates a new MongoDB shop repository
func NewMongoShopRepository(db *mongo.Database) *MongoShopRepository {
	return &MongoShopRepository{
		collection: db.Collection(ShopsCollection),
		now:        time.Now,
	}
}

var _ ports.ShopRepository = (*MongoShopRepository)(nil)

// EnsureIndexes creates the unique index on shopDomain
func (r *MongoShopRepository) EnsureIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "shopDomain", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("shopDomain_unique"),
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("failed to create shopDomain index: %w", err)
	}
	return nil
}

// UpsertAccessToken stores a fresh access token for a shop in a single atomic write.
// New shops start with the default age limit; existing shops keep theirs.
func (r *MongoShopRepository) UpsertAccessToken(ctx context.Context, shopDomain string, accessToken string) (*domain.Shop, error) {
	now := r.now()
	filter := bson.M{"shopDomain": shopDomain}
	update := bson.M{
		"$set": bson.M{
			"accessToken": accessToken,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{
			"ageLimit":  domain.DefaultAgeLimit,
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc entity.MongoShopDoc
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to upsert shop: %w", err)
	}

	return doc.ToDomain(), nil
}

// GetByDomain retrieves a shop by domain
func (r *MongoShopRepository) GetByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	var doc entity.MongoShopDoc
	filter := bson.M{"shopDomain": shopDomain}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrShopNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}

	return doc.ToDomain(), nil
}

// SetAgeLimit updates a shop's age limit and returns the updated record
func (r *MongoShopRepository) SetAgeLimit(ctx context.Context, shopDomain string, ageLimit int) (*domain.Shop, error) {
	filter := bson.M{"shopDomain": shopDomain}
	update := bson.M{
		"$set": bson.M{
			"ageLimit":  ageLimit,
			"updatedAt": r.now(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc entity.MongoShopDoc
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrShopNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update age limit: %w", err)
	}

	return doc.ToDomain(), nil
}
