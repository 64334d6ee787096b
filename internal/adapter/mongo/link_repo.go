package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/northtrade/marketplace/ingestion-service/internal/entity"
	"github.com/northtrade/marketplace/ingestion-service/internal/port/repository"
)

type LinkMongoRepository struct {
	db *mongo.Database
}

func NewLinkRepository(db *mongo.Database) *LinkMongoRepository {
	return &LinkMongoRepository{db: db}
}

func (r *LinkMongoRepository) Create(ctx context.Context, link *entity.ExternalLink) (string, error) {
	doc, err := toLinkDocument(link)
	if err != nil {
		return "", err
	}

	res, err := r.db.Collection(linksCollection).InsertOne(ctx, doc)
	if err != nil {
		// The unique index on (platform, external_id) is the authoritative
		// idempotency guarantee; surface its violation as a typed error so
		// the reconciler can fall back to the update path.
		if mongo.IsDuplicateKeyError(err) {
			return "", repository.ErrDuplicateExternalID
		}
		return "", fmt.Errorf("failed to create external link in mongo: %w", err)
	}

	insertedID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to convert inserted_id to ObjectID")
	}
	return insertedID.Hex(), nil
}

func (r *LinkMongoRepository) Update(ctx context.Context, link *entity.ExternalLink) error {
	doc, err := toLinkDocument(link)
	if err != nil {
		return err
	}
	if doc.ID.IsZero() {
		return fmt.Errorf("external link ID is required for update")
	}

	updateFields := bson.M{
		"$set": bson.M{
			"url":             doc.URL,
			"meta":            doc.Meta,
			"seller_username": doc.SellerUsername,
			"seller_rating":   doc.SellerRating,
			"seller_reviews":  doc.SellerReviews,
			"postal_code":     doc.PostalCode,
			"last_synced_at":  doc.LastSyncedAt,
		},
	}

	res, err := r.db.Collection(linksCollection).UpdateOne(ctx, bson.M{"_id": doc.ID}, updateFields)
	if err != nil {
		return fmt.Errorf("failed to update external link in mongo: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *LinkMongoRepository) FindBySource(ctx context.Context, platform, externalID string) (*entity.ExternalLink, error) {
	var doc externalLinkDocument
	filter := bson.M{"platform": platform, "external_id": externalID}
	err := r.db.Collection(linksCollection).FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get external link by source from mongo: %w", err)
	}
	return toLinkEntity(&doc), nil
}

func (r *LinkMongoRepository) FindByListingID(ctx context.Context, listingID string) (*entity.ExternalLink, error) {
	var doc externalLinkDocument
	err := r.db.Collection(linksCollection).FindOne(ctx, bson.M{"listing_id": listingID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get external link by listing id from mongo: %w", err)
	}
	return toLinkEntity(&doc), nil
}
