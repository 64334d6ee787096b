package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/northtrade/marketplace/ingestion-service/internal/entity"
)

type ImageMongoRepository struct {
	db *mongo.Database
}

func NewImageRepository(db *mongo.Database) *ImageMongoRepository {
	return &ImageMongoRepository{db: db}
}

func (r *ImageMongoRepository) Create(ctx context.Context, image *entity.ListingImage) (string, error) {
	doc, err := toImageDocument(image)
	if err != nil {
		return "", err
	}

	res, err := r.db.Collection(imagesCollection).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create listing image in mongo: %w", err)
	}

	insertedID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to convert inserted_id to ObjectID")
	}
	return insertedID.Hex(), nil
}

func (r *ImageMongoRepository) ListByListing(ctx context.Context, listingID string) ([]entity.ListingImage, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "display_order", Value: 1}})

	cursor, err := r.db.Collection(imagesCollection).Find(ctx, bson.M{"listing_id": listingID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list images from mongo: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []listingImageDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode image list from mongo: %w", err)
	}

	images := make([]entity.ListingImage, len(docs))
	for i, doc := range docs {
		images[i] = toImageEntity(&doc)
	}
	return images, nil
}
