package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/northtrade/marketplace/ingestion-service/internal/config"
)

const (
	listingsCollection = "listings"
	linksCollection    = "external_links"
	imagesCollection   = "listing_images"
)

// Connect establishes and pings a MongoDB client.
func Connect(ctx context.Context, cfg *config.MongoConfig) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB at %s: %w", cfg.URI, err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB at %s: %w", cfg.URI, err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the ingestion pipeline relies on. The
// unique index on (platform, external_id) is load-bearing: it is the real
// guarantee behind upsert-by-external-identity, not the pre-insert lookup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(linksCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "platform", Value: 1}, {Key: "external_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_platform_external_id"),
	})
	if err != nil {
		return fmt.Errorf("failed to create unique index on external_links: %w", err)
	}

	_, err = db.Collection(linksCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "listing_id", Value: 1}},
		Options: options.Index().SetName("idx_link_listing_id"),
	})
	if err != nil {
		return fmt.Errorf("failed to create listing_id index on external_links: %w", err)
	}

	_, err = db.Collection(imagesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "listing_id", Value: 1}, {Key: "display_order", Value: 1}},
		Options: options.Index().SetName("idx_image_listing_order"),
	})
	if err != nil {
		return fmt.Errorf("failed to create listing_id index on listing_images: %w", err)
	}
	return nil
}

// SessionRunner scopes a function to a Mongo session transaction so the
// listing and its external link commit together on the create path.
type SessionRunner struct {
	client *mongo.Client
}

func NewSessionRunner(client *mongo.Client) *SessionRunner {
	return &SessionRunner{client: client}
}

func (r *SessionRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start mongo session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
