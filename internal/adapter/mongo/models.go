package mongo

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/northtrade/marketplace/ingestion-service/internal/entity"
)

type listingDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	PublicID    string             `bson:"public_id"`
	CategoryID  string             `bson:"category_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	Price       float64            `bson:"price"`
	Properties  bson.M             `bson:"properties,omitempty"`
	Status      string             `bson:"status"`
	CreatedAt   primitive.DateTime `bson:"created_at"`
	UpdatedAt   primitive.DateTime `bson:"updated_at"`
}

type externalLinkDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	ListingID      string             `bson:"listing_id"`
	Platform       string             `bson:"platform"`
	ExternalID     string             `bson:"external_id"`
	URL            string             `bson:"url,omitempty"`
	Meta           map[string]string  `bson:"meta,omitempty"`
	SellerUsername string             `bson:"seller_username,omitempty"`
	SellerRating   float64            `bson:"seller_rating,omitempty"`
	SellerReviews  int                `bson:"seller_reviews,omitempty"`
	PostalCode     string             `bson:"postal_code,omitempty"`
	FirstSeenAt    primitive.DateTime `bson:"first_seen_at"`
	LastSyncedAt   primitive.DateTime `bson:"last_synced_at"`
}

type listingImageDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	ListingID    string             `bson:"listing_id"`
	StorageKey   string             `bson:"storage_key"`
	SourceURL    string             `bson:"source_url"`
	ContentType  string             `bson:"content_type,omitempty"`
	DisplayOrder int                `bson:"display_order"`
	Status       string             `bson:"status"`
	CreatedAt    primitive.DateTime `bson:"created_at"`
}

func toListingDocument(l *entity.Listing) (*listingDocument, error) {
	doc := &listingDocument{
		PublicID:    l.PublicID,
		CategoryID:  l.CategoryID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Properties:  bson.M(l.Properties),
		Status:      string(l.Status),
		CreatedAt:   primitive.NewDateTimeFromTime(l.CreatedAt),
		UpdatedAt:   primitive.NewDateTimeFromTime(l.UpdatedAt),
	}
	if l.ID != "" {
		objID, err := primitive.ObjectIDFromHex(l.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid listing ID format: %w", err)
		}
		doc.ID = objID
	}
	return doc, nil
}

func toListingEntity(doc *listingDocument) *entity.Listing {
	return &entity.Listing{
		ID:          doc.ID.Hex(),
		PublicID:    doc.PublicID,
		CategoryID:  doc.CategoryID,
		Title:       doc.Title,
		Description: doc.Description,
		Price:       doc.Price,
		Properties:  map[string]interface{}(doc.Properties),
		Status:      entity.ListingStatus(doc.Status),
		CreatedAt:   doc.CreatedAt.Time(),
		UpdatedAt:   doc.UpdatedAt.Time(),
	}
}

func toLinkDocument(l *entity.ExternalLink) (*externalLinkDocument, error) {
	doc := &externalLinkDocument{
		ListingID:      l.ListingID,
		Platform:       l.Platform,
		ExternalID:     l.ExternalID,
		URL:            l.URL,
		Meta:           l.Meta,
		SellerUsername: l.SellerUsername,
		SellerRating:   l.SellerRating,
		SellerReviews:  l.SellerReviews,
		PostalCode:     l.PostalCode,
		FirstSeenAt:    primitive.NewDateTimeFromTime(l.FirstSeenAt),
		LastSyncedAt:   primitive.NewDateTimeFromTime(l.LastSyncedAt),
	}
	if l.ID != "" {
		objID, err := primitive.ObjectIDFromHex(l.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid external link ID format: %w", err)
		}
		doc.ID = objID
	}
	return doc, nil
}

func toLinkEntity(doc *externalLinkDocument) *entity.ExternalLink {
	return &entity.ExternalLink{
		ID:             doc.ID.Hex(),
		ListingID:      doc.ListingID,
		Platform:       doc.Platform,
		ExternalID:     doc.ExternalID,
		URL:            doc.URL,
		Meta:           doc.Meta,
		SellerUsername: doc.SellerUsername,
		SellerRating:   doc.SellerRating,
		SellerReviews:  doc.SellerReviews,
		PostalCode:     doc.PostalCode,
		FirstSeenAt:    doc.FirstSeenAt.Time(),
		LastSyncedAt:   doc.LastSyncedAt.Time(),
	}
}

func toImageDocument(img *entity.ListingImage) (*listingImageDocument, error) {
	doc := &listingImageDocument{
		ListingID:    img.ListingID,
		StorageKey:   img.StorageKey,
		SourceURL:    img.SourceURL,
		ContentType:  img.ContentType,
		DisplayOrder: img.DisplayOrder,
		Status:       string(img.Status),
		CreatedAt:    primitive.NewDateTimeFromTime(img.CreatedAt),
	}
	if img.ID != "" {
		objID, err := primitive.ObjectIDFromHex(img.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid listing image ID format: %w", err)
		}
		doc.ID = objID
	}
	return doc, nil
}

func toImageEntity(doc *listingImageDocument) entity.ListingImage {
	return entity.ListingImage{
		ID:           doc.ID.Hex(),
		ListingID:    doc.ListingID,
		StorageKey:   doc.StorageKey,
		SourceURL:    doc.SourceURL,
		ContentType:  doc.ContentType,
		DisplayOrder: doc.DisplayOrder,
		Status:       entity.ImageStatus(doc.Status),
		CreatedAt:    doc.CreatedAt.Time(),
	}
}
