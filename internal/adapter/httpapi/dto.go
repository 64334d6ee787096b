package httpapi

import (
	"time"

	"github.com/northtrade/marketplace/ingestion-service/internal/entity"
)

type externalRequest struct {
	Platform       string            `json:"platform"`
	ExternalID     string            `json:"externalId"`
	URL            string            `json:"url,omitempty"`
	Meta           map[string]string `json:"meta,omitempty"`
	ImageURLs      []string          `json:"imageUrls,omitempty"`
	PostalCode     string            `json:"postalCode,omitempty"`
	SellerUsername string            `json:"sellerUsername,omitempty"`
	SellerRating   float64           `json:"sellerRating,omitempty"`
	SellerReviews  int               `json:"sellerReviews,omitempty"`
}

type ingestItemRequest struct {
	SubCategoryID string                 `json:"subCategoryId"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description,omitempty"`
	Price         *float64               `json:"price,omitempty"`
	Properties    map[string]interface{} `json:"properties,omitempty"`
	Status        string                 `json:"status,omitempty"`
	CreatedAt     string                 `json:"createdAt,omitempty"`
	External      *externalRequest       `json:"external"`
}

type fieldError struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

type listingResponse struct {
	ID          string                 `json:"id"`
	PublicID    string                 `json:"publicId"`
	CategoryID  string                 `json:"categoryId"`
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	Price       float64                `json:"price"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
	Status      string                 `json:"status"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

type externalListingResponse struct {
	ID             string            `json:"id"`
	ListingID      string            `json:"listingId"`
	Platform       string            `json:"platform"`
	ExternalID     string            `json:"externalId"`
	URL            string            `json:"url,omitempty"`
	Meta           map[string]string `json:"meta,omitempty"`
	SellerUsername string            `json:"sellerUsername,omitempty"`
	SellerRating   float64           `json:"sellerRating,omitempty"`
	SellerReviews  int               `json:"sellerReviews,omitempty"`
	PostalCode     string            `json:"postalCode,omitempty"`
	FirstSeenAt    time.Time         `json:"firstSeenAt"`
	LastSyncedAt   time.Time         `json:"lastSyncedAt"`
}

type imageResponse struct {
	ID           string `json:"id"`
	StorageKey   string `json:"storageKey"`
	SourceURL    string `json:"sourceUrl"`
	DisplayOrder int    `json:"displayOrder"`
	Status       string `json:"status"`
}

type itemResultResponse struct {
	Action          string                   `json:"action"`
	Listing         *listingResponse         `json:"listing,omitempty"`
	ExternalListing *externalListingResponse `json:"externalListing,omitempty"`
	Images          []imageResponse          `json:"images,omitempty"`
	Error           string                   `json:"error,omitempty"`
	Input           *ingestItemRequest       `json:"input,omitempty"`
}

type ingestResponse struct {
	Success   bool                 `json:"success"`
	Processed int                  `json:"processed"`
	Results   []itemResultResponse `json:"results"`
}

func toListingResponse(l *entity.Listing) *listingResponse {
	if l == nil {
		return nil
	}
	return &listingResponse{
		ID:          l.ID,
		PublicID:    l.PublicID,
		CategoryID:  l.CategoryID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Properties:  l.Properties,
		Status:      string(l.Status),
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func toExternalListingResponse(l *entity.ExternalLink) *externalListingResponse {
	if l == nil {
		return nil
	}
	return &externalListingResponse{
		ID:             l.ID,
		ListingID:      l.ListingID,
		Platform:       l.Platform,
		ExternalID:     l.ExternalID,
		URL:            l.URL,
		Meta:           l.Meta,
		SellerUsername: l.SellerUsername,
		SellerRating:   l.SellerRating,
		SellerReviews:  l.SellerReviews,
		PostalCode:     l.PostalCode,
		FirstSeenAt:    l.FirstSeenAt,
		LastSyncedAt:   l.LastSyncedAt,
	}
}

func toImageResponses(images []entity.ListingImage) []imageResponse {
	if len(images) == 0 {
		return nil
	}
	out := make([]imageResponse, len(images))
	for i, img := range images {
		out[i] = imageResponse{
			ID:           img.ID,
			StorageKey:   img.StorageKey,
			SourceURL:    img.SourceURL,
			DisplayOrder: img.DisplayOrder,
			Status:       string(img.Status),
		}
	}
	return out
}
