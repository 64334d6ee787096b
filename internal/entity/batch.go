package entity

import "time"

// ExternalSource describes where an inbound record was seen and who was
// selling it there.
type ExternalSource struct {
	Platform       string
	ExternalID     string
	URL            string
	Meta           map[string]string
	ImageURLs      []string
	PostalCode     string
	SellerUsername string
	SellerRating   float64
	SellerReviews  int
}

// ExternalRecord is one inbound item from the aggregator, representing a
// listing as seen on a third-party platform.
type ExternalRecord struct {
	SubCategoryID string
	Title         string
	Description   string
	Price         *float64
	Properties    map[string]interface{}
	Status        ListingStatus
	CreatedAt     *time.Time
	External      ExternalSource
}

type BatchAction string

const (
	ActionCreated BatchAction = "created"
	ActionUpdated BatchAction = "updated"
	ActionError   BatchAction = "error"
)

// BatchItemResult is the per-item outcome of one ingestion call. It lives
// only for the duration of the call and is returned to the caller in input
// order.
type BatchItemResult struct {
	Action  BatchAction
	Listing *Listing
	Link    *ExternalLink
	Images  []ListingImage
	Err     string
	Input   *ExternalRecord
}
