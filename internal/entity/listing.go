package entity

import "time"

type ListingStatus string

const (
	StatusDraft    ListingStatus = "draft"
	StatusActive   ListingStatus = "active"
	StatusSold     ListingStatus = "sold"
	StatusArchived ListingStatus = "archived"
	StatusRemoved  ListingStatus = "removed"
)

// ValidStatus reports whether s is one of the known lifecycle statuses.
func ValidStatus(s ListingStatus) bool {
	switch s {
	case StatusDraft, StatusActive, StatusSold, StatusArchived, StatusRemoved:
		return true
	}
	return false
}

// Listing is the canonical, authoritative record of a marketplace listing.
// Listings are never hard-deleted; removal is a status transition.
type Listing struct {
	ID          string
	PublicID    string
	CategoryID  string
	Title       string
	Description string // rich text as supplied by the source
	Price       float64
	Properties  map[string]interface{}
	Status      ListingStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ExternalLink ties one canonical listing to one (platform, externalID)
// pair. The pair is unique across all links and serves as the idempotency
// key for re-ingestion.
type ExternalLink struct {
	ID             string
	ListingID      string
	Platform       string
	ExternalID     string
	URL            string
	Meta           map[string]string
	SellerUsername string
	SellerRating   float64
	SellerReviews  int
	PostalCode     string
	FirstSeenAt    time.Time
	LastSyncedAt   time.Time
}

type ImageStatus string

const (
	ImageUploaded ImageStatus = "uploaded"
	ImageFailed   ImageStatus = "failed"
	ImagePending  ImageStatus = "pending"
)

// ManualUploadToken is the dedup token recorded for images that were
// uploaded by a user rather than fetched from a source URL.
const ManualUploadToken = "manual-upload"

// ListingImage is one stored image belonging to a listing. SourceURL is the
// dedup token; DisplayOrder is append-only and never reused.
type ListingImage struct {
	ID           string
	ListingID    string
	StorageKey   string
	SourceURL    string
	ContentType  string
	DisplayOrder int
	Status       ImageStatus
	CreatedAt    time.Time
}
