package repository

import (
	"context"
	"errors"

	"github.com/northtrade/marketplace/ingestion-service/internal/entity"
)

var (
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateExternalID is returned when an insert violates the unique
	// constraint on (platform, external_id). It is the authoritative signal
	// that another writer won the race for this external identity.
	ErrDuplicateExternalID = errors.New("external link already exists for (platform, external_id)")
)

type ListingRepository interface {
	Create(ctx context.Context, listing *entity.Listing) (string, error)
	Update(ctx context.Context, listing *entity.Listing) error
	FindByID(ctx context.Context, id string) (*entity.Listing, error)
}

type ExternalLinkRepository interface {
	Create(ctx context.Context, link *entity.ExternalLink) (string, error)
	Update(ctx context.Context, link *entity.ExternalLink) error
	FindBySource(ctx context.Context, platform, externalID string) (*entity.ExternalLink, error)
	FindByListingID(ctx context.Context, listingID string) (*entity.ExternalLink, error)
}

type ImageRepository interface {
	Create(ctx context.Context, image *entity.ListingImage) (string, error)
	ListByListing(ctx context.Context, listingID string) ([]entity.ListingImage, error)
}

// TxRunner scopes a function to a storage transaction so the listing and
// its link are committed together on the create path.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
