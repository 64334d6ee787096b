package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/northtrade/marketplace/ingestion-service/internal/entity"
	"github.com/northtrade/marketplace/ingestion-service/internal/platform/logger"
	"github.com/northtrade/marketplace/ingestion-service/internal/platform/metrics"
	"github.com/northtrade/marketplace/ingestion-service/internal/port/geo"
	"github.com/northtrade/marketplace/ingestion-service/internal/port/repository"
	"github.com/northtrade/marketplace/ingestion-service/internal/port/search"
	"github.com/northtrade/marketplace/ingestion-service/internal/port/taxonomy"
)

// SearchProjector denormalizes canonical listings into search documents
// and batch-upserts them into the index. A listing without a resolvable
// postal code is excluded from the index; that is a valid state, not an
// error.
type SearchProjector struct {
	listings repository.ListingRepository
	links    repository.ExternalLinkRepository
	images   repository.ImageRepository
	geo      geo.Resolver
	taxonomy taxonomy.Lookup
	index    search.Index
	logger   *logger.Logger
	metrics  *metrics.Manager
}

func NewSearchProjector(
	listings repository.ListingRepository,
	links repository.ExternalLinkRepository,
	images repository.ImageRepository,
	geoResolver geo.Resolver,
	taxonomyLookup taxonomy.Lookup,
	index search.Index,
	log *logger.Logger,
	m *metrics.Manager,
) *SearchProjector {
	return &SearchProjector{
		listings: listings,
		links:    links,
		images:   images,
		geo:      geoResolver,
		taxonomy: taxonomyLookup,
		index:    index,
		logger:   log,
		metrics:  m,
	}
}

// Sync rebuilds and upserts the documents for the given listing ids and
// returns the number of documents written. Listings deleted since the ids
// were collected are skipped; an index write failure fails the whole call.
func (uc *SearchProjector) Sync(ctx context.Context, listingIDs []string) (int, error) {
	docs := make([]entity.SearchDocument, 0, len(listingIDs))
	for _, id := range listingIDs {
		doc, ok, err := uc.buildDocument(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("SearchProjector.Sync: failed to build document for %s: %w", id, err)
		}
		if !ok {
			continue
		}
		docs = append(docs, doc)
	}

	if len(docs) == 0 {
		uc.logger.Debug("No indexable documents in sync request", zap.Int("requested", len(listingIDs)))
		return 0, nil
	}

	if err := uc.index.Upsert(ctx, docs); err != nil {
		return 0, fmt.Errorf("SearchProjector.Sync: index upsert failed: %w", err)
	}

	if uc.metrics != nil {
		uc.metrics.SyncDocsTotal.Add(float64(len(docs)))
	}
	uc.logger.Info("Search documents synced",
		zap.Int("requested", len(listingIDs)),
		zap.Int("written", len(docs)))
	return len(docs), nil
}

func (uc *SearchProjector) buildDocument(ctx context.Context, listingID string) (entity.SearchDocument, bool, error) {
	listing, err := uc.listings.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			uc.logger.Warn("Listing vanished before sync, skipping", zap.String("listing_id", listingID))
			return entity.SearchDocument{}, false, nil
		}
		return entity.SearchDocument{}, false, err
	}

	link, err := uc.links.FindByListingID(ctx, listingID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return entity.SearchDocument{}, false, err
	}

	postalCode := ""
	if link != nil {
		postalCode = link.PostalCode
	}
	location, ok := uc.geo.Resolve(postalCode)
	if !ok {
		uc.logger.Debug("Listing has no resolvable location, excluded from index",
			zap.String("listing_id", listingID), zap.String("postal_code", postalCode))
		return entity.SearchDocument{}, false, nil
	}

	images, err := uc.images.ListByListing(ctx, listingID)
	if err != nil {
		return entity.SearchDocument{}, false, err
	}

	doc := entity.SearchDocument{
		ID:           listing.ID,
		PublicID:     listing.PublicID,
		CategoryID:   listing.CategoryID,
		CategoryPath: uc.taxonomy.Path(listing.CategoryID),
		Title:        listing.Title,
		Description:  stripRichText(listing.Description),
		Price:        listing.Price,
		Status:       string(listing.Status),
		Location:     location.Point,
		Province:     location.Province,
		City:         location.City,
		HasImages:    len(images) > 0,
		ImageCount:   len(images),
		Fields:       flattenProperties(listing.Properties),
		CreatedAt:    listing.CreatedAt,
		UpdatedAt:    listing.UpdatedAt,
	}
	if link != nil {
		doc.SellerUsername = link.SellerUsername
		doc.SellerRating = link.SellerRating
		doc.SellerReviews = link.SellerReviews
	}
	return doc, true, nil
}

// flattenProperties copies the category-specific property bag onto the
// document with case-normalized keys so facets can target them directly.
// No fixed shape is assumed; values pass through as-is.
func flattenProperties(props map[string]interface{}) map[string]interface{} {
	if len(props) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, len(props))
	for key, value := range props {
		fields[strings.ToLower(key)] = value
	}
	return fields
}
