package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/northtrade/marketplace/ingestion-service/internal/entity"
	"github.com/northtrade/marketplace/ingestion-service/internal/platform/logger"
	"github.com/northtrade/marketplace/ingestion-service/internal/port/repository"
)

var ErrMissingExternalID = errors.New("external record has no external id")

type ReconcileOutcome string

const (
	OutcomeCreated ReconcileOutcome = "created"
	OutcomeUpdated ReconcileOutcome = "updated"
)

// ListingReconciler upserts one external record into the canonical store,
// keyed by (platform, external id). The external source is authoritative:
// repeat ingestion overwrites the listing's mutable fields.
type ListingReconciler struct {
	listings repository.ListingRepository
	links    repository.ExternalLinkRepository
	images   *ImageIngestor
	tx       repository.TxRunner
	logger   *logger.Logger
}

func NewListingReconciler(
	listings repository.ListingRepository,
	links repository.ExternalLinkRepository,
	images *ImageIngestor,
	tx repository.TxRunner,
	log *logger.Logger,
) *ListingReconciler {
	return &ListingReconciler{
		listings: listings,
		links:    links,
		images:   images,
		tx:       tx,
		logger:   log,
	}
}

// Reconcile finds or creates the canonical listing for item and returns
// the outcome with the full payload. Write failures propagate to the
// caller; per-image failures do not.
func (uc *ListingReconciler) Reconcile(ctx context.Context, item *entity.ExternalRecord) (ReconcileOutcome, *entity.Listing, *entity.ExternalLink, []entity.ListingImage, error) {
	if item.External.ExternalID == "" {
		return "", nil, nil, nil, ErrMissingExternalID
	}

	link, err := uc.links.FindBySource(ctx, item.External.Platform, item.External.ExternalID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", nil, nil, nil, fmt.Errorf("ListingReconciler.Reconcile: lookup failed: %w", err)
	}
	if link != nil {
		return uc.update(ctx, link, item)
	}

	outcome, listing, newLink, images, err := uc.create(ctx, item)
	if errors.Is(err, repository.ErrDuplicateExternalID) {
		// Lost the check-then-act race: another writer inserted this
		// identity between our lookup and insert. The unique constraint is
		// the real arbiter, so re-read and take the update path.
		uc.logger.Info("Insert lost uniqueness race, retrying as update",
			zap.String("platform", item.External.Platform),
			zap.String("external_id", item.External.ExternalID))
		link, lookupErr := uc.links.FindBySource(ctx, item.External.Platform, item.External.ExternalID)
		if lookupErr != nil {
			return "", nil, nil, nil, fmt.Errorf("ListingReconciler.Reconcile: re-lookup after duplicate insert failed: %w", lookupErr)
		}
		return uc.update(ctx, link, item)
	}
	return outcome, listing, newLink, images, err
}

func (uc *ListingReconciler) create(ctx context.Context, item *entity.ExternalRecord) (ReconcileOutcome, *entity.Listing, *entity.ExternalLink, []entity.ListingImage, error) {
	now := time.Now()
	createdAt := now
	if item.CreatedAt != nil {
		createdAt = *item.CreatedAt
	}

	listing := &entity.Listing{
		PublicID:    uuid.New().String(),
		CategoryID:  item.SubCategoryID,
		Title:       item.Title,
		Description: item.Description,
		Price:       priceOrZero(item.Price),
		Properties:  item.Properties,
		Status:      statusOrActive(item.Status),
		CreatedAt:   createdAt,
		UpdatedAt:   now,
	}
	link := &entity.ExternalLink{
		Platform:       item.External.Platform,
		ExternalID:     item.External.ExternalID,
		URL:            item.External.URL,
		Meta:           item.External.Meta,
		SellerUsername: item.External.SellerUsername,
		SellerRating:   item.External.SellerRating,
		SellerReviews:  item.External.SellerReviews,
		PostalCode:     item.External.PostalCode,
		FirstSeenAt:    now,
		LastSyncedAt:   now,
	}

	insert := func(txCtx context.Context) error {
		listingID, err := uc.listings.Create(txCtx, listing)
		if err != nil {
			return fmt.Errorf("failed to create canonical listing: %w", err)
		}
		listing.ID = listingID
		link.ListingID = listingID

		linkID, err := uc.links.Create(txCtx, link)
		if err != nil {
			return err
		}
		link.ID = linkID
		return nil
	}

	var err error
	if uc.tx != nil {
		err = uc.tx.WithTransaction(ctx, insert)
	} else {
		err = insert(ctx)
	}
	if err != nil {
		return "", nil, nil, nil, err
	}

	uc.logger.Info("Created canonical listing from external record",
		zap.String("listing_id", listing.ID),
		zap.String("platform", link.Platform),
		zap.String("external_id", link.ExternalID))

	images := uc.images.Ingest(ctx, listing.ID, item.External.ImageURLs)
	return OutcomeCreated, listing, link, images, nil
}

func (uc *ListingReconciler) update(ctx context.Context, link *entity.ExternalLink, item *entity.ExternalRecord) (ReconcileOutcome, *entity.Listing, *entity.ExternalLink, []entity.ListingImage, error) {
	listing, err := uc.listings.FindByID(ctx, link.ListingID)
	if err != nil {
		return "", nil, nil, nil, fmt.Errorf("ListingReconciler.update: failed to load listing %s: %w", link.ListingID, err)
	}

	now := time.Now()
	listing.CategoryID = item.SubCategoryID
	listing.Title = item.Title
	listing.Description = item.Description
	listing.Price = priceOrZero(item.Price)
	listing.Properties = item.Properties
	listing.Status = statusOrActive(item.Status)
	listing.UpdatedAt = now

	if err := uc.listings.Update(ctx, listing); err != nil {
		return "", nil, nil, nil, fmt.Errorf("ListingReconciler.update: failed to update listing %s: %w", listing.ID, err)
	}

	link.URL = item.External.URL
	link.Meta = item.External.Meta
	link.SellerUsername = item.External.SellerUsername
	link.SellerRating = item.External.SellerRating
	link.SellerReviews = item.External.SellerReviews
	link.PostalCode = item.External.PostalCode
	link.LastSyncedAt = now

	if err := uc.links.Update(ctx, link); err != nil {
		return "", nil, nil, nil, fmt.Errorf("ListingReconciler.update: failed to update external link %s: %w", link.ID, err)
	}

	uc.logger.Debug("Re-synced canonical listing from external record",
		zap.String("listing_id", listing.ID),
		zap.String("platform", link.Platform),
		zap.String("external_id", link.ExternalID))

	images := uc.images.Ingest(ctx, listing.ID, item.External.ImageURLs)
	return OutcomeUpdated, listing, link, images, nil
}

func priceOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func statusOrActive(s entity.ListingStatus) entity.ListingStatus {
	if s == "" {
		return entity.StatusActive
	}
	return s
}
