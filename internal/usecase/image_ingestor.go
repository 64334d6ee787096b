package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/northtrade/marketplace/ingestion-service/internal/entity"
	"github.com/northtrade/marketplace/ingestion-service/internal/platform/logger"
	"github.com/northtrade/marketplace/ingestion-service/internal/platform/metrics"
	"github.com/northtrade/marketplace/ingestion-service/internal/port/fetch"
	"github.com/northtrade/marketplace/ingestion-service/internal/port/repository"
	"github.com/northtrade/marketplace/ingestion-service/internal/port/storage"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageIngestor fetches, deduplicates, and stores candidate images for one
// listing. A failure on one image never aborts the others, and it never
// fails the listing-level result.
type ImageIngestor struct {
	fetcher fetch.ImageFetcher
	storage storage.ObjectStorage
	images  repository.ImageRepository
	env     string
	logger  *logger.Logger
	metrics *metrics.Manager
}

func NewImageIngestor(
	fetcher fetch.ImageFetcher,
	objectStorage storage.ObjectStorage,
	images repository.ImageRepository,
	env string,
	log *logger.Logger,
	m *metrics.Manager,
) *ImageIngestor {
	return &ImageIngestor{
		fetcher: fetcher,
		storage: objectStorage,
		images:  images,
		env:     env,
		logger:  log,
		metrics: m,
	}
}

// Ingest processes candidate URLs in input order and returns only the
// images created during this call. Already-known URLs are skipped silently;
// per-image failures are logged and skipped. Display order continues from
// the count of existing image rows, recomputed once per call, so numbering
// is append-only even across separate ingestion calls.
func (uc *ImageIngestor) Ingest(ctx context.Context, listingID string, candidateURLs []string) []entity.ListingImage {
	existing, err := uc.images.ListByListing(ctx, listingID)
	if err != nil {
		uc.logger.Error("Failed to load existing images, skipping image ingestion",
			zap.String("listing_id", listingID), zap.Error(err))
		return nil
	}

	known := make(map[string]struct{}, len(existing))
	for _, img := range existing {
		if img.SourceURL != "" && img.SourceURL != entity.ManualUploadToken {
			known[img.SourceURL] = struct{}{}
		}
	}
	nextOrder := len(existing)

	var created []entity.ListingImage
	for _, url := range candidateURLs {
		if _, ok := known[url]; ok {
			continue
		}

		img, err := uc.ingestOne(ctx, listingID, url, nextOrder)
		if err != nil {
			uc.logger.Warn("Skipping candidate image",
				zap.String("listing_id", listingID), zap.String("url", url), zap.Error(err))
			if uc.metrics != nil {
				uc.metrics.ImageFailuresTotal.Inc()
			}
			continue
		}

		created = append(created, *img)
		known[url] = struct{}{}
		nextOrder++
		if uc.metrics != nil {
			uc.metrics.ImagesStoredTotal.Inc()
		}
	}

	return created
}

func (uc *ImageIngestor) ingestOne(ctx context.Context, listingID, url string, displayOrder int) (*entity.ListingImage, error) {
	data, contentType, err := uc.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("unsupported content type %q for image at %s", contentType, url)
	}

	key := fmt.Sprintf("%s/listings/%s%s", uc.env, uuid.New().String(), ext)
	if err := uc.storage.Put(ctx, key, data, contentType); err != nil {
		return nil, err
	}

	img := &entity.ListingImage{
		ListingID:    listingID,
		StorageKey:   key,
		SourceURL:    url,
		ContentType:  contentType,
		DisplayOrder: displayOrder,
		Status:       entity.ImageUploaded,
		CreatedAt:    time.Now(),
	}
	id, err := uc.images.Create(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("failed to persist image record for %s: %w", url, err)
	}
	img.ID = id
	return img, nil
}
