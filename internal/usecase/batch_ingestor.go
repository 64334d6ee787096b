package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/northtrade/marketplace/ingestion-service/internal/entity"
	"github.com/northtrade/marketplace/ingestion-service/internal/platform/logger"
	"github.com/northtrade/marketplace/ingestion-service/internal/platform/metrics"
)

// BatchIngestor runs a batch of external records through the reconciler
// under a bounded worker pool. Results are written by input index, so
// callers can always correlate results[i] with items[i]. One item's
// failure never touches its neighbours; the storage-level unique
// constraint arbitrates identity collisions between workers.
type BatchIngestor struct {
	reconciler  *ListingReconciler
	concurrency int
	logger      *logger.Logger
	metrics     *metrics.Manager
}

func NewBatchIngestor(reconciler *ListingReconciler, concurrency int, log *logger.Logger, m *metrics.Manager) *BatchIngestor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BatchIngestor{
		reconciler:  reconciler,
		concurrency: concurrency,
		logger:      log,
		metrics:     m,
	}
}

func (uc *BatchIngestor) Run(ctx context.Context, items []entity.ExternalRecord) []entity.BatchItemResult {
	start := time.Now()
	results := make([]entity.BatchItemResult, len(items))

	sem := make(chan struct{}, uc.concurrency)
	var wg sync.WaitGroup
	for i := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = uc.runOne(ctx, &items[i])
		}(i)
	}
	wg.Wait()

	if uc.metrics != nil {
		uc.metrics.BatchLatency.Observe(time.Since(start).Seconds())
	}
	uc.logger.Info("Batch ingestion finished",
		zap.Int("items", len(items)),
		zap.Duration("elapsed", time.Since(start)))
	return results
}

func (uc *BatchIngestor) runOne(ctx context.Context, item *entity.ExternalRecord) entity.BatchItemResult {
	outcome, listing, link, images, err := uc.reconciler.Reconcile(ctx, item)
	if err != nil {
		uc.logger.Error("Batch item failed reconciliation",
			zap.String("platform", item.External.Platform),
			zap.String("external_id", item.External.ExternalID),
			zap.Error(err))
		if uc.metrics != nil {
			uc.metrics.ItemErrorsTotal.Inc()
		}
		return entity.BatchItemResult{
			Action: entity.ActionError,
			Err:    err.Error(),
			Input:  item,
		}
	}

	if uc.metrics != nil {
		switch outcome {
		case OutcomeCreated:
			uc.metrics.ItemsCreatedTotal.Inc()
		case OutcomeUpdated:
			uc.metrics.ItemsUpdatedTotal.Inc()
		}
	}
	return entity.BatchItemResult{
		Action:  entity.BatchAction(outcome),
		Listing: listing,
		Link:    link,
		Images:  images,
	}
}

// SyncTargets collects the listing ids of successful results, in result
// order, without duplicates. These are the ids the search projector must
// refresh.
func SyncTargets(results []entity.BatchItemResult) []string {
	seen := make(map[string]struct{}, len(results))
	var ids []string
	for _, res := range results {
		if res.Action == entity.ActionError || res.Listing == nil {
			continue
		}
		if _, ok := seen[res.Listing.ID]; ok {
			continue
		}
		seen[res.Listing.ID] = struct{}{}
		ids = append(ids, res.Listing.ID)
	}
	return ids
}
