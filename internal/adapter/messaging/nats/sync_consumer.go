package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/northtrade/marketplace/ingestion-service/internal/platform/logger"
	"github.com/northtrade/marketplace/ingestion-service/internal/platform/metrics"
)

// Projector is the slice of SearchProjector the consumer needs.
type Projector interface {
	Sync(ctx context.Context, listingIDs []string) (int, error)
}

// Alerter notifies operators when sync retries are exhausted. Optional.
type Alerter interface {
	SendAlert(subject, body string) error
}

// SyncConsumer subscribes to search sync requests and runs the projector
// with bounded retries. Exhausted retries are logged, counted, and
// optionally mailed to ops; they are never surfaced to the ingestion
// caller, whose data is already durable.
type SyncConsumer struct {
	nc        *nats.Conn
	projector Projector
	retries   int
	logger    *logger.Logger
	metrics   *metrics.Manager
	alerter   Alerter
}

func NewSyncConsumer(nc *nats.Conn, projector Projector, retries int, log *logger.Logger, m *metrics.Manager, alerter Alerter) *SyncConsumer {
	if retries < 0 {
		retries = 0
	}
	return &SyncConsumer{
		nc:        nc,
		projector: projector,
		retries:   retries,
		logger:    log,
		metrics:   m,
		alerter:   alerter,
	}
}

func (c *SyncConsumer) Start(ctx context.Context) (*nats.Subscription, error) {
	sub, err := c.nc.Subscribe(SearchSyncSubject, func(msg *nats.Msg) {
		var req SyncRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			c.logger.Error("Failed to decode sync request", zap.Error(err))
			return
		}
		if len(req.ListingIDs) == 0 {
			return
		}
		go c.handle(ctx, req.ListingIDs)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", SearchSyncSubject, err)
	}
	c.logger.Info("Search sync consumer started", zap.String("subject", SearchSyncSubject))
	return sub, nil
}

func (c *SyncConsumer) handle(ctx context.Context, listingIDs []string) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(1<<(attempt-1)) * time.Second):
			}
		}

		count, err := c.projector.Sync(ctx, listingIDs)
		if err == nil {
			c.logger.Debug("Sync request handled",
				zap.Int("listing_ids", len(listingIDs)),
				zap.Int("documents", count),
				zap.Int("attempt", attempt+1))
			return
		}
		lastErr = err
		c.logger.Warn("Search sync attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Int("listing_ids", len(listingIDs)),
			zap.Error(err))
	}

	c.logger.Error("Search sync retries exhausted",
		zap.Int("listing_ids", len(listingIDs)),
		zap.Int("attempts", c.retries+1),
		zap.Error(lastErr))
	if c.metrics != nil {
		c.metrics.SyncFailuresTotal.Inc()
	}
	if c.alerter != nil {
		body := fmt.Sprintf("Search index sync failed after %d attempts for %d listings.\n\nLast error: %v\nListing ids: %v\n",
			c.retries+1, len(listingIDs), lastErr, listingIDs)
		if err := c.alerter.SendAlert("Search index sync failure", body); err != nil {
			c.logger.Warn("Failed to send sync failure alert", zap.Error(err))
		}
	}
}
