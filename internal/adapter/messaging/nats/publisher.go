package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/northtrade/marketplace/ingestion-service/internal/config"
	"github.com/northtrade/marketplace/ingestion-service/internal/platform/logger"
)

// SearchSyncSubject carries the ids of listings whose search documents
// need refreshing. Publishing here decouples index sync from the
// user-facing ingestion response: a broken index never fails a batch that
// was durably ingested.
const SearchSyncSubject = "listing.search.sync"

type SyncRequest struct {
	ListingIDs []string `json:"listing_ids"`
}

type Publisher struct {
	nc     *nats.Conn
	logger *logger.Logger
}

func Connect(cfg *config.NATSConfig, log *logger.Logger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Timeout(cfg.ConnectTimeout),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			log.Error("NATS error", zap.String("subject", subject), zap.Error(err))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Info("Successfully connected to NATS", zap.String("url", nc.ConnectedUrl()))
	return nc, nil
}

func NewPublisher(nc *nats.Conn, log *logger.Logger) *Publisher {
	return &Publisher{nc: nc, logger: log}
}

// TriggerSync publishes a sync request for the given listing ids.
func (p *Publisher) TriggerSync(ctx context.Context, listingIDs []string) error {
	data, err := json.Marshal(SyncRequest{ListingIDs: listingIDs})
	if err != nil {
		return fmt.Errorf("failed to marshal sync request for %s: %w", SearchSyncSubject, err)
	}

	if err := p.nc.Publish(SearchSyncSubject, data); err != nil {
		p.logger.Error("Failed to publish NATS message",
			zap.String("subject", SearchSyncSubject),
			zap.Int("listing_ids", len(listingIDs)),
			zap.Error(err))
		return fmt.Errorf("failed to publish NATS message for %s: %w", SearchSyncSubject, err)
	}
	p.logger.Info("Published search sync request",
		zap.String("subject", SearchSyncSubject),
		zap.Int("listing_ids", len(listingIDs)))
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil && !p.nc.IsClosed() {
		if err := p.nc.Drain(); err != nil {
			p.logger.Error("Error draining NATS connection", zap.Error(err))
		}
		p.nc.Close()
		p.logger.Info("NATS publisher connection closed")
	}
}
