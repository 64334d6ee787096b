package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/northtrade/marketplace/ingestion-service/internal/config"
	"github.com/northtrade/marketplace/ingestion-service/internal/entity"
	"github.com/northtrade/marketplace/ingestion-service/internal/platform/logger"
)

const (
	docKeyPrefix = "search:doc:"
	geoSetKey    = "search:geo"
)

// Index stores search documents in Redis: the document body as JSON under
// search:doc:{id} and the geo point in one GEO set keyed by listing id.
// SET plus GEOADD gives insert-or-replace semantics per document id.
type Index struct {
	client *redis.Client
	logger *logger.Logger
}

func NewClient(cfg *config.RedisConfig, log *logger.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Address, err)
	}
	log.Info("Successfully connected to Redis", zap.String("address", cfg.Address))
	return rdb, nil
}

func NewIndex(client *redis.Client, log *logger.Logger) *Index {
	return &Index{client: client, logger: log}
}

// Upsert writes every document and its geo point in one pipeline. A
// pipeline failure fails the whole call; the documents are regenerated on
// the next sync, so no partial-write cleanup is attempted.
func (i *Index) Upsert(ctx context.Context, docs []entity.SearchDocument) error {
	if len(docs) == 0 {
		return nil
	}

	pipe := i.client.TxPipeline()
	for _, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal search document %s: %w", doc.ID, err)
		}
		pipe.Set(ctx, docKeyPrefix+doc.ID, data, 0)
		pipe.GeoAdd(ctx, geoSetKey, &redis.GeoLocation{
			Name:      doc.ID,
			Longitude: doc.Location.Lon,
			Latitude:  doc.Location.Lat,
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		i.logger.Error("Redis search index pipeline failed", zap.Int("docs", len(docs)), zap.Error(err))
		return fmt.Errorf("failed to upsert %d search documents: %w", len(docs), err)
	}

	i.logger.Debug("Search documents upserted", zap.Int("docs", len(docs)))
	return nil
}
