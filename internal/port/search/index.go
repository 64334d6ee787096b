package search

import (
	"context"

	"github.com/northtrade/marketplace/ingestion-service/internal/entity"
)

// Index is the search engine boundary. Upsert replaces documents by id;
// it never appends.
type Index interface {
	Upsert(ctx context.Context, docs []entity.SearchDocument) error
}
