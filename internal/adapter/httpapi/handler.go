package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/northtrade/marketplace/ingestion-service/internal/entity"
	"github.com/northtrade/marketplace/ingestion-service/internal/platform/logger"
	"github.com/northtrade/marketplace/ingestion-service/internal/port/taxonomy"
	"github.com/northtrade/marketplace/ingestion-service/internal/usecase"
)

const (
	maxTitleLength = 255
	maxURLLength   = 2048
)

// SyncTrigger kicks off search projection for the given listing ids after
// a batch. Implementations: the NATS publisher (decoupled) and
// DirectSyncTrigger (in-process, for deployments without a broker).
type SyncTrigger interface {
	TriggerSync(ctx context.Context, listingIDs []string) error
}

// DirectSyncTrigger runs the projector inline. A projection failure is
// the trigger's problem, never the ingestion response's.
type DirectSyncTrigger struct {
	Projector *usecase.SearchProjector
}

func (t *DirectSyncTrigger) TriggerSync(ctx context.Context, listingIDs []string) error {
	_, err := t.Projector.Sync(ctx, listingIDs)
	return err
}

type IngestHandler struct {
	batch    *usecase.BatchIngestor
	trigger  SyncTrigger
	taxonomy taxonomy.Lookup
	logger   *logger.Logger
}

func NewIngestHandler(batch *usecase.BatchIngestor, trigger SyncTrigger, taxonomyLookup taxonomy.Lookup, log *logger.Logger) *IngestHandler {
	return &IngestHandler{
		batch:    batch,
		trigger:  trigger,
		taxonomy: taxonomyLookup,
		logger:   log,
	}
}

// HandleIngest accepts a batch of external listings, validates the whole
// payload before any processing, runs the batch, and triggers search sync
// for the successful ids.
func (h *IngestHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	var items []ingestItemRequest
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   fmt.Sprintf("invalid request body: %v", err),
		})
		return
	}

	validationErrors := h.validate(items)
	if len(validationErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "validation failed",
			"details": validationErrors,
		})
		return
	}

	records := make([]entity.ExternalRecord, len(items))
	for i := range items {
		records[i] = toExternalRecord(&items[i])
	}

	results := h.batch.Run(r.Context(), records)

	if ids := usecase.SyncTargets(results); len(ids) > 0 && h.trigger != nil {
		// Sync is best-effort from the endpoint's perspective: the batch is
		// already durable, so a trigger failure is logged, not returned.
		if err := h.trigger.TriggerSync(r.Context(), ids); err != nil {
			h.logger.Warn("Failed to trigger search sync",
				zap.Int("listing_ids", len(ids)), zap.Error(err))
		}
	}

	resp := ingestResponse{
		Success:   true,
		Processed: len(results),
		Results:   make([]itemResultResponse, len(results)),
	}
	for i, res := range results {
		item := itemResultResponse{
			Action:          string(res.Action),
			Listing:         toListingResponse(res.Listing),
			ExternalListing: toExternalListingResponse(res.Link),
			Images:          toImageResponses(res.Images),
			Error:           res.Err,
		}
		if res.Action == entity.ActionError {
			item.Input = &items[i]
		}
		resp.Results[i] = item
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *IngestHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *IngestHandler) validate(items []ingestItemRequest) []fieldError {
	var errs []fieldError
	add := func(index int, field, message string) {
		errs = append(errs, fieldError{Index: index, Field: field, Message: message})
	}

	for i := range items {
		item := &items[i]
		if item.SubCategoryID == "" {
			add(i, "subCategoryId", "is required")
		} else if !h.taxonomy.Exists(item.SubCategoryID) {
			add(i, "subCategoryId", fmt.Sprintf("unknown category %q", item.SubCategoryID))
		}
		if item.Title == "" {
			add(i, "title", "is required")
		} else if len(item.Title) > maxTitleLength {
			add(i, "title", fmt.Sprintf("must be at most %d characters", maxTitleLength))
		}
		if item.Price != nil && *item.Price < 0 {
			add(i, "price", "must not be negative")
		}
		if item.Status != "" && !entity.ValidStatus(entity.ListingStatus(item.Status)) {
			add(i, "status", fmt.Sprintf("unknown status %q", item.Status))
		}
		if item.CreatedAt != "" {
			if _, err := time.Parse(time.RFC3339, item.CreatedAt); err != nil {
				add(i, "createdAt", "must be an RFC 3339 timestamp")
			}
		}

		if item.External == nil {
			add(i, "external", "is required")
			continue
		}
		if item.External.Platform == "" {
			add(i, "external.platform", "is required")
		}
		if item.External.ExternalID == "" {
			add(i, "external.externalId", "is required")
		}
		if len(item.External.URL) > maxURLLength {
			add(i, "external.url", fmt.Sprintf("must be at most %d characters", maxURLLength))
		}
		if item.External.ImageURLs != nil && len(item.External.ImageURLs) == 0 {
			add(i, "external.imageUrls", "must contain at least one URL when present")
		}
		for j, u := range item.External.ImageURLs {
			if u == "" {
				add(i, fmt.Sprintf("external.imageUrls[%d]", j), "must not be empty")
			}
		}
	}
	return errs
}

func toExternalRecord(item *ingestItemRequest) entity.ExternalRecord {
	record := entity.ExternalRecord{
		SubCategoryID: item.SubCategoryID,
		Title:         item.Title,
		Description:   item.Description,
		Price:         item.Price,
		Properties:    item.Properties,
		Status:        entity.ListingStatus(item.Status),
		External: entity.ExternalSource{
			Platform:       item.External.Platform,
			ExternalID:     item.External.ExternalID,
			URL:            item.External.URL,
			Meta:           item.External.Meta,
			ImageURLs:      item.External.ImageURLs,
			PostalCode:     item.External.PostalCode,
			SellerUsername: item.External.SellerUsername,
			SellerRating:   item.External.SellerRating,
			SellerReviews:  item.External.SellerReviews,
		},
	}
	if item.CreatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, item.CreatedAt); err == nil {
			record.CreatedAt = &ts
		}
	}
	return record
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
