package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northtrade/marketplace/ingestion-service/internal/adapter/taxonomy"
	"github.com/northtrade/marketplace/ingestion-service/internal/entity"
	"github.com/northtrade/marketplace/ingestion-service/internal/platform/logger"
	"github.com/northtrade/marketplace/ingestion-service/internal/port/repository"
	"github.com/northtrade/marketplace/ingestion-service/internal/usecase"
)

const testSecret = "test-ingest-key"

// In-memory repositories backing the handler tests. They implement just
// enough behavior for the upsert flow, including the unique-identity
// lookup and an optional per-title write failure.

type fakeListingRepo struct {
	mu        sync.Mutex
	listings  map[string]*entity.Listing
	nextID    int
	failTitle string
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{listings: make(map[string]*entity.Listing)}
}

func (r *fakeListingRepo) Create(ctx context.Context, listing *entity.Listing) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failTitle != "" && listing.Title == r.failTitle {
		return "", errors.New("write concern failed")
	}
	r.nextID++
	id := fmt.Sprintf("L%d", r.nextID)
	stored := *listing
	stored.ID = id
	r.listings[id] = &stored
	return id, nil
}

func (r *fakeListingRepo) Update(ctx context.Context, listing *entity.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *listing
	r.listings[listing.ID] = &stored
	return nil
}

func (r *fakeListingRepo) FindByID(ctx context.Context, id string) (*entity.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.listings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := *listing
	return &found, nil
}

type fakeLinkRepo struct {
	mu     sync.Mutex
	links  map[string]*entity.ExternalLink // keyed by platform/externalID
	nextID int
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: make(map[string]*entity.ExternalLink)}
}

func linkKey(platform, externalID string) string {
	return platform + "/" + externalID
}

func (r *fakeLinkRepo) Create(ctx context.Context, link *entity.ExternalLink) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := linkKey(link.Platform, link.ExternalID)
	if _, exists := r.links[key]; exists {
		return "", repository.ErrDuplicateExternalID
	}
	r.nextID++
	id := fmt.Sprintf("LN%d", r.nextID)
	stored := *link
	stored.ID = id
	r.links[key] = &stored
	return id, nil
}

func (r *fakeLinkRepo) Update(ctx context.Context, link *entity.ExternalLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *link
	r.links[linkKey(link.Platform, link.ExternalID)] = &stored
	return nil
}

func (r *fakeLinkRepo) FindBySource(ctx context.Context, platform, externalID string) (*entity.ExternalLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[linkKey(platform, externalID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := *link
	return &found, nil
}

func (r *fakeLinkRepo) FindByListingID(ctx context.Context, listingID string) (*entity.ExternalLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, link := range r.links {
		if link.ListingID == listingID {
			found := *link
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeImageRepo struct{}

func (r *fakeImageRepo) Create(ctx context.Context, image *entity.ListingImage) (string, error) {
	return "I1", nil
}

func (r *fakeImageRepo) ListByListing(ctx context.Context, listingID string) ([]entity.ListingImage, error) {
	return nil, nil
}

type recordingTrigger struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (t *recordingTrigger) TriggerSync(ctx context.Context, listingIDs []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ids = append(t.ids, listingIDs...)
	return t.err
}

type handlerFixture struct {
	listings *fakeListingRepo
	links    *fakeLinkRepo
	trigger  *recordingTrigger
	router   http.Handler
}

func newHandlerFixture() *handlerFixture {
	log := logger.NewNop()
	f := &handlerFixture{
		listings: newFakeListingRepo(),
		links:    newFakeLinkRepo(),
		trigger:  &recordingTrigger{},
	}
	imageIngestor := usecase.NewImageIngestor(nil, nil, &fakeImageRepo{}, "test", log, nil)
	reconciler := usecase.NewListingReconciler(f.listings, f.links, imageIngestor, nil, log)
	batch := usecase.NewBatchIngestor(reconciler, 1, log, nil)
	handler := NewIngestHandler(batch, f.trigger, taxonomy.NewStaticLookup(), log)
	f.router = NewRouter(handler, testSecret, log)
	return f
}

func (f *handlerFixture) post(t *testing.T, body string, withKey bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/external-listings", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if withKey {
		req.Header.Set(IngestKeyHeader, testSecret)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func validItemJSON(externalID, title string) string {
	return fmt.Sprintf(`{
		"subCategoryId": "optics:scopes",
		"title": %q,
		"price": 450,
		"external": {"platform": "gunpost", "externalId": %q, "postalCode": "M5V 2T6"}
	}`, title, externalID)
}

func TestHandleIngest_RejectsMissingKey(t *testing.T) {
	f := newHandlerFixture()

	rec := f.post(t, "["+validItemJSON("gp-1", "Scope")+"]", false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
	assert.Empty(t, f.links.links, "nothing is written without authentication")
}

func TestHandleIngest_RejectsMalformedBody(t *testing.T) {
	f := newHandlerFixture()

	rec := f.post(t, `{"not": "an array"`, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request body")
}

func TestHandleIngest_ValidationFailuresListEveryField(t *testing.T) {
	f := newHandlerFixture()

	body := `[
		{"subCategoryId": "vehicles:boats", "title": "Boat", "external": {"platform": "gunpost", "externalId": "gp-1"}},
		{"subCategoryId": "optics:scopes", "title": ""}
	]`
	rec := f.post(t, body, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Success bool         `json:"success"`
		Error   string       `json:"error"`
		Details []fieldError `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "validation failed", resp.Error)
	require.Len(t, resp.Details, 3)
	assert.Equal(t, 0, resp.Details[0].Index)
	assert.Equal(t, "subCategoryId", resp.Details[0].Field)
	assert.Equal(t, 1, resp.Details[1].Index)
	assert.Equal(t, "title", resp.Details[1].Field)
	assert.Equal(t, "external", resp.Details[2].Field)
	assert.Empty(t, f.links.links, "nothing is processed when validation fails")
}

func TestHandleIngest_CreatesAndTriggersSync(t *testing.T) {
	f := newHandlerFixture()

	rec := f.post(t, "["+validItemJSON("gp-1", "Vortex Viper")+"]", true)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ingestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Processed)
	require.Len(t, resp.Results, 1)
	res := resp.Results[0]
	assert.Equal(t, "created", res.Action)
	require.NotNil(t, res.Listing)
	assert.Equal(t, "Vortex Viper", res.Listing.Title)
	assert.Equal(t, "active", res.Listing.Status)
	assert.NotEmpty(t, res.Listing.PublicID)
	require.NotNil(t, res.ExternalListing)
	assert.Equal(t, "gp-1", res.ExternalListing.ExternalID)
	assert.Nil(t, res.Input)

	assert.Equal(t, []string{res.Listing.ID}, f.trigger.ids)
}

func TestHandleIngest_ReingestUpdates(t *testing.T) {
	f := newHandlerFixture()

	rec := f.post(t, "["+validItemJSON("gp-1", "Original title")+"]", true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.post(t, "["+validItemJSON("gp-1", "Corrected title")+"]", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ingestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "updated", resp.Results[0].Action)
	assert.Equal(t, "Corrected title", resp.Results[0].Listing.Title)

	assert.Len(t, f.listings.listings, 1, "re-ingesting the same identity never duplicates")
}

func TestHandleIngest_FailedItemEchoesInput(t *testing.T) {
	f := newHandlerFixture()
	f.listings.failTitle = "Cursed item"

	body := "[" + strings.Join([]string{
		validItemJSON("gp-1", "Good item"),
		validItemJSON("gp-2", "Cursed item"),
	}, ",") + "]"
	rec := f.post(t, body, true)

	require.Equal(t, http.StatusOK, rec.Code, "partial failure is still a 200")

	var resp ingestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Results, 2)

	assert.Equal(t, "created", resp.Results[0].Action)

	failed := resp.Results[1]
	assert.Equal(t, "error", failed.Action)
	assert.Contains(t, failed.Error, "write concern failed")
	assert.Nil(t, failed.Listing)
	require.NotNil(t, failed.Input, "failed items echo the submitted payload")
	assert.Equal(t, "Cursed item", failed.Input.Title)

	assert.Len(t, f.trigger.ids, 1, "only successful listings are synced")
}

func TestHandleIngest_SyncFailureDoesNotFailResponse(t *testing.T) {
	f := newHandlerFixture()
	f.trigger.err = errors.New("broker unavailable")

	rec := f.post(t, "["+validItemJSON("gp-1", "Scope")+"]", true)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ingestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "created", resp.Results[0].Action)
}

func TestHandleHealth(t *testing.T) {
	f := newHandlerFixture()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
