package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/northtrade/marketplace/ingestion-service/internal/entity"
	"github.com/northtrade/marketplace/ingestion-service/internal/port/geo"
)

type MockListingRepository struct{ mock.Mock }

func (m *MockListingRepository) Create(ctx context.Context, listing *entity.Listing) (string, error) {
	args := m.Called(ctx, listing)
	return args.String(0), args.Error(1)
}
func (m *MockListingRepository) Update(ctx context.Context, listing *entity.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}
func (m *MockListingRepository) FindByID(ctx context.Context, id string) (*entity.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Listing), args.Error(1)
}

type MockLinkRepository struct{ mock.Mock }

func (m *MockLinkRepository) Create(ctx context.Context, link *entity.ExternalLink) (string, error) {
	args := m.Called(ctx, link)
	return args.String(0), args.Error(1)
}
func (m *MockLinkRepository) Update(ctx context.Context, link *entity.ExternalLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}
func (m *MockLinkRepository) FindBySource(ctx context.Context, platform, externalID string) (*entity.ExternalLink, error) {
	args := m.Called(ctx, platform, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ExternalLink), args.Error(1)
}
func (m *MockLinkRepository) FindByListingID(ctx context.Context, listingID string) (*entity.ExternalLink, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ExternalLink), args.Error(1)
}

type MockImageRepository struct{ mock.Mock }

func (m *MockImageRepository) Create(ctx context.Context, image *entity.ListingImage) (string, error) {
	args := m.Called(ctx, image)
	return args.String(0), args.Error(1)
}
func (m *MockImageRepository) ListByListing(ctx context.Context, listingID string) ([]entity.ListingImage, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ListingImage), args.Error(1)
}

type MockImageFetcher struct{ mock.Mock }

func (m *MockImageFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

type MockObjectStorage struct{ mock.Mock }

func (m *MockObjectStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

type MockGeoResolver struct{ mock.Mock }

func (m *MockGeoResolver) Resolve(postalCode string) (geo.Location, bool) {
	args := m.Called(postalCode)
	return args.Get(0).(geo.Location), args.Bool(1)
}

type MockSearchIndex struct{ mock.Mock }

func (m *MockSearchIndex) Upsert(ctx context.Context, docs []entity.SearchDocument) error {
	args := m.Called(ctx, docs)
	return args.Error(0)
}

type staticTaxonomy map[string]string

func (t staticTaxonomy) Exists(subCategoryID string) bool {
	_, ok := t[subCategoryID]
	return ok
}
func (t staticTaxonomy) Path(subCategoryID string) string {
	return t[subCategoryID]
}
