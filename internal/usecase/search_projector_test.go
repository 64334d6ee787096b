package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/northtrade/marketplace/ingestion-service/internal/entity"
	"github.com/northtrade/marketplace/ingestion-service/internal/platform/logger"
	"github.com/northtrade/marketplace/ingestion-service/internal/port/geo"
	"github.com/northtrade/marketplace/ingestion-service/internal/port/repository"
)

type projectorFixture struct {
	listings *MockListingRepository
	links    *MockLinkRepository
	images   *MockImageRepository
	geo      *MockGeoResolver
	index    *MockSearchIndex
	uc       *SearchProjector
}

func newProjectorFixture() *projectorFixture {
	f := &projectorFixture{
		listings: new(MockListingRepository),
		links:    new(MockLinkRepository),
		images:   new(MockImageRepository),
		geo:      new(MockGeoResolver),
		index:    new(MockSearchIndex),
	}
	tax := staticTaxonomy{"optics:scopes": "optics/scopes"}
	f.uc = NewSearchProjector(
		f.listings, f.links, f.images, f.geo, tax, f.index, logger.NewNop(), nil)
	return f
}

func TestSearchProjector_BuildsDenormalizedDocument(t *testing.T) {
	f := newProjectorFixture()
	ctx := context.Background()

	listing := &entity.Listing{
		ID:          "L1",
		PublicID:    "pub-1",
		CategoryID:  "optics:scopes",
		Title:       "Vortex Viper",
		Description: "<p>Glass is mint.</p><p>Ships fast &amp; insured.</p>",
		Price:       1299.99,
		Properties:  map[string]interface{}{"Magnification": "5-25x", "Tube": "30mm"},
		Status:      entity.StatusActive,
		CreatedAt:   time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2025, 11, 4, 9, 0, 0, 0, time.UTC),
	}
	link := &entity.ExternalLink{
		ID: "LN1", ListingID: "L1", PostalCode: "M5V 2T6",
		SellerUsername: "northhunter", SellerRating: 4.8, SellerReviews: 41,
	}
	location := geo.Location{
		Point:    entity.GeoPoint{Lat: 43.645, Lon: -79.395},
		Province: "Ontario",
		City:     "Toronto",
	}

	f.listings.On("FindByID", ctx, "L1").Return(listing, nil).Once()
	f.links.On("FindByListingID", ctx, "L1").Return(link, nil).Once()
	f.geo.On("Resolve", "M5V 2T6").Return(location, true).Once()
	f.images.On("ListByListing", ctx, "L1").Return([]entity.ListingImage{
		{ID: "i1"}, {ID: "i2"},
	}, nil).Once()

	var written []entity.SearchDocument
	f.index.On("Upsert", ctx, mock.AnythingOfType("[]entity.SearchDocument")).
		Run(func(args mock.Arguments) {
			written = args.Get(1).([]entity.SearchDocument)
		}).Return(nil).Once()

	count, err := f.uc.Sync(ctx, []string{"L1"})

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, written, 1)
	doc := written[0]
	assert.Equal(t, "L1", doc.ID)
	assert.Equal(t, "optics/scopes", doc.CategoryPath)
	assert.Equal(t, "Glass is mint.\nShips fast & insured.", doc.Description)
	assert.Equal(t, "Toronto", doc.City)
	assert.Equal(t, "Ontario", doc.Province)
	assert.Equal(t, 43.645, doc.Location.Lat)
	assert.True(t, doc.HasImages)
	assert.Equal(t, 2, doc.ImageCount)
	assert.Equal(t, "northhunter", doc.SellerUsername)
	assert.Equal(t, map[string]interface{}{"magnification": "5-25x", "tube": "30mm"}, doc.Fields)
}

func TestSearchProjector_UnresolvableLocationExcludesListing(t *testing.T) {
	f := newProjectorFixture()
	ctx := context.Background()

	listing := &entity.Listing{ID: "L1", CategoryID: "optics:scopes"}
	link := &entity.ExternalLink{ID: "LN1", ListingID: "L1", PostalCode: "X9X 9X9"}

	f.listings.On("FindByID", ctx, "L1").Return(listing, nil).Once()
	f.links.On("FindByListingID", ctx, "L1").Return(link, nil).Once()
	f.geo.On("Resolve", "X9X 9X9").Return(geo.Location{}, false).Once()

	count, err := f.uc.Sync(ctx, []string{"L1"})

	require.NoError(t, err, "an unresolvable location is not an error")
	assert.Equal(t, 0, count)
	f.index.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSearchProjector_VanishedListingIsSkipped(t *testing.T) {
	f := newProjectorFixture()
	ctx := context.Background()

	f.listings.On("FindByID", ctx, "gone").Return(nil, repository.ErrNotFound).Once()

	count, err := f.uc.Sync(ctx, []string{"gone"})

	require.NoError(t, err)
	assert.Equal(t, 0, count)
	f.index.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSearchProjector_IndexFailureFailsSync(t *testing.T) {
	f := newProjectorFixture()
	ctx := context.Background()

	listing := &entity.Listing{ID: "L1", CategoryID: "optics:scopes"}
	f.listings.On("FindByID", ctx, "L1").Return(listing, nil).Once()
	f.links.On("FindByListingID", ctx, "L1").Return(nil, repository.ErrNotFound).Once()
	f.geo.On("Resolve", "").Return(geo.Location{Province: "Ontario"}, true).Once()
	f.images.On("ListByListing", ctx, "L1").Return([]entity.ListingImage{}, nil).Once()
	f.index.On("Upsert", ctx, mock.AnythingOfType("[]entity.SearchDocument")).
		Return(errors.New("index unavailable")).Once()

	count, err := f.uc.Sync(ctx, []string{"L1"})

	assert.ErrorContains(t, err, "index upsert failed")
	assert.Equal(t, 0, count)
}

func TestSearchProjector_RepositoryFailureFailsSync(t *testing.T) {
	f := newProjectorFixture()
	ctx := context.Background()

	f.listings.On("FindByID", ctx, "L1").Return(nil, errors.New("db down")).Once()

	_, err := f.uc.Sync(ctx, []string{"L1"})

	assert.ErrorContains(t, err, "failed to build document")
	f.index.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}
