package geo

import "github.com/northtrade/marketplace/ingestion-service/internal/entity"

type Location struct {
	Point    entity.GeoPoint
	Province string
	City     string
}

// Resolver maps a postal code to a geographic location. The second return
// is false when the code does not resolve; callers treat that as "exclude
// from the index", never as an error.
type Resolver interface {
	Resolve(postalCode string) (Location, bool)
}
