package entity

import "time"

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// SearchDocument is the denormalized, index-only projection of a listing.
// It is entirely derived and regenerated on every sync; absence from the
// index (no resolvable location) is a valid state, not an error.
type SearchDocument struct {
	ID             string                 `json:"id"`
	PublicID       string                 `json:"public_id"`
	CategoryID     string                 `json:"category_id"`
	CategoryPath   string                 `json:"category_path"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"` // plain text
	Price          float64                `json:"price"`
	Status         string                 `json:"status"`
	SellerUsername string                 `json:"seller_username,omitempty"`
	SellerRating   float64                `json:"seller_rating,omitempty"`
	SellerReviews  int                    `json:"seller_reviews,omitempty"`
	Location       GeoPoint               `json:"location"`
	Province       string                 `json:"province,omitempty"`
	City           string                 `json:"city,omitempty"`
	HasImages      bool                   `json:"has_images"`
	ImageCount     int                    `json:"image_count"`
	Fields         map[string]interface{} `json:"fields,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}
