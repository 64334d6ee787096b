package postal

import (
	"strings"

	"github.com/northtrade/marketplace/ingestion-service/internal/entity"
	"github.com/northtrade/marketplace/ingestion-service/internal/port/geo"
)

type centroid struct {
	lat  float64
	lon  float64
	city string
}

// Canadian forward sortation areas (first three characters of a postal
// code) mapped to approximate centroids. Coverage grows as new source
// regions show up in ingested data.
var fsaCentroids = map[string]centroid{
	// Ontario
	"M5V": {43.6426, -79.3871, "Toronto"},
	"M4C": {43.6910, -79.3180, "Toronto"},
	"M6G": {43.6683, -79.4205, "Toronto"},
	"K1A": {45.4215, -75.6972, "Ottawa"},
	"K2P": {45.4161, -75.6901, "Ottawa"},
	"L8P": {43.2520, -79.8800, "Hamilton"},
	"N2L": {43.4723, -80.5449, "Waterloo"},
	"P3A": {46.5221, -80.9531, "Sudbury"},
	// Quebec
	"H2X": {45.5122, -73.5707, "Montreal"},
	"H3Z": {45.4846, -73.5900, "Montreal"},
	"G1R": {46.8033, -71.2177, "Quebec City"},
	"J8X": {45.4286, -75.7124, "Gatineau"},
	// British Columbia
	"V5K": {49.2827, -123.0400, "Vancouver"},
	"V6B": {49.2790, -123.1120, "Vancouver"},
	"V8W": {48.4284, -123.3656, "Victoria"},
	"V2C": {50.6745, -120.3273, "Kamloops"},
	// Alberta
	"T2P": {51.0447, -114.0719, "Calgary"},
	"T5J": {53.5461, -113.4938, "Edmonton"},
	"T6E": {53.5090, -113.4938, "Edmonton"},
	"T8N": {53.6305, -113.6256, "St. Albert"},
	// Prairies
	"R3C": {49.8951, -97.1384, "Winnipeg"},
	"S7K": {52.1332, -106.6700, "Saskatoon"},
	"S4P": {50.4452, -104.6189, "Regina"},
	// Atlantic
	"B3H": {44.6488, -63.5752, "Halifax"},
	"E1C": {46.0878, -64.7782, "Moncton"},
	"C1A": {46.2382, -63.1311, "Charlottetown"},
	"A1C": {47.5615, -52.7126, "St. John's"},
	// North
	"X1A": {62.4540, -114.3718, "Yellowknife"},
	"Y1A": {60.7212, -135.0568, "Whitehorse"},
}

var provinceByDistrict = map[byte]string{
	'A': "Newfoundland and Labrador",
	'B': "Nova Scotia",
	'C': "Prince Edward Island",
	'E': "New Brunswick",
	'G': "Quebec",
	'H': "Quebec",
	'J': "Quebec",
	'K': "Ontario",
	'L': "Ontario",
	'M': "Ontario",
	'N': "Ontario",
	'P': "Ontario",
	'R': "Manitoba",
	'S': "Saskatchewan",
	'T': "Alberta",
	'V': "British Columbia",
	'X': "Northwest Territories",
	'Y': "Yukon",
}

// Resolver resolves Canadian postal codes to FSA centroids without any
// network dependency in the ingestion path.
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

func (r *Resolver) Resolve(postalCode string) (geo.Location, bool) {
	code := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(postalCode), " ", ""))
	if len(code) < 3 {
		return geo.Location{}, false
	}

	fsa := code[:3]
	c, ok := fsaCentroids[fsa]
	if !ok {
		return geo.Location{}, false
	}

	return geo.Location{
		Point:    entity.GeoPoint{Lat: c.lat, Lon: c.lon},
		Province: provinceByDistrict[fsa[0]],
		City:     c.city,
	}, true
}
