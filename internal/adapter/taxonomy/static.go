package taxonomy

// StaticLookup is an in-process snapshot of the category taxonomy. The
// taxonomy itself is owned elsewhere; ingestion only needs existence checks
// and the display path for search documents.
type StaticLookup struct {
	paths map[string]string
}

var defaultPaths = map[string]string{
	"firearms:rifles":    "firearms/rifles",
	"firearms:shotguns":  "firearms/shotguns",
	"firearms:handguns":  "firearms/handguns",
	"firearms:antiques":  "firearms/antiques",
	"optics:scopes":      "optics/scopes",
	"optics:red-dots":    "optics/red-dots",
	"optics:binoculars":  "optics/binoculars",
	"ammo:centerfire":    "ammunition/centerfire",
	"ammo:rimfire":       "ammunition/rimfire",
	"ammo:shotshell":     "ammunition/shotshell",
	"ammo:reloading":     "ammunition/reloading",
	"archery:bows":       "archery/bows",
	"archery:crossbows":  "archery/crossbows",
	"gear:holsters":      "gear/holsters",
	"gear:cases":         "gear/cases",
	"gear:cleaning":      "gear/cleaning",
	"parts:barrels":      "parts/barrels",
	"parts:stocks":       "parts/stocks",
	"parts:magazines":    "parts/magazines",
	"parts:muzzle":       "parts/muzzle-devices",
	"knives:fixed-blade": "knives/fixed-blade",
	"knives:folding":     "knives/folding",
}

func NewStaticLookup() *StaticLookup {
	return &StaticLookup{paths: defaultPaths}
}

// NewStaticLookupFrom builds a lookup over an explicit id to path map,
// mainly for tests.
func NewStaticLookupFrom(paths map[string]string) *StaticLookup {
	return &StaticLookup{paths: paths}
}

func (l *StaticLookup) Exists(subCategoryID string) bool {
	_, ok := l.paths[subCategoryID]
	return ok
}

func (l *StaticLookup) Path(subCategoryID string) string {
	return l.paths[subCategoryID]
}
