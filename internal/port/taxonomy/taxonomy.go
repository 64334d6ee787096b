package taxonomy

// Lookup is the read-only category taxonomy collaborator. Category
// definitions themselves are maintained elsewhere.
type Lookup interface {
	Exists(subCategoryID string) bool
	Path(subCategoryID string) string
}
