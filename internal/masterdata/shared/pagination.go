package shared

// ListFilters represents standard list page filters.
type ListFilters struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	SortDir string

	// Archived records are hidden unless explicitly requested.
	IncludeArchived bool
}

// Normalize applies defaults for zero values.
func (f *ListFilters) Normalize() {
	if f.Page <= 0 {
		f.Page = DefaultPage
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = DefaultLimit
	}
	if f.SortDir != SortAsc && f.SortDir != SortDesc {
		f.SortDir = SortAsc
	}
}

// Offset converts page/limit into a row offset.
func (f ListFilters) Offset() int {
	return (f.Page - 1) * f.Limit
}
