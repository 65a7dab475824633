package customers

import (
	"net/http"
	"strconv"

	mdshared "github.com/aswathirqubicle/Aquanav-dev-sub003/internal/masterdata/shared"
)

func parseListFilters(r *http.Request) mdshared.ListFilters {
	q := r.URL.Query()
	filters := mdshared.ListFilters{
		Search:          q.Get("search"),
		IncludeArchived: q.Get("include_archived") == "true",
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		filters.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		filters.Limit = v
	}
	filters.Normalize()
	return filters
}
