package employees

import (
	"net/http"
	"strconv"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

type ListFilters struct {
	Page            int
	Limit           int
	Search          string
	Rank            string
	VesselID        int64
	IncludeArchived bool
}

func (f *ListFilters) Normalize() {
	if f.Page < 1 {
		f.Page = defaultPage
	}
	if f.Limit < 1 || f.Limit > maxLimit {
		f.Limit = defaultLimit
	}
}

func (f ListFilters) Offset() int {
	return (f.Page - 1) * f.Limit
}

func parseListFilters(r *http.Request) ListFilters {
	q := r.URL.Query()
	var f ListFilters

	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Search = q.Get("search")
	f.Rank = q.Get("rank")
	f.IncludeArchived = q.Get("include_archived") == "true"
	if v := q.Get("vessel_id"); v != "" {
		f.VesselID, _ = strconv.ParseInt(v, 10, 64)
	}
	return f
}
