package assets

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

type AgreementFilters struct {
	Page        int
	Limit       int
	Status      AgreementStatus
	AssetID     int64
	CustomerID  int64
	OverdueOnly bool
}

func (f *AgreementFilters) Normalize() {
	if f.Page < 1 {
		f.Page = defaultPage
	}
	if f.Limit < 1 || f.Limit > maxLimit {
		f.Limit = defaultLimit
	}
}

func (f AgreementFilters) Offset() int {
	return (f.Page - 1) * f.Limit
}

func parseListFilters(r *http.Request) ListFilters {
	q := r.URL.Query()
	var f ListFilters

	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Search = q.Get("search")
	f.IncludeArchived = q.Get("include_archived") == "true"
	return f
}

func parseAgreementFilters(r *http.Request) AgreementFilters {
	q := r.URL.Query()
	var f AgreementFilters

	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.OverdueOnly = q.Get("overdue") == "true"

	if s := AgreementStatus(q.Get("status")); s != "" && s.Valid() {
		f.Status = s
	}
	if v := q.Get("asset_id"); v != "" {
		f.AssetID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := q.Get("customer_id"); v != "" {
		f.CustomerID, _ = strconv.ParseInt(v, 10, 64)
	}
	return f
}
