package invoices

import (
	"net/http"
	"strconv"
	"time"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

type ListFilters struct {
	Page            int
	Limit           int
	Status          InvoiceStatus
	CustomerID      int64
	ProjectID       int64
	Search          string
	OverdueOnly     bool
	ProformaOnly    bool
	DateFrom        *time.Time
	DateTo          *time.Time
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
	f.IncludeArchived = q.Get("include_archived") == "true"
	f.OverdueOnly = q.Get("overdue") == "true"
	f.ProformaOnly = q.Get("proforma") == "true"

	if s := InvoiceStatus(q.Get("status")); s != "" && s.Valid() {
		f.Status = s
	}
	if v := q.Get("customer_id"); v != "" {
		f.CustomerID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := q.Get("project_id"); v != "" {
		f.ProjectID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := q.Get("date_from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.DateFrom = &t
		}
	}
	if v := q.Get("date_to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.DateTo = &t
		}
	}
	return f
}
