package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/assets"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/auth"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/errlog"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/hr/employees"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/hr/payroll"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/inventory"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/ledger"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/masterdata/customers"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/masterdata/suppliers"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/masterdata/vessels"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/observability"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/projects"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/purchasing"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/sales/creditnotes"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/sales/invoices"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/sales/quotations"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Middleware MiddlewareConfig

	AuthHandler       *auth.Handler
	CustomersHandler  *customers.Handler
	SuppliersHandler  *suppliers.Handler
	VesselsHandler    *vessels.Handler
	QuotationsHandler *quotations.Handler
	InvoicesHandler   *invoices.Handler
	CreditNoteHandler *creditnotes.Handler
	PurchasingHandler *purchasing.Handler
	LedgerHandler     *ledger.Handler
	InventoryHandler  *inventory.Handler
	ProjectsHandler   *projects.Handler
	AssetsHandler     *assets.Handler
	EmployeesHandler  *employees.Handler
	PayrollHandler    *payroll.Handler
	ErrLogHandler     *errlog.Handler
	JobsHandler       *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(params.Middleware) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Route("/masterdata", func(r chi.Router) {
		r.Route("/customers", params.CustomersHandler.MountRoutes)
		r.Route("/suppliers", params.SuppliersHandler.MountRoutes)
		r.Route("/vessels", params.VesselsHandler.MountRoutes)
	})

	r.Route("/sales", func(r chi.Router) {
		r.Route("/quotations", params.QuotationsHandler.MountRoutes)
		r.Route("/invoices", params.InvoicesHandler.MountRoutes)
		r.Route("/credit-notes", params.CreditNoteHandler.MountRoutes)
	})

	r.Route("/purchasing", params.PurchasingHandler.MountRoutes)
	r.Route("/finance/ledger", params.LedgerHandler.MountRoutes)
	r.Route("/inventory", params.InventoryHandler.MountRoutes)
	r.Route("/projects", params.ProjectsHandler.MountRoutes)
	r.Route("/assets", params.AssetsHandler.MountRoutes)

	r.Route("/hr", func(r chi.Router) {
		r.Route("/employees", params.EmployeesHandler.MountRoutes)
		r.Route("/payroll", params.PayrollHandler.MountRoutes)
	})

	r.Route("/admin/errors", params.ErrLogHandler.MountRoutes)

	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
