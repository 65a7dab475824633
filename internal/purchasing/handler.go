package purchasing

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/platform/httpx"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/rbac"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	rbac     rbac.Middleware
}

func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		rbac:     rbac,
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/requests", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAny(shared.PermPurchasingView, shared.PermPurchasingEdit, shared.PermPurchasingApprove))
			r.Get("/", h.ListRequests)
			r.Get("/{id}", h.ShowRequest)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAll(shared.PermPurchasingEdit))
			r.Post("/", h.CreateRequest)
			r.Post("/{id}/submit", h.SubmitRequest)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAll(shared.PermPurchasingApprove))
			r.Post("/{id}/approve", h.ApproveRequest)
			r.Post("/{id}/reject", h.RejectRequest)
		})
	})

	r.Route("/orders", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAny(shared.PermPurchasingView, shared.PermPurchasingEdit, shared.PermPurchasingApprove))
			r.Get("/", h.ListOrders)
			r.Get("/{id}", h.ShowOrder)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAll(shared.PermPurchasingEdit))
			r.Post("/", h.CreateOrder)
			r.Post("/{id}/receive", h.ReceiveOrder)
			r.Post("/{id}/close", h.CloseOrder)
			r.Post("/{id}/cancel", h.CancelOrder)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAll(shared.PermPurchasingApprove))
			r.Post("/{id}/approve", h.ApproveOrder)
		})
	})

	r.Route("/invoices", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAny(shared.PermPurchasingView, shared.PermFinanceView))
			r.Get("/", h.ListAPInvoices)
			r.Get("/{id}", h.ShowAPInvoice)
			r.Get("/{id}/payments", h.ListSupplierPayments)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAll(shared.PermPurchasingEdit))
			r.Post("/", h.CreateAPInvoice)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAll(shared.PermFinancePost))
			r.Post("/{id}/post", h.PostAPInvoice)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAll(shared.PermFinancePayments))
			r.Post("/{id}/payments", h.RecordSupplierPayment)
		})
	})
}

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	filters := parseListFilters(r)
	items, total, err := h.service.ListRequests(r.Context(), filters)
	if err != nil {
		h.logger.Error("list purchase requests", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.NewListEnvelope(items, total, filters.Page, filters.Limit))
}

func (h *Handler) ShowRequest(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid purchase request id")
		return
	}
	pr, err := h.service.GetRequest(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pr)
}

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req CreateRequestRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	pr, err := h.service.CreateRequest(r.Context(), shared.ActorFromContext(r.Context()), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, pr)
}

func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	h.requestTransition(w, r, h.service.SubmitRequest)
}

func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.requestTransition(w, r, h.service.ApproveRequest)
}

func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.requestTransition(w, r, h.service.RejectRequest)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	filters := parseListFilters(r)
	items, total, err := h.service.ListOrders(r.Context(), filters)
	if err != nil {
		h.logger.Error("list purchase orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.NewListEnvelope(items, total, filters.Page, filters.Limit))
}

func (h *Handler) ShowOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid purchase order id")
		return
	}
	po, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, po)
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	po, err := h.service.CreateOrder(r.Context(), shared.ActorFromContext(r.Context()), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, po)
}

func (h *Handler) ApproveOrder(w http.ResponseWriter, r *http.Request) {
	h.orderTransition(w, r, h.service.ApproveOrder)
}

func (h *Handler) ReceiveOrder(w http.ResponseWriter, r *http.Request) {
	h.orderTransition(w, r, h.service.MarkOrderReceived)
}

func (h *Handler) CloseOrder(w http.ResponseWriter, r *http.Request) {
	h.orderTransition(w, r, h.service.CloseOrder)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	h.orderTransition(w, r, h.service.CancelOrder)
}

func (h *Handler) ListAPInvoices(w http.ResponseWriter, r *http.Request) {
	filters := parseListFilters(r)
	items, total, err := h.service.ListAPInvoices(r.Context(), filters)
	if err != nil {
		h.logger.Error("list purchase invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.NewListEnvelope(items, total, filters.Page, filters.Limit))
}

func (h *Handler) ShowAPInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid purchase invoice id")
		return
	}
	inv, err := h.service.GetAPInvoice(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) CreateAPInvoice(w http.ResponseWriter, r *http.Request) {
	var req CreateAPInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	inv, err := h.service.CreateAPInvoice(r.Context(), shared.ActorFromContext(r.Context()), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, inv)
}

func (h *Handler) PostAPInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid purchase invoice id")
		return
	}
	inv, err := h.service.PostAPInvoice(r.Context(), shared.ActorFromContext(r.Context()), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) RecordSupplierPayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid purchase invoice id")
		return
	}
	var req RecordSupplierPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	inv, err := h.service.RecordSupplierPayment(r.Context(), shared.ActorFromContext(r.Context()), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) ListSupplierPayments(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid purchase invoice id")
		return
	}
	payments, err := h.service.ListSupplierPayments(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payments)
}

func (h *Handler) requestTransition(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, actor shared.Actor, id int64) (*PurchaseRequest, error),
) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid purchase request id")
		return
	}
	pr, err := fn(r.Context(), shared.ActorFromContext(r.Context()), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pr)
}

func (h *Handler) orderTransition(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, actor shared.Actor, id int64) (*PurchaseOrder, error),
) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid purchase order id")
		return
	}
	po, err := fn(r.Context(), shared.ActorFromContext(r.Context()), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, po)
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
