package errlog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/platform/httpx"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/rbac"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermErrLogView))
		r.Get("/", h.List)
		r.Get("/{id}", h.Show)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := ParseListFilters(r)
	filters.Normalize()
	entries, total, err := h.service.List(r.Context(), shared.ActorFromContext(r.Context()), filters)
	if err != nil {
		h.logger.Error("list error log", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.NewListEnvelope(entries, total, filters.Page, filters.Limit))
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid error log id")
		return
	}
	entry, err := h.service.Get(r.Context(), shared.ActorFromContext(r.Context()), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}
