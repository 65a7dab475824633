package assets

import (
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
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermAssetsView, shared.PermAssetsEdit))
		r.Get("/", h.ListAssets)
		r.Get("/{id}", h.ShowAsset)
		r.Get("/agreements", h.ListAgreements)
		r.Get("/agreements/{id}", h.ShowAgreement)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermAssetsEdit))
		r.Post("/", h.CreateAsset)
		r.Put("/{id}", h.UpdateAsset)
		r.Post("/{id}/archive", h.ArchiveAsset)
		r.Post("/{id}/unarchive", h.UnarchiveAsset)
		r.Post("/agreements", h.CreateAgreement)
		r.Post("/agreements/{id}/return", h.Return)
	})
}

func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	filters := parseListFilters(r)
	items, total, err := h.service.ListAssets(r.Context(), filters)
	if err != nil {
		h.logger.Error("list assets", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.NewListEnvelope(items, total, filters.Page, filters.Limit))
}

func (h *Handler) ShowAsset(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid asset id")
		return
	}
	asset, err := h.service.GetAsset(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, asset)
}

func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var req CreateAssetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	asset, err := h.service.CreateAsset(r.Context(), shared.ActorFromContext(r.Context()), req)
	if err != nil {
		h.logger.Error("create asset", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, asset)
}

func (h *Handler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid asset id")
		return
	}
	var req UpdateAssetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	asset, err := h.service.UpdateAsset(r.Context(), shared.ActorFromContext(r.Context()), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, asset)
}

func (h *Handler) ArchiveAsset(w http.ResponseWriter, r *http.Request) {
	h.setAssetArchived(w, r, true)
}

func (h *Handler) UnarchiveAsset(w http.ResponseWriter, r *http.Request) {
	h.setAssetArchived(w, r, false)
}

func (h *Handler) setAssetArchived(w http.ResponseWriter, r *http.Request, archived bool) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid asset id")
		return
	}
	actor := shared.ActorFromContext(r.Context())
	if archived {
		err = h.service.ArchiveAsset(r.Context(), actor, id)
	} else {
		err = h.service.UnarchiveAsset(r.Context(), actor, id)
	}
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListAgreements(w http.ResponseWriter, r *http.Request) {
	filters := parseAgreementFilters(r)
	items, total, err := h.service.ListAgreements(r.Context(), filters)
	if err != nil {
		h.logger.Error("list rental agreements", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.NewListEnvelope(items, total, filters.Page, filters.Limit))
}

func (h *Handler) ShowAgreement(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid agreement id")
		return
	}
	agreement, err := h.service.GetAgreement(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, agreement)
}

func (h *Handler) CreateAgreement(w http.ResponseWriter, r *http.Request) {
	var req CreateAgreementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	agreement, err := h.service.CreateAgreement(r.Context(), shared.ActorFromContext(r.Context()), req)
	if err != nil {
		h.logger.Error("create rental agreement", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, agreement)
}

func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid agreement id")
		return
	}
	var req ReturnAssetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	agreement, err := h.service.Return(r.Context(), shared.ActorFromContext(r.Context()), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, agreement)
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
