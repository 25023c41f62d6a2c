package handler

import (
	"net/http"

	"spacelink/internal/properties/service"
	"spacelink/pkg/auth"
	apperrors "spacelink/pkg/errors"
	httputil "spacelink/pkg/http"
	"spacelink/pkg/logger"
	"spacelink/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type PropertyHandler struct {
	service service.PropertyService
	tokens  *auth.TokenManager
	log     *logger.Logger
}

func NewPropertyHandler(service service.PropertyService, tokens *auth.TokenManager, log *logger.Logger) *PropertyHandler {
	return &PropertyHandler{
		service: service,
		tokens:  tokens,
		log:     log,
	}
}

func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, _ := auth.PrincipalFrom(r.Context())

	var req model.PropertyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	property, err := h.service.Create(r.Context(), principal.UserID, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, property); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	category := model.Category(r.URL.Query().Get("category"))
	properties, total, err := h.service.List(r.Context(), category, limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, properties, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

// GetByID hides disabled listings from everyone except their owner.
func (h *PropertyHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	property, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if property.IsDisabled {
		principal, ok := auth.PrincipalFrom(r.Context())
		if !ok || principal.UserID != property.OwnerID {
			h.writeError(w, "GetByID", apperrors.NotFoundWithID("Property", id))
			return
		}
	}

	if err := httputil.WriteSuccess(w, property); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PropertyHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, _ := auth.PrincipalFrom(r.Context())

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	properties, total, err := h.service.ListByOwner(r.Context(), principal.UserID, limit, offset)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	if err := httputil.WritePaginated(w, properties, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListMine", "operation", "WritePaginated", "error", err)
	}
}

func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, _ := auth.PrincipalFrom(r.Context())

	var updates model.PropertyUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	property, err := h.service.Update(r.Context(), principal.UserID, ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, property); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PropertyHandler) Disable(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.setDisabled(w, r, ps.ByName("id"), true, "Disable")
}

func (h *PropertyHandler) Enable(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.setDisabled(w, r, ps.ByName("id"), false, "Enable")
}

func (h *PropertyHandler) setDisabled(w http.ResponseWriter, r *http.Request, id string, disabled bool, name string) {
	principal, _ := auth.PrincipalFrom(r.Context())

	property, err := h.service.SetDisabled(r.Context(), principal.UserID, id, disabled)
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	if err := httputil.WriteSuccess(w, property); err != nil {
		h.log.Error("failed to write success response", "handler", name, "operation", "WriteSuccess", "error", err)
	}
}

func (h *PropertyHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *PropertyHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/properties", h.tokens.Require(h.Create))
	router.GET("/properties", h.List)
	router.GET("/properties/:id", h.tokens.Optional(h.GetByID))
	router.PATCH("/properties/:id", h.tokens.Require(h.Update))
	router.PATCH("/properties/:id/disable", h.tokens.Require(h.Disable))
	router.PATCH("/properties/:id/enable", h.tokens.Require(h.Enable))
	router.GET("/my-properties", h.tokens.Require(h.ListMine))
}
