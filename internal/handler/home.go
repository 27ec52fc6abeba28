package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/homelet/homelet/internal/auth"
	"github.com/homelet/homelet/internal/handler/dto"
	"github.com/homelet/homelet/internal/middleware"
	"github.com/homelet/homelet/internal/service"
)

// HomeHandler handles home listing endpoints.
type HomeHandler struct {
	service *service.HomeService
	logger  *slog.Logger
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(svc *service.HomeService, logger *slog.Logger) *HomeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HomeHandler{service: svc, logger: logger}
}

// Create handles POST /api/homes.
func (h *HomeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateHomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_BODY")
		return
	}

	ident := auth.IdentityFromContext(r.Context())

	home, err := h.service.CreateHome(r.Context(), ident, service.CreateHomeInput{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Guests:      req.Guests,
		Beds:        req.Beds,
		Baths:       req.Baths,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.NewHomeResponse(home))
}

// Get handles GET /api/homes/{id}.
func (h *HomeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	home, err := h.service.GetHome(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewHomeResponse(home))
}

// List handles GET /api/homes. Public feed, newest first.
func (h *HomeHandler) List(w http.ResponseWriter, r *http.Request) {
	homes, err := h.service.ListHomes(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewHomeListResponse(homes))
}

// ListMine handles GET /api/homes/mine. The caller's homes, newest first.
func (h *HomeHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())

	homes, err := h.service.ListOwnedHomes(r.Context(), ident)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewHomeListResponse(homes))
}

// Owner handles GET /api/homes/{id}/owner. Surfaces the ownership hint
// the UI uses to decide whether to show edit and delete controls. The
// hint is advisory; mutations re-check ownership themselves.
func (h *HomeHandler) Owner(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ident := auth.IdentityFromContext(r.Context())

	ownerID, err := h.service.GetHomeOwner(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	resp := dto.OwnerResponse{
		HomeID:  id,
		OwnerID: ownerID,
		IsOwner: ident != nil && ident.ID == ownerID,
	}

	writeJSON(w, http.StatusOK, resp)
}

// Update handles PATCH /api/homes/{id}. Owner only.
func (h *HomeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateHomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_BODY")
		return
	}

	ident := auth.IdentityFromContext(r.Context())

	home, err := h.service.UpdateHome(r.Context(), ident, id, req.Patch())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewHomeResponse(home))
}

// Delete handles DELETE /api/homes/{id}. Owner only, not idempotent.
func (h *HomeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ident := auth.IdentityFromContext(r.Context())

	if err := h.service.DeleteHome(r.Context(), ident, id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps service errors to HTTP responses. Forbidden
// and not-found share one response on purpose: a caller probing ids
// must not be able to tell "exists but not yours" from "does not exist".
func (h *HomeHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "authentication required", "UNAUTHENTICATED")
	case errors.Is(err, service.ErrHomeNotFound), errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusNotFound, "home not found", "HOME_NOT_FOUND")
	case errors.Is(err, service.ErrTitleRequired):
		writeError(w, http.StatusUnprocessableEntity, "title is required", "TITLE_REQUIRED")
	case errors.Is(err, service.ErrTitleTooLong):
		writeError(w, http.StatusUnprocessableEntity, "title exceeds maximum length", "TITLE_TOO_LONG")
	case errors.Is(err, service.ErrInvalidImage):
		writeError(w, http.StatusUnprocessableEntity, "image must be an http(s) URL", "INVALID_IMAGE")
	case errors.Is(err, service.ErrNegativeCount):
		writeError(w, http.StatusUnprocessableEntity, "guests, beds and baths must not be negative", "NEGATIVE_COUNT")
	case errors.Is(err, service.ErrEmptyPatch):
		writeError(w, http.StatusBadRequest, "no fields to update", "EMPTY_PATCH")
	default:
		h.logger.Error("internal error",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
