package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/homelet/homelet/internal/auth"
	"github.com/homelet/homelet/internal/middleware"
	"github.com/homelet/homelet/internal/render"
)

// prerenderHeader reports whether a detail page came out of the
// prerender cache ("hit") or was built on demand ("fallback").
const prerenderHeader = "X-Prerender"

// PageHandler serves page data: the props a client renders a page
// from, or a redirect when the page is gated and the gate fails.
type PageHandler struct {
	renderer *render.Renderer
	logger   *slog.Logger
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(renderer *render.Renderer, logger *slog.Logger) *PageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PageHandler{renderer: renderer, logger: logger}
}

// Index handles GET /pages/index.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	result, err := h.renderer.IndexPage(r.Context())
	h.writeResult(w, r, result, err)
}

// Homes handles GET /pages/homes, the caller's listings.
func (h *PageHandler) Homes(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())
	result, err := h.renderer.OwnedHomesPage(r.Context(), ident)
	h.writeResult(w, r, result, err)
}

// HomeDetail handles GET /pages/homes/{id}.
func (h *PageHandler) HomeDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.renderer.HomeDetailPage(r.Context(), id)
	if err == nil && result != nil && result.Redirect == nil {
		if result.Fallback {
			w.Header().Set(prerenderHeader, "fallback")
		} else {
			w.Header().Set(prerenderHeader, "hit")
		}
	}
	h.writeResult(w, r, result, err)
}

// HomeEdit handles GET /pages/homes/{id}/edit.
func (h *PageHandler) HomeEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ident := auth.IdentityFromContext(r.Context())

	result, err := h.renderer.EditHomePage(r.Context(), ident, id)
	h.writeResult(w, r, result, err)
}

// Create handles GET /pages/create.
func (h *PageHandler) Create(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())
	result, err := h.renderer.CreatePage(r.Context(), ident)
	h.writeResult(w, r, result, err)
}

// Paths handles GET /pages/paths, the ids eligible for prerendering.
func (h *PageHandler) Paths(w http.ResponseWriter, r *http.Request) {
	ids, err := h.renderer.StaticPaths(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Paths []string `json:"paths"`
	}{Paths: ids})
}

// writeResult turns a render result into a response: a redirect when
// the resolver bounced the caller, page props otherwise. Context
// cancellation maps to the client-closed-request status.
func (h *PageHandler) writeResult(w http.ResponseWriter, r *http.Request, result *render.Result, err error) {
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Client went away or the request timed out mid-resolution.
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		h.internalError(w, r, err)
		return
	}

	if result.Redirect != nil {
		status := http.StatusFound
		if result.Redirect.Permanent {
			status = http.StatusMovedPermanently
		}
		http.Redirect(w, r, result.Redirect.Destination, status)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Props any `json:"props"`
	}{Props: result.Props})
}

func (h *PageHandler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("page resolution failed",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	writeError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
