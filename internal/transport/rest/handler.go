// Package rest provides HTTP handlers for the product catalog.
package rest

import (
	"errors"
	"log/slog"
	"net/http"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/service"
	"github.com/abgdnv/catalog/pkg/web"
	"github.com/go-chi/chi/v5"
)

// Client-facing messages.
const (
	msgProductNotFound = "Producto no encontrado"
	msgInvalidProduct  = "Todos los campos son obligatorios"
	msgDuplicateCode   = "El código del producto ya existe"
	msgStorage         = "Error al leer el archivo de productos"
)

type Handler struct {
	service service.ProductService
	logger  *slog.Logger
}

// NewHandler creates a new instance of the catalog API with the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the catalog.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Get("/{pid}", h.FindByID)
	})

	r.Get("/healthz", h.HealthCheck)
}

// FindAll lists the catalog, optionally cut at the limit query parameter.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	var limit *int
	if n, ok := web.QueryLimit(r, "limit"); ok {
		limit = &n
	}
	h.logger.DebugContext(r.Context(), "Received request to find all products", "limit", limit)
	list, err := h.service.FindAll(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		h.respondServiceError(w, err)
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// FindByID retrieves a product by the pid path parameter.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseIntID(r, "pid")
	if !ok {
		h.logger.WarnContext(r.Context(), "Product not found, unparsable id", "pid", r.PathValue("pid"))
		web.RespondError(w, h.logger, http.StatusNotFound, msgProductNotFound)
		return
	}

	h.logger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			h.logger.WarnContext(r.Context(), "Product not found", "ID", id)
		} else {
			h.logger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		}
		h.respondServiceError(w, err)
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product", "ID", found.ID, "code", found.Code)
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// respondServiceError maps a service error to its status code and message.
func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, perrors.ErrProductNotFound):
		web.RespondError(w, h.logger, http.StatusNotFound, msgProductNotFound)
	case errors.Is(err, perrors.ErrInvalidProduct):
		web.RespondError(w, h.logger, http.StatusBadRequest, msgInvalidProduct)
	case errors.Is(err, perrors.ErrDuplicateCode):
		web.RespondError(w, h.logger, http.StatusConflict, msgDuplicateCode)
	case errors.Is(err, perrors.ErrStorage), errors.Is(err, perrors.ErrCorruptStorage):
		web.RespondError(w, h.logger, http.StatusInternalServerError, msgStorage)
	default:
		web.RespondError(w, h.logger, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
