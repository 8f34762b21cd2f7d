// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	producterrors "github.com/abgdnv/productcatalog/internal/product/errors"
	"github.com/abgdnv/productcatalog/internal/product/service"
	"github.com/abgdnv/productcatalog/pkg/metrics"
	"github.com/abgdnv/productcatalog/pkg/web"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// errorResponse says how a product error kind is written to the client.
type errorResponse struct {
	status int
	render func(w http.ResponseWriter, logger *slog.Logger, status int, message string)
}

var errorResponses = map[producterrors.Kind]errorResponse{
	producterrors.KindValidation: {status: http.StatusBadRequest, render: web.RespondError},
	producterrors.KindNotFound: {status: http.StatusNotFound, render: func(w http.ResponseWriter, _ *slog.Logger, status int, message string) {
		web.RespondText(w, status, message)
	}},
}

type Handler struct {
	service service.ProductService
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewHandler creates a new Handler with the provided service. m may be nil.
func NewHandler(service service.ProductService, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		metrics: m,
		logger:  logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the product service.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Greeting)

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)
		r.Get("/search", h.Search)
		r.Get("/stats", h.Stats)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
		})
	})

	r.Get("/healthz", h.HealthCheck)

	r.NotFound(h.RouteNotFound)
	r.MethodNotAllowed(h.RouteNotFound)
}

// Greeting answers the root path.
func (h *Handler) Greeting(w http.ResponseWriter, _ *http.Request) {
	web.RespondText(w, http.StatusOK, "Hello World")
}

// FindAll lists products, optionally filtered by category and paginated.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	query := service.ListQuery{
		Category: r.URL.Query().Get("category"),
		Page:     web.QueryInt(r, "page", 0),
		Limit:    web.QueryInt(r, "limit", 0),
	}
	h.logger.DebugContext(r.Context(), "Received request to find all products",
		"category", query.Category, "page", query.Page, "limit", query.Limit)

	page, err := h.service.FindAll(r.Context(), query)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "total", page.Total, "count", len(page.Data))
	web.RespondJSON(w, h.logger, http.StatusOK, page)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id := web.PathInt64(r, "id")
	h.logger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)

	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	created, err := h.service.Create(r.Context(), payload)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.recordMutation("create")
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, h.logger, http.StatusCreated, created)
}

// Update overwrites an existing product. The body is validated before the ID is looked up.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := web.PathInt64(r, "id")
	h.logger.DebugContext(r.Context(), "Received request to update product", "ID", id)

	payload, err := decodePayload(w, r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	updated, err := h.service.Update(r.Context(), id, payload)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.recordMutation("update")
	h.logger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

// DeleteByID deletes a product by its ID and returns it.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	id := web.PathInt64(r, "id")
	h.logger.DebugContext(r.Context(), "Received request to delete product", "ID", id)

	deleted, err := h.service.DeleteByID(r.Context(), id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.recordMutation("delete")
	h.logger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	web.RespondJSON(w, h.logger, http.StatusOK, deleted)
}

// Search finds products by name substring.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	matches, err := h.service.Search(r.Context(), name)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, matches)
}

// Stats reports the number of products per category.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, stats)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// RouteNotFound answers any method and path no route matches.
func (h *Handler) RouteNotFound(w http.ResponseWriter, _ *http.Request) {
	web.RespondError(w, h.logger, http.StatusNotFound, "Route not found")
}

// respondErr is the single place where service errors become HTTP responses.
func (h *Handler) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var perr *producterrors.Error
	if errors.As(err, &perr) {
		if resp, ok := errorResponses[perr.Kind]; ok {
			h.logger.WarnContext(r.Context(), "Request rejected", "kind", perr.Kind.String(), "error", err)
			resp.render(w, h.logger, resp.status, perr.Message)
			return
		}
	}
	h.logger.ErrorContext(r.Context(), "Unhandled error", "method", r.Method, "path", r.URL.Path, "error", err)
	web.RespondInternalError(w)
}

func (h *Handler) recordMutation(operation string) {
	if h.metrics != nil {
		h.metrics.RecordMutation(operation)
	}
}

// decodePayload reads the product body. Malformed JSON, a field of the wrong type
// or anything after the first JSON value is reported as an invalid product.
func decodePayload(w http.ResponseWriter, r *http.Request) (service.ProductPayload, error) {
	var payload service.ProductPayload
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&payload); err != nil {
		return service.ProductPayload{}, producterrors.ErrInvalidProduct
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return service.ProductPayload{}, producterrors.ErrInvalidProduct
	}
	return payload, nil
}
