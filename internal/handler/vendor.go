package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/sceneit/viewer-relay-go/internal/errors"
	"github.com/sceneit/viewer-relay-go/internal/httputil"
	"github.com/sceneit/viewer-relay-go/internal/repository"
)

// VendorHandler serves the vendor self-service product store, the source
// for "product_"-prefixed ids in purchase tool calls.
type VendorHandler struct {
	vendorRepo repository.VendorProductRepository
}

func NewVendorHandler(vendorRepo repository.VendorProductRepository) *VendorHandler {
	return &VendorHandler{vendorRepo: vendorRepo}
}

// List handles GET /v1/vendor-products.
func (h *VendorHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.vendorRepo.FindAll(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list vendor products")
		httputil.WriteError(w, errors.Database(err))
		return
	}

	items := make([]map[string]any, 0, len(products))
	for i := range products {
		product := products[i].ToProduct()
		items = append(items, map[string]any{
			"id":          product.ID,
			"title":       product.Title,
			"handle":      product.Handle,
			"description": product.Description,
			"price":       product.Price(),
			"image":       product.FeaturedImage.URL,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"products": items})
}

// Get handles GET /v1/vendor-products/{id}.
func (h *VendorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.vendorRepo.FindByID(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to load vendor product")
		httputil.WriteError(w, errors.Database(err))
		return
	}
	if product == nil {
		httputil.WriteError(w, errors.NotFound("Vendor product"))
		return
	}

	writeJSON(w, http.StatusOK, product.ToProduct())
}
