package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gatewaykit/portalsync/pkg/httputil"
	"github.com/gatewaykit/portalsync/pkg/sync"
)

// ProductHandlers provides HTTP handlers for API products
type ProductHandlers struct {
	service *sync.Service
}

// NewProductHandlers creates new product handlers
func NewProductHandlers(service *sync.Service) *ProductHandlers {
	return &ProductHandlers{service: service}
}

// RegisterRoutes registers API product routes
func (h *ProductHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/apiproducts", h.ListProducts).Methods("GET")
	router.HandleFunc("/api/v1/apiproducts/{name}", h.GetProduct).Methods("GET")
}

// ListProducts handles GET /api/v1/apiproducts
func (h *ProductHandlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Products(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, products)
}

// GetProduct handles GET /api/v1/apiproducts/{name}
func (h *ProductHandlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	name, ok := httputil.ParsePathStringOrError(w, r, "name")
	if !ok {
		return
	}

	product, err := h.service.Product(r.Context(), name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, product)
}
