package stubapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/groupe1-react/storefront-client/internal/domain"
)

type ProductHandler struct {
	store  *Store
	logger *zap.Logger
}

func NewProductHandler(store *Store, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{store: store, logger: logger}
}

// List wraps the collection under "data", matching the newer API revision.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, map[string][]domain.Product{"data": h.store.Products()})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "productID")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, h.logger, http.StatusBadRequest, "product id must be a positive integer")
		return
	}

	product, found := h.store.Product(id)
	if !found {
		respondError(w, h.logger, http.StatusNotFound, "product not found")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, product)
}
