package stubapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/groupe1-react/storefront-client/internal/domain"
)

type CartHandler struct {
	store  *Store
	logger *zap.Logger
}

func NewCartHandler(store *Store, logger *zap.Logger) *CartHandler {
	return &CartHandler{store: store, logger: logger}
}

type addItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type updateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

// GetCart returns the collection bare, the way the oldest API revision did.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	respondJSON(w, h.logger, http.StatusOK, h.store.Cart(userID))
}

// AddItem returns the full updated cart wrapped under "cart", another shape
// the real API has used.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	var req addItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	errs := map[string][]string{}
	if req.ProductID <= 0 {
		errs["product_id"] = append(errs["product_id"], "product_id must be positive")
	}
	if req.Quantity < 1 || req.Quantity > 99 {
		errs["quantity"] = append(errs["quantity"], "quantity must be between 1 and 99")
	}
	if len(errs) > 0 {
		respondValidation(w, h.logger, errs)
		return
	}

	lines, err := h.store.AddItem(userID, req.ProductID, req.Quantity)
	if errors.Is(err, ErrProductNotFound) {
		respondError(w, h.logger, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		respondError(w, h.logger, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, map[string][]domain.CartItem{"cart": lines})
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	lineID, ok := h.lineID(w, r)
	if !ok {
		return
	}

	var req updateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Quantity < 1 || req.Quantity > 99 {
		respondValidation(w, h.logger, map[string][]string{"quantity": {"quantity must be between 1 and 99"}})
		return
	}

	line, err := h.store.UpdateItem(userID, lineID, req.Quantity)
	if errors.Is(err, ErrLineNotFound) {
		respondError(w, h.logger, http.StatusNotFound, "cart line not found")
		return
	}
	if err != nil {
		respondError(w, h.logger, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]domain.CartItem{"item": line})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	lineID, ok := h.lineID(w, r)
	if !ok {
		return
	}

	if !h.store.RemoveItem(userID, lineID) {
		respondError(w, h.logger, http.StatusNotFound, "cart line not found")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"message": "removed"})
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	h.store.ClearCart(userID)
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"message": "cart cleared"})
}

func (h *CartHandler) lineID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	lineIDStr := chi.URLParam(r, "itemID")
	lineID, err := strconv.ParseInt(lineIDStr, 10, 64)
	if err != nil || lineID <= 0 {
		respondError(w, h.logger, http.StatusBadRequest, "item id must be a positive integer")
		return 0, false
	}
	return lineID, true
}
