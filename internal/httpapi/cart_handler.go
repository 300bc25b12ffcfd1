package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maaaahin/drugo-storefront/internal/cart"
	"github.com/maaaahin/drugo-storefront/internal/domain"
)

type CartHandler struct {
	store *cart.Store
}

func NewCartHandler(store *cart.Store) *CartHandler {
	return &CartHandler{store: store}
}

type CartResponseDTO struct {
	Items []domain.Product `json:"items"`
	Total float64          `json:"total"`
}

func (h *CartHandler) cartDTO() CartResponseDTO {
	items := h.store.Items()
	if items == nil {
		items = []domain.Product{}
	}
	return CartResponseDTO{
		Items: items,
		Total: h.store.Total(),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cartDTO())
}

// AddItem appends one product snapshot to the cart. The caller supplies the
// full snapshot it is displaying; the store never re-fetches it.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var p domain.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if p.ID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product", "product _id is required")
		return
	}
	if p.Price < 0 {
		respondError(w, http.StatusBadRequest, "invalid_product", "price must not be negative")
		return
	}

	if err := h.store.Add(r.Context(), p); err != nil {
		handleEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, h.cartDTO())
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	h.store.Remove(r.Context(), productID)
	respondJSON(w, http.StatusOK, h.cartDTO())
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.store.Clear(r.Context())
	respondJSON(w, http.StatusOK, h.cartDTO())
}
