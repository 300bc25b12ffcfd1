package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/maaaahin/drugo-storefront/internal/api"
	"github.com/maaaahin/drugo-storefront/internal/cart"
	"github.com/maaaahin/drugo-storefront/internal/checkout"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleEngineError maps the engine's error taxonomy to HTTP status codes.
// No error is fatal to the session: the stores stay usable after any of these.
func handleEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrDuplicateItem):
		respondError(w, http.StatusConflict, "already_in_cart", "this item is already in your cart")
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "your cart is empty")
	case errors.Is(err, checkout.ErrMissingAddress):
		// callers are expected to redirect the user to the address form
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "update your address before placing the order",
			Code:    "missing_address",
			Details: "/dashboard/user/profile",
		})
	case errors.Is(err, checkout.ErrCommitInFlight):
		respondError(w, http.StatusConflict, "checkout_in_progress", "a checkout is already in progress")
	case errors.Is(err, api.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", "not found")
	default:
		var serverErr *api.ServerError
		if errors.As(err, &serverErr) {
			respondError(w, http.StatusBadGateway, "upstream_rejected", serverErr.Message)
			return
		}
		var netErr *api.NetworkError
		if errors.As(err, &netErr) {
			respondError(w, http.StatusServiceUnavailable, "upstream_unavailable", "the store is unreachable, try again")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
