package httpapi

import (
	"context"
	"log"
	"net/http"
)

// Committer is the checkout surface the facade exposes.
type Committer interface {
	Commit(ctx context.Context) error
}

type CheckoutHandler struct {
	coordinator Committer
}

func NewCheckoutHandler(coordinator Committer) *CheckoutHandler {
	return &CheckoutHandler{coordinator: coordinator}
}

type CheckoutResponseDTO struct {
	Success bool `json:"success"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Commit(w http.ResponseWriter, r *http.Request) {
	if err := h.coordinator.Commit(r.Context()); err != nil {
		log.Printf("checkout failed request_id=%s: %v", getRequestID(r.Context()), err)
		handleEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{Success: true})
}
