package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/maaaahin/drugo-storefront/internal/catalog"
)

type CatalogHandler struct {
	ctrl *catalog.Controller
}

func NewCatalogHandler(ctrl *catalog.Controller) *CatalogHandler {
	return &CatalogHandler{ctrl: ctrl}
}

type ToggleCategoryRequestDTO struct {
	CategoryID string `json:"category_id"`
	Selected   bool   `json:"selected"`
}

type SetPriceBucketRequestDTO struct {
	BucketID *string `json:"bucket_id"` // null clears the bucket
}

type FilterStateDTO struct {
	Selected []string             `json:"selected_categories"`
	Bucket   *catalog.PriceBucket `json:"price_bucket"`
}

func (h *CatalogHandler) GetView(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.ctrl.View())
}

func (h *CatalogHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	selected, bucket := h.ctrl.Filters()
	respondJSON(w, http.StatusOK, FilterStateDTO{Selected: selected, Bucket: bucket})
}

func (h *CatalogHandler) GetBuckets(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, catalog.Buckets)
}

func (h *CatalogHandler) LoadMore(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.LoadMore(r.Context()); err != nil {
		handleEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.ctrl.View())
}

func (h *CatalogHandler) ToggleCategory(w http.ResponseWriter, r *http.Request) {
	var req ToggleCategoryRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.CategoryID == "" {
		respondError(w, http.StatusBadRequest, "invalid_category_id", "category_id is required")
		return
	}

	if err := h.ctrl.ToggleCategory(r.Context(), req.CategoryID, req.Selected); err != nil {
		handleEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.ctrl.View())
}

func (h *CatalogHandler) SetPriceBucket(w http.ResponseWriter, r *http.Request) {
	var req SetPriceBucketRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	var bucket *catalog.PriceBucket
	if req.BucketID != nil {
		b, ok := catalog.BucketByID(*req.BucketID)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid_bucket_id", "unknown price bucket")
			return
		}
		bucket = &b
	}

	if err := h.ctrl.SetPriceBucket(r.Context(), bucket); err != nil {
		handleEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.ctrl.View())
}

func (h *CatalogHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.Reset(r.Context()); err != nil {
		handleEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.ctrl.View())
}
