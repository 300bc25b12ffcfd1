package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maaaahin/drugo-storefront/internal/domain"
)

// ProductAPI is the slice of the storefront API the product views need.
type ProductAPI interface {
	ProductBySlug(ctx context.Context, slug string) (domain.Product, error)
	RelatedProducts(ctx context.Context, productID, categoryID string) ([]domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	ProductsByCategory(ctx context.Context, slug string) (domain.Category, []domain.Product, error)
	Search(ctx context.Context, keyword string) ([]domain.Product, error)
}

type ProductHandler struct {
	api ProductAPI
}

func NewProductHandler(api ProductAPI) *ProductHandler {
	return &ProductHandler{api: api}
}

type ProductDetailDTO struct {
	Product domain.Product   `json:"product"`
	Related []domain.Product `json:"related"`
}

// GetProduct resolves a product by slug together with its related products,
// the way the detail view consumes them.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	product, err := h.api.ProductBySlug(r.Context(), slug)
	if err != nil {
		handleEngineError(w, err)
		return
	}

	related, err := h.api.RelatedProducts(r.Context(), product.ID, product.Category.ID)
	if err != nil {
		handleEngineError(w, err)
		return
	}
	if related == nil {
		related = []domain.Product{}
	}

	respondJSON(w, http.StatusOK, ProductDetailDTO{Product: product, Related: related})
}

func (h *ProductHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.api.Categories(r.Context())
	if err != nil {
		handleEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

type CategoryProductsDTO struct {
	Category domain.Category  `json:"category"`
	Products []domain.Product `json:"products"`
}

func (h *ProductHandler) GetCategoryProducts(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	category, products, err := h.api.ProductsByCategory(r.Context(), slug)
	if err != nil {
		handleEngineError(w, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	respondJSON(w, http.StatusOK, CategoryProductsDTO{Category: category, Products: products})
}

func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	keyword := chi.URLParam(r, "keyword")
	if keyword == "" {
		respondError(w, http.StatusBadRequest, "invalid_keyword", "keyword is required")
		return
	}

	results, err := h.api.Search(r.Context(), keyword)
	if err != nil {
		handleEngineError(w, err)
		return
	}
	if results == nil {
		results = []domain.Product{}
	}
	respondJSON(w, http.StatusOK, results)
}
