package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"

	"github.com/maaaahin/drugo-storefront/internal/domain"
)

const apiPrefix = "/api/v1"

// TokenProvider supplies the session bearer token for authenticated calls.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// FilterQuery is the wire shape the filter endpoint expects: category IDs with
// OR semantics plus an optional [min,max] price range.
type FilterQuery struct {
	Checked []string  `json:"checked"`
	Radio   []float64 `json:"radio"`
}

// OrderRequest is the commit payload: the full cart snapshot, the delivery
// address and the payment method tag.
type OrderRequest struct {
	Cart          []domain.Product `json:"cart"`
	Address       string           `json:"address"`
	PaymentMethod string           `json:"paymentMethod"`
}

// Client is the typed client for the external storefront API. All calls go
// through a shared circuit breaker; responses are parsed into either a typed
// payload or one of the errors in errors.go, never both.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	tokens  TokenProvider
	sfg     singleflight.Group // collapses concurrent category fetches
}

func NewClient(baseURL string, tokens TokenProvider) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        "storefront-api",
			MaxRequests: 3,
			Timeout:     10 * time.Second,
		}),
		tokens: tokens,
	}
}

// ProductPage fetches one page of the unfiltered catalog.
func (c *Client) ProductPage(ctx context.Context, page int) ([]domain.Product, error) {
	var out struct {
		Products []domain.Product `json:"products"`
	}
	path := fmt.Sprintf("/products/product-list/%d", page)
	if err := c.get(ctx, "product page fetch", path, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// ProductCount fetches the catalog-wide result total used to gate pagination.
func (c *Client) ProductCount(ctx context.Context) (int, error) {
	var out struct {
		Total int `json:"total"`
	}
	if err := c.get(ctx, "product count fetch", "/products/product-count", &out); err != nil {
		return 0, err
	}
	return out.Total, nil
}

// FilterProducts runs one filtered query; the result replaces any paged state.
func (c *Client) FilterProducts(ctx context.Context, q FilterQuery) ([]domain.Product, error) {
	// the server expects arrays, not null
	if q.Checked == nil {
		q.Checked = []string{}
	}
	if q.Radio == nil {
		q.Radio = []float64{}
	}

	var out struct {
		Products []domain.Product `json:"products"`
	}
	err := c.do(ctx, "product filter query", http.MethodPost, "/products/product-filters", q, &out)
	if err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (c *Client) ProductBySlug(ctx context.Context, slug string) (domain.Product, error) {
	var out struct {
		Product *domain.Product `json:"product"`
	}
	path := "/products/get-product/" + url.PathEscape(slug)
	if err := c.get(ctx, "product fetch", path, &out); err != nil {
		return domain.Product{}, err
	}
	if out.Product == nil {
		return domain.Product{}, ErrNotFound
	}
	return *out.Product, nil
}

func (c *Client) RelatedProducts(ctx context.Context, productID, categoryID string) ([]domain.Product, error) {
	var out struct {
		Products []domain.Product `json:"products"`
	}
	path := fmt.Sprintf("/products/related-product/%s/%s", url.PathEscape(productID), url.PathEscape(categoryID))
	if err := c.get(ctx, "related products fetch", path, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// Categories lists the catalog facets. Concurrent callers share one request.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	v, err, _ := c.sfg.Do("categories", func() (interface{}, error) {
		var out struct {
			Category []domain.Category `json:"category"`
		}
		if err := c.get(ctx, "category fetch", "/category/get-category", &out); err != nil {
			return nil, err
		}
		return out.Category, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Category), nil
}

// ProductsByCategory fetches the category-wise listing used by the category view.
func (c *Client) ProductsByCategory(ctx context.Context, slug string) (domain.Category, []domain.Product, error) {
	var out struct {
		Category domain.Category  `json:"category"`
		Products []domain.Product `json:"products"`
	}
	path := "/products/product-category/" + url.PathEscape(slug)
	if err := c.get(ctx, "category products fetch", path, &out); err != nil {
		return domain.Category{}, nil, err
	}
	return out.Category, out.Products, nil
}

// Search queries by keyword. The endpoint returns a bare product array rather
// than the usual envelope.
func (c *Client) Search(ctx context.Context, keyword string) ([]domain.Product, error) {
	const op = "product search"
	data, err := c.roundTrip(ctx, op, http.MethodGet, "/products/search/"+url.PathEscape(keyword), nil, "", "")
	if err != nil {
		return nil, err
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, &ServerError{Message: fmt.Sprintf("malformed search response: %v", err)}
	}
	return products, nil
}

// PlaceOrder submits the order-creation request. The idempotency key travels
// as a header so the order collaborator can deduplicate retried commits.
func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest, idempotencyKey string) error {
	if req.Cart == nil {
		req.Cart = []domain.Product{}
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to read session token: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode order request: %w", err)
	}

	data, err := c.roundTrip(ctx, "order placement", http.MethodPost, "/products/create", body, token, idempotencyKey)
	if err != nil {
		return err
	}
	return checkEnvelope(data)
}

func (c *Client) get(ctx context.Context, op, path string, out any) error {
	return c.do(ctx, op, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	data, err := c.roundTrip(ctx, op, method, path, body, "", "")
	if err != nil {
		return err
	}

	if err := checkEnvelope(data); err != nil {
		return err
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &ServerError{Message: fmt.Sprintf("malformed response: %v", err)}
		}
	}
	return nil
}

// roundTrip performs one HTTP exchange through the circuit breaker and maps
// transport failures and status codes into the error taxonomy.
func (c *Client) roundTrip(ctx context.Context, op, method, path string, body []byte, token, idempotencyKey string) ([]byte, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	var statusCode int
	data, err := c.breaker.Execute(func() ([]byte, error) {
		resp, errDo := c.http.Do(req)
		if errDo != nil {
			return nil, errDo
		}
		defer resp.Body.Close()

		statusCode = resp.StatusCode
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		// breaker-open refusals look like transport failures to callers
		return nil, &NetworkError{Op: op, Err: err}
	}

	if statusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if statusCode >= 400 {
		return nil, &ServerError{StatusCode: statusCode, Message: envelopeMessage(data)}
	}
	return data, nil
}

type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

// checkEnvelope rejects well-formed responses that carry success=false. A
// response without a success field (the paged list, the count) passes through.
func checkEnvelope(data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return &ServerError{Message: fmt.Sprintf("malformed response: %v", err)}
	}
	if env.Success != nil && !*env.Success {
		return &ServerError{Message: env.Message}
	}
	return nil
}

func envelopeMessage(data []byte) string {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ""
	}
	return env.Message
}
