package catalog

import (
	"context"
	"sync"

	"github.com/maaaahin/drugo-storefront/internal/api"
	"github.com/maaaahin/drugo-storefront/internal/domain"
)

// Fetcher is the slice of the storefront API the controller needs.
type Fetcher interface {
	ProductPage(ctx context.Context, page int) ([]domain.Product, error)
	ProductCount(ctx context.Context) (int, error)
	FilterProducts(ctx context.Context, q api.FilterQuery) ([]domain.Product, error)
}

type mode int

const (
	modeUnfiltered mode = iota
	modeFiltered
)

// Controller reconciles "browse everything, page by page" with "apply filters,
// replace results". Which mode is active is the single source of truth for
// every fetch decision: all inputs funnel through one transition path, so the
// paged fetch and the filtered fetch can never fire for the same state.
//
// Every fetch carries a sequence number taken under the lock. A response is
// applied only while its number is still the latest issued, so an old
// unfiltered page arriving after a filter change is discarded instead of
// clobbering the filtered list. The same check discards responses for a view
// that has since been torn down.
type Controller struct {
	fetch Fetcher

	mu       sync.Mutex
	filters  Composer
	mode     mode
	page     int
	products []domain.Product
	total    int
	fetching bool
	seq      uint64
}

// View is a consistent snapshot of the controller state for display.
type View struct {
	Products    []domain.Product `json:"products"`
	Total       int              `json:"total"`
	Page        int              `json:"page"`
	Filtering   bool             `json:"filtering"`
	Fetching    bool             `json:"fetching"`
	CanLoadMore bool             `json:"can_load_more"`
	Exhausted   bool             `json:"exhausted"`
}

func NewController(fetch Fetcher) *Controller {
	return &Controller{fetch: fetch, page: 1}
}

// Mount performs the initial load: the result total (fetched once, independent
// of mode) and page 1 of the unfiltered list.
func (c *Controller) Mount(ctx context.Context) error {
	total, err := c.fetch.ProductCount(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.total = total
	c.mu.Unlock()

	return c.reevaluate(ctx)
}

// ToggleCategory updates the category selection and re-evaluates the mode.
func (c *Controller) ToggleCategory(ctx context.Context, id string, selected bool) error {
	c.mu.Lock()
	c.filters.ToggleCategory(id, selected)
	c.mu.Unlock()
	return c.reevaluate(ctx)
}

// SetPriceBucket replaces the active price bucket (nil clears it) and
// re-evaluates the mode.
func (c *Controller) SetPriceBucket(ctx context.Context, b *PriceBucket) error {
	c.mu.Lock()
	c.filters.SetPriceBucket(b)
	c.mu.Unlock()
	return c.reevaluate(ctx)
}

// Reset clears all filters and refetches page 1 of the unfiltered list.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	c.filters.Reset()
	c.mu.Unlock()
	return c.reevaluate(ctx)
}

// LoadMore advances the cursor and appends the next unfiltered page. It is a
// no-op while filtered, while a fetch is in flight, or once every result is
// already shown; the affordance is not offered in those states.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.mode != modeUnfiltered || c.fetching || len(c.products) >= c.total {
		c.mu.Unlock()
		return nil
	}
	next := c.page + 1
	seq := c.beginLocked()
	c.mu.Unlock()

	products, err := c.fetch.ProductPage(ctx, next)
	if err != nil {
		c.fail(seq)
		return err
	}

	c.apply(seq, func() {
		c.page = next
		c.products = append(c.products, products...)
	})
	return nil
}

// View returns the current display state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	unfiltered := c.mode == modeUnfiltered
	shown := len(c.products)
	return View{
		Products:    append([]domain.Product(nil), c.products...),
		Total:       c.total,
		Page:        c.page,
		Filtering:   !unfiltered,
		Fetching:    c.fetching,
		CanLoadMore: unfiltered && shown < c.total && !c.fetching,
		Exhausted:   unfiltered && shown >= c.total,
	}
}

// Filters returns the active selection for display.
func (c *Controller) Filters() (selected []string, bucket *PriceBucket) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters.Selected(), c.filters.Bucket()
}

// reevaluate is the single transition function: it reads the filter state,
// picks the mode, and issues the one fetch that mode calls for. The result
// replaces the displayed list wholesale.
func (c *Controller) reevaluate(ctx context.Context) error {
	c.mu.Lock()
	active := c.filters.Active()
	if active {
		c.mode = modeFiltered
	} else {
		c.mode = modeUnfiltered
	}
	c.page = 1
	query := c.filters.Query()
	seq := c.beginLocked()
	c.mu.Unlock()

	var (
		products []domain.Product
		err      error
	)
	if active {
		products, err = c.fetch.FilterProducts(ctx, query)
	} else {
		products, err = c.fetch.ProductPage(ctx, 1)
	}
	if err != nil {
		c.fail(seq)
		return err
	}

	c.apply(seq, func() {
		c.products = products
	})
	return nil
}

// beginLocked stamps a new fetch. Callers must hold the lock.
func (c *Controller) beginLocked() uint64 {
	c.seq++
	c.fetching = true
	return c.seq
}

// apply runs fn only if seq is still the latest fetch issued.
func (c *Controller) apply(seq uint64, fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return false // superseded; a newer fetch owns the list now
	}
	c.fetching = false
	fn()
	return true
}

// fail releases the fetching flag unless a newer fetch took over.
func (c *Controller) fail(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq == c.seq {
		c.fetching = false
	}
}
