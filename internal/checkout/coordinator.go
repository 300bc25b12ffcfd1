package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maaaahin/drugo-storefront/internal/api"
	"github.com/maaaahin/drugo-storefront/internal/cart"
	"github.com/maaaahin/drugo-storefront/internal/domain"
	"github.com/maaaahin/drugo-storefront/internal/session"
)

const PaymentMethodCOD = "COD"

// OrderPlacer is the slice of the storefront API the coordinator needs.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req api.OrderRequest, idempotencyKey string) error
}

type ProfileSource interface {
	Profile(ctx context.Context) (session.Profile, error)
}

// Coordinator converts the cart into a server-side order exactly once.
// Preconditions are checked before any network traffic; while a commit is in
// flight a second Commit is rejected, preventing double submission from rapid
// repeated user action. On success the cart is emptied; on failure it is left
// untouched and the guard is released so the user may retry.
type Coordinator struct {
	cart     *cart.Store
	orders   OrderPlacer
	profiles ProfileSource
	events   Publisher // optional

	mu         sync.Mutex
	inFlight   bool
	attemptKey string
}

func NewCoordinator(cartStore *cart.Store, orders OrderPlacer, profiles ProfileSource, events Publisher) *Coordinator {
	return &Coordinator{
		cart:     cartStore,
		orders:   orders,
		profiles: profiles,
		events:   events,
	}
}

// Commit validates preconditions, submits one order-creation request and
// reconciles the cart with the outcome.
func (c *Coordinator) Commit(ctx context.Context) error {
	items := c.cart.Items()
	if len(items) == 0 {
		return ErrEmptyCart
	}

	profile, err := c.profiles.Profile(ctx)
	if err != nil {
		return fmt.Errorf("failed to read profile: %w", err)
	}
	if profile.Address == "" {
		return ErrMissingAddress
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ErrCommitInFlight
	}
	c.inFlight = true
	if c.attemptKey == "" {
		c.attemptKey = uuid.NewString()
	}
	key := c.attemptKey
	c.mu.Unlock()

	err = c.orders.PlaceOrder(ctx, api.OrderRequest{
		Cart:          items,
		Address:       profile.Address,
		PaymentMethod: PaymentMethodCOD,
	}, key)

	if err != nil {
		c.mu.Lock()
		c.inFlight = false
		// keep the attempt key across ambiguous failures so a retry can be
		// deduplicated server-side; rotate it once the outcome is definitive
		if !ambiguous(err) {
			c.attemptKey = ""
		}
		c.mu.Unlock()
		return err
	}

	// clear before releasing the guard: a Commit admitted in between would
	// snapshot the already-submitted items and place the order twice
	c.cart.Clear(ctx)

	c.mu.Lock()
	c.inFlight = false
	c.attemptKey = ""
	c.mu.Unlock()

	if c.events != nil {
		event := OrderPlacedEvent{
			IdempotencyKey: key,
			Address:        profile.Address,
			Items:          items,
			TotalAmount:    sumPrices(items),
			PlacedAt:       time.Now(),
		}
		if pubErr := c.events.OrderPlaced(ctx, event); pubErr != nil {
			// the order is already committed; the event is best effort
			log.Printf("failed to publish order event: %v", pubErr)
		}
	}
	return nil
}

// ambiguous reports whether the request may have reached the server even
// though we saw a failure.
func ambiguous(err error) bool {
	var netErr *api.NetworkError
	return errors.As(err, &netErr)
}

func sumPrices(items []domain.Product) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Price
	}
	return total
}
