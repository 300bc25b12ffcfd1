package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/maaaahin/drugo-storefront/internal/domain"
	"github.com/maaaahin/drugo-storefront/internal/localstore"
)

var ErrDuplicateItem = errors.New("item is already in the cart")

// Store holds the session's cart: an ordered collection of product snapshots
// with at most one entry per product ID. A single instance is shared by every
// consumer; all of them observe the same item sequence after any mutation.
//
// Mutations are written through to the local store synchronously, but the
// in-memory state stays authoritative for the running session: a persistence
// failure is logged and never rolls a mutation back.
type Store struct {
	mu        sync.RWMutex
	items     []domain.Product
	backing   localstore.Store
	listeners []func(items []domain.Product)
}

func NewStore(backing localstore.Store) *Store {
	return &Store{backing: backing}
}

// Subscribe registers fn to run after every change with a snapshot of the new
// contents. Subscriptions last for the lifetime of the store.
func (s *Store) Subscribe(fn func(items []domain.Product)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Hydrate loads the persisted cart, replacing whatever is in memory. Run once
// per session before first use; a missing key yields an empty cart.
func (s *Store) Hydrate(ctx context.Context) error {
	data, err := s.backing.Get(ctx, localstore.KeyCart)
	if errors.Is(err, localstore.ErrKeyNotFound) {
		data = nil
	} else if err != nil {
		return fmt.Errorf("failed to read persisted cart: %w", err)
	}

	var items []domain.Product
	if data != nil {
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("failed to decode persisted cart: %w", err)
		}
	}

	s.mu.Lock()
	s.items = items
	snapshot, listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(listeners, snapshot)
	return nil
}

// Add appends p to the cart. Re-adding a product already present fails with
// ErrDuplicateItem and mutates nothing; there is no quantity to merge into.
func (s *Store) Add(ctx context.Context, p domain.Product) error {
	s.mu.Lock()
	for _, item := range s.items {
		if item.ID == p.ID {
			s.mu.Unlock()
			return ErrDuplicateItem
		}
	}
	s.items = append(s.items, p)
	snapshot, listeners := s.snapshotLocked()
	s.persist(ctx, snapshot)
	s.mu.Unlock()

	notify(listeners, snapshot)
	return nil
}

// Remove drops the item with the given product ID; absent IDs are a no-op.
func (s *Store) Remove(ctx context.Context, productID string) {
	s.mu.Lock()
	found := false
	for i, item := range s.items {
		if item.ID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return
	}
	snapshot, listeners := s.snapshotLocked()
	s.persist(ctx, snapshot)
	s.mu.Unlock()

	notify(listeners, snapshot)
}

// Clear empties the cart and persists the empty collection.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	snapshot, listeners := s.snapshotLocked()
	s.persist(ctx, snapshot)
	s.mu.Unlock()

	notify(listeners, snapshot)
}

// Items returns a copy of the current contents in insertion order.
func (s *Store) Items() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Product(nil), s.items...)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Total folds price over every item. Formatting into a display currency is the
// caller's concern.
func (s *Store) Total() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0.0
	for _, item := range s.items {
		total += item.Price
	}
	return total
}

func (s *Store) snapshotLocked() ([]domain.Product, []func(items []domain.Product)) {
	snapshot := append([]domain.Product(nil), s.items...)
	listeners := make([]func(items []domain.Product), len(s.listeners))
	copy(listeners, s.listeners)
	return snapshot, listeners
}

// persist runs while the store lock is held so writes reach the backing in
// mutation order.
func (s *Store) persist(ctx context.Context, snapshot []domain.Product) {
	if snapshot == nil {
		snapshot = []domain.Product{}
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		log.Printf("failed to encode cart: %v", err)
		return
	}
	if err := s.backing.Put(ctx, localstore.KeyCart, data); err != nil {
		// memory stays authoritative for the session
		log.Printf("failed to persist cart: %v", err)
	}
}

// notify runs outside the store lock so a listener may call back into the store.
func notify(listeners []func(items []domain.Product), snapshot []domain.Product) {
	for _, fn := range listeners {
		fn(snapshot)
	}
}
