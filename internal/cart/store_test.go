package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maaaahin/drugo-storefront/internal/domain"
	"github.com/maaaahin/drugo-storefront/internal/localstore"
)

type mockBacking struct {
	m      sync.RWMutex
	values map[string][]byte
	err    error
	puts   int
}

func newMockBacking() *mockBacking {
	return &mockBacking{values: make(map[string][]byte)}
}

func (m *mockBacking) Get(_ context.Context, key string) ([]byte, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	v, ok := m.values[key]
	if !ok {
		return nil, localstore.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockBacking) Put(_ context.Context, key string, value []byte) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	m.puts++
	return nil
}

func (m *mockBacking) Delete(_ context.Context, key string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.values, key)
	return nil
}

func (m *mockBacking) Close() error { return nil }

func (m *mockBacking) persisted(t *testing.T) string {
	t.Helper()
	m.m.RLock()
	defer m.m.RUnlock()
	return string(m.values[localstore.KeyCart])
}

func product(id string, price float64) domain.Product {
	return domain.Product{ID: id, Name: "product " + id, Price: price}
}

func TestAdd_PreservesInsertionOrder(t *testing.T) {
	sut := NewStore(newMockBacking())
	ctx := context.Background()

	require.NoError(t, sut.Add(ctx, product("p1", 100)))
	require.NoError(t, sut.Add(ctx, product("p2", 250)))
	require.NoError(t, sut.Add(ctx, product("p3", 30)))
	sut.Remove(ctx, "p2")
	require.NoError(t, sut.Add(ctx, product("p4", 5)))

	items := sut.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "p1", items[0].ID)
	assert.Equal(t, "p3", items[1].ID)
	assert.Equal(t, "p4", items[2].ID)
}

func TestAdd_Duplicate(t *testing.T) {
	backing := newMockBacking()
	sut := NewStore(backing)
	ctx := context.Background()

	require.NoError(t, sut.Add(ctx, product("p1", 100)))
	before := backing.persisted(t)

	err := sut.Add(ctx, product("p1", 999))
	assert.ErrorIs(t, err, ErrDuplicateItem)

	// nothing mutated, nothing re-persisted
	items := sut.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 100.0, items[0].Price)
	assert.Equal(t, before, backing.persisted(t))
}

func TestRemove_AbsentIsNoOp(t *testing.T) {
	backing := newMockBacking()
	sut := NewStore(backing)
	ctx := context.Background()

	require.NoError(t, sut.Add(ctx, product("p1", 100)))
	putsBefore := backing.puts

	sut.Remove(ctx, "nope")

	assert.Equal(t, 1, sut.Len())
	assert.Equal(t, putsBefore, backing.puts)
}

func TestTotal(t *testing.T) {
	sut := NewStore(newMockBacking())
	ctx := context.Background()

	assert.Equal(t, 0.0, sut.Total())

	require.NoError(t, sut.Add(ctx, product("p1", 100)))
	require.NoError(t, sut.Add(ctx, product("p2", 250)))
	assert.Equal(t, 350.0, sut.Total())

	sut.Remove(ctx, "p1")
	assert.Equal(t, 250.0, sut.Total())
}

func TestClear_PersistsEmpty(t *testing.T) {
	backing := newMockBacking()
	sut := NewStore(backing)
	ctx := context.Background()

	require.NoError(t, sut.Add(ctx, product("p1", 100)))
	sut.Clear(ctx)

	assert.Equal(t, 0, sut.Len())
	assert.JSONEq(t, `[]`, backing.persisted(t))
}

func TestHydrate_LoadsPersisted(t *testing.T) {
	backing := newMockBacking()
	backing.values[localstore.KeyCart] = []byte(`[{"_id":"p1","price":100},{"_id":"p2","price":250}]`)

	sut := NewStore(backing)
	require.NoError(t, sut.Hydrate(context.Background()))

	assert.Equal(t, 2, sut.Len())
	assert.Equal(t, 350.0, sut.Total())
}

func TestHydrate_MissingKeyYieldsEmpty(t *testing.T) {
	sut := NewStore(newMockBacking())
	require.NoError(t, sut.Hydrate(context.Background()))
	assert.Equal(t, 0, sut.Len())
}

func TestHydrate_OverwritesMemory(t *testing.T) {
	backing := newMockBacking()
	sut := NewStore(backing)
	ctx := context.Background()

	require.NoError(t, sut.Add(ctx, product("stale", 1)))
	backing.values[localstore.KeyCart] = []byte(`[{"_id":"p9","price":9}]`)

	require.NoError(t, sut.Hydrate(ctx))

	items := sut.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p9", items[0].ID)
}

func TestPersistFailure_MemoryStaysAuthoritative(t *testing.T) {
	backing := newMockBacking()
	sut := NewStore(backing)
	ctx := context.Background()

	backing.err = fmt.Errorf("disk full")
	require.NoError(t, sut.Add(ctx, product("p1", 100)))

	assert.Equal(t, 1, sut.Len())
	assert.Equal(t, 100.0, sut.Total())
}

func TestSubscribe_NotifiedOnEveryMutation(t *testing.T) {
	sut := NewStore(newMockBacking())
	ctx := context.Background()

	var seen [][]domain.Product
	sut.Subscribe(func(items []domain.Product) {
		seen = append(seen, items)
	})

	require.NoError(t, sut.Add(ctx, product("p1", 100)))
	require.NoError(t, sut.Add(ctx, product("p2", 250)))
	sut.Remove(ctx, "p1")
	sut.Clear(ctx)

	require.Len(t, seen, 4)
	assert.Len(t, seen[0], 1)
	assert.Len(t, seen[1], 2)
	assert.Len(t, seen[2], 1)
	assert.Len(t, seen[3], 0)
}

func TestConcurrentMutations_LastPersistMatchesMemory(t *testing.T) {
	backing := newMockBacking()
	sut := NewStore(backing)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = sut.Add(ctx, product(fmt.Sprintf("p%d", n), float64(n)))
		}(i)
	}
	wg.Wait()

	// writes happen in mutation order, so the persisted value is exactly the
	// final contents rather than some earlier interleaved snapshot
	var persisted []domain.Product
	require.NoError(t, json.Unmarshal([]byte(backing.persisted(t)), &persisted))
	assert.Equal(t, sut.Items(), persisted)
}

func TestConcurrentAdd_UniquenessHolds(t *testing.T) {
	sut := NewStore(newMockBacking())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sut.Add(ctx, product("p1", 100)) // all but one must fail
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, sut.Len())
}
