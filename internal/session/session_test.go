package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maaaahin/drugo-storefront/internal/localstore"
)

type mapStore map[string][]byte

func (m mapStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m[key]
	if !ok {
		return nil, localstore.ErrKeyNotFound
	}
	return v, nil
}

func (m mapStore) Put(_ context.Context, key string, value []byte) error {
	m[key] = value
	return nil
}

func (m mapStore) Delete(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

func (m mapStore) Close() error { return nil }

func TestProfileAndToken(t *testing.T) {
	backing := mapStore{
		localstore.KeySession: []byte(`{"user":{"name":"Asha","email":"asha@example.com","address":"12 Hill Road"},"token":"tok-1"}`),
	}
	sut := NewReader(backing)
	ctx := context.Background()

	profile, err := sut.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Asha", profile.Name)
	assert.Equal(t, "12 Hill Road", profile.Address)

	token, err := sut.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
}

func TestAnonymousSession(t *testing.T) {
	sut := NewReader(mapStore{})
	ctx := context.Background()

	profile, err := sut.Profile(ctx)
	require.NoError(t, err)
	assert.Empty(t, profile.Address)

	token, err := sut.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestCorruptSession(t *testing.T) {
	backing := mapStore{localstore.KeySession: []byte(`not json`)}
	sut := NewReader(backing)

	_, err := sut.Profile(context.Background())
	require.ErrorContains(t, err, "failed to decode session")
}
