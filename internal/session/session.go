package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/maaaahin/drugo-storefront/internal/localstore"
)

// Profile is the authenticated user's blob as persisted by the auth flow.
// This engine only reads it; the auth screens own writes.
type Profile struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type blob struct {
	User  Profile `json:"user"`
	Token string  `json:"token"`
}

// Reader exposes the persisted session. A missing blob is not an error: it is
// an anonymous session with an empty profile and no token.
type Reader struct {
	backing localstore.Store
}

func NewReader(backing localstore.Store) *Reader {
	return &Reader{backing: backing}
}

func (r *Reader) Profile(ctx context.Context) (Profile, error) {
	b, err := r.read(ctx)
	if err != nil {
		return Profile{}, err
	}
	return b.User, nil
}

// Token satisfies api.TokenProvider.
func (r *Reader) Token(ctx context.Context) (string, error) {
	b, err := r.read(ctx)
	if err != nil {
		return "", err
	}
	return b.Token, nil
}

func (r *Reader) read(ctx context.Context) (blob, error) {
	data, err := r.backing.Get(ctx, localstore.KeySession)
	if errors.Is(err, localstore.ErrKeyNotFound) {
		return blob{}, nil
	}
	if err != nil {
		return blob{}, fmt.Errorf("failed to read session: %w", err)
	}

	var b blob
	if err := json.Unmarshal(data, &b); err != nil {
		return blob{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return b, nil
}
