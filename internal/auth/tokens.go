package auth

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/storefront/internal/storage"
	pkgauth "github.com/angelmondragon/storefront/pkg/auth"
)

// TokenStore reads the bearer token from a session's local store. It is the API client's
// token source.
type TokenStore struct {
	records *storage.Records
	now     func() time.Time
}

func NewTokenStore(store storage.Store) *TokenStore {
	return &TokenStore{records: storage.NewRecords(store), now: time.Now}
}

// Token returns the stored token, or "" when none is stored or it has expired.
func (t *TokenStore) Token(ctx context.Context) (string, error) {
	token, err := t.records.LoadString(ctx, storage.KeyToken)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	if !pkgauth.TokenUsable(token, t.now()) {
		return "", nil
	}
	return token, nil
}

func (t *TokenStore) save(ctx context.Context, token string) error {
	return t.records.SaveString(ctx, storage.KeyToken, token)
}

func (t *TokenStore) clear(ctx context.Context) error {
	return t.records.Delete(ctx, storage.KeyToken)
}
