package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/internal/storefront"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// DefaultSessionHeader carries the shopper's session id.
const DefaultSessionHeader = "X-Session-Id"

const maxSessionIDLen = 128

// SessionProvider resolves a session id to a mounted session.
type SessionProvider interface {
	Get(ctx context.Context, id string) (*storefront.Session, error)
}

// Session attaches the shopper's session to the request context. A request without a
// session id starts a new session; the id is echoed on every response.
func Session(provider SessionProvider, header string, logg *logger.Logger) func(http.Handler) http.Handler {
	if header == "" {
		header = DefaultSessionHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			id := strings.TrimSpace(r.Header.Get(header))
			if len(id) > maxSessionIDLen || strings.ContainsAny(id, ": /") {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid session id"))
				return
			}
			if id == "" {
				id = storefront.NewSessionID()
			}
			if logg != nil {
				ctx = logg.WithSessionID(ctx, id)
			}

			sess, err := provider.Get(ctx, id)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open session"))
				return
			}
			w.Header().Set(header, id)
			next.ServeHTTP(w, r.WithContext(storefront.WithSession(ctx, sess)))
		})
	}
}
