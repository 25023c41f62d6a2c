package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apperrors "spacelink/pkg/errors"
	httputil "spacelink/pkg/http"

	"github.com/julienschmidt/httprouter"
)

type contextKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(*Principal)
	return p, ok && p != nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Require wraps a route so it only runs for a caller with a valid token.
func (m *TokenManager) Require(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		principal, err := m.Parse(BearerToken(r))
		if err != nil {
			message := "Invalid or expired token"
			if errors.Is(err, ErrMissingToken) {
				message = "Authorization token required"
			}
			_ = httputil.WriteError(w, apperrors.Unauthorized(message))
			return
		}
		next(w, r.WithContext(WithPrincipal(r.Context(), principal)), ps)
	}
}

// Optional attaches the principal when a valid token is present and lets the
// request through anonymously otherwise.
func (m *TokenManager) Optional(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if principal, err := m.Parse(BearerToken(r)); err == nil {
			r = r.WithContext(WithPrincipal(r.Context(), principal))
		}
		next(w, r, ps)
	}
}
