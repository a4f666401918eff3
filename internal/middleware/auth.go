package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/krkdev/contacts-api/internal/apperr"
	"github.com/krkdev/contacts-api/internal/ctxkeys"
	"github.com/krkdev/contacts-api/internal/model"
)

// Authenticator resolves a bearer token to a user and its session hash.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, string, error)
}

const msgNotAuthorized = "Not authorized"

// RequireAuth rejects requests without a valid bearer token and adds the
// user and session hash to the context of the rest.
func RequireAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, msgNotAuthorized)
				return
			}

			user, sessionHash, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if apperr.KindOf(err) == apperr.KindUnauthorized {
					writeJSONError(w, http.StatusUnauthorized, msgNotAuthorized)
					return
				}
				slog.Error("authentication failed", "error", err, "path", r.URL.Path)
				writeJSONError(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			ctx := ctxkeys.WithUser(r.Context(), user)
			ctx = ctxkeys.WithSessionHash(ctx, sessionHash)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
