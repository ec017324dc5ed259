package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/jmcleod/gatehouse/account"
)

type contextKey int

const identityKey contextKey = iota

// AuthMiddleware runs the authorization gate over the bearer token and
// stores the authenticated identity on the request context. It is the only
// place an identity enters a request; handlers must read it back with
// identityFromContext and never re-derive it from request data.
func (a *API) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := a.accounts.Authorize(r.Context(), bearerToken(r))
		if err != nil {
			// The wrapped cause (expired vs forged vs deleted subject)
			// goes to the audit log only; the response is uniform.
			a.audit.logFailure(AuditAuthorizeFailure, r, err.Error())
			a.mapError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from the Authorization header. Returns ""
// when the header is absent or not a bearer scheme.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func identityFromContext(ctx context.Context) (account.AuthenticatedUser, bool) {
	identity, ok := ctx.Value(identityKey).(account.AuthenticatedUser)
	return identity, ok
}
