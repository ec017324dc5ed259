package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jmcleod/gatehouse/account"
	"github.com/jmcleod/gatehouse/storage"
)

// Signup handles POST /signup.
func (a *API) Signup(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[SignupRequest](w, r, maxAuthBodySize)
	if !ok {
		return
	}
	if err := validateSignup(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.accounts.Signup(r.Context(), account.NewUser{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		var dup *storage.DuplicateError
		if errors.As(err, &dup) {
			a.audit.logFailure(AuditSignupDuplicate, r, dup.Error(),
				slog.String("username", req.Username))
		}
		a.mapError(w, r, err)
		return
	}

	a.audit.logEvent(AuditSignup, r, user.ID.String())
	writeJSON(w, http.StatusCreated, userResponse(user))
}

// Login handles POST /auth. Credentials arrive as HTTP Basic Auth with the
// username or email as the user part.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	identifier, password, ok := r.BasicAuth()
	if !ok || identifier == "" || password == "" {
		a.audit.logFailure(AuditLoginFailure, r, "missing basic auth credentials")
		writeError(w, http.StatusUnauthorized, "invalid username or password provided")
		return
	}

	// Rate-limit before the expensive KDF work. The limiter key is a
	// digest of the identifier, so limiter state never stores login input.
	limiterID := lookupID(identifier)
	if blocked, retryAfter := a.limiter.check(limiterID); blocked {
		a.audit.logFailure(AuditLoginRateLimited, r, "rate limited")
		writeRateLimited(w, retryAfter)
		return
	}

	token, err := a.accounts.Login(r.Context(), identifier, password)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			a.limiter.recordFailure(limiterID)
			a.audit.logFailure(AuditLoginFailure, r, "invalid credentials")
		}
		a.mapError(w, r, err)
		return
	}

	a.limiter.recordSuccess(limiterID)
	a.audit.logEvent(AuditLoginSuccess, r, "")
	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	// Round up so the client never retries before the lockout ends.
	seconds := int(retryAfter.Seconds()) + 1
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	writeError(w, http.StatusTooManyRequests, "too many failed login attempts")
}
