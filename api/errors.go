package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jmcleod/gatehouse/account"
	"github.com/jmcleod/gatehouse/storage"
)

const maxAuthBodySize = 64 << 10

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// mapError translates domain errors into HTTP responses. Internal detail
// is logged by the audit logger at the call sites; the response body only
// ever carries the collapsed, caller-safe message.
func (a *API) mapError(w http.ResponseWriter, r *http.Request, err error) {
	var dup *storage.DuplicateError
	switch {
	case errors.Is(err, account.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid username or password provided")
	case errors.Is(err, account.ErrNotAuthorized):
		writeError(w, http.StatusUnauthorized, "not authorized")
	case errors.As(err, &dup):
		writeError(w, http.StatusBadRequest, duplicateMessage(dup))
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "item not found")
	default:
		a.audit.logError(r, err)
		writeError(w, http.StatusInternalServerError, "an unexpected error occurred")
	}
}

func duplicateMessage(dup *storage.DuplicateError) string {
	switch dup.Field {
	case "email":
		return "email address already exists"
	case "username":
		return "username already exists"
	default:
		return "username or email already exists"
	}
}

// decodeJSON decodes a JSON request body into T, enforcing a size cap and
// rejecting unknown fields. On failure it writes the error response and
// returns false.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request, maxBytes int64) (T, bool) {
	var req T
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		} else {
			writeError(w, http.StatusBadRequest, "invalid request body")
		}
		return req, false
	}
	return req, true
}
