package api

import (
	"net/http"

	"github.com/jmcleod/gatehouse/storage"
)

// Me handles GET /me.
func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authorized")
		return
	}

	user, err := a.accounts.Profile(r.Context(), identity.UserID)
	if err != nil {
		// The gate resolved this id moments ago; a miss here is an
		// internal inconsistency, not a caller problem.
		a.audit.logError(r, err)
		writeError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}

	writeJSON(w, http.StatusOK, userResponse(user))
}

// UpdateProfile handles POST /me.
func (a *API) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authorized")
		return
	}

	req, ok := decodeJSON[UpdateProfileRequest](w, r, maxAuthBodySize)
	if !ok {
		return
	}
	if err := validateProfile(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.accounts.UpdateProfile(r.Context(), identity.UserID, storage.ProfileUpdate{
		FullName: req.FullName,
		Bio:      req.Bio,
		Image:    req.Image,
	})
	if err != nil {
		a.mapError(w, r, err)
		return
	}

	a.audit.logEvent(AuditProfileUpdated, r, identity.UserID.String())
	writeJSON(w, http.StatusOK, userResponse(user))
}
