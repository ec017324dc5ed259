package api

import (
	"fmt"
	"net/mail"
	"net/url"
)

const (
	// minUsernameLen matches the storage-side expectation that usernames
	// are at least three characters.
	minUsernameLen = 3
	// minPasswordLen is the minimum password length for signup. The
	// password is the only human-chosen secret in the scheme; enforcing a
	// minimum length ensures a baseline of entropy.
	minPasswordLen = 8
)

// validateSignup checks the signup fields and returns a caller-facing
// message for the first violation found.
func validateSignup(req SignupRequest) error {
	if len(req.Username) < minUsernameLen {
		return fmt.Errorf("invalid username: %q is too short", req.Username)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return fmt.Errorf("invalid email address %q", req.Email)
	}
	if len(req.Password) < minPasswordLen {
		return fmt.Errorf("invalid password: must be at least %d characters", minPasswordLen)
	}
	return nil
}

// validateProfile checks the profile update fields. An empty image clears
// the field and is always valid.
func validateProfile(req UpdateProfileRequest) error {
	if req.Image == "" {
		return nil
	}
	u, err := url.Parse(req.Image)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid image: %q is not a valid url", req.Image)
	}
	return nil
}
