package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSignup(t *testing.T) {
	valid := SignupRequest{Username: "ada", Email: "ada@example.com", Password: "secretpw"}
	assert.NoError(t, validateSignup(valid))

	tests := []struct {
		name   string
		mutate func(*SignupRequest)
	}{
		{"empty username", func(r *SignupRequest) { r.Username = "" }},
		{"short username", func(r *SignupRequest) { r.Username = "ab" }},
		{"empty email", func(r *SignupRequest) { r.Email = "" }},
		{"no at sign", func(r *SignupRequest) { r.Email = "ada.example.com" }},
		{"empty password", func(r *SignupRequest) { r.Password = "" }},
		{"short password", func(r *SignupRequest) { r.Password = "1234567" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			assert.Error(t, validateSignup(req))
		})
	}
}

func TestValidateProfile(t *testing.T) {
	tests := []struct {
		name    string
		image   string
		wantErr bool
	}{
		{"empty image clears field", "", false},
		{"https url", "https://example.com/ada.png", false},
		{"http url", "http://example.com/ada.png", false},
		{"ftp scheme", "ftp://example.com/ada.png", true},
		{"relative path", "/images/ada.png", true},
		{"bare word", "ada.png", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateProfile(UpdateProfileRequest{Image: tt.image})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
