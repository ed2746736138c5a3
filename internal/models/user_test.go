package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validUserCreateRequest() UserCreateRequest {
	return UserCreateRequest{
		FirstName:   "Kwame",
		LastName:    "Asante",
		Username:    "kwame_a",
		Email:       "kwame@example.com",
		Password:    "secret123",
		PhoneNumber: "0241234567",
		Gender:      "male",
	}
}

func TestUserCreateRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *UserCreateRequest)
		wantErr bool
	}{
		{"valid", func(r *UserCreateRequest) {}, false},
		{"no phone is fine", func(r *UserCreateRequest) { r.PhoneNumber = "" }, false},
		{"no gender is fine", func(r *UserCreateRequest) { r.Gender = "" }, false},
		{"missing first name", func(r *UserCreateRequest) { r.FirstName = " " }, true},
		{"long first name", func(r *UserCreateRequest) { r.FirstName = strings.Repeat("a", 51) }, true},
		{"missing last name", func(r *UserCreateRequest) { r.LastName = "" }, true},
		{"short username", func(r *UserCreateRequest) { r.Username = "ab" }, true},
		{"long username", func(r *UserCreateRequest) { r.Username = strings.Repeat("x", 31) }, true},
		{"bad email", func(r *UserCreateRequest) { r.Email = "not-an-email" }, true},
		{"short password", func(r *UserCreateRequest) { r.Password = "12345" }, true},
		{"bad phone", func(r *UserCreateRequest) { r.PhoneNumber = "abc!" }, true},
		{"bad gender", func(r *UserCreateRequest) { r.Gender = "unknown" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validUserCreateRequest()
			tt.mutate(&req)

			err := req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPreferencesUpdateRequestValidate(t *testing.T) {
	categories := []string{"Dance", "Gospel"}
	ageRange := "21-25"
	personality := "Ambivert"
	role := "Event Attendee"

	req := PreferencesUpdateRequest{
		Categories:  &categories,
		AgeRange:    &ageRange,
		Personality: &personality,
		Role:        &role,
		PriceRange:  &PriceRange{Min: 10, Max: 200},
	}
	assert.NoError(t, req.Validate())

	badCategory := []string{"Skydiving"}
	require.Error(t, (&PreferencesUpdateRequest{Categories: &badCategory}).Validate())

	badRange := "5-9"
	require.Error(t, (&PreferencesUpdateRequest{AgeRange: &badRange}).Validate())

	inverted := &PreferencesUpdateRequest{PriceRange: &PriceRange{Min: 100, Max: 50}}
	require.Error(t, inverted.Validate())
}

func TestUserHelpers(t *testing.T) {
	user := &User{FirstName: "Kwame", LastName: "Asante", Role: RoleUser}
	assert.Equal(t, "Kwame Asante", user.FullName())
	assert.False(t, user.IsAdmin())

	user.Role = RoleAdmin
	assert.True(t, user.IsAdmin())
}
