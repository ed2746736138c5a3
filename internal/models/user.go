package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// UserRole represents the role of a user in the system
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// Preference enums accepted from the client application.
var (
	ValidPreferenceCategories = []string{
		"Dance", "Tech Conference", "Music", "International Events", "Festivals",
		"Games", "Sports", "Education", "Art", "House Party", "Cooking",
		"Exhibition", "Modelling", "Gospel", "Car Showroom and Drifting",
	}
	ValidAgeRanges     = []string{"10-15", "16-20", "21-25", "25-30", "30-35", "36 and Above"}
	ValidPersonalities = []string{"Extrovert", "Introvert", "Ambivert"}
	ValidRolePrefs     = []string{"Event Creator", "Event Attendee"}
)

// PriceRange represents a user's preferred ticket price range
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Preferences represents a user's event preferences
type Preferences struct {
	Categories  []string    `json:"categories,omitempty"`
	AgeRange    string      `json:"age_range,omitempty"`
	Personality string      `json:"personality,omitempty"`
	Role        string      `json:"role,omitempty"`
	PriceRange  *PriceRange `json:"price_range,omitempty"`
}

// User represents a user in the system
type User struct {
	ID           int          `json:"id" db:"id"`
	FirstName    string       `json:"first_name" db:"first_name"`
	LastName     string       `json:"last_name" db:"last_name"`
	Username     string       `json:"username" db:"username"`
	Email        string       `json:"email" db:"email"`
	PasswordHash string       `json:"-" db:"password_hash"`
	PhoneNumber  string       `json:"phone_number,omitempty" db:"phone_number"`
	Gender       string       `json:"gender,omitempty" db:"gender"`
	ProfileImage string       `json:"profile_image,omitempty" db:"profile_image"`
	Location     string       `json:"location,omitempty" db:"location"`
	Preferences  *Preferences `json:"preferences,omitempty" db:"preferences"`
	IsOnline     bool         `json:"is_online" db:"is_online"`
	IsVerified   bool         `json:"is_verified" db:"is_verified"`
	Role         UserRole     `json:"role" db:"role"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// UserCreateRequest represents the data needed to register a new user
type UserCreateRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
	Gender      string `json:"gender"`
}

// UserUpdateRequest represents the profile fields a user may change
type UserUpdateRequest struct {
	FirstName   *string      `json:"first_name"`
	LastName    *string      `json:"last_name"`
	PhoneNumber *string      `json:"phone_number"`
	Location    *string      `json:"location"`
	Preferences *Preferences `json:"preferences"`
	IsOnline    *bool        `json:"is_online"`
}

// PreferencesUpdateRequest represents a partial preferences update
type PreferencesUpdateRequest struct {
	Categories  *[]string   `json:"categories"`
	AgeRange    *string     `json:"age_range"`
	Personality *string     `json:"personality"`
	Role        *string     `json:"role"`
	PriceRange  *PriceRange `json:"price_range"`
}

var (
	userEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex     = regexp.MustCompile(`^\+?[\d\s\-()]+$`)
)

// Validate validates user registration data
func (req *UserCreateRequest) Validate() error {
	if strings.TrimSpace(req.FirstName) == "" {
		return errors.New("first name is required")
	}
	if len(req.FirstName) > 50 {
		return errors.New("first name cannot exceed 50 characters")
	}

	if strings.TrimSpace(req.LastName) == "" {
		return errors.New("last name is required")
	}
	if len(req.LastName) > 50 {
		return errors.New("last name cannot exceed 50 characters")
	}

	if err := validateUsername(req.Username); err != nil {
		return err
	}

	if err := validateUserEmail(req.Email); err != nil {
		return err
	}

	if err := ValidatePassword(req.Password); err != nil {
		return err
	}

	if req.PhoneNumber != "" && !phoneRegex.MatchString(req.PhoneNumber) {
		return errors.New("phone number format is invalid")
	}

	switch req.Gender {
	case "", "male", "female", "other", "prefer-not-to-say":
	default:
		return errors.New("invalid gender value")
	}

	return nil
}

// Validate validates a preferences update
func (req *PreferencesUpdateRequest) Validate() error {
	if req.Categories != nil {
		for _, c := range *req.Categories {
			if !containsString(ValidPreferenceCategories, c) {
				return errors.New("invalid preference category: " + c)
			}
		}
	}

	if req.AgeRange != nil && *req.AgeRange != "" && !containsString(ValidAgeRanges, *req.AgeRange) {
		return errors.New("invalid age range")
	}

	if req.Personality != nil && *req.Personality != "" && !containsString(ValidPersonalities, *req.Personality) {
		return errors.New("invalid personality value")
	}

	if req.Role != nil && *req.Role != "" && !containsString(ValidRolePrefs, *req.Role) {
		return errors.New("invalid role preference")
	}

	if req.PriceRange != nil && req.PriceRange.Min > req.PriceRange.Max {
		return errors.New("price range min cannot exceed max")
	}

	return nil
}

// ValidatePassword checks minimum password requirements
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	if len(password) > 128 {
		return errors.New("password cannot exceed 128 characters")
	}
	return nil
}

func validateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return errors.New("username is required")
	}
	if len(username) < 3 {
		return errors.New("username must be at least 3 characters")
	}
	if len(username) > 30 {
		return errors.New("username cannot exceed 30 characters")
	}
	return nil
}

func validateUserEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	if len(email) > 255 {
		return errors.New("email must be less than 255 characters")
	}
	if !userEmailRegex.MatchString(email) {
		return errors.New("email format is invalid")
	}
	return nil
}

// FullName returns the user's full name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsAdmin returns true if the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
