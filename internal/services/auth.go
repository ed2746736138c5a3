package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ticketmate-backend/internal/config"
	"ticketmate-backend/internal/models"
	"ticketmate-backend/internal/utils"
)

const resetTokenExpiry = 10 * time.Minute

// AuthService handles registration, login and credential management
type AuthService struct {
	users     UserStore
	jwtConfig config.JWTConfig
}

// NewAuthService creates a new authentication service
func NewAuthService(users UserStore, jwtConfig config.JWTConfig) *AuthService {
	return &AuthService{
		users:     users,
		jwtConfig: jwtConfig,
	}
}

// Claims is the JWT payload issued on login and registration
type Claims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthResponse carries a user together with their bearer token
type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// LoginRequest represents a login attempt. Identifier accepts either the
// email address or the username.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// PasswordChangeRequest represents a password change for a logged-in user
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Register creates a new user account and issues a token
func (s *AuthService) Register(req *models.UserCreateRequest) (*AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, err.Error())
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.PhoneNumber != "" {
		req.PhoneNumber = NormalizePhoneNumber(req.PhoneNumber)
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(req, passwordHash)
	if err != nil {
		return nil, err
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: user, Token: token}, nil
}

// Login authenticates a user by email or username and issues a token
func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	if strings.TrimSpace(req.Identifier) == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: identifier and password are required", models.ErrInvalidInput)
	}

	user, err := s.users.GetByEmailOrUsername(strings.ToLower(strings.TrimSpace(req.Identifier)))
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrUnauthorized
		}
		return nil, err
	}

	valid, err := utils.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, models.ErrUnauthorized
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: user, Token: token}, nil
}

// GenerateToken signs a JWT for the given user
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.Expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// ValidateToken parses and validates a bearer token, returning its claims
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, models.ErrUnauthorized
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, models.ErrUnauthorized
	}

	return claims, nil
}

// Logout marks the user offline. Token invalidation itself is client-side;
// the bearer token stays valid until it expires.
func (s *AuthService) Logout(userID int) error {
	offline := false
	_, err := s.users.Update(userID, &models.UserUpdateRequest{IsOnline: &offline})
	return err
}

// GetProfile returns the user for the given ID
func (s *AuthService) GetProfile(userID int) (*models.User, error) {
	return s.users.GetByID(userID)
}

// UpdateProfile applies profile changes for the given user
func (s *AuthService) UpdateProfile(userID int, req *models.UserUpdateRequest) (*models.User, error) {
	if req.PhoneNumber != nil && *req.PhoneNumber != "" {
		normalized := NormalizePhoneNumber(*req.PhoneNumber)
		req.PhoneNumber = &normalized
	}
	return s.users.Update(userID, req)
}

// UpdatePreferences applies a partial preferences update for the given user
func (s *AuthService) UpdatePreferences(userID int, req *models.PreferencesUpdateRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, err.Error())
	}
	return s.users.UpdatePreferences(userID, req)
}

// ChangePassword verifies the current password before setting a new one
func (s *AuthService) ChangePassword(userID int, req *PasswordChangeRequest) error {
	if err := models.ValidatePassword(req.NewPassword); err != nil {
		return fmt.Errorf("%w: %s", models.ErrInvalidInput, err.Error())
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}

	valid, err := utils.VerifyPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return models.ErrUnauthorized
	}

	newHash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.users.UpdatePassword(userID, newHash)
}

// ForgotPassword starts a password reset and returns the plaintext token.
// Only a SHA-256 digest of the token is stored.
func (s *AuthService) ForgotPassword(email string) (string, error) {
	user, err := s.users.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", err
	}

	token, err := utils.GenerateSecureToken(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	expiresAt := time.Now().Add(resetTokenExpiry)
	if err := s.users.SetResetToken(user.ID, utils.HashToken(token), expiresAt); err != nil {
		return "", err
	}

	return token, nil
}

// ResetPassword completes a password reset using a token from ForgotPassword
// and issues a fresh bearer token
func (s *AuthService) ResetPassword(token, newPassword string) (*AuthResponse, error) {
	if err := models.ValidatePassword(newPassword); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, err.Error())
	}

	user, err := s.users.GetByResetToken(utils.HashToken(token))
	if err != nil {
		return nil, err
	}

	newHash, err := utils.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(user.ID, newHash); err != nil {
		return nil, err
	}

	if err := s.users.ClearResetToken(user.ID); err != nil {
		return nil, err
	}

	signed, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: user, Token: signed}, nil
}
