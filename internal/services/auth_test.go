package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketmate-backend/internal/config"
	"ticketmate-backend/internal/models"
)

// mockUserStore keeps accounts in memory with the same lookup semantics as
// the real repository
type mockUserStore struct {
	users       map[int]*models.User
	nextID      int
	resetHashes map[int]string
	resetExpiry map[int]time.Time
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{
		users:       make(map[int]*models.User),
		nextID:      1,
		resetHashes: make(map[int]string),
		resetExpiry: make(map[int]time.Time),
	}
}

func (m *mockUserStore) Create(req *models.UserCreateRequest, passwordHash string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == req.Email || user.Username == req.Username {
			return nil, models.ErrDuplicateEntry
		}
	}
	user := &models.User{
		ID:           m.nextID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		PhoneNumber:  req.PhoneNumber,
		Gender:       req.Gender,
		Role:         models.RoleUser,
		CreatedAt:    time.Now(),
	}
	m.nextID++
	m.users[user.ID] = user
	copied := *user
	return &copied, nil
}

func (m *mockUserStore) GetByID(id int) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserStore) GetByEmail(email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (m *mockUserStore) GetByEmailOrUsername(identifier string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == identifier || strings.EqualFold(user.Username, identifier) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (m *mockUserStore) GetByPhoneNumber(phone string) (*models.User, error) {
	for _, user := range m.users {
		if user.PhoneNumber == phone {
			copied := *user
			return &copied, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (m *mockUserStore) Update(id int, req *models.UserUpdateRequest) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if req.IsOnline != nil {
		user.IsOnline = *req.IsOnline
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserStore) UpdatePreferences(id int, req *models.PreferencesUpdateRequest) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	if user.Preferences == nil {
		user.Preferences = &models.Preferences{}
	}
	if req.Categories != nil {
		user.Preferences.Categories = *req.Categories
	}
	if req.AgeRange != nil {
		user.Preferences.AgeRange = *req.AgeRange
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserStore) UpdatePassword(id int, passwordHash string) error {
	user, ok := m.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (m *mockUserStore) SetResetToken(id int, tokenHash string, expiresAt time.Time) error {
	if _, ok := m.users[id]; !ok {
		return models.ErrUserNotFound
	}
	m.resetHashes[id] = tokenHash
	m.resetExpiry[id] = expiresAt
	return nil
}

func (m *mockUserStore) GetByResetToken(tokenHash string) (*models.User, error) {
	for id, hash := range m.resetHashes {
		if hash == tokenHash && time.Now().Before(m.resetExpiry[id]) {
			copied := *m.users[id]
			return &copied, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (m *mockUserStore) ClearResetToken(id int) error {
	delete(m.resetHashes, id)
	delete(m.resetExpiry, id)
	return nil
}

func (m *mockUserStore) MarkVerified(id int) error {
	user, ok := m.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	user.IsVerified = true
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret: "test-secret-do-not-use",
		Expiry: time.Hour,
	}
}

func registerRequest() *models.UserCreateRequest {
	return &models.UserCreateRequest{
		FirstName:   "Kofi",
		LastName:    "Owusu",
		Username:    "kofi",
		Email:       "Kofi@Example.com",
		Password:    "s3cretpass",
		PhoneNumber: "0241234567",
	}
}

func TestRegisterCreatesAccountAndToken(t *testing.T) {
	store := newMockUserStore()
	service := NewAuthService(store, testJWTConfig())

	resp, err := service.Register(registerRequest())
	require.NoError(t, err)

	assert.Equal(t, "kofi@example.com", resp.User.Email, "email is stored lowercased")
	assert.Equal(t, "+233241234567", resp.User.PhoneNumber)
	assert.NotEmpty(t, resp.Token)

	stored, err := store.GetByID(resp.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cretpass", stored.PasswordHash)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$argon2id$"))
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	service := NewAuthService(newMockUserStore(), testJWTConfig())

	req := registerRequest()
	req.Password = "short"

	_, err := service.Register(req)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newMockUserStore()
	service := NewAuthService(store, testJWTConfig())

	_, err := service.Register(registerRequest())
	require.NoError(t, err)

	_, err = service.Register(registerRequest())
	assert.True(t, errors.Is(err, models.ErrDuplicateEntry))
}

func TestLogin(t *testing.T) {
	store := newMockUserStore()
	service := NewAuthService(store, testJWTConfig())

	_, err := service.Register(registerRequest())
	require.NoError(t, err)

	t.Run("by email", func(t *testing.T) {
		resp, err := service.Login(&LoginRequest{Identifier: "kofi@example.com", Password: "s3cretpass"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("by username", func(t *testing.T) {
		resp, err := service.Login(&LoginRequest{Identifier: "kofi", Password: "s3cretpass"})
		require.NoError(t, err)
		assert.Equal(t, "kofi", resp.User.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.Login(&LoginRequest{Identifier: "kofi@example.com", Password: "wrongpass"})
		assert.True(t, errors.Is(err, models.ErrUnauthorized))
	})

	t.Run("unknown identifier", func(t *testing.T) {
		_, err := service.Login(&LoginRequest{Identifier: "nobody@example.com", Password: "s3cretpass"})
		assert.True(t, errors.Is(err, models.ErrUnauthorized), "unknown accounts look like bad credentials")
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := service.Login(&LoginRequest{Identifier: "", Password: ""})
		assert.True(t, errors.Is(err, models.ErrInvalidInput))
	})
}

func TestValidateTokenRoundtrip(t *testing.T) {
	service := NewAuthService(newMockUserStore(), testJWTConfig())

	user := &models.User{ID: 9, Email: "ama@example.com", Role: models.RoleAdmin}
	token, err := service.GenerateToken(user)
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 9, claims.UserID)
	assert.Equal(t, "ama@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	service := NewAuthService(newMockUserStore(), testJWTConfig())

	token, err := service.GenerateToken(&models.User{ID: 9})
	require.NoError(t, err)

	t.Run("garbage token", func(t *testing.T) {
		_, err := service.ValidateToken("not.a.token")
		assert.True(t, errors.Is(err, models.ErrUnauthorized))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewAuthService(newMockUserStore(), config.JWTConfig{Secret: "different", Expiry: time.Hour})
		_, err := other.ValidateToken(token)
		assert.True(t, errors.Is(err, models.ErrUnauthorized))
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewAuthService(newMockUserStore(), config.JWTConfig{
			Secret: "test-secret-do-not-use",
			Expiry: -time.Minute,
		})
		token, err := expired.GenerateToken(&models.User{ID: 9})
		require.NoError(t, err)
		_, err = service.ValidateToken(token)
		assert.True(t, errors.Is(err, models.ErrUnauthorized))
	})
}

func TestChangePassword(t *testing.T) {
	store := newMockUserStore()
	service := NewAuthService(store, testJWTConfig())

	resp, err := service.Register(registerRequest())
	require.NoError(t, err)

	err = service.ChangePassword(resp.User.ID, &PasswordChangeRequest{
		CurrentPassword: "wrongpass",
		NewPassword:     "brandnewpass",
	})
	assert.True(t, errors.Is(err, models.ErrUnauthorized))

	err = service.ChangePassword(resp.User.ID, &PasswordChangeRequest{
		CurrentPassword: "s3cretpass",
		NewPassword:     "brandnewpass",
	})
	require.NoError(t, err)

	_, err = service.Login(&LoginRequest{Identifier: "kofi", Password: "brandnewpass"})
	assert.NoError(t, err)
}

func TestPasswordResetFlow(t *testing.T) {
	store := newMockUserStore()
	service := NewAuthService(store, testJWTConfig())

	resp, err := service.Register(registerRequest())
	require.NoError(t, err)

	token, err := service.ForgotPassword("KOFI@example.com")
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.NotContains(t, store.resetHashes[resp.User.ID], token, "only a digest of the token is stored")

	reset, err := service.ResetPassword(token, "afterreset1")
	require.NoError(t, err)
	assert.NotEmpty(t, reset.Token, "a reset issues a fresh bearer token")

	_, err = service.Login(&LoginRequest{Identifier: "kofi", Password: "afterreset1"})
	assert.NoError(t, err)

	_, err = service.ResetPassword(token, "againreset2")
	assert.True(t, errors.Is(err, models.ErrUserNotFound), "a consumed token cannot be replayed")
}

func TestLogoutMarksUserOffline(t *testing.T) {
	store := newMockUserStore()
	service := NewAuthService(store, testJWTConfig())

	resp, err := service.Register(registerRequest())
	require.NoError(t, err)
	store.users[resp.User.ID].IsOnline = true

	require.NoError(t, service.Logout(resp.User.ID))
	assert.False(t, store.users[resp.User.ID].IsOnline)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	service := NewAuthService(newMockUserStore(), testJWTConfig())

	_, err := service.ForgotPassword("ghost@example.com")
	assert.True(t, errors.Is(err, models.ErrUserNotFound))
}
