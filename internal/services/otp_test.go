package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketmate-backend/internal/models"
)

type mockOTPStore struct {
	otps   map[int]*models.OTP
	nextID int
}

func newMockOTPStore() *mockOTPStore {
	return &mockOTPStore{otps: make(map[int]*models.OTP), nextID: 1}
}

func (m *mockOTPStore) Create(phoneNumber, code string, purpose models.OTPPurpose) (*models.OTP, error) {
	for id, otp := range m.otps {
		if otp.PhoneNumber == phoneNumber && otp.Purpose == purpose {
			delete(m.otps, id)
		}
	}
	otp := &models.OTP{
		ID:          m.nextID,
		PhoneNumber: phoneNumber,
		Code:        code,
		Purpose:     purpose,
		CreatedAt:   time.Now(),
	}
	m.nextID++
	m.otps[otp.ID] = otp
	copied := *otp
	return &copied, nil
}

func (m *mockOTPStore) GetActive(phoneNumber string, purpose models.OTPPurpose) (*models.OTP, error) {
	for _, otp := range m.otps {
		if otp.PhoneNumber == phoneNumber && otp.Purpose == purpose && !otp.Verified {
			copied := *otp
			return &copied, nil
		}
	}
	return nil, models.ErrOTPNotFound
}

func (m *mockOTPStore) IncrementAttempts(id int) (int, error) {
	otp, ok := m.otps[id]
	if !ok {
		return 0, models.ErrOTPNotFound
	}
	otp.Attempts++
	return otp.Attempts, nil
}

func (m *mockOTPStore) MarkVerified(id int) error {
	otp, ok := m.otps[id]
	if !ok {
		return models.ErrOTPNotFound
	}
	otp.Verified = true
	return nil
}

func (m *mockOTPStore) Delete(id int) error {
	delete(m.otps, id)
	return nil
}

func (m *mockOTPStore) DeleteExpired() error {
	for id, otp := range m.otps {
		if otp.IsExpired() {
			delete(m.otps, id)
		}
	}
	return nil
}

// recordingUserStore tracks verification calls; everything else is canned
type recordingUserStore struct {
	user        *models.User
	verifiedIDs []int
}

func (m *recordingUserStore) Create(req *models.UserCreateRequest, passwordHash string) (*models.User, error) {
	return nil, nil
}
func (m *recordingUserStore) GetByID(id int) (*models.User, error) {
	return nil, models.ErrUserNotFound
}
func (m *recordingUserStore) GetByEmail(email string) (*models.User, error) {
	return nil, models.ErrUserNotFound
}
func (m *recordingUserStore) GetByEmailOrUsername(identifier string) (*models.User, error) {
	return nil, models.ErrUserNotFound
}
func (m *recordingUserStore) GetByPhoneNumber(phone string) (*models.User, error) {
	if m.user != nil && m.user.PhoneNumber == phone {
		return m.user, nil
	}
	return nil, models.ErrUserNotFound
}
func (m *recordingUserStore) Update(id int, req *models.UserUpdateRequest) (*models.User, error) {
	return nil, nil
}
func (m *recordingUserStore) UpdatePreferences(id int, req *models.PreferencesUpdateRequest) (*models.User, error) {
	return nil, nil
}
func (m *recordingUserStore) UpdatePassword(id int, passwordHash string) error { return nil }
func (m *recordingUserStore) SetResetToken(id int, tokenHash string, expiresAt time.Time) error {
	return nil
}
func (m *recordingUserStore) GetByResetToken(tokenHash string) (*models.User, error) {
	return nil, models.ErrUserNotFound
}
func (m *recordingUserStore) ClearResetToken(id int) error { return nil }
func (m *recordingUserStore) MarkVerified(id int) error {
	m.verifiedIDs = append(m.verifiedIDs, id)
	return nil
}

type stubSMS struct {
	err      error
	sent     int
	lastTo   string
	lastBody string
}

func (s *stubSMS) SendSMS(phoneNumber, message string) error {
	s.sent++
	s.lastTo = phoneNumber
	s.lastBody = message
	if s.err != nil {
		return s.err
	}
	return nil
}

func TestSendOTPDeliversCode(t *testing.T) {
	store := newMockOTPStore()
	sms := &stubSMS{}
	service := NewOTPService(store, &recordingUserStore{}, sms)

	result, err := service.SendOTP("0241234567", models.OTPPurposeSignup)
	require.NoError(t, err)

	assert.Equal(t, "+233241234567", result.PhoneNumber)
	assert.True(t, result.SMSDelivered)
	assert.Empty(t, result.Code, "the code must not leak when SMS succeeds")
	assert.Equal(t, 1, sms.sent)
	assert.Equal(t, "+233241234567", sms.lastTo)
	assert.Contains(t, sms.lastBody, "Valid for 10 minutes")

	stored, err := store.GetActive("+233241234567", models.OTPPurposeSignup)
	require.NoError(t, err)
	assert.Len(t, stored.Code, 6)
	assert.Contains(t, sms.lastBody, stored.Code)
}

func TestSendOTPReturnsCodeWhenSMSFails(t *testing.T) {
	store := newMockOTPStore()
	sms := &stubSMS{err: fmt.Errorf("provider unreachable")}
	service := NewOTPService(store, &recordingUserStore{}, sms)

	result, err := service.SendOTP("0241234567", models.OTPPurposeLogin)
	require.NoError(t, err, "SMS failure must not fail the request")

	assert.False(t, result.SMSDelivered)
	assert.Len(t, result.Code, 6)
}

func TestSendOTPRejectsUnknownPurpose(t *testing.T) {
	service := NewOTPService(newMockOTPStore(), &recordingUserStore{}, &stubSMS{})

	_, err := service.SendOTP("0241234567", models.OTPPurpose("mfa"))
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
}

func TestSendOTPReplacesActiveCode(t *testing.T) {
	store := newMockOTPStore()
	service := NewOTPService(store, &recordingUserStore{}, &stubSMS{})

	_, err := service.SendOTP("0241234567", models.OTPPurposeSignup)
	require.NoError(t, err)
	first, err := store.GetActive("+233241234567", models.OTPPurposeSignup)
	require.NoError(t, err)

	_, err = service.ResendOTP("0241234567", models.OTPPurposeSignup)
	require.NoError(t, err)
	second, err := store.GetActive("+233241234567", models.OTPPurposeSignup)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, store.otps, 1)
}

func TestVerifyOTPCorrectCode(t *testing.T) {
	store := newMockOTPStore()
	users := &recordingUserStore{user: &models.User{ID: 42, PhoneNumber: "+233241234567"}}
	service := NewOTPService(store, users, &stubSMS{})

	_, err := service.SendOTP("0241234567", models.OTPPurposeSignup)
	require.NoError(t, err)
	otp, err := store.GetActive("+233241234567", models.OTPPurposeSignup)
	require.NoError(t, err)

	err = service.VerifyOTP("0241234567", otp.Code, models.OTPPurposeSignup)
	require.NoError(t, err)

	assert.Equal(t, []int{42}, users.verifiedIDs, "signup verification must mark the account verified")

	kept, ok := store.otps[otp.ID]
	require.True(t, ok, "the consumed code is kept as an audit record")
	assert.True(t, kept.Verified)

	_, err = store.GetActive("+233241234567", models.OTPPurposeSignup)
	assert.True(t, errors.Is(err, models.ErrOTPNotFound), "a verified code is no longer active")

	err = service.VerifyOTP("0241234567", otp.Code, models.OTPPurposeSignup)
	assert.True(t, errors.Is(err, models.ErrOTPNotFound), "a consumed code cannot be replayed")
}

func TestVerifyOTPWrongCodeCountsAttempts(t *testing.T) {
	store := newMockOTPStore()
	service := NewOTPService(store, &recordingUserStore{}, &stubSMS{})

	_, err := service.SendOTP("0241234567", models.OTPPurposeLogin)
	require.NoError(t, err)
	otp, err := store.GetActive("+233241234567", models.OTPPurposeLogin)
	require.NoError(t, err)
	wrong := "000000"
	if otp.Code == wrong {
		wrong = "111111"
	}

	for i := 1; i < models.OTPMaxAttempts; i++ {
		err := service.VerifyOTP("0241234567", wrong, models.OTPPurposeLogin)
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrInvalidInput))
		assert.Contains(t, err.Error(), fmt.Sprintf("%d attempts remaining", models.OTPMaxAttempts-i))
	}

	err = service.VerifyOTP("0241234567", wrong, models.OTPPurposeLogin)
	assert.True(t, errors.Is(err, models.ErrTooManyAttempts))
	assert.Empty(t, store.otps, "the code is destroyed after the final attempt")

	err = service.VerifyOTP("0241234567", otp.Code, models.OTPPurposeLogin)
	assert.True(t, errors.Is(err, models.ErrOTPNotFound))
}

func TestVerifyOTPExpiredCode(t *testing.T) {
	store := newMockOTPStore()
	service := NewOTPService(store, &recordingUserStore{}, &stubSMS{})

	_, err := service.SendOTP("0241234567", models.OTPPurposeLogin)
	require.NoError(t, err)
	for _, otp := range store.otps {
		otp.CreatedAt = time.Now().Add(-models.OTPExpiry - time.Minute)
	}

	err = service.VerifyOTP("0241234567", "123456", models.OTPPurposeLogin)
	assert.True(t, errors.Is(err, models.ErrOTPNotFound))
}

func TestVerifyOTPUnknownNumber(t *testing.T) {
	service := NewOTPService(newMockOTPStore(), &recordingUserStore{}, &stubSMS{})

	err := service.VerifyOTP("0209999999", "123456", models.OTPPurposeSignup)
	assert.True(t, errors.Is(err, models.ErrOTPNotFound))
}

func TestVerifyOTPNonSignupSkipsUserLookup(t *testing.T) {
	store := newMockOTPStore()
	users := &recordingUserStore{user: &models.User{ID: 42, PhoneNumber: "+233241234567"}}
	service := NewOTPService(store, users, &stubSMS{})

	_, err := service.SendOTP("0241234567", models.OTPPurposePasswordReset)
	require.NoError(t, err)
	otp, err := store.GetActive("+233241234567", models.OTPPurposePasswordReset)
	require.NoError(t, err)

	require.NoError(t, service.VerifyOTP("0241234567", otp.Code, models.OTPPurposePasswordReset))
	assert.Empty(t, users.verifiedIDs)
}

func TestCleanupExpired(t *testing.T) {
	store := newMockOTPStore()
	service := NewOTPService(store, &recordingUserStore{}, &stubSMS{})

	_, err := service.SendOTP("0241234567", models.OTPPurposeLogin)
	require.NoError(t, err)
	_, err = service.SendOTP("0551234567", models.OTPPurposeLogin)
	require.NoError(t, err)
	for _, otp := range store.otps {
		if otp.PhoneNumber == "+233241234567" {
			otp.CreatedAt = time.Now().Add(-time.Hour)
		}
	}

	require.NoError(t, service.CleanupExpired())
	assert.Len(t, store.otps, 1)
}
