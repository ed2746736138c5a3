package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog/log"

	"ticketmate-backend/internal/models"
)

// OTPService issues and verifies one-time passcodes delivered over SMS
type OTPService struct {
	otps  OTPStore
	users UserStore
	sms   SMSSender
}

// NewOTPService creates a new OTP service
func NewOTPService(otps OTPStore, users UserStore, sms SMSSender) *OTPService {
	return &OTPService{
		otps:  otps,
		users: users,
		sms:   sms,
	}
}

// OTPResult reports the outcome of sending a code. Code is populated only
// when SMS delivery failed, so the client can still complete the flow.
type OTPResult struct {
	PhoneNumber  string    `json:"phone_number"`
	Purpose      string    `json:"purpose"`
	ExpiresAt    time.Time `json:"expires_at"`
	SMSDelivered bool      `json:"sms_delivered"`
	Code         string    `json:"code,omitempty"`
}

// SendOTP generates a fresh code for the phone number and purpose, replacing
// any earlier active code, and delivers it over SMS
func (s *OTPService) SendOTP(phoneNumber string, purpose models.OTPPurpose) (*OTPResult, error) {
	if err := models.ValidateOTPPurpose(purpose); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, err.Error())
	}

	normalized := NormalizePhoneNumber(phoneNumber)
	if normalized == "" {
		return nil, fmt.Errorf("%w: phone number is required", models.ErrInvalidInput)
	}

	code, err := generateOTPCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP code: %w", err)
	}

	otp, err := s.otps.Create(normalized, code, purpose)
	if err != nil {
		return nil, err
	}

	result := &OTPResult{
		PhoneNumber:  normalized,
		Purpose:      string(purpose),
		ExpiresAt:    otp.CreatedAt.Add(models.OTPExpiry),
		SMSDelivered: true,
	}

	message := fmt.Sprintf("Your TicketMate verification code is: %s. Valid for 10 minutes.", code)
	if err := s.sms.SendSMS(normalized, message); err != nil {
		// Delivery failure falls back to handing the code to the caller
		log.Warn().Err(err).Str("phone", normalized).Msg("SMS delivery failed, returning code in response")
		result.SMSDelivered = false
		result.Code = code
	}

	return result, nil
}

// ResendOTP issues a replacement code for an outstanding verification
func (s *OTPService) ResendOTP(phoneNumber string, purpose models.OTPPurpose) (*OTPResult, error) {
	return s.SendOTP(phoneNumber, purpose)
}

// VerifyOTP checks a submitted code against the active one for the phone
// number and purpose. After five wrong attempts the code is destroyed and a
// new one must be requested. A successful signup verification also marks the
// user account verified.
func (s *OTPService) VerifyOTP(phoneNumber, code string, purpose models.OTPPurpose) error {
	if err := models.ValidateOTPPurpose(purpose); err != nil {
		return fmt.Errorf("%w: %s", models.ErrInvalidInput, err.Error())
	}

	normalized := NormalizePhoneNumber(phoneNumber)

	otp, err := s.otps.GetActive(normalized, purpose)
	if err != nil {
		return err
	}

	if otp.IsExpired() {
		return models.ErrOTPNotFound
	}

	if otp.Code != code {
		attempts, err := s.otps.IncrementAttempts(otp.ID)
		if err != nil {
			return err
		}
		if attempts >= models.OTPMaxAttempts {
			if err := s.otps.Delete(otp.ID); err != nil {
				return err
			}
			return models.ErrTooManyAttempts
		}
		return fmt.Errorf("%w: incorrect code, %d attempts remaining",
			models.ErrInvalidInput, models.OTPMaxAttempts-attempts)
	}

	if err := s.otps.MarkVerified(otp.ID); err != nil {
		return err
	}

	if purpose == models.OTPPurposeSignup {
		// A failure to flip the account flag does not undo a correct code
		if user, err := s.users.GetByPhoneNumber(normalized); err == nil {
			if err := s.users.MarkVerified(user.ID); err != nil {
				log.Warn().Err(err).Int("user_id", user.ID).Msg("failed to mark user verified")
			}
		} else if !errors.Is(err, models.ErrUserNotFound) {
			log.Warn().Err(err).Str("phone", normalized).Msg("user lookup failed after OTP verification")
		}
	}

	// The verified record stays for the audit trail; GetActive only ever
	// returns unverified codes, so it cannot be replayed.
	return nil
}

// CleanupExpired removes expired passcodes
func (s *OTPService) CleanupExpired() error {
	return s.otps.DeleteExpired()
}

func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
