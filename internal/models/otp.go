package models

import (
	"errors"
	"time"
)

// OTPPurpose represents the reason an OTP was issued
type OTPPurpose string

const (
	OTPPurposeSignup        OTPPurpose = "signup"
	OTPPurposeLogin         OTPPurpose = "login"
	OTPPurposePasswordReset OTPPurpose = "password_reset"
)

const (
	// OTPMaxAttempts is the number of failed verifications before the code is discarded
	OTPMaxAttempts = 5
	// OTPExpiry is the lifetime of an issued code
	OTPExpiry = 10 * time.Minute
)

// OTP represents a one-time verification code for a phone number
type OTP struct {
	ID          int        `json:"id" db:"id"`
	PhoneNumber string     `json:"phone_number" db:"phone_number"`
	Code        string     `json:"-" db:"code"`
	Purpose     OTPPurpose `json:"purpose" db:"purpose"`
	Verified    bool       `json:"verified" db:"verified"`
	Attempts    int        `json:"attempts" db:"attempts"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// ValidateOTPPurpose checks that the purpose is one of the known values
func ValidateOTPPurpose(purpose OTPPurpose) error {
	switch purpose {
	case OTPPurposeSignup, OTPPurposeLogin, OTPPurposePasswordReset:
		return nil
	default:
		return errors.New("invalid OTP purpose")
	}
}

// IsExpired returns true once the code has outlived its window
func (o *OTP) IsExpired() bool {
	return time.Since(o.CreatedAt) > OTPExpiry
}

// RemainingAttempts returns how many verification attempts are left
func (o *OTP) RemainingAttempts() int {
	remaining := OTPMaxAttempts - o.Attempts
	if remaining < 0 {
		return 0
	}
	return remaining
}
